package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
)

const (
	keyDataListItems   = 5
	keyDataMaxKeys     = 10
	keyDataNestedItems = 3
	keyDataMaxDepth    = 2
	elisionMarker      = "[...]"
)

var statusTexts = map[int]string{
	200: "✅ Éxito - La solicitud se completó correctamente",
	201: "✅ Creado - El recurso se creó exitosamente",
	204: "✅ Sin contenido - La operación fue exitosa",
	400: "❌ Solicitud incorrecta - Revisa los datos que enviaste",
	401: "🔒 No autorizado - Verifica tus credenciales",
	403: "🚫 Prohibido - No tienes permiso para acceder",
	404: "🔍 No encontrado - El recurso no existe",
	500: "⚠️ Error del servidor - Problema en el servidor",
	502: "⚠️ Puerta de enlace incorrecta - Problema de conexión",
	503: "⏸️ Servicio no disponible - El servidor está temporalmente fuera de servicio",
}

// KeyData is a small preview of a response payload.
type KeyData struct {
	Type  string `json:"type"` // list, object or simple
	Count *int   `json:"count,omitempty"`
	Items []any  `json:"items,omitempty"`
	Data  any    `json:"data,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Translation is a human-oriented reading of an HTTP response.
type Translation struct {
	Success      bool     `json:"success"`
	HumanMessage string   `json:"humanMessage"`
	StatusCode   int      `json:"statusCode"`
	StatusText   string   `json:"statusText"`
	KeyData      *KeyData `json:"keyData"`
	RawData      any      `json:"rawData"`
}

// TranslateStatus returns the descriptive line for an HTTP status code.
func TranslateStatus(status int) string {
	if text, ok := statusTexts[status]; ok {
		return text
	}
	return fmt.Sprintf("Código %d", status)
}

// Translate turns a status code and decoded payload into a short narrative
// plus a bounded preview of the data.
func Translate(status int, payload any, api storage.APIDescriptor) Translation {
	success := status >= 200 && status < 300

	var message string
	if success {
		message = successMessage(payload, api.DisplayName())
	} else {
		message = errorMessage(status, payload)
	}

	return Translation{
		Success:      success,
		HumanMessage: message,
		StatusCode:   status,
		StatusText:   TranslateStatus(status),
		KeyData:      ExtractKeyData(payload),
		RawData:      payload,
	}
}

func successMessage(payload any, apiName string) string {
	switch v := payload.(type) {
	case []any:
		suffix := "s"
		if len(v) == 1 {
			suffix = ""
		}
		return fmt.Sprintf("✅ ¡Éxito! Se encontraron %d resultado%s en %s", len(v), suffix, apiName)
	case map[string]any:
		if len(v) > 0 {
			return fmt.Sprintf("✅ ¡Éxito! %s respondió con información", apiName)
		}
	}
	return fmt.Sprintf("✅ ¡Éxito! %s se ejecutó correctamente", apiName)
}

func errorMessage(status int, payload any) string {
	var sb strings.Builder
	sb.WriteString("❌ No se pudo ejecutar la API\n\n")

	switch {
	case status == 401:
		sb.WriteString("🔑 **Problema de autenticación**\n")
		sb.WriteString("Tus credenciales no son válidas o han expirado.\n\n")
		sb.WriteString("**¿Qué hacer?**\n")
		sb.WriteString("1. Verifica que hayas ingresado las credenciales correctas\n")
		sb.WriteString("2. Revisa que no hayan expirado\n")
		sb.WriteString("3. Contacta al administrador si el problema persiste")
	case status == 404:
		sb.WriteString("🔍 **Recurso no encontrado**\n")
		sb.WriteString("La URL o el recurso que buscas no existe.\n\n")
		sb.WriteString("**¿Qué hacer?**\n")
		sb.WriteString("1. Verifica que los parámetros sean correctos\n")
		sb.WriteString("2. Revisa que la URL esté bien escrita\n")
		sb.WriteString("3. Confirma que el recurso exista")
	case status >= 500:
		sb.WriteString("⚠️ **Error del servidor**\n")
		sb.WriteString("Hay un problema en el servidor de la API.\n\n")
		sb.WriteString("**¿Qué hacer?**\n")
		sb.WriteString("1. Intenta de nuevo en unos minutos\n")
		sb.WriteString("2. Contacta al proveedor de la API si persiste")
	default:
		sb.WriteString("**Detalles del error:**\n")
		sb.WriteString(stringifyPayload(payload))
	}
	return sb.String()
}

func stringifyPayload(payload any) string {
	if s, ok := payload.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprint(payload)
	}
	return string(b)
}

// ExtractKeyData builds the preview: lists keep their first five items,
// objects their first ten keys, and anything nested deeper than two levels
// collapses to "[...]". Empty payloads give nil.
func ExtractKeyData(payload any) *KeyData {
	switch v := payload.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
	case bool:
		if !v {
			return nil
		}
	case float64:
		if v == 0 {
			return nil
		}
	case []any:
		n := len(v)
		limit := min(n, keyDataListItems)
		items := make([]any, 0, limit)
		for _, item := range v[:limit] {
			items = append(items, simplify(item, 0))
		}
		return &KeyData{Type: "list", Count: &n, Items: items}
	case map[string]any:
		return &KeyData{Type: "object", Data: simplify(v, 0)}
	}
	return &KeyData{Type: "simple", Value: payload}
}

func simplify(value any, depth int) any {
	if depth >= keyDataMaxDepth {
		return elisionMarker
	}

	switch v := value.(type) {
	case []any:
		limit := min(len(v), keyDataNestedItems)
		out := make([]any, 0, limit)
		for _, item := range v[:limit] {
			out = append(out, simplify(item, depth+1))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > keyDataMaxKeys {
			keys = keys[:keyDataMaxKeys]
		}

		out := make(map[string]any, len(keys))
		for _, k := range keys {
			switch child := v[k].(type) {
			case []any, map[string]any:
				out[k] = simplify(child, depth+1)
			default:
				out[k] = child
			}
		}
		return out
	default:
		return v
	}
}

// Table is a column/row view of a list of objects.
type Table struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// FormatAsTable lays out a list payload as a table. Columns are the union
// of the objects' keys in first-seen order (keys sorted within an object);
// missing cells are "-". Returns nil for anything that is not a non-empty
// list.
func FormatAsTable(payload any) *Table {
	list, ok := payload.([]any)
	if !ok || len(list) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var columns []string
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	rows := make([]map[string]string, 0, len(list))
	for _, item := range list {
		obj, _ := item.(map[string]any)
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			val, ok := obj[col]
			if !ok {
				row[col] = "-"
				continue
			}
			row[col] = cellText(val)
		}
		rows = append(rows, row)
	}
	return &Table{Columns: columns, Rows: rows}
}

func cellText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	case map[string]any, []any:
		b, _ := json.Marshal(val)
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
