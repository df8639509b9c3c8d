package llm

import "strings"

// ContentSlot is replaced by the document text in a prompt template.
const ContentSlot = "{{CONTENT}}"

// DefaultPrompt is the extraction prompt shared by every provider.
const DefaultPrompt = `Analiza el siguiente documento y extrae TODA la información relacionada con:

1. **CREDENCIALES**: API Keys, tokens, usuarios, contraseñas, secrets, client IDs, client secrets, authorization headers, bearer tokens, etc.
2. **APIs**: Endpoints, URLs, métodos HTTP, parámetros requeridos, headers necesarios, body de ejemplo, respuestas esperadas.

DOCUMENTO:
{{CONTENT}}

INSTRUCCIONES:
- Identifica TODAS las credenciales mencionadas, incluso si están en ejemplos o comentarios
- Para cada API encontrada, extrae: método HTTP, URL completa, headers requeridos, parámetros, body de ejemplo
- Si una credencial está asociada a una API específica, indícalo
- Organiza la información de forma estructurada

Responde ÚNICAMENTE con un JSON válido en este formato exacto:
{
  "credentials": [
    {
      "type": "string (api_key, token, username, password, etc)",
      "name": "string (nombre descriptivo)",
      "value": "string (valor de la credencial si está presente, o null)",
      "description": "string (contexto de uso)",
      "associatedApi": "string (nombre de API asociada si aplica, o null)"
    }
  ],
  "apis": [
    {
      "name": "string (nombre descriptivo de la API)",
      "method": "string (GET, POST, PUT, DELETE, etc)",
      "url": "string (URL completa del endpoint)",
      "headers": {
        "header-name": "valor o placeholder"
      },
      "params": {
        "param-name": "valor o placeholder"
      },
      "body": {},
      "requiredCredentials": ["string (nombres de credenciales requeridas)"],
      "description": "string (qué hace esta API)"
    }
  ],
  "summary": "string (resumen breve del documento)"
}

NO incluyas markdown, NO incluyas explicaciones adicionales, SOLO el JSON.`

// BuildPrompt places content into the first {{CONTENT}} slot of template.
// Templates without a slot get the content appended after a blank line.
func BuildPrompt(template, content string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPrompt
	}
	if !strings.Contains(template, ContentSlot) {
		return template + "\n\n" + content
	}
	return strings.Replace(template, ContentSlot, content, 1)
}
