package variables

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the bucket a variable name is sorted into.
type Kind int

const (
	// KindDynamic is an ordinary request parameter (ids, dates, filters).
	KindDynamic Kind = iota
	// KindCredential is a secret the user should store and reuse.
	KindCredential
	// KindUnknown matched no keyword. Only returned by a strict classifier.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindCredential:
		return "credential"
	case KindUnknown:
		return "unknown"
	default:
		return "dynamic"
	}
}

// KeywordTable holds the substrings used to recognise each kind. Matching
// is case-insensitive against the lower-cased name.
type KeywordTable struct {
	Credential []string
	Dynamic    []string
	// TieBreak decides names that match both lists: a match means dynamic.
	TieBreak *regexp.Regexp
}

// DefaultKeywords returns the built-in English/Spanish keyword table.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		Credential: []string{
			"token", "key", "secret", "password", "pass", "pwd", "auth",
			"authorization", "bearer", "api_key", "apikey", "access_token",
			"refresh_token", "session", "ticket", "credential", "client_id",
			"client_secret",
		},
		Dynamic: []string{
			"id", "codigo", "code", "number", "numero", "name", "nombre",
			"date", "fecha", "time", "hora", "status", "estado", "type",
			"tipo", "category", "categoria", "search", "buscar", "query",
			"filter", "filtro", "page", "pagina", "limit", "offset", "sort",
			"order", "from", "to", "start", "end",
		},
		TieBreak: regexp.MustCompile(`numero|codigo|code|id`),
	}
}

// Classification partitions a set of names.
type Classification struct {
	Credentials      []string `json:"credentials"`
	DynamicVariables []string `json:"dynamicVariables"`
	Unknown          []string `json:"unknown"`
}

// Classifier sorts variable names into credentials and dynamic parameters.
type Classifier struct {
	table  KeywordTable
	strict bool
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithStrictUnknown makes names that match no keyword land in Unknown
// instead of defaulting to dynamic.
func WithStrictUnknown() ClassifierOption {
	return func(c *Classifier) {
		c.strict = true
	}
}

// NewClassifier creates a classifier over the given keyword table.
func NewClassifier(table KeywordTable, opts ...ClassifierOption) *Classifier {
	if table.TieBreak == nil {
		table.TieBreak = DefaultKeywords().TieBreak
	}
	c := &Classifier{table: table}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = NewClassifier(DefaultKeywords())

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Kind returns the bucket for a single name.
func (c *Classifier) Kind(name string) Kind {
	lower := strings.ToLower(name)
	isCred := containsAny(lower, c.table.Credential)
	isDyn := containsAny(lower, c.table.Dynamic)

	switch {
	case isCred && isDyn:
		if c.table.TieBreak.MatchString(lower) {
			return KindDynamic
		}
		return KindCredential
	case isDyn:
		return KindDynamic
	case isCred:
		return KindCredential
	case c.strict:
		return KindUnknown
	default:
		return KindDynamic
	}
}

// Classify partitions names. Every name lands in exactly one bucket.
func (c *Classifier) Classify(names []string) Classification {
	result := Classification{
		Credentials:      []string{},
		DynamicVariables: []string{},
		Unknown:          []string{},
	}
	for _, name := range names {
		switch c.Kind(name) {
		case KindCredential:
			result.Credentials = append(result.Credentials, name)
		case KindUnknown:
			result.Unknown = append(result.Unknown, name)
		default:
			result.DynamicVariables = append(result.DynamicVariables, name)
		}
	}
	return result
}

// IsCredential reports whether name contains any credential keyword,
// ignoring the dynamic list.
func (c *Classifier) IsCredential(name string) bool {
	return containsAny(strings.ToLower(name), c.table.Credential)
}

// Classify partitions names with the default keyword table.
func Classify(names []string) Classification {
	return defaultClassifier.Classify(names)
}

// IsCredential checks name against the default credential keywords.
func IsCredential(name string) bool {
	return defaultClassifier.IsCredential(name)
}

type hint struct {
	match       func(string) bool
	description string
}

func has(subs ...string) func(string) bool {
	return func(s string) bool { return containsAny(s, subs) }
}

func hasAll(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}

// First match wins.
var descriptions = []hint{
	{has("ticket"), "Token de acceso o ticket de autenticación"},
	{has("token"), "Token de autenticación"},
	{hasAll("api", "key"), "Clave de API"},
	{has("secret"), "Secreto de autenticación"},
	{has("password", "pass"), "Contraseña"},
	{has("codigo", "code"), "Código identificador"},
	{has("numero", "number"), "Número identificador"},
	{has("id"), "Identificador único"},
	{has("fecha", "date"), "Fecha (formato: YYYY-MM-DD)"},
	{has("nombre", "name"), "Nombre"},
	{has("email"), "Correo electrónico"},
}

var examples = []hint{
	{has("ticket", "token"), "F8537A18-6766-4DEF-9E59-426B4FEE2B44"},
	{has("codigo", "code"), "12345"},
	{has("numero", "number"), "123"},
	{has("fecha", "date"), "2025-12-26"},
	{has("email"), "usuario@ejemplo.com"},
}

// Description returns a short human description for a variable name.
func Description(name string) string {
	lower := strings.ToLower(name)
	for _, h := range descriptions {
		if h.match(lower) {
			return h.description
		}
	}
	return fmt.Sprintf("Valor para %s", name)
}

// Example returns a sample value for a variable name, or "".
func Example(name string) string {
	lower := strings.ToLower(name)
	for _, h := range examples {
		if h.match(lower) {
			return h.description
		}
	}
	return ""
}
