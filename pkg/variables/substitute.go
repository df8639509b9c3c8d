package variables

import (
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
)

// ReplaceVariables fills every {{name}} and {name} whose name is present in
// values. Placeholders without a value are left untouched. Replacement is
// a single pass, so values that themselves look like placeholders are not
// expanded again.
func ReplaceVariables(text string, values map[string]string) string {
	if text == "" || len(values) == 0 {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		var name string
		if groups[1] != "" {
			name = cleanName(groups[1])
		} else {
			name = cleanName(groups[2])
		}
		if val, ok := values[name]; ok {
			return val
		}
		return match
	})
}

// ReplaceAPIVariables returns a copy of api with placeholders filled in the
// URL, header values, param values and body. The body is walked in place:
// string leaves and object keys are substituted without re-serialising, so
// values containing quotes or braces cannot corrupt its structure. The
// input descriptor is never modified.
func ReplaceAPIVariables(api storage.APIDescriptor, values map[string]string) storage.APIDescriptor {
	out := storage.APIDescriptor{
		Name:        api.Name,
		Method:      api.Method,
		URL:         ReplaceVariables(api.URL, values),
		Headers:     replaceMap(api.Headers, values),
		Params:      replaceMap(api.Params, values),
		Body:        replaceBody(api.Body, values),
		Description: api.Description,
	}
	if api.RequiredCredentials != nil {
		out.RequiredCredentials = append([]string(nil), api.RequiredCredentials...)
	}
	return out
}

func replaceMap(m storage.StringMap, values map[string]string) storage.StringMap {
	if m == nil {
		return nil
	}
	out := make(storage.StringMap, len(m))
	for k, v := range m {
		out[k] = ReplaceVariables(v, values)
	}
	return out
}

// replaceBody deep-copies body while substituting its strings.
func replaceBody(body any, values map[string]string) any {
	switch v := body.(type) {
	case string:
		return ReplaceVariables(v, values)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[ReplaceVariables(k, values)] = replaceBody(item, values)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = replaceBody(item, values)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, item := range v {
			out[ReplaceVariables(k, values)] = ReplaceVariables(item, values)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = ReplaceVariables(item, values)
		}
		return out
	default:
		return v
	}
}

// BodyIsEmpty reports whether a body carries nothing worth sending.
func BodyIsEmpty(body any) bool {
	switch v := body.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}
