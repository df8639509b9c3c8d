// Package variables finds, classifies, validates and fills the {{name}} and
// {name} placeholders that appear in API descriptors.
package variables

import (
	"regexp"
	"sort"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
)

// scanPattern matches {{name}} first and falls back to {name}, where a name
// is any run of characters other than a closing brace. Group 1 holds a
// double-brace name, group 2 a single-brace name.
var scanPattern = regexp.MustCompile(`\{\{([^}]+)\}\}|\{([^}]+)\}`)

// scanDoubleBracePattern matches {{name}} only.
var scanDoubleBracePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// placeholderPattern is the stricter form used for substitution: names may
// not contain an opening brace, so "{a{{b}}" still fills b.
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}|\{([^{}]+)\}`)

var braceStripper = strings.NewReplacer("{", "", "}", "")

// cleanName drops every brace from a placeholder name and trims it, so
// "{a{b}" is reported as "ab".
func cleanName(raw string) string {
	return strings.TrimSpace(braceStripper.Replace(raw))
}

// singleBraceIsJSON reports whether a {..} span looks like an inline JSON
// fragment rather than a placeholder.
func singleBraceIsJSON(inner string) bool {
	return strings.ContainsAny(inner, ":,")
}

// nameFromMatch returns the placeholder name for a submatch slice produced
// by scanPattern, or "" when the match is not a placeholder.
func nameFromMatch(groups []string) string {
	if groups[1] != "" {
		return cleanName(groups[1])
	}
	if singleBraceIsJSON(groups[2]) {
		return ""
	}
	return cleanName(groups[2])
}

// orderedSet collects names once, in first-seen order.
type orderedSet struct {
	seen  map[string]struct{}
	names []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(name string) {
	if name == "" {
		return
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

func (s *orderedSet) list() []string {
	if s.names == nil {
		return []string{}
	}
	return s.names
}

// DetectVariables returns the distinct placeholder names in text, in the
// order they first appear. Both {{name}} and {name} are recognised; a
// single-brace span containing ':' or ',' is treated as JSON and skipped.
func DetectVariables(text string) []string {
	set := newOrderedSet()
	scanText(text, set)
	return set.list()
}

func scanText(text string, set *orderedSet) {
	if text == "" {
		return
	}
	for _, groups := range scanPattern.FindAllStringSubmatch(text, -1) {
		set.add(nameFromMatch(groups))
	}
}

func scanDoubleBrace(text string, set *orderedSet) {
	if text == "" {
		return
	}
	for _, groups := range scanDoubleBracePattern.FindAllStringSubmatch(text, -1) {
		set.add(cleanName(groups[1]))
	}
}

// DetectAPIVariables returns every placeholder name used by an API
// descriptor. The URL is scanned first, then header values, param values
// and finally the body. Only {{name}} is recognised inside the body so that
// JSON objects embedded in string leaves are never mistaken for variables.
func DetectAPIVariables(api storage.APIDescriptor) []string {
	set := newOrderedSet()

	scanText(api.URL, set)
	for _, key := range sortedKeys(api.Headers) {
		scanText(api.Headers[key], set)
	}
	for _, key := range sortedKeys(api.Params) {
		scanText(api.Params[key], set)
	}
	scanBody(api.Body, set)

	return set.list()
}

// scanBody walks a decoded body value and scans its keys and string leaves.
func scanBody(body any, set *orderedSet) {
	switch v := body.(type) {
	case nil:
	case string:
		scanDoubleBrace(v, set)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			scanDoubleBrace(k, set)
			scanBody(v[k], set)
		}
	case []any:
		for _, item := range v {
			scanBody(item, set)
		}
	case map[string]string:
		scanBody(toAnyMap(v), set)
	case []string:
		for _, item := range v {
			scanDoubleBrace(item, set)
		}
	}
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sortedKeys gives map iteration a stable order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
