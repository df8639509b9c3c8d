package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrAPINotFound is returned when no saved descriptor matches a name.
var ErrAPINotFound = errors.New("saved api not found")

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns an API name into a file-safe identifier.
func Slug(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "api"
	}
	return s
}

// SaveAPI writes a descriptor to dir/<slug>.yaml and returns the path.
func SaveAPI(dir string, api APIDescriptor) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(api)
	if err != nil {
		return "", fmt.Errorf("failed to marshal api: %w", err)
	}

	path := filepath.Join(dir, Slug(api.Name)+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// LoadAPI reads a descriptor from a YAML file.
func LoadAPI(path string) (*APIDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var api APIDescriptor
	if err := yaml.Unmarshal(data, &api); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	api.Body = normalizeYAML(api.Body)
	return &api, nil
}

// FindAPI loads a saved descriptor by name, slug or file path.
func FindAPI(dir, name string) (*APIDescriptor, error) {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		if _, err := os.Stat(name); err == nil {
			return LoadAPI(name)
		}
	}

	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, Slug(name)+ext)
		if _, err := os.Stat(path); err == nil {
			return LoadAPI(path)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAPINotFound, name)
}

// ListAPIs returns the slugs of every saved descriptor in dir.
func ListAPIs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read apis directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// normalizeYAML converts the map[interface{}]interface{} values some YAML
// documents decode into, so bodies look the same as JSON-decoded ones.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return val
	}
}
