package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// envRefPattern matches {{env:VAR_NAME}}
var envRefPattern = regexp.MustCompile(`\{\{\s*env:([^}]+)\}\}`)

// ErrCredentialNotFound is returned by Delete for unknown names.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore persists credential and variable values in a YAML file.
// Values may reference the process environment with {{env:VAR}}.
type CredentialStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewCredentialStore returns a store backed by the YAML file at path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *CredentialStore) Path() string {
	return s.path
}

func (s *CredentialStore) load() (map[string]Credential, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]Credential{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds := map[string]Credential{}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials YAML: %w", err)
	}
	for name, c := range creds {
		c.Name = name
		creds[name] = c
	}
	return creds, nil
}

func (s *CredentialStore) save(creds map[string]Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// secrets live here, keep the file private
	return os.WriteFile(s.path, data, 0600)
}

// List returns every stored credential sorted by name. Values are returned
// as written, without resolving environment references.
func (s *CredentialStore) List() ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]Credential, 0, len(creds))
	for _, c := range creds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Values returns a name to value map with {{env:VAR}} references resolved.
func (s *CredentialStore) Values() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(creds))
	for name, c := range creds {
		values[name] = ResolveEnvRefs(c.Value)
	}
	return values, nil
}

// Set creates or updates a credential.
func (s *CredentialStore) Set(name, value, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("credential name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return err
	}

	c := creds[name]
	c.Name = name
	c.Value = value
	if description != "" {
		c.Description = description
	}
	c.SavedAt = s.now().UTC()
	creds[name] = c

	return s.save(creds)
}

// Delete removes a credential.
func (s *CredentialStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := creds[name]; !ok {
		return fmt.Errorf("%w: %s", ErrCredentialNotFound, name)
	}
	delete(creds, name)
	return s.save(creds)
}

// ResolveEnvRefs replaces {{env:VAR}} with the value of VAR. References to
// unset variables are kept as written.
func ResolveEnvRefs(text string) string {
	return envRefPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := envRefPattern.FindStringSubmatch(match)
		if val := os.Getenv(strings.TrimSpace(groups[1])); val != "" {
			return val
		}
		return match
	})
}
