package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownProvider is returned for a provider name no one registered.
var ErrUnknownProvider = errors.New("proveedor desconocido")

type route struct {
	pattern  *regexp.Regexp
	provider Provider
}

// Registry picks the provider that serves a model id. Routes are checked in
// registration order; models that match none go to the fallback provider.
type Registry struct {
	routes   []route
	byName   map[string]Provider
	order    []string
	fallback Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Provider{}}
}

// Register routes model ids matching pattern to p. The first registered
// provider becomes the fallback.
func (r *Registry) Register(pattern string, p Provider) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid model pattern %q: %w", pattern, err)
	}
	r.routes = append(r.routes, route{pattern: re, provider: p})
	if _, ok := r.byName[p.Name()]; !ok {
		r.byName[p.Name()] = p
		r.order = append(r.order, p.Name())
	}
	if r.fallback == nil {
		r.fallback = p
	}
	return nil
}

// SetFallback sets the provider for unmatched model ids.
func (r *Registry) SetFallback(p Provider) {
	r.fallback = p
}

// Resolve returns the provider for model. An empty model resolves to the
// fallback provider.
func (r *Registry) Resolve(model string) (Provider, error) {
	for _, rt := range r.routes {
		if model != "" && rt.pattern.MatchString(model) {
			return rt.provider, nil
		}
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("%w: ninguno registrado", ErrUnknownProvider)
	}
	return r.fallback, nil
}

// ByName returns a provider by its configured name. An empty name gives
// the fallback.
func (r *Registry) ByName(name string) (Provider, error) {
	if name == "" {
		if r.fallback == nil {
			return nil, fmt.Errorf("%w: ninguno registrado", ErrUnknownProvider)
		}
		return r.fallback, nil
	}
	if p, ok := r.byName[strings.ToLower(name)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// Models lists every registered provider's models.
func (r *Registry) Models() []Model {
	var out []Model
	for _, name := range r.order {
		out = append(out, r.byName[name].Models()...)
	}
	return out
}

// NewDefaultRegistry wires Claude and Gemini. Gemini serves "gemini-*"
// model ids; everything else goes to Claude.
func NewDefaultRegistry(claude *ClaudeClient, gemini *GeminiClient) *Registry {
	r := NewRegistry()
	_ = r.Register(`^claude-`, claude)
	_ = r.Register(`^gemini-`, gemini)
	return r
}
