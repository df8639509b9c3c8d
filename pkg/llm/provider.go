// Package llm talks to the language models that read API documentation and
// return the credentials and endpoints they describe.
package llm

import (
	"context"
	"errors"

	"github.com/blackcoderx/docuapi/pkg/storage"
)

var (
	// ErrMissingAPIKey is returned when a provider has no key configured.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = errors.New("el modelo no devolvió texto")
)

// Model describes one selectable model.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
	MaxTokens   int    `json:"maxTokens"`
}

// Result is a parsed analysis plus the call's accounting.
type Result struct {
	Analysis storage.Analysis
	Usage    storage.TokenUsage
	Model    string
}

// Provider analyses document text with one vendor's models.
type Provider interface {
	// Name is the short provider name used in configuration ("claude", "gemini").
	Name() string
	// Models lists the models the provider offers.
	Models() []Model
	// DefaultModel is used when the caller does not pick one.
	DefaultModel() string
	// Analyze fills promptTemplate with content, sends it to model and
	// parses the JSON answer. An empty promptTemplate uses DefaultPrompt.
	Analyze(ctx context.Context, content, model, promptTemplate string) (*Result, error)
}
