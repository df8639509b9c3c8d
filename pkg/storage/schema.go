package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// APIDescriptor is an HTTP call discovered in a document. Field names follow
// the JSON the extraction prompt asks the model to return.
type APIDescriptor struct {
	Name                string    `json:"name" yaml:"name"`
	Method              string    `json:"method" yaml:"method"`
	URL                 string    `json:"url" yaml:"url"`
	Headers             StringMap `json:"headers,omitempty" yaml:"headers,omitempty"`
	Params              StringMap `json:"params,omitempty" yaml:"params,omitempty"`
	Body                any       `json:"body,omitempty" yaml:"body,omitempty"`
	RequiredCredentials []string  `json:"requiredCredentials,omitempty" yaml:"requiredCredentials,omitempty"`
	Description         string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// DisplayName returns the descriptor name, or a neutral label when the
// model did not provide one.
func (d APIDescriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return "la API"
}

// StringMap is a header/param map. Models sometimes emit numbers or booleans
// as values, so scalars are accepted and stored in their text form.
type StringMap map[string]string

// UnmarshalJSON implements json.Unmarshaler.
func (m *StringMap) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected an object of strings: %w", err)
	}
	if raw == nil {
		*m = nil
		return nil
	}
	out := make(StringMap, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case float64, bool:
			out[k] = fmt.Sprint(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return err
			}
			out[k] = string(b)
		}
	}
	*m = out
	return nil
}

// Credential is a named value supplied by the user, either a secret or an
// ordinary dynamic variable.
type Credential struct {
	Name        string    `json:"name" yaml:"-"`
	Value       string    `json:"value" yaml:"value"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	SavedAt     time.Time `json:"savedAt,omitempty" yaml:"savedAt,omitempty"`
}

// CredentialMention is a credential the model found in a document.
type CredentialMention struct {
	Type          string  `json:"type"`
	Name          string  `json:"name"`
	Value         *string `json:"value"`
	Description   string  `json:"description,omitempty"`
	AssociatedAPI *string `json:"associatedApi"`

	// Filled in after classification.
	IsCredential bool   `json:"isCredential"`
	Hint         string `json:"hint,omitempty"`
	Example      string `json:"example,omitempty"`
}

// APIVariables groups the placeholders of one descriptor.
type APIVariables struct {
	All         []string `json:"all"`
	Credentials []string `json:"credentials"`
	Dynamic     []string `json:"dynamic"`
	Unknown     []string `json:"unknown,omitempty"`
}

// AnalyzedAPI is a descriptor decorated with its detected variables.
type AnalyzedAPI struct {
	APIDescriptor
	Variables APIVariables `json:"variables"`
}

// Analysis is the structured result of running the extraction prompt.
type Analysis struct {
	Credentials []CredentialMention `json:"credentials"`
	APIs        []AnalyzedAPI       `json:"apis"`
	Summary     string              `json:"summary"`
}

// TokenUsage reports how many tokens a provider call consumed.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// DocumentMetadata describes the source an analysis was produced from.
type DocumentMetadata struct {
	Type         string    `json:"type"`
	OriginalName string    `json:"originalName,omitempty"`
	Size         int64     `json:"size,omitempty"`
	Pages        int       `json:"pages,omitempty"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	Keywords     string    `json:"keywords,omitempty"`
	URL          string    `json:"url,omitempty"`
	ScrapedAt    time.Time `json:"scrapedAt,omitempty"`
}

// AnalysisRecord is what the analysis store keeps, keyed by ID.
type AnalysisRecord struct {
	ID               string           `json:"id"`
	DocumentMetadata DocumentMetadata `json:"documentMetadata"`
	Analysis         Analysis         `json:"analysis"`
	ModelUsed        string           `json:"modelUsed"`
	TokensUsed       TokenUsage       `json:"tokensUsed"`
	IsChunked        bool             `json:"isChunked"`
	CreatedAt        time.Time        `json:"createdAt"`
	ExpiresAt        time.Time        `json:"expiresAt"`
}

// Expired reports whether the record is past its expiry at now.
func (r *AnalysisRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && r.ExpiresAt.Before(now)
}
