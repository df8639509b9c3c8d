package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidAnalysis is returned when the model's answer is not a usable
// analysis document.
var ErrInvalidAnalysis = errors.New("respuesta del modelo inválida")

var (
	jsonFence  = regexp.MustCompile("```json\\n?")
	plainFence = regexp.MustCompile("```\\n?")
)

// analysisSchema accepts partial answers but rejects wrong shapes.
const analysisSchema = `{
  "type": "object",
  "properties": {
    "credentials": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "type": {"type": ["string", "null"]},
          "name": {"type": "string"},
          "value": {"type": ["string", "number", "boolean", "null"]},
          "description": {"type": ["string", "null"]},
          "associatedApi": {"type": ["string", "null"]}
        },
        "required": ["name"]
      }
    },
    "apis": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": ["string", "null"]},
          "method": {"type": ["string", "null"]},
          "url": {"type": ["string", "null"]},
          "headers": {"type": ["object", "null"]},
          "params": {"type": ["object", "null"]},
          "requiredCredentials": {
            "type": ["array", "null"],
            "items": {"type": "string"}
          },
          "description": {"type": ["string", "null"]}
        }
      }
    },
    "summary": {"type": ["string", "null"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(analysisSchema)

// CleanJSON strips markdown code fences from a model answer.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = jsonFence.ReplaceAllString(text, "")
	text = plainFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseAnalysis cleans, validates and decodes a model answer.
func ParseAnalysis(text string) (*storage.Analysis, error) {
	cleaned := CleanJSON(text)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}

	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to validate analysis: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidAnalysis, strings.Join(msgs, "; "))
	}

	normalizeCredentialValues(raw)
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode analysis: %w", err)
	}

	var analysis storage.Analysis
	if err := json.Unmarshal(normalized, &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	if analysis.Credentials == nil {
		analysis.Credentials = []storage.CredentialMention{}
	}
	if analysis.APIs == nil {
		analysis.APIs = []storage.AnalyzedAPI{}
	}
	return &analysis, nil
}

// normalizeCredentialValues turns numeric and boolean credential values
// into strings so they decode into CredentialMention.
func normalizeCredentialValues(raw any) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return
	}
	creds, ok := obj["credentials"].([]any)
	if !ok {
		return
	}
	for _, c := range creds {
		cred, ok := c.(map[string]any)
		if !ok {
			continue
		}
		switch v := cred["value"].(type) {
		case float64, bool:
			cred["value"] = fmt.Sprint(v)
		}
	}
}
