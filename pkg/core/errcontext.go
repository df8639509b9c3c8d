package core

import (
	"strings"
)

// ErrorContext is what could be read out of a failed API response body.
type ErrorContext struct {
	Message   string   `json:"message,omitempty"`
	ErrorType string   `json:"errorType,omitempty"`
	Fields    []string `json:"fields,omitempty"` // fields named by validation errors
	Details   []string `json:"details,omitempty"`
}

// ExtractErrorContext reads the common error fields out of a decoded
// response payload.
func ExtractErrorContext(payload any) *ErrorContext {
	ctx := &ErrorContext{}
	switch v := payload.(type) {
	case map[string]any:
		ctx.extractFromJSON(v)
	case string:
		ctx.extractFromText(v)
	}
	return ctx
}

// extractFromJSON handles {"message": ...}, {"error": {...}} and the
// FastAPI/Pydantic {"detail": [...]} shapes.
func (ctx *ErrorContext) extractFromJSON(data map[string]any) {
	messageFields := []string{"message", "error", "msg", "detail", "error_description", "mensaje"}
	for _, field := range messageFields {
		if val, ok := data[field]; ok {
			switch v := val.(type) {
			case string:
				if ctx.Message == "" {
					ctx.Message = v
				}
			case map[string]any:
				ctx.extractFromJSON(v)
			}
		}
		if ctx.Message != "" {
			break
		}
	}

	if detail, ok := data["detail"].([]any); ok {
		for _, item := range detail {
			errMap, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if loc, ok := errMap["loc"].([]any); ok {
				for _, l := range loc {
					if s, ok := l.(string); ok && s != "body" {
						ctx.Fields = append(ctx.Fields, s)
						break
					}
				}
			}
			if msg, ok := errMap["msg"].(string); ok {
				ctx.Details = append(ctx.Details, msg)
			}
		}
	}

	if ctx.ErrorType == "" {
		for _, field := range []string{"type", "error_type", "code", "error_code"} {
			if s, ok := data[field].(string); ok {
				ctx.ErrorType = s
				break
			}
		}
	}
}

func (ctx *ErrorContext) extractFromText(text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "Error:") || strings.Contains(line, "Exception:") {
			ctx.Message = line
			if idx := strings.Index(line, ":"); idx > 0 {
				ctx.ErrorType = strings.TrimSpace(line[:idx])
			}
			return
		}
		if strings.HasPrefix(strings.ToLower(line), "error") {
			ctx.Message = line
			return
		}
	}
}

// Empty reports whether nothing useful was found.
func (ctx *ErrorContext) Empty() bool {
	return ctx.Message == "" && ctx.ErrorType == "" && len(ctx.Fields) == 0 && len(ctx.Details) == 0
}

// String renders a one-paragraph summary.
func (ctx *ErrorContext) String() string {
	var parts []string
	if ctx.ErrorType != "" {
		parts = append(parts, ctx.ErrorType)
	}
	if ctx.Message != "" {
		parts = append(parts, ctx.Message)
	}
	if len(ctx.Fields) > 0 {
		parts = append(parts, "campos: "+strings.Join(ctx.Fields, ", "))
	}
	if len(ctx.Details) > 0 {
		parts = append(parts, strings.Join(ctx.Details, "; "))
	}
	return strings.Join(parts, " - ")
}
