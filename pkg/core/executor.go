package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/blackcoderx/docuapi/pkg/core/auth"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
)

// DefaultExecutionTimeout bounds a single API call.
const DefaultExecutionTimeout = 30 * time.Second

// FailureKind says why an execution did not succeed.
type FailureKind string

const (
	FailureIncompleteAPI    FailureKind = "incomplete_api"
	FailureMissingVariables FailureKind = "missing_variables"
	FailureRemoteError      FailureKind = "remote_error"
	FailureNoResponse       FailureKind = "no_response"
	FailureRequestInvalid   FailureKind = "request_invalid"
)

// User-facing failure messages.
const (
	msgIncompleteAPI    = "Datos de API incompletos"
	msgMissingVariables = "Faltan variables requeridas"
	msgNoResponse       = "No se recibió respuesta del servidor"
	msgRequestInvalid   = "Error al configurar la petición"
)

// ResponseData is the technical half of an execution outcome.
type ResponseData struct {
	Status        int               `json:"status,omitempty"`
	StatusText    string            `json:"statusText,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	Data          any               `json:"data,omitempty"`
	ExecutionTime int64             `json:"executionTime"` // milliseconds
	Timestamp     time.Time         `json:"timestamp"`
	KeyData       *KeyData          `json:"keyData,omitempty"`
	Error         string            `json:"error,omitempty"`
	Details       string            `json:"details,omitempty"`
}

// Outcome is the result of executing one API descriptor. Every failure is
// reported here; Execute never returns an error or panics.
type Outcome struct {
	Success      bool          `json:"success"`
	HumanMessage string        `json:"humanMessage,omitempty"`
	StatusText   string        `json:"statusText,omitempty"`
	Data         *ResponseData `json:"data,omitempty"`
	Failure      FailureKind   `json:"failure,omitempty"`
	Error        string        `json:"error,omitempty"`
	Missing      []string      `json:"missing,omitempty"`
}

// Executor issues the HTTP calls described by API descriptors.
type Executor struct {
	client *resty.Client
	logger *zap.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the executor's logger.
func WithExecutorLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger == nil {
			return
		}
		e.logger = logger
		e.client.SetLogger(logger.Sugar())
	}
}

// WithExecutionTimeout overrides the per-call timeout.
func WithExecutionTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.client.SetTimeout(d)
		}
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) ExecutorOption {
	return func(e *Executor) {
		e.client.SetTransport(rt)
	}
}

// NewExecutor creates an executor with a 30 second timeout.
func NewExecutor(opts ...ExecutorOption) *Executor {
	logger := zap.NewNop()
	e := &Executor{
		client: resty.New().
			SetTimeout(DefaultExecutionTimeout).
			SetLogger(logger.Sugar()),
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var methodPattern = regexp.MustCompile(`^[A-Za-z]+$`)

var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// Execute validates, fills and sends one API call. credentials and
// variables are merged into a single name to value map, variables winning
// on conflicts.
func (e *Executor) Execute(ctx context.Context, api storage.APIDescriptor, credentials, vars map[string]string) Outcome {
	if strings.TrimSpace(api.URL) == "" || strings.TrimSpace(api.Method) == "" {
		return Outcome{Failure: FailureIncompleteAPI, Error: msgIncompleteAPI}
	}

	values := make(map[string]string, len(credentials)+len(vars))
	for k, v := range credentials {
		values[k] = v
	}
	for k, v := range vars {
		values[k] = v
	}

	check := variables.ValidateVariables(api, values)
	if !check.Valid {
		return Outcome{
			Failure:      FailureMissingVariables,
			Error:        msgMissingVariables,
			HumanMessage: fmt.Sprintf("⚠️ Faltan valores para: %s", strings.Join(check.Missing, ", ")),
			Missing:      check.Missing,
		}
	}

	filled := variables.ReplaceAPIVariables(api, values)
	filled.Headers = auth.InjectCredentials(filled.Headers, filled.RequiredCredentials, values)
	filled.Body = injectBodyCredentials(filled.Body, credentials)

	req, method, err := e.prepare(ctx, filled)
	if err != nil {
		return invalidRequest(err)
	}

	e.logger.Debug("executing api",
		zap.String("api", filled.DisplayName()),
		zap.String("method", method),
		zap.String("url", filled.URL),
		zap.Int("headers", len(filled.Headers)),
		zap.Bool("has_params", len(filled.Params) > 0),
	)

	start := time.Now()
	resp, err := req.Execute(method, filled.URL)
	elapsed := time.Since(start)
	if err != nil {
		e.logger.Warn("api call got no response", zap.String("url", filled.URL), zap.Error(err))
		return Outcome{
			Failure:      FailureNoResponse,
			Error:        msgNoResponse,
			HumanMessage: "❌ " + msgNoResponse + ". Revisa tu conexión o que la URL sea accesible.",
			Data: &ResponseData{
				Error:         msgNoResponse,
				Details:       err.Error(),
				ExecutionTime: elapsed.Milliseconds(),
				Timestamp:     time.Now().UTC(),
			},
		}
	}

	status := resp.StatusCode()
	payload := decodePayload(resp.Body())
	tr := Translate(status, payload, filled)

	data := &ResponseData{
		Status:        status,
		StatusText:    http.StatusText(status),
		Headers:       flattenHeaders(resp.Header()),
		Data:          payload,
		ExecutionTime: elapsed.Milliseconds(),
		Timestamp:     time.Now().UTC(),
		KeyData:       tr.KeyData,
	}

	out := Outcome{
		Success:      tr.Success,
		HumanMessage: tr.HumanMessage,
		StatusText:   tr.StatusText,
		Data:         data,
	}
	if !tr.Success {
		out.Failure = FailureRemoteError
		out.Error = fmt.Sprintf("API respondió con error %d", status)
		data.Error = out.Error
		if ec := ExtractErrorContext(payload); !ec.Empty() {
			data.Details = ec.String()
		}
	}

	e.logger.Info("api executed",
		zap.String("api", filled.DisplayName()),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)
	return out
}

// prepare builds the resty request, or fails if the call cannot be built.
func (e *Executor) prepare(ctx context.Context, api storage.APIDescriptor) (*resty.Request, string, error) {
	method := strings.ToUpper(strings.TrimSpace(api.Method))
	if !methodPattern.MatchString(method) {
		return nil, "", fmt.Errorf("invalid HTTP method %q", api.Method)
	}

	u, err := url.Parse(api.URL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, "", fmt.Errorf("url %q has no host", api.URL)
	}

	for name, value := range api.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, "", fmt.Errorf("invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, "", fmt.Errorf("invalid value for header %q", name)
		}
	}

	req := e.client.R().SetContext(ctx)
	if len(api.Headers) > 0 {
		req.SetHeaders(api.Headers)
	}
	if len(api.Params) > 0 {
		req.SetQueryParams(api.Params)
	}

	if bodyMethods[method] && !variables.BodyIsEmpty(api.Body) {
		raw, contentType, err := encodeBody(api.Body)
		if err != nil {
			return nil, "", err
		}
		if !hasHeader(api.Headers, "Content-Type") {
			req.SetHeader("Content-Type", contentType)
		}
		req.SetBody(raw)
	}

	return req, method, nil
}

func invalidRequest(err error) Outcome {
	return Outcome{
		Failure:      FailureRequestInvalid,
		Error:        msgRequestInvalid,
		HumanMessage: "❌ " + msgRequestInvalid + ". Revisa la URL, el método y el body de la API.",
		Data: &ResponseData{
			Error:     msgRequestInvalid,
			Details:   err.Error(),
			Timestamp: time.Now().UTC(),
		},
	}
}

// encodeBody serialises a body. String bodies are sent verbatim.
func encodeBody(body any) ([]byte, string, error) {
	if s, ok := body.(string); ok {
		if json.Valid([]byte(s)) {
			return []byte(s), "application/json", nil
		}
		return []byte(s), "text/plain; charset=utf-8", nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal body: %w", err)
	}
	return raw, "application/json", nil
}

// injectBodyCredentials overwrites top-level body fields that are named
// after a supplied credential and already carry a value.
func injectBodyCredentials(body any, credentials map[string]string) any {
	obj, ok := body.(map[string]any)
	if !ok || len(credentials) == 0 {
		return body
	}
	for name, value := range credentials {
		if value == "" {
			continue
		}
		if current, exists := obj[name]; exists && !variables.BodyIsEmpty(current) {
			obj[name] = value
		}
	}
	return obj
}

// decodePayload parses JSON bodies and falls back to the raw text.
func decodePayload(body []byte) any {
	if len(body) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		headers[key] = strings.Join(values, ", ")
	}
	return headers
}

func hasHeader(headers storage.StringMap, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
