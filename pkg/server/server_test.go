package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blackcoderx/docuapi/pkg/core"
	"github.com/blackcoderx/docuapi/pkg/document"
	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) Name() string         { return "stub" }
func (stubProvider) DefaultModel() string { return "stub-1" }
func (stubProvider) Models() []llm.Model {
	return []llm.Model{
		{ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", Provider: "anthropic"},
		{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: "gemini"},
	}
}

func (stubProvider) Analyze(_ context.Context, _, model, _ string) (*llm.Result, error) {
	return &llm.Result{
		Analysis: storage.Analysis{
			Summary:     "API de prueba",
			Credentials: []storage.CredentialMention{{Type: "token", Name: "ticket"}},
			APIs: []storage.AnalyzedAPI{{APIDescriptor: storage.APIDescriptor{
				Name:   "Buscar",
				Method: "GET",
				URL:    "https://api.example.com/items/{{item_id}}?ticket={{ticket}}",
			}}},
		},
		Usage: storage.TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		Model: model,
	}, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(string) (llm.Provider, error) { return stubProvider{}, nil }

type stubScraper struct{}

func (stubScraper) Scrape(_ context.Context, url string) (*document.Document, error) {
	if !strings.HasPrefix(url, "http") {
		return nil, document.ErrUnsupportedURL
	}
	return &document.Document{
		Content:  "GET /items",
		Metadata: storage.DocumentMetadata{Type: document.TypeWeb, URL: url},
	}, nil
}

type recordingRunner struct {
	mu    sync.Mutex
	calls []storage.APIDescriptor
	creds []map[string]string
	vars  []map[string]string
	out   core.Outcome
}

func (r *recordingRunner) Execute(_ context.Context, api storage.APIDescriptor, creds, vars map[string]string) core.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, api)
	r.creds = append(r.creds, creds)
	r.vars = append(r.vars, vars)
	return r.out
}

func newTestServer(t *testing.T, runner core.Runner, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	analyzer := core.NewAnalyzer(stubResolver{}, stubScraper{}, storage.NewMemoryAnalysisStore())
	if runner == nil {
		runner = &recordingRunner{out: core.Outcome{Success: true}}
	}
	return New(analyzer, runner, stubProvider{}, opts)
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w, decode(t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return out
}

func uploadRequest(t *testing.T, filename, contentType, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	w, body := do(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "DocuAPI Intelligence Backend is running", body["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, body = do(t, s.Handler(), http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "Route not found", errObj["message"])
	assert.EqualValues(t, 404, errObj["status"])
}

func TestListModels(t *testing.T) {
	s := newTestServer(t, nil, Options{})
	w, body := do(t, s.Handler(), http.MethodGet, "/api/documents/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	models := body["models"].([]any)
	require.Len(t, models, 2)
	assert.Equal(t, "anthropic", models[0].(map[string]any)["provider"])
}

func TestUploadAndFetchAnalysis(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	req := uploadRequest(t, "api.txt", "text/plain", "GET https://api.example.com/items", map[string]string{
		"model": "gemini-2.5-flash",
	})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	id, _ := body["analysisId"].(string)
	require.NotEmpty(t, id)

	data := body["data"].(map[string]any)
	assert.Equal(t, "API de prueba", data["summary"])
	meta := data["metadata"].(map[string]any)
	assert.Equal(t, "gemini-2.5-flash", meta["model"])
	assert.Equal(t, false, meta["isChunked"])
	assert.Equal(t, "api.txt", meta["document"].(map[string]any)["originalName"])

	apis := data["apis"].([]any)
	require.Len(t, apis, 1)
	vars := apis[0].(map[string]any)["variables"].(map[string]any)
	assert.Equal(t, []any{"item_id", "ticket"}, vars["all"])
	assert.Equal(t, []any{"ticket"}, vars["credentials"])

	creds := data["credentials"].([]any)
	assert.Equal(t, true, creds[0].(map[string]any)["isCredential"])

	w, body = do(t, s.Handler(), http.MethodGet, "/api/documents/analysis/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["data"].(map[string]any)["id"])

	w, body = do(t, s.Handler(), http.MethodGet, "/api/documents/analysis/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Análisis no encontrado o expirado", body["error"])
}

func TestUploadRejects(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	tests := []struct {
		name    string
		req     *http.Request
		message string
	}{
		{
			name:    "no file",
			req:     uploadRequest(t, "", "", "", map[string]string{"model": "x"}),
			message: "No se proporcionó ningún archivo",
		},
		{
			name:    "image",
			req:     uploadRequest(t, "logo.png", "image/png", "\x89PNG", nil),
			message: "Tipo de archivo no soportado. Solo PDF, DOCX y TXT permitidos.",
		},
		{
			name:    "empty text",
			req:     uploadRequest(t, "empty.txt", "text/plain", "", nil),
			message: "Error al procesar el documento",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, decode(t, w)["error"])
		})
	}
}

func TestScrape(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	w, body := do(t, s.Handler(), http.MethodPost, "/api/documents/scrape", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No se proporcionó ninguna URL", body["error"])

	w, body = do(t, s.Handler(), http.MethodPost, "/api/documents/scrape", map[string]string{"url": "ftp://docs"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "solo se permiten URLs HTTP o HTTPS")

	w, body = do(t, s.Handler(), http.MethodPost, "/api/documents/scrape", map[string]string{"url": "https://docs.example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	meta := body["data"].(map[string]any)["metadata"].(map[string]any)
	assert.Equal(t, "https://docs.example.com", meta["document"].(map[string]any)["url"])
}

func TestExecuteAPI(t *testing.T) {
	runner := &recordingRunner{out: core.Outcome{Success: true, HumanMessage: "✅ Listo"}}
	s := newTestServer(t, runner, Options{})

	w, body := do(t, s.Handler(), http.MethodPost, "/api/execute/api", gin.H{
		"api": gin.H{"name": "Buscar", "method": "GET", "url": "https://api.example.com/items/{{id}}"},
		"credentials": []gin.H{
			{"name": "api_key", "value": "secret"},
			{"name": "pin", "value": 1234},
			{"name": "empty", "value": nil},
		},
		"variables": gin.H{"id": "7"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "✅ Listo", body["humanMessage"])

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "Buscar", runner.calls[0].Name)
	assert.Equal(t, map[string]string{"api_key": "secret", "pin": "1234"}, runner.creds[0])
	assert.Equal(t, map[string]string{"id": "7"}, runner.vars[0])

	w, body = do(t, s.Handler(), http.MethodPost, "/api/execute/api", gin.H{"credentials": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Datos de API incompletos", body["error"])
}

func TestExecuteAPI_NumericVariables(t *testing.T) {
	runner := &recordingRunner{out: core.Outcome{Success: true}}
	s := newTestServer(t, runner, Options{})

	w, _ := do(t, s.Handler(), http.MethodPost, "/api/execute/api", gin.H{
		"api":       gin.H{"method": "GET", "url": "https://api.example.com/items/{{id}}"},
		"variables": gin.H{"id": 7, "page": 2.5, "activo": true, "vacio": nil},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, runner.vars, 1)
	assert.Equal(t, map[string]string{"id": "7", "page": "2.5", "activo": "true"}, runner.vars[0])
}

func TestExecuteAPI_FailuresStayOK(t *testing.T) {
	runner := &recordingRunner{out: core.Outcome{
		Failure: core.FailureRemoteError,
		Error:   "Unauthorized",
		Data:    &core.ResponseData{Status: 401, Error: "Unauthorized"},
	}}
	s := newTestServer(t, runner, Options{})

	w, body := do(t, s.Handler(), http.MethodPost, "/api/execute/api", gin.H{
		"api": gin.H{"method": "GET", "url": "https://api.example.com"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "remote_error", body["failure"])

	runner.out = core.Outcome{Failure: core.FailureIncompleteAPI, Error: "Datos de API incompletos"}
	w, _ = do(t, s.Handler(), http.MethodPost, "/api/execute/api", gin.H{"api": gin.H{"url": ""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteBatch(t *testing.T) {
	runner := &recordingRunner{out: core.Outcome{Success: true}}
	s := newTestServer(t, runner, Options{})

	w, body := do(t, s.Handler(), http.MethodPost, "/api/execute/batch", gin.H{"apis": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Se requiere un array de APIs", body["error"])

	w, body = do(t, s.Handler(), http.MethodPost, "/api/execute/batch", gin.H{
		"apis": []gin.H{
			{"name": "uno", "method": "GET", "url": "https://a.example.com"},
			{"name": "dos", "method": "GET", "url": "https://b.example.com"},
		},
		"credentials": []gin.H{{"name": "token", "value": "t"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 2, data["successful"])
	assert.EqualValues(t, 0, data["failed"])

	results := data["results"].([]any)
	assert.Equal(t, "dos", results[1].(map[string]any)["api"])
	assert.EqualValues(t, 1, results[1].(map[string]any)["index"])
	assert.Len(t, runner.calls, 2)
	assert.Equal(t, "t", runner.creds[1]["token"])
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	w, body := do(t, s.Handler(), http.MethodPost, "/api/execute/validate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No se proporcionó API para validar", body["error"])

	w, body = do(t, s.Handler(), http.MethodPost, "/api/execute/validate", gin.H{
		"api": gin.H{"method": "FETCH", "url": "/relative/{{id}}"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, false, body["isValid"])
	assert.Len(t, body["issues"], 2)
	vars := body["variables"].(map[string]any)
	assert.Equal(t, []any{"id"}, vars["missing"])

	w, body = do(t, s.Handler(), http.MethodPost, "/api/execute/validate", gin.H{
		"api":         gin.H{"method": "GET", "url": "https://api.example.com/{{id}}", "headers": gin.H{"Accept": "application/json"}},
		"credentials": []gin.H{{"name": "id", "value": 5}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["isValid"])
	assert.Equal(t, true, body["variables"].(map[string]any)["valid"])
}

func TestDetectVariables(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	w, body := do(t, s.Handler(), http.MethodPost, "/api/variables/detect", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(t, s.Handler(), http.MethodPost, "/api/variables/detect", gin.H{
		"text": "GET /licitaciones/{{codigo}}?ticket={{ticket}}",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, []any{"codigo", "ticket"}, data["variables"])
	cls := data["classification"].(map[string]any)
	assert.Equal(t, []any{"ticket"}, cls["credentials"])
	assert.Equal(t, []any{"codigo"}, cls["dynamicVariables"])
}

func TestDefaultPrompt(t *testing.T) {
	s := newTestServer(t, nil, Options{})

	_, body := do(t, s.Handler(), http.MethodGet, "/api/prompts/default", nil)
	assert.Equal(t, "claude", body["provider"])
	assert.Equal(t, llm.DefaultPrompt, body["prompt"])

	_, body = do(t, s.Handler(), http.MethodGet, "/api/prompts/default?provider=gemini", nil)
	assert.Equal(t, "gemini", body["provider"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil, Options{AllowedOrigins: []string{"https://app.example.com"}})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.example.com", true},
		{"https://docuapi-intelligence-git-main.vercel.app", true},
		{"https://evil.example.com", false},
		{"https://docuapi-intelligence.vercel.app.evil.com", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, tt.origin)
		if tt.allowed {
			assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		} else {
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), tt.origin)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/execute/api", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t, nil, Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil, Options{RateLimit: 2, RateWindow: time.Hour})

	for i := 0; i < 2; i++ {
		w, _ := do(t, s.Handler(), http.MethodGet, "/api/documents/models", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w, body := do(t, s.Handler(), http.MethodGet, "/api/documents/models", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// health is outside the limited group
	w, _ = do(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_RefillsAndSweeps(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, left := rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, left)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.False(t, ok)

	ok, _ = rl.Allow("b")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	assert.Len(t, rl.clients, 1)
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/echo", BodyLimit(8), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("this body is too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil, Options{Port: 39187})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
