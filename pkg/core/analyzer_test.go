package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackcoderx/docuapi/pkg/document"
	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name     string
	analysis storage.Analysis
	err      error

	gotContent string
	gotModel   string
	gotPrompt  string
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) Models() []llm.Model  { return nil }
func (f *fakeProvider) DefaultModel() string { return "" }

func (f *fakeProvider) Analyze(_ context.Context, content, model, prompt string) (*llm.Result, error) {
	f.gotContent, f.gotModel, f.gotPrompt = content, model, prompt
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{
		Analysis: f.analysis,
		Usage:    storage.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		Model:    model,
	}, nil
}

type fakeResolver struct{ p llm.Provider }

func (r fakeResolver) Resolve(string) (llm.Provider, error) { return r.p, nil }

type fakeScraper struct {
	doc *document.Document
	err error
}

func (s fakeScraper) Scrape(context.Context, string) (*document.Document, error) {
	return s.doc, s.err
}

func sampleAnalysis() storage.Analysis {
	return storage.Analysis{
		Summary: "API de licitaciones",
		Credentials: []storage.CredentialMention{
			{Type: "token", Name: "ticket"},
			{Type: "param", Name: "codigo_postal", Description: "Código postal de búsqueda"},
		},
		APIs: []storage.AnalyzedAPI{{
			APIDescriptor: storage.APIDescriptor{
				Name:    "Detalle",
				Method:  "GET",
				URL:     "https://api.example.com/licitaciones/{{numero_licitacion}}",
				Headers: storage.StringMap{"Authorization": "Bearer {{ticket}}"},
			},
		}},
	}
}

func newTestAnalyzer(p llm.Provider, s PageScraper, store storage.AnalysisStore) *Analyzer {
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	a := NewAnalyzer(fakeResolver{p}, s, store)
	a.now = func() time.Time { return fixed }
	a.newID = func() string { return "analysis-1" }
	return a
}

func TestAnalyzer_AnalyzeDocument(t *testing.T) {
	p := &fakeProvider{name: "fake", analysis: sampleAnalysis()}
	store := storage.NewMemoryAnalysisStore()
	a := newTestAnalyzer(p, nil, store)

	rec, err := a.AnalyzeDocument(context.Background(), "api.txt", []byte("GET /licitaciones"), "", "mi prompt {{CONTENT}}")
	require.NoError(t, err)

	assert.Equal(t, "GET /licitaciones", p.gotContent)
	assert.Equal(t, DefaultModel, p.gotModel)
	assert.Equal(t, "mi prompt {{CONTENT}}", p.gotPrompt)

	assert.Equal(t, "analysis-1", rec.ID)
	assert.Equal(t, DefaultModel, rec.ModelUsed)
	assert.Equal(t, 15, rec.TokensUsed.TotalTokens)
	assert.False(t, rec.IsChunked)
	assert.Equal(t, "api.txt", rec.DocumentMetadata.OriginalName)
	assert.True(t, rec.ExpiresAt.After(rec.CreatedAt))

	creds := rec.Analysis.Credentials
	require.Len(t, creds, 2)
	assert.True(t, creds[0].IsCredential)
	assert.Equal(t, "Token de acceso o ticket de autenticación", creds[0].Description)
	assert.Equal(t, "F8537A18-6766-4DEF-9E59-426B4FEE2B44", creds[0].Example)
	assert.False(t, creds[1].IsCredential)
	assert.Equal(t, "Código postal de búsqueda", creds[1].Description)
	assert.Equal(t, "Código identificador", creds[1].Hint)

	require.Len(t, rec.Analysis.APIs, 1)
	vars := rec.Analysis.APIs[0].Variables
	assert.Equal(t, []string{"numero_licitacion", "ticket"}, vars.All)
	assert.Equal(t, []string{"ticket"}, vars.Credentials)
	assert.Equal(t, []string{"numero_licitacion"}, vars.Dynamic)

	stored, err := store.Get(context.Background(), "analysis-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Analysis.APIs[0].Variables, stored.Analysis.APIs[0].Variables)
}

func TestAnalyzer_ChunksLargeDocuments(t *testing.T) {
	p := &fakeProvider{name: "fake", analysis: storage.Analysis{}}
	a := newTestAnalyzer(p, nil, storage.NewMemoryAnalysisStore())

	para := strings.Repeat("a", 80000)
	text := para + "\n\n" + para
	rec, err := a.AnalyzeDocument(context.Background(), "big.txt", []byte(text), "gemini-2.5-flash", "")
	require.NoError(t, err)

	assert.True(t, rec.IsChunked)
	assert.Equal(t, para, p.gotContent)
	assert.Equal(t, "gemini-2.5-flash", rec.ModelUsed)
}

func TestAnalyzer_AnalyzeURL(t *testing.T) {
	p := &fakeProvider{name: "fake", analysis: sampleAnalysis()}
	s := fakeScraper{doc: &document.Document{
		Content:  "documentación web",
		Metadata: storage.DocumentMetadata{Type: document.TypeWeb, URL: "https://docs.example.com"},
	}}
	a := newTestAnalyzer(p, s, storage.NewMemoryAnalysisStore())

	rec, err := a.AnalyzeURL(context.Background(), "https://docs.example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, "documentación web", p.gotContent)
	assert.Equal(t, "https://docs.example.com", rec.DocumentMetadata.URL)
	assert.Len(t, rec.Analysis.APIs[0].Variables.All, 2)
}

func TestAnalyzer_Errors(t *testing.T) {
	boom := errors.New("boom")
	p := &fakeProvider{name: "fake", err: boom}
	store := storage.NewMemoryAnalysisStore()
	a := newTestAnalyzer(p, fakeScraper{err: document.ErrUnsupportedURL}, store)

	_, err := a.AnalyzeDocument(context.Background(), "x.txt", nil, "", "")
	assert.ErrorIs(t, err, ErrNoDocument)

	_, err = a.AnalyzeURL(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrNoURL)

	_, err = a.AnalyzeURL(context.Background(), "ftp://x", "", "")
	assert.ErrorIs(t, err, document.ErrUnsupportedURL)
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "error al hacer scraping de la URL", srcErr.Op)

	_, err = a.AnalyzeDocument(context.Background(), "x.txt", []byte("hola"), "", "")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.As(err, &srcErr))
	assert.Equal(t, 0, store.Len())

	_, err = a.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrAnalysisNotFound)
}
