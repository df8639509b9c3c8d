package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackcoderx/docuapi/pkg/document"
	"github.com/blackcoderx/docuapi/pkg/llm"
	"github.com/blackcoderx/docuapi/pkg/storage"
	"github.com/blackcoderx/docuapi/pkg/variables"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoDocument is returned when an upload carries no file.
	ErrNoDocument = errors.New("no se proporcionó ningún archivo")
	// ErrNoURL is returned when a scrape request carries no URL.
	ErrNoURL = errors.New("no se proporcionó ninguna URL")
)

// SourceError reports that the document or page could not be read, as
// opposed to a failure of the model call.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

// ProviderResolver picks the LLM provider for a model id. *llm.Registry
// implements it.
type ProviderResolver interface {
	Resolve(model string) (llm.Provider, error)
}

// PageScraper fetches a documentation page. *document.Scraper implements it.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (*document.Document, error)
}

// Analyzer turns documents into stored, classified analyses.
type Analyzer struct {
	providers  ProviderResolver
	scraper    PageScraper
	store      storage.AnalysisStore
	classifier *variables.Classifier
	ttl        time.Duration
	model      string
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithAnalyzerLogger sets the analyzer's logger.
func WithAnalyzerLogger(logger *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = logger }
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) AnalyzerOption {
	return func(a *Analyzer) { a.model = model }
}

// WithAnalysisTTL sets how long analyses stay retrievable.
func WithAnalysisTTL(ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) { a.ttl = ttl }
}

// WithClassifier replaces the variable classifier.
func WithClassifier(c *variables.Classifier) AnalyzerOption {
	return func(a *Analyzer) { a.classifier = c }
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(providers ProviderResolver, scraper PageScraper, store storage.AnalysisStore, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		providers:  providers,
		scraper:    scraper,
		store:      store,
		classifier: variables.NewClassifier(variables.DefaultKeywords()),
		ttl:        storage.DefaultAnalysisTTL,
		model:      DefaultModel,
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeDocument extracts the text of an uploaded file and analyses it.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, name string, data []byte, model, customPrompt string) (*storage.AnalysisRecord, error) {
	if len(data) == 0 {
		return nil, ErrNoDocument
	}

	a.logger.Info("processing document", zap.String("name", name), zap.Int("bytes", len(data)))
	doc, err := document.Extract(name, data)
	if err != nil {
		return nil, &SourceError{Op: "error al procesar el documento", Err: err}
	}
	return a.analyze(ctx, doc, model, customPrompt)
}

// AnalyzeURL scrapes a documentation page and analyses it.
func (a *Analyzer) AnalyzeURL(ctx context.Context, url, model, customPrompt string) (*storage.AnalysisRecord, error) {
	if url == "" {
		return nil, ErrNoURL
	}

	a.logger.Info("scraping url", zap.String("url", url))
	doc, err := a.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, &SourceError{Op: "error al hacer scraping de la URL", Err: err}
	}
	return a.analyze(ctx, doc, model, customPrompt)
}

// Get returns a stored analysis.
func (a *Analyzer) Get(ctx context.Context, id string) (*storage.AnalysisRecord, error) {
	return a.store.Get(ctx, id)
}

func (a *Analyzer) analyze(ctx context.Context, doc *document.Document, model, customPrompt string) (*storage.AnalysisRecord, error) {
	if model == "" {
		model = a.model
	}

	content, chunked, chunks := document.Prepare(doc.Content)
	if chunked {
		a.logger.Info("document too large, using first chunk",
			zap.Int("chars", len(doc.Content)),
			zap.Int("chunks", chunks),
		)
	}

	provider, err := a.providers.Resolve(model)
	if err != nil {
		return nil, err
	}

	a.logger.Info("analyzing document",
		zap.String("provider", provider.Name()),
		zap.String("model", model),
		zap.Bool("custom_prompt", customPrompt != ""),
	)
	res, err := provider.Analyze(ctx, content, model, customPrompt)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	rec := &storage.AnalysisRecord{
		ID:               a.newID(),
		DocumentMetadata: doc.Metadata,
		Analysis:         a.Decorate(res.Analysis),
		ModelUsed:        res.Model,
		TokensUsed:       res.Usage,
		IsChunked:        chunked,
		CreatedAt:        now,
		ExpiresAt:        now.Add(a.ttl),
	}
	if err := a.store.Put(ctx, rec, a.ttl); err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}

	a.logger.Info("analysis completed",
		zap.String("id", rec.ID),
		zap.Int("apis", len(rec.Analysis.APIs)),
		zap.Int("credentials", len(rec.Analysis.Credentials)),
		zap.Int("total_tokens", res.Usage.TotalTokens),
	)
	return rec, nil
}

// Decorate classifies the credentials the model reported and attaches
// the detected variables to every API.
func (a *Analyzer) Decorate(in storage.Analysis) storage.Analysis {
	out := storage.Analysis{
		Summary:     in.Summary,
		Credentials: make([]storage.CredentialMention, 0, len(in.Credentials)),
		APIs:        make([]storage.AnalyzedAPI, 0, len(in.APIs)),
	}

	for _, cred := range in.Credentials {
		cred.IsCredential = a.classifier.IsCredential(cred.Name)
		cred.Hint = variables.Description(cred.Name)
		if cred.Description == "" {
			cred.Description = cred.Hint
		}
		cred.Example = variables.Example(cred.Name)
		out.Credentials = append(out.Credentials, cred)
	}

	for _, api := range in.APIs {
		names := variables.DetectAPIVariables(api.APIDescriptor)
		cls := a.classifier.Classify(names)
		api.Variables = storage.APIVariables{
			All:         names,
			Credentials: cls.Credentials,
			Dynamic:     cls.DynamicVariables,
			Unknown:     cls.Unknown,
		}
		out.APIs = append(out.APIs, api)
	}
	return out
}
