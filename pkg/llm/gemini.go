package llm

import (
	"context"
	"fmt"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

var geminiModels = []Model{
	{ID: "gemini-3-pro", Name: "Gemini 3 Pro", Description: "Más potente, multimodal, adaptive thinking", Provider: "google", MaxTokens: 1000000},
	{ID: "gemini-3-flash", Name: "Gemini 3 Flash", Description: "Rendimiento frontier-class, rápido", Provider: "google", MaxTokens: 1000000},
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Description: "Razonamiento complejo, multi-step thinking", Provider: "google", MaxTokens: 1048576},
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Respuestas rápidas y fundamentadas", Provider: "google", MaxTokens: 1048576},
	{ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash Lite", Description: "Bajo costo, alto rendimiento, ligero", Provider: "google", MaxTokens: 1048576},
	{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Description: "Eficiente y rápido, propósito general", Provider: "google", MaxTokens: 1000000},
	{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Description: "Rendimiento equilibrado (legacy)", Provider: "google", MaxTokens: 1000000},
	{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Description: "Rápido y económico (legacy)", Provider: "google", MaxTokens: 1000000},
}

// GeminiClient analyses documents with Google's Gemini models.
type GeminiClient struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint; empty uses the default.
	BaseURL string
	Logger  *zap.Logger
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{APIKey: apiKey, Logger: zap.NewNop()}
}

func (g *GeminiClient) Name() string         { return "gemini" }
func (g *GeminiClient) Models() []Model      { return append([]Model(nil), geminiModels...) }
func (g *GeminiClient) DefaultModel() string { return DefaultGeminiModel }

// Analyze asks the model for a JSON answer and parses it.
func (g *GeminiClient) Analyze(ctx context.Context, content, model, promptTemplate string) (*Result, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w (GOOGLE_API_KEY)", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt := BuildPrompt(promptTemplate, content)
	g.Logger.Debug("calling gemini", zap.String("model", model), zap.Int("prompt_chars", len(prompt)))

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("error al analizar documento: %w", err)
	}

	analysis, err := ParseAnalysis(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("error al analizar documento: %w", err)
	}

	var usage storage.TokenUsage
	if md := resp.UsageMetadata; md != nil {
		usage = storage.TokenUsage{
			PromptTokens:     int(md.PromptTokenCount),
			CompletionTokens: int(md.CandidatesTokenCount),
			TotalTokens:      int(md.TotalTokenCount),
		}
	}

	return &Result{Analysis: *analysis, Usage: usage, Model: model}, nil
}
