package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blackcoderx/docuapi/pkg/storage"
	"go.uber.org/zap"
)

const (
	DefaultClaudeBaseURL = "https://api.anthropic.com"
	DefaultClaudeModel   = "claude-sonnet-4-5-20250929"

	anthropicVersion = "2023-06-01"
	claudeMaxTokens  = 8000
)

var claudeModels = []Model{
	{
		ID:          "claude-sonnet-4-5-20250929",
		Name:        "Claude Sonnet 4.5",
		Description: "El modelo más inteligente, ideal para tareas complejas",
		Provider:    "anthropic",
		MaxTokens:   8000,
	},
	{
		ID:          "claude-haiku-4-5-20251001",
		Name:        "Claude Haiku 4.5",
		Description: "Rápido y eficiente para tareas simples",
		Provider:    "anthropic",
		MaxTokens:   4000,
	},
	{
		ID:          "claude-3-5-sonnet-20241022",
		Name:        "Claude Sonnet 3.5",
		Description: "Equilibrio entre velocidad y calidad",
		Provider:    "anthropic",
		MaxTokens:   8000,
	},
}

// claudeMessage is one turn of a Messages API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type claudeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ClaudeClient handles communication with the Anthropic Messages API.
type ClaudeClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClaudeClient creates a Claude client. An empty baseURL uses the public
// endpoint.
func NewClaudeClient(baseURL, apiKey string) *ClaudeClient {
	if baseURL == "" {
		baseURL = DefaultClaudeBaseURL
	}
	return &ClaudeClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 180 * time.Second,
		},
		Logger: zap.NewNop(),
	}
}

func (c *ClaudeClient) Name() string         { return "claude" }
func (c *ClaudeClient) Models() []Model      { return append([]Model(nil), claudeModels...) }
func (c *ClaudeClient) DefaultModel() string { return DefaultClaudeModel }

// Analyze sends the filled prompt as a single user message.
func (c *ClaudeClient) Analyze(ctx context.Context, content, model, promptTemplate string) (*Result, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("claude: %w (ANTHROPIC_API_KEY)", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultClaudeModel
	}

	text, usage, err := c.complete(ctx, model, BuildPrompt(promptTemplate, content))
	if err != nil {
		return nil, fmt.Errorf("error al analizar documento: %w", err)
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		return nil, fmt.Errorf("error al analizar documento: %w", err)
	}

	return &Result{Analysis: *analysis, Usage: usage, Model: model}, nil
}

func (c *ClaudeClient) complete(ctx context.Context, model, prompt string) (string, storage.TokenUsage, error) {
	var usage storage.TokenUsage

	jsonData, err := json.Marshal(claudeRequest{
		Model:     model,
		MaxTokens: claudeMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", usage, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", c.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", usage, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	c.Logger.Debug("calling claude", zap.String("model", model), zap.Int("prompt_chars", len(prompt)))

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", usage, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr claudeError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", usage, fmt.Errorf("claude (model: %s) returned status %d: %s", model, resp.StatusCode, apiErr.Error.Message)
		}
		return "", usage, fmt.Errorf("claude (model: %s) returned status %d: %s", model, resp.StatusCode, string(body))
	}

	var msg claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return "", usage, fmt.Errorf("failed to decode response: %w", err)
	}

	usage = storage.TokenUsage{
		PromptTokens:     msg.Usage.InputTokens,
		CompletionTokens: msg.Usage.OutputTokens,
		TotalTokens:      msg.Usage.InputTokens + msg.Usage.OutputTokens,
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, usage, nil
		}
	}
	return "", usage, ErrEmptyResponse
}
