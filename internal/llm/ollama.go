package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/thunderdanp/declutter-sub000/internal/common"
)

const ollamaDefaultModel = "llava"

// ollamaClient calls a self-hosted Ollama server. No credential is needed.
type ollamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

func newOllamaClient(cfg Config) (Provider, error) {
	if cfg.BaseURL == "" {
		return nil, &common.ConfigurationError{Provider: ProviderOllama, Reason: "base URL is required"}
	}

	cfg = cfg.withDefaults(ollamaDefaultModel, 1024)

	return &ollamaClient{
		httpClient:  cfg.HTTPClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaRequest struct {
	Options  map[string]any  `json:"options,omitempty"`
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// ollamaResponse carries usage as evaluation counts; either may be absent.
type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
	Done            bool `json:"done"`
}

// UnderstandImage attaches the photo to the user message.
func (c *ollamaClient) UnderstandImage(ctx context.Context, req ImageRequest) (Completion, error) {
	return c.chat(ctx, []ollamaMessage{{
		Role:    "user",
		Content: ImagePrompt(req),
		Images:  []string{base64.StdEncoding.EncodeToString(req.Data)},
	}})
}

// GenerateText sends an optional system message and one user message.
func (c *ollamaClient) GenerateText(ctx context.Context, req TextRequest) (Completion, error) {
	var messages []ollamaMessage
	if req.SystemPrompt != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})
	return c.chat(ctx, messages)
}

func (c *ollamaClient) chat(ctx context.Context, messages []ollamaMessage) (Completion, error) {
	jsonBody, err := json.Marshal(ollamaRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Completion{}, &common.VendorCallError{Provider: ProviderOllama, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, &common.VendorCallError{Provider: ProviderOllama, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return Completion{}, &common.VendorCallError{
			Provider:   ProviderOllama,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var response ollamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Completion{}, &common.ResponseParseError{Err: err, Raw: string(body)}
	}

	model := response.Model
	if model == "" {
		model = c.model
	}

	return Completion{
		Text:         response.Message.Content,
		Model:        model,
		InputTokens:  response.PromptEvalCount,
		OutputTokens: response.EvalCount,
	}, nil
}
