package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"google.golang.org/api/googleapi"

	"github.com/thunderdanp/declutter-sub000/internal/common"
)

const (
	geminiDefaultModel   = "gemini-2.0-flash"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
)

// geminiClient calls the Gemini generateContent endpoint.
type geminiClient struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

func newGeminiClient(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, &common.ConfigurationError{Provider: ProviderGoogle, Reason: "API key is required"}
	}

	cfg = cfg.withDefaults(geminiDefaultModel, 1024)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}

	return &geminiClient{
		httpClient:  cfg.HTTPClient,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       strings.TrimPrefix(cfg.Model, "models/"),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	InlineData *geminiBlob `json:"inlineData,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

// geminiResponse is the subset of the generateContent reply we read. Usage
// counts are absent on some replies and decode as zero.
type geminiResponse struct {
	ModelVersion string `json:"modelVersion"`
	Candidates   []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// UnderstandImage sends the photo as inline data next to the prompt.
func (c *geminiClient) UnderstandImage(ctx context.Context, req ImageRequest) (Completion, error) {
	return c.generate(ctx, geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: ImagePrompt(req)},
				{InlineData: &geminiBlob{
					MimeType: req.MediaType,
					Data:     base64.StdEncoding.EncodeToString(req.Data),
				}},
			},
		}},
		GenerationConfig: c.generationConfig(),
	})
}

// GenerateText sends the prompt with the system prompt as a system instruction.
func (c *geminiClient) GenerateText(ctx context.Context, req TextRequest) (Completion, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: c.generationConfig(),
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}
	return c.generate(ctx, body)
}

func (c *geminiClient) generationConfig() geminiGenerationConfig {
	return geminiGenerationConfig{Temperature: c.temperature, MaxOutputTokens: c.maxTokens}
}

func (c *geminiClient) generate(ctx context.Context, payload geminiRequest) (Completion, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the key; keep it out of the error text.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return Completion{}, &common.VendorCallError{Provider: ProviderGoogle, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		callErr := &common.VendorCallError{Provider: ProviderGoogle, StatusCode: resp.StatusCode, Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			callErr.Err = errors.New(apiErr.Message)
		}
		return Completion{}, callErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, &common.VendorCallError{Provider: ProviderGoogle, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Completion{}, &common.ResponseParseError{Err: err, Raw: string(body)}
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return Completion{}, &common.ResponseParseError{Err: errors.New("no candidates in response"), Raw: string(body)}
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	model := response.ModelVersion
	if model == "" {
		model = c.model
	}

	return Completion{
		Text:         text.String(),
		Model:        model,
		InputTokens:  response.UsageMetadata.PromptTokenCount,
		OutputTokens: response.UsageMetadata.CandidatesTokenCount,
	}, nil
}
