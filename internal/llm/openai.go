package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/thunderdanp/declutter-sub000/internal/common"
)

const (
	openAIDefaultModel = openai.GPT4oMini
	groqDefaultModel   = "llama-3.3-70b-versatile"
	groqDefaultBaseURL = "https://api.groq.com/openai/v1"
)

// openAIClient speaks the OpenAI chat completions protocol. Groq serves the
// same protocol at its own base URL, without image input.
type openAIClient struct {
	client      *openai.Client
	provider    string
	model       string
	temperature float32
	maxTokens   int
	vision      bool
}

func newOpenAIClient(cfg Config) (Provider, error) {
	return newOpenAICompatibleClient(ProviderOpenAI, cfg, openAIDefaultModel, "", true)
}

func newGroqClient(cfg Config) (Provider, error) {
	return newOpenAICompatibleClient(ProviderGroq, cfg, groqDefaultModel, groqDefaultBaseURL, false)
}

func newOpenAICompatibleClient(provider string, cfg Config, model, baseURL string, vision bool) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, &common.ConfigurationError{Provider: provider, Reason: "API key is required"}
	}

	cfg = cfg.withDefaults(model, 1024)

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.HTTPClient = cfg.HTTPClient
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	} else if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &openAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		provider:    provider,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		vision:      vision,
	}, nil
}

// UnderstandImage sends the photo inline as a data URL.
func (c *openAIClient) UnderstandImage(ctx context.Context, req ImageRequest) (Completion, error) {
	if !c.vision {
		return Completion{}, &common.ConfigurationError{Provider: c.provider, Reason: "provider does not support image understanding"}
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MediaType, base64.StdEncoding.EncodeToString(req.Data))

	return c.complete(ctx, []openai.ChatCompletionMessage{{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: ImagePrompt(req)},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailLow},
			},
		},
	}})
}

// GenerateText sends an optional system message and one user message.
func (c *openAIClient) GenerateText(ctx context.Context, req TextRequest) (Completion, error) {
	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	return c.complete(ctx, messages)
}

func (c *openAIClient) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return Completion{}, c.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return Completion{}, &common.ResponseParseError{Err: errors.New("no choices in response")}
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return Completion{
		Text:         resp.Choices[0].Message.Content,
		Model:        model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *openAIClient) wrapError(err error) error {
	callErr := &common.VendorCallError{Provider: c.provider, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		callErr.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		callErr.StatusCode = reqErr.HTTPStatusCode
	}

	return callErr
}
