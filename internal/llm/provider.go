package llm

import (
	"context"
	"net/http"
)

// Provider is implemented by every vendor backend.
type Provider interface {
	UnderstandImage(ctx context.Context, req ImageRequest) (Completion, error)
	GenerateText(ctx context.Context, req TextRequest) (Completion, error)
}

// ImageRequest asks a vendor to describe a photo of an item.
type ImageRequest struct {
	MediaType      string
	PromptOverride string
	Data           []byte
	Categories     []string
}

// TextRequest asks a vendor for short free text.
type TextRequest struct {
	Prompt       string
	SystemPrompt string
}

// Completion is a vendor reply reduced to the fields every vendor can report.
// Usage counts a vendor does not report are zero. Provider is filled in by the
// Gateway.
type Completion struct {
	Text         string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
}

// Config holds per-call vendor settings.
type Config struct {
	HTTPClient  *http.Client
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

func (c Config) withDefaults(model string, maxTokens int) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = maxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	return c
}
