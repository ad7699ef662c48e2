package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thunderdanp/declutter-sub000/internal/usage"
)

// Vendor identifiers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderGroq      = "groq"
	ProviderOllama    = "ollama"
)

// ProviderInfo is the static metadata of a vendor.
type ProviderInfo struct {
	ModelRates      map[string]usage.Rates
	ID              string
	DisplayName     string
	DefaultModel    string
	KeyEnv          string
	BaseURLEnv      string
	Rates           usage.Rates
	RequiresKey     bool
	RequiresBaseURL bool
	SupportsVision  bool
}

// RatesFor returns the pricing for a model, falling back to the vendor default.
func (p ProviderInfo) RatesFor(model string) usage.Rates {
	if r, ok := p.ModelRates[model]; ok {
		return r
	}
	return p.Rates
}

// Constructor builds a vendor client for one call.
type Constructor func(cfg Config) (Provider, error)

// Registration pairs vendor metadata with its constructor.
type Registration struct {
	New  Constructor
	Info ProviderInfo
}

// Registry maps vendor identifiers to registrations.
type Registry struct {
	entries map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds a vendor. Identifiers are case-insensitive and must be unique.
func (r *Registry) Register(reg Registration) error {
	id := strings.ToLower(reg.Info.ID)
	if id == "" || reg.New == nil {
		return fmt.Errorf("provider registration requires an id and a constructor")
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("provider %s already registered", id)
	}
	reg.Info.ID = id
	r.entries[id] = reg
	return nil
}

// Lookup returns the registration for id.
func (r *Registry) Lookup(id string) (Registration, bool) {
	reg, ok := r.entries[strings.ToLower(id)]
	return reg, ok
}

// List returns all vendor metadata sorted by id.
func (r *Registry) List() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(r.entries))
	for _, reg := range r.entries {
		infos = append(infos, reg.Info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// DefaultRegistry returns a registry holding every built-in vendor.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, reg := range builtinProviders() {
		if err := r.Register(reg); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinProviders() []Registration {
	return []Registration{
		{
			Info: ProviderInfo{
				ID:           ProviderAnthropic,
				DisplayName:  "Anthropic Claude",
				DefaultModel: anthropicDefaultModel,
				KeyEnv:       "ANTHROPIC_API_KEY",
				Rates:        usage.Rates{InputPerMillion: 0.80, OutputPerMillion: 4.00},
				ModelRates: map[string]usage.Rates{
					"claude-sonnet-4-20250514": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
					"claude-3-5-sonnet-latest": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
				},
				RequiresKey:    true,
				SupportsVision: true,
			},
			New: newAnthropicClient,
		},
		{
			Info: ProviderInfo{
				ID:           ProviderOpenAI,
				DisplayName:  "OpenAI",
				DefaultModel: openAIDefaultModel,
				KeyEnv:       "OPENAI_API_KEY",
				Rates:        usage.Rates{InputPerMillion: 0.15, OutputPerMillion: 0.60},
				ModelRates: map[string]usage.Rates{
					"gpt-4o":       {InputPerMillion: 2.50, OutputPerMillion: 10.00},
					"gpt-4.1":      {InputPerMillion: 2.00, OutputPerMillion: 8.00},
					"gpt-4.1-mini": {InputPerMillion: 0.40, OutputPerMillion: 1.60},
				},
				RequiresKey:    true,
				SupportsVision: true,
			},
			New: newOpenAIClient,
		},
		{
			Info: ProviderInfo{
				ID:           ProviderGoogle,
				DisplayName:  "Google Gemini",
				DefaultModel: geminiDefaultModel,
				KeyEnv:       "GOOGLE_API_KEY",
				Rates:        usage.Rates{InputPerMillion: 0.10, OutputPerMillion: 0.40},
				ModelRates: map[string]usage.Rates{
					"gemini-1.5-pro": {InputPerMillion: 1.25, OutputPerMillion: 5.00},
					"gemini-2.5-pro": {InputPerMillion: 1.25, OutputPerMillion: 10.00},
				},
				RequiresKey:    true,
				SupportsVision: true,
			},
			New: newGeminiClient,
		},
		{
			Info: ProviderInfo{
				ID:           ProviderGroq,
				DisplayName:  "Groq",
				DefaultModel: groqDefaultModel,
				KeyEnv:       "GROQ_API_KEY",
				Rates:        usage.Rates{InputPerMillion: 0.59, OutputPerMillion: 0.79},
				RequiresKey:  true,
			},
			New: newGroqClient,
		},
		{
			Info: ProviderInfo{
				ID:              ProviderOllama,
				DisplayName:     "Ollama (self-hosted)",
				DefaultModel:    ollamaDefaultModel,
				BaseURLEnv:      "OLLAMA_BASE_URL",
				RequiresBaseURL: true,
				SupportsVision:  true,
			},
			New: newOllamaClient,
		},
	}
}
