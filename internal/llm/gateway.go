package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/usage"
)

// Ledger gates system-funded calls and records every attempt.
type Ledger interface {
	Check(ctx context.Context, userID int64, limits usage.Limits) error
	Record(ctx context.Context, record *model.UsageRecord, rates usage.Rates) error
}

// Caller identifies the user a call is made for and their own credential, if any.
type Caller struct {
	APIKey            string
	PreferredProvider string
	UserID            int64
}

// Settings is the system vendor configuration a call is resolved against.
type Settings struct {
	APIKeys         map[string]string
	BaseURLs        map[string]string
	Models          map[string]string
	DefaultProvider string
	Limits          usage.Limits
}

// Resolution is the vendor and credential chosen for one call.
type Resolution struct {
	New     Constructor
	APIKey  string
	BaseURL string
	Model   string
	Info    ProviderInfo
	OwnKey  bool
}

// GatewayConfig tunes vendor calls.
type GatewayConfig struct {
	HTTPClient        *http.Client
	Timeout           time.Duration
	BreakerCooldown   time.Duration
	Temperature       float64
	RequestsPerMinute int
	MaxTokens         int
	BreakerFailures   uint32
}

// Gateway dispatches calls to registered vendors.
type Gateway struct {
	registry *Registry
	ledger   Ledger
	limiter  *rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker[Completion]
	getenv   func(string) string
	logger   *slog.Logger
	cfg      GatewayConfig
	mu       sync.Mutex
}

// NewGateway creates a gateway over registry. Calls are recorded in ledger.
func NewGateway(registry *Registry, ledger Ledger, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	return &Gateway{
		registry: registry,
		ledger:   ledger,
		limiter:  newRateLimiter(cfg.RequestsPerMinute),
		breakers: make(map[string]*gobreaker.CircuitBreaker[Completion]),
		getenv:   os.Getenv,
		logger:   common.LoggerOrDefault(logger),
		cfg:      cfg,
	}
}

// Providers lists the registered vendors.
func (g *Gateway) Providers() []ProviderInfo {
	return g.registry.List()
}

// Resolve picks the vendor and credential for a call: the caller's own key
// with their preferred vendor, then the default vendor with its stored key,
// then the default vendor with its environment key, then any vendor that
// needs no key and has a base URL. An own key whose vendor cannot be used
// falls through to the system chain.
func (g *Gateway) Resolve(caller Caller, settings Settings) (Resolution, error) {
	if caller.APIKey != "" {
		res, err := g.resolveOwnKey(caller, settings)
		if err == nil {
			return res, nil
		}
		g.logger.Warn("own API key not usable, falling back to system vendor",
			"user_id", caller.UserID,
			"preferred_provider", caller.PreferredProvider,
			"error", err)
	}

	res, err := g.resolveSystem(settings.DefaultProvider, settings)
	if err == nil {
		return res, nil
	}

	if fallback, ok := g.keylessFallback(settings); ok {
		g.logger.Info("default vendor unavailable, using keyless vendor",
			"default_provider", settings.DefaultProvider,
			"provider", fallback.Info.ID,
			"reason", err)
		return fallback, nil
	}
	return Resolution{}, err
}

func (g *Gateway) resolveOwnKey(caller Caller, settings Settings) (Resolution, error) {
	id := caller.PreferredProvider
	if id == "" {
		id = settings.DefaultProvider
	}
	res, err := g.lookup(id, settings)
	if err != nil {
		return Resolution{}, err
	}
	if res.Info.RequiresBaseURL && res.BaseURL == "" {
		return Resolution{}, &common.ConfigurationError{Provider: res.Info.ID, Reason: "base URL is required"}
	}
	res.APIKey = caller.APIKey
	res.OwnKey = true
	return res, nil
}

func (g *Gateway) resolveSystem(id string, settings Settings) (Resolution, error) {
	res, err := g.lookup(id, settings)
	if err != nil {
		return Resolution{}, err
	}

	if res.Info.RequiresBaseURL && res.BaseURL == "" {
		return Resolution{}, &common.ConfigurationError{Provider: res.Info.ID, Reason: "base URL is required"}
	}

	if res.Info.RequiresKey {
		key := settings.APIKeys[res.Info.ID]
		if key == "" && res.Info.KeyEnv != "" {
			key = g.getenv(res.Info.KeyEnv)
		}
		if key == "" {
			return Resolution{}, &common.ConfigurationError{Provider: res.Info.ID, Reason: "no credential available"}
		}
		res.APIKey = key
	}

	return res, nil
}

// keylessFallback returns the first vendor, by id, that needs no key and has
// a base URL configured.
func (g *Gateway) keylessFallback(settings Settings) (Resolution, bool) {
	for _, info := range g.registry.List() {
		if info.RequiresKey {
			continue
		}
		res, err := g.lookup(info.ID, settings)
		if err != nil || res.BaseURL == "" {
			continue
		}
		return res, true
	}
	return Resolution{}, false
}

func (g *Gateway) lookup(id string, settings Settings) (Resolution, error) {
	if id == "" {
		return Resolution{}, &common.ConfigurationError{Reason: "no provider configured"}
	}

	reg, ok := g.registry.Lookup(id)
	if !ok {
		return Resolution{}, &common.ConfigurationError{Provider: id, Reason: "unknown provider"}
	}

	res := Resolution{
		Info:    reg.Info,
		New:     reg.New,
		Model:   settings.Models[reg.Info.ID],
		BaseURL: settings.BaseURLs[reg.Info.ID],
	}
	if res.Model == "" {
		res.Model = reg.Info.DefaultModel
	}
	if res.BaseURL == "" && reg.Info.BaseURLEnv != "" {
		res.BaseURL = g.getenv(reg.Info.BaseURLEnv)
	}

	return res, nil
}

// UnderstandImage describes an item photo.
func (g *Gateway) UnderstandImage(ctx context.Context, caller Caller, settings Settings, req ImageRequest) (Completion, error) {
	return g.invoke(ctx, caller, settings, model.EndpointAnalyzeImage, true, func(ctx context.Context, p Provider) (Completion, error) {
		return p.UnderstandImage(ctx, req)
	})
}

// GenerateText produces short free text.
func (g *Gateway) GenerateText(ctx context.Context, caller Caller, settings Settings, req TextRequest) (Completion, error) {
	return g.invoke(ctx, caller, settings, model.EndpointExplain, false, func(ctx context.Context, p Provider) (Completion, error) {
		return p.GenerateText(ctx, req)
	})
}

func (g *Gateway) invoke(
	ctx context.Context,
	caller Caller,
	settings Settings,
	endpoint string,
	vision bool,
	call func(context.Context, Provider) (Completion, error),
) (Completion, error) {
	res, err := g.Resolve(caller, settings)
	if err != nil {
		return Completion{}, err
	}
	if vision && !res.Info.SupportsVision {
		return Completion{}, &common.ConfigurationError{Provider: res.Info.ID, Reason: "provider does not support image understanding"}
	}

	rates := res.Info.RatesFor(res.Model)
	if !res.OwnKey && !rates.IsFree() {
		if err := g.ledger.Check(ctx, caller.UserID, settings.Limits); err != nil {
			return Completion{}, err
		}
	}

	provider, err := res.New(Config{
		HTTPClient:  g.cfg.HTTPClient,
		APIKey:      res.APIKey,
		BaseURL:     res.BaseURL,
		Model:       res.Model,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return Completion{}, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf("rate limiter canceled: %w", err)
	}

	callCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := g.breaker(breakerKey(res, caller)).Execute(func() (Completion, error) {
		return call(callCtx, provider)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		g.logger.Warn("vendor circuit open, call not attempted",
			"user_id", caller.UserID,
			"provider", res.Info.ID)
		return Completion{}, &common.VendorCallError{Provider: res.Info.ID, Err: err}
	}

	record := &model.UsageRecord{
		UserID:     caller.UserID,
		Endpoint:   endpoint,
		Provider:   res.Info.ID,
		Model:      res.Model,
		Success:    err == nil,
		UsedOwnKey: res.OwnKey,
	}
	if err == nil {
		if completion.Model != "" {
			record.Model = completion.Model
		}
		record.InputTokens = completion.InputTokens
		record.OutputTokens = completion.OutputTokens
	} else {
		record.ErrorMessage = err.Error()
	}

	// The caller's context may already be done; the record must still land.
	if recordErr := g.ledger.Record(context.WithoutCancel(ctx), record, rates); recordErr != nil {
		g.logger.Error("failed to record AI usage",
			"user_id", caller.UserID,
			"provider", res.Info.ID,
			"error", recordErr)
	}

	if err != nil {
		g.logger.Warn("vendor call failed",
			"user_id", caller.UserID,
			"endpoint", endpoint,
			"provider", res.Info.ID,
			"model", res.Model,
			"own_key", res.OwnKey,
			"duration", time.Since(start),
			"error", err)
		return Completion{}, err
	}

	g.logger.Debug("vendor call completed",
		"user_id", caller.UserID,
		"endpoint", endpoint,
		"provider", res.Info.ID,
		"model", record.Model,
		"input_tokens", completion.InputTokens,
		"output_tokens", completion.OutputTokens,
		"duration", time.Since(start))

	completion.Provider = res.Info.ID
	if completion.Model == "" {
		completion.Model = res.Model
	}
	return completion, nil
}

func (g *Gateway) breaker(key string) *gobreaker.CircuitBreaker[Completion] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cb, ok := g.breakers[key]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[Completion](gobreaker.Settings{
		Name:        key,
		MaxRequests: 1,
		Timeout:     g.cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= g.cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAgainstVendor(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("vendor circuit breaker state changed",
				"provider", name,
				"from", from.String(),
				"to", to.String())
		},
	})
	g.breakers[key] = cb
	return cb
}

// breakerKey scopes a circuit breaker. System-funded calls share one breaker
// per vendor; own-key calls get one per vendor and user so a bad personal key
// only blocks its owner.
func breakerKey(res Resolution, caller Caller) string {
	if res.OwnKey {
		return fmt.Sprintf("%s/user-%d", res.Info.ID, caller.UserID)
	}
	return res.Info.ID
}

// countsAgainstVendor reports whether a failure says something about the
// vendor's health: network errors, throttling and server errors. Rejected
// requests, bad credentials, caller cancellation and unusable replies do not.
func countsAgainstVendor(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var vendorErr *common.VendorCallError
	return errors.As(err, &vendorErr) && vendorErr.Transient()
}
