package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/usage"
)

type fakeLedger struct {
	checkErr   error
	records    []model.UsageRecord
	rates      []usage.Rates
	recordCtxs []error
	checks     int
	mu         sync.Mutex
}

func (f *fakeLedger) Check(_ context.Context, _ int64, _ usage.Limits) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return f.checkErr
}

func (f *fakeLedger) Record(ctx context.Context, record *model.UsageRecord, rates usage.Rates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *record)
	f.rates = append(f.rates, rates)
	f.recordCtxs = append(f.recordCtxs, ctx.Err())
	return nil
}

type fakeProvider struct {
	textFn func(ctx context.Context, req TextRequest) (Completion, error)
	calls  int
	mu     sync.Mutex
}

func (f *fakeProvider) UnderstandImage(_ context.Context, _ ImageRequest) (Completion, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return Completion{Text: `{"name":"Lamp"}`, Model: "fake-vision", InputTokens: 300, OutputTokens: 20}, nil
}

func (f *fakeProvider) GenerateText(ctx context.Context, req TextRequest) (Completion, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.textFn != nil {
		return f.textFn(ctx, req)
	}
	return Completion{Text: "Keep it.", Model: "fake-1", InputTokens: 100, OutputTokens: 10}, nil
}

type gatewayFixture struct {
	gateway  *Gateway
	ledger   *fakeLedger
	provider *fakeProvider
	configs  []Config
	env      map[string]string
}

func newGatewayFixture(t *testing.T, cfg GatewayConfig) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{
		ledger:   &fakeLedger{},
		provider: &fakeProvider{},
		env:      map[string]string{},
	}

	registry := NewRegistry()
	require.NoError(t, registry.Register(Registration{
		Info: ProviderInfo{
			ID:             "paid",
			DefaultModel:   "fake-1",
			KeyEnv:         "PAID_API_KEY",
			Rates:          usage.Rates{InputPerMillion: 1, OutputPerMillion: 2},
			RequiresKey:    true,
			SupportsVision: true,
		},
		New: func(c Config) (Provider, error) {
			f.configs = append(f.configs, c)
			return f.provider, nil
		},
	}))
	require.NoError(t, registry.Register(Registration{
		Info: ProviderInfo{
			ID:           "textonly",
			DefaultModel: "fake-text",
			Rates:        usage.Rates{InputPerMillion: 1, OutputPerMillion: 1},
			RequiresKey:  true,
		},
		New: func(c Config) (Provider, error) {
			f.configs = append(f.configs, c)
			return f.provider, nil
		},
	}))
	require.NoError(t, registry.Register(Registration{
		Info: ProviderInfo{
			ID:              "local",
			DefaultModel:    "llava",
			BaseURLEnv:      "LOCAL_BASE_URL",
			RequiresBaseURL: true,
			SupportsVision:  true,
		},
		New: func(c Config) (Provider, error) {
			f.configs = append(f.configs, c)
			return f.provider, nil
		},
	}))

	f.gateway = NewGateway(registry, f.ledger, cfg, nil)
	f.gateway.getenv = func(key string) string { return f.env[key] }
	return f
}

func TestGateway_Resolve(t *testing.T) {
	tests := []struct {
		name        string
		caller      Caller
		settings    Settings
		env         map[string]string
		wantID      string
		wantKey     string
		wantBaseURL string
		wantOwnKey  bool
		wantErr     bool
	}{
		{
			name:       "user key with preferred vendor",
			caller:     Caller{APIKey: "user-key", PreferredProvider: "textonly"},
			settings:   Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}},
			wantID:     "textonly",
			wantKey:    "user-key",
			wantOwnKey: true,
		},
		{
			name:       "user key without preference uses default vendor",
			caller:     Caller{APIKey: "user-key"},
			settings:   Settings{DefaultProvider: "paid"},
			wantID:     "paid",
			wantKey:    "user-key",
			wantOwnKey: true,
		},
		{
			name:     "stored key beats environment",
			settings: Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}},
			env:      map[string]string{"PAID_API_KEY": "from-env"},
			wantID:   "paid",
			wantKey:  "stored",
		},
		{
			name:     "environment key",
			settings: Settings{DefaultProvider: "paid"},
			env:      map[string]string{"PAID_API_KEY": "from-env"},
			wantID:   "paid",
			wantKey:  "from-env",
		},
		{
			name:     "preference ignored without own key",
			caller:   Caller{PreferredProvider: "textonly"},
			settings: Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}},
			wantID:   "paid",
			wantKey:  "stored",
		},
		{
			name:        "keyless vendor with configured base URL",
			settings:    Settings{DefaultProvider: "local", BaseURLs: map[string]string{"local": "http://gpu:11434"}},
			wantID:      "local",
			wantBaseURL: "http://gpu:11434",
		},
		{
			name:        "keyless vendor with environment base URL",
			settings:    Settings{DefaultProvider: "local"},
			env:         map[string]string{"LOCAL_BASE_URL": "http://localhost:11434"},
			wantID:      "local",
			wantBaseURL: "http://localhost:11434",
		},
		{
			name:     "stale preferred vendor falls through to system chain",
			caller:   Caller{APIKey: "user-key", PreferredProvider: "retired"},
			settings: Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}},
			wantID:   "paid",
			wantKey:  "stored",
		},
		{
			name:        "keyless vendor when default has no credential",
			settings:    Settings{DefaultProvider: "paid", BaseURLs: map[string]string{"local": "http://gpu:11434"}},
			wantID:      "local",
			wantBaseURL: "http://gpu:11434",
		},
		{
			name:        "keyless vendor when default is unknown",
			settings:    Settings{DefaultProvider: "nope"},
			env:         map[string]string{"LOCAL_BASE_URL": "http://localhost:11434"},
			wantID:      "local",
			wantBaseURL: "http://localhost:11434",
		},
		{name: "keyless vendor without base URL", settings: Settings{DefaultProvider: "local"}, wantErr: true},
		{name: "no credential anywhere", settings: Settings{DefaultProvider: "paid"}, wantErr: true},
		{name: "no default vendor", settings: Settings{}, wantErr: true},
		{name: "unknown vendor", settings: Settings{DefaultProvider: "nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGatewayFixture(t, GatewayConfig{})
			for k, v := range tt.env {
				f.env[k] = v
			}

			res, err := f.gateway.Resolve(tt.caller, tt.settings)

			if tt.wantErr {
				var configErr *common.ConfigurationError
				require.True(t, errors.As(err, &configErr), "got %v", err)
				assert.ErrorIs(t, err, common.ErrMissingConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, res.Info.ID)
			assert.Equal(t, tt.wantKey, res.APIKey)
			assert.Equal(t, tt.wantBaseURL, res.BaseURL)
			assert.Equal(t, tt.wantOwnKey, res.OwnKey)
		})
	}
}

func TestGateway_Resolve_ModelOverride(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{})
	res, err := f.gateway.Resolve(Caller{}, Settings{
		DefaultProvider: "paid",
		APIKeys:         map[string]string{"paid": "k"},
		Models:          map[string]string{"paid": "fake-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fake-2", res.Model)
}

func TestGateway_GenerateText_SystemFunded(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{MaxTokens: 300})
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}}

	completion, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 9}, settings, TextRequest{Prompt: "why"})
	require.NoError(t, err)

	assert.Equal(t, "Keep it.", completion.Text)
	assert.Equal(t, "paid", completion.Provider)
	assert.Equal(t, 1, f.ledger.checks)
	require.Len(t, f.ledger.records, 1)

	record := f.ledger.records[0]
	assert.Equal(t, int64(9), record.UserID)
	assert.Equal(t, model.EndpointExplain, record.Endpoint)
	assert.Equal(t, "fake-1", record.Model)
	assert.Equal(t, 100, record.InputTokens)
	assert.Equal(t, 10, record.OutputTokens)
	assert.True(t, record.Success)
	assert.False(t, record.UsedOwnKey)
	assert.Equal(t, usage.Rates{InputPerMillion: 1, OutputPerMillion: 2}, f.ledger.rates[0])

	require.Len(t, f.configs, 1)
	assert.Equal(t, "stored", f.configs[0].APIKey)
	assert.Equal(t, 300, f.configs[0].MaxTokens)
}

func TestGateway_QuotaExceededSkipsVendor(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{})
	f.ledger.checkErr = &common.QuotaExceededError{Scope: common.QuotaScopeUser, Used: 2, Limit: 2, UserID: 9}
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}}

	_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 9}, settings, TextRequest{Prompt: "why"})

	var quotaErr *common.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Zero(t, f.provider.calls)
	assert.Empty(t, f.ledger.records)
}

func TestGateway_OwnKeyBypassesCeilings(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{})
	f.ledger.checkErr = &common.QuotaExceededError{Scope: common.QuotaScopeSystem, Used: 100, Limit: 100}
	settings := Settings{DefaultProvider: "paid"}

	_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 9, APIKey: "mine"}, settings, TextRequest{Prompt: "why"})
	require.NoError(t, err)

	assert.Zero(t, f.ledger.checks)
	require.Len(t, f.ledger.records, 1)
	assert.True(t, f.ledger.records[0].UsedOwnKey)
}

func TestGateway_FreeVendorSkipsCeilings(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{})
	f.ledger.checkErr = &common.QuotaExceededError{Scope: common.QuotaScopeSystem}
	settings := Settings{DefaultProvider: "local", BaseURLs: map[string]string{"local": "http://gpu:11434"}}

	_, err := f.gateway.UnderstandImage(context.Background(), Caller{UserID: 1}, settings, ImageRequest{Data: []byte{1}, MediaType: "image/png"})
	require.NoError(t, err)

	assert.Zero(t, f.ledger.checks)
	require.Len(t, f.ledger.records, 1)
	assert.Equal(t, model.EndpointAnalyzeImage, f.ledger.records[0].Endpoint)
	assert.Equal(t, "http://gpu:11434", f.configs[0].BaseURL)
}

func TestGateway_UnderstandImage_TextOnlyVendor(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{})
	settings := Settings{DefaultProvider: "textonly", APIKeys: map[string]string{"textonly": "k"}}

	_, err := f.gateway.UnderstandImage(context.Background(), Caller{UserID: 1}, settings, ImageRequest{Data: []byte{1}})

	var configErr *common.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Zero(t, f.provider.calls)
	assert.Empty(t, f.ledger.records)
}

func TestGateway_VendorFailureRecordedWithoutCost(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{})
	f.provider.textFn = func(context.Context, TextRequest) (Completion, error) {
		return Completion{}, &common.VendorCallError{Provider: "paid", StatusCode: 503, Err: errors.New("overloaded")}
	}
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "k"}}

	_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 4}, settings, TextRequest{Prompt: "why"})

	var vendorErr *common.VendorCallError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, 503, vendorErr.StatusCode)

	require.Len(t, f.ledger.records, 1)
	record := f.ledger.records[0]
	assert.False(t, record.Success)
	assert.Zero(t, record.InputTokens)
	assert.Zero(t, record.OutputTokens)
	assert.Contains(t, record.ErrorMessage, "overloaded")
}

func TestGateway_CancelledCallStillRecorded(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	f.provider.textFn = func(ctx context.Context, _ TextRequest) (Completion, error) {
		cancel()
		<-ctx.Done()
		return Completion{}, &common.VendorCallError{Provider: "paid", Err: ctx.Err()}
	}
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "k"}}

	_, err := f.gateway.GenerateText(ctx, Caller{UserID: 4}, settings, TextRequest{Prompt: "why"})
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, f.ledger.records, 1)
	assert.NoError(t, f.ledger.recordCtxs[0])
	assert.Zero(t, f.ledger.records[0].InputTokens)
}

func TestGateway_Timeout(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{Timeout: 20 * time.Millisecond})
	f.provider.textFn = func(ctx context.Context, _ TextRequest) (Completion, error) {
		<-ctx.Done()
		return Completion{}, &common.VendorCallError{Provider: "paid", Err: ctx.Err()}
	}
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "k"}}

	_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 4}, settings, TextRequest{Prompt: "why"})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, f.ledger.records, 1)
	assert.False(t, f.ledger.records[0].Success)
}

func TestGateway_CircuitBreakerOpens(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{BreakerFailures: 2, BreakerCooldown: time.Hour})
	f.provider.textFn = func(context.Context, TextRequest) (Completion, error) {
		return Completion{}, &common.VendorCallError{Provider: "paid", StatusCode: 500, Err: errors.New("boom")}
	}
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "k"}}

	for range 2 {
		_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 4}, settings, TextRequest{Prompt: "why"})
		require.Error(t, err)
	}

	_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 4}, settings, TextRequest{Prompt: "why"})

	var vendorErr *common.VendorCallError
	require.True(t, errors.As(err, &vendorErr))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, f.provider.calls)
	assert.Len(t, f.ledger.records, 2)
}

func TestGateway_OwnKeyRejectionsLeaveSystemCallsWorking(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{BreakerFailures: 2, BreakerCooldown: time.Hour})
	f.provider.textFn = func(ctx context.Context, _ TextRequest) (Completion, error) {
		return Completion{}, &common.VendorCallError{Provider: "paid", StatusCode: 401, Err: errors.New("invalid x-api-key")}
	}
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}}

	for range 3 {
		_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 1, APIKey: "revoked"}, settings, TextRequest{Prompt: "why"})
		var vendorErr *common.VendorCallError
		require.True(t, errors.As(err, &vendorErr))
		assert.Equal(t, 401, vendorErr.StatusCode)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	f.provider.textFn = nil
	completion, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 2}, settings, TextRequest{Prompt: "why"})
	require.NoError(t, err)
	assert.Equal(t, "Keep it.", completion.Text)
	assert.Equal(t, 4, f.provider.calls)
}

func TestGateway_OwnKeyBreakerIsPerUser(t *testing.T) {
	f := newGatewayFixture(t, GatewayConfig{BreakerFailures: 2, BreakerCooldown: time.Hour})
	f.provider.textFn = func(ctx context.Context, _ TextRequest) (Completion, error) {
		return Completion{}, &common.VendorCallError{Provider: "paid", StatusCode: 429, Err: errors.New("quota exhausted")}
	}
	settings := Settings{DefaultProvider: "paid", APIKeys: map[string]string{"paid": "stored"}}

	for range 2 {
		_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 1, APIKey: "mine"}, settings, TextRequest{Prompt: "why"})
		require.Error(t, err)
	}
	_, err := f.gateway.GenerateText(context.Background(), Caller{UserID: 1, APIKey: "mine"}, settings, TextRequest{Prompt: "why"})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)

	f.provider.textFn = nil
	_, err = f.gateway.GenerateText(context.Background(), Caller{UserID: 2}, settings, TextRequest{Prompt: "why"})
	require.NoError(t, err)
	_, err = f.gateway.GenerateText(context.Background(), Caller{UserID: 3, APIKey: "theirs"}, settings, TextRequest{Prompt: "why"})
	require.NoError(t, err)
}

func TestCountsAgainstVendor(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "network failure", err: &common.VendorCallError{Err: errors.New("connection reset")}, want: true},
		{name: "server error", err: &common.VendorCallError{StatusCode: 502, Err: errors.New("bad gateway")}, want: true},
		{name: "throttled", err: &common.VendorCallError{StatusCode: 429, Err: errors.New("slow down")}, want: true},
		{name: "bad credential", err: &common.VendorCallError{StatusCode: 401, Err: errors.New("unauthorized")}},
		{name: "forbidden", err: &common.VendorCallError{StatusCode: 403, Err: errors.New("forbidden")}},
		{name: "bad request", err: &common.VendorCallError{StatusCode: 400, Err: errors.New("invalid image")}},
		{name: "caller canceled", err: &common.VendorCallError{Err: context.Canceled}},
		{name: "parse failure", err: &common.ResponseParseError{Err: errors.New("x")}},
		{name: "configuration", err: &common.ConfigurationError{Reason: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countsAgainstVendor(tt.err))
		})
	}
}
