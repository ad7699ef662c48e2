package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

type fakeUsageStore struct {
	err        error
	records    []model.UsageRecord
	systemCost float64
	userCost   float64
	since      time.Time
}

func (f *fakeUsageStore) SaveUsageRecord(_ context.Context, record *model.UsageRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeUsageStore) GetSystemCostSince(_ context.Context, since time.Time) (float64, error) {
	f.since = since
	return f.systemCost, f.err
}

func (f *fakeUsageStore) GetUserCostSince(_ context.Context, _ int64, since time.Time) (float64, error) {
	f.since = since
	return f.userCost, f.err
}

func (f *fakeUsageStore) GetUsageSummary(_ context.Context, _ int64, since time.Time) (*model.UsageSummary, error) {
	return &model.UsageSummary{Since: since, Cost: f.userCost}, f.err
}

func newTestLedger(store *fakeUsageStore) *Ledger {
	l := NewLedger(store, nil)
	l.now = func() time.Time { return time.Date(2026, time.March, 17, 15, 4, 5, 0, time.UTC) }
	return l
}

func TestLedger_Check(t *testing.T) {
	tests := []struct {
		name       string
		systemCost float64
		userCost   float64
		limits     Limits
		wantScope  common.QuotaScope
		wantErr    bool
	}{
		{name: "under both ceilings", systemCost: 10, userCost: 1, limits: Limits{MonthlySystem: 100, MonthlyUser: 2}},
		{name: "system at ceiling", systemCost: 100, limits: Limits{MonthlySystem: 100, MonthlyUser: 2}, wantErr: true, wantScope: common.QuotaScopeSystem},
		{name: "system over ceiling", systemCost: 150, limits: Limits{MonthlySystem: 100}, wantErr: true, wantScope: common.QuotaScopeSystem},
		{name: "user at ceiling", systemCost: 10, userCost: 2, limits: Limits{MonthlySystem: 100, MonthlyUser: 2}, wantErr: true, wantScope: common.QuotaScopeUser},
		{name: "ceilings disabled", systemCost: 1e6, userCost: 1e6, limits: Limits{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUsageStore{systemCost: tt.systemCost, userCost: tt.userCost}
			err := newTestLedger(store).Check(context.Background(), 7, tt.limits)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var quotaErr *common.QuotaExceededError
			require.True(t, errors.As(err, &quotaErr))
			assert.Equal(t, tt.wantScope, quotaErr.Scope)
			assert.Equal(t, int64(7), quotaErr.UserID)
		})
	}
}

func TestLedger_Check_UsesCalendarMonth(t *testing.T) {
	store := &fakeUsageStore{}
	require.NoError(t, newTestLedger(store).Check(context.Background(), 1, Limits{MonthlySystem: 5}))
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), store.since)
}

func TestLedger_Check_StoreErrorFailsClosed(t *testing.T) {
	store := &fakeUsageStore{err: errors.New("db down")}
	err := newTestLedger(store).Check(context.Background(), 1, Limits{MonthlySystem: 5})
	require.Error(t, err)
}

func TestLedger_Record(t *testing.T) {
	store := &fakeUsageStore{}
	ledger := newTestLedger(store)

	record := &model.UsageRecord{
		UserID:       3,
		Endpoint:     model.EndpointExplain,
		Provider:     "anthropic",
		Model:        "claude-3-5-haiku-latest",
		InputTokens:  1_000_000,
		OutputTokens: 500_000,
		Success:      true,
	}
	require.NoError(t, ledger.Record(context.Background(), record, Rates{InputPerMillion: 0.8, OutputPerMillion: 4}))

	require.Len(t, store.records, 1)
	saved := store.records[0]
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.InDelta(t, 0.8+2.0, saved.EstimatedCost, 1e-9)
}

func TestLedger_Record_FailedCallCostsNothing(t *testing.T) {
	store := &fakeUsageStore{}
	record := &model.UsageRecord{UserID: 3, Provider: "openai", Success: false}

	require.NoError(t, newTestLedger(store).Record(context.Background(), record, Rates{InputPerMillion: 2.5, OutputPerMillion: 10}))

	assert.Zero(t, store.records[0].EstimatedCost)
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.0000025*1000+0.00001*200, EstimateCost(1000, 200, Rates{InputPerMillion: 2.5, OutputPerMillion: 10}), 1e-12)
	assert.Zero(t, EstimateCost(5000, 5000, Rates{}))
	assert.True(t, Rates{}.IsFree())
}

func TestMonthStart(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	got := MonthStart(time.Date(2026, time.January, 31, 20, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), got)
}
