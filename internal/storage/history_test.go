package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

func TestOverrides_RecentNewestFirst(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "Ada")
	item := createTestItem(t, store, user.ID, "Vase", "Decor")

	base := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, store.SaveOverride(ctx, &model.OverrideRecord{
			ID:           uuid.New().String(),
			UserID:       user.ID,
			ItemID:       item.ID,
			ItemCategory: "Decor",
			AISuggestion: model.OutcomeDonate,
			UserChoice:   model.OutcomeKeep,
			Reason:       string(rune('a' + i)),
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}

	records, err := store.GetRecentOverrides(ctx, user.ID, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "e", records[0].Reason)
	assert.Equal(t, "c", records[2].Reason)
	assert.Equal(t, model.OutcomeDonate, records[0].AISuggestion)
	assert.Equal(t, model.OutcomeKeep, records[0].UserChoice)

	none, err := store.GetRecentOverrides(ctx, user.ID+1, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOverrides_Validation(t *testing.T) {
	store := createTestStorage(t)

	err := store.SaveOverride(context.Background(), &model.OverrideRecord{
		ID:           uuid.New().String(),
		UserID:       1,
		ItemID:       1,
		AISuggestion: model.OutcomeKeep,
		UserChoice:   model.Outcome("bury"),
	})
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestUsage_CostsExcludeOwnKey(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	monthStart := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	records := []model.UsageRecord{
		{UserID: 1, EstimatedCost: 0.50, Success: true, CreatedAt: monthStart.Add(time.Hour)},
		{UserID: 1, EstimatedCost: 0.25, Success: false, CreatedAt: monthStart},
		{UserID: 1, EstimatedCost: 9.00, Success: true, UsedOwnKey: true, CreatedAt: monthStart.Add(2 * time.Hour)},
		{UserID: 2, EstimatedCost: 1.00, Success: true, CreatedAt: monthStart.Add(3 * time.Hour)},
		{UserID: 1, EstimatedCost: 4.00, Success: true, CreatedAt: monthStart.Add(-time.Minute)},
	}
	for i := range records {
		r := records[i]
		r.ID = uuid.New().String()
		r.Endpoint = model.EndpointExplain
		r.Provider = "anthropic"
		r.InputTokens = 100
		r.OutputTokens = 10
		require.NoError(t, store.SaveUsageRecord(ctx, &r))
	}

	system, err := store.GetSystemCostSince(ctx, monthStart)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, system, 1e-9)

	user, err := store.GetUserCostSince(ctx, 1, monthStart)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, user, 1e-9)

	summary, err := store.GetUsageSummary(ctx, 1, monthStart)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Requests)
	assert.Equal(t, 1, summary.OwnKeyRequests)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 300, summary.InputTokens)
	assert.Equal(t, 30, summary.OutputTokens)
	assert.InDelta(t, 0.75, summary.Cost, 1e-9)
}

func TestUsage_Validation(t *testing.T) {
	store := createTestStorage(t)
	err := store.SaveUsageRecord(context.Background(), &model.UsageRecord{ID: "x", Endpoint: "explain"})
	assert.ErrorIs(t, err, ErrInvalidUsageRecord)
}

func TestSettings(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetSetting(ctx, "ai_provider")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.SetSetting(ctx, "ai_provider", "openai"))
	require.NoError(t, store.SetSetting(ctx, "ai_provider", "google"))
	require.NoError(t, store.SetSetting(ctx, "ai_monthly_limit", "25"))

	value, err := store.GetSetting(ctx, "ai_provider")
	require.NoError(t, err)
	assert.Equal(t, "google", value)

	all, err := store.GetAllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ai_provider": "google", "ai_monthly_limit": "25"}, all)
}
