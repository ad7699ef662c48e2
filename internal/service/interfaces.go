// Package service defines the contracts between the decision pipeline and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// ItemStore reads items and records recommendations on them.
type ItemStore interface {
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	GetItemsByUser(ctx context.Context, userID int64) ([]model.Item, error)
	SaveItem(ctx context.Context, item *model.Item) error
	CountItemsInCategory(ctx context.Context, userID int64, category string) (int, error)
	CountItemsWithRecommendation(ctx context.Context, userID int64) (int, error)
	SaveRecommendation(ctx context.Context, itemID int64, outcome model.Outcome, strategy string) error
}

// UserStore reads user profiles.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
}

// OverrideStore appends and reads override history.
type OverrideStore interface {
	SaveOverride(ctx context.Context, record *model.OverrideRecord) error
	GetRecentOverrides(ctx context.Context, userID int64, limit int) ([]model.OverrideRecord, error)
}

// UsageStore appends usage records and aggregates spend.
type UsageStore interface {
	SaveUsageRecord(ctx context.Context, record *model.UsageRecord) error
	// GetSystemCostSince sums the cost of system-funded calls since the given time.
	GetSystemCostSince(ctx context.Context, since time.Time) (float64, error)
	// GetUserCostSince sums the cost of a user's system-funded calls since the given time.
	GetUserCostSince(ctx context.Context, userID int64, since time.Time) (float64, error)
	GetUsageSummary(ctx context.Context, userID int64, since time.Time) (*model.UsageSummary, error)
}

// SettingsStore is the versioned key/value settings table.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	GetAllSettings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	ItemStore
	UserStore
	OverrideStore
	UsageStore
	SettingsStore

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
