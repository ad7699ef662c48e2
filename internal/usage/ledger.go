// Package usage tracks vendor call spend and enforces monthly ceilings on
// system-funded calls.
//
// The ceiling check is read-then-act: concurrent requests from the same user
// can each pass the check before either records its cost, so a ceiling can be
// overshot by the cost of the calls in flight. It is a soft limit.
package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/service"
)

// Rates are a vendor model's prices in dollars per million units.
type Rates struct {
	InputPerMillion  float64 `json:"input_per_million" yaml:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million" yaml:"output_per_million"`
}

// IsFree reports whether calls at these rates cost nothing.
func (r Rates) IsFree() bool {
	return r.InputPerMillion == 0 && r.OutputPerMillion == 0
}

// EstimateCost is inputUnits*inputRate + outputUnits*outputRate.
func EstimateCost(inputUnits, outputUnits int, r Rates) float64 {
	return float64(inputUnits)*r.InputPerMillion/1_000_000 +
		float64(outputUnits)*r.OutputPerMillion/1_000_000
}

// Limits are the monthly spend ceilings in dollars. A value <= 0 disables that ceiling.
type Limits struct {
	MonthlySystem float64
	MonthlyUser   float64
}

// MonthStart returns the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Ledger checks ceilings and appends usage records.
type Ledger struct {
	store  service.UsageStore
	now    func() time.Time
	logger *slog.Logger
}

// NewLedger creates a new usage ledger.
func NewLedger(store service.UsageStore, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  store,
		now:    time.Now,
		logger: common.LoggerOrDefault(logger),
	}
}

// Check rejects a system-funded call when the system or the user has
// already reached a monthly ceiling. Spend equal to the ceiling is rejected.
func (l *Ledger) Check(ctx context.Context, userID int64, limits Limits) error {
	since := MonthStart(l.now())

	if limits.MonthlySystem > 0 {
		total, err := l.store.GetSystemCostSince(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to read system usage: %w", err)
		}
		if total >= limits.MonthlySystem {
			l.logger.Warn("system monthly AI limit reached",
				"used", total,
				"limit", limits.MonthlySystem)
			return &common.QuotaExceededError{
				Scope:  common.QuotaScopeSystem,
				Used:   total,
				Limit:  limits.MonthlySystem,
				UserID: userID,
			}
		}
	}

	if limits.MonthlyUser > 0 {
		total, err := l.store.GetUserCostSince(ctx, userID, since)
		if err != nil {
			return fmt.Errorf("failed to read user usage: %w", err)
		}
		if total >= limits.MonthlyUser {
			l.logger.Warn("user monthly AI limit reached",
				"user_id", userID,
				"used", total,
				"limit", limits.MonthlyUser)
			return &common.QuotaExceededError{
				Scope:  common.QuotaScopeUser,
				Used:   total,
				Limit:  limits.MonthlyUser,
				UserID: userID,
			}
		}
	}

	return nil
}

// Record computes the record's cost from rates and appends it.
func (l *Ledger) Record(ctx context.Context, record *model.UsageRecord, rates Rates) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = l.now()
	}
	record.EstimatedCost = EstimateCost(record.InputTokens, record.OutputTokens, rates)

	if err := l.store.SaveUsageRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save usage record: %w", err)
	}

	l.logger.Debug("recorded AI usage",
		"user_id", record.UserID,
		"endpoint", record.Endpoint,
		"provider", record.Provider,
		"model", record.Model,
		"input_tokens", record.InputTokens,
		"output_tokens", record.OutputTokens,
		"cost", record.EstimatedCost,
		"success", record.Success,
		"own_key", record.UsedOwnKey)

	return nil
}

// Summary reports a user's month-to-date usage.
func (l *Ledger) Summary(ctx context.Context, userID int64) (*model.UsageSummary, error) {
	summary, err := l.store.GetUsageSummary(ctx, userID, MonthStart(l.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return summary, nil
}
