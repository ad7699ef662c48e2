package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// SaveUsageRecord appends a usage record.
func (s *SQLiteStorage) SaveUsageRecord(ctx context.Context, record *model.UsageRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUsageRecord(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (id, user_id, endpoint, provider, model, input_tokens, output_tokens,
			estimated_cost, success, used_own_key, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.Endpoint, record.Provider, record.Model, record.InputTokens,
		record.OutputTokens, record.EstimatedCost, record.Success, record.UsedOwnKey, record.ErrorMessage,
		record.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save usage record: %w", err)
	}
	return nil
}

// GetSystemCostSince sums the cost of system-funded calls since the given time.
func (s *SQLiteStorage) GetSystemCostSince(ctx context.Context, since time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(estimated_cost), 0)
		FROM usage_records
		WHERE used_own_key = 0 AND created_at >= ?
	`, since.UTC()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum system usage: %w", err)
	}
	return total, nil
}

// GetUserCostSince sums the cost of a user's system-funded calls since the given time.
func (s *SQLiteStorage) GetUserCostSince(ctx context.Context, userID int64, since time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(estimated_cost), 0)
		FROM usage_records
		WHERE user_id = ? AND used_own_key = 0 AND created_at >= ?
	`, userID, since.UTC()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum user usage: %w", err)
	}
	return total, nil
}

// GetUsageSummary aggregates a user's usage since the given time.
func (s *SQLiteStorage) GetUsageSummary(ctx context.Context, userID int64, since time.Time) (*model.UsageSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	summary := &model.UsageSummary{Since: since}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN used_own_key THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(CASE WHEN used_own_key THEN 0 ELSE estimated_cost END), 0)
		FROM usage_records
		WHERE user_id = ? AND created_at >= ?
	`, userID, since.UTC()).Scan(
		&summary.Requests,
		&summary.OwnKeyRequests,
		&summary.Failed,
		&summary.InputTokens,
		&summary.OutputTokens,
		&summary.Cost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return summary, nil
}
