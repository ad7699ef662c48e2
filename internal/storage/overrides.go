package storage

import (
	"context"
	"fmt"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// SaveOverride appends an override record.
func (s *SQLiteStorage) SaveOverride(ctx context.Context, record *model.OverrideRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overrides (id, user_id, item_id, item_category, ai_suggestion, user_choice, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.ItemID, record.ItemCategory,
		string(record.AISuggestion), string(record.UserChoice), record.Reason, record.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	return nil
}

// GetRecentOverrides returns up to limit of a user's overrides, newest first.
func (s *SQLiteStorage) GetRecentOverrides(ctx context.Context, userID int64, limit int) ([]model.OverrideRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, item_id, item_category, ai_suggestion, user_choice, reason, created_at
		FROM overrides
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.OverrideRecord
	for rows.Next() {
		var r model.OverrideRecord
		var suggestion, choice string
		if err := rows.Scan(&r.ID, &r.UserID, &r.ItemID, &r.ItemCategory, &suggestion, &choice, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		r.AISuggestion = model.Outcome(suggestion)
		r.UserChoice = model.Outcome(choice)
		records = append(records, r)
	}

	return records, rows.Err()
}
