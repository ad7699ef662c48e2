package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

const itemColumns = `id, user_id, name, category, notes, condition, sentimental, last_used, space,
	usage_frequency, value_tier, replaceability, recommendation, recommendation_strategy,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var item model.Item
	var recommendation sql.NullString

	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Name,
		&item.Category,
		&item.Notes,
		&item.Condition,
		&item.Sentimental,
		&item.LastUsed,
		&item.Space,
		&item.UsageFrequency,
		&item.ValueTier,
		&item.Replaceability,
		&recommendation,
		&item.RecommendationFrom,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if recommendation.Valid {
		outcome := model.Outcome(recommendation.String)
		item.Recommendation = &outcome
	}

	return &item, nil
}

// GetItem retrieves an item by id.
func (s *SQLiteStorage) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetItemsByUser returns a user's items ordered by id.
func (s *SQLiteStorage) GetItemsByUser(ctx context.Context, userID int64) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan item: %w", scanErr)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// SaveItem inserts an item when its ID is zero and updates it otherwise.
func (s *SQLiteStorage) SaveItem(ctx context.Context, item *model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItem(item); err != nil {
		return err
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	var recommendation sql.NullString
	if item.Recommendation != nil {
		recommendation = sql.NullString{String: string(*item.Recommendation), Valid: true}
	}

	if item.ID == 0 {
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO items (user_id, name, category, notes, condition, sentimental, last_used, space,
				usage_frequency, value_tier, replaceability, recommendation, recommendation_strategy,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, item.UserID, item.Name, item.Category, item.Notes, item.Condition, item.Sentimental, item.LastUsed,
			item.Space, item.UsageFrequency, item.ValueTier, item.Replaceability, recommendation,
			item.RecommendationFrom, item.CreatedAt.UTC(), item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get item id: %w", err)
		}
		item.ID = id
		return nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET user_id = ?, name = ?, category = ?, notes = ?, condition = ?, sentimental = ?,
			last_used = ?, space = ?, usage_frequency = ?, value_tier = ?, replaceability = ?,
			recommendation = ?, recommendation_strategy = ?, updated_at = ?
		WHERE id = ?
	`, item.UserID, item.Name, item.Category, item.Notes, item.Condition, item.Sentimental, item.LastUsed,
		item.Space, item.UsageFrequency, item.ValueTier, item.Replaceability, recommendation,
		item.RecommendationFrom, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireAffected(result, "item", item.ID)
}

// CountItemsInCategory counts a user's items in a category, ignoring case.
func (s *SQLiteStorage) CountItemsInCategory(ctx context.Context, userID int64, category string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM items WHERE user_id = ? AND category = ? COLLATE NOCASE
	`, userID, category).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in category: %w", err)
	}
	return count, nil
}

// CountItemsWithRecommendation counts a user's items that carry a recommendation.
func (s *SQLiteStorage) CountItemsWithRecommendation(ctx context.Context, userID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM items WHERE user_id = ? AND recommendation IS NOT NULL
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recommended items: %w", err)
	}
	return count, nil
}

// SaveRecommendation records the outcome and strategy on an item.
func (s *SQLiteStorage) SaveRecommendation(ctx context.Context, itemID int64, outcome model.Outcome, strategy string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !outcome.IsValid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidOutcome, outcome)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET recommendation = ?, recommendation_strategy = ?, updated_at = ? WHERE id = ?
	`, string(outcome), strategy, time.Now().UTC(), itemID)
	if err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}
	return requireAffected(result, "item", itemID)
}

func requireAffected(result sql.Result, entity string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, common.ErrNotFound)
	}
	return nil
}
