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

// GetUser retrieves a user by id.
func (s *SQLiteStorage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, goal, personality_mode, preferred_provider, api_key, created_at
		FROM users
		WHERE id = ?
	`, id).Scan(
		&user.ID,
		&user.Name,
		&user.Goal,
		&user.PersonalityMode,
		&user.PreferredProvider,
		&user.APIKey,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SaveUser inserts a user when its ID is zero and updates it otherwise.
func (s *SQLiteStorage) SaveUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if user.ID == 0 {
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO users (name, goal, personality_mode, preferred_provider, api_key, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, user.Name, user.Goal, user.PersonalityMode, user.PreferredProvider, user.APIKey, user.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get user id: %w", err)
		}
		user.ID = id
		return nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, goal = ?, personality_mode = ?, preferred_provider = ?, api_key = ?
		WHERE id = ?
	`, user.Name, user.Goal, user.PersonalityMode, user.PreferredProvider, user.APIKey, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(result, "user", user.ID)
}
