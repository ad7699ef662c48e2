package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidID          = errors.New("id must be positive")
	ErrInvalidItem        = errors.New("invalid item")
	ErrInvalidUser        = errors.New("invalid user")
	ErrInvalidOverride    = errors.New("invalid override record")
	ErrInvalidUsageRecord = errors.New("invalid usage record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

func validateItem(item *model.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if item.UserID <= 0 {
		return fmt.Errorf("%w: missing user ID", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidItem)
	}
	if item.Recommendation != nil && !item.Recommendation.IsValid() {
		return fmt.Errorf("%w: recommendation %q", ErrInvalidItem, *item.Recommendation)
	}
	return nil
}

func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidUser)
	}
	return nil
}

func validateOverride(record *model.OverrideRecord) error {
	if record == nil {
		return fmt.Errorf("%w: override record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidOverride)
	}
	if record.UserID <= 0 || record.ItemID <= 0 {
		return fmt.Errorf("%w: missing user or item ID", ErrInvalidOverride)
	}
	if !record.AISuggestion.IsValid() || !record.UserChoice.IsValid() {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidOverride, record.AISuggestion, record.UserChoice)
	}
	return nil
}

func validateUsageRecord(record *model.UsageRecord) error {
	if record == nil {
		return fmt.Errorf("%w: usage record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidUsageRecord)
	}
	if record.Endpoint == "" || record.Provider == "" {
		return fmt.Errorf("%w: missing endpoint or provider", ErrInvalidUsageRecord)
	}
	if record.InputTokens < 0 || record.OutputTokens < 0 || record.EstimatedCost < 0 {
		return fmt.Errorf("%w: negative usage", ErrInvalidUsageRecord)
	}
	return nil
}
