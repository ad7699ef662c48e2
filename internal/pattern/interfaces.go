// Package pattern mines a user's override history for behavioral patterns
// that are fed into explanation prompts. It never changes a score.
package pattern

import (
	"context"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// OverrideReader reads a user's most recent overrides, newest first.
type OverrideReader interface {
	GetRecentOverrides(ctx context.Context, userID int64, limit int) ([]model.OverrideRecord, error)
}

// RecommendationCounter counts the items that have received a recommendation.
type RecommendationCounter interface {
	CountItemsWithRecommendation(ctx context.Context, userID int64) (int, error)
}
