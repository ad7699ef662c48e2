package pattern

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// Miner derives advisory patterns from override history.
type Miner struct {
	overrides OverrideReader
	items     RecommendationCounter
	logger    *slog.Logger
}

// NewMiner creates a new pattern miner.
func NewMiner(overrides OverrideReader, items RecommendationCounter, logger *slog.Logger) *Miner {
	return &Miner{
		overrides: overrides,
		items:     items,
		logger:    common.LoggerOrDefault(logger),
	}
}

// Mine summarizes a user's recent overrides. Store failures degrade to an
// empty summary rather than an error; new users have no history either.
func (m *Miner) Mine(ctx context.Context, userID int64) model.PatternSummary {
	empty := model.PatternSummary{Patterns: []string{}}

	records, err := m.overrides.GetRecentOverrides(ctx, userID, HistoryLimit)
	if err != nil {
		m.logger.Warn("failed to read override history",
			"user_id", userID,
			"error", err)
		return empty
	}
	if len(records) == 0 {
		return empty
	}

	recommended, err := m.items.CountItemsWithRecommendation(ctx, userID)
	if err != nil {
		m.logger.Warn("failed to count recommended items",
			"user_id", userID,
			"error", err)
		recommended = 0
	}

	summary := model.PatternSummary{
		Total:        len(records),
		Patterns:     Analyze(records),
		Transitions:  Transitions(records),
		OverrideRate: OverrideRate(len(records), recommended),
	}

	m.logger.Debug("mined override patterns",
		"user_id", userID,
		"total", summary.Total,
		"patterns", len(summary.Patterns),
		"override_rate", summary.OverrideRate)

	return summary
}

// Analyze applies the rule tables to a set of overrides.
func Analyze(records []model.OverrideRecord) []string {
	patterns := []string{}

	for _, rule := range GlobalRules {
		count := 0
		for _, r := range records {
			if rule.Match(r.AISuggestion, r.UserChoice) {
				count++
			}
		}
		if count >= rule.MinCount {
			patterns = append(patterns, rule.Pattern)
		}
	}

	byCategory := make(map[string][]model.Outcome)
	for _, r := range records {
		if r.ItemCategory == "" {
			continue
		}
		byCategory[r.ItemCategory] = append(byCategory[r.ItemCategory], r.UserChoice)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		choices := byCategory[category]
		for _, rule := range CategoryRules {
			if len(choices) < rule.MinRecords {
				continue
			}
			matched := 0
			for _, c := range choices {
				if rule.Match(c) {
					matched++
				}
			}
			if float64(matched)/float64(len(choices)) > rule.Share {
				patterns = append(patterns, rule.pattern(category))
			}
		}
	}

	return patterns
}

// Transitions counts suggested->chosen pairs per category.
func Transitions(records []model.OverrideRecord) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, r := range records {
		if out[r.ItemCategory] == nil {
			out[r.ItemCategory] = make(map[string]int)
		}
		out[r.ItemCategory][string(r.AISuggestion)+"->"+string(r.UserChoice)]++
	}
	return out
}

// OverrideRate is overrides per recommended item as a percentage in [0, 100].
// Overrides can outnumber counted items once items are deleted, so it is clamped.
func OverrideRate(overrides, recommended int) int {
	if overrides <= 0 {
		return 0
	}
	if recommended < 1 {
		recommended = 1
	}
	rate := int(math.Round(100 * float64(overrides) / float64(recommended)))
	if rate > 100 {
		return 100
	}
	return rate
}
