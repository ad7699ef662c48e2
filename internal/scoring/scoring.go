// Package scoring implements the deterministic rule engine that turns a
// user's categorical answers into a recommended outcome.
package scoring

import (
	"log/slog"
	"sort"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// Variant identifies the A/B bucket a user was scored under.
type Variant string

// Variants.
const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

// Score is one outcome's total.
type Score struct {
	Outcome model.Outcome `json:"outcome"`
	Points  float64       `json:"points"`
}

// Result is the output of one evaluation.
type Result struct {
	Scores   map[model.Outcome]float64 `json:"scores"`
	Outcome  model.Outcome             `json:"outcome"`
	Strategy string                    `json:"strategy"`
	Variant  Variant                   `json:"variant"`
	Ranked   []Score                   `json:"ranked"`
	Warnings []error                   `json:"-"`
	Margin   float64                   `json:"margin"`
	TieBreak bool                      `json:"tie_break"`
}

// Engine scores answers against a strategy snapshot.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a new scoring engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: common.LoggerOrDefault(logger)}
}

// SelectStrategy returns the strategy name and variant for a user.
// Users land in variant B when userID mod 100 >= the configured percentage.
func SelectStrategy(strategy model.RecommendationStrategy, userID int64) (string, Variant) {
	ab := strategy.ABTest
	if !ab.Enabled || ab.AlternateStrategy == "" {
		return strategy.Active(), VariantA
	}
	bucket := userID % 100
	if bucket < 0 {
		bucket = -bucket
	}
	if bucket >= int64(ab.Percentage) {
		return ab.AlternateStrategy, VariantB
	}
	return strategy.Active(), VariantA
}

// EvaluateForUser applies A/B selection and scores the answers.
func (e *Engine) EvaluateForUser(strategy model.RecommendationStrategy, userID int64, answers model.Answers) Result {
	name, variant := SelectStrategy(strategy, userID)
	result := e.Evaluate(strategy, name, answers)
	result.Variant = variant
	return result
}

// Evaluate scores answers under the named strategy's multipliers.
func (e *Engine) Evaluate(strategy model.RecommendationStrategy, name string, answers model.Answers) Result {
	multipliers := strategy.MultipliersFor(name)
	scores := make(map[model.Outcome]float64, len(model.Outcomes))
	for _, o := range model.Outcomes {
		scores[o] = 0
	}

	var warnings []error
	for _, dim := range model.Dimensions {
		value := answers.Get(dim)
		if value == "" {
			continue
		}
		points, ok := strategy.Weights[dim][value]
		if !ok {
			warn := &common.InvalidAnswerError{Dimension: string(dim), Value: value}
			warnings = append(warnings, warn)
			e.logger.Warn("unknown answer value, contributing zero",
				"dimension", dim,
				"value", value,
				"strategy", name)
			continue
		}
		m := multipliers.For(dim)
		for outcome, p := range points {
			scores[outcome] += p * m
		}
	}

	ranked := Rank(scores)
	outcome, margin, tieBreak := resolve(ranked, strategy.Thresholds)

	return Result{
		Outcome:  outcome,
		Scores:   scores,
		Ranked:   ranked,
		Margin:   margin,
		TieBreak: tieBreak,
		Strategy: name,
		Variant:  VariantA,
		Warnings: warnings,
	}
}

// Rank orders outcomes by descending score, canonical order on equal scores.
func Rank(scores map[model.Outcome]float64) []Score {
	ranked := make([]Score, 0, len(model.Outcomes))
	for _, o := range model.Outcomes {
		ranked = append(ranked, Score{Outcome: o, Points: scores[o]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	return ranked
}

// resolve picks the winner. A clear winner needs a margin of at least the
// minimum difference; otherwise the tie-break order decides among the
// outcomes within that margin of the top score. Negative scores never
// contend, and once anything scored, outcomes nobody voted for do not either.
func resolve(ranked []Score, thresholds model.Thresholds) (model.Outcome, float64, bool) {
	top := ranked[0]
	margin := top.Points - ranked[1].Points
	if margin >= thresholds.MinimumScoreDifference && margin > 0 {
		return top.Outcome, margin, false
	}

	contenders := make(map[model.Outcome]bool)
	for _, s := range ranked {
		if s.Points < 0 || (s.Points == 0 && top.Points > 0) {
			continue
		}
		if top.Points-s.Points < thresholds.MinimumScoreDifference || s.Points == top.Points {
			contenders[s.Outcome] = true
		}
	}
	if len(contenders) == 0 {
		return top.Outcome, margin, false
	}

	for _, o := range tieBreakOrder(thresholds.TieBreakOrder) {
		if contenders[o] {
			return o, margin, true
		}
	}
	return top.Outcome, margin, false
}

// tieBreakOrder appends any outcomes missing from the configured order in
// canonical order so every outcome has a rank.
func tieBreakOrder(configured []model.Outcome) []model.Outcome {
	seen := make(map[model.Outcome]bool, len(model.Outcomes))
	order := make([]model.Outcome, 0, len(model.Outcomes))
	for _, o := range configured {
		if o.IsValid() && !seen[o] {
			seen[o] = true
			order = append(order, o)
		}
	}
	for _, o := range model.Outcomes {
		if !seen[o] {
			order = append(order, o)
		}
	}
	return order
}
