package model

import (
	"errors"
	"fmt"
)

// StrategyBalanced is the name of the default strategy.
const StrategyBalanced = "balanced"

// ErrInvalidStrategy is returned when a strategy configuration is inconsistent.
var ErrInvalidStrategy = errors.New("invalid recommendation strategy")

// PointTable maps an outcome to the points an answer awards it.
type PointTable map[Outcome]float64

// Weights maps dimension -> answer value -> per-outcome points.
type Weights map[Dimension]map[string]PointTable

// Thresholds control how close scores are resolved.
type Thresholds struct {
	TieBreakOrder          []Outcome `json:"tie_break_order" yaml:"tie_break_order"`
	MinimumScoreDifference float64   `json:"minimum_score_difference" yaml:"minimum_score_difference"`
}

// Multipliers scale each dimension's contribution. Missing dimensions use 1.
type Multipliers map[Dimension]float64

// For returns the multiplier for a dimension.
func (m Multipliers) For(d Dimension) float64 {
	if v, ok := m[d]; ok {
		return v
	}
	return 1
}

// ABTest configures deterministic variant bucketing.
type ABTest struct {
	AlternateStrategy string `json:"alternate_strategy" yaml:"alternate_strategy"`
	Percentage        int    `json:"percentage" yaml:"percentage"`
	Enabled           bool   `json:"enabled" yaml:"enabled"`
}

// RecommendationStrategy is the full scoring configuration.
type RecommendationStrategy struct {
	Weights        Weights                `json:"weights" yaml:"weights"`
	Strategies     map[string]Multipliers `json:"strategies" yaml:"strategies"`
	ActiveStrategy string                 `json:"active_strategy" yaml:"active_strategy"`
	Thresholds     Thresholds             `json:"thresholds" yaml:"thresholds"`
	ABTest         ABTest                 `json:"ab_test" yaml:"ab_test"`
	Version        int                    `json:"version" yaml:"version"`
}

// Active returns the name of the configured default strategy.
func (s RecommendationStrategy) Active() string {
	if s.ActiveStrategy == "" {
		return StrategyBalanced
	}
	return s.ActiveStrategy
}

// MultipliersFor returns the multiplier set for a strategy name.
// Unknown names fall back to an empty set, which scales every dimension by 1.
func (s RecommendationStrategy) MultipliersFor(name string) Multipliers {
	if m, ok := s.Strategies[name]; ok {
		return m
	}
	return Multipliers{}
}

// Validate checks the strategy for internal consistency.
func (s RecommendationStrategy) Validate() error {
	if len(s.Weights) == 0 {
		return fmt.Errorf("%w: no weights configured", ErrInvalidStrategy)
	}
	for dim, answers := range s.Weights {
		for answer, points := range answers {
			for outcome, p := range points {
				if !outcome.IsValid() {
					return fmt.Errorf("%w: %s.%s references unknown outcome %q", ErrInvalidStrategy, dim, answer, outcome)
				}
				if p < 0 {
					return fmt.Errorf("%w: %s.%s.%s has negative points", ErrInvalidStrategy, dim, answer, outcome)
				}
			}
		}
	}
	if s.Thresholds.MinimumScoreDifference < 0 {
		return fmt.Errorf("%w: minimum score difference must not be negative", ErrInvalidStrategy)
	}
	for _, o := range s.Thresholds.TieBreakOrder {
		if !o.IsValid() {
			return fmt.Errorf("%w: tie break order references unknown outcome %q", ErrInvalidStrategy, o)
		}
	}
	for name, mult := range s.Strategies {
		for dim, v := range mult {
			if v < 0 {
				return fmt.Errorf("%w: strategy %s has negative multiplier for %s", ErrInvalidStrategy, name, dim)
			}
		}
	}
	if s.ActiveStrategy != "" && s.ActiveStrategy != StrategyBalanced {
		if _, ok := s.Strategies[s.ActiveStrategy]; !ok {
			return fmt.Errorf("%w: active strategy %q is not defined", ErrInvalidStrategy, s.ActiveStrategy)
		}
	}
	if s.ABTest.Enabled {
		if s.ABTest.Percentage < 0 || s.ABTest.Percentage > 100 {
			return fmt.Errorf("%w: a/b percentage must be between 0 and 100", ErrInvalidStrategy)
		}
		if _, ok := s.Strategies[s.ABTest.AlternateStrategy]; !ok && s.ABTest.AlternateStrategy != StrategyBalanced {
			return fmt.Errorf("%w: alternate strategy %q is not defined", ErrInvalidStrategy, s.ABTest.AlternateStrategy)
		}
	}
	return nil
}

// DefaultStrategy returns the built-in scoring configuration.
func DefaultStrategy() RecommendationStrategy {
	return RecommendationStrategy{
		Version: 1,
		Weights: Weights{
			DimensionUsage: {
				"daily":   {OutcomeKeep: 4, OutcomeAccessible: 3},
				"weekly":  {OutcomeKeep: 3, OutcomeAccessible: 3},
				"monthly": {OutcomeKeep: 1, OutcomeAccessible: 2, OutcomeStorage: 2},
				"rarely":  {OutcomeStorage: 3, OutcomeSell: 1, OutcomeDonate: 1},
				"no":      {OutcomeStorage: 1, OutcomeSell: 2, OutcomeDonate: 2, OutcomeDiscard: 2},
			},
			DimensionSentimental: {
				"high": {OutcomeKeep: 4, OutcomeStorage: 3},
				"some": {OutcomeKeep: 2, OutcomeStorage: 2, OutcomeAccessible: 1},
				"none": {OutcomeSell: 1, OutcomeDonate: 1, OutcomeDiscard: 1},
			},
			DimensionCondition: {
				"excellent": {OutcomeKeep: 1, OutcomeSell: 3, OutcomeDonate: 2},
				"good":      {OutcomeKeep: 1, OutcomeSell: 2, OutcomeDonate: 2},
				"fair":      {OutcomeDonate: 2, OutcomeDiscard: 1},
				"poor":      {OutcomeDiscard: 4},
			},
			DimensionValue: {
				"high":   {OutcomeKeep: 2, OutcomeSell: 4},
				"medium": {OutcomeKeep: 1, OutcomeSell: 2, OutcomeDonate: 1},
				"low":    {OutcomeDonate: 2, OutcomeDiscard: 2},
			},
			DimensionReplaceability: {
				"difficult": {OutcomeKeep: 3, OutcomeStorage: 2},
				"moderate":  {OutcomeKeep: 1, OutcomeStorage: 1, OutcomeSell: 1},
				"easy":      {OutcomeDonate: 1, OutcomeDiscard: 2},
			},
			DimensionSpace: {
				"yes":     {OutcomeKeep: 2, OutcomeAccessible: 2},
				"limited": {OutcomeStorage: 2, OutcomeAccessible: 1},
				"no":      {OutcomeSell: 1, OutcomeDonate: 1, OutcomeDiscard: 1},
			},
		},
		Thresholds: Thresholds{
			MinimumScoreDifference: 2,
			TieBreakOrder: []Outcome{
				OutcomeKeep,
				OutcomeAccessible,
				OutcomeStorage,
				OutcomeDonate,
				OutcomeSell,
				OutcomeDiscard,
			},
		},
		Strategies: map[string]Multipliers{
			StrategyBalanced: {},
			"minimalist": {
				DimensionUsage:       1.5,
				DimensionSentimental: 0.5,
				DimensionSpace:       1.5,
			},
			"sentimental": {
				DimensionSentimental:    1.5,
				DimensionReplaceability: 1.25,
				DimensionSpace:          0.75,
			},
			"financial": {
				DimensionValue:     2,
				DimensionCondition: 1.25,
			},
		},
		ActiveStrategy: StrategyBalanced,
	}
}
