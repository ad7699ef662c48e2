package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		input   string
		want    Outcome
		wantErr bool
	}{
		{input: "keep", want: OutcomeKeep},
		{input: "  Donate ", want: OutcomeDonate},
		{input: "DISCARD", want: OutcomeDiscard},
		{input: "recycle", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutcome(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutcome_Classes(t *testing.T) {
	for _, o := range Outcomes {
		assert.True(t, o.IsValid(), o)
		assert.NotEqual(t, o.IsRetention(), o.IsDisposal(), "%s must be exactly one of retention or disposal", o)
		assert.NotEqual(t, string(o), o.Label())
	}
	assert.False(t, Outcome("burn").IsValid())
	assert.Equal(t, "burn", Outcome("burn").Label())
}

func TestItem_Answers(t *testing.T) {
	item := Item{LastUsed: "rarely", Sentimental: "some", ValueTier: "medium"}
	answers := item.Answers()
	assert.Equal(t, "rarely", answers.Usage)
	assert.Equal(t, "medium", answers.Get(DimensionValue))
	assert.Equal(t, "some", answers.Get(DimensionSentimental))
	assert.Empty(t, answers.Get(Dimension("colour")))

	item.UsageFrequency = "weekly"
	assert.Equal(t, "weekly", item.Answers().Usage)
}

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  Season
	}{
		{time.January, SeasonWinter},
		{time.March, SeasonSpring},
		{time.June, SeasonSummer},
		{time.September, SeasonFall},
		{time.November, SeasonFall},
		{time.December, SeasonWinter},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeasonOf(time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC)), tt.month.String())
	}
}

func TestRecommendationStrategy_Validate(t *testing.T) {
	require.NoError(t, DefaultStrategy().Validate())

	tests := []struct {
		name   string
		mutate func(*RecommendationStrategy)
	}{
		{"no weights", func(s *RecommendationStrategy) { s.Weights = nil }},
		{"unknown outcome in weights", func(s *RecommendationStrategy) {
			s.Weights[DimensionUsage]["daily"] = PointTable{"hoard": 1}
		}},
		{"negative points", func(s *RecommendationStrategy) {
			s.Weights[DimensionUsage]["daily"] = PointTable{OutcomeKeep: -1}
		}},
		{"negative minimum difference", func(s *RecommendationStrategy) { s.Thresholds.MinimumScoreDifference = -1 }},
		{"unknown tie-break outcome", func(s *RecommendationStrategy) {
			s.Thresholds.TieBreakOrder = []Outcome{OutcomeKeep, "hoard"}
		}},
		{"negative multiplier", func(s *RecommendationStrategy) {
			s.Strategies["minimalist"] = Multipliers{DimensionSpace: -0.5}
		}},
		{"undefined active strategy", func(s *RecommendationStrategy) { s.ActiveStrategy = "maximalist" }},
		{"a/b percentage out of range", func(s *RecommendationStrategy) {
			s.ABTest = ABTest{Enabled: true, AlternateStrategy: "minimalist", Percentage: 120}
		}},
		{"a/b alternate undefined", func(s *RecommendationStrategy) {
			s.ABTest = ABTest{Enabled: true, AlternateStrategy: "maximalist", Percentage: 50}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultStrategy()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidStrategy)
		})
	}
}

func TestRecommendationStrategy_Lookups(t *testing.T) {
	s := DefaultStrategy()
	assert.Equal(t, StrategyBalanced, s.Active())
	assert.InDelta(t, 1.5, s.MultipliersFor("minimalist").For(DimensionUsage), 1e-9)
	assert.InDelta(t, 1, s.MultipliersFor("minimalist").For(DimensionCondition), 1e-9)
	assert.Empty(t, s.MultipliersFor("nope"))

	s.ActiveStrategy = ""
	assert.Equal(t, StrategyBalanced, s.Active())
}
