package pattern

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

type fakeHistory struct {
	err         error
	countErr    error
	records     []model.OverrideRecord
	recommended int
	lastLimit   int
}

func (f *fakeHistory) GetRecentOverrides(_ context.Context, _ int64, limit int) ([]model.OverrideRecord, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeHistory) CountItemsWithRecommendation(_ context.Context, _ int64) (int, error) {
	return f.recommended, f.countErr
}

func override(category string, suggested, chosen model.Outcome) model.OverrideRecord {
	return model.OverrideRecord{
		UserID:       1,
		ItemCategory: category,
		AISuggestion: suggested,
		UserChoice:   chosen,
		CreatedAt:    time.Now(),
	}
}

func repeat(n int, r model.OverrideRecord) []model.OverrideRecord {
	out := make([]model.OverrideRecord, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func TestMiner_Mine_NoHistory(t *testing.T) {
	h := &fakeHistory{recommended: 10}
	m := NewMiner(h, h, nil)

	got := m.Mine(context.Background(), 1)

	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.OverrideRate)
	assert.NotNil(t, got.Patterns)
	assert.Empty(t, got.Patterns)
	assert.Equal(t, HistoryLimit, h.lastLimit)
}

func TestMiner_Mine_StoreErrorDegrades(t *testing.T) {
	h := &fakeHistory{err: errors.New("db down")}
	m := NewMiner(h, h, nil)

	got := m.Mine(context.Background(), 1)

	assert.Equal(t, 0, got.Total)
	assert.Empty(t, got.Patterns)
}

func TestMiner_Mine_CountErrorUsesMinimumDenominator(t *testing.T) {
	h := &fakeHistory{
		records:  []model.OverrideRecord{override("books", model.OutcomeKeep, model.OutcomeDonate)},
		countErr: errors.New("db down"),
	}
	m := NewMiner(h, h, nil)

	got := m.Mine(context.Background(), 1)

	assert.Equal(t, 1, got.Total)
	assert.Equal(t, 100, got.OverrideRate)
}

func TestMiner_Mine_Summary(t *testing.T) {
	records := append(
		repeat(3, override("clothing", model.OutcomeDonate, model.OutcomeKeep)),
		override("books", model.OutcomeSell, model.OutcomeDonate),
	)
	h := &fakeHistory{records: records, recommended: 20}
	m := NewMiner(h, h, nil)

	got := m.Mine(context.Background(), 1)

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 20, got.OverrideRate)
	assert.Equal(t, []string{
		"Tends to keep items even when the suggestion was to let them go",
		"Usually keeps clothing items",
	}, got.Patterns)
	assert.Equal(t, 3, got.Transitions["clothing"]["donate->keep"])
	assert.Equal(t, 1, got.Transitions["books"]["sell->donate"])
}

func TestAnalyze_GlobalRules(t *testing.T) {
	tests := []struct {
		name    string
		records []model.OverrideRecord
		want    []string
	}{
		{
			name: "two keeps despite suggestion is not enough",
			records: []model.OverrideRecord{
				override("a", model.OutcomeDiscard, model.OutcomeKeep),
				override("b", model.OutcomeSell, model.OutcomeKeep),
			},
			want: []string{},
		},
		{
			name: "three keeps despite suggestion",
			records: []model.OverrideRecord{
				override("a", model.OutcomeDiscard, model.OutcomeKeep),
				override("b", model.OutcomeSell, model.OutcomeKeep),
				override("c", model.OutcomeDonate, model.OutcomeKeep),
			},
			want: []string{"Tends to keep items even when the suggestion was to let them go"},
		},
		{
			name: "three more aggressive choices",
			records: []model.OverrideRecord{
				override("a", model.OutcomeKeep, model.OutcomeDiscard),
				override("b", model.OutcomeStorage, model.OutcomeSell),
				override("c", model.OutcomeAccessible, model.OutcomeDiscard),
			},
			want: []string{"Is more willing to let go of items than the suggestions recommend"},
		},
		{
			name: "donate over sell twice",
			records: []model.OverrideRecord{
				override("a", model.OutcomeSell, model.OutcomeDonate),
				override("b", model.OutcomeSell, model.OutcomeDonate),
			},
			want: []string{"Prefers donating over the hassle of selling"},
		},
		{
			name: "sell over donate twice",
			records: []model.OverrideRecord{
				override("a", model.OutcomeDonate, model.OutcomeSell),
				override("b", model.OutcomeDonate, model.OutcomeSell),
			},
			want: []string{"Prefers selling items rather than donating them"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.records))
		})
	}
}

func TestAnalyze_CategoryThreshold(t *testing.T) {
	// Storage->keep is not a disposal suggestion, so no global rule fires.
	keep := override("toys", model.OutcomeStorage, model.OutcomeKeep)

	t.Run("two records never emit a category pattern", func(t *testing.T) {
		assert.Empty(t, Analyze(repeat(2, keep)))
	})

	t.Run("three records emit a category pattern", func(t *testing.T) {
		assert.Equal(t, []string{"Usually keeps toys items"}, Analyze(repeat(3, keep)))
	})

	t.Run("share must exceed seventy percent", func(t *testing.T) {
		records := append(repeat(7, keep), repeat(3, override("toys", model.OutcomeStorage, model.OutcomeAccessible))...)
		assert.Empty(t, Analyze(records))

		records = append(repeat(8, keep), repeat(2, override("toys", model.OutcomeStorage, model.OutcomeAccessible))...)
		assert.Equal(t, []string{"Usually keeps toys items"}, Analyze(records))
	})

	t.Run("disposal pattern per category", func(t *testing.T) {
		records := []model.OverrideRecord{
			override("cables", model.OutcomeDonate, model.OutcomeDiscard),
			override("cables", model.OutcomeSell, model.OutcomeDiscard),
			override("cables", model.OutcomeDiscard, model.OutcomeDonate),
		}
		assert.Equal(t, []string{"Readily lets go of cables items"}, Analyze(records))
	})
}

func TestOverrideRate(t *testing.T) {
	tests := []struct {
		name        string
		overrides   int
		recommended int
		want        int
	}{
		{name: "no overrides", overrides: 0, recommended: 10, want: 0},
		{name: "rounds to nearest", overrides: 1, recommended: 3, want: 33},
		{name: "rounds half up", overrides: 1, recommended: 8, want: 13},
		{name: "zero denominator uses one", overrides: 1, recommended: 0, want: 100},
		{name: "clamped at one hundred", overrides: 12, recommended: 5, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, OverrideRate(tt.overrides, tt.recommended))
		})
	}
}
