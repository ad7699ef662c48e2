package pattern

import (
	"fmt"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// HistoryLimit bounds how many overrides are mined per user.
const HistoryLimit = 100

// GlobalRule fires when at least MinCount overrides across all categories match.
type GlobalRule struct {
	Match    func(suggested, chosen model.Outcome) bool
	Name     string
	Pattern  string
	MinCount int
}

// CategoryRule fires for a category with at least MinRecords overrides when
// more than Share of them end in a matching choice.
type CategoryRule struct {
	Match      func(chosen model.Outcome) bool
	Name       string
	Format     string
	MinRecords int
	Share      float64
}

// GlobalRules are evaluated in order over the full history.
var GlobalRules = []GlobalRule{
	{
		Name:     "keeps-despite-suggestion",
		MinCount: 3,
		Match: func(suggested, chosen model.Outcome) bool {
			return chosen == model.OutcomeKeep && suggested.IsDisposal()
		},
		Pattern: "Tends to keep items even when the suggestion was to let them go",
	},
	{
		Name:     "more-aggressive",
		MinCount: 3,
		Match: func(suggested, chosen model.Outcome) bool {
			return chosen.IsDisposal() && suggested.IsRetention()
		},
		Pattern: "Is more willing to let go of items than the suggestions recommend",
	},
	{
		Name:     "prefers-donating",
		MinCount: 2,
		Match: func(suggested, chosen model.Outcome) bool {
			return suggested == model.OutcomeSell && chosen == model.OutcomeDonate
		},
		Pattern: "Prefers donating over the hassle of selling",
	},
	{
		Name:     "prefers-selling",
		MinCount: 2,
		Match: func(suggested, chosen model.Outcome) bool {
			return suggested == model.OutcomeDonate && chosen == model.OutcomeSell
		},
		Pattern: "Prefers selling items rather than donating them",
	},
}

// CategoryRules are evaluated per category, categories in name order.
var CategoryRules = []CategoryRule{
	{
		Name:       "category-retention",
		MinRecords: 3,
		Share:      0.7,
		Match:      func(chosen model.Outcome) bool { return chosen == model.OutcomeKeep },
		Format:     "Usually keeps %s items",
	},
	{
		Name:       "category-disposal",
		MinRecords: 3,
		Share:      0.7,
		Match:      func(chosen model.Outcome) bool { return chosen.IsDisposal() },
		Format:     "Readily lets go of %s items",
	},
}

func (r CategoryRule) pattern(category string) string {
	return fmt.Sprintf(r.Format, category)
}
