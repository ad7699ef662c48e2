package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

func TestBuild_DeploymentDefaults(t *testing.T) {
	d := DefaultDeployment()
	d.APIKeys = map[string]string{"openai": "from-config"}
	d.MonthlySystemLimit = 50

	s := Build(d, nil, nil)

	assert.Equal(t, "anthropic", s.DefaultProvider)
	assert.Equal(t, "Other", s.DefaultCategory)
	assert.Equal(t, DefaultCategories, s.Categories)
	assert.Equal(t, "from-config", s.APIKeys["openai"])
	assert.InDelta(t, 50, s.MonthlySystemLimit, 1e-9)
	assert.Equal(t, model.DefaultStrategy(), s.Strategy)
}

func TestBuild_RowsOverrideDeployment(t *testing.T) {
	custom := model.DefaultStrategy()
	custom.Version = 7
	custom.ActiveStrategy = "minimalist"
	blob, err := EncodeStrategy(custom)
	require.NoError(t, err)

	d := DefaultDeployment()
	d.APIKeys = map[string]string{"openai": "from-config"}

	s := Build(d, map[string]string{
		KeyStrategy:               blob,
		KeyDefaultProvider:        "OpenAI",
		KeyMonthlySystemLimit:     "100",
		KeyMonthlyUserLimit:       "2.5",
		KeyCategories:             `["Garage", "Garden"]`,
		KeyDefaultCategory:        "Garage",
		PrefixAPIKey + "openai":   "from-table",
		PrefixBaseURL + "ollama":  "http://gpu:11434",
		PrefixModel + "anthropic": "claude-sonnet-4-20250514",
		"unrelated":               "ignored",
	}, nil)

	assert.Equal(t, 7, s.Strategy.Version)
	assert.Equal(t, "minimalist", s.Strategy.Active())
	assert.Equal(t, "openai", s.DefaultProvider)
	assert.InDelta(t, 100, s.MonthlySystemLimit, 1e-9)
	assert.InDelta(t, 2.5, s.MonthlyUserLimit, 1e-9)
	assert.Equal(t, []string{"Garage", "Garden"}, s.Categories)
	assert.Equal(t, "Garage", s.DefaultCategory)
	assert.Equal(t, "from-table", s.APIKeys["openai"])
	assert.Equal(t, "http://gpu:11434", s.BaseURLs["ollama"])
	assert.Equal(t, "claude-sonnet-4-20250514", s.Models["anthropic"])

	assert.Equal(t, "from-config", d.APIKeys["openai"], "deployment map must not be mutated")
}

func TestBuild_MalformedRowsIgnored(t *testing.T) {
	s := Build(DefaultDeployment(), map[string]string{
		KeyStrategy:           `{"weights": {}}`,
		KeyMonthlySystemLimit: "lots",
		KeyCategories:         " Books , , Toys ",
	}, nil)

	assert.Equal(t, model.DefaultStrategy(), s.Strategy)
	assert.Zero(t, s.MonthlySystemLimit)
	assert.Equal(t, []string{"Books", "Toys"}, s.Categories)
}

func TestSettings_HasCategory(t *testing.T) {
	s := Build(DefaultDeployment(), nil, nil)
	assert.True(t, s.HasCategory("kitchen"))
	assert.False(t, s.HasCategory("spaceship"))
}
