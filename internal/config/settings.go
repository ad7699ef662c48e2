package config

import (
	"log/slog"
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// Settings table keys.
const (
	KeyStrategy           = "recommendation_strategy"
	KeyDefaultProvider    = "ai_provider"
	KeyMonthlySystemLimit = "ai_monthly_limit"
	KeyMonthlyUserLimit   = "ai_user_monthly_limit"
	KeyCategories         = "categories"
	KeyDefaultCategory    = "default_category"

	// Per-vendor keys are a prefix followed by the vendor id, e.g. "api_key.openai".
	PrefixAPIKey  = "api_key."
	PrefixBaseURL = "base_url."
	PrefixModel   = "model."
)

// Settings is an immutable snapshot of runtime configuration. Callers must
// not modify it; Manager.Reload replaces it wholesale.
type Settings struct {
	LoadedAt           time.Time
	APIKeys            map[string]string
	BaseURLs           map[string]string
	Models             map[string]string
	DefaultProvider    string
	DefaultCategory    string
	Categories         []string
	Strategy           model.RecommendationStrategy
	MonthlySystemLimit float64
	MonthlyUserLimit   float64
}

// Build merges settings rows over deployment defaults. Malformed rows are
// logged and ignored.
func Build(d Deployment, rows map[string]string, logger *slog.Logger) *Settings {
	logger = common.LoggerOrDefault(logger)

	s := &Settings{
		LoadedAt:           time.Now(),
		APIKeys:            maps.Clone(d.APIKeys),
		BaseURLs:           maps.Clone(d.BaseURLs),
		Models:             maps.Clone(d.Models),
		DefaultProvider:    d.DefaultProvider,
		DefaultCategory:    d.DefaultCategory,
		Categories:         append([]string(nil), d.Categories...),
		Strategy:           model.DefaultStrategy(),
		MonthlySystemLimit: d.MonthlySystemLimit,
		MonthlyUserLimit:   d.MonthlyUserLimit,
	}
	if s.APIKeys == nil {
		s.APIKeys = map[string]string{}
	}
	if s.BaseURLs == nil {
		s.BaseURLs = map[string]string{}
	}
	if s.Models == nil {
		s.Models = map[string]string{}
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := strings.TrimSpace(rows[key])
		if value == "" {
			continue
		}

		switch {
		case key == KeyStrategy:
			strategy, err := DecodeStrategy(value)
			if err != nil {
				logger.Warn("ignoring stored recommendation strategy", "error", err)
				continue
			}
			s.Strategy = strategy
		case key == KeyDefaultProvider:
			s.DefaultProvider = strings.ToLower(value)
		case key == KeyMonthlySystemLimit:
			s.MonthlySystemLimit = parseLimit(logger, key, value, s.MonthlySystemLimit)
		case key == KeyMonthlyUserLimit:
			s.MonthlyUserLimit = parseLimit(logger, key, value, s.MonthlyUserLimit)
		case key == KeyCategories:
			s.Categories = parseCategories(value)
		case key == KeyDefaultCategory:
			s.DefaultCategory = value
		case strings.HasPrefix(key, PrefixAPIKey):
			s.APIKeys[strings.ToLower(strings.TrimPrefix(key, PrefixAPIKey))] = value
		case strings.HasPrefix(key, PrefixBaseURL):
			s.BaseURLs[strings.ToLower(strings.TrimPrefix(key, PrefixBaseURL))] = value
		case strings.HasPrefix(key, PrefixModel):
			s.Models[strings.ToLower(strings.TrimPrefix(key, PrefixModel))] = value
		default:
			logger.Debug("ignoring unknown setting", "key", key)
		}
	}

	return s
}

func parseLimit(logger *slog.Logger, key, value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warn("ignoring malformed limit", "key", key, "value", value)
		return fallback
	}
	return v
}

// parseCategories accepts a JSON array or a comma-separated list.
func parseCategories(value string) []string {
	var list []string
	if strings.HasPrefix(value, "[") {
		if err := json.Unmarshal([]byte(value), &list); err == nil {
			return list
		}
	}
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			list = append(list, c)
		}
	}
	return list
}

// HasCategory reports whether name is in the vocabulary, ignoring case.
func (s *Settings) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
