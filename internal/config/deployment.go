// Package config loads deployment configuration and holds the runtime
// settings snapshot read from the settings table.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Deployment holds defaults from the config file and environment. Rows in
// the settings table override the runtime parts of it.
type Deployment struct {
	APIKeys            map[string]string
	BaseURLs           map[string]string
	Models             map[string]string
	DatabasePath       string
	DefaultProvider    string
	DefaultCategory    string
	Categories         []string
	LLMTimeout         time.Duration
	MonthlySystemLimit float64
	MonthlyUserLimit   float64
	Temperature        float64
	RequestsPerMinute  int
	MaxTokens          int
}

// DefaultCategories is the item category vocabulary used when none is configured.
var DefaultCategories = []string{
	"Books",
	"Clothing",
	"Decor",
	"Electronics",
	"Furniture",
	"Kitchen",
	"Memorabilia",
	"Sports",
	"Tools",
	"Toys",
	"Other",
}

// DefaultDeployment returns the built-in defaults.
func DefaultDeployment() Deployment {
	return Deployment{
		DatabasePath:      "~/.local/share/declutter/declutter.db",
		DefaultProvider:   "anthropic",
		DefaultCategory:   "Other",
		Categories:        append([]string(nil), DefaultCategories...),
		LLMTimeout:        60 * time.Second,
		Temperature:       0.7,
		RequestsPerMinute: 60,
		MaxTokens:         1024,
	}
}

// LoadDeployment loads deployment configuration from Viper.
// It follows this precedence:
// 1. Viper configuration (from config file or DECLUTTER_ env vars)
// 2. Default values
func LoadDeployment() Deployment {
	cfg := DefaultDeployment()

	if v := viper.GetString("database.path"); v != "" {
		cfg.DatabasePath = v
	}
	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.DefaultProvider = strings.ToLower(v)
	}
	if v := viper.GetDuration("llm.timeout"); v > 0 {
		cfg.LLMTimeout = v
	}
	if v := viper.GetInt("llm.rate_limit"); v > 0 {
		cfg.RequestsPerMinute = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.MaxTokens = v
	}
	if v := viper.GetFloat64("llm.temperature"); v > 0 {
		cfg.Temperature = v
	}
	cfg.APIKeys = lowerKeys(viper.GetStringMapString("llm.api_keys"))
	cfg.BaseURLs = lowerKeys(viper.GetStringMapString("llm.base_urls"))
	cfg.Models = lowerKeys(viper.GetStringMapString("llm.models"))

	cfg.MonthlySystemLimit = viper.GetFloat64("limits.monthly_system")
	cfg.MonthlyUserLimit = viper.GetFloat64("limits.monthly_user")

	if v := viper.GetStringSlice("categories.list"); len(v) > 0 {
		cfg.Categories = v
	}
	if v := viper.GetString("categories.default"); v != "" {
		cfg.DefaultCategory = v
	}

	return cfg
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v != "" {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}
