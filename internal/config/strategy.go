package config

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// DecodeStrategy parses and validates a stored strategy blob.
func DecodeStrategy(blob string) (model.RecommendationStrategy, error) {
	var strategy model.RecommendationStrategy
	if err := json.Unmarshal([]byte(blob), &strategy); err != nil {
		return model.RecommendationStrategy{}, fmt.Errorf("failed to decode strategy: %w", err)
	}
	if err := strategy.Validate(); err != nil {
		return model.RecommendationStrategy{}, err
	}
	return strategy, nil
}

// EncodeStrategy serializes a strategy for the settings table.
func EncodeStrategy(strategy model.RecommendationStrategy) (string, error) {
	data, err := json.Marshal(strategy)
	if err != nil {
		return "", fmt.Errorf("failed to encode strategy: %w", err)
	}
	return string(data), nil
}

// ReadStrategyYAML parses and validates a strategy document.
func ReadStrategyYAML(r io.Reader) (model.RecommendationStrategy, error) {
	var strategy model.RecommendationStrategy
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&strategy); err != nil {
		return model.RecommendationStrategy{}, fmt.Errorf("failed to parse strategy YAML: %w", err)
	}
	if err := strategy.Validate(); err != nil {
		return model.RecommendationStrategy{}, err
	}
	return strategy, nil
}

// LoadStrategyFile reads a YAML strategy file.
func LoadStrategyFile(path string) (model.RecommendationStrategy, error) {
	f, err := os.Open(ExpandPath(path))
	if err != nil {
		return model.RecommendationStrategy{}, fmt.Errorf("failed to open strategy file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadStrategyYAML(f)
}

// WriteStrategyYAML writes a strategy as YAML.
func WriteStrategyYAML(w io.Writer, strategy model.RecommendationStrategy) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(strategy); err != nil {
		return fmt.Errorf("failed to write strategy YAML: %w", err)
	}
	return encoder.Close()
}
