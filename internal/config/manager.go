package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/service"
)

// Manager owns the current Settings snapshot. The snapshot only changes on
// Reload, which the write helpers call after persisting.
type Manager struct {
	store      service.SettingsStore
	logger     *slog.Logger
	current    atomic.Pointer[Settings]
	deployment Deployment
}

// NewManager creates a manager. Current returns deployment defaults until
// the first Reload.
func NewManager(store service.SettingsStore, deployment Deployment, logger *slog.Logger) *Manager {
	m := &Manager{
		store:      store,
		deployment: deployment,
		logger:     common.LoggerOrDefault(logger),
	}
	m.current.Store(Build(deployment, nil, m.logger))
	return m
}

// Current returns the active snapshot.
func (m *Manager) Current() *Settings {
	return m.current.Load()
}

// Reload reads the settings table and swaps in a new snapshot. On error the
// previous snapshot stays active.
func (m *Manager) Reload(ctx context.Context) (*Settings, error) {
	rows, err := m.store.GetAllSettings(ctx)
	if err != nil {
		return m.Current(), fmt.Errorf("failed to load settings: %w", err)
	}

	s := Build(m.deployment, rows, m.logger)
	m.current.Store(s)

	m.logger.Debug("settings reloaded",
		"rows", len(rows),
		"provider", s.DefaultProvider,
		"strategy_version", s.Strategy.Version)

	return s, nil
}

// Set writes one setting and reloads.
func (m *Manager) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: setting key is required", common.ErrInvalidConfig)
	}
	if err := m.store.SetSetting(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	_, err := m.Reload(ctx)
	return err
}

// SaveStrategy validates and stores a strategy, bumping its version past the
// active one.
func (m *Manager) SaveStrategy(ctx context.Context, strategy model.RecommendationStrategy) (model.RecommendationStrategy, error) {
	if err := strategy.Validate(); err != nil {
		return model.RecommendationStrategy{}, err
	}

	if active := m.Current().Strategy.Version; strategy.Version <= active {
		strategy.Version = active + 1
	}

	blob, err := EncodeStrategy(strategy)
	if err != nil {
		return model.RecommendationStrategy{}, err
	}
	if err := m.Set(ctx, KeyStrategy, blob); err != nil {
		return model.RecommendationStrategy{}, err
	}

	m.logger.Info("recommendation strategy saved", "version", strategy.Version)
	return strategy, nil
}
