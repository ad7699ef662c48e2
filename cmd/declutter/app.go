package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/config"
	"github.com/thunderdanp/declutter-sub000/internal/engine"
	"github.com/thunderdanp/declutter-sub000/internal/llm"
	"github.com/thunderdanp/declutter-sub000/internal/storage"
	"github.com/thunderdanp/declutter-sub000/internal/usage"
)

// app bundles the wired components a command needs.
type app struct {
	store      *storage.SQLiteStorage
	settings   *config.Manager
	ledger     *usage.Ledger
	gateway    *llm.Gateway
	service    *engine.Service
	deployment config.Deployment
}

// openApp opens and migrates the database, loads settings and wires the
// decision service.
func openApp(ctx context.Context) (*app, error) {
	deployment := config.LoadDeployment()
	logger := slog.Default()

	store, err := storage.NewSQLiteStorage(deployment.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	settings := config.NewManager(store, deployment, logger)
	if _, err := settings.Reload(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	ledger := usage.NewLedger(store, logger)
	gateway := llm.NewGateway(llm.DefaultRegistry(), ledger, llm.GatewayConfig{
		Timeout:           deployment.LLMTimeout,
		Temperature:       deployment.Temperature,
		RequestsPerMinute: deployment.RequestsPerMinute,
		MaxTokens:         deployment.MaxTokens,
	}, logger)

	return &app{
		store:      store,
		settings:   settings,
		ledger:     ledger,
		gateway:    gateway,
		service:    engine.New(store, settings, gateway, logger),
		deployment: deployment,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
