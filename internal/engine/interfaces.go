package engine

import (
	"context"

	"github.com/thunderdanp/declutter-sub000/internal/config"
	"github.com/thunderdanp/declutter-sub000/internal/llm"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/service"
)

// Store is the subset of storage the decision service reads and writes.
type Store interface {
	service.ItemStore
	service.UserStore
	service.OverrideStore
}

// Gateway sends requests to the configured AI vendors.
type Gateway interface {
	UnderstandImage(ctx context.Context, caller llm.Caller, settings llm.Settings, req llm.ImageRequest) (llm.Completion, error)
	GenerateText(ctx context.Context, caller llm.Caller, settings llm.Settings, req llm.TextRequest) (llm.Completion, error)
}

// SettingsSource hands out the current runtime settings snapshot.
type SettingsSource interface {
	Current() *config.Settings
}

// PatternSource summarizes a user's override history.
type PatternSource interface {
	Mine(ctx context.Context, userID int64) model.PatternSummary
}
