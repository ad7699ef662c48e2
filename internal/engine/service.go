// Package engine runs the decision pipeline: it scores items, explains
// outcomes through the vendor gateway, analyzes photos and records overrides.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/config"
	"github.com/thunderdanp/declutter-sub000/internal/llm"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/pattern"
	"github.com/thunderdanp/declutter-sub000/internal/scoring"
	"github.com/thunderdanp/declutter-sub000/internal/service"
	"github.com/thunderdanp/declutter-sub000/internal/usage"
)

// Evaluation is the scored outcome for one item.
type Evaluation struct {
	scoring.Result
	ItemID int64 `json:"item_id"`
}

// Explanation is generated prose justifying an outcome.
type Explanation struct {
	Context  model.EvaluationContext `json:"context"`
	Text     string                  `json:"text"`
	Provider string                  `json:"provider"`
	Model    string                  `json:"model"`
}

// RescoreSummary reports the result of re-evaluating a user's items.
type RescoreSummary struct {
	Counts  map[model.Outcome]int `json:"counts"`
	Total   int                   `json:"total"`
	Changed int                   `json:"changed"`
}

// Config holds configuration for the decision service.
type Config struct {
	RetryOptions service.RetryOptions
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		RetryOptions: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Service orchestrates scoring, context assembly and vendor calls.
type Service struct {
	store     Store
	settings  SettingsSource
	gateway   Gateway
	scorer    *scoring.Engine
	patterns  PatternSource
	assembler *ContextAssembler
	now       func() time.Time
	logger    *slog.Logger
	config    Config
}

// New creates a new decision service with default configuration.
func New(store Store, settings SettingsSource, gateway Gateway, logger *slog.Logger) *Service {
	return NewWithConfig(store, settings, gateway, DefaultConfig(), logger)
}

// NewWithConfig creates a new decision service with custom configuration.
func NewWithConfig(store Store, settings SettingsSource, gateway Gateway, cfg Config, logger *slog.Logger) *Service {
	logger = common.LoggerOrDefault(logger)
	miner := pattern.NewMiner(store, store, logger)
	return &Service{
		store:     store,
		settings:  settings,
		gateway:   gateway,
		scorer:    scoring.NewEngine(logger),
		patterns:  miner,
		assembler: NewContextAssembler(store, miner, logger),
		now:       time.Now,
		logger:    logger,
		config:    cfg,
	}
}

// Patterns returns the mined override summary for a user.
func (s *Service) Patterns(ctx context.Context, userID int64) model.PatternSummary {
	return s.patterns.Mine(ctx, userID)
}

// Evaluate scores an item and stores the recommendation on it. When answers is
// nil the answers already stored on the item are used; otherwise they replace
// the stored ones.
func (s *Service) Evaluate(ctx context.Context, userID, itemID int64, answers *model.Answers) (*Evaluation, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if answers != nil {
		applyAnswers(item, *answers)
		if err := s.store.SaveItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to save answers for item %d: %w", itemID, err)
		}
	}

	eval := s.score(userID, item)
	if err := s.store.SaveRecommendation(ctx, item.ID, eval.Outcome, eval.Strategy); err != nil {
		return nil, fmt.Errorf("failed to save recommendation for item %d: %w", itemID, err)
	}

	s.logger.Info("evaluated item",
		"user_id", userID,
		"item_id", itemID,
		"outcome", eval.Outcome,
		"strategy", eval.Strategy,
		"variant", eval.Variant)

	return eval, nil
}

func (s *Service) score(userID int64, item *model.Item) *Evaluation {
	strategy := s.settings.Current().Strategy
	result := s.scorer.EvaluateForUser(strategy, userID, item.Answers())
	for _, w := range result.Warnings {
		s.logger.Warn("ignored answer while scoring",
			"item_id", item.ID,
			"error", w)
	}
	return &Evaluation{Result: result, ItemID: item.ID}
}

// Explain generates prose explaining why outcome suits the item. Transient
// vendor failures are retried; rejected credentials and requests,
// configuration, quota and parse errors are not.
func (s *Service) Explain(ctx context.Context, userID, itemID int64, outcome model.Outcome) (*Explanation, error) {
	if !outcome.IsValid() {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidOutcome, outcome)
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	user := s.loadUser(ctx, userID)
	evalCtx := s.assembler.Assemble(ctx, user, *item)
	current := s.settings.Current()

	req := llm.TextRequest{
		Prompt:       ExplanationPrompt(evalCtx, outcome),
		SystemPrompt: SystemPrompt(evalCtx),
	}

	var completion llm.Completion
	err = common.WithRetry(ctx, func() error {
		var callErr error
		completion, callErr = s.gateway.GenerateText(ctx, callerFor(userID, user), VendorSettings(current), req)
		return callErr
	}, s.config.RetryOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to explain item %d: %w", itemID, err)
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return nil, &common.ResponseParseError{Err: errors.New("empty explanation"), Raw: completion.Text}
	}

	return &Explanation{
		Context:  evalCtx,
		Text:     text,
		Provider: completion.Provider,
		Model:    completion.Model,
	}, nil
}

// AnalyzeImage asks a vision vendor to name, describe and categorize a photo.
// An empty mediaType is sniffed from the image bytes.
func (s *Service) AnalyzeImage(ctx context.Context, userID int64, image []byte, mediaType string) (*model.ImageAnalysis, error) {
	if len(image) == 0 {
		return nil, common.NewUserError("image is empty", nil)
	}
	if mediaType == "" {
		mediaType = http.DetectContentType(image)
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, common.NewUserError(fmt.Sprintf("unsupported media type %q", mediaType), nil)
	}

	user := s.loadUser(ctx, userID)
	current := s.settings.Current()

	completion, err := s.gateway.UnderstandImage(ctx, callerFor(userID, user), VendorSettings(current), llm.ImageRequest{
		Data:       image,
		MediaType:  mediaType,
		Categories: current.Categories,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	analysis, err := llm.ParseImageAnalysis(completion.Text, current.Categories, current.DefaultCategory)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("analyzed image",
		"user_id", userID,
		"provider", completion.Provider,
		"category", analysis.Category)

	return &analysis, nil
}

// RecordOverride stores a user's choice when it differs from the suggestion.
// Identical choices are not overrides and are ignored.
func (s *Service) RecordOverride(ctx context.Context, userID, itemID int64, suggested, chosen model.Outcome, reason string) error {
	if !suggested.IsValid() {
		return fmt.Errorf("%w: suggested %q", common.ErrInvalidOutcome, suggested)
	}
	if !chosen.IsValid() {
		return fmt.Errorf("%w: chosen %q", common.ErrInvalidOutcome, chosen)
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if suggested == chosen {
		s.logger.Debug("choice matches suggestion, not recording override",
			"user_id", userID,
			"item_id", itemID)
		return nil
	}

	record := &model.OverrideRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		ItemID:       itemID,
		ItemCategory: item.Category,
		AISuggestion: suggested,
		UserChoice:   chosen,
		Reason:       strings.TrimSpace(reason),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.SaveOverride(ctx, record); err != nil {
		return fmt.Errorf("failed to record override: %w", err)
	}

	s.logger.Info("recorded override",
		"user_id", userID,
		"item_id", itemID,
		"suggested", suggested,
		"chosen", chosen)
	return nil
}

// Rescore re-evaluates every item the user owns under the current strategy.
// progress, if set, is called once per item.
func (s *Service) Rescore(ctx context.Context, userID int64, progress func()) (*RescoreSummary, error) {
	items, err := s.store.GetItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	summary := &RescoreSummary{Counts: make(map[model.Outcome]int)}
	for i := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		item := &items[i]
		eval := s.score(userID, item)
		if err := s.store.SaveRecommendation(ctx, item.ID, eval.Outcome, eval.Strategy); err != nil {
			return summary, fmt.Errorf("failed to save recommendation for item %d: %w", item.ID, err)
		}

		summary.Total++
		summary.Counts[eval.Outcome]++
		if item.Recommendation == nil || *item.Recommendation != eval.Outcome {
			summary.Changed++
		}
		if progress != nil {
			progress()
		}
	}

	s.logger.Info("rescored items",
		"user_id", userID,
		"total", summary.Total,
		"changed", summary.Changed)

	return summary, nil
}

func (s *Service) ownedItem(ctx context.Context, userID, itemID int64) (*model.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", itemID, err)
	}
	if item.UserID != userID {
		return nil, fmt.Errorf("%w: item %d", common.ErrItemOwnership, itemID)
	}
	return item, nil
}

// loadUser returns nil when the profile is unavailable.
func (s *Service) loadUser(ctx context.Context, userID int64) *model.User {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user profile",
			"user_id", userID,
			"error", err)
		return nil
	}
	return user
}

func callerFor(userID int64, user *model.User) llm.Caller {
	caller := llm.Caller{UserID: userID}
	if user != nil {
		caller.APIKey = user.APIKey
		caller.PreferredProvider = user.PreferredProvider
	}
	return caller
}

// VendorSettings projects a settings snapshot onto the gateway's view.
func VendorSettings(s *config.Settings) llm.Settings {
	return llm.Settings{
		APIKeys:         s.APIKeys,
		BaseURLs:        s.BaseURLs,
		Models:          s.Models,
		DefaultProvider: s.DefaultProvider,
		Limits: usage.Limits{
			MonthlySystem: s.MonthlySystemLimit,
			MonthlyUser:   s.MonthlyUserLimit,
		},
	}
}

func applyAnswers(item *model.Item, a model.Answers) {
	item.UsageFrequency = a.Usage
	item.Sentimental = a.Sentimental
	item.Condition = a.Condition
	item.ValueTier = a.Value
	item.Replaceability = a.Replaceability
	item.Space = a.Space
}
