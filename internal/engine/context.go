package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/personality"
	"github.com/thunderdanp/declutter-sub000/internal/service"
	"github.com/thunderdanp/declutter-sub000/internal/tone"
)

// ContextAssembler gathers the signals used to explain one recommendation.
// A failing upstream read never fails the assembly; the affected field keeps
// its default.
type ContextAssembler struct {
	items    service.ItemStore
	patterns PatternSource
	now      func() time.Time
	logger   *slog.Logger
}

// NewContextAssembler creates an assembler over the given item store and
// pattern source.
func NewContextAssembler(items service.ItemStore, patterns PatternSource, logger *slog.Logger) *ContextAssembler {
	return &ContextAssembler{
		items:    items,
		patterns: patterns,
		now:      time.Now,
		logger:   common.LoggerOrDefault(logger),
	}
}

// Assemble builds the context for item. user may be nil when the profile
// could not be read.
func (a *ContextAssembler) Assemble(ctx context.Context, user *model.User, item model.Item) model.EvaluationContext {
	classified := tone.Classify(item.Notes)

	evalCtx := model.EvaluationContext{
		Item:            item,
		PersonalityMode: personality.Balanced,
		Season:          model.SeasonOf(a.now()),
		EmotionalTone:   classified.Tone,
		ToneInstruction: classified.Instruction,
		Patterns:        []string{},
	}

	if user != nil {
		evalCtx.UserGoal = user.Goal
		evalCtx.PersonalityMode = personality.Lookup(user.PersonalityMode).Key
	}

	evalCtx.DuplicateCount = a.duplicates(ctx, item)

	if a.patterns != nil {
		summary := a.patterns.Mine(ctx, item.UserID)
		if summary.Patterns != nil {
			evalCtx.Patterns = summary.Patterns
		}
		evalCtx.OverrideRate = summary.OverrideRate
	}

	return evalCtx
}

// duplicates counts the user's other items in the same category.
func (a *ContextAssembler) duplicates(ctx context.Context, item model.Item) int {
	if item.Category == "" {
		return 0
	}
	n, err := a.items.CountItemsInCategory(ctx, item.UserID, item.Category)
	if err != nil {
		a.logger.Warn("failed to count items in category",
			"user_id", item.UserID,
			"category", item.Category,
			"error", err)
		return 0
	}
	// The count includes the item itself.
	if n > 0 {
		n--
	}
	return n
}
