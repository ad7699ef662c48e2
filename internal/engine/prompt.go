package engine

import (
	"fmt"
	"strings"

	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/personality"
)

const explanationLength = "Keep the explanation to two to four sentences and do not suggest a different outcome."

// SystemPrompt combines the persona and tone instructions for an explanation.
func SystemPrompt(evalCtx model.EvaluationContext) string {
	profile := personality.Lookup(evalCtx.PersonalityMode)

	var sb strings.Builder
	sb.WriteString(profile.SystemInstruction)
	sb.WriteString("\n\n")
	sb.WriteString(profile.StyleInstructions)
	if evalCtx.ToneInstruction != "" {
		sb.WriteString("\n")
		sb.WriteString(evalCtx.ToneInstruction)
	}
	sb.WriteString("\n")
	sb.WriteString(explanationLength)
	return sb.String()
}

// ExplanationPrompt describes the item, its context and the chosen outcome.
func ExplanationPrompt(evalCtx model.EvaluationContext, outcome model.Outcome) string {
	item := evalCtx.Item

	var sb strings.Builder
	fmt.Fprintf(&sb, "Item: %s\n", item.Name)
	if item.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", item.Category)
	}
	if notes := strings.TrimSpace(item.Notes); notes != "" {
		fmt.Fprintf(&sb, "Owner's notes: %s\n", notes)
	}

	answers := item.Answers()
	for _, d := range model.Dimensions {
		if v := answers.Get(d); v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", titleCase(string(d)), v)
		}
	}

	if evalCtx.UserGoal != "" {
		fmt.Fprintf(&sb, "User's goal: %s\n", evalCtx.UserGoal)
	}
	fmt.Fprintf(&sb, "Season: %s\n", evalCtx.Season)
	if evalCtx.DuplicateCount > 0 {
		fmt.Fprintf(&sb, "They own %d other item(s) in this category.\n", evalCtx.DuplicateCount)
	}

	if len(evalCtx.Patterns) > 0 {
		sb.WriteString("Patterns from their past decisions:\n")
		for _, p := range evalCtx.Patterns {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if evalCtx.OverrideRate > 0 {
		fmt.Fprintf(&sb, "They change the suggested outcome %d%% of the time.\n", evalCtx.OverrideRate)
	}

	fmt.Fprintf(&sb, "\nRecommendation: %s\n", outcome.Label())
	fmt.Fprintf(&sb, "Explain to the user why %q is the right choice for this item.", outcome.Label())
	return sb.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
