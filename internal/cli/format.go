package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thunderdanp/declutter-sub000/internal/llm"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/scoring"
	"github.com/thunderdanp/declutter-sub000/internal/usage"
)

// FormatEvaluation renders the recommended outcome and the full score table.
func FormatEvaluation(itemName string, result scoring.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recommendation: %s\n", StyleOutcome(result.Outcome))
	fmt.Fprintf(&sb, "%s\n\n", SubtleStyle.Render(fmt.Sprintf("strategy %s (variant %s), margin %.2f", result.Strategy, result.Variant, result.Margin)))
	if result.TieBreak {
		sb.WriteString(WarningStyle.Render("Close call: the tie-break order decided this one.") + "\n\n")
	}
	sb.WriteString(scoreTable(result.Ranked))
	return RenderBox(itemName, sb.String())
}

func scoreTable(ranked []scoring.Score) string {
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			TableHeaderStyle.Width(28).Render("Outcome"),
			TableHeaderStyle.Render("Points"),
		),
	}
	for _, s := range ranked {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			TableCellStyle.Width(28).Render(s.Outcome.Label()),
			TableCellStyle.Render(fmt.Sprintf("%6.2f", s.Points)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// FormatExplanation renders generated reasoning with its source.
func FormatExplanation(outcome model.Outcome, text, provider, modelID string) string {
	content := text + "\n\n" + SubtleStyle.Render(fmt.Sprintf("%s %s / %s", RobotIcon, provider, modelID))
	return RenderBox("Why "+outcome.Label()+"?", content)
}

// FormatImageAnalysis renders a photo analysis result.
func FormatImageAnalysis(a model.ImageAnalysis) string {
	content := fmt.Sprintf("%s %s\n%s %s\n\n%s",
		BoldStyle.Render("Name:"), a.Name,
		BoldStyle.Render("Category:"), a.Category,
		a.Description)
	return RenderBox(CameraIcon+" Photo analysis", content)
}

// FormatUsage renders month-to-date usage against the configured ceilings.
func FormatUsage(summary *model.UsageSummary, limits usage.Limits) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Since %s\n\n", summary.Since.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Requests:        %d (%d with your own key, %d failed)\n", summary.Requests, summary.OwnKeyRequests, summary.Failed)
	fmt.Fprintf(&sb, "Tokens:          %d in / %d out\n", summary.InputTokens, summary.OutputTokens)
	fmt.Fprintf(&sb, "Estimated cost:  $%.4f", summary.Cost)
	if limits.MonthlyUser > 0 {
		fmt.Fprintf(&sb, " of $%.2f", limits.MonthlyUser)
		if summary.Cost >= limits.MonthlyUser {
			sb.WriteString("\n\n" + FormatWarning("Monthly limit reached. Add your own API key to keep using AI features."))
		}
	}
	return RenderBox(ChartIcon+" AI usage this month", sb.String())
}

// FormatProviders lists registered vendors; defaultID is marked.
func FormatProviders(providers []llm.ProviderInfo, defaultID string) string {
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			TableHeaderStyle.Width(12).Render("ID"),
			TableHeaderStyle.Width(26).Render("Default model"),
			TableHeaderStyle.Width(10).Render("Vision"),
			TableHeaderStyle.Render("Price per 1M tokens (in/out)"),
		),
	}
	for _, p := range providers {
		id := p.ID
		if strings.EqualFold(p.ID, defaultID) {
			id += " *"
		}
		vision := "no"
		if p.SupportsVision {
			vision = "yes"
		}
		price := "free"
		if !p.Rates.IsFree() {
			price = fmt.Sprintf("$%.2f / $%.2f", p.Rates.InputPerMillion, p.Rates.OutputPerMillion)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			TableCellStyle.Width(12).Render(id),
			TableCellStyle.Width(26).Render(p.DefaultModel),
			TableCellStyle.Width(10).Render(vision),
			TableCellStyle.Render(price),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// FormatPatterns renders mined override patterns.
func FormatPatterns(summary model.PatternSummary) string {
	if summary.Total == 0 {
		return FormatInfo("No overrides recorded yet.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d recent overrides, override rate %d%%\n", summary.Total, summary.OverrideRate)
	for _, p := range summary.Patterns {
		fmt.Fprintf(&sb, "\n• %s", p)
	}

	if len(summary.Transitions) > 0 {
		sb.WriteString("\n\n" + BoldStyle.Render("Overrides by category"))
		categories := make([]string, 0, len(summary.Transitions))
		for k := range summary.Transitions {
			categories = append(categories, k)
		}
		sort.Strings(categories)
		for _, c := range categories {
			moves := make([]string, 0, len(summary.Transitions[c]))
			for k := range summary.Transitions[c] {
				moves = append(moves, k)
			}
			sort.Strings(moves)
			for _, m := range moves {
				fmt.Fprintf(&sb, "\n  %s  %s: %d", c, strings.ReplaceAll(m, "->", " → "), summary.Transitions[c][m])
			}
		}
	}
	return RenderBox("Decision patterns", sb.String())
}
