package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <item-id>",
		Short: "Score an item and store the recommendation",
		Long: `Score an item against the active recommendation strategy and store the
result. Answer flags replace the answers stored on the item.

With --interactive you can accept the recommendation or choose another
outcome; choosing differently is remembered and shapes future explanations.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(runEvaluate),
	}

	addAnswerFlags(cmd)
	cmd.Flags().BoolP("interactive", "i", false, "confirm or override the recommendation")
	cmd.Flags().Bool("explain", false, "also generate an AI explanation")

	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	userID, err := currentUserID()
	if err != nil {
		return err
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q: %w", args[0], err)
	}

	eval, err := a.service.Evaluate(ctx, userID, itemID, answersFromFlags(cmd))
	if err != nil {
		return err
	}

	item, err := a.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatEvaluation(item.Name, eval.Result))

	if explain, _ := cmd.Flags().GetBool("explain"); explain {
		explanation, err := a.service.Explain(ctx, userID, itemID, eval.Outcome)
		if err != nil {
			// The recommendation is already stored; prose is optional.
			slog.Warn("Failed to generate explanation", "item_id", itemID, "error", err)
			fmt.Fprintln(out, cli.FormatWarning("No explanation available: "+err.Error()))
		} else {
			fmt.Fprintln(out, cli.FormatExplanation(eval.Outcome, explanation.Text, explanation.Provider, explanation.Model))
		}
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive {
		return nil
	}

	decision, err := cli.NewPrompter(cmd.InOrStdin(), out).ConfirmOutcome(ctx, eval.Outcome)
	if err != nil {
		return err
	}
	if !decision.Override {
		fmt.Fprintln(out, cli.FormatSuccess("Going with "+eval.Outcome.Label()))
		return nil
	}

	if err := a.service.RecordOverride(ctx, userID, itemID, eval.Outcome, decision.Chosen, decision.Reason); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Noted: %s instead of %s", decision.Chosen.Label(), eval.Outcome.Label())))
	return nil
}
