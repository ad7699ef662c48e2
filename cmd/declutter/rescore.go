package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

func rescoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rescore",
		Short: "Re-evaluate every item under the current strategy",
		Long: `Re-evaluate all of the selected user's items with their stored answers.
Run this after importing a new recommendation strategy.`,
		RunE: withApp(runRescore),
	}
}

func runRescore(cmd *cobra.Command, _ []string, a *app) error {
	userID, err := currentUserID()
	if err != nil {
		return err
	}

	items, err := a.store.GetItemsByUser(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No items to rescore."))
		return nil
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "declutter rescore")
	ctx := handler.HandleInterrupts(cmd.Context(), true)

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(items), "Rescoring items...")
	summary, err := a.service.Rescore(ctx, userID, func() {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	})
	if err != nil {
		if handler.WasInterrupted() && errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Rescored %d items, %d changed", summary.Total, summary.Changed)))
	for _, o := range model.Outcomes {
		if n := summary.Counts[o]; n > 0 {
			fmt.Fprintf(out, "  %-28s %d\n", o.Label(), n)
		}
	}
	return nil
}
