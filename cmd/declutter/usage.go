package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/engine"
)

func usageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show this month's AI usage",
		Long: `Show the selected user's AI requests, tokens and estimated cost since the
start of the calendar month (UTC). Calls made with the user's own key are
listed but do not count toward the monthly budget.`,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			userID, err := currentUserID()
			if err != nil {
				return err
			}
			summary, err := a.ledger.Summary(cmd.Context(), userID)
			if err != nil {
				return err
			}
			limits := engine.VendorSettings(a.settings.Current()).Limits
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatUsage(summary, limits))
			return nil
		}),
	}
}
