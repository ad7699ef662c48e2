package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
)

func overrideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override <item-id>",
		Short: "Record a decision that differs from the suggestion",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runOverride),
	}

	cmd.Flags().String("suggested", "", "the suggested outcome (defaults to the stored recommendation)")
	cmd.Flags().String("chosen", "", "the outcome you chose (required)")
	cmd.Flags().String("reason", "", "why you chose differently")
	_ = cmd.MarkFlagRequired("chosen")

	return cmd
}

func runOverride(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	userID, err := currentUserID()
	if err != nil {
		return err
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q: %w", args[0], err)
	}

	chosen, err := outcomeFlag(cmd, "chosen")
	if err != nil {
		return err
	}

	suggested := chosen
	if cmd.Flags().Changed("suggested") {
		if suggested, err = outcomeFlag(cmd, "suggested"); err != nil {
			return err
		}
	} else {
		item, err := a.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.Recommendation == nil {
			return fmt.Errorf("item %d has no stored recommendation; pass --suggested", itemID)
		}
		suggested = *item.Recommendation
	}

	reason, _ := cmd.Flags().GetString("reason")
	if err := a.service.RecordOverride(ctx, userID, itemID, suggested, chosen, reason); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if suggested == chosen {
		fmt.Fprintln(out, cli.FormatInfo("That matches the suggestion, nothing to record."))
		return nil
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded %s instead of %s", chosen.Label(), suggested.Label())))
	return nil
}
