package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <item-id>",
		Short: "Explain an outcome for an item using AI",
		Long: `Generate a short explanation of why an outcome suits an item, written in
the user's chosen personality. Without --outcome the item's stored
recommendation is explained.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(runExplain),
	}

	cmd.Flags().String("outcome", "", "outcome to explain (keep, accessible, storage, sell, donate, discard)")

	return cmd
}

func runExplain(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	userID, err := currentUserID()
	if err != nil {
		return err
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q: %w", args[0], err)
	}

	var outcome model.Outcome
	if cmd.Flags().Changed("outcome") {
		if outcome, err = outcomeFlag(cmd, "outcome"); err != nil {
			return err
		}
	} else {
		item, err := a.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.Recommendation == nil {
			return common.NewUserError(fmt.Sprintf("item %d has not been evaluated yet; run declutter evaluate %d or pass --outcome", itemID, itemID), nil)
		}
		outcome = *item.Recommendation
	}

	explanation, err := a.service.Explain(ctx, userID, itemID, outcome)
	if err != nil {
		return describeVendorError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatExplanation(outcome, explanation.Text, explanation.Provider, explanation.Model))
	return nil
}

// describeVendorError adds guidance for the errors a user can act on.
func describeVendorError(err error) error {
	var quotaErr *common.QuotaExceededError
	if errors.As(err, &quotaErr) {
		return common.NewUserError("The monthly AI budget is used up. Add your own API key with: declutter user add --api-key ...", err)
	}
	var configErr *common.ConfigurationError
	if errors.As(err, &configErr) {
		return common.NewUserError("No AI vendor is configured. Set an API key, e.g. ANTHROPIC_API_KEY, or run a local Ollama with OLLAMA_BASE_URL.", err)
	}
	return err
}
