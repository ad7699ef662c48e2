package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/model"
	"github.com/thunderdanp/declutter-sub000/internal/personality"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user profiles",
	}

	cmd.AddCommand(userAddCmd())
	cmd.AddCommand(userShowCmd())

	return cmd
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user profile",
		Long: `Create a user profile. The personality shapes how explanations are written
and may be one of: ` + strings.Join(personality.Keys(), ", ") + `.

Users who supply their own API key are never limited by the monthly AI budget.`,
		RunE: withApp(runUserAdd),
	}

	cmd.Flags().String("name", "", "display name (required)")
	cmd.Flags().String("goal", "", "what the user wants to achieve by decluttering")
	cmd.Flags().String("personality", personality.Balanced, "advisor personality")
	cmd.Flags().String("provider", "", "preferred AI vendor for the user's own key")
	cmd.Flags().String("api-key", "", "the user's own AI vendor key")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUserAdd(cmd *cobra.Command, _ []string, a *app) error {
	name, _ := cmd.Flags().GetString("name")
	goal, _ := cmd.Flags().GetString("goal")
	mode, _ := cmd.Flags().GetString("personality")
	provider, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")

	mode = strings.ToLower(mode)
	if personality.Lookup(mode).Key != mode {
		return fmt.Errorf("unknown personality %q (choose from %s)", mode, strings.Join(personality.Keys(), ", "))
	}
	if provider != "" && !knownProvider(a, provider) {
		return fmt.Errorf("unknown provider %q", provider)
	}

	user := &model.User{
		Name:              name,
		Goal:              goal,
		PersonalityMode:   mode,
		PreferredProvider: strings.ToLower(provider),
		APIKey:            apiKey,
	}
	if err := a.store.SaveUser(cmd.Context(), user); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created user %d (%s)", user.ID, user.Name)))
	return nil
}

func userShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the selected user's profile",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			userID, err := currentUserID()
			if err != nil {
				return err
			}
			user, err := a.store.GetUser(cmd.Context(), userID)
			if err != nil {
				return err
			}

			key := "none (uses the shared AI budget)"
			if user.HasOwnKey() {
				key = "own key"
				if user.PreferredProvider != "" {
					key += " for " + user.PreferredProvider
				}
			}
			content := fmt.Sprintf("Goal:         %s\nPersonality:  %s\nAI access:    %s",
				user.Goal, personality.Lookup(user.PersonalityMode).Name, key)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(fmt.Sprintf("%s (#%d)", user.Name, user.ID), content))
			return nil
		}),
	}
}
