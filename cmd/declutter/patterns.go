package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
)

func patternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Show what your past overrides say about you",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			userID, err := currentUserID()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatPatterns(a.service.Patterns(cmd.Context(), userID)))
			return nil
		}),
	}
}
