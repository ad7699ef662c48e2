package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
)

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the supported AI vendors",
		Long: `List the supported AI vendors with their default model and pricing.
The vendor used for shared-budget calls is marked with *.`,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			current := a.settings.Current()
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatProviders(a.gateway.Providers(), current.DefaultProvider))
			return nil
		}),
	}
}

func knownProvider(a *app, id string) bool {
	for _, p := range a.gateway.Providers() {
		if strings.EqualFold(p.ID, id) {
			return true
		}
	}
	return false
}
