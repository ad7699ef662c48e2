package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/config"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View or change runtime settings",
		Long: `Runtime settings override the config file. Common keys:

  ` + config.KeyDefaultProvider + `              vendor for shared-budget calls
  ` + config.KeyMonthlySystemLimit + `         monthly budget for all users, in dollars (0 = none)
  ` + config.KeyMonthlyUserLimit + `    monthly budget per user, in dollars (0 = none)
  ` + config.KeyCategories + `               category vocabulary (JSON array or comma separated)
  ` + config.KeyDefaultCategory + `         category used when a photo matches none
  ` + config.PrefixAPIKey + `<provider>       shared API key for a vendor
  ` + config.PrefixBaseURL + `<provider>      base URL for a vendor, e.g. base_url.ollama
  ` + config.PrefixModel + `<provider>         model override for a vendor`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a runtime setting",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if args[0] == config.KeyStrategy {
				return fmt.Errorf("use declutter strategy import to change %s", config.KeyStrategy)
			}
			if err := a.settings.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Saved "+args[0]))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored settings",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			rows, err := a.store.GetAllSettings(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No settings stored; config file defaults apply."))
				return nil
			}

			keys := make([]string, 0, len(rows))
			for k := range rows {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", k, displaySetting(k, rows[k]))
			}
			return nil
		}),
	})

	return cmd
}

func displaySetting(key, value string) string {
	switch {
	case strings.HasPrefix(key, config.PrefixAPIKey):
		return maskSecret(value)
	case key == config.KeyStrategy:
		return cli.SubtleStyle.Render("(use declutter strategy show)")
	default:
		return value
	}
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
