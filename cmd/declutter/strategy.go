package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/config"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

func strategyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Inspect or replace the recommendation strategy",
		Long: `The recommendation strategy holds the answer weights, the named strategy
multipliers, the tie-break order and the optional A/B split. It is stored
in the settings table and applies to every evaluation after it is saved.`,
	}

	cmd.AddCommand(strategyShowCmd())
	cmd.AddCommand(strategyImportCmd())
	cmd.AddCommand(strategyResetCmd())

	return cmd
}

func strategyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active strategy",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			strategy := a.settings.Current().Strategy
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "yaml":
				return config.WriteStrategyYAML(cmd.OutOrStdout(), strategy)
			case "json":
				blob, err := config.EncodeStrategy(strategy)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), blob)
				return nil
			default:
				return fmt.Errorf("unknown format %q (use yaml or json)", format)
			}
		}),
	}

	cmd.Flags().String("format", "yaml", "output format (yaml, json)")

	return cmd
}

func strategyImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Validate and save a strategy from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			strategy, err := config.LoadStrategyFile(args[0])
			if err != nil {
				return err
			}
			return saveStrategy(cmd, a, strategy)
		}),
	}
}

func strategyResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in strategy",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return saveStrategy(cmd, a, model.DefaultStrategy())
		}),
	}
}

func saveStrategy(cmd *cobra.Command, a *app, strategy model.RecommendationStrategy) error {
	saved, err := a.settings.SaveStrategy(cmd.Context(), strategy)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved strategy version %d (active: %s)", saved.Version, saved.Active())))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Existing recommendations are unchanged until you run: declutter rescore"))
	return nil
}
