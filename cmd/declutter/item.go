package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/llm"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

func itemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the selected user's items",
	}

	cmd.AddCommand(itemAddCmd())
	cmd.AddCommand(itemListCmd())

	return cmd
}

func itemAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		Long: `Add an item with optional answers to the decision questions.
Unknown categories are stored as the configured default category.`,
		RunE: withApp(runItemAdd),
	}

	cmd.Flags().String("name", "", "item name (required)")
	cmd.Flags().String("category", "", "item category")
	cmd.Flags().String("notes", "", "free-text notes about the item")
	addAnswerFlags(cmd)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runItemAdd(cmd *cobra.Command, _ []string, a *app) error {
	userID, err := currentUserID()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	category, _ := cmd.Flags().GetString("category")
	notes, _ := cmd.Flags().GetString("notes")

	settings := a.settings.Current()
	category = llm.MatchCategory(category, settings.Categories, settings.DefaultCategory)

	item := &model.Item{
		UserID:   userID,
		Name:     name,
		Category: category,
		Notes:    notes,
	}
	if answers := answersFromFlags(cmd); answers != nil {
		item.UsageFrequency = answers.Usage
		item.Sentimental = answers.Sentimental
		item.Condition = answers.Condition
		item.ValueTier = answers.Value
		item.Replaceability = answers.Replaceability
		item.Space = answers.Space
	}

	if err := a.store.SaveItem(cmd.Context(), item); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added item %d: %s (%s)", item.ID, item.Name, item.Category)))
	return nil
}

func itemListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items with their current recommendation",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			userID, err := currentUserID()
			if err != nil {
				return err
			}
			items, err := a.store.GetItemsByUser(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No items yet. Add one with: declutter item add --name ..."))
				return nil
			}

			rows := []string{lipgloss.JoinHorizontal(lipgloss.Top,
				cli.TableHeaderStyle.Width(6).Render("ID"),
				cli.TableHeaderStyle.Width(30).Render("Name"),
				cli.TableHeaderStyle.Width(16).Render("Category"),
				cli.TableHeaderStyle.Render("Recommendation"),
			)}
			for _, item := range items {
				rec := cli.SubtleStyle.Render("not evaluated")
				if item.Recommendation != nil {
					rec = cli.StyleOutcome(*item.Recommendation)
				}
				rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
					cli.TableCellStyle.Width(6).Render(strconv.FormatInt(item.ID, 10)),
					cli.TableCellStyle.Width(30).Render(item.Name),
					cli.TableCellStyle.Width(16).Render(item.Category),
					rec,
				))
			}
			fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinVertical(lipgloss.Left, rows...))
			return nil
		}),
	}
}
