package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thunderdanp/declutter-sub000/internal/cli"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// maxImageBytes bounds uploads to what vendors accept inline.
const maxImageBytes = 20 << 20

func analyzeImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze-image <path>",
		Short: "Identify an item from a photo",
		Long: `Send a photo to a vision-capable AI vendor and get back a name, a
description and a category from the configured vocabulary.

With --add the result is saved as a new item.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(runAnalyzeImage),
	}

	cmd.Flags().Bool("add", false, "save the analysis as a new item")

	return cmd
}

func runAnalyzeImage(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	userID, err := currentUserID()
	if err != nil {
		return err
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return fmt.Errorf("image %s is too large (%d bytes, max %d)", path, info.Size(), maxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	analysis, err := a.service.AnalyzeImage(ctx, userID, data, mime.TypeByExtension(filepath.Ext(path)))
	if err != nil {
		return describeVendorError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatImageAnalysis(*analysis))

	if add, _ := cmd.Flags().GetBool("add"); add {
		item := &model.Item{
			UserID:   userID,
			Name:     analysis.Name,
			Category: analysis.Category,
			Notes:    analysis.Description,
		}
		if err := a.store.SaveItem(ctx, item); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added item %d", item.ID)))
	}
	return nil
}
