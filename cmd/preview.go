package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/organarr/organarr/organize"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the rename plan without touching anything",
	Long: `Build the full rename plan and print it. Nothing is renamed and the
journal is not touched; this is what 'organarr apply' would do.`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	previewCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if err := applyFilter(); err != nil {
		return err
	}

	items, err := planner.Plan(context.Background())
	if err != nil {
		return err
	}

	var pending []organize.Item
	for _, item := range items {
		if item.NeedsRename() {
			pending = append(pending, item)
		}
	}

	formatter := organize.NewConsoleFormatter()
	fmt.Print(formatter.FormatPlan(pending))

	if len(pending) > 0 {
		fmt.Println("Run 'organarr apply' to perform these renames.")
	}
	return nil
}
