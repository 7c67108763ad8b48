package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/organarr/organarr/organize"
)

var (
	yes        bool
	skipLinked bool
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Rename files according to the plan",
	Long: `Build the rename plan and carry it out. Every rename is journaled
before the file moves, so any of them can be undone later with
'organarr rollback'.

By default you pick which files to rename from a numbered list;
--yes applies the whole plan unattended.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	applyCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	applyCmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply the full plan without prompting")
	applyCmd.Flags().BoolVar(&skipLinked, "skip-linked", false, "skip files that have other hard links")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := applyFilter(); err != nil {
		return err
	}

	items, err := planner.Plan(ctx)
	if err != nil {
		return err
	}

	var pending []organize.Item
	for _, item := range items {
		if item.NeedsRename() {
			pending = append(pending, item)
		}
	}
	if len(pending) == 0 {
		fmt.Println("✓ Everything is already organized!")
		return nil
	}

	fileText := "file"
	if len(pending) != 1 {
		fileText = "files"
	}
	fmt.Printf("Found %d %s to rename:\n\n", len(pending), fileText)

	fmt.Println(strings.Repeat("━", 100))
	fmt.Printf("%-4s %-45s %s\n", "#", "CURRENT", "PROPOSED")
	fmt.Println(strings.Repeat("━", 100))

	for i, item := range pending {
		// Truncate name if too long
		name := item.File.Name
		if len(name) > 43 {
			name = name[:40] + "..."
		}
		fmt.Printf("%-4d %-45s %s\n", i+1, name, item.ProposedName)
	}
	fmt.Println(strings.Repeat("━", 100))

	selected := pending
	if cfg.Safety.ConfirmApply && !yes {
		fmt.Printf("\nEnter file numbers to rename (comma-separated, e.g. 1,3,5) or 'all' for all [Enter to cancel]: ")

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			// No input (Ctrl+D or similar)
			fmt.Println("No files selected.")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			fmt.Println("No files selected.")
			return nil
		}

		indices, err := parseSelection(input, len(pending))
		if err != nil {
			return err
		}
		if len(indices) == 0 {
			fmt.Println("No files selected.")
			return nil
		}

		selected = make([]organize.Item, 0, len(indices))
		for _, idx := range indices {
			selected = append(selected, pending[idx])
		}
	}

	if cfg.Safety.DryRun {
		fmt.Println("\nDRY RUN MODE - No changes will be made")
		formatter := organize.NewConsoleFormatter()
		fmt.Print(formatter.FormatPlan(selected))
		return nil
	}

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	ops := organize.NewOperations(store, logger)
	result, err := ops.Apply(ctx, selected, organize.ApplyOptions{
		SkipLinked: skipLinked || cfg.Safety.SkipHardlinks,
	})
	if result != nil {
		formatter := organize.NewConsoleFormatter()
		fmt.Print(formatter.FormatResult(result))
	}
	if err != nil {
		return err
	}

	fmt.Println("\nRun 'organarr rollback' to undo the most recent rename.")
	return nil
}

// parseSelection turns "1,3,5" or "all" into zero-based plan indices,
// in input order with duplicates dropped.
func parseSelection(input string, count int) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(input), "all") {
		indices := make([]int, count)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	var indices []int
	seen := make(map[int]bool)

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s': must be a positive integer", part)
		}
		if num < 1 || num > count {
			return nil, fmt.Errorf("invalid file number %d: must be between 1 and %d", num, count)
		}

		idx := num - 1
		if !seen[idx] {
			indices = append(indices, idx)
			seen[idx] = true
		}
	}

	return indices, nil
}
