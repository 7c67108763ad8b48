package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled renames",
	Long: `List the most recent journal entries with their status. The IDs shown
here are what 'organarr rollback --operation-id' takes.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	ops, err := store.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}

	if len(ops) == 0 {
		fmt.Println("The journal is empty.")
		return nil
	}

	fmt.Println(strings.Repeat("━", 100))
	fmt.Printf("%-6s %-12s %-20s %s\n", "#", "STATUS", "WHEN", "RENAME")
	fmt.Println(strings.Repeat("━", 100))

	for _, op := range ops {
		fmt.Printf("%-6d %-12s %-20s %s\n", op.ID, op.Status, op.CreatedAt.Format("2006-01-02 15:04:05"), op.OriginalPath)
		fmt.Printf("%-40s → %s\n", "", op.NewPath)
	}
	fmt.Println(strings.Repeat("━", 100))

	return nil
}
