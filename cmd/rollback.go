package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/organarr/organarr/journal"
	"github.com/organarr/organarr/organize"
)

var (
	operationID int64
	skipVerify  bool
)

// rollbackCmd represents the rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Undo a journaled rename",
	Long: `Move a renamed file back to where it came from. With no flags the
most recent completed rename is undone; --operation-id targets any
other journal entry. The file's checksum is verified against the
journal before it moves unless --skip-verify is set.`,
	RunE: runRollback,
}

func init() {
	rootCmd.AddCommand(rollbackCmd)

	rollbackCmd.Flags().Int64Var(&operationID, "operation-id", 0, "journal entry to undo (default: the most recent)")
	rollbackCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "skip the checksum verification")
	rollbackCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
}

func runRollback(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	var op journal.Operation
	if operationID == 0 {
		op, err = store.LastCompleted(ctx)
		if errors.Is(err, journal.ErrNotFound) {
			return fmt.Errorf("nothing to roll back: the journal has no completed renames")
		}
	} else {
		op, err = store.Get(ctx, operationID)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Rolling back operation #%d:\n", op.ID)
	fmt.Printf("  %s\n", op.NewPath)
	fmt.Printf("  ← %s\n", op.OriginalPath)

	if cfg.Safety.DryRun {
		fmt.Println("\nDRY RUN MODE - No changes will be made")
		return nil
	}

	if cfg.Safety.ConfirmApply && !yes {
		fmt.Printf("\nProceed? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(strings.TrimSpace(response)) != "y" {
			fmt.Println("Rollback cancelled.")
			return nil
		}
	}

	ops := organize.NewOperations(store, logger)
	op, err = ops.Rollback(ctx, op.ID, organize.RollbackOptions{SkipVerify: skipVerify})
	if err != nil {
		if errors.Is(err, organize.ErrChecksumMismatch) {
			return fmt.Errorf("%w (use --skip-verify to move it back anyway)", err)
		}
		return err
	}

	fmt.Printf("✓ Restored %s\n", op.OriginalPath)
	return nil
}
