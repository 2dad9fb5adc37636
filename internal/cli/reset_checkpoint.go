package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vietddude/harvester/internal/harvest"
)

var resetCheckpointCmd = &cobra.Command{
	Use:   "reset-checkpoint [mode] [id...]",
	Short: "Forget finished records so the next run processes them again",
	Long: `Without ids the whole checkpoint of the mode is cleared. With ids only
those records are removed, which is how failed downloads are retried.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResetCheckpoint,
}

func init() {
	rootCmd.AddCommand(resetCheckpointCmd)
}

func runResetCheckpoint(cmd *cobra.Command, args []string) error {
	name, ids := args[0], args[1:]
	if _, err := appCfg.Mode(name); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openCheckpoint(ctx, appCfg, name, harvest.NewLayout(appCfg.Output.BaseDir, name))
	if err != nil {
		slog.Error("Failed to open checkpoint", "mode", name, "error", err)
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	if len(ids) == 0 {
		if err := store.Reset(ctx); err != nil {
			slog.Error("Failed to reset checkpoint", "error", err)
			return err
		}
		fmt.Printf("Successfully cleared checkpoint for %s\n", name)
		return nil
	}

	store.Load(ctx)
	if err := store.Remove(ctx, ids); err != nil {
		slog.Error("Failed to remove checkpoint entries", "error", err)
		return err
	}
	fmt.Printf("Successfully removed %d record(s) from %s checkpoint\n", len(ids), name)
	return nil
}
