package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/harvester/internal/harvest"
)

var statusCmd = &cobra.Command{
	Use:   "status [mode...]",
	Short: "Show checkpoint and output counts per mode",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	modes := args
	if len(modes) == 0 {
		modes = appCfg.ModeNames()
	}

	ctx := context.Background()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "MODE\tDONE\tSUCCESS\tFAILED\tCATALOG")

	for _, name := range modes {
		mode, err := appCfg.Mode(name)
		if err != nil {
			return err
		}
		layout := harvest.NewLayout(appCfg.Output.BaseDir, name)

		store, err := openCheckpoint(ctx, appCfg, name, layout)
		if err != nil {
			slog.Error("Failed to open checkpoint", "mode", name, "error", err)
			return err
		}
		done := store.Load(ctx)
		_ = store.Close()

		success, err := harvest.CountLines(layout.SuccessLog())
		if err != nil {
			return err
		}
		failed, err := harvest.CountLines(layout.FailedLog())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", name, len(done), success, failed, mode.Catalog)
	}
	return w.Flush()
}
