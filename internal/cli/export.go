package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vietddude/harvester/internal/export"
	"github.com/vietddude/harvester/internal/harvest"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [mode]",
	Short: "Write a mode's success and failed logs to an .xlsx report",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default <base_dir>/<mode>/report.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	name := args[0]
	if _, err := appCfg.Mode(name); err != nil {
		return err
	}
	layout := harvest.NewLayout(appCfg.Output.BaseDir, name)

	out := exportOut
	if out == "" {
		out = filepath.Join(layout.Root, "report.xlsx")
	}

	sum, err := export.Write(layout, out)
	if err != nil {
		slog.Error("Export failed", "mode", name, "error", err)
		return err
	}
	fmt.Printf("Exported %d success and %d failed records to %s\n", sum.Success, sum.Failed, out)
	return nil
}
