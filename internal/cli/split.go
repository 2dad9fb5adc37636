package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/harvester/internal/catalog"
)

var splitCmd = &cobra.Command{
	Use:   "split [mode]",
	Short: "Halve a mode's catalog by record count into <name>-1.csv and <name>-2.csv",
	Args:  cobra.ExactArgs(1),
	RunE:  runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	mode, err := appCfg.Mode(args[0])
	if err != nil {
		return err
	}

	ext := filepath.Ext(mode.Catalog)
	base := strings.TrimSuffix(mode.Catalog, ext)
	dst1, dst2 := base+"-1"+ext, base+"-2"+ext

	res, err := catalog.SplitFile(mode.Catalog, dst1, dst2)
	if err != nil {
		slog.Error("Split failed", "catalog", mode.Catalog, "error", err)
		return err
	}

	fmt.Printf("Total records: %d\n", res.Total)
	fmt.Printf("  %s  (%d records)\n", dst1, res.First)
	fmt.Printf("  %s  (%d records)\n", dst2, res.Last)
	return nil
}
