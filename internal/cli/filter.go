package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/harvester/internal/catalog"
	"github.com/vietddude/harvester/internal/license"
)

var (
	filterInput    string
	filterKept     string
	filterExcluded string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Classify a raw catalog by license and split off excluded records",
	Args:  cobra.NoArgs,
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterInput, "input", "", "raw catalog (default from config)")
	filterCmd.Flags().StringVar(&filterKept, "kept", "", "output for included and ambiguous records")
	filterCmd.Flags().StringVar(&filterExcluded, "excluded", "", "output for excluded records")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	fc := appCfg.Filter
	input, kept, excluded := orDefault(filterInput, fc.Input), orDefault(filterKept, fc.Kept), orDefault(filterExcluded, fc.Excluded)

	in, err := os.Open(input)
	if err != nil {
		slog.Error("Failed to open catalog", "path", input, "error", err)
		return err
	}
	defer in.Close()

	keptFile, err := os.Create(kept)
	if err != nil {
		return err
	}
	defer keptFile.Close()
	excludedFile, err := os.Create(excluded)
	if err != nil {
		return err
	}
	defer excludedFile.Close()

	st, err := catalog.Filter(in, appCfg.Catalog.License, license.Classify, keptFile, excludedFile)
	if err != nil {
		slog.Error("Filter failed", "error", err)
		return err
	}

	slog.Info("Catalog filtered",
		"total", st.Total,
		"included", st.Included,
		"ambiguous", st.Ambiguous,
		"excluded", st.Excluded,
		"kept", kept,
		"excluded_file", excluded,
	)
	fmt.Printf("Filtered %d records: %d included, %d ambiguous, %d excluded\n",
		st.Total, st.Included, st.Ambiguous, st.Excluded)
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
