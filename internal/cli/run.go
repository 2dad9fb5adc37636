package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/fetch"
	"github.com/vietddude/harvester/internal/harvest"
	"github.com/vietddude/harvester/internal/health"
	natspub "github.com/vietddude/harvester/internal/infra/nats"
	"github.com/vietddude/harvester/internal/inspect"
	"github.com/vietddude/harvester/internal/pacing"
)

var runLimit int

var runCmd = &cobra.Command{
	Use:   "run [mode]",
	Short: "Download every record of a mode's catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runHarvest,
}

func init() {
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "stop after this many records (0 = all)")
	rootCmd.AddCommand(runCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg := appCfg
	modeName := args[0]
	mode, err := cfg.Mode(modeName)
	if err != nil {
		slog.Error("Invalid mode", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layout := harvest.NewLayout(cfg.Output.BaseDir, modeName)
	if _, err := os.Stat(mode.Catalog); err != nil {
		slog.Error("Catalog file not found", "path", mode.Catalog, "hint", "run 'harvester filter' first")
		return err
	}

	store, err := openCheckpoint(ctx, cfg, modeName, layout)
	if err != nil {
		slog.Error("Failed to open checkpoint", "backend", cfg.Checkpoint.Backend, "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close checkpoint", "error", err)
		}
	}()

	pacer := pacing.NewPacer(cfg.Pacing)
	fetcher := fetch.New(cfg.Fetch, fetch.WithLimiter(pacer))

	pipeCfg := harvest.Config{
		Partition:  modeName,
		Mode:       mode,
		Columns:    cfg.Catalog,
		Aliases:    cfg.Categories.Aliases,
		Limit:      runLimit,
		Layout:     layout,
		Checkpoint: store,
		Fetcher:    fetcher,
		Pacer:      pacer,
	}

	if cfg.NATS.URL != "" {
		pub, err := natspub.NewPublisher(cfg.NATS)
		if err != nil {
			slog.Error("Failed to connect to NATS", "error", err)
			return err
		}
		defer func() {
			if err := pub.Close(); err != nil {
				slog.Warn("Failed to close NATS publisher", "error", err)
			}
		}()
		pipeCfg.Publisher = pub
	}
	if cfg.Inspect.PDF {
		pipeCfg.Inspector = inspect.PDF{}
	}

	pipeline := harvest.NewPipeline(pipeCfg)

	if cfg.Metrics.Port > 0 {
		srv := health.NewServer(pipeline, cfg.Metrics.Port)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	stats, err := pipeline.Run(ctx)
	printStats(modeName, stats)

	switch {
	case errors.Is(err, context.Canceled):
		slog.Warn("Run interrupted, checkpoint saved", "mode", modeName)
		return nil
	case err != nil:
		slog.Error("Run failed", "mode", modeName, "error", err)
		return err
	}
	return nil
}

func printStats(mode string, st domain.RunStats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintf(w, "MODE\t%s\n", mode)
	_, _ = fmt.Fprintf(w, "SUCCESS\t%d\n", st.Success)
	_, _ = fmt.Fprintf(w, "FAILED\t%d\n", st.Failed)
	_, _ = fmt.Fprintf(w, "NO URL\t%d\n", st.NoURL)
	_, _ = fmt.Fprintf(w, "RESUMED\t%d\n", st.Resumed)
	_, _ = fmt.Fprintf(w, "OTHER PARTITION\t%d\n", st.OutOfPartition)
	_ = w.Flush()
}
