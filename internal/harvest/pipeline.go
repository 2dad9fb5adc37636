package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/harvester/internal/catalog"
	"github.com/vietddude/harvester/internal/core/checkpoint"
	"github.com/vietddude/harvester/internal/core/config"
	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/license"
	"github.com/vietddude/harvester/internal/metrics"
)

// Config holds the dependencies and settings of one run.
type Config struct {
	Partition string
	// Mode names the catalog and the categories this partition accepts.
	Mode    config.ModeConfig
	Columns config.CatalogConfig
	Aliases map[string]domain.Category
	// Limit stops the run after this many records reached the fetch step. 0 = no limit.
	Limit int

	Layout     Layout
	Checkpoint *checkpoint.Store
	Fetcher    Fetcher
	Pacer      Pacer

	// Optional
	Publisher Publisher
	Inspector Inspector
	Classify  ClassifyFunc
	Clock     func() time.Time
	RunID     string
}

// Status is a snapshot of a run for the health endpoint.
type Status struct {
	RunID     string          `json:"run_id"`
	Partition string          `json:"partition"`
	Running   bool            `json:"running"`
	Stats     domain.RunStats `json:"stats"`
	Current   string          `json:"current_record,omitempty"`
}

// Pipeline processes a catalog partition record by record.
type Pipeline struct {
	cfg     Config
	sink    *Sink
	running atomic.Bool

	// resumed is the checkpoint as loaded at startup. Only these ids are
	// skipped; ids finished during the run do not hide later rows.
	resumed checkpoint.Set

	mu      sync.Mutex
	stats   domain.RunStats
	current string
}

// errAborted ends a record whose processing was interrupted by cancellation.
var errAborted = errors.New("record aborted")

// NewPipeline creates a pipeline.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Classify == nil {
		cfg.Classify = license.Classify
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Aliases == nil {
		cfg.Aliases = domain.DefaultCategoryAliases
	}
	return &Pipeline{cfg: cfg, sink: NewSink(cfg.Layout)}
}

// Status returns the current run state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		RunID:     p.cfg.RunID,
		Partition: p.cfg.Partition,
		Running:   p.running.Load(),
		Stats:     p.stats,
		Current:   p.current,
	}
}

// Run processes the catalog until it is exhausted, the limit is reached or
// ctx is cancelled. A missing catalog is returned before anything is written.
func (p *Pipeline) Run(ctx context.Context) (domain.RunStats, error) {
	if !p.running.CompareAndSwap(false, true) {
		return domain.RunStats{}, fmt.Errorf("pipeline already running")
	}
	defer p.running.Store(false)

	reader, file, err := catalog.Open(p.cfg.Mode.Catalog)
	if err != nil {
		return domain.RunStats{}, err
	}
	defer file.Close()

	if err := p.cfg.Layout.Ensure(); err != nil {
		return domain.RunStats{}, err
	}

	p.resumed = p.cfg.Checkpoint.Load(ctx)
	metrics.CheckpointSize.WithLabelValues(p.cfg.Partition).Set(float64(len(p.resumed)))

	slog.Info("Starting run",
		"run_id", p.cfg.RunID,
		"partition", p.cfg.Partition,
		"catalog", p.cfg.Mode.Catalog,
		"categories", p.cfg.Mode.Categories,
		"checkpoint", len(p.resumed),
		"limit", p.cfg.Limit,
	)

	runErr := p.loop(ctx, reader)

	if tail := reader.Dropped(); tail != "" {
		slog.Warn("Dropped unterminated record at end of catalog", "bytes", len(tail))
	}

	flushErr := p.flush(context.WithoutCancel(ctx))
	stats := p.snapshot()

	slog.Info("Run finished",
		"run_id", p.cfg.RunID,
		"partition", p.cfg.Partition,
		"success", stats.Success,
		"failed", stats.Failed,
		"skipped_no_url", stats.NoURL,
		"resumed", stats.Resumed,
		"out_of_partition", stats.OutOfPartition,
	)
	p.publish(context.WithoutCancel(ctx), domain.Event{EventType: domain.EventTypeRunFinished})

	if runErr != nil {
		return stats, runErr
	}
	return stats, flushErr
}

func (p *Pipeline) loop(ctx context.Context, reader *catalog.Reader) error {
	header := reader.Header()
	evidence := filepath.Base(p.cfg.Mode.Catalog)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}

		if p.cfg.Limit > 0 && p.snapshot().Processed() >= p.cfg.Limit {
			slog.Info("Record limit reached", "limit", p.cfg.Limit)
			return nil
		}

		if err := p.processRecord(ctx, header, rec, evidence); err != nil {
			if errors.Is(err, errAborted) {
				return ctx.Err()
			}
			return err
		}
	}
}

func (p *Pipeline) processRecord(ctx context.Context, h catalog.Header, rec catalog.Record, evidence string) error {
	cols := p.cfg.Columns
	now := p.cfg.Clock()
	id := ResolveID(h, rec.Fields, cols.ID, rec.Line, now)

	if p.resumed.Contains(id) {
		p.count(func(s *domain.RunStats) { s.Resumed++ })
		metrics.RecordsTotal.WithLabelValues(p.cfg.Partition, "resumed").Inc()
		slog.Debug("Skipping finished record", "id", id)
		return nil
	}

	category, reason := p.categorize(h, rec.Fields)
	if !p.cfg.Mode.Accepts(category) {
		p.count(func(s *domain.RunStats) { s.OutOfPartition++ })
		metrics.RecordsTotal.WithLabelValues(p.cfg.Partition, "out_of_partition").Inc()
		slog.Debug("Skipping record outside partition", "id", id, "category", category)
		return nil
	}

	p.setCurrent(id)
	defer p.setCurrent("")

	downloadURL := ResolveURL(h.Get(rec.Fields, cols.DownloadURL))
	meta := buildMetadata(h, rec.Fields, cols, id, downloadURL, category, reason, evidence, now)
	meta.RunID = p.cfg.RunID

	slog.Info("Processing record",
		"id", id,
		"line", rec.Line,
		"category", category,
		"title", truncate(meta.Title, 60),
	)

	var outcome domain.Outcome
	if downloadURL == "" {
		outcome = domain.Failed(ReasonNoURL)
	} else {
		wait, err := p.cfg.Pacer.Pause(ctx)
		if err != nil {
			return errAborted
		}
		metrics.PacingSeconds.WithLabelValues("jitter").Add(wait.Seconds())

		destBase := filepath.Join(p.cfg.Layout.FilesDir(), fileStem(id))
		outcome = p.cfg.Fetcher.Fetch(ctx, downloadURL, destBase)
		if ctx.Err() != nil {
			return errAborted
		}
	}

	applyOutcome(&meta, outcome)
	if outcome.Success && meta.FileFormat == "pdf" && p.cfg.Inspector != nil {
		if pages, err := p.cfg.Inspector.PageCount(outcome.FinalPath); err != nil {
			slog.Debug("PDF inspection failed", "id", id, "error", err)
		} else {
			meta.PageCount = pages
		}
	}

	if err := p.sink.Write(meta); err != nil {
		return fmt.Errorf("record %s: %w", id, err)
	}
	p.record(id, meta, downloadURL == "")

	if err := p.cfg.Checkpoint.MarkDone(ctx, id); err != nil {
		metrics.CheckpointFlushes.WithLabelValues("error").Inc()
		slog.Error("Checkpoint flush failed, will retry on next flush", "id", id, "error", err)
	} else if p.cfg.Checkpoint.Pending() == 0 {
		metrics.CheckpointFlushes.WithLabelValues("ok").Inc()
	}
	metrics.CheckpointSize.WithLabelValues(p.cfg.Partition).Set(float64(p.cfg.Checkpoint.Len()))

	eventType := domain.EventTypeRecordDownloaded
	if meta.DownloadStatus.IsFailed() {
		eventType = domain.EventTypeRecordFailed
	}
	p.publish(ctx, domain.Event{
		EventType: eventType,
		RecordID:  id,
		Status:    meta.DownloadStatus,
		Reason:    meta.StatusReason,
		FileName:  meta.LocalFileName,
		Size:      meta.FileSize,
	})
	return nil
}

// categorize prefers the pre-computed category column and falls back to the
// license classifier.
func (p *Pipeline) categorize(h catalog.Header, row []string) (domain.Category, string) {
	cols := p.cfg.Columns
	if c, ok := domain.ParseCategory(h.Get(row, cols.Category), p.cfg.Aliases); ok {
		return c, h.Get(row, cols.Reason)
	}
	return p.cfg.Classify(h.Get(row, cols.License))
}

func (p *Pipeline) record(id string, meta domain.ResourceMetadata, noURL bool) {
	if meta.DownloadStatus.IsFailed() {
		p.count(func(s *domain.RunStats) {
			s.Failed++
			if noURL {
				s.NoURL++
			}
		})
		result := "failed"
		if noURL {
			result = "no_url"
		}
		metrics.RecordsTotal.WithLabelValues(p.cfg.Partition, result).Inc()
		slog.Warn("Download failed", "id", id, "reason", meta.StatusReason)
		return
	}

	p.count(func(s *domain.RunStats) { s.Success++ })
	metrics.RecordsTotal.WithLabelValues(p.cfg.Partition, "success").Inc()
	metrics.DownloadedBytes.WithLabelValues(p.cfg.Partition).Add(float64(meta.FileSize))
	slog.Info("Downloaded", "id", id, "file", meta.LocalFileName, "size_kb", meta.FileSize/1024)
}

func (p *Pipeline) flush(ctx context.Context) error {
	if err := p.cfg.Checkpoint.Flush(ctx); err != nil {
		metrics.CheckpointFlushes.WithLabelValues("error").Inc()
		return err
	}
	metrics.CheckpointFlushes.WithLabelValues("ok").Inc()
	return nil
}

func (p *Pipeline) publish(ctx context.Context, ev domain.Event) {
	if p.cfg.Publisher == nil {
		return
	}
	ev.RunID = p.cfg.RunID
	ev.Partition = p.cfg.Partition
	ev.EmittedAt = p.cfg.Clock().Unix()
	if err := p.cfg.Publisher.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to publish event", "type", ev.EventType, "error", err)
	}
}

func (p *Pipeline) count(fn func(*domain.RunStats)) {
	p.mu.Lock()
	fn(&p.stats)
	p.mu.Unlock()
}

func (p *Pipeline) snapshot() domain.RunStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pipeline) setCurrent(id string) {
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
