package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vietddude/harvester/internal/core/checkpoint"
	"github.com/vietddude/harvester/internal/core/config"
	"github.com/vietddude/harvester/internal/harvest"
	redisclient "github.com/vietddude/harvester/internal/infra/redis"
	"github.com/vietddude/harvester/internal/infra/storage/bolt"
	"github.com/vietddude/harvester/internal/infra/storage/memory"
	"github.com/vietddude/harvester/internal/infra/storage/postgres"
)

// openCheckpoint builds the store of one partition on the configured backend.
func openCheckpoint(ctx context.Context, cfg *config.AppConfig, mode string, layout harvest.Layout) (*checkpoint.Store, error) {
	var repo checkpoint.Repository

	switch cfg.Checkpoint.Backend {
	case config.BackendFile:
		repo = checkpoint.NewFileRepository(layout.CheckpointFile())
	case config.BackendBolt:
		r, err := bolt.Open(filepath.Join(layout.Root, bolt.FileName))
		if err != nil {
			return nil, err
		}
		repo = r
	case config.BackendRedis:
		r, err := redisclient.OpenCheckpointRepo(cfg.Redis, mode)
		if err != nil {
			return nil, err
		}
		repo = r
	case config.BackendPostgres:
		r, err := postgres.OpenCheckpointRepo(ctx, cfg.Database, mode)
		if err != nil {
			return nil, err
		}
		repo = r
	case config.BackendMemory:
		repo = memory.NewCheckpointRepo(memory.NewStorage(), mode)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Checkpoint.Backend)
	}

	return checkpoint.NewStore(repo, checkpoint.Options{FlushEvery: cfg.Checkpoint.FlushEvery}), nil
}
