package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vietddude/harvester/internal/core/checkpoint"
)

// CheckpointRepo implements checkpoint.Repository on the checkpoint_entries
// table, one row per (partition, record_id).
type CheckpointRepo struct {
	db        *sqlx.DB
	partition string
	closer    func() error
}

// NewCheckpointRepo creates a repository for one partition.
func NewCheckpointRepo(db *sqlx.DB, partition string) *CheckpointRepo {
	return &CheckpointRepo{db: db, partition: partition}
}

// OpenCheckpointRepo connects, migrates and returns a repository that owns
// the connection.
func OpenCheckpointRepo(ctx context.Context, cfg Config, partition string) (*CheckpointRepo, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo := NewCheckpointRepo(db.DB, partition)
	repo.closer = db.Close
	return repo, nil
}

func (r *CheckpointRepo) Load(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT record_id FROM checkpoint_entries WHERE partition = $1 ORDER BY seq`,
		r.partition,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return ids, nil
}

// Save inserts the identifiers finished since the last flush in one transaction.
func (r *CheckpointRepo) Save(ctx context.Context, batch checkpoint.Batch) error {
	if len(batch.Added) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range batch.Added {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO checkpoint_entries (partition, record_id) VALUES ($1, $2)
			 ON CONFLICT (partition, record_id) DO NOTHING`,
			r.partition, id,
		)
		if err != nil {
			return fmt.Errorf("failed to save checkpoint entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

func (r *CheckpointRepo) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM checkpoint_entries WHERE partition = $1 AND record_id = ANY($2)`,
		r.partition, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to remove checkpoint entries: %w", err)
	}
	return nil
}

func (r *CheckpointRepo) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checkpoint_entries WHERE partition = $1`, r.partition)
	if err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}
	return nil
}

func (r *CheckpointRepo) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}
