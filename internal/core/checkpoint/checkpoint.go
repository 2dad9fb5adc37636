// Package checkpoint records which catalog records a partition has finished.
//
// # Purpose
//
// The checkpoint is the resume point of a run. An identifier present in the
// checkpoint is never processed again, whatever its category or outcome:
// resume is a membership test, not an outcome-aware retry queue.
//
// # Durability
//
// Store buffers identifiers and hands them to a Repository on Flush. With
// FlushEvery = 1 every record is persisted before the next one starts; with
// FlushEvery = N at most N-1 finished records are redone after a crash.
//
//	store := checkpoint.NewStore(checkpoint.NewFileRepository(path), checkpoint.Options{FlushEvery: 1})
//	store.Load(ctx)
//	if !store.Contains("r1") {
//	    // ... process r1
//	    store.MarkDone(ctx, "r1")
//	}
//	store.Flush(ctx)
//
// # Backends
//
//   - file.go: single JSON document {"done": [...]}, overwritten on flush
//   - infra/storage/bolt: bbolt bucket, transactional
//   - infra/redis: one sorted set per partition
//   - infra/storage/postgres: table keyed by (partition, record_id)
//   - infra/storage/memory: process-local, for dry runs and tests
package checkpoint

import (
	"context"
	"errors"
)

// ErrCorrupt is returned by repositories whose stored state cannot be decoded.
var ErrCorrupt = errors.New("checkpoint is corrupt")

// Batch is what a flush hands to a repository.
type Batch struct {
	// Done is every identifier known to be finished, in completion order.
	Done []string
	// Added is the subset finished since the previous flush.
	Added []string
}

// Repository persists the done-set of one partition.
type Repository interface {
	// Load returns the persisted identifiers. A missing checkpoint is not an error.
	Load(ctx context.Context) ([]string, error)

	// Save persists a batch. Whole-document backends write Done, incremental
	// backends write Added.
	Save(ctx context.Context, batch Batch) error

	// Remove forgets the given identifiers so they are processed again.
	Remove(ctx context.Context, ids []string) error

	// Reset clears the checkpoint.
	Reset(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

// Set is a set of record identifiers.
type Set map[string]struct{}

// Contains reports membership.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}
