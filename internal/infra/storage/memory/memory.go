package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/vietddude/harvester/internal/core/checkpoint"
)

// CheckpointRepo keeps checkpoints in process memory, one done-list per
// partition. Nothing survives a restart.
type CheckpointRepo struct {
	partition string
	store     *Storage
}

// Storage is shared by every partition of a process.
type Storage struct {
	mu   sync.RWMutex
	done map[string][]string
}

func NewStorage() *Storage {
	return &Storage{done: make(map[string][]string)}
}

// NewCheckpointRepo creates a repository for one partition.
func NewCheckpointRepo(store *Storage, partition string) *CheckpointRepo {
	return &CheckpointRepo{partition: partition, store: store}
}

func (r *CheckpointRepo) Load(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return slices.Clone(r.store.done[r.partition]), nil
}

func (r *CheckpointRepo) Save(ctx context.Context, batch checkpoint.Batch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.done[r.partition] = slices.Clone(batch.Done)
	return nil
}

func (r *CheckpointRepo) Remove(ctx context.Context, ids []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.done[r.partition] = slices.DeleteFunc(r.store.done[r.partition], func(id string) bool {
		return slices.Contains(ids, id)
	})
	return nil
}

func (r *CheckpointRepo) Reset(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.done, r.partition)
	return nil
}

func (r *CheckpointRepo) Close() error { return nil }
