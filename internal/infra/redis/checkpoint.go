package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/harvester/internal/core/checkpoint"
)

// CheckpointRepo keeps a partition's done-set in a sorted set scored by
// completion time, so Load returns identifiers in completion order.
type CheckpointRepo struct {
	client *Client
	key    string
	owned  bool
}

// NewCheckpointRepo creates a repository for one partition on a shared client.
func NewCheckpointRepo(client *Client, prefix, partition string) *CheckpointRepo {
	return &CheckpointRepo{client: client, key: doneKey(prefix, partition)}
}

// OpenCheckpointRepo dials Redis and returns a repository that closes the
// connection on Close.
func OpenCheckpointRepo(cfg Config, partition string) (*CheckpointRepo, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	repo := NewCheckpointRepo(client, cfg.KeyPrefix, partition)
	repo.owned = true
	return repo, nil
}

// Key returns the sorted-set key.
func (r *CheckpointRepo) Key() string {
	return r.key
}

func (r *CheckpointRepo) Load(ctx context.Context) ([]string, error) {
	ids, err := r.client.rdb.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}
	return ids, nil
}

// Save adds the identifiers finished since the last flush. Existing members
// keep their original score.
func (r *CheckpointRepo) Save(ctx context.Context, batch checkpoint.Batch) error {
	if len(batch.Added) == 0 {
		return nil
	}
	now := time.Now().UnixNano()
	members := make([]redis.Z, len(batch.Added))
	for i, id := range batch.Added {
		members[i] = redis.Z{Score: float64(now + int64(i)), Member: id}
	}
	if err := r.client.rdb.ZAddNX(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("zadd failed: %w", err)
	}
	return nil
}

func (r *CheckpointRepo) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := r.client.rdb.ZRem(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("zrem failed: %w", err)
	}
	return nil
}

func (r *CheckpointRepo) Reset(ctx context.Context) error {
	return r.client.rdb.Del(ctx, r.key).Err()
}

func (r *CheckpointRepo) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}
