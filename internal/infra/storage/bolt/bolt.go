// Package bolt stores a partition checkpoint in a bbolt database. Every flush
// is one transaction, so a crash leaves either the previous or the new
// done-set on disk, never a truncated one.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vietddude/harvester/internal/core/checkpoint"
)

// FileName is the database name inside a partition directory.
const FileName = "_progress.db"

var bucketDone = []byte("done")

// CheckpointRepo implements checkpoint.Repository on bbolt. Keys are record
// identifiers, values their completion sequence.
type CheckpointRepo struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*CheckpointRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDone)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &CheckpointRepo{db: db}, nil
}

func (r *CheckpointRepo) Load(ctx context.Context) ([]string, error) {
	type entry struct {
		id  string
		seq uint64
	}
	var entries []entry

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDone).ForEach(func(k, v []byte) error {
			if len(v) != 8 {
				return fmt.Errorf("%w: bad sequence for %q", checkpoint.ErrCorrupt, k)
			}
			entries = append(entries, entry{id: string(k), seq: binary.BigEndian.Uint64(v)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

// Save writes only the identifiers added since the last flush.
func (r *CheckpointRepo) Save(ctx context.Context, batch checkpoint.Batch) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDone)
		for _, id := range batch.Added {
			if b.Get([]byte(id)) != nil {
				continue
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			var v [8]byte
			binary.BigEndian.PutUint64(v[:], seq)
			if err := b.Put([]byte(id), v[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CheckpointRepo) Remove(ctx context.Context, ids []string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDone)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CheckpointRepo) Reset(ctx context.Context) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketDone); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketDone)
		return err
	})
}

func (r *CheckpointRepo) Close() error {
	return r.db.Close()
}
