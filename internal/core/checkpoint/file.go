package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the checkpoint document name inside a partition directory.
const FileName = "_progress.json"

type fileDocument struct {
	Done []string `json:"done"`
}

// FileRepository stores the done-set as one JSON document. Save overwrites
// the whole file in place; a crash mid-write can lose the checkpoint, which
// Load then treats as corrupt.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository backed by path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the checkpoint file location.
func (r *FileRepository) Path() string {
	return r.path
}

func (r *FileRepository) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return doc.Done, nil
}

func (r *FileRepository) Save(ctx context.Context, batch Batch) error {
	return r.write(batch.Done)
}

func (r *FileRepository) Remove(ctx context.Context, ids []string) error {
	current, err := r.Load(ctx)
	if err != nil {
		return err
	}
	drop := make(Set, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]string, 0, len(current))
	for _, id := range current {
		if !drop.Contains(id) {
			kept = append(kept, id)
		}
	}
	return r.write(kept)
}

func (r *FileRepository) Reset(ctx context.Context) error {
	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) write(done []string) error {
	if done == nil {
		done = []string{}
	}
	data, err := json.Marshal(fileDocument{Done: done})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}
