package checkpoint

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Options configures a Store.
type Options struct {
	// FlushEvery is the number of MarkDone calls between automatic flushes.
	// Values below 1 mean 1.
	FlushEvery int
}

// Store is the in-memory view of a partition's checkpoint.
type Store struct {
	repo       Repository
	flushEvery int

	mu      sync.Mutex
	done    Set
	order   []string
	pending []string
}

// NewStore creates a store over repo. Call Load before use.
func NewStore(repo Repository, opts Options) *Store {
	if opts.FlushEvery < 1 {
		opts.FlushEvery = 1
	}
	return &Store{
		repo:       repo,
		flushEvery: opts.FlushEvery,
		done:       make(Set),
	}
}

// Load reads the persisted done-set. An unreadable or corrupt checkpoint is
// logged and treated as empty; it never fails the run.
func (s *Store) Load(ctx context.Context) Set {
	ids, err := s.repo.Load(ctx)
	if err != nil {
		slog.Warn("Checkpoint unreadable, starting empty", "error", err)
		ids = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.done = make(Set, len(ids))
	s.order = s.order[:0]
	s.pending = s.pending[:0]
	for _, id := range ids {
		if _, ok := s.done[id]; ok {
			continue
		}
		s.done[id] = struct{}{}
		s.order = append(s.order, id)
	}

	out := make(Set, len(s.done))
	for id := range s.done {
		out[id] = struct{}{}
	}
	return out
}

// Contains reports whether id has already been processed.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done.Contains(id)
}

// Len returns the number of finished identifiers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.done)
}

// Pending returns the number of identifiers not yet flushed.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// MarkDone records id as finished and flushes when the batch is full.
func (s *Store) MarkDone(ctx context.Context, id string) error {
	s.mu.Lock()
	if !s.done.Contains(id) {
		s.done[id] = struct{}{}
		s.order = append(s.order, id)
		s.pending = append(s.pending, id)
	}
	full := len(s.pending) >= s.flushEvery
	s.mu.Unlock()

	if full {
		return s.Flush(ctx)
	}
	return nil
}

// Flush persists pending identifiers. On failure they stay pending and are
// retried by the next flush.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	batch := Batch{
		Done:  append([]string(nil), s.order...),
		Added: append([]string(nil), s.pending...),
	}
	if err := s.repo.Save(ctx, batch); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Remove forgets ids in both memory and the backend.
func (s *Store) Remove(ctx context.Context, ids []string) error {
	if err := s.repo.Remove(ctx, ids); err != nil {
		return fmt.Errorf("failed to remove checkpoint entries: %w", err)
	}

	drop := make(Set, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, id := range s.order {
		if drop.Contains(id) {
			delete(s.done, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	pending := s.pending[:0]
	for _, id := range s.pending {
		if !drop.Contains(id) {
			pending = append(pending, id)
		}
	}
	s.pending = pending
	return nil
}

// Reset clears the checkpoint.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}
	s.mu.Lock()
	s.done = make(Set)
	s.order = nil
	s.pending = nil
	s.mu.Unlock()
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.repo.Close()
}
