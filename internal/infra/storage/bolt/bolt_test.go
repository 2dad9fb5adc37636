package bolt

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vietddude/harvester/internal/core/checkpoint"
)

func openTemp(t *testing.T) (*CheckpointRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oapen", FileName)
	repo, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return repo, path
}

func TestSaveKeepsCompletionOrder(t *testing.T) {
	ctx := context.Background()
	repo, path := openTemp(t)

	if err := repo.Save(ctx, checkpoint.Batch{Added: []string{"z", "a"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, checkpoint.Batch{Added: []string{"m", "a"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"z", "a", "m"}; !slices.Equal(got, want) {
		t.Errorf("Load() = %v, want %v", got, want)
	}
}

func TestRemoveAndReset(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTemp(t)
	defer repo.Close()

	_ = repo.Save(ctx, checkpoint.Batch{Added: []string{"r1", "r2", "r3"}})
	if err := repo.Remove(ctx, []string{"r2", "missing"}); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got, _ := repo.Load(ctx)
	if want := []string{"r1", "r3"}; !slices.Equal(got, want) {
		t.Errorf("Load() after Remove = %v, want %v", got, want)
	}

	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	got, _ = repo.Load(ctx)
	if len(got) != 0 {
		t.Errorf("Load() after Reset = %v, want empty", got)
	}
}

func TestStoreOverBolt(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTemp(t)

	s := checkpoint.NewStore(repo, checkpoint.Options{FlushEvery: 1})
	s.Load(ctx)
	for _, id := range []string{"r1", "r2"} {
		if err := s.MarkDone(ctx, id); err != nil {
			t.Fatalf("MarkDone(%s) error = %v", id, err)
		}
	}
	got, _ := repo.Load(ctx)
	if !slices.Equal(got, []string{"r1", "r2"}) {
		t.Errorf("persisted = %v, want [r1 r2]", got)
	}
	_ = s.Close()
}
