package memory

import (
	"context"
	"slices"
	"testing"

	"github.com/vietddude/harvester/internal/core/checkpoint"
)

func TestCheckpointRepoPartitions(t *testing.T) {
	ctx := context.Background()
	store := NewStorage()
	a := NewCheckpointRepo(store, "a")
	b := NewCheckpointRepo(store, "b")

	if err := a.Save(ctx, checkpoint.Batch{Done: []string{"r1", "r2", "r3"}}); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, checkpoint.Batch{Done: []string{"x"}}); err != nil {
		t.Fatal(err)
	}
	if err := a.Remove(ctx, []string{"r2"}); err != nil {
		t.Fatal(err)
	}

	got, _ := a.Load(ctx)
	if want := []string{"r1", "r3"}; !slices.Equal(got, want) {
		t.Errorf("Load(a) = %v, want %v", got, want)
	}

	if err := a.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = a.Load(ctx)
	if len(got) != 0 {
		t.Errorf("Load(a) after Reset = %v, want empty", got)
	}
	got, _ = b.Load(ctx)
	if !slices.Equal(got, []string{"x"}) {
		t.Errorf("Load(b) = %v, want [x]", got)
	}
}

func TestCheckpointRepoBehindStore(t *testing.T) {
	ctx := context.Background()
	storage := NewStorage()

	s := checkpoint.NewStore(NewCheckpointRepo(storage, "p"), checkpoint.Options{FlushEvery: 2})
	s.Load(ctx)
	_ = s.MarkDone(ctx, "r1")
	_ = s.MarkDone(ctx, "r2")

	again := checkpoint.NewStore(NewCheckpointRepo(storage, "p"), checkpoint.Options{})
	done := again.Load(ctx)
	if !done.Contains("r1") || !done.Contains("r2") {
		t.Errorf("reloaded set = %v, want r1 and r2", done)
	}
}
