package storage

import (
	"context"
	"errors"
	"testing"
)

// exerciseStore runs the behavior every Store backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.LatestCheckpoint(ctx, "run-1"); err != nil || ok {
		t.Fatalf("latest on empty run: ok=%v err=%v", ok, err)
	}

	for _, c := range []struct {
		id     string
		update uint64
	}{{"c1", 10}, {"c2", 30}, {"c3", 20}} {
		if err := store.SaveCheckpoint(ctx, newCheckpoint(c.id, "run-1", c.update)); err != nil {
			t.Fatalf("save %s: %v", c.id, err)
		}
	}
	if err := store.SaveCheckpoint(ctx, newCheckpoint("other", "run-2", 99)); err != nil {
		t.Fatalf("save other run: %v", err)
	}

	loaded, ok, err := store.GetCheckpoint(ctx, "c3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || loaded.Update != 20 || len(loaded.Occupancy) != 2 {
		t.Fatalf("unexpected checkpoint: ok=%v %+v", ok, loaded)
	}
	if _, ok, err := store.GetCheckpoint(ctx, "missing"); err != nil || ok {
		t.Fatalf("get missing: ok=%v err=%v", ok, err)
	}

	latest, ok, err := store.LatestCheckpoint(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if latest.ID != "c2" {
		t.Fatalf("expected latest c2, got %s", latest.ID)
	}

	summaries, err := store.ListCheckpoints(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != "c1" || summaries[1].ID != "c3" || summaries[2].ID != "c2" {
		t.Fatalf("expected update order, got %+v", summaries)
	}

	invalid := newCheckpoint("bad", "run-1", 1)
	invalid.CodecVersion = 2
	if err := store.SaveCheckpoint(ctx, invalid); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	if err := store.SaveCheckpoint(ctx, newCheckpoint("", "run-1", 1)); err == nil {
		t.Fatal("expected empty id error")
	}

	if err := store.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	if _, ok, _ := store.GetCheckpoint(ctx, "c1"); ok {
		t.Fatal("expected checkpoint removed with its run")
	}
	if _, ok, _ := store.GetCheckpoint(ctx, "other"); !ok {
		t.Fatal("expected other run untouched")
	}
}
