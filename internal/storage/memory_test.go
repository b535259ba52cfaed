package storage

import (
	"context"
	"errors"
	"testing"

	"ealife/internal/model"
)

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	exerciseStore(t, store)
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveCheckpoint(context.Background(), newCheckpoint("c1", "run-1", 1)); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestMemoryStoreCopiesOccupancy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := newCheckpoint("c1", "run-1", 1)
	if err := store.SaveCheckpoint(ctx, input); err != nil {
		t.Fatalf("save: %v", err)
	}
	input.Occupancy[0] = model.OccupancyRecord{Location: 9, OrganismID: "mutated"}

	output, _, err := store.GetCheckpoint(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if output.Occupancy[0].OrganismID != "org-a" {
		t.Fatalf("store shares caller memory: %+v", output.Occupancy)
	}
}

func TestMemoryStoreResaveMovesCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveCheckpoint(ctx, newCheckpoint("c1", "run-1", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveCheckpoint(ctx, newCheckpoint("c1", "run-2", 1)); err != nil {
		t.Fatalf("resave: %v", err)
	}
	old, err := store.ListCheckpoints(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("expected checkpoint moved out of run-1, got %+v", old)
	}
}
