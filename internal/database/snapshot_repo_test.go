package database

import (
	"context"
	"encoding/json"
	"testing"
)

func TestSnapshotRepository_GetMissing(t *testing.T) {
	pool := testPool(t)
	repo := NewSnapshotRepository(pool, testSnapshotName(t))

	data, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil for missing row, got %s", data)
	}
}

func TestSnapshotRepository_SetGetOverwrite(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewSnapshotRepository(pool, testSnapshotName(t))
	t.Cleanup(func() { _ = repo.Delete(ctx) })

	if err := repo.Set(ctx, []byte(`{"users":[],"counters":{"user":1}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, []byte(`{"users":[],"counters":{"user":2}}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	data, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// JSONB normalizes whitespace and key order, so compare decoded values.
	var got struct {
		Counters struct {
			User int64 `json:"user"`
		} `json:"counters"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Counters.User != 2 {
		t.Errorf("expected overwritten value 2, got %d", got.Counters.User)
	}

	if err := repo.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
