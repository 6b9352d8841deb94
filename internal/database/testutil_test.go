package database

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := NewPostgresPool(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	_, err = pool.Exec(context.Background(), `CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		t.Fatalf("creating snapshots table: %v", err)
	}
	return pool
}

var testNameCounter int64

// testSnapshotName returns a row name no other test uses.
func testSnapshotName(t *testing.T) string {
	return fmt.Sprintf("test-%s-%d", t.Name(), atomic.AddInt64(&testNameCounter, 1))
}
