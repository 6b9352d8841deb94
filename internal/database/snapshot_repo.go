package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSnapshotName is the row the server reads and writes.
const DefaultSnapshotName = "default"

// SnapshotRepository stores the encoded snapshot as one JSONB row of the
// snapshots table, keyed by name.
type SnapshotRepository struct {
	pool *pgxpool.Pool
	name string
}

func NewSnapshotRepository(pool *pgxpool.Pool, name string) *SnapshotRepository {
	if name == "" {
		name = DefaultSnapshotName
	}
	return &SnapshotRepository{pool: pool, name: name}
}

// Get returns the stored snapshot, or nil if the row does not exist yet.
func (r *SnapshotRepository) Get(ctx context.Context) ([]byte, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM snapshots WHERE name = $1`, r.name,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return data, nil
}

// Set replaces the stored snapshot.
func (r *SnapshotRepository) Set(ctx context.Context, data []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO snapshots (name, data, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		r.name, string(data),
	)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Delete drops the stored snapshot row.
func (r *SnapshotRepository) Delete(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM snapshots WHERE name = $1`, r.name)
	return err
}

// Ping checks the database connection.
func (r *SnapshotRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
