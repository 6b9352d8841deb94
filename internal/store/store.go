// Package store owns the single in-memory snapshot of the system and
// serializes every mutation of it.
//
// Update runs a mutation against a deep copy of the current snapshot,
// persists the copy through a Backend, and only then makes it current. A
// mutation that returns an error, or a failed persist, leaves the current
// snapshot untouched, so callers never observe a partially applied change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
)

// Backend is an opaque get/set store for the encoded snapshot.
// Get returns (nil, nil) when nothing has been stored yet.
type Backend interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, data []byte) error
}

// ErrPersist wraps failures to write the snapshot to the backend.
var ErrPersist = errors.New("persisting snapshot")

// Store guards the current snapshot. Writers are serialized; readers share.
type Store struct {
	mu      sync.RWMutex
	current *models.Snapshot
	backend Backend
	log     *slog.Logger
}

// Open loads the snapshot from backend, starting empty if none exists.
func Open(ctx context.Context, backend Backend, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := backend.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	snap := models.NewSnapshot()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, snap); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		if snap.Sessions == nil {
			snap.Sessions = make(map[string]int64)
		}
	}

	logger.Info("snapshot loaded",
		"users", len(snap.Users),
		"channels", len(snap.Channels),
		"dms", len(snap.DMs),
	)

	return &Store{current: snap, backend: backend, log: logger}, nil
}

// View runs fn with the current snapshot under the read lock. fn must not
// modify the snapshot or retain references to it after returning.
func (s *Store) View(fn func(snap *models.Snapshot) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.current)
}

// Update runs fn against a copy of the current snapshot under the write
// lock. If fn succeeds the copy is persisted and becomes current.
func (s *Store) Update(ctx context.Context, fn func(snap *models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	if err := fn(next); err != nil {
		return err
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", ErrPersist, err)
	}
	if err := s.backend.Set(ctx, raw); err != nil {
		s.log.ErrorContext(ctx, "snapshot persist failed", "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	s.current = next
	return nil
}

// Reset replaces the state with an empty snapshot and persists it.
func (s *Store) Reset(ctx context.Context) error {
	return s.Update(ctx, func(snap *models.Snapshot) error {
		*snap = *models.NewSnapshot()
		return nil
	})
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.backend.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	_, err := s.backend.Get(ctx)
	return err
}
