package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
)

// StateStore is the transactional handle on the snapshot. *store.Store
// implements it.
type StateStore interface {
	View(fn func(snap *models.Snapshot) error) error
	Update(ctx context.Context, fn func(snap *models.Snapshot) error) error
}

// base carries what every service needs.
type base struct {
	store StateStore
	log   *slog.Logger
}

func newBase(st StateStore, logger *slog.Logger, component string) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{store: st, log: logger.With("component", component)}
}

func (b base) view(fn func(snap *models.Snapshot) error) error {
	return translate(b.log, b.store.View(fn))
}

func (b base) update(ctx context.Context, fn func(snap *models.Snapshot) error) error {
	return translate(b.log, b.store.Update(ctx, fn))
}

// caller returns the acting user. Callers come out of the session registry
// so a miss means the session went stale between resolve and use.
func caller(snap *models.Snapshot, userID int64) (*models.User, error) {
	u := snap.FindUser(userID)
	if u == nil || u.Removed {
		return nil, Unauthenticated("INVALID_SESSION", "session is no longer valid")
	}
	return u, nil
}

// peersOf returns userID and everyone sharing a channel or DM with them.
func peersOf(snap *models.Snapshot, userID int64) []int64 {
	ids := []int64{userID}
	for _, ch := range snap.ChannelsOf(userID) {
		ids = append(ids, ch.AllMembers...)
	}
	for _, dm := range snap.DMsOf(userID) {
		ids = append(ids, dm.Members...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
