package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/store"
)

var errTestBackend = errors.New("backend down")

type dispatched struct {
	users []int64
	event string
	data  any
}

// recordingDispatcher captures gateway traffic for assertions.
type recordingDispatcher struct {
	mu                 sync.Mutex
	events             []dispatched
	disconnectedUsers  []int64
	disconnectedTokens []string
}

func (d *recordingDispatcher) DispatchToUser(userID int64, event string, data any) {
	d.DispatchToUsers([]int64{userID}, event, data)
}

func (d *recordingDispatcher) DispatchToUsers(userIDs []int64, event string, data any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, dispatched{users: append([]int64(nil), userIDs...), event: event, data: data})
}

func (d *recordingDispatcher) DisconnectUser(userID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnectedUsers = append(d.disconnectedUsers, userID)
}

func (d *recordingDispatcher) DisconnectSession(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnectedTokens = append(d.disconnectedTokens, sessionID)
}

func (d *recordingDispatcher) last() (dispatched, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return dispatched{}, false
	}
	return d.events[len(d.events)-1], true
}

type testEnv struct {
	store    *store.Store
	backend  *store.MemoryBackend
	gw       *recordingDispatcher
	sessions *SessionRegistry
	auth     *AuthService
	users    *UserService
	channels *ChannelService
	dms      *DMService
	messages *MessageService
	admin    *AdminService
}

var testHasherParams = auth.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := store.NewMemoryBackend()
	st, err := store.Open(context.Background(), backend, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	gw := &recordingDispatcher{}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	sessions := NewSessionRegistry(st, tokens, gw, logger)

	return &testEnv{
		store:    st,
		backend:  backend,
		gw:       gw,
		sessions: sessions,
		auth:     NewAuthService(st, auth.NewHasher(testHasherParams), sessions, logger),
		users:    NewUserService(st, gw, logger),
		channels: NewChannelService(st, gw, logger),
		dms:      NewDMService(st, gw, logger),
		messages: NewMessageService(st, gw, logger),
		admin:    NewAdminService(st, gw, logger),
	}
}

// register creates a user named first+last with a derived email.
func (e *testEnv) register(t *testing.T, first, last string) *AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), first+"."+last+"@example.com", "password1", first, last)
	if err != nil {
		t.Fatalf("register %s %s: %v", first, last, err)
	}
	return res
}

func (e *testEnv) createChannel(t *testing.T, owner int64, name string, public bool) int64 {
	t.Helper()
	ch, err := e.channels.CreateChannel(context.Background(), owner, name, public)
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	return ch.ID
}

func (e *testEnv) snapshot(t *testing.T) *models.Snapshot {
	t.Helper()
	var out *models.Snapshot
	_ = e.store.View(func(snap *models.Snapshot) error {
		out = snap.Clone()
		return nil
	})
	return out
}

func assertErr(t *testing.T, err, sentinel error) {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, err)
	}
}

func assertNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkInvariants asserts the properties every reachable state must hold.
func checkInvariants(t *testing.T, snap *models.Snapshot) {
	t.Helper()
	if len(snap.AllUsers()) > 0 && snap.OwnerCount() < 1 {
		t.Errorf("no global owner left")
	}
	for _, u := range snap.Users {
		if u.Removed {
			for _, ch := range snap.Channels {
				if ch.IsMember(u.ID) || ch.IsOwner(u.ID) {
					t.Errorf("removed user %d still in channel %d", u.ID, ch.ID)
				}
			}
			for _, dm := range snap.DMs {
				if dm.IsMember(u.ID) {
					t.Errorf("removed user %d still in dm %d", u.ID, dm.ID)
				}
			}
		}
	}
	for _, ch := range snap.Channels {
		for _, o := range ch.OwnerMembers {
			if !ch.IsMember(o) {
				t.Errorf("channel %d owner %d is not a member", ch.ID, o)
			}
		}
	}
}
