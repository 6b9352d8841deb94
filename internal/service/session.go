package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
)

// SessionRegistry maps session tokens to users. A token is only valid
// while its session id is registered in the snapshot and its user has not
// been removed.
type SessionRegistry struct {
	base
	tokens  *auth.TokenService
	gateway gateway.Dispatcher
	newID   func() string
}

// NewSessionRegistry creates a SessionRegistry.
func NewSessionRegistry(st StateStore, tokens *auth.TokenService, gw gateway.Dispatcher, logger *slog.Logger) *SessionRegistry {
	return &SessionRegistry{
		base:    newBase(st, logger, "sessions"),
		tokens:  tokens,
		gateway: gw,
		newID:   uuid.NewString,
	}
}

// Resolve returns the user behind token.
func (r *SessionRegistry) Resolve(ctx context.Context, token string) (int64, error) {
	userID, _, err := r.ResolveSession(ctx, token)
	return userID, err
}

// ResolveSession returns the user and session behind token.
func (r *SessionRegistry) ResolveSession(_ context.Context, token string) (int64, string, error) {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return 0, "", Unauthenticated("INVALID_TOKEN", "invalid or expired token")
	}

	err = r.view(func(snap *models.Snapshot) error {
		uid, ok := snap.Sessions[claims.SessionID]
		if !ok || uid != claims.UserID || !snap.UserExists(uid) {
			return Unauthenticated("INVALID_TOKEN", "invalid or expired token")
		}
		return nil
	})
	if err != nil {
		return 0, "", err
	}
	return claims.UserID, claims.SessionID, nil
}

// Create registers a new session for userID inside a running transaction
// and returns its token.
func (r *SessionRegistry) Create(snap *models.Snapshot, userID int64) (string, error) {
	sessionID := r.newID()
	token, err := r.tokens.Issue(userID, sessionID)
	if err != nil {
		return "", err
	}
	snap.AddSession(sessionID, userID)
	return token, nil
}

// Revoke invalidates the session behind token.
func (r *SessionRegistry) Revoke(ctx context.Context, token string) error {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return Unauthenticated("INVALID_TOKEN", "invalid or expired token")
	}

	err = r.update(ctx, func(snap *models.Snapshot) error {
		if uid, ok := snap.Sessions[claims.SessionID]; !ok || uid != claims.UserID {
			return Unauthenticated("INVALID_TOKEN", "invalid or expired token")
		}
		snap.RevokeSession(claims.SessionID)
		return nil
	})
	if err != nil {
		return err
	}

	r.gateway.DisconnectSession(claims.SessionID)
	return nil
}
