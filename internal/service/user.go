package service

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
)

var handleRegexp = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)

// UserService handles profile reads and self-service profile updates.
type UserService struct {
	base
	gateway gateway.Dispatcher
}

// NewUserService creates a UserService.
func NewUserService(st StateStore, gw gateway.Dispatcher, logger *slog.Logger) *UserService {
	return &UserService{base: newBase(st, logger, "users"), gateway: gw}
}

// Profile returns the public view of a user. Removed users stay
// resolvable with their placeholder names.
func (s *UserService) Profile(_ context.Context, callerID, userID int64) (*models.UserSummary, error) {
	var out models.UserSummary
	err := s.view(func(snap *models.Snapshot) error {
		if _, err := caller(snap, callerID); err != nil {
			return err
		}
		u := snap.FindUser(userID)
		if u == nil {
			return InvalidTarget("UNKNOWN_USER", "user does not exist")
		}
		out = u.Summary()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every user that has not been removed.
func (s *UserService) ListUsers(_ context.Context, callerID int64) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	err := s.view(func(snap *models.Snapshot) error {
		if _, err := caller(snap, callerID); err != nil {
			return err
		}
		for _, u := range snap.AllUsers() {
			out = append(out, u.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetName updates the caller's first and last name.
func (s *UserService) SetName(ctx context.Context, callerID int64, first, last string) error {
	if err := validateNames(first, last); err != nil {
		return err
	}
	return s.mutateSelf(ctx, callerID, func(snap *models.Snapshot, u *models.User) error {
		u.NameFirst, u.NameLast = first, last
		return nil
	})
}

// SetEmail updates the caller's email. The new address must be unused.
func (s *UserService) SetEmail(ctx context.Context, callerID int64, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.mutateSelf(ctx, callerID, func(snap *models.Snapshot, u *models.User) error {
		if other := snap.FindUserByEmail(email); other != nil && other.ID != u.ID {
			return InvalidValue("EMAIL_TAKEN", "email is already registered")
		}
		u.Email = email
		return nil
	})
}

// SetHandle updates the caller's handle. The new handle must be unused.
// DM names built from the old handle are left as they are.
func (s *UserService) SetHandle(ctx context.Context, callerID int64, handle string) error {
	if !handleRegexp.MatchString(handle) {
		return InvalidValue("INVALID_HANDLE", "handle must be 3-20 alphanumeric characters")
	}
	return s.mutateSelf(ctx, callerID, func(snap *models.Snapshot, u *models.User) error {
		if other := snap.FindUserByHandle(handle); other != nil && other.ID != u.ID {
			return InvalidValue("HANDLE_TAKEN", "handle is already in use")
		}
		u.Handle = handle
		return nil
	})
}

func (s *UserService) mutateSelf(ctx context.Context, callerID int64, fn func(snap *models.Snapshot, u *models.User) error) error {
	var summary models.UserSummary
	var peers []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		u, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		if err := fn(snap, u); err != nil {
			return err
		}
		summary = u.Summary()
		peers = peersOf(snap, callerID)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(peers, gateway.EventUserUpdate, summary)
	return nil
}
