package service

import (
	"context"
	"log/slog"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/auth"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
)

var nameRegexp = regexp.MustCompile(`^[a-zA-Z0-9]{1,50}$`)

const (
	minPasswordLen = 6
	maxHandleLen   = 20
)

// AuthResult holds the session token returned after registration or login.
type AuthResult struct {
	UserID int64  `json:"auth_user_id"`
	Token  string `json:"token"`
}

// AuthService handles registration, login, and logout.
type AuthService struct {
	base
	hasher   *auth.Hasher
	sessions *SessionRegistry
	now      func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(st StateStore, hasher *auth.Hasher, sessions *SessionRegistry, logger *slog.Logger) *AuthService {
	return &AuthService{
		base:     newBase(st, logger, "auth"),
		hasher:   hasher,
		sessions: sessions,
		now:      time.Now,
	}
}

// Register creates a new user and opens a session for them. The first user
// ever registered becomes a global owner.
func (s *AuthService) Register(ctx context.Context, email, password, first, last string) (*AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, InvalidValue("INVALID_PASSWORD", "password must be at least 6 characters")
	}
	if err := validateNames(first, last); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("hashing password", "error", err)
		return nil, Internal("INTERNAL", "internal server error")
	}

	var result AuthResult
	err = s.update(ctx, func(snap *models.Snapshot) error {
		if snap.FindUserByEmail(email) != nil {
			return InvalidValue("EMAIL_TAKEN", "email is already registered")
		}

		perm := models.PermissionMember
		if len(snap.Users) == 0 {
			perm = models.PermissionOwner
		}

		id := snap.CreateUser(models.User{
			NameFirst:    first,
			NameLast:     last,
			Email:        email,
			Handle:       generateHandle(snap, first, last),
			PasswordHash: hash,
			Permission:   perm,
			CreatedAt:    s.now(),
		})

		token, err := s.sessions.Create(snap, id)
		if err != nil {
			return err
		}
		result = AuthResult{UserID: id, Token: token}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", "userID", result.UserID)
	return &result, nil
}

// Login verifies credentials and opens an additional session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var hash string
	var userID int64
	err := s.view(func(snap *models.Snapshot) error {
		u := snap.FindUserByEmail(email)
		if u == nil {
			return InvalidValue("INVALID_CREDENTIALS", "email is not registered")
		}
		hash, userID = u.PasswordHash, u.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, hash)
	if err != nil || !ok {
		return nil, InvalidValue("INVALID_CREDENTIALS", "incorrect password")
	}

	var result AuthResult
	err = s.update(ctx, func(snap *models.Snapshot) error {
		// The user may have been removed while the password was checked.
		if !snap.UserExists(userID) {
			return InvalidValue("INVALID_CREDENTIALS", "email is not registered")
		}
		token, err := s.sessions.Create(snap, userID)
		if err != nil {
			return err
		}
		result = AuthResult{UserID: userID, Token: token}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout ends the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return InvalidValue("INVALID_EMAIL", "email is not valid")
	}
	return nil
}

func validateNames(first, last string) error {
	if !nameRegexp.MatchString(first) {
		return InvalidValue("INVALID_NAME", "first name must be 1-50 alphanumeric characters")
	}
	if !nameRegexp.MatchString(last) {
		return InvalidValue("INVALID_NAME", "last name must be 1-50 alphanumeric characters")
	}
	return nil
}

// generateHandle derives a handle from a name: lowercase alphanumerics of
// first+last cut to 20 characters. On collision the smallest integer suffix
// that makes it unique is appended, trimming the base so the result still
// fits in 20 characters.
func generateHandle(snap *models.Snapshot, first, last string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(first + last) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	handle := b.String()
	if len(handle) > maxHandleLen {
		handle = handle[:maxHandleLen]
	}

	if snap.FindUserByHandle(handle) == nil {
		return handle
	}
	for i := 0; ; i++ {
		suffix := strconv.Itoa(i)
		candidate := handle[:min(len(handle), maxHandleLen-len(suffix))] + suffix
		if snap.FindUserByHandle(candidate) == nil {
			return candidate
		}
	}
}
