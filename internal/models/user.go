package models

import "time"

// PermissionLevel is a user's platform-wide permission.
type PermissionLevel int

const (
	PermissionOwner  PermissionLevel = 1
	PermissionMember PermissionLevel = 2
)

// Valid reports whether l is one of the known levels.
func (l PermissionLevel) Valid() bool {
	return l == PermissionOwner || l == PermissionMember
}

func (l PermissionLevel) String() string {
	switch l {
	case PermissionOwner:
		return "owner"
	case PermissionMember:
		return "member"
	default:
		return "unknown"
	}
}

// Placeholder values written over a removed user's profile and messages.
const (
	RemovedFirstName   = "Removed"
	RemovedLastName    = "user"
	RemovedMessageText = "Removed user"
)

type User struct {
	ID           int64           `json:"id"`
	NameFirst    string          `json:"name_first"`
	NameLast     string          `json:"name_last"`
	Email        string          `json:"email"`
	Handle       string          `json:"handle"`
	PasswordHash string          `json:"password_hash"`
	Permission   PermissionLevel `json:"permission"`
	Removed      bool            `json:"removed"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UserSummary is the public view of a user returned to clients.
type UserSummary struct {
	ID        int64  `json:"u_id"`
	Email     string `json:"email"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
	Handle    string `json:"handle_str"`
}

// Summary returns the public view of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		NameFirst: u.NameFirst,
		NameLast:  u.NameLast,
		Handle:    u.Handle,
	}
}
