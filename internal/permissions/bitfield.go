package permissions

import (
	"slices"
	"strings"
)

// Permission is a bitfield of the actions a user may take on one
// conversation, or on the platform for PermAdministrator.
type Permission int64

const (
	PermViewConversation Permission = 1 << 0
	PermSendMessages     Permission = 1 << 1
	PermJoin             Permission = 1 << 2
	PermInvite           Permission = 1 << 3
	PermLeave            Permission = 1 << 4
	PermManageOwners     Permission = 1 << 5
	PermManageMessages   Permission = 1 << 6
	PermRemoveDM         Permission = 1 << 7
	PermAdministrator    Permission = 1 << 31 // global owner

	// Convenience sets
	PermMember = PermViewConversation | PermSendMessages | PermInvite | PermLeave
)

// Has returns true if p contains all bits in perm.
func (p Permission) Has(perm Permission) bool { return p&perm == perm }

// Add returns p with the bits from perm set.
func (p Permission) Add(perm Permission) Permission { return p | perm }

// Remove returns p with the bits from perm cleared.
func (p Permission) Remove(perm Permission) Permission { return p &^ perm }

var permNames = map[Permission]string{
	PermViewConversation: "VIEW_CONVERSATION",
	PermSendMessages:     "SEND_MESSAGES",
	PermJoin:             "JOIN",
	PermInvite:           "INVITE",
	PermLeave:            "LEAVE",
	PermManageOwners:     "MANAGE_OWNERS",
	PermManageMessages:   "MANAGE_MESSAGES",
	PermRemoveDM:         "REMOVE_DM",
	PermAdministrator:    "ADMINISTRATOR",
}

// String lists the set permission names in bit order, separated by " | ".
func (p Permission) String() string {
	if p == 0 {
		return "NONE"
	}

	bits := make([]Permission, 0, len(permNames))
	for bit := range permNames {
		bits = append(bits, bit)
	}
	slices.Sort(bits)

	var names []string
	for _, bit := range bits {
		if p.Has(bit) {
			names = append(names, permNames[bit])
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, " | ")
}
