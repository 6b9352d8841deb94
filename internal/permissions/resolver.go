package permissions

import "github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"

// ComputeBasePermissions returns the platform-wide permissions of a user.
// Removed users have none.
func ComputeBasePermissions(user *models.User) Permission {
	if user == nil || user.Removed {
		return 0
	}
	if user.Permission == models.PermissionOwner {
		return PermAdministrator
	}
	return 0
}

// ComputeChannelPermissions resolves what user may do in ch.
//  1. Members may view, send, invite and leave.
//  2. Non-members may join public channels; global owners may also join
//     private ones.
//  3. Channel owners and global owners may manage the owner set, whether
//     or not they are members.
//  4. Channel owners, and global owners who are members, may manage other
//     users' messages.
func ComputeChannelPermissions(user *models.User, ch *models.Channel) Permission {
	base := ComputeBasePermissions(user)
	if user == nil || user.Removed || ch == nil {
		return base
	}

	perms := base
	member := ch.IsMember(user.ID)
	owner := ch.IsOwner(user.ID)
	admin := base.Has(PermAdministrator)

	if member {
		perms = perms.Add(PermMember)
	} else if ch.IsPublic || admin {
		perms = perms.Add(PermJoin)
	}

	if owner || admin {
		perms = perms.Add(PermManageOwners)
	}
	if owner || (admin && member) {
		perms = perms.Add(PermManageMessages)
	}
	return perms
}

// ComputeDMPermissions resolves what user may do in dm. DM membership is
// fixed at creation, so members get the channel member set without invite.
// Global ownership grants nothing inside a DM; only the creator may remove
// it or manage others' messages.
func ComputeDMPermissions(user *models.User, dm *models.DM) Permission {
	base := ComputeBasePermissions(user)
	if user == nil || user.Removed || dm == nil {
		return base
	}

	perms := base
	if dm.IsMember(user.ID) {
		perms = perms.Add(PermMember.Remove(PermInvite))
	}
	if dm.CreatorID == user.ID {
		perms = perms.Add(PermRemoveDM)
		if dm.IsMember(user.ID) {
			perms = perms.Add(PermManageMessages)
		}
	}
	return perms
}

// CanEditMessage reports whether a user holding perms in the message's
// conversation may edit or remove msg.
func CanEditMessage(user *models.User, perms Permission, msg *models.Message) bool {
	if user == nil || user.Removed {
		return false
	}
	if msg.AuthorID == user.ID && perms.Has(PermViewConversation) {
		return true
	}
	return perms.Has(PermManageMessages)
}
