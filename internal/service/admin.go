package service

import (
	"context"
	"log/slog"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/permissions"
)

// AdminService handles global permission changes and user removal.
// The system always keeps at least one global owner.
type AdminService struct {
	base
	gateway gateway.Dispatcher
}

// NewAdminService creates an AdminService.
func NewAdminService(st StateStore, gw gateway.Dispatcher, logger *slog.Logger) *AdminService {
	return &AdminService{base: newBase(st, logger, "admin"), gateway: gw}
}

// SetGlobalPermission changes targetID's platform-wide permission level.
func (s *AdminService) SetGlobalPermission(ctx context.Context, callerID, targetID int64, level models.PermissionLevel) error {
	var summary models.UserSummary
	err := s.update(ctx, func(snap *models.Snapshot) error {
		if err := requireGlobalOwner(snap, callerID); err != nil {
			return err
		}
		target := snap.FindUser(targetID)
		if target == nil || target.Removed {
			return InvalidTarget("UNKNOWN_USER", "user does not exist")
		}
		if !level.Valid() {
			return InvalidValue("INVALID_PERMISSION", "permission must be 1 (owner) or 2 (member)")
		}
		if target.Permission == models.PermissionOwner && level != models.PermissionOwner && snap.OwnerCount() == 1 {
			return LastOwner("cannot demote the only global owner")
		}
		if target.Permission == level {
			return NoOp("user already has this permission")
		}
		target.Permission = level
		summary = target.Summary()
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("global permission changed", "by", callerID, "userID", targetID, "permission", level.String())
	s.gateway.DispatchToUser(targetID, gateway.EventUserUpdate, summary)
	return nil
}

// RemoveUser soft-deletes targetID in one transaction. The user keeps its
// id with placeholder names, loses email and handle, leaves every channel
// and DM, has every authored message replaced with a placeholder, and
// loses all sessions. Channels may be left without owners.
func (s *AdminService) RemoveUser(ctx context.Context, callerID, targetID int64) error {
	var peers []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		if err := requireGlobalOwner(snap, callerID); err != nil {
			return err
		}
		target := snap.FindUser(targetID)
		if target == nil || target.Removed {
			return InvalidTarget("UNKNOWN_USER", "user does not exist")
		}
		if target.Permission == models.PermissionOwner && snap.OwnerCount() == 1 {
			return LastOwner("cannot remove the only global owner")
		}

		peers = peersOf(snap, targetID)
		removeUser(snap, target)
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("user removed", "by", callerID, "userID", targetID)
	s.gateway.DisconnectUser(targetID)
	s.gateway.DispatchToUsers(peers, gateway.EventUserRemove, map[string]int64{"u_id": targetID})
	return nil
}

// removeUser applies the removal cascade to snap.
func removeUser(snap *models.Snapshot, target *models.User) {
	id := target.ID

	target.Removed = true
	target.NameFirst = models.RemovedFirstName
	target.NameLast = models.RemovedLastName
	target.Email = ""
	target.Handle = ""

	for i := range snap.Channels {
		ch := &snap.Channels[i]
		ch.RemoveMember(id)
		replaceAuthored(ch.Messages, id)
	}
	for i := range snap.DMs {
		dm := &snap.DMs[i]
		dm.RemoveMember(id)
		replaceAuthored(dm.Messages, id)
	}

	snap.RevokeUserSessions(id)
}

func replaceAuthored(msgs []models.Message, authorID int64) {
	for i := range msgs {
		if msgs[i].AuthorID == authorID {
			msgs[i].Content = models.RemovedMessageText
		}
	}
}

func requireGlobalOwner(snap *models.Snapshot, callerID int64) error {
	user, err := caller(snap, callerID)
	if err != nil {
		return err
	}
	if !permissions.ComputeBasePermissions(user).Has(permissions.PermAdministrator) {
		return AccessDenied("NOT_GLOBAL_OWNER", "only global owners can do this")
	}
	return nil
}
