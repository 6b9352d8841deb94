package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/permissions"
)

// DMService handles direct-message conversations.
type DMService struct {
	base
	gateway gateway.Dispatcher
	now     func() time.Time
}

// NewDMService creates a DMService.
func NewDMService(st StateStore, gw gateway.Dispatcher, logger *slog.Logger) *DMService {
	return &DMService{
		base:    newBase(st, logger, "dms"),
		gateway: gw,
		now:     time.Now,
	}
}

// CreateDM creates a DM between the caller and memberIDs. The name is the
// sorted member handles joined by ", " and does not follow later handle
// changes.
func (s *DMService) CreateDM(ctx context.Context, callerID int64, memberIDs []int64) (*models.DMSummary, error) {
	var summary models.DMSummary
	var members []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		if _, err := caller(snap, callerID); err != nil {
			return err
		}
		for _, id := range memberIDs {
			if !snap.UserExists(id) {
				return InvalidTarget("UNKNOWN_USER", "user does not exist")
			}
		}
		seen := make(map[int64]bool, len(memberIDs))
		for _, id := range memberIDs {
			if seen[id] {
				return DuplicateTarget("user ids must be unique")
			}
			seen[id] = true
		}

		members = []int64{callerID}
		for _, id := range memberIDs {
			if id != callerID {
				members = append(members, id)
			}
		}
		handles := make([]string, 0, len(members))
		for _, id := range members {
			handles = append(handles, snap.FindUser(id).Handle)
		}
		slices.Sort(handles)
		name := strings.Join(handles, ", ")

		id := snap.CreateDM(models.DM{
			Name:      name,
			CreatorID: callerID,
			Members:   members,
			CreatedAt: s.now(),
		})
		summary = models.DMSummary{ID: id, Name: name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.gateway.DispatchToUsers(members, gateway.EventDMCreate, summary)
	return &summary, nil
}

// ListDMs returns the DMs the caller belongs to.
func (s *DMService) ListDMs(_ context.Context, callerID int64) ([]models.DMSummary, error) {
	out := []models.DMSummary{}
	err := s.view(func(snap *models.Snapshot) error {
		if _, err := caller(snap, callerID); err != nil {
			return err
		}
		for _, dm := range snap.DMsOf(callerID) {
			out = append(out, dm.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DMDetails returns a DM's name and members.
func (s *DMService) DMDetails(_ context.Context, callerID, dmID int64) (*models.DMDetails, error) {
	var out models.DMDetails
	err := s.view(func(snap *models.Snapshot) error {
		user, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		dm := snap.FindDM(dmID)
		if dm == nil {
			return dmNotFound()
		}
		if !permissions.ComputeDMPermissions(user, dm).Has(permissions.PermViewConversation) {
			return AccessDenied("NOT_MEMBER", "you are not a member of this DM")
		}
		out = models.DMDetails{Name: dm.Name, Members: snap.Summaries(dm.Members)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveDM removes the caller from a DM. The DM survives, even empty.
func (s *DMService) LeaveDM(ctx context.Context, callerID, dmID int64) error {
	var notify []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		user, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		dm := snap.FindDM(dmID)
		if dm == nil {
			return dmNotFound()
		}
		if !permissions.ComputeDMPermissions(user, dm).Has(permissions.PermLeave) {
			return AccessDenied("NOT_MEMBER", "you are not a member of this DM")
		}
		notify = slices.Clone(dm.Members)
		dm.RemoveMember(callerID)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(notify, gateway.EventDMMemberRemove,
		gateway.MemberEvent{DMID: dmID, UserID: callerID})
	return nil
}

// RemoveDM deletes a DM and its history. Only the creator may do this.
func (s *DMService) RemoveDM(ctx context.Context, callerID, dmID int64) error {
	var notify []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		user, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		dm := snap.FindDM(dmID)
		if dm == nil {
			return dmNotFound()
		}
		if !permissions.ComputeDMPermissions(user, dm).Has(permissions.PermRemoveDM) {
			return AccessDenied("NOT_CREATOR", "only the creator can remove this DM")
		}
		notify = slices.Clone(dm.Members)
		snap.DeleteDM(dmID)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(notify, gateway.EventDMDelete, map[string]int64{"dm_id": dmID})
	return nil
}

func dmNotFound() *ServiceError {
	return NotFound("UNKNOWN_DM", "DM does not exist")
}
