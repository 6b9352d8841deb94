package service

import (
	"context"
	"log/slog"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/gateway"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/models"
	"github.com/BenJLiuu/microsoftteamsbackend-sub000/internal/permissions"
)

const maxChannelNameLen = 20

// ChannelService handles channel membership and ownership.
type ChannelService struct {
	base
	gateway gateway.Dispatcher
	now     func() time.Time
}

// NewChannelService creates a ChannelService.
func NewChannelService(st StateStore, gw gateway.Dispatcher, logger *slog.Logger) *ChannelService {
	return &ChannelService{
		base:    newBase(st, logger, "channels"),
		gateway: gw,
		now:     time.Now,
	}
}

// CreateChannel creates a channel with the caller as its first owner and member.
func (s *ChannelService) CreateChannel(ctx context.Context, callerID int64, name string, isPublic bool) (*models.ChannelSummary, error) {
	if n := utf8.RuneCountInString(name); n < 1 || n > maxChannelNameLen {
		return nil, InvalidValue("INVALID_NAME", "channel name must be 1-20 characters")
	}

	var summary models.ChannelSummary
	err := s.update(ctx, func(snap *models.Snapshot) error {
		if _, err := caller(snap, callerID); err != nil {
			return err
		}
		id := snap.CreateChannel(models.Channel{
			Name:         name,
			IsPublic:     isPublic,
			OwnerMembers: []int64{callerID},
			AllMembers:   []int64{callerID},
			CreatedAt:    s.now(),
		})
		summary = models.ChannelSummary{ID: id, Name: name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.gateway.DispatchToUser(callerID, gateway.EventChannelCreate, summary)
	return &summary, nil
}

// ListChannels returns the channels the caller belongs to.
func (s *ChannelService) ListChannels(_ context.Context, callerID int64) ([]models.ChannelSummary, error) {
	out := []models.ChannelSummary{}
	err := s.view(func(snap *models.Snapshot) error {
		if _, err := caller(snap, callerID); err != nil {
			return err
		}
		for _, ch := range snap.ChannelsOf(callerID) {
			out = append(out, ch.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAllChannels returns every channel, public and private.
func (s *ChannelService) ListAllChannels(_ context.Context, callerID int64) ([]models.ChannelSummary, error) {
	out := []models.ChannelSummary{}
	err := s.view(func(snap *models.Snapshot) error {
		if _, err := caller(snap, callerID); err != nil {
			return err
		}
		for i := range snap.Channels {
			out = append(out, snap.Channels[i].Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ChannelDetails returns a channel's name, visibility and members.
func (s *ChannelService) ChannelDetails(_ context.Context, callerID, channelID int64) (*models.ChannelDetails, error) {
	var out models.ChannelDetails
	err := s.view(func(snap *models.Snapshot) error {
		user, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		ch := snap.FindChannel(channelID)
		if ch == nil {
			return channelNotFound()
		}
		if !permissions.ComputeChannelPermissions(user, ch).Has(permissions.PermViewConversation) {
			return AccessDenied("NOT_MEMBER", "you are not a member of this channel")
		}
		out = models.ChannelDetails{
			Name:         ch.Name,
			IsPublic:     ch.IsPublic,
			OwnerMembers: snap.Summaries(ch.OwnerMembers),
			AllMembers:   snap.Summaries(ch.AllMembers),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinChannel adds the caller to a channel. Private channels admit only
// global owners this way; everyone else needs an invite.
func (s *ChannelService) JoinChannel(ctx context.Context, callerID, channelID int64) error {
	var members []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		user, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		ch := snap.FindChannel(channelID)
		if ch == nil {
			return channelNotFound()
		}
		if ch.IsMember(callerID) {
			return AlreadyMember("you are already a member of this channel")
		}
		if !permissions.ComputeChannelPermissions(user, ch).Has(permissions.PermJoin) {
			return AccessDenied("PRIVATE_CHANNEL", "channel is private")
		}
		ch.AddMember(callerID)
		members = slices.Clone(ch.AllMembers)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(members, gateway.EventChannelMemberAdd,
		gateway.MemberEvent{ChannelID: channelID, UserID: callerID})
	return nil
}

// InviteToChannel adds targetID to a channel the caller belongs to,
// regardless of the channel's visibility.
func (s *ChannelService) InviteToChannel(ctx context.Context, callerID, channelID, targetID int64) error {
	var members []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		user, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		ch := snap.FindChannel(channelID)
		if ch == nil {
			return channelNotFound()
		}
		if !snap.UserExists(targetID) {
			return InvalidTarget("UNKNOWN_USER", "user does not exist")
		}
		if ch.IsMember(targetID) {
			return AlreadyMember("user is already a member of this channel")
		}
		if !permissions.ComputeChannelPermissions(user, ch).Has(permissions.PermInvite) {
			return AccessDenied("NOT_MEMBER", "you are not a member of this channel")
		}
		ch.AddMember(targetID)
		members = slices.Clone(ch.AllMembers)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(members, gateway.EventChannelMemberAdd,
		gateway.MemberEvent{ChannelID: channelID, UserID: targetID})
	return nil
}

// LeaveChannel removes the caller from a channel's member and owner sets.
func (s *ChannelService) LeaveChannel(ctx context.Context, callerID, channelID int64) error {
	var notify []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		user, err := caller(snap, callerID)
		if err != nil {
			return err
		}
		ch := snap.FindChannel(channelID)
		if ch == nil {
			return channelNotFound()
		}
		if !permissions.ComputeChannelPermissions(user, ch).Has(permissions.PermLeave) {
			return AccessDenied("NOT_MEMBER", "you are not a member of this channel")
		}
		notify = slices.Clone(ch.AllMembers)
		ch.RemoveMember(callerID)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(notify, gateway.EventChannelMemberRemove,
		gateway.MemberEvent{ChannelID: channelID, UserID: callerID})
	return nil
}

// AddChannelOwner promotes a channel member to channel owner. The caller
// must own the channel or be a global owner.
func (s *ChannelService) AddChannelOwner(ctx context.Context, callerID, channelID, targetID int64) error {
	var members []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		ch, err := s.ownerTarget(snap, callerID, channelID, targetID)
		if err != nil {
			return err
		}
		if ch.IsOwner(targetID) {
			return AlreadyOwner("user is already an owner of this channel")
		}
		ch.AddOwner(targetID)
		members = slices.Clone(ch.AllMembers)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(members, gateway.EventChannelOwnerAdd,
		gateway.MemberEvent{ChannelID: channelID, UserID: targetID})
	return nil
}

// RemoveChannelOwner demotes a channel owner to plain member. The last
// owner of a channel cannot be demoted this way.
func (s *ChannelService) RemoveChannelOwner(ctx context.Context, callerID, channelID, targetID int64) error {
	var members []int64
	err := s.update(ctx, func(snap *models.Snapshot) error {
		ch, err := s.ownerTarget(snap, callerID, channelID, targetID)
		if err != nil {
			return err
		}
		if !ch.IsOwner(targetID) {
			return NotOwner("user is not an owner of this channel")
		}
		if len(ch.OwnerMembers) == 1 {
			return LastOwner("channel must keep at least one owner")
		}
		ch.RemoveOwner(targetID)
		members = slices.Clone(ch.AllMembers)
		return nil
	})
	if err != nil {
		return err
	}

	s.gateway.DispatchToUsers(members, gateway.EventChannelOwnerRemove,
		gateway.MemberEvent{ChannelID: channelID, UserID: targetID})
	return nil
}

// ownerTarget runs the checks shared by owner promotion and demotion.
func (s *ChannelService) ownerTarget(snap *models.Snapshot, callerID, channelID, targetID int64) (*models.Channel, error) {
	user, err := caller(snap, callerID)
	if err != nil {
		return nil, err
	}
	ch := snap.FindChannel(channelID)
	if ch == nil {
		return nil, channelNotFound()
	}
	if !ch.IsMember(targetID) {
		return nil, InvalidTarget("NOT_MEMBER", "user is not a member of this channel")
	}
	if !permissions.ComputeChannelPermissions(user, ch).Has(permissions.PermManageOwners) {
		return nil, AccessDenied("NOT_CHANNEL_OWNER", "you do not have owner permissions in this channel")
	}
	return ch, nil
}

func channelNotFound() *ServiceError {
	return NotFound("UNKNOWN_CHANNEL", "channel does not exist")
}
