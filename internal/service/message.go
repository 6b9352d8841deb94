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

const (
	maxMessageLen = 1000
	pageSize      = 50
)

// MessageService handles sending, listing, editing and removing messages
// in channels and DMs.
type MessageService struct {
	base
	gateway gateway.Dispatcher
	now     func() time.Time
}

// NewMessageService creates a MessageService.
func NewMessageService(st StateStore, gw gateway.Dispatcher, logger *slog.Logger) *MessageService {
	return &MessageService{
		base:    newBase(st, logger, "messages"),
		gateway: gw,
		now:     time.Now,
	}
}

// conversation is the part of a channel or DM that messaging needs.
type conversation struct {
	messages *[]models.Message
	members  []int64
	perms    permissions.Permission
	event    gateway.MessageEvent
}

func (s *MessageService) channelConversation(snap *models.Snapshot, callerID, channelID int64) (*conversation, error) {
	user, err := caller(snap, callerID)
	if err != nil {
		return nil, err
	}
	ch := snap.FindChannel(channelID)
	if ch == nil {
		return nil, channelNotFound()
	}
	return &conversation{
		messages: &ch.Messages,
		members:  ch.AllMembers,
		perms:    permissions.ComputeChannelPermissions(user, ch),
		event:    gateway.MessageEvent{ChannelID: channelID},
	}, nil
}

func (s *MessageService) dmConversation(snap *models.Snapshot, callerID, dmID int64) (*conversation, error) {
	user, err := caller(snap, callerID)
	if err != nil {
		return nil, err
	}
	dm := snap.FindDM(dmID)
	if dm == nil {
		return nil, dmNotFound()
	}
	return &conversation{
		messages: &dm.Messages,
		members:  dm.Members,
		perms:    permissions.ComputeDMPermissions(user, dm),
		event:    gateway.MessageEvent{DMID: dmID},
	}, nil
}

// SendChannelMessage posts content to a channel the caller belongs to.
func (s *MessageService) SendChannelMessage(ctx context.Context, callerID, channelID int64, content string) (int64, error) {
	return s.send(ctx, content, func(snap *models.Snapshot) (*conversation, error) {
		return s.channelConversation(snap, callerID, channelID)
	}, callerID)
}

// SendDMMessage posts content to a DM the caller belongs to.
func (s *MessageService) SendDMMessage(ctx context.Context, callerID, dmID int64, content string) (int64, error) {
	return s.send(ctx, content, func(snap *models.Snapshot) (*conversation, error) {
		return s.dmConversation(snap, callerID, dmID)
	}, callerID)
}

func (s *MessageService) send(ctx context.Context, content string, resolve func(*models.Snapshot) (*conversation, error), callerID int64) (int64, error) {
	var msgID int64
	var members []int64
	var event gateway.MessageEvent
	err := s.update(ctx, func(snap *models.Snapshot) error {
		conv, err := resolve(snap)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(content); n < 1 || n > maxMessageLen {
			return InvalidValue("INVALID_CONTENT", "message must be 1-1000 characters")
		}
		if !conv.perms.Has(permissions.PermSendMessages) {
			return AccessDenied("NOT_MEMBER", "you are not a member of this conversation")
		}
		msgID = snap.NextMessageID()
		*conv.messages = append(*conv.messages, models.Message{
			ID:       msgID,
			AuthorID: callerID,
			Content:  content,
			SentAt:   s.now(),
		})
		members = slices.Clone(conv.members)
		event = conv.event
		return nil
	})
	if err != nil {
		return 0, err
	}

	event.MessageID = msgID
	event.Content = content
	s.gateway.DispatchToUsers(members, gateway.EventMessageCreate, event)
	return msgID, nil
}

// ChannelMessages returns up to 50 messages of a channel, newest first,
// starting start messages back from the newest.
func (s *MessageService) ChannelMessages(_ context.Context, callerID, channelID int64, start int) (*models.MessagePage, error) {
	return s.page(start, func(snap *models.Snapshot) (*conversation, error) {
		return s.channelConversation(snap, callerID, channelID)
	})
}

// DMMessages returns up to 50 messages of a DM, newest first.
func (s *MessageService) DMMessages(_ context.Context, callerID, dmID int64, start int) (*models.MessagePage, error) {
	return s.page(start, func(snap *models.Snapshot) (*conversation, error) {
		return s.dmConversation(snap, callerID, dmID)
	})
}

func (s *MessageService) page(start int, resolve func(*models.Snapshot) (*conversation, error)) (*models.MessagePage, error) {
	var out models.MessagePage
	err := s.view(func(snap *models.Snapshot) error {
		conv, err := resolve(snap)
		if err != nil {
			return err
		}
		if !conv.perms.Has(permissions.PermViewConversation) {
			return AccessDenied("NOT_MEMBER", "you are not a member of this conversation")
		}
		msgs := *conv.messages
		total := len(msgs)
		if start < 0 || start > total {
			return InvalidValue("INVALID_START", "start is beyond the number of messages")
		}

		page := make([]models.Message, 0, pageSize)
		for i := total - 1 - start; i >= 0 && len(page) < pageSize; i-- {
			page = append(page, msgs[i])
		}
		end := start + pageSize
		if end >= total {
			end = -1
		}
		out = models.MessagePage{Messages: page, Start: start, End: end}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EditMessage replaces a message's content. Empty content removes it.
func (s *MessageService) EditMessage(ctx context.Context, callerID, messageID int64, content string) error {
	if content == "" {
		return s.RemoveMessage(ctx, callerID, messageID)
	}

	var members []int64
	var event gateway.MessageEvent
	err := s.update(ctx, func(snap *models.Snapshot) error {
		ref, conv, err := s.locate(snap, callerID, messageID)
		if err != nil {
			return err
		}
		if utf8.RuneCountInString(content) > maxMessageLen {
			return InvalidValue("INVALID_CONTENT", "message must be at most 1000 characters")
		}
		msg := ref.Message()
		if !permissions.CanEditMessage(snap.FindUser(callerID), conv.perms, msg) {
			return AccessDenied("NOT_AUTHOR", "you cannot edit this message")
		}
		now := s.now()
		msg.Content = content
		msg.EditedAt = &now
		members = slices.Clone(conv.members)
		event = conv.event
		return nil
	})
	if err != nil {
		return err
	}

	event.MessageID = messageID
	event.Content = content
	s.gateway.DispatchToUsers(members, gateway.EventMessageUpdate, event)
	return nil
}

// RemoveMessage deletes a message. Authors may remove their own messages;
// channel owners, global owners in the channel, and DM creators may remove
// anyone's.
func (s *MessageService) RemoveMessage(ctx context.Context, callerID, messageID int64) error {
	var members []int64
	var event gateway.MessageEvent
	err := s.update(ctx, func(snap *models.Snapshot) error {
		ref, conv, err := s.locate(snap, callerID, messageID)
		if err != nil {
			return err
		}
		if !permissions.CanEditMessage(snap.FindUser(callerID), conv.perms, ref.Message()) {
			return AccessDenied("NOT_AUTHOR", "you cannot remove this message")
		}
		ref.Delete()
		members = slices.Clone(conv.members)
		event = conv.event
		return nil
	})
	if err != nil {
		return err
	}

	event.MessageID = messageID
	s.gateway.DispatchToUsers(members, gateway.EventMessageDelete, event)
	return nil
}

// locate finds a message in a conversation the caller can see. Messages
// outside the caller's conversations are reported as unknown.
func (s *MessageService) locate(snap *models.Snapshot, callerID, messageID int64) (models.MessageRef, *conversation, error) {
	ref, ok := snap.FindMessage(messageID)
	if !ok {
		return ref, nil, messageNotFound()
	}

	var conv *conversation
	var err error
	if ref.Kind == models.KindChannel {
		conv, err = s.channelConversation(snap, callerID, ref.Channel.ID)
	} else {
		conv, err = s.dmConversation(snap, callerID, ref.DM.ID)
	}
	if err != nil {
		return ref, nil, err
	}
	if !conv.perms.Has(permissions.PermViewConversation) {
		return ref, nil, messageNotFound()
	}
	return ref, conv, nil
}

func messageNotFound() *ServiceError {
	return NotFound("UNKNOWN_MESSAGE", "message does not exist")
}
