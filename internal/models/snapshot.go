package models

import (
	"maps"
	"slices"
	"strings"
)

// Counters hold the last id handed out per entity kind.
type Counters struct {
	User    int64 `json:"user"`
	Channel int64 `json:"channel"`
	DM      int64 `json:"dm"`
	Message int64 `json:"message"`
}

// Snapshot is the whole persisted state of the system. Every mutation works
// on a clone of the current snapshot which is persisted before it replaces
// the original.
type Snapshot struct {
	Users    []User           `json:"users"`
	Channels []Channel        `json:"channels"`
	DMs      []DM             `json:"dms"`
	Sessions map[string]int64 `json:"sessions"`
	Counters Counters         `json:"counters"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Sessions: make(map[string]int64)}
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Users:    slices.Clone(s.Users),
		Channels: make([]Channel, len(s.Channels)),
		DMs:      make([]DM, len(s.DMs)),
		Sessions: maps.Clone(s.Sessions),
		Counters: s.Counters,
	}
	if c.Sessions == nil {
		c.Sessions = make(map[string]int64)
	}
	for i, ch := range s.Channels {
		ch.OwnerMembers = slices.Clone(ch.OwnerMembers)
		ch.AllMembers = slices.Clone(ch.AllMembers)
		ch.Messages = cloneMessages(ch.Messages)
		c.Channels[i] = ch
	}
	for i, dm := range s.DMs {
		dm.Members = slices.Clone(dm.Members)
		dm.Messages = cloneMessages(dm.Messages)
		c.DMs[i] = dm
	}
	return c
}

func cloneMessages(msgs []Message) []Message {
	out := slices.Clone(msgs)
	for i := range out {
		if out[i].EditedAt != nil {
			t := *out[i].EditedAt
			out[i].EditedAt = &t
		}
	}
	return out
}

// --- Identity store ---

// UserExists reports whether id names a user that has not been removed.
func (s *Snapshot) UserExists(id int64) bool {
	u := s.FindUser(id)
	return u != nil && !u.Removed
}

// FindUser returns the user with the given id, removed or not.
func (s *Snapshot) FindUser(id int64) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// FindUserByEmail matches case-insensitively among non-removed users.
func (s *Snapshot) FindUserByEmail(email string) *User {
	if email == "" {
		return nil
	}
	for i := range s.Users {
		if !s.Users[i].Removed && strings.EqualFold(s.Users[i].Email, email) {
			return &s.Users[i]
		}
	}
	return nil
}

// FindUserByHandle matches case-insensitively among non-removed users.
func (s *Snapshot) FindUserByHandle(handle string) *User {
	if handle == "" {
		return nil
	}
	for i := range s.Users {
		if !s.Users[i].Removed && strings.EqualFold(s.Users[i].Handle, handle) {
			return &s.Users[i]
		}
	}
	return nil
}

// CreateUser stores u under a freshly allocated id and returns the id.
func (s *Snapshot) CreateUser(u User) int64 {
	s.Counters.User++
	u.ID = s.Counters.User
	s.Users = append(s.Users, u)
	return u.ID
}

// AllUsers returns the users that have not been removed.
func (s *Snapshot) AllUsers() []User {
	var out []User
	for _, u := range s.Users {
		if !u.Removed {
			out = append(out, u)
		}
	}
	return out
}

// OwnerCount returns the number of non-removed global owners.
func (s *Snapshot) OwnerCount() int {
	n := 0
	for _, u := range s.Users {
		if !u.Removed && u.Permission == PermissionOwner {
			n++
		}
	}
	return n
}

// Summaries resolves ids to public user views, skipping unknown ids.
func (s *Snapshot) Summaries(ids []int64) []UserSummary {
	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		if u := s.FindUser(id); u != nil {
			out = append(out, u.Summary())
		}
	}
	return out
}

// --- Sessions ---

func (s *Snapshot) AddSession(sessionID string, userID int64) {
	if s.Sessions == nil {
		s.Sessions = make(map[string]int64)
	}
	s.Sessions[sessionID] = userID
}

// RevokeSession deletes one session and reports whether it existed.
func (s *Snapshot) RevokeSession(sessionID string) bool {
	if _, ok := s.Sessions[sessionID]; !ok {
		return false
	}
	delete(s.Sessions, sessionID)
	return true
}

// RevokeUserSessions deletes every session of userID and returns their ids.
func (s *Snapshot) RevokeUserSessions(userID int64) []string {
	var revoked []string
	for sid, uid := range s.Sessions {
		if uid == userID {
			revoked = append(revoked, sid)
			delete(s.Sessions, sid)
		}
	}
	slices.Sort(revoked)
	return revoked
}

// --- Conversation directory ---

func (s *Snapshot) FindChannel(id int64) *Channel {
	for i := range s.Channels {
		if s.Channels[i].ID == id {
			return &s.Channels[i]
		}
	}
	return nil
}

func (s *Snapshot) CreateChannel(c Channel) int64 {
	s.Counters.Channel++
	c.ID = s.Counters.Channel
	s.Channels = append(s.Channels, c)
	return c.ID
}

// ChannelsOf returns the channels userID belongs to.
func (s *Snapshot) ChannelsOf(userID int64) []*Channel {
	var out []*Channel
	for i := range s.Channels {
		if s.Channels[i].IsMember(userID) {
			out = append(out, &s.Channels[i])
		}
	}
	return out
}

func (s *Snapshot) FindDM(id int64) *DM {
	for i := range s.DMs {
		if s.DMs[i].ID == id {
			return &s.DMs[i]
		}
	}
	return nil
}

func (s *Snapshot) CreateDM(d DM) int64 {
	s.Counters.DM++
	d.ID = s.Counters.DM
	s.DMs = append(s.DMs, d)
	return d.ID
}

// DeleteDM removes the DM and its history, reporting whether it existed.
func (s *Snapshot) DeleteDM(id int64) bool {
	n := len(s.DMs)
	s.DMs = slices.DeleteFunc(s.DMs, func(d DM) bool { return d.ID == id })
	return len(s.DMs) != n
}

// DMsOf returns the DMs userID belongs to.
func (s *Snapshot) DMsOf(userID int64) []*DM {
	var out []*DM
	for i := range s.DMs {
		if s.DMs[i].IsMember(userID) {
			out = append(out, &s.DMs[i])
		}
	}
	return out
}

// NextMessageID allocates a message id unique across channels and DMs.
func (s *Snapshot) NextMessageID() int64 {
	s.Counters.Message++
	return s.Counters.Message
}

// FindMessage locates a message in any channel or DM.
func (s *Snapshot) FindMessage(id int64) (MessageRef, bool) {
	for i := range s.Channels {
		for j := range s.Channels[i].Messages {
			if s.Channels[i].Messages[j].ID == id {
				return MessageRef{Kind: KindChannel, Channel: &s.Channels[i], Index: j}, true
			}
		}
	}
	for i := range s.DMs {
		for j := range s.DMs[i].Messages {
			if s.DMs[i].Messages[j].ID == id {
				return MessageRef{Kind: KindDM, DM: &s.DMs[i], Index: j}, true
			}
		}
	}
	return MessageRef{}, false
}
