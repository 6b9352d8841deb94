package models

import (
	"slices"
	"time"
)

type Channel struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	IsPublic     bool      `json:"is_public"`
	OwnerMembers []int64   `json:"owner_members"`
	AllMembers   []int64   `json:"all_members"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChannelSummary is the listing view of a channel.
type ChannelSummary struct {
	ID   int64  `json:"channel_id"`
	Name string `json:"name"`
}

// ChannelDetails is the member-visible view of a channel.
type ChannelDetails struct {
	Name         string        `json:"name"`
	IsPublic     bool          `json:"is_public"`
	OwnerMembers []UserSummary `json:"owner_members"`
	AllMembers   []UserSummary `json:"all_members"`
}

func (c *Channel) Summary() ChannelSummary {
	return ChannelSummary{ID: c.ID, Name: c.Name}
}

func (c *Channel) IsMember(userID int64) bool {
	return slices.Contains(c.AllMembers, userID)
}

func (c *Channel) IsOwner(userID int64) bool {
	return slices.Contains(c.OwnerMembers, userID)
}

// AddMember appends userID to the member list if absent.
func (c *Channel) AddMember(userID int64) {
	if !c.IsMember(userID) {
		c.AllMembers = append(c.AllMembers, userID)
	}
}

// AddOwner appends userID to the owner list if absent. It does not touch
// the member list; callers make sure the user is already a member.
func (c *Channel) AddOwner(userID int64) {
	if !c.IsOwner(userID) {
		c.OwnerMembers = append(c.OwnerMembers, userID)
	}
}

// RemoveOwner drops userID from the owner list. Absent ids are ignored.
func (c *Channel) RemoveOwner(userID int64) {
	c.OwnerMembers = slices.DeleteFunc(c.OwnerMembers, func(id int64) bool { return id == userID })
}

// RemoveMember drops userID from both the member and owner lists.
func (c *Channel) RemoveMember(userID int64) {
	c.AllMembers = slices.DeleteFunc(c.AllMembers, func(id int64) bool { return id == userID })
	c.RemoveOwner(userID)
}
