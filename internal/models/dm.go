package models

import (
	"slices"
	"time"
)

// DM is a direct-message conversation. Name is computed from the member
// handles when the DM is created and is not recomputed afterwards.
type DM struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatorID int64     `json:"creator_id"`
	Members   []int64   `json:"members"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

type DMSummary struct {
	ID   int64  `json:"dm_id"`
	Name string `json:"name"`
}

type DMDetails struct {
	Name    string        `json:"name"`
	Members []UserSummary `json:"members"`
}

func (d *DM) Summary() DMSummary {
	return DMSummary{ID: d.ID, Name: d.Name}
}

func (d *DM) IsMember(userID int64) bool {
	return slices.Contains(d.Members, userID)
}

func (d *DM) RemoveMember(userID int64) {
	d.Members = slices.DeleteFunc(d.Members, func(id int64) bool { return id == userID })
}
