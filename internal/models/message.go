package models

import "time"

type Message struct {
	ID       int64      `json:"message_id"`
	AuthorID int64      `json:"u_id"`
	Content  string     `json:"message"`
	SentAt   time.Time  `json:"time_sent"`
	EditedAt *time.Time `json:"edited_at,omitempty"`
}

// MessagePage is one page of a conversation's history, newest first.
// End is -1 when the page reaches the oldest message.
type MessagePage struct {
	Messages []Message `json:"messages"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
}

// ConversationKind tells whether a message lives in a channel or a DM.
type ConversationKind int

const (
	KindChannel ConversationKind = iota + 1
	KindDM
)

// MessageRef locates a message inside the snapshot.
type MessageRef struct {
	Kind    ConversationKind
	Channel *Channel
	DM      *DM
	Index   int
}

// Message returns a pointer to the referenced message.
func (r MessageRef) Message() *Message {
	if r.Kind == KindChannel {
		return &r.Channel.Messages[r.Index]
	}
	return &r.DM.Messages[r.Index]
}

// Delete removes the referenced message from its conversation.
func (r MessageRef) Delete() {
	if r.Kind == KindChannel {
		r.Channel.Messages = append(r.Channel.Messages[:r.Index], r.Channel.Messages[r.Index+1:]...)
		return
	}
	r.DM.Messages = append(r.DM.Messages[:r.Index], r.DM.Messages[r.Index+1:]...)
}
