package models

import "time"

type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email,omitempty"`
	Password          string    `json:"-"`
	IsVerified        bool      `json:"is_verified"`
	VerificationToken string    `json:"-"`
	IsSystem          bool      `json:"is_system,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Conversation is the two-party channel between UserLowID and UserHighID.
// The pair is stored in ascending order and never changes after creation.
type Conversation struct {
	ID             int64     `json:"id"`
	UserLowID      int64     `json:"user_low_id"`
	UserHighID     int64     `json:"user_high_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// CanonicalPair orders two account ids so that the result is the same
// regardless of argument order.
func CanonicalPair(a, b int64) (low, high int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func (c *Conversation) Participants() [2]int64 {
	return [2]int64{c.UserLowID, c.UserHighID}
}

func (c *Conversation) HasParticipant(userID int64) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// Other returns the participant that is not userID. The result is only
// meaningful when HasParticipant(userID) is true.
func (c *Conversation) Other(userID int64) int64 {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindAudio MessageKind = "audio"
	KindFile  MessageKind = "file"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindAudio, KindFile:
		return true
	}
	return false
}

type Message struct {
	ID             int64         `json:"id"`
	ConversationID int64         `json:"conversation_id"`
	SenderID       int64         `json:"sender_id"`
	Username       string        `json:"username"`
	Content        string        `json:"content"`
	Kind           MessageKind   `json:"kind"`
	ReplyToID      *int64        `json:"reply_to_id,omitempty"`
	ReplyTo        *ReplyPreview `json:"reply_to,omitempty"`
	IsTombstoned   bool          `json:"is_tombstoned"`
	IsRead         bool          `json:"is_read"`
	CreatedAt      time.Time     `json:"created_at"`
}

// ReplyPreview is the resolved target of Message.ReplyToID.
type ReplyPreview struct {
	ID           int64       `json:"id"`
	SenderID     int64       `json:"sender_id"`
	Content      string      `json:"content"`
	Kind         MessageKind `json:"kind"`
	IsTombstoned bool        `json:"is_tombstoned"`
}

type Block struct {
	BlockerID int64     `json:"blocker_id"`
	BlockedID int64     `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSummary is one entry of a viewer's conversation list.
type ConversationSummary struct {
	ID             int64     `json:"id"`
	Participants   []User    `json:"participants"`
	LastMessage    *Message  `json:"last_message"`
	UnreadCount    int       `json:"unread_count"`
	LastActivityAt time.Time `json:"last_activity_at"`
}
