package model

import "time"

// Message belongs to exactly one conversation: either ReceiverID (direct) or
// GroupID (group) is set, never both. At least one of Text/ImageURL is
// non-empty. Messages are immutable once created and ordered by CreatedAt.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID *string   `json:"receiver_id,omitempty"`
	GroupID    *string   `json:"group_id,omitempty"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	VoiceURL   string    `json:"voice_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Enriched identities, attached by reads and by the ingest pipeline so
	// clients can render without a second round trip.
	Sender   *UserPublic `json:"sender,omitempty"`
	Receiver *UserPublic `json:"receiver,omitempty"`
}

// IsGroup reports whether the message belongs to a group conversation.
func (m *Message) IsGroup() bool { return m.GroupID != nil }
