package message

import (
	"time"

	"github.com/google/uuid"
)

// Sent is recorded when a message passes validation. HasAttachments stands in
// for the attachment payload so live pushes stay small.
type Sent struct {
	MessageID      uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        *string
	HasAttachments bool
	SentAt         time.Time
}

func (Sent) EventType() string { return "message.sent" }

type Edited struct {
	MessageID      uuid.UUID
	ConversationID uuid.UUID
	Content        *string
	EditedAt       time.Time
}

func (Edited) EventType() string { return "message.edited" }

type Deleted struct {
	MessageID      uuid.UUID
	ConversationID uuid.UUID
	DeletedAt      time.Time
}

func (Deleted) EventType() string { return "message.deleted" }

type ReactionAdded struct {
	MessageID      uuid.UUID
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Emoji          string
}

func (ReactionAdded) EventType() string { return "message.reaction_added" }

type ReactionRemoved struct {
	MessageID      uuid.UUID
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Emoji          string
}

func (ReactionRemoved) EventType() string { return "message.reaction_removed" }
