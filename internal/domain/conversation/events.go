package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Created carries the participant list directly so fan-out never needs a
// lookup for conversation creation.
type Created struct {
	ConversationID uuid.UUID
	CreatedBy      uuid.UUID
	ParticipantIDs []uuid.UUID
	CreatedAt      time.Time
}

func (Created) EventType() string { return "conversation.created" }

// Read is recorded when a participant's read watermark advances.
type Read struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	LastReadAt     time.Time
}

func (Read) EventType() string { return "conversation.read" }
