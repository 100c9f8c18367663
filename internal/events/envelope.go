package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire frame written to every live connection.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a ready-to-send frame.
func NewEnvelope(eventType string, occurredAt time.Time, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, OccurredAt: occurredAt, Payload: raw}, nil
}

// Minimal push payloads: ids, flags and timestamps only. Attachment bytes and
// full aggregate state never travel on this channel; clients refetch.

type MessageNewPayload struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        *string   `json:"content"`
	HasAttachments bool      `json:"has_attachments"`
	SentAt         time.Time `json:"sent_at"`
}

type MessageUpdatedPayload struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Content        *string   `json:"content"`
	EditedAt       time.Time `json:"edited_at"`
}

type MessageDeletedPayload struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	DeletedAt      time.Time `json:"deleted_at"`
}

type ReactionPayload struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	Emoji          string    `json:"emoji"`
}

type ConversationReadPayload struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	UserID         uuid.UUID `json:"user_id"`
	LastReadAt     time.Time `json:"last_read_at"`
}

type ConversationCreatedPayload struct {
	ConversationID uuid.UUID   `json:"conversation_id"`
	CreatedBy      uuid.UUID   `json:"created_by"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	CreatedAt      time.Time   `json:"created_at"`
}

type ConnectionReadyPayload struct {
	UserID string `json:"user_id"`
}
