package conversation

import (
	"fmt"
	"time"

	"pulse-chat/internal/domain"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
)

// Participant is a value object owned by its Conversation. LastReadAt is nil
// until the user first marks the conversation read and only ever advances.
type Participant struct {
	UserID     uuid.UUID
	JoinedAt   time.Time
	LastReadAt *time.Time
}

// LastMessage is the cached preview shown in conversation lists. Refreshed on
// every persisted message, never read back for anything authoritative.
type LastMessage struct {
	MessageID      uuid.UUID
	SenderID       uuid.UUID
	Content        *string
	HasAttachments bool
	SentAt         time.Time
}

// Conversation is the aggregate root for a two-person direct conversation.
// Messages are a separate aggregate referencing ConversationID; loading a
// conversation never loads message history.
type Conversation struct {
	domain.EventRecorder

	ID           uuid.UUID
	CreatedBy    uuid.UUID
	Participants []Participant
	LastMessage  *LastMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates a direct conversation between two distinct users and records a
// Created event. Uniqueness of the pair is enforced by the persistence layer.
func New(creatorID, recipientID uuid.UUID, now time.Time) (*Conversation, error) {
	if creatorID == uuid.Nil || recipientID == uuid.Nil {
		return nil, fmt.Errorf("%w: participant ids are required", pulse_errors.ErrInvalidInput)
	}
	if creatorID == recipientID {
		return nil, fmt.Errorf("%w: a conversation needs two distinct participants", pulse_errors.ErrInvalidInput)
	}

	c := &Conversation{
		ID:        uuid.New(),
		CreatedBy: creatorID,
		Participants: []Participant{
			{UserID: creatorID, JoinedAt: now},
			{UserID: recipientID, JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Record(Created{
		ConversationID: c.ID,
		CreatedBy:      creatorID,
		ParticipantIDs: c.ParticipantIDs(),
		CreatedAt:      now,
	})
	return c, nil
}

// ParticipantIDs returns the two member ids. Every fan-out computation goes
// through this.
func (c *Conversation) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// IsParticipant reports membership of userID.
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Touch refreshes the last-message preview and bumps UpdatedAt. Called when a
// new message has been persisted.
func (c *Conversation) Touch(preview LastMessage, now time.Time) {
	c.LastMessage = &preview
	c.UpdatedAt = now
}

// MarkRead advances the participant's LastReadAt to at. The watermark is
// monotonic: an earlier timestamp is a successful no-op and advanced reports
// whether anything changed. A Read event is recorded only when the watermark
// moved.
func (c *Conversation) MarkRead(userID uuid.UUID, at time.Time) (advanced bool, err error) {
	for i := range c.Participants {
		p := &c.Participants[i]
		if p.UserID != userID {
			continue
		}
		if p.LastReadAt != nil && !at.After(*p.LastReadAt) {
			return false, nil
		}
		t := at
		p.LastReadAt = &t
		c.Record(Read{
			ConversationID: c.ID,
			UserID:         userID,
			LastReadAt:     at,
		})
		return true, nil
	}
	return false, fmt.Errorf("%w: user is not a participant", pulse_errors.ErrForbidden)
}

// LastReadAt returns the participant's read watermark, nil when the user has
// never marked the conversation read or is not a member.
func (c *Conversation) LastReadAt(userID uuid.UUID) *time.Time {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return p.LastReadAt
		}
	}
	return nil
}
