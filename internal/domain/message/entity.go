package message

import (
	"fmt"
	"strings"
	"time"

	"pulse-chat/internal/domain"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
)

// MaxContentLength bounds message text after trimming.
const MaxContentLength = 4000

// Message is an aggregate root owned by exactly one conversation. Lifecycle
// markers are nullable timestamps: a live message has both EditedAt and
// DeletedAt nil.
type Message struct {
	domain.EventRecorder

	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        *string
	Attachments    []Attachment
	Reactions      []Reaction
	CreatedAt      time.Time
	EditedAt       *time.Time
	DeletedAt      *time.Time
}

// Send validates and creates a new message. A message must carry trimmed
// non-empty content or at least one attachment, never neither. Each
// attachment is checked against the mime allow-list and the size cap.
// Records a Sent event; the event carries a has-attachments flag instead of
// the attachment payload to keep fan-out frames small.
func Send(conversationID, senderID uuid.UUID, content *string, attachments []Attachment, now time.Time) (*Message, error) {
	trimmed := normalizeContent(content)
	if trimmed == nil && len(attachments) == 0 {
		return nil, fmt.Errorf("%w: message needs content or an attachment", pulse_errors.ErrInvalidInput)
	}
	if trimmed != nil && len(*trimmed) > MaxContentLength {
		return nil, fmt.Errorf("%w: content exceeds %d characters", pulse_errors.ErrInvalidInput, MaxContentLength)
	}
	for _, a := range attachments {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}

	m := &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        trimmed,
		Attachments:    attachments,
		CreatedAt:      now,
	}
	m.Record(Sent{
		MessageID:      m.ID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        trimmed,
		HasAttachments: len(attachments) > 0,
		SentAt:         now,
	})
	return m, nil
}

// ToggleReaction flips the (userID, emoji) reaction. A second application of
// the same pair removes it; different emojis from the same user coexist.
func (m *Message) ToggleReaction(userID uuid.UUID, emoji string, now time.Time) (ReactionAction, error) {
	if !isAllowedReaction(emoji) {
		return "", fmt.Errorf("%w: unsupported reaction %q", pulse_errors.ErrInvalidInput, emoji)
	}
	if m.DeletedAt != nil {
		return "", fmt.Errorf("%w: message is deleted", pulse_errors.ErrInvalidInput)
	}

	for i, r := range m.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			m.Record(ReactionRemoved{
				MessageID:      m.ID,
				ConversationID: m.ConversationID,
				UserID:         userID,
				Emoji:          emoji,
			})
			return ReactionActionRemoved, nil
		}
	}

	m.Reactions = append(m.Reactions, Reaction{
		MessageID: m.ID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: now,
	})
	m.Record(ReactionAdded{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		UserID:         userID,
		Emoji:          emoji,
	})
	return ReactionActionAdded, nil
}

// SoftDelete marks the message deleted. Sender only. The row survives for
// ordering and pagination; clients receive a deletion marker instead of the
// content.
func (m *Message) SoftDelete(requestingUserID uuid.UUID, now time.Time) error {
	if requestingUserID != m.SenderID {
		return fmt.Errorf("%w: only the sender may delete a message", pulse_errors.ErrForbidden)
	}
	if m.DeletedAt != nil {
		return nil
	}
	t := now
	m.DeletedAt = &t
	m.Record(Deleted{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		DeletedAt:      now,
	})
	return nil
}

// Edit replaces the content and stamps EditedAt. Sender only; the blank check
// is skipped when attachments keep the content-or-attachment invariant alive.
func (m *Message) Edit(requestingUserID uuid.UUID, newContent string, now time.Time) error {
	if requestingUserID != m.SenderID {
		return fmt.Errorf("%w: only the sender may edit a message", pulse_errors.ErrForbidden)
	}
	if m.DeletedAt != nil {
		return fmt.Errorf("%w: message is deleted", pulse_errors.ErrInvalidInput)
	}
	trimmed := normalizeContent(&newContent)
	if trimmed == nil && len(m.Attachments) == 0 {
		return fmt.Errorf("%w: content cannot be empty", pulse_errors.ErrInvalidInput)
	}
	if trimmed != nil && len(*trimmed) > MaxContentLength {
		return fmt.Errorf("%w: content exceeds %d characters", pulse_errors.ErrInvalidInput, MaxContentLength)
	}
	t := now
	m.Content = trimmed
	m.EditedAt = &t
	m.Record(Edited{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		Content:        trimmed,
		EditedAt:       now,
	})
	return nil
}

// IsDeleted reports whether the soft-delete marker is set.
func (m *Message) IsDeleted() bool {
	return m.DeletedAt != nil
}

// HasAttachments reports whether the message carries any attachment.
func (m *Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}

func normalizeContent(content *string) *string {
	if content == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*content)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
