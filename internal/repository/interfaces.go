package repository

import (
	"context"

	"github.com/google/uuid"

	"pulse-chat/internal/domain/conversation"
	"pulse-chat/internal/domain/message"
)

// ConversationRepository is the persistence port for the conversation
// aggregate. Update is a full-aggregate upsert; FindOrCreateDirect must be
// atomic so concurrent creation attempts for the same pair converge on one
// row.
type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	Update(ctx context.Context, c conversation.Conversation) error

	// FindOrCreateDirect persists c unless a conversation between the same
	// pair already exists, in which case the stored one is returned and
	// created is false.
	FindOrCreateDirect(ctx context.Context, c *conversation.Conversation) (conversation.Conversation, bool, error)

	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error)
}

// MessageRepository is the persistence port for the message aggregate.
// ListByConversation returns a reverse-chronological page plus the total row
// count; soft-deleted messages stay in pages.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	Update(ctx context.Context, m message.Message) error

	ListByConversation(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, int64, error)
}

// TxRunner scopes fn to one transaction. Repositories participate when the
// transaction travels on ctx.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
