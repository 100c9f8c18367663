package services

import (
	"context"
	"time"

	"pulse-chat/internal/domain/conversation"
	"pulse-chat/internal/events"
	"pulse-chat/internal/proxy"
	"pulse-chat/internal/repository"
	"pulse-chat/pkg/logger"

	"github.com/google/uuid"
)

type ConversationService struct {
	conversations repository.ConversationRepository
	access        *proxy.AccessControl
	dispatcher    *events.Dispatcher
	log           *logger.Logger
}

func NewConversationService(conversations repository.ConversationRepository, access *proxy.AccessControl, dispatcher *events.Dispatcher, log *logger.Logger) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		access:        access,
		dispatcher:    dispatcher,
		log:           log,
	}
}

// CreateConversationResult reports the conversation the pair converged on and
// whether this call created it.
type CreateConversationResult struct {
	Conversation conversation.Conversation
	IsNew        bool
}

// CreateDirect finds or creates the direct conversation between creator and
// recipient. Creation is idempotent: concurrent calls for the same pair
// converge on one row and only the winner dispatches the Created event.
func (s *ConversationService) CreateDirect(ctx context.Context, creatorID, recipientID uuid.UUID) (CreateConversationResult, error) {
	conv, err := conversation.New(creatorID, recipientID, time.Now().UTC())
	if err != nil {
		return CreateConversationResult{}, err
	}

	stored, created, err := s.conversations.FindOrCreateDirect(ctx, conv)
	if err != nil {
		return CreateConversationResult{}, err
	}
	if created {
		s.dispatcher.Dispatch(ctx, conv.Events()...)
	}
	conv.ClearEvents()

	return CreateConversationResult{Conversation: stored, IsNew: created}, nil
}

// Get returns the conversation after the participant guard.
func (s *ConversationService) Get(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Conversation, error) {
	return s.access.RequireParticipant(ctx, conversationID, userID)
}

// ListForUser returns the user's conversations in reverse updatedAt order.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error) {
	page, limit = NormalizePage(page, limit)
	return s.conversations.ListForUser(ctx, userID, page, limit)
}

// MarkRead advances the caller's read watermark. An at earlier than the
// stored watermark is a successful no-op: nothing is persisted and no event
// is dispatched.
func (s *ConversationService) MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) (conversation.Conversation, error) {
	conv, err := s.access.RequireParticipant(ctx, conversationID, userID)
	if err != nil {
		return conversation.Conversation{}, err
	}

	advanced, err := conv.MarkRead(userID, at)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !advanced {
		return conv, nil
	}

	if err := s.conversations.Update(ctx, conv); err != nil {
		return conversation.Conversation{}, err
	}
	s.dispatcher.Dispatch(ctx, conv.Events()...)
	conv.ClearEvents()
	return conv, nil
}

// NormalizePage clamps pagination input to sane bounds.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
