package proxy

import (
	"context"
	"errors"

	"pulse-chat/internal/domain/conversation"
	"pulse-chat/internal/repository"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
)

// AccessControl is the single authorization choke point. Every command and
// every paginated read goes through RequireParticipant before touching
// message data.
type AccessControl struct {
	conversationRepo repository.ConversationRepository
}

func NewAccessControl(conversationRepo repository.ConversationRepository) *AccessControl {
	return &AccessControl{conversationRepo: conversationRepo}
}

// RequireParticipant loads the conversation and verifies membership. A
// missing conversation and a non-participant produce the same ErrNotFound so
// callers cannot probe which conversation ids exist.
func (a *AccessControl) RequireParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Conversation, error) {
	conv, err := a.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pulse_errors.ErrNotFound) {
			return conversation.Conversation{}, pulse_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	if !conv.IsParticipant(userID) {
		return conversation.Conversation{}, pulse_errors.ErrNotFound
	}
	return conv, nil
}
