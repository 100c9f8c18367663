package services

import (
	"context"
	"time"

	"pulse-chat/internal/domain/conversation"
	"pulse-chat/internal/domain/message"
	"pulse-chat/internal/events"
	"pulse-chat/internal/proxy"
	"pulse-chat/internal/repository"
	"pulse-chat/pkg/logger"

	"github.com/google/uuid"
)

// MessageService orchestrates the message command use cases. Every command
// follows the same contract: load, guard, mutate, persist, dispatch, clear.
type MessageService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	access        *proxy.AccessControl
	tx            repository.TxRunner
	dispatcher    *events.Dispatcher
	log           *logger.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	access *proxy.AccessControl,
	tx repository.TxRunner,
	dispatcher *events.Dispatcher,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		access:        access,
		tx:            tx,
		dispatcher:    dispatcher,
		log:           log,
	}
}

type SendMessageInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        *string
	Attachments    []message.Attachment
}

// Send validates and persists a new message, bumps the conversation's
// preview and updatedAt in the same transaction, and dispatches the Sent
// event only after the commit succeeded.
func (s *MessageService) Send(ctx context.Context, input SendMessageInput) (message.Message, error) {
	conv, err := s.access.RequireParticipant(ctx, input.ConversationID, input.SenderID)
	if err != nil {
		return message.Message{}, err
	}

	msg, err := message.Send(input.ConversationID, input.SenderID, input.Content, input.Attachments, time.Now().UTC())
	if err != nil {
		return message.Message{}, err
	}
	conv.Touch(conversation.LastMessage{
		MessageID:      msg.ID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		HasAttachments: msg.HasAttachments(),
		SentAt:         msg.CreatedAt,
	}, msg.CreatedAt)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.messages.Create(ctx, msg); err != nil {
			return err
		}
		return s.conversations.Update(ctx, conv)
	})
	if err != nil {
		return message.Message{}, err
	}

	s.dispatcher.Dispatch(ctx, msg.Events()...)
	msg.ClearEvents()
	return *msg, nil
}

// GetMessages returns a reverse-chronological page. Read-only, but the guard
// still applies: message data is never readable by non-participants, even
// via id enumeration.
func (s *MessageService) GetMessages(ctx context.Context, conversationID, requestingUserID uuid.UUID, page, limit int) ([]message.Message, int64, error) {
	if _, err := s.access.RequireParticipant(ctx, conversationID, requestingUserID); err != nil {
		return nil, 0, err
	}
	page, limit = NormalizePage(page, limit)
	return s.messages.ListByConversation(ctx, conversationID, page, limit)
}

// ToggleReaction flips the (user, emoji) reaction on a message and reports
// the resulting action. Toggling twice with the same arguments restores the
// original reaction state.
func (s *MessageService) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) (message.ReactionAction, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return "", err
	}
	if _, err := s.access.RequireParticipant(ctx, msg.ConversationID, userID); err != nil {
		return "", err
	}

	action, err := msg.ToggleReaction(userID, emoji, time.Now().UTC())
	if err != nil {
		return "", err
	}
	if err := s.messages.Update(ctx, msg); err != nil {
		return "", err
	}

	s.dispatcher.Dispatch(ctx, msg.Events()...)
	msg.ClearEvents()
	return action, nil
}

// Edit replaces a message's content. Sender only.
func (s *MessageService) Edit(ctx context.Context, messageID, userID uuid.UUID, newContent string) (message.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if _, err := s.access.RequireParticipant(ctx, msg.ConversationID, userID); err != nil {
		return message.Message{}, err
	}

	if err := msg.Edit(userID, newContent, time.Now().UTC()); err != nil {
		return message.Message{}, err
	}
	if err := s.messages.Update(ctx, msg); err != nil {
		return message.Message{}, err
	}

	s.dispatcher.Dispatch(ctx, msg.Events()...)
	msg.ClearEvents()
	return msg, nil
}

// Delete soft-deletes a message. Sender only. The row survives for ordering;
// clients receive a deletion marker.
func (s *MessageService) Delete(ctx context.Context, messageID, userID uuid.UUID) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if _, err := s.access.RequireParticipant(ctx, msg.ConversationID, userID); err != nil {
		return err
	}

	if err := msg.SoftDelete(userID, time.Now().UTC()); err != nil {
		return err
	}
	if len(msg.Events()) == 0 {
		// Already deleted; nothing to persist or announce.
		return nil
	}
	if err := s.messages.Update(ctx, msg); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, msg.Events()...)
	msg.ClearEvents()
	return nil
}
