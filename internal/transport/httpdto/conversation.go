package httpdto

import (
	"time"

	"pulse-chat/internal/domain/conversation"
)

type CreateConversationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
}

type ConversationDTO struct {
	ID           string           `json:"id"`
	CreatedBy    string           `json:"created_by"`
	Participants []ParticipantDTO `json:"participants"`
	LastMessage  *LastMessageDTO  `json:"last_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type ParticipantDTO struct {
	UserID     string     `json:"user_id"`
	JoinedAt   time.Time  `json:"joined_at"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

type LastMessageDTO struct {
	MessageID      string    `json:"message_id"`
	SenderID       string    `json:"sender_id"`
	Content        *string   `json:"content"`
	HasAttachments bool      `json:"has_attachments"`
	SentAt         time.Time `json:"sent_at"`
}

type ListConversationsResponse struct {
	Items      []ConversationDTO `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

type MarkReadResponse struct {
	ConversationID string     `json:"conversation_id"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty"`
}

func NewConversationDTO(c conversation.Conversation) ConversationDTO {
	dto := ConversationDTO{
		ID:        c.ID.String(),
		CreatedBy: c.CreatedBy.String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, p := range c.Participants {
		dto.Participants = append(dto.Participants, ParticipantDTO{
			UserID:     p.UserID.String(),
			JoinedAt:   p.JoinedAt,
			LastReadAt: p.LastReadAt,
		})
	}
	if c.LastMessage != nil {
		dto.LastMessage = &LastMessageDTO{
			MessageID:      c.LastMessage.MessageID.String(),
			SenderID:       c.LastMessage.SenderID.String(),
			Content:        c.LastMessage.Content,
			HasAttachments: c.LastMessage.HasAttachments,
			SentAt:         c.LastMessage.SentAt,
		}
	}
	return dto
}

func NewConversationDTOs(items []conversation.Conversation) []ConversationDTO {
	dtos := make([]ConversationDTO, 0, len(items))
	for _, c := range items {
		dtos = append(dtos, NewConversationDTO(c))
	}
	return dtos
}
