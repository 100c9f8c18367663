package httpdto

import (
	"time"

	"pulse-chat/internal/domain/message"
)

type SendMessageRequest struct {
	Content     *string                `json:"content"`
	Attachments []AttachmentRequestDTO `json:"attachments"`
}

type AttachmentRequestDTO struct {
	URL       string `json:"url" binding:"required"`
	MimeType  string `json:"mime_type" binding:"required"`
	SizeBytes int64  `json:"size_bytes"`
	FileName  string `json:"file_name"`
	Width     *int32 `json:"width,omitempty"`
	Height    *int32 `json:"height,omitempty"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ToggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

type ToggleReactionResponse struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	Action    string `json:"action"`
}

// MessageDTO is the API shape of a message. Deleted messages keep their
// place in history but expose only the deletion marker; content,
// attachments and reactions are withheld.
type MessageDTO struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	SenderID       string          `json:"sender_id"`
	Content        *string         `json:"content"`
	Attachments    []AttachmentDTO `json:"attachments,omitempty"`
	Reactions      []ReactionDTO   `json:"reactions,omitempty"`
	IsDeleted      bool            `json:"is_deleted"`
	CreatedAt      time.Time       `json:"created_at"`
	EditedAt       *time.Time      `json:"edited_at,omitempty"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
}

type AttachmentDTO struct {
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	FileName  string `json:"file_name,omitempty"`
	Width     *int32 `json:"width,omitempty"`
	Height    *int32 `json:"height,omitempty"`
}

type ReactionDTO struct {
	UserID    string    `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

type ListMessagesResponse struct {
	Items      []MessageDTO `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

func NewMessageDTO(m message.Message) MessageDTO {
	dto := MessageDTO{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		CreatedAt:      m.CreatedAt,
		DeletedAt:      m.DeletedAt,
		IsDeleted:      m.IsDeleted(),
	}
	if dto.IsDeleted {
		return dto
	}
	dto.Content = m.Content
	dto.EditedAt = m.EditedAt
	for _, a := range m.Attachments {
		dto.Attachments = append(dto.Attachments, AttachmentDTO{
			URL:       a.URL,
			MimeType:  a.MimeType,
			SizeBytes: a.SizeBytes,
			FileName:  a.FileName,
			Width:     a.Width,
			Height:    a.Height,
		})
	}
	for _, r := range m.Reactions {
		dto.Reactions = append(dto.Reactions, ReactionDTO{
			UserID:    r.UserID.String(),
			Emoji:     r.Emoji,
			CreatedAt: r.CreatedAt,
		})
	}
	return dto
}

func NewMessageDTOs(items []message.Message) []MessageDTO {
	dtos := make([]MessageDTO, 0, len(items))
	for _, m := range items {
		dtos = append(dtos, NewMessageDTO(m))
	}
	return dtos
}

// Attachments converts request attachments to the domain type.
func (r SendMessageRequest) DomainAttachments() []message.Attachment {
	if len(r.Attachments) == 0 {
		return nil
	}
	out := make([]message.Attachment, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		out = append(out, message.Attachment{
			URL:       a.URL,
			MimeType:  a.MimeType,
			SizeBytes: a.SizeBytes,
			FileName:  a.FileName,
			Width:     a.Width,
			Height:    a.Height,
		})
	}
	return out
}
