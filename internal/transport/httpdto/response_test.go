package httpdto

import (
	"testing"
	"time"

	"pulse-chat/internal/domain/message"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 50, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPreviousPage)

	p = NewPagination(1, 50, 120)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.False(t, p.HasPreviousPage)

	p = NewPagination(3, 50, 120)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPreviousPage)

	p = NewPagination(2, 50, 100)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPreviousPage)
}

func TestNewMessageDTOWithholdsDeletedContent(t *testing.T) {
	sender := uuid.New()
	content := "secret"
	m, err := message.Send(uuid.New(), sender, &content, nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, m.SoftDelete(sender, time.Now()))

	dto := NewMessageDTO(*m)
	assert.True(t, dto.IsDeleted)
	assert.Nil(t, dto.Content, "deleted messages expose only the marker")
	assert.Empty(t, dto.Attachments)
	assert.Empty(t, dto.Reactions)
	require.NotNil(t, dto.DeletedAt)
}

func TestNewMessageDTO(t *testing.T) {
	sender := uuid.New()
	content := "hello"
	m, err := message.Send(uuid.New(), sender, &content, []message.Attachment{{
		URL:       "https://cdn.example.com/a.png",
		MimeType:  "image/png",
		SizeBytes: 10,
	}}, time.Now())
	require.NoError(t, err)

	dto := NewMessageDTO(*m)
	assert.False(t, dto.IsDeleted)
	require.NotNil(t, dto.Content)
	assert.Equal(t, "hello", *dto.Content)
	require.Len(t, dto.Attachments, 1)
	assert.Equal(t, "image/png", dto.Attachments[0].MimeType)
}
