package proxy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pulse-chat/internal/domain/conversation"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConversationRepo struct {
	conversations map[uuid.UUID]conversation.Conversation
}

func (s stubConversationRepo) Create(context.Context, *conversation.Conversation) error { return nil }
func (s stubConversationRepo) Update(context.Context, conversation.Conversation) error  { return nil }

func (s stubConversationRepo) GetByID(_ context.Context, id uuid.UUID) (conversation.Conversation, error) {
	c, ok := s.conversations[id]
	if !ok {
		return conversation.Conversation{}, fmt.Errorf("%w: conversation %s", pulse_errors.ErrNotFound, id)
	}
	return c, nil
}

func (s stubConversationRepo) FindOrCreateDirect(context.Context, *conversation.Conversation) (conversation.Conversation, bool, error) {
	return conversation.Conversation{}, false, nil
}

func (s stubConversationRepo) ListForUser(context.Context, uuid.UUID, int, int) ([]conversation.Conversation, int64, error) {
	return nil, 0, nil
}

func TestRequireParticipant(t *testing.T) {
	member := uuid.New()
	conv, err := conversation.New(member, uuid.New(), time.Now())
	require.NoError(t, err)

	guard := NewAccessControl(stubConversationRepo{conversations: map[uuid.UUID]conversation.Conversation{
		conv.ID: *conv,
	}})

	got, err := guard.RequireParticipant(context.Background(), conv.ID, member)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
}

func TestRequireParticipantMasksExistence(t *testing.T) {
	member := uuid.New()
	conv, err := conversation.New(member, uuid.New(), time.Now())
	require.NoError(t, err)

	guard := NewAccessControl(stubConversationRepo{conversations: map[uuid.UUID]conversation.Conversation{
		conv.ID: *conv,
	}})

	// A non-participant probing a real conversation and anyone probing a
	// random id must be indistinguishable.
	_, errOutsider := guard.RequireParticipant(context.Background(), conv.ID, uuid.New())
	_, errMissing := guard.RequireParticipant(context.Background(), uuid.New(), member)

	assert.True(t, errors.Is(errOutsider, pulse_errors.ErrNotFound))
	assert.True(t, errors.Is(errMissing, pulse_errors.ErrNotFound))
	assert.Equal(t, errOutsider, errMissing)
}
