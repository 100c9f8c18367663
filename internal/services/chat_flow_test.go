package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pulse-chat/internal/domain"
	"pulse-chat/internal/events"
	"pulse-chat/internal/proxy"
	"pulse-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Drives a whole two-user exchange through the real services, dispatcher and
// fan-out, with only persistence and the socket hub faked out. Delivery runs
// synchronously here so every push is observable right after the command.
func TestChatFlow(t *testing.T) {
	ctx := context.Background()

	convRepo := newMemConversationRepo()
	msgRepo := newMemMessageRepo()
	dispatcher := events.NewDispatcher()
	pusher := &memPusher{}

	fanout := NewFanoutService(convRepo, pusher, nil, newMemParticipantCache(), logger.NewNop())
	dispatcher.Subscribe(events.ConsumerFunc(func(ctx context.Context, e domain.Event) {
		fanout.process(ctx, e)
	}))

	access := proxy.NewAccessControl(convRepo)
	conversations := NewConversationService(convRepo, access, dispatcher, logger.NewNop())
	messages := NewMessageService(msgRepo, convRepo, access, passthroughTx{}, dispatcher, logger.NewNop())

	alice := uuid.New()
	bob := uuid.New()

	framesFor := func(userID uuid.UUID) []events.Envelope {
		var out []events.Envelope
		for _, p := range pusher.all() {
			if p.UserID != userID.String() {
				continue
			}
			var env events.Envelope
			require.NoError(t, json.Unmarshal(p.Frame, &env))
			out = append(out, env)
		}
		return out
	}
	lastFrameFor := func(userID uuid.UUID) events.Envelope {
		frames := framesFor(userID)
		require.NotEmpty(t, frames)
		return frames[len(frames)-1]
	}

	// Alice opens a conversation with Bob.
	created, err := conversations.CreateDirect(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, created.IsNew)
	assert.Equal(t, events.TypeConversationCreated, lastFrameFor(bob).Type)

	// Alice says hi; Bob's connection receives the push.
	content := "hi"
	sent, err := messages.Send(ctx, SendMessageInput{
		ConversationID: created.Conversation.ID,
		SenderID:       alice,
		Content:        &content,
	})
	require.NoError(t, err)

	frame := lastFrameFor(bob)
	require.Equal(t, events.TypeMessageNew, frame.Type)
	var newPayload events.MessageNewPayload
	require.NoError(t, json.Unmarshal(frame.Payload, &newPayload))
	assert.Equal(t, sent.ID, newPayload.MessageID)
	require.NotNil(t, newPayload.Content)
	assert.Equal(t, "hi", *newPayload.Content)
	assert.False(t, newPayload.HasAttachments)

	// Bob hearts it; Alice sees the reaction arrive.
	_, err = messages.ToggleReaction(ctx, sent.ID, bob, "❤️")
	require.NoError(t, err)
	assert.Equal(t, events.TypeReactionAdded, lastFrameFor(alice).Type)

	// Bob hearts again; the reaction is withdrawn.
	_, err = messages.ToggleReaction(ctx, sent.ID, bob, "❤️")
	require.NoError(t, err)
	assert.Equal(t, events.TypeReactionRemoved, lastFrameFor(alice).Type)

	stored, err := msgRepo.GetByID(ctx, sent.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Reactions)

	// Alice marks the conversation read at T1; a stale T0 never regresses it.
	t1 := time.Now().UTC()
	_, err = conversations.MarkRead(ctx, created.Conversation.ID, alice, t1)
	require.NoError(t, err)

	conv, err := conversations.MarkRead(ctx, created.Conversation.ID, alice, t1.Add(-time.Minute))
	require.NoError(t, err)
	require.NotNil(t, conv.LastReadAt(alice))
	assert.Equal(t, t1, *conv.LastReadAt(alice))
}
