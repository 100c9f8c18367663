package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pulse-chat/internal/domain/conversation"
	"pulse-chat/internal/domain/message"
	"pulse-chat/internal/events"
	"pulse-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedConversation(t *testing.T, repo *memConversationRepo) *conversation.Conversation {
	t.Helper()
	c, err := conversation.New(uuid.New(), uuid.New(), time.Now().UTC())
	require.NoError(t, err)
	c.ClearEvents()
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestFanoutDeliversToAllParticipants(t *testing.T) {
	repo := newMemConversationRepo()
	pusher := &memPusher{}
	svc := NewFanoutService(repo, pusher, nil, nil, logger.NewNop())

	conv := seedConversation(t, repo)
	content := "hello"
	svc.process(context.Background(), message.Sent{
		MessageID:      uuid.New(),
		ConversationID: conv.ID,
		SenderID:       conv.CreatedBy,
		Content:        &content,
		SentAt:         time.Now().UTC(),
	})

	pushes := pusher.all()
	require.Len(t, pushes, 2)

	var users []string
	for _, p := range pushes {
		users = append(users, p.UserID)

		var env events.Envelope
		require.NoError(t, json.Unmarshal(p.Frame, &env))
		assert.Equal(t, events.TypeMessageNew, env.Type)

		var payload events.MessageNewPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, conv.ID, payload.ConversationID)
		require.NotNil(t, payload.Content)
		assert.Equal(t, "hello", *payload.Content)
	}

	var want []string
	for _, id := range conv.ParticipantIDs() {
		want = append(want, id.String())
	}
	assert.ElementsMatch(t, want, users)
}

func TestFanoutPushesInPersistOrder(t *testing.T) {
	repo := newMemConversationRepo()
	pusher := &memPusher{}
	svc := NewFanoutService(repo, pusher, nil, nil, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Run(ctx)

	conv := seedConversation(t, repo)

	// Back-to-back sends, the way two quick messages land from the
	// command path. Each participant must see them in send order.
	const rounds = 20
	contents := make([]string, rounds)
	for i := range contents {
		contents[i] = string(rune('a' + i))
		svc.Handle(context.Background(), message.Sent{
			MessageID:      uuid.New(),
			ConversationID: conv.ID,
			SenderID:       conv.CreatedBy,
			Content:        &contents[i],
			SentAt:         time.Now().UTC(),
		})
	}

	require.Eventually(t, func() bool {
		return len(pusher.all()) == rounds*2
	}, 2*time.Second, 5*time.Millisecond)

	perUser := make(map[string][]string)
	for _, p := range pusher.all() {
		var env events.Envelope
		require.NoError(t, json.Unmarshal(p.Frame, &env))
		var payload events.MessageNewPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		require.NotNil(t, payload.Content)
		perUser[p.UserID] = append(perUser[p.UserID], *payload.Content)
	}

	require.Len(t, perUser, 2)
	for user, got := range perUser {
		assert.Equal(t, contents, got, "frames for user %s out of order", user)
	}
}

func TestFanoutCreationUsesEventParticipants(t *testing.T) {
	// The conversation is deliberately absent from the repository; the
	// creation event carries everything the push needs.
	repo := newMemConversationRepo()
	pusher := &memPusher{}
	cache := newMemParticipantCache()
	svc := NewFanoutService(repo, pusher, nil, cache, logger.NewNop())

	conversationID := uuid.New()
	participants := []uuid.UUID{uuid.New(), uuid.New()}
	svc.process(context.Background(), conversation.Created{
		ConversationID: conversationID,
		CreatedBy:      participants[0],
		ParticipantIDs: participants,
		CreatedAt:      time.Now().UTC(),
	})

	require.Len(t, pusher.all(), 2)

	// The pair is now cached for subsequent message events.
	ids, ok := cache.Get(context.Background(), conversationID)
	require.True(t, ok)
	assert.ElementsMatch(t, participants, ids)
}

func TestFanoutUsesCacheBeforeRepository(t *testing.T) {
	repo := newMemConversationRepo()
	pusher := &memPusher{}
	cache := newMemParticipantCache()
	svc := NewFanoutService(repo, pusher, nil, cache, logger.NewNop())

	conversationID := uuid.New()
	cache.Set(context.Background(), conversationID, []uuid.UUID{uuid.New(), uuid.New()})

	svc.process(context.Background(), message.Deleted{
		MessageID:      uuid.New(),
		ConversationID: conversationID,
		DeletedAt:      time.Now().UTC(),
	})

	assert.Len(t, pusher.all(), 2)
	assert.Equal(t, 1, cache.hits)
}

func TestFanoutPublishesInsteadOfPushingWhenBridged(t *testing.T) {
	repo := newMemConversationRepo()
	pusher := &memPusher{}
	publisher := newMemPublisher()
	svc := NewFanoutService(repo, pusher, publisher, nil, logger.NewNop())

	conv := seedConversation(t, repo)
	svc.process(context.Background(), conversation.Read{
		ConversationID: conv.ID,
		UserID:         conv.CreatedBy,
		LastReadAt:     time.Now().UTC(),
	})

	// With a publisher every frame travels through pub/sub exactly once;
	// the local hub is fed by the bridge, never directly.
	assert.Empty(t, pusher.all())
	require.Len(t, publisher.messages, 2)
	for _, id := range conv.ParticipantIDs() {
		assert.Len(t, publisher.messages[events.UserChannel(id.String())], 1)
	}
}

func TestFanoutDropsEventsForUnknownConversations(t *testing.T) {
	repo := newMemConversationRepo()
	pusher := &memPusher{}
	svc := NewFanoutService(repo, pusher, nil, nil, logger.NewNop())

	svc.process(context.Background(), message.ReactionAdded{
		MessageID:      uuid.New(),
		ConversationID: uuid.New(),
		UserID:         uuid.New(),
		Emoji:          "👍",
	})

	assert.Empty(t, pusher.all())
}

func TestFanoutIgnoresForeignEvents(t *testing.T) {
	repo := newMemConversationRepo()
	pusher := &memPusher{}
	svc := NewFanoutService(repo, pusher, nil, nil, logger.NewNop())

	svc.process(context.Background(), fakeEvent{})

	assert.Empty(t, pusher.all())
}

type fakeEvent struct{}

func (fakeEvent) EventType() string { return "something.else" }
