package events

import (
	"context"
	"testing"

	"pulse-chat/internal/domain"
	"pulse-chat/internal/domain/conversation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDispatcherDeliversToAllConsumers(t *testing.T) {
	d := NewDispatcher()

	var first, second []domain.Event
	d.Subscribe(ConsumerFunc(func(_ context.Context, e domain.Event) {
		first = append(first, e)
	}))
	d.Subscribe(ConsumerFunc(func(_ context.Context, e domain.Event) {
		second = append(second, e)
	}))

	evt := conversation.Read{ConversationID: uuid.New(), UserID: uuid.New()}
	d.Dispatch(context.Background(), evt)

	assert.Equal(t, []domain.Event{evt}, first)
	assert.Equal(t, []domain.Event{evt}, second)
}

func TestDispatcherWithoutConsumersIsANoOp(t *testing.T) {
	d := NewDispatcher()
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), conversation.Read{ConversationID: uuid.New()})
	})
}
