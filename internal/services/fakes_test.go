package services

import (
	"context"
	"fmt"
	"sync"

	"pulse-chat/internal/domain/conversation"
	"pulse-chat/internal/domain/message"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/google/uuid"
)

type memConversationRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]conversation.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{items: make(map[uuid.UUID]conversation.Conversation)}
}

func (r *memConversationRepo) Create(_ context.Context, c *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	// A real repository persists rows, not the aggregate's in-flight event
	// buffer; drop it from the stored copy so reloads never replay events.
	stored.ClearEvents()
	r.items[c.ID] = stored
	return nil
}

func (r *memConversationRepo) GetByID(_ context.Context, id uuid.UUID) (conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return conversation.Conversation{}, fmt.Errorf("%w: conversation %s", pulse_errors.ErrNotFound, id)
	}
	return c, nil
}

func (r *memConversationRepo) Update(_ context.Context, c conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return fmt.Errorf("%w: conversation %s", pulse_errors.ErrNotFound, c.ID)
	}
	c.ClearEvents()
	r.items[c.ID] = c
	return nil
}

func (r *memConversationRepo) FindOrCreateDirect(_ context.Context, c *conversation.Conversation) (conversation.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := c.ParticipantIDs()
	for _, existing := range r.items {
		if existing.IsParticipant(ids[0]) && existing.IsParticipant(ids[1]) {
			return existing, false, nil
		}
	}
	stored := *c
	stored.ClearEvents()
	r.items[c.ID] = stored
	return *c, true, nil
}

func (r *memConversationRepo) ListForUser(_ context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []conversation.Conversation
	for _, c := range r.items {
		if c.IsParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

type memMessageRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]message.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{items: make(map[uuid.UUID]message.Message)}
}

func (r *memMessageRepo) Create(_ context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *m
	stored.ClearEvents()
	r.items[m.ID] = stored
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id uuid.UUID) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return message.Message{}, fmt.Errorf("%w: message %s", pulse_errors.ErrNotFound, id)
	}
	return m, nil
}

func (r *memMessageRepo) Update(_ context.Context, m message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.ID]; !ok {
		return fmt.Errorf("%w: message %s", pulse_errors.ErrNotFound, m.ID)
	}
	m.ClearEvents()
	r.items[m.ID] = m
	return nil
}

func (r *memMessageRepo) ListByConversation(_ context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []message.Message
	for _, m := range r.items {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

// passthroughTx runs fn without a real transaction.
type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordedPush struct {
	UserID string
	Frame  []byte
}

type memPusher struct {
	mu     sync.Mutex
	pushes []recordedPush
}

func (p *memPusher) PushToUser(userID string, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, recordedPush{UserID: userID, Frame: payload})
}

func (p *memPusher) all() []recordedPush {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recordedPush, len(p.pushes))
	copy(out, p.pushes)
	return out
}

type memPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func newMemPublisher() *memPublisher {
	return &memPublisher{messages: make(map[string][][]byte)}
}

func (p *memPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[channel] = append(p.messages[channel], payload)
	return nil
}

type memParticipantCache struct {
	mu    sync.Mutex
	pairs map[uuid.UUID][]uuid.UUID
	hits  int
}

func newMemParticipantCache() *memParticipantCache {
	return &memParticipantCache{pairs: make(map[uuid.UUID][]uuid.UUID)}
}

func (c *memParticipantCache) Get(_ context.Context, conversationID uuid.UUID) ([]uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids, ok := c.pairs[conversationID]
	if ok {
		c.hits++
	}
	return ids, ok
}

func (c *memParticipantCache) Set(_ context.Context, conversationID uuid.UUID, participantIDs []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[conversationID] = participantIDs
}
