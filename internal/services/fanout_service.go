package services

import (
	"context"
	"encoding/json"
	"time"

	"pulse-chat/internal/domain"
	"pulse-chat/internal/domain/conversation"
	"pulse-chat/internal/domain/message"
	"pulse-chat/internal/events"
	"pulse-chat/internal/repository"
	"pulse-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// LivePusher delivers a frame to every live connection of a user. Implemented
// by the websocket hub. Pushes must not block the caller.
type LivePusher interface {
	PushToUser(userID string, payload []byte)
}

// ChannelPublisher forwards a frame to a pub/sub channel so connections held
// by other instances receive it. Implemented by the redis publisher.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ParticipantCache caches the participant pair of a conversation. Safe to
// cache indefinitely: a direct conversation's membership never changes.
type ParticipantCache interface {
	Get(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, bool)
	Set(ctx context.Context, conversationID uuid.UUID, participantIDs []uuid.UUID)
}

// FanoutService turns domain events into live pushes for every participant.
// It is one consumer among potentially many on the dispatcher and ignores
// events outside the chat set. Delivery is best-effort and at-most-once per
// connection; a participant with no live connection reconciles on the next
// paginated read.
type FanoutService struct {
	conversations repository.ConversationRepository
	pusher        LivePusher
	publisher     ChannelPublisher
	cache         ParticipantCache
	queue         chan domain.Event
	timeout       time.Duration
	log           *logger.Logger
}

const fanoutQueueSize = 1024

func NewFanoutService(
	conversations repository.ConversationRepository,
	pusher LivePusher,
	publisher ChannelPublisher,
	cache ParticipantCache,
	log *logger.Logger,
) *FanoutService {
	return &FanoutService{
		conversations: conversations,
		pusher:        pusher,
		publisher:     publisher,
		cache:         cache,
		queue:         make(chan domain.Event, fanoutQueueSize),
		timeout:       5 * time.Second,
		log:           log,
	}
}

// Handle satisfies events.Consumer. Events are queued for the Run worker so
// frames leave in the order the commands persisted them; the enqueue never
// blocks the command path. A full queue drops the event, keeping delivery
// best-effort at-most-once.
func (s *FanoutService) Handle(_ context.Context, evt domain.Event) {
	select {
	case s.queue <- evt:
	default:
		s.log.Warnf("fanout: queue full, dropping %s event", evt.EventType())
	}
}

// Run drains the queue one event at a time. A single worker is what keeps
// pushes in persist order. Each event gets a detached context so the
// triggering command neither blocks on delivery nor cancels it by returning.
// Blocks until ctx is cancelled.
func (s *FanoutService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.queue:
			evtCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
			s.process(evtCtx, evt)
			cancel()
		}
	}
}

func (s *FanoutService) process(ctx context.Context, evt domain.Event) {
	var (
		env        events.Envelope
		recipients []uuid.UUID
		err        error
	)

	switch e := evt.(type) {
	case conversation.Created:
		// The creation event carries its participants; no lookup needed.
		recipients = e.ParticipantIDs
		env, err = events.NewEnvelope(events.TypeConversationCreated, e.CreatedAt, events.ConversationCreatedPayload{
			ConversationID: e.ConversationID,
			CreatedBy:      e.CreatedBy,
			ParticipantIDs: e.ParticipantIDs,
			CreatedAt:      e.CreatedAt,
		})
		s.remember(ctx, e.ConversationID, e.ParticipantIDs)
	case conversation.Read:
		recipients, err = s.resolve(ctx, e.ConversationID)
		if err == nil {
			env, err = events.NewEnvelope(events.TypeConversationRead, e.LastReadAt, events.ConversationReadPayload{
				ConversationID: e.ConversationID,
				UserID:         e.UserID,
				LastReadAt:     e.LastReadAt,
			})
		}
	case message.Sent:
		recipients, err = s.resolve(ctx, e.ConversationID)
		if err == nil {
			env, err = events.NewEnvelope(events.TypeMessageNew, e.SentAt, events.MessageNewPayload{
				MessageID:      e.MessageID,
				ConversationID: e.ConversationID,
				SenderID:       e.SenderID,
				Content:        e.Content,
				HasAttachments: e.HasAttachments,
				SentAt:         e.SentAt,
			})
		}
	case message.Edited:
		recipients, err = s.resolve(ctx, e.ConversationID)
		if err == nil {
			env, err = events.NewEnvelope(events.TypeMessageUpdated, e.EditedAt, events.MessageUpdatedPayload{
				MessageID:      e.MessageID,
				ConversationID: e.ConversationID,
				Content:        e.Content,
				EditedAt:       e.EditedAt,
			})
		}
	case message.Deleted:
		recipients, err = s.resolve(ctx, e.ConversationID)
		if err == nil {
			env, err = events.NewEnvelope(events.TypeMessageDeleted, e.DeletedAt, events.MessageDeletedPayload{
				MessageID:      e.MessageID,
				ConversationID: e.ConversationID,
				DeletedAt:      e.DeletedAt,
			})
		}
	case message.ReactionAdded:
		recipients, err = s.resolve(ctx, e.ConversationID)
		if err == nil {
			env, err = events.NewEnvelope(events.TypeReactionAdded, time.Now().UTC(), events.ReactionPayload{
				MessageID:      e.MessageID,
				ConversationID: e.ConversationID,
				UserID:         e.UserID,
				Emoji:          e.Emoji,
			})
		}
	case message.ReactionRemoved:
		recipients, err = s.resolve(ctx, e.ConversationID)
		if err == nil {
			env, err = events.NewEnvelope(events.TypeReactionRemoved, time.Now().UTC(), events.ReactionPayload{
				MessageID:      e.MessageID,
				ConversationID: e.ConversationID,
				UserID:         e.UserID,
				Emoji:          e.Emoji,
			})
		}
	default:
		// Not a chat event; some other consumer may want it.
		return
	}
	if err != nil {
		s.log.Errorf("fanout: dropping %s event: %s", evt.EventType(), err)
		return
	}

	frame, err := json.Marshal(env)
	if err != nil {
		s.log.Errorf("fanout: marshal %s event: %s", evt.EventType(), err)
		return
	}
	for _, userID := range lo.Uniq(recipients) {
		s.deliver(ctx, userID.String(), frame)
	}
}

// deliver routes a frame to one participant. With a publisher configured the
// frame travels through pub/sub exactly once and the bridge feeds every
// instance's hub, including ours; otherwise the local hub is pushed directly.
func (s *FanoutService) deliver(ctx context.Context, userID string, frame []byte) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.UserChannel(userID), frame); err != nil {
			s.log.Errorf("fanout: publish to %s failed: %s", userID, err)
		}
		return
	}
	s.pusher.PushToUser(userID, frame)
}

// resolve maps a conversation to its current participant pair. Message and
// reaction events do not carry the participant list, so the conversation is
// re-loaded (or served from cache) at fan-out time.
func (s *FanoutService) resolve(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	if s.cache != nil {
		if ids, ok := s.cache.Get(ctx, conversationID); ok {
			return ids, nil
		}
	}
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	ids := conv.ParticipantIDs()
	s.remember(ctx, conversationID, ids)
	return ids, nil
}

func (s *FanoutService) remember(ctx context.Context, conversationID uuid.UUID, ids []uuid.UUID) {
	if s.cache != nil {
		s.cache.Set(ctx, conversationID, ids)
	}
}
