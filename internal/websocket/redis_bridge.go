package websocket

import (
	"context"
	"strings"

	"pulse-chat/internal/events"
)

// Subscriber is the pub/sub side the bridge listens on.
type Subscriber interface {
	Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error
}

// RedisBridge relays frames published on per-user Redis channels to the
// local hub. Every instance runs one; frames for users without a local
// connection fall through as no-ops.
type RedisBridge struct {
	subscriber Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, []string{events.ChannelPrefixUser + "*"}, func(channel string, payload []byte) {
		userID := strings.TrimPrefix(channel, events.ChannelPrefixUser)
		if userID == "" || userID == channel {
			return
		}
		b.hub.PushToUser(userID, payload)
	})
}
