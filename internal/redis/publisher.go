package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publisher fans frames out across instances via Redis pub/sub.
// Each user has a dedicated channel; every API instance publishes
// to it and every instance with a live socket for that user delivers.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}
