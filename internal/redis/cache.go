package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const participantKeyPrefix = "conversation:participants:"

// ParticipantCache keeps conversation participant pairs in Redis so
// fan-out does not have to hit Postgres for every event. Direct
// conversation membership is immutable, so a long TTL is safe; the TTL
// only bounds memory, not staleness.
type ParticipantCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewParticipantCache(client *goredis.Client, ttl time.Duration) *ParticipantCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &ParticipantCache{client: client, ttl: ttl}
}

func (c *ParticipantCache) Get(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, bool) {
	data, err := c.client.Get(ctx, participantKeyPrefix+conversationID.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *ParticipantCache) Set(ctx context.Context, conversationID uuid.UUID, participantIDs []uuid.UUID) {
	data, err := json.Marshal(participantIDs)
	if err != nil {
		return
	}
	c.client.Set(ctx, participantKeyPrefix+conversationID.String(), data, c.ttl)
}
