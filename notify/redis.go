package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "authcore.token_events"

// RedisPublisher publishes events to a Redis pub/sub channel, the external
// bus consumed by collaborators such as a notification gateway.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher returns a Sink publishing JSON events on channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish implements Sink.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}
