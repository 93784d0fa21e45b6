package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces registry keys.
const DefaultRedisPrefix = "authcore:devices:"

// Redis is a Registry backed by one Redis hash per user, keyed by jti.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis returns a Redis-backed registry.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(userID string) string {
	return r.prefix + userID
}

// Put implements Registry.
func (r *Redis) Put(ctx context.Context, entry Entry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := r.key(entry.UserID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, entry.JTI, payload)
	// The hash lives as long as the longest-lived session in it.
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Remove implements Registry.
func (r *Redis) Remove(ctx context.Context, userID, jti string) error {
	return r.client.HDel(ctx, r.key(userID), jti).Err()
}

// InvalidateUser implements Registry.
func (r *Redis) InvalidateUser(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}

// ListUser implements Registry. Entries whose session already expired are
// filtered out; the hash TTL reaps them eventually.
func (r *Redis) ListUser(ctx context.Context, userID string) ([]Entry, error) {
	raw, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var out []Entry
	for _, payload := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			continue
		}
		if entry.ExpiresAt.After(now) {
			out = append(out, entry)
		}
	}
	return out, nil
}
