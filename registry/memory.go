package registry

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const keySeparator = "\x00"

// Memory is an in-process Registry backed by an expiring cache. Entries
// age out with their session expiry.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory returns an in-process registry. cleanupInterval controls how
// often expired entries are swept; zero disables sweeping.
func NewMemory(cleanupInterval time.Duration) *Memory {
	return &Memory{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func memKey(userID, jti string) string {
	return userID + keySeparator + jti
}

// Put implements Registry.
func (m *Memory) Put(_ context.Context, entry Entry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	m.cache.Set(memKey(entry.UserID, entry.JTI), entry, ttl)
	return nil
}

// Remove implements Registry.
func (m *Memory) Remove(_ context.Context, userID, jti string) error {
	m.cache.Delete(memKey(userID, jti))
	return nil
}

// InvalidateUser implements Registry.
func (m *Memory) InvalidateUser(_ context.Context, userID string) error {
	prefix := userID + keySeparator
	for key := range m.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			m.cache.Delete(key)
		}
	}
	return nil
}

// ListUser implements Registry.
func (m *Memory) ListUser(_ context.Context, userID string) ([]Entry, error) {
	prefix := userID + keySeparator
	var out []Entry
	for key, item := range m.cache.Items() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if entry, ok := item.Object.(Entry); ok {
			out = append(out, entry)
		}
	}
	return out, nil
}
