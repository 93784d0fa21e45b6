package registry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxgate/authcore/store"
)

func entry(userID, jti string) Entry {
	return Entry{
		UserID:    userID,
		JTI:       jti,
		Device:    store.Device{Name: "phone", IP: "10.0.0.1"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func testRegistries(t *testing.T) map[string]Registry {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Registry{
		"memory": NewMemory(0),
		"redis":  NewRedis(client, ""),
	}
}

func TestRegistryPutListRemove(t *testing.T) {
	ctx := context.Background()

	for name, reg := range testRegistries(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, reg.Put(ctx, entry("u1", "j1")))
			require.NoError(t, reg.Put(ctx, entry("u1", "j2")))
			require.NoError(t, reg.Put(ctx, entry("u2", "j3")))

			entries, err := reg.ListUser(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, entries, 2)

			require.NoError(t, reg.Remove(ctx, "u1", "j1"))
			entries, err = reg.ListUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "j2", entries[0].JTI)
			assert.Equal(t, "phone", entries[0].Device.Name)
		})
	}
}

func TestRegistryInvalidateUser(t *testing.T) {
	ctx := context.Background()

	for name, reg := range testRegistries(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, reg.Put(ctx, entry("u1", "j1")))
			require.NoError(t, reg.Put(ctx, entry("u1", "j2")))
			require.NoError(t, reg.Put(ctx, entry("u2", "j3")))

			require.NoError(t, reg.InvalidateUser(ctx, "u1"))

			entries, err := reg.ListUser(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, entries)

			entries, err = reg.ListUser(ctx, "u2")
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestRegistrySkipsExpiredEntries(t *testing.T) {
	ctx := context.Background()

	for name, reg := range testRegistries(t) {
		t.Run(name, func(t *testing.T) {
			expired := entry("u1", "j1")
			expired.ExpiresAt = time.Now().Add(-time.Minute)

			require.NoError(t, reg.Put(ctx, expired))

			entries, err := reg.ListUser(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}
