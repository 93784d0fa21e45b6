// Package registry provides the device/session registry consulted by
// device-list features. It is an injected key-value capability maintained
// best-effort by the engine: entries are inserted on session creation,
// removed on logout or rotation, and invalidated wholesale on mass
// revocation. The session store stays the source of truth.
package registry

import (
	"context"
	"time"

	"github.com/auxgate/authcore/store"
)

// Entry describes one live session of a user.
type Entry struct {
	UserID    string       `json:"user_id"`
	JTI       string       `json:"jti"`
	Device    store.Device `json:"device"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Registry is the key-value capability contract.
type Registry interface {
	Put(ctx context.Context, entry Entry) error
	Remove(ctx context.Context, userID, jti string) error
	// InvalidateUser drops every entry of the user.
	InvalidateUser(ctx context.Context, userID string) error
	ListUser(ctx context.Context, userID string) ([]Entry, error)
}
