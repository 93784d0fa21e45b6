// Package notify implements the revocation notifier: best-effort,
// non-blocking fan-out of session token lifecycle events to external
// subscribers. Events are collected in an Outbox alongside the store
// transaction and handed to the Dispatcher only after the transaction has
// committed, so subscribers never observe a mutation that was rolled back.
package notify

import "time"

// Type identifies a token lifecycle event.
type Type string

const (
	// TypeTokenUpdated is published when a session token is created or
	// rotated.
	TypeTokenUpdated Type = "token_updated"
	// TypeTokenRemoved is published when a session token is revoked or
	// found expired.
	TypeTokenRemoved Type = "token_removed"
)

// Event is a token lifecycle notification. Token carries the jti, never
// the signed token string.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Token     string    `json:"token,omitempty"`
	User      string    `json:"user,omitempty"`
	TokenID   string    `json:"token_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
}

// Outbox accumulates events produced while a transaction is open. The
// owner drains it into the Dispatcher after the commit is confirmed; a
// rolled-back transaction simply discards the outbox.
type Outbox struct {
	events []Event
}

// TokenUpdated records a creation or rotation event.
func (o *Outbox) TokenUpdated(jti, userID string, at time.Time) {
	o.events = append(o.events, Event{
		Type:      TypeTokenUpdated,
		Timestamp: at,
		Token:     jti,
		User:      userID,
	})
}

// TokenRemoved records a revocation event.
func (o *Outbox) TokenRemoved(jti, userID string, at time.Time) {
	o.events = append(o.events, Event{
		Type:      TypeTokenRemoved,
		Timestamp: at,
		TokenID:   jti,
		UserID:    userID,
	})
}

// Events returns the recorded events in order.
func (o *Outbox) Events() []Event {
	return o.events
}
