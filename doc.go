// Package authcore is an embeddable credential and session lifecycle
// engine. It governs how a user's identity is proven, how two-factor
// secrets and recovery material are escrowed, and how short-lived session
// tokens are issued, rotated and revoked.
//
// The Engine composes five capabilities: the password hasher and strength
// policy (package password), the time-based one-time code authority
// (package totp), the signed token codec (package token), the
// transactional backing store (package store, with a PostgreSQL adapter in
// store/pg) and the revocation notifier (package notify). An optional
// device registry (package registry) mirrors live sessions for device-list
// features.
//
// Engines are constructed through the Builder:
//
//	engine, err := authcore.New().
//		WithStore(store.NewMemory()).
//		WithTokenSecret(secret).
//		WithIssuer("habitapp").
//		Build()
//
// Every flow runs inside one store transaction; revocation events are
// collected in an outbox and dispatched only after the transaction has
// committed.
package authcore
