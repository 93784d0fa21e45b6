package authcore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/password"
	"github.com/auxgate/authcore/registry"
	"github.com/auxgate/authcore/store"
	"github.com/auxgate/authcore/token"
	"github.com/auxgate/authcore/totp"
)

// Engine orchestrates the credential and session lifecycle flows. Build
// one through the Builder; the zero value is not usable.
type Engine struct {
	config   Config
	store    store.Store
	codec    *token.Codec
	hasher   *password.Hasher
	policy   password.Policy
	totp     *totp.Authority
	notifier *notify.Dispatcher
	registry registry.Registry
	metrics  *Metrics
	log      *zap.Logger
	now      func() time.Time
}

// Close drains the revocation notifier. The store and any injected
// registry stay owned by the caller.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.notifier.Close()
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

// MetricsSnapshot copies the current counters, for exporters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.Metrics().Snapshot()
}

// NotifierDropped reports how many revocation events were discarded due to
// dispatcher backpressure.
func (e *Engine) NotifierDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.notifier.Dropped()
}

// Validate verifies an access token's signature and temporal claims and
// returns its payload. It is time-boxed only: no store round-trip, no
// revocation check.
func (e *Engine) Validate(tokenStr string) (*token.Claims, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	// Wall time on both ends: the injected clock drives token lifetimes,
	// not latency measurement.
	start := time.Now()
	claims, err := e.codec.Validate(tokenStr)
	e.metrics.Observe(MetricValidateLatency, time.Since(start))
	return claims, err
}

func (e *Engine) ready() error {
	if e == nil || e.store == nil || e.codec == nil {
		return ErrEngineNotReady
	}
	return nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// issueSession mints a new jti, signs an access/refresh pair, persists the
// session row and records the creation event in the outbox.
func (e *Engine) issueSession(ctx context.Context, tx store.Tx, u *store.User, device Device, pushToken string, outbox *notify.Outbox) (*TokenPair, error) {
	now := e.now()
	jti := uuid.NewString()

	access, accessExp, err := e.codec.IssueAccess(jti, u.ID, u.Username, u.IsAdmin, now)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := e.codec.IssueRefresh(jti, u.ID, u.Username, u.IsAdmin, now)
	if err != nil {
		return nil, err
	}

	session := &store.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		JTI:       jti,
		ExpiresAt: refreshExp,
		Device:    enrichDevice(ctx, device),
		PushToken: pushToken,
		CreatedAt: now,
	}
	if err := tx.Sessions().Create(ctx, session); err != nil {
		return nil, err
	}

	outbox.TokenUpdated(jti, u.ID, now)
	e.metrics.Inc(MetricSessionCreated)

	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		JTI:              jti,
	}, nil
}

// purgeSessions removes every session of the user and records one removal
// event per consumed row.
func (e *Engine) purgeSessions(ctx context.Context, tx store.Tx, userID string, outbox *notify.Outbox) error {
	removed, err := tx.Sessions().DeleteAllForUser(ctx, userID)
	if err != nil {
		return err
	}
	now := e.now()
	for _, s := range removed {
		outbox.TokenRemoved(s.JTI, s.UserID, now)
	}
	if len(removed) > 0 {
		e.metrics.Inc(MetricSessionsPurged)
	}
	return nil
}

// flush hands committed outbox events to the notifier. Runs only after
// WithTx has returned success.
func (e *Engine) flush(outbox *notify.Outbox) {
	for _, event := range outbox.Events() {
		e.notifier.Emit(context.Background(), event)
	}
}

func (e *Engine) registryPut(ctx context.Context, userID, jti string, device Device, expiresAt time.Time) {
	if e.registry == nil {
		return
	}
	entry := registry.Entry{
		UserID:    userID,
		JTI:       jti,
		Device:    device,
		ExpiresAt: expiresAt,
	}
	if err := e.registry.Put(ctx, entry); err != nil {
		e.log.Warn("device registry put failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (e *Engine) registryRemove(ctx context.Context, userID, jti string) {
	if e.registry == nil {
		return
	}
	if err := e.registry.Remove(ctx, userID, jti); err != nil {
		e.log.Warn("device registry remove failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (e *Engine) registryInvalidate(ctx context.Context, userID string) {
	if e.registry == nil {
		return
	}
	if err := e.registry.InvalidateUser(ctx, userID); err != nil {
		e.log.Warn("device registry invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
