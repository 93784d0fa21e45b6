package authcore

import (
	"context"
	"errors"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/store"
)

// ListSessions returns the user's live session rows, the backing data of
// any device-list surface.
func (e *Engine) ListSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	var out []SessionInfo
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		sessions, err := tx.Sessions().ListForUser(ctx, userID)
		if err != nil {
			return err
		}

		out = make([]SessionInfo, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, SessionInfo{
				JTI:       s.JTI,
				Device:    s.Device,
				PushToken: s.PushToken,
				CreatedAt: s.CreatedAt,
				ExpiresAt: s.ExpiresAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RevokeSession deletes one session of the user by jti, the explicit
// device-revocation path. Revoking a session of another user fails with
// ErrSessionNotFound.
func (e *Engine) RevokeSession(ctx context.Context, userID, jti string) error {
	if err := e.ready(); err != nil {
		return err
	}

	var outbox notify.Outbox
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.Sessions().GetByJTI(ctx, jti)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if row.UserID != userID {
			return ErrSessionNotFound
		}

		if err := tx.Sessions().DeleteByJTI(ctx, jti); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		outbox.TokenRemoved(jti, userID, e.now())
		return nil
	})
	if err != nil {
		return err
	}

	e.flush(&outbox)
	e.metrics.Inc(MetricSessionRevoked)
	e.registryRemove(ctx, userID, jti)
	return nil
}

// RevokeAllSessions deletes every session of the user, the logout-all
// path.
func (e *Engine) RevokeAllSessions(ctx context.Context, userID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	var outbox notify.Outbox
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		return e.purgeSessions(ctx, tx, userID, &outbox)
	})
	if err != nil {
		return err
	}

	e.flush(&outbox)
	e.registryInvalidate(ctx, userID)
	return nil
}
