package authcore

import (
	"context"
	"errors"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/store"
)

// Refresh exchanges a valid refresh token for a fresh pair under a new
// jti. The presented token's session row is consumed before the new pair
// becomes usable, so a rotated token can never be redeemed twice: a replay
// finds no row and fails with ErrInvalidRefreshToken. An expired row is
// deleted, its removal event published, and the flow fails with
// ErrRefreshTokenExpired; the deletion commits even though the call fails.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	// Decode, not Validate: the session row owns expiry. An expired
	// token must still resolve to its row so the cleanup below runs.
	claims, err := e.codec.Decode(refreshToken)
	if err != nil {
		e.metrics.Inc(MetricRefreshFailure)
		return nil, ErrInvalidRefreshToken
	}

	var (
		pair    *TokenPair
		oldUser string
		device  Device
		expired bool
		outbox  notify.Outbox
	)
	err = e.store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.Sessions().GetByJTI(ctx, claims.JTI())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		oldUser = row.UserID
		device = row.Device

		now := e.now()
		if now.After(row.ExpiresAt) {
			if err := tx.Sessions().DeleteByJTI(ctx, row.JTI); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			outbox.TokenRemoved(row.JTI, row.UserID, now)
			// Commit the cleanup; the flow still fails below.
			expired = true
			return nil
		}

		if err := tx.Sessions().DeleteByJTI(ctx, row.JTI); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Lost a concurrent consume race; same as absent.
				return ErrInvalidRefreshToken
			}
			return err
		}
		outbox.TokenRemoved(row.JTI, row.UserID, now)

		u, err := tx.Users().GetByID(ctx, row.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if u.IsDeleted {
			return ErrUserDeleted
		}

		pair, err = e.issueSession(ctx, tx, u, row.Device, row.PushToken, &outbox)
		return err
	})
	if err != nil {
		e.metrics.Inc(MetricRefreshFailure)
		return nil, err
	}

	e.flush(&outbox)
	e.registryRemove(ctx, oldUser, claims.JTI())

	if expired {
		e.metrics.Inc(MetricRefreshExpired)
		return nil, ErrRefreshTokenExpired
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.registryPut(ctx, oldUser, pair.JTI, device, pair.RefreshExpiresAt)
	return pair, nil
}

// Logout consumes the session named by the refresh token's jti. Logging
// out an already-consumed session is a no-op.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if err := e.ready(); err != nil {
		return err
	}

	claims, err := e.codec.Decode(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}

	var (
		userID string
		outbox notify.Outbox
	)
	err = e.store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.Sessions().GetByJTI(ctx, claims.JTI())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		userID = row.UserID

		if err := tx.Sessions().DeleteByJTI(ctx, row.JTI); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		outbox.TokenRemoved(row.JTI, row.UserID, e.now())
		return nil
	})
	if err != nil {
		return err
	}

	e.flush(&outbox)
	if userID != "" {
		e.metrics.Inc(MetricLogout)
		e.registryRemove(ctx, userID, claims.JTI())
	}
	return nil
}
