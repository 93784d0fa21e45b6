package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/store"
)

// Signup creates an account and logs it straight in. The username is
// lower-cased before the uniqueness check; the password must satisfy the
// strength policy.
func (e *Engine) Signup(ctx context.Context, username, passwd string, device Device) (*LoginResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	if err := e.policy.Validate(passwd); err != nil {
		return nil, err
	}

	hash, err := e.hasher.Hash(passwd)
	if err != nil {
		return nil, err
	}

	var (
		result LoginResult
		outbox notify.Outbox
	)
	err = e.store.WithTx(ctx, func(tx store.Tx) error {
		u := &store.User{
			ID:           uuid.NewString(),
			Username:     normalizeUsername(username),
			PasswordHash: hash,
			CreatedAt:    e.now(),
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAccountExists
			}
			return err
		}

		pair, err := e.issueSession(ctx, tx, u, device, "", &outbox)
		if err != nil {
			return err
		}
		result = LoginResult{UserID: u.ID, Username: u.Username, Tokens: pair}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			e.metrics.Inc(MetricSignupDuplicate)
		}
		return nil, err
	}

	e.flush(&outbox)
	e.metrics.Inc(MetricSignupSuccess)
	e.registryPut(ctx, result.UserID, result.Tokens.JTI, enrichDevice(ctx, device), result.Tokens.RefreshExpiresAt)
	return &result, nil
}

// UpdatePassword changes the password of an authenticated user. The
// current password must verify, the new one must satisfy the policy and
// differ from the current one. Every session of the user is revoked.
func (e *Engine) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.policy.Validate(newPassword); err != nil {
		e.metrics.Inc(MetricPasswordChangeFailure)
		return err
	}

	var outbox notify.Outbox
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if u.IsDeleted {
			return ErrUserDeleted
		}

		if !e.hasher.Verify(oldPassword, u.PasswordHash) {
			return ErrInvalidCredentials
		}
		if e.hasher.Verify(newPassword, u.PasswordHash) {
			return ErrPasswordReuse
		}

		hash, err := e.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		u.PasswordExpired = false
		if err := tx.Users().Save(ctx, u); err != nil {
			return err
		}

		return e.purgeSessions(ctx, tx, u.ID, &outbox)
	})
	if err != nil {
		e.metrics.Inc(MetricPasswordChangeFailure)
		return err
	}

	e.flush(&outbox)
	e.metrics.Inc(MetricPasswordChangeSuccess)
	e.registryInvalidate(ctx, userID)
	return nil
}

// SetPassword installs a new password after a recovery. It is only
// permitted while the password is expired: the expiry flag is set solely
// by flows that already proved a recovery factor, and it is the
// authorization for this call. All sessions of the user are revoked.
func (e *Engine) SetPassword(ctx context.Context, username, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.policy.Validate(newPassword); err != nil {
		e.metrics.Inc(MetricPasswordChangeFailure)
		return err
	}

	var (
		userID string
		outbox notify.Outbox
	)
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetByUsername(ctx, normalizeUsername(username))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		if u.IsDeleted {
			return ErrUserDeleted
		}
		if !u.PasswordExpired {
			return ErrPasswordNotExpired
		}

		hash, err := e.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		u.PasswordExpired = false
		if err := tx.Users().Save(ctx, u); err != nil {
			return err
		}

		userID = u.ID
		return e.purgeSessions(ctx, tx, u.ID, &outbox)
	})
	if err != nil {
		e.metrics.Inc(MetricPasswordChangeFailure)
		return err
	}

	e.flush(&outbox)
	e.metrics.Inc(MetricPasswordChangeSuccess)
	e.registryInvalidate(ctx, userID)
	return nil
}
