package authcore

import (
	"context"
	"errors"

	"github.com/auxgate/authcore/store"
)

// ProvisionOTP generates a fresh shared secret and provisioning URL for
// the user and stores both. Two-factor authentication stays disabled
// until ActivateOTP has verified one code against the new secret;
// re-provisioning resets any earlier verification.
func (e *Engine) ProvisionOTP(ctx context.Context, userID string) (*OTPProvision, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	var provision OTPProvision
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

		secret, err := e.totp.GenerateSecret()
		if err != nil {
			return err
		}

		u.OTPSecret = secret
		u.OTPAuthURL = e.totp.AuthURL(u.Username, secret)
		u.OTPVerified = false
		if err := tx.Users().Save(ctx, u); err != nil {
			return err
		}

		provision = OTPProvision{Secret: secret, AuthURL: u.OTPAuthURL}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricOTPProvisioned)
	return &provision, nil
}

// ActivateOTP enables two-factor authentication after the user proves
// possession of the provisioned secret with one valid code.
func (e *Engine) ActivateOTP(ctx context.Context, userID, code string) error {
	if err := e.ready(); err != nil {
		return err
	}

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
		if u.OTPSecret == "" {
			return ErrOTPNotProvisioned
		}

		ok, err := e.totp.Verify(u.OTPSecret, code, e.now())
		if err != nil || !ok {
			return ErrInvalidOTPCode
		}

		if u.OTPVerified {
			return nil
		}
		u.OTPVerified = true
		return tx.Users().Save(ctx, u)
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricOTPActivated)
	return nil
}

// DisableOTP tears down two-factor authentication. The current password
// gates the operation.
func (e *Engine) DisableOTP(ctx context.Context, userID, passwd string) error {
	if err := e.ready(); err != nil {
		return err
	}

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

		if !e.hasher.Verify(passwd, u.PasswordHash) {
			return ErrInvalidCredentials
		}
		if !u.OTPVerified {
			return ErrTwoFactorNotEnabled
		}

		u.OTPVerified = false
		u.OTPSecret = ""
		u.OTPAuthURL = ""
		return tx.Users().Save(ctx, u)
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricOTPDisabled)
	return nil
}
