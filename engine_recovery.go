package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/auxgate/authcore/internal"
	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/store"
)

// NewRecoveryCode mints an opaque 16-character alphanumeric recovery
// code. Clients may also generate their own; the engine only ever stores
// the code's hash.
func NewRecoveryCode() (string, error) {
	return internal.NewRecoveryCode()
}

// SaveRecoveryCode escrows the user's recovery material: the code's hash,
// the private key encrypted under a key derived from the code, and the
// derivation salt. A previous escrow is replaced. The plaintext code is
// hashed immediately and never persisted or logged.
func (e *Engine) SaveRecoveryCode(ctx context.Context, userID, code string, encryptedKey, salt []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	if code == "" || len(encryptedKey) == 0 || len(salt) == 0 {
		return errors.New("recovery code, encrypted key and salt required")
	}

	hash, err := e.hasher.Hash(code)
	if err != nil {
		return err
	}

	err = e.store.WithTx(ctx, func(tx store.Tx) error {
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

		escrow := &store.Escrow{
			ID:           uuid.NewString(),
			UserID:       u.ID,
			CodeHash:     hash,
			EncryptedKey: append([]byte(nil), encryptedKey...),
			Salt:         append([]byte(nil), salt...),
			CreatedAt:    e.now(),
		}
		return tx.Escrows().Upsert(ctx, escrow)
	})
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricEscrowSaved)
	return nil
}

// Recover consumes the escrow for accounts without two-factor
// authentication: the recovery code is the only proof of identity.
func (e *Engine) Recover(ctx context.Context, username, code string) (*RecoveryResult, error) {
	return e.consumeEscrow(ctx, username, code, func(u *store.User) error {
		return nil
	}, false)
}

// RecoverWithOTP consumes the escrow for two-factor accounts, gated by a
// current one-time code.
func (e *Engine) RecoverWithOTP(ctx context.Context, username, code, otpCode string) (*RecoveryResult, error) {
	return e.consumeEscrow(ctx, username, code, func(u *store.User) error {
		if u.OTPSecret == "" {
			return ErrAuthenticationFailed
		}
		ok, err := e.totp.Verify(u.OTPSecret, otpCode, e.now())
		if err != nil || !ok {
			return ErrAuthenticationFailed
		}
		return nil
	}, false)
}

// RecoverWithPassword consumes the escrow for two-factor accounts, gated
// by the current password. It requires a verified OTP setup and disables
// two-factor authentication as a side effect: the password already proved
// the factor that is independent of the OTP secret.
func (e *Engine) RecoverWithPassword(ctx context.Context, username, code, passwd string) (*RecoveryResult, error) {
	return e.consumeEscrow(ctx, username, code, func(u *store.User) error {
		if !u.OTPVerified {
			return ErrAuthenticationFailed
		}
		if !e.hasher.Verify(passwd, u.PasswordHash) {
			return ErrAuthenticationFailed
		}
		return nil
	}, true)
}

// consumeEscrow is the shared recovery algorithm. Every failing branch
// returns the same ErrAuthenticationFailed so callers cannot tell a bad
// username from a bad code, a missing escrow or a failed gate. Once the
// code verifies, the escrow is deleted unconditionally, every session of
// the user is revoked and the password is marked expired, forcing a reset
// before the next normal login.
func (e *Engine) consumeEscrow(ctx context.Context, username, code string, gate func(u *store.User) error, disableOTP bool) (*RecoveryResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	var (
		result RecoveryResult
		userID string
		outbox notify.Outbox
	)
	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetByUsername(ctx, normalizeUsername(username))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAuthenticationFailed
			}
			return err
		}
		if u.IsDeleted {
			return ErrAuthenticationFailed
		}

		if err := gate(u); err != nil {
			return err
		}

		escrow, err := tx.Escrows().GetForUser(ctx, u.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAuthenticationFailed
			}
			return err
		}

		if !e.hasher.Verify(code, escrow.CodeHash) {
			return ErrAuthenticationFailed
		}

		// Consumption is unconditional from here on.
		if err := tx.Escrows().DeleteForUser(ctx, u.ID); err != nil {
			return err
		}
		if err := e.purgeSessions(ctx, tx, u.ID, &outbox); err != nil {
			return err
		}

		u.PasswordExpired = true
		if disableOTP {
			u.OTPVerified = false
			u.OTPSecret = ""
			u.OTPAuthURL = ""
		}
		if err := tx.Users().Save(ctx, u); err != nil {
			return err
		}

		userID = u.ID
		result = RecoveryResult{
			EncryptedKey: append([]byte(nil), escrow.EncryptedKey...),
			Salt:         append([]byte(nil), escrow.Salt...),
		}
		return nil
	})
	if err != nil {
		e.metrics.Inc(MetricRecoveryFailure)
		return nil, err
	}

	e.flush(&outbox)
	e.metrics.Inc(MetricRecoverySuccess)
	e.registryInvalidate(ctx, userID)
	return &result, nil
}
