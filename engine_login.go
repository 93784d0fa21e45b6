package authcore

import (
	"context"
	"errors"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/store"
)

// Login verifies a username/password pair and either issues a token pair
// or, for accounts with verified two-factor authentication, returns an OTP
// challenge carrying only public identifiers. The state checks run in a
// fixed order: existence, soft-delete, password, password expiry, OTP.
// An expired password blocks login even for two-factor accounts.
func (e *Engine) Login(ctx context.Context, username, passwd string, device Device) (*LoginResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	var (
		result LoginResult
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
		if u.DeletedAt != nil {
			// A scheduled-then-cancelled deletion leaves a stale marker.
			u.DeletedAt = nil
			if err := tx.Users().Save(ctx, u); err != nil {
				return err
			}
		}

		if !e.hasher.Verify(passwd, u.PasswordHash) {
			return ErrInvalidCredentials
		}

		if u.PasswordExpired {
			return ErrPasswordMustBeChanged
		}

		if u.OTPVerified {
			result = LoginResult{OTPRequired: true, UserID: u.ID, Username: u.Username}
			return nil
		}

		pair, err := e.issueSession(ctx, tx, u, device, "", &outbox)
		if err != nil {
			return err
		}
		result = LoginResult{UserID: u.ID, Username: u.Username, Tokens: pair}
		return nil
	})
	if err != nil {
		e.metrics.Inc(MetricLoginFailure)
		return nil, err
	}

	e.flush(&outbox)

	if result.OTPRequired {
		e.metrics.Inc(MetricLoginOTPRequired)
		return &result, nil
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.registryPut(ctx, result.UserID, result.Tokens.JTI, enrichDevice(ctx, device), result.Tokens.RefreshExpiresAt)
	return &result, nil
}

// VerifyLoginOTP completes an OTP challenge returned by Login: it re-runs
// the account state gates, verifies the one-time code and issues the token
// pair the first login step withheld.
func (e *Engine) VerifyLoginOTP(ctx context.Context, username, code string, device Device) (*TokenPair, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	var (
		pair   *TokenPair
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
		if u.PasswordExpired {
			return ErrPasswordMustBeChanged
		}
		if !u.OTPVerified || u.OTPSecret == "" {
			return ErrTwoFactorNotEnabled
		}

		ok, err := e.totp.Verify(u.OTPSecret, code, e.now())
		if err != nil || !ok {
			return ErrInvalidOTPCode
		}

		pair, err = e.issueSession(ctx, tx, u, device, "", &outbox)
		if err != nil {
			return err
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		e.metrics.Inc(MetricLoginOTPFailure)
		return nil, err
	}

	e.flush(&outbox)
	e.metrics.Inc(MetricLoginOTPSuccess)
	e.registryPut(ctx, userID, pair.JTI, enrichDevice(ctx, device), pair.RefreshExpiresAt)
	return pair, nil
}
