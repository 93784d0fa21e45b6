package authcore

import (
	"errors"

	"github.com/auxgate/authcore/token"
)

var (
	// ErrAuthenticationFailed is the uniform recovery-flow failure. Every
	// branch that must be indistinguishable to callers returns it: bad
	// username, bad code, missing escrow, failed gate.
	ErrAuthenticationFailed = errors.New("invalid username or recovery code")
	// ErrInvalidCredentials covers unknown usernames and password
	// mismatches during login without distinguishing them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDeleted is returned when the account is soft-deleted.
	ErrUserDeleted = errors.New("user has been deleted")
	// ErrUserNotFound is returned by id-keyed operations for unknown
	// users. Username-keyed flows return the generic errors instead.
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordMustBeChanged blocks login while the password is expired.
	ErrPasswordMustBeChanged = errors.New("password must be changed")
	// ErrPasswordNotExpired rejects a password set outside the
	// post-recovery window.
	ErrPasswordNotExpired = errors.New("password is not expired")
	// ErrPasswordReuse rejects changing a password to itself.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrTwoFactorNotEnabled is returned when a flow requires a verified
	// OTP setup the account does not have.
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication not enabled")
	// ErrOTPNotProvisioned is returned when no OTP secret has been
	// generated for the account.
	ErrOTPNotProvisioned = errors.New("otp secret not provisioned")
	// ErrInvalidOTPCode is returned when a one-time code fails to verify.
	ErrInvalidOTPCode = errors.New("invalid otp code")
	// ErrInvalidRefreshToken covers bad signatures and already-consumed
	// refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrRefreshTokenExpired names the expired artifact so clients know to
	// re-authenticate rather than retry the refresh.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrAccountExists is returned on signup with a taken username.
	ErrAccountExists = errors.New("account already exists")
	// ErrSessionNotFound is returned when revoking a session that does not
	// exist or belongs to another user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEngineNotReady is returned by methods on a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrInvalidToken is returned by Validate for malformed or badly signed
// tokens.
var ErrInvalidToken = token.ErrInvalidToken

// ErrTokenExpired is returned by Validate for correctly signed but expired
// access tokens.
var ErrTokenExpired = token.ErrTokenExpired
