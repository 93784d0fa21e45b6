package authcore

import (
	"time"

	"github.com/auxgate/authcore/store"
)

// Device is opaque client metadata attached to new sessions.
type Device = store.Device

// TokenPair is a freshly issued access/refresh token pair. The refresh
// token's jti is mirrored in the persisted session row.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	JTI              string
}

// LoginResult is the outcome of a successful first login step. When
// OTPRequired is set no tokens are issued; the caller must complete the
// challenge via VerifyLoginOTP using the carried public identifiers.
type LoginResult struct {
	OTPRequired bool
	UserID      string
	Username    string
	Tokens      *TokenPair
}

// OTPProvision is the secret material handed to the client when OTP is
// generated. Two-factor authentication stays disabled until one code has
// been verified.
type OTPProvision struct {
	Secret  string
	AuthURL string
}

// RecoveryResult carries the escrowed key material of a consumed recovery
// escrow. The client re-derives the decryption key from the recovery code
// and the salt.
type RecoveryResult struct {
	EncryptedKey []byte
	Salt         []byte
}

// SessionInfo is the public view of a live session row.
type SessionInfo struct {
	JTI       string
	Device    Device
	PushToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}
