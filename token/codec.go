package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers bad signatures, malformed payloads and
	// unexpected signing algorithms.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the token is well-formed and
	// correctly signed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

const (
	// DefaultAccessTTL is the access token lifetime.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the refresh token lifetime.
	DefaultRefreshTTL = 7 * 24 * time.Hour

	minSecretBytes = 32
)

// Claims is the signed payload carried by both access and refresh tokens.
// The jti lives in RegisteredClaims.ID and the expiry in ExpiresAt, so the
// wire payload is exactly {exp, jti, user_id, is_admin, username}.
type Claims struct {
	UserID   string `json:"user_id"`
	IsAdmin  bool   `json:"is_admin"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JTI returns the session identifier embedded in the token.
func (c *Claims) JTI() string {
	return c.ID
}

// Config holds the signing secret and token lifetimes.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec issues and validates HS256-signed session tokens.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec validates the config and returns a ready Codec. Zero TTLs fall
// back to the defaults.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Codec{
		secret:     secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a short-lived access token. Access tokens are never
// persisted.
func (c *Codec) IssueAccess(jti, userID, username string, isAdmin bool, now time.Time) (string, time.Time, error) {
	return c.issue(jti, userID, username, isAdmin, now, c.accessTTL)
}

// IssueRefresh signs a refresh token. The caller persists the matching
// session row keyed by jti with the returned expiry.
func (c *Codec) IssueRefresh(jti, userID, username string, isAdmin bool, now time.Time) (string, time.Time, error) {
	return c.issue(jti, userID, username, isAdmin, now, c.refreshTTL)
}

func (c *Codec) issue(jti, userID, username string, isAdmin bool, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID:   userID,
		IsAdmin:  isAdmin,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Validate verifies the signature and temporal claims of a token and
// returns its payload. Expired tokens fail with ErrTokenExpired; any other
// defect fails with ErrInvalidToken.
func (c *Codec) Validate(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Decode verifies the signature of a token and returns its payload without
// validating temporal claims. Refresh flows decode, not validate: the
// persisted session row is the single authority on whether the session is
// still alive, and an expired artifact must still be identifiable so its
// row can be cleaned up.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
