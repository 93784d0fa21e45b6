package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// SecretBytes is the raw entropy drawn for a new shared secret.
	SecretBytes = 21
	// Digits is the code length.
	Digits = 6
	// Period is the length of one time window.
	Period = 30 * time.Second
	// LookBack is how many preceding windows remain acceptable.
	LookBack = 1
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Authority generates shared secrets and verifies time-based codes
// (RFC 6238, SHA-1, 6 digits, 30-second period).
type Authority struct {
	issuer string
}

// New returns an Authority labelling provisioning URLs with issuer.
func New(issuer string) *Authority {
	return &Authority{issuer: issuer}
}

// GenerateSecret draws SecretBytes of random material and returns it
// base32-encoded without padding. Generating a secret does not enable
// two-factor authentication on its own.
func (a *Authority) GenerateSecret() (string, error) {
	raw := make([]byte, SecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return b32.EncodeToString(raw), nil
}

// AuthURL builds the otpauth provisioning URL for the given account.
// Label components are path-escaped; the parameter order is fixed:
// secret first, then issuer.
func (a *Authority) AuthURL(username, secret string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.PathEscape(a.issuer),
		url.PathEscape(username),
		secret,
		url.QueryEscape(a.issuer),
	)
}

// Verify evaluates code against the current window and the immediately
// preceding one. A mismatch returns (false, nil); only a malformed secret
// is an error.
func (a *Authority) Verify(secret, code string, now time.Time) (bool, error) {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != Digits || !isNumeric(trimmed) {
		return false, nil
	}

	key, err := b32.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
	if err != nil {
		return false, errors.New("malformed totp secret")
	}
	if len(key) == 0 {
		return false, errors.New("empty totp secret")
	}

	baseCounter := now.Unix() / int64(Period/time.Second)
	for step := 0; step <= LookBack; step++ {
		counter := baseCounter - int64(step)
		if counter < 0 {
			continue
		}
		generated := hotpCode(key, counter)
		if subtle.ConstantTimeCompare([]byte(generated), []byte(trimmed)) == 1 {
			return true, nil
		}
	}

	return false, nil
}

func hotpCode(key []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < Digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", Digits, bin%mod)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
