package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(Config{Secret: []byte(strings.Repeat("s", 32))})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return c
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	if _, err := NewCodec(Config{Secret: []byte("short")}); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
}

func TestAccessRoundTrip(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	signed, expiresAt, err := c.IssueAccess("jti-1", "user-1", "testusername", true, now)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	if want := now.Add(DefaultAccessTTL); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}

	claims, err := c.Validate(signed)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.JTI() != "jti-1" || claims.UserID != "user-1" || claims.Username != "testusername" || !claims.IsAdmin {
		t.Fatalf("claims did not round-trip: %+v", claims)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	signed, expiresAt, err := c.IssueRefresh("jti-2", "user-2", "other", false, now)
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	if want := now.Add(DefaultRefreshTTL); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}

	claims, err := c.Validate(signed)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if claims.JTI() != "jti-2" || claims.UserID != "user-2" || claims.IsAdmin {
		t.Fatalf("claims did not round-trip: %+v", claims)
	}
}

func TestValidateExpired(t *testing.T) {
	c := testCodec(t)

	signed, _, err := c.IssueAccess("jti-3", "user-3", "stale", false, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if _, err := c.Validate(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestDecodeIgnoresExpiry(t *testing.T) {
	c := testCodec(t)

	signed, _, err := c.IssueRefresh("jti-5", "user-5", "stale", false, time.Now().Add(-2*DefaultRefreshTTL))
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := c.Validate(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired from Validate, got %v", err)
	}

	claims, err := c.Decode(signed)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claims.JTI() != "jti-5" || claims.UserID != "user-5" {
		t.Fatalf("claims did not round-trip: %+v", claims)
	}
}

func TestDecodeStillVerifiesSignature(t *testing.T) {
	c := testCodec(t)
	other, err := NewCodec(Config{Secret: []byte(strings.Repeat("x", 32))})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	signed, _, err := c.IssueRefresh("jti-6", "user-6", "alice", false, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := other.Decode(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := c.Decode("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestValidateWrongKey(t *testing.T) {
	c := testCodec(t)
	other, err := NewCodec(Config{Secret: []byte(strings.Repeat("x", 32))})
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	signed, _, err := c.IssueAccess("jti-4", "user-4", "alice", false, time.Now())
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if _, err := other.Validate(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	c := testCodec(t)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := c.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}

func TestValidateRejectsAlgNone(t *testing.T) {
	c := testCodec(t)

	// {"alg":"none","typ":"JWT"} with an empty signature segment.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJqdGkiOiJ4In0."
	if _, err := c.Validate(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}
