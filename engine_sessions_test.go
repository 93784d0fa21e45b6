package authcore

import (
	"context"
	"errors"
	"testing"

	"github.com/auxgate/authcore/notify"
)

func TestListSessions(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")

	second, err := env.engine.Login(context.Background(), "alice", "password1_", Device{Name: "laptop", IP: "192.0.2.1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	sessions, err := env.engine.ListSessions(context.Background(), signup.UserID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}

	byJTI := map[string]SessionInfo{}
	for _, s := range sessions {
		byJTI[s.JTI] = s
	}
	if s, ok := byJTI[second.Tokens.JTI]; !ok || s.Device.Name != "laptop" || s.Device.IP != "192.0.2.1" {
		t.Errorf("second session = %+v", s)
	}
}

func TestListSessionsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.engine.ListSessions(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ListSessions = %v, want ErrUserNotFound", err)
	}
}

func TestRevokeSession(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")
	env.nextEvent(t) // signup session

	if err := env.engine.RevokeSession(context.Background(), signup.UserID, signup.Tokens.JTI); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}

	ev := env.nextEvent(t)
	if ev.Type != notify.TypeTokenRemoved || ev.TokenID != signup.Tokens.JTI {
		t.Errorf("event = %+v, want token_removed for %s", ev, signup.Tokens.JTI)
	}

	// The consumed session cannot refresh anymore.
	if _, err := env.engine.Refresh(context.Background(), signup.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Refresh = %v, want ErrInvalidRefreshToken", err)
	}

	if err := env.engine.RevokeSession(context.Background(), signup.UserID, signup.Tokens.JTI); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("repeat RevokeSession = %v, want ErrSessionNotFound", err)
	}
}

func TestRevokeSessionOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice", "password1_")
	bob := env.signup(t, "bob", "password1_")

	err := env.engine.RevokeSession(context.Background(), bob.UserID, alice.Tokens.JTI)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("cross-user revoke = %v, want ErrSessionNotFound", err)
	}

	// Alice's session is untouched.
	sessions, err := env.engine.ListSessions(context.Background(), alice.UserID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}
}

func TestRevokeAllSessions(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")
	for i := 0; i < 2; i++ {
		if _, err := env.engine.Login(context.Background(), "alice", "password1_", Device{}); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}

	if err := env.engine.RevokeAllSessions(context.Background(), signup.UserID); err != nil {
		t.Fatalf("RevokeAllSessions: %v", err)
	}

	sessions, err := env.engine.ListSessions(context.Background(), signup.UserID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("sessions after revoke-all = %+v", sessions)
	}

	if _, err := env.engine.Refresh(context.Background(), signup.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Refresh = %v, want ErrInvalidRefreshToken", err)
	}
}
