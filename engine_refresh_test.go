package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auxgate/authcore/notify"
	"github.com/auxgate/authcore/password"
	"github.com/auxgate/authcore/store"
)

func TestRefreshRotatesSession(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")
	old := signup.Tokens

	pair, err := env.engine.Refresh(context.Background(), old.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.JTI == old.JTI {
		t.Fatal("rotation reused the jti")
	}
	if pair.RefreshToken == old.RefreshToken {
		t.Fatal("rotation reused the refresh token")
	}

	sessions, err := env.engine.ListSessions(context.Background(), signup.UserID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].JTI != pair.JTI {
		t.Fatalf("sessions = %+v, want only %s", sessions, pair.JTI)
	}

	// The new pair is usable.
	if _, err := env.engine.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("Refresh of rotated pair: %v", err)
	}
}

func TestRefreshReplayFails(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")
	old := signup.Tokens

	if _, err := env.engine.Refresh(context.Background(), old.RefreshToken); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	_, err := env.engine.Refresh(context.Background(), old.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replay = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRefreshExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")
	env.nextEvent(t) // signup session

	env.clock.Advance(169 * time.Hour)

	_, err := env.engine.Refresh(context.Background(), signup.Tokens.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("Refresh = %v, want ErrRefreshTokenExpired", err)
	}

	// The cleanup committed even though the call failed.
	sessions, err := env.engine.ListSessions(context.Background(), signup.UserID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expired session row survived: %+v", sessions)
	}

	ev := env.nextEvent(t)
	if ev.Type != notify.TypeTokenRemoved || ev.TokenID != signup.Tokens.JTI {
		t.Errorf("event = %+v, want token_removed for %s", ev, signup.Tokens.JTI)
	}

	_, err = env.engine.Refresh(context.Background(), signup.Tokens.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("second attempt = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRefreshExpiredSessionWallClock(t *testing.T) {
	// No injected clock: the engine runs on wall time, so this covers the
	// path production actually takes when a refresh token outlives its
	// session row.
	sink := notify.NewChannelSink(16)

	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Token.RefreshTTL = time.Millisecond
	cfg.Password = password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}

	engine, err := New().
		WithConfig(cfg).
		WithStore(store.NewMemory()).
		WithEventSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	signup, err := engine.Signup(context.Background(), "alice", "password1_", Device{})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	waitEvent := func() notify.Event {
		select {
		case ev := <-sink.Events():
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
			return notify.Event{}
		}
	}
	waitEvent() // signup session

	time.Sleep(50 * time.Millisecond)

	_, err = engine.Refresh(context.Background(), signup.Tokens.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("Refresh = %v, want ErrRefreshTokenExpired", err)
	}

	sessions, err := engine.ListSessions(context.Background(), signup.UserID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expired session row survived: %+v", sessions)
	}

	ev := waitEvent()
	if ev.Type != notify.TypeTokenRemoved || ev.TokenID != signup.Tokens.JTI {
		t.Errorf("event = %+v, want token_removed for %s", ev, signup.Tokens.JTI)
	}
}

func TestRefreshGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Refresh(context.Background(), "garbage")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Refresh = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRefreshDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")

	u := env.user(t, signup.UserID)
	u.IsDeleted = true
	env.saveUser(t, u)

	_, err := env.engine.Refresh(context.Background(), signup.Tokens.RefreshToken)
	if !errors.Is(err, ErrUserDeleted) {
		t.Fatalf("Refresh = %v, want ErrUserDeleted", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	env := newTestEnv(t)
	signup := env.signup(t, "alice", "password1_")

	if err := env.engine.Logout(context.Background(), signup.Tokens.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	sessions, err := env.engine.ListSessions(context.Background(), signup.UserID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("sessions after logout = %+v", sessions)
	}

	// Second logout of the same session is a no-op.
	if err := env.engine.Logout(context.Background(), signup.Tokens.RefreshToken); err != nil {
		t.Fatalf("repeat Logout: %v", err)
	}
}

func TestLogoutGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	if err := env.engine.Logout(context.Background(), "garbage"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Logout = %v, want ErrInvalidRefreshToken", err)
	}
}
