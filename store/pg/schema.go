package pg

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                  TEXT PRIMARY KEY,
	username            TEXT NOT NULL UNIQUE,
	password_hash       TEXT NOT NULL,
	password_is_expired BOOLEAN NOT NULL DEFAULT FALSE,
	otp_secret          TEXT NOT NULL DEFAULT '',
	otp_auth_url        TEXT NOT NULL DEFAULT '',
	otp_verified        BOOLEAN NOT NULL DEFAULT FALSE,
	is_admin            BOOLEAN NOT NULL DEFAULT FALSE,
	is_deleted          BOOLEAN NOT NULL DEFAULT FALSE,
	deleted_at          TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sessions (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL REFERENCES users(id),
	jti               TEXT NOT NULL UNIQUE,
	expires_at        TIMESTAMPTZ NOT NULL,
	device_name       TEXT NOT NULL DEFAULT '',
	device_ip         TEXT NOT NULL DEFAULT '',
	device_user_agent TEXT NOT NULL DEFAULT '',
	push_token        TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions(user_id);

CREATE TABLE IF NOT EXISTS recovery_escrows (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL UNIQUE REFERENCES users(id),
	code_hash     TEXT NOT NULL,
	encrypted_key BYTEA NOT NULL,
	salt          BYTEA NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables this store needs if they do not exist.
// Intended for examples and tests; production deployments manage the
// schema through their own migration tooling.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
