package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/auxgate/authcore/store"
)

type sessionRepo struct {
	tx pgx.Tx
}

const sessionColumns = `id, user_id, jti, expires_at,
	device_name, device_ip, device_user_agent, push_token, created_at`

func (r *sessionRepo) Create(ctx context.Context, s *store.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, jti, expires_at,
			device_name, device_ip, device_user_agent, push_token, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.tx.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.JTI,
		s.ExpiresAt,
		s.Device.Name,
		s.Device.IP,
		s.Device.UserAgent,
		s.PushToken,
		s.CreatedAt,
	)
	if err != nil {
		return mapError("create session", err)
	}
	return nil
}

func (r *sessionRepo) GetByJTI(ctx context.Context, jti string) (*store.Session, error) {
	var s store.Session
	err := r.tx.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE jti = $1`, jti).Scan(
		&s.ID,
		&s.UserID,
		&s.JTI,
		&s.ExpiresAt,
		&s.Device.Name,
		&s.Device.IP,
		&s.Device.UserAgent,
		&s.PushToken,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, mapError("get session", err)
	}
	return &s, nil
}

func (r *sessionRepo) DeleteByJTI(ctx context.Context, jti string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM sessions WHERE jti = $1`, jti)
	if err != nil {
		return mapError("delete session", err)
	}
	// The loser of a concurrent consume sees zero rows here.
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) DeleteAllForUser(ctx context.Context, userID string) ([]store.Session, error) {
	query := `DELETE FROM sessions WHERE user_id = $1 RETURNING ` + sessionColumns

	rows, err := r.tx.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("delete user sessions", err)
	}
	return scanSessions(rows)
}

func (r *sessionRepo) ListForUser(ctx context.Context, userID string) ([]store.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.tx.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("list user sessions", err)
	}
	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]store.Session, error) {
	defer rows.Close()

	var out []store.Session
	for rows.Next() {
		var s store.Session
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.JTI,
			&s.ExpiresAt,
			&s.Device.Name,
			&s.Device.IP,
			&s.Device.UserAgent,
			&s.PushToken,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, mapError("scan session", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate sessions", err)
	}
	return out, nil
}
