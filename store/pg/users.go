package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/auxgate/authcore/store"
)

type userRepo struct {
	tx pgx.Tx
}

const userColumns = `id, username, password_hash, password_is_expired,
	otp_secret, otp_auth_url, otp_verified, is_admin, is_deleted, deleted_at, created_at`

func (r *userRepo) Create(ctx context.Context, u *store.User) error {
	query := `
		INSERT INTO users (
			id, username, password_hash, password_is_expired,
			otp_secret, otp_auth_url, otp_verified, is_admin, is_deleted, deleted_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.tx.Exec(ctx, query,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.PasswordExpired,
		u.OTPSecret,
		u.OTPAuthURL,
		u.OTPVerified,
		u.IsAdmin,
		u.IsDeleted,
		u.DeletedAt,
		u.CreatedAt,
	)
	if err != nil {
		return mapError("create user", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*store.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepo) get(ctx context.Context, query string, arg any) (*store.User, error) {
	var u store.User
	err := r.tx.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.PasswordExpired,
		&u.OTPSecret,
		&u.OTPAuthURL,
		&u.OTPVerified,
		&u.IsAdmin,
		&u.IsDeleted,
		&u.DeletedAt,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, mapError("get user", err)
	}
	return &u, nil
}

func (r *userRepo) Save(ctx context.Context, u *store.User) error {
	query := `
		UPDATE users SET
			password_hash = $2,
			password_is_expired = $3,
			otp_secret = $4,
			otp_auth_url = $5,
			otp_verified = $6,
			is_admin = $7,
			is_deleted = $8,
			deleted_at = $9
		WHERE id = $1
	`

	tag, err := r.tx.Exec(ctx, query,
		u.ID,
		u.PasswordHash,
		u.PasswordExpired,
		u.OTPSecret,
		u.OTPAuthURL,
		u.OTPVerified,
		u.IsAdmin,
		u.IsDeleted,
		u.DeletedAt,
	)
	if err != nil {
		return mapError("save user", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
