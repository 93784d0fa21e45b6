package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/auxgate/authcore/store"
)

type escrowRepo struct {
	tx pgx.Tx
}

func (r *escrowRepo) Upsert(ctx context.Context, e *store.Escrow) error {
	query := `
		INSERT INTO recovery_escrows (id, user_id, code_hash, encrypted_key, salt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id,
			code_hash = EXCLUDED.code_hash,
			encrypted_key = EXCLUDED.encrypted_key,
			salt = EXCLUDED.salt,
			created_at = EXCLUDED.created_at
	`

	_, err := r.tx.Exec(ctx, query,
		e.ID,
		e.UserID,
		e.CodeHash,
		e.EncryptedKey,
		e.Salt,
		e.CreatedAt,
	)
	if err != nil {
		return mapError("upsert escrow", err)
	}
	return nil
}

func (r *escrowRepo) GetForUser(ctx context.Context, userID string) (*store.Escrow, error) {
	query := `
		SELECT id, user_id, code_hash, encrypted_key, salt, created_at
		FROM recovery_escrows WHERE user_id = $1
	`

	var e store.Escrow
	err := r.tx.QueryRow(ctx, query, userID).Scan(
		&e.ID,
		&e.UserID,
		&e.CodeHash,
		&e.EncryptedKey,
		&e.Salt,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, mapError("get escrow", err)
	}
	return &e, nil
}

func (r *escrowRepo) DeleteForUser(ctx context.Context, userID string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM recovery_escrows WHERE user_id = $1`, userID)
	if err != nil {
		return mapError("delete escrow", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
