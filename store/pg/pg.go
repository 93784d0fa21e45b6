// Package pg implements store.Store on PostgreSQL via pgx.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auxgate/authcore/store"
)

const uniqueViolation = "23505"

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewFromPool wraps an existing pool. The caller keeps ownership of the
// pool's lifecycle.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTx implements store.Store. fn's error rolls the transaction back and
// is returned unchanged; row-level contention on session rows serializes
// concurrent consumers of the same jti.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Users() store.UserRepo       { return &userRepo{tx: t.tx} }
func (t *pgTx) Sessions() store.SessionRepo { return &sessionRepo{tx: t.tx} }
func (t *pgTx) Escrows() store.EscrowRepo   { return &escrowRepo{tx: t.tx} }

func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
