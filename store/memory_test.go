package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(tx Tx) error {
		require.NoError(t, tx.Users().Create(ctx, &User{ID: "u1", Username: "alice"}))
		require.NoError(t, tx.Sessions().Create(ctx, &Session{ID: "s1", UserID: "u1", JTI: "j1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = m.WithTx(ctx, func(tx Tx) error {
		_, err := tx.Users().GetByUsername(ctx, "alice")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = tx.Sessions().GetByJTI(ctx, "j1")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		return tx.Users().Create(ctx, &User{ID: "u1", Username: "alice"})
	}))

	err := m.WithTx(ctx, func(tx Tx) error {
		return tx.Users().Create(ctx, &User{ID: "u2", Username: "alice"})
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUserSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	deletedAt := time.Now()
	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		return tx.Users().Create(ctx, &User{ID: "u1", Username: "alice"})
	}))

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		u, err := tx.Users().GetByID(ctx, "u1")
		require.NoError(t, err)
		u.PasswordExpired = true
		u.DeletedAt = &deletedAt
		return tx.Users().Save(ctx, u)
	}))

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		u, err := tx.Users().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, u.PasswordExpired)
		require.NotNil(t, u.DeletedAt)
		assert.True(t, u.DeletedAt.Equal(deletedAt))
		return nil
	}))
}

func TestMemorySessionConsumeOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		return tx.Sessions().Create(ctx, &Session{ID: "s1", UserID: "u1", JTI: "j1"})
	}))

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		return tx.Sessions().DeleteByJTI(ctx, "j1")
	}))

	err := m.WithTx(ctx, func(tx Tx) error {
		return tx.Sessions().DeleteByJTI(ctx, "j1")
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteAllForUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		require.NoError(t, tx.Sessions().Create(ctx, &Session{ID: "s1", UserID: "u1", JTI: "j1"}))
		require.NoError(t, tx.Sessions().Create(ctx, &Session{ID: "s2", UserID: "u1", JTI: "j2"}))
		require.NoError(t, tx.Sessions().Create(ctx, &Session{ID: "s3", UserID: "u2", JTI: "j3"}))
		return nil
	}))

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		removed, err := tx.Sessions().DeleteAllForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, removed, 2)

		left, err := tx.Sessions().ListForUser(ctx, "u2")
		require.NoError(t, err)
		assert.Len(t, left, 1)
		return nil
	}))
}

func TestMemoryEscrowLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		return tx.Escrows().Upsert(ctx, &Escrow{ID: "e1", UserID: "u1", CodeHash: "h1"})
	}))

	// A second save replaces the live escrow.
	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		return tx.Escrows().Upsert(ctx, &Escrow{ID: "e2", UserID: "u1", CodeHash: "h2"})
	}))

	require.NoError(t, m.WithTx(ctx, func(tx Tx) error {
		e, err := tx.Escrows().GetForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "h2", e.CodeHash)
		return tx.Escrows().DeleteForUser(ctx, "u1")
	}))

	err := m.WithTx(ctx, func(tx Tx) error {
		_, err := tx.Escrows().GetForUser(ctx, "u1")
		return err
	})
	require.ErrorIs(t, err, ErrNotFound)
}
