package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// User is the credential-relevant subset of an account record. It is never
// physically deleted by the engine; deletion is the soft-delete markers.
type User struct {
	ID              string
	Username        string // lower-cased, unique
	PasswordHash    string
	PasswordExpired bool
	OTPSecret       string // base32, empty when not provisioned
	OTPAuthURL      string
	OTPVerified     bool
	IsAdmin         bool
	IsDeleted       bool
	DeletedAt       *time.Time
	CreatedAt       time.Time
}

// Device is opaque client metadata attached to a session.
type Device struct {
	Name      string `json:"name,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Session is a persisted refresh-token record. At most one live row exists
// per JTI and a JTI is never reused.
type Session struct {
	ID        string
	UserID    string
	JTI       string
	ExpiresAt time.Time
	Device    Device
	PushToken string
	CreatedAt time.Time
}

// Escrow holds a user's hashed recovery code together with the encrypted
// private key and the salt used to derive the decryption key from the
// code. At most one live escrow exists per user; it is consumed (deleted)
// exactly once.
type Escrow struct {
	ID           string
	UserID       string
	CodeHash     string
	EncryptedKey []byte
	Salt         []byte
	CreatedAt    time.Time
}

// Store is the transactional backing store for users, sessions and
// recovery escrows.
type Store interface {
	// WithTx runs fn inside one all-or-nothing transaction. Any error
	// returned by fn rolls the transaction back and is returned as is.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Close()
}

// Tx exposes the per-entity repositories of one open transaction.
type Tx interface {
	Users() UserRepo
	Sessions() SessionRepo
	Escrows() EscrowRepo
}

// UserRepo persists user credential records.
type UserRepo interface {
	// Create inserts a new user. The username must already be lower-cased;
	// a taken username fails with ErrDuplicate.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Save writes back every credential-relevant field of an existing user.
	Save(ctx context.Context, u *User) error
}

// SessionRepo persists refresh-token session rows keyed by JTI.
type SessionRepo interface {
	Create(ctx context.Context, s *Session) error
	GetByJTI(ctx context.Context, jti string) (*Session, error)
	// DeleteByJTI consumes the row. A concurrent consumer losing the race
	// observes ErrNotFound.
	DeleteByJTI(ctx context.Context, jti string) error
	// DeleteAllForUser removes every session of the user and returns the
	// removed rows so the caller can emit revocation events.
	DeleteAllForUser(ctx context.Context, userID string) ([]Session, error)
	ListForUser(ctx context.Context, userID string) ([]Session, error)
}

// EscrowRepo persists recovery escrows.
type EscrowRepo interface {
	// Upsert replaces the user's escrow if one exists.
	Upsert(ctx context.Context, e *Escrow) error
	GetForUser(ctx context.Context, userID string) (*Escrow, error)
	DeleteForUser(ctx context.Context, userID string) error
}
