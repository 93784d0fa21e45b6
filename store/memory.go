package store

import (
	"context"
	"sync"
)

// Memory is a mutex-serialized in-memory Store. Transactions operate on a
// copy of the state and are swapped in atomically on commit, so a failed
// fn leaves nothing behind.
type Memory struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	users     map[string]User // by id
	usernames map[string]string
	sessions  map[string]Session // by jti
	escrows   map[string]Escrow  // by user id
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{state: &memState{
		users:     map[string]User{},
		usernames: map[string]string{},
		sessions:  map[string]Session{},
		escrows:   map[string]Escrow{},
	}}
}

// WithTx implements Store.
func (m *Memory) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.state.clone()
	if err := fn(&memTx{state: staged}); err != nil {
		return err
	}

	m.state = staged
	return nil
}

// Close implements Store.
func (m *Memory) Close() {}

func (s *memState) clone() *memState {
	out := &memState{
		users:     make(map[string]User, len(s.users)),
		usernames: make(map[string]string, len(s.usernames)),
		sessions:  make(map[string]Session, len(s.sessions)),
		escrows:   make(map[string]Escrow, len(s.escrows)),
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.usernames {
		out.usernames[k] = v
	}
	for k, v := range s.sessions {
		out.sessions[k] = v
	}
	for k, v := range s.escrows {
		out.escrows[k] = v
	}
	return out
}

type memTx struct {
	state *memState
}

func (t *memTx) Users() UserRepo       { return &memUsers{state: t.state} }
func (t *memTx) Sessions() SessionRepo { return &memSessions{state: t.state} }
func (t *memTx) Escrows() EscrowRepo   { return &memEscrows{state: t.state} }

type memUsers struct {
	state *memState
}

func (r *memUsers) Create(_ context.Context, u *User) error {
	if _, taken := r.state.usernames[u.Username]; taken {
		return ErrDuplicate
	}
	if _, exists := r.state.users[u.ID]; exists {
		return ErrDuplicate
	}
	r.state.users[u.ID] = *u
	r.state.usernames[u.Username] = u.ID
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.state.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*User, error) {
	id, ok := r.state.usernames[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.state.users[id]
	return &u, nil
}

func (r *memUsers) Save(_ context.Context, u *User) error {
	if _, ok := r.state.users[u.ID]; !ok {
		return ErrNotFound
	}
	r.state.users[u.ID] = *u
	return nil
}

type memSessions struct {
	state *memState
}

func (r *memSessions) Create(_ context.Context, s *Session) error {
	if _, exists := r.state.sessions[s.JTI]; exists {
		return ErrDuplicate
	}
	r.state.sessions[s.JTI] = *s
	return nil
}

func (r *memSessions) GetByJTI(_ context.Context, jti string) (*Session, error) {
	s, ok := r.state.sessions[jti]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *memSessions) DeleteByJTI(_ context.Context, jti string) error {
	if _, ok := r.state.sessions[jti]; !ok {
		return ErrNotFound
	}
	delete(r.state.sessions, jti)
	return nil
}

func (r *memSessions) DeleteAllForUser(_ context.Context, userID string) ([]Session, error) {
	var removed []Session
	for jti, s := range r.state.sessions {
		if s.UserID == userID {
			removed = append(removed, s)
			delete(r.state.sessions, jti)
		}
	}
	return removed, nil
}

func (r *memSessions) ListForUser(_ context.Context, userID string) ([]Session, error) {
	var out []Session
	for _, s := range r.state.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type memEscrows struct {
	state *memState
}

func (r *memEscrows) Upsert(_ context.Context, e *Escrow) error {
	r.state.escrows[e.UserID] = *e
	return nil
}

func (r *memEscrows) GetForUser(_ context.Context, userID string) (*Escrow, error) {
	e, ok := r.state.escrows[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *memEscrows) DeleteForUser(_ context.Context, userID string) error {
	if _, ok := r.state.escrows[userID]; !ok {
		return ErrNotFound
	}
	delete(r.state.escrows, userID)
	return nil
}
