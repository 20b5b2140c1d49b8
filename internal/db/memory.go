package db

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MemoryStore is a Store kept in process memory, used when no database is
// configured and in tests. It reports errors the way Postgres does.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]User
	boards   map[string]Board
	members  map[string]map[string]BoardRole // boardID -> userID -> role
	elements map[string][]ElementRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]User{},
		boards:   map[string]Board{},
		members:  map[string]map[string]BoardRole{},
		elements: map[string][]ElementRow{},
	}
}

var _ Store = (*MemoryStore)(nil)

func duplicateKey(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func (m *MemoryStore) CreateUser(_ context.Context, arg CreateUserParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[arg.ID]; ok {
		return User{}, duplicateKey("users_pkey")
	}
	for _, u := range m.users {
		if u.Email == arg.Email {
			return User{}, duplicateKey("users_email_key")
		}
	}
	u := User{
		ID:          arg.ID,
		Email:       arg.Email,
		Password:    arg.Password,
		DisplayName: arg.DisplayName,
		CreatedAt:   time.Now().UTC(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, pgx.ErrNoRows
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *MemoryStore) CreateBoard(_ context.Context, arg CreateBoardParams) (Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[arg.ID]; ok {
		return Board{}, duplicateKey("boards_pkey")
	}
	now := time.Now().UTC()
	b := Board{ID: arg.ID, Name: arg.Name, OwnerID: arg.OwnerID, CreatedAt: now, UpdatedAt: now}
	m.boards[b.ID] = b
	return b, nil
}

func (m *MemoryStore) GetBoard(_ context.Context, id string) (Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[id]
	if !ok {
		return Board{}, pgx.ErrNoRows
	}
	return b, nil
}

func (m *MemoryStore) ListBoardsForUser(_ context.Context, userID string) ([]Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Board
	for boardID, members := range m.members {
		if _, ok := members[userID]; ok {
			out = append(out, m.boards[boardID])
		}
	}
	slices.SortFunc(out, func(a, b Board) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteBoard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.boards, id)
	delete(m.members, id)
	delete(m.elements, id)
	return nil
}

func (m *MemoryStore) TouchBoard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.boards[id]; ok {
		b.UpdatedAt = time.Now().UTC()
		m.boards[id] = b
	}
	return nil
}

func (m *MemoryStore) AddBoardMember(_ context.Context, arg BoardMemberParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[arg.BoardID]; !ok {
		return &pgconn.PgError{Code: "23503", Message: "board does not exist"}
	}
	if m.members[arg.BoardID] == nil {
		m.members[arg.BoardID] = map[string]BoardRole{}
	}
	m.members[arg.BoardID][arg.UserID] = arg.Role
	return nil
}

func (m *MemoryStore) GetBoardMember(_ context.Context, boardID, userID string) (BoardMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.members[boardID][userID]
	if !ok {
		return BoardMember{}, pgx.ErrNoRows
	}
	return BoardMember{BoardID: boardID, UserID: userID, Role: role}, nil
}

func (m *MemoryStore) ListBoardMembers(_ context.Context, boardID string) ([]MemberRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []MemberRow
	for userID, role := range m.members[boardID] {
		u := m.users[userID]
		out = append(out, MemberRow{UserID: userID, Role: role, DisplayName: u.DisplayName, Email: u.Email})
	}
	slices.SortFunc(out, func(a, b MemberRow) int {
		return cmp.Compare(a.DisplayName, b.DisplayName)
	})
	return out, nil
}

func (m *MemoryStore) RemoveBoardMember(_ context.Context, boardID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members[boardID], userID)
	return nil
}

func (m *MemoryStore) ListElements(_ context.Context, boardID string) ([]ElementRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.elements[boardID])
	slices.SortFunc(out, func(a, b ElementRow) int {
		return cmp.Compare(a.Z, b.Z)
	})
	return out, nil
}

func (m *MemoryStore) ReplaceElements(_ context.Context, boardID string, rows []ElementRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[boardID]; !ok {
		return &pgconn.PgError{Code: "23503", Message: "board does not exist"}
	}
	cp := make([]ElementRow, len(rows))
	for i, r := range rows {
		r.BoardID = boardID
		cp[i] = r
	}
	m.elements[boardID] = cp
	if b, ok := m.boards[boardID]; ok {
		b.UpdatedAt = time.Now().UTC()
		m.boards[boardID] = b
	}
	return nil
}
