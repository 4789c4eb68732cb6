package auth

import (
	"database/sql"
	"sync"

	"github.com/jtrac-dev/jtrac/internal"
)

// Store persists the bearer token between runs
type Store interface {
	// GetToken returns the persisted token, or false if there is none.
	GetToken() (string, bool)
	SetToken(token string) error
	RemoveToken() error
}

// SQLiteStore keeps the token in the state database's ItemTable under a fixed key
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// NewSQLiteStore creates a token store on an open state database
func NewSQLiteStore(db *sql.DB, key string) *SQLiteStore {
	return &SQLiteStore{db: db, key: key}
}

// GetToken reads the token. Read failures are logged and reported as absent.
func (s *SQLiteStore) GetToken() (string, bool) {
	token, ok, err := internal.GetItem(s.db, s.key)
	if err != nil {
		internal.LogWarn("Failed to read token: %v", err)
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (s *SQLiteStore) SetToken(token string) error {
	if err := internal.SetItem(s.db, s.key, token); err != nil {
		return &internal.StorageError{Path: s.key, Op: "write", Err: err}
	}
	return nil
}

func (s *SQLiteStore) RemoveToken() error {
	if err := internal.RemoveItem(s.db, s.key); err != nil {
		return &internal.StorageError{Path: s.key, Op: "delete", Err: err}
	}
	return nil
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates a store pre-loaded with token ("" for none)
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) GetToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) RemoveToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
