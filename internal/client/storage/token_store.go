// Package storage holds the Persistent Token Store: the one durable slot that
// keeps the bearer token across restarts.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/dbx"
)

// TokenStore owns the persisted bearer token. An empty string means "no token".
//
// Token is synchronous and never blocks on I/O: after SetToken or ClearToken
// returns, every reader in the process observes the new value.
type TokenStore interface {
	Token() string
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// SQLiteTokenStore persists the token in the metadata table and serves reads
// from memory.
type SQLiteTokenStore struct {
	db *sql.DB

	mu    sync.RWMutex
	token string
}

var _ TokenStore = (*SQLiteTokenStore)(nil)

// NewSQLiteTokenStore loads the persisted token (if any) from db.
func NewSQLiteTokenStore(ctx context.Context, db *sql.DB) (*SQLiteTokenStore, error) {
	v, err := metadata.NewSQLiteRepository(db).Get(ctx, common.TokenStorageKey)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &SQLiteTokenStore{db: db, token: string(v)}, nil
}

func (s *SQLiteTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken persists token. An empty token clears the slot.
func (s *SQLiteTokenStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, common.TokenStorageKey, []byte(token)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.token = token
	return nil
}

// ClearToken removes the persisted token. The in-memory copy is dropped even
// when the delete fails, so the process never keeps using a token it was
// told to forget.
func (s *SQLiteTokenStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.TokenStorageKey)
	})
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the token in process memory only.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) ClearToken(ctx context.Context) error {
	return s.SetToken(ctx, "")
}
