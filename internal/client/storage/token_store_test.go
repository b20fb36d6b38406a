package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storedToken(t *testing.T, db *sql.DB) (string, bool) {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, common.TokenStorageKey).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false
	}
	require.NoError(t, err)
	return string(v), true
}

func TestSQLiteTokenStore_EmptyOnFreshDatabase(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "s.db"))

	s, err := NewSQLiteTokenStore(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, s.Token())
}

func TestSQLiteTokenStore_SetIsVisibleImmediatelyAndPersisted(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "s.db"))
	ctx := context.Background()

	s, err := NewSQLiteTokenStore(ctx, db)
	require.NoError(t, err)

	require.NoError(t, s.SetToken(ctx, "tok-1"))
	assert.Equal(t, "tok-1", s.Token())

	v, ok := storedToken(t, db)
	require.True(t, ok)
	assert.Equal(t, "tok-1", v)
}

func TestSQLiteTokenStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")
	ctx := context.Background()

	db, err := OpenDatabase(ctx, path)
	require.NoError(t, err)
	s, err := NewSQLiteTokenStore(ctx, db)
	require.NoError(t, err)
	require.NoError(t, s.SetToken(ctx, "persisted"))
	require.NoError(t, db.Close())

	db2 := openTestDB(t, path)
	s2, err := NewSQLiteTokenStore(ctx, db2)
	require.NoError(t, err)
	assert.Equal(t, "persisted", s2.Token())
}

func TestSQLiteTokenStore_ClearAndEmptySet(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "s.db"))
	ctx := context.Background()

	s, err := NewSQLiteTokenStore(ctx, db)
	require.NoError(t, err)

	require.NoError(t, s.SetToken(ctx, "a"))
	require.NoError(t, s.ClearToken(ctx))
	assert.Empty(t, s.Token())
	_, ok := storedToken(t, db)
	assert.False(t, ok)

	require.NoError(t, s.SetToken(ctx, "b"))
	require.NoError(t, s.SetToken(ctx, ""))
	assert.Empty(t, s.Token())
	_, ok = storedToken(t, db)
	assert.False(t, ok, "empty token means absent")
}

func TestSQLiteTokenStore_ClearDropsMemoryEvenOnError(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "s.db"))
	ctx := context.Background()

	s, err := NewSQLiteTokenStore(ctx, db)
	require.NoError(t, err)
	require.NoError(t, s.SetToken(ctx, "a"))

	require.NoError(t, db.Close())

	require.Error(t, s.ClearToken(ctx))
	assert.Empty(t, s.Token())
}

func TestSQLiteTokenStore_SetErrorKeepsPreviousValue(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "s.db"))
	ctx := context.Background()

	s, err := NewSQLiteTokenStore(ctx, db)
	require.NoError(t, err)
	require.NoError(t, s.SetToken(ctx, "a"))
	require.NoError(t, db.Close())

	require.ErrorContains(t, s.SetToken(ctx, "b"), "persist token")
	assert.Equal(t, "a", s.Token())
}

func TestOpenDatabase_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.db")
	ctx := context.Background()

	db, err := OpenDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpenDatabase_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "s.db")

	db := openTestDB(t, path)
	s, err := NewSQLiteTokenStore(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, s.SetToken(context.Background(), "tok"))

	got, ok := storedToken(t, db)
	require.True(t, ok)
	assert.Equal(t, "tok", got)
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTokenStore("seed")
	assert.Equal(t, "seed", s.Token())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SetToken(ctx, "x")
			_ = s.Token()
		}()
	}
	wg.Wait()
	assert.Equal(t, "x", s.Token())

	require.NoError(t, s.ClearToken(ctx))
	assert.Empty(t, s.Token())
}
