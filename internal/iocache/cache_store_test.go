package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rcqm/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteCache(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(toolCacheTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(toolCacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("key", []byte("value"), 1, time.Now().Unix()))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStoreInvalidInputs(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(toolCacheTable, schema.DatabaseBackend("oracle"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestCacheStoreSQLite(t *testing.T) {
	store := newSQLiteCache(t)

	t.Run("miss", func(t *testing.T) {
		_, _, _, err := store.Get("doc:missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set("doc:abc", []byte("┃  A  ↑  Foo\n"), 1, 1700000000))
		value, version, ts, err := store.Get("doc:abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("┃  A  ↑  Foo\n"), value)
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1700000000), ts)
	})

	t.Run("set replaces", func(t *testing.T) {
		require.NoError(t, store.Set("doc:abc", []byte("new"), 2, 1700000100))
		value, version, ts, err := store.Get("doc:abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), value)
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(1700000100), ts)
	})

	t.Run("status", func(t *testing.T) {
		require.NoError(t, store.Set("doc:def", []byte("x"), 1, 1600000000))
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, time.Unix(1700000100, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1600000000, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})
}

func TestCacheStoreEmptyStatus(t *testing.T) {
	status, err := newSQLiteCache(t).GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalEntries)
	assert.True(t, status.LastEntryTime.IsZero())
}

func TestCacheStorePersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	first, err := NewCacheStore(toolCacheTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, first.Set("doc:k", []byte("v"), 1, 1))
	require.NoError(t, first.Close())

	second, err := NewCacheStore(toolCacheTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()
	value, _, _, err := second.Get("doc:k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(toolCacheTable, schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file is fine", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
	})
}
