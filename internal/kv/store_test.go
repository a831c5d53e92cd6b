package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-bank/internal/db"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)

	conn, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": NewSQLite(conn),
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assertStoreContract(t, store)
		})
	}
}

// assertStoreContract checks the behavior every backend shares.
func assertStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "mos-test-questions")
	require.NoError(t, err)
	assert.False(t, ok, "missing key reports ok=false")

	require.NoError(t, store.Set(ctx, "mos-test-questions", `[{"question":"Q"}]`))
	val, ok, err := store.Get(ctx, "mos-test-questions")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"question":"Q"}]`, val)

	require.NoError(t, store.Set(ctx, "mos-test-questions", `[]`))
	val, _, err = store.Get(ctx, "mos-test-questions")
	require.NoError(t, err)
	assert.Equal(t, `[]`, val, "set replaces the previous document")

	require.NoError(t, store.Remove(ctx, "mos-test-questions"))
	_, ok, err = store.Get(ctx, "mos-test-questions")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Remove(ctx, "mos-test-questions"), "removing a missing key is not an error")
}

func TestStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "a", "1"))
			require.NoError(t, store.Set(ctx, "b/../c", "2"))

			val, ok, err := store.Get(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "1", val)

			val, ok, err = store.Get(ctx, "b/../c")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "2", val)
		})
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := store.Get(ctx, "")
			assert.ErrorIs(t, err, ErrEmptyKey)
			assert.ErrorIs(t, store.Set(ctx, "", "x"), ErrEmptyKey)
			assert.ErrorIs(t, store.Remove(ctx, ""), ErrEmptyKey)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "bank", "payload"))

	second, err := NewFile(dir)
	require.NoError(t, err)
	val, ok, err := second.Get(ctx, "bank")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", val)
	assert.NoError(t, second.Ping(ctx))
}
