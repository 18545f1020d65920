package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(KeyAccess, "tok-123"))
	require.NoError(t, s.Set(KeyUsername, "alice"))

	// Re-open and verify persistence.
	s2, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", s2.Get(KeyAccess))
	assert.Equal(t, "alice", s2.Get(KeyUsername))
}

func TestStore_DeleteIdempotent(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Set(KeyRefresh, "r"))
	require.NoError(t, s.Delete(KeyRefresh))
	require.NoError(t, s.Delete(KeyRefresh))
	assert.Empty(t, s.Get(KeyRefresh))
}

func TestStore_MissingKeyIsEmpty(t *testing.T) {
	s := NewMemory()
	assert.Equal(t, "", s.Get("nope"))
}

func TestStore_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "", s.Get(KeyAccess))
}

func TestStore_SetAllSingleFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetAll(map[string]string{
		KeyAccess:   "a",
		KeyRefresh:  "b",
		KeyUsername: "carol",
	}))

	s2, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", s2.Get(KeyUsername))
}
