package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewFileStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save([]byte(`{"sessions":[]}`)))

	data, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, `{"sessions":[]}`, string(data))

	// Overwrites replace the previous snapshot.
	require.NoError(t, store.Save([]byte(`{}`)))
	data, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestFileStoreLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"))
	require.NoError(t, store.Save([]byte("data")))

	_, err := os.Stat(filepath.Join(dir, "state.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save([]byte("hello")))
	data, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// The returned slice is a copy.
	data[0] = 'X'
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))
}
