package documents

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	key := store.NewKey("Price list (2026).pdf")
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, "Price list")

	// Two uploads of the same file never collide.
	assert.NotEqual(t, key, store.NewKey("Price list (2026).pdf"))
}

func TestPathStripsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path := store.Path("../../etc/passwd")
	assert.Equal(t, filepath.Join(store.Dir, "passwd"), path)
}

func TestRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	key := store.NewKey("doc.txt")
	require.NoError(t, os.WriteFile(store.Path(key), []byte("x"), 0o644))

	require.NoError(t, store.Remove(key))
	_, err = os.Stat(store.Path(key))
	assert.True(t, os.IsNotExist(err))

	// Removing it again is fine.
	assert.NoError(t, store.Remove(key))
}

func TestNewStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
