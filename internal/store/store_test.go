package store

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), slog.Default())
	require.NoError(t, err)

	_, ok, err := fs.Get("vault")
	require.NoError(t, err)
	assert.False(t, ok, "unwritten key reads as absent")

	require.NoError(t, fs.Set("vault", []byte(`[{"a":1}]`)))

	data, ok, err := fs.Get("vault")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"a":1}]`, string(data))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileStore(dir, slog.Default())
	require.NoError(t, err)
	require.NoError(t, first.Set("used_keys", []byte(`["A"]`)))

	second, err := NewFileStore(dir, slog.Default())
	require.NoError(t, err)
	data, ok, err := second.Get("used_keys")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["A"]`, string(data))
}

func TestFileStore_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := NewFileStore(dir, slog.Default())
	assert.NoError(t, err)
}

func TestSubscribe(t *testing.T) {
	for name, s := range map[string]Store{
		"file": mustFileStore(t),
		"mem":  NewMemStore(),
	} {
		t.Run(name, func(t *testing.T) {
			var seen []string
			s.Subscribe(func(key string) { seen = append(seen, key) })

			require.NoError(t, s.Set("cart", []byte("[]")))
			require.NoError(t, s.Set("vault", []byte("[]")))

			assert.Equal(t, []string{"cart", "vault"}, seen)
		})
	}
}

func mustFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir(), slog.Default())
	require.NoError(t, err)
	return fs
}

func TestReadJSON(t *testing.T) {
	logger := slog.Default()

	t.Run("missing key leaves value untouched", func(t *testing.T) {
		mem := NewMemStore()
		var items []string
		assert.False(t, ReadJSON(mem, logger, "cart", &items))
		assert.Nil(t, items)
	})

	t.Run("corrupted payload degrades to empty", func(t *testing.T) {
		mem := NewMemStore()
		mem.Corrupt("cart")
		var items []string
		assert.False(t, ReadJSON(mem, logger, "cart", &items))
		assert.Nil(t, items)
	})

	t.Run("round trip", func(t *testing.T) {
		mem := NewMemStore()
		require.NoError(t, WriteJSON(mem, "cart", []string{"x"}))
		var items []string
		assert.True(t, ReadJSON(mem, logger, "cart", &items))
		assert.Equal(t, []string{"x"}, items)
	})
}
