package cart

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashstore/internal/domain"
	"flashstore/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	return NewManager(mem, slog.Default()), mem
}

func mustProduct(t *testing.T, id string) domain.Product {
	t.Helper()
	p, ok := domain.ProductByID(id)
	require.True(t, ok, "catalog must contain %s", id)
	return p
}

func TestAdd(t *testing.T) {
	m, _ := newTestManager(t)
	p := mustProduct(t, domain.Catalog()[0].ID)

	ack, err := m.Add(p)
	require.NoError(t, err)
	assert.Equal(t, p.Name+" synchronized.", ack)

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	t.Run("same product increments quantity", func(t *testing.T) {
		_, err := m.Add(p)
		require.NoError(t, err)
		items := m.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
	})

	t.Run("different product appends", func(t *testing.T) {
		other := mustProduct(t, domain.Catalog()[1].ID)
		_, err := m.Add(other)
		require.NoError(t, err)
		assert.Len(t, m.Items(), 2)
	})
}

func TestRemove(t *testing.T) {
	m, _ := newTestManager(t)
	p := mustProduct(t, domain.Catalog()[0].ID)
	_, err := m.Add(p)
	require.NoError(t, err)

	require.NoError(t, m.Remove(p.ID))
	assert.Empty(t, m.Items())

	t.Run("absent id is a no-op", func(t *testing.T) {
		require.NoError(t, m.Remove("nope"))
	})
}

func TestTotalAndCount(t *testing.T) {
	m, _ := newTestManager(t)
	a := mustProduct(t, domain.Catalog()[0].ID)
	b := mustProduct(t, domain.Catalog()[1].ID)

	_, err := m.Add(a)
	require.NoError(t, err)
	_, err = m.Add(a)
	require.NoError(t, err)
	_, err = m.Add(b)
	require.NoError(t, err)

	assert.InDelta(t, a.Price*2+b.Price, m.Total(), 0.001)
	assert.Equal(t, 3, m.Count())
}

func TestClear(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Add(mustProduct(t, domain.Catalog()[0].ID))
	require.NoError(t, err)

	require.NoError(t, m.Clear())
	assert.Empty(t, m.Items())
	assert.Zero(t, m.Total())
}

func TestItems_CorruptedSnapshotDegrades(t *testing.T) {
	m, mem := newTestManager(t)
	_, err := m.Add(mustProduct(t, domain.Catalog()[0].ID))
	require.NoError(t, err)

	mem.Corrupt(store.KeyCart)
	assert.Empty(t, m.Items())
}
