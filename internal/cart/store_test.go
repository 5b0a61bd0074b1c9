package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcandylab/candylab-backend/internal/catalog"
)

func product(t *testing.T, id string) catalog.Product {
	t.Helper()
	p, ok := catalog.ByID(id)
	require.True(t, ok, "missing catalog product %s", id)
	return p
}

func sumLines(items []Item) int64 {
	var total int64
	for _, item := range items {
		total += item.Product.Price * int64(item.Quantity)
	}
	return total
}

func TestStoreTotalPriceMatchesContents(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		s := NewStore()
		assert.Equal(t, int64(0), s.TotalPrice())
		assert.Equal(t, 0, s.TotalItems())
		assert.Empty(t, s.Items())
	})

	t.Run("single", func(t *testing.T) {
		s := NewStore()
		s.AddItem(product(t, "jelly-001"), 2)
		assert.Equal(t, int64(9000), s.TotalPrice())
		assert.Equal(t, sumLines(s.Items()), s.TotalPrice())
	})

	t.Run("many with mixed operations", func(t *testing.T) {
		s := NewStore()
		s.AddItem(product(t, "jelly-001"), 1)
		s.AddItem(product(t, "jelly-002"), 3)
		s.AddItem(product(t, "jelly-008"), 0)
		s.AddItem(product(t, "jelly-001"), 2)
		s.UpdateQuantity("jelly-002", 5)
		s.RemoveItem("jelly-008")
		s.AddItem(product(t, "jelly-006"), -4)
		s.UpdateQuantity("jelly-404", 7)
		s.RemoveItem("jelly-404")

		items := s.Items()
		require.Len(t, items, 3)
		assert.Equal(t, "jelly-001", items[0].Product.ID)
		assert.Equal(t, 3, items[0].Quantity)
		assert.Equal(t, "jelly-002", items[1].Product.ID)
		assert.Equal(t, 5, items[1].Quantity)
		assert.Equal(t, "jelly-006", items[2].Product.ID)
		assert.Equal(t, 1, items[2].Quantity)

		assert.Equal(t, sumLines(items), s.TotalPrice())
		assert.Equal(t, int64(3*4500+5*4000+3900), s.TotalPrice())
		assert.Equal(t, 9, s.TotalItems())
	})
}

func TestStoreUpdateQuantityNonPositiveRemoves(t *testing.T) {
	t.Parallel()

	for _, qty := range []int{0, -5} {
		viaUpdate := NewStore()
		viaUpdate.AddItem(product(t, "jelly-003"), 2)
		viaUpdate.AddItem(product(t, "jelly-004"), 1)
		viaUpdate.UpdateQuantity("jelly-003", qty)

		viaRemove := NewStore()
		viaRemove.AddItem(product(t, "jelly-003"), 2)
		viaRemove.AddItem(product(t, "jelly-004"), 1)
		viaRemove.RemoveItem("jelly-003")

		assert.Equal(t, viaRemove.Items(), viaUpdate.Items(), "qty %d", qty)
		assert.Equal(t, 1, viaUpdate.Len())

		viaUpdate.UpdateQuantity("jelly-003", qty)
		assert.Equal(t, 1, viaUpdate.Len())
	}
}

func TestStoreItemsReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddItem(product(t, "jelly-005"), 1)
	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestStoreClear(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddItem(product(t, "jelly-005"), 4)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(0), s.TotalPrice())

	s.AddItem(product(t, "jelly-007"), 1)
	assert.Equal(t, "jelly-007", s.Items()[0].Product.ID)
}

func TestStoreRestoreSkipsInvalidLines(t *testing.T) {
	t.Parallel()

	p1 := product(t, "jelly-001")
	p2 := product(t, "jelly-002")
	s := NewStore()
	s.Restore(Snapshot{Items: []Item{
		{Product: p1, Quantity: 2},
		{Product: p2, Quantity: 0},
		{Product: catalog.Product{}, Quantity: 3},
		{Product: p1, Quantity: 1},
	}})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestStoreCapsLineQuantity(t *testing.T) {
	t.Parallel()

	s := NewStore()
	jelly := product(t, "jelly-001")
	s.AddItem(jelly, 60)
	s.AddItem(jelly, 60)
	assert.Equal(t, MaxQuantity, s.Items()[0].Quantity)

	s.UpdateQuantity("jelly-001", 3_000_000_000_000_000)
	assert.Equal(t, MaxQuantity, s.Items()[0].Quantity)
	assert.Equal(t, jelly.Price*MaxQuantity, s.TotalPrice())

	s.AddItem(product(t, "jelly-002"), 1<<40)
	assert.Equal(t, MaxQuantity, s.Items()[1].Quantity)
	assert.Equal(t, sumLines(s.Items()), s.TotalPrice())
	assert.Positive(t, s.TotalPrice())

	s.Restore(Snapshot{Items: []Item{{Product: jelly, Quantity: 500}}})
	assert.Equal(t, MaxQuantity, s.Items()[0].Quantity)
}
