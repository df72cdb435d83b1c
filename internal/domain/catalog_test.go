package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogOf(n int) *Catalog {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	products := make([]Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, Product{
			ID:        i,
			Name:      fmt.Sprintf("Product %d", i),
			Stock:     10,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return NewCatalog(products)
}

func TestCatalogNewFilterTwentyProducts(t *testing.T) {
	// ceil(20% of 20) = 4, floored to 5.
	got := catalogOf(20).New()
	require.Len(t, got, 5)

	for i := 0; i < len(got)-1; i++ {
		assert.True(t, !got[i].CreatedAt.Before(got[i+1].CreatedAt), "must be sorted by creation time descending")
	}
	assert.Equal(t, 20, got[0].ID, "newest product first")
}

func TestCatalogNewFilterSmallCatalog(t *testing.T) {
	assert.Len(t, catalogOf(3).New(), 3, "floor cannot exceed catalog size")
	assert.Len(t, catalogOf(50).New(), 10, "ceil(20%) above the floor wins")
}

func TestCatalogLowStock(t *testing.T) {
	catalog := NewCatalog([]Product{
		{ID: 1, Name: "A", Stock: 2, LowStockThreshold: 5},
		{ID: 2, Name: "B", Stock: 5, LowStockThreshold: 5},
		{ID: 3, Name: "C", Stock: 6, LowStockThreshold: 5},
	})

	low := catalog.LowStock()
	require.Len(t, low, 2, "stock at the threshold counts as low")
	ids := []int{low[0].ID, low[1].ID}
	assert.ElementsMatch(t, []int{1, 2}, ids)
}

func TestCatalogSearch(t *testing.T) {
	catalog := NewCatalog([]Product{
		{ID: 1, Name: "Green Tea"},
		{ID: 2, Name: "Black Tea"},
		{ID: 3, Name: "Coffee"},
	})

	assert.Len(t, catalog.Search("tea"), 2)
	assert.Len(t, catalog.Search("  COFFEE "), 1)
	assert.Len(t, catalog.Search(""), 3)
	assert.Empty(t, catalog.Search("juice"))
}

func TestCatalogApplyStockDeltaClampsAtZero(t *testing.T) {
	catalog := NewCatalog([]Product{{ID: 1, Stock: 3}})

	catalog.ApplyStockDelta(1, 2)
	assert.Equal(t, 1, catalog.Get(1).Stock)

	catalog.ApplyStockDelta(1, 5)
	assert.Equal(t, 0, catalog.Get(1).Stock, "stock is never negative")

	// Unknown product is a no-op.
	catalog.ApplyStockDelta(99, 1)
}

func TestCatalogUpsertAndRemove(t *testing.T) {
	catalog := NewCatalog(nil)
	assert.Nil(t, catalog.Get(1))

	catalog.Upsert(Product{ID: 1, Name: "A", Stock: 2})
	require.NotNil(t, catalog.Get(1))

	catalog.Upsert(Product{ID: 1, Name: "A", Stock: 7})
	assert.Equal(t, 7, catalog.Get(1).Stock)

	catalog.Remove(1)
	assert.Nil(t, catalog.Get(1))
	assert.Equal(t, 0, catalog.Len())
}
