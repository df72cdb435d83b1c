package domain

import (
	"math"
	"sort"
	"strings"
)

// Catalog is the client-held set of products for one owner, loaded once
// from the store and filtered in memory. Checkout mutates it in place
// after a sale, so it can drift from server truth until reloaded.
type Catalog struct {
	products []Product
}

func NewCatalog(products []Product) *Catalog {
	c := &Catalog{products: make([]Product, len(products))}
	copy(c.products, products)
	return c
}

// All returns the products sorted by creation time descending.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns the product with the given ID, or nil if absent.
func (c *Catalog) Get(productID int) *Product {
	for i := range c.products {
		if c.products[i].ID == productID {
			return &c.products[i]
		}
	}
	return nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// LowStock returns products at or below their low-stock threshold.
func (c *Catalog) LowStock() []Product {
	out := []Product{}
	for _, p := range c.All() {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// New returns the most recently created products: the top 20% of the
// catalog (rounded up) with a floor of 5 items, sorted by creation time
// descending.
func (c *Catalog) New() []Product {
	all := c.All()
	n := int(math.Ceil(float64(len(all)) * 0.2))
	if n < 5 {
		n = 5
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// Search returns products whose name contains the query,
// case-insensitively. An empty query returns the full catalog.
func (c *Catalog) Search(query string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.All()
	}
	out := []Product{}
	for _, p := range c.All() {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}

// ApplyStockDelta decreases the cached stock figure for a product,
// clamping at zero. Used by checkout reconciliation; the cache is not
// re-fetched, so other writers can still make it stale.
func (c *Catalog) ApplyStockDelta(productID, quantitySold int) {
	for i := range c.products {
		if c.products[i].ID == productID {
			newStock := c.products[i].Stock - quantitySold
			if newStock < 0 {
				newStock = 0
			}
			c.products[i].Stock = newStock
			return
		}
	}
}

// Upsert replaces the cached copy of a product, or appends it if new.
func (c *Catalog) Upsert(product Product) {
	for i := range c.products {
		if c.products[i].ID == product.ID {
			c.products[i] = product
			return
		}
	}
	c.products = append(c.products, product)
}

// Remove drops a product from the cache.
func (c *Catalog) Remove(productID int) {
	for i := range c.products {
		if c.products[i].ID == productID {
			c.products = append(c.products[:i], c.products[i+1:]...)
			return
		}
	}
}
