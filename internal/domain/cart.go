package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxStock is returned when an add or quantity edit would push a
	// cart line past the product's current stock. The cart is left
	// unchanged.
	ErrMaxStock = errors.New("max stock reached")

	// ErrEmptyCart is returned when checkout is attempted on a cart with
	// no lines.
	ErrEmptyCart = errors.New("cart is empty")
)

// CartLine holds one product's pending quantity within an unconfirmed
// sale. PriceAtSale and CostAtSale are snapshots taken when the line was
// created and are immune to later catalog price edits.
type CartLine struct {
	ProductID   int     `json:"product_id"`
	Quantity    int     `json:"quantity"`
	PriceAtSale float64 `json:"price_at_sale"`
	CostAtSale  float64 `json:"cost_at_sale"`
}

// Cart is the in-memory set of lines for the active register session.
// It holds at most one line per product and never talks to the backend.
// Not safe for concurrent use; the delivery layer serializes access.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) findLine(productID int) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddProduct adds one unit of the product to the cart, snapshotting its
// current selling and cost price if no line exists yet. Adding past the
// product's current stock fails with ErrMaxStock and leaves the cart
// unchanged.
func (c *Cart) AddProduct(product *Product) error {
	if product == nil {
		return errors.New("product is nil")
	}
	idx := c.findLine(product.ID)
	if idx < 0 {
		if product.Stock < 1 {
			return fmt.Errorf("product %d: %w", product.ID, ErrMaxStock)
		}
		c.lines = append(c.lines, CartLine{
			ProductID:   product.ID,
			Quantity:    1,
			PriceAtSale: product.SellingPrice,
			CostAtSale:  product.CostPrice,
		})
		return nil
	}
	if c.lines[idx].Quantity+1 > product.Stock {
		return fmt.Errorf("product %d: %w", product.ID, ErrMaxStock)
	}
	c.lines[idx].Quantity++
	return nil
}

// SetQuantity replaces the line's quantity. A quantity of zero or less
// removes the line entirely. A quantity above the product's current stock
// fails with ErrMaxStock and leaves the line unchanged. Price and cost
// snapshots are never touched.
func (c *Cart) SetQuantity(product *Product, quantity int) error {
	if product == nil {
		return errors.New("product is nil")
	}
	idx := c.findLine(product.ID)
	if quantity <= 0 {
		if idx >= 0 {
			c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
		}
		return nil
	}
	if quantity > product.Stock {
		return fmt.Errorf("product %d: %w", product.ID, ErrMaxStock)
	}
	if idx < 0 {
		c.lines = append(c.lines, CartLine{
			ProductID:   product.ID,
			Quantity:    quantity,
			PriceAtSale: product.SellingPrice,
			CostAtSale:  product.CostPrice,
		})
		return nil
	}
	c.lines[idx].Quantity = quantity
	return nil
}

// RemoveProduct deletes the product's line if present.
func (c *Cart) RemoveProduct(productID int) {
	if idx := c.findLine(productID); idx >= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	}
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the sum over all lines of quantity times price-at-sale.
// Recomputed on every call.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.lines {
		total += float64(line.Quantity) * line.PriceAtSale
	}
	return total
}

// TotalCost is the sum over all lines of quantity times cost-at-sale.
func (c *Cart) TotalCost() float64 {
	var total float64
	for _, line := range c.lines {
		total += float64(line.Quantity) * line.CostAtSale
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clear drops all lines.
func (c *Cart) Clear() {
	c.lines = nil
}
