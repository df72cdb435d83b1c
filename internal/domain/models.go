package domain

import "time"

type Product struct {
	ID                int       `json:"id"`
	OwnerID           string    `json:"owner_id"`
	Name              string    `json:"name"`
	SellingPrice      float64   `json:"selling_price"`
	CostPrice         float64   `json:"cost_price"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	ImageURL          string    `json:"image_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Sale struct {
	ID          int        `json:"id"`
	OwnerID     string     `json:"owner_id"`
	TotalAmount float64    `json:"total_amount"`
	TotalCost   float64    `json:"total_cost"`
	Items       []SaleItem `json:"items"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SaleItem struct {
	ProductID   int     `json:"product_id"`
	Quantity    int     `json:"quantity"`
	PriceAtSale float64 `json:"price_at_sale"`
	CostAtSale  float64 `json:"cost_at_sale"`
}

// IsLowStock reports whether the product is at or below its configured
// low-stock threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// Profit returns the profit recorded on this sale.
func (s *Sale) Profit() float64 {
	return s.TotalAmount - s.TotalCost
}
