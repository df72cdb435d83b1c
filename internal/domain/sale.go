package domain

import "context"

type SaleStore interface {
	// CreateSale records the sale header and returns it with its
	// generated ID and timestamp filled in. Items on the passed sale are
	// not persisted here; see CreateSaleItems.
	CreateSale(ctx context.Context, sale *Sale) (*Sale, error)

	// CreateSaleItems records the line items for an already-created sale.
	CreateSaleItems(ctx context.Context, saleID int, items []SaleItem) error

	ListSalesByOwner(ctx context.Context, ownerID string) ([]Sale, error)

	// DeleteSalesByOwner clears the owner's entire sales history.
	DeleteSalesByOwner(ctx context.Context, ownerID string) error
}

// TransactionalSaleStore is an optional upgrade a SaleStore can offer:
// the sale, its items, and the stock decrements land in one atomic unit,
// closing the partial-checkout window the plain sequence leaves open.
// Checkout uses it when the configured store supports it.
type TransactionalSaleStore interface {
	CreateSaleWithItems(ctx context.Context, sale *Sale, items []SaleItem) (*Sale, error)
}
