package domain

import "context"

type ProductStore interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, ownerID string, id int) (*Product, error)

	UpdateProduct(ctx context.Context, ownerID string, id int, updates map[string]interface{}) (*Product, error)
	UpdateStock(ctx context.Context, ownerID string, id int, newStock int) error

	DeleteProduct(ctx context.Context, ownerID string, id int) error
	ListProductsByOwner(ctx context.Context, ownerID string) ([]Product, error)
}
