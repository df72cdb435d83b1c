package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/clients"
	"github.com/NEXESMISSION/mizeni/internal/domain"
)

// Catalog filter names accepted by ListProducts.
const (
	FilterAll      = "all"
	FilterLowStock = "low-stock"
	FilterNew      = "new"
)

type CreateProductInput struct {
	Name              string
	SellingPrice      float64
	CostPrice         float64
	Stock             int
	LowStockThreshold int

	// Optional raw image upload. On storage failure the product is saved
	// with a generated placeholder URL instead of failing.
	ImageFilename    string
	ImageContentType string
	ImageData        []byte
}

type ProductUseCase interface {
	LoadCatalog(ctx context.Context, ownerID string) (*domain.Catalog, error)
	ListProducts(ctx context.Context, ownerID, filter, query string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, ownerID string, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, ownerID string, id int, updates map[string]interface{}) (*domain.Product, error)
	DeleteProduct(ctx context.Context, ownerID string, id int) error
}

type productUseCase struct {
	productStore domain.ProductStore
	storage      clients.StorageClient
	log          *logrus.Logger
}

func NewProductUseCase(store domain.ProductStore, storage clients.StorageClient, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productStore: store,
		storage:      storage,
		log:          logger,
	}
}

// LoadCatalog fetches the owner's full product set. A missing identity
// yields an empty catalog rather than an error so read-only views never
// crash.
func (uc *productUseCase) LoadCatalog(ctx context.Context, ownerID string) (*domain.Catalog, error) {
	if ownerID == "" {
		uc.log.Warn("Use Case: Catalog requested without an owner identity, returning empty catalog")
		return domain.NewCatalog(nil), nil
	}

	products, err := uc.productStore.ListProductsByOwner(ctx, ownerID)
	if err != nil {
		uc.log.Errorf("Use Case: Store failed to list products for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("could not load catalog: %w", err)
	}
	return domain.NewCatalog(products), nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, ownerID, filter, query string) ([]domain.Product, error) {
	catalog, err := uc.LoadCatalog(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if query != "" {
		return catalog.Search(query), nil
	}

	switch filter {
	case "", FilterAll:
		return catalog.All(), nil
	case FilterLowStock:
		return catalog.LowStock(), nil
	case FilterNew:
		return catalog.New(), nil
	default:
		uc.log.Warnf("Use Case: Unknown product filter '%s'", filter)
		return nil, fmt.Errorf("unknown product filter: %s", filter)
	}
}

func validateProductInput(input CreateProductInput) error {
	if input.Name == "" {
		return errors.New("product name cannot be empty")
	}
	if input.SellingPrice < 0 {
		return errors.New("product selling price cannot be negative")
	}
	if input.CostPrice < 0 {
		return errors.New("product cost price cannot be negative")
	}
	if input.Stock < 0 {
		return errors.New("product stock cannot be negative")
	}
	if input.LowStockThreshold < 0 {
		return errors.New("low stock threshold cannot be negative")
	}
	return nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, ownerID string, input CreateProductInput) (*domain.Product, error) {
	if ownerID == "" {
		return nil, errors.New("authenticated user required")
	}
	if err := validateProductInput(input); err != nil {
		uc.log.Warnf("Use Case: Product validation failed for '%s': %v", input.Name, err)
		return nil, err
	}

	imageURL := clients.PlaceholderImageURL(input.Name)
	if len(input.ImageData) > 0 {
		uploaded, err := uc.storage.UploadProductImage(ctx, ownerID, input.ImageFilename, input.ImageContentType, input.ImageData)
		if err != nil {
			// Degrade, don't block the save.
			uc.log.Warnf("Use Case: Image upload failed for product '%s', using placeholder: %v", input.Name, err)
		} else {
			imageURL = uploaded
		}
	}

	product := &domain.Product{
		OwnerID:           ownerID,
		Name:              input.Name,
		SellingPrice:      input.SellingPrice,
		CostPrice:         input.CostPrice,
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
		ImageURL:          imageURL,
	}

	uc.log.Infof("Use Case: Attempting to create product '%s' for owner %s", input.Name, ownerID)
	created, err := uc.productStore.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Store failed to create product '%s': %v", input.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created with ID %d", created.Name, created.ID)
	return created, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, ownerID string, id int, updates map[string]interface{}) (*domain.Product, error) {
	if ownerID == "" {
		return nil, errors.New("authenticated user required")
	}
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid product ID: %d", id)
		return nil, errors.New("invalid product ID for update")
	}
	if len(updates) == 0 {
		return uc.productStore.GetProductByID(ctx, ownerID, id)
	}

	validUpdates := make(map[string]interface{})
	for key, value := range updates {
		switch key {
		case "name":
			name, ok := value.(string)
			if !ok || name == "" {
				return nil, errors.New("product name cannot be empty if provided for update")
			}
			validUpdates[key] = name
		case "selling_price", "cost_price":
			price, ok := value.(float64)
			if !ok || price < 0 {
				return nil, fmt.Errorf("%s must be a non-negative number", key)
			}
			validUpdates[key] = price
		case "stock", "low_stock_threshold":
			n, err := toNonNegativeInt(value)
			if err != nil {
				return nil, fmt.Errorf("%s must be a non-negative whole number", key)
			}
			validUpdates[key] = n
		case "image_url":
			imageURL, ok := value.(string)
			if !ok {
				return nil, errors.New("image_url must be a string")
			}
			validUpdates[key] = imageURL
		default:
			uc.log.Warnf("Use Case: Skipping unknown field '%s' in product update ID %d", key, id)
		}
	}
	if len(validUpdates) == 0 {
		return nil, errors.New("no valid fields provided for update")
	}

	uc.log.Infof("Use Case: Updating product ID %d (%d fields)", id, len(validUpdates))
	updated, err := uc.productStore.UpdateProduct(ctx, ownerID, id, validUpdates)
	if err != nil {
		uc.log.Errorf("Use Case: Store failed to update product ID %d: %v", id, err)
		return nil, err
	}
	return updated, nil
}

// toNonNegativeInt accepts the int and float64 shapes JSON decoding
// produces and rejects fractional values.
func toNonNegativeInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return 0, errors.New("negative value")
		}
		return v, nil
	case float64:
		n := int(v)
		if float64(n) != v {
			return 0, errors.New("fractional value")
		}
		if n < 0 {
			return 0, errors.New("negative value")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, ownerID string, id int) error {
	if ownerID == "" {
		return errors.New("authenticated user required")
	}
	if id <= 0 {
		return errors.New("invalid product ID")
	}

	uc.log.Infof("Use Case: Deleting product ID %d for owner %s", id, ownerID)
	if err := uc.productStore.DeleteProduct(ctx, ownerID, id); err != nil {
		uc.log.Errorf("Use Case: Store failed to delete product ID %d: %v", id, err)
		return err
	}
	return nil
}
