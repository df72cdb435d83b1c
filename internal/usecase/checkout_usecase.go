package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

type CheckoutUseCase interface {
	// Checkout converts the cart into a durable Sale. On success the cart
	// is cleared and the catalog cache's stock figures are reconciled in
	// place (optimistic local update; the cache is not re-fetched).
	Checkout(ctx context.Context, ownerID string, cart *domain.Cart, catalog *domain.Catalog) (*domain.Sale, error)
}

type checkoutUseCase struct {
	saleStore    domain.SaleStore
	productStore domain.ProductStore
	log          *logrus.Logger
}

func NewCheckoutUseCase(saleStore domain.SaleStore, productStore domain.ProductStore, logger *logrus.Logger) CheckoutUseCase {
	return &checkoutUseCase{
		saleStore:    saleStore,
		productStore: productStore,
		log:          logger,
	}
}

func (uc *checkoutUseCase) Checkout(ctx context.Context, ownerID string, cart *domain.Cart, catalog *domain.Catalog) (*domain.Sale, error) {
	if ownerID == "" {
		return nil, errors.New("authenticated user required for checkout")
	}
	if cart == nil || cart.IsEmpty() {
		uc.log.Warn("Use Case: Checkout attempted on an empty cart")
		return nil, domain.ErrEmptyCart
	}
	if catalog == nil {
		return nil, errors.New("catalog is not loaded")
	}

	lines := cart.Lines()

	// Validate the cart against current stock before touching the
	// backend.
	for _, line := range lines {
		product := catalog.Get(line.ProductID)
		if product == nil {
			uc.log.Warnf("Use Case: Cart references product %d missing from the catalog", line.ProductID)
			return nil, fmt.Errorf("product %d is no longer available", line.ProductID)
		}
		if line.Quantity > product.Stock {
			uc.log.Warnf("Use Case: Cart quantity %d exceeds stock %d for product %d", line.Quantity, product.Stock, line.ProductID)
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrMaxStock)
		}
	}

	sale := &domain.Sale{
		OwnerID:     ownerID,
		TotalAmount: cart.Total(),
		TotalCost:   cart.TotalCost(),
	}
	items := make([]domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.SaleItem{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtSale: line.PriceAtSale,
			CostAtSale:  line.CostAtSale,
		})
	}

	uc.log.Infof("Use Case: Starting checkout for owner %s (%d lines, total %.2f)", ownerID, len(lines), sale.TotalAmount)

	var created *domain.Sale
	var err error
	if txStore, ok := uc.saleStore.(domain.TransactionalSaleStore); ok {
		created, err = txStore.CreateSaleWithItems(ctx, sale, items)
		if err != nil {
			uc.log.Errorf("Use Case: Transactional checkout failed for owner %s: %v", ownerID, err)
			return nil, fmt.Errorf("checkout failed: %w", err)
		}
	} else {
		created, err = uc.submitSequential(ctx, ownerID, sale, items, catalog)
		if err != nil {
			return nil, err
		}
	}

	// Reconcile the cached stock figures so the register reflects the
	// sale without a re-fetch. Other writers can still make the cache
	// stale until the next catalog load.
	for _, item := range items {
		catalog.ApplyStockDelta(item.ProductID, item.Quantity)
	}
	cart.Clear()

	uc.log.Infof("Use Case: Checkout completed, sale ID %d (amount %.2f, cost %.2f)", created.ID, created.TotalAmount, created.TotalCost)
	return created, nil
}

// submitSequential runs the non-transactional sequence: sale header,
// then items, then one stock write per product. A stock
// write failure is logged and skipped, never fatal; the recorded sale is
// not retracted, so stock can drift from the sales ledger until corrected
// by hand.
func (uc *checkoutUseCase) submitSequential(ctx context.Context, ownerID string, sale *domain.Sale, items []domain.SaleItem, catalog *domain.Catalog) (*domain.Sale, error) {
	created, err := uc.saleStore.CreateSale(ctx, sale)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create sale for owner %s: %v", ownerID, err)
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	if err := uc.saleStore.CreateSaleItems(ctx, created.ID, items); err != nil {
		uc.log.Errorf("Use Case: CRITICAL! Sale %d recorded but item insert failed: %v. Manual intervention required!", created.ID, err)
		return nil, fmt.Errorf("checkout failed while recording items: %w", err)
	}
	created.Items = items

	for _, item := range items {
		product := catalog.Get(item.ProductID)
		if product == nil {
			continue
		}
		newStock := product.Stock - item.Quantity
		if newStock < 0 {
			newStock = 0
		}
		if err := uc.productStore.UpdateStock(ctx, ownerID, item.ProductID, newStock); err != nil {
			// The sale is already durable; skip this product and keep
			// going.
			uc.log.Errorf("Use Case: Failed to update stock for product %d after sale %d (wanted %d): %v. Continuing with remaining products.", item.ProductID, created.ID, newStock, err)
			continue
		}
		uc.log.Infof("Use Case: Stock for product %d set to %d after sale %d", item.ProductID, newStock, created.ID)
	}

	return created, nil
}
