package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

const testOwner = "3f2c8a1e-25d4-4b0a-9c57-1d2e3f4a5b6c"

func checkoutFixture() (*fakeProductStore, *fakeSaleStore, *domain.Catalog, *domain.Cart) {
	p1 := domain.Product{ID: 1, OwnerID: testOwner, Name: "Tea", SellingPrice: 10, CostPrice: 6, Stock: 5}
	p2 := domain.Product{ID: 2, OwnerID: testOwner, Name: "Coffee", SellingPrice: 5, CostPrice: 3, Stock: 4}

	productStore := newFakeProductStore(p1, p2)
	saleStore := newFakeSaleStore()
	catalog := domain.NewCatalog([]domain.Product{p1, p2})
	cart := domain.NewCart()
	return productStore, saleStore, catalog, cart
}

func TestCheckoutRecordsSaleAndDecrementsStock(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	require.NoError(t, cart.SetQuantity(catalog.Get(1), 2))
	require.NoError(t, cart.SetQuantity(catalog.Get(2), 1))

	sale, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.NoError(t, err)

	assert.Equal(t, 25.0, sale.TotalAmount)
	assert.Equal(t, 15.0, sale.TotalCost)
	assert.Equal(t, 10.0, sale.Profit())
	require.Len(t, sale.Items, 2)

	assert.Equal(t, 3, productStore.stockWrites[1], "product 1 stock reduced by 2")
	assert.Equal(t, 3, productStore.stockWrites[2], "product 2 stock reduced by 1")

	assert.True(t, cart.IsEmpty(), "cart is cleared on success")
	assert.Equal(t, 3, catalog.Get(1).Stock, "catalog cache reconciled")
	assert.Equal(t, 3, catalog.Get(2).Stock)
}

func TestCheckoutEmptyCartIsNoOp(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	_, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, saleStore.sales, "no sale is created")
	assert.Empty(t, productStore.stockWrites)
}

func TestCheckoutRequiresOwner(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())
	require.NoError(t, cart.AddProduct(catalog.Get(1)))

	_, err := uc.Checkout(context.Background(), "", cart, catalog)
	require.Error(t, err)
	assert.Empty(t, saleStore.sales)
}

func TestCheckoutValidatesCartAgainstCurrentStock(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	require.NoError(t, cart.SetQuantity(catalog.Get(1), 3))
	// Another register sold out in the meantime.
	catalog.Get(1).Stock = 2

	_, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.ErrorIs(t, err, domain.ErrMaxStock)
	assert.Empty(t, saleStore.sales)
	assert.False(t, cart.IsEmpty(), "cart is kept on failure")
}

func TestCheckoutRejectsVanishedProduct(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	require.NoError(t, cart.AddProduct(catalog.Get(1)))
	catalog.Remove(1)

	_, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.Error(t, err)
	assert.Empty(t, saleStore.sales)
}

func TestCheckoutSubmitsSaleThenItemsThenStock(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	events := []string{}
	productStore.events = &events
	saleStore.events = &events
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	require.NoError(t, cart.SetQuantity(catalog.Get(1), 2))
	require.NoError(t, cart.SetQuantity(catalog.Get(2), 1))

	_, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, "sale", events[0])
	assert.Equal(t, "items", events[1])
	assert.ElementsMatch(t, []string{"stock:1", "stock:2"}, events[2:])
}

func TestCheckoutStockWriteFailureIsSkippedNotFatal(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	productStore.failStockFor[1] = true
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	require.NoError(t, cart.SetQuantity(catalog.Get(1), 2))
	require.NoError(t, cart.SetQuantity(catalog.Get(2), 1))

	sale, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.NoError(t, err, "the sale is still considered completed")
	assert.Equal(t, 25.0, sale.TotalAmount)

	_, wrote1 := productStore.stockWrites[1]
	assert.False(t, wrote1, "failed product is skipped")
	assert.Equal(t, 3, productStore.stockWrites[2], "remaining products still updated")
	assert.True(t, cart.IsEmpty())
}

func TestCheckoutSaleFailureAbortsBeforeStock(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	saleStore.saleErr = assert.AnError
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	require.NoError(t, cart.AddProduct(catalog.Get(1)))

	_, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.Error(t, err)
	assert.Empty(t, productStore.stockWrites)
	assert.False(t, cart.IsEmpty())
	assert.Equal(t, 5, catalog.Get(1).Stock, "catalog untouched on failure")
}

func TestCheckoutPrefersTransactionalStore(t *testing.T) {
	productStore, _, catalog, cart := checkoutFixture()
	txStore := &fakeTxSaleStore{fakeSaleStore: *newFakeSaleStore()}
	uc := NewCheckoutUseCase(txStore, productStore, testLogger())

	require.NoError(t, cart.SetQuantity(catalog.Get(1), 2))

	sale, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.NoError(t, err)

	assert.Equal(t, 1, txStore.txCalls, "atomic path is used when offered")
	assert.Empty(t, productStore.stockWrites, "no separate stock writes on the atomic path")
	assert.Equal(t, 20.0, sale.TotalAmount)
	assert.Equal(t, 3, catalog.Get(1).Stock, "catalog still reconciled locally")
}

func TestCheckoutStockClampedAtZero(t *testing.T) {
	productStore, saleStore, catalog, cart := checkoutFixture()
	uc := NewCheckoutUseCase(saleStore, productStore, testLogger())

	require.NoError(t, cart.SetQuantity(catalog.Get(2), 4))

	_, err := uc.Checkout(context.Background(), testOwner, cart, catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, productStore.stockWrites[2])
	assert.Equal(t, 0, catalog.Get(2).Stock)
}
