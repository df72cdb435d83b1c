package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeProductStore is an in-memory ProductStore that records stock
// writes and can be told to fail them per product.
type fakeProductStore struct {
	products     map[int]domain.Product
	stockWrites  map[int]int
	failStockFor map[int]bool
	listErr      error
	events       *[]string
}

func newFakeProductStore(products ...domain.Product) *fakeProductStore {
	s := &fakeProductStore{
		products:     make(map[int]domain.Product),
		stockWrites:  make(map[int]int),
		failStockFor: make(map[int]bool),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) record(event string) {
	if s.events != nil {
		*s.events = append(*s.events, event)
	}
}

func (s *fakeProductStore) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	id := len(s.products) + 1
	product.ID = id
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	s.products[id] = *product
	return product, nil
}

func (s *fakeProductStore) GetProductByID(_ context.Context, _ string, id int) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d not found", id)
	}
	return &p, nil
}

func (s *fakeProductStore) UpdateProduct(_ context.Context, _ string, id int, updates map[string]interface{}) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d not found for update", id)
	}
	if name, ok := updates["name"].(string); ok {
		p.Name = name
	}
	if stock, ok := updates["stock"].(int); ok {
		p.Stock = stock
	}
	s.products[id] = p
	return &p, nil
}

func (s *fakeProductStore) UpdateStock(_ context.Context, _ string, id int, newStock int) error {
	if s.failStockFor[id] {
		return fmt.Errorf("backend returned status 500")
	}
	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product with id %d not found", id)
	}
	p.Stock = newStock
	s.products[id] = p
	s.stockWrites[id] = newStock
	s.record(fmt.Sprintf("stock:%d", id))
	return nil
}

func (s *fakeProductStore) DeleteProduct(_ context.Context, _ string, id int) error {
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product with id %d not found for deletion", id)
	}
	delete(s.products, id)
	return nil
}

func (s *fakeProductStore) ListProductsByOwner(_ context.Context, _ string) ([]domain.Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []domain.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

// fakeSaleStore implements the plain sequential SaleStore.
type fakeSaleStore struct {
	sales    []domain.Sale
	items    map[int][]domain.SaleItem
	itemsErr error
	saleErr  error
	events   *[]string
}

func newFakeSaleStore() *fakeSaleStore {
	return &fakeSaleStore{items: make(map[int][]domain.SaleItem)}
}

func (s *fakeSaleStore) record(event string) {
	if s.events != nil {
		*s.events = append(*s.events, event)
	}
}

func (s *fakeSaleStore) CreateSale(_ context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if s.saleErr != nil {
		return nil, s.saleErr
	}
	sale.ID = len(s.sales) + 1
	sale.CreatedAt = time.Now()
	s.sales = append(s.sales, *sale)
	s.record("sale")
	return sale, nil
}

func (s *fakeSaleStore) CreateSaleItems(_ context.Context, saleID int, items []domain.SaleItem) error {
	if s.itemsErr != nil {
		return s.itemsErr
	}
	s.items[saleID] = items
	s.record("items")
	return nil
}

func (s *fakeSaleStore) ListSalesByOwner(_ context.Context, _ string) ([]domain.Sale, error) {
	out := make([]domain.Sale, len(s.sales))
	copy(out, s.sales)
	for i := range out {
		out[i].Items = s.items[out[i].ID]
	}
	return out, nil
}

func (s *fakeSaleStore) DeleteSalesByOwner(_ context.Context, _ string) error {
	s.sales = nil
	s.items = make(map[int][]domain.SaleItem)
	return nil
}

// fakeTxSaleStore additionally offers the atomic checkout path.
type fakeTxSaleStore struct {
	fakeSaleStore
	txCalls int
}

func (s *fakeTxSaleStore) CreateSaleWithItems(_ context.Context, sale *domain.Sale, items []domain.SaleItem) (*domain.Sale, error) {
	s.txCalls++
	sale.ID = len(s.sales) + 1
	sale.CreatedAt = time.Now()
	sale.Items = items
	s.sales = append(s.sales, *sale)
	s.items[sale.ID] = items
	return sale, nil
}

// fakeStorage implements clients.StorageClient.
type fakeStorage struct {
	url string
	err error
}

func (s *fakeStorage) UploadProductImage(_ context.Context, _, _, _ string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}
