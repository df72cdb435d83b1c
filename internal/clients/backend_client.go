package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

// BackendRESTClient talks to a Supabase-style (PostgREST) data API. It
// implements both domain.ProductStore and domain.SaleStore. Row filtering
// uses the PostgREST query syntax (owner_id=eq.<uuid>), and writes request
// the created representation back via the Prefer header.
type BackendRESTClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

var _ domain.ProductStore = (*BackendRESTClient)(nil)
var _ domain.SaleStore = (*BackendRESTClient)(nil)

func NewBackendRESTClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *BackendRESTClient {
	return &BackendRESTClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

func (c *BackendRESTClient) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}
	return req, nil
}

func (c *BackendRESTClient) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("BackendClient: Failed to execute %s %s: %v", req.Method, req.URL.Path, err)
		return fmt.Errorf("failed to communicate with backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("backend resource not found")
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.log.Errorf("BackendClient: %s %s rejected with status %d (check API key / row policies)", req.Method, req.URL.Path, resp.StatusCode)
		return fmt.Errorf("backend rejected request with status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.log.Errorf("BackendClient: %s %s failed with status %d. Response body: %s", req.Method, req.URL.Path, resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Errorf("BackendClient: Failed to decode response for %s %s: %v", req.Method, req.URL.Path, err)
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

func ownerFilter(ownerID string) url.Values {
	q := url.Values{}
	q.Set("owner_id", "eq."+ownerID)
	return q
}

func (c *BackendRESTClient) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "products", nil, product)
	if err != nil {
		return nil, err
	}

	var created []domain.Product
	if err := c.do(req, &created); err != nil {
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("backend returned no representation for created product")
	}
	c.log.Infof("BackendClient: Product created with ID %d, Name '%s'", created[0].ID, created[0].Name)
	return &created[0], nil
}

func (c *BackendRESTClient) GetProductByID(ctx context.Context, ownerID string, id int) (*domain.Product, error) {
	q := ownerFilter(ownerID)
	q.Set("id", fmt.Sprintf("eq.%d", id))

	req, err := c.newRequest(ctx, http.MethodGet, "products", q, nil)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := c.do(req, &products); err != nil {
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	if len(products) == 0 {
		c.log.Warnf("BackendClient: Product with ID %d not found for owner %s", id, ownerID)
		return nil, fmt.Errorf("product with id %d not found", id)
	}
	return &products[0], nil
}

func (c *BackendRESTClient) UpdateProduct(ctx context.Context, ownerID string, id int, updates map[string]interface{}) (*domain.Product, error) {
	if len(updates) == 0 {
		return c.GetProductByID(ctx, ownerID, id)
	}
	q := ownerFilter(ownerID)
	q.Set("id", fmt.Sprintf("eq.%d", id))

	req, err := c.newRequest(ctx, http.MethodPatch, "products", q, updates)
	if err != nil {
		return nil, err
	}

	var updated []domain.Product
	if err := c.do(req, &updated); err != nil {
		return nil, fmt.Errorf("could not update product: %w", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("product with id %d not found for update", id)
	}
	c.log.Infof("BackendClient: Product %d updated (%d fields)", id, len(updates))
	return &updated[0], nil
}

// UpdateStock persists a new absolute stock figure. This is a plain
// read-then-write from the caller's perspective; two concurrent checkouts
// can race here and the last write wins.
func (c *BackendRESTClient) UpdateStock(ctx context.Context, ownerID string, id int, newStock int) error {
	if newStock < 0 {
		c.log.Errorf("BackendClient: Attempted to set negative stock (%d) for product ID %d", newStock, id)
		return fmt.Errorf("stock cannot be negative")
	}
	_, err := c.UpdateProduct(ctx, ownerID, id, map[string]interface{}{"stock": newStock})
	if err != nil {
		return fmt.Errorf("could not update stock for product %d: %w", id, err)
	}
	c.log.Infof("BackendClient: Stock for product %d set to %d", id, newStock)
	return nil
}

func (c *BackendRESTClient) DeleteProduct(ctx context.Context, ownerID string, id int) error {
	q := ownerFilter(ownerID)
	q.Set("id", fmt.Sprintf("eq.%d", id))

	req, err := c.newRequest(ctx, http.MethodDelete, "products", q, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("could not delete product %d: %w", id, err)
	}
	c.log.Infof("BackendClient: Product %d deleted", id)
	return nil
}

func (c *BackendRESTClient) ListProductsByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	q := ownerFilter(ownerID)
	q.Set("order", "created_at.desc")

	req, err := c.newRequest(ctx, http.MethodGet, "products", q, nil)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := c.do(req, &products); err != nil {
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	c.log.Infof("BackendClient: Retrieved %d products for owner %s", len(products), ownerID)
	return products, nil
}

type saleRecord struct {
	ID          int     `json:"id,omitempty"`
	OwnerID     string  `json:"owner_id"`
	TotalAmount float64 `json:"total_amount"`
	TotalCost   float64 `json:"total_cost"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

func (c *BackendRESTClient) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	record := saleRecord{
		OwnerID:     sale.OwnerID,
		TotalAmount: sale.TotalAmount,
		TotalCost:   sale.TotalCost,
	}
	req, err := c.newRequest(ctx, http.MethodPost, "sales", nil, record)
	if err != nil {
		return nil, err
	}

	var created []domain.Sale
	if err := c.do(req, &created); err != nil {
		return nil, fmt.Errorf("could not create sale: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("backend returned no representation for created sale")
	}
	c.log.Infof("BackendClient: Sale created with ID %d for owner %s", created[0].ID, created[0].OwnerID)
	return &created[0], nil
}

type saleItemRecord struct {
	SaleID      int     `json:"sale_id"`
	ProductID   int     `json:"product_id"`
	Quantity    int     `json:"quantity"`
	PriceAtSale float64 `json:"price_at_sale"`
	CostAtSale  float64 `json:"cost_at_sale"`
}

func (c *BackendRESTClient) CreateSaleItems(ctx context.Context, saleID int, items []domain.SaleItem) error {
	records := make([]saleItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, saleItemRecord{
			SaleID:      saleID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
			CostAtSale:  item.CostAtSale,
		})
	}

	req, err := c.newRequest(ctx, http.MethodPost, "sale_items", nil, records)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("could not create sale items for sale %d: %w", saleID, err)
	}
	c.log.Infof("BackendClient: %d sale items recorded for sale %d", len(records), saleID)
	return nil
}

func (c *BackendRESTClient) ListSalesByOwner(ctx context.Context, ownerID string) ([]domain.Sale, error) {
	q := ownerFilter(ownerID)
	// Embed the line items in one round trip via a PostgREST resource
	// embedding select.
	q.Set("select", "*,items:sale_items(product_id,quantity,price_at_sale,cost_at_sale)")
	q.Set("order", "created_at.desc")

	req, err := c.newRequest(ctx, http.MethodGet, "sales", q, nil)
	if err != nil {
		return nil, err
	}

	var sales []domain.Sale
	if err := c.do(req, &sales); err != nil {
		return nil, fmt.Errorf("could not list sales: %w", err)
	}
	for i := range sales {
		if sales[i].Items == nil {
			sales[i].Items = []domain.SaleItem{}
		}
	}
	c.log.Infof("BackendClient: Retrieved %d sales for owner %s", len(sales), ownerID)
	return sales, nil
}

// DeleteSalesByOwner clears the owner's whole history. Sale items go with
// their sales through the backend's cascading delete.
func (c *BackendRESTClient) DeleteSalesByOwner(ctx context.Context, ownerID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "sales", ownerFilter(ownerID), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("could not clear sales history: %w", err)
	}
	c.log.Infof("BackendClient: Sales history cleared for owner %s", ownerID)
	return nil
}
