package delivery

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/domain"
	"github.com/NEXESMISSION/mizeni/internal/middleware"
	"github.com/NEXESMISSION/mizeni/internal/usecase"
)

// session holds one owner's register state: the in-memory cart and the
// catalog cache it validates against. Sessions live only as long as the
// process; a restart starts every register empty.
type session struct {
	cart    *domain.Cart
	catalog *domain.Catalog
}

type CheckoutHandler struct {
	checkoutUC usecase.CheckoutUseCase
	productUC  usecase.ProductUseCase
	log        *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewCheckoutHandler(checkoutUC usecase.CheckoutUseCase, productUC usecase.ProductUseCase, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUC: checkoutUC,
		productUC:  productUC,
		log:        logger,
		sessions:   make(map[string]*session),
	}
}

func (h *CheckoutHandler) RegisterRoutes(router gin.IRouter) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:id", h.SetItemQuantity)
		cart.DELETE("/items/:id", h.RemoveItem)
		cart.POST("/refresh", h.RefreshCatalog)
	}
	router.POST("/checkout", h.Checkout)
}

// getSession returns the owner's register session, loading the catalog on
// first access. Callers must hold h.mu.
func (h *CheckoutHandler) getSession(c *gin.Context, ownerID string) (*session, error) {
	if s, ok := h.sessions[ownerID]; ok {
		return s, nil
	}
	catalog, err := h.productUC.LoadCatalog(c.Request.Context(), ownerID)
	if err != nil {
		return nil, err
	}
	s := &session{
		cart:    domain.NewCart(),
		catalog: catalog,
	}
	h.sessions[ownerID] = s
	return s, nil
}

type cartView struct {
	Lines     []domain.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	TotalCost float64           `json:"total_cost"`
}

func viewOf(cart *domain.Cart) cartView {
	return cartView{
		Lines:     cart.Lines(),
		Total:     cart.Total(),
		TotalCost: cart.TotalCost(),
	}
}

func (h *CheckoutHandler) GetCart(c *gin.Context) {
	ownerID := c.GetString(middleware.OwnerIDKey)

	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.getSession(c, ownerID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to load register session: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", viewOf(s.cart))
}

type addItemRequest struct {
	ProductID int `json:"product_id"`
}

func (h *CheckoutHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ProductID <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ownerID := c.GetString(middleware.OwnerIDKey)

	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.getSession(c, ownerID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to load register session: "+err.Error())
		return
	}

	product := s.catalog.Get(req.ProductID)
	if product == nil {
		ErrorResponse(c, http.StatusNotFound, "Product not found in catalog")
		return
	}
	if err := s.cart.AddProduct(product); err != nil {
		h.log.Warnf("Add to cart rejected for product %d: %v", req.ProductID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Could not add product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product added to cart", viewOf(s.cart))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CheckoutHandler) SetItemQuantity(c *gin.Context) {
	productID, ok := parseCartItemID(c)
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ownerID := c.GetString(middleware.OwnerIDKey)

	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.getSession(c, ownerID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to load register session: "+err.Error())
		return
	}

	product := s.catalog.Get(productID)
	if product == nil {
		ErrorResponse(c, http.StatusNotFound, "Product not found in catalog")
		return
	}
	if err := s.cart.SetQuantity(product, req.Quantity); err != nil {
		h.log.Warnf("Quantity edit rejected for product %d (wanted %d): %v", productID, req.Quantity, err)
		ErrorResponse(c, mapErrorToStatus(err), "Could not set quantity: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Cart updated", viewOf(s.cart))
}

func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseCartItemID(c)
	if !ok {
		return
	}

	ownerID := c.GetString(middleware.OwnerIDKey)

	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.getSession(c, ownerID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to load register session: "+err.Error())
		return
	}

	s.cart.RemoveProduct(productID)
	SuccessResponse(c, http.StatusOK, "Product removed from cart", viewOf(s.cart))
}

// RefreshCatalog re-fetches the owner's catalog cache from the store.
func (h *CheckoutHandler) RefreshCatalog(c *gin.Context) {
	ownerID := c.GetString(middleware.OwnerIDKey)

	catalog, err := h.productUC.LoadCatalog(c.Request.Context(), ownerID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to refresh catalog: "+err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[ownerID]
	if !ok {
		s = &session{cart: domain.NewCart()}
		h.sessions[ownerID] = s
	}
	s.catalog = catalog

	SuccessResponse(c, http.StatusOK, "Catalog refreshed", gin.H{"products": catalog.Len()})
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	ownerID := c.GetString(middleware.OwnerIDKey)

	h.mu.Lock()
	defer h.mu.Unlock()
	s, err := h.getSession(c, ownerID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to load register session: "+err.Error())
		return
	}

	sale, err := h.checkoutUC.Checkout(c.Request.Context(), ownerID, s.cart, s.catalog)
	if err != nil {
		h.log.Errorf("Checkout failed for owner %s: %v", ownerID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Checkout failed: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Sale completed successfully", sale)
}

func parseCartItemID(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return 0, false
	}
	return id, true
}
