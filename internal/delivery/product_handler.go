package delivery

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/middleware"
	"github.com/NEXESMISSION/mizeni/internal/usecase"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProductByID)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

type createProductRequest struct {
	Name              string  `json:"name"`
	SellingPrice      float64 `json:"selling_price"`
	CostPrice         float64 `json:"cost_price"`
	Stock             int     `json:"stock"`
	LowStockThreshold int     `json:"low_stock_threshold"`

	ImageFilename    string `json:"image_filename,omitempty"`
	ImageContentType string `json:"image_content_type,omitempty"`
	ImageBase64      string `json:"image_base64,omitempty"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	input := usecase.CreateProductInput{
		Name:              req.Name,
		SellingPrice:      req.SellingPrice,
		CostPrice:         req.CostPrice,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		ImageFilename:     req.ImageFilename,
		ImageContentType:  req.ImageContentType,
	}
	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid request body: image_base64 is not valid base64")
			return
		}
		input.ImageData = data
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), c.GetString(middleware.OwnerIDKey), input)
	if err != nil {
		h.log.Errorf("Failed to create product '%s': %v", req.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := c.DefaultQuery("filter", usecase.FilterAll)
	query := c.Query("q")

	products, err := h.useCase.ListProducts(c.Request.Context(), c.GetString(middleware.OwnerIDKey), filter, query)
	if err != nil {
		h.log.Errorf("Failed to list products (filter '%s'): %v", filter, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve products: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	catalog, err := h.useCase.LoadCatalog(c.Request.Context(), c.GetString(middleware.OwnerIDKey))
	if err != nil {
		h.log.Warnf("Failed to load catalog for product lookup %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve product: "+err.Error())
		return
	}
	product := catalog.Get(id)
	if product == nil {
		ErrorResponse(c, http.StatusNotFound, "Product not found")
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.log.Errorf("Failed to bind JSON for update product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(updates) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: no fields provided for update")
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), c.GetString(middleware.OwnerIDKey), id, updates)
	if err != nil {
		h.log.Errorf("Failed to update product ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), c.GetString(middleware.OwnerIDKey), id); err != nil {
		h.log.Errorf("Failed to delete product ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func parseIDParam(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return 0, false
	}
	return id, true
}
