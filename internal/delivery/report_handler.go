package delivery

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/internal/middleware"
	"github.com/NEXESMISSION/mizeni/internal/usecase"
)

type ReportHandler struct {
	useCase usecase.ReportUseCase
	log     *logrus.Logger
}

func NewReportHandler(uc usecase.ReportUseCase, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ReportHandler) RegisterRoutes(router gin.IRouter) {
	sales := router.Group("/sales")
	{
		sales.GET("", h.ListSales)
		sales.DELETE("", h.ClearHistory)
	}
	router.GET("/reports", h.SalesReport)
}

func (h *ReportHandler) ListSales(c *gin.Context) {
	sales, err := h.useCase.ListSales(c.Request.Context(), c.GetString(middleware.OwnerIDKey))
	if err != nil {
		h.log.Errorf("Failed to list sales: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve sales history: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Sales history retrieved successfully", sales)
}

func (h *ReportHandler) ClearHistory(c *gin.Context) {
	if err := h.useCase.ClearHistory(c.Request.Context(), c.GetString(middleware.OwnerIDKey)); err != nil {
		h.log.Errorf("Failed to clear sales history: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to clear sales history: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Sales history cleared successfully", nil)
}

func (h *ReportHandler) SalesReport(c *gin.Context) {
	period := c.DefaultQuery("period", usecase.PeriodToday)

	report, err := h.useCase.SalesReport(c.Request.Context(), c.GetString(middleware.OwnerIDKey), period, time.Now())
	if err != nil {
		h.log.Errorf("Failed to build sales report for period '%s': %v", period, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to build report: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Report generated successfully", report)
}
