package delivery

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/NEXESMISSION/mizeni/internal/domain"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	if errors.Is(err, domain.ErrMaxStock) {
		return http.StatusConflict
	}
	if errors.Is(err, domain.ErrEmptyCart) {
		return http.StatusBadRequest
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "no longer available") {
		return http.StatusNotFound
	}
	if strings.Contains(errMsg, "authenticated user required") || strings.Contains(errMsg, "session token") {
		return http.StatusUnauthorized
	}
	if strings.Contains(errMsg, "already exists") || strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint") {
		return http.StatusConflict
	}
	if strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "cannot be empty") ||
		strings.Contains(errMsg, "cannot be negative") || strings.Contains(errMsg, "must be a non-negative") ||
		strings.Contains(errMsg, "constraint violation") || strings.Contains(errMsg, "unknown") {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
