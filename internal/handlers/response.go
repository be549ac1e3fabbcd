package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
	"github.com/harentsoaR/clinic-api/internal/store"
)

type errorResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Errors  []services.FieldError `json:"errors,omitempty"`
}

type successResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string, fields ...services.FieldError) {
	c.AbortWithStatusJSON(statusCode, errorResponse{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}

func newSuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, successResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// fail writes err using the route's client-error status for domain
// failures. Infrastructure failures never leak their message.
func (h *Handler) fail(c *gin.Context, err error, status int) {
	_ = c.Error(err)

	var derr *services.Error
	switch {
	case errors.As(err, &derr):
		if derr.Kind == services.KindUnauthenticated {
			status = http.StatusUnauthorized
		}
		newErrorResponse(c, status, derr.Message, derr.Fields...)
	case errors.Is(err, store.ErrNotConnected):
		newErrorResponse(c, http.StatusServiceUnavailable, "Service unavailable")
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		newErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
