package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/clinic-api/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Users    *services.UserService
	Patients *services.PatientService
	store    Pinger
	log      zerolog.Logger
}

func NewHandler(users *services.UserService, patients *services.PatientService, store Pinger, log zerolog.Logger) *Handler {
	return &Handler{
		Users:    users,
		Patients: patients,
		store:    store,
		log:      log.With().Str("component", "http").Logger(),
	}
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

func (h *Handler) NotFound(c *gin.Context) {
	newErrorResponse(c, http.StatusNotFound, "Route not found")
}

// bind decodes the JSON body into dst, writing a 400 on failure.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err)
		newErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
