package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"webapp/internal/errors"
)

// Pinger checks that the database answers.
type Pinger func(ctx context.Context) error

// HealthHandler reports database reachability.
type HealthHandler struct {
	ping Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ping Pinger) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// HealthResponse is returned while the database is reachable.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	if err := h.ping(c.Request().Context()); err != nil {
		return respondError(errors.ErrDatabaseUnavailable)
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Database: "reachable"})
}
