// Package handler provides HTTP handlers for statistics endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/festy23/squadup/internal/statistics/service"
)

// Handler handles HTTP requests for statistics endpoints.
type Handler struct {
	service service.Service
}

// New creates a new statistics handler instance.
func New(svc service.Service) *Handler {
	return &Handler{service: svc}
}

// GetStats handles GET /stats request.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetStats())
}
