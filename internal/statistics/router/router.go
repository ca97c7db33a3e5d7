// Package router provides statistics module routes registration.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/festy23/squadup/internal/statistics/handler"
	"github.com/festy23/squadup/internal/statistics/service"
)

// RegisterRoutes registers statistics module routes.
func RegisterRoutes(r *gin.Engine, source service.Source) {
	svc := service.New(source)
	h := handler.New(svc)

	r.GET("/stats", h.GetStats)
}
