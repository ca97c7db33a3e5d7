// Package router provides invite module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/squadup/internal/invite/handler"
)

// RegisterRoutes registers invite module routes.
func RegisterRoutes(r *gin.Engine, engine handler.Engine, logger *zap.SugaredLogger) {
	h := handler.New(engine, logger)

	r.POST("/team/invite", h.InviteMember)
	r.POST("/invite/accept", h.AcceptInvite)
	r.POST("/invite/decline", h.DeclineInvite)
}
