// Package router provides team module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/squadup/internal/team/handler"
)

// RegisterRoutes registers team module routes.
func RegisterRoutes(r *gin.Engine, engine handler.Engine, logger *zap.SugaredLogger) {
	h := handler.New(engine, logger)

	r.POST("/team/create", h.CreateTeam)
	r.GET("/team/get", h.GetTeam)
	r.POST("/team/remove", h.RemoveMember)
	r.POST("/team/delete", h.DeleteTeam)
	r.POST("/team/leave", h.LeaveTeam)
	r.POST("/team/rename", h.RenameTeam)
}
