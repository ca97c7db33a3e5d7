// Package handler provides HTTP handlers for team endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	teamModel "github.com/festy23/squadup/internal/team/model"
)

// Engine is the subset of the lifecycle engine the team handlers call.
type Engine interface {
	CreateTeam(ctx context.Context, leaderID, name string) (*teamModel.Team, error)
	GetTeam(ctx context.Context, token string) (*teamModel.Team, error)
	RemoveMember(ctx context.Context, leaderID, targetID string) error
	DeleteTeam(ctx context.Context, leaderID string) error
	LeaveTeam(ctx context.Context, userID string) error
	RenameTeam(ctx context.Context, leaderID, newName string) (*teamModel.Team, error)
}

// Handler handles HTTP requests for team endpoints.
type Handler struct {
	engine Engine
	logger *zap.SugaredLogger
}

// New creates a new team handler instance.
func New(engine Engine, logger *zap.SugaredLogger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// CreateTeam handles POST /team/create request.
func (h *Handler) CreateTeam(c *gin.Context) {
	var req teamModel.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	team, err := h.engine.CreateTeam(c.Request.Context(), req.LeaderID, req.TeamName)
	if err != nil {
		switch {
		case errors.Is(err, teamModel.ErrNameTaken):
			errorResponse(c, "NAME_TAKEN", "team name already taken", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrAlreadyInTeam):
			errorResponse(c, "ALREADY_IN_TEAM", "user already belongs to a team", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrInvalidTeamName):
			errorResponse(c, "INVALID_REQUEST", "team_name is invalid", http.StatusBadRequest)
		default:
			h.logger.Errorw("error creating team", "leader_id", req.LeaderID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"team": teamModel.NewTeamResponse(team),
	})
}

// GetTeam handles GET /team/get request. The team query parameter is
// matched as a leader id first, then as a case-insensitive team name.
func (h *Handler) GetTeam(c *gin.Context) {
	token := c.Query("team")
	if token == "" {
		errorResponse(c, "INVALID_REQUEST", "team parameter is required", http.StatusBadRequest)
		return
	}

	team, err := h.engine.GetTeam(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, teamModel.ErrTeamNotFound) {
			notFoundResponse(c, "team not found")
			return
		}
		h.logger.Errorw("error getting team", "team", token, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, teamModel.NewTeamResponse(team))
}

// RemoveMember handles POST /team/remove request.
func (h *Handler) RemoveMember(c *gin.Context) {
	var req teamModel.MemberActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.engine.RemoveMember(c.Request.Context(), req.LeaderID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, teamModel.ErrNotLeader):
			errorResponse(c, "NOT_LEADER", "caller is not a team leader", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrCannotTargetSelf):
			errorResponse(c, "CANNOT_TARGET_SELF", "delete the team to remove yourself", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrNotAMember):
			errorResponse(c, "NOT_A_MEMBER", "user is not a member of the team", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrCannotRemoveLeader):
			errorResponse(c, "CANNOT_TARGET_SELF", "delete the team to remove yourself", http.StatusBadRequest)
		default:
			h.logger.Errorw("error removing member", "leader_id", req.LeaderID, "user_id", req.UserID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": req.UserID})
}

// DeleteTeam handles POST /team/delete request.
func (h *Handler) DeleteTeam(c *gin.Context) {
	var req teamModel.LeaderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.engine.DeleteTeam(c.Request.Context(), req.LeaderID)
	if err != nil {
		switch {
		case errors.Is(err, teamModel.ErrNotLeader):
			errorResponse(c, "NOT_LEADER", "caller is not a team leader", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrTeamNotEmpty):
			errorResponse(c, "TEAM_NOT_EMPTY", "remove all members before deleting the team", http.StatusBadRequest)
		default:
			h.logger.Errorw("error deleting team", "leader_id", req.LeaderID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": req.LeaderID})
}

// LeaveTeam handles POST /team/leave request.
func (h *Handler) LeaveTeam(c *gin.Context) {
	var req teamModel.LeaveTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.engine.LeaveTeam(c.Request.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, teamModel.ErrNotInTeam):
			errorResponse(c, "NOT_IN_TEAM", "user is not in a team", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrLeaderCannotLeave):
			errorResponse(c, "LEADER_CANNOT_LEAVE", "delete the team instead of leaving it", http.StatusBadRequest)
		default:
			h.logger.Errorw("error leaving team", "user_id", req.UserID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"left": req.UserID})
}

// RenameTeam handles POST /team/rename request.
func (h *Handler) RenameTeam(c *gin.Context) {
	var req teamModel.RenameTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	team, err := h.engine.RenameTeam(c.Request.Context(), req.LeaderID, req.TeamName)
	if err != nil {
		switch {
		case errors.Is(err, teamModel.ErrNotLeader):
			errorResponse(c, "NOT_LEADER", "caller is not a team leader", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrNameTaken):
			errorResponse(c, "NAME_TAKEN", "team name already taken", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrInvalidTeamName):
			errorResponse(c, "INVALID_REQUEST", "team_name is invalid", http.StatusBadRequest)
		default:
			h.logger.Errorw("error renaming team", "leader_id", req.LeaderID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"team": teamModel.NewTeamResponse(team),
	})
}
