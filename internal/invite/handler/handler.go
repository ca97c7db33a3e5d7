// Package handler provides HTTP handlers for invite endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
	teamModel "github.com/festy23/squadup/internal/team/model"
)

// Engine is the subset of the lifecycle engine the invite handlers call.
type Engine interface {
	InviteMember(ctx context.Context, leaderID, invitedID string) (*inviteModel.Invite, error)
	AcceptInvite(ctx context.Context, invitedID, selector string) (*inviteModel.Invite, error)
	DeclineInvite(ctx context.Context, invitedID, selector string) (*inviteModel.Invite, error)
}

// Handler handles HTTP requests for invite endpoints.
type Handler struct {
	engine Engine
	logger *zap.SugaredLogger
}

// New creates a new invite handler instance.
func New(engine Engine, logger *zap.SugaredLogger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// InviteMember handles POST /team/invite request.
func (h *Handler) InviteMember(c *gin.Context) {
	var req inviteModel.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	inv, err := h.engine.InviteMember(c.Request.Context(), req.LeaderID, req.UserID)
	if err != nil {
		var cooldown *inviteModel.CooldownError
		switch {
		case errors.As(err, &cooldown):
			resp := ErrorResponse{}
			resp.Error.Code = "ON_COOLDOWN"
			resp.Error.Message = cooldown.Error()
			c.JSON(http.StatusBadRequest, gin.H{
				"error":               resp.Error,
				"retry_after_seconds": int(cooldown.Remaining / time.Second),
			})
		case errors.Is(err, teamModel.ErrNotLeader):
			errorResponse(c, "NOT_LEADER", "caller is not a team leader", http.StatusBadRequest)
		case errors.Is(err, inviteModel.ErrSelfInvite):
			errorResponse(c, "SELF_INVITE", "cannot invite yourself", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrAlreadyInTeam):
			errorResponse(c, "ALREADY_IN_TEAM", "user already belongs to a team", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrTeamFull):
			errorResponse(c, "TEAM_FULL", "team is at capacity", http.StatusBadRequest)
		case errors.Is(err, inviteModel.ErrInvitePending):
			errorResponse(c, "INVITE_PENDING", "an invite for this user is already pending", http.StatusBadRequest)
		default:
			h.logger.Errorw("error inviting member", "leader_id", req.LeaderID, "user_id", req.UserID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, map[string]interface{}{
		"invite": inviteModel.NewInviteResponse(inv),
	})
}

// AcceptInvite handles POST /invite/accept request.
func (h *Handler) AcceptInvite(c *gin.Context) {
	var req inviteModel.InviteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	inv, err := h.engine.AcceptInvite(c.Request.Context(), req.UserID, req.Team)
	if err != nil {
		switch {
		case errors.Is(err, inviteModel.ErrNoPendingInvite):
			errorResponse(c, "NO_PENDING_INVITE", "no pending invite", http.StatusNotFound)
		case errors.Is(err, teamModel.ErrAlreadyInTeam):
			errorResponse(c, "ALREADY_IN_TEAM", "user already belongs to a team", http.StatusBadRequest)
		case errors.Is(err, teamModel.ErrTeamFull):
			errorResponse(c, "TEAM_FULL", "team filled up before the invite was accepted", http.StatusBadRequest)
		default:
			h.logger.Errorw("error accepting invite", "user_id", req.UserID, "error", err)
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"invite": inviteModel.NewInviteResponse(inv),
	})
}

// DeclineInvite handles POST /invite/decline request.
func (h *Handler) DeclineInvite(c *gin.Context) {
	var req inviteModel.InviteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, "INVALID_REQUEST", "invalid request body", http.StatusBadRequest)
		return
	}

	inv, err := h.engine.DeclineInvite(c.Request.Context(), req.UserID, req.Team)
	if err != nil {
		if errors.Is(err, inviteModel.ErrNoPendingInvite) {
			errorResponse(c, "NO_PENDING_INVITE", "no pending invite", http.StatusNotFound)
			return
		}
		h.logger.Errorw("error declining invite", "user_id", req.UserID, "error", err)
		errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"invite": inviteModel.NewInviteResponse(inv),
	})
}
