package model

import "time"

// InviteMemberRequest represents a leader inviting a user.
type InviteMemberRequest struct {
	LeaderID string `json:"leader_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
}

// InviteActionRequest represents the invitee accepting or declining.
// Team optionally selects which invite when several are pending: it is
// matched as a leader id first, then as a case-insensitive team name.
type InviteActionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Team   string `json:"team,omitempty"`
}

// InviteResponse represents an invite in API responses.
type InviteResponse struct {
	ID            string     `json:"id"`
	TeamID        string     `json:"team_id"`
	LeaderID      string     `json:"leader_id"`
	InvitedID     string     `json:"invited_id"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	DeclinedUntil *time.Time `json:"declined_until,omitempty"`
}

// NewInviteResponse builds an InviteResponse from an invite.
func NewInviteResponse(i *Invite) *InviteResponse {
	resp := &InviteResponse{
		ID:        i.ID,
		TeamID:    i.TeamID,
		LeaderID:  i.LeaderID,
		InvitedID: i.InvitedID,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
	}
	if i.DeclinedUntil != nil {
		u := *i.DeclinedUntil
		resp.DeclinedUntil = &u
	}
	return resp
}
