package model

import "time"

// CreateTeamRequest represents the request to create a team.
type CreateTeamRequest struct {
	LeaderID string `json:"leader_id" binding:"required"`
	TeamName string `json:"team_name" binding:"required"`
}

// MemberActionRequest represents a leader action against a member.
type MemberActionRequest struct {
	LeaderID string `json:"leader_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
}

// LeaderActionRequest represents a leader-only action (delete).
type LeaderActionRequest struct {
	LeaderID string `json:"leader_id" binding:"required"`
}

// LeaveTeamRequest represents a voluntary leave.
type LeaveTeamRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// RenameTeamRequest represents a team rename.
type RenameTeamRequest struct {
	LeaderID string `json:"leader_id" binding:"required"`
	TeamName string `json:"team_name" binding:"required"`
}

// TeamResponse represents a team in API responses.
type TeamResponse struct {
	TeamID    string    `json:"team_id"`
	TeamName  string    `json:"team_name"`
	LeaderID  string    `json:"leader_id"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTeamResponse builds a TeamResponse from a team.
func NewTeamResponse(t *Team) *TeamResponse {
	return &TeamResponse{
		TeamID:    t.TeamID,
		TeamName:  t.Name,
		LeaderID:  t.LeaderID,
		Members:   append([]string(nil), t.Members...),
		CreatedAt: t.CreatedAt,
	}
}
