// Package model provides domain models and DTOs for the invite module.
package model

import "time"

// Status is the lifecycle state of an invite.
type Status string

// Invite statuses. Pending is the only non-terminal state.
const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final. A terminal status never
// changes again.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Invite is a proposal for a user to join a team.
type Invite struct {
	ID        string
	TeamID    string
	LeaderID  string // leader at time of issuance
	InvitedID string
	Status    Status
	CreatedAt time.Time
	// DeclinedUntil is set on decline paths; the same team may not
	// re-invite the user until it has passed.
	DeclinedUntil *time.Time
	// PromptRef is the opaque presentation handle for the rendered prompt.
	PromptRef string
}

// Clone returns a deep copy of the invite.
func (i *Invite) Clone() *Invite {
	c := *i
	if i.DeclinedUntil != nil {
		u := *i.DeclinedUntil
		c.DeclinedUntil = &u
	}
	return &c
}
