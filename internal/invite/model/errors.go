package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInviteNotFound indicates that the requested invite does not exist.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrNoPendingInvite indicates that no pending invite matched the lookup.
	ErrNoPendingInvite = errors.New("no pending invite")
	// ErrAlreadyTerminal indicates a transition attempt on a non-pending invite.
	ErrAlreadyTerminal = errors.New("invite already in a terminal state")
	// ErrInvitePending indicates that a pending invite already exists for the pair.
	ErrInvitePending = errors.New("invite already pending for this user")
	// ErrSelfInvite indicates that a leader tried to invite themselves.
	ErrSelfInvite = errors.New("cannot invite yourself")
	// ErrOnCooldown indicates that the user declined recently and cannot be
	// re-invited by the same team yet. Returned errors carry the remaining
	// duration via CooldownError.
	ErrOnCooldown = errors.New("user is on invite cooldown")
)

// CooldownError reports how long until the team may re-invite the user.
// It matches ErrOnCooldown under errors.Is.
type CooldownError struct {
	Remaining time.Duration
}

// Error implements the error interface.
func (e *CooldownError) Error() string {
	return fmt.Sprintf("user is on invite cooldown for another %s", e.Remaining.Round(time.Second))
}

// Is makes errors.Is(err, ErrOnCooldown) succeed for CooldownError values.
func (e *CooldownError) Is(target error) bool {
	return target == ErrOnCooldown
}
