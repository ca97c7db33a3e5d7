package model

import "errors"

var (
	// ErrTeamNotFound indicates that the requested team does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrNameTaken indicates that a team with the given name already exists.
	ErrNameTaken = errors.New("team name already taken")
	// ErrAlreadyInTeam indicates that the user already belongs to a team.
	ErrAlreadyInTeam = errors.New("user already in a team")
	// ErrTeamFull indicates that the team is at capacity.
	ErrTeamFull = errors.New("team is full")
	// ErrTeamNotEmpty indicates that the team still has members besides the leader.
	ErrTeamNotEmpty = errors.New("team is not empty")
	// ErrNotAMember indicates that the user is not a member of the team.
	ErrNotAMember = errors.New("user is not a member of the team")
	// ErrCannotRemoveLeader indicates an attempt to remove the leader from the member list.
	ErrCannotRemoveLeader = errors.New("cannot remove team leader")
	// ErrNotLeader indicates that the caller does not lead any team.
	ErrNotLeader = errors.New("caller is not a team leader")
	// ErrNotInTeam indicates that the user does not belong to any team.
	ErrNotInTeam = errors.New("user is not in a team")
	// ErrLeaderCannotLeave indicates that the leader must delete the team instead of leaving it.
	ErrLeaderCannotLeave = errors.New("leader cannot leave the team")
	// ErrCannotTargetSelf indicates that the leader targeted themselves.
	ErrCannotTargetSelf = errors.New("cannot target self")
	// ErrInvalidTeamName indicates that the provided team name is invalid (e.g., empty).
	ErrInvalidTeamName = errors.New("invalid team name")
)
