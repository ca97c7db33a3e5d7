// Package engine implements the team/invite lifecycle state machine. It is
// the sole authority allowed to mutate team membership or invite status:
// every mutating operation runs inside a per-team and/or per-invite critical
// section, persists the committed state before releasing its locks, and only
// then emits side-effect requests.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/squadup/internal/clock"
	inviteModel "github.com/festy23/squadup/internal/invite/model"
	inviteStore "github.com/festy23/squadup/internal/invite/store"
	teamModel "github.com/festy23/squadup/internal/team/model"
	teamStore "github.com/festy23/squadup/internal/team/store"
)

// Persister stores and restores the whole team/invite state. Save is called
// after every committed mutation, while the engine still holds the relevant
// locks; its failure fails the triggering operation.
type Persister interface {
	Load(ctx context.Context) ([]teamModel.Team, []inviteModel.Invite, error)
	Save(ctx context.Context, teams []teamModel.Team, invites []inviteModel.Invite) error
}

// Effects receives side-effect requests after state commit. Implementations
// must not block; failures are their own concern and never surface here.
type Effects interface {
	GrantAccess(team *teamModel.Team, userID string)
	RevokeAccess(team *teamModel.Team, userID string)
	ProvisionResources(team *teamModel.Team, attach func(teamModel.ResourceRefs))
	RenameResources(team *teamModel.Team)
	TeardownResources(team *teamModel.Team)
	NotifyUser(userID, message string)
	RenderInvitePrompt(invite *inviteModel.Invite, attach func(string))
	UpdatePresentation(invite *inviteModel.Invite, statusText string)
	ClearPresentation(invite *inviteModel.Invite)
}

// Config holds the lifecycle knobs.
type Config struct {
	// Capacity is the maximum number of members per team, leader included.
	Capacity int
	// InviteTTL is how long an invite may stay pending.
	InviteTTL time.Duration
	// DeclineCooldown is how long a decline blocks re-invitation.
	DeclineCooldown time.Duration
}

const maxNameLength = 255

// Engine is the invite lifecycle engine.
type Engine struct {
	teams   *teamStore.TeamStore
	invites *inviteStore.InviteStore

	persister Persister
	effects   Effects
	clock     clock.Clock
	logger    *zap.SugaredLogger
	cfg       Config

	// Lock order is fixed: a team lock is always taken before an invite
	// lock, never the other way around.
	teamLocks   *keyedMutex
	inviteLocks *keyedMutex

	// saveMu serializes snapshot capture and write. Operations on
	// different teams hold disjoint locks, so without it an older
	// snapshot could commit after a newer one and erase a mutation
	// already reported successful.
	saveMu sync.Mutex

	// armExpiry/disarmExpiry, when set, manage the one-shot expiry timer
	// per pending invite.
	armExpiry    func(inviteID string, at time.Time)
	disarmExpiry func(inviteID string)
}

// New creates a lifecycle engine over the given stores and collaborators.
func New(
	teams *teamStore.TeamStore,
	invites *inviteStore.InviteStore,
	persister Persister,
	effects Effects,
	clk clock.Clock,
	logger *zap.SugaredLogger,
	cfg Config,
) *Engine {
	return &Engine{
		teams:       teams,
		invites:     invites,
		persister:   persister,
		effects:     effects,
		clock:       clk,
		logger:      logger,
		cfg:         cfg,
		teamLocks:   newKeyedMutex(),
		inviteLocks: newKeyedMutex(),
	}
}

// SetExpiryTimers installs the one-shot expiry hooks: arm for each fresh
// invite, disarm when an invite goes terminal. Must be called before the
// engine starts serving operations (and before Restore, so loaded pending
// invites get their timers back).
func (e *Engine) SetExpiryTimers(arm func(inviteID string, at time.Time), disarm func(inviteID string)) {
	e.armExpiry = arm
	e.disarmExpiry = disarm
}

func (e *Engine) dropExpiryTimer(inviteID string) {
	if e.disarmExpiry != nil {
		e.disarmExpiry(inviteID)
	}
}

// Restore loads the persisted snapshot into the stores and re-arms the
// one-shot expiry timers of the pending invites it brings back.
func (e *Engine) Restore(ctx context.Context) error {
	teams, invites, err := e.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := e.teams.Load(teams); err != nil {
		return fmt.Errorf("failed to restore teams: %w", err)
	}
	if err := e.invites.Load(invites); err != nil {
		return fmt.Errorf("failed to restore invites: %w", err)
	}
	if e.armExpiry != nil {
		for i := range invites {
			if invites[i].Status == inviteModel.StatusPending {
				e.armExpiry(invites[i].ID, invites[i].CreatedAt.Add(e.cfg.InviteTTL))
			}
		}
	}
	return nil
}

// persist saves the whole state. Callers hold the locks covering the
// mutation they just made; saveMu keeps capture and write atomic across
// operations on unrelated teams.
func (e *Engine) persist(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if err := e.persister.Save(ctx, e.teams.Snapshot(), e.invites.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return teamModel.ErrInvalidTeamName
	}
	return nil
}

// CreateTeam creates a team led by leaderID and requests resource
// provisioning for it.
func (e *Engine) CreateTeam(ctx context.Context, leaderID, name string) (*teamModel.Team, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	// Team id equals leader id, so the future team's lock is known up front.
	e.teamLocks.lock(leaderID)
	defer e.teamLocks.unlock(leaderID)

	team, err := e.teams.Create(leaderID, name, e.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := e.persist(ctx); err != nil {
		if _, delErr := e.teams.Delete(team.TeamID); delErr != nil {
			e.logger.Errorw("failed to undo team create", "team_id", team.TeamID, "error", delErr)
		}
		return nil, err
	}

	e.effects.ProvisionResources(team.Clone(), func(refs teamModel.ResourceRefs) {
		e.attachResourceRefs(team.TeamID, refs)
	})

	return team, nil
}

// attachResourceRefs records provisioned resource handles. The refs are
// optional state, so a persistence failure here is logged, not rolled back.
func (e *Engine) attachResourceRefs(teamID string, refs teamModel.ResourceRefs) {
	e.teamLocks.lock(teamID)
	defer e.teamLocks.unlock(teamID)

	if err := e.teams.SetResourceRefs(teamID, refs); err != nil {
		return // team deleted in the meantime
	}
	if err := e.persist(context.Background()); err != nil {
		e.logger.Errorw("failed to persist resource refs", "team_id", teamID, "error", err)
	}
}

// GetTeam resolves token as a leader id, then as a case-insensitive name.
func (e *Engine) GetTeam(_ context.Context, token string) (*teamModel.Team, error) {
	return e.teams.ByNameOrLeader(token)
}

// InviteMember creates a pending invite from the caller's team to invitedID.
func (e *Engine) InviteMember(ctx context.Context, leaderID, invitedID string) (*inviteModel.Invite, error) {
	team, err := e.teams.ByLeader(leaderID)
	if err != nil {
		return nil, teamModel.ErrNotLeader
	}
	if invitedID == leaderID {
		return nil, inviteModel.ErrSelfInvite
	}

	e.teamLocks.lock(team.TeamID)
	defer e.teamLocks.unlock(team.TeamID)

	// Re-resolve under the lock: the team may have been deleted.
	team, err = e.teams.ByLeader(leaderID)
	if err != nil {
		return nil, teamModel.ErrNotLeader
	}
	if _, inTeam := e.teams.TeamOfUser(invitedID); inTeam {
		return nil, teamModel.ErrAlreadyInTeam
	}
	if len(team.Members) >= e.cfg.Capacity {
		return nil, teamModel.ErrTeamFull
	}

	now := e.clock.Now()
	if cd, active := e.invites.ActiveCooldown(team.TeamID, invitedID, now); active {
		return nil, &inviteModel.CooldownError{Remaining: cd.DeclinedUntil.Sub(now)}
	}

	inv, err := e.invites.Create(team.TeamID, leaderID, invitedID, now)
	if err != nil {
		return nil, err
	}
	if err := e.persist(ctx); err != nil {
		e.invites.Remove(inv.ID)
		return nil, err
	}

	e.effects.RenderInvitePrompt(inv.Clone(), func(handle string) {
		e.attachPromptRef(inv.ID, handle)
	})
	if e.armExpiry != nil {
		e.armExpiry(inv.ID, inv.CreatedAt.Add(e.cfg.InviteTTL))
	}

	return inv, nil
}

// attachPromptRef records the rendered prompt handle, best-effort.
func (e *Engine) attachPromptRef(inviteID, handle string) {
	e.inviteLocks.lock(inviteID)
	defer e.inviteLocks.unlock(inviteID)

	if err := e.invites.SetPromptRef(inviteID, handle); err != nil {
		return
	}
	if err := e.persist(context.Background()); err != nil {
		e.logger.Errorw("failed to persist prompt ref", "invite_id", inviteID, "error", err)
	}
}

// resolvePending finds the invited user's pending invite. A selector narrows
// the lookup to one team, matched as a leader id or case-insensitive name.
func (e *Engine) resolvePending(invitedID, selector string) (*inviteModel.Invite, error) {
	teamID := ""
	if selector != "" {
		team, err := e.teams.ByNameOrLeader(selector)
		if err != nil {
			return nil, inviteModel.ErrNoPendingInvite
		}
		teamID = team.TeamID
	}
	return e.invites.PendingForUser(invitedID, teamID)
}

// AcceptInvite resolves the user's pending invite and joins them to the
// team. Racing accepts serialize on the team and invite locks: the loser
// observes a terminal invite and fails with ErrNoPendingInvite.
func (e *Engine) AcceptInvite(ctx context.Context, invitedID, selector string) (*inviteModel.Invite, error) {
	inv, err := e.resolvePending(invitedID, selector)
	if err != nil {
		return nil, err
	}

	e.teamLocks.lock(inv.TeamID)
	defer e.teamLocks.unlock(inv.TeamID)
	e.inviteLocks.lock(inv.ID)
	defer e.inviteLocks.unlock(inv.ID)

	// Re-read under the locks; the invite may have expired, been cancelled,
	// or been accepted by a racing call in the meantime.
	inv, err = e.invites.Get(inv.ID)
	if err != nil || inv.Status != inviteModel.StatusPending {
		return nil, inviteModel.ErrNoPendingInvite
	}

	// Joined another team since the invite was issued: the invite dies
	// (no cooldown; the user did not reject this team).
	if _, inTeam := e.teams.TeamOfUser(invitedID); inTeam {
		return nil, e.declineStaleInvite(ctx, inv.ID)
	}

	team, err := e.teams.ByID(inv.TeamID)
	if err != nil {
		return nil, inviteModel.ErrNoPendingInvite
	}

	// Team filled up before the user answered: decline with a cooldown so
	// the leader cannot spam re-invites at a full team.
	if len(team.Members) >= e.cfg.Capacity {
		until := e.clock.Now().Add(e.cfg.DeclineCooldown)
		declined, terr := e.invites.Transition(inv.ID, inviteModel.StatusDeclined, &until)
		if terr != nil {
			return nil, inviteModel.ErrNoPendingInvite
		}
		if perr := e.persist(ctx); perr != nil {
			e.invites.Revert(inv.ID)
			return nil, perr
		}
		e.dropExpiryTimer(inv.ID)
		e.effects.NotifyUser(team.LeaderID,
			fmt.Sprintf("%s tried to join %q, but the team is full", invitedID, team.Name))
		e.effects.UpdatePresentation(declined, "declined")
		return nil, teamModel.ErrTeamFull
	}

	count, err := e.teams.AddMember(team.TeamID, invitedID)
	if err != nil {
		// Racing accepts on invites from different teams hold disjoint
		// team locks, so both can pass the membership check above; the
		// loser lands here and its invite dies the same way.
		if errors.Is(err, teamModel.ErrAlreadyInTeam) {
			return nil, e.declineStaleInvite(ctx, inv.ID)
		}
		return nil, err
	}
	accepted, err := e.invites.Transition(inv.ID, inviteModel.StatusAccepted, nil)
	if err != nil {
		if rerr := e.teams.RemoveMember(team.TeamID, invitedID); rerr != nil {
			e.logger.Errorw("failed to undo member add", "team_id", team.TeamID, "user_id", invitedID, "error", rerr)
		}
		return nil, inviteModel.ErrNoPendingInvite
	}
	if err := e.persist(ctx); err != nil {
		e.invites.Revert(inv.ID)
		if rerr := e.teams.RemoveMember(team.TeamID, invitedID); rerr != nil {
			e.logger.Errorw("failed to undo member add", "team_id", team.TeamID, "user_id", invitedID, "error", rerr)
		}
		return nil, err
	}

	e.dropExpiryTimer(inv.ID)
	e.effects.GrantAccess(team.Clone(), invitedID)
	e.effects.NotifyUser(team.LeaderID,
		fmt.Sprintf("%s joined %q (%d/%d members)", invitedID, team.Name, count, e.cfg.Capacity))
	e.effects.UpdatePresentation(accepted, "accepted")

	return accepted, nil
}

// declineStaleInvite kills a pending invite whose invitee already belongs to
// a team. No cooldown is recorded; the user did not reject this team. Always
// returns an error for the caller to propagate.
func (e *Engine) declineStaleInvite(ctx context.Context, inviteID string) error {
	declined, err := e.invites.Transition(inviteID, inviteModel.StatusDeclined, nil)
	if err != nil {
		return inviteModel.ErrNoPendingInvite
	}
	if perr := e.persist(ctx); perr != nil {
		e.invites.Revert(inviteID)
		return perr
	}
	e.dropExpiryTimer(inviteID)
	e.effects.UpdatePresentation(declined, "declined")
	return teamModel.ErrAlreadyInTeam
}

// DeclineInvite resolves the user's pending invite and declines it, starting
// the re-invite cooldown for the (team, user) pair.
func (e *Engine) DeclineInvite(ctx context.Context, invitedID, selector string) (*inviteModel.Invite, error) {
	inv, err := e.resolvePending(invitedID, selector)
	if err != nil {
		return nil, err
	}

	e.teamLocks.lock(inv.TeamID)
	defer e.teamLocks.unlock(inv.TeamID)
	e.inviteLocks.lock(inv.ID)
	defer e.inviteLocks.unlock(inv.ID)

	inv, err = e.invites.Get(inv.ID)
	if err != nil || inv.Status != inviteModel.StatusPending {
		return nil, inviteModel.ErrNoPendingInvite
	}

	until := e.clock.Now().Add(e.cfg.DeclineCooldown)
	declined, err := e.invites.Transition(inv.ID, inviteModel.StatusDeclined, &until)
	if err != nil {
		return nil, inviteModel.ErrNoPendingInvite
	}
	if err := e.persist(ctx); err != nil {
		e.invites.Revert(inv.ID)
		return nil, err
	}

	e.dropExpiryTimer(inv.ID)
	e.effects.NotifyUser(inv.LeaderID, fmt.Sprintf("%s declined the invite", invitedID))
	e.effects.UpdatePresentation(declined, "declined")

	return declined, nil
}

// RemoveMember removes targetID from the caller's team.
func (e *Engine) RemoveMember(ctx context.Context, leaderID, targetID string) error {
	team, err := e.teams.ByLeader(leaderID)
	if err != nil {
		return teamModel.ErrNotLeader
	}
	if targetID == leaderID {
		return teamModel.ErrCannotTargetSelf
	}

	e.teamLocks.lock(team.TeamID)
	defer e.teamLocks.unlock(team.TeamID)

	team, err = e.teams.ByLeader(leaderID)
	if err != nil {
		return teamModel.ErrNotLeader
	}
	if err := e.teams.RemoveMember(team.TeamID, targetID); err != nil {
		return err
	}
	if err := e.persist(ctx); err != nil {
		if _, aerr := e.teams.AddMember(team.TeamID, targetID); aerr != nil {
			e.logger.Errorw("failed to undo member remove", "team_id", team.TeamID, "user_id", targetID, "error", aerr)
		}
		return err
	}

	e.effects.RevokeAccess(team.Clone(), targetID)
	return nil
}

// LeaveTeam removes the caller from their team. The leader cannot leave;
// they delete the team instead.
func (e *Engine) LeaveTeam(ctx context.Context, userID string) error {
	team, ok := e.teams.TeamOfUser(userID)
	if !ok {
		return teamModel.ErrNotInTeam
	}
	if team.LeaderID == userID {
		return teamModel.ErrLeaderCannotLeave
	}

	e.teamLocks.lock(team.TeamID)
	defer e.teamLocks.unlock(team.TeamID)

	team, ok = e.teams.TeamOfUser(userID)
	if !ok {
		return teamModel.ErrNotInTeam
	}
	if err := e.teams.RemoveMember(team.TeamID, userID); err != nil {
		return teamModel.ErrNotInTeam
	}
	if err := e.persist(ctx); err != nil {
		if _, aerr := e.teams.AddMember(team.TeamID, userID); aerr != nil {
			e.logger.Errorw("failed to undo leave", "team_id", team.TeamID, "user_id", userID, "error", aerr)
		}
		return err
	}

	e.effects.RevokeAccess(team.Clone(), userID)
	e.effects.NotifyUser(team.LeaderID, fmt.Sprintf("%s left %q", userID, team.Name))
	return nil
}

// RenameTeam renames the caller's team.
func (e *Engine) RenameTeam(ctx context.Context, leaderID, newName string) (*teamModel.Team, error) {
	if err := validateName(newName); err != nil {
		return nil, err
	}
	team, err := e.teams.ByLeader(leaderID)
	if err != nil {
		return nil, teamModel.ErrNotLeader
	}

	e.teamLocks.lock(team.TeamID)
	defer e.teamLocks.unlock(team.TeamID)

	team, err = e.teams.ByLeader(leaderID)
	if err != nil {
		return nil, teamModel.ErrNotLeader
	}
	oldName, err := e.teams.Rename(team.TeamID, newName)
	if err != nil {
		return nil, err
	}
	if err := e.persist(ctx); err != nil {
		if _, rerr := e.teams.Rename(team.TeamID, oldName); rerr != nil {
			e.logger.Errorw("failed to undo rename", "team_id", team.TeamID, "error", rerr)
		}
		return nil, err
	}

	renamed, err := e.teams.ByID(team.TeamID)
	if err != nil {
		return nil, err
	}
	e.effects.RenameResources(renamed.Clone())
	return renamed, nil
}

// DeleteTeam deletes the caller's leader-only team, cancelling all of its
// pending invites.
func (e *Engine) DeleteTeam(ctx context.Context, leaderID string) error {
	team, err := e.teams.ByLeader(leaderID)
	if err != nil {
		return teamModel.ErrNotLeader
	}

	e.teamLocks.lock(team.TeamID)
	defer e.teamLocks.unlock(team.TeamID)

	team, err = e.teams.ByLeader(leaderID)
	if err != nil {
		return teamModel.ErrNotLeader
	}
	if len(team.Members) > 1 {
		return teamModel.ErrTeamNotEmpty
	}

	var cancelled []*inviteModel.Invite
	for _, pending := range e.invites.PendingForTeam(team.TeamID) {
		e.inviteLocks.lock(pending.ID)
		inv, terr := e.invites.Transition(pending.ID, inviteModel.StatusCancelled, nil)
		e.inviteLocks.unlock(pending.ID)
		if terr != nil {
			continue // raced with accept/decline/expiry; already terminal
		}
		cancelled = append(cancelled, inv)
	}

	deleted, err := e.teams.Delete(team.TeamID)
	if err != nil {
		for _, inv := range cancelled {
			e.invites.Revert(inv.ID)
		}
		return err
	}
	if err := e.persist(ctx); err != nil {
		e.teams.Restore(deleted)
		for _, inv := range cancelled {
			e.invites.Revert(inv.ID)
		}
		return err
	}

	for _, inv := range cancelled {
		e.dropExpiryTimer(inv.ID)
		e.effects.UpdatePresentation(inv, "cancelled")
	}
	e.effects.TeardownResources(deleted.Clone())
	return nil
}

// ExpireStaleInvites transitions every invite pending longer than the TTL to
// expired. Safe to run repeatedly: already-terminal invites are skipped.
func (e *Engine) ExpireStaleInvites(ctx context.Context) (int, error) {
	cutoff := e.clock.Now().Add(-e.cfg.InviteTTL)

	expired := 0
	var lastErr error
	for _, stale := range e.invites.PendingOlderThan(cutoff) {
		if err := e.expireOne(ctx, stale.ID); err != nil {
			lastErr = err
			continue
		}
		expired++
	}
	return expired, lastErr
}

// ExpireInvite expires a single invite once its TTL has passed. It is the
// target of one-shot timers and is idempotent under double firing.
func (e *Engine) ExpireInvite(ctx context.Context, inviteID string) error {
	inv, err := e.invites.Get(inviteID)
	if err != nil || inv.Status.Terminal() {
		return nil // already handled
	}
	if e.clock.Now().Before(inv.CreatedAt.Add(e.cfg.InviteTTL)) {
		return nil // fired early; the sweep will catch it later
	}
	return e.expireOne(ctx, inviteID)
}

func (e *Engine) expireOne(ctx context.Context, inviteID string) error {
	e.inviteLocks.lock(inviteID)
	defer e.inviteLocks.unlock(inviteID)

	expired, err := e.invites.Transition(inviteID, inviteModel.StatusExpired, nil)
	if err != nil {
		return nil // raced with accept/decline/cancel; already handled
	}
	if err := e.persist(ctx); err != nil {
		e.invites.Revert(inviteID)
		return err
	}

	e.dropExpiryTimer(inviteID)
	e.effects.UpdatePresentation(expired, "expired")
	return nil
}

// Stats reports team and invite counters for the statistics surface.
func (e *Engine) Stats() (teams, members int, invitesByStatus map[inviteModel.Status]int) {
	teams, members = e.teams.Counts()
	return teams, members, e.invites.CountByStatus()
}
