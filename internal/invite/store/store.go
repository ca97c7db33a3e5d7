// Package store provides the in-memory invite registry.
//
// The store guarantees at most one pending invite per (team, user) pair and
// that a terminal invite status never changes again. Multi-step atomicity is
// the lifecycle engine's job, via its per-invite critical sections.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
)

type pairKey struct {
	teamID    string
	invitedID string
}

// InviteStore maps invite ids to invite state.
type InviteStore struct {
	mu      sync.RWMutex
	invites map[string]*inviteModel.Invite
	pending map[pairKey]string // (team, user) -> pending invite id
	seq     map[string]int64   // creation order, tie-break for equal timestamps
	nextSeq int64
}

// New creates an empty invite store.
func New() *InviteStore {
	return &InviteStore{
		invites: make(map[string]*inviteModel.Invite),
		pending: make(map[pairKey]string),
		seq:     make(map[string]int64),
	}
}

// Create creates a pending invite for the (team, user) pair.
func (s *InviteStore) Create(teamID, leaderID, invitedID string, now time.Time) (*inviteModel.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{teamID: teamID, invitedID: invitedID}
	if _, ok := s.pending[key]; ok {
		return nil, inviteModel.ErrInvitePending
	}

	inv := &inviteModel.Invite{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		LeaderID:  leaderID,
		InvitedID: invitedID,
		Status:    inviteModel.StatusPending,
		CreatedAt: now,
	}
	s.invites[inv.ID] = inv
	s.pending[key] = inv.ID
	s.nextSeq++
	s.seq[inv.ID] = s.nextSeq

	return inv.Clone(), nil
}

// Get returns the invite with the given id.
func (s *InviteStore) Get(id string) (*inviteModel.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invites[id]
	if !ok {
		return nil, inviteModel.ErrInviteNotFound
	}
	return inv.Clone(), nil
}

// PendingForUser returns the invited user's pending invite. With a non-empty
// teamID only that team's invite matches; otherwise the most recently created
// pending invite wins, ties broken by creation order.
func (s *InviteStore) PendingForUser(invitedID, teamID string) (*inviteModel.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if teamID != "" {
		id, ok := s.pending[pairKey{teamID: teamID, invitedID: invitedID}]
		if !ok {
			return nil, inviteModel.ErrNoPendingInvite
		}
		return s.invites[id].Clone(), nil
	}

	var best *inviteModel.Invite
	for _, id := range s.pending {
		inv := s.invites[id]
		if inv.InvitedID != invitedID {
			continue
		}
		if best == nil || inv.CreatedAt.After(best.CreatedAt) ||
			(inv.CreatedAt.Equal(best.CreatedAt) && s.seq[inv.ID] > s.seq[best.ID]) {
			best = inv
		}
	}
	if best == nil {
		return nil, inviteModel.ErrNoPendingInvite
	}
	return best.Clone(), nil
}

// ActiveCooldown returns a declined invite for the pair whose cooldown is
// still running at the given time.
func (s *InviteStore) ActiveCooldown(teamID, invitedID string, now time.Time) (*inviteModel.Invite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *inviteModel.Invite
	for _, inv := range s.invites {
		if inv.TeamID != teamID || inv.InvitedID != invitedID {
			continue
		}
		if inv.Status != inviteModel.StatusDeclined || inv.DeclinedUntil == nil {
			continue
		}
		if !inv.DeclinedUntil.After(now) {
			continue
		}
		if best == nil || inv.DeclinedUntil.After(*best.DeclinedUntil) {
			best = inv
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Clone(), true
}

// Transition moves a pending invite to newStatus. It fails with
// ErrAlreadyTerminal when the invite has already left the pending state.
func (s *InviteStore) Transition(id string, newStatus inviteModel.Status, declinedUntil *time.Time) (*inviteModel.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[id]
	if !ok {
		return nil, inviteModel.ErrInviteNotFound
	}
	if inv.Status.Terminal() {
		return nil, inviteModel.ErrAlreadyTerminal
	}

	inv.Status = newStatus
	if declinedUntil != nil {
		u := *declinedUntil
		inv.DeclinedUntil = &u
	}
	delete(s.pending, pairKey{teamID: inv.TeamID, invitedID: inv.InvitedID})

	return inv.Clone(), nil
}

// Revert returns a just-transitioned invite to pending. It exists solely to
// undo a transition whose persistence failed, before the invite's lock is
// released.
func (s *InviteStore) Revert(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[id]
	if !ok {
		return
	}
	inv.Status = inviteModel.StatusPending
	inv.DeclinedUntil = nil
	s.pending[pairKey{teamID: inv.TeamID, invitedID: inv.InvitedID}] = id
}

// Remove deletes an invite outright. Used to undo a create whose
// persistence failed.
func (s *InviteStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[id]
	if !ok {
		return
	}
	if inv.Status == inviteModel.StatusPending {
		delete(s.pending, pairKey{teamID: inv.TeamID, invitedID: inv.InvitedID})
	}
	delete(s.invites, id)
	delete(s.seq, id)
}

// SetPromptRef attaches the rendered prompt handle.
func (s *InviteStore) SetPromptRef(id, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[id]
	if !ok {
		return inviteModel.ErrInviteNotFound
	}
	inv.PromptRef = ref
	return nil
}

// PendingOlderThan returns a snapshot of pending invites created at or
// before the cutoff.
func (s *InviteStore) PendingOlderThan(cutoff time.Time) []inviteModel.Invite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []inviteModel.Invite
	for _, id := range s.pending {
		inv := s.invites[id]
		if !inv.CreatedAt.After(cutoff) {
			stale = append(stale, *inv.Clone())
		}
	}
	return stale
}

// PendingForTeam returns a snapshot of the team's pending invites.
func (s *InviteStore) PendingForTeam(teamID string) []inviteModel.Invite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []inviteModel.Invite
	for key, id := range s.pending {
		if key.teamID == teamID {
			out = append(out, *s.invites[id].Clone())
		}
	}
	return out
}

// Snapshot returns deep copies of all invites, terminal ones included:
// declined invites must survive restarts while their cooldown runs.
func (s *InviteStore) Snapshot() []inviteModel.Invite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invites := make([]inviteModel.Invite, 0, len(s.invites))
	for _, inv := range s.invites {
		invites = append(invites, *inv.Clone())
	}
	return invites
}

// Load replaces the store contents, rebuilding the pending index. The slice
// order defines the creation-order tie-break, so callers should pass invites
// sorted by creation time ascending.
func (s *InviteStore) Load(invites []inviteModel.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newInvites := make(map[string]*inviteModel.Invite, len(invites))
	pending := make(map[pairKey]string)
	seq := make(map[string]int64, len(invites))
	var nextSeq int64

	for i := range invites {
		inv := invites[i].Clone()
		if !inv.Status.Valid() {
			return inviteModel.ErrInviteNotFound
		}
		if inv.Status == inviteModel.StatusPending {
			key := pairKey{teamID: inv.TeamID, invitedID: inv.InvitedID}
			if _, ok := pending[key]; ok {
				return inviteModel.ErrInvitePending
			}
			pending[key] = inv.ID
		}
		newInvites[inv.ID] = inv
		nextSeq++
		seq[inv.ID] = nextSeq
	}

	s.invites = newInvites
	s.pending = pending
	s.seq = seq
	s.nextSeq = nextSeq
	return nil
}

// CountByStatus returns the number of invites per status.
func (s *InviteStore) CountByStatus() map[inviteModel.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[inviteModel.Status]int)
	for _, inv := range s.invites {
		counts[inv.Status]++
	}
	return counts
}
