// Package store provides the in-memory team registry.
//
// The store keeps its own indexes consistent under an internal lock; the
// lifecycle engine layers per-team critical sections on top for operations
// that span several calls.
package store

import (
	"strings"
	"sync"
	"time"

	teamModel "github.com/festy23/squadup/internal/team/model"
)

// TeamStore maps team ids to team state and enforces the uniqueness and
// capacity invariants: case-insensitively unique names, a user in at most
// one team, and 1 <= |members| <= capacity.
type TeamStore struct {
	mu       sync.RWMutex
	capacity int
	teams    map[string]*teamModel.Team // by team id
	byName   map[string]string          // lower(name) -> team id
	byMember map[string]string          // user id -> team id
}

// New creates an empty team store with the given member capacity.
func New(capacity int) *TeamStore {
	return &TeamStore{
		capacity: capacity,
		teams:    make(map[string]*teamModel.Team),
		byName:   make(map[string]string),
		byMember: make(map[string]string),
	}
}

// Capacity returns the configured per-team member capacity.
func (s *TeamStore) Capacity() int {
	return s.capacity
}

// Create creates a team led by leaderID. The team id equals the leader id.
func (s *TeamStore) Create(leaderID, name string, now time.Time) (*teamModel.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byMember[leaderID]; ok {
		return nil, teamModel.ErrAlreadyInTeam
	}
	if _, ok := s.byName[strings.ToLower(name)]; ok {
		return nil, teamModel.ErrNameTaken
	}

	team := &teamModel.Team{
		TeamID:    leaderID,
		Name:      name,
		LeaderID:  leaderID,
		Members:   []string{leaderID},
		CreatedAt: now,
	}
	s.teams[team.TeamID] = team
	s.byName[strings.ToLower(name)] = team.TeamID
	s.byMember[leaderID] = team.TeamID

	return team.Clone(), nil
}

// ByID returns the team with the given id.
func (s *TeamStore) ByID(teamID string) (*teamModel.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[teamID]
	if !ok {
		return nil, teamModel.ErrTeamNotFound
	}
	return team.Clone(), nil
}

// ByLeader returns the team led by leaderID.
func (s *TeamStore) ByLeader(leaderID string) (*teamModel.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[leaderID]
	if !ok || team.LeaderID != leaderID {
		return nil, teamModel.ErrTeamNotFound
	}
	return team.Clone(), nil
}

// ByNameOrLeader resolves token first as a leader id, then as a
// case-insensitive team name.
func (s *TeamStore) ByNameOrLeader(token string) (*teamModel.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if team, ok := s.teams[token]; ok && team.LeaderID == token {
		return team.Clone(), nil
	}
	if id, ok := s.byName[strings.ToLower(token)]; ok {
		return s.teams[id].Clone(), nil
	}
	return nil, teamModel.ErrTeamNotFound
}

// TeamOfUser returns the team the user belongs to, if any.
func (s *TeamStore) TeamOfUser(userID string) (*teamModel.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byMember[userID]
	if !ok {
		return nil, false
	}
	return s.teams[id].Clone(), true
}

// AddMember appends userID to the team and returns the new member count.
// The capacity check and the append form one critical section.
func (s *TeamStore) AddMember(teamID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return 0, teamModel.ErrTeamNotFound
	}
	if _, ok := s.byMember[userID]; ok {
		return 0, teamModel.ErrAlreadyInTeam
	}
	if len(team.Members) >= s.capacity {
		return 0, teamModel.ErrTeamFull
	}

	team.Members = append(team.Members, userID)
	s.byMember[userID] = teamID
	return len(team.Members), nil
}

// RemoveMember removes userID from the team. Removing the leader is
// rejected; leader removal goes through Delete.
func (s *TeamStore) RemoveMember(teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return teamModel.ErrTeamNotFound
	}
	if userID == team.LeaderID {
		return teamModel.ErrCannotRemoveLeader
	}

	for i, m := range team.Members {
		if m == userID {
			team.Members = append(team.Members[:i], team.Members[i+1:]...)
			delete(s.byMember, userID)
			return nil
		}
	}
	return teamModel.ErrNotAMember
}

// Rename changes the team's name, keeping names unique case-insensitively
// across all other teams. It returns the previous name.
func (s *TeamStore) Rename(teamID, newName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return "", teamModel.ErrTeamNotFound
	}
	if id, ok := s.byName[strings.ToLower(newName)]; ok && id != teamID {
		return "", teamModel.ErrNameTaken
	}

	oldName := team.Name
	delete(s.byName, strings.ToLower(oldName))
	team.Name = newName
	s.byName[strings.ToLower(newName)] = teamID
	return oldName, nil
}

// SetResourceRefs attaches externally provisioned resource handles.
func (s *TeamStore) SetResourceRefs(teamID string, refs teamModel.ResourceRefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return teamModel.ErrTeamNotFound
	}
	team.ResourceRefs = refs
	return nil
}

// Delete removes the team. Only a leader-only team may be deleted.
// The removed team is returned so the caller can undo or tear down
// external resources.
func (s *TeamStore) Delete(teamID string) (*teamModel.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return nil, teamModel.ErrTeamNotFound
	}
	if len(team.Members) > 1 {
		return nil, teamModel.ErrTeamNotEmpty
	}

	delete(s.teams, teamID)
	delete(s.byName, strings.ToLower(team.Name))
	for _, m := range team.Members {
		delete(s.byMember, m)
	}
	return team, nil
}

// Restore re-inserts a previously deleted team. Used to undo a delete
// whose persistence failed.
func (s *TeamStore) Restore(team *teamModel.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := team.Clone()
	s.teams[c.TeamID] = c
	s.byName[strings.ToLower(c.Name)] = c.TeamID
	for _, m := range c.Members {
		s.byMember[m] = c.TeamID
	}
}

// Snapshot returns deep copies of all teams.
func (s *TeamStore) Snapshot() []teamModel.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := make([]teamModel.Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, *t.Clone())
	}
	return teams
}

// Load replaces the store contents with the given teams, rebuilding all
// indexes. Invalid snapshots (duplicate names or memberships) are rejected.
func (s *TeamStore) Load(teams []teamModel.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newTeams := make(map[string]*teamModel.Team, len(teams))
	byName := make(map[string]string, len(teams))
	byMember := make(map[string]string)

	for i := range teams {
		t := teams[i].Clone()
		if _, ok := newTeams[t.TeamID]; ok {
			return teamModel.ErrAlreadyInTeam
		}
		if _, ok := byName[strings.ToLower(t.Name)]; ok {
			return teamModel.ErrNameTaken
		}
		for _, m := range t.Members {
			if _, ok := byMember[m]; ok {
				return teamModel.ErrAlreadyInTeam
			}
			byMember[m] = t.TeamID
		}
		newTeams[t.TeamID] = t
		byName[strings.ToLower(t.Name)] = t.TeamID
	}

	s.teams = newTeams
	s.byName = byName
	s.byMember = byMember
	return nil
}

// Counts returns the number of teams and the total member count.
func (s *TeamStore) Counts() (teams, members int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teams), len(s.byMember)
}
