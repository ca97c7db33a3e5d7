package snapshot

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
	teamModel "github.com/festy23/squadup/internal/team/model"
)

// Store persists the full team/invite state in a relational database.
type Store struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a snapshot store over the given database.
func New(db *gorm.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger}
}

// AutoMigrate creates the snapshot tables. Used for the sqlite backend;
// postgres schemas are applied through SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SquadRecord{}, &MemberRecord{}, &InviteRecord{})
}

// Save rewrites the whole snapshot in one transaction: the persisted state
// after Save is exactly the given teams and invites.
func (s *Store) Save(ctx context.Context, teams []teamModel.Team, invites []inviteModel.Invite) error {
	squadRecords := make([]SquadRecord, 0, len(teams))
	memberRecords := make([]MemberRecord, 0, len(teams))
	for i := range teams {
		rec, members, err := toSquadRecord(&teams[i])
		if err != nil {
			return fmt.Errorf("failed to encode team %s: %w", teams[i].TeamID, err)
		}
		squadRecords = append(squadRecords, rec)
		memberRecords = append(memberRecords, members...)
	}

	inviteRecords := make([]InviteRecord, 0, len(invites))
	for i := range invites {
		inviteRecords = append(inviteRecords, toInviteRecord(&invites[i]))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"squad_members", "squads", "invites"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		if len(squadRecords) > 0 {
			if err := tx.CreateInBatches(squadRecords, 100).Error; err != nil {
				return err
			}
		}
		if len(memberRecords) > 0 {
			if err := tx.CreateInBatches(memberRecords, 100).Error; err != nil {
				return err
			}
		}
		if len(inviteRecords) > 0 {
			if err := tx.CreateInBatches(inviteRecords, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.logger.Debugw("snapshot saved", "teams", len(squadRecords), "invites", len(inviteRecords))
	return nil
}

// Load reads the whole snapshot back. Invites are returned sorted by
// creation time ascending so the stores can reconstruct creation order.
func (s *Store) Load(ctx context.Context) ([]teamModel.Team, []inviteModel.Invite, error) {
	var squadRecords []SquadRecord
	if err := s.db.WithContext(ctx).Find(&squadRecords).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load squads: %w", err)
	}

	var memberRecords []MemberRecord
	if err := s.db.WithContext(ctx).
		Order("team_id ASC, position ASC").
		Find(&memberRecords).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load squad members: %w", err)
	}

	membersByTeam := make(map[string][]string)
	for _, m := range memberRecords {
		membersByTeam[m.TeamID] = append(membersByTeam[m.TeamID], m.UserID)
	}

	teams := make([]teamModel.Team, 0, len(squadRecords))
	for _, rec := range squadRecords {
		team, err := fromSquadRecord(rec, membersByTeam[rec.TeamID])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode team %s: %w", rec.TeamID, err)
		}
		teams = append(teams, team)
	}

	var inviteRecords []InviteRecord
	if err := s.db.WithContext(ctx).Find(&inviteRecords).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load invites: %w", err)
	}
	sort.Slice(inviteRecords, func(i, j int) bool {
		return inviteRecords[i].CreatedAt.Before(inviteRecords[j].CreatedAt)
	})

	invites := make([]inviteModel.Invite, 0, len(inviteRecords))
	for _, rec := range inviteRecords {
		invites = append(invites, fromInviteRecord(rec))
	}

	return teams, invites, nil
}
