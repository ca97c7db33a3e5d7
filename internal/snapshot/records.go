// Package snapshot persists the whole team/invite state through gorm. Save
// rewrites the full snapshot in one transaction; Load reconstructs it.
package snapshot

import (
	"encoding/json"
	"time"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
	teamModel "github.com/festy23/squadup/internal/team/model"
)

// SquadRecord is the persisted form of a team.
// Matches the squads table schema.
type SquadRecord struct {
	TeamID       string    `gorm:"primaryKey;column:team_id;type:varchar(255)"`
	TeamName     string    `gorm:"column:team_name;type:varchar(255);not null;uniqueIndex"`
	LeaderID     string    `gorm:"column:leader_id;type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	ResourceRefs string    `gorm:"column:resource_refs;type:text"`
}

// TableName specifies the table name for GORM.
func (SquadRecord) TableName() string {
	return "squads"
}

// MemberRecord is one row of a team's ordered member list.
type MemberRecord struct {
	TeamID   string `gorm:"primaryKey;column:team_id;type:varchar(255)"`
	UserID   string `gorm:"primaryKey;column:user_id;type:varchar(255)"`
	Position int    `gorm:"column:position;not null"`
}

// TableName specifies the table name for GORM.
func (MemberRecord) TableName() string {
	return "squad_members"
}

// InviteRecord is the persisted form of an invite.
type InviteRecord struct {
	ID            string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	TeamID        string     `gorm:"column:team_id;type:varchar(255);not null;index"`
	LeaderID      string     `gorm:"column:leader_id;type:varchar(255);not null"`
	InvitedID     string     `gorm:"column:invited_id;type:varchar(255);not null;index"`
	Status        string     `gorm:"column:status;type:varchar(16);not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	DeclinedUntil *time.Time `gorm:"column:declined_until"`
	PromptRef     string     `gorm:"column:prompt_ref;type:varchar(255)"`
}

// TableName specifies the table name for GORM.
func (InviteRecord) TableName() string {
	return "invites"
}

func toSquadRecord(t *teamModel.Team) (SquadRecord, []MemberRecord, error) {
	refs := ""
	if len(t.ResourceRefs) > 0 {
		raw, err := json.Marshal(t.ResourceRefs)
		if err != nil {
			return SquadRecord{}, nil, err
		}
		refs = string(raw)
	}

	members := make([]MemberRecord, 0, len(t.Members))
	for i, m := range t.Members {
		members = append(members, MemberRecord{TeamID: t.TeamID, UserID: m, Position: i})
	}

	return SquadRecord{
		TeamID:       t.TeamID,
		TeamName:     t.Name,
		LeaderID:     t.LeaderID,
		CreatedAt:    t.CreatedAt,
		ResourceRefs: refs,
	}, members, nil
}

func fromSquadRecord(r SquadRecord, members []string) (teamModel.Team, error) {
	var refs teamModel.ResourceRefs
	if r.ResourceRefs != "" {
		if err := json.Unmarshal([]byte(r.ResourceRefs), &refs); err != nil {
			return teamModel.Team{}, err
		}
	}
	return teamModel.Team{
		TeamID:       r.TeamID,
		Name:         r.TeamName,
		LeaderID:     r.LeaderID,
		Members:      members,
		CreatedAt:    r.CreatedAt,
		ResourceRefs: refs,
	}, nil
}

func toInviteRecord(i *inviteModel.Invite) InviteRecord {
	rec := InviteRecord{
		ID:        i.ID,
		TeamID:    i.TeamID,
		LeaderID:  i.LeaderID,
		InvitedID: i.InvitedID,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt,
		PromptRef: i.PromptRef,
	}
	if i.DeclinedUntil != nil {
		u := *i.DeclinedUntil
		rec.DeclinedUntil = &u
	}
	return rec
}

func fromInviteRecord(r InviteRecord) inviteModel.Invite {
	inv := inviteModel.Invite{
		ID:        r.ID,
		TeamID:    r.TeamID,
		LeaderID:  r.LeaderID,
		InvitedID: r.InvitedID,
		Status:    inviteModel.Status(r.Status),
		CreatedAt: r.CreatedAt,
		PromptRef: r.PromptRef,
	}
	if r.DeclinedUntil != nil {
		u := *r.DeclinedUntil
		inv.DeclinedUntil = &u
	}
	return inv
}
