// Package model provides domain models and DTOs for the team module.
package model

import "time"

// ResourceRefs holds opaque handles to externally provisioned resources
// (channels, roles). The core stores them but never interprets them.
type ResourceRefs map[string]string

// Team represents a capacity-bounded group with exactly one leader.
// The team id equals the founding leader's id and never changes.
type Team struct {
	TeamID       string
	Name         string
	LeaderID     string
	Members      []string // leader always present and first
	CreatedAt    time.Time
	ResourceRefs ResourceRefs
}

// IsMember reports whether userID belongs to the team.
func (t *Team) IsMember(userID string) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the team.
func (t *Team) Clone() *Team {
	c := *t
	c.Members = append([]string(nil), t.Members...)
	if t.ResourceRefs != nil {
		c.ResourceRefs = make(ResourceRefs, len(t.ResourceRefs))
		for k, v := range t.ResourceRefs {
			c.ResourceRefs[k] = v
		}
	}
	return &c
}
