package config

import (
	"fmt"
	"time"
)

// RosterConfig holds team and invite lifecycle configuration.
type RosterConfig struct {
	// Capacity is the maximum number of members per team, leader included.
	Capacity int
	// InviteTTL is how long an invite may stay pending before it expires.
	InviteTTL time.Duration
	// DeclineCooldown is how long a declined user cannot be re-invited by the same team.
	DeclineCooldown time.Duration
	// SweepInterval is the period of the background expiry sweep.
	SweepInterval time.Duration
}

// LoadRosterConfigFromEnv loads roster configuration from environment variables.
func LoadRosterConfigFromEnv() RosterConfig {
	return RosterConfig{
		Capacity:        GetEnvInt("ROSTER_CAPACITY", 4),
		InviteTTL:       GetEnvDuration("INVITE_TTL", 24*time.Hour),
		DeclineCooldown: GetEnvDuration("DECLINE_COOLDOWN", 24*time.Hour),
		SweepInterval:   GetEnvDuration("SWEEP_INTERVAL", 30*time.Minute),
	}
}

// Validate validates roster configuration.
func (c RosterConfig) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("Capacity must be at least 1")
	}
	if c.InviteTTL <= 0 {
		return fmt.Errorf("InviteTTL must be greater than 0")
	}
	if c.DeclineCooldown <= 0 {
		return fmt.Errorf("DeclineCooldown must be greater than 0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SweepInterval must be greater than 0")
	}
	return nil
}
