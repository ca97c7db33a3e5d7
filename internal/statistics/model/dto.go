// Package model provides DTOs for the statistics module.
package model

// InviteStats counts invites per lifecycle status.
type InviteStats struct {
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Declined  int `json:"declined"`
	Expired   int `json:"expired"`
	Cancelled int `json:"cancelled"`
}

// StatsResponse represents the response of GET /stats.
type StatsResponse struct {
	Teams   int         `json:"teams"`
	Members int         `json:"members"`
	Invites InviteStats `json:"invites"`
}
