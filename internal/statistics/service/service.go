// Package service provides business logic layer for the statistics module.
package service

import (
	inviteModel "github.com/festy23/squadup/internal/invite/model"
	statisticsModel "github.com/festy23/squadup/internal/statistics/model"
)

// Source exposes the counters the statistics surface reads.
type Source interface {
	Stats() (teams, members int, invitesByStatus map[inviteModel.Status]int)
}

// Service defines the interface for statistics operations.
type Service interface {
	// GetStats returns the current team/invite funnel counters.
	GetStats() *statisticsModel.StatsResponse
}

type service struct {
	source Source
}

// New creates a new statistics service instance.
func New(source Source) Service {
	return &service{source: source}
}

// GetStats returns the current team/invite funnel counters.
func (s *service) GetStats() *statisticsModel.StatsResponse {
	teams, members, byStatus := s.source.Stats()

	return &statisticsModel.StatsResponse{
		Teams:   teams,
		Members: members,
		Invites: statisticsModel.InviteStats{
			Pending:   byStatus[inviteModel.StatusPending],
			Accepted:  byStatus[inviteModel.StatusAccepted],
			Declined:  byStatus[inviteModel.StatusDeclined],
			Expired:   byStatus[inviteModel.StatusExpired],
			Cancelled: byStatus[inviteModel.StatusCancelled],
		},
	}
}
