// Package scheduler drives invite expiry: a recurring sweep over all stale
// pending invites, plus a one-shot timer per invite armed at creation for
// tighter expiry precision. Both paths converge on the engine's expiry
// operations and are idempotent under double firing.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/squadup/internal/clock"
)

const sweepTimeout = 30 * time.Second

// Expirer is the subset of the lifecycle engine the scheduler calls.
type Expirer interface {
	ExpireStaleInvites(ctx context.Context) (int, error)
	ExpireInvite(ctx context.Context, inviteID string) error
}

// Scheduler owns the sweep timer and the per-invite one-shot timers.
type Scheduler struct {
	expirer  Expirer
	clock    clock.Clock
	interval time.Duration
	logger   *zap.SugaredLogger

	mu         sync.Mutex
	started    bool
	stopped    bool
	sweepTimer clock.Timer
	oneShots   map[string]clock.Timer
}

// New creates a scheduler sweeping every interval.
func New(expirer Expirer, clk clock.Clock, interval time.Duration, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		expirer:  expirer,
		clock:    clk,
		interval: interval,
		logger:   logger,
		oneShots: make(map[string]clock.Timer),
	}
}

// Start arms the recurring sweep.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.sweepTimer = s.clock.AfterFunc(s.interval, s.sweep)
}

// Stop cancels the sweep and all armed one-shot timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.sweepTimer != nil {
		s.sweepTimer.Stop()
		s.sweepTimer = nil
	}
	for id, t := range s.oneShots {
		t.Stop()
		delete(s.oneShots, id)
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	n, err := s.expirer.ExpireStaleInvites(ctx)
	cancel()
	if err != nil {
		s.logger.Errorw("expiry sweep failed", "expired", n, "error", err)
	} else if n > 0 {
		s.logger.Infow("expiry sweep", "expired", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.sweepTimer = s.clock.AfterFunc(s.interval, s.sweep)
}

// Arm schedules a one-shot expiry for the invite at the given instant.
// Re-arming the same invite replaces the previous timer.
func (s *Scheduler) Arm(inviteID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	if prev, ok := s.oneShots[inviteID]; ok {
		prev.Stop()
	}

	d := at.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	s.oneShots[inviteID] = s.clock.AfterFunc(d, func() {
		s.fire(inviteID)
	})
}

// Disarm cancels the invite's one-shot timer, if armed. Leaving a timer
// armed is harmless: expiry on a terminal invite is a no-op.
func (s *Scheduler) Disarm(inviteID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.oneShots[inviteID]; ok {
		t.Stop()
		delete(s.oneShots, inviteID)
	}
}

func (s *Scheduler) fire(inviteID string) {
	s.mu.Lock()
	delete(s.oneShots, inviteID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if err := s.expirer.ExpireInvite(ctx, inviteID); err != nil {
		s.logger.Errorw("one-shot expiry failed", "invite_id", inviteID, "error", err)
	}
}
