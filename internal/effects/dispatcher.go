package effects

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	inviteModel "github.com/festy23/squadup/internal/invite/model"
	teamModel "github.com/festy23/squadup/internal/team/model"
	"github.com/festy23/squadup/pkg/retry"
)

const (
	defaultQueueSize  = 256
	defaultJobTimeout = 10 * time.Second
)

type job struct {
	name string
	fn   func(ctx context.Context) error
}

// Dispatcher queues side-effect requests and executes them on a worker
// goroutine, outside any engine critical section. Jobs are retried a few
// times with backoff; a job that still fails is logged and dropped.
type Dispatcher struct {
	access    AccessSync
	notifier  Notifier
	presenter Presenter
	logger    *zap.SugaredLogger

	retryCfg   retry.Config
	jobTimeout time.Duration

	jobs chan job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a dispatcher over the given adapters.
func NewDispatcher(access AccessSync, notifier Notifier, presenter Presenter, logger *zap.SugaredLogger) *Dispatcher {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.InitialDelay = 200 * time.Millisecond
	cfg.MaxDelay = 2 * time.Second

	return &Dispatcher{
		access:     access,
		notifier:   notifier,
		presenter:  presenter,
		logger:     logger,
		retryCfg:   cfg,
		jobTimeout: defaultJobTimeout,
		jobs:       make(chan job, defaultQueueSize),
	}
}

// Start launches the worker goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.execute(j)
	}
}

func (d *Dispatcher) execute(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	if err := retry.Do(ctx, d.retryCfg, func() error { return j.fn(ctx) }); err != nil {
		d.logger.Errorw("side effect failed", "effect", j.name, "error", err)
	}
}

// enqueue never blocks the caller: when the queue is full the job is
// dropped and logged, keeping the engine's commit path unblocked.
func (d *Dispatcher) enqueue(name string, fn func(ctx context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warnw("side effect dropped, dispatcher closed", "effect", name)
		return
	}
	select {
	case d.jobs <- job{name: name, fn: fn}:
	default:
		d.logger.Errorw("side effect dropped, queue full", "effect", name)
	}
}

// GrantAccess requests channel access for a new member.
func (d *Dispatcher) GrantAccess(team *teamModel.Team, userID string) {
	d.enqueue("grant_access", func(ctx context.Context) error {
		return d.access.GrantAccess(ctx, team, userID)
	})
}

// RevokeAccess requests channel access removal for a departed member.
func (d *Dispatcher) RevokeAccess(team *teamModel.Team, userID string) {
	d.enqueue("revoke_access", func(ctx context.Context) error {
		return d.access.RevokeAccess(ctx, team, userID)
	})
}

// ProvisionResources requests external resource creation; attach receives
// the handles once provisioning succeeds.
func (d *Dispatcher) ProvisionResources(team *teamModel.Team, attach func(teamModel.ResourceRefs)) {
	d.enqueue("provision_resources", func(ctx context.Context) error {
		refs, err := d.access.ProvisionResources(ctx, team)
		if err != nil {
			return err
		}
		if attach != nil {
			attach(refs)
		}
		return nil
	})
}

// RenameResources requests external resource rename.
func (d *Dispatcher) RenameResources(team *teamModel.Team) {
	d.enqueue("rename_resources", func(ctx context.Context) error {
		return d.access.RenameResources(ctx, team)
	})
}

// TeardownResources requests external resource removal.
func (d *Dispatcher) TeardownResources(team *teamModel.Team) {
	d.enqueue("teardown_resources", func(ctx context.Context) error {
		return d.access.TeardownResources(ctx, team)
	})
}

// NotifyUser requests a fire-and-forget user notification.
func (d *Dispatcher) NotifyUser(userID, message string) {
	d.enqueue("notify_user", func(ctx context.Context) error {
		return d.notifier.NotifyUser(ctx, userID, message)
	})
}

// RenderInvitePrompt requests rendering of a fresh invite prompt; attach
// receives the presentation handle.
func (d *Dispatcher) RenderInvitePrompt(invite *inviteModel.Invite, attach func(string)) {
	d.enqueue("render_invite_prompt", func(ctx context.Context) error {
		handle, err := d.presenter.RenderInvitePrompt(ctx, invite)
		if err != nil {
			return err
		}
		if attach != nil {
			attach(handle)
		}
		return nil
	})
}

// UpdatePresentation requests a prompt rewrite with the given status text.
func (d *Dispatcher) UpdatePresentation(invite *inviteModel.Invite, statusText string) {
	d.enqueue("update_presentation", func(ctx context.Context) error {
		return d.presenter.UpdatePresentation(ctx, invite, statusText)
	})
}

// ClearPresentation requests prompt removal.
func (d *Dispatcher) ClearPresentation(invite *inviteModel.Invite) {
	d.enqueue("clear_presentation", func(ctx context.Context) error {
		return d.presenter.ClearPresentation(ctx, invite)
	})
}
