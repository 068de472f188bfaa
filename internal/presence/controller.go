package presence

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/italolelis/spotdl_exporter/internal/content"
	"github.com/italolelis/spotdl_exporter/internal/logctx"
	"github.com/italolelis/spotdl_exporter/internal/retry"
	"github.com/italolelis/spotdl_exporter/internal/telemetry"
)

// Host is the part of the host UI the controller reconciles against.
type Host interface {
	CurrentPath() string
	HasContainer() bool
	HasTrigger() bool
	MountTrigger() error
	UnmountTrigger()
}

// State tracks whether the trigger is mounted for the current location.
type State int

const (
	StateAbsent State = iota
	StateInjecting
	StatePresent
)

func (s State) String() string {
	switch s {
	case StateInjecting:
		return "injecting"
	case StatePresent:
		return "present"
	default:
		return "absent"
	}
}

// Controller keeps exactly one trigger mounted while the host shows a
// playlist or track, and none otherwise. All state is owned by the Run loop.
type Controller struct {
	host      Host
	clock     clockwork.Clock
	policy    retry.Policy
	telemetry *telemetry.Telemetry

	state    State
	attempts int
	timer    clockwork.Timer
}

func NewController(host Host, clock clockwork.Clock, policy retry.Policy, tel *telemetry.Telemetry) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Controller{
		host:      host,
		clock:     clock,
		policy:    policy,
		telemetry: tel,
	}
}

// Run reconciles the current location, then reacts to navigations and
// structural changes until ctx is done or a channel is closed.
func (c *Controller) Run(ctx context.Context, navigations <-chan string, mutations <-chan struct{}) error {
	logger := logctx.LoggerFromContext(ctx).With("component", "presence")
	ctx = logctx.WithLogger(ctx, logger)

	defer c.cancelRetry()

	logger.InfoContext(ctx, "starting presence controller",
		"retry_mode", c.policy.Mode,
		"retry_interval", c.policy.Initial.String(),
		"max_attempts", c.policy.MaxAttempts,
	)

	c.handleNavigation(ctx, c.host.CurrentPath())

	for {
		var retryC <-chan time.Time
		if c.timer != nil {
			retryC = c.timer.Chan()
		}

		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "stopping presence controller")

			return nil
		case path, ok := <-navigations:
			if !ok {
				return nil
			}

			c.handleNavigation(ctx, path)
		case _, ok := <-mutations:
			if !ok {
				return nil
			}

			c.handleMutation(ctx)
		case <-retryC:
			c.timer = nil
			c.handleRetry(ctx)
		}
	}
}

func (c *Controller) handleNavigation(ctx context.Context, path string) {
	logger := logctx.LoggerFromContext(ctx)

	c.cancelRetry()

	if !content.IsApplicable(path) {
		if c.host.HasTrigger() {
			c.host.UnmountTrigger()
			c.telemetry.RecordPresenceMount("unmounted")
			logger.DebugContext(ctx, "trigger removed", "path", path)
		}

		c.state = StateAbsent

		return
	}

	c.state = StateAbsent
	c.ensure(ctx)
}

func (c *Controller) handleMutation(ctx context.Context) {
	if !content.IsApplicable(c.host.CurrentPath()) {
		if c.host.HasTrigger() {
			c.host.UnmountTrigger()
			c.telemetry.RecordPresenceMount("unmounted")
		}

		c.cancelRetry()
		c.state = StateAbsent

		return
	}

	c.ensure(ctx)
}

func (c *Controller) handleRetry(ctx context.Context) {
	logger := logctx.LoggerFromContext(ctx)

	if c.state != StateInjecting {
		return
	}

	if !content.IsApplicable(c.host.CurrentPath()) {
		c.state = StateAbsent

		return
	}

	if c.host.HasTrigger() {
		c.state = StatePresent

		return
	}

	c.attempts++

	if c.host.HasContainer() && c.mount(ctx) {
		return
	}

	if c.policy.Exhausted(c.attempts) {
		logger.WarnContext(ctx, "action bar never appeared, giving up",
			"path", c.host.CurrentPath(),
			"attempts", c.attempts,
		)
		c.telemetry.RecordPresenceMount("gave_up")
		c.state = StateAbsent

		return
	}

	c.schedule(c.policy.Delay(c.attempts + 1))
}

// ensure mounts the trigger now if possible and otherwise starts a retry
// episode, unless one is already pending.
func (c *Controller) ensure(ctx context.Context) {
	if c.host.HasTrigger() {
		c.cancelRetry()
		c.state = StatePresent

		return
	}

	if c.host.HasContainer() && c.mount(ctx) {
		return
	}

	if c.state == StateInjecting && c.timer != nil {
		return
	}

	c.attempts = 0
	c.state = StateInjecting
	c.schedule(c.policy.Delay(1))
}

func (c *Controller) mount(ctx context.Context) bool {
	logger := logctx.LoggerFromContext(ctx)

	if err := c.host.MountTrigger(); err != nil {
		logger.WarnContext(ctx, "failed to mount trigger", "err", err)
		c.telemetry.RecordPresenceMount("failed")

		return false
	}

	c.cancelRetry()
	c.state = StatePresent
	c.telemetry.RecordPresenceMount("mounted")
	logger.DebugContext(ctx, "trigger mounted", "path", c.host.CurrentPath(), "attempts", c.attempts)

	return true
}

func (c *Controller) schedule(d time.Duration) {
	c.cancelRetry()
	c.timer = c.clock.NewTimer(d)
}

func (c *Controller) cancelRetry() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
