// Package sim drives the fixed-tick simulation loop: threat decay, AI
// controllers, physics integration and the event drain, in that order.
package sim

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jungle0618/warden/internal/ai"
	"github.com/jungle0618/warden/internal/config"
	"github.com/jungle0618/warden/internal/world"
)

// defaultReapPeriod is how often the runner sweeps dead agents, seconds.
const defaultReapPeriod = 5.0

// AgentPool releases agents the simulation is done with.
type AgentPool interface {
	ReapDead() int
}

// Deps are the collaborators one runner drives.
type Deps struct {
	Registry *ai.Registry
	Space    *world.Space
	Threat   *world.ThreatTracker
	// Pool is optional: without it dead agents stay in the space.
	Pool AgentPool
	// Events is optional: without it controller callbacks push into nil,
	// which is a no-op.
	Events *Queue
}

// Runner owns the simulation clock. One tick is: threat tracker update,
// every AI controller (each inside its own recover), one physics step, a
// reap sweep on its period, then the event drain to subscribers.
type Runner struct {
	registry *ai.Registry
	space    *world.Space
	threat   *world.ThreatTracker
	pool     AgentPool
	events   *Queue

	tickInterval float64
	reapTicks    int64

	subs   []func(Event)
	ticks  atomic.Int64
	stopCh chan struct{}
}

// NewRunner wires a runner for the configured tick rate.
func NewRunner(cfg config.Sim, deps Deps) (*Runner, error) {
	if cfg.TickRate <= 0 {
		return nil, errors.New("sim: tick rate must be positive")
	}
	if deps.Registry == nil {
		return nil, errors.New("sim: nil controller registry")
	}
	if deps.Space == nil {
		return nil, errors.New("sim: nil space")
	}
	if deps.Threat == nil {
		return nil, errors.New("sim: nil threat tracker")
	}

	interval := cfg.TickInterval()
	return &Runner{
		registry:     deps.Registry,
		space:        deps.Space,
		threat:       deps.Threat,
		pool:         deps.Pool,
		events:       deps.Events,
		tickInterval: interval,
		reapTicks:    int64(defaultReapPeriod / interval),
		stopCh:       make(chan struct{}),
	}, nil
}

// Subscribe registers fn for every drained event.
// Call before Run: the subscriber list is not synchronized.
func (r *Runner) Subscribe(fn func(Event)) {
	r.subs = append(r.subs, fn)
}

// Events returns the queue controller callbacks push into.
func (r *Runner) Events() *Queue {
	return r.events
}

// Run drives Tick on a fixed-step ticker until the context is canceled or
// Stop is called. Blocks for the duration.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(r.tickInterval * float64(time.Second)))
	defer ticker.Stop()

	slog.Info("simulation runner started",
		"tickInterval", r.tickInterval,
		"controllers", r.registry.Count())

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation runner stopping", "ticks", r.ticks.Load())
			return ctx.Err()

		case <-r.stopCh:
			slog.Info("simulation runner stopped", "ticks", r.ticks.Load())
			return nil

		case <-ticker.C:
			r.Tick(r.tickInterval)
		}
	}
}

// Stop stops a blocked Run. Safe to call once.
func (r *Runner) Stop() {
	close(r.stopCh)
}

// Tick advances the simulation by dt seconds. Exported so tests and
// offline tools can step the clock by hand.
func (r *Runner) Tick(dt float64) {
	r.threat.Update(dt)
	r.registry.UpdateAll(dt)
	r.space.Step(dt)

	n := r.ticks.Add(1)
	if r.pool != nil && r.reapTicks > 0 && n%r.reapTicks == 0 {
		if reaped := r.pool.ReapDead(); reaped > 0 {
			slog.Debug("reap sweep", "reaped", reaped)
		}
	}

	r.dispatch()
}

// Ticks returns how many ticks have run.
func (r *Runner) Ticks() int64 {
	return r.ticks.Load()
}

// Now returns the accumulated simulation time in seconds.
func (r *Runner) Now() float64 {
	return float64(r.ticks.Load()) * r.tickInterval
}

func (r *Runner) dispatch() {
	events := r.events.Drain()
	if len(events) == 0 {
		return
	}
	for _, evt := range events {
		for _, fn := range r.subs {
			fn(evt)
		}
	}
}
