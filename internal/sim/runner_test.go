package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jungle0618/warden/internal/ai"
	"github.com/jungle0618/warden/internal/config"
	"github.com/jungle0618/warden/internal/model"
	"github.com/jungle0618/warden/internal/world"
)

// tickCounter — контроллер-заглушка: считает апдейты и по желанию кладёт
// событие в очередь на заданном тике.
type tickCounter struct {
	updates int
	queue   *Queue
	emitAt  int
}

func (c *tickCounter) Start()            {}
func (c *tickCounter) Stop()             {}
func (c *tickCounter) StateName() string { return "COUNTING" }

func (c *tickCounter) Update(dt float64) {
	c.updates++
	if c.queue != nil && c.updates == c.emitAt {
		c.queue.Push(Event{Type: EventStateChanged, AgentID: 7, From: "PATROL", To: "ALERT"})
	}
}

type panicker struct{}

func (p *panicker) Start()            {}
func (p *panicker) Stop()             {}
func (p *panicker) StateName() string { return "PANIC" }
func (p *panicker) Update(float64)    { panic("boom") }

type fakePool struct {
	calls int
	dead  int
}

func (p *fakePool) ReapDead() int {
	p.calls++
	return p.dead
}

func newTestDeps() Deps {
	return Deps{
		Registry: ai.NewRegistry(),
		Space:    world.NewSpace(),
		Threat:   world.NewThreatTracker(1.0),
		Events:   NewQueue(),
	}
}

func TestNewRunner_Validation(t *testing.T) {
	cfg := config.DefaultSim()

	tests := []struct {
		name    string
		cfg     config.Sim
		mutate  func(*Deps)
		wantErr string
	}{
		{"zero tick rate", config.Sim{}, func(d *Deps) {}, "sim: tick rate must be positive"},
		{"nil registry", cfg, func(d *Deps) { d.Registry = nil }, "sim: nil controller registry"},
		{"nil space", cfg, func(d *Deps) { d.Space = nil }, "sim: nil space"},
		{"nil threat", cfg, func(d *Deps) { d.Threat = nil }, "sim: nil threat tracker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			tt.mutate(&deps)
			_, err := NewRunner(tt.cfg, deps)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestRunner_TickDrivesControllersAndClock(t *testing.T) {
	deps := newTestDeps()
	counter := &tickCounter{queue: deps.Events, emitAt: 2}
	deps.Registry.Register(1, counter)

	r, err := NewRunner(config.DefaultSim(), deps) // 20 Hz
	require.NoError(t, err)

	var got []Event
	r.Subscribe(func(evt Event) { got = append(got, evt) })

	for range 3 {
		r.Tick(0.05)
	}

	assert.Equal(t, 3, counter.updates)
	assert.Equal(t, int64(3), r.Ticks())
	assert.InDelta(t, 0.15, r.Now(), 1e-9)

	// Событие второго тика дошло до подписчика, очередь пуста.
	require.Len(t, got, 1)
	assert.Equal(t, EventStateChanged, got[0].Type)
	assert.Equal(t, uint32(7), got[0].AgentID)
	assert.Equal(t, "ALERT", got[0].To)
	assert.Equal(t, 0, deps.Events.Len())
}

func TestRunner_PanickingControllerDoesNotStopTheLoop(t *testing.T) {
	deps := newTestDeps()
	counter := &tickCounter{}
	deps.Registry.Register(1, counter)
	deps.Registry.Register(2, &panicker{})

	r, err := NewRunner(config.DefaultSim(), deps)
	require.NoError(t, err)

	r.Tick(0.05)
	r.Tick(0.05)

	assert.Equal(t, 2, counter.updates)
	assert.Equal(t, 1, deps.Registry.Count())
	assert.Equal(t, 1, deps.Registry.Faults())
}

func TestRunner_ReapCadence(t *testing.T) {
	deps := newTestDeps()
	pool := &fakePool{dead: 1}
	deps.Pool = pool

	r, err := NewRunner(config.DefaultSim(), deps) // 20 Hz → свип раз в 100 тиков
	require.NoError(t, err)

	for range 99 {
		r.Tick(0.05)
	}
	assert.Equal(t, 0, pool.calls)

	r.Tick(0.05)
	assert.Equal(t, 1, pool.calls)

	for range 100 {
		r.Tick(0.05)
	}
	assert.Equal(t, 2, pool.calls)
}

func TestRunner_ThreatTrackerIsPlumbed(t *testing.T) {
	deps := newTestDeps() // период затишья 1 секунда
	deps.Threat.RaiseTo(model.TierWary)

	r, err := NewRunner(config.DefaultSim(), deps)
	require.NoError(t, err)

	for range 21 { // 1.05 секунды
		r.Tick(0.05)
	}
	assert.Equal(t, model.TierCalm, deps.Threat.CurrentTier())
}

func TestRunner_PhysicsIsPlumbed(t *testing.T) {
	deps := newTestDeps()
	body := deps.Space.AddAgentBody(model.Vec2{}, 0.3)
	body.SetVelocity(model.Vec2{X: 1})

	r, err := NewRunner(config.DefaultSim(), deps)
	require.NoError(t, err)

	for range 20 { // ровно секунда
		r.Tick(0.05)
	}
	assert.InDelta(t, 1.0, body.Position().X, 1e-6)
}

func TestRunner_RunStopsOnContextCancel(t *testing.T) {
	deps := newTestDeps()
	cfg := config.DefaultSim()
	cfg.TickRate = 200

	r, err := NewRunner(cfg, deps)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, r.Ticks(), int64(0))
}

func TestRunner_StopUnblocksRun(t *testing.T) {
	deps := newTestDeps()
	r, err := NewRunner(config.DefaultSim(), deps)
	require.NoError(t, err)

	r.Stop()
	assert.NoError(t, r.Run(context.Background()))
}
