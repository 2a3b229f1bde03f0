package ai

import (
	"errors"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/jungle0618/warden/internal/fsm"
	"github.com/jungle0618/warden/internal/model"
	"github.com/jungle0618/warden/internal/nav"
	"github.com/jungle0618/warden/internal/sense"
)

// FugitiveConfig tunes one fugitive agent.
type FugitiveConfig struct {
	DecideInterval float64
	DecidePhase    float64

	// EscapeSpeed is a multiplier over the nav base speed.
	EscapeSpeed       float64
	WaypointTolerance float64

	// EscapeOnSight breaks cover the moment the watched target is seen.
	EscapeOnSight bool
	// EscapeAtTier breaks cover once the shared threat reaches this tier.
	// TierCalm disables the trigger.
	EscapeAtTier model.ThreatTier

	// ViaProtector always routes the escape through the protector point.
	ViaProtector bool
	// ProtectorAtTier routes through the protector once the threat reaches
	// this tier. TierCalm disables the trigger.
	ProtectorAtTier model.ThreatTier
}

func (c FugitiveConfig) withDefaults() FugitiveConfig {
	if c.DecideInterval <= 0 {
		c.DecideInterval = defaultDecideInterval
	}
	if c.EscapeSpeed <= 0 {
		c.EscapeSpeed = 1.0
	}
	if c.WaypointTolerance <= 0 {
		c.WaypointTolerance = defaultWaypointTol
	}
	return c
}

// FugitiveDeps carries the collaborators a fugitive controller needs.
type FugitiveDeps struct {
	Nav      *nav.Coordinator
	Occluder sense.OcclusionCaster
	Threat   model.ThreatSource
	Culled   sense.CullFunc
	Sense    sense.Config

	// Extraction is where the escape ends.
	Extraction model.Vec2
	// Protector is the optional first leg of a two-phase escape.
	Protector *model.Vec2
}

// FugitiveAI drives one fugitive agent: it stays put until a trigger fires,
// then runs an escape route picked once at escape entry. Escape is
// irreversible, the controller never asks to stay again.
type FugitiveAI struct {
	agent   *model.Agent
	machine *fsm.Machine[model.FugitiveState]
	percept *sense.Perception
	nav     *nav.Coordinator
	threat  model.ThreatSource
	culled  sense.CullFunc
	cfg     FugitiveConfig

	extraction model.Vec2
	protector  *model.Vec2

	escapeRoute []model.Vec2
	legIdx      int

	running     atomic.Bool
	extracted   atomic.Bool
	now         float64
	decideAcc   float64
	onExtracted func(agent *model.Agent)
}

// NewFugitiveAI wires a fugitive controller. Missing mandatory
// collaborators fail construction so the spawner can skip the agent.
func NewFugitiveAI(agent *model.Agent, cfg FugitiveConfig, deps FugitiveDeps) (*FugitiveAI, error) {
	if agent == nil {
		return nil, errors.New("ai: nil agent")
	}
	if deps.Nav == nil {
		return nil, errors.New("ai: nil nav coordinator")
	}

	f := &FugitiveAI{
		agent:      agent,
		nav:        deps.Nav,
		threat:     deps.Threat,
		culled:     deps.Culled,
		cfg:        cfg.withDefaults(),
		extraction: deps.Extraction,
		protector:  deps.Protector,
	}
	f.decideAcc = f.cfg.DecidePhase

	percept, err := sense.NewPerception(agent, deps.Occluder, deps.Sense)
	if err != nil {
		return nil, err
	}
	percept.SetThreatSource(deps.Threat)
	percept.SetCullFunc(deps.Culled)
	percept.SetEngagedFunc(f.engaged)
	// Беглец никогда не доворачивается на цель
	percept.SetFaceGate(func() bool { return false })
	f.percept = percept

	m := fsm.New(model.FugitiveStay, model.FugitiveDead, model.FugitiveStates())
	m.OnEnter(model.FugitiveEscape, func() {
		// Маршрут выбирается один раз, в момент срыва
		f.escapeRoute = f.buildEscapeRoute()
		f.legIdx = 0
	})
	m.OnEnter(model.FugitiveDead, func() { f.nav.Stop() })
	m.Subscribe(func(old, new model.FugitiveState) {
		f.nav.ClearPlan()
		if IsDebugEnabled() {
			slog.Debug("Fugitive state changed",
				"agentID", f.agent.ID(),
				"from", old.String(),
				"to", new.String())
		}
	})
	f.machine = m

	return f, nil
}

// Start enables the controller.
func (f *FugitiveAI) Start() {
	f.running.Store(true)
}

// Stop disables the controller and halts movement.
func (f *FugitiveAI) Stop() {
	if f.running.CompareAndSwap(true, false) {
		f.nav.Stop()
	}
}

// Update advances the controller by dt seconds.
func (f *FugitiveAI) Update(dt float64) {
	if !f.running.Load() {
		return
	}

	f.now += dt
	f.machine.Update(dt)

	if !f.agent.IsAlive() {
		f.machine.ChangeState(model.FugitiveDead)
	}
	if f.machine.InTerminal() {
		return
	}

	f.percept.Tick(dt, f.now)

	f.decideAcc += dt
	if f.decideAcc >= f.cfg.DecideInterval {
		f.decideAcc = math.Mod(f.decideAcc, f.cfg.DecideInterval)
		if !f.isCulled() || f.engaged() {
			f.think()
		}
	}

	f.nav.Tick(dt)
}

func (f *FugitiveAI) think() {
	switch f.machine.Current() {
	case model.FugitiveStay:
		f.thinkStay()
	case model.FugitiveEscape:
		f.thinkEscape()
	}
}

func (f *FugitiveAI) thinkStay() {
	if f.shouldEscape() {
		f.machine.ChangeState(model.FugitiveEscape)
		return
	}
	f.nav.Stop()
}

func (f *FugitiveAI) shouldEscape() bool {
	if f.cfg.EscapeOnSight && f.percept.CanSee() {
		return true
	}
	if f.cfg.EscapeAtTier > model.TierCalm && f.threat != nil {
		return f.threat.CurrentTier() >= f.cfg.EscapeAtTier
	}
	return false
}

func (f *FugitiveAI) buildEscapeRoute() []model.Vec2 {
	if f.protector != nil && f.wantsProtector() {
		return []model.Vec2{*f.protector, f.extraction}
	}
	return []model.Vec2{f.extraction}
}

func (f *FugitiveAI) wantsProtector() bool {
	if f.cfg.ViaProtector {
		return true
	}
	if f.cfg.ProtectorAtTier > model.TierCalm && f.threat != nil {
		return f.threat.CurrentTier() >= f.cfg.ProtectorAtTier
	}
	return false
}

func (f *FugitiveAI) thinkEscape() {
	if f.extracted.Load() {
		return
	}
	if f.legIdx >= len(f.escapeRoute) {
		f.finishExtraction()
		return
	}

	leg := f.escapeRoute[f.legIdx]
	if f.nearPoint(leg) {
		f.legIdx++
		if f.legIdx >= len(f.escapeRoute) {
			f.finishExtraction()
			return
		}
		leg = f.escapeRoute[f.legIdx]
	}
	f.nav.MoveViaPath(leg, f.cfg.EscapeSpeed)
}

func (f *FugitiveAI) finishExtraction() {
	if !f.extracted.CompareAndSwap(false, true) {
		return
	}
	f.nav.Stop()
	slog.Info("Fugitive extracted",
		"agentID", f.agent.ID(),
		"name", f.agent.Name())
	if f.onExtracted != nil {
		f.onExtracted(f.agent)
	}
}

// engaged reports whether the fugitive is mid-escape. Escaping agents
// ignore the culling gate so an escape never freezes off-screen.
func (f *FugitiveAI) engaged() bool {
	return f.machine.Is(model.FugitiveEscape) && !f.extracted.Load()
}

func (f *FugitiveAI) isCulled() bool {
	return f.culled != nil && f.culled(f.agent.Position())
}

func (f *FugitiveAI) nearPoint(p model.Vec2) bool {
	tol := f.cfg.WaypointTolerance
	return f.agent.Position().DistanceSquared(p) <= tol*tol
}

// SetTarget points the fugitive's senses at the threat it watches for.
func (f *FugitiveAI) SetTarget(t model.Target) {
	f.percept.SetTarget(t)
}

// Perception exposes the sensing pipeline, mainly for inspection in tests.
func (f *FugitiveAI) Perception() *sense.Perception {
	return f.percept
}

// SetExtractedFunc registers the callback fired once on extraction.
func (f *FugitiveAI) SetExtractedFunc(fn func(agent *model.Agent)) {
	f.onExtracted = fn
}

// Subscribe registers fn for every state transition.
func (f *FugitiveAI) Subscribe(fn func(old, new model.FugitiveState)) {
	f.machine.Subscribe(fn)
}

// NotifyDeath forces the terminal state, used by combat resolution.
func (f *FugitiveAI) NotifyDeath() {
	f.machine.ChangeState(model.FugitiveDead)
}

// Extracted reports whether the escape route was completed.
func (f *FugitiveAI) Extracted() bool {
	return f.extracted.Load()
}

// State returns the current decision state.
func (f *FugitiveAI) State() model.FugitiveState {
	return f.machine.Current()
}

// StateName returns the current decision state for logs.
func (f *FugitiveAI) StateName() string {
	return f.machine.Current().String()
}
