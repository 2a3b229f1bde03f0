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

// Default hostile tuning. Durations are seconds, distances world units.
const (
	defaultDecideInterval = 0.4  // decision cadence, jittered per agent via DecidePhase
	defaultAlertDuration  = 4.0  // alert hold before standing down
	defaultSearchDuration = 3.0  // dwell at the last known position
	defaultMemoryDwell    = 6.0  // memory lifetime after losing sight
	defaultGiveUpRadius   = 18.0 // max distance from the point of interest
	defaultWaypointTol    = 0.6  // route waypoint arrival tolerance
)

// HostileConfig tunes one hostile agent. Zero durations fall back to the
// defaults above, speed fields are multipliers over the nav base speed.
type HostileConfig struct {
	DecideInterval float64
	DecidePhase    float64
	AlertDuration  float64
	SearchDuration float64
	MemoryDwell    float64
	GiveUpRadius   float64

	PatrolSpeed float64
	ChaseSpeed  float64
	SearchSpeed float64
	ReturnSpeed float64

	WaypointTolerance float64
}

func (c HostileConfig) withDefaults() HostileConfig {
	if c.DecideInterval <= 0 {
		c.DecideInterval = defaultDecideInterval
	}
	if c.AlertDuration <= 0 {
		c.AlertDuration = defaultAlertDuration
	}
	if c.SearchDuration <= 0 {
		c.SearchDuration = defaultSearchDuration
	}
	if c.MemoryDwell <= 0 {
		c.MemoryDwell = defaultMemoryDwell
	}
	if c.GiveUpRadius <= 0 {
		c.GiveUpRadius = defaultGiveUpRadius
	}
	if c.PatrolSpeed <= 0 {
		c.PatrolSpeed = 0.6
	}
	if c.ChaseSpeed <= 0 {
		c.ChaseSpeed = 1.0
	}
	if c.SearchSpeed <= 0 {
		c.SearchSpeed = 0.8
	}
	if c.ReturnSpeed <= 0 {
		c.ReturnSpeed = 0.7
	}
	if c.WaypointTolerance <= 0 {
		c.WaypointTolerance = defaultWaypointTol
	}
	return c
}

// HostileDeps carries the collaborators a hostile controller needs.
type HostileDeps struct {
	Nav      *nav.Coordinator
	Gate     *AttackGate
	Perm     *PermissionRule
	Occluder sense.OcclusionCaster
	Threat   model.ThreatSource
	Culled   sense.CullFunc
	Sense    sense.Config
}

// HostileAI drives one hostile agent through the patrol, alert, chase,
// search and return cycle. Movement executes on every simulation tick,
// perception and decisions run on their own slower cadences.
// Not safe for concurrent use, the registry drives it from one goroutine.
type HostileAI struct {
	agent   *model.Agent
	machine *fsm.Machine[model.HostileState]
	percept *sense.Perception
	nav     *nav.Coordinator
	gate    *AttackGate
	perm    *PermissionRule
	culled  sense.CullFunc
	cfg     HostileConfig

	memory model.LastKnown

	running      atomic.Bool
	now          float64
	decideAcc    float64
	searchLinger bool
}

// NewHostileAI wires a hostile controller. Missing mandatory collaborators
// fail construction so the spawner can skip the agent and keep going.
func NewHostileAI(agent *model.Agent, cfg HostileConfig, deps HostileDeps) (*HostileAI, error) {
	if agent == nil {
		return nil, errors.New("ai: nil agent")
	}
	if deps.Nav == nil {
		return nil, errors.New("ai: nil nav coordinator")
	}
	if deps.Gate == nil {
		return nil, errors.New("ai: nil attack gate")
	}
	if deps.Perm == nil {
		return nil, errors.New("ai: nil permission rule")
	}

	h := &HostileAI{
		agent:  agent,
		nav:    deps.Nav,
		gate:   deps.Gate,
		perm:   deps.Perm,
		culled: deps.Culled,
		cfg:    cfg.withDefaults(),
	}
	h.decideAcc = h.cfg.DecidePhase

	percept, err := sense.NewPerception(agent, deps.Occluder, deps.Sense)
	if err != nil {
		return nil, err
	}
	percept.SetThreatSource(deps.Threat)
	percept.SetCullFunc(deps.Culled)
	percept.SetEngagedFunc(h.engaged)
	percept.SetFaceGate(h.mayFace)
	percept.BindMemory(&h.memory)
	h.percept = percept

	m := fsm.New(model.HostilePatrol, model.HostileDead, model.HostileStates())
	m.OnEnter(model.HostileAlert, func() { m.SetCountdown(h.cfg.AlertDuration) })
	m.OnEnter(model.HostileSearch, func() { h.searchLinger = false })
	m.OnEnter(model.HostileChase, func() { h.nav.SetUrgent(true) })
	m.OnExit(model.HostileChase, func() { h.nav.SetUrgent(false) })
	m.OnEnter(model.HostileDead, func() { h.nav.Stop() })
	m.Subscribe(func(old, new model.HostileState) {
		// Смена состояния обесценивает текущий план движения
		h.nav.ClearPlan()
		if IsDebugEnabled() {
			slog.Debug("Hostile state changed",
				"agentID", h.agent.ID(),
				"from", old.String(),
				"to", new.String())
		}
	})
	h.machine = m

	return h, nil
}

// Start enables the controller.
func (h *HostileAI) Start() {
	h.running.Store(true)
}

// Stop disables the controller and halts movement.
func (h *HostileAI) Stop() {
	if h.running.CompareAndSwap(true, false) {
		h.nav.Stop()
	}
}

// Update advances the controller by dt seconds. Perception and decisions
// run on their own cadences, movement executes every tick: a skipped
// decision pass never skips a movement pass.
func (h *HostileAI) Update(dt float64) {
	if !h.running.Load() {
		return
	}

	h.now += dt
	h.machine.Update(dt)

	if !h.agent.IsAlive() {
		h.machine.ChangeState(model.HostileDead)
	}
	if h.machine.InTerminal() {
		return
	}

	h.percept.Tick(dt, h.now)

	h.decideAcc += dt
	if h.decideAcc >= h.cfg.DecideInterval {
		h.decideAcc = math.Mod(h.decideAcc, h.cfg.DecideInterval)
		if !h.isCulled() || h.engaged() {
			h.think()
		}
	}

	h.nav.Tick(dt)
}

func (h *HostileAI) think() {
	switch h.machine.Current() {
	case model.HostilePatrol:
		h.thinkPatrol()
	case model.HostileAlert:
		h.thinkAlert()
	case model.HostileChase:
		h.thinkChase()
	case model.HostileSearch:
		h.thinkSearch()
	case model.HostileReturn:
		h.thinkReturn()
	}
}

func (h *HostileAI) thinkPatrol() {
	if h.percept.CanSee() {
		h.machine.ChangeState(model.HostileAlert)
		return
	}

	route := h.agent.Route()
	if route == nil {
		h.nav.Stop()
		return
	}

	idx := h.agent.RouteIndex()
	wp := route.Point(idx)
	if h.nearPoint(wp) {
		idx = route.NextIndex(idx)
		h.agent.SetRouteIndex(idx)
		wp = route.Point(idx)
	}
	h.nav.MoveViaPath(wp, h.cfg.PatrolSpeed)
}

func (h *HostileAI) thinkAlert() {
	if h.percept.CanSee() {
		if h.perm.Allows(h.percept.Target()) {
			h.machine.ChangeState(model.HostileChase)
			return
		}
		// Видим цель, но эскалация не разрешена: держим настороженность
		h.machine.SetCountdown(h.cfg.AlertDuration)
	}

	if h.machine.CountdownExpired() {
		h.machine.ChangeState(model.HostilePatrol)
		return
	}
	h.nav.Stop()
}

func (h *HostileAI) thinkChase() {
	// Отрыв цели за радиус отказа проверяется первым и срабатывает один раз
	if h.beyondGiveUp() {
		h.machine.ChangeState(model.HostileReturn)
		return
	}
	if h.nav.IsStuck() {
		h.machine.ChangeState(model.HostileSearch)
		return
	}

	target := h.percept.Target()
	if h.percept.CanSee() {
		if !h.perm.Allows(target) {
			h.machine.ChangeState(model.HostileAlert)
			return
		}
		h.nav.MoveViaPath(target.Position(), h.cfg.ChaseSpeed)
		h.gate.TryAttack(h.now, target)
		return
	}

	// Цель потеряна: свежая память ведёт в поиск, пустая — в настороженность
	if h.memory.Valid(h.now, h.cfg.MemoryDwell) {
		h.machine.ChangeState(model.HostileSearch)
		return
	}
	h.machine.ChangeState(model.HostileAlert)
}

func (h *HostileAI) thinkSearch() {
	// Повторный контакт возобновляет погоню без проверки разрешения
	if h.percept.CanSee() {
		h.machine.ChangeState(model.HostileChase)
		return
	}
	if h.beyondGiveUp() {
		h.machine.ChangeState(model.HostileReturn)
		return
	}
	if !h.memory.Valid(h.now, h.cfg.MemoryDwell) {
		// Память остыла — искать больше негде
		h.machine.ChangeState(model.HostileAlert)
		return
	}

	if h.searchLinger {
		if h.machine.CountdownExpired() {
			h.machine.ChangeState(model.HostileAlert)
			return
		}
		h.nav.Stop()
		return
	}

	lkp := h.memory.Position()
	if h.nearPoint(lkp) {
		// Дошли до последней известной точки: осматриваемся на месте
		h.searchLinger = true
		h.machine.SetCountdown(h.cfg.SearchDuration)
		h.nav.Stop()
		return
	}
	h.nav.MoveViaPath(lkp, h.cfg.SearchSpeed)
}

func (h *HostileAI) thinkReturn() {
	if h.percept.CanSee() {
		h.machine.ChangeState(model.HostileChase)
		return
	}

	route := h.agent.Route()
	if route == nil {
		h.machine.ChangeState(model.HostilePatrol)
		return
	}

	first := route.First()
	if h.nearPoint(first) {
		h.agent.SetRouteIndex(0)
		h.machine.ChangeState(model.HostilePatrol)
		return
	}
	h.nav.MoveViaPath(first, h.cfg.ReturnSpeed)
}

// engaged reports whether the agent is actively working a target. Engaged
// agents ignore the culling gate and sense all around at close range.
func (h *HostileAI) engaged() bool {
	st := h.machine.Current()
	return st == model.HostileChase || st == model.HostileSearch
}

// mayFace allows perception to turn the agent toward a seen target only
// while scanning or chasing, and only when navigation is not steering.
func (h *HostileAI) mayFace() bool {
	st := h.machine.Current()
	if st != model.HostileAlert && st != model.HostileChase {
		return false
	}
	return !h.nav.OwnsHeading()
}

func (h *HostileAI) isCulled() bool {
	return h.culled != nil && h.culled(h.agent.Position())
}

// beyondGiveUp reports whether the watched target has drawn the agent out
// past the give-up radius. The target's live position is readable even when
// it is not visible.
func (h *HostileAI) beyondGiveUp() bool {
	target := h.percept.Target()
	if target == nil {
		return false
	}
	return h.agent.Position().DistanceSquared(target.Position()) > h.cfg.GiveUpRadius*h.cfg.GiveUpRadius
}

func (h *HostileAI) nearPoint(p model.Vec2) bool {
	tol := h.cfg.WaypointTolerance
	return h.agent.Position().DistanceSquared(p) <= tol*tol
}

// SetTarget points the agent's senses at a target.
func (h *HostileAI) SetTarget(t model.Target) {
	h.percept.SetTarget(t)
}

// Subscribe registers fn for every state transition.
func (h *HostileAI) Subscribe(fn func(old, new model.HostileState)) {
	h.machine.Subscribe(fn)
}

// NotifyDeath forces the terminal state, used by combat resolution.
func (h *HostileAI) NotifyDeath() {
	h.machine.ChangeState(model.HostileDead)
}

// State returns the current decision state.
func (h *HostileAI) State() model.HostileState {
	return h.machine.Current()
}

// StateName returns the current decision state for logs.
func (h *HostileAI) StateName() string {
	return h.machine.Current().String()
}

// Memory returns a copy of the last-known-position record.
func (h *HostileAI) Memory() model.LastKnown {
	return h.memory
}

// Perception exposes the sensing pipeline, mainly for inspection in tests.
func (h *HostileAI) Perception() *sense.Perception {
	return h.percept
}
