// Package spawn builds live agents out of scenario entries and owns their
// lifecycle: a body in the physics space, a nav coordinator over the shared
// path service, perception and a controller per kind, registered in the AI
// registry. Culling never destroys an agent here: suspension is the
// per-pass culling gate inside each controller, driven by the active zone.
package spawn

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/jungle0618/warden/internal/ai"
	"github.com/jungle0618/warden/internal/config"
	"github.com/jungle0618/warden/internal/model"
	"github.com/jungle0618/warden/internal/nav"
	"github.com/jungle0618/warden/internal/scenario"
	"github.com/jungle0618/warden/internal/sense"
	"github.com/jungle0618/warden/internal/world"
	"github.com/jungle0618/warden/internal/world/pathgrid"
)

// Deps are the shared services every spawned agent is wired to.
type Deps struct {
	Space    *world.Space
	Paths    *pathgrid.Service
	Registry *ai.Registry
	Resolver ai.CombatResolver
	Perm     *ai.PermissionRule
	Threat   model.ThreatSource
	Zone     *world.ActiveZone

	// Optional observers, wired into every built controller.
	OnHostileState  func(agentID uint32, old, new model.HostileState)
	OnFugitiveState func(agentID uint32, old, new model.FugitiveState)
	OnExtracted     func(agent *model.Agent)
}

// Manager spawns agents and tracks them until they are reaped.
type Manager struct {
	cfg  config.Sim
	deps Deps
	ids  *AgentIDAllocator

	mu     sync.Mutex
	agents map[uint32]*model.Agent
	bodies map[uint32]*world.Body
}

// NewManager creates a spawn manager over the shared services.
func NewManager(cfg config.Sim, deps Deps) (*Manager, error) {
	if deps.Space == nil {
		return nil, errors.New("spawn: nil space")
	}
	if deps.Paths == nil {
		return nil, errors.New("spawn: nil path service")
	}
	if deps.Registry == nil {
		return nil, errors.New("spawn: nil controller registry")
	}
	return &Manager{
		cfg:    cfg,
		deps:   deps,
		ids:    NewAgentIDAllocator(),
		agents: make(map[uint32]*model.Agent),
		bodies: make(map[uint32]*world.Body),
	}, nil
}

// SpawnAll builds every spawn entry of the scenario. An entry that fails to
// wire is skipped with an error log, its siblings spawn anyway. Returns how
// many agents were spawned and the first wiring error, if any.
func (m *Manager) SpawnAll(sc *scenario.Scenario) (int, error) {
	if sc == nil {
		return 0, errors.New("spawn: nil scenario")
	}

	count := 0
	var firstErr error
	var hostiles []*ai.HostileAI
	var fugitives []*ai.FugitiveAI
	var intruder model.Target

	for _, entry := range sc.Spawns {
		agent, body, controller, err := m.spawnOne(sc, entry)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Error("failed to spawn agent",
				"name", entry.Name,
				"kind", entry.Kind,
				"archetype", entry.Archetype,
				"error", err)
			continue
		}

		m.mu.Lock()
		m.agents[agent.ID()] = agent
		m.bodies[agent.ID()] = body
		m.mu.Unlock()

		if controller != nil {
			m.deps.Registry.Register(agent.ID(), controller)
		}
		switch c := controller.(type) {
		case *ai.HostileAI:
			hostiles = append(hostiles, c)
		case *ai.FugitiveAI:
			fugitives = append(fugitives, c)
		}
		if agent.Kind() == model.KindIntruder && intruder == nil {
			intruder = agent
		}
		count++

		slog.Info("agent spawned",
			"agentID", agent.ID(),
			"name", agent.Name(),
			"kind", agent.Kind(),
			"position", entry.Position.Vec2())
	}

	// Все следят за первым нарушителем: он и есть точка интереса сцены.
	if intruder != nil {
		for _, h := range hostiles {
			h.SetTarget(intruder)
		}
		for _, f := range fugitives {
			f.SetTarget(intruder)
		}
	}

	if firstErr != nil {
		slog.Warn("SpawnAll completed with errors", "spawned", count, "error", firstErr)
		return count, fmt.Errorf("spawning agents: %w", firstErr)
	}

	slog.Info("all agents spawned", "count", count)
	return count, nil
}

func (m *Manager) spawnOne(sc *scenario.Scenario, entry scenario.Spawn) (*model.Agent, *world.Body, ai.Controller, error) {
	kind, ok := model.ParseAgentKind(entry.Kind)
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown agent kind %q", entry.Kind)
	}
	arch, ok := m.cfg.Archetypes[entry.Archetype]
	if !ok {
		return nil, nil, nil, fmt.Errorf("unknown archetype %q", entry.Archetype)
	}

	pos := entry.Position.Vec2()
	body := m.deps.Space.AddAgentBody(pos, m.cfg.AgentRadius)

	agent := model.NewAgent(m.ids.Next(kind), entry.Name, kind, body)
	agent.SetMaxHealth(arch.Health)
	agent.SetHome(pos)
	if arch.Armed {
		agent.Equip(model.Implement{Name: arch.Implement, Reach: arch.ImplementReach})
		agent.SetArmed(true)
	}
	if entry.Route != "" {
		rt, ok := sc.RouteByName(entry.Route)
		if !ok {
			m.deps.Space.RemoveBody(body)
			return nil, nil, nil, fmt.Errorf("unknown route %q", entry.Route)
		}
		route, err := routeOf(rt)
		if err != nil {
			m.deps.Space.RemoveBody(body)
			return nil, nil, nil, err
		}
		agent.SetRoute(route)
	}

	var (
		controller ai.Controller
		err        error
	)
	switch kind {
	case model.KindHostile:
		controller, err = m.buildHostile(agent, body, arch)
	case model.KindFugitive:
		controller, err = m.buildFugitive(agent, body, arch, sc.Escape)
	case model.KindIntruder:
		// Нарушителем управляет внешний хост, контроллер не нужен.
	}
	if err != nil {
		m.deps.Space.RemoveBody(body)
		return nil, nil, nil, err
	}

	return agent, body, controller, nil
}

func (m *Manager) buildHostile(agent *model.Agent, body *world.Body, arch config.Archetype) (ai.Controller, error) {
	nv, err := m.newNav(agent, body)
	if err != nil {
		return nil, err
	}
	gate, err := ai.NewAttackGate(agent, m.deps.Resolver, m.deps.Perm, arch.AttackCooldown, arch.AttackReach)
	if err != nil {
		return nil, err
	}

	cfg := ai.HostileConfig{
		DecideInterval: arch.DecideInterval,
		DecidePhase:    jitter(arch.DecideInterval),
		AlertDuration:  arch.AlertDuration,
		SearchDuration: arch.SearchDuration,
		MemoryDwell:    arch.MemoryDwell,
		GiveUpRadius:   arch.GiveUpRadius,
		PatrolSpeed:    arch.PatrolSpeed,
		ChaseSpeed:     arch.ChaseSpeed,
		SearchSpeed:    arch.SearchSpeed,
		ReturnSpeed:    arch.ReturnSpeed,
	}
	deps := ai.HostileDeps{
		Nav:      nv,
		Gate:     gate,
		Perm:     m.deps.Perm,
		Occluder: m.deps.Space,
		Threat:   m.deps.Threat,
		Culled:   m.cullFunc(),
		Sense:    m.senseConfig(arch),
	}
	hostile, err := ai.NewHostileAI(agent, cfg, deps)
	if err != nil {
		return nil, err
	}
	if fn := m.deps.OnHostileState; fn != nil {
		id := agent.ID()
		hostile.Subscribe(func(old, new model.HostileState) {
			fn(id, old, new)
		})
	}
	return hostile, nil
}

func (m *Manager) buildFugitive(agent *model.Agent, body *world.Body, arch config.Archetype, esc scenario.Escape) (ai.Controller, error) {
	nv, err := m.newNav(agent, body)
	if err != nil {
		return nil, err
	}
	escapeTier, err := arch.EscapeTier()
	if err != nil {
		return nil, err
	}
	protectorTier, err := arch.ProtectorTier()
	if err != nil {
		return nil, err
	}

	cfg := ai.FugitiveConfig{
		DecideInterval:  arch.DecideInterval,
		DecidePhase:     jitter(arch.DecideInterval),
		EscapeSpeed:     arch.EscapeSpeed,
		EscapeOnSight:   arch.EscapeOnSight,
		EscapeAtTier:    escapeTier,
		ViaProtector:    arch.ViaProtector,
		ProtectorAtTier: protectorTier,
	}
	deps := ai.FugitiveDeps{
		Nav:        nv,
		Occluder:   m.deps.Space,
		Threat:     m.deps.Threat,
		Culled:     m.cullFunc(),
		Sense:      m.senseConfig(arch),
		Extraction: esc.Extraction.Vec2(),
	}
	if p := esc.Protector; p != nil {
		v := p.Vec2()
		deps.Protector = &v
	}
	fugitive, err := ai.NewFugitiveAI(agent, cfg, deps)
	if err != nil {
		return nil, err
	}
	if fn := m.deps.OnFugitiveState; fn != nil {
		id := agent.ID()
		fugitive.Subscribe(func(old, new model.FugitiveState) {
			fn(id, old, new)
		})
	}
	if m.deps.OnExtracted != nil {
		fugitive.SetExtractedFunc(m.deps.OnExtracted)
	}
	return fugitive, nil
}

func (m *Manager) newNav(agent *model.Agent, body *world.Body) (*nav.Coordinator, error) {
	nv, err := nav.NewCoordinator(body, m.deps.Paths, nav.Config{
		BaseSpeed: m.cfg.BaseSpeed,
		Radius:    m.cfg.AgentRadius,
	})
	if err != nil {
		return nil, err
	}
	nv.SetSweepCaster(m.deps.Space)
	// Пока координатор ведёт агента, взгляд следует за направлением движения.
	nv.SetHeadingFunc(agent.SetHeading)
	return nv, nil
}

func (m *Manager) senseConfig(arch config.Archetype) sense.Config {
	return sense.Config{
		ViewRange:   arch.ViewRange,
		ViewAngle:   arch.ViewAngleDeg * math.Pi / 180,
		NearRadius:  arch.NearRadius,
		Interval:    arch.SenseInterval,
		Phase:       jitter(arch.SenseInterval),
		FaceOnSight: arch.FaceOnSight,
	}
}

// cullFunc adapts the active zone into the perception culling predicate.
// A nil zone disables culling: every agent stays hot.
func (m *Manager) cullFunc() sense.CullFunc {
	if m.deps.Zone == nil {
		return nil
	}
	return m.deps.Zone.Outside
}

// ReapDead removes dead agents: controller out of the registry, body out of
// the physics space. Returns how many agents were reaped.
func (m *Manager) ReapDead() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	for id, agent := range m.agents {
		if agent.IsAlive() {
			continue
		}
		m.deps.Registry.Unregister(id)
		m.deps.Space.RemoveBody(m.bodies[id])
		delete(m.agents, id)
		delete(m.bodies, id)
		reaped++
		slog.Info("dead agent reaped", "agentID", id, "name", agent.Name())
	}
	return reaped
}

// Agent returns a live agent by ID.
func (m *Manager) Agent(id uint32) (*model.Agent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	return agent, ok
}

// Agents returns a snapshot of all live agents.
func (m *Manager) Agents() []*model.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Agent, 0, len(m.agents))
	for _, agent := range m.agents {
		out = append(out, agent)
	}
	return out
}

// Count returns the number of live agents.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.agents)
}

// jitter draws a phase offset in [0, interval) so agents spawned on the
// same tick do not all sense or decide at once.
func jitter(interval float64) float64 {
	if interval <= 0 {
		return 0
	}
	return rand.Float64() * interval
}

func routeOf(rt scenario.Route) (*model.PatrolRoute, error) {
	points := make([]model.Vec2, len(rt.Points))
	for i, p := range rt.Points {
		points[i] = p.Vec2()
	}
	return model.NewPatrolRoute(rt.Name, points)
}
