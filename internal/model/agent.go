package model

import "sync/atomic"

// Agent is an autonomous entity driven by the AI core. It carries the pose,
// stance and equipment other agents may observe, and delegates its position
// to the injected movement backend.
//
// Fields observable by other agents (posture, armed, health) are atomic:
// every agent may be read as a Target by its siblings within the same tick.
// Heading and the route index are touched only by the owning controller.
type Agent struct {
	id    uint32
	name  string
	kind  AgentKind
	mover Mover

	heading  float64
	posture  atomic.Int32
	armed    atomic.Bool
	alive    atomic.Bool
	health   atomic.Int32
	maxHP    int32
	equipped *Implement

	home     Vec2
	route    *PatrolRoute
	routeIdx int
}

// NewAgent creates an alive, standing agent with the given movement backend.
func NewAgent(id uint32, name string, kind AgentKind, mover Mover) *Agent {
	a := &Agent{
		id:    id,
		name:  name,
		kind:  kind,
		mover: mover,
		maxHP: 1,
	}
	a.alive.Store(true)
	a.health.Store(1)
	return a
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() uint32 {
	return a.id
}

// Name returns the agent's display name.
func (a *Agent) Name() string {
	return a.name
}

// Kind returns the agent kind.
func (a *Agent) Kind() AgentKind {
	return a.kind
}

// Mover returns the movement backend. Nil when the agent was built without one.
func (a *Agent) Mover() Mover {
	return a.mover
}

// Position returns the agent's current world position.
func (a *Agent) Position() Vec2 {
	if a.mover == nil {
		return Vec2{}
	}
	return a.mover.Position()
}

// Heading returns the agent's facing in radians.
func (a *Agent) Heading() float64 {
	return a.heading
}

// SetHeading sets the agent's facing in radians.
func (a *Agent) SetHeading(rad float64) {
	a.heading = rad
}

// Posture returns the agent's current stance.
func (a *Agent) Posture() Posture {
	return Posture(a.posture.Load())
}

// SetPosture sets the agent's stance.
func (a *Agent) SetPosture(p Posture) {
	a.posture.Store(int32(p))
}

// IsArmed reports whether the agent carries a weapon openly.
func (a *Agent) IsArmed() bool {
	return a.armed.Load()
}

// SetArmed sets the armed flag.
func (a *Agent) SetArmed(armed bool) {
	a.armed.Store(armed)
}

// IsAlive reports whether the agent is still alive.
func (a *Agent) IsAlive() bool {
	return a.alive.Load()
}

// Health returns current health points.
func (a *Agent) Health() int32 {
	return a.health.Load()
}

// MaxHealth returns the configured health maximum.
func (a *Agent) MaxHealth() int32 {
	return a.maxHP
}

// SetMaxHealth sets the health pool and refills it. Values below 1 are clamped.
func (a *Agent) SetMaxHealth(hp int32) {
	if hp < 1 {
		hp = 1
	}
	a.maxHP = hp
	a.health.Store(hp)
}

// ApplyDamage subtracts health and reports whether the agent just died.
func (a *Agent) ApplyDamage(amount int32) bool {
	if amount < 0 || !a.alive.Load() {
		return false
	}
	left := a.health.Add(-amount)
	if left <= 0 {
		a.alive.Store(false)
		return true
	}
	return false
}

// Equip sets the carried implement.
func (a *Agent) Equip(imp Implement) {
	a.equipped = &imp
}

// Implement returns the equipped implement, if any.
func (a *Agent) Implement() (Implement, bool) {
	if a.equipped == nil {
		return Implement{}, false
	}
	return *a.equipped, true
}

// Home returns the agent's anchor position (its spawn point).
func (a *Agent) Home() Vec2 {
	return a.home
}

// SetHome sets the anchor position.
func (a *Agent) SetHome(p Vec2) {
	a.home = p
}

// Route returns the patrol route, nil when the agent has none.
func (a *Agent) Route() *PatrolRoute {
	return a.route
}

// SetRoute assigns the patrol route and resets the route index.
func (a *Agent) SetRoute(r *PatrolRoute) {
	a.route = r
	a.routeIdx = 0
}

// RouteIndex returns the current waypoint index.
func (a *Agent) RouteIndex() int {
	return a.routeIdx
}

// SetRouteIndex sets the current waypoint index.
func (a *Agent) SetRouteIndex(i int) {
	a.routeIdx = i
}
