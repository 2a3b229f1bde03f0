// Package sense implements the perception side of agent AI: a throttled
// line-of-sight pipeline with a view cone, a near-field omnidirectional
// check for engaged agents and posture-aware occlusion. Perception runs on
// its own cadence, slower than the simulation tick, and publishes an
// immutable snapshot the decision layer reads in between refreshes.
package sense

import (
	"errors"
	"math"

	"github.com/jungle0618/warden/internal/model"
)

// OcclusionCaster answers whether the straight segment between two points is
// blocked for a viewer looking at a target with the given posture.
type OcclusionCaster interface {
	Occluded(from, to model.Vec2, posture model.Posture) bool
}

// CullFunc reports whether a position is outside the active simulation zone.
type CullFunc func(pos model.Vec2) bool

// GateFunc is a boolean callback injected by the controller, polled on every
// refresh.
type GateFunc func() bool

// Config tunes a single agent's senses.
type Config struct {
	// ViewRange is the sight distance in world units.
	ViewRange float64
	// ViewAngle is the full width of the view cone in radians.
	// Values <= 0 mean omnidirectional sight.
	ViewAngle float64
	// NearRadius is the omnidirectional sense distance used while engaged
	// or under maximum threat.
	NearRadius float64
	// Interval is the perception refresh period in seconds. Values <= 0
	// refresh on every tick.
	Interval float64
	// Phase offsets the first refresh so agents spawned on the same tick
	// do not all sense at once.
	Phase float64
	// FaceOnSight turns the owner toward a visible target when the
	// controller's face gate allows it.
	FaceOnSight bool
}

// Snapshot is the result of the last perception refresh.
// Direction is a unit vector from the owner toward the target, zero while
// the target is unknown. Distance is InfiniteDistance when there is no
// target or the owner is culled.
type Snapshot struct {
	Visible   bool
	Direction model.Vec2
	Distance  float64
}

// Perception evaluates visibility of one target for one agent.
// Not safe for concurrent use, owned by the agent's controller.
type Perception struct {
	owner    *model.Agent
	occluder OcclusionCaster
	cfg      Config

	target  model.Target
	threat  model.ThreatSource
	culled  CullFunc
	engaged GateFunc
	faceOK  GateFunc
	memory  *model.LastKnown

	snap Snapshot
	acc  float64
}

// NewPerception builds perception for owner. The occlusion caster is
// mandatory, everything else is injected through setters.
func NewPerception(owner *model.Agent, occluder OcclusionCaster, cfg Config) (*Perception, error) {
	if owner == nil {
		return nil, errors.New("sense: nil owner")
	}
	if occluder == nil {
		return nil, errors.New("sense: nil occlusion caster")
	}
	if cfg.ViewAngle <= 0 {
		cfg.ViewAngle = 2 * math.Pi
	}

	return &Perception{
		owner:    owner,
		occluder: occluder,
		cfg:      cfg,
		acc:      cfg.Phase,
		snap:     Snapshot{Distance: model.InfiniteDistance},
	}, nil
}

// SetTarget points the senses at a target. Passing nil blanks the snapshot
// on the next refresh.
func (p *Perception) SetTarget(t model.Target) { p.target = t }

// Target returns the currently watched target.
func (p *Perception) Target() model.Target { return p.target }

// SetThreatSource wires the shared threat tracker used by the near-field
// check.
func (p *Perception) SetThreatSource(src model.ThreatSource) { p.threat = src }

// SetCullFunc wires the active-zone test. Without it no culling happens.
func (p *Perception) SetCullFunc(fn CullFunc) { p.culled = fn }

// SetEngagedFunc wires the controller's engagement test. Engaged agents
// bypass the culling gate and sense all around within NearRadius.
func (p *Perception) SetEngagedFunc(fn GateFunc) { p.engaged = fn }

// SetFaceGate wires the controller's permission to auto-face a visible
// target. Without a gate FaceOnSight always applies.
func (p *Perception) SetFaceGate(fn GateFunc) { p.faceOK = fn }

// BindMemory attaches the last-known-position record updated on every
// refresh that sees the target.
func (p *Perception) BindMemory(mem *model.LastKnown) { p.memory = mem }

// Tick advances the refresh accumulator and refreshes when the interval
// elapses. Skipped ticks keep the previous snapshot.
func (p *Perception) Tick(dt, now float64) {
	if p.cfg.Interval <= 0 {
		p.Refresh(now)
		return
	}
	p.acc += dt
	if p.acc < p.cfg.Interval {
		return
	}
	p.acc = math.Mod(p.acc, p.cfg.Interval)
	p.Refresh(now)
}

// Refresh re-evaluates visibility immediately, off-cadence. Order matters:
// the culling gate short-circuits everything, then near-field, range, view
// cone and occlusion.
func (p *Perception) Refresh(now float64) {
	if p.target == nil {
		p.snap = Snapshot{Distance: model.InfiniteDistance}
		return
	}
	if p.culled != nil && p.culled(p.owner.Position()) && !p.isEngaged() {
		p.snap = Snapshot{Distance: model.InfiniteDistance}
		return
	}

	pos := p.owner.Position()
	tpos := p.target.Position()
	to := tpos.Sub(pos)
	dist := to.Len()

	p.snap = Snapshot{
		Direction: to.Normalized(),
		Distance:  dist,
		Visible:   p.evaluate(pos, tpos, dist),
	}

	if !p.snap.Visible {
		return
	}
	if p.memory != nil {
		p.memory.Record(tpos, now)
	}
	if p.cfg.FaceOnSight && dist > 0 && (p.faceOK == nil || p.faceOK()) {
		p.owner.SetHeading(p.snap.Direction.Angle())
	}
}

func (p *Perception) evaluate(pos, tpos model.Vec2, dist float64) bool {
	// Близкое обнаружение: в бою агент чувствует цель вокруг себя,
	// конус зрения не применяется.
	if dist <= p.cfg.NearRadius && p.sensesAllAround() {
		return !p.occluder.Occluded(pos, tpos, p.target.Posture())
	}
	if dist > p.cfg.ViewRange {
		return false
	}
	if dist > 0 && p.cfg.ViewAngle < 2*math.Pi {
		diff := model.AngleDiff(tpos.Sub(pos).Angle(), p.owner.Heading())
		if math.Abs(diff) > p.cfg.ViewAngle/2 {
			return false
		}
	}
	return !p.occluder.Occluded(pos, tpos, p.target.Posture())
}

func (p *Perception) sensesAllAround() bool {
	if p.isEngaged() {
		return true
	}
	return p.threat != nil && p.threat.CurrentTier() == model.TierHunted
}

func (p *Perception) isEngaged() bool {
	return p.engaged != nil && p.engaged()
}

// CanSee reports target visibility as of the last refresh.
func (p *Perception) CanSee() bool { return p.snap.Visible }

// Snapshot returns the last refresh result.
func (p *Perception) Snapshot() Snapshot { return p.snap }

// DirectionTo returns the unit direction toward the target as of the last
// refresh.
func (p *Perception) DirectionTo() model.Vec2 { return p.snap.Direction }

// DistanceTo returns the distance to the target as of the last refresh,
// InfiniteDistance when unknown.
func (p *Perception) DistanceTo() float64 { return p.snap.Distance }
