// Package nav moves one agent through the world: grid paths with waypoint
// following, a periodic direct-line shortcut, replanning on goal drift or
// budget expiry and two stuck detectors the decision layer polls.
package nav

import (
	"errors"
	"math"

	"github.com/jungle0618/warden/internal/model"
)

// PathService produces waypoint paths between two points.
// A nil result means no path exists. An empty non-nil result means start
// and goal already share a cell.
type PathService interface {
	FindPath(start, goal model.Vec2) []model.Vec2
}

// SweepCaster answers whether a body of the given radius can travel the
// straight segment without hitting blocking geometry.
type SweepCaster interface {
	CanMoveDirect(from, to model.Vec2, radius float64) bool
}

// Mode описывает текущий режим движения координатора.
type Mode int32

const (
	ModeIdle Mode = iota
	ModeDirect
	ModePath
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeDirect:
		return "DIRECT"
	case ModePath:
		return "PATH"
	default:
		return "UNKNOWN"
	}
}

// Coordinator owns an agent's movement between decision ticks. The decision
// layer issues MoveToward/MoveViaPath/Stop, the simulation calls Tick every
// frame. Not safe for concurrent use.
type Coordinator struct {
	mover model.Mover
	paths PathService
	sweep SweepCaster
	cfg   Config

	mode     Mode
	goal     model.Vec2
	speedMul float64
	urgent   bool
	arrived  bool

	plan      *model.PathPlan
	planAge   float64
	planTried bool

	sinceProbe float64
	directOK   bool

	slowFor    float64
	dispFor    float64
	dispOrigin model.Vec2
	stuck      bool

	headingFn func(rad float64)
}

// NewCoordinator wires movement for one agent. Both the mover and the path
// service are mandatory, the sweep caster is optional.
func NewCoordinator(mover model.Mover, paths PathService, cfg Config) (*Coordinator, error) {
	if mover == nil {
		return nil, errors.New("nav: nil mover")
	}
	if paths == nil {
		return nil, errors.New("nav: nil path service")
	}
	return &Coordinator{
		mover: mover,
		paths: paths,
		cfg:   cfg.withDefaults(),
	}, nil
}

// SetSweepCaster enables the periodic direct-line shortcut.
func (c *Coordinator) SetSweepCaster(s SweepCaster) { c.sweep = s }

// SetHeadingFunc wires the callback that receives the travel direction
// whenever the coordinator steers.
func (c *Coordinator) SetHeadingFunc(fn func(rad float64)) { c.headingFn = fn }

// SetUrgent switches to the tighter replan budget. Chase keeps it on.
func (c *Coordinator) SetUrgent(urgent bool) { c.urgent = urgent }

// MoveToward steers straight at goal, no pathfinding.
func (c *Coordinator) MoveToward(goal model.Vec2, speedMul float64) {
	fresh := c.mode != ModeDirect || !c.sameLeg(goal)
	c.mode = ModeDirect
	c.goal = goal
	c.speedMul = speedMul
	c.arrived = false
	c.plan = nil
	if fresh {
		c.resetProgress(c.mover.Position())
	}
}

// MoveViaPath steers toward goal using grid paths. Re-issuing the command
// with a nearby goal keeps the current plan and the stuck accounting, so
// controllers may repeat it on every decision tick.
func (c *Coordinator) MoveViaPath(goal model.Vec2, speedMul float64) {
	fresh := c.mode != ModePath || !c.sameLeg(goal)
	c.mode = ModePath
	c.goal = goal
	c.speedMul = speedMul
	c.arrived = false
	if !fresh {
		return
	}
	c.planTried = false
	c.directOK = false
	// Первый тик сразу пробует прямую, без ожидания интервала
	c.sinceProbe = c.cfg.ProbeInterval
	c.resetProgress(c.mover.Position())
}

// Stop halts the agent and discards the current plan.
func (c *Coordinator) Stop() {
	c.mode = ModeIdle
	c.plan = nil
	c.arrived = false
	c.resetProgress(c.mover.Position())
	c.mover.SetVelocity(model.Vec2{})
}

// ClearPlan drops the current plan but keeps moving. The next path tick
// replans from scratch.
func (c *Coordinator) ClearPlan() {
	c.plan = nil
	c.planTried = false
}

// Tick advances movement by dt seconds. It runs every simulation tick,
// including ticks where the decision layer was skipped.
func (c *Coordinator) Tick(dt float64) {
	if c.mode == ModeIdle {
		return
	}
	pos := c.mover.Position()

	// Скорость прошлого кадра уже отрезолвлена физикой
	c.trackProgress(dt, pos)

	if pos.DistanceSquared(c.goal) <= c.cfg.ArriveRadius*c.cfg.ArriveRadius {
		c.stopAtGoal()
		return
	}

	switch c.mode {
	case ModeDirect:
		c.steer(pos, c.goal)
	case ModePath:
		c.tickPath(dt, pos)
	}
}

func (c *Coordinator) tickPath(dt float64, pos model.Vec2) {
	if c.sweep != nil {
		c.sinceProbe += dt
		if c.sinceProbe >= c.cfg.ProbeInterval {
			c.sinceProbe = math.Mod(c.sinceProbe, c.cfg.ProbeInterval)
			c.directOK = c.sweep.CanMoveDirect(pos, c.goal, c.cfg.Radius)
		}
		if c.directOK {
			c.steer(pos, c.goal)
			return
		}
	}

	c.planAge += dt
	if c.needReplan() {
		c.replan(pos)
		if c.arrived {
			return
		}
	}

	if c.plan == nil {
		// Пути нет: идём напрямую до следующей попытки перепланирования
		c.steer(pos, c.goal)
		return
	}

	for {
		wp, ok := c.plan.Current()
		if !ok {
			break
		}
		if pos.DistanceSquared(wp) > c.cfg.WaypointRadius*c.cfg.WaypointRadius {
			c.steer(pos, wp)
			return
		}
		c.plan.Advance()
	}
	// План исчерпан, но цель ещё не в радиусе прибытия
	c.steer(pos, c.goal)
}

func (c *Coordinator) needReplan() bool {
	budget := c.cfg.ReplanBudget
	if c.urgent {
		budget = c.cfg.ReplanBudgetUrgent
	}
	if c.plan == nil {
		return !c.planTried || c.planAge >= budget
	}
	if c.plan.Exhausted() {
		return true
	}
	if c.goal.DistanceSquared(c.plan.Goal()) > c.cfg.ReplanDrift*c.cfg.ReplanDrift {
		return true
	}
	return c.planAge >= budget
}

func (c *Coordinator) replan(pos model.Vec2) {
	c.planAge = 0
	c.planTried = true
	c.resetProgress(pos)

	waypoints := c.paths.FindPath(pos, c.goal)
	if waypoints == nil {
		c.plan = nil
		return
	}
	if len(waypoints) == 0 {
		// Старт и цель в одной клетке
		c.stopAtGoal()
		return
	}
	c.plan = model.NewPathPlan(c.goal, waypoints)
}

func (c *Coordinator) steer(pos, to model.Vec2) {
	v := to.Sub(pos).Normalized().Scale(c.cfg.BaseSpeed * c.speedMul)
	c.mover.SetVelocity(v)
	if c.headingFn != nil && v.LenSquared() > 0 {
		c.headingFn(v.Angle())
	}
}

func (c *Coordinator) stopAtGoal() {
	c.mode = ModeIdle
	c.plan = nil
	c.arrived = true
	c.mover.SetVelocity(model.Vec2{})
}

func (c *Coordinator) trackProgress(dt float64, pos model.Vec2) {
	commanded := c.cfg.BaseSpeed * c.speedMul
	if commanded <= 0 {
		return
	}

	if c.mover.Velocity().Len() < commanded*c.cfg.StuckSpeedFrac {
		c.slowFor += dt
	} else {
		c.slowFor = 0
	}
	limit := c.cfg.StuckAfterDirect
	if c.mode == ModePath && !c.directOK {
		limit = c.cfg.StuckAfterPath
	}
	if c.slowFor >= limit {
		c.stuck = true
	}

	c.dispFor += dt
	if c.dispFor >= c.cfg.DispWindow {
		if pos.DistanceSquared(c.dispOrigin) < c.cfg.MinDisp*c.cfg.MinDisp {
			c.stuck = true
		}
		c.dispOrigin = pos
		c.dispFor = 0
	}
}

func (c *Coordinator) resetProgress(pos model.Vec2) {
	c.slowFor = 0
	c.dispFor = 0
	c.dispOrigin = pos
	c.stuck = false
}

func (c *Coordinator) sameLeg(goal model.Vec2) bool {
	return goal.DistanceSquared(c.goal) <= c.cfg.ReplanDrift*c.cfg.ReplanDrift
}

// Mode returns the current movement mode.
func (c *Coordinator) Mode() Mode { return c.mode }

// Goal returns the current movement goal.
func (c *Coordinator) Goal() model.Vec2 { return c.goal }

// Arrived reports whether the last movement command reached its goal.
// Issuing a new command clears the flag.
func (c *Coordinator) Arrived() bool { return c.arrived }

// HasPath reports whether an unfinished plan is being followed.
func (c *Coordinator) HasPath() bool { return c.plan != nil && !c.plan.Exhausted() }

// IsStuck reports whether either stuck detector fired. The flag latches
// until a fresh movement command or a replan.
func (c *Coordinator) IsStuck() bool { return c.stuck }

// OwnsHeading reports whether the coordinator is actively steering and
// therefore controls the agent's heading.
func (c *Coordinator) OwnsHeading() bool { return c.headingFn != nil && c.mode != ModeIdle }
