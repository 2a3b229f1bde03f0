package world

import (
	"github.com/jakecoffman/cp"

	"github.com/jungle0618/warden/internal/model"
)

// Collision filter categories. Walls block movement and sight at any
// posture; cover blocks movement but hides only lowered targets.
const (
	CategoryWall  uint = 1 << 0
	CategoryCover uint = 1 << 1
	CategoryAgent uint = 1 << 2
)

// Space wraps the physics space: static obstacle geometry, dynamic agent
// bodies and the segment queries that senses and navigation run against it.
// Mutating calls are not safe for concurrent use — the sim runner owns the
// space and steps it once per tick.
type Space struct {
	cp *cp.Space

	walls  int
	covers int
	agents int
}

// NewSpace creates an empty top-down space. No gravity: agents move only by
// the velocities the navigation layer writes.
func NewSpace() *Space {
	sp := cp.NewSpace()
	sp.Iterations = 10
	sp.SetGravity(cp.Vector{})
	return &Space{cp: sp}
}

// AddWall inserts a hard obstacle.
func (s *Space) AddWall(r model.Rect) {
	s.addStatic(r, CategoryWall)
	s.walls++
}

// AddCover inserts a soft obstacle.
func (s *Space) AddCover(r model.Rect) {
	s.addStatic(r, CategoryCover)
	s.covers++
}

func (s *Space) addStatic(r model.Rect, category uint) {
	bb := cp.BB{L: r.Min.X, B: r.Min.Y, R: r.Max.X, T: r.Max.Y}
	shape := cp.NewBox2(s.cp.StaticBody, bb, 0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category, cp.ALL_CATEGORIES))
	shape.SetElasticity(0)
	shape.SetFriction(0)
	s.cp.AddShape(shape)
}

// AddAgentBody creates the dynamic circle body for one agent and returns its
// movement adapter. Infinite moment keeps wall contacts from spinning the
// body; mass stays at 1 so agents push off each other instead of stacking.
func (s *Space) AddAgentBody(pos model.Vec2, radius float64) *Body {
	body := cp.NewBody(1, cp.INFINITY)
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetElasticity(0)
	shape.SetFriction(0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, CategoryAgent, cp.ALL_CATEGORIES))

	s.cp.AddBody(body)
	s.cp.AddShape(shape)
	s.agents++
	return &Body{body: body, shape: shape}
}

// RemoveBody detaches an agent body and its shape from the space.
func (s *Space) RemoveBody(b *Body) {
	if b == nil || b.body == nil {
		return
	}
	s.cp.RemoveShape(b.shape)
	s.cp.RemoveBody(b.body)
	s.agents--
}

// Occluded reports whether the straight line of sight from the watcher to a
// target at the given posture is blocked. Standing targets hide only behind
// walls, lowered ones also behind cover. Agent bodies never block sight.
func (s *Space) Occluded(from, to model.Vec2, posture model.Posture) bool {
	filter := cp.NewShapeFilter(cp.NO_GROUP, CategoryAgent, sightMask(posture))
	hit := s.cp.SegmentQueryFirst(cpVec(from), cpVec(to), 0, filter)
	return hit.Shape != nil
}

// CanMoveDirect reports whether a body of the given radius can travel the
// straight segment without touching walls or cover.
func (s *Space) CanMoveDirect(from, to model.Vec2, radius float64) bool {
	filter := cp.NewShapeFilter(cp.NO_GROUP, CategoryAgent, CategoryWall|CategoryCover)
	hit := s.cp.SegmentQueryFirst(cpVec(from), cpVec(to), radius, filter)
	return hit.Shape == nil
}

// Step advances physics by dt seconds, integrating the velocities the nav
// layer wrote during the tick and resolving wall contacts.
func (s *Space) Step(dt float64) {
	s.cp.Step(dt)
}

// Counts returns the number of walls, covers and agent bodies in the space.
func (s *Space) Counts() (walls, covers, agents int) {
	return s.walls, s.covers, s.agents
}

func sightMask(posture model.Posture) uint {
	if posture == model.PostureLowered {
		return CategoryWall | CategoryCover
	}
	return CategoryWall
}

func cpVec(v model.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
