package model

// PathPlan is a sequence of waypoints returned by the path service.
// Replaced wholesale on replan, never mutated in place; consumed by
// monotonically advancing the index, never rewinding.
type PathPlan struct {
	goal      Vec2
	waypoints []Vec2
	idx       int
}

// NewPathPlan wraps the waypoints the path service produced for goal.
// An empty waypoint list is a legal plan meaning "already at goal".
func NewPathPlan(goal Vec2, waypoints []Vec2) *PathPlan {
	return &PathPlan{goal: goal, waypoints: waypoints}
}

// Goal returns the position the plan was computed for.
func (p *PathPlan) Goal() Vec2 {
	return p.goal
}

// Current returns the waypoint under the cursor, or false when exhausted.
func (p *PathPlan) Current() (Vec2, bool) {
	if p.idx >= len(p.waypoints) {
		return Vec2{}, false
	}
	return p.waypoints[p.idx], true
}

// Advance moves the cursor to the next waypoint.
func (p *PathPlan) Advance() {
	if p.idx < len(p.waypoints) {
		p.idx++
	}
}

// Exhausted reports whether every waypoint has been consumed.
func (p *PathPlan) Exhausted() bool {
	return p.idx >= len(p.waypoints)
}

// Len returns the total number of waypoints in the plan.
func (p *PathPlan) Len() int {
	return len(p.waypoints)
}

// Remaining returns the number of waypoints not yet consumed.
func (p *PathPlan) Remaining() int {
	return len(p.waypoints) - p.idx
}
