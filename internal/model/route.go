package model

import "fmt"

// PatrolRoute is an ordered, cyclic sequence of world positions.
// Loaded by a data collaborator and referenced read-only by agents;
// the current index is mutable agent state, not route state.
type PatrolRoute struct {
	name   string
	points []Vec2
}

// NewPatrolRoute builds an immutable route. At least one point is required.
func NewPatrolRoute(name string, points []Vec2) (*PatrolRoute, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("patrol route %q has no points", name)
	}
	cp := make([]Vec2, len(points))
	copy(cp, points)
	return &PatrolRoute{name: name, points: cp}, nil
}

// Name returns the route name.
func (r *PatrolRoute) Name() string {
	return r.name
}

// Len returns the number of waypoints.
func (r *PatrolRoute) Len() int {
	return len(r.points)
}

// Point returns the waypoint at index i. i must be in [0, Len).
func (r *PatrolRoute) Point(i int) Vec2 {
	return r.points[i]
}

// First returns the route's first waypoint.
func (r *PatrolRoute) First() Vec2 {
	return r.points[0]
}

// NextIndex returns the index after i, wrapping around the cycle.
func (r *PatrolRoute) NextIndex(i int) int {
	return (i + 1) % len(r.points)
}
