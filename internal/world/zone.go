package world

import (
	"math"
	"sync/atomic"

	"github.com/jungle0618/warden/internal/model"
)

// ActiveZone is the axis-aligned window of the world that stays fully
// simulated. Agents outside it stop sensing and deciding; movement in
// progress keeps executing so partially finished actions complete.
// The host moves the zone with the point of interest.
type ActiveZone struct {
	center atomic.Pointer[model.Vec2]
	halfW  float64
	halfH  float64
}

// NewActiveZone creates a zone of the given full extents centered at c.
func NewActiveZone(c model.Vec2, width, height float64) *ActiveZone {
	z := &ActiveZone{halfW: width / 2, halfH: height / 2}
	z.center.Store(&c)
	return z
}

// SetCenter moves the zone. Safe to call while agents are mid-tick.
func (z *ActiveZone) SetCenter(c model.Vec2) {
	z.center.Store(&c)
}

// Center returns the current zone center.
func (z *ActiveZone) Center() model.Vec2 {
	return *z.center.Load()
}

// Contains reports whether pos is inside the zone.
func (z *ActiveZone) Contains(pos model.Vec2) bool {
	c := *z.center.Load()
	return math.Abs(pos.X-c.X) <= z.halfW && math.Abs(pos.Y-c.Y) <= z.halfH
}

// Outside is the culling predicate handed to perception.
func (z *ActiveZone) Outside(pos model.Vec2) bool {
	return !z.Contains(pos)
}
