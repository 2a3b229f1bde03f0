package world

import (
	"github.com/jakecoffman/cp"

	"github.com/jungle0618/warden/internal/model"
)

// Body adapts one physics body to the movement backend the navigation layer
// drives. The nav layer writes desired velocities; Space.Step integrates
// them and resolves contacts, so Velocity after a step reflects what the
// world actually allowed.
type Body struct {
	body  *cp.Body
	shape *cp.Shape
}

// SetVelocity sets the desired velocity for the next physics step.
func (b *Body) SetVelocity(v model.Vec2) {
	b.body.SetVelocity(v.X, v.Y)
}

// Velocity returns the actual velocity after the last physics step.
func (b *Body) Velocity() model.Vec2 {
	vel := b.body.Velocity()
	return model.Vec2{X: vel.X, Y: vel.Y}
}

// Position returns the current world position.
func (b *Body) Position() model.Vec2 {
	pos := b.body.Position()
	return model.Vec2{X: pos.X, Y: pos.Y}
}

// SetPosition teleports the body. Spawn-time placement only: teleporting a
// body mid-simulation skips collision resolution for that step.
func (b *Body) SetPosition(p model.Vec2) {
	b.body.SetPosition(cp.Vector{X: p.X, Y: p.Y})
}
