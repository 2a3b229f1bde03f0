package model

// Target is the point-of-interest accessor the AI core perceives and reacts to.
// Implementations must be safe for concurrent read-only access: multiple agents
// consult the same target within one tick.
type Target interface {
	// Position returns the target's current world position.
	Position() Vec2

	// Posture returns the target's current stance, which selects the
	// obstacle mask used for occlusion checks.
	Posture() Posture

	// IsArmed reports whether the target currently carries a weapon.
	IsArmed() bool
}

// ThreatSource reports the current global threat tier.
type ThreatSource interface {
	CurrentTier() ThreatTier
}

// Mover is the movement backend of a single agent. The navigation layer
// writes desired velocities; the physics host integrates them.
type Mover interface {
	// SetVelocity sets the desired velocity for the next physics step.
	SetVelocity(v Vec2)

	// Velocity returns the actual velocity after the last physics step.
	Velocity() Vec2

	// Position returns the current world position.
	Position() Vec2
}
