package model

// Posture represents the stance of a perceivable entity.
// A lowered entity hides behind both hard and soft obstacle layers,
// a standing one only behind hard walls.
type Posture int32

const (
	PostureStanding Posture = iota
	PostureLowered
)

// String returns human-readable posture name
func (p Posture) String() string {
	switch p {
	case PostureStanding:
		return "STANDING"
	case PostureLowered:
		return "LOWERED"
	default:
		return "UNKNOWN"
	}
}
