package model

// Implement is an equipped tool or weapon. Its reach overrides the
// archetype's default attack range while equipped.
type Implement struct {
	Name  string
	Reach float64
}
