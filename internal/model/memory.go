package model

// LastKnown remembers where the point of interest was last sighted.
// Written only while the target is visible; Search-like states read it.
// Expiry after a dwell time is the designed signal to stop searching,
// not an error.
type LastKnown struct {
	pos        Vec2
	recordedAt float64
	valid      bool
}

// Record stores a sighting at the given simulation time.
func (m *LastKnown) Record(pos Vec2, now float64) {
	m.pos = pos
	m.recordedAt = now
	m.valid = true
}

// Invalidate discards the memory.
func (m *LastKnown) Invalidate() {
	m.valid = false
}

// Valid reports whether a sighting exists and is younger than dwell seconds.
func (m *LastKnown) Valid(now, dwell float64) bool {
	return m.valid && now-m.recordedAt <= dwell
}

// Position returns the remembered position. Meaningful only while Valid.
func (m *LastKnown) Position() Vec2 {
	return m.pos
}

// RecordedAt returns the simulation time of the last sighting.
func (m *LastKnown) RecordedAt() float64 {
	return m.recordedAt
}
