package fsm

import "sync/atomic"

var strictTransitions atomic.Bool

// SetStrictTransitions toggles assertion mode: when enabled, a transition to
// a state outside the machine's valid set panics instead of being logged and
// dropped. Meant for tests and development builds.
func SetStrictTransitions(enabled bool) {
	strictTransitions.Store(enabled)
}

// StrictTransitions returns the current assertion mode.
func StrictTransitions() bool {
	return strictTransitions.Load()
}
