package model

// FugitiveState represents the behavioral state of a fugitive agent.
type FugitiveState int32

const (
	// FugitiveStay - agent holds its starting position
	FugitiveStay FugitiveState = iota
	// FugitiveEscape - agent runs its escape route; never returns to Stay
	FugitiveEscape
	// FugitiveDead - terminal, no further transitions
	FugitiveDead
)

// String returns human-readable state name
func (s FugitiveState) String() string {
	switch s {
	case FugitiveStay:
		return "STAY"
	case FugitiveEscape:
		return "ESCAPE"
	case FugitiveDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// FugitiveStates lists every state of the fugitive machine.
func FugitiveStates() []FugitiveState {
	return []FugitiveState{FugitiveStay, FugitiveEscape, FugitiveDead}
}
