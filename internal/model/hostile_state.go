package model

// HostileState represents the behavioral state of a hostile agent.
type HostileState int32

const (
	// HostilePatrol - agent walks its waypoint route, nothing sighted
	HostilePatrol HostileState = iota
	// HostileAlert - agent has sighted the point of interest and holds position
	HostileAlert
	// HostileChase - agent actively pursues the point of interest
	HostileChase
	// HostileSearch - agent investigates the last known position
	HostileSearch
	// HostileReturn - agent gave up and walks back to its route
	HostileReturn
	// HostileDead - terminal, no further transitions
	HostileDead
)

// String returns human-readable state name
func (s HostileState) String() string {
	switch s {
	case HostilePatrol:
		return "PATROL"
	case HostileAlert:
		return "ALERT"
	case HostileChase:
		return "CHASE"
	case HostileSearch:
		return "SEARCH"
	case HostileReturn:
		return "RETURN"
	case HostileDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// HostileStates lists every state of the hostile machine.
func HostileStates() []HostileState {
	return []HostileState{
		HostilePatrol,
		HostileAlert,
		HostileChase,
		HostileSearch,
		HostileReturn,
		HostileDead,
	}
}
