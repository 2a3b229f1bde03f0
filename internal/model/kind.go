package model

// AgentKind distinguishes which decision handler drives an agent.
type AgentKind int32

const (
	// KindHostile - patrols and pursues the point of interest
	KindHostile AgentKind = iota
	// KindFugitive - holds position, then runs an escape route
	KindFugitive
	// KindIntruder - the point of interest itself, driven by the host
	KindIntruder
)

// String returns human-readable kind name
func (k AgentKind) String() string {
	switch k {
	case KindHostile:
		return "HOSTILE"
	case KindFugitive:
		return "FUGITIVE"
	case KindIntruder:
		return "INTRUDER"
	default:
		return "UNKNOWN"
	}
}

// ParseAgentKind converts a scenario string ("hostile", "fugitive") to a kind.
func ParseAgentKind(s string) (AgentKind, bool) {
	switch s {
	case "hostile":
		return KindHostile, true
	case "fugitive":
		return KindFugitive, true
	case "intruder":
		return KindIntruder, true
	default:
		return KindHostile, false
	}
}
