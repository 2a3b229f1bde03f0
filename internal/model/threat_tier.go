package model

import "fmt"

// ThreatTier is the global alertness signal shared by all agents.
// Tiers are ordered: comparisons with < and > are meaningful.
type ThreatTier int32

const (
	// TierCalm - nothing happened, the lowest tier
	TierCalm ThreatTier = iota
	// TierWary - something is off (an escape started, a body found)
	TierWary
	// TierHunted - open hostility, the maximum tier
	TierHunted
)

// String returns human-readable tier name
func (t ThreatTier) String() string {
	switch t {
	case TierCalm:
		return "CALM"
	case TierWary:
		return "WARY"
	case TierHunted:
		return "HUNTED"
	default:
		return "UNKNOWN"
	}
}

// AboveLowest reports whether the tier is above TierCalm.
// Used by the region permission rule for safe-region encounters.
func (t ThreatTier) AboveLowest() bool {
	return t > TierCalm
}

// ParseThreatTier converts a config string ("calm", "wary", "hunted") to a tier.
func ParseThreatTier(s string) (ThreatTier, error) {
	switch s {
	case "calm":
		return TierCalm, nil
	case "wary":
		return TierWary, nil
	case "hunted":
		return TierHunted, nil
	default:
		return TierCalm, fmt.Errorf("unknown threat tier %q", s)
	}
}
