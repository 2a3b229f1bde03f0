package ai

import (
	"sync/atomic"

	"github.com/jungle0618/warden/internal/model"
)

// RegionClassifier answers whether a world position lies inside a region
// where escalation is always sanctioned.
type RegionClassifier interface {
	IsGuardRegion(p model.Vec2) bool
}

// PermissionRule decides whether an agent may escalate force against a
// target. Shared by every hostile controller, safe for concurrent reads.
type PermissionRule struct {
	regions  RegionClassifier
	threat   model.ThreatSource
	disabled atomic.Bool
}

// NewPermissionRule builds the rule. Both collaborators are optional: a nil
// classifier sanctions no region, a nil threat source never escalates by
// tier.
func NewPermissionRule(regions RegionClassifier, threat model.ThreatSource) *PermissionRule {
	return &PermissionRule{
		regions: regions,
		threat:  threat,
	}
}

// SetDisabled turns the whole rule off: everything is allowed.
func (r *PermissionRule) SetDisabled(disabled bool) {
	r.disabled.Store(disabled)
}

// Disabled reports whether the rule is switched off.
func (r *PermissionRule) Disabled() bool {
	return r.disabled.Load()
}

// Allows reports whether force against target is sanctioned. Checks run
// cheapest first: kill switch, target's position inside a guard region,
// target visibly armed, then the shared threat tier.
func (r *PermissionRule) Allows(target model.Target) bool {
	if r.disabled.Load() {
		return true
	}
	if target == nil {
		return false
	}
	if r.regions != nil && r.regions.IsGuardRegion(target.Position()) {
		return true
	}
	if target.IsArmed() {
		return true
	}
	return r.threat != nil && r.threat.CurrentTier().AboveLowest()
}
