// Package combat resolves landed attacks: the damage roll, the kill
// callback and the threat escalation every fight causes. The AI core sees
// the resolver only through its attack-gate interface.
package combat

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/jungle0618/warden/internal/model"
)

// Damageable is the subset of a target the resolver can hurt.
// *model.Agent satisfies it; scripted targets may choose not to.
type Damageable interface {
	ApplyDamage(amount int32) bool
}

// ThreatRaiser escalates the shared alarm level. world.ThreatTracker
// satisfies it.
type ThreatRaiser interface {
	RaiseTo(tier model.ThreatTier)
}

// HitResult описывает один разрешённый удар для наблюдения в тестах.
type HitResult struct {
	AttackerID uint32
	Damage     int32
	Killed     bool
}

// Resolver applies attack outcomes. Fire-and-forget from the attacker's
// side: the gate already checked cooldown, reach and permission.
type Resolver struct {
	minDamage int32
	maxDamage int32
	threat    ThreatRaiser

	// onKill is injected to avoid an import cycle with the controller
	// registry: the host looks the victim's controller up there.
	onKill      func(attacker *model.Agent, victim model.Target)
	hitObserver func(HitResult)
}

// NewResolver builds a resolver rolling damage uniformly in [min, max].
func NewResolver(minDamage, maxDamage int32, threat ThreatRaiser) (*Resolver, error) {
	if minDamage < 1 || maxDamage < minDamage {
		return nil, fmt.Errorf("combat: invalid damage range [%d, %d]", minDamage, maxDamage)
	}
	return &Resolver{
		minDamage: minDamage,
		maxDamage: maxDamage,
		threat:    threat,
	}, nil
}

// SetKillFunc sets the callback fired once per killing blow.
func (r *Resolver) SetKillFunc(fn func(attacker *model.Agent, victim model.Target)) {
	r.onKill = fn
}

// SetHitObserver sets the callback observing every resolved hit (nil in
// production).
func (r *Resolver) SetHitObserver(fn func(HitResult)) {
	r.hitObserver = fn
}

// ResolveAttack rolls damage against the target. Targets that cannot take
// damage still raise the threat: swinging at the intruder is loud either way.
func (r *Resolver) ResolveAttack(attacker *model.Agent, target model.Target) {
	if attacker == nil || target == nil {
		return
	}

	damage := r.minDamage
	if r.maxDamage > r.minDamage {
		damage += rand.Int32N(r.maxDamage - r.minDamage + 1)
	}

	killed := false
	if victim, ok := target.(Damageable); ok {
		killed = victim.ApplyDamage(damage)
	}

	slog.Debug("Attack resolved",
		"attackerID", attacker.ID(),
		"attacker", attacker.Name(),
		"damage", damage,
		"killed", killed)

	if r.threat != nil {
		r.threat.RaiseTo(model.TierHunted)
	}
	if killed && r.onKill != nil {
		r.onKill(attacker, target)
	}
	if r.hitObserver != nil {
		r.hitObserver(HitResult{
			AttackerID: attacker.ID(),
			Damage:     damage,
			Killed:     killed,
		})
	}
}
