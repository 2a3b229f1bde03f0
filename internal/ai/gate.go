package ai

import (
	"errors"

	"github.com/jungle0618/warden/internal/model"
)

// CombatResolver applies the outcome of a landed attack.
type CombatResolver interface {
	ResolveAttack(attacker *model.Agent, target model.Target)
}

// AttackGate serializes one agent's attack attempts.
// Checks run in a fixed order: cooldown, effective reach, permission, and
// only then resolution. A denied attempt never consumes the cooldown.
type AttackGate struct {
	agent        *model.Agent
	resolver     CombatResolver
	perm         *PermissionRule
	cooldown     float64
	defaultReach float64

	lastAttack  float64
	hasAttacked bool
}

// NewAttackGate wires the gate for one agent.
func NewAttackGate(agent *model.Agent, resolver CombatResolver, perm *PermissionRule, cooldown, defaultReach float64) (*AttackGate, error) {
	if agent == nil {
		return nil, errors.New("ai: nil agent")
	}
	if resolver == nil {
		return nil, errors.New("ai: nil combat resolver")
	}
	if perm == nil {
		return nil, errors.New("ai: nil permission rule")
	}
	return &AttackGate{
		agent:        agent,
		resolver:     resolver,
		perm:         perm,
		cooldown:     cooldown,
		defaultReach: defaultReach,
	}, nil
}

// TryAttack attempts one attack at simulation time now. It returns whether
// the attack was resolved. Calling it twice within the cooldown resolves at
// most once.
func (g *AttackGate) TryAttack(now float64, target model.Target) bool {
	if target == nil {
		return false
	}
	if g.hasAttacked && now-g.lastAttack < g.cooldown {
		return false
	}

	reach := g.defaultReach
	if impl, ok := g.agent.Implement(); ok && impl.Reach > 0 {
		reach = impl.Reach
	}
	if g.agent.Position().DistanceSquared(target.Position()) > reach*reach {
		return false
	}

	if !g.perm.Allows(target) {
		return false
	}

	g.resolver.ResolveAttack(g.agent, target)
	g.lastAttack = now
	g.hasAttacked = true
	return true
}
