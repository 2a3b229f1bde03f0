package world

import (
	"log/slog"
	"sync"

	"github.com/jungle0618/warden/internal/model"
)

// defaultQuietPeriod is how long the world must stay quiet before the
// threat tier decays one step.
const defaultQuietPeriod = 20.0

// ThreatTracker holds the shared alarm level of a scenario. Combat and
// escape events raise it; quiet time lowers it one tier per period.
// Safe for concurrent use.
type ThreatTracker struct {
	mu     sync.Mutex
	tier   model.ThreatTier
	quiet  float64
	period float64
}

// NewThreatTracker starts calm. period <= 0 uses the default quiet period.
func NewThreatTracker(period float64) *ThreatTracker {
	if period <= 0 {
		period = defaultQuietPeriod
	}
	return &ThreatTracker{tier: model.TierCalm, period: period}
}

// CurrentTier returns the present alarm level.
func (t *ThreatTracker) CurrentTier() model.ThreatTier {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tier
}

// RaiseTo lifts the alarm to at least tier and resets the quiet timer.
// Raising to a lower tier still resets the timer: the event proves the
// world is not quiet.
func (t *ThreatTracker) RaiseTo(tier model.ThreatTier) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.quiet = 0
	if tier > t.tier {
		slog.Info("Threat tier raised",
			"from", t.tier.String(),
			"to", tier.String())
		t.tier = tier
	}
}

// Update advances the quiet timer by dt seconds and decays the tier one
// step per full quiet period.
func (t *ThreatTracker) Update(dt float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tier == model.TierCalm {
		t.quiet = 0
		return
	}

	t.quiet += dt
	for t.quiet >= t.period && t.tier > model.TierCalm {
		t.quiet -= t.period
		t.tier--
		slog.Debug("Threat tier decayed", "tier", t.tier.String())
	}
}
