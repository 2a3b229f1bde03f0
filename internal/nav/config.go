package nav

// Default tuning for the coordinator. Distances are world units,
// durations are seconds.
const (
	defaultArriveRadius   = 0.45 // keep >= defaultWaypointRadius or exhausted plans replan forever
	defaultWaypointRadius = 0.35
	defaultReplanDrift    = 1.2  // goal drift that invalidates the current plan
	defaultReplanBudget   = 2.0  // normal replan period
	defaultUrgentBudget   = 0.6  // replan period while chasing
	defaultProbeInterval  = 0.35 // direct-line shape cast cadence
	defaultStuckSpeedFrac = 0.25 // fraction of commanded speed counting as blocked
	defaultStuckDirect    = 0.9  // blocked time before direct movement is stuck
	defaultStuckPath      = 0.5  // tighter while following a plan
	defaultDispWindow     = 1.5  // net displacement check period
	defaultMinDisp        = 0.6  // minimum progress per window
)

// Config tunes one agent's movement. Zero fields fall back to defaults,
// BaseSpeed and Radius have no defaults and come from the archetype.
type Config struct {
	// BaseSpeed is the commanded speed at multiplier 1.0.
	BaseSpeed float64
	// Radius is the agent's body radius used by the direct-line probe.
	Radius float64

	ArriveRadius   float64
	WaypointRadius float64

	ReplanDrift        float64
	ReplanBudget       float64
	ReplanBudgetUrgent float64
	ProbeInterval      float64

	StuckSpeedFrac   float64
	StuckAfterDirect float64
	StuckAfterPath   float64
	DispWindow       float64
	MinDisp          float64
}

func (c Config) withDefaults() Config {
	if c.ArriveRadius <= 0 {
		c.ArriveRadius = defaultArriveRadius
	}
	if c.WaypointRadius <= 0 {
		c.WaypointRadius = defaultWaypointRadius
	}
	if c.ReplanDrift <= 0 {
		c.ReplanDrift = defaultReplanDrift
	}
	if c.ReplanBudget <= 0 {
		c.ReplanBudget = defaultReplanBudget
	}
	if c.ReplanBudgetUrgent <= 0 {
		c.ReplanBudgetUrgent = defaultUrgentBudget
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = defaultProbeInterval
	}
	if c.StuckSpeedFrac <= 0 {
		c.StuckSpeedFrac = defaultStuckSpeedFrac
	}
	if c.StuckAfterDirect <= 0 {
		c.StuckAfterDirect = defaultStuckDirect
	}
	if c.StuckAfterPath <= 0 {
		c.StuckAfterPath = defaultStuckPath
	}
	if c.DispWindow <= 0 {
		c.DispWindow = defaultDispWindow
	}
	if c.MinDisp <= 0 {
		c.MinDisp = defaultMinDisp
	}
	return c
}
