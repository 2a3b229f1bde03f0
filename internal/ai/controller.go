package ai

// Controller represents the per-agent decision layer driven by the
// simulation loop.
type Controller interface {
	// Start enables the controller
	Start()

	// Stop disables the controller
	Stop()

	// Update advances the controller by dt seconds of simulation time
	Update(dt float64)

	// StateName returns the current decision state for logs
	StateName() string
}
