package ai

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Registry owns the AI controllers of all live agents and fans the
// simulation tick out to them.
type Registry struct {
	controllers     sync.Map // map[uint32]Controller — agentID → controller
	controllerCount atomic.Int32
	faults          atomic.Int64
}

// NewRegistry creates an empty controller registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register stores and starts the controller for an agent.
func (r *Registry) Register(agentID uint32, controller Controller) {
	r.controllers.Store(agentID, controller)
	r.controllerCount.Add(1)
	controller.Start()

	slog.Debug("AI controller registered",
		"agentID", agentID,
		"state", controller.StateName())
}

// Unregister removes and stops the controller for an agent.
func (r *Registry) Unregister(agentID uint32) {
	value, ok := r.controllers.LoadAndDelete(agentID)
	if !ok {
		return
	}

	r.controllerCount.Add(-1)

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("AI controller unregistered", "agentID", agentID)
}

// UpdateAll advances every registered controller by dt seconds.
// A panicking controller is removed and counted, the remaining agents keep
// running.
func (r *Registry) UpdateAll(dt float64) {
	count := 0

	r.controllers.Range(func(key, value any) bool {
		r.updateOne(key.(uint32), value.(Controller), dt)
		count++
		return true
	})

	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI update completed", "controllers", count)
	}
}

func (r *Registry) updateOne(agentID uint32, controller Controller, dt float64) {
	defer func() {
		if rec := recover(); rec != nil {
			// Контроллер в неизвестном состоянии: убираем без Stop
			r.controllers.Delete(agentID)
			r.controllerCount.Add(-1)
			r.faults.Add(1)
			slog.Error("AI controller panicked, removing agent",
				"agentID", agentID,
				"panic", rec)
		}
	}()

	controller.Update(dt)
}

// Count returns the number of registered controllers (O(1) cached count).
// IMPORTANT: Count is cached atomically and updated when controllers are
// registered/unregistered. This avoids an O(N) Range() on sync.Map.
func (r *Registry) Count() int {
	return int(r.controllerCount.Load())
}

// Faults returns how many controllers were removed after a panic.
func (r *Registry) Faults() int {
	return int(r.faults.Load())
}

// Get returns the controller for an agent.
func (r *Registry) Get(agentID uint32) (Controller, error) {
	value, ok := r.controllers.Load(agentID)
	if !ok {
		return nil, fmt.Errorf("controller not found for agentID %d", agentID)
	}
	return value.(Controller), nil
}
