// Package fsm provides a small timed state machine used by agent controllers.
// A Machine tracks the current state, time spent in it and an optional
// countdown, and fires enter/exit hooks plus transition subscribers on every
// accepted state change.
package fsm

import (
	"fmt"
	"log/slog"
)

// State is any comparable enum-like type that can describe itself in logs.
type State interface {
	comparable
	fmt.Stringer
}

// Machine is not safe for concurrent use. Each agent controller owns one
// machine and drives it from the simulation tick.
type Machine[S State] struct {
	current  S
	terminal S
	valid    map[S]struct{}

	onEnter map[S][]func()
	onExit  map[S][]func()
	subs    []func(old, new S)

	timeInState  float64
	countdown    float64
	countdownSet bool
}

// New builds a machine starting in initial. Reaching terminal latches the
// machine: every later ChangeState is ignored. The initial and terminal
// states are always part of the valid set.
func New[S State](initial, terminal S, states []S) *Machine[S] {
	valid := make(map[S]struct{}, len(states)+2)
	for _, s := range states {
		valid[s] = struct{}{}
	}
	valid[initial] = struct{}{}
	valid[terminal] = struct{}{}

	return &Machine[S]{
		current:  initial,
		terminal: terminal,
		valid:    valid,
		onEnter:  make(map[S][]func()),
		onExit:   make(map[S][]func()),
	}
}

// Current returns the active state.
func (m *Machine[S]) Current() S {
	return m.current
}

// Is reports whether the machine is in s.
func (m *Machine[S]) Is(s S) bool {
	return m.current == s
}

// InTerminal reports whether the machine has latched in its terminal state.
func (m *Machine[S]) InTerminal() bool {
	return m.current == m.terminal
}

// Valid reports whether s belongs to the machine's state set.
func (m *Machine[S]) Valid(s S) bool {
	_, ok := m.valid[s]
	return ok
}

// OnEnter registers fn to run whenever the machine enters s.
func (m *Machine[S]) OnEnter(s S, fn func()) {
	m.onEnter[s] = append(m.onEnter[s], fn)
}

// OnExit registers fn to run whenever the machine leaves s.
func (m *Machine[S]) OnExit(s S, fn func()) {
	m.onExit[s] = append(m.onExit[s], fn)
}

// Subscribe registers fn to run after every accepted transition.
func (m *Machine[S]) Subscribe(fn func(old, new S)) {
	m.subs = append(m.subs, fn)
}

// ChangeState moves the machine to next. Re-entering the current state is a
// no-op: no hooks fire, no timers reset. Once the terminal state is reached
// the machine ignores all further requests. An undefined target state panics
// when strict transitions are enabled and is logged and dropped otherwise.
func (m *Machine[S]) ChangeState(next S) {
	if next == m.current {
		return
	}
	if m.current == m.terminal {
		return
	}
	if _, ok := m.valid[next]; !ok {
		if StrictTransitions() {
			panic(fmt.Sprintf("fsm: transition to undefined state %s", next))
		}
		slog.Error("Dropping transition to undefined state",
			"from", m.current.String(),
			"to", next.String())
		return
	}

	old := m.current
	for _, fn := range m.onExit[old] {
		fn()
	}

	m.current = next
	m.timeInState = 0
	m.countdown = 0
	m.countdownSet = false

	for _, fn := range m.onEnter[next] {
		fn()
	}
	for _, fn := range m.subs {
		fn(old, next)
	}
}

// Update advances the machine's timers by dt seconds.
func (m *Machine[S]) Update(dt float64) {
	m.timeInState += dt
	if m.countdownSet {
		m.countdown -= dt
	}
}

// TimeInState returns seconds spent in the current state.
func (m *Machine[S]) TimeInState() float64 {
	return m.timeInState
}

// SetCountdown arms a countdown of seconds. Calling it again rewinds the
// timer, transitions clear it.
func (m *Machine[S]) SetCountdown(seconds float64) {
	m.countdown = seconds
	m.countdownSet = true
}

// ClearCountdown disarms the countdown.
func (m *Machine[S]) ClearCountdown() {
	m.countdown = 0
	m.countdownSet = false
}

// CountdownExpired reports whether an armed countdown has run out.
// A machine without an armed countdown never expires.
func (m *Machine[S]) CountdownExpired() bool {
	return m.countdownSet && m.countdown <= 0
}
