package sim

// EventType identifies what a simulation event describes.
type EventType string

const (
	// EventStateChanged is emitted on every controller state transition.
	EventStateChanged EventType = "state_changed"
	// EventAgentKilled is emitted when combat resolution kills an agent.
	EventAgentKilled EventType = "agent_killed"
	// EventExtracted is emitted once when a fugitive completes its escape.
	EventExtracted EventType = "extracted"
)

// Event is one observable simulation fact. The runner drains the queue at
// the end of every tick and hands events to subscribers (animation, sound
// and scoring collaborators in a real host).
type Event struct {
	Type    EventType
	AgentID uint32

	// State transition, filled for EventStateChanged.
	From string
	To   string

	// AttackerID is filled for EventAgentKilled.
	AttackerID uint32
}

// Queue is a simple FIFO owned by the runner goroutine: producers are the
// controller callbacks firing inside the tick, the consumer is the drain at
// the end of the same tick.
type Queue struct {
	items []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push adds an event. Safe on a nil queue so callbacks can stay unguarded.
func (q *Queue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all queued events and clears the queue.
func (q *Queue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
