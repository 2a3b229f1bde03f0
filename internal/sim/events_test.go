package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_PushDrain(t *testing.T) {
	q := NewQueue()
	assert.Equal(t, 0, q.Len())

	q.Push(Event{Type: EventStateChanged, AgentID: 1, From: "PATROL", To: "ALERT"})
	q.Push(Event{Type: EventAgentKilled, AgentID: 2, AttackerID: 1})
	q.Push(Event{Type: EventExtracted, AgentID: 3})
	assert.Equal(t, 3, q.Len())

	events := q.Drain()
	assert.Equal(t, 0, q.Len())

	// FIFO порядок.
	assert.Equal(t, EventStateChanged, events[0].Type)
	assert.Equal(t, EventAgentKilled, events[1].Type)
	assert.Equal(t, EventExtracted, events[2].Type)
	assert.Equal(t, uint32(1), events[1].AttackerID)

	assert.Nil(t, q.Drain())
}

func TestQueue_NilSafe(t *testing.T) {
	var q *Queue

	q.Push(Event{Type: EventExtracted, AgentID: 1})
	assert.Nil(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}
