package spawn

import (
	"sync/atomic"

	"github.com/jungle0618/warden/internal/model"
)

// AgentIDAllocator generates unique agent IDs.
// Каждый вид живёт в своём диапазоне, чтобы вид читался прямо из ID в логах.
//
// ID ranges:
//
//	0x00000000 - 0x0FFFFFFF: reserved (0 = invalid/mock agents)
//	0x10000000 - 0x1FFFFFFF: hostiles
//	0x20000000 - 0x2FFFFFFF: fugitives
//	0x30000000 - 0x3FFFFFFF: intruders
type AgentIDAllocator struct {
	nextHostileID  atomic.Uint32
	nextFugitiveID atomic.Uint32
	nextIntruderID atomic.Uint32
}

// NewAgentIDAllocator creates an allocator with every range at its base.
func NewAgentIDAllocator() *AgentIDAllocator {
	a := &AgentIDAllocator{}
	a.nextHostileID.Store(0x10000000)
	a.nextFugitiveID.Store(0x20000000)
	a.nextIntruderID.Store(0x30000000)
	return a
}

// Next generates the next unique ID for the given agent kind.
// Thread-safe via atomic increment.
func (a *AgentIDAllocator) Next(kind model.AgentKind) uint32 {
	switch kind {
	case model.KindHostile:
		return a.nextHostileID.Add(1)
	case model.KindFugitive:
		return a.nextFugitiveID.Add(1)
	default:
		return a.nextIntruderID.Add(1)
	}
}
