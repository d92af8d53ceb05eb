package ecs

import "fmt"

// EntityId encodes a slot generation (upper 32 bits) and a slot index (lower
// 32 bits). Generations start at 1, so the zero id never names an entity.
type EntityId uint64

func newEntityId(generation uint32, slot uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(slot))
}

// Generation extracts the slot generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// Slot extracts the slot index from the entity ID
func (e EntityId) Slot() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

func (e EntityId) String() string {
	return fmt.Sprintf("%d:%d", e.Slot(), e.Generation())
}
