package ecs

import "fmt"

// EntityId packs the archetype id into the upper 32 bits and the slot index
// into the lower 32. Moving an entity to another archetype changes its id
// and deleted slots are reused.
type EntityId uint64

func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

func (e EntityId) Index() uint32 {
	return uint32(e)
}

// String formats the id as archetype:index with the archetype in hex.
func (e EntityId) String() string {
	return fmt.Sprintf("%x:%d", e.ArchetypeId(), e.Index())
}

// EntityRef follows an entity across archetype moves. Obtain one from
// Storage.CreateEntityRef.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}
