package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// ComponentRegistry knows how to build storage for each component type.
// Every Storage has its own registry.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent makes T usable as a component. Registering twice is a
// no-op.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, ok := r.factories[t]; ok {
		return
	}
	r.factories[t] = func() iComponentStorage {
		return &genericComponentStorage[T]{}
	}
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const blockSize = 64

// block is a fixed run of component slots. Blocks are allocated separately
// so pointers into them stay valid as storage grows.
type block[T any] struct {
	items  [blockSize]T
	filled [blockSize]bool
}

// genericComponentStorage stores components of type T in blocks. Deleted
// slots are reused, most recently freed first.
type genericComponentStorage[T any] struct {
	blocks    []*block[T]
	freeSlots []int
	nextIndex int
}

func (cs *genericComponentStorage[T]) slot(index int) (*block[T], int) {
	if index < 0 || index >= cs.nextIndex {
		return nil, 0
	}
	return cs.blocks[index/blockSize], index % blockSize
}

// Append stores item, a T or *T, and returns its slot.
func (cs *genericComponentStorage[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case T:
		value = v
	case *T:
		value = *v
	default:
		panic(fmt.Sprintf("component storage for %s cannot hold %T", reflect.TypeFor[T](), item))
	}

	var index int
	if n := len(cs.freeSlots); n > 0 {
		index = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/blockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, &block[T]{})
		}
	}

	b, i := cs.slot(index)
	b.items[i] = value
	b.filled[i] = true
	return index
}

// Get returns a *T for a filled slot, nil otherwise.
func (cs *genericComponentStorage[T]) Get(index int) any {
	b, i := cs.slot(index)
	if b == nil || !b.filled[i] {
		return nil
	}
	return &b.items[i]
}

// Delete empties a slot and queues it for reuse.
func (cs *genericComponentStorage[T]) Delete(index int) {
	b, i := cs.slot(index)
	if b == nil || !b.filled[i] {
		return
	}
	var zero T
	b.items[i] = zero
	b.filled[i] = false
	cs.freeSlots = append(cs.freeSlots, index)
}

func (cs *genericComponentStorage[T]) Has(index int) bool {
	b, i := cs.slot(index)
	return b != nil && b.filled[i]
}

// Iter yields the filled slots in index order.
func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for index := range cs.nextIndex {
			b := cs.blocks[index/blockSize]
			if b.filled[index%blockSize] && !yield(index) {
				return
			}
		}
	}
}
