package ecs

import (
	"cmp"
	"iter"
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

// sortTypes orders component types by name, the canonical archetype order.
func sortTypes(types []reflect.Type) {
	slices.SortFunc(types, func(a, b reflect.Type) int {
		return cmp.Compare(a.String(), b.String())
	})
}

// Archetype stores every entity that has exactly one set of component
// types. Each type gets its own storage and an entity's index is the same
// slot in all of them.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []iComponentStorage
	refs     *intmap.Map[EntityId, weak.Pointer[EntityRef]]
	count    int
}

// NewArchetype creates an archetype for sorted types. It panics if a type
// was never registered.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		storages: make([]iComponentStorage, len(types)),
		refs:     intmap.New[EntityId, weak.Pointer[EntityRef]](256),
	}
	for i, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[i] = factory()
	}
	return a
}

func (a *Archetype) storageIndex(t reflect.Type) int {
	return slices.Index(a.types, t)
}

// Spawn stores one component of each archetype type and returns the slot.
// Components may be values or pointers to values.
func (a *Archetype) Spawn(components []any) uint32 {
	slot := -1
	for _, component := range components {
		t := reflect.TypeOf(component)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		idx := a.storageIndex(t)
		if idx < 0 {
			panic("component type " + t.String() + " is not part of the archetype")
		}
		got := a.storages[idx].Append(component)
		if slot >= 0 && got != slot {
			panic("archetype storages out of step")
		}
		slot = got
	}
	a.count++
	return uint32(slot)
}

// GetComponent returns a pointer to the component of type compType in the
// given slot, or nil.
func (a *Archetype) GetComponent(entityIndex uint32, compType reflect.Type) any {
	idx := a.storageIndex(compType)
	if idx < 0 {
		return nil
	}
	return a.storages[idx].Get(int(entityIndex))
}

// Delete frees a slot. Entity refs to it are cleared.
func (a *Archetype) Delete(entityIndex uint32) {
	if len(a.storages) == 0 || !a.storages[0].Has(int(entityIndex)) {
		return
	}

	id := NewEntityId(a.id, entityIndex)
	if weakPtr, ok := a.refs.Get(id); ok {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(id)
	}

	for _, storage := range a.storages {
		storage.Delete(int(entityIndex))
	}
	a.count--
}

func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return a.storageIndex(compType) >= 0
}

func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types. The slice must not be modified.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	return a.count
}

// Iter yields the ids of live entities in slot order.
func (a *Archetype) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		if len(a.storages) == 0 {
			return
		}
		for index := range a.storages[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}
