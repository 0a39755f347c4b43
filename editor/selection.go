package editor

import (
	"fmt"
	"iter"

	"github.com/plus3/ed2d/ecs"
)

// SelectionMode controls how Select mutates the selection.
type SelectionMode int

const (
	// SelectReplace clears the selection and selects a single entity.
	SelectReplace SelectionMode = iota
	// SelectAdd toggles the membership of a single entity. Despite the name
	// it removes the entity when it is already selected.
	SelectAdd
	// SelectExtend is range selection. It is not implemented and panics.
	SelectExtend
)

func (m SelectionMode) String() string {
	switch m {
	case SelectReplace:
		return "Replace"
	case SelectAdd:
		return "Add"
	case SelectExtend:
		return "Extend"
	default:
		return fmt.Sprintf("SelectionMode(%d)", int(m))
	}
}

// SelectionAction records a call to Select.
type SelectionAction struct {
	Mode   SelectionMode
	Entity ecs.EntityId
}

// SelectedEntities is an ordered set of entities. Insertion order is kept so
// the most recently selected entity is the last one.
//
// Members are held as entity refs, so an entity stays selected when adding
// or removing components changes its id. A deleted member is skipped by
// every reader until Prune drops it, and an entity later spawned into the
// same slot is not selected.
type SelectedEntities struct {
	storage *ecs.Storage
	order   []selectedEntity
	index   map[*ecs.EntityRef]int
	last    *SelectionAction
}

type selectedEntity struct {
	ref  *ecs.EntityRef
	seen ecs.EntityId // id at the last Prune, reported once the ref dies
}

// NewSelectedEntities returns an empty selection of entities in storage.
func NewSelectedEntities(storage *ecs.Storage) *SelectedEntities {
	return &SelectedEntities{
		storage: storage,
		index:   make(map[*ecs.EntityRef]int),
	}
}

// Select applies mode to entity and records the action. An entity that does
// not exist is never inserted, though Replace still clears the selection.
func (s *SelectedEntities) Select(mode SelectionMode, entity ecs.EntityId) {
	switch mode {
	case SelectReplace:
		s.Clear()
		s.insert(entity)
	case SelectAdd:
		if ref := s.lookup(entity); ref != nil {
			s.remove(ref)
		} else {
			s.insert(entity)
		}
	case SelectExtend:
		panic("editor: range selection is not implemented")
	default:
		panic("editor: unknown selection mode " + mode.String())
	}
	s.last = &SelectionAction{Mode: mode, Entity: entity}
}

// lookup returns the member ref of entity, or nil.
func (s *SelectedEntities) lookup(entity ecs.EntityId) *ecs.EntityRef {
	ref := s.storage.LookupEntityRef(entity)
	if ref == nil {
		return nil
	}
	if _, ok := s.index[ref]; !ok {
		return nil
	}
	return ref
}

func (s *SelectedEntities) insert(entity ecs.EntityId) {
	if !s.storage.Exists(entity) {
		return
	}
	ref := s.storage.CreateEntityRef(entity)
	s.index[ref] = len(s.order)
	s.order = append(s.order, selectedEntity{ref: ref, seen: entity})
}

func (s *SelectedEntities) remove(ref *ecs.EntityRef) {
	pos, ok := s.index[ref]
	if !ok {
		return
	}
	delete(s.index, ref)
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	for i := pos; i < len(s.order); i++ {
		s.index[s.order[i].ref] = i
	}
}

// Remove drops entity from the selection. The last action is left untouched.
func (s *SelectedEntities) Remove(entity ecs.EntityId) {
	if ref := s.lookup(entity); ref != nil {
		s.remove(ref)
	}
}

// Prune drops members that were deleted and returns the last ids they were
// seen with.
func (s *SelectedEntities) Prune() []ecs.EntityId {
	var dead []ecs.EntityId
	kept := s.order[:0]
	for _, e := range s.order {
		id, ok := s.storage.ResolveEntityRef(e.ref)
		if !ok {
			delete(s.index, e.ref)
			dead = append(dead, e.seen)
			continue
		}
		e.seen = id
		s.index[e.ref] = len(kept)
		kept = append(kept, e)
	}
	clear(s.order[len(kept):])
	s.order = kept
	return dead
}

// Clear empties the selection.
func (s *SelectedEntities) Clear() {
	clear(s.order)
	s.order = s.order[:0]
	clear(s.index)
}

// LastAction returns the most recent Select call, if any.
func (s *SelectedEntities) LastAction() (SelectionAction, bool) {
	if s.last == nil {
		return SelectionAction{}, false
	}
	return *s.last, true
}

// Contains reports whether the live entity with this id is selected.
func (s *SelectedEntities) Contains(entity ecs.EntityId) bool {
	return s.lookup(entity) != nil
}

// Len counts the selected entities that still exist.
func (s *SelectedEntities) Len() int {
	n := 0
	for range s.Iter() {
		n++
	}
	return n
}

// First returns the earliest selected entity.
func (s *SelectedEntities) First() (ecs.EntityId, bool) {
	for id := range s.Iter() {
		return id, true
	}
	return 0, false
}

// Last returns the most recently selected entity.
func (s *SelectedEntities) Last() (ecs.EntityId, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		if id, ok := s.storage.ResolveEntityRef(s.order[i].ref); ok {
			return id, true
		}
	}
	return 0, false
}

// Iter yields the current ids of the selected entities in selection order.
func (s *SelectedEntities) Iter() iter.Seq[ecs.EntityId] {
	return func(yield func(ecs.EntityId) bool) {
		for _, e := range s.order {
			id, ok := s.storage.ResolveEntityRef(e.ref)
			if ok && !yield(id) {
				return
			}
		}
	}
}

// AsSlice returns a copy of the selection in selection order.
func (s *SelectedEntities) AsSlice() []ecs.EntityId {
	out := make([]ecs.EntityId, 0, len(s.order))
	for id := range s.Iter() {
		out = append(out, id)
	}
	return out
}
