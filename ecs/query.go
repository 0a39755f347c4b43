package ecs

import "iter"

// Query is a View that snapshots its matches once per frame. The scheduler
// calls Execute before each system runs; outside a scheduler call it
// yourself.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	// archetypes caches the matching archetypes. It is rebuilt when the
	// storage gains archetypes.
	archetypes []*Archetype
	seen       int

	entities []EntityId
	items    []T
	executed bool
}

// NewQuery creates a Query over storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to storage and drops any cached state.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.archetypes = nil
	q.seen = 0
	q.executed = false
}

// Execute snapshots the matching entities. Archetypes are visited in
// creation order.
func (q *Query[T]) Execute() {
	if n := len(q.storage.archetypeOrder); n != q.seen {
		for _, archetype := range q.storage.archetypeOrder[q.seen:] {
			if q.view.matchesArchetype(archetype) {
				q.archetypes = append(q.archetypes, archetype)
			}
		}
		q.seen = n
	}

	q.entities = q.entities[:0]
	q.items = q.items[:0]
	for _, archetype := range q.archetypes {
		for id, item := range q.view.iterArchetype(archetype) {
			q.entities = append(q.entities, id)
			q.items = append(q.items, item)
		}
	}
	q.executed = true
}

func (q *Query[T]) mustBeExecuted(method string) {
	if !q.executed {
		panic("Query." + method + "() called before Query.Execute()")
	}
}

// Iter yields the entities captured by the last Execute.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	q.mustBeExecuted("Iter")
	return func(yield func(EntityId, T) bool) {
		for i, id := range q.entities {
			if !yield(id, q.items[i]) {
				return
			}
		}
	}
}

// Values is Iter without the entity ids.
func (q *Query[T]) Values() iter.Seq[T] {
	q.mustBeExecuted("Values")
	return func(yield func(T) bool) {
		for _, item := range q.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Len returns the number of entities captured by the last Execute.
func (q *Query[T]) Len() int {
	q.mustBeExecuted("Len")
	return len(q.entities)
}

// First returns the first captured entity, if any.
func (q *Query[T]) First() (EntityId, T, bool) {
	q.mustBeExecuted("First")
	if len(q.entities) == 0 {
		var zero T
		return 0, zero, false
	}
	return q.entities[0], q.items[0], true
}
