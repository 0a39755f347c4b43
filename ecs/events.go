package ecs

import (
	"iter"
	"reflect"
)

// eventQueue is the type-erased view of Events[T] used by Storage to rotate
// buffers at the end of a frame.
type eventQueue interface {
	update()
	pending() int
}

// Events is a double-buffered queue of events of type T.
//
// Events sent during a frame are readable during that frame and the next
// one; UpdateEvents drops the older buffer. Every event gets a sequence
// number so each reader can track what it has already seen.
type Events[T any] struct {
	prev      []T
	curr      []T
	prevStart uint64
	currStart uint64
	next      uint64
}

// Send appends an event to the current buffer.
func (e *Events[T]) Send(event T) {
	e.curr = append(e.curr, event)
	e.next++
}

// Len returns the number of events still held in either buffer.
func (e *Events[T]) Len() int {
	return len(e.prev) + len(e.curr)
}

func (e *Events[T]) pending() int {
	return e.Len()
}

func (e *Events[T]) update() {
	var zero T
	for i := range e.prev {
		e.prev[i] = zero
	}
	e.prev, e.curr = e.curr, e.prev[:0]
	e.prevStart = e.currStart
	e.currStart = e.next
}

// readFrom yields every retained event with a sequence number >= cursor
// together with that sequence number.
func (e *Events[T]) readFrom(cursor uint64) iter.Seq2[uint64, T] {
	return func(yield func(uint64, T) bool) {
		seq := e.prevStart
		for _, ev := range e.prev {
			if seq >= cursor {
				if !yield(seq, ev) {
					return
				}
			}
			seq++
		}
		seq = e.currStart
		for _, ev := range e.curr {
			if seq >= cursor {
				if !yield(seq, ev) {
					return
				}
			}
			seq++
		}
	}
}

// AddEvent registers an event type with the storage and returns its queue.
// Calling it again for the same type returns the existing queue.
func AddEvent[T any](storage *Storage) *Events[T] {
	t := reflect.TypeFor[T]()
	if q, ok := storage.events[t]; ok {
		return q.(*Events[T])
	}
	q := &Events[T]{}
	storage.events[t] = q
	storage.eventOrder = append(storage.eventOrder, t)
	return q
}

// UpdateEvents rotates the buffers of every registered event type.
// The Scheduler calls it once at the end of each frame.
func (s *Storage) UpdateEvents() {
	for _, t := range s.eventOrder {
		s.events[t].update()
	}
}

// EventWriter sends events of type T. Declare it as a system field and the
// Scheduler initializes it.
type EventWriter[T any] struct {
	events *Events[T]
}

// NewEventWriter returns a writer for events of type T, registering the
// event type if needed.
func NewEventWriter[T any](storage *Storage) *EventWriter[T] {
	w := &EventWriter[T]{}
	w.Init(storage)
	return w
}

// Init binds the writer to the storage's queue for T.
// This is called automatically by the Scheduler during system registration.
func (w *EventWriter[T]) Init(storage *Storage) {
	w.events = AddEvent[T](storage)
}

// Send queues an event.
func (w *EventWriter[T]) Send(event T) {
	w.events.Send(event)
}

// EventReader reads events of type T. Each reader keeps its own cursor so
// every reader observes each event at most once.
type EventReader[T any] struct {
	events *Events[T]
	cursor uint64
}

// NewEventReader returns a reader for events of type T, registering the
// event type if needed.
func NewEventReader[T any](storage *Storage) *EventReader[T] {
	r := &EventReader[T]{}
	r.Init(storage)
	return r
}

// Init binds the reader to the storage's queue for T.
// This is called automatically by the Scheduler during system registration.
func (r *EventReader[T]) Init(storage *Storage) {
	r.events = AddEvent[T](storage)
	r.cursor = 0
}

// Read returns an iterator over events this reader has not seen yet.
// Breaking out of the loop early leaves the remaining events unread.
func (r *EventReader[T]) Read() iter.Seq[T] {
	return func(yield func(T) bool) {
		for seq, ev := range r.events.readFrom(r.cursor) {
			r.cursor = seq + 1
			if !yield(ev) {
				return
			}
		}
	}
}

// Len returns the number of events this reader has not seen yet.
func (r *EventReader[T]) Len() int {
	n := 0
	for range r.events.readFrom(r.cursor) {
		n++
	}
	return n
}

// Clear marks every pending event as read.
func (r *EventReader[T]) Clear() {
	r.cursor = r.events.next
}
