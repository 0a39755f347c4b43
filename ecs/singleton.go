package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton is a typed handle to a resource stored outside any entity, such
// as settings or per-frame input. Systems declare Singleton fields and the
// scheduler binds them.
type Singleton[T any] struct {
	storage *Storage
	typ     reflect.Type
	ptr     unsafe.Pointer
}

// NewSingleton returns a handle to the T resource, adding it first if it is
// missing. The optional initializer is only used in that case.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	s := &Singleton[T]{}
	s.Init(storage)
	if s.ptr == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
		s.resolve()
	}
	return s
}

// Init binds the handle to storage. The resource need not exist yet.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.typ = reflect.TypeFor[T]()
	s.resolve()
}

func (s *Singleton[T]) resolve() {
	s.ptr = nil
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(s.typ); entry != nil {
		s.ptr = entry.dataPtr
	}
}

// Get returns the resource, or nil while it does not exist. The pointer
// stays valid for the lifetime of the storage.
func (s *Singleton[T]) Get() *T {
	if s.ptr == nil {
		s.resolve()
	}
	return (*T)(s.ptr)
}

// Exists reports whether the resource has been added.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}
