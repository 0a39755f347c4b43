package ecs

import (
	"reflect"
	"sort"
	"unsafe"
)

// singletonEntry holds a heap allocated singleton value. The pointer is
// stable for the lifetime of the storage, which is what lets Singleton[T]
// cache it.
type singletonEntry struct {
	typ     reflect.Type
	dataPtr unsafe.Pointer
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// AddSingleton stores value as the singleton of its type, replacing the
// previous value in place if one exists.
func (s *Storage) AddSingleton(value any) {
	t := reflect.TypeOf(value)
	if t == nil {
		panic("cannot add a nil singleton")
	}

	if entry, ok := s.singletons[t]; ok {
		reflect.NewAt(t, entry.dataPtr).Elem().Set(reflect.ValueOf(value))
		return
	}

	v := reflect.New(t)
	v.Elem().Set(reflect.ValueOf(value))
	s.singletons[t] = &singletonEntry{
		typ:     t,
		dataPtr: v.UnsafePointer(),
	}
	s.singletonOrder = append(s.singletonOrder, t)
}

// ReadSingleton points *out at the stored singleton. out must be a pointer
// to a pointer (e.g. `var cfg *Config; storage.ReadSingleton(&cfg)`).
// Returns false if no singleton of that type exists.
func (s *Storage) ReadSingleton(out any) bool {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton expects a pointer to a pointer")
	}

	elemType := rv.Elem().Type().Elem()
	entry := s.singletons[elemType]
	if entry == nil {
		return false
	}

	rv.Elem().Set(reflect.NewAt(elemType, entry.dataPtr))
	return true
}

// GetSingleton returns a pointer to the singleton of type t, or nil.
func (s *Storage) GetSingleton(t reflect.Type) any {
	entry := s.singletons[t]
	if entry == nil {
		return nil
	}
	return reflect.NewAt(t, entry.dataPtr).Interface()
}

// SingletonTypes returns the types of all stored singletons in insertion order.
func (s *Storage) SingletonTypes() []reflect.Type {
	out := make([]reflect.Type, len(s.singletonOrder))
	copy(out, s.singletonOrder)
	return out
}

// GetArchetypes returns all archetypes ordered by id.
func (s *Storage) GetArchetypes() []*Archetype {
	out := make([]*Archetype, 0, len(s.archetypes))
	for _, archetype := range s.archetypes {
		out = append(out, archetype)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// GetArchetypeById returns the archetype with the given id, or nil.
func (s *Storage) GetArchetypeById(id uint32) *Archetype {
	return s.archetypes[id]
}
