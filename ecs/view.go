package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"unsafe"
)

// viewField is one pointer field of a view struct.
type viewField struct {
	typ      reflect.Type // component type the field points to
	offset   uintptr
	optional bool
}

// parseViewFields reads the component fields of a view struct. Embedded
// fields are required; named fields may carry `ecs:"optional"`.
func parseViewFields(structType reflect.Type) []viewField {
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	fields := make([]viewField, 0, structType.NumField())
	for i := range structType.NumField() {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		optional := false
		if tag := field.Tag.Get("ecs"); tag != "" && !field.Anonymous {
			if tag != "optional" {
				panic(fmt.Sprintf("invalid ecs tag value: %q (only \"optional\" is supported)", tag))
			}
			optional = true
		}

		fields = append(fields, viewField{
			typ:      field.Type.Elem(),
			offset:   field.Offset,
			optional: optional,
		})
	}
	return fields
}

func setField(structPtr unsafe.Pointer, f viewField, component unsafe.Pointer) {
	*(*unsafe.Pointer)(unsafe.Add(structPtr, f.offset)) = component
}

// componentPointer extracts the data pointer from a *T stored in an any.
func componentPointer(component any) unsafe.Pointer {
	return (*iface)(unsafe.Pointer(&component)).data
}

// View reads entities through a struct of component pointers, for example
//
//	ecs.NewView[struct {
//		*Transform
//		*Sprite
//		Name *Name `ecs:"optional"`
//	}](storage)
//
// Unlike Query it needs no per-frame Execute and always sees the current
// storage.
type View[T any] struct {
	storage *Storage
	fields  []viewField
}

// NewView creates a view for T. It panics if T is not a struct of pointer
// fields.
func NewView[T any](storage *Storage) *View[T] {
	return &View[T]{
		storage: storage,
		fields:  parseViewFields(reflect.TypeFor[T]()),
	}
}

// Fill points the fields of *ptr at the components of id. It returns false
// when a required component is missing; missing optional fields are nil.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}

	structPtr := unsafe.Pointer(ptr)
	for _, f := range v.fields {
		component := archetype.GetComponent(id.Index(), f.typ)
		if component == nil {
			if !f.optional {
				return false
			}
			setField(structPtr, f, nil)
			continue
		}
		setField(structPtr, f, componentPointer(component))
	}
	return true
}

// Get returns the view of id, or nil if it lacks a required component.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get for an entity reference that survives moves.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	id, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(id)
}

func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for _, f := range v.fields {
		if !f.optional && !archetype.HasComponent(f.typ) {
			return false
		}
	}
	return true
}

// storageIndices maps each field to its storage in archetype, -1 if absent.
func (v *View[T]) storageIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.fields))
	for i, f := range v.fields {
		indices[i] = -1
		for idx, typ := range archetype.types {
			if typ == f.typ {
				indices[i] = idx
				break
			}
		}
	}
	return indices
}

func (v *View[T]) populate(structPtr unsafe.Pointer, archetype *Archetype, entityIndex int, indices []int) bool {
	for i, idx := range indices {
		f := v.fields[i]
		var component any
		if idx >= 0 {
			component = archetype.storages[idx].Get(entityIndex)
		}
		if component == nil {
			if !f.optional {
				return false
			}
			setField(structPtr, f, nil)
			continue
		}
		setField(structPtr, f, componentPointer(component))
	}
	return true
}

// iterArchetype yields the matching entities of one archetype. The caller
// checks matchesArchetype.
func (v *View[T]) iterArchetype(archetype *Archetype) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(archetype.storages) == 0 {
			return
		}
		indices := v.storageIndices(archetype)

		var result T
		structPtr := unsafe.Pointer(&result)
		for entityIndex := range archetype.storages[0].Iter() {
			if !v.populate(structPtr, archetype, entityIndex, indices) {
				continue
			}
			if !yield(NewEntityId(archetype.id, uint32(entityIndex)), result) {
				return
			}
		}
	}
}

// Iter yields every matching entity, archetypes in creation order.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, archetype := range v.storage.archetypeOrder {
			if !v.matchesArchetype(archetype) {
				continue
			}
			for id, item := range v.iterArchetype(archetype) {
				if !yield(id, item) {
					return
				}
			}
		}
	}
}

// Values is Iter without the entity ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range v.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Spawn creates an entity from the non-nil fields of data. A nil required
// field panics.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.fields))
	for _, f := range v.fields {
		ptr := *(*unsafe.Pointer)(unsafe.Add(structPtr, f.offset))
		if ptr == nil {
			if !f.optional {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(f.typ, ptr).Elem().Interface())
	}
	return v.storage.Spawn(components...)
}
