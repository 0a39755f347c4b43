package assets

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"sort"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an asset id is not present in a store.
var ErrNotFound = errors.New("asset not found")

// AssetId identifies an asset within its store.
type AssetId string

// NewAssetId returns a fresh random id.
func NewAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// ParseAssetId validates s as an asset id.
func ParseAssetId(s string) (AssetId, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parse asset id %q: %w", s, err)
	}
	return AssetId(id.String()), nil
}

// Short returns the first block of the id for compact display.
func (id AssetId) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}

// Assets stores assets of a single type. Insertion order is kept.
type Assets[T any] struct {
	items map[AssetId]*T
	order []AssetId
}

// NewAssets returns an empty store.
func NewAssets[T any]() *Assets[T] {
	return &Assets[T]{items: make(map[AssetId]*T)}
}

// Add stores value under a new id.
func (a *Assets[T]) Add(value T) AssetId {
	id := NewAssetId()
	a.Insert(id, value)
	return id
}

// Insert stores value under id, replacing any previous value.
func (a *Assets[T]) Insert(id AssetId, value T) {
	if _, ok := a.items[id]; !ok {
		a.order = append(a.order, id)
	}
	v := value
	a.items[id] = &v
}

// Get returns a pointer to the asset, or nil.
func (a *Assets[T]) Get(id AssetId) *T {
	return a.items[id]
}

// Lookup is like Get but reports a missing asset as ErrNotFound.
func (a *Assets[T]) Lookup(id AssetId) (*T, error) {
	v, ok := a.items[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", typeName[T](), id, ErrNotFound)
	}
	return v, nil
}

// Remove deletes the asset. It returns false if it was not present.
func (a *Assets[T]) Remove(id AssetId) bool {
	if _, ok := a.items[id]; !ok {
		return false
	}
	delete(a.items, id)
	for i, other := range a.order {
		if other == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

func (a *Assets[T]) Len() int {
	return len(a.order)
}

// Ids returns the ids in insertion order.
func (a *Assets[T]) Ids() []AssetId {
	out := make([]AssetId, len(a.order))
	copy(out, a.order)
	return out
}

// Iter yields every asset in insertion order.
func (a *Assets[T]) Iter() iter.Seq2[AssetId, *T] {
	return func(yield func(AssetId, *T) bool) {
		for _, id := range a.order {
			if !yield(id, a.items[id]) {
				return
			}
		}
	}
}

func (a *Assets[T]) elemType() reflect.Type { return reflect.TypeFor[T]() }
func (a *Assets[T]) getAny(id AssetId) any {
	if v, ok := a.items[id]; ok {
		return v
	}
	return nil
}

// untypedAssets is the type-erased view the Registry needs.
type untypedAssets interface {
	elemType() reflect.Type
	getAny(id AssetId) any
	Ids() []AssetId
	Len() int
}

// Registry holds one store per asset type so browsers can enumerate them
// without knowing the types.
type Registry struct {
	stores map[reflect.Type]untypedAssets
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[reflect.Type]untypedAssets)}
}

// Register returns the store for T, creating it if needed.
func Register[T any](r *Registry) *Assets[T] {
	t := reflect.TypeFor[T]()
	if store, ok := r.stores[t]; ok {
		return store.(*Assets[T])
	}
	store := NewAssets[T]()
	r.stores[t] = store
	return store
}

// Store returns the store for T, or nil if T was never registered.
func Store[T any](r *Registry) *Assets[T] {
	store, ok := r.stores[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return store.(*Assets[T])
}

// TypeInfo summarizes one registered asset type.
type TypeInfo struct {
	Type reflect.Type
	Name string
	Ids  []AssetId
}

// Types lists the registered asset types sorted by name.
func (r *Registry) Types() []TypeInfo {
	out := make([]TypeInfo, 0, len(r.stores))
	for t, store := range r.stores {
		out = append(out, TypeInfo{Type: t, Name: ShortTypeName(t), Ids: store.Ids()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a pointer to the asset of type t with the given id.
func (r *Registry) Get(t reflect.Type, id AssetId) (any, error) {
	store, ok := r.stores[t]
	if !ok {
		return nil, fmt.Errorf("%s store: %w", ShortTypeName(t), ErrNotFound)
	}
	v := store.getAny(id)
	if v == nil {
		return nil, fmt.Errorf("%s %s: %w", ShortTypeName(t), id, ErrNotFound)
	}
	return v, nil
}

// ShortTypeName drops the package path from a type name.
func ShortTypeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func typeName[T any]() string {
	return ShortTypeName(reflect.TypeFor[T]())
}
