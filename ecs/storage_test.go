package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/ed2d/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAndRead(t *testing.T) {
	storage := newTestStorage()

	id := storage.Spawn(Position{X: 1, Y: 2}, Name{Value: "player"})
	require.True(t, storage.Exists(id))

	pos := ecs.ReadComponent[Position](storage, id)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 1, Y: 2}, *pos)

	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))
	assert.True(t, ecs.HasComponentOf[Name](storage, id))
	assert.False(t, ecs.HasComponentOf[Velocity](storage, id))

	pos.X = 10
	assert.Equal(t, float32(10), ecs.ReadComponent[Position](storage, id).X, "components are read by pointer")
}

func TestSpawnPanics(t *testing.T) {
	storage := newTestStorage()

	assert.Panics(t, func() { storage.Spawn() })
	assert.Panics(t, func() { storage.Spawn(struct{ unregistered int }{}) })
	assert.Panics(t, func() { storage.Spawn(map[string]int{}) })
}

func TestSameComponentSetSharesArchetype(t *testing.T) {
	storage := newTestStorage()

	a := storage.Spawn(Position{}, Velocity{})
	b := storage.Spawn(Velocity{}, Position{})
	c := storage.Spawn(Position{})

	assert.Equal(t, a.ArchetypeId(), b.ArchetypeId(), "component order does not matter")
	assert.NotEqual(t, a.ArchetypeId(), c.ArchetypeId())
	assert.NotNil(t, storage.GetArchetype(Position{}, Velocity{}))
	assert.Nil(t, storage.GetArchetype(Health{}))
}

func TestDeleteReusesSlot(t *testing.T) {
	storage := newTestStorage()

	a := storage.Spawn(Position{X: 1})
	storage.Delete(a)
	assert.False(t, storage.Exists(a))
	assert.Nil(t, ecs.ReadComponent[Position](storage, a))
	assert.False(t, ecs.HasComponentOf[Position](storage, a))

	b := storage.Spawn(Position{X: 2})
	assert.Equal(t, a, b, "a freed slot is handed out again")
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](storage, b).X)

	storage.Delete(ecs.NewEntityId(12345, 0))
}

func TestAddComponentMovesEntity(t *testing.T) {
	storage := newTestStorage()

	id := storage.Spawn(Position{X: 3, Y: 4})
	moved := storage.AddComponent(id, Velocity{DX: 1})

	require.NotEqual(t, id, moved)
	assert.False(t, storage.Exists(id))
	assert.Equal(t, Position{X: 3, Y: 4}, *ecs.ReadComponent[Position](storage, moved))
	assert.Equal(t, Velocity{DX: 1}, *ecs.ReadComponent[Velocity](storage, moved))
}

func TestAddComponentsOverwritesExisting(t *testing.T) {
	storage := newTestStorage()

	id := storage.Spawn(Position{X: 1}, Score(5))
	score := Score(7)
	same := storage.AddComponents(id, Position{X: 9}, &score)
	assert.Equal(t, id, same, "no new component types means no move")
	assert.Equal(t, float32(9), ecs.ReadComponent[Position](storage, id).X)
	assert.Equal(t, Score(7), *ecs.ReadComponent[Score](storage, id))

	moved := storage.AddComponents(id, Selected{}, Health{Current: 3, Max: 3}, Position{X: 2})
	require.NotEqual(t, id, moved)
	assert.True(t, ecs.HasComponentOf[Selected](storage, moved))
	assert.Equal(t, Health{Current: 3, Max: 3}, *ecs.ReadComponent[Health](storage, moved))
	assert.Equal(t, float32(2), ecs.ReadComponent[Position](storage, moved).X)
	assert.Equal(t, Score(7), *ecs.ReadComponent[Score](storage, moved))

	assert.Zero(t, storage.AddComponents(id, Velocity{}), "stale ids are rejected")
}

func TestRemoveComponent(t *testing.T) {
	storage := newTestStorage()
	posType := reflect.TypeFor[Position]()

	id := storage.Spawn(Position{X: 1}, Name{Value: "n"})
	assert.Equal(t, id, storage.RemoveComponent(id, reflect.TypeFor[Velocity]()), "missing type is a no-op")

	moved := storage.RemoveComponent(id, posType)
	require.NotZero(t, moved)
	assert.False(t, ecs.HasComponentOf[Position](storage, moved))
	assert.Equal(t, "n", ecs.ReadComponent[Name](storage, moved).Value)

	assert.Zero(t, storage.RemoveComponent(moved, reflect.TypeFor[Name]()), "removing the last component deletes the entity")
	assert.False(t, storage.Exists(moved))
	assert.Zero(t, storage.RemoveComponent(moved, posType))
}

func TestEntityRefFollowsMoves(t *testing.T) {
	storage := newTestStorage()

	id := storage.Spawn(Position{X: 1})
	assert.Nil(t, storage.LookupEntityRef(id), "lookup never creates a ref")
	ref := storage.CreateEntityRef(id)
	assert.Same(t, ref, storage.CreateEntityRef(id))
	assert.Same(t, ref, storage.LookupEntityRef(id))

	moved := storage.AddComponent(id, Velocity{})
	resolved, ok := storage.ResolveEntityRef(ref)
	require.True(t, ok)
	assert.Equal(t, moved, resolved)
	assert.Same(t, ref, storage.LookupEntityRef(moved))
	assert.Nil(t, storage.LookupEntityRef(id))

	view := ecs.NewView[struct{ *Position }](storage)
	require.NotNil(t, view.GetRef(ref))
	assert.Equal(t, float32(1), view.GetRef(ref).X)

	storage.Delete(moved)
	_, ok = storage.ResolveEntityRef(ref)
	assert.False(t, ok)
	assert.Nil(t, view.GetRef(ref))

	reused := storage.Spawn(Position{}, Velocity{})
	require.Equal(t, moved, reused, "the freed slot is reused")
	assert.Nil(t, storage.LookupEntityRef(reused), "a reused slot does not inherit the old ref")
}

func TestSingletons(t *testing.T) {
	storage := newTestStorage()

	var missing *Health
	assert.False(t, storage.ReadSingleton(&missing))
	assert.Nil(t, storage.GetSingleton(reflect.TypeFor[Health]()))

	storage.AddSingleton(Health{Current: 1, Max: 10})
	var h *Health
	require.True(t, storage.ReadSingleton(&h))
	assert.Equal(t, 10, h.Max)

	storage.AddSingleton(Health{Current: 2, Max: 20})
	assert.Equal(t, 20, h.Max, "replacing keeps the pointer stable")

	got, ok := storage.GetSingleton(reflect.TypeFor[Health]()).(*Health)
	require.True(t, ok)
	assert.Same(t, h, got)

	accessor := ecs.NewSingleton[Health](storage)
	assert.Same(t, h, accessor.Get())

	storage.AddSingleton(Name{Value: "world"})
	assert.Equal(t, []reflect.Type{reflect.TypeFor[Health](), reflect.TypeFor[Name]()}, storage.SingletonTypes())

	assert.Panics(t, func() { storage.ReadSingleton(h) })
}

func TestSingletonAccessorBeforeCreation(t *testing.T) {
	storage := newTestStorage()

	var s ecs.Singleton[Score]
	s.Init(storage)
	assert.False(t, s.Exists())
	assert.Nil(t, s.Get())

	ecs.NewSingleton[Score](storage, 42)
	assert.True(t, s.Exists())
	assert.Equal(t, Score(42), *s.Get())
}

func TestCollectStats(t *testing.T) {
	storage := newTestStorage()

	stats := storage.CollectStats()
	assert.Zero(t, stats.ArchetypeCount)
	assert.Zero(t, stats.TotalEntityCount)

	storage.Spawn(Position{}, Name{})
	storage.Spawn(Position{}, Name{})
	gone := storage.Spawn(Health{})
	storage.Delete(gone)
	storage.AddSingleton(Score(1))
	ecs.AddEvent[Name](storage).Send(Name{})

	stats = storage.CollectStats()
	assert.Equal(t, 1, stats.ArchetypeCount, "empty archetypes are skipped")
	assert.Equal(t, 2, stats.TotalEntityCount)
	require.Len(t, stats.ArchetypeBreakdown, 1)
	assert.Equal(t, 2, stats.ArchetypeBreakdown[0].EntityCount)
	assert.Equal(t, []string{"ecs_test.Name", "ecs_test.Position"}, stats.ArchetypeBreakdown[0].ComponentTypes)
	assert.Equal(t, 1, stats.SingletonCount)
	assert.Equal(t, []string{"ecs_test.Score"}, stats.SingletonTypes)
	assert.Equal(t, 1, stats.EventQueueCount)
	assert.Equal(t, 1, stats.PendingEventCount)
}

func TestEntityIdString(t *testing.T) {
	id := ecs.NewEntityId(0xbeef, 12)
	assert.Equal(t, uint32(0xbeef), id.ArchetypeId())
	assert.Equal(t, uint32(12), id.Index())
	assert.Equal(t, "beef:12", id.String())
}

func TestComponentPointersSurviveGrowth(t *testing.T) {
	storage := newTestStorage()
	first := storage.Spawn(Position{X: 1})
	ptr := ecs.ReadComponent[Position](storage, first)

	for i := range 500 {
		storage.Spawn(Position{X: float32(i)})
	}
	ptr.X = 42
	assert.Equal(t, float32(42), ecs.ReadComponent[Position](storage, first).X)

	archetype := storage.GetArchetypeById(first.ArchetypeId())
	assert.Equal(t, 501, archetype.Len())
	storage.Delete(first)
	storage.Delete(first)
	assert.Equal(t, 500, archetype.Len(), "deleting twice counts once")
}
