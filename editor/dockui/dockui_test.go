package dockui

import (
	"image/color"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanDefaultLayout(t *testing.T) {
	plan, err := PlanLayout(editor.DefaultDockLayout())
	require.NoError(t, err)

	want := []LayoutStep{
		{Node: 0, Dir: editor.SplitRight, Ratio: 0.25},
		{Node: 0, Dir: editor.SplitRight, Ratio: 0.25},
		{Node: 2, Dir: editor.SplitBelow, Ratio: 0.65},
	}
	require.Len(t, plan.Steps, len(want))
	for i, step := range plan.Steps {
		assert.Equal(t, want[i].Node, step.Node, "step %d", i)
		assert.Equal(t, want[i].Dir, step.Dir, "step %d", i)
		assert.InDelta(t, want[i].Ratio, step.Ratio, 1e-6, "step %d", i)
	}

	assert.Equal(t, map[editor.Tab]int{
		editor.TabGameView:  0,
		editor.TabInspector: 1,
		editor.TabHierarchy: 2,
		editor.TabResources: 3,
		editor.TabAssets:    3,
	}, plan.Nodes)
	assert.Equal(t, editor.TabGameView, plan.Order[0])
}

func TestPlanLayoutErrors(t *testing.T) {
	_, err := PlanLayout(editor.DockLayout{
		Root:   []editor.Tab{editor.TabGameView},
		Splits: []editor.Split{{Target: editor.TabAssets, Dir: editor.SplitBelow, Ratio: 0.5}},
	})
	assert.ErrorIs(t, err, ErrBadLayout)

	_, err = PlanLayout(editor.DockLayout{
		Root: []editor.Tab{editor.TabGameView, editor.TabGameView},
	})
	assert.ErrorIs(t, err, ErrBadLayout)

	_, err = PlanLayout(editor.DockLayout{
		Root:   []editor.Tab{editor.TabGameView},
		Splits: []editor.Split{{Target: editor.TabGameView, Ratio: 1}},
	})
	assert.ErrorIs(t, err, ErrBadLayout)
}

type Zeta struct{}
type Alpha struct{ N int }

func newStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	editor.RegisterComponents(registry)
	return ecs.NewStorage(registry)
}

func TestResourceEntriesSortedByShortName(t *testing.T) {
	storage := newStorage()
	storage.AddSingleton(Zeta{})
	storage.AddSingleton(editor.NewUiState(storage, true))
	storage.AddSingleton(Alpha{})

	var names []string
	for _, e := range resourceEntries(storage) {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Alpha", "UiState", "Zeta"}, names)
}

func TestSharedComponentTypes(t *testing.T) {
	storage := newStorage()
	a := storage.Spawn(editor.NewTransform(0, 0), editor.Sprite{}, editor.Name("a"))
	b := storage.Spawn(editor.NewTransform(1, 0), editor.Name("b"))
	c := storage.Spawn(editor.NewTransform(2, 0), editor.Sprite{}, editor.PickSelection{})

	assert.ElementsMatch(t,
		[]reflect.Type{reflect.TypeFor[editor.Transform](), reflect.TypeFor[editor.Name]()},
		sharedComponentTypes(storage, []ecs.EntityId{a, b}))
	assert.Equal(t,
		[]reflect.Type{reflect.TypeFor[editor.Transform]()},
		sharedComponentTypes(storage, []ecs.EntityId{a, b, c}))

	storage.Delete(b)
	assert.ElementsMatch(t,
		[]reflect.Type{reflect.TypeFor[editor.Transform](), reflect.TypeFor[editor.Sprite]()},
		sharedComponentTypes(storage, []ecs.EntityId{a, b, c}), "deleted entities are ignored")

	assert.Empty(t, sharedComponentTypes(storage, nil))
}

func TestHierarchyRows(t *testing.T) {
	storage := newStorage()
	player := storage.Spawn(editor.NewTransform(0, 0), editor.Name("Player"))
	crate := storage.Spawn(editor.NewTransform(0, 0), editor.Sprite{})

	rows := collectRows(storage, nil)
	require.Len(t, rows, 2)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].ID, rows[i].ID)
	}

	byID := map[ecs.EntityId]entityRow{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	assert.Contains(t, byID[player].Label, "Player")
	assert.Contains(t, byID[crate].Types, "Sprite")

	assert.Equal(t, []ecs.EntityId{player}, ids(filterRows(rows, "player")))
	assert.Equal(t, []ecs.EntityId{crate}, ids(filterRows(rows, "SPRITE")))
	assert.Len(t, filterRows(rows, ""), 2)
}

func ids(rows []entityRow) []ecs.EntityId {
	out := make([]ecs.EntityId, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestSelectMode(t *testing.T) {
	storage := newStorage()
	keys := multiSelectKeys(storage)
	assert.ElementsMatch(t, editor.DefaultSettings().MultiSelectKeys, keys, "defaults without a Settings singleton")

	assert.Equal(t, editor.SelectReplace, selectMode(nil, keys))

	input := &editor.Input{}
	assert.Equal(t, editor.SelectReplace, selectMode(input, keys))

	input.Keys.Press(editor.KeyShiftRight)
	assert.Equal(t, editor.SelectAdd, selectMode(input, keys))

	input.Keys.Release(editor.KeyShiftRight)
	input.Keys.Press(editor.KeyControlLeft)
	assert.Equal(t, editor.SelectAdd, selectMode(input, keys))
}

func TestSelectModeUsesConfiguredKeys(t *testing.T) {
	storage := newStorage()
	settings := editor.DefaultSettings()
	settings.MultiSelectKeys = []editor.Key{editor.KeyA}
	storage.AddSingleton(settings)

	keys := multiSelectKeys(storage)
	assert.Equal(t, []editor.Key{editor.KeyA}, keys)

	input := &editor.Input{}
	input.Keys.Press(editor.KeyControlLeft)
	assert.Equal(t, editor.SelectReplace, selectMode(input, keys), "control is not configured")

	input.Keys.Press(editor.KeyA)
	assert.Equal(t, editor.SelectAdd, selectMode(input, keys))
}

func TestFrameHistory(t *testing.T) {
	h := newFrameHistory(3)
	assert.Zero(t, h.Average())

	h.Push(0.010)
	assert.InDelta(t, 10, h.Average(), 1e-4)

	h.Push(0.020)
	h.Push(0.030)
	h.Push(0.040)
	assert.InDelta(t, 30, h.Average(), 1e-4, "oldest sample is overwritten")
}

func TestColorConversion(t *testing.T) {
	c := color.NRGBA{R: 255, G: 128, B: 0, A: 77}
	assert.Equal(t, c, floatsToNRGBA(nrgbaToFloats(c)))
	assert.Equal(t, color.NRGBA{R: 255}, floatsToNRGBA([4]float32{2, -1, 0, 0}))
}

func TestQuatAngle(t *testing.T) {
	q := mgl32.QuatRotate(1.25, mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, 1.25, quatAngle(q), 1e-5)
}

type inspected struct {
	Visible bool
	Speed   float32
	Target  *editor.Transform
	note    string
}

func TestRegistryLookupAndFields(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup(reflect.TypeFor[mgl32.Vec2]())
	assert.True(t, ok)
	_, ok = r.Lookup(reflect.TypeFor[inspected]())
	assert.False(t, ok)

	Register(r, func(label string, v *inspected) bool { return false })
	_, ok = r.Lookup(reflect.TypeFor[inspected]())
	assert.True(t, ok)

	fields := r.fieldsOf(reflect.TypeFor[inspected]())
	assert.Equal(t, []fieldInfo{
		{Name: "Visible", Index: 0},
		{Name: "Speed", Index: 1},
		{Name: "Target", Index: 2, IsPointer: true},
	}, fields)
	assert.Equal(t, fields, r.fieldsOf(reflect.TypeFor[inspected]()))
}
