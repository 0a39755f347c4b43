package editor_test

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedUi plays the role of the dock UI: it reports a fixed game view
// rect and replays queued selection actions.
type scriptedUi struct {
	rect         editor.Rect
	hovered      bool
	wantsPointer bool
	actions      []editor.SelectionAction
	renders      int
}

func (u *scriptedUi) Render(frame *editor.UiFrame) {
	u.renders++
	frame.State.ViewportRect = u.rect
	frame.State.ViewportHovered = u.hovered
	frame.State.WantsPointerInput = u.wantsPointer
	for _, a := range u.actions {
		frame.Select(a.Mode, a.Entity)
	}
	u.actions = nil
}

type world struct {
	t         *testing.T
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	systems   *editor.Systems
	ui        *scriptedUi
}

func newWorld(t *testing.T) *world {
	t.Helper()

	plugin := editor.DefaultPlugin()
	ui := &scriptedUi{
		rect:         editor.Rect{Max: mgl32.Vec2{800, 600}},
		hovered:      true,
		wantsPointer: true,
	}
	plugin.UI = ui

	registry := ecs.NewComponentRegistry()
	plugin.Install(registry)
	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage)
	systems := plugin.Build(storage, scheduler)
	require.NoError(t, scheduler.Build())

	w := &world{t: t, storage: storage, scheduler: scheduler, systems: systems, ui: ui}
	*w.window() = editor.Window{PhysicalWidth: 800, PhysicalHeight: 600, ScaleFactor: 1}
	return w
}

func (w *world) input() *editor.Input {
	var input *editor.Input
	require.True(w.t, w.storage.ReadSingleton(&input))
	return input
}

func (w *world) window() *editor.Window {
	var win *editor.Window
	require.True(w.t, w.storage.ReadSingleton(&win))
	return win
}

func (w *world) state() *editor.UiState {
	var ui *editor.UiState
	require.True(w.t, w.storage.ReadSingleton(&ui))
	return ui
}

func (w *world) gizmos() *editor.Gizmos {
	var g *editor.Gizmos
	require.True(w.t, w.storage.ReadSingleton(&g))
	return g
}

func (w *world) camera() *editor.EditorCamera {
	return ecs.ReadComponent[editor.EditorCamera](w.storage, w.systems.Camera)
}

func (w *world) panCam() *editor.PanCam {
	return ecs.ReadComponent[editor.PanCam](w.storage, w.systems.Camera)
}

// step runs one frame and then clears the input transitions, like a
// backend would before polling the next frame.
func (w *world) step() {
	w.scheduler.Once(1.0 / 60.0)
	w.input().BeginFrame()
}

func (w *world) spawnSprite(x, y, size float32) ecs.EntityId {
	return w.storage.Spawn(
		editor.NewTransform(x, y),
		editor.Sprite{Color: color.NRGBA{R: 255, A: 255}, Size: mgl32.Vec2{size, size}},
		editor.Pickable{},
		editor.PickSelection{},
	)
}

func (w *world) flag(id ecs.EntityId) bool {
	sel := ecs.ReadComponent[editor.PickSelection](w.storage, id)
	require.NotNil(w.t, sel)
	return sel.IsSelected
}

// assertFlagsMatchSelection checks every PickSelection flag against the
// selection set.
func (w *world) assertFlagsMatchSelection() {
	w.t.Helper()
	selected := w.state().Selected
	view := ecs.NewView[struct{ *editor.PickSelection }](w.storage)
	for id, sel := range view.Iter() {
		assert.Equal(w.t, selected.Contains(id), sel.PickSelection.IsSelected, "entity %s", id)
	}
}

func (w *world) uiSelect(mode editor.SelectionMode, id ecs.EntityId) {
	w.ui.actions = append(w.ui.actions, editor.SelectionAction{Mode: mode, Entity: id})
	w.step()
}

// clickAt presses and releases the primary button at a logical window
// position over two frames.
func (w *world) clickAt(x, y float32, keys ...editor.Key) {
	input := w.input()
	input.SetCursor(x, y)
	for _, k := range keys {
		input.Keys.Press(k)
	}
	input.Mouse.Press(editor.MousePrimary)
	w.step()

	input.Mouse.Release(editor.MousePrimary)
	for _, k := range keys {
		input.Keys.Release(k)
	}
	w.step()
}
