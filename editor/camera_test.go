package editor_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocusSelectedConverges(t *testing.T) {
	w := newWorld(t)
	target := mgl32.Vec2{300, -120}
	a := w.spawnSprite(target.X(), target.Y(), 10)

	w.uiSelect(editor.SelectReplace, a)
	require.Equal(t, 1, w.state().Selected.Len())

	w.input().Keys.Press(editor.KeyF)
	w.step()
	w.input().Keys.Release(editor.KeyF)

	_, pending := w.systems.FocusSelected.Target()
	require.True(t, pending)

	prev := target.Sub(w.camera().Position).Len()
	for frame := 0; frame < 500; frame++ {
		if _, pending := w.systems.FocusSelected.Target(); !pending {
			break
		}
		w.step()
		d := target.Sub(w.camera().Position).Len()
		if _, pending := w.systems.FocusSelected.Target(); pending {
			assert.Less(t, d, prev, "frame %d", frame)
		}
		prev = d
	}

	_, pending = w.systems.FocusSelected.Target()
	assert.False(t, pending)
	assert.Equal(t, target, w.camera().Position)
}

func TestFocusNeedsExactlyOneSelected(t *testing.T) {
	w := newWorld(t)
	a := w.spawnSprite(100, 0, 10)
	b := w.spawnSprite(200, 0, 10)

	w.uiSelect(editor.SelectReplace, a)
	w.uiSelect(editor.SelectAdd, b)

	w.input().Keys.Press(editor.KeyF)
	w.step()

	_, pending := w.systems.FocusSelected.Target()
	assert.False(t, pending)
	assert.Equal(t, mgl32.Vec2{}, w.camera().Position)
}

func TestFocusNeedsHoveredViewport(t *testing.T) {
	w := newWorld(t)
	a := w.spawnSprite(100, 0, 10)
	w.ui.hovered = false
	w.uiSelect(editor.SelectReplace, a)

	w.input().Keys.Press(editor.KeyF)
	w.step()

	_, pending := w.systems.FocusSelected.Target()
	assert.False(t, pending)
}

func TestTogglePanCam(t *testing.T) {
	w := newWorld(t)
	w.step()
	assert.True(t, w.panCam().Enabled, "hovered viewport enables panning")

	// A drag that leaves the viewport keeps panning enabled.
	w.input().Mouse.Press(editor.MouseRight)
	w.ui.hovered = false
	w.step()
	w.step()
	assert.True(t, w.panCam().Enabled)

	w.input().Mouse.Release(editor.MouseRight)
	w.step()
	assert.False(t, w.panCam().Enabled)

	// The left button is not a grab button.
	w.input().Mouse.Press(editor.MouseLeft)
	w.step()
	assert.False(t, w.panCam().Enabled)
}

func TestPanCamDrag(t *testing.T) {
	w := newWorld(t)
	input := w.input()
	input.SetCursor(400, 300)
	w.step()
	require.True(t, w.panCam().Enabled)

	input.Mouse.Press(editor.MouseMiddle)
	w.step()
	input.SetCursor(420, 290)
	w.step()

	assert.Equal(t, mgl32.Vec2{-20, -10}, w.camera().Position)
}

func TestPanCamZoomKeepsCursorPoint(t *testing.T) {
	w := newWorld(t)
	input := w.input()
	input.SetCursor(600, 150)
	w.step()

	cam := w.camera()
	viewport := cam.LogicalViewport(w.window())
	before := cam.ViewportToWorld(*input.Cursor, viewport)

	input.Wheel = 1
	w.step()

	assert.InDelta(t, 0.9, cam.Scale, 1e-6)
	after := cam.ViewportToWorld(*input.Cursor, viewport)
	assert.InDelta(t, before.X(), after.X(), 1e-3)
	assert.InDelta(t, before.Y(), after.Y(), 1e-3)

	for range 200 {
		input.Wheel = -5
		w.step()
	}
	assert.Equal(t, float32(100), cam.Scale, "zoom is clamped")
}

func TestCameraProjectionArea(t *testing.T) {
	w := newWorld(t)
	w.camera().Scale = 2
	w.step()

	area := w.camera().Area
	assert.Equal(t, float32(1600), area.Width())
	assert.Equal(t, float32(1200), area.Height())
	assert.Equal(t, mgl32.Vec2{-800, -600}, area.Min)
}

func TestPhysicalViewport(t *testing.T) {
	win := &editor.Window{PhysicalWidth: 1600, PhysicalHeight: 1200, ScaleFactor: 2}

	v, ok := editor.PhysicalViewport(editor.RectFromPosSize(mgl32.Vec2{10, 20}, mgl32.Vec2{100, 200}), win, 1)
	assert.True(t, ok)
	assert.Equal(t, [2]uint32{20, 40}, v.PhysicalPosition)
	assert.Equal(t, [2]uint32{200, 400}, v.PhysicalSize)

	_, ok = editor.PhysicalViewport(editor.RectFromPosSize(mgl32.Vec2{700, 0}, mgl32.Vec2{101, 10}), win, 1)
	assert.False(t, ok, "801 points is 1602 pixels")

	_, ok = editor.PhysicalViewport(editor.RectFromPosSize(mgl32.Vec2{0, 0}, mgl32.Vec2{800, 600}), win, 1)
	assert.True(t, ok, "exactly the window fits")

	_, ok = editor.PhysicalViewport(editor.RectFromPosSize(mgl32.Vec2{0, 0}, mgl32.Vec2{500, 400}), win, 1.5)
	assert.True(t, ok)
	v, ok = editor.PhysicalViewport(editor.RectFromPosSize(mgl32.Vec2{1e10, 0}, mgl32.Vec2{1, 10}), win, 1)
	assert.False(t, ok, "a saturated position does not wrap back into the window")
	assert.Equal(t, uint32(math.MaxUint32), v.PhysicalPosition[0])

	nan := float32(math.NaN())
	v, _ = editor.PhysicalViewport(editor.Rect{Min: mgl32.Vec2{nan, 0}, Max: mgl32.Vec2{10, 10}}, win, 1)
	assert.Zero(t, v.PhysicalPosition[0])
}

func TestCameraViewportDropsOversizedRect(t *testing.T) {
	w := newWorld(t)
	w.ui.rect = editor.RectFromPosSize(mgl32.Vec2{100, 50}, mgl32.Vec2{500, 400})
	w.step()

	require.NotNil(t, w.camera().Viewport)
	want := editor.Viewport{PhysicalPosition: [2]uint32{100, 50}, PhysicalSize: [2]uint32{500, 400}}
	assert.Equal(t, want, *w.camera().Viewport)

	w.ui.rect = editor.RectFromPosSize(mgl32.Vec2{400, 50}, mgl32.Vec2{500, 400})
	w.step()
	assert.Equal(t, want, *w.camera().Viewport, "previous viewport is kept")

	w.ui.rect = editor.RectFromPosSize(mgl32.Vec2{0, 0}, mgl32.Vec2{800, 601})
	w.step()
	assert.Equal(t, want, *w.camera().Viewport)
}

func TestViewportWorldRoundTrip(t *testing.T) {
	cam := editor.EditorCamera{Position: mgl32.Vec2{50, 25}, Scale: 0.5}
	viewport := editor.RectFromPosSize(mgl32.Vec2{100, 0}, mgl32.Vec2{400, 300})

	center := cam.ViewportToWorld(mgl32.Vec2{300, 150}, viewport)
	assert.Equal(t, cam.Position, center)

	world := cam.ViewportToWorld(mgl32.Vec2{400, 100}, viewport)
	assert.Equal(t, mgl32.Vec2{100, 50}, world)
	assert.Equal(t, mgl32.Vec2{400, 100}, cam.WorldToViewport(world, viewport))
}
