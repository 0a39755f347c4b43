package ebiten

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/ed2d/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	keys   []ebiten.Key
	mouse  map[ebiten.MouseButton]bool
	cursor [2]int
	wheel  float64
}

func (f *fakeSource) AppendPressedKeys(keys []ebiten.Key) []ebiten.Key {
	return append(keys, f.keys...)
}

func (f *fakeSource) IsMouseButtonPressed(b ebiten.MouseButton) bool { return f.mouse[b] }
func (f *fakeSource) CursorPosition() (int, int)                      { return f.cursor[0], f.cursor[1] }
func (f *fakeSource) Wheel() (float64, float64)                       { return 0, f.wheel }

func TestEveryKeyIsMapped(t *testing.T) {
	for k := editor.KeyA; !strings.HasPrefix(k.String(), "Key("); k++ {
		_, ok := EbitenKey(k)
		assert.True(t, ok, "%s has no ebiten key", k)
	}
	_, ok := EbitenKey(editor.KeyUnknown)
	assert.False(t, ok)
}

func TestPollInput(t *testing.T) {
	src := &fakeSource{mouse: map[ebiten.MouseButton]bool{}}
	poller := newInputPoller(src)
	in := &editor.Input{}
	size := mgl32.Vec2{800, 600}

	src.keys = []ebiten.Key{ebiten.KeyF, ebiten.KeyShiftLeft, ebiten.KeyNumpad0}
	src.mouse[ebiten.MouseButtonLeft] = true
	src.cursor = [2]int{10, 20}
	src.wheel = 1.5
	poller.Poll(in, size)

	assert.True(t, in.Keys.JustPressed(editor.KeyF))
	assert.True(t, in.Keys.Pressed(editor.KeyShiftLeft))
	assert.True(t, in.Mouse.JustPressed(editor.MouseLeft))
	require.NotNil(t, in.Cursor)
	assert.Equal(t, mgl32.Vec2{10, 20}, *in.Cursor)
	assert.Equal(t, float32(1.5), in.Wheel)

	src.keys = []ebiten.Key{ebiten.KeyF}
	src.mouse[ebiten.MouseButtonLeft] = false
	src.wheel = 0
	poller.Poll(in, size)

	assert.True(t, in.Keys.Pressed(editor.KeyF))
	assert.False(t, in.Keys.JustPressed(editor.KeyF), "held keys only transition once")
	assert.True(t, in.Keys.JustReleased(editor.KeyShiftLeft))
	assert.True(t, in.Mouse.JustReleased(editor.MouseLeft))
	assert.Zero(t, in.Wheel)

	src.cursor = [2]int{-1, 20}
	poller.Poll(in, size)
	assert.Nil(t, in.Cursor, "cursor outside the window is cleared")
}

func TestWindowFromLayout(t *testing.T) {
	win := WindowFromLayout(640, 360, 2)
	assert.Equal(t, editor.Window{PhysicalWidth: 1280, PhysicalHeight: 720, ScaleFactor: 2}, win)
	assert.Equal(t, mgl32.Vec2{640, 360}, win.LogicalSize())

	win = WindowFromLayout(100, 50, 0)
	assert.Equal(t, float32(1), win.ScaleFactor)
	assert.Equal(t, uint32(100), win.PhysicalWidth)
}

func TestSpriteGeoM(t *testing.T) {
	camera := &editor.EditorCamera{Position: mgl32.Vec2{10, 0}, Scale: 0.5}
	view := cameraView{
		camera:   camera,
		viewport: editor.Rect{Min: mgl32.Vec2{100, 0}, Max: mgl32.Vec2{300, 200}},
	}

	transform := editor.NewTransform(12, 4)
	sprite := &editor.Sprite{Size: mgl32.Vec2{4, 2}}
	g := spriteGeoM(&transform, sprite, view)

	// World (12, 4) is 4 px right of and 8 px above the viewport center.
	cx, cy := g.Apply(0.5, 0.5)
	assert.InDelta(t, 204, cx, 1e-4)
	assert.InDelta(t, 92, cy, 1e-4)

	x0, y0 := g.Apply(0, 0)
	x1, y1 := g.Apply(1, 1)
	assert.InDelta(t, 8, x1-x0, 1e-4)
	assert.InDelta(t, 4, y1-y0, 1e-4)

	rotated := transform.WithRotation(mgl32.DegToRad(90))
	g = spriteGeoM(&rotated, sprite, view)
	x0, y0 = g.Apply(0, 0)
	x1, y1 = g.Apply(1, 1)
	assert.InDelta(t, 4, x1-x0, 1e-3, "a quarter turn swaps width and height")
	assert.InDelta(t, -8, y1-y0, 1e-3)
}

func TestTickSeconds(t *testing.T) {
	assert.InDelta(t, 1.0/120, tickSeconds(120), 1e-12)
	assert.InDelta(t, 1.0/float64(ebiten.DefaultTPS), tickSeconds(ebiten.SyncWithFPS), 1e-12)
}
