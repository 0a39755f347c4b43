package ebiten

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/ed2d/editor"
)

var keyMap = map[editor.Key]ebiten.Key{
	editor.KeyA: ebiten.KeyA, editor.KeyB: ebiten.KeyB, editor.KeyC: ebiten.KeyC,
	editor.KeyD: ebiten.KeyD, editor.KeyE: ebiten.KeyE, editor.KeyF: ebiten.KeyF,
	editor.KeyG: ebiten.KeyG, editor.KeyH: ebiten.KeyH, editor.KeyI: ebiten.KeyI,
	editor.KeyJ: ebiten.KeyJ, editor.KeyK: ebiten.KeyK, editor.KeyL: ebiten.KeyL,
	editor.KeyM: ebiten.KeyM, editor.KeyN: ebiten.KeyN, editor.KeyO: ebiten.KeyO,
	editor.KeyP: ebiten.KeyP, editor.KeyQ: ebiten.KeyQ, editor.KeyR: ebiten.KeyR,
	editor.KeyS: ebiten.KeyS, editor.KeyT: ebiten.KeyT, editor.KeyU: ebiten.KeyU,
	editor.KeyV: ebiten.KeyV, editor.KeyW: ebiten.KeyW, editor.KeyX: ebiten.KeyX,
	editor.KeyY: ebiten.KeyY, editor.KeyZ: ebiten.KeyZ,

	editor.KeyEscape:    ebiten.KeyEscape,
	editor.KeySpace:     ebiten.KeySpace,
	editor.KeyEnter:     ebiten.KeyEnter,
	editor.KeyTab:       ebiten.KeyTab,
	editor.KeyBackspace: ebiten.KeyBackspace,
	editor.KeyDelete:    ebiten.KeyDelete,
	editor.KeyHome:      ebiten.KeyHome,
	editor.KeyEnd:       ebiten.KeyEnd,

	editor.KeyArrowUp:    ebiten.KeyArrowUp,
	editor.KeyArrowDown:  ebiten.KeyArrowDown,
	editor.KeyArrowLeft:  ebiten.KeyArrowLeft,
	editor.KeyArrowRight: ebiten.KeyArrowRight,

	editor.KeyControlLeft:  ebiten.KeyControlLeft,
	editor.KeyControlRight: ebiten.KeyControlRight,
	editor.KeyShiftLeft:    ebiten.KeyShiftLeft,
	editor.KeyShiftRight:   ebiten.KeyShiftRight,
	editor.KeyAltLeft:      ebiten.KeyAltLeft,
	editor.KeyAltRight:     ebiten.KeyAltRight,

	editor.KeyF1: ebiten.KeyF1, editor.KeyF2: ebiten.KeyF2, editor.KeyF3: ebiten.KeyF3,
	editor.KeyF4: ebiten.KeyF4, editor.KeyF5: ebiten.KeyF5, editor.KeyF6: ebiten.KeyF6,
	editor.KeyF7: ebiten.KeyF7, editor.KeyF8: ebiten.KeyF8, editor.KeyF9: ebiten.KeyF9,
	editor.KeyF10: ebiten.KeyF10, editor.KeyF11: ebiten.KeyF11, editor.KeyF12: ebiten.KeyF12,
}

// fromEbitenKey is the inverse of keyMap.
var fromEbitenKey = func() map[ebiten.Key]editor.Key {
	m := make(map[ebiten.Key]editor.Key, len(keyMap))
	for k, ek := range keyMap {
		m[ek] = k
	}
	return m
}()

var mouseMap = map[editor.MouseButton]ebiten.MouseButton{
	editor.MouseLeft:   ebiten.MouseButtonLeft,
	editor.MouseRight:  ebiten.MouseButtonRight,
	editor.MouseMiddle: ebiten.MouseButtonMiddle,
}

// EbitenKey returns the ebiten key for k.
func EbitenKey(k editor.Key) (ebiten.Key, bool) {
	ek, ok := keyMap[k]
	return ek, ok
}

// inputSource is the part of ebiten's polling API the backend reads.
type inputSource interface {
	AppendPressedKeys(keys []ebiten.Key) []ebiten.Key
	IsMouseButtonPressed(b ebiten.MouseButton) bool
	CursorPosition() (int, int)
	Wheel() (float64, float64)
}

type ebitenSource struct{}

func (ebitenSource) AppendPressedKeys(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendPressedKeys(keys)
}

func (ebitenSource) IsMouseButtonPressed(b ebiten.MouseButton) bool {
	return ebiten.IsMouseButtonPressed(b)
}

func (ebitenSource) CursorPosition() (int, int) { return ebiten.CursorPosition() }
func (ebitenSource) Wheel() (float64, float64)  { return ebiten.Wheel() }

// inputPoller records one frame of input. The key buffers are reused
// between frames.
type inputPoller struct {
	src     inputSource
	keys    []ebiten.Key
	pressed map[editor.Key]struct{}
}

func newInputPoller(src inputSource) *inputPoller {
	return &inputPoller{src: src, pressed: make(map[editor.Key]struct{})}
}

// Poll clears last frame's transitions and records the current keyboard,
// mouse, cursor and wheel state. size is the logical window size; the
// cursor is cleared when it lies outside.
func (p *inputPoller) Poll(in *editor.Input, size mgl32.Vec2) {
	in.BeginFrame()

	clear(p.pressed)
	p.keys = p.src.AppendPressedKeys(p.keys[:0])
	for _, ek := range p.keys {
		if k, ok := fromEbitenKey[ek]; ok {
			p.pressed[k] = struct{}{}
		}
	}
	for k := range keyMap {
		if _, down := p.pressed[k]; down {
			in.Keys.Press(k)
		} else {
			in.Keys.Release(k)
		}
	}

	for b, eb := range mouseMap {
		if p.src.IsMouseButtonPressed(eb) {
			in.Mouse.Press(b)
		} else {
			in.Mouse.Release(b)
		}
	}

	x, y := p.src.CursorPosition()
	cursor := mgl32.Vec2{float32(x), float32(y)}
	if (editor.Rect{Max: size}).Contains(cursor) {
		in.SetCursor(cursor.X(), cursor.Y())
	} else {
		in.ClearCursor()
	}

	_, dy := p.src.Wheel()
	in.Wheel = float32(dy)
}

// WindowFromLayout builds the window description from ebiten's layout size
// in device independent pixels and the monitor's device scale factor.
func WindowFromLayout(width, height int, scale float64) editor.Window {
	if scale <= 0 {
		scale = 1
	}
	return editor.Window{
		PhysicalWidth:  uint32(max(0, float64(width)*scale+0.5)),
		PhysicalHeight: uint32(max(0, float64(height)*scale+0.5)),
		ScaleFactor:    float32(scale),
	}
}
