package editor

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Key identifies a keyboard key. Backends translate their own key codes
// into these values.
type Key int

const (
	KeyUnknown Key = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyEscape
	KeySpace
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyControlLeft
	KeyControlRight
	KeyShiftLeft
	KeyShiftRight
	KeyAltLeft
	KeyAltRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown: "Unknown",
	KeyA:       "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F",
	KeyG: "G", KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L",
	KeyM: "M", KeyN: "N", KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R",
	KeyS: "S", KeyT: "T", KeyU: "U", KeyV: "V", KeyW: "W", KeyX: "X",
	KeyY: "Y", KeyZ: "Z",
	KeyEscape:       "Escape",
	KeySpace:        "Space",
	KeyEnter:        "Enter",
	KeyTab:          "Tab",
	KeyBackspace:    "Backspace",
	KeyDelete:       "Delete",
	KeyHome:         "Home",
	KeyEnd:          "End",
	KeyArrowUp:      "ArrowUp",
	KeyArrowDown:    "ArrowDown",
	KeyArrowLeft:    "ArrowLeft",
	KeyArrowRight:   "ArrowRight",
	KeyControlLeft:  "ControlLeft",
	KeyControlRight: "ControlRight",
	KeyShiftLeft:    "ShiftLeft",
	KeyShiftRight:   "ShiftRight",
	KeyAltLeft:      "AltLeft",
	KeyAltRight:     "AltRight",
	KeyF1:           "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4",
	KeyF5: "F5", KeyF6: "F6", KeyF7: "F7", KeyF8: "F8",
	KeyF9: "F9", KeyF10: "F10", KeyF11: "F11", KeyF12: "F12",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// ParseKey resolves a key name such as "Escape" or "ControlLeft".
// Matching is case-insensitive.
func ParseKey(name string) (Key, error) {
	for k := KeyA; k < keyCount; k++ {
		if strings.EqualFold(keyNames[k], name) {
			return k, nil
		}
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	mouseButtonCount
)

// MousePrimary is the button that selects.
const MousePrimary = MouseLeft

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "Left"
	case MouseRight:
		return "Right"
	case MouseMiddle:
		return "Middle"
	default:
		return fmt.Sprintf("MouseButton(%d)", int(b))
	}
}

// ParseMouseButton resolves "Left", "Right" or "Middle".
func ParseMouseButton(name string) (MouseButton, error) {
	for b := MouseLeft; b < mouseButtonCount; b++ {
		if strings.EqualFold(b.String(), name) {
			return b, nil
		}
	}
	return MouseLeft, fmt.Errorf("unknown mouse button %q", name)
}

// ButtonInput tracks pressed state plus the transitions that happened since
// the last ClearTransitions. The zero value is ready to use.
type ButtonInput[T comparable] struct {
	pressed      map[T]struct{}
	justPressed  map[T]struct{}
	justReleased map[T]struct{}
}

func (b *ButtonInput[T]) init() {
	if b.pressed == nil {
		b.pressed = make(map[T]struct{})
		b.justPressed = make(map[T]struct{})
		b.justReleased = make(map[T]struct{})
	}
}

// Press records btn as held. It is just pressed if it was not held before.
func (b *ButtonInput[T]) Press(btn T) {
	b.init()
	if _, held := b.pressed[btn]; !held {
		b.justPressed[btn] = struct{}{}
	}
	b.pressed[btn] = struct{}{}
}

// Release records btn as no longer held.
func (b *ButtonInput[T]) Release(btn T) {
	b.init()
	if _, held := b.pressed[btn]; held {
		delete(b.pressed, btn)
		b.justReleased[btn] = struct{}{}
	}
}

// ReleaseAll releases every held button, e.g. when the window loses focus.
func (b *ButtonInput[T]) ReleaseAll() {
	for btn := range b.pressed {
		b.Release(btn)
	}
}

// ClearTransitions forgets the just-pressed and just-released sets.
// Backends call it once per frame before feeding new input.
func (b *ButtonInput[T]) ClearTransitions() {
	clear(b.justPressed)
	clear(b.justReleased)
}

func (b *ButtonInput[T]) Pressed(btn T) bool {
	_, ok := b.pressed[btn]
	return ok
}

func (b *ButtonInput[T]) JustPressed(btn T) bool {
	_, ok := b.justPressed[btn]
	return ok
}

func (b *ButtonInput[T]) JustReleased(btn T) bool {
	_, ok := b.justReleased[btn]
	return ok
}

// AnyPressed reports whether at least one of btns is held.
func (b *ButtonInput[T]) AnyPressed(btns ...T) bool {
	for _, btn := range btns {
		if b.Pressed(btn) {
			return true
		}
	}
	return false
}

// AnyJustPressed reports whether at least one of btns went down this frame.
func (b *ButtonInput[T]) AnyJustPressed(btns ...T) bool {
	for _, btn := range btns {
		if b.JustPressed(btn) {
			return true
		}
	}
	return false
}

// Input is the per-frame input snapshot written by the backend.
type Input struct {
	Keys  ButtonInput[Key]
	Mouse ButtonInput[MouseButton]

	// Cursor is the pointer position in logical window pixels, nil when the
	// pointer is outside the window.
	Cursor *mgl32.Vec2

	// Wheel is the vertical scroll delta of this frame.
	Wheel float32
}

// BeginFrame clears per-frame transitions. Backends call it before
// recording the new frame's input.
func (in *Input) BeginFrame() {
	in.Keys.ClearTransitions()
	in.Mouse.ClearTransitions()
	in.Wheel = 0
}

// SetCursor sets the pointer position.
func (in *Input) SetCursor(x, y float32) {
	in.Cursor = &mgl32.Vec2{x, y}
}

// ClearCursor marks the pointer as outside the window.
func (in *Input) ClearCursor() {
	in.Cursor = nil
}

// Window describes the primary window as reported by the backend.
type Window struct {
	PhysicalWidth  uint32
	PhysicalHeight uint32
	ScaleFactor    float32
}

// LogicalSize returns the window size in logical pixels.
func (w *Window) LogicalSize() mgl32.Vec2 {
	scale := w.scale()
	return mgl32.Vec2{float32(w.PhysicalWidth) / scale, float32(w.PhysicalHeight) / scale}
}

func (w *Window) scale() float32 {
	if w.ScaleFactor <= 0 {
		return 1
	}
	return w.ScaleFactor
}

// Valid reports whether the backend has reported a window yet.
func (w *Window) Valid() bool {
	return w.PhysicalWidth > 0 && w.PhysicalHeight > 0
}
