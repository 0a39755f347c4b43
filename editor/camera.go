package editor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/ecs"
	"go.uber.org/zap"
)

// Rect is an axis aligned rectangle. The zero value is empty.
type Rect struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

// RectFromPosSize builds a rect from its top-left corner and size.
func RectFromPosSize(pos, size mgl32.Vec2) Rect {
	return Rect{Min: pos, Max: pos.Add(size)}
}

func (r Rect) Width() float32  { return r.Max.X() - r.Min.X() }
func (r Rect) Height() float32 { return r.Max.Y() - r.Min.Y() }
func (r Rect) Size() mgl32.Vec2 {
	return mgl32.Vec2{r.Width(), r.Height()}
}

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether p lies inside the rect, edges included.
func (r Rect) Contains(p mgl32.Vec2) bool {
	return p.X() >= r.Min.X() && p.X() <= r.Max.X() &&
		p.Y() >= r.Min.Y() && p.Y() <= r.Max.Y()
}

// Viewport is the physical pixel region of the window a camera renders to.
type Viewport struct {
	PhysicalPosition [2]uint32
	PhysicalSize     [2]uint32
}

// EditorCamera is an orthographic 2D camera. Scale is world units per
// logical pixel and y points up in world space.
type EditorCamera struct {
	Position mgl32.Vec2
	Scale    float32

	// Area is the visible world region relative to Position. It is kept up
	// to date by CameraProjectionSystem.
	Area Rect

	// Viewport restricts rendering to part of the window. nil means the
	// whole window.
	Viewport *Viewport
}

// NewEditorCamera returns a camera at the origin with unit scale.
func NewEditorCamera() EditorCamera {
	return EditorCamera{Scale: 1}
}

// LogicalViewport returns the region of the window the camera renders to,
// in logical pixels.
func (c *EditorCamera) LogicalViewport(win *Window) Rect {
	if c.Viewport == nil {
		return Rect{Max: win.LogicalSize()}
	}
	scale := win.scale()
	pos := mgl32.Vec2{float32(c.Viewport.PhysicalPosition[0]), float32(c.Viewport.PhysicalPosition[1])}
	size := mgl32.Vec2{float32(c.Viewport.PhysicalSize[0]), float32(c.Viewport.PhysicalSize[1])}
	return RectFromPosSize(pos.Mul(1/scale), size.Mul(1/scale))
}

// ViewportToWorld converts a logical window position inside viewport to a
// world position.
func (c *EditorCamera) ViewportToWorld(cursor mgl32.Vec2, viewport Rect) mgl32.Vec2 {
	local := cursor.Sub(viewport.Min).Sub(viewport.Size().Mul(0.5))
	return mgl32.Vec2{
		c.Position.X() + local.X()*c.Scale,
		c.Position.Y() - local.Y()*c.Scale,
	}
}

// WorldToViewport converts a world position to a logical window position.
func (c *EditorCamera) WorldToViewport(world mgl32.Vec2, viewport Rect) mgl32.Vec2 {
	center := viewport.Min.Add(viewport.Size().Mul(0.5))
	d := world.Sub(c.Position).Mul(1 / c.Scale)
	return mgl32.Vec2{center.X() + d.X(), center.Y() - d.Y()}
}

// PanCam holds the pan and zoom input state of a camera.
type PanCam struct {
	Enabled     bool
	GrabButtons []MouseButton
	MinScale    float32
	MaxScale    float32
	ZoomStep    float32
}

// TogglePanCamSystem enables camera input while the viewport is hovered.
// A drag in progress keeps it enabled after the pointer leaves the
// viewport.
type TogglePanCamSystem struct {
	UiState ecs.Singleton[UiState]
	Input   ecs.Singleton[Input]
	Cameras ecs.Query[struct{ *PanCam }]
}

func (s *TogglePanCamSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	input := s.Input.Get()
	if ui == nil || input == nil {
		return
	}

	for cam := range s.Cameras.Values() {
		pc := cam.PanCam
		switch {
		case ui.ViewportHovered && ui.Active:
			pc.Enabled = true
		case !ui.ViewportHovered && !input.Mouse.AnyPressed(pc.GrabButtons...):
			pc.Enabled = false
		}
	}
}

// PanCamSystem drags the camera with the grab buttons and zooms with the
// wheel around the point under the cursor.
type PanCamSystem struct {
	Input   ecs.Singleton[Input]
	Window  ecs.Singleton[Window]
	Cameras ecs.Query[struct {
		*EditorCamera
		*PanCam
	}]

	lastCursor *mgl32.Vec2
}

func (s *PanCamSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	win := s.Window.Get()
	if input == nil || win == nil {
		return
	}
	defer func() {
		if input.Cursor == nil {
			s.lastCursor = nil
			return
		}
		c := *input.Cursor
		s.lastCursor = &c
	}()

	if input.Cursor == nil {
		return
	}
	cursor := *input.Cursor

	for cam := range s.Cameras.Values() {
		if !cam.PanCam.Enabled {
			continue
		}
		camera := cam.EditorCamera

		if s.lastCursor != nil && input.Mouse.AnyPressed(cam.PanCam.GrabButtons...) {
			delta := cursor.Sub(*s.lastCursor)
			camera.Position = mgl32.Vec2{
				camera.Position.X() - delta.X()*camera.Scale,
				camera.Position.Y() + delta.Y()*camera.Scale,
			}
		}

		if input.Wheel != 0 {
			zoomAround(camera, cam.PanCam, cursor, camera.LogicalViewport(win), input.Wheel)
		}
	}
}

// zoomAround changes the camera scale while keeping the world point under
// cursor fixed.
func zoomAround(camera *EditorCamera, pc *PanCam, cursor mgl32.Vec2, viewport Rect, wheel float32) {
	oldScale := camera.Scale
	newScale := oldScale * (1 - wheel*pc.ZoomStep)
	newScale = mgl32.Clamp(newScale, pc.MinScale, pc.MaxScale)
	if newScale == oldScale {
		return
	}

	before := camera.ViewportToWorld(cursor, viewport)
	camera.Scale = newScale
	after := camera.ViewportToWorld(cursor, viewport)
	camera.Position = camera.Position.Add(before.Sub(after))
}

// FocusSelectedSystem moves the camera to the selected entity when the
// focus key is pressed over the viewport. The camera eases toward the
// target and snaps once it is close enough relative to the view height.
type FocusSelectedSystem struct {
	UiState  ecs.Singleton[UiState]
	Input    ecs.Singleton[Input]
	Settings ecs.Singleton[Settings]
	Cameras  ecs.Query[struct{ *EditorCamera }]

	target *mgl32.Vec2
	log    *zap.Logger
}

func (s *FocusSelectedSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	input := s.Input.Get()
	settings := s.Settings.Get()
	if ui == nil || input == nil || settings == nil {
		return
	}

	if input.Keys.JustPressed(settings.FocusKey) && ui.ViewportHovered && ui.Selected.Len() == 1 {
		id, _ := ui.Selected.First()
		if t := ecs.ReadComponent[Transform](frame.Storage, id); t != nil {
			target := t.Translation.Vec2()
			s.target = &target
			logger(s.log).Debug("focus target captured",
				zap.Uint64("entity", uint64(id)),
				zap.Float32("x", target.X()),
				zap.Float32("y", target.Y()))
		}
	}

	if s.target == nil {
		return
	}
	target := *s.target

	_, cam, ok := s.Cameras.First()
	if !ok {
		return
	}
	camera := cam.EditorCamera
	snap := camera.Area.Height() * settings.SnapFactor
	if target.Sub(camera.Position).Len() < snap {
		camera.Position = target
		s.target = nil
		logger(s.log).Debug("focus reached")
		return
	}

	t := min(settings.FollowRate*float32(frame.DeltaTime), 1)
	camera.Position = camera.Position.Add(target.Sub(camera.Position).Mul(t))
}

// Target returns the pending focus target, if any.
func (s *FocusSelectedSystem) Target() (mgl32.Vec2, bool) {
	if s.target == nil {
		return mgl32.Vec2{}, false
	}
	return *s.target, true
}

// CameraProjectionSystem recomputes each camera's visible area from its
// viewport and scale.
type CameraProjectionSystem struct {
	Window  ecs.Singleton[Window]
	Cameras ecs.Query[struct{ *EditorCamera }]
}

func (s *CameraProjectionSystem) Execute(frame *ecs.UpdateFrame) {
	win := s.Window.Get()
	if win == nil || !win.Valid() {
		return
	}

	for cam := range s.Cameras.Values() {
		camera := cam.EditorCamera
		half := camera.LogicalViewport(win).Size().Mul(0.5 * camera.Scale)
		camera.Area = Rect{
			Min: mgl32.Vec2{-half.X(), -half.Y()},
			Max: half,
		}
	}
}

// CameraViewportSystem restricts the editor camera to the game view rect
// while the UI is active. Requests that do not fit the window are dropped
// and the previous viewport is kept.
type CameraViewportSystem struct {
	UiState  ecs.Singleton[UiState]
	Window   ecs.Singleton[Window]
	Settings ecs.Singleton[Settings]
	Cameras  ecs.Query[struct{ *EditorCamera }]

	log *zap.Logger
}

func (s *CameraViewportSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	if ui == nil {
		return
	}

	if !ui.Active {
		for cam := range s.Cameras.Values() {
			cam.EditorCamera.Viewport = nil
		}
		return
	}

	win := s.Window.Get()
	if win == nil || !win.Valid() || ui.ViewportRect.IsEmpty() {
		return
	}

	uiScale := float32(1)
	if settings := s.Settings.Get(); settings != nil && settings.UiScale > 0 {
		uiScale = settings.UiScale
	}

	viewport, ok := PhysicalViewport(ui.ViewportRect, win, uiScale)
	if !ok {
		logger(s.log).Debug("viewport rect does not fit the window",
			zap.Uint32s("position", viewport.PhysicalPosition[:]),
			zap.Uint32s("size", viewport.PhysicalSize[:]),
			zap.Uint32("window_width", win.PhysicalWidth),
			zap.Uint32("window_height", win.PhysicalHeight))
		return
	}

	for cam := range s.Cameras.Values() {
		v := viewport
		cam.EditorCamera.Viewport = &v
	}
}

// PhysicalViewport converts a rect in UI points to a physical viewport.
// ok is false when the result would extend past the window.
func PhysicalViewport(rect Rect, win *Window, uiScale float32) (Viewport, bool) {
	scale := win.scale() * uiScale
	pos := rect.Min.Mul(scale)
	size := rect.Size().Mul(scale)

	viewport := Viewport{
		PhysicalPosition: [2]uint32{toPixels(pos.X()), toPixels(pos.Y())},
		PhysicalSize:     [2]uint32{toPixels(size.X()), toPixels(size.Y())},
	}

	fits := uint64(viewport.PhysicalPosition[0])+uint64(viewport.PhysicalSize[0]) <= uint64(win.PhysicalWidth) &&
		uint64(viewport.PhysicalPosition[1])+uint64(viewport.PhysicalSize[1]) <= uint64(win.PhysicalHeight)
	return viewport, fits
}

// toPixels truncates toward zero and saturates to the uint32 range. NaN
// maps to 0.
func toPixels(v float32) uint32 {
	switch {
	case !(v > 0):
		return 0
	case float64(v) >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}
