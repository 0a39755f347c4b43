package ebiten

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
)

// Screen is the image the render systems draw to. Game points it at the
// ebiten screen before running the render scheduler.
type Screen struct {
	*ebiten.Image
}

// GizmoLineWidth is the stroke width of gizmo segments in logical pixels.
const GizmoLineWidth = 1

// cameraView pairs the camera being drawn with the logical window region it
// renders to.
type cameraView struct {
	camera   *editor.EditorCamera
	viewport editor.Rect
}

func (v cameraView) toScreen(world mgl32.Vec2) mgl32.Vec2 {
	return v.camera.WorldToViewport(world, v.viewport)
}

// target returns the part of screen covered by the viewport. Drawing to the
// returned image is clipped to it.
func (v cameraView) target(screen *ebiten.Image) *ebiten.Image {
	r := image.Rect(
		int(v.viewport.Min.X()), int(v.viewport.Min.Y()),
		int(v.viewport.Max.X()), int(v.viewport.Max.Y()),
	)
	return screen.SubImage(r).(*ebiten.Image)
}

// firstCamera returns the view of the first editor camera.
func firstCamera(cameras *ecs.Query[struct{ *editor.EditorCamera }], win *editor.Window) (cameraView, bool) {
	for cam := range cameras.Values() {
		if cam.EditorCamera.Scale <= 0 {
			continue
		}
		viewport := cam.EditorCamera.LogicalViewport(win)
		if viewport.IsEmpty() {
			continue
		}
		return cameraView{camera: cam.EditorCamera, viewport: viewport}, true
	}
	return cameraView{}, false
}

// spriteGeoM maps the unit square to the sprite's quad on screen.
func spriteGeoM(t *editor.Transform, s *editor.Sprite, view cameraView) ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-0.5, -0.5)
	g.Scale(
		float64(s.Size.X()*t.Scale.X()/view.camera.Scale),
		float64(s.Size.Y()*t.Scale.Y()/view.camera.Scale),
	)
	// Screen y points down, so the world rotation flips.
	g.Rotate(-float64(t.Angle2D()))
	center := view.toScreen(t.Translation.Vec2())
	g.Translate(float64(center.X()), float64(center.Y()))
	return g
}

// DrawSpritesSystem draws every sprite as a colored quad through the editor
// camera, clipped to the camera viewport.
type DrawSpritesSystem struct {
	Screen  ecs.Singleton[Screen]
	Window  ecs.Singleton[editor.Window]
	Cameras ecs.Query[struct{ *editor.EditorCamera }]
	Sprites ecs.Query[struct {
		*editor.Transform
		*editor.Sprite
	}]

	// Background fills the viewport before sprites are drawn. A zero alpha
	// leaves the screen as is.
	Background color.NRGBA

	pixel *ebiten.Image
}

func (s *DrawSpritesSystem) Execute(frame *ecs.UpdateFrame) {
	screen, win := s.Screen.Get(), s.Window.Get()
	if screen == nil || screen.Image == nil || win == nil || !win.Valid() {
		return
	}
	view, ok := firstCamera(&s.Cameras, win)
	if !ok {
		return
	}
	dst := view.target(screen.Image)
	if s.Background.A > 0 {
		dst.Fill(s.Background)
	}

	if s.pixel == nil {
		s.pixel = ebiten.NewImage(1, 1)
		s.pixel.Fill(color.White)
	}

	for sprite := range s.Sprites.Values() {
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM = spriteGeoM(sprite.Transform, sprite.Sprite, view)
		opts.ColorScale.ScaleWithColor(sprite.Sprite.Color)
		dst.DrawImage(s.pixel, opts)
	}
}

// DrawGizmosSystem strokes this frame's gizmo segments through the editor
// camera.
type DrawGizmosSystem struct {
	Screen  ecs.Singleton[Screen]
	Window  ecs.Singleton[editor.Window]
	Gizmos  ecs.Singleton[editor.Gizmos]
	Cameras ecs.Query[struct{ *editor.EditorCamera }]
}

func (s *DrawGizmosSystem) Execute(frame *ecs.UpdateFrame) {
	screen, win, gizmos := s.Screen.Get(), s.Window.Get(), s.Gizmos.Get()
	if screen == nil || screen.Image == nil || win == nil || !win.Valid() || gizmos == nil {
		return
	}
	view, ok := firstCamera(&s.Cameras, win)
	if !ok {
		return
	}
	dst := view.target(screen.Image)

	for _, seg := range gizmos.Segments() {
		a, b := view.toScreen(seg.From), view.toScreen(seg.To)
		vector.StrokeLine(dst, a.X(), a.Y(), b.X(), b.Y(), GizmoLineWidth, seg.Color, true)
	}
}

// NewRenderScheduler returns a scheduler that draws sprites and then gizmos.
// It leaves the event queues to the update scheduler.
func NewRenderScheduler(storage *ecs.Storage, background color.NRGBA, opts ...ecs.SchedulerOption) *ecs.Scheduler {
	ecs.NewSingleton[Screen](storage)

	opts = append(opts[:len(opts):len(opts)], ecs.WithoutEventUpdates())
	scheduler := ecs.NewScheduler(storage, opts...)
	sprites := &DrawSpritesSystem{Background: background}
	scheduler.Add(ecs.Update, sprites)
	scheduler.Add(ecs.Update, &DrawGizmosSystem{}, ecs.After(sprites))
	return scheduler
}
