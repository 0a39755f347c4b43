package editor

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/ecs"
)

// GizmoType selects how a Gizmo is interpreted.
type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoRect
	GizmoGrid2D
	GizmoAxes2D
)

var (
	// GridColor is neutral-500 at 30% alpha.
	GridColor = color.NRGBA{R: 0x73, G: 0x73, B: 0x73, A: 77}
	// SelectionColor outlines selected entities (neutral-50).
	SelectionColor = color.NRGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
	AxisXColor     = color.NRGBA{R: 0xff, A: 0xff}
	AxisYColor     = color.NRGBA{G: 0xff, A: 0xff}
)

// Gizmo is an immediate mode debug shape in world space. It lives for one
// frame.
type Gizmo struct {
	Type  GizmoType
	Color color.NRGBA

	// Position is the line start or the shape center.
	Position mgl32.Vec3
	// Rotation around the z axis, in radians.
	Angle float32

	LineEnd mgl32.Vec3    // GizmoLine
	Size    mgl32.Vec2    // GizmoRect
	Cells   [2]uint32     // GizmoGrid2D
	Spacing mgl32.Vec2    // GizmoGrid2D
	Axes    [2]mgl32.Vec2 // GizmoAxes2D, x and y axis end offsets
}

// Segment is a colored world-space line segment.
type Segment struct {
	From  mgl32.Vec2
	To    mgl32.Vec2
	Color color.NRGBA
}

// Gizmos collects the gizmos of the current frame. It is stored as a
// singleton and cleared in the First stage.
type Gizmos struct {
	items []Gizmo
}

func (g *Gizmos) Clear() {
	g.items = g.items[:0]
}

// Items returns the gizmos recorded this frame.
func (g *Gizmos) Items() []Gizmo {
	return g.items
}

func (g *Gizmos) Line(start, end mgl32.Vec3, c color.NRGBA) {
	g.items = append(g.items, Gizmo{Type: GizmoLine, Position: start, LineEnd: end, Color: c})
}

// Rect draws a rectangle outline of the given size centered at position
// and rotated by rotation.
func (g *Gizmos) Rect(position mgl32.Vec3, rotation mgl32.Quat, size mgl32.Vec2, c color.NRGBA) {
	angle := Transform{Rotation: rotation}.Angle2D()
	g.items = append(g.items, Gizmo{Type: GizmoRect, Position: position, Angle: angle, Size: size, Color: c})
}

// Grid2D draws cells[0] x cells[1] cells of the given spacing centered at
// position.
func (g *Gizmos) Grid2D(position mgl32.Vec2, angle float32, cells [2]uint32, spacing mgl32.Vec2, c color.NRGBA) {
	g.items = append(g.items, Gizmo{
		Type:     GizmoGrid2D,
		Position: position.Vec3(0),
		Angle:    angle,
		Cells:    cells,
		Spacing:  spacing,
		Color:    c,
	})
}

// Axes2D draws the local x and y axes of t, each baseLength long before
// scaling.
func (g *Gizmos) Axes2D(t Transform, baseLength float32) {
	rot := t.rotation()
	x := rot.Rotate(mgl32.Vec3{baseLength * t.Scale.X(), 0, 0}).Vec2()
	y := rot.Rotate(mgl32.Vec3{0, baseLength * t.Scale.Y(), 0}).Vec2()
	g.items = append(g.items, Gizmo{
		Type:     GizmoAxes2D,
		Position: t.Translation,
		Axes:     [2]mgl32.Vec2{x, y},
	})
}

// Segments flattens every gizmo into line segments for backends.
func (g *Gizmos) Segments() []Segment {
	var out []Segment
	for i := range g.items {
		out = g.items[i].appendSegments(out)
	}
	return out
}

func (gz *Gizmo) appendSegments(out []Segment) []Segment {
	origin := gz.Position.Vec2()
	rot := mgl32.Rotate2D(gz.Angle)
	place := func(local mgl32.Vec2) mgl32.Vec2 {
		return origin.Add(rot.Mul2x1(local))
	}

	switch gz.Type {
	case GizmoLine:
		out = append(out, Segment{From: origin, To: gz.LineEnd.Vec2(), Color: gz.Color})

	case GizmoRect:
		hx, hy := gz.Size.X()/2, gz.Size.Y()/2
		corners := [4]mgl32.Vec2{
			place(mgl32.Vec2{-hx, -hy}),
			place(mgl32.Vec2{hx, -hy}),
			place(mgl32.Vec2{hx, hy}),
			place(mgl32.Vec2{-hx, hy}),
		}
		for i := range corners {
			out = append(out, Segment{From: corners[i], To: corners[(i+1)%4], Color: gz.Color})
		}

	case GizmoGrid2D:
		w := float32(gz.Cells[0]) * gz.Spacing.X()
		h := float32(gz.Cells[1]) * gz.Spacing.Y()
		for i := uint32(0); i <= gz.Cells[0]; i++ {
			x := -w/2 + float32(i)*gz.Spacing.X()
			out = append(out, Segment{From: place(mgl32.Vec2{x, -h / 2}), To: place(mgl32.Vec2{x, h / 2}), Color: gz.Color})
		}
		for j := uint32(0); j <= gz.Cells[1]; j++ {
			y := -h/2 + float32(j)*gz.Spacing.Y()
			out = append(out, Segment{From: place(mgl32.Vec2{-w / 2, y}), To: place(mgl32.Vec2{w / 2, y}), Color: gz.Color})
		}

	case GizmoAxes2D:
		out = append(out,
			Segment{From: origin, To: origin.Add(gz.Axes[0]), Color: AxisXColor},
			Segment{From: origin, To: origin.Add(gz.Axes[1]), Color: AxisYColor},
		)
	}
	return out
}

// GridCellSize picks the first of sizes (ascending) for which the view
// height spans fewer than threshold cells, or the last size if none does.
func GridCellSize(viewHeight float32, sizes []float32, threshold float32) float32 {
	if len(sizes) == 0 {
		return 0
	}
	for _, size := range sizes {
		if viewHeight/size < threshold {
			return size
		}
	}
	return sizes[len(sizes)-1]
}

// MaxGridCells caps the cell count of a grid axis.
const MaxGridCells = 4096

// GridCells returns the cell count per axis covering a view of the given
// size with a margin, rounded to an even number and capped at MaxGridCells.
// A cell size that is not positive yields no cells.
func GridCells(view mgl32.Vec2, cellSize float32) [2]uint32 {
	if !(cellSize > 0) {
		return [2]uint32{}
	}
	cells := func(extent float32) uint32 {
		n := math.Ceil(float64(extent / cellSize))
		if !(n > 0) {
			n = 0
		}
		if n > MaxGridCells-3 {
			return MaxGridCells
		}
		return (uint32(n) + 3) / 2 * 2
	}
	return [2]uint32{cells(view.X()), cells(view.Y())}
}

// GridCenter snaps pos to the cell boundary at or below it.
func GridCenter(pos mgl32.Vec2, cellSize float32) mgl32.Vec2 {
	snap := func(v float32) float32 {
		return float32(math.Floor(float64(v/cellSize))) * cellSize
	}
	return mgl32.Vec2{snap(pos.X()), snap(pos.Y())}
}

// ClearGizmosSystem drops last frame's gizmos.
type ClearGizmosSystem struct {
	Gizmos ecs.Singleton[Gizmos]
}

func (s *ClearGizmosSystem) Execute(frame *ecs.UpdateFrame) {
	if g := s.Gizmos.Get(); g != nil {
		g.Clear()
	}
}

// DrawGridSystem draws a world grid behind the scene whose spacing adapts
// to the zoom level.
type DrawGridSystem struct {
	Gizmos   ecs.Singleton[Gizmos]
	Settings ecs.Singleton[Settings]
	Cameras  ecs.Query[struct{ *EditorCamera }]
}

func (s *DrawGridSystem) Execute(frame *ecs.UpdateFrame) {
	gizmos := s.Gizmos.Get()
	settings := s.Settings.Get()
	if gizmos == nil || settings == nil || len(settings.GridSizes) == 0 {
		return
	}

	for cam := range s.Cameras.Values() {
		camera := cam.EditorCamera
		view := camera.Area.Size()
		if view.Y() <= 0 {
			continue
		}

		size := GridCellSize(view.Y(), settings.GridSizes, settings.DensityThreshold)
		gizmos.Grid2D(
			GridCenter(camera.Position, size),
			0,
			GridCells(view, size),
			mgl32.Vec2{size, size},
			GridColor,
		)
	}
}

// DrawTransformGizmosSystem draws the axes of every selected entity and
// outlines its bounds.
type DrawTransformGizmosSystem struct {
	Gizmos   ecs.Singleton[Gizmos]
	UiState  ecs.Singleton[UiState]
	Settings ecs.Singleton[Settings]
	Cameras  ecs.Query[struct{ *EditorCamera }]

	targets *ecs.View[transformTarget]
}

type transformTarget struct {
	*Transform
	Aabb   *Aabb   `ecs:"optional"`
	Sprite *Sprite `ecs:"optional"`
}

func (s *DrawTransformGizmosSystem) Execute(frame *ecs.UpdateFrame) {
	gizmos := s.Gizmos.Get()
	ui := s.UiState.Get()
	settings := s.Settings.Get()
	if gizmos == nil || ui == nil || settings == nil {
		return
	}

	var viewHeight float32
	found := false
	for cam := range s.Cameras.Values() {
		viewHeight = cam.EditorCamera.Area.Height()
		found = true
		break
	}
	if !found {
		return
	}

	if s.targets == nil {
		s.targets = ecs.NewView[transformTarget](frame.Storage)
	}

	axes := viewHeight / settings.AxesDivisor
	for id := range ui.Selected.Iter() {
		target := s.targets.Get(id)
		if target == nil {
			continue
		}
		t := target.Transform
		gizmos.Axes2D(*t, axes)

		bounds := target.Aabb
		if bounds == nil && target.Sprite != nil {
			b := target.Sprite.Bounds()
			bounds = &b
		}
		if bounds == nil {
			continue
		}
		size := mgl32.Vec2{
			t.Scale.X() * bounds.HalfExtents.X() * 2,
			t.Scale.Y() * bounds.HalfExtents.Y() * 2,
		}
		gizmos.Rect(t.Translation, t.Rotation, size, SelectionColor)
	}
}
