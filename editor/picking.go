package editor

import (
	"iter"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/ecs"
	"go.uber.org/zap"
)

// PointerId identifies a pointer. Only the mouse is supported.
type PointerId int

const PointerMouse PointerId = 0

// HitData describes where a pointer hit an entity.
type HitData struct {
	Camera ecs.EntityId
	// Depth orders hits within one backend. Smaller is closer.
	Depth float32
	// Position is the world position of the hit, if known.
	Position *mgl32.Vec3
}

type Hit struct {
	Entity ecs.EntityId
	Data   HitData
}

// PointerHits is reported by a picking backend for one pointer. Hits with a
// higher Order win over hits with a lower one regardless of depth.
type PointerHits struct {
	Pointer PointerId
	Picks   []Hit
	Order   float32
}

// PointerClick is sent when a button goes down over an entity.
type PointerClick struct {
	Pointer PointerId
	Target  ecs.EntityId
	Button  MouseButton
}

// PointerDeselect is sent when the picking side drops an entity from the
// selection. Despawned marks a selected entity that was deleted; its Target
// is the last id it was seen with and may already name another entity.
type PointerDeselect struct {
	Pointer   PointerId
	Target    ecs.EntityId
	Despawned bool
}

// Hovered is the result of hit resolution for the mouse pointer.
type Hovered struct {
	Entity ecs.EntityId
	Valid  bool
}

// SpriteBackendSystem hit tests the cursor against pickable sprites seen
// through an editor camera.
type SpriteBackendSystem struct {
	Input   ecs.Singleton[Input]
	Window  ecs.Singleton[Window]
	Cameras ecs.Query[struct{ *EditorCamera }]
	Sprites ecs.Query[struct {
		*Pickable
		*Sprite
		*Transform
	}]
	Hits ecs.EventWriter[PointerHits]
}

func (s *SpriteBackendSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	win := s.Window.Get()
	if input == nil || input.Cursor == nil || win == nil || !win.Valid() {
		return
	}
	cursor := *input.Cursor

	for camId, cam := range s.Cameras.Iter() {
		viewport := cam.EditorCamera.LogicalViewport(win)
		if !viewport.Contains(cursor) {
			continue
		}
		world := cam.EditorCamera.ViewportToWorld(cursor, viewport)
		point := world.Vec3(0)

		var picks []Hit
		for id, sprite := range s.Sprites.Iter() {
			if !spriteContains(sprite.Sprite, sprite.Transform, point) {
				continue
			}
			pos := mgl32.Vec3{world.X(), world.Y(), sprite.Transform.Translation.Z()}
			picks = append(picks, Hit{
				Entity: id,
				Data: HitData{
					Camera:   camId,
					Depth:    -sprite.Transform.Translation.Z(),
					Position: &pos,
				},
			})
		}
		if len(picks) == 0 {
			continue
		}

		sort.SliceStable(picks, func(i, j int) bool {
			return picks[i].Data.Depth < picks[j].Data.Depth
		})
		s.Hits.Send(PointerHits{Pointer: PointerMouse, Picks: picks, Order: 0})
	}
}

func spriteContains(sprite *Sprite, t *Transform, world mgl32.Vec3) bool {
	local := t.ToLocal(mgl32.Vec3{world.X(), world.Y(), t.Translation.Z()})
	half := sprite.Size.Mul(0.5)
	return abs32(local.X()) <= half.X() && abs32(local.Y()) <= half.Y()
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// PickResolveSystem picks the hovered entity from this frame's hits, sends
// click events and maintains PickSelection flags for clicks in the scene.
//
// A primary click on an entity replaces the selection, or toggles the
// entity while a multi-select key is held. A primary click on nothing
// clears the selection unless a multi-select key is held. Clicks on
// NoDeselect entities never change it. Selected entities that no longer
// exist are deselected.
type PickResolveSystem struct {
	Hits       ecs.EventReader[PointerHits]
	Input      ecs.Singleton[Input]
	UiState    ecs.Singleton[UiState]
	Settings   ecs.Singleton[Settings]
	Hovered    ecs.Singleton[Hovered]
	Selectable ecs.Query[struct{ *PickSelection }]
	Clicks     ecs.EventWriter[PointerClick]
	Deselects  ecs.EventWriter[PointerDeselect]

	log *zap.Logger
}

func (s *PickResolveSystem) Execute(frame *ecs.UpdateFrame) {
	input := s.Input.Get()
	settings := s.Settings.Get()
	if input == nil || settings == nil {
		return
	}

	hovered, ok := resolveHits(s.Hits.Read())
	if h := s.Hovered.Get(); h != nil {
		*h = Hovered{Entity: hovered, Valid: ok}
	}

	if ui := s.UiState.Get(); ui != nil {
		for _, id := range ui.Selected.Prune() {
			s.Deselects.Send(PointerDeselect{Pointer: PointerMouse, Target: id, Despawned: true})
		}
	}

	if input.Cursor == nil {
		return
	}

	for _, button := range [...]MouseButton{MouseLeft, MouseRight, MouseMiddle} {
		if ok && input.Mouse.JustPressed(button) {
			s.Clicks.Send(PointerClick{Pointer: PointerMouse, Target: hovered, Button: button})
		}
	}

	if !input.Mouse.JustPressed(MousePrimary) {
		return
	}
	multi := input.Keys.AnyPressed(settings.MultiSelectKeys...)

	if !ok {
		if !multi {
			s.deselectAll(0, false)
		}
		return
	}
	if ecs.HasComponentOf[NoDeselect](frame.Storage, hovered) {
		return
	}

	target := ecs.ReadComponent[PickSelection](frame.Storage, hovered)
	if multi {
		if target == nil {
			return
		}
		target.IsSelected = !target.IsSelected
		if !target.IsSelected {
			s.Deselects.Send(PointerDeselect{Pointer: PointerMouse, Target: hovered})
		}
		return
	}

	s.deselectAll(hovered, true)
	if target != nil {
		target.IsSelected = true
	}
}

func (s *PickResolveSystem) deselectAll(keep ecs.EntityId, hasKeep bool) {
	n := 0
	for id, sel := range s.Selectable.Iter() {
		if hasKeep && id == keep {
			continue
		}
		if sel.PickSelection.IsSelected {
			sel.PickSelection.IsSelected = false
			s.Deselects.Send(PointerDeselect{Pointer: PointerMouse, Target: id})
			n++
		}
	}
	if n > 0 {
		logger(s.log).Debug("scene deselect", zap.Int("count", n))
	}
}

// resolveHits returns the winning entity: the highest order first, then the
// smallest depth.
func resolveHits(hits iter.Seq[PointerHits]) (ecs.EntityId, bool) {
	var (
		best      ecs.EntityId
		found     bool
		bestOrder float32
		bestDepth float32
	)
	for h := range hits {
		if h.Pointer != PointerMouse {
			continue
		}
		for _, pick := range h.Picks {
			if !found || h.Order > bestOrder || (h.Order == bestOrder && pick.Data.Depth < bestDepth) {
				best = pick.Entity
				bestOrder = h.Order
				bestDepth = pick.Data.Depth
				found = true
			}
		}
	}
	return best, found
}

// AutoAddPickablesSystem makes every sprite pickable and selectable.
type AutoAddPickablesSystem struct {
	Sprites ecs.Query[struct{ *Sprite }]
}

func (s *AutoAddPickablesSystem) Execute(frame *ecs.UpdateFrame) {
	for id := range s.Sprites.Iter() {
		if ecs.HasComponentOf[Pickable](frame.Storage, id) {
			continue
		}
		frame.Commands.AddComponents(id, Pickable{}, PickSelection{})
	}
}

// AddNoDeselectSystem tags UI context entities so clicks on the UI never
// clear the selection.
type AddNoDeselectSystem struct {
	Contexts ecs.Query[struct{ *UiContext }]
}

func (s *AddNoDeselectSystem) Execute(frame *ecs.UpdateFrame) {
	for id := range s.Contexts.Iter() {
		if !ecs.HasComponentOf[NoDeselect](frame.Storage, id) {
			frame.Commands.AddComponent(id, NoDeselect{})
		}
	}
}
