package editor

import (
	"github.com/plus3/ed2d/ecs"
)

// UiHitOrder ranks UI hits above every scene backend.
const UiHitOrder float32 = 1_000_000

// EditorPickingSystem claims the pointer for the UI. When the UI wants the
// pointer and the pointer is not over the game view, it reports a hit on
// the UI context entity that outranks every scene hit. It must run before
// the scene backends and hit resolution.
type EditorPickingSystem struct {
	UiState  ecs.Singleton[UiState]
	Input    ecs.Singleton[Input]
	Contexts ecs.Query[struct{ *UiContext }]
	Hits     ecs.EventWriter[PointerHits]
}

func (s *EditorPickingSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	input := s.Input.Get()
	if ui == nil || input == nil || input.Cursor == nil {
		return
	}

	if !PointerClaimedByUi(ui) {
		return
	}

	for id := range s.Contexts.Iter() {
		s.Hits.Send(PointerHits{
			Pointer: PointerMouse,
			Picks:   []Hit{{Entity: id, Data: HitData{Camera: id, Depth: 0}}},
			Order:   UiHitOrder,
		})
	}
}

// PointerClaimedByUi reports whether the UI owns the pointer this frame.
func PointerClaimedByUi(ui *UiState) bool {
	return ui.WantsPointerInput && !ui.ViewportHovered
}
