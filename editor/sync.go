package editor

import (
	"iter"

	"github.com/plus3/ed2d/ecs"
	"go.uber.org/zap"
)

// SelectClickedSystem applies primary clicks in the scene to the selection.
// Clicks on NoDeselect entities are ignored. This path does not send
// SelectionChanged since the picking side already updated its flags.
type SelectClickedSystem struct {
	Clicks   ecs.EventReader[PointerClick]
	UiState  ecs.Singleton[UiState]
	Input    ecs.Singleton[Input]
	Settings ecs.Singleton[Settings]

	log *zap.Logger
}

func (s *SelectClickedSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	input := s.Input.Get()
	settings := s.Settings.Get()
	if ui == nil || input == nil || settings == nil {
		s.Clicks.Clear()
		return
	}

	for click := range s.Clicks.Read() {
		if click.Button != MousePrimary {
			continue
		}
		if ecs.HasComponentOf[NoDeselect](frame.Storage, click.Target) {
			continue
		}

		mode := SelectReplace
		if input.Keys.AnyPressed(settings.MultiSelectKeys...) {
			mode = SelectAdd
		}
		ui.Selected.Select(mode, click.Target)
		ui.Inspector = InspectorSelection{Kind: InspectEntities}

		logger(s.log).Debug("scene selection",
			zap.Stringer("mode", mode),
			zap.Uint64("entity", uint64(click.Target)),
			zap.Int("selected", ui.Selected.Len()))
	}
}

// HandleDeselectSystem removes entities the picking side deselected. It
// does not send SelectionChanged. Despawned entities were already pruned.
type HandleDeselectSystem struct {
	Deselects ecs.EventReader[PointerDeselect]
	UiState   ecs.Singleton[UiState]
}

func (s *HandleDeselectSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	if ui == nil {
		s.Deselects.Clear()
		return
	}

	for ev := range s.Deselects.Read() {
		if ev.Despawned {
			continue
		}
		ui.Selected.Remove(ev.Target)
	}
}

// UpdatePickSelectionsSystem pushes selection changes made in the UI into
// the PickSelection flags. Replace rewrites every flag; Add only touches the
// toggled entity.
type UpdatePickSelectionsSystem struct {
	Changed    ecs.EventReader[SelectionChanged]
	UiState    ecs.Singleton[UiState]
	Selectable ecs.Query[struct{ *PickSelection }]
}

func (s *UpdatePickSelectionsSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	if ui == nil {
		s.Changed.Clear()
		return
	}

	for ev := range s.Changed.Read() {
		ApplySelectionAction(frame.Storage, ui.Selected, ev.Action, s.Selectable.Iter())
	}
}

// ApplySelectionAction updates PickSelection flags for one action.
// selectable must yield every entity carrying a PickSelection.
func ApplySelectionAction(storage *ecs.Storage, selected *SelectedEntities, action SelectionAction, selectable iter.Seq2[ecs.EntityId, struct{ *PickSelection }]) {
	switch action.Mode {
	case SelectReplace:
		for id, sel := range selectable {
			want := id == action.Entity
			if sel.PickSelection.IsSelected != want {
				sel.PickSelection.IsSelected = want
			}
		}
	case SelectAdd:
		if sel := ecs.ReadComponent[PickSelection](storage, action.Entity); sel != nil {
			sel.IsSelected = selected.Contains(action.Entity)
		}
	case SelectExtend:
		panic("editor: range selection is not implemented")
	}
}
