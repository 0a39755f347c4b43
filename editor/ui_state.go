package editor

import (
	"reflect"

	"github.com/plus3/ed2d/assets"
	"github.com/plus3/ed2d/ecs"
	"go.uber.org/zap"
)

// InspectorKind says what the inspector panel shows.
type InspectorKind int

const (
	InspectEntities InspectorKind = iota
	InspectResource
	InspectAsset
)

// InspectorSelection is what the inspector panel currently shows: the
// selected entities, a singleton resource, or a single asset.
type InspectorSelection struct {
	Kind InspectorKind
	Type reflect.Type
	Name string

	// Asset is set when Kind is InspectAsset.
	Asset assets.AssetId
}

// Tab identifies a dock tab.
type Tab int

const (
	TabGameView Tab = iota
	TabHierarchy
	TabResources
	TabAssets
	TabInspector
)

func (t Tab) Title() string {
	switch t {
	case TabGameView:
		return "Game View"
	case TabHierarchy:
		return "Hierarchy"
	case TabResources:
		return "Resources"
	case TabAssets:
		return "Assets"
	case TabInspector:
		return "Inspector"
	default:
		return "Unknown"
	}
}

// Split divides a dock node. Ratio is the share kept by the node being
// split, so SplitRight(0.75) leaves 75% on the left.
type Split struct {
	Target Tab
	Dir    SplitDir
	Ratio  float32
	Tabs   []Tab
}

type SplitDir int

const (
	SplitRight SplitDir = iota
	SplitBelow
)

// DockLayout describes the initial arrangement of the editor tabs.
type DockLayout struct {
	Root   []Tab
	Splits []Split
}

// DefaultDockLayout puts the game view on the left, the inspector on the
// far right and the hierarchy between them, with resources and assets
// tabbed below the hierarchy.
func DefaultDockLayout() DockLayout {
	return DockLayout{
		Root: []Tab{TabGameView},
		Splits: []Split{
			{Target: TabGameView, Dir: SplitRight, Ratio: 0.75, Tabs: []Tab{TabInspector}},
			{Target: TabGameView, Dir: SplitRight, Ratio: 0.75, Tabs: []Tab{TabHierarchy}},
			{Target: TabHierarchy, Dir: SplitBelow, Ratio: 0.35, Tabs: []Tab{TabResources, TabAssets}},
		},
	}
}

// UiState is the editor UI state, stored as a singleton.
type UiState struct {
	Active bool

	// ViewportRect is the game view region in UI points, as reported by the
	// UI renderer. The zero rect means no game view was drawn.
	ViewportRect    Rect
	ViewportHovered bool

	// WantsPointerInput is set by the UI renderer when the UI wants the
	// pointer this frame.
	WantsPointerInput bool

	Selected  *SelectedEntities
	Inspector InspectorSelection
	Layout    DockLayout
}

// NewUiState returns the initial UI state for storage.
func NewUiState(storage *ecs.Storage, active bool) UiState {
	return UiState{
		Active:    active,
		Selected:  NewSelectedEntities(storage),
		Inspector: InspectorSelection{Kind: InspectEntities},
		Layout:    DefaultDockLayout(),
	}
}

// IsUiActive is a run condition that holds while the editor UI is shown.
func IsUiActive(storage *ecs.Storage) bool {
	var ui *UiState
	return storage.ReadSingleton(&ui) && ui.Active
}

// SelectionChanged is sent when the UI changes the selection.
type SelectionChanged struct {
	Action SelectionAction
}

// UiFrame is handed to the UiRenderer once per frame.
type UiFrame struct {
	Storage *ecs.Storage
	State   *UiState
	Assets  *assets.Registry
	Frame   *ecs.UpdateFrame

	changed *ecs.EventWriter[SelectionChanged]
	log     *zap.Logger
}

// Select changes the selection on behalf of the UI and notifies the
// engine side.
func (f *UiFrame) Select(mode SelectionMode, entity ecs.EntityId) {
	f.State.Selected.Select(mode, entity)
	f.State.Inspector = InspectorSelection{Kind: InspectEntities}
	action, _ := f.State.Selected.LastAction()
	f.changed.Send(SelectionChanged{Action: action})
	logger(f.log).Debug("ui selection",
		zap.Stringer("mode", mode),
		zap.Uint64("entity", uint64(entity)),
		zap.Int("selected", f.State.Selected.Len()))
}

// Inspect points the inspector at a resource or asset.
func (f *UiFrame) Inspect(selection InspectorSelection) {
	f.State.Inspector = selection
}

// UiRenderer draws the editor UI. It reports the game view rect, whether
// that rect is hovered and whether the UI wants the pointer through
// frame.State.
type UiRenderer interface {
	Render(frame *UiFrame)
}

// ShowUiSystem runs the UiRenderer while the UI is active.
type ShowUiSystem struct {
	UiState ecs.Singleton[UiState]
	Changed ecs.EventWriter[SelectionChanged]

	Renderer UiRenderer
	Assets   *assets.Registry
	log      *zap.Logger
}

func (s *ShowUiSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	if ui == nil || s.Renderer == nil {
		return
	}

	s.Renderer.Render(&UiFrame{
		Storage: frame.Storage,
		State:   ui,
		Assets:  s.Assets,
		Frame:   frame,
		changed: &s.Changed,
		log:     s.log,
	})
}

// ToggleActiveSystem shows or hides the editor on the toggle key.
type ToggleActiveSystem struct {
	UiState  ecs.Singleton[UiState]
	Input    ecs.Singleton[Input]
	Settings ecs.Singleton[Settings]

	log *zap.Logger
}

func (s *ToggleActiveSystem) Execute(frame *ecs.UpdateFrame) {
	ui := s.UiState.Get()
	input := s.Input.Get()
	settings := s.Settings.Get()
	if ui == nil || input == nil || settings == nil {
		return
	}

	if input.Keys.JustPressed(settings.ToggleKey) {
		ui.Active = !ui.Active
		if !ui.Active {
			ui.ViewportHovered = false
			ui.WantsPointerInput = false
		}
		logger(s.log).Info("editor toggled", zap.Bool("active", ui.Active))
	}
}
