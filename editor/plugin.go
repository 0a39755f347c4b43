package editor

import (
	"github.com/plus3/ed2d/assets"
	"github.com/plus3/ed2d/ecs"
	"go.uber.org/zap"
)

// Plugin installs the editor into a host storage and scheduler.
type Plugin struct {
	Settings Settings
	Logger   *zap.Logger
	UI       UiRenderer
	Assets   *assets.Registry
}

// DefaultPlugin returns a plugin with default settings, no UI renderer and
// a no-op logger.
func DefaultPlugin() *Plugin {
	return &Plugin{
		Settings: DefaultSettings(),
		Logger:   zap.NewNop(),
	}
}

// Systems gives access to the systems a Plugin added, mostly for hosts
// that order their own systems around them.
type Systems struct {
	ClearGizmos      *ClearGizmosSystem
	AddNoDeselect    *AddNoDeselectSystem
	ToggleActive     *ToggleActiveSystem
	AutoAddPickables *AutoAddPickablesSystem
	EditorPicking    *EditorPickingSystem
	SpriteBackend    *SpriteBackendSystem
	PickResolve      *PickResolveSystem
	SelectClicked    *SelectClickedSystem
	HandleDeselect   *HandleDeselectSystem
	FocusSelected    *FocusSelectedSystem
	ShowUi           *ShowUiSystem
	UpdatePicks      *UpdatePickSelectionsSystem
	TogglePanCam     *TogglePanCamSystem
	PanCam           *PanCamSystem
	CameraViewport   *CameraViewportSystem
	CameraProjection *CameraProjectionSystem
	DrawGrid         *DrawGridSystem
	DrawTransforms   *DrawTransformGizmosSystem

	Camera    ecs.EntityId
	UiContext ecs.EntityId
}

// Install registers the editor component types.
func (p *Plugin) Install(registry *ecs.ComponentRegistry) {
	RegisterComponents(registry)
}

// Build adds the editor singletons, events, entities and systems.
func (p *Plugin) Build(storage *ecs.Storage, scheduler *ecs.Scheduler) *Systems {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ed2d")

	storage.AddSingleton(p.Settings)
	storage.AddSingleton(NewUiState(storage, p.Settings.StartActive))
	storage.AddSingleton(Gizmos{})
	storage.AddSingleton(Hovered{})
	ecs.NewSingleton[Input](storage)
	ecs.NewSingleton(storage, Window{ScaleFactor: 1})

	ecs.AddEvent[PointerHits](storage)
	ecs.AddEvent[PointerClick](storage)
	ecs.AddEvent[PointerDeselect](storage)
	ecs.AddEvent[SelectionChanged](storage)

	sys := &Systems{
		ClearGizmos:      &ClearGizmosSystem{},
		AddNoDeselect:    &AddNoDeselectSystem{},
		ToggleActive:     &ToggleActiveSystem{log: log.Named("ui")},
		AutoAddPickables: &AutoAddPickablesSystem{},
		EditorPicking:    &EditorPickingSystem{},
		SpriteBackend:    &SpriteBackendSystem{},
		PickResolve:      &PickResolveSystem{log: log.Named("picking")},
		SelectClicked:    &SelectClickedSystem{log: log.Named("selection")},
		HandleDeselect:   &HandleDeselectSystem{},
		FocusSelected:    &FocusSelectedSystem{log: log.Named("camera")},
		ShowUi:           &ShowUiSystem{Renderer: p.UI, Assets: p.Assets, log: log.Named("ui")},
		UpdatePicks:      &UpdatePickSelectionsSystem{},
		TogglePanCam:     &TogglePanCamSystem{},
		PanCam:           &PanCamSystem{},
		CameraViewport:   &CameraViewportSystem{log: log.Named("camera")},
		CameraProjection: &CameraProjectionSystem{},
		DrawGrid:         &DrawGridSystem{},
		DrawTransforms:   &DrawTransformGizmosSystem{},
	}

	sys.Camera = storage.Spawn(
		NewEditorCamera(),
		PanCam{
			GrabButtons: append([]MouseButton(nil), p.Settings.GrabButtons...),
			MinScale:    p.Settings.MinScale,
			MaxScale:    p.Settings.MaxScale,
			ZoomStep:    p.Settings.ZoomStep,
		},
	)
	sys.UiContext = storage.Spawn(UiContext{}, NoDeselect{})

	active := ecs.RunIf(IsUiActive)

	scheduler.Add(ecs.First, sys.ClearGizmos)
	scheduler.Add(ecs.First, sys.AddNoDeselect)
	scheduler.Add(ecs.First, sys.ToggleActive)

	if p.Settings.AutoAddPickables {
		scheduler.Add(ecs.PreUpdate, sys.AutoAddPickables)
	}
	scheduler.Add(ecs.PreUpdate, sys.EditorPicking, ecs.Before(sys.SpriteBackend), ecs.Before(sys.PickResolve))
	scheduler.Add(ecs.PreUpdate, sys.SpriteBackend)
	scheduler.Add(ecs.PreUpdate, sys.PickResolve, ecs.After(sys.SpriteBackend))

	scheduler.Add(ecs.Update, sys.SelectClicked, active)
	scheduler.Add(ecs.Update, sys.HandleDeselect, active)
	scheduler.Add(ecs.Update, sys.FocusSelected, active)
	scheduler.AddChain(ecs.Update, []ecs.System{sys.ShowUi, sys.UpdatePicks, sys.TogglePanCam}, active)
	scheduler.Add(ecs.Update, sys.PanCam, ecs.After(sys.TogglePanCam))

	scheduler.Add(ecs.PostUpdate, sys.CameraViewport, ecs.After(sys.ShowUi))
	scheduler.Add(ecs.PostUpdate, sys.CameraProjection, ecs.After(sys.CameraViewport))
	scheduler.Add(ecs.PostUpdate, sys.DrawGrid, ecs.After(sys.CameraProjection))
	scheduler.Add(ecs.PostUpdate, sys.DrawTransforms, ecs.After(sys.DrawGrid))

	log.Info("editor installed",
		zap.Bool("active", p.Settings.StartActive),
		zap.Stringer("toggle_key", p.Settings.ToggleKey),
		zap.Bool("auto_add_pickables", p.Settings.AutoAddPickables))

	return sys
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
