// Package dockui draws the editor panels with Dear ImGui docking: the game
// view, the entity hierarchy, the resource and asset browsers and the
// inspector.
package dockui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/ed2d/editor"
	"go.uber.org/zap"
)

// Option configures a UI.
type Option func(*UI)

// WithLogger sets the logger for layout problems.
func WithLogger(log *zap.Logger) Option {
	return func(u *UI) { u.log = log }
}

// WithRegistry replaces the default widget registry.
func WithRegistry(r *Registry) Option {
	return func(u *UI) { u.registry = r }
}

// WithEntitiesPerPage sets how many hierarchy rows are shown per page.
func WithEntitiesPerPage(n int) Option {
	return func(u *UI) {
		if n > 0 {
			u.hierarchy.perPage = n
		}
	}
}

// UI implements editor.UiRenderer.
type UI struct {
	registry    *Registry
	hierarchy   *hierarchy
	inspector   *inspector
	history     *frameHistory
	layoutBuilt bool
	log         *zap.Logger
}

// New returns a UI with the default widget registry.
func New(opts ...Option) *UI {
	u := &UI{
		registry:  NewRegistry(),
		hierarchy: newHierarchy(100),
		history:   newFrameHistory(120),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.inspector = &inspector{registry: u.registry}
	return u
}

// Registry returns the widget registry used by the inspector.
func (u *UI) Registry() *Registry {
	return u.registry
}

// Configure turns on docking and applies the UI scale. Call it once after
// the imgui context exists.
func Configure(settings editor.Settings) {
	io := imgui.CurrentIO()
	io.SetConfigFlags(io.ConfigFlags() | imgui.ConfigFlagsDockingEnable)
	if settings.UiScale > 0 {
		io.SetFontGlobalScale(settings.UiScale)
	}
}

// ResetLayout rebuilds the dock layout from UiState.Layout on the next frame.
func (u *UI) ResetLayout() {
	u.layoutBuilt = false
}

func (u *UI) Render(frame *editor.UiFrame) {
	if frame.Frame != nil {
		u.history.Push(frame.Frame.DeltaTime)
	}

	var input *editor.Input
	frame.Storage.ReadSingleton(&input)

	dockspace := imgui.DockSpaceOverViewportV(0, imgui.MainViewport(), imgui.DockNodeFlagsPassthruCentralNode, nil)
	if !u.layoutBuilt {
		u.buildLayout(dockspace, frame.State.Layout)
	}

	u.gameView(frame.State)

	if imgui.Begin(editor.TabHierarchy.Title()) {
		u.hierarchy.Render(frame, input)
		if imgui.TreeNodeStr("Stats") {
			renderStats(frame.Storage, u.history)
			imgui.TreePop()
		}
	}
	imgui.End()

	if imgui.Begin(editor.TabResources.Title()) {
		renderResources(frame)
	}
	imgui.End()

	if imgui.Begin(editor.TabAssets.Title()) {
		renderAssets(frame)
	}
	imgui.End()

	if imgui.Begin(editor.TabInspector.Title()) {
		u.inspector.Render(frame)
	}
	imgui.End()

	frame.State.WantsPointerInput = imgui.CurrentIO().WantCaptureMouse()
}

func (u *UI) buildLayout(dockspace imgui.ID, layout editor.DockLayout) {
	plan, err := PlanLayout(layout)
	if err != nil {
		u.log.Error("dock layout rejected, using the default", zap.Error(err))
		plan, _ = PlanLayout(editor.DefaultDockLayout())
	}
	buildDock(dockspace, plan)
	u.layoutBuilt = true
	u.log.Debug("dock layout built", zap.Int("splits", len(plan.Steps)))
}

// gameView reports the free area of the game view tab. A hidden tab keeps
// the last rect so the camera viewport does not collapse.
func (u *UI) gameView(state *editor.UiState) {
	state.ViewportHovered = false

	const flags = imgui.WindowFlagsNoBackground | imgui.WindowFlagsNoScrollbar | imgui.WindowFlagsNoScrollWithMouse
	if imgui.BeginV(editor.TabGameView.Title(), nil, flags) {
		pos := imgui.CursorScreenPos()
		size := imgui.ContentRegionAvail()
		rect := editor.RectFromPosSize(mgl32.Vec2{pos.X, pos.Y}, mgl32.Vec2{size.X, size.Y})
		state.ViewportRect = rect

		mouse := imgui.MousePos()
		state.ViewportHovered = imgui.IsWindowHovered() && rect.Contains(mgl32.Vec2{mouse.X, mouse.Y})
	}
	imgui.End()
}
