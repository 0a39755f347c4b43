// Package ebiten runs the editor on the Ebiten game engine: it polls input,
// reports the window size, draws sprites and gizmos through the editor
// camera and hosts the Dear ImGui backend.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the imgui context and the ebiten window. When
// iniFile is empty the dock layout is not persisted.
func NewImguiBackend(title string, width, height int, iniFile string) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename(iniFile)
	return &ImguiBackend{EbitenBackend: backend}
}
