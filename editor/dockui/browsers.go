package dockui

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ed2d/assets"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
)

type resourceEntry struct {
	Type reflect.Type
	Name string
}

// resourceEntries lists the storage singletons sorted by short type name.
func resourceEntries(storage *ecs.Storage) []resourceEntry {
	types := storage.SingletonTypes()
	out := make([]resourceEntry, 0, len(types))
	for _, t := range types {
		out = append(out, resourceEntry{Type: t, Name: assets.ShortTypeName(t)})
	}
	slices.SortStableFunc(out, func(a, b resourceEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func renderResources(frame *editor.UiFrame) {
	current := frame.State.Inspector
	for _, entry := range resourceEntries(frame.Storage) {
		selected := current.Kind == editor.InspectResource && current.Type == entry.Type
		if imgui.SelectableBoolV(entry.Name, selected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
			frame.Inspect(editor.InspectorSelection{
				Kind: editor.InspectResource,
				Type: entry.Type,
				Name: entry.Name,
			})
		}
	}
}

func renderAssets(frame *editor.UiFrame) {
	if frame.Assets == nil {
		imgui.TextDisabled("No asset registry")
		return
	}

	current := frame.State.Inspector
	for _, info := range frame.Assets.Types() {
		if !imgui.TreeNodeStr(fmt.Sprintf("%s (%d)##%s", info.Name, len(info.Ids), info.Type)) {
			continue
		}
		for _, id := range info.Ids {
			selected := current.Kind == editor.InspectAsset && current.Asset == id
			if imgui.SelectableBoolV(fmt.Sprintf("%s##%s", id.Short(), id), selected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
				frame.Inspect(editor.InspectorSelection{
					Kind:  editor.InspectAsset,
					Type:  info.Type,
					Name:  info.Name,
					Asset: id,
				})
			}
		}
		imgui.TreePop()
	}
}
