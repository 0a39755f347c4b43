package dockui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ed2d/assets"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
)

// sharedComponentTypes returns the component types every live entity in ids
// has, in the order of the first entity's archetype.
func sharedComponentTypes(storage *ecs.Storage, ids []ecs.EntityId) []reflect.Type {
	var shared []reflect.Type
	first := true
	for _, id := range ids {
		if !storage.Exists(id) {
			continue
		}
		archetype := storage.GetArchetypeById(id.ArchetypeId())
		if first {
			shared = append(shared, archetype.Types()...)
			first = false
			continue
		}
		kept := shared[:0]
		for _, t := range shared {
			if archetype.HasComponent(t) {
				kept = append(kept, t)
			}
		}
		shared = kept
	}
	return shared
}

type inspector struct {
	registry *Registry
}

func (in *inspector) Render(frame *editor.UiFrame) {
	sel := frame.State.Inspector
	switch sel.Kind {
	case editor.InspectResource:
		in.renderResource(frame, sel)
	case editor.InspectAsset:
		in.renderAsset(frame, sel)
	default:
		in.renderEntities(frame)
	}
}

func (in *inspector) renderEntities(frame *editor.UiFrame) {
	ids := frame.State.Selected.AsSlice()
	switch len(ids) {
	case 0:
		imgui.Text("No entity selected")
		return
	case 1:
		in.renderEntity(frame.Storage, ids[0])
		return
	}

	imgui.Text(fmt.Sprintf("%d entities selected", len(ids)))
	imgui.Separator()

	// The first entity's values are shown; edits are copied to the others.
	for _, t := range sharedComponentTypes(frame.Storage, ids) {
		var lead reflect.Value
		for _, id := range ids {
			if c := frame.Storage.GetComponent(id, t); c != nil {
				lead = reflect.ValueOf(c).Elem()
				break
			}
		}
		if !lead.IsValid() {
			continue
		}

		imgui.PushIDStr(t.String())
		if in.registry.Render(assets.ShortTypeName(t), lead) {
			for _, id := range ids {
				if c := frame.Storage.GetComponent(id, t); c != nil {
					reflect.ValueOf(c).Elem().Set(lead)
				}
			}
		}
		imgui.PopID()
	}
}

func (in *inspector) renderEntity(storage *ecs.Storage, id ecs.EntityId) {
	if !storage.Exists(id) {
		imgui.Text(fmt.Sprintf("Entity %s no longer exists", id))
		return
	}

	imgui.Text(entityLabel(storage, id))
	imgui.TextDisabled(fmt.Sprintf("id %d (%s)", uint64(id), id))
	imgui.Separator()

	for _, t := range storage.GetArchetypeById(id.ArchetypeId()).Types() {
		component := storage.GetComponent(id, t)
		if component == nil {
			continue
		}
		imgui.PushIDStr(t.String())
		in.registry.RenderPtr(assets.ShortTypeName(t), component)
		imgui.PopID()
	}
}

func (in *inspector) renderResource(frame *editor.UiFrame, sel editor.InspectorSelection) {
	value := frame.Storage.GetSingleton(sel.Type)
	if value == nil {
		imgui.Text(fmt.Sprintf("Resource %s does not exist", sel.Name))
		return
	}
	imgui.Text(sel.Name)
	imgui.Separator()
	in.registry.RenderPtr(sel.Name, value)
}

func (in *inspector) renderAsset(frame *editor.UiFrame, sel editor.InspectorSelection) {
	if frame.Assets == nil {
		imgui.Text("No asset registry")
		return
	}
	value, err := frame.Assets.Get(sel.Type, sel.Asset)
	if err != nil {
		imgui.Text(err.Error())
		return
	}
	imgui.Text(fmt.Sprintf("%s %s", sel.Name, sel.Asset.Short()))
	imgui.Separator()
	in.registry.RenderPtr(sel.Name, value)
}
