package dockui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ed2d/assets"
	"github.com/plus3/ed2d/ecs"
	"github.com/plus3/ed2d/editor"
)

type entityRow struct {
	ID    ecs.EntityId
	Label string
	Types []string
}

// hierarchy lists every entity and turns clicks into selection actions.
type hierarchy struct {
	rows        []entityRow
	filterText  string
	perPage     int
	currentPage int
}

func newHierarchy(perPage int) *hierarchy {
	return &hierarchy{perPage: perPage}
}

// collectRows lists the live entities of storage ordered by id.
func collectRows(storage *ecs.Storage, rows []entityRow) []entityRow {
	rows = rows[:0]
	for _, archetype := range storage.GetArchetypes() {
		types := make([]string, len(archetype.Types()))
		for i, t := range archetype.Types() {
			types[i] = assets.ShortTypeName(t)
		}

		for id := range archetype.Iter() {
			rows = append(rows, entityRow{ID: id, Label: entityLabel(storage, id), Types: types})
		}
	}
	slices.SortFunc(rows, func(a, b entityRow) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return rows
}

func entityLabel(storage *ecs.Storage, id ecs.EntityId) string {
	if name := ecs.ReadComponent[editor.Name](storage, id); name != nil && *name != "" {
		return fmt.Sprintf("%s (%d)", string(*name), id.Index())
	}
	return "Entity " + id.String()
}

// filterRows keeps rows whose label or component names contain text,
// ignoring case.
func filterRows(rows []entityRow, text string) []entityRow {
	if text == "" {
		return rows
	}
	needle := strings.ToLower(text)
	out := make([]entityRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Label), needle) ||
			strings.Contains(strings.ToLower(strings.Join(row.Types, " ")), needle) {
			out = append(out, row)
		}
	}
	return out
}

// selectMode adds to the selection while one of the multi-select keys is
// held, the same keys the scene uses. Range selection is not supported.
func selectMode(input *editor.Input, multiSelect []editor.Key) editor.SelectionMode {
	if input != nil && input.Keys.AnyPressed(multiSelect...) {
		return editor.SelectAdd
	}
	return editor.SelectReplace
}

// multiSelectKeys reads the configured keys from the Settings singleton.
func multiSelectKeys(storage *ecs.Storage) []editor.Key {
	var settings *editor.Settings
	if storage.ReadSingleton(&settings) {
		return settings.MultiSelectKeys
	}
	return editor.DefaultSettings().MultiSelectKeys
}

func (h *hierarchy) Render(frame *editor.UiFrame, input *editor.Input) {
	h.rows = collectRows(frame.Storage, h.rows)

	imgui.InputTextWithHint("##search", "Search...", &h.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear") {
		h.filterText = ""
		h.currentPage = 0
	}

	rows := filterRows(h.rows, h.filterText)
	totalPages := max(1, (len(rows)+h.perPage-1)/h.perPage)
	h.currentPage = min(h.currentPage, totalPages-1)

	start := h.currentPage * h.perPage
	end := min(start+h.perPage, len(rows))
	multiSelect := multiSelectKeys(frame.Storage)
	for _, row := range rows[start:end] {
		selected := frame.State.Selected.Contains(row.ID)
		label := fmt.Sprintf("%s##%d", row.Label, row.ID)
		if imgui.SelectableBoolV(label, selected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
			frame.Select(selectMode(input, multiSelect), row.ID)
		}
		if imgui.IsItemHovered() {
			imgui.SetTooltip(strings.Join(row.Types, ", "))
		}
	}

	imgui.Separator()
	if totalPages > 1 {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", h.currentPage+1, totalPages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && h.currentPage > 0 {
			h.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && h.currentPage < totalPages-1 {
			h.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
	}
}
