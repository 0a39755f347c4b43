package dockui

import (
	"errors"
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ed2d/editor"
)

// ErrBadLayout is returned for layouts that split a tab that was never placed
// or place a tab twice.
var ErrBadLayout = errors.New("invalid dock layout")

// LayoutStep splits dock node Node. The new node, numbered after every node
// created before it, sits on the Dir side and takes Ratio of the space.
type LayoutStep struct {
	Node  int
	Dir   editor.SplitDir
	Ratio float32
}

// LayoutPlan is a DockLayout resolved into dock builder calls. Node 0 is the
// dock space itself.
type LayoutPlan struct {
	Steps []LayoutStep
	Nodes map[editor.Tab]int
	Order []editor.Tab
}

// PlanLayout resolves the tab-relative splits of layout into node-relative
// steps.
func PlanLayout(layout editor.DockLayout) (LayoutPlan, error) {
	plan := LayoutPlan{Nodes: make(map[editor.Tab]int)}

	place := func(tab editor.Tab, node int) error {
		if _, ok := plan.Nodes[tab]; ok {
			return fmt.Errorf("tab %q placed twice: %w", tab.Title(), ErrBadLayout)
		}
		plan.Nodes[tab] = node
		plan.Order = append(plan.Order, tab)
		return nil
	}

	for _, tab := range layout.Root {
		if err := place(tab, 0); err != nil {
			return LayoutPlan{}, err
		}
	}

	for _, split := range layout.Splits {
		node, ok := plan.Nodes[split.Target]
		if !ok {
			return LayoutPlan{}, fmt.Errorf("split of unplaced tab %q: %w", split.Target.Title(), ErrBadLayout)
		}
		if split.Ratio <= 0 || split.Ratio >= 1 {
			return LayoutPlan{}, fmt.Errorf("split ratio %v: %w", split.Ratio, ErrBadLayout)
		}

		plan.Steps = append(plan.Steps, LayoutStep{
			Node:  node,
			Dir:   split.Dir,
			Ratio: 1 - split.Ratio,
		})
		created := len(plan.Steps)
		for _, tab := range split.Tabs {
			if err := place(tab, created); err != nil {
				return LayoutPlan{}, err
			}
		}
	}

	return plan, nil
}

func splitDir(d editor.SplitDir) imgui.Dir {
	if d == editor.SplitBelow {
		return imgui.DirDown
	}
	return imgui.DirRight
}

// buildDock replaces the dock space contents with the planned layout.
func buildDock(dockspace imgui.ID, plan LayoutPlan) {
	imgui.InternalDockBuilderRemoveNode(dockspace)
	imgui.InternalDockBuilderAddNodeV(dockspace, imgui.DockNodeFlags(imgui.DockNodeFlagsDockSpace))
	imgui.InternalDockBuilderSetNodeSize(dockspace, imgui.MainViewport().Size())

	ids := []imgui.ID{dockspace}
	for _, step := range plan.Steps {
		var atDir, opposite imgui.ID
		imgui.InternalDockBuilderSplitNode(ids[step.Node], splitDir(step.Dir), step.Ratio, &atDir, &opposite)
		ids[step.Node] = opposite
		ids = append(ids, atDir)
	}

	for _, tab := range plan.Order {
		imgui.InternalDockBuilderDockWindow(tab.Title(), ids[plan.Nodes[tab]])
	}
	imgui.InternalDockBuilderFinish(dockspace)
}
