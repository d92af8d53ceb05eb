package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/orrery/ecs"
)

// QueryDebugger counts the entities matching a set of component kinds.
type QueryDebugger struct {
	selected [ecs.KindCount]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{}
}

// Mask returns the kinds currently ticked.
func (qd *QueryDebugger) Mask() ecs.KindMask {
	var kinds []ecs.ComponentKind
	for k := ecs.ComponentKind(0); k < ecs.KindCount; k++ {
		if qd.selected[k] {
			kinds = append(kinds, k)
		}
	}
	return ecs.MaskOf(kinds...)
}

func (qd *QueryDebugger) Toggle(k ecs.ComponentKind, on bool) {
	qd.selected[k] = on
}

// Match returns the component combinations that satisfy mask and the number
// of entities having them.
func Match(stats ecs.StorageStats, mask ecs.KindMask) (combinations []ecs.MaskStats, entities int) {
	for _, m := range stats.MaskBreakdown {
		if m.Mask.Contains(mask) {
			combinations = append(combinations, m)
			entities += m.EntityCount
		}
	}
	return combinations, entities
}

func (qd *QueryDebugger) Render(frame *ecs.UpdateFrame) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	imgui.Text("Select Component Kinds:")
	imgui.Separator()
	if imgui.Button("Clear All") {
		qd.selected = [ecs.KindCount]bool{}
	}
	for k := ecs.ComponentKind(0); k < ecs.KindCount; k++ {
		imgui.Checkbox(k.String(), &qd.selected[k])
	}
	imgui.Separator()

	mask := qd.Mask()
	if mask.Len() == 0 {
		imgui.Text("No component kinds selected")
		return
	}

	combinations, entities := Match(frame.Storage.CollectStats(), mask)
	imgui.Text(fmt.Sprintf("Matching Combinations: %d", len(combinations)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", entities))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("QueryTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Entity Count")
		imgui.TableHeadersRow()
		for _, m := range combinations {
			imgui.TableNextRow()
			imgui.TableSetColumnIndex(0)
			imgui.Text(m.Mask.String())
			imgui.TableSetColumnIndex(1)
			imgui.Text(fmt.Sprintf("%d", m.EntityCount))
		}
		imgui.EndTable()
	}
}
