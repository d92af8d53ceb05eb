package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/orrery/ecs"
)

// ComponentInspector edits the components of the entity selected in an
// EntityBrowser. Edits write straight into storage.
type ComponentInspector struct {
	Browser *EntityBrowser
}

func NewComponentInspector(browser *EntityBrowser) *ComponentInspector {
	return &ComponentInspector{Browser: browser}
}

func (ci *ComponentInspector) Render(frame *ecs.UpdateFrame) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	id := ci.Browser.Selected()
	if id == 0 {
		imgui.Text("No entity selected")
		return
	}

	set, err := frame.Storage.Get(id)
	if err != nil {
		imgui.Text(fmt.Sprintf("Entity %s not found", id))
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", id))
	imgui.Text(fmt.Sprintf("Components: %s", set.Mask()))
	imgui.Separator()

	if r := set.Render; r != nil && imgui.TreeNodeStr("Render") {
		imgui.Text(fmt.Sprintf("Mesh: %d", r.Mesh))
		imgui.Text(fmt.Sprintf("Texture: %d", r.Texture))
		imgui.Text(fmt.Sprintf("Shader: %d", r.Shader))
		if va, ok := r.VertexArray.Get(); ok {
			imgui.Text(fmt.Sprintf("Vertex Array: %d", va))
		} else {
			imgui.Text("Vertex Array: unbound")
		}
		imgui.TreePop()
	}

	if t := set.Transform; t != nil && imgui.TreeNodeStr("Transform") {
		imgui.DragFloat3("Position", (*[3]float32)(&t.Position))
		imgui.DragFloat3("Rotation", (*[3]float32)(&t.Rotation))
		imgui.DragFloat3("Scale", (*[3]float32)(&t.Scale))
		imgui.TreePop()
	}

	if r := set.Rotation; r != nil && imgui.TreeNodeStr("Rotation") {
		imgui.DragFloat3("Axis", (*[3]float32)(&r.Axis))
		imgui.SetNextItemWidth(150)
		imgui.InputFloat("Speed (rad/s)", &r.Speed)
		imgui.TreePop()
	}

	if l := set.Light; l != nil && imgui.TreeNodeStr("Light") {
		imgui.ColorEdit3("Color", (*[3]float32)(&l.Color))
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat("Intensity", &l.Intensity) && l.Intensity < 0 {
			l.Intensity = 0
		}
		imgui.TreePop()
	}

	if imgui.Button("Destroy") {
		frame.Commands.Destroy(id)
		ci.Browser.Select(0)
	}
}
