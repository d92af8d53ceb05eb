// Package debugui provides immediate-mode debug windows for the orrery using
// Dear ImGui. Panels are queued by the Overlay system and drawn while the
// scheduler flushes deferred commands, inside the host's ImGui frame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/orrery/ecs"
)

// Panel is one debug window.
type Panel interface {
	Render(frame *ecs.UpdateFrame)
}

// PanelFunc adapts a function to Panel.
type PanelFunc func(frame *ecs.UpdateFrame)

func (f PanelFunc) Render(frame *ecs.UpdateFrame) { f(frame) }

// InputCapture tracks whether ImGui is consuming mouse or keyboard input.
// Hosts stop feeding the camera while either flag is set.
type InputCapture struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Overlay is the system that queues every visible panel for the current frame.
type Overlay struct {
	Panels  []Panel
	Hidden  bool
	Capture InputCapture
}

func (o *Overlay) Execute(frame *ecs.UpdateFrame) error {
	if o.Hidden {
		o.Capture = InputCapture{}
		return nil
	}

	io := imgui.CurrentIO()
	o.Capture.WantCaptureMouse = io.WantCaptureMouse()
	o.Capture.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, panel := range o.Panels {
		frame.Commands.Defer(func() { panel.Render(frame) })
	}
	return nil
}

// Toggle shows or hides every panel.
func (o *Overlay) Toggle() {
	o.Hidden = !o.Hidden
}
