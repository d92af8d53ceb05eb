package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/orrery/camera"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/systems"
)

// CameraPanel shows the camera state and exposes the fly-camera tuning.
type CameraPanel struct {
	Camera *camera.Camera
	Input  *systems.InputSystem

	home camera.Camera
}

// NewCameraPanel remembers the camera's current state as the reset target.
func NewCameraPanel(cam *camera.Camera, input *systems.InputSystem) *CameraPanel {
	return &CameraPanel{Camera: cam, Input: input, home: *cam}
}

func (cp *CameraPanel) Render(*ecs.UpdateFrame) {
	if !imgui.BeginV("Camera", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	c := cp.Camera
	imgui.Text(fmt.Sprintf("Position: %.1f %.1f %.1f", c.Position[0], c.Position[1], c.Position[2]))
	imgui.Text(fmt.Sprintf("Front: %.3f %.3f %.3f", c.Front[0], c.Front[1], c.Front[2]))
	imgui.Text(fmt.Sprintf("Up: %.3f %.3f %.3f", c.Up[0], c.Up[1], c.Up[2]))
	imgui.Text(fmt.Sprintf("Aspect: %.3f", c.Aspect))

	fov := c.FOV
	if imgui.SliderFloat("FOV (rad)", &fov, 0.2, 2.5) {
		c.SetFOV(fov)
	}
	imgui.SetNextItemWidth(150)
	imgui.InputFloat("Near", &c.Near)
	imgui.SetNextItemWidth(150)
	imgui.InputFloat("Far", &c.Far)
	if c.Validate() != nil {
		imgui.Text("invalid clip planes, resetting")
		c.Near, c.Far = cp.home.Near, cp.home.Far
	}

	if cp.Input != nil {
		imgui.Separator()
		imgui.SliderFloat("Move Speed", &cp.Input.MoveSpeed, 1, 500)
		imgui.SliderFloat("Turn Speed", &cp.Input.TurnSpeed, 0.1, 5)
	}

	if imgui.Button("Reset") {
		cp.Reset()
	}
}

// Reset restores the position, orientation and clip planes captured by
// NewCameraPanel. The aspect ratio is left alone.
func (cp *CameraPanel) Reset() {
	aspect := cp.Camera.Aspect
	*cp.Camera = cp.home
	cp.Camera.Aspect = aspect
}
