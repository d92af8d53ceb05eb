package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/orrery/camera"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/input"
)

const (
	DefaultMoveSpeed          = float32(8)
	DefaultBoostFactor        = float32(4)
	DefaultTurnSpeed          = float32(1.2)
	DefaultPointerSensitivity = float32(0.003)
)

// InputSystem flies the camera from sampled keyboard and pointer state.
// Orientation changes are applied as quaternion rotations of Front and Up,
// which are re-orthonormalized every frame so drift never accumulates.
type InputSystem struct {
	Camera *camera.Camera
	Input  *input.State

	// MoveSpeed is in world units per second.
	MoveSpeed   float32
	BoostFactor float32
	// TurnSpeed is in radians per second.
	TurnSpeed float32
	// PointerSensitivity is in radians per pixel.
	PointerSensitivity float32
}

// NewInputSystem returns an input system with default speeds.
func NewInputSystem(cam *camera.Camera, state *input.State) *InputSystem {
	return &InputSystem{
		Camera:             cam,
		Input:              state,
		MoveSpeed:          DefaultMoveSpeed,
		BoostFactor:        DefaultBoostFactor,
		TurnSpeed:          DefaultTurnSpeed,
		PointerSensitivity: DefaultPointerSensitivity,
	}
}

func (s *InputSystem) Execute(frame *ecs.UpdateFrame) error {
	s.Apply(s.Input.Sample(), float32(frame.DeltaTime))
	return nil
}

// Apply moves and turns the camera for one snapshot over dt seconds.
func (s *InputSystem) Apply(snap input.Snapshot, dt float32) {
	cam := s.Camera
	front := cam.Front
	up := cam.Up
	right := cam.Right()

	move := front.Mul(snap.Axis(input.KeyForward, input.KeyBackward)).
		Add(right.Mul(snap.Axis(input.KeyRight, input.KeyLeft))).
		Add(up.Mul(snap.Axis(input.KeyUp, input.KeyDown)))
	if move.Len() > 0 {
		speed := s.MoveSpeed * dt
		if snap.Down(input.KeyBoost) {
			speed *= s.BoostFactor
		}
		cam.Position = cam.Position.Add(move.Normalize().Mul(speed))
	}

	turn := s.TurnSpeed * dt
	yaw := turn*snap.Axis(input.KeyYawLeft, input.KeyYawRight) - snap.PointerDX*s.PointerSensitivity
	pitch := turn*snap.Axis(input.KeyPitchUp, input.KeyPitchDown) - snap.PointerDY*s.PointerSensitivity
	roll := turn * snap.Axis(input.KeyRollRight, input.KeyRollLeft)

	if yaw == 0 && pitch == 0 && roll == 0 {
		cam.Orthonormalize()
		return
	}

	q := mgl32.QuatRotate(yaw, up).
		Mul(mgl32.QuatRotate(pitch, right)).
		Mul(mgl32.QuatRotate(roll, front))

	cam.Front = q.Rotate(front)
	cam.Up = q.Rotate(up)
	cam.Orthonormalize()
}
