package systems_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/camera"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/input"
	"github.com/plus3/orrery/systems"
)

func assertOrthonormal(t *testing.T, c *camera.Camera) {
	t.Helper()
	assert.InDelta(t, 1, c.Front.Len(), 1e-4)
	assert.InDelta(t, 1, c.Up.Len(), 1e-4)
	assert.InDelta(t, 0, c.Front.Dot(c.Up), 1e-4)
}

func TestInputMovesAlongFront(t *testing.T) {
	cam := camera.New()
	state := input.NewState()
	sys := systems.NewInputSystem(cam, state)
	sys.MoveSpeed = 2

	state.SetKey(input.KeyForward, true)
	sys.Apply(state.Sample(), 0.5)
	assert.InDelta(t, 11, cam.Position.Z(), 1e-5)

	state.SetKey(input.KeyForward, false)
	state.SetKey(input.KeyRight, true)
	sys.Apply(state.Sample(), 0.5)
	assert.InDelta(t, 1, cam.Position.X(), 1e-5)

	state.SetKey(input.KeyBoost, true)
	sys.Apply(state.Sample(), 0.5)
	assert.InDelta(t, 1+sys.BoostFactor, cam.Position.X(), 1e-4)
}

func TestInputYawQuarterTurn(t *testing.T) {
	cam := camera.New()
	state := input.NewState()
	sys := systems.NewInputSystem(cam, state)
	sys.TurnSpeed = math.Pi / 2

	state.SetKey(input.KeyYawLeft, true)
	sys.Apply(state.Sample(), 1)

	assert.InDelta(t, -1, cam.Front.X(), 1e-5, "yawing left turns toward -X")
	assert.InDelta(t, 0, cam.Front.Z(), 1e-5)
	assert.InDelta(t, 1, cam.Up.Y(), 1e-5)
	assertOrthonormal(t, cam)
}

func TestInputPitchAndRoll(t *testing.T) {
	cam := camera.New()
	state := input.NewState()
	sys := systems.NewInputSystem(cam, state)
	sys.TurnSpeed = 0.4

	state.SetKey(input.KeyPitchUp, true)
	sys.Apply(state.Sample(), 1)
	assert.Greater(t, cam.Front.Y(), float32(0))
	assertOrthonormal(t, cam)

	state.SetKey(input.KeyPitchUp, false)
	state.SetKey(input.KeyRollRight, true)
	sys.Apply(state.Sample(), 1)
	assert.Greater(t, cam.Up.X(), float32(0), "rolling right tips up toward +X")
	assertOrthonormal(t, cam)
}

func TestInputPointer(t *testing.T) {
	cam := camera.New()
	state := input.NewState()
	sys := systems.NewInputSystem(cam, state)
	sys.PointerSensitivity = 0.01

	state.AddPointerDelta(10, 0)
	sys.Apply(state.Sample(), 0.016)
	assert.Greater(t, cam.Front.X(), float32(0), "moving the pointer right yaws right")

	before := cam.Front
	sys.Apply(state.Sample(), 0.016)
	for i := range before {
		assert.InDelta(t, before[i], cam.Front[i], 1e-6, "pointer delta is consumed by the sample")
	}
}

func TestInputStaysOrthonormal(t *testing.T) {
	cam := camera.New()
	state := input.NewState()
	sys := systems.NewInputSystem(cam, state)

	state.SetKey(input.KeyYawLeft, true)
	state.SetKey(input.KeyPitchUp, true)
	state.SetKey(input.KeyRollLeft, true)
	for i := 0; i < 2000; i++ {
		state.AddPointerDelta(3, -2)
		sys.Apply(state.Sample(), 0.016)
	}
	assertOrthonormal(t, cam)
	require.NoError(t, cam.Validate())
}

func TestInputSystemViaScheduler(t *testing.T) {
	cam := camera.New()
	state := input.NewState()
	scheduler := ecs.NewScheduler(ecs.NewStorage())
	scheduler.Register(systems.NewInputSystem(cam, state))

	state.SetKey(input.KeyUp, true)
	require.NoError(t, scheduler.Once(1))
	assert.Equal(t, mgl32.Vec3{0, systems.DefaultMoveSpeed, 12}, cam.Position)
}
