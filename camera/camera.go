// Package camera holds the view parameters of the scene and derives the view
// and projection matrices from them.
package camera

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
)

// ErrInvalidCamera is returned by Validate.
var ErrInvalidCamera = errors.New("invalid camera")

const (
	DefaultFOV  = float32(math.Pi / 3)
	DefaultNear = float32(0.1)
	DefaultFar  = float32(100)
)

var (
	DefaultPosition = mgl32.Vec3{0, 0, 12}
	DefaultFront    = mgl32.Vec3{0, 0, -1}
	DefaultUp       = mgl32.Vec3{0, 1, 0}
)

// Camera is a perspective camera. FOV is the vertical field of view in
// radians. Front and Up are expected to be unit length and orthogonal; the
// input system keeps them that way.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	FOV      float32
	Aspect   float32
	Near     float32
	Far      float32
}

// New returns a camera looking down -Z from (0, 0, 12).
func New() *Camera {
	return &Camera{
		Position: DefaultPosition,
		Front:    DefaultFront,
		Up:       DefaultUp,
		FOV:      DefaultFOV,
		Aspect:   1,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

func (c *Camera) SetPosition(p mgl32.Vec3) { c.Position = p }
func (c *Camera) SetFront(f mgl32.Vec3)    { c.Front = f }
func (c *Camera) SetUp(u mgl32.Vec3)       { c.Up = u }
func (c *Camera) SetFOV(fov float32)       { c.FOV = fov }
func (c *Camera) SetAspect(aspect float32) { c.Aspect = aspect }
func (c *Camera) SetNear(near float32)     { c.Near = near }
func (c *Camera) SetFar(far float32)       { c.Far = far }

// SetViewport sets the aspect ratio from a framebuffer size. Degenerate sizes
// are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-view transform. It is recomputed on every
// call.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// ProjectionMatrix returns the perspective projection. The near plane maps to
// NDC depth -1 and the far plane to +1.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// Right returns the unit vector to the right of the view direction.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front.Cross(c.Up).Normalize()
}

// Orthonormalize normalizes Front and re-derives Up so the pair is
// orthogonal. It is a no-op when Front and Up are degenerate.
func (c *Camera) Orthonormalize() {
	if c.Front.Len() == 0 {
		return
	}
	front := c.Front.Normalize()
	right := front.Cross(c.Up)
	if right.Len() < 1e-6 {
		return
	}
	right = right.Normalize()
	c.Front = front
	c.Up = right.Cross(front).Normalize()
}

// Validate checks that the camera can produce finite matrices.
func (c *Camera) Validate() error {
	switch {
	case c.Near <= 0:
		return eris.Wrapf(ErrInvalidCamera, "near plane %v must be positive", c.Near)
	case c.Far <= c.Near:
		return eris.Wrapf(ErrInvalidCamera, "far plane %v must be beyond near plane %v", c.Far, c.Near)
	case c.FOV <= 0 || c.FOV >= math.Pi:
		return eris.Wrapf(ErrInvalidCamera, "field of view %v must be in (0, pi)", c.FOV)
	case c.Aspect <= 0:
		return eris.Wrapf(ErrInvalidCamera, "aspect ratio %v must be positive", c.Aspect)
	case c.Front.Len() == 0:
		return eris.Wrap(ErrInvalidCamera, "front vector is zero")
	case c.Up.Len() == 0:
		return eris.Wrap(ErrInvalidCamera, "up vector is zero")
	case c.Front.Cross(c.Up).Len() < 1e-6:
		return eris.Wrap(ErrInvalidCamera, "front and up are parallel")
	}
	return nil
}
