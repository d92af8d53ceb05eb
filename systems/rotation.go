package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/orrery/ecs"
)

const twoPi = 2 * math.Pi

var defaultAxis = mgl32.Vec3{0, 1, 0}

// RotationSystem spins every entity that has both a Transform and a Rotation.
// Each Euler angle is kept in [0, 2π).
type RotationSystem struct {
	Bodies ecs.Query `ecs:"transform,rotation"`

	// Workers > 1 splits the bodies across goroutines. Results do not
	// depend on the split.
	Workers int
}

func (s *RotationSystem) Execute(frame *ecs.UpdateFrame) error {
	bodies := s.Bodies.Values()
	dt := float32(frame.DeltaTime)

	workers := s.Workers
	if workers <= 1 || len(bodies) < workers {
		for _, b := range bodies {
			Advance(b.Transform, b.Rotation, dt)
		}
		return nil
	}

	var g errgroup.Group
	chunk := (len(bodies) + workers - 1) / workers
	for start := 0; start < len(bodies); start += chunk {
		part := bodies[start:min(start+chunk, len(bodies))]
		g.Go(func() error {
			for _, b := range part {
				Advance(b.Transform, b.Rotation, dt)
			}
			return nil
		})
	}
	return g.Wait()
}

// Advance applies dt seconds of rotation to t.
func Advance(t *ecs.Transform, r *ecs.Rotation, dt float32) {
	axis := r.Axis
	if axis.Len() == 0 {
		axis = defaultAxis
	}
	delta := axis.Mul(r.Speed * dt)
	for i := range t.Rotation {
		t.Rotation[i] = WrapAngle(t.Rotation[i] + delta[i])
	}
}

// WrapAngle maps an angle in radians into [0, 2π).
func WrapAngle(a float32) float32 {
	w := math.Mod(float64(a), twoPi)
	if w < 0 {
		w += twoPi
	}
	r := float32(w)
	if r >= float32(twoPi) {
		return 0
	}
	return r
}
