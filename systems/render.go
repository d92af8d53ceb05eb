// Package systems holds the per-frame passes of the renderer: camera input,
// body rotation and drawing.
package systems

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/orrery/camera"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/resource"
)

// RenderStats describes the last rendered frame.
type RenderStats struct {
	DrawCalls           int
	Triangles           int
	VertexArraysCreated int
	VertexArraysDeleted int
}

// RenderSystem draws every entity with a Render component in creation order.
// Vertex arrays are created lazily on first draw and bound to the component
// for the rest of the entity's life.
type RenderSystem struct {
	Camera     *camera.Camera
	Resources  *resource.Registry
	ClearColor color.Color
	Logger     zerolog.Logger

	last  RenderStats
	total RenderStats
}

// NewRenderSystem returns a render system clearing to black.
func NewRenderSystem(cam *camera.Camera, resources *resource.Registry, logger zerolog.Logger) *RenderSystem {
	return &RenderSystem{
		Camera:     cam,
		Resources:  resources,
		ClearColor: color.Black,
		Logger:     logger,
	}
}

// LastFrame returns the stats of the most recent frame.
func (s *RenderSystem) LastFrame() RenderStats {
	return s.last
}

// Totals returns stats accumulated over every frame.
func (s *RenderSystem) Totals() RenderStats {
	return s.total
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) error {
	return s.Render(frame.Storage)
}

type frameLight struct {
	color     mgl32.Vec3
	position  mgl32.Vec3
	intensity float32
}

func (s *RenderSystem) resolveLight(storage *ecs.Storage) frameLight {
	l := frameLight{color: mgl32.Vec3{1, 1, 1}, intensity: 1}
	for _, set := range storage.Iter(ecs.KindLight) {
		l.color = set.Light.Color.Mul(set.Light.Intensity)
		l.intensity = set.Light.Intensity
		if set.Transform != nil {
			l.position = set.Transform.Position
		}
		break
	}
	return l
}

// Render draws one frame after deleting the vertex arrays of Render
// components that left storage since the previous frame. A resource that
// cannot be resolved aborts the frame with an error wrapping
// resource.ErrNotFound.
func (s *RenderSystem) Render(storage *ecs.Storage) error {
	device := s.Resources.Device()
	s.last = RenderStats{}

	background := s.ClearColor
	if background == nil {
		background = color.Black
	}
	device.BeginFrame(background)

	for _, va := range storage.DrainReleased() {
		device.DeleteVertexArray(va)
		s.last.VertexArraysDeleted++
		s.Logger.Debug().Uint32("vao", uint32(va)).Msg("vertex array deleted")
	}

	view := s.Camera.ViewMatrix()
	projection := s.Camera.ProjectionMatrix()
	light := s.resolveLight(storage)

	for id, set := range storage.Iter(ecs.KindRender) {
		if err := s.draw(device, id, set, view, projection, light); err != nil {
			s.accumulate()
			return eris.Wrapf(err, "render entity %s", id)
		}
	}

	s.accumulate()
	return nil
}

func (s *RenderSystem) accumulate() {
	s.total.DrawCalls += s.last.DrawCalls
	s.total.Triangles += s.last.Triangles
	s.total.VertexArraysCreated += s.last.VertexArraysCreated
	s.total.VertexArraysDeleted += s.last.VertexArraysDeleted
}

func (s *RenderSystem) draw(device gpu.Device, id ecs.EntityId, set ecs.ComponentSet, view, projection mgl32.Mat4, light frameLight) error {
	r := set.Render

	shader, err := s.Resources.Shader(r.Shader)
	if err != nil {
		return err
	}
	device.UseProgram(shader.Program)

	m, err := s.Resources.Mesh(r.Mesh)
	if err != nil {
		return err
	}
	tex, err := s.Resources.Texture(r.Texture)
	if err != nil {
		return err
	}

	va, ok := r.VertexArray.Get()
	if !ok {
		va, err = device.CreateVertexArray(m)
		if err != nil {
			return eris.Wrap(err, "create vertex array")
		}
		if err := r.VertexArray.Bind(va); err != nil {
			return err
		}
		s.last.VertexArraysCreated++
		s.Logger.Debug().Stringer("entity", id).Uint32("vao", uint32(va)).Msg("vertex array created")
	}

	model := ModelMatrix(set.Transform)

	setUniforms(device, &shader.Locations, model, view, projection, light)

	device.BindTexture(0, tex.Texture)
	device.BindVertexArray(va)
	device.DrawElements(m.IndexCount())

	s.last.DrawCalls++
	s.last.Triangles += int(m.IndexCount()) / 3
	return nil
}

// setUniforms uploads the per-draw uniforms using locations resolved when the
// shader was registered.
func setUniforms(device gpu.Device, locs *[gpu.UniformCount]gpu.UniformLocation, model, view, projection mgl32.Mat4, light frameLight) {
	device.SetUniformMat4(locs[gpu.UniformModel], model)
	device.SetUniformMat4(locs[gpu.UniformView], view)
	device.SetUniformMat4(locs[gpu.UniformProjection], projection)
	device.SetUniformInt(locs[gpu.UniformTexture], 0)
	device.SetUniformVec3(locs[gpu.UniformLightColor], light.color)
	device.SetUniformVec3(locs[gpu.UniformLightPosition], light.position)
	device.SetUniformFloat(locs[gpu.UniformLightIntensity], light.intensity)
}

// ModelMatrix composes translation, X, Y and Z rotations and scale, in that
// order, starting from identity. A nil transform yields identity.
func ModelMatrix(t *ecs.Transform) mgl32.Mat4 {
	if t == nil {
		return mgl32.Ident4()
	}
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(mgl32.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z())).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
