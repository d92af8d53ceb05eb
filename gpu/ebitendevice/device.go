// Package ebitendevice implements gpu.Device on top of ebiten. Ebiten cannot
// run the renderer's GLSL, so draws go through the softraster vertex stage
// and are filled with DrawTriangles in back-to-front order.
package ebitendevice

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/gpu/softraster"
	"github.com/plus3/orrery/mesh"
)

// maxBatchVertices keeps every DrawTriangles call within uint16 indices.
const maxBatchVertices = math.MaxUint16 - 2

type program struct {
	name     string
	shading  gpu.Shading
	uniforms uniformState
}

type uniformState struct {
	model, view, projection mgl32.Mat4
	lightColor              mgl32.Vec3
	lightPosition           mgl32.Vec3
}

type texture struct {
	img    *ebiten.Image
	width  int
	height int
	wrap   gpu.WrapMode
}

// FrameStats describes the last presented frame.
type FrameStats struct {
	DrawCalls int
	Triangles int
	Batches   int
}

// Device is an ebiten gpu.Device. Draw calls accumulate between BeginFrame
// and Present.
type Device struct {
	Filter ebiten.Filter

	logger   zerolog.Logger
	programs []program
	textures []texture
	arrays   []*mesh.Mesh

	current gpu.Program
	array   gpu.VertexArray
	unit0   gpu.Texture

	clear     color.Color
	width     int
	height    int
	triangles []softraster.Triangle
	frame     FrameStats

	vertices []ebiten.Vertex
	indices  []uint16
}

var _ gpu.Device = (*Device)(nil)

func New(logger zerolog.Logger) *Device {
	return &Device{
		Filter: ebiten.FilterLinear,
		logger: logger,
		clear:  color.Black,
		width:  1,
		height: 1,
	}
}

func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	d.programs = append(d.programs, program{
		name:    src.Name,
		shading: src.Shading,
		uniforms: uniformState{
			model:      mgl32.Ident4(),
			view:       mgl32.Ident4(),
			projection: mgl32.Ident4(),
			lightColor: mgl32.Vec3{1, 1, 1},
		},
	})
	return gpu.Program(len(d.programs)), nil
}

func (d *Device) program(p gpu.Program) *program {
	if p == 0 || int(p) > len(d.programs) {
		return nil
	}
	return &d.programs[p-1]
}

// UniformLocation resolves the renderer's uniform names; any other name is
// inactive.
func (d *Device) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	if d.program(p) == nil {
		return gpu.NoUniform
	}
	u, ok := gpu.UniformByName(name)
	if !ok {
		return gpu.NoUniform
	}
	return gpu.UniformLocation(u)
}

func (d *Device) UploadTexture(img image.Image, wrap gpu.WrapMode) (gpu.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, eris.New("empty texture")
	}
	d.textures = append(d.textures, texture{
		img:    ebiten.NewImageFromImage(img),
		width:  b.Dx(),
		height: b.Dy(),
		wrap:   wrap,
	})
	return gpu.Texture(len(d.textures)), nil
}

func (d *Device) texture(t gpu.Texture) *texture {
	if t == 0 || int(t) > len(d.textures) {
		return nil
	}
	return &d.textures[t-1]
}

func (d *Device) CreateVertexArray(m *mesh.Mesh) (gpu.VertexArray, error) {
	if err := m.Validate(); err != nil {
		return 0, eris.Wrap(err, "create vertex array")
	}
	d.arrays = append(d.arrays, m)
	return gpu.VertexArray(len(d.arrays)), nil
}

// DeleteVertexArray drops the mesh reference. Handles are never reused, so a
// deleted handle stays invalid.
func (d *Device) DeleteVertexArray(v gpu.VertexArray) {
	if v == 0 || int(v) > len(d.arrays) {
		return
	}
	d.arrays[v-1] = nil
}

func (d *Device) BeginFrame(clear color.Color) {
	if clear == nil {
		clear = color.Black
	}
	d.clear = clear
	d.triangles = d.triangles[:0]
	d.frame = FrameStats{}
}

func (d *Device) UseProgram(p gpu.Program) {
	d.current = p
}

func (d *Device) uniforms() *uniformState {
	p := d.program(d.current)
	if p == nil {
		return nil
	}
	return &p.uniforms
}

func (d *Device) SetUniformMat4(loc gpu.UniformLocation, m mgl32.Mat4) {
	u := d.uniforms()
	if u == nil || loc == gpu.NoUniform {
		return
	}
	switch gpu.Uniform(loc) {
	case gpu.UniformModel:
		u.model = m
	case gpu.UniformView:
		u.view = m
	case gpu.UniformProjection:
		u.projection = m
	}
}

func (d *Device) SetUniformVec3(loc gpu.UniformLocation, v mgl32.Vec3) {
	u := d.uniforms()
	if u == nil || loc == gpu.NoUniform {
		return
	}
	switch gpu.Uniform(loc) {
	case gpu.UniformLightColor:
		u.lightColor = v
	case gpu.UniformLightPosition:
		u.lightPosition = v
	}
}

// SetUniformFloat is a no-op: uLightColor already carries the intensity.
func (d *Device) SetUniformFloat(gpu.UniformLocation, float32) {}

// SetUniformInt is a no-op: every draw samples texture unit 0.
func (d *Device) SetUniformInt(gpu.UniformLocation, int32) {}

func (d *Device) BindTexture(unit uint32, t gpu.Texture) {
	if unit == 0 {
		d.unit0 = t
	}
}

func (d *Device) BindVertexArray(v gpu.VertexArray) {
	d.array = v
}

// DrawElements runs the vertex stage for the bound vertex array. The count is
// clamped to the array's index count.
func (d *Device) DrawElements(count int32) {
	p := d.program(d.current)
	if p == nil || d.array == 0 || int(d.array) > len(d.arrays) || d.arrays[d.array-1] == nil {
		d.logger.Warn().Uint32("program", uint32(d.current)).Uint32("vao", uint32(d.array)).Msg("draw without bound state")
		return
	}
	m := d.arrays[d.array-1]
	if int(count) < len(m.Indices) {
		clipped := *m
		clipped.Indices = m.Indices[:count]
		m = &clipped
	}

	pass := softraster.Pass{
		Model:      p.uniforms.model,
		View:       p.uniforms.view,
		Projection: p.uniforms.projection,
		Light: softraster.Light{
			Color:    p.uniforms.lightColor,
			Position: p.uniforms.lightPosition,
			Ambient:  softraster.DefaultAmbient,
		},
		Shading: p.shading,
		Texture: d.unit0,
		Width:   d.width,
		Height:  d.height,
	}
	d.triangles = pass.Append(d.triangles, m)
	d.frame.DrawCalls++
}

func (d *Device) Viewport(width, height int) {
	d.width = max(width, 1)
	d.height = max(height, 1)
}

// LastFrame returns statistics for the most recent Present.
func (d *Device) LastFrame() FrameStats {
	return d.frame
}

// Present clears target and fills the accumulated triangles onto it.
func (d *Device) Present(target *ebiten.Image) {
	target.Fill(d.clear)
	softraster.Sort(d.triangles)
	d.frame.Triangles = len(d.triangles)

	d.forEachBatch(func(t *texture, vertices []ebiten.Vertex, indices []uint16) {
		if t == nil || t.img == nil {
			return
		}
		opts := &ebiten.DrawTrianglesOptions{
			Filter:  d.Filter,
			Address: ebiten.AddressClampToEdge,
		}
		if t.wrap == gpu.WrapRepeat {
			opts.Address = ebiten.AddressRepeat
		}
		target.DrawTriangles(vertices, indices, t.img, opts)
		d.frame.Batches++
	})
}

// forEachBatch groups consecutive triangles that share a texture. The slices
// passed to fn are reused between calls.
func (d *Device) forEachBatch(fn func(t *texture, vertices []ebiten.Vertex, indices []uint16)) {
	d.vertices = d.vertices[:0]
	d.indices = d.indices[:0]

	var current gpu.Texture
	flush := func() {
		if len(d.indices) > 0 {
			fn(d.texture(current), d.vertices, d.indices)
		}
		d.vertices = d.vertices[:0]
		d.indices = d.indices[:0]
	}

	for i := range d.triangles {
		tri := &d.triangles[i]
		if tri.Texture != current || len(d.vertices)+3 > maxBatchVertices {
			flush()
			current = tri.Texture
		}

		var w, h float32 = 1, 1
		if t := d.texture(tri.Texture); t != nil {
			w, h = float32(t.width), float32(t.height)
		}

		base := uint16(len(d.vertices))
		for _, v := range tri.Vertices {
			d.vertices = append(d.vertices, ebiten.Vertex{
				DstX:   v.X,
				DstY:   v.Y,
				SrcX:   v.U * w,
				SrcY:   v.V * h,
				ColorR: v.R,
				ColorG: v.G,
				ColorB: v.B,
				ColorA: 1,
			})
		}
		d.indices = append(d.indices, base, base+1, base+2)
	}
	flush()
}
