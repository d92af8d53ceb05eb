package ebitendevice

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/gpu/softraster"
	"github.com/plus3/orrery/mesh"
)

func facingTriangle() *mesh.Mesh {
	return &mesh.Mesh{
		Vertices:  []float32{-1, -1, 0, 1, -1, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		TexCoords: []float32{0, 1, 1, 1, 0.5, 0},
		Indices:   []uint16{0, 1, 2},
	}
}

// addTexture registers a texture without touching the graphics driver.
func addTexture(d *Device, w, h int, wrap gpu.WrapMode) gpu.Texture {
	d.textures = append(d.textures, texture{width: w, height: h, wrap: wrap})
	return gpu.Texture(len(d.textures))
}

func setupDraw(t *testing.T, d *Device, shading gpu.Shading) gpu.VertexArray {
	t.Helper()
	p, err := d.CompileProgram(gpu.ProgramSource{Name: "planet", Shading: shading})
	require.NoError(t, err)
	va, err := d.CreateVertexArray(facingTriangle())
	require.NoError(t, err)

	d.UseProgram(p)
	d.SetUniformMat4(d.UniformLocation(p, "uModelMat"), mgl32.Ident4())
	d.SetUniformMat4(d.UniformLocation(p, "uViewMat"), mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	d.SetUniformMat4(d.UniformLocation(p, "uProjMat"), mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100))
	d.SetUniformVec3(d.UniformLocation(p, "uLightPosition"), mgl32.Vec3{0, 0, 10})
	return va
}

func collect(d *Device) (textures []gpu.Texture, vertices [][]ebiten.Vertex) {
	d.forEachBatch(func(tex *texture, vs []ebiten.Vertex, is []uint16) {
		var handle gpu.Texture
		for i := range d.textures {
			if &d.textures[i] == tex {
				handle = gpu.Texture(i + 1)
			}
		}
		textures = append(textures, handle)
		vertices = append(vertices, append([]ebiten.Vertex(nil), vs...))
	})
	return textures, vertices
}

func TestUniformLocations(t *testing.T) {
	d := New(zerolog.Nop())
	p, err := d.CompileProgram(gpu.ProgramSource{Name: "planet"})
	require.NoError(t, err)

	assert.Equal(t, gpu.UniformLocation(gpu.UniformModel), d.UniformLocation(p, "uModelMat"))
	assert.Equal(t, gpu.NoUniform, d.UniformLocation(p, "uUnknown"))
	assert.Equal(t, gpu.NoUniform, d.UniformLocation(p+1, "uModelMat"))
}

func TestDrawElementsAccumulates(t *testing.T) {
	d := New(zerolog.Nop())
	d.Viewport(200, 100)
	va := setupDraw(t, d, gpu.ShadingLit)
	tex := addTexture(d, 64, 32, gpu.WrapRepeat)

	d.BeginFrame(nil)
	d.BindTexture(0, tex)
	d.BindVertexArray(va)
	d.DrawElements(3)

	require.Len(t, d.triangles, 1)
	assert.Equal(t, 1, d.LastFrame().DrawCalls)

	textures, vertices := collect(d)
	require.Equal(t, []gpu.Texture{tex}, textures)
	require.Len(t, vertices[0], 3)
	assert.InDelta(t, 64, vertices[0][1].SrcX, 1e-4, "u is scaled to texture pixels")
	assert.InDelta(t, 32, vertices[0][1].SrcY, 1e-4)
	assert.Equal(t, float32(1), vertices[0][0].ColorA)

	d.BeginFrame(nil)
	assert.Empty(t, d.triangles, "a new frame drops queued triangles")
}

func TestBatchesSplitOnTextureChange(t *testing.T) {
	d := New(zerolog.Nop())
	d.Viewport(100, 100)
	va := setupDraw(t, d, gpu.ShadingUnlit)
	earth := addTexture(d, 8, 8, gpu.WrapRepeat)
	moon := addTexture(d, 8, 8, gpu.WrapClampToEdge)

	d.BeginFrame(nil)
	d.BindVertexArray(va)
	for _, tex := range []gpu.Texture{earth, earth, moon, earth} {
		d.BindTexture(0, tex)
		d.DrawElements(3)
	}

	textures, vertices := collect(d)
	assert.Equal(t, []gpu.Texture{earth, moon, earth}, textures)
	assert.Len(t, vertices[0], 6)
	assert.Len(t, vertices[1], 3)
}

func TestBatchesRespectIndexLimit(t *testing.T) {
	d := New(zerolog.Nop())
	tex := addTexture(d, 1, 1, gpu.WrapRepeat)
	d.triangles = make([]softraster.Triangle, maxBatchVertices/3+10)
	for i := range d.triangles {
		d.triangles[i].Texture = tex
	}

	_, vertices := collect(d)
	require.Len(t, vertices, 2)
	assert.LessOrEqual(t, len(vertices[0]), maxBatchVertices)
	assert.Equal(t, len(d.triangles)*3, len(vertices[0])+len(vertices[1]))
}

func TestDrawWithoutStateIsIgnored(t *testing.T) {
	d := New(zerolog.Nop())
	d.BeginFrame(nil)
	d.DrawElements(3)
	assert.Empty(t, d.triangles)
	assert.Zero(t, d.LastFrame().DrawCalls)
}

func TestDrawElementsClampsCount(t *testing.T) {
	d := New(zerolog.Nop())
	d.Viewport(100, 100)
	va := setupDraw(t, d, gpu.ShadingUnlit)

	d.BeginFrame(nil)
	d.BindVertexArray(va)
	d.DrawElements(0)
	assert.Empty(t, d.triangles)
	d.DrawElements(300)
	assert.Len(t, d.triangles, 1)
}

func TestDeletedVertexArrayIsNotDrawn(t *testing.T) {
	d := New(zerolog.Nop())
	d.Viewport(100, 100)
	va := setupDraw(t, d, gpu.ShadingUnlit)

	d.DeleteVertexArray(va)
	d.DeleteVertexArray(va)
	d.DeleteVertexArray(99)

	d.BeginFrame(nil)
	d.BindVertexArray(va)
	d.DrawElements(3)
	assert.Empty(t, d.triangles)
	assert.Zero(t, d.LastFrame().DrawCalls)
}
