package softraster_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/gpu/softraster"
	"github.com/plus3/orrery/mesh"
)

// triangle builds a one-triangle mesh facing +Z when wound counter-clockwise.
func triangle(a, b, c mgl32.Vec3) *mesh.Mesh {
	return &mesh.Mesh{
		Vertices:  []float32{a[0], a[1], a[2], b[0], b[1], b[2], c[0], c[1], c[2]},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		TexCoords: []float32{0, 0, 1, 0, 0.5, 1},
		Indices:   []uint16{0, 1, 2},
	}
}

func newPass(eye mgl32.Vec3) *softraster.Pass {
	return &softraster.Pass{
		Model:      mgl32.Ident4(),
		View:       mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100),
		Light: softraster.Light{
			Color:    mgl32.Vec3{1, 1, 1},
			Position: mgl32.Vec3{0, 0, 10},
			Ambient:  softraster.DefaultAmbient,
		},
		Width:  200,
		Height: 100,
	}
}

func TestAppendProjectsToScreen(t *testing.T) {
	p := newPass(mgl32.Vec3{0, 0, 3})
	p.Texture = 7
	m := triangle(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})

	tris := p.Append(nil, m)
	require.Len(t, tris, 1)

	tri := tris[0]
	assert.Equal(t, gpu.Texture(7), tri.Texture)
	assert.Less(t, tri.Vertices[0].X, float32(100))
	assert.Greater(t, tri.Vertices[1].X, float32(100))
	assert.InDelta(t, 100, tri.Vertices[2].X, 1e-3)
	assert.Less(t, tri.Vertices[2].Y, float32(50), "+Y in world is up on screen")
	assert.Greater(t, tri.Vertices[0].Y, float32(50))
	assert.Equal(t, float32(1), tri.Vertices[1].U)
}

func TestAppendCullsBackFaces(t *testing.T) {
	p := newPass(mgl32.Vec3{0, 0, 3})
	m := triangle(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, -1, 0})
	assert.Empty(t, p.Append(nil, m))

	p = newPass(mgl32.Vec3{0, 0, -3})
	assert.Len(t, p.Append(nil, m), 1, "the same triangle faces a camera behind it")
}

func TestAppendClipsNearPlane(t *testing.T) {
	p := newPass(mgl32.Vec3{0, 0, 0.5})
	// A floor triangle running from far ahead to behind the camera.
	m := triangle(mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, -1, -10}, mgl32.Vec3{0, -1, 2})
	m.Indices = []uint16{0, 2, 1}

	tris := p.Append(nil, m)
	require.NotEmpty(t, tris)
	for _, tri := range tris {
		assert.LessOrEqual(t, tri.Depth, float32(1))
		assert.GreaterOrEqual(t, tri.Depth, float32(-1.001))
		for _, v := range tri.Vertices {
			assert.False(t, math.IsNaN(float64(v.X)) || math.IsNaN(float64(v.Y)))
		}
	}
}

func TestAppendRejectsOffscreen(t *testing.T) {
	p := newPass(mgl32.Vec3{0, 0, 3})
	p.Model = mgl32.Translate3D(100, 0, 0)
	m := triangle(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})
	assert.Empty(t, p.Append(nil, m))

	p.Model = mgl32.Translate3D(0, 0, 10)
	assert.Empty(t, p.Append(nil, m), "geometry behind the camera is dropped")
}

func TestShading(t *testing.T) {
	m := triangle(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})

	lit := newPass(mgl32.Vec3{0, 0, 3})
	tris := lit.Append(nil, m)
	require.Len(t, tris, 1)
	assert.Greater(t, tris[0].Vertices[2].R, float32(0.9))

	dark := newPass(mgl32.Vec3{0, 0, 3})
	dark.Light.Position = mgl32.Vec3{0, 0, -10}
	tris = dark.Append(nil, m)
	require.Len(t, tris, 1)
	assert.InDelta(t, softraster.DefaultAmbient, tris[0].Vertices[0].R, 1e-6, "unlit side keeps the ambient term")

	unlit := newPass(mgl32.Vec3{0, 0, 3})
	unlit.Shading = gpu.ShadingUnlit
	unlit.Light.Position = mgl32.Vec3{0, 0, -10}
	tris = unlit.Append(nil, m)
	require.Len(t, tris, 1)
	for _, v := range tris[0].Vertices {
		assert.Equal(t, [3]float32{1, 1, 1}, [3]float32{v.R, v.G, v.B})
	}
}

func TestLambert(t *testing.T) {
	up := mgl32.Vec3{0, 1, 0}
	assert.Equal(t, float32(1), softraster.Lambert(up, up))
	assert.Equal(t, float32(0), softraster.Lambert(up, mgl32.Vec3{0, -1, 0}))
	assert.Equal(t, float32(0), softraster.Lambert(up, mgl32.Vec3{1, 0, 0}))
}

func TestSortBackToFront(t *testing.T) {
	tris := []softraster.Triangle{
		{Depth: 0.2, Texture: 1},
		{Depth: 0.9, Texture: 2},
		{Depth: 0.2, Texture: 3},
		{Depth: 0.5, Texture: 4},
	}
	softraster.Sort(tris)

	var order []gpu.Texture
	for _, tri := range tris {
		order = append(order, tri.Texture)
	}
	assert.Equal(t, []gpu.Texture{2, 4, 1, 3}, order)
}

func TestSphereShowsOnlyFrontHemisphere(t *testing.T) {
	p := newPass(mgl32.Vec3{0, 0, 6})
	p.Shading = gpu.ShadingUnlit
	m := mesh.Sphere(1, 16, 16)

	tris := p.Append(nil, m)
	require.NotEmpty(t, tris)
	assert.Less(t, len(tris), int(m.IndexCount())/3*2/3, "back faces are culled")
}
