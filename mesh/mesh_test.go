package mesh_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/mesh"
)

func TestSphere(t *testing.T) {
	m := mesh.Sphere(5, 20, 20)
	require.NoError(t, m.Validate())

	assert.Equal(t, 21*21, m.VertexCount())
	assert.Equal(t, int32(20*20*6), m.IndexCount())

	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]
		r := math.Sqrt(float64(x*x + y*y + z*z))
		assert.InDelta(t, 5.0, r, 1e-4)

		nx, ny, nz := m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]
		assert.InDelta(t, 1.0, math.Sqrt(float64(nx*nx+ny*ny+nz*nz)), 1e-5)
	}
}

// faceNormal returns the normal implied by the winding of triangle tri.
func faceNormal(m *mesh.Mesh, tri int) [3]float64 {
	var p [3][3]float64
	for k := 0; k < 3; k++ {
		idx := int(m.Indices[tri*3+k])
		for c := 0; c < 3; c++ {
			p[k][c] = float64(m.Vertices[idx*3+c])
		}
	}
	a := [3]float64{p[1][0] - p[0][0], p[1][1] - p[0][1], p[1][2] - p[0][2]}
	b := [3]float64{p[2][0] - p[0][0], p[2][1] - p[0][1], p[2][2] - p[0][2]}
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func TestSphereWindsOutward(t *testing.T) {
	m := mesh.Sphere(2, 12, 12)
	for tri := 0; tri < len(m.Indices)/3; tri++ {
		n := faceNormal(m, tri)
		if n[0]*n[0]+n[1]*n[1]+n[2]*n[2] < 1e-12 {
			continue // degenerate triangles at the poles
		}
		var centroid [3]float64
		for k := 0; k < 3; k++ {
			idx := int(m.Indices[tri*3+k])
			for c := 0; c < 3; c++ {
				centroid[c] += float64(m.Vertices[idx*3+c])
			}
		}
		dot := n[0]*centroid[0] + n[1]*centroid[1] + n[2]*centroid[2]
		assert.Greater(t, dot, 0.0, "triangle %d faces inward", tri)
	}
}

func TestRingIsDoubleSided(t *testing.T) {
	m := mesh.Ring(1, 2, 8)
	half := len(m.Indices) / 6
	for tri := 0; tri < len(m.Indices)/3; tri++ {
		n := faceNormal(m, tri)
		if tri < half {
			assert.Greater(t, n[1], 0.0, "upper triangle %d", tri)
		} else {
			assert.Less(t, n[1], 0.0, "lower triangle %d", tri)
		}
	}
}

func TestSphereClampsSegments(t *testing.T) {
	m := mesh.Sphere(1, 0, 1)
	require.NoError(t, m.Validate())
	assert.Equal(t, 4*4, m.VertexCount())
}

func TestRing(t *testing.T) {
	m := mesh.Ring(10, 15, 60)
	require.NoError(t, m.Validate())

	assert.Equal(t, 61*2*2, m.VertexCount())
	assert.Equal(t, int32(60*12), m.IndexCount())

	for i := 0; i < m.VertexCount(); i++ {
		assert.Equal(t, float32(0), m.Vertices[i*3+1])
		if i < 61*2 {
			assert.Equal(t, float32(1), m.Normals[i*3+1])
		} else {
			assert.Equal(t, float32(-1), m.Normals[i*3+1])
		}
		x, z := m.Vertices[i*3], m.Vertices[i*3+2]
		r := math.Sqrt(float64(x*x + z*z))
		if i%2 == 0 {
			assert.InDelta(t, 15.0, r, 1e-4)
		} else {
			assert.InDelta(t, 10.0, r, 1e-4)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mesh *mesh.Mesh
	}{
		{"empty", &mesh.Mesh{}},
		{"ragged vertices", &mesh.Mesh{Vertices: []float32{0, 0}}},
		{"missing normals", &mesh.Mesh{
			Vertices:  []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			TexCoords: []float32{0, 0, 1, 0, 0, 1},
			Indices:   []uint16{0, 1, 2},
		}},
		{"index out of range", &mesh.Mesh{
			Vertices:  []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
			TexCoords: []float32{0, 0, 1, 0, 0, 1},
			Indices:   []uint16{0, 1, 3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.mesh.Validate(), mesh.ErrInvalidMesh)
		})
	}
}
