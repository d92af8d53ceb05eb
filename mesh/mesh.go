// Package mesh holds CPU-side triangle meshes and the tessellators for the
// shapes the scene uses.
package mesh

import (
	"errors"
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidMesh is returned by Validate.
var ErrInvalidMesh = errors.New("invalid mesh")

const maxSegments = 255

// Mesh is an indexed triangle list. Vertices and Normals hold 3 floats per
// vertex, TexCoords 2 floats per vertex.
type Mesh struct {
	Vertices  []float32
	Normals   []float32
	TexCoords []float32
	Indices   []uint16
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// IndexCount returns the number of indices to draw.
func (m *Mesh) IndexCount() int32 {
	return int32(len(m.Indices))
}

// Validate checks buffer lengths agree and every index addresses a vertex.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 || len(m.Vertices)%3 != 0 {
		return eris.Wrapf(ErrInvalidMesh, "vertex buffer length %d is not a positive multiple of 3", len(m.Vertices))
	}
	n := m.VertexCount()
	if len(m.Normals) != n*3 {
		return eris.Wrapf(ErrInvalidMesh, "expected %d normal floats, got %d", n*3, len(m.Normals))
	}
	if len(m.TexCoords) != n*2 {
		return eris.Wrapf(ErrInvalidMesh, "expected %d texcoord floats, got %d", n*2, len(m.TexCoords))
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return eris.Wrapf(ErrInvalidMesh, "index count %d is not a positive multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return eris.Wrapf(ErrInvalidMesh, "index %d at position %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Sphere builds a UV sphere centred on the origin with counter-clockwise
// outward faces. latSegments and lonSegments are clamped to [3, 255] so every
// vertex stays addressable by a 16-bit index.
func Sphere(radius float32, latSegments, lonSegments int) *Mesh {
	latSegments = min(max(latSegments, 3), maxSegments)
	lonSegments = min(max(lonSegments, 3), maxSegments)

	count := (latSegments + 1) * (lonSegments + 1)
	m := &Mesh{
		Vertices:  make([]float32, 0, count*3),
		Normals:   make([]float32, 0, count*3),
		TexCoords: make([]float32, 0, count*2),
		Indices:   make([]uint16, 0, latSegments*lonSegments*6),
	}

	for lat := 0; lat <= latSegments; lat++ {
		theta := float64(lat) * math.Pi / float64(latSegments)
		sinTheta, cosTheta := math.Sincos(theta)

		for lon := 0; lon <= lonSegments; lon++ {
			phi := float64(lon) * 2 * math.Pi / float64(lonSegments)
			sinPhi, cosPhi := math.Sincos(phi)

			x := float32(cosPhi * sinTheta)
			y := float32(cosTheta)
			z := float32(sinPhi * sinTheta)

			m.Normals = append(m.Normals, x, y, z)
			m.TexCoords = append(m.TexCoords, float32(lon)/float32(lonSegments), float32(lat)/float32(latSegments))
			m.Vertices = append(m.Vertices, radius*x, radius*y, radius*z)
		}
	}

	for lat := 0; lat < latSegments; lat++ {
		for lon := 0; lon < lonSegments; lon++ {
			first := uint16(lat*(lonSegments+1) + lon)
			second := first + uint16(lonSegments) + 1
			m.Indices = append(m.Indices, first, first+1, second)
			m.Indices = append(m.Indices, second, first+1, second+1)
		}
	}

	return m
}

// Ring builds a flat annulus in the XZ plane. Both sides are emitted so the
// ring survives back-face culling from above and below; vertices of the upper
// side come first.
func Ring(innerRadius, outerRadius float32, segments int) *Mesh {
	segments = min(max(segments, 3), maxSegments)

	perSide := (segments + 1) * 2
	m := &Mesh{
		Vertices:  make([]float32, 0, perSide*2*3),
		Normals:   make([]float32, 0, perSide*2*3),
		TexCoords: make([]float32, 0, perSide*2*2),
		Indices:   make([]uint16, 0, segments*12),
	}

	for _, ny := range []float32{1, -1} {
		for i := 0; i <= segments; i++ {
			theta := float64(i) * 2 * math.Pi / float64(segments)
			sinTheta, cosTheta := math.Sincos(theta)
			v := float32(i) / float32(segments)

			m.Vertices = append(m.Vertices, outerRadius*float32(cosTheta), 0, outerRadius*float32(sinTheta))
			m.Normals = append(m.Normals, 0, ny, 0)
			m.TexCoords = append(m.TexCoords, 1, v)

			m.Vertices = append(m.Vertices, innerRadius*float32(cosTheta), 0, innerRadius*float32(sinTheta))
			m.Normals = append(m.Normals, 0, ny, 0)
			m.TexCoords = append(m.TexCoords, 0, v)
		}
	}

	for i := 0; i < segments; i++ {
		step := uint16(i * 2)
		m.Indices = append(m.Indices, step, step+1, step+3)
		m.Indices = append(m.Indices, step, step+3, step+2)
	}
	for i := 0; i < segments; i++ {
		step := uint16(perSide + i*2)
		m.Indices = append(m.Indices, step, step+3, step+1)
		m.Indices = append(m.Indices, step, step+2, step+3)
	}

	return m
}
