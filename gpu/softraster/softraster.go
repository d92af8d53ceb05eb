// Package softraster is a CPU vertex stage for backends that can fill
// textured triangles but cannot run shaders. It transforms a mesh to screen
// space, clips against the near plane, culls back faces, shades vertices with
// a Lambert term and leaves depth ordering to Sort.
package softraster

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/mesh"
)

// DefaultAmbient matches the ambient term of the bundled GLSL shaders.
const DefaultAmbient = float32(0.15)

// Vertex is a screen-space vertex. X and Y are pixels from the top-left
// corner; U and V are normalized texture coordinates.
type Vertex struct {
	X, Y    float32
	U, V    float32
	R, G, B float32
}

// Triangle is a front-facing, near-clipped triangle ready to fill.
type Triangle struct {
	Vertices [3]Vertex
	// Depth is the mean NDC depth of the vertices; larger is farther.
	Depth   float32
	Texture gpu.Texture
}

// Light is a point light.
type Light struct {
	Color    mgl32.Vec3
	Position mgl32.Vec3
	Ambient  float32
}

// Pass holds the state of one draw call.
type Pass struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Light      Light
	Shading    gpu.Shading
	Texture    gpu.Texture
	Width      int
	Height     int
}

type clipVertex struct {
	pos   mgl32.Vec4
	u, v  float32
	shade mgl32.Vec3
}

func lerp(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		pos:   a.pos.Add(b.pos.Sub(a.pos).Mul(t)),
		u:     a.u + (b.u-a.u)*t,
		v:     a.v + (b.v-a.v)*t,
		shade: a.shade.Add(b.shade.Sub(a.shade).Mul(t)),
	}
}

// Lambert returns the diffuse factor for a unit normal and a unit direction
// toward the light.
func Lambert(normal, toLight mgl32.Vec3) float32 {
	return max(normal.Dot(toLight), 0)
}

func normalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	m := model.Mat3()
	if m.Det() == 0 {
		return m
	}
	return m.Inv().Transpose()
}

// Append transforms m and appends its visible triangles to dst.
func (p *Pass) Append(dst []Triangle, m *mesh.Mesh) []Triangle {
	n := m.VertexCount()
	viewProj := p.Projection.Mul4(p.View)
	normals := normalMatrix(p.Model)

	ambient := p.Light.Ambient
	verts := make([]clipVertex, n)
	for i := 0; i < n; i++ {
		local := mgl32.Vec4{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2], 1}
		world := p.Model.Mul4x1(local)

		cv := clipVertex{
			pos: viewProj.Mul4x1(world),
			u:   m.TexCoords[i*2],
			v:   m.TexCoords[i*2+1],
		}

		if p.Shading == gpu.ShadingUnlit {
			cv.shade = mgl32.Vec3{1, 1, 1}
		} else {
			normal := normals.Mul3x1(mgl32.Vec3{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]})
			if normal.Len() > 0 {
				normal = normal.Normalize()
			}
			toLight := p.Light.Position.Sub(world.Vec3())
			if toLight.Len() > 0 {
				toLight = toLight.Normalize()
			}
			diffuse := Lambert(normal, toLight)
			cv.shade = p.Light.Color.Mul(diffuse * (1 - ambient)).Add(mgl32.Vec3{ambient, ambient, ambient})
		}
		verts[i] = cv
	}

	var poly [4]clipVertex
	for t := 0; t+2 < len(m.Indices); t += 3 {
		tri := [3]clipVertex{verts[m.Indices[t]], verts[m.Indices[t+1]], verts[m.Indices[t+2]]}
		if outsideFrustum(tri) {
			continue
		}
		count := clipNear(tri, &poly)
		for k := 1; k+1 < count; k++ {
			if out, ok := p.project(poly[0], poly[k], poly[k+1]); ok {
				dst = append(dst, out)
			}
		}
	}
	return dst
}

// outsideFrustum reports whether every vertex lies beyond the same side plane.
func outsideFrustum(tri [3]clipVertex) bool {
	var left, right, bottom, top, far int
	for _, v := range tri {
		x, y, z, w := v.pos[0], v.pos[1], v.pos[2], v.pos[3]
		if x < -w {
			left++
		}
		if x > w {
			right++
		}
		if y < -w {
			bottom++
		}
		if y > w {
			top++
		}
		if z > w {
			far++
		}
	}
	return left == 3 || right == 3 || bottom == 3 || top == 3 || far == 3
}

func nearDistance(v clipVertex) float32 {
	return v.pos[2] + v.pos[3]
}

// clipNear clips a triangle against z >= -w and writes the resulting convex
// polygon, returning its vertex count (0, 3 or 4).
func clipNear(tri [3]clipVertex, out *[4]clipVertex) int {
	count := 0
	for i := 0; i < 3; i++ {
		a := tri[i]
		b := tri[(i+1)%3]
		da := nearDistance(a)
		db := nearDistance(b)

		if da >= 0 {
			out[count] = a
			count++
		}
		if (da >= 0) != (db >= 0) {
			out[count] = lerp(a, b, da/(da-db))
			count++
		}
	}
	return count
}

func (p *Pass) project(a, b, c clipVertex) (Triangle, bool) {
	var ndc [3]mgl32.Vec3
	for i, v := range [3]clipVertex{a, b, c} {
		w := v.pos[3]
		if w <= 0 {
			return Triangle{}, false
		}
		ndc[i] = mgl32.Vec3{v.pos[0] / w, v.pos[1] / w, v.pos[2] / w}
	}

	area := (ndc[1][0]-ndc[0][0])*(ndc[2][1]-ndc[0][1]) - (ndc[2][0]-ndc[0][0])*(ndc[1][1]-ndc[0][1])
	if area <= 0 {
		return Triangle{}, false
	}

	w := float32(p.Width)
	h := float32(p.Height)
	tri := Triangle{Texture: p.Texture}
	for i, v := range [3]clipVertex{a, b, c} {
		tri.Vertices[i] = Vertex{
			X: (ndc[i][0] + 1) / 2 * w,
			Y: (1 - ndc[i][1]) / 2 * h,
			U: v.u,
			V: v.v,
			R: clamp01(v.shade[0]),
			G: clamp01(v.shade[1]),
			B: clamp01(v.shade[2]),
		}
		tri.Depth += ndc[i][2] / 3
	}
	return tri, true
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

// Sort orders triangles back to front. Triangles at equal depth keep their
// submission order.
func Sort(tris []Triangle) {
	sort.SliceStable(tris, func(i, j int) bool {
		return tris[i].Depth > tris[j].Depth
	})
}
