// Package gpu defines the binding API the renderer uses to talk to a graphics
// backend. Every GPU object is an opaque handle owned by the Device that
// created it.
package gpu

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/orrery/mesh"
)

// Program is a linked shader program.
type Program uint32

// Texture is an uploaded 2D texture.
type Texture uint32

// VertexArray is a vertex array object with its position, normal, texcoord and
// index buffers attached.
type VertexArray uint32

// UniformLocation addresses a uniform inside a program. NoUniform marks a name
// the program does not use; setting it is a no-op.
type UniformLocation int32

const NoUniform UniformLocation = -1

// Vertex attribute locations shared by every shader the renderer loads.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTexCoord = 2
)

// WrapMode selects how texture coordinates outside [0,1] are resolved.
type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
)

func (w WrapMode) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapClampToEdge:
		return "clamp-to-edge"
	default:
		return "unknown"
	}
}

// Shading tells backends that cannot run GLSL how a program lights its
// fragments. OpenGL backends ignore it.
type Shading uint8

const (
	ShadingLit Shading = iota
	ShadingUnlit
)

// ProgramSource is the input for Device.CompileProgram.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
	Shading  Shading
}

// Device is the set of GPU primitives consumed by the resource registry and the
// render system. Implementations are not safe for concurrent use; all calls
// happen on the frame thread.
type Device interface {
	CompileProgram(src ProgramSource) (Program, error)
	UniformLocation(p Program, name string) UniformLocation
	UploadTexture(img image.Image, wrap WrapMode) (Texture, error)
	CreateVertexArray(m *mesh.Mesh) (VertexArray, error)
	// DeleteVertexArray frees a vertex array and its buffers. The handle must
	// not be used afterwards.
	DeleteVertexArray(v VertexArray)

	BeginFrame(clear color.Color)
	UseProgram(p Program)
	SetUniformMat4(loc UniformLocation, m mgl32.Mat4)
	SetUniformVec3(loc UniformLocation, v mgl32.Vec3)
	SetUniformFloat(loc UniformLocation, f float32)
	SetUniformInt(loc UniformLocation, i int32)
	BindTexture(unit uint32, t Texture)
	BindVertexArray(v VertexArray)
	DrawElements(count int32)

	Viewport(width, height int)
}
