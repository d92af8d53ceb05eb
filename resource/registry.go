// Package resource is the append-only registry of meshes, textures and shader
// programs. The render system only ever sees the handles it hands out.
package resource

import (
	"errors"
	"image"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/mesh"
)

// ErrNotFound is returned when a handle does not name a registered resource.
var ErrNotFound = errors.New("resource not found")

// MeshHandle, TextureHandle and ShaderHandle are 1-based indexes into the
// registry. The zero value never names a resource.
type (
	MeshHandle    uint32
	TextureHandle uint32
	ShaderHandle  uint32
)

// Shader is a compiled program together with its uniform locations.
type Shader struct {
	Name      string
	Program   gpu.Program
	Shading   gpu.Shading
	Locations [gpu.UniformCount]gpu.UniformLocation
}

// TextureInfo describes an uploaded texture.
type TextureInfo struct {
	Texture gpu.Texture
	Width   int
	Height  int
	Wrap    gpu.WrapMode
}

// Registry owns every GPU resource of a scene. Handles are never reused.
type Registry struct {
	device   gpu.Device
	logger   zerolog.Logger
	meshes   []*mesh.Mesh
	textures []TextureInfo
	shaders  []Shader
}

// NewRegistry creates an empty registry bound to a device.
func NewRegistry(device gpu.Device, logger zerolog.Logger) *Registry {
	return &Registry{
		device: device,
		logger: logger,
	}
}

// Device returns the device resources are created on.
func (r *Registry) Device() gpu.Device {
	return r.device
}

// AddMesh stores mesh data. The mesh must not be mutated afterwards: vertex
// arrays built from it are never refreshed.
func (r *Registry) AddMesh(m *mesh.Mesh) (MeshHandle, error) {
	if m == nil {
		return 0, eris.New("cannot add nil mesh")
	}
	if err := m.Validate(); err != nil {
		return 0, eris.Wrap(err, "invalid mesh")
	}
	r.meshes = append(r.meshes, m)
	h := MeshHandle(len(r.meshes))
	r.logger.Debug().Uint32("mesh", uint32(h)).Int("vertices", m.VertexCount()).Msg("mesh registered")
	return h, nil
}

// Mesh resolves a mesh handle.
func (r *Registry) Mesh(h MeshHandle) (*mesh.Mesh, error) {
	if h == 0 || int(h) > len(r.meshes) {
		return nil, eris.Wrapf(ErrNotFound, "mesh %d", h)
	}
	return r.meshes[h-1], nil
}

// AddTexture uploads an image. Images whose dimensions are not both powers of
// two are always clamped to edge.
func (r *Registry) AddTexture(img image.Image, wrap gpu.WrapMode) (TextureHandle, error) {
	if img == nil {
		return 0, eris.New("cannot add nil texture")
	}
	b := img.Bounds()
	if !isPowerOfTwo(b.Dx()) || !isPowerOfTwo(b.Dy()) {
		wrap = gpu.WrapClampToEdge
	}
	tex, err := r.device.UploadTexture(img, wrap)
	if err != nil {
		return 0, eris.Wrap(err, "upload texture")
	}
	r.textures = append(r.textures, TextureInfo{
		Texture: tex,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Wrap:    wrap,
	})
	h := TextureHandle(len(r.textures))
	r.logger.Debug().Uint32("texture", uint32(h)).Int("width", b.Dx()).Int("height", b.Dy()).Stringer("wrap", wrap).Msg("texture registered")
	return h, nil
}

// Texture resolves a texture handle.
func (r *Registry) Texture(h TextureHandle) (TextureInfo, error) {
	if h == 0 || int(h) > len(r.textures) {
		return TextureInfo{}, eris.Wrapf(ErrNotFound, "texture %d", h)
	}
	return r.textures[h-1], nil
}

// AddShader compiles and links a program and resolves the location of every
// known uniform once.
func (r *Registry) AddShader(src gpu.ProgramSource) (ShaderHandle, error) {
	program, err := r.device.CompileProgram(src)
	if err != nil {
		return 0, eris.Wrapf(err, "compile shader %q", src.Name)
	}

	s := Shader{
		Name:    src.Name,
		Program: program,
		Shading: src.Shading,
	}
	for u := gpu.Uniform(0); u < gpu.UniformCount; u++ {
		s.Locations[u] = r.device.UniformLocation(program, u.Name())
	}
	r.shaders = append(r.shaders, s)
	h := ShaderHandle(len(r.shaders))

	r.logger.Debug().Uint32("shader", uint32(h)).Str("name", src.Name).Msg("shader registered")
	return h, nil
}

// Shader resolves a shader handle.
func (r *Registry) Shader(h ShaderHandle) (*Shader, error) {
	if h == 0 || int(h) > len(r.shaders) {
		return nil, eris.Wrapf(ErrNotFound, "shader %d", h)
	}
	return &r.shaders[h-1], nil
}

// UniformLocation returns the cached location of a uniform. It never queries
// the device.
func (r *Registry) UniformLocation(h ShaderHandle, u gpu.Uniform) (gpu.UniformLocation, error) {
	if u >= gpu.UniformCount {
		return gpu.NoUniform, eris.Errorf("unknown uniform %d", u)
	}
	shader, err := r.Shader(h)
	if err != nil {
		return gpu.NoUniform, err
	}
	return shader.Locations[u], nil
}

// Counts reports how many resources of each type are registered.
func (r *Registry) Counts() (meshes, textures, shaders int) {
	return len(r.meshes), len(r.textures), len(r.shaders)
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
