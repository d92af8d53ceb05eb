//go:build !js

// Package glbackend implements gpu.Device on OpenGL 3.3 core. A context must
// be current on the calling thread for every call, including New.
package glbackend

import (
	"errors"
	"image"
	"image/color"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/mesh"
)

// ErrShaderCompile is returned when the driver rejects a shader.
var ErrShaderCompile = errors.New("shader compile failed")

type vertexArrayState struct {
	vao     uint32
	buffers [4]uint32
}

// Device is an OpenGL gpu.Device.
type Device struct {
	logger   zerolog.Logger
	programs []uint32
	textures []uint32
	arrays   map[gpu.VertexArray]*vertexArrayState
}

var _ gpu.Device = (*Device)(nil)

// New loads the GL function pointers and sets the fixed pipeline state: depth
// test with LEQUAL and back-face culling.
func New(logger zerolog.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, eris.Wrap(err, "gl init")
	}

	logger.Info().
		Str("version", gl.GoStr(gl.GetString(gl.VERSION))).
		Str("renderer", gl.GoStr(gl.GetString(gl.RENDERER))).
		Msg("opengl initialized")

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	return &Device{
		logger: logger,
		arrays: make(map[gpu.VertexArray]*vertexArrayState),
	}, nil
}

func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	vertexShader, err := compileShader(gl.VERTEX_SHADER, src.Vertex)
	if err != nil {
		return 0, eris.Wrapf(err, "%s vertex shader", src.Name)
	}
	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, src.Fragment)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, eris.Wrapf(err, "%s fragment shader", src.Name)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.BindAttribLocation(program, gpu.AttribPosition, gl.Str("aPosition\x00"))
	gl.BindAttribLocation(program, gpu.AttribNormal, gl.Str("aNormal\x00"))
	gl.BindAttribLocation(program, gpu.AttribTexCoord, gl.Str("aTexCoord\x00"))
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, eris.Errorf("link %s: %s", src.Name, strings.TrimRight(log, "\x00"))
	}

	d.programs = append(d.programs, program)
	return gpu.Program(program), nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, compileError(log)
	}
	return shader, nil
}

// compileError wraps a NUL-padded driver info log.
func compileError(log string) error {
	return eris.Wrapf(ErrShaderCompile, "%s", strings.TrimSpace(strings.TrimRight(log, "\x00")))
}

func (d *Device) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

// UploadTexture uploads img as RGBA8. Repeating textures get a mipmap chain;
// clamped ones are sampled linearly without mipmaps.
func (d *Device) UploadTexture(img image.Image, wrap gpu.WrapMode) (gpu.Texture, error) {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	if len(rgba.Pix) == 0 {
		return 0, eris.New("empty texture")
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))

	switch wrap {
	case gpu.WrapRepeat:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.GenerateMipmap(gl.TEXTURE_2D)
	default:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	d.textures = append(d.textures, tex)
	return gpu.Texture(tex), nil
}

// CreateVertexArray uploads the mesh into static buffers and records the
// attribute layout in a new vertex array object.
func (d *Device) CreateVertexArray(m *mesh.Mesh) (gpu.VertexArray, error) {
	if err := m.Validate(); err != nil {
		return 0, eris.Wrap(err, "create vertex array")
	}

	state := &vertexArrayState{}
	gl.GenVertexArrays(1, &state.vao)
	gl.BindVertexArray(state.vao)
	gl.GenBuffers(int32(len(state.buffers)), &state.buffers[0])

	attrib := func(buffer uint32, index uint32, size int32, data []float32) {
		gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
		gl.EnableVertexAttribArray(index)
		gl.VertexAttribPointer(index, size, gl.FLOAT, false, size*4, gl.PtrOffset(0))
	}
	attrib(state.buffers[0], gpu.AttribPosition, 3, m.Vertices)
	attrib(state.buffers[1], gpu.AttribNormal, 3, m.Normals)
	attrib(state.buffers[2], gpu.AttribTexCoord, 2, m.TexCoords)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, state.buffers[3])
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*2, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	d.arrays[gpu.VertexArray(state.vao)] = state
	return gpu.VertexArray(state.vao), nil
}

func (d *Device) DeleteVertexArray(v gpu.VertexArray) {
	state, ok := d.arrays[v]
	if !ok {
		d.logger.Warn().Uint32("vao", uint32(v)).Msg("delete of unknown vertex array")
		return
	}
	gl.DeleteBuffers(int32(len(state.buffers)), &state.buffers[0])
	gl.DeleteVertexArrays(1, &state.vao)
	delete(d.arrays, v)
}

func (d *Device) BeginFrame(clear color.Color) {
	r, g, b, a := clear.RGBA()
	gl.ClearColor(float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff, float32(a)/0xffff)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

func (d *Device) SetUniformMat4(loc gpu.UniformLocation, m mgl32.Mat4) {
	if loc == gpu.NoUniform {
		return
	}
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (d *Device) SetUniformVec3(loc gpu.UniformLocation, v mgl32.Vec3) {
	if loc == gpu.NoUniform {
		return
	}
	gl.Uniform3f(int32(loc), v[0], v[1], v[2])
}

func (d *Device) SetUniformFloat(loc gpu.UniformLocation, f float32) {
	if loc == gpu.NoUniform {
		return
	}
	gl.Uniform1f(int32(loc), f)
}

func (d *Device) SetUniformInt(loc gpu.UniformLocation, i int32) {
	if loc == gpu.NoUniform {
		return
	}
	gl.Uniform1i(int32(loc), i)
}

func (d *Device) BindTexture(unit uint32, t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *Device) BindVertexArray(v gpu.VertexArray) {
	gl.BindVertexArray(uint32(v))
}

func (d *Device) DrawElements(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_SHORT, gl.PtrOffset(0))
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Close deletes every object the device created.
func (d *Device) Close() {
	for _, state := range d.arrays {
		gl.DeleteBuffers(int32(len(state.buffers)), &state.buffers[0])
		gl.DeleteVertexArrays(1, &state.vao)
	}
	if len(d.textures) > 0 {
		gl.DeleteTextures(int32(len(d.textures)), &d.textures[0])
	}
	for _, p := range d.programs {
		gl.DeleteProgram(p)
	}
	d.arrays = make(map[gpu.VertexArray]*vertexArrayState)
	d.textures = nil
	d.programs = nil
}
