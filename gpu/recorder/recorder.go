// Package recorder provides a headless gpu.Device that records every call and
// tracks bound state the way a GL context would. It backs the tests and the
// bench command.
package recorder

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/mesh"
)

// ErrCompile is returned by CompileProgram when FailCompile is set.
var ErrCompile = errors.New("recorder: compile failed")

type Op uint8

const (
	OpCompileProgram Op = iota
	OpUniformLocation
	OpUploadTexture
	OpCreateVertexArray
	OpDeleteVertexArray
	OpBeginFrame
	OpUseProgram
	OpSetUniformMat4
	OpSetUniformVec3
	OpSetUniformFloat
	OpSetUniformInt
	OpBindTexture
	OpBindVertexArray
	OpDrawElements
	OpViewport
)

var opNames = [...]string{
	OpCompileProgram:    "CompileProgram",
	OpUniformLocation:   "UniformLocation",
	OpUploadTexture:     "UploadTexture",
	OpCreateVertexArray: "CreateVertexArray",
	OpDeleteVertexArray: "DeleteVertexArray",
	OpBeginFrame:        "BeginFrame",
	OpUseProgram:        "UseProgram",
	OpSetUniformMat4:    "SetUniformMat4",
	OpSetUniformVec3:    "SetUniformVec3",
	OpSetUniformFloat:   "SetUniformFloat",
	OpSetUniformInt:     "SetUniformInt",
	OpBindTexture:       "BindTexture",
	OpBindVertexArray:   "BindVertexArray",
	OpDrawElements:      "DrawElements",
	OpViewport:          "Viewport",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Call is one recorded device call. Only the fields relevant to Op are set.
type Call struct {
	Op          Op
	Program     gpu.Program
	Texture     gpu.Texture
	VertexArray gpu.VertexArray
	Location    gpu.UniformLocation
	Name        string
	Mat4        mgl32.Mat4
	Vec3        mgl32.Vec3
	Float       float32
	Int         int32
	Unit        uint32
	Count       int32
}

// Draw captures the bound state at the time of a DrawElements call.
type Draw struct {
	Program     gpu.Program
	VertexArray gpu.VertexArray
	Texture     gpu.Texture
	Count       int32
	Uniforms    map[gpu.UniformLocation]any
}

// Device is a recording gpu.Device. The zero value is not usable; call New.
type Device struct {
	// FailCompile makes CompileProgram fail.
	FailCompile bool
	// Omit lists uniform names that programs report as inactive.
	Omit map[string]bool

	Calls  []Call
	Draws  []Draw
	Faults []string

	nextProgram gpu.Program
	nextTexture gpu.Texture
	nextArray   gpu.VertexArray

	programs map[gpu.Program]map[gpu.UniformLocation]any
	arrays   map[gpu.VertexArray]int32
	deleted  map[gpu.VertexArray]bool
	textures map[gpu.Texture]image.Rectangle

	program  gpu.Program
	array    gpu.VertexArray
	units    map[uint32]gpu.Texture
	viewport [2]int
}

var _ gpu.Device = (*Device)(nil)

// New creates an empty recorder.
func New() *Device {
	return &Device{
		programs: make(map[gpu.Program]map[gpu.UniformLocation]any),
		arrays:   make(map[gpu.VertexArray]int32),
		deleted:  make(map[gpu.VertexArray]bool),
		textures: make(map[gpu.Texture]image.Rectangle),
		units:    make(map[uint32]gpu.Texture),
	}
}

func (d *Device) record(c Call) {
	d.Calls = append(d.Calls, c)
}

func (d *Device) fault(format string, args ...any) {
	d.Faults = append(d.Faults, fmt.Sprintf(format, args...))
}

func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	if d.FailCompile {
		return 0, fmt.Errorf("%w: %s", ErrCompile, src.Name)
	}
	d.nextProgram++
	p := d.nextProgram
	d.programs[p] = make(map[gpu.UniformLocation]any)
	d.record(Call{Op: OpCompileProgram, Program: p, Name: src.Name})
	return p, nil
}

func (d *Device) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	d.record(Call{Op: OpUniformLocation, Program: p, Name: name})
	if _, ok := d.programs[p]; !ok {
		d.fault("uniform location lookup on unknown program %d", p)
		return gpu.NoUniform
	}
	if d.Omit[name] {
		return gpu.NoUniform
	}
	u, ok := gpu.UniformByName(name)
	if !ok {
		return gpu.NoUniform
	}
	return gpu.UniformLocation(u)
}

func (d *Device) UploadTexture(img image.Image, wrap gpu.WrapMode) (gpu.Texture, error) {
	d.nextTexture++
	t := d.nextTexture
	d.textures[t] = img.Bounds()
	d.record(Call{Op: OpUploadTexture, Texture: t, Int: int32(wrap)})
	return t, nil
}

func (d *Device) CreateVertexArray(m *mesh.Mesh) (gpu.VertexArray, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	d.nextArray++
	v := d.nextArray
	d.arrays[v] = m.IndexCount()
	d.record(Call{Op: OpCreateVertexArray, VertexArray: v, Count: m.IndexCount()})
	return v, nil
}

func (d *Device) DeleteVertexArray(v gpu.VertexArray) {
	if _, ok := d.arrays[v]; !ok {
		d.fault("delete of unknown vertex array %d", v)
	} else {
		delete(d.arrays, v)
		d.deleted[v] = true
	}
	d.record(Call{Op: OpDeleteVertexArray, VertexArray: v})
}

// LiveVertexArrays returns how many vertex arrays exist on the device.
func (d *Device) LiveVertexArrays() int {
	return len(d.arrays)
}

func (d *Device) BeginFrame(clear color.Color) {
	d.record(Call{Op: OpBeginFrame})
}

func (d *Device) UseProgram(p gpu.Program) {
	if _, ok := d.programs[p]; !ok {
		d.fault("use of unknown program %d", p)
	}
	d.program = p
	d.record(Call{Op: OpUseProgram, Program: p})
}

func (d *Device) setUniform(loc gpu.UniformLocation, v any) {
	if loc == gpu.NoUniform {
		return
	}
	uniforms, ok := d.programs[d.program]
	if !ok {
		d.fault("uniform %d set without a bound program", loc)
		return
	}
	uniforms[loc] = v
}

func (d *Device) SetUniformMat4(loc gpu.UniformLocation, m mgl32.Mat4) {
	d.setUniform(loc, m)
	d.record(Call{Op: OpSetUniformMat4, Program: d.program, Location: loc, Mat4: m})
}

func (d *Device) SetUniformVec3(loc gpu.UniformLocation, v mgl32.Vec3) {
	d.setUniform(loc, v)
	d.record(Call{Op: OpSetUniformVec3, Program: d.program, Location: loc, Vec3: v})
}

func (d *Device) SetUniformFloat(loc gpu.UniformLocation, f float32) {
	d.setUniform(loc, f)
	d.record(Call{Op: OpSetUniformFloat, Program: d.program, Location: loc, Float: f})
}

func (d *Device) SetUniformInt(loc gpu.UniformLocation, i int32) {
	d.setUniform(loc, i)
	d.record(Call{Op: OpSetUniformInt, Program: d.program, Location: loc, Int: i})
}

func (d *Device) BindTexture(unit uint32, t gpu.Texture) {
	if _, ok := d.textures[t]; !ok {
		d.fault("bind of unknown texture %d", t)
	}
	d.units[unit] = t
	d.record(Call{Op: OpBindTexture, Unit: unit, Texture: t})
}

func (d *Device) BindVertexArray(v gpu.VertexArray) {
	if d.deleted[v] {
		d.fault("bind of deleted vertex array %d", v)
	} else if _, ok := d.arrays[v]; !ok {
		d.fault("bind of unknown vertex array %d", v)
	}
	d.array = v
	d.record(Call{Op: OpBindVertexArray, VertexArray: v})
}

func (d *Device) DrawElements(count int32) {
	d.record(Call{Op: OpDrawElements, Program: d.program, VertexArray: d.array, Count: count})

	if d.program == 0 {
		d.fault("draw without a program")
	}
	if n, ok := d.arrays[d.array]; !ok {
		d.fault("draw without a vertex array")
	} else if count > n {
		d.fault("draw of %d indices from a vertex array holding %d", count, n)
	}

	uniforms := make(map[gpu.UniformLocation]any, len(d.programs[d.program]))
	for k, v := range d.programs[d.program] {
		uniforms[k] = v
	}
	d.Draws = append(d.Draws, Draw{
		Program:     d.program,
		VertexArray: d.array,
		Texture:     d.units[0],
		Count:       count,
		Uniforms:    uniforms,
	})
}

func (d *Device) Viewport(width, height int) {
	d.viewport = [2]int{width, height}
	d.record(Call{Op: OpViewport, Int: int32(width), Count: int32(height)})
}

// Count returns how many calls of op were recorded.
func (d *Device) Count(op Op) int {
	n := 0
	for _, c := range d.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls and draws but keeps every created object.
func (d *Device) Reset() {
	d.Calls = d.Calls[:0]
	d.Draws = d.Draws[:0]
	d.Faults = d.Faults[:0]
}
