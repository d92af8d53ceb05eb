package ecs

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/resource"
)

// ComponentKind identifies one of the closed set of component types.
type ComponentKind uint8

const (
	KindRender ComponentKind = iota
	KindTransform
	KindRotation
	KindLight

	KindCount
)

var kindNames = [KindCount]string{
	KindRender:    "Render",
	KindTransform: "Transform",
	KindRotation:  "Rotation",
	KindLight:     "Light",
}

func (k ComponentKind) String() string {
	if k < KindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("ComponentKind(%d)", k)
}

// KindByName looks up a kind by its case-insensitive name.
func KindByName(name string) (ComponentKind, bool) {
	for k := ComponentKind(0); k < KindCount; k++ {
		if strings.EqualFold(kindNames[k], name) {
			return k, true
		}
	}
	return 0, false
}

// KindMask is a set of component kinds.
type KindMask uint8

// MaskOf builds a mask from a list of kinds.
func MaskOf(kinds ...ComponentKind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

func (m KindMask) Has(k ComponentKind) bool {
	return m&(1<<k) != 0
}

// Contains reports whether every kind in other is also in m.
func (m KindMask) Contains(other KindMask) bool {
	return m&other == other
}

func (m KindMask) Len() int {
	return bits.OnesCount8(uint8(m))
}

func (m KindMask) String() string {
	if m == 0 {
		return "{}"
	}
	parts := make([]string, 0, KindCount)
	for k := ComponentKind(0); k < KindCount; k++ {
		if m.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Component is implemented by the four component types of this package only.
type Component interface {
	Kind() ComponentKind
	component()
}

// ErrVertexArrayBound is returned when binding a vertex array to a Render
// component that already has one.
var ErrVertexArrayBound = errors.New("vertex array already bound")

// VertexArrayState is either unbound or bound to exactly one vertex array.
// The zero value is unbound.
type VertexArrayState struct {
	handle gpu.VertexArray
	bound  bool
}

// Get returns the bound vertex array, if any.
func (s VertexArrayState) Get() (gpu.VertexArray, bool) {
	return s.handle, s.bound
}

// Bind transitions an unbound state to bound.
func (s *VertexArrayState) Bind(handle gpu.VertexArray) error {
	if s.bound {
		return ErrVertexArrayBound
	}
	s.handle = handle
	s.bound = true
	return nil
}

// Render makes an entity drawable.
type Render struct {
	Mesh        resource.MeshHandle
	Texture     resource.TextureHandle
	Shader      resource.ShaderHandle
	VertexArray VertexArrayState
}

// Transform places an entity in world space. Rotation holds Euler angles in
// radians, applied X then Y then Z.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewTransform returns a transform at position with unit scale.
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{Position: position, Scale: mgl32.Vec3{1, 1, 1}}
}

// Rotation spins an entity about Axis at Speed radians per second. A zero
// axis spins about Y.
type Rotation struct {
	Axis  mgl32.Vec3
	Speed float32
}

// Light marks an entity as the scene's point light.
type Light struct {
	Color     mgl32.Vec3
	Intensity float32
}

func (Render) Kind() ComponentKind    { return KindRender }
func (Transform) Kind() ComponentKind { return KindTransform }
func (Rotation) Kind() ComponentKind  { return KindRotation }
func (Light) Kind() ComponentKind     { return KindLight }

func (Render) component()    {}
func (Transform) component() {}
func (Rotation) component()  {}
func (Light) component()     {}

// ComponentSet is a view over one entity's components. Nil fields are absent.
// Pointers stay valid until the component is removed or the entity destroyed.
type ComponentSet struct {
	Render    *Render
	Transform *Transform
	Rotation  *Rotation
	Light     *Light
}

// Mask returns the kinds present in the set.
func (c ComponentSet) Mask() KindMask {
	var m KindMask
	if c.Render != nil {
		m |= 1 << KindRender
	}
	if c.Transform != nil {
		m |= 1 << KindTransform
	}
	if c.Rotation != nil {
		m |= 1 << KindRotation
	}
	if c.Light != nil {
		m |= 1 << KindLight
	}
	return m
}

// Get returns the component of kind k as a pointer, or nil if absent.
func (c ComponentSet) Get(k ComponentKind) Component {
	switch k {
	case KindRender:
		if c.Render != nil {
			return c.Render
		}
	case KindTransform:
		if c.Transform != nil {
			return c.Transform
		}
	case KindRotation:
		if c.Rotation != nil {
			return c.Rotation
		}
	case KindLight:
		if c.Light != nil {
			return c.Light
		}
	}
	return nil
}
