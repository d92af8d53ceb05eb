package scene

import (
	"errors"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// ErrInvalidDefinition is returned when a scene definition cannot be built.
var ErrInvalidDefinition = errors.New("invalid scene definition")

// BodyKind selects the mesh and shader a body is drawn with.
type BodyKind string

const (
	BodyStar   BodyKind = "star"
	BodyPlanet BodyKind = "planet"
	BodyRing   BodyKind = "ring"
)

// Vec3 is a JSON friendly vector.
type Vec3 [3]float32

// Body describes one drawable object. Stars and planets are spheres of the
// given Radius; rings span InnerRadius to OuterRadius in their local XZ plane.
type Body struct {
	Name        string   `json:"name"`
	Kind        BodyKind `json:"kind"`
	Radius      float32  `json:"radius,omitempty"`
	InnerRadius float32  `json:"innerRadius,omitempty"`
	OuterRadius float32  `json:"outerRadius,omitempty"`
	Position    Vec3     `json:"position"`
	// Tilt is the initial Euler rotation in radians.
	Tilt Vec3 `json:"tilt"`
	// Axis defaults to +Y when zero.
	Axis Vec3 `json:"axis"`
	// RotationSpeed is in radians per second.
	RotationSpeed float32 `json:"rotationSpeed"`
	Texture       string  `json:"texture,omitempty"`
	// Color fills the placeholder texture used when Texture cannot be loaded.
	Color Vec3       `json:"color"`
	Light *LightSpec `json:"light,omitempty"`
}

type LightSpec struct {
	Color     Vec3    `json:"color"`
	Intensity float32 `json:"intensity"`
}

// CameraSpec is the initial camera. FOV is in radians.
type CameraSpec struct {
	Position Vec3    `json:"position"`
	Front    Vec3    `json:"front"`
	Up       Vec3    `json:"up"`
	FOV      float32 `json:"fov"`
	Near     float32 `json:"near"`
	Far      float32 `json:"far"`
}

// Tessellation controls mesh resolution.
type Tessellation struct {
	Latitude  int `json:"latitude"`
	Longitude int `json:"longitude"`
	Ring      int `json:"ring"`
}

func (t Tessellation) withDefaults() Tessellation {
	if t.Latitude == 0 {
		t.Latitude = DefaultLatitudeSegments
	}
	if t.Longitude == 0 {
		t.Longitude = DefaultLongitudeSegments
	}
	if t.Ring == 0 {
		t.Ring = DefaultRingSegments
	}
	return t
}

// Definition is a complete scene description.
type Definition struct {
	Name         string       `json:"name"`
	Background   Vec3         `json:"background"`
	Camera       CameraSpec   `json:"camera"`
	Tessellation Tessellation `json:"tessellation"`
	Bodies       []Body       `json:"bodies"`
}

// Validate checks the definition for values the scene cannot be built from.
func (d *Definition) Validate() error {
	if len(d.Bodies) == 0 {
		return eris.Wrap(ErrInvalidDefinition, "no bodies")
	}

	names := make(map[string]struct{}, len(d.Bodies))
	for i, b := range d.Bodies {
		if b.Name == "" {
			return eris.Wrapf(ErrInvalidDefinition, "body %d has no name", i)
		}
		if _, dup := names[b.Name]; dup {
			return eris.Wrapf(ErrInvalidDefinition, "duplicate body %q", b.Name)
		}
		names[b.Name] = struct{}{}

		switch b.Kind {
		case BodyStar, BodyPlanet:
			if b.Radius <= 0 {
				return eris.Wrapf(ErrInvalidDefinition, "body %q: radius must be positive", b.Name)
			}
		case BodyRing:
			if b.InnerRadius < 0 || b.OuterRadius <= b.InnerRadius {
				return eris.Wrapf(ErrInvalidDefinition, "ring %q: need 0 <= inner < outer", b.Name)
			}
		default:
			return eris.Wrapf(ErrInvalidDefinition, "body %q: unknown kind %q", b.Name, b.Kind)
		}

		if b.Light != nil && b.Light.Intensity < 0 {
			return eris.Wrapf(ErrInvalidDefinition, "body %q: negative light intensity", b.Name)
		}
	}
	return nil
}

// Decode reads a JSON definition. Missing tessellation values fall back to
// the defaults.
func Decode(r io.Reader) (*Definition, error) {
	var d Definition
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, eris.Wrap(err, "decode scene")
	}
	d.Tessellation = d.Tessellation.withDefaults()
	return &d, nil
}

// Load reads a definition file.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open scene %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes d as indented JSON.
func (d *Definition) Encode(w io.Writer) error {
	bz, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode scene")
	}
	if _, err := w.Write(append(bz, '\n')); err != nil {
		return eris.Wrap(err, "write scene")
	}
	return nil
}
