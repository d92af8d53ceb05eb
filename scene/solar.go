package scene

const (
	DefaultLatitudeSegments  = 20
	DefaultLongitudeSegments = 20
	DefaultRingSegments      = 64
)

const (
	// RadiusUnit is one Earth radius.
	RadiusUnit = float32(1)
	// DistanceUnit is one astronomical unit, measured from the Sun's surface.
	DistanceUnit = float32(100)
	// SpeedUnit is Earth's spin in radians per second.
	SpeedUnit = float32(1)
)

const sunRadius = 109.2 * RadiusUnit

type planetRow struct {
	name     string
	radius   float32
	distance float32
	speed    float32
	texture  string
	color    Vec3
}

var planets = []planetRow{
	{"Mercury", 0.38, 0.387, 0.241, "mercury.jpg", Vec3{0.55, 0.53, 0.5}},
	{"Venus", 0.95, 0.723, 0.615, "venus.jpg", Vec3{0.9, 0.78, 0.55}},
	{"Earth", 1, 1, 1, "earth.jpg", Vec3{0.2, 0.4, 0.8}},
	{"Mars", 0.53, 1.524, 1.03, "mars.jpg", Vec3{0.75, 0.35, 0.2}},
	{"Jupiter", 11.2, 5.203, 0.415, "jupiter.jpg", Vec3{0.8, 0.65, 0.5}},
	{"Saturn", 9.45, 9.537, 0.445, "saturn.jpg", Vec3{0.85, 0.75, 0.55}},
	{"Uranus", 4, 19.191, 0.72, "uranus.jpg", Vec3{0.6, 0.85, 0.9}},
	{"Neptune", 3.88, 30.069, 0.67, "neptune.jpg", Vec3{0.3, 0.45, 0.9}},
}

type ringRow struct {
	planet       string
	inner, outer float32
	texture      string
	color        Vec3
}

var rings = []ringRow{
	{"Saturn", 10, 15, "saturnRing.jpg", Vec3{0.8, 0.7, 0.55}},
	{"Uranus", 4.65, 6.45, "uranusRing.jpg", Vec3{0.55, 0.7, 0.75}},
}

func orbit(distance float32) Vec3 {
	return Vec3{sunRadius + distance*DistanceUnit, 0, 0}
}

// DefaultDefinition returns the Sun, the eight planets and the rings of
// Saturn and Uranus laid out along +X.
func DefaultDefinition() *Definition {
	d := &Definition{
		Name: "solar-system",
		Camera: CameraSpec{
			Position: Vec3{sunRadius + 100, 40, 260},
			Front:    Vec3{0, -0.15, -1},
			Up:       Vec3{0, 1, 0},
			FOV:      1.0471976,
			Near:     1,
			Far:      5000,
		},
		Tessellation: Tessellation{
			Latitude:  DefaultLatitudeSegments,
			Longitude: DefaultLongitudeSegments,
			Ring:      DefaultRingSegments,
		},
	}

	d.Bodies = append(d.Bodies, Body{
		Name:          "Sun",
		Kind:          BodyStar,
		Radius:        sunRadius,
		RotationSpeed: 24.47 * SpeedUnit,
		Texture:       "sun.jpg",
		Color:         Vec3{1, 0.85, 0.4},
		Light:         &LightSpec{Color: Vec3{1, 1, 1}, Intensity: 1},
	})

	for _, p := range planets {
		d.Bodies = append(d.Bodies, Body{
			Name:          p.name,
			Kind:          BodyPlanet,
			Radius:        p.radius * RadiusUnit,
			Position:      orbit(p.distance),
			RotationSpeed: p.speed * SpeedUnit,
			Texture:       p.texture,
			Color:         p.color,
		})
	}

	for _, r := range rings {
		host := d.body(r.planet)
		d.Bodies = append(d.Bodies, Body{
			Name:          r.planet + " Ring",
			Kind:          BodyRing,
			InnerRadius:   r.inner * RadiusUnit,
			OuterRadius:   r.outer * RadiusUnit,
			Position:      host.Position,
			RotationSpeed: host.RotationSpeed,
			Texture:       r.texture,
			Color:         r.color,
		})
	}

	return d
}

func (d *Definition) body(name string) *Body {
	for i := range d.Bodies {
		if d.Bodies[i].Name == name {
			return &d.Bodies[i]
		}
	}
	return nil
}
