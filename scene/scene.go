// Package scene assembles a renderable world from a Definition: it registers
// meshes, textures and shaders, spawns one entity per body, configures the
// camera and wires the Input, Rotation and Render systems into a scheduler.
package scene

import (
	"embed"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/plus3/orrery/camera"
	"github.com/plus3/orrery/ecs"
	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/input"
	"github.com/plus3/orrery/mesh"
	"github.com/plus3/orrery/resource"
	"github.com/plus3/orrery/systems"
)

//go:embed shaders
var shaderFS embed.FS

// Shaders returns the lit planet program and the unlit star program.
func Shaders() (planet, star gpu.ProgramSource, err error) {
	read := func(name string) (string, error) {
		bz, err := fs.ReadFile(shaderFS, "shaders/"+name)
		if err != nil {
			return "", eris.Wrapf(err, "read shader %s", name)
		}
		return string(bz), nil
	}

	vertex, err := read("body.vert")
	if err != nil {
		return planet, star, err
	}
	planetFrag, err := read("planet.frag")
	if err != nil {
		return planet, star, err
	}
	starFrag, err := read("star.frag")
	if err != nil {
		return planet, star, err
	}

	planet = gpu.ProgramSource{Name: "planet", Vertex: vertex, Fragment: planetFrag, Shading: gpu.ShadingLit}
	star = gpu.ProgramSource{Name: "star", Vertex: vertex, Fragment: starFrag, Shading: gpu.ShadingUnlit}
	return planet, star, nil
}

// Options tune how a scene is built. Zero values select defaults.
type Options struct {
	AssetDir           string
	MaxTextureSize     int
	RotationWorkers    int
	MoveSpeed          float32
	TurnSpeed          float32
	PointerSensitivity float32
}

// Scene is the explicit context every frame runs against.
type Scene struct {
	Storage   *ecs.Storage
	Camera    *camera.Camera
	Resources *resource.Registry
	Input     *input.State
	Scheduler *ecs.Scheduler

	InputSystem    *systems.InputSystem
	RotationSystem *systems.RotationSystem
	RenderSystem   *systems.RenderSystem

	logger zerolog.Logger
	names  []string
	bodies map[string]ecs.EntityId
}

type builder struct {
	scene    *Scene
	opts     Options
	textures map[string]resource.TextureHandle
	sphere   resource.MeshHandle
	planet   resource.ShaderHandle
	star     resource.ShaderHandle
}

// New builds a scene on device. Invalid definitions and cameras are returned
// as errors; missing texture files are replaced by solid placeholders.
func New(device gpu.Device, def *Definition, opts Options, logger zerolog.Logger) (*Scene, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxTextureSize == 0 {
		opts.MaxTextureSize = resource.DefaultMaxTextureSize
	}

	cam, err := newCamera(def.Camera)
	if err != nil {
		return nil, err
	}

	storage := ecs.NewStorage()
	s := &Scene{
		Storage:   storage,
		Camera:    cam,
		Resources: resource.NewRegistry(device, logger),
		Input:     input.NewState(),
		Scheduler: ecs.NewScheduler(storage),
		logger:    logger,
		bodies:    make(map[string]ecs.EntityId, len(def.Bodies)),
	}

	tess := def.Tessellation.withDefaults()
	b := &builder{scene: s, opts: opts, textures: make(map[string]resource.TextureHandle)}
	if err := b.loadShared(tess); err != nil {
		return nil, err
	}
	for _, body := range def.Bodies {
		if err := b.spawn(body, tess); err != nil {
			return nil, eris.Wrapf(err, "body %s", body.Name)
		}
	}

	s.InputSystem = systems.NewInputSystem(cam, s.Input)
	if opts.MoveSpeed > 0 {
		s.InputSystem.MoveSpeed = opts.MoveSpeed
	}
	if opts.TurnSpeed > 0 {
		s.InputSystem.TurnSpeed = opts.TurnSpeed
	}
	if opts.PointerSensitivity > 0 {
		s.InputSystem.PointerSensitivity = opts.PointerSensitivity
	}
	s.RotationSystem = &systems.RotationSystem{Workers: opts.RotationWorkers}
	s.RenderSystem = systems.NewRenderSystem(cam, s.Resources, logger)
	s.RenderSystem.ClearColor = toColor(def.Background)

	s.Scheduler.RegisterNamed("input", s.InputSystem)
	s.Scheduler.RegisterNamed("rotation", s.RotationSystem)
	s.Scheduler.RegisterNamed("render", s.RenderSystem)

	meshes, textures, shaders := s.Resources.Counts()
	logger.Info().
		Str("scene", def.Name).
		Int("entities", storage.Len()).
		Int("meshes", meshes).
		Int("textures", textures).
		Int("shaders", shaders).
		Msg("scene ready")

	return s, nil
}

func newCamera(spec CameraSpec) (*camera.Camera, error) {
	cam := camera.New()
	if v := mgl32.Vec3(spec.Position); v != (mgl32.Vec3{}) {
		cam.SetPosition(v)
	}
	if v := mgl32.Vec3(spec.Front); v != (mgl32.Vec3{}) {
		cam.SetFront(v)
	}
	if v := mgl32.Vec3(spec.Up); v != (mgl32.Vec3{}) {
		cam.SetUp(v)
	}
	if spec.FOV != 0 {
		cam.SetFOV(spec.FOV)
	}
	if spec.Near != 0 {
		cam.SetNear(spec.Near)
	}
	if spec.Far != 0 {
		cam.SetFar(spec.Far)
	}
	if err := cam.Validate(); err != nil {
		return nil, err
	}
	cam.Orthonormalize()
	return cam, nil
}

func toColor(v Vec3) color.Color {
	return color.RGBA{R: unit8(v[0]), G: unit8(v[1]), B: unit8(v[2]), A: 0xff}
}

func unit8(f float32) uint8 {
	return uint8(min(max(f, 0), 1)*255 + 0.5)
}

func (b *builder) loadShared(t Tessellation) error {
	planet, star, err := Shaders()
	if err != nil {
		return err
	}
	if b.planet, err = b.scene.Resources.AddShader(planet); err != nil {
		return err
	}
	if b.star, err = b.scene.Resources.AddShader(star); err != nil {
		return err
	}
	b.sphere, err = b.scene.Resources.AddMesh(mesh.Sphere(1, t.Latitude, t.Longitude))
	return err
}

func (b *builder) texture(body Body) (resource.TextureHandle, error) {
	reg := b.scene.Resources
	if body.Texture != "" {
		path := body.Texture
		if !filepath.IsAbs(path) && b.opts.AssetDir != "" {
			path = filepath.Join(b.opts.AssetDir, path)
		}
		if h, ok := b.textures[path]; ok {
			return h, nil
		}
		if _, err := os.Stat(path); err == nil {
			h, err := reg.LoadTexture(path, gpu.WrapRepeat, b.opts.MaxTextureSize)
			if err != nil {
				return 0, err
			}
			b.textures[path] = h
			return h, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return 0, eris.Wrapf(err, "stat texture %s", path)
		}
		b.scene.logger.Warn().Str("body", body.Name).Str("path", path).Msg("texture missing, using placeholder")
	}

	key := fmt.Sprintf("color:%v", body.Color)
	if h, ok := b.textures[key]; ok {
		return h, nil
	}
	h, err := reg.AddSolidTexture(toColor(body.Color))
	if err != nil {
		return 0, err
	}
	b.textures[key] = h
	return h, nil
}

func (b *builder) spawn(body Body, t Tessellation) error {
	tex, err := b.texture(body)
	if err != nil {
		return err
	}

	tr := ecs.Transform{
		Position: mgl32.Vec3(body.Position),
		Rotation: mgl32.Vec3(body.Tilt),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	r := ecs.Render{Texture: tex, Shader: b.planet, Mesh: b.sphere}

	switch body.Kind {
	case BodyStar:
		r.Shader = b.star
		tr.Scale = mgl32.Vec3{body.Radius, body.Radius, body.Radius}
	case BodyPlanet:
		tr.Scale = mgl32.Vec3{body.Radius, body.Radius, body.Radius}
	case BodyRing:
		r.Mesh, err = b.scene.Resources.AddMesh(mesh.Ring(body.InnerRadius, body.OuterRadius, t.Ring))
		if err != nil {
			return err
		}
	}

	components := []ecs.Component{r, tr, ecs.Rotation{Axis: mgl32.Vec3(body.Axis), Speed: body.RotationSpeed}}
	if body.Light != nil {
		components = append(components, ecs.Light{Color: mgl32.Vec3(body.Light.Color), Intensity: body.Light.Intensity})
	}

	id := b.scene.Storage.Create(components...)
	b.scene.names = append(b.scene.names, body.Name)
	b.scene.bodies[body.Name] = id

	b.scene.logger.Debug().
		Str("body", body.Name).
		Str("kind", string(body.Kind)).
		Stringer("entity", id).
		Msg("body spawned")
	return nil
}

// Frame advances the scene by dt seconds and renders it.
func (s *Scene) Frame(dt float64) error {
	return s.Scheduler.Once(dt)
}

// Resize updates the camera aspect ratio and the device viewport.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.Camera.SetViewport(width, height)
	s.Resources.Device().Viewport(width, height)
}

// Body returns the entity spawned for a named body.
func (s *Scene) Body(name string) (ecs.EntityId, bool) {
	id, ok := s.bodies[name]
	return id, ok
}

// BodyNames lists bodies in spawn order.
func (s *Scene) BodyNames() []string {
	return s.names
}
