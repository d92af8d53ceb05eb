package resource_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/gpu"
	"github.com/plus3/orrery/gpu/recorder"
	"github.com/plus3/orrery/mesh"
	"github.com/plus3/orrery/resource"
)

func newRegistry() (*resource.Registry, *recorder.Device) {
	device := recorder.New()
	return resource.NewRegistry(device, zerolog.Nop()), device
}

func TestMeshHandles(t *testing.T) {
	reg, _ := newRegistry()

	first, err := reg.AddMesh(mesh.Sphere(1, 4, 4))
	require.NoError(t, err)
	second, err := reg.AddMesh(mesh.Ring(1, 2, 8))
	require.NoError(t, err)
	assert.Equal(t, resource.MeshHandle(1), first)
	assert.Equal(t, resource.MeshHandle(2), second)

	m, err := reg.Mesh(second)
	require.NoError(t, err)
	assert.Equal(t, mesh.Ring(1, 2, 8).IndexCount(), m.IndexCount())

	_, err = reg.Mesh(0)
	assert.ErrorIs(t, err, resource.ErrNotFound)
	_, err = reg.Mesh(3)
	assert.ErrorIs(t, err, resource.ErrNotFound)

	_, err = reg.AddMesh(nil)
	assert.Error(t, err)
	_, err = reg.AddMesh(&mesh.Mesh{Vertices: []float32{0, 0, 0}, Indices: []uint16{0, 1, 2}})
	assert.Error(t, err)

	meshes, _, _ := reg.Counts()
	assert.Equal(t, 2, meshes, "rejected meshes take no handle")
}

func TestTextureWrapFollowsPowerOfTwo(t *testing.T) {
	reg, device := newRegistry()

	pot, err := reg.AddTexture(image.NewRGBA(image.Rect(0, 0, 8, 4)), gpu.WrapRepeat)
	require.NoError(t, err)
	npot, err := reg.AddTexture(image.NewRGBA(image.Rect(0, 0, 6, 4)), gpu.WrapRepeat)
	require.NoError(t, err)

	info, err := reg.Texture(pot)
	require.NoError(t, err)
	assert.Equal(t, gpu.WrapRepeat, info.Wrap)
	assert.Equal(t, 8, info.Width)

	info, err = reg.Texture(npot)
	require.NoError(t, err)
	assert.Equal(t, gpu.WrapClampToEdge, info.Wrap)

	assert.Equal(t, 2, device.Count(recorder.OpUploadTexture))

	_, err = reg.Texture(9)
	assert.ErrorIs(t, err, resource.ErrNotFound)
	_, err = reg.AddTexture(nil, gpu.WrapRepeat)
	assert.Error(t, err)
}

func TestSolidTexture(t *testing.T) {
	reg, _ := newRegistry()
	h, err := reg.AddSolidTexture(color.RGBA{R: 255, A: 255})
	require.NoError(t, err)

	info, err := reg.Texture(h)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Width)
	assert.Equal(t, gpu.WrapRepeat, info.Wrap)
}

func TestLoadTextureScalesDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 16))))
	require.NoError(t, f.Close())

	img, err := resource.DecodeTexture(path, 32)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 8), img.Bounds())

	img, err = resource.DecodeTexture(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	reg, _ := newRegistry()
	h, err := reg.LoadTexture(path, gpu.WrapRepeat, 16)
	require.NoError(t, err)
	info, err := reg.Texture(h)
	require.NoError(t, err)
	assert.Equal(t, 16, info.Width)
	assert.Equal(t, 4, info.Height)

	_, err = reg.LoadTexture(filepath.Join(t.TempDir(), "missing.png"), gpu.WrapRepeat, 0)
	assert.Error(t, err)
}

func TestShaderUniformLocations(t *testing.T) {
	reg, device := newRegistry()
	device.Omit = map[string]bool{"uLightIntensity": true}

	h, err := reg.AddShader(gpu.ProgramSource{Name: "planet"})
	require.NoError(t, err)

	shader, err := reg.Shader(h)
	require.NoError(t, err)
	assert.Equal(t, "planet", shader.Name)
	assert.Equal(t, gpu.NoUniform, shader.Locations[gpu.UniformLightIntensity])

	loc, err := reg.UniformLocation(h, gpu.UniformModel)
	require.NoError(t, err)
	assert.Equal(t, gpu.UniformLocation(gpu.UniformModel), loc)

	loc, err = reg.UniformLocation(h, gpu.UniformLightIntensity)
	require.NoError(t, err, "inactive uniforms resolve to NoUniform")
	assert.Equal(t, gpu.NoUniform, loc)

	_, err = reg.UniformLocation(h+1, gpu.UniformModel)
	assert.ErrorIs(t, err, resource.ErrNotFound)
	_, err = reg.UniformLocation(h, gpu.UniformCount)
	assert.Error(t, err)

	assert.Equal(t, int(gpu.UniformCount), device.Count(recorder.OpUniformLocation))

	for u := gpu.Uniform(0); u < gpu.UniformCount; u++ {
		loc, err := reg.UniformLocation(h, u)
		require.NoError(t, err)
		assert.Equal(t, shader.Locations[u], loc, u.Name())
	}
}

func TestShaderCompileFailure(t *testing.T) {
	reg, device := newRegistry()
	device.FailCompile = true

	_, err := reg.AddShader(gpu.ProgramSource{Name: "broken"})
	assert.ErrorIs(t, err, recorder.ErrCompile)

	_, _, shaders := reg.Counts()
	assert.Zero(t, shaders)
}
