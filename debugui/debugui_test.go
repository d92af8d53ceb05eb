package debugui_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/orrery/camera"
	"github.com/plus3/orrery/debugui"
	"github.com/plus3/orrery/ecs"
)

func TestFrameHistory(t *testing.T) {
	h := debugui.NewFrameHistory(3)
	assert.Zero(t, h.Average())
	assert.Zero(t, h.FPS())

	h.Record(0.010)
	h.Record(0.030)
	assert.InDelta(t, 20, h.Average(), 1e-4)
	assert.InDelta(t, 50, h.FPS(), 1e-3)

	h.Record(0.020)
	h.Record(0.040)
	assert.InDelta(t, 30, h.Average(), 1e-4, "the oldest sample is overwritten")
}

func buildStorage() (*ecs.Storage, ecs.EntityId, ecs.EntityId, ecs.EntityId) {
	storage := ecs.NewStorage()
	sun := storage.Create(ecs.Render{}, ecs.NewTransform(mgl32.Vec3{}), ecs.Light{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1})
	earth := storage.Create(ecs.Render{}, ecs.NewTransform(mgl32.Vec3{100, 0, 0}), ecs.Rotation{Speed: 1})
	marker := storage.Create(ecs.NewTransform(mgl32.Vec3{}))
	return storage, sun, earth, marker
}

func TestEntityBrowserRefresh(t *testing.T) {
	storage, sun, earth, marker := buildStorage()
	names := map[ecs.EntityId]string{sun: "Sun", earth: "Earth"}

	eb := debugui.NewEntityBrowser(10)
	eb.Names = func(id ecs.EntityId) string { return names[id] }
	eb.Refresh(storage)

	rows := eb.Filtered()
	require.Len(t, rows, 3)
	assert.Equal(t, []ecs.EntityId{sun, earth, marker}, []ecs.EntityId{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, "Sun", rows[0].Name)

	require.NoError(t, storage.AddComponent(marker, ecs.Rotation{}))
	eb.Refresh(storage)
	rows = eb.Filtered()
	assert.True(t, rows[2].Mask.Has(ecs.KindRotation), "mask changes rebuild the cache")

	eb.Select(earth)
	require.NoError(t, storage.Destroy(earth))
	eb.Refresh(storage)
	assert.Len(t, eb.Filtered(), 2)
	assert.Zero(t, eb.Selected(), "destroyed selections are cleared")
}

func TestEntityBrowserFilterAndSort(t *testing.T) {
	storage, sun, earth, marker := buildStorage()
	names := map[ecs.EntityId]string{sun: "Sun", earth: "Earth"}

	eb := debugui.NewEntityBrowser(10)
	eb.Names = func(id ecs.EntityId) string { return names[id] }
	eb.Refresh(storage)

	eb.SetFilter("earth")
	rows := eb.Filtered()
	require.Len(t, rows, 1)
	assert.Equal(t, earth, rows[0].ID)

	eb.SetFilter("light")
	rows = eb.Filtered()
	require.Len(t, rows, 1)
	assert.Equal(t, sun, rows[0].ID)

	eb.SetFilter("")
	eb.SortBy(1, true)
	rows = eb.Filtered()
	assert.Equal(t, []ecs.EntityId{marker, earth, sun}, []ecs.EntityId{rows[0].ID, rows[1].ID, rows[2].ID})

	eb.SortBy(0, false)
	rows = eb.Filtered()
	assert.Equal(t, marker, rows[0].ID)
}

func TestQueryDebuggerMatch(t *testing.T) {
	storage, _, _, _ := buildStorage()
	stats := storage.CollectStats()

	qd := debugui.NewQueryDebugger()
	qd.Toggle(ecs.KindRender, true)
	assert.Equal(t, ecs.MaskOf(ecs.KindRender), qd.Mask())

	combos, n := debugui.Match(stats, qd.Mask())
	assert.Len(t, combos, 2)
	assert.Equal(t, 2, n)

	qd.Toggle(ecs.KindLight, true)
	_, n = debugui.Match(stats, qd.Mask())
	assert.Equal(t, 1, n)

	_, n = debugui.Match(stats, ecs.MaskOf(ecs.KindTransform))
	assert.Equal(t, 3, n)
}

func TestCameraPanelReset(t *testing.T) {
	cam := camera.New()
	panel := debugui.NewCameraPanel(cam, nil)

	cam.SetPosition(mgl32.Vec3{5, 5, 5})
	cam.SetFOV(1)
	cam.SetViewport(200, 100)
	panel.Reset()

	assert.Equal(t, camera.DefaultPosition, cam.Position)
	assert.Equal(t, camera.DefaultFOV, cam.FOV)
	assert.Equal(t, float32(2), cam.Aspect, "reset keeps the window aspect")
}
