package ecs_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/orrery/ecs"
)

func BenchmarkCreate(b *testing.B) {
	storage := ecs.NewStorage()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Create(ecs.NewTransform(mgl32.Vec3{1, 2, 3}), ecs.Rotation{Speed: 1})
	}
}

func BenchmarkCreateWithAllComponents(b *testing.B) {
	storage := ecs.NewStorage()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Create(
			ecs.Render{Mesh: 1, Texture: 1, Shader: 1},
			ecs.NewTransform(mgl32.Vec3{1, 2, 3}),
			ecs.Rotation{Speed: 1},
			ecs.Light{Intensity: 1},
		)
	}
}

func BenchmarkDestroy(b *testing.B) {
	storage := ecs.NewStorage()

	ids := make([]ecs.EntityId, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = storage.Create(ecs.NewTransform(mgl32.Vec3{}), ecs.Rotation{Speed: 1})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = storage.Destroy(ids[i])
	}
}

func BenchmarkRead(b *testing.B) {
	storage := ecs.NewStorage()
	id := storage.Create(ecs.NewTransform(mgl32.Vec3{1, 2, 3}))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.Read[ecs.Transform](storage, id)
	}
}

func benchmarkIter(b *testing.B, entities int) {
	storage := ecs.NewStorage()
	for i := 0; i < entities; i++ {
		if i%2 == 0 {
			storage.Create(ecs.NewTransform(mgl32.Vec3{}), ecs.Rotation{Speed: 1})
		} else {
			storage.Create(ecs.NewTransform(mgl32.Vec3{}))
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, set := range storage.Iter(ecs.KindTransform, ecs.KindRotation) {
			set.Transform.Rotation[1] += set.Rotation.Speed * 0.016
		}
	}
}

func BenchmarkIter100(b *testing.B)   { benchmarkIter(b, 100) }
func BenchmarkIter10000(b *testing.B) { benchmarkIter(b, 10000) }

func BenchmarkSchedulerOnce(b *testing.B) {
	storage := ecs.NewStorage()
	for i := 0; i < 1000; i++ {
		storage.Create(ecs.NewTransform(mgl32.Vec3{}), ecs.Rotation{Speed: 1})
	}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&DriftSystem{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = scheduler.Once(0.016)
	}
}
