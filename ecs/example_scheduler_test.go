package ecs_test

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/orrery/ecs"
)

type OrbitSystem struct {
	Bodies ecs.Query `ecs:"transform,rotation"`
}

func (s *OrbitSystem) Execute(frame *ecs.UpdateFrame) error {
	for _, body := range s.Bodies.Iter() {
		body.Transform.Rotation[1] += body.Rotation.Speed * float32(frame.DeltaTime)
	}
	return nil
}

type SpawnerSystem struct {
	Spawned int
}

func (s *SpawnerSystem) Execute(frame *ecs.UpdateFrame) error {
	if frame.Index == 0 {
		frame.Commands.Spawn(ecs.NewTransform(mgl32.Vec3{}), ecs.Rotation{Speed: 1})
		s.Spawned++
	}
	return nil
}

// ExampleScheduler builds a frame loop with two systems. Tagged Query fields
// are initialized on Register and refreshed before each system runs; commands
// queued during a frame are applied after the last system.
func ExampleScheduler() {
	storage := ecs.NewStorage()
	scheduler := ecs.NewScheduler(storage)

	scheduler.Register(&SpawnerSystem{})
	orbit := &OrbitSystem{}
	scheduler.Register(orbit)

	_ = scheduler.Once(1)
	fmt.Println("after frame 0:", orbit.Bodies.Count(), storage.Len())

	_ = scheduler.Once(1)
	fmt.Println("after frame 1:", orbit.Bodies.Count(), storage.Len())

	for _, set := range storage.Iter(ecs.KindTransform) {
		fmt.Println("rotation:", set.Transform.Rotation.Y())
	}

	stats := scheduler.GetStats()
	fmt.Println("systems:", stats.SystemCount, "executions:", stats.TotalExecutions)

	// Output:
	// after frame 0: 0 1
	// after frame 1: 1 1
	// rotation: 1
	// systems: 2 executions: 4
}
