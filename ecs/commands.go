package ecs

import "github.com/rotisserie/eris"

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the storage while systems iterate it.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []Component
	created    func(EntityId)
}

type addComponentCommand struct {
	entity    EntityId
	component Component
}

type removeComponentCommand struct {
	entity EntityId
	kind   ComponentKind
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity creation with the given components.
func (c *Commands) Spawn(components ...Component) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnThen queues an entity creation and reports the new id to created once
// the commands are flushed.
func (c *Commands) SpawnThen(created func(EntityId), components ...Component) {
	c.spawns = append(c.spawns, spawnCommand{components: components, created: created})
}

// Destroy queues an entity destruction.
func (c *Commands) Destroy(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component Component) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, kind ComponentKind) {
	c.removes = append(c.removes, removeComponentCommand{
		entity: entity,
		kind:   kind,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every queued operation to storage and resets the buffer.
// Destructions run first, then removals, additions, spawns and deferred
// functions. Operations on entities destroyed in the same flush are dropped.
// The first failing operation is reported after the remaining ones ran.
func (c *Commands) Flush(storage *Storage) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	deletedEntities := make(map[EntityId]bool)

	for _, cmd := range c.deletes {
		if deletedEntities[cmd] {
			continue
		}
		keep(eris.Wrap(storage.Destroy(cmd), "flush destroy"))
		deletedEntities[cmd] = true
	}

	for _, cmd := range c.removes {
		if !deletedEntities[cmd.entity] {
			keep(eris.Wrap(storage.RemoveComponent(cmd.entity, cmd.kind), "flush remove component"))
		}
	}

	for _, cmd := range c.adds {
		if !deletedEntities[cmd.entity] {
			keep(eris.Wrap(storage.AddComponent(cmd.entity, cmd.component), "flush add component"))
		}
	}

	for _, cmd := range c.spawns {
		id := storage.Create(cmd.components...)
		if cmd.created != nil {
			cmd.created(id)
		}
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]

	return firstErr
}
