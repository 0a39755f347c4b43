package ecs

import "reflect"

// Commands buffers structural changes made by systems. The scheduler
// flushes the buffer after each stage so iteration never sees a storage
// that is changing underneath it.
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
	components []any
}

type addComponentCommand struct {
	entity     EntityId
	components []any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.AddComponents(entity, component)
}

// AddComponents queues adding several components in a single archetype move.
func (c *Commands) AddComponents(entity EntityId, components ...any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:     entity,
		components: components,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// moves maps an entity id to the id it was moved to during a flush.
type moves map[EntityId]EntityId

func (m moves) resolve(id EntityId) EntityId {
	for {
		next, ok := m[id]
		if !ok {
			return id
		}
		id = next
	}
}

// record notes that from now lives at to. A reused slot may make to an
// old key, which is dropped so resolve cannot loop.
func (m moves) record(from, to EntityId) {
	if to == from {
		return
	}
	delete(m, to)
	m[from] = to
}

// Flush applies the queued commands to storage and resets the buffer.
// Deletes run first, then removals, additions, spawns and deferred
// functions. Entities moved by an earlier add or remove are followed to
// their new id; commands for deleted entities are skipped.
func (c *Commands) Flush(storage *Storage) {
	deleted := make(map[EntityId]struct{}, len(c.deletes))
	moved := moves{}

	for _, id := range c.deletes {
		storage.Delete(id)
		deleted[id] = struct{}{}
	}

	for _, cmd := range c.removes {
		if _, gone := deleted[cmd.entity]; gone {
			continue
		}
		id := moved.resolve(cmd.entity)
		moved.record(id, storage.RemoveComponent(id, cmd.compType))
	}

	for _, cmd := range c.adds {
		if _, gone := deleted[cmd.entity]; gone {
			continue
		}
		id := moved.resolve(cmd.entity)
		if newId := storage.AddComponents(id, cmd.components...); newId != 0 {
			moved.record(id, newId)
		}
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	for _, cmd := range c.defers {
		cmd.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
