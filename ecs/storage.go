package ecs

import (
	"errors"
	"iter"
	"math"

	"github.com/rotisserie/eris"

	"github.com/plus3/orrery/gpu"
)

var (
	// ErrEntityNotFound is returned for ids that were never issued or whose
	// entity has been destroyed.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrComponentNotFound is returned when a live entity lacks a component.
	ErrComponentNotFound = errors.New("component not found")
)

const noSlot = -1

type entityRecord struct {
	generation uint32
	alive      bool
	mask       KindMask
	prev       int64
	next       int64
}

// Storage owns every entity and component of a world. It is not safe for
// concurrent structural changes.
type Storage struct {
	entities []entityRecord
	free     []uint32
	head     int64
	tail     int64
	count    int

	render    column[Render]
	transform column[Transform]
	rotation  column[Rotation]
	light     column[Light]

	// released holds vertex arrays whose Render component left storage and
	// that the render system has not deleted yet.
	released []gpu.VertexArray
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{
		head: noSlot,
		tail: noSlot,
	}
}

// Create allocates a new entity holding the given components. Components may
// be passed by value or by pointer; a later component of the same kind
// replaces an earlier one.
func (s *Storage) Create(components ...Component) EntityId {
	var slot uint32
	if len(s.free) > 0 {
		slot = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		slot = uint32(len(s.entities))
		s.entities = append(s.entities, entityRecord{})
	}

	rec := &s.entities[slot]
	rec.generation++
	rec.alive = true
	rec.mask = 0
	rec.prev = s.tail
	rec.next = noSlot

	if s.tail != noSlot {
		s.entities[s.tail].next = int64(slot)
	} else {
		s.head = int64(slot)
	}
	s.tail = int64(slot)
	s.count++

	for _, c := range components {
		s.set(slot, c)
	}

	return newEntityId(rec.generation, slot)
}

func (s *Storage) record(id EntityId) (*entityRecord, bool) {
	slot := id.Slot()
	if int(slot) >= len(s.entities) {
		return nil, false
	}
	rec := &s.entities[slot]
	if !rec.alive || rec.generation != id.Generation() {
		return nil, false
	}
	return rec, true
}

// Alive reports whether id names a live entity.
func (s *Storage) Alive(id EntityId) bool {
	_, ok := s.record(id)
	return ok
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	return s.count
}

// Get returns the components of an entity.
func (s *Storage) Get(id EntityId) (ComponentSet, error) {
	if _, ok := s.record(id); !ok {
		return ComponentSet{}, eris.Wrapf(ErrEntityNotFound, "entity %s", id)
	}
	return s.componentSet(id.Slot()), nil
}

func (s *Storage) componentSet(slot uint32) ComponentSet {
	return ComponentSet{
		Render:    s.render.get(slot),
		Transform: s.transform.get(slot),
		Rotation:  s.rotation.get(slot),
		Light:     s.light.get(slot),
	}
}

// HasComponent reports whether a live entity holds a component of kind k.
func (s *Storage) HasComponent(id EntityId, k ComponentKind) bool {
	rec, ok := s.record(id)
	return ok && rec.mask.Has(k)
}

// GetComponent returns a pointer to the component of kind k.
func (s *Storage) GetComponent(id EntityId, k ComponentKind) (Component, error) {
	rec, ok := s.record(id)
	if !ok {
		return nil, eris.Wrapf(ErrEntityNotFound, "entity %s", id)
	}
	if !rec.mask.Has(k) {
		return nil, eris.Wrapf(ErrComponentNotFound, "%s on entity %s", k, id)
	}
	return s.componentSet(id.Slot()).Get(k), nil
}

// AddComponent attaches c to a live entity, replacing any component of the
// same kind.
func (s *Storage) AddComponent(id EntityId, c Component) error {
	if _, ok := s.record(id); !ok {
		return eris.Wrapf(ErrEntityNotFound, "entity %s", id)
	}
	if c == nil {
		return eris.New("cannot add nil component")
	}
	s.set(id.Slot(), c)
	return nil
}

// RemoveComponent detaches the component of kind k. Removing an absent kind
// is a no-op.
func (s *Storage) RemoveComponent(id EntityId, k ComponentKind) error {
	rec, ok := s.record(id)
	if !ok {
		return eris.Wrapf(ErrEntityNotFound, "entity %s", id)
	}
	s.clear(id.Slot(), k)
	rec.mask &^= 1 << k
	return nil
}

// Destroy removes an entity and all its components. The id, and every other
// id issued for the same slot, becomes stale.
func (s *Storage) Destroy(id EntityId) error {
	rec, ok := s.record(id)
	if !ok {
		return eris.Wrapf(ErrEntityNotFound, "entity %s", id)
	}
	slot := id.Slot()

	for k := ComponentKind(0); k < KindCount; k++ {
		s.clear(slot, k)
	}

	if rec.prev != noSlot {
		s.entities[rec.prev].next = rec.next
	} else {
		s.head = rec.next
	}
	if rec.next != noSlot {
		s.entities[rec.next].prev = rec.prev
	} else {
		s.tail = rec.prev
	}

	rec.alive = false
	rec.mask = 0
	rec.prev = noSlot
	rec.next = noSlot
	// A slot whose generation is exhausted is retired so that no earlier id
	// for it can become valid again.
	if rec.generation < math.MaxUint32 {
		s.free = append(s.free, slot)
	}
	s.count--
	return nil
}

// Iter yields live entities that hold every kind in kinds, in creation order.
// Destroying the entity currently yielded is safe; other structural changes
// during iteration should go through Commands.
func (s *Storage) Iter(kinds ...ComponentKind) iter.Seq2[EntityId, ComponentSet] {
	want := MaskOf(kinds...)
	return func(yield func(EntityId, ComponentSet) bool) {
		for slot := s.head; slot != noSlot; {
			rec := s.entities[slot]
			next := rec.next
			if rec.alive && rec.mask.Contains(want) {
				id := newEntityId(rec.generation, uint32(slot))
				if !yield(id, s.componentSet(uint32(slot))) {
					return
				}
			}
			slot = next
		}
	}
}

// Entities returns the ids of every live entity in creation order.
func (s *Storage) Entities() []EntityId {
	ids := make([]EntityId, 0, s.count)
	for id := range s.Iter() {
		ids = append(ids, id)
	}
	return ids
}

func (s *Storage) set(slot uint32, c Component) {
	rec := &s.entities[slot]
	switch v := c.(type) {
	case Render:
		s.setRender(slot, v)
	case *Render:
		if v == nil {
			return
		}
		s.setRender(slot, *v)
	case Transform:
		s.transform.set(slot, v)
	case *Transform:
		if v == nil {
			return
		}
		s.transform.set(slot, *v)
	case Rotation:
		s.rotation.set(slot, v)
	case *Rotation:
		if v == nil {
			return
		}
		s.rotation.set(slot, *v)
	case Light:
		s.light.set(slot, v)
	case *Light:
		if v == nil {
			return
		}
		s.light.set(slot, *v)
	default:
		return
	}
	rec.mask |= 1 << c.Kind()
}

// setRender stores r at slot. The slot keeps its vertex array only when r
// carries the same handle for the same mesh; otherwise the old handle is
// released and r starts unbound, so a vertex array never has two owners.
func (s *Storage) setRender(slot uint32, r Render) {
	kept := false
	if old := s.render.get(slot); old != nil {
		oldVA, oldBound := old.VertexArray.Get()
		newVA, newBound := r.VertexArray.Get()
		kept = oldBound && newBound && oldVA == newVA && old.Mesh == r.Mesh
		if oldBound && !kept {
			s.released = append(s.released, oldVA)
		}
	}
	if !kept {
		r.VertexArray = VertexArrayState{}
	}
	s.render.set(slot, r)
}

// DrainReleased returns the vertex arrays released since the previous call.
// Their owner must delete them on the device.
func (s *Storage) DrainReleased() []gpu.VertexArray {
	released := s.released
	s.released = nil
	return released
}

func (s *Storage) clear(slot uint32, k ComponentKind) {
	switch k {
	case KindRender:
		if r := s.render.get(slot); r != nil {
			if va, ok := r.VertexArray.Get(); ok {
				s.released = append(s.released, va)
			}
		}
		s.render.delete(slot)
	case KindTransform:
		s.transform.delete(slot)
	case KindRotation:
		s.rotation.delete(slot)
	case KindLight:
		s.light.delete(slot)
	}
}

type componentValue interface {
	Render | Transform | Rotation | Light
	Component
}

// Read returns a pointer to the component of type T held by an entity.
func Read[T componentValue](s *Storage, id EntityId) (*T, error) {
	var zero T
	c, err := s.GetComponent(id, zero.Kind())
	if err != nil {
		return nil, err
	}
	return any(c).(*T), nil
}
