package ecs

import (
	"iter"
	"strings"

	"github.com/rotisserie/eris"
)

// Query selects the entities holding a fixed set of component kinds and
// snapshots them once per frame. Systems declare queries as struct fields
// tagged with the kinds they need:
//
//	type Spin struct {
//		Spinning ecs.Query `ecs:"transform,rotation"`
//	}
//
// The scheduler initializes tagged fields on Register and refreshes them
// before the owning system executes.
type Query struct {
	storage *Storage
	mask    KindMask

	cachedEntities   []EntityId
	cachedComponents []ComponentSet
	cacheValid       bool
}

// NewQuery creates a query over storage matching entities that hold every
// kind in kinds.
func NewQuery(storage *Storage, kinds ...ComponentKind) *Query {
	q := &Query{}
	q.Init(storage, MaskOf(kinds...))
	return q
}

// Init initializes or re-initializes the Query.
func (q *Query) Init(storage *Storage, mask KindMask) {
	q.storage = storage
	q.mask = mask
	q.cacheValid = false
}

// Mask returns the kinds the query requires.
func (q *Query) Mask() KindMask {
	return q.mask
}

func (q *Query) kinds() []ComponentKind {
	kinds := make([]ComponentKind, 0, KindCount)
	for k := ComponentKind(0); k < KindCount; k++ {
		if q.mask.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Execute snapshots the matching entities for this frame.
func (q *Query) Execute() {
	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for id, set := range q.storage.Iter(q.kinds()...) {
		q.cachedEntities = append(q.cachedEntities, id)
		q.cachedComponents = append(q.cachedComponents, set)
	}

	q.cacheValid = true
}

// Iter returns an iterator over the snapshot taken by the last Execute.
// Panics if Execute has not been called since Init.
func (q *Query) Iter() iter.Seq2[EntityId, ComponentSet] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, ComponentSet) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns the component sets of the last snapshot.
func (q *Query) Values() []ComponentSet {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}
	return q.cachedComponents
}

// Count returns the size of the last snapshot.
func (q *Query) Count() int {
	return len(q.cachedEntities)
}

// ParseKinds parses a comma separated list of kind names as used in query
// struct tags.
func ParseKinds(tag string) (KindMask, error) {
	var mask KindMask
	for _, name := range strings.Split(tag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k, ok := KindByName(name)
		if !ok {
			return 0, eris.Errorf("unknown component kind %q", name)
		}
		mask |= 1 << k
	}
	return mask, nil
}
