package ecs

import (
	"sort"

	"github.com/milk9111/stagekit/ecs/component"
)

// System updates a world each step.
type System interface {
	Update(w *World)
}

// World owns entities, their component stores and the lifecycle event bus.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   Bus
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{stores: map[component.ComponentID]*SparseSet{}}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity frees the entity and drops every component it owns. It
// returns false when the handle was already dead.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, set := range w.stores {
		set.Remove(e.id())
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is still valid.
func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns every live entity ordered by slot id.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	for i := range w.entities.gen {
		if e, ok := w.entities.current(entityID(i + 1)); ok {
			out = append(out, e)
		}
	}
	return out
}

// Reset destroys every entity. Subscribers on the event bus are kept.
func Reset(w *World) {
	if w == nil {
		return
	}
	for _, e := range Entities(w) {
		DestroyEntity(w, e)
	}
}

// Events returns the world event bus.
func (w *World) Events() *Bus {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w.stores == nil {
		w.stores = map[component.ComponentID]*SparseSet{}
	}
	set, ok := w.stores[id]
	if !ok && create {
		set = &SparseSet{}
		w.stores[id] = set
	}
	return set
}

func (w *World) entitiesOf(ids []entityID) []Entity {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := w.entities.current(id); ok {
			out = append(out, e)
		}
	}
	return out
}
