package ecs

import "github.com/milk9111/stagekit/ecs/component"

// Kind is satisfied by every component.ComponentKind regardless of its type
// parameter, so queries can mix component types.
type Kind interface {
	ID() component.ComponentID
}

// Query returns the live entities that carry every listed kind, ordered by
// slot id. A kind with no store yields an empty result.
func Query(w *World, kinds ...Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		set := w.store(k.ID(), false)
		if set == nil || set.Len() == 0 {
			return nil
		}
		sets = append(sets, set)
	}

	// iterate the smallest set
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}

	ids := make([]entityID, 0, smallest.Len())
	for _, id := range smallest.ids() {
		all := true
		for _, s := range sets {
			if !s.Has(id) {
				all = false
				break
			}
		}
		if all {
			ids = append(ids, id)
		}
	}
	return w.entitiesOf(ids)
}
