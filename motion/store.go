package motion

import (
	"github.com/milk9111/stagekit/ecs"
	"github.com/milk9111/stagekit/ecs/component"
)

var anchorComponent = component.NewComponent[Config]()

// Store keeps one Config per target as a component on the target's entity,
// so a config lives exactly as long as its target.
type Store struct {
	world *ecs.World
}

func NewStore(w *ecs.World) *Store {
	return &Store{world: w}
}

// Ensure gives id a config if it has none: a copy of source's config when
// source has one, the defaults otherwise. It reports whether a config was
// created.
func (s *Store) Ensure(id, source ecs.Entity) bool {
	if !ecs.IsAlive(s.world, id) || ecs.Has(s.world, id, anchorComponent.Kind()) {
		return false
	}
	cfg := DefaultConfig()
	if src, ok := ecs.Get(s.world, source, anchorComponent.Kind()); ok {
		cfg = *src
	}
	return ecs.Add(s.world, id, anchorComponent.Kind(), &cfg) == nil
}

// Get returns a copy of id's config.
func (s *Store) Get(id ecs.Entity) (Config, bool) {
	cfg, ok := ecs.Get(s.world, id, anchorComponent.Kind())
	if !ok {
		return Config{}, false
	}
	return *cfg, true
}

// Update mutates id's config in place.
func (s *Store) Update(id ecs.Entity, fn func(*Config)) bool {
	cfg, ok := ecs.Get(s.world, id, anchorComponent.Kind())
	if !ok {
		return false
	}
	fn(cfg)
	return true
}

func (s *Store) Forget(id ecs.Entity) bool {
	return ecs.Remove(s.world, id, anchorComponent.Kind())
}

func (s *Store) Len() int {
	n := 0
	ecs.ForEach(s.world, anchorComponent.Kind(), func(ecs.Entity, *Config) { n++ })
	return n
}

// Following returns the targets whose anchor is reapplied every frame.
func (s *Store) Following() []ecs.Entity {
	var ids []ecs.Entity
	ecs.ForEach(s.world, anchorComponent.Kind(), func(id ecs.Entity, cfg *Config) {
		if cfg.UpdateEveryFrame {
			ids = append(ids, id)
		}
	})
	return ids
}
