package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// LifespanSystem ages every tracked short-lived entity and removes the
// expired ones. It also drips ambient marine snow from the surface so
// grazers have food even when no tuna is digesting anything.
type LifespanSystem struct {
	eco    *Ecosystem
	filter ecs.Filter1[components.Lifespan]

	expired []ecs.Entity
	tick    int64
}

// NewLifespanSystem creates the lifespan and ambient food system.
func NewLifespanSystem(eco *Ecosystem) *LifespanSystem {
	return &LifespanSystem{
		eco:    eco,
		filter: *ecs.NewFilter1[components.Lifespan](eco.World),
	}
}

// Update ages lifespans, sweeps the dead and drops marine snow.
func (s *LifespanSystem) Update() {
	s.tick++
	s.expired = s.expired[:0]

	query := s.filter.Query()
	for query.Next() {
		life := query.Get()
		life.Age++
		if life.Eaten || life.Expired() {
			s.expired = append(s.expired, query.Entity())
		}
	}

	for _, ent := range s.expired {
		s.eco.Remove(ent)
	}

	cfg := &s.eco.Cfg.Detritus
	if cfg.AmbientIntervalTicks > 0 && s.tick%int64(cfg.AmbientIntervalTicks) == 0 {
		for i := 0; i < cfg.AmbientCount; i++ {
			x := s.eco.Rng.Float32() * s.eco.Bounds.Width
			s.eco.SpawnDetritus(x, 0, false)
		}
	}
}
