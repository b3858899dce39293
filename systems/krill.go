package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// krillChange is a lifecycle transition collected during the query pass.
type krillChange struct {
	ent  ecs.Entity
	from components.Species
	to   components.Species
}

// krillBirth is a batch of offspring owed by a mom krill.
type krillBirth struct {
	mom   ecs.Entity
	count int
}

// KrillSystem runs the krill maturation chain: pale krill grow into
// regular krill, well-fed regular krill become moms, moms produce pale
// offspring in batches and then revert. Every stage change replaces the
// entity; the replacement is constructed before the source is removed.
type KrillSystem struct {
	eco    *Ecosystem
	filter ecs.Filter4[components.Position, components.Velocity, components.Boid, components.Krill]

	changes []krillChange
	births  []krillBirth
}

// NewKrillSystem creates the krill lifecycle system.
func NewKrillSystem(eco *Ecosystem) *KrillSystem {
	return &KrillSystem{
		eco:    eco,
		filter: *ecs.NewFilter4[components.Position, components.Velocity, components.Boid, components.Krill](eco.World),
	}
}

// Update advances every krill's lifecycle by one tick.
func (s *KrillSystem) Update() {
	cfg := &s.eco.Cfg.Krill

	s.changes = s.changes[:0]
	s.births = s.births[:0]

	query := s.filter.Query()
	for query.Next() {
		_, _, boid, krill := query.Get()
		ent := query.Entity()

		switch krill.Variant {
		case components.KrillRegular:
			// Both counters must be satisfied before the flag is set. Once
			// set, the transformation itself is unconditional.
			if !krill.ShouldTransform &&
				boid.PoopEaten >= int32(cfg.PoopThreshold) &&
				boid.FoodConsumed >= int32(cfg.FoodThreshold) {
				krill.ShouldTransform = true
			}
			if krill.ShouldTransform {
				s.changes = append(s.changes, krillChange{
					ent:  ent,
					from: components.SpeciesRegularKrill,
					to:   components.SpeciesMomKrill,
				})
			}

		case components.KrillPale:
			krill.MaturationTicks++
			if boid.HasEatenThisStage || krill.MaturationTicks >= int32(cfg.PaleMaturationTicks) {
				s.changes = append(s.changes, krillChange{
					ent:  ent,
					from: components.SpeciesPaleKrill,
					to:   components.SpeciesRegularKrill,
				})
			}

		case components.KrillMom:
			krill.OffspringTimer++
			if krill.OffspringTimer >= int32(cfg.OffspringIntervalTicks) {
				krill.OffspringTimer = 0

				batch := cfg.OffspringPerBatchMin
				if spread := cfg.OffspringPerBatchMax - cfg.OffspringPerBatchMin; spread > 0 {
					batch += s.eco.Rng.Intn(spread + 1)
				}
				if remaining := cfg.MaxOffspring - int(krill.OffspringCount); batch > remaining {
					batch = remaining
				}
				if batch > 0 {
					krill.OffspringCount += int32(batch)
					krill.BatchesProduced++
					s.births = append(s.births, krillBirth{mom: ent, count: batch})
				}
			}
			if int(krill.OffspringCount) >= cfg.MaxOffspring ||
				int(krill.BatchesProduced) >= cfg.MaxBatches {
				s.changes = append(s.changes, krillChange{
					ent:  ent,
					from: components.SpeciesMomKrill,
					to:   components.SpeciesRegularKrill,
				})
			}
		}
	}

	for _, b := range s.births {
		if !s.eco.World.Alive(b.mom) {
			continue
		}
		pos := s.eco.PosMap.Get(b.mom)
		vel := s.eco.VelMap.Get(b.mom)
		for i := 0; i < b.count; i++ {
			s.eco.SpawnOffspring(pos.X, pos.Y, vel.X, vel.Y)
		}
		s.eco.emit(pos.X, pos.Y, EffectTransform)
	}

	for _, c := range s.changes {
		s.transform(c)
	}
}

// transform replaces a krill with its next stage, carrying position,
// velocity and energy. The replacement is constructed first; if that
// fails the source keeps its flag and retries next tick.
func (s *KrillSystem) transform(c krillChange) {
	if !s.eco.World.Alive(c.ent) {
		return
	}
	pos := s.eco.PosMap.Get(c.ent)
	vel := s.eco.VelMap.Get(c.ent)
	boid := s.eco.BoidMap.Get(c.ent)

	next, ok := s.eco.Spawn(c.to, pos.X, pos.Y)
	if !ok {
		return
	}

	nextVel := s.eco.VelMap.Get(next)
	nextVel.X, nextVel.Y = vel.X, vel.Y
	s.eco.BoidMap.Get(next).Energy = boid.Energy

	s.eco.emit(pos.X, pos.Y, EffectTransform)
	if s.eco.Events != nil {
		s.eco.Events.RecordTransformation(c.from, c.to)
	}

	s.eco.RemoveAs(c.ent, c.from)
}
