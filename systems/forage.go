package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// forageTuning is the per-species parameter bundle resolved once per tick.
type forageTuning struct {
	foodRadius   float32
	eatGain      float32
	energyDrain  float32
	feedingTicks int32
	flockMask    components.SpeciesMask
}

// pendingEat records a boid-food contact found during the query pass.
// Eats are applied after the query completes so structural changes never
// happen while the world is locked.
type pendingEat struct {
	eater   ecs.Entity
	species components.Species
	food    ecs.Entity
	x, y    float32
}

// ForageSystem drives the shared schooling behavior of fry, TrueFry and
// krill: flocking, wandering, detritus seeking and eating, the feeding
// timer chain and starvation. It is the only place the shared boid tick
// timers decrement.
type ForageSystem struct {
	eco    *Ecosystem
	filter ecs.Filter4[components.Position, components.Velocity, components.Body, components.Boid]

	scratch []Neighbor
	food    []Neighbor
	eats    []pendingEat
	deaths  []ecs.Entity
}

// NewForageSystem creates the shared boid behavior system.
func NewForageSystem(eco *Ecosystem) *ForageSystem {
	return &ForageSystem{
		eco:     eco,
		filter:  *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Boid](eco.World),
		scratch: make([]Neighbor, 0, MaxQueryResults),
		food:    make([]Neighbor, 0, MaxQueryResults),
	}
}

// Update runs one foraging tick for every schooling boid.
func (s *ForageSystem) Update() {
	cfg := s.eco.Cfg
	flock := FlockParams{
		NeighborRadius:   float32(cfg.Flocking.NeighborRadius),
		SeparationRadius: float32(cfg.Flocking.SeparationRadius),
		AlignmentWeight:  float32(cfg.Flocking.AlignmentWeight),
		CohesionWeight:   float32(cfg.Flocking.CohesionWeight),
		CohesionJitter:   float32(cfg.Flocking.CohesionJitter),
		SeparationWeight: float32(cfg.Flocking.SeparationWeight),
	}
	wander := float32(cfg.Flocking.WanderForce)
	edgeMargin := float32(cfg.World.EdgeMargin)
	edgeForce := float32(cfg.World.EdgeForce)
	detritusMask := components.MaskOf(components.SpeciesDetritus)

	s.eats = s.eats[:0]
	s.deaths = s.deaths[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, body, boid := query.Get()
		ent := query.Entity()

		// Timers tick down here and nowhere else.
		if boid.FeedingTimer > 0 {
			boid.FeedingTimer--
		}
		if boid.CooldownTimer > 0 {
			boid.CooldownTimer--
		}

		switch boid.State {
		case components.StateFeeding:
			if boid.FeedingTimer <= 0 {
				boid.State = components.StateFeedingCooldown
				boid.CooldownTimer = s.tuningFor(boid.Species).feedingTicks / 2
			}
		case components.StateFeedingCooldown:
			if boid.CooldownTimer <= 0 {
				boid.State = components.StateForaging
			}
		}

		tuning := s.tuningFor(boid.Species)

		boid.Energy -= tuning.energyDrain
		if boid.Energy <= 0 {
			s.deaths = append(s.deaths, ent)
			continue
		}

		// A spawning fry's movement belongs to the reproduction system.
		if boid.State == components.StateSpawning {
			continue
		}

		// Feeding boids hold position and drift.
		if boid.State == components.StateFeeding {
			vel.X *= 0.9
			vel.Y *= 0.9
			continue
		}

		s.scratch = s.scratch[:0]
		s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y,
			flock.NeighborRadius, ent, tuning.flockMask)

		flock.MaxSpeed = boid.MaxSpeed
		flock.MaxForce = boid.MaxForce
		Flock(*pos, vel, s.scratch, flock, s.eco.Rng)

		wx, wy := WanderForce(s.eco.Rng, wander)
		vel.X += wx
		vel.Y += wy

		// Food seeking: steer to the nearest detritus, eat on contact.
		// Spawning cooldown does not stop a boid from eating.
		if boid.State == components.StateForaging || boid.State == components.StateSpawningCooldown {
			s.food = s.food[:0]
			s.food = s.eco.Grid.QueryRadiusInto(s.food, pos.X, pos.Y,
				tuning.foodRadius, ent, detritusMask)

			if nearest, ok := nearestNeighbor(s.food); ok {
				eatDistSq := (body.Radius + 2) * (body.Radius + 2)
				if nearest.DistSq <= eatDistSq {
					s.eats = append(s.eats, pendingEat{
						eater:   ent,
						species: boid.Species,
						food:    nearest.E,
						x:       pos.X,
						y:       pos.Y,
					})
				} else {
					fx, fy := Seek(*pos, *vel, pos.X+nearest.DX, pos.Y+nearest.DY,
						boid.MaxSpeed, boid.MaxForce)
					vel.X += fx
					vel.Y += fy
				}
			}
		}

		AvoidEdges(*pos, vel, s.eco.Bounds.Width, s.eco.Bounds.Height, edgeMargin, edgeForce)
		LimitVelocity(vel, boid.MaxSpeed)
	}

	s.applyEats()
	for _, ent := range s.deaths {
		s.eco.Remove(ent)
	}
}

// applyEats consumes the contacts collected during the query pass. Each
// detritus particle feeds at most one boid per tick; later claimants see
// the Eaten flag and walk away hungry.
func (s *ForageSystem) applyEats() {
	for _, eat := range s.eats {
		if !s.eco.World.Alive(eat.food) || !s.eco.DetritusMap.Has(eat.food) {
			continue
		}
		life := s.eco.LifespanMap.Get(eat.food)
		if life.Eaten {
			continue
		}
		life.Eaten = true

		fromPoop := s.eco.DetritusMap.Get(eat.food).FromPoop
		s.eco.RemoveAs(eat.food, components.SpeciesDetritus)

		if !s.eco.World.Alive(eat.eater) {
			continue
		}
		boid := s.eco.BoidMap.Get(eat.eater)
		tuning := s.tuningFor(boid.Species)

		if fromPoop {
			boid.PoopEaten++
		} else {
			boid.FoodConsumed++
		}
		boid.HasEatenThisStage = true
		boid.Energy = clampFloat(boid.Energy+tuning.eatGain, 0, 100)
		boid.State = components.StateFeeding
		boid.FeedingTimer = tuning.feedingTicks

		if s.eco.TrueFryMap.Has(eat.eater) {
			s.eco.TrueFryMap.Get(eat.eater).FoodEaten++
		}

		s.eco.emit(eat.x, eat.y, EffectEatBubbles)
		if s.eco.Events != nil {
			s.eco.Events.RecordEat(eat.species, components.SpeciesDetritus)
		}
	}
}

// tuningFor resolves the foraging parameters for a schooling species.
func (s *ForageSystem) tuningFor(sp components.Species) forageTuning {
	cfg := s.eco.Cfg
	switch sp {
	case components.SpeciesTrueFry1, components.SpeciesTrueFry2:
		return forageTuning{
			foodRadius:   float32(cfg.TrueFry.FoodRadius),
			eatGain:      float32(cfg.TrueFry.EatGain),
			energyDrain:  float32(cfg.TrueFry.EnergyDrain),
			feedingTicks: int32(cfg.TrueFry.FeedingTicks),
			flockMask:    components.MaskOf(components.SpeciesTrueFry1) | components.MaskOf(components.SpeciesTrueFry2),
		}
	case components.SpeciesRegularKrill, components.SpeciesPaleKrill, components.SpeciesMomKrill:
		return forageTuning{
			foodRadius:   float32(cfg.Krill.FoodRadius),
			eatGain:      float32(cfg.Krill.EatGain),
			energyDrain:  float32(cfg.Krill.EnergyDrain),
			feedingTicks: int32(cfg.Krill.FeedingTicks),
			flockMask: components.MaskOf(components.SpeciesRegularKrill) |
				components.MaskOf(components.SpeciesPaleKrill) |
				components.MaskOf(components.SpeciesMomKrill),
		}
	default:
		return forageTuning{
			foodRadius:   float32(cfg.Fry.FoodRadius),
			eatGain:      float32(cfg.Fry.EatGain),
			energyDrain:  float32(cfg.Fry.EnergyDrain),
			feedingTicks: int32(cfg.Fry.FeedingTicks),
			flockMask:    components.MaskOf(components.SpeciesFry),
		}
	}
}

// nearestNeighbor returns the closest entry of a query result.
func nearestNeighbor(list []Neighbor) (Neighbor, bool) {
	if len(list) == 0 {
		return Neighbor{}, false
	}
	best := list[0]
	for _, n := range list[1:] {
		if n.DistSq < best.DistSq {
			best = n
		}
	}
	return best, true
}
