package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// eggClutch is a batch of eggs owed by a germinated fry.
type eggClutch struct {
	x, y  float32
	count int
}

// fertilization pairs a sperm with the egg it reached.
type fertilization struct {
	egg   ecs.Entity
	sperm ecs.Entity
	x, y  float32
}

// spermRelease is a pending sperm cloud at a release point.
type spermRelease struct {
	x, y float32
}

// ReproductionSystem runs the five-stage fry chain: feeding pairs trigger
// germination, germinated fry lay eggs, other fry swim to eggs and release
// sperm, sperm fertilize eggs, fertilized eggs hatch into TrueFry and
// TrueFry grow back into adult fry. Each hand-off constructs the next
// stage before removing the previous one.
type ReproductionSystem struct {
	eco *Ecosystem

	fryFilter     ecs.Filter4[components.Position, components.Velocity, components.Boid, components.Fry]
	eggFilter     ecs.Filter3[components.Position, components.Velocity, components.Egg]
	spermFilter   ecs.Filter2[components.Position, components.Sperm]
	fertFilter    ecs.Filter2[components.Position, components.FertilizedEgg]
	trueFryFilter ecs.Filter3[components.Position, components.Boid, components.TrueFry]

	scratch  []Neighbor
	clutches []eggClutch
	releases []spermRelease
	ferts    []fertilization
	hatches  []ecs.Entity
	grown    []ecs.Entity
	claimed  map[ecs.Entity]bool

	tick int64
}

// NewReproductionSystem creates the reproduction chain system.
func NewReproductionSystem(eco *Ecosystem) *ReproductionSystem {
	return &ReproductionSystem{
		eco:           eco,
		fryFilter:     *ecs.NewFilter4[components.Position, components.Velocity, components.Boid, components.Fry](eco.World),
		eggFilter:     *ecs.NewFilter3[components.Position, components.Velocity, components.Egg](eco.World),
		spermFilter:   *ecs.NewFilter2[components.Position, components.Sperm](eco.World),
		fertFilter:    *ecs.NewFilter2[components.Position, components.FertilizedEgg](eco.World),
		trueFryFilter: *ecs.NewFilter3[components.Position, components.Boid, components.TrueFry](eco.World),
		scratch:       make([]Neighbor, 0, MaxQueryResults),
		claimed:       make(map[ecs.Entity]bool, 16),
	}
}

// Update advances the whole reproduction chain by one tick.
func (s *ReproductionSystem) Update() {
	s.tick++
	s.updateFry()
	s.wobbleEggs()
	s.updateFertilization()
	s.updateFertilizedEggs()
	s.updateTrueFry()
}

// updateFry handles both fry reproduction roles: the egg-laying side
// (feeding pair, germination, clutch) and the spawning side (find egg,
// approach, release sperm).
func (s *ReproductionSystem) updateFry() {
	cfg := &s.eco.Cfg.Fry
	fryMask := components.MaskOf(components.SpeciesFry)
	eggMask := components.MaskOf(components.SpeciesFishEgg)

	s.clutches = s.clutches[:0]
	s.releases = s.releases[:0]

	query := s.fryFilter.Query()
	for query.Next() {
		pos, vel, boid, fry := query.Get()
		ent := query.Entity()

		if fry.LayCooldown > 0 {
			fry.LayCooldown--
		}
		if fry.SpawnCooldown > 0 {
			fry.SpawnCooldown--
		} else if boid.State == components.StateSpawningCooldown {
			boid.State = components.StateForaging
		}

		// Germination countdown. The clock keeps running past zero while
		// laying is blocked; a long enough stall cancels the germination.
		if fry.Germinating {
			fry.GerminationTicks--
			if fry.GerminationTicks <= 0 {
				if boid.State != components.StateSpawning {
					eggs := cfg.EggsMin
					if spread := cfg.EggsMax - cfg.EggsMin; spread > 0 {
						eggs += s.eco.Rng.Intn(spread + 1)
					}
					s.clutches = append(s.clutches, eggClutch{x: pos.X, y: pos.Y, count: eggs})
					fry.Germinating = false
					fry.LayCooldown = int32(cfg.LayCooldownTicks)
					boid.State = components.StateForaging
				} else if fry.GerminationTicks < -int32(cfg.GerminationMaxTicks) {
					fry.Germinating = false
				}
			}
			continue
		}

		// Feeding pair check: a feeding fry near another feeding fry may
		// start germinating. An unfertilized egg in detection range takes
		// priority over the meal and pulls the fry into the spawning run.
		if boid.State == components.StateFeeding {
			if s.tryTargetEgg(ent, pos, boid, fry, eggMask) {
				continue
			}
			if fry.LayCooldown <= 0 {
				s.scratch = s.scratch[:0]
				s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y,
					float32(cfg.LayDetectionRange), ent, fryMask)

				for _, n := range s.scratch {
					other := s.eco.BoidMap.Get(n.E)
					if other.State != components.StateFeeding {
						continue
					}
					if s.eco.Rng.Float64() < cfg.LayChance {
						delay := cfg.GerminationMinTicks
						if spread := cfg.GerminationMaxTicks - cfg.GerminationMinTicks; spread > 0 {
							delay += s.eco.Rng.Intn(spread + 1)
						}
						fry.Germinating = true
						fry.GerminationTicks = int32(delay)
					}
					break
				}
			}
			continue
		}

		// Spawning role: swim to an unfertilized egg and release sperm.
		switch boid.State {
		case components.StateSpawning:
			s.advanceSpawner(ent, pos, vel, boid, fry)

		case components.StateForaging:
			s.tryTargetEgg(ent, pos, boid, fry, eggMask)
		}
	}

	for _, c := range s.clutches {
		for i := 0; i < c.count; i++ {
			ox := c.x + (s.eco.Rng.Float32()*2-1)*4
			oy := c.y + (s.eco.Rng.Float32()*2-1)*4
			s.eco.Spawn(components.SpeciesFishEgg, ox, oy)
		}
		s.eco.emit(c.x, c.y, EffectTransform)
		if s.eco.Events != nil {
			s.eco.Events.RecordEggsLaid(c.count)
		}
	}

	for _, r := range s.releases {
		s.releaseSperm(r.x, r.y)
	}
}

// tryTargetEgg locks a fry onto the nearest unfertilized egg in detection
// range and starts the spawning run. The spawn cooldown blocks retargeting.
func (s *ReproductionSystem) tryTargetEgg(ent ecs.Entity, pos *components.Position, boid *components.Boid, fry *components.Fry, eggMask components.SpeciesMask) bool {
	cfg := &s.eco.Cfg.Fry

	if fry.SpawnCooldown > 0 {
		return false
	}
	s.scratch = s.scratch[:0]
	s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y,
		float32(cfg.EggDetectionRange), ent, eggMask)

	nearest, ok := nearestNeighbor(s.scratch)
	if !ok {
		return false
	}
	fry.SpawnTarget = nearest.E
	fry.HasSpawnTarget = true
	fry.SpawnTimeout = int32(cfg.SpawnTimeoutTicks)
	boid.State = components.StateSpawning
	return true
}

// advanceSpawner moves a spawning fry toward the approach point above its
// target egg and queues a sperm release once close enough to the egg
// itself.
func (s *ReproductionSystem) advanceSpawner(ent ecs.Entity, pos *components.Position, vel *components.Velocity, boid *components.Boid, fry *components.Fry) {
	cfg := &s.eco.Cfg.Fry

	abort := func() {
		fry.HasSpawnTarget = false
		fry.SpawnTimeout = 0
		boid.State = components.StateForaging
	}

	if !fry.HasSpawnTarget || !s.eco.ValidTarget(fry.SpawnTarget, components.SpeciesFishEgg) {
		abort()
		return
	}
	fry.SpawnTimeout--
	if fry.SpawnTimeout <= 0 {
		abort()
		return
	}

	eggPos := s.eco.PosMap.Get(fry.SpawnTarget)
	targetX := eggPos.X
	targetY := eggPos.Y - float32(cfg.SpawnApproachOffset)

	// Release distance is measured to the egg itself, not the approach
	// point, so a drifting egg cannot strand the fry hovering above it.
	dSq := distanceSq(pos.X, pos.Y, eggPos.X, eggPos.Y)
	release := float32(cfg.SpermReleaseDistance)
	if dSq <= release*release {
		s.releases = append(s.releases, spermRelease{x: pos.X, y: pos.Y})
		fry.HasSpawnTarget = false
		fry.SpawnTimeout = 0
		fry.SpawnCooldown = int32(cfg.SpawnCooldownTicks)
		boid.State = components.StateSpawningCooldown
		return
	}

	fx, fy := Seek(*pos, *vel, targetX, targetY, boid.MaxSpeed, boid.MaxForce)
	vel.X += fx
	vel.Y += fy
	LimitVelocity(vel, boid.MaxSpeed)
}

// releaseSperm spawns a downward-biased sperm cloud at the release point.
func (s *ReproductionSystem) releaseSperm(x, y float32) {
	cfg := &s.eco.Cfg.Eggs
	count := s.eco.Cfg.Fry.SpermCount

	for i := 0; i < count; i++ {
		vx := (s.eco.Rng.Float32()*2 - 1) * float32(cfg.SpermSpread)
		vy := float32(cfg.SpermDownwardBias) + s.eco.Rng.Float32()*float32(cfg.SpermSpread)*0.5
		s.eco.SpawnSpermWithVelocity(x, y, vx, vy)
	}
	s.eco.emit(x, y, EffectSpermCloud)
}

// wobbleEggs gives unfertilized eggs a slow horizontal bob while they sink.
func (s *ReproductionSystem) wobbleEggs() {
	t := float64(s.tick)
	query := s.eggFilter.Query()
	for query.Next() {
		_, vel, egg := query.Get()
		vel.X = float32(math.Sin(t*0.05+float64(egg.WobblePhase))) * 0.08
	}
}

// updateFertilization collides sperm with unfertilized eggs. Each egg is
// claimed at most once per tick; a successful roll moves the egg to the
// fertilized collection and consumes the sperm.
func (s *ReproductionSystem) updateFertilization() {
	cfg := &s.eco.Cfg.Eggs
	eggMask := components.MaskOf(components.SpeciesFishEgg)

	s.ferts = s.ferts[:0]
	for k := range s.claimed {
		delete(s.claimed, k)
	}

	query := s.spermFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		ent := query.Entity()

		s.scratch = s.scratch[:0]
		s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y,
			float32(cfg.FertilizationRange), ent, eggMask)

		for _, n := range s.scratch {
			if s.claimed[n.E] {
				continue
			}
			if s.eco.Rng.Float64() >= cfg.FertilizationChance {
				continue
			}
			s.claimed[n.E] = true
			s.ferts = append(s.ferts, fertilization{egg: n.E, sperm: ent, x: pos.X + n.DX, y: pos.Y + n.DY})
			break
		}
	}

	for _, f := range s.ferts {
		if !s.eco.World.Alive(f.egg) || !s.eco.EggMap.Has(f.egg) {
			continue
		}
		// Construct the fertilized egg before removing either source so a
		// failure leaves the chain intact.
		if _, ok := s.eco.Spawn(components.SpeciesFertilizedEgg, f.x, f.y); !ok {
			continue
		}
		s.eco.RemoveAs(f.egg, components.SpeciesFishEgg)
		s.eco.RemoveAs(f.sperm, components.SpeciesSperm)

		s.eco.emit(f.x, f.y, EffectTransform)
		if s.eco.Events != nil {
			s.eco.Events.RecordFertilization()
			s.eco.Events.RecordTransformation(components.SpeciesFishEgg, components.SpeciesFertilizedEgg)
		}
	}
}

// updateFertilizedEggs develops fertilized eggs and hatches them into
// first-stage TrueFry.
func (s *ReproductionSystem) updateFertilizedEggs() {
	hatchTicks := int32(s.eco.Cfg.Eggs.HatchingTicks)

	s.hatches = s.hatches[:0]

	query := s.fertFilter.Query()
	for query.Next() {
		_, fe := query.Get()
		fe.DevelopmentTicks++
		if fe.DevelopmentTicks >= hatchTicks {
			s.hatches = append(s.hatches, query.Entity())
		}
	}

	for _, ent := range s.hatches {
		if !s.eco.World.Alive(ent) {
			continue
		}
		pos := s.eco.PosMap.Get(ent)
		if _, ok := s.eco.Spawn(components.SpeciesTrueFry1, pos.X, pos.Y); !ok {
			continue
		}
		s.eco.emit(pos.X, pos.Y, EffectHatch)
		if s.eco.Events != nil {
			s.eco.Events.RecordHatch()
			s.eco.Events.RecordTransformation(components.SpeciesFertilizedEgg, components.SpeciesTrueFry1)
		}
		s.eco.RemoveAs(ent, components.SpeciesFertilizedEgg)
	}
}

// updateTrueFry grows juveniles through both stages. Each stage advances
// on its food count or its elapsed-time ceiling, whichever comes first.
// Stage one to stage two mutates in place; stage two to adult exchanges
// the entity for a fresh fry.
func (s *ReproductionSystem) updateTrueFry() {
	cfg := &s.eco.Cfg.TrueFry

	s.grown = s.grown[:0]

	query := s.trueFryFilter.Query()
	for query.Next() {
		_, boid, tf := query.Get()
		ent := query.Entity()

		tf.StageTicks++

		switch tf.Stage {
		case components.TrueFryStage1:
			if int(tf.FoodEaten) >= cfg.Stage1.FoodThreshold || int(tf.StageTicks) >= cfg.Stage1.TimeTicks {
				tf.Stage = components.TrueFryStage2
				tf.FoodEaten = 0
				tf.StageTicks = 0
				boid.Species = components.SpeciesTrueFry2
				boid.MaxSpeed = float32(cfg.Stage2.MaxSpeed)
				boid.HasEatenThisStage = false
				s.eco.BodyMap.Get(ent).Radius = float32(cfg.Stage2.Size)
				s.eco.counts[components.SpeciesTrueFry1]--
				s.eco.counts[components.SpeciesTrueFry2]++
				if s.eco.Events != nil {
					s.eco.Events.RecordTransformation(components.SpeciesTrueFry1, components.SpeciesTrueFry2)
				}
			}
		case components.TrueFryStage2:
			if int(tf.FoodEaten) >= cfg.Stage2.FoodThreshold || int(tf.StageTicks) >= cfg.Stage2.TimeTicks {
				s.grown = append(s.grown, ent)
			}
		}
	}

	for _, ent := range s.grown {
		if !s.eco.World.Alive(ent) {
			continue
		}
		pos := s.eco.PosMap.Get(ent)
		vel := s.eco.VelMap.Get(ent)
		energy := s.eco.BoidMap.Get(ent).Energy

		adult, ok := s.eco.Spawn(components.SpeciesFry, pos.X, pos.Y)
		if !ok {
			continue
		}
		adultVel := s.eco.VelMap.Get(adult)
		adultVel.X, adultVel.Y = vel.X, vel.Y
		s.eco.BoidMap.Get(adult).Energy = energy

		s.eco.emit(pos.X, pos.Y, EffectTransform)
		if s.eco.Events != nil {
			s.eco.Events.RecordTransformation(components.SpeciesTrueFry2, components.SpeciesFry)
		}
		s.eco.RemoveAs(ent, components.SpeciesTrueFry2)
	}
}
