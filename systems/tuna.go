package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
)

// tunaKill records a confirmed prey contact, applied after the query.
type tunaKill struct {
	tuna    ecs.Entity
	prey    ecs.Entity
	species components.Species
	x, y    float32
}

// TunaSystem drives the tuna predator state machine: patrol, hunt,
// attack, feed, rest and flee. Targets are weak handles revalidated every
// tick; hunts that run out of range are aborted, not crashed.
type TunaSystem struct {
	eco    *Ecosystem
	filter ecs.Filter4[components.Position, components.Velocity, components.Body, components.Tuna]

	fishMask components.SpeciesMask
	eggMask  components.SpeciesMask
	scratch  []Neighbor
	kills    []tunaKill
	deaths   []ecs.Entity
}

// NewTunaSystem creates the tuna predator system.
func NewTunaSystem(eco *Ecosystem) *TunaSystem {
	return &TunaSystem{
		eco:    eco,
		filter: *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Tuna](eco.World),
		fishMask: components.MaskOf(components.SpeciesFry) |
			components.MaskOf(components.SpeciesTrueFry1) |
			components.MaskOf(components.SpeciesTrueFry2),
		eggMask: components.MaskOf(components.SpeciesFertilizedEgg),
		scratch: make([]Neighbor, 0, MaxQueryResults),
	}
}

// Update runs one tick of every tuna's state machine.
func (s *TunaSystem) Update() {
	cfg := &s.eco.Cfg.Tuna
	squidMask := components.MaskOf(components.SpeciesGiantSquid)

	s.kills = s.kills[:0]
	s.deaths = s.deaths[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, body, tuna := query.Get()
		ent := query.Entity()

		tuna.StateTicks++
		if tuna.FeedingCooldown > 0 {
			tuna.FeedingCooldown--
		}
		if tuna.RetargetTimer > 0 {
			tuna.RetargetTimer--
		}

		drain := float32(cfg.EnergyDrain)
		if tuna.State == components.TunaHunting || tuna.State == components.TunaAttacking {
			drain += float32(cfg.HuntDrain)
		}
		tuna.Energy -= drain
		if tuna.Energy <= 0 {
			s.deaths = append(s.deaths, ent)
			continue
		}

		// A nearby squid overrides everything, a meal included. The
		// feeding lockout timer keeps running through the escape.
		if tuna.State != components.TunaFleeing {
			if s.squidNearby(pos, ent, float32(cfg.FleeRadius), squidMask) {
				s.dropTarget(tuna, false)
				s.setState(tuna, components.TunaFleeing)
			}
		}

		switch tuna.State {
		case components.TunaPatrolling:
			s.patrol(vel, tuna, cfg)
			if tuna.Energy >= float32(cfg.HuntEnergyThreshold) &&
				tuna.FeedingCooldown <= 0 && tuna.RetargetTimer <= 0 {
				tuna.RetargetTimer = int32(cfg.RetargetTicks)
				if n, score, ok := s.bestPrey(pos, vel, body, tuna, ent); ok {
					tuna.Target = n.E
					tuna.HasTarget = true
					tuna.TargetSpecies = n.Species
					tuna.TargetPriority = score
					s.setState(tuna, components.TunaHunting)
				}
			}
			if tuna.Energy <= float32(cfg.RestEnergyThreshold) {
				s.setState(tuna, components.TunaResting)
			}

		case components.TunaHunting:
			s.hunt(ent, pos, vel, body, tuna, cfg)

		case components.TunaAttacking:
			s.attack(ent, pos, vel, body, tuna, cfg)

		case components.TunaFeeding:
			vel.X *= 0.92
			vel.Y *= 0.92
			if tuna.FeedingCooldown <= 0 {
				s.setState(tuna, components.TunaPatrolling)
			}

		case components.TunaResting:
			vel.X *= 0.9
			vel.Y *= 0.9
			tuna.Energy = clampFloat(tuna.Energy+float32(cfg.RestRegen), 0, 100)
			// A meal wandering into attack range interrupts the rest.
			attack := float32(cfg.AttackRadius)
			s.scratch = s.scratch[:0]
			s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y, attack, ent, s.fishMask)
			if n, ok := nearestNeighbor(s.scratch); ok {
				tuna.Target = n.E
				tuna.HasTarget = true
				tuna.TargetSpecies = n.Species
				tuna.TargetPriority = s.preyScore(n, body, tuna, attack)
				s.setState(tuna, components.TunaHunting)
			} else if tuna.Energy >= float32(cfg.RestRecoverTo) {
				s.setState(tuna, components.TunaPatrolling)
			}

		case components.TunaFleeing:
			if sq, ok := s.nearestSquid(pos, ent, float32(cfg.FleeRadius)*1.5, squidMask); ok {
				fx, fy := Flee(*pos, *vel, pos.X+sq.DX, pos.Y+sq.DY,
					float32(cfg.MaxSpeed), float32(cfg.MaxForce)*2)
				vel.X += fx
				vel.Y += fy
			} else {
				s.setState(tuna, components.TunaPatrolling)
			}
		}

		AvoidEdges(*pos, vel, s.eco.Bounds.Width, s.eco.Bounds.Height,
			float32(s.eco.Cfg.World.EdgeMargin), float32(s.eco.Cfg.World.EdgeForce))
		LimitVelocity(vel, float32(cfg.MaxSpeed))
	}

	s.applyKills()
	for _, ent := range s.deaths {
		s.eco.Remove(ent)
	}
}

// setState transitions the FSM and resets the state clock.
func (s *TunaSystem) setState(tuna *components.Tuna, state components.TunaState) {
	if tuna.State != state {
		tuna.State = state
		tuna.StateTicks = 0
	}
}

// dropTarget clears the current target. An aborted hunt costs a success
// point so chronically failing tuna hunt less ambitiously over time.
func (s *TunaSystem) dropTarget(tuna *components.Tuna, succeeded bool) {
	if tuna.HasTarget && !succeeded {
		tuna.HuntSuccess--
	}
	tuna.HasTarget = false
	tuna.TargetPriority = 0
}

// patrol applies horizontally biased wander steering.
func (s *TunaSystem) patrol(vel *components.Velocity, tuna *components.Tuna, cfg *config.TunaConfig) {
	wx, wy := WanderForce(s.eco.Rng, float32(cfg.WanderForce))
	bias := float32(cfg.PatrolHorizontalBias)
	tuna.WanderX = tuna.WanderX*0.9 + wx
	tuna.WanderY = tuna.WanderY*0.9 + wy*(1-bias)

	vel.X += tuna.WanderX
	vel.Y += tuna.WanderY
	LimitVelocity(vel, float32(cfg.MaxSpeed)*0.5)
}

// hunt pursues the target's predicted position and closes to attack range.
func (s *TunaSystem) hunt(ent ecs.Entity, pos *components.Position, vel *components.Velocity, body *components.Body, tuna *components.Tuna, cfg *config.TunaConfig) {
	if !tuna.HasTarget || !s.eco.ValidTarget(tuna.Target, tuna.TargetSpecies) {
		s.dropTarget(tuna, false)
		s.setState(tuna, components.TunaPatrolling)
		return
	}

	preyPos := s.eco.PosMap.Get(tuna.Target)
	dSq := distanceSq(pos.X, pos.Y, preyPos.X, preyPos.Y)
	maxRange := float32(cfg.MaxHuntRange)
	if dSq > maxRange*maxRange {
		s.dropTarget(tuna, false)
		s.setState(tuna, components.TunaPatrolling)
		return
	}

	// Every retarget window, look for a markedly better target. The
	// switch margin keeps tuna from dithering between similar prey.
	if tuna.RetargetTimer <= 0 {
		tuna.RetargetTimer = int32(cfg.RetargetTicks)
		if n, score, ok := s.bestPrey(pos, vel, body, tuna, ent); ok &&
			n.E != tuna.Target && score > tuna.TargetPriority*float32(cfg.SwitchMargin) {
			tuna.Target = n.E
			tuna.TargetSpecies = n.Species
			tuna.TargetPriority = score
			preyPos = s.eco.PosMap.Get(tuna.Target)
			dSq = distanceSq(pos.X, pos.Y, preyPos.X, preyPos.Y)
		}
	}

	attack := float32(cfg.AttackRadius)
	if dSq <= attack*attack {
		s.setState(tuna, components.TunaAttacking)
		return
	}

	// Too drained to close the distance: give up the chase before the
	// pursuit drain bottoms the tuna out.
	if tuna.Energy < float32(cfg.RestEnergyThreshold) {
		s.dropTarget(tuna, false)
		s.setState(tuna, components.TunaPatrolling)
		return
	}

	// Linear extrapolation of the prey's motion.
	tx, ty := preyPos.X, preyPos.Y
	if s.eco.VelMap.Has(tuna.Target) {
		preyVel := s.eco.VelMap.Get(tuna.Target)
		p := float32(cfg.PredictionTicks)
		tx += preyVel.X * p
		ty += preyVel.Y * p
	}

	fx, fy := Seek(*pos, *vel, tx, ty, float32(cfg.MaxSpeed), float32(cfg.MaxForce))
	vel.X += fx
	vel.Y += fy
}

// attack dashes straight at the prey and registers the kill on contact.
func (s *TunaSystem) attack(ent ecs.Entity, pos *components.Position, vel *components.Velocity, body *components.Body, tuna *components.Tuna, cfg *config.TunaConfig) {
	if !tuna.HasTarget || !s.eco.ValidTarget(tuna.Target, tuna.TargetSpecies) {
		s.dropTarget(tuna, false)
		s.setState(tuna, components.TunaPatrolling)
		return
	}

	preyPos := s.eco.PosMap.Get(tuna.Target)
	dSq := distanceSq(pos.X, pos.Y, preyPos.X, preyPos.Y)

	// Prey that slipped away goes back to pursuit instead of an endless lunge.
	escape := float32(cfg.AttackRadius) * 1.5
	if dSq > escape*escape {
		s.setState(tuna, components.TunaHunting)
		return
	}

	preyRadius := float32(1)
	if s.eco.BodyMap.Has(tuna.Target) {
		preyRadius = s.eco.BodyMap.Get(tuna.Target).Radius
	}
	contact := body.Radius + preyRadius
	if dSq <= contact*contact {
		s.kills = append(s.kills, tunaKill{
			tuna:    ent,
			prey:    tuna.Target,
			species: tuna.TargetSpecies,
			x:       preyPos.X,
			y:       preyPos.Y,
		})
		tuna.HasTarget = false
		return
	}

	fx, fy := Seek(*pos, *vel, preyPos.X, preyPos.Y, float32(cfg.MaxSpeed), float32(cfg.MaxForce)*1.5)
	vel.X += fx
	vel.Y += fy
}

// applyKills consumes collected prey contacts after the query pass. Prey
// already taken by another predator this tick is simply gone; the tuna
// shrugs and goes back to patrolling.
func (s *TunaSystem) applyKills() {
	cfg := &s.eco.Cfg.Tuna

	for _, k := range s.kills {
		if !s.eco.World.Alive(k.tuna) {
			continue
		}
		tuna := s.eco.TunaMap.Get(k.tuna)

		prey, ok := s.eco.SpeciesOf(k.prey)
		if !ok {
			s.setState(tuna, components.TunaPatrolling)
			continue
		}
		if s.eco.LifespanMap.Has(k.prey) {
			s.eco.LifespanMap.Get(k.prey).Eaten = true
		}
		s.eco.RemoveAs(k.prey, prey)

		tuna.Energy = clampFloat(tuna.Energy+float32(cfg.EatGain), 0, 100)
		tuna.HuntSuccess++
		tuna.PoopCounter++
		tuna.FeedingCooldown = int32(cfg.FeedingTicks)
		s.setState(tuna, components.TunaFeeding)

		s.eco.emit(k.x, k.y, EffectEatBubbles)
		if s.eco.Events != nil {
			s.eco.Events.RecordEat(components.SpeciesTuna, prey)
		}

		// Digestion closes the food loop: every few meals drop detritus
		// that krill and fry graze on.
		if tuna.PoopCounter >= int32(cfg.PoopEvery) {
			tuna.PoopCounter = 0
			pos := s.eco.PosMap.Get(k.tuna)
			for i := 0; i < s.eco.Cfg.Detritus.PoopCount; i++ {
				ox := pos.X + (s.eco.Rng.Float32()*2-1)*6
				s.eco.SpawnDetritus(ox, pos.Y+4, true)
			}
		}
	}
}

// bestPrey scans for the highest-priority prey. Fish are seen out to the
// alertness-scaled detection radius; fertilized eggs are camouflaged and
// only spotted much closer.
func (s *TunaSystem) bestPrey(pos *components.Position, vel *components.Velocity, body *components.Body, tuna *components.Tuna, ent ecs.Entity) (Neighbor, float32, bool) {
	cfg := &s.eco.Cfg.Tuna

	fishRadius := float32(cfg.FishDetectionRadius) * tuna.Alertness

	s.scratch = s.scratch[:0]
	s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y, fishRadius, ent, s.fishMask)
	s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y,
		float32(cfg.EggDetectionRadius), ent, s.eggMask)

	var best Neighbor
	var bestScore float32
	found := false

	for _, n := range s.scratch {
		score := s.preyScore(n, body, tuna, fishRadius)
		if !found || score > bestScore {
			best = n
			bestScore = score
			found = true
		}
	}
	return best, bestScore, found
}

// preyScore ranks a candidate by closeness, size preference, hunger and
// how slow it is moving.
func (s *TunaSystem) preyScore(n Neighbor, body *components.Body, tuna *components.Tuna, radius float32) float32 {
	cfg := &s.eco.Cfg.Tuna

	dist := distance(0, 0, n.DX, n.DY)
	closeness := 1 - dist/radius
	if closeness < 0.05 {
		closeness = 0.05
	}

	sizeFactor := float32(0.4)
	if s.eco.BodyMap.Has(n.E) {
		ratio := s.eco.BodyMap.Get(n.E).Radius / body.Radius
		if ratio >= float32(cfg.PreferredSizeRatioMin) && ratio <= float32(cfg.PreferredSizeRatioMax) {
			sizeFactor = 1
		}
	}

	hunger := 1 + (1 - tuna.Energy/100)

	speed := velocityMagnitude(n.VX, n.VY)
	slow := 1 + clampFloat(1-speed/float32(cfg.MaxSpeed), 0, 1)*0.5

	return closeness * sizeFactor * hunger * slow
}

// squidNearby reports whether a squid is within radius.
func (s *TunaSystem) squidNearby(pos *components.Position, ent ecs.Entity, radius float32, mask components.SpeciesMask) bool {
	s.scratch = s.scratch[:0]
	s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y, radius, ent, mask)
	return len(s.scratch) > 0
}

// nearestSquid returns the closest squid within radius.
func (s *TunaSystem) nearestSquid(pos *components.Position, ent ecs.Entity, radius float32, mask components.SpeciesMask) (Neighbor, bool) {
	s.scratch = s.scratch[:0]
	s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y, radius, ent, mask)
	return nearestNeighbor(s.scratch)
}
