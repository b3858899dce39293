package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
)

// squidGrab records an attack contact; the prey is pulled out of the
// world after the query pass and consumed at the end of the retreat.
type squidGrab struct {
	squid ecs.Entity
	prey  ecs.Entity
	x, y  float32
}

// SquidSystem drives the giant squid: an ambush predator that lurks in
// the abyssal band, hunts tuna and fry with jet propulsion, grabs prey
// and retreats into the depths to consume it. Fins give weak continuous
// thrust; jets give bursts gated by a duration and cooldown pair.
type SquidSystem struct {
	eco    *Ecosystem
	filter ecs.Filter4[components.Position, components.Velocity, components.Body, components.Squid]

	preyMask  components.SpeciesMask
	squidMask components.SpeciesMask
	scratch   []Neighbor
	grabs     []squidGrab
}

// NewSquidSystem creates the squid predator system.
func NewSquidSystem(eco *Ecosystem) *SquidSystem {
	return &SquidSystem{
		eco:    eco,
		filter: *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Squid](eco.World),
		preyMask: components.MaskOf(components.SpeciesTuna) |
			components.MaskOf(components.SpeciesFry),
		squidMask: components.MaskOf(components.SpeciesGiantSquid),
		scratch:   make([]Neighbor, 0, MaxQueryResults),
	}
}

// Update runs one tick of every squid's behavior cycle.
func (s *SquidSystem) Update() {
	cfg := &s.eco.Cfg.Squid

	s.grabs = s.grabs[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, body, squid := query.Get()
		ent := query.Entity()

		squid.StateTicks++
		s.tickJet(squid)
		s.updateGlow(pos, squid, cfg)

		switch squid.State {
		case components.SquidPatrolling:
			s.patrol(pos, vel, squid, cfg)
			if squid.StateTicks%int32(cfg.ScanIntervalTicks) == 0 {
				if n, ok := s.nearestPrey(pos, ent, float32(cfg.DetectionRadius)); ok {
					squid.Target = n.E
					squid.HasTarget = true
					s.setState(squid, components.SquidHunting)
				}
			}

		case components.SquidHunting:
			s.huntStep(pos, vel, squid, cfg)

		case components.SquidAttacking:
			s.attackStep(ent, pos, vel, body, squid, cfg)

		case components.SquidRetreating:
			s.retreatStep(pos, vel, squid, cfg)
		}

		s.applyRepulsion(ent, pos, vel, squid, cfg)
		if squid.JetTicks == 0 {
			s.applyDepthForce(pos, vel, cfg)
		}
		s.updateFacing(vel, squid, cfg)

		AvoidEdges(*pos, vel, s.eco.Bounds.Width, s.eco.Bounds.Height,
			float32(s.eco.Cfg.World.EdgeMargin), float32(s.eco.Cfg.World.EdgeForce))
		LimitVelocity(vel, float32(cfg.MaxSpeed))
	}

	s.applyGrabs()
}

// setState transitions the behavior cycle and resets the state clock.
func (s *SquidSystem) setState(squid *components.Squid, state components.SquidState) {
	if squid.State != state {
		squid.State = state
		squid.StateTicks = 0
	}
}

// tickJet advances the jet counters and relaxes the mantle when the
// impulse ends.
func (s *SquidSystem) tickJet(squid *components.Squid) {
	if squid.JetTicks > 0 {
		squid.JetTicks--
		if squid.JetTicks == 0 {
			squid.MantleContracted = false
		}
	} else if squid.JetCooldown > 0 {
		squid.JetCooldown--
	}
	if squid.FlipCooldown > 0 {
		squid.FlipCooldown--
	}
}

// fireJet starts a jet burst of the given power if both counters allow
// it. Duration and cooldown both scale linearly with power; the cooldown
// clock only starts once the burst ends, so the gap between burst starts
// is duration plus cooldown.
func (s *SquidSystem) fireJet(squid *components.Squid, cfg *config.SquidConfig, power float32) bool {
	if squid.JetTicks > 0 || squid.JetCooldown > 0 {
		return false
	}
	squid.JetTicks = int32(cfg.JetBaseDuration) + int32(float32(cfg.JetDurationPerPower)*power)
	squid.JetCooldown = int32(cfg.JetBaseCooldown) + int32(float32(cfg.JetCooldownPerPower)*power)
	squid.MantleContracted = true
	if s.eco.Events != nil {
		s.eco.Events.RecordJet()
	}
	return true
}

// jetThrust applies the continuous burst force along a direction while a
// jet is active.
func (s *SquidSystem) jetThrust(vel *components.Velocity, squid *components.Squid, cfg *config.SquidConfig, dirX, dirY float32) {
	if squid.JetTicks == 0 {
		return
	}
	nx, ny := normalize(dirX, dirY)
	vel.X += nx * float32(cfg.JetForce)
	vel.Y += ny * float32(cfg.JetForce)
}

// patrol drifts inside the abyssal band on fin power with a periodic
// horizontal jet.
func (s *SquidSystem) patrol(pos *components.Position, vel *components.Velocity, squid *components.Squid, cfg *config.SquidConfig) {
	fin := float32(cfg.FinForce)
	wx, wy := WanderForce(s.eco.Rng, fin)
	vel.X += wx
	vel.Y += wy * 0.4

	if squid.StateTicks%int32(cfg.PatrolJetIntervalTicks) == 0 && squid.StateTicks > 0 {
		if s.fireJet(squid, cfg, 0.4) {
			dir := float32(1)
			if s.eco.Rng.Float32() < 0.5 {
				dir = -1
			}
			s.jetThrust(vel, squid, cfg, dir, (s.eco.Rng.Float32()-0.5)*0.3)
			s.eco.emit(pos.X, pos.Y, EffectJetWake)
			return
		}
	}
	if squid.JetTicks > 0 {
		s.jetThrust(vel, squid, cfg, vel.X, vel.Y)
	}
}

// huntStep closes on the target with fins plus opportunistic jets.
func (s *SquidSystem) huntStep(pos *components.Position, vel *components.Velocity, squid *components.Squid, cfg *config.SquidConfig) {
	if !squid.HasTarget || !s.validPrey(squid.Target) {
		squid.HasTarget = false
		s.setState(squid, components.SquidPatrolling)
		return
	}
	if squid.StateTicks > int32(cfg.HuntTimeoutTicks) {
		squid.HasTarget = false
		s.setState(squid, components.SquidPatrolling)
		return
	}

	preyPos := s.eco.PosMap.Get(squid.Target)
	dx := preyPos.X - pos.X
	dy := preyPos.Y - pos.Y
	dSq := dx*dx + dy*dy

	attack := float32(cfg.AttackRadius)
	if dSq <= attack*attack {
		s.setState(squid, components.SquidAttacking)
		return
	}

	// Fins steer constantly; a jet fires when the gap is worth closing
	// fast, with power scaled by distance.
	nx, ny := normalize(dx, dy)
	vel.X += nx * float32(cfg.FinForce) * 2
	vel.Y += ny * float32(cfg.FinForce) * 2

	dist := distance(pos.X, pos.Y, preyPos.X, preyPos.Y)
	power := clampFloat(dist/float32(cfg.DetectionRadius), 0.5, 1)
	if s.fireJet(squid, cfg, power) {
		s.eco.emit(pos.X, pos.Y, EffectJetWake)
	}
	s.jetThrust(vel, squid, cfg, dx, dy)
}

// attackStep lunges with a full-power jet and grabs the prey on contact.
func (s *SquidSystem) attackStep(ent ecs.Entity, pos *components.Position, vel *components.Velocity, body *components.Body, squid *components.Squid, cfg *config.SquidConfig) {
	if !squid.HasTarget || !s.validPrey(squid.Target) {
		squid.HasTarget = false
		s.setState(squid, components.SquidPatrolling)
		return
	}
	if squid.StateTicks > int32(cfg.AttackTimeoutTicks) {
		s.setState(squid, components.SquidHunting)
		return
	}

	preyPos := s.eco.PosMap.Get(squid.Target)
	dx := preyPos.X - pos.X
	dy := preyPos.Y - pos.Y
	dSq := dx*dx + dy*dy

	preyRadius := float32(1)
	if s.eco.BodyMap.Has(squid.Target) {
		preyRadius = s.eco.BodyMap.Get(squid.Target).Radius
	}
	contact := body.Radius*0.6 + preyRadius
	if dSq <= contact*contact {
		s.grabs = append(s.grabs, squidGrab{squid: ent, prey: squid.Target, x: preyPos.X, y: preyPos.Y})
		squid.HasTarget = false
		return
	}

	if s.fireJet(squid, cfg, 1) {
		s.eco.emit(pos.X, pos.Y, EffectJetWake)
	}
	s.jetThrust(vel, squid, cfg, dx, dy)
	nx, ny := normalize(dx, dy)
	vel.X += nx * float32(cfg.FinForce) * 3
	vel.Y += ny * float32(cfg.FinForce) * 3
}

// retreatStep dives back toward the abyssal band and finishes the meal
// once the consume timer elapses.
func (s *SquidSystem) retreatStep(pos *components.Position, vel *components.Velocity, squid *components.Squid, cfg *config.SquidConfig) {
	bandY := s.eco.Bounds.Height * float32((cfg.DepthBandMin+cfg.DepthBandMax)/2)
	if pos.Y < bandY {
		vel.Y += float32(cfg.FinForce) * 2
	}
	s.jetThrust(vel, squid, cfg, 0, 1)

	if squid.StateTicks >= int32(cfg.RetreatTicks) {
		if squid.HasGrabbedPrey {
			if s.eco.Events != nil {
				s.eco.Events.RecordEat(components.SpeciesGiantSquid, squid.GrabbedSpecies)
			}
			squid.HasGrabbedPrey = false
		}
		s.setState(squid, components.SquidPatrolling)
	}
}

// applyGrabs pulls grabbed prey out of the world and sends the squid
// into its escape retreat. Prey taken by someone else this tick simply
// slips the grasp.
func (s *SquidSystem) applyGrabs() {
	cfg := &s.eco.Cfg.Squid

	for _, g := range s.grabs {
		if !s.eco.World.Alive(g.squid) {
			continue
		}
		squid := s.eco.SquidMap.Get(g.squid)

		prey, ok := s.eco.SpeciesOf(g.prey)
		if !ok {
			s.setState(squid, components.SquidPatrolling)
			continue
		}
		s.eco.RemoveAs(g.prey, prey)

		squid.GrabbedPrey = g.prey
		squid.HasGrabbedPrey = true
		squid.GrabbedSpecies = prey
		s.setState(squid, components.SquidRetreating)

		// Escape jet fires unconditionally on a grab; the cooldown only
		// gates ordinary bursts, not the getaway.
		squid.JetTicks = int32(cfg.JetBaseDuration) + int32(float32(cfg.JetDurationPerPower)*float32(cfg.EscapeJetPower))
		squid.JetCooldown = int32(cfg.JetBaseCooldown) + int32(float32(cfg.JetCooldownPerPower)*float32(cfg.EscapeJetPower))
		squid.MantleContracted = true
		if s.eco.Events != nil {
			s.eco.Events.RecordJet()
		}
		s.eco.emit(g.x, g.y, EffectJetWake)
	}
}

// applyRepulsion pushes squid apart so they spread across the floor. The
// push is nearly disabled mid-maneuver so it cannot wrench an attack off
// course.
func (s *SquidSystem) applyRepulsion(ent ecs.Entity, pos *components.Position, vel *components.Velocity, squid *components.Squid, cfg *config.SquidConfig) {
	s.scratch = s.scratch[:0]
	s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y,
		float32(cfg.RepulsionRadius), ent, s.squidMask)
	if len(s.scratch) == 0 {
		return
	}

	strength := float32(cfg.RepulsionStrength)
	if squid.State == components.SquidHunting || squid.State == components.SquidAttacking || squid.JetTicks > 0 {
		strength *= float32(cfg.HuntRepulsionFactor)
	}

	for _, n := range s.scratch {
		ux, uy := normalize(-n.DX, -n.DY)
		vel.X += ux * strength
		vel.Y += uy * strength
	}
}

// applyDepthForce nudges the squid back into its abyssal band. Jets
// override it so a pursuit can leave the depths.
func (s *SquidSystem) applyDepthForce(pos *components.Position, vel *components.Velocity, cfg *config.SquidConfig) {
	minY := s.eco.Bounds.Height * float32(cfg.DepthBandMin)
	maxY := s.eco.Bounds.Height * float32(cfg.DepthBandMax)

	if pos.Y < minY {
		vel.Y += float32(cfg.DepthForce)
	} else if pos.Y > maxY {
		vel.Y -= float32(cfg.DepthForce)
	}
}

// updateFacing rate-limits sprite flips: the squid only turns around
// when it is clearly moving the other way and the flip cooldown expired.
func (s *SquidSystem) updateFacing(vel *components.Velocity, squid *components.Squid, cfg *config.SquidConfig) {
	if squid.FlipCooldown > 0 {
		return
	}
	deadband := float32(cfg.FlipDeadband)
	if vel.X > deadband && !squid.FacingRight {
		squid.FacingRight = true
		squid.FlipCooldown = int32(cfg.FlipCooldownTicks)
	} else if vel.X < -deadband && squid.FacingRight {
		squid.FacingRight = false
		squid.FlipCooldown = int32(cfg.FlipCooldownTicks)
	}
}

// updateGlow sets the bioluminescence tier from depth and drives the
// blink cycle while glowing.
func (s *SquidSystem) updateGlow(pos *components.Position, squid *components.Squid, cfg *config.SquidConfig) {
	depth := pos.Y / s.eco.Bounds.Height

	switch {
	case depth >= float32(cfg.GlowFullThreshold):
		squid.GlowIntensity = 1
	case depth >= float32(cfg.GlowDepthThreshold):
		squid.GlowIntensity = 0.5
	default:
		squid.GlowIntensity = 0
		squid.BlinkOn = false
		squid.BlinkTimer = 0
		return
	}

	squid.BlinkTimer++
	if squid.BlinkTimer >= int32(cfg.BlinkIntervalTicks) {
		squid.BlinkTimer = 0
		squid.BlinkOn = !squid.BlinkOn
	}
}

// nearestPrey returns the closest huntable entity within radius.
func (s *SquidSystem) nearestPrey(pos *components.Position, ent ecs.Entity, radius float32) (Neighbor, bool) {
	s.scratch = s.scratch[:0]
	s.scratch = s.eco.Grid.QueryRadiusInto(s.scratch, pos.X, pos.Y, radius, ent, s.preyMask)
	return nearestNeighbor(s.scratch)
}

// validPrey reports whether a target handle still points at something a
// squid hunts.
func (s *SquidSystem) validPrey(ent ecs.Entity) bool {
	got, ok := s.eco.SpeciesOf(ent)
	if !ok {
		return false
	}
	return got == components.SpeciesTuna || got == components.SpeciesFry
}
