package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// Bounds represents the simulation world rectangle.
type Bounds struct {
	Width, Height float32
}

// PhysicsSystem integrates velocities into positions and keeps entities
// inside the world. Behavior systems are responsible for speed clamping;
// this system only applies drag, integration and wall handling.
type PhysicsSystem struct {
	boidFilter  ecs.Filter3[components.Position, components.Velocity, components.Boid]
	tunaFilter  ecs.Filter3[components.Position, components.Velocity, components.Tuna]
	squidFilter ecs.Filter3[components.Position, components.Velocity, components.Squid]
	driftFilter ecs.Filter3[components.Position, components.Velocity, components.Lifespan]

	bounds     Bounds
	drag       float32
	bounceDamp float32
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, bounds Bounds, drag, bounceDamp float32) *PhysicsSystem {
	return &PhysicsSystem{
		boidFilter:  *ecs.NewFilter3[components.Position, components.Velocity, components.Boid](w),
		tunaFilter:  *ecs.NewFilter3[components.Position, components.Velocity, components.Tuna](w),
		squidFilter: *ecs.NewFilter3[components.Position, components.Velocity, components.Squid](w),
		driftFilter: *ecs.NewFilter3[components.Position, components.Velocity, components.Lifespan](w),
		bounds:      bounds,
		bounceDamp:  bounceDamp,
		drag:        drag,
	}
}

// Update runs one integration step for all movers and drifters.
func (s *PhysicsSystem) Update() {
	boidQuery := s.boidFilter.Query()
	for boidQuery.Next() {
		pos, vel, _ := boidQuery.Get()
		s.step(pos, vel)
	}

	tunaQuery := s.tunaFilter.Query()
	for tunaQuery.Next() {
		pos, vel, _ := tunaQuery.Get()
		s.step(pos, vel)
	}

	squidQuery := s.squidFilter.Query()
	for squidQuery.Next() {
		pos, vel, _ := squidQuery.Get()
		s.step(pos, vel)
	}

	// Drifters (eggs, sperm, detritus) keep their sink velocity; only
	// horizontal motion decays, and they settle on the floor.
	driftQuery := s.driftFilter.Query()
	for driftQuery.Next() {
		pos, vel, _ := driftQuery.Get()

		vel.X *= s.drag
		pos.X += vel.X
		pos.Y += vel.Y

		if pos.X < 0 {
			pos.X = 0
			vel.X = 0
		} else if pos.X > s.bounds.Width {
			pos.X = s.bounds.Width
			vel.X = 0
		}
		if pos.Y < 0 {
			pos.Y = 0
			vel.Y = 0
		} else if pos.Y > s.bounds.Height {
			pos.Y = s.bounds.Height
			vel.Y = 0
		}
	}
}

// step applies drag, integrates and bounces off the world walls.
func (s *PhysicsSystem) step(pos *components.Position, vel *components.Velocity) {
	vel.X *= s.drag
	vel.Y *= s.drag

	pos.X += vel.X
	pos.Y += vel.Y

	if pos.X < 0 {
		pos.X = 0
		vel.X = -vel.X * s.bounceDamp
	} else if pos.X > s.bounds.Width {
		pos.X = s.bounds.Width
		vel.X = -vel.X * s.bounceDamp
	}
	if pos.Y < 0 {
		pos.Y = 0
		vel.Y = -vel.Y * s.bounceDamp
	} else if pos.Y > s.bounds.Height {
		pos.Y = s.bounds.Height
		vel.Y = -vel.Y * s.bounceDamp
	}
}
