package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// SpatialSyncSystem refreshes the spatial grid from current positions.
// It runs first each step so every behavior system queries the same
// coherent snapshot. Entities already in their cell are refreshed in
// place; movers migrate cells in O(1).
type SpatialSyncSystem struct {
	eco *Ecosystem

	boidFilter  ecs.Filter3[components.Position, components.Velocity, components.Boid]
	tunaFilter  ecs.Filter3[components.Position, components.Velocity, components.Tuna]
	squidFilter ecs.Filter3[components.Position, components.Velocity, components.Squid]
	eggFilter   ecs.Filter3[components.Position, components.Velocity, components.Egg]
	spermFilter ecs.Filter3[components.Position, components.Velocity, components.Sperm]
	fertFilter  ecs.Filter3[components.Position, components.Velocity, components.FertilizedEgg]
	detFilter   ecs.Filter3[components.Position, components.Velocity, components.Detritus]
}

// NewSpatialSyncSystem creates the grid synchronization system.
func NewSpatialSyncSystem(eco *Ecosystem) *SpatialSyncSystem {
	w := eco.World
	return &SpatialSyncSystem{
		eco:         eco,
		boidFilter:  *ecs.NewFilter3[components.Position, components.Velocity, components.Boid](w),
		tunaFilter:  *ecs.NewFilter3[components.Position, components.Velocity, components.Tuna](w),
		squidFilter: *ecs.NewFilter3[components.Position, components.Velocity, components.Squid](w),
		eggFilter:   *ecs.NewFilter3[components.Position, components.Velocity, components.Egg](w),
		spermFilter: *ecs.NewFilter3[components.Position, components.Velocity, components.Sperm](w),
		fertFilter:  *ecs.NewFilter3[components.Position, components.Velocity, components.FertilizedEgg](w),
		detFilter:   *ecs.NewFilter3[components.Position, components.Velocity, components.Detritus](w),
	}
}

// Update pushes every live entity's position and velocity into the grid.
func (s *SpatialSyncSystem) Update() {
	grid := s.eco.Grid

	boidQuery := s.boidFilter.Query()
	for boidQuery.Next() {
		pos, vel, boid := boidQuery.Get()
		grid.Update(boidQuery.Entity(), boid.Species, pos.X, pos.Y, vel.X, vel.Y)
	}

	tunaQuery := s.tunaFilter.Query()
	for tunaQuery.Next() {
		pos, vel, _ := tunaQuery.Get()
		grid.Update(tunaQuery.Entity(), components.SpeciesTuna, pos.X, pos.Y, vel.X, vel.Y)
	}

	squidQuery := s.squidFilter.Query()
	for squidQuery.Next() {
		pos, vel, _ := squidQuery.Get()
		grid.Update(squidQuery.Entity(), components.SpeciesGiantSquid, pos.X, pos.Y, vel.X, vel.Y)
	}

	eggQuery := s.eggFilter.Query()
	for eggQuery.Next() {
		pos, vel, _ := eggQuery.Get()
		grid.Update(eggQuery.Entity(), components.SpeciesFishEgg, pos.X, pos.Y, vel.X, vel.Y)
	}

	spermQuery := s.spermFilter.Query()
	for spermQuery.Next() {
		pos, vel, _ := spermQuery.Get()
		grid.Update(spermQuery.Entity(), components.SpeciesSperm, pos.X, pos.Y, vel.X, vel.Y)
	}

	fertQuery := s.fertFilter.Query()
	for fertQuery.Next() {
		pos, vel, _ := fertQuery.Get()
		grid.Update(fertQuery.Entity(), components.SpeciesFertilizedEgg, pos.X, pos.Y, vel.X, vel.Y)
	}

	detQuery := s.detFilter.Query()
	for detQuery.Next() {
		pos, vel, _ := detQuery.Get()
		grid.Update(detQuery.Entity(), components.SpeciesDetritus, pos.X, pos.Y, vel.X, vel.Y)
	}
}
