package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

func TestSpatialGridQueryRadius(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	near, _ := eco.Spawn(components.SpeciesFry, 100, 100)
	far, _ := eco.Spawn(components.SpeciesFry, 500, 500)

	grid.Update(near, components.SpeciesFry, 100, 100, 0, 0)
	grid.Update(far, components.SpeciesFry, 500, 500, 0, 0)

	mask := components.MaskOf(components.SpeciesFry)
	results := grid.QueryRadiusInto(nil, 110, 100, 50, ecs.Entity{}, mask)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].E != near {
		t.Error("wrong entity returned")
	}
	if results[0].DX != -10 || results[0].DY != 0 {
		t.Errorf("delta = (%v, %v), want (-10, 0)", results[0].DX, results[0].DY)
	}
	if results[0].DistSq != 100 {
		t.Errorf("DistSq = %v, want 100", results[0].DistSq)
	}
}

func TestSpatialGridMaskFiltering(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	fry, _ := eco.Spawn(components.SpeciesFry, 100, 100)
	krill, _ := eco.Spawn(components.SpeciesRegularKrill, 105, 100)

	grid.Update(fry, components.SpeciesFry, 100, 100, 0, 0)
	grid.Update(krill, components.SpeciesRegularKrill, 105, 100, 0, 0)

	mask := components.MaskOf(components.SpeciesRegularKrill)
	results := grid.QueryRadiusInto(nil, 100, 100, 50, ecs.Entity{}, mask)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Species != components.SpeciesRegularKrill {
		t.Errorf("species = %v, want RegularKrill", results[0].Species)
	}
}

func TestSpatialGridExcludesSelf(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	ent, _ := eco.Spawn(components.SpeciesFry, 100, 100)
	grid.Update(ent, components.SpeciesFry, 100, 100, 0, 0)

	mask := components.MaskOf(components.SpeciesFry)
	results := grid.QueryRadiusInto(nil, 100, 100, 50, ent, mask)

	if len(results) != 0 {
		t.Errorf("got %d results, want 0 (self excluded)", len(results))
	}
}

func TestSpatialGridMigration(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	ent, _ := eco.Spawn(components.SpeciesFry, 100, 100)
	grid.Update(ent, components.SpeciesFry, 100, 100, 0, 0)

	// Move far across cell boundaries and refresh.
	grid.Update(ent, components.SpeciesFry, 800, 700, 0, 0)

	mask := components.MaskOf(components.SpeciesFry)

	old := grid.QueryRadiusInto(nil, 100, 100, 50, ecs.Entity{}, mask)
	if len(old) != 0 {
		t.Errorf("entity still found at old position (%d hits)", len(old))
	}

	current := grid.QueryRadiusInto(nil, 800, 700, 50, ecs.Entity{}, mask)
	if len(current) != 1 {
		t.Errorf("entity not found at new position (%d hits)", len(current))
	}

	if grid.Count() != 1 {
		t.Errorf("Count = %d, want 1 after migration", grid.Count())
	}
}

func TestSpatialGridSameCellRefresh(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	ent, _ := eco.Spawn(components.SpeciesFry, 100, 100)
	grid.Update(ent, components.SpeciesFry, 100, 100, 0, 0)
	grid.Update(ent, components.SpeciesFry, 102, 101, 1.5, -0.5)

	mask := components.MaskOf(components.SpeciesFry)
	results := grid.QueryRadiusInto(nil, 100, 100, 50, ecs.Entity{}, mask)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (no duplicate record)", len(results))
	}
	if results[0].VX != 1.5 || results[0].VY != -0.5 {
		t.Errorf("cached velocity = (%v, %v), want (1.5, -0.5)", results[0].VX, results[0].VY)
	}
}

func TestSpatialGridRemove(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	ent, _ := eco.Spawn(components.SpeciesFry, 100, 100)
	grid.Update(ent, components.SpeciesFry, 100, 100, 0, 0)

	if !grid.Contains(ent) {
		t.Fatal("entity not tracked after Update")
	}

	grid.Remove(ent)

	if grid.Contains(ent) {
		t.Error("entity still tracked after Remove")
	}
	if grid.Count() != 0 {
		t.Errorf("Count = %d, want 0", grid.Count())
	}

	// Removing again is a no-op.
	grid.Remove(ent)
}

func TestSpatialGridQueryCap(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	mask := components.MaskOf(components.SpeciesDetritus)

	for i := 0; i < MaxQueryResults+40; i++ {
		ent := eco.SpawnDetritus(400+float32(i%10), 400+float32(i/10), false)
		pos := eco.PosMap.Get(ent)
		grid.Update(ent, components.SpeciesDetritus, pos.X, pos.Y, 0, 0)
	}

	results := grid.QueryRadiusInto(nil, 405, 405, 200, ecs.Entity{}, mask)
	if len(results) != MaxQueryResults {
		t.Errorf("got %d results, want cap of %d", len(results), MaxQueryResults)
	}
}

func TestSpatialGridEdgePositions(t *testing.T) {
	eco := newTestEcosystem(t)
	grid := NewSpatialGrid(1600, 900, 64)

	// Positions at and slightly beyond the world rectangle must clamp
	// into valid cells instead of panicking.
	corner, _ := eco.Spawn(components.SpeciesFry, 0, 0)
	edge, _ := eco.Spawn(components.SpeciesFry, 1600, 900)

	grid.Update(corner, components.SpeciesFry, 0, 0, 0, 0)
	grid.Update(edge, components.SpeciesFry, 1600, 900, 0, 0)

	mask := components.MaskOf(components.SpeciesFry)
	if got := grid.QueryRadiusInto(nil, 1, 1, 10, ecs.Entity{}, mask); len(got) != 1 {
		t.Errorf("corner query hits = %d, want 1", len(got))
	}
	if got := grid.QueryRadiusInto(nil, 1599, 899, 10, ecs.Entity{}, mask); len(got) != 1 {
		t.Errorf("edge query hits = %d, want 1", len(got))
	}
}
