package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// findKrill returns the single krill entity in the world, failing the
// test if there is not exactly one.
func findKrill(t *testing.T, eco *Ecosystem) (ecs.Entity, *components.Krill) {
	t.Helper()

	filter := ecs.NewFilter2[components.Boid, components.Krill](eco.World)
	query := filter.Query()

	var ent ecs.Entity
	var krill *components.Krill
	count := 0
	for query.Next() {
		_, k := query.Get()
		ent = query.Entity()
		krill = k
		count++
	}
	if count != 1 {
		t.Fatalf("found %d krill, want exactly 1", count)
	}
	return ent, krill
}

func TestRegularKrillNeedsBothCounters(t *testing.T) {
	eco := newTestEcosystem(t)
	sys := NewKrillSystem(eco)

	ent, _ := eco.Spawn(components.SpeciesRegularKrill, 400, 400)
	boid := eco.BoidMap.Get(ent)

	// Poop satisfied, plant food not: no transformation.
	boid.PoopEaten = int32(eco.Cfg.Krill.PoopThreshold)
	boid.FoodConsumed = int32(eco.Cfg.Krill.FoodThreshold) - 1
	sys.Update()

	if eco.Count(components.SpeciesMomKrill) != 0 {
		t.Fatal("krill transformed with only one counter satisfied")
	}
	if eco.Count(components.SpeciesRegularKrill) != 1 {
		t.Fatal("regular krill disappeared")
	}

	// Both satisfied: the transform flag is set and acted on.
	boid = eco.BoidMap.Get(ent)
	boid.FoodConsumed = int32(eco.Cfg.Krill.FoodThreshold)
	sys.Update()

	if eco.Count(components.SpeciesMomKrill) != 1 {
		t.Errorf("mom count = %d, want 1", eco.Count(components.SpeciesMomKrill))
	}
	if eco.Count(components.SpeciesRegularKrill) != 0 {
		t.Errorf("regular count = %d, want 0", eco.Count(components.SpeciesRegularKrill))
	}
	if eco.World.Alive(ent) {
		t.Error("source krill still alive after transformation")
	}
}

func TestKrillTransformCarriesVelocityAndEnergy(t *testing.T) {
	eco := newTestEcosystem(t)
	sys := NewKrillSystem(eco)

	ent, _ := eco.Spawn(components.SpeciesRegularKrill, 400, 400)
	boid := eco.BoidMap.Get(ent)
	boid.PoopEaten = int32(eco.Cfg.Krill.PoopThreshold)
	boid.FoodConsumed = int32(eco.Cfg.Krill.FoodThreshold)
	boid.Energy = 42.5
	vel := eco.VelMap.Get(ent)
	vel.X, vel.Y = 0.7, -0.3

	sys.Update()

	mom, _ := findKrill(t, eco)
	if got := eco.BoidMap.Get(mom).Energy; got != 42.5 {
		t.Errorf("energy = %v, want 42.5", got)
	}
	momVel := eco.VelMap.Get(mom)
	if momVel.X != 0.7 || momVel.Y != -0.3 {
		t.Errorf("velocity = (%v, %v), want (0.7, -0.3)", momVel.X, momVel.Y)
	}
}

func TestPaleKrillMaturesOnFirstMeal(t *testing.T) {
	eco := newTestEcosystem(t)
	sys := NewKrillSystem(eco)

	ent, _ := eco.Spawn(components.SpeciesPaleKrill, 400, 400)
	eco.BoidMap.Get(ent).HasEatenThisStage = true

	sys.Update()

	if eco.Count(components.SpeciesRegularKrill) != 1 {
		t.Errorf("regular count = %d, want 1", eco.Count(components.SpeciesRegularKrill))
	}
	if eco.Count(components.SpeciesPaleKrill) != 0 {
		t.Errorf("pale count = %d, want 0", eco.Count(components.SpeciesPaleKrill))
	}
}

func TestPaleKrillMaturesOnTimeout(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Krill.PaleMaturationTicks = 5
	sys := NewKrillSystem(eco)

	eco.Spawn(components.SpeciesPaleKrill, 400, 400)

	for i := 0; i < 4; i++ {
		sys.Update()
	}
	if eco.Count(components.SpeciesPaleKrill) != 1 {
		t.Fatal("pale krill matured before its timeout")
	}

	sys.Update()
	if eco.Count(components.SpeciesRegularKrill) != 1 {
		t.Errorf("regular count = %d, want 1 after timeout", eco.Count(components.SpeciesRegularKrill))
	}
}

func TestMomKrillProducesOffspringAndReverts(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Krill.OffspringIntervalTicks = 3
	sys := NewKrillSystem(eco)

	eco.Spawn(components.SpeciesMomKrill, 400, 400)

	// Run enough intervals for the mom to exhaust either the offspring or
	// the batch cap; the offspring themselves must not mature meanwhile.
	for i := 0; i < 3*eco.Cfg.Krill.MaxBatches+2; i++ {
		sys.Update()
	}

	pale := eco.Count(components.SpeciesPaleKrill)
	if pale < eco.Cfg.Krill.OffspringPerBatchMin || pale > eco.Cfg.Krill.MaxOffspring {
		t.Errorf("pale offspring = %d, want within [%d, %d]",
			pale, eco.Cfg.Krill.OffspringPerBatchMin, eco.Cfg.Krill.MaxOffspring)
	}
	if eco.Count(components.SpeciesMomKrill) != 0 {
		t.Error("mom did not revert after exhausting her caps")
	}
	if eco.Count(components.SpeciesRegularKrill) != 1 {
		t.Errorf("regular count = %d, want 1 (the reverted mom)", eco.Count(components.SpeciesRegularKrill))
	}
}
