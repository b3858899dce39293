package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

func TestFertilizationConsumesEggAndSperm(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Eggs.FertilizationChance = 1.0
	sys := NewReproductionSystem(eco)

	egg, _ := eco.Spawn(components.SpeciesFishEgg, 100, 100)
	sperm := eco.SpawnSpermWithVelocity(102, 100, 0, 0)

	eco.Grid.Update(egg, components.SpeciesFishEgg, 100, 100, 0, 0)
	eco.Grid.Update(sperm, components.SpeciesSperm, 102, 100, 0, 0)

	sys.Update()

	if eco.Count(components.SpeciesFertilizedEgg) != 1 {
		t.Errorf("fertilized count = %d, want 1", eco.Count(components.SpeciesFertilizedEgg))
	}
	if eco.Count(components.SpeciesFishEgg) != 0 {
		t.Errorf("egg count = %d, want 0", eco.Count(components.SpeciesFishEgg))
	}
	if eco.Count(components.SpeciesSperm) != 0 {
		t.Errorf("sperm count = %d, want 0", eco.Count(components.SpeciesSperm))
	}
}

func TestFertilizationEggClaimedOnce(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Eggs.FertilizationChance = 1.0
	sys := NewReproductionSystem(eco)

	egg, _ := eco.Spawn(components.SpeciesFishEgg, 100, 100)
	s1 := eco.SpawnSpermWithVelocity(101, 100, 0, 0)
	s2 := eco.SpawnSpermWithVelocity(99, 100, 0, 0)

	eco.Grid.Update(egg, components.SpeciesFishEgg, 100, 100, 0, 0)
	eco.Grid.Update(s1, components.SpeciesSperm, 101, 100, 0, 0)
	eco.Grid.Update(s2, components.SpeciesSperm, 99, 100, 0, 0)

	sys.Update()

	// One egg can only become one fertilized egg; the losing sperm
	// survives the tick.
	if eco.Count(components.SpeciesFertilizedEgg) != 1 {
		t.Errorf("fertilized count = %d, want 1", eco.Count(components.SpeciesFertilizedEgg))
	}
	if eco.Count(components.SpeciesSperm) != 1 {
		t.Errorf("sperm count = %d, want 1", eco.Count(components.SpeciesSperm))
	}
}

func TestFertilizationOutOfRange(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Eggs.FertilizationChance = 1.0
	sys := NewReproductionSystem(eco)

	egg, _ := eco.Spawn(components.SpeciesFishEgg, 100, 100)
	far := float32(eco.Cfg.Eggs.FertilizationRange) * 3
	sperm := eco.SpawnSpermWithVelocity(100+far, 100, 0, 0)

	eco.Grid.Update(egg, components.SpeciesFishEgg, 100, 100, 0, 0)
	eco.Grid.Update(sperm, components.SpeciesSperm, 100+far, 100, 0, 0)

	sys.Update()

	if eco.Count(components.SpeciesFertilizedEgg) != 0 {
		t.Error("fertilization happened outside the range")
	}
}

func TestFertilizedEggHatchesIntoTrueFry(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Eggs.HatchingTicks = 3
	sys := NewReproductionSystem(eco)

	eco.Spawn(components.SpeciesFertilizedEgg, 200, 200)

	sys.Update()
	sys.Update()
	if eco.Count(components.SpeciesFertilizedEgg) != 1 {
		t.Fatal("egg hatched before its development time")
	}

	sys.Update()
	if eco.Count(components.SpeciesTrueFry1) != 1 {
		t.Errorf("TrueFry1 count = %d, want 1", eco.Count(components.SpeciesTrueFry1))
	}
	if eco.Count(components.SpeciesFertilizedEgg) != 0 {
		t.Errorf("fertilized count = %d, want 0", eco.Count(components.SpeciesFertilizedEgg))
	}
}

func TestTrueFryStageOneAdvancesOnFood(t *testing.T) {
	eco := newTestEcosystem(t)
	sys := NewReproductionSystem(eco)

	ent, _ := eco.Spawn(components.SpeciesTrueFry1, 200, 200)
	eco.TrueFryMap.Get(ent).FoodEaten = int32(eco.Cfg.TrueFry.Stage1.FoodThreshold)

	sys.Update()

	if eco.Count(components.SpeciesTrueFry1) != 0 || eco.Count(components.SpeciesTrueFry2) != 1 {
		t.Fatalf("counts = (%d, %d), want (0, 1)",
			eco.Count(components.SpeciesTrueFry1), eco.Count(components.SpeciesTrueFry2))
	}

	// Stage one to two mutates in place: same entity, updated tags.
	tf := eco.TrueFryMap.Get(ent)
	if tf.Stage != components.TrueFryStage2 {
		t.Errorf("stage = %v, want TrueFryStage2", tf.Stage)
	}
	if tf.FoodEaten != 0 || tf.StageTicks != 0 {
		t.Error("stage counters not reset on advancement")
	}
	boid := eco.BoidMap.Get(ent)
	if boid.Species != components.SpeciesTrueFry2 {
		t.Errorf("boid species = %v, want TrueFry2", boid.Species)
	}
	if got := eco.BodyMap.Get(ent).Radius; got != float32(eco.Cfg.TrueFry.Stage2.Size) {
		t.Errorf("radius = %v, want %v", got, eco.Cfg.TrueFry.Stage2.Size)
	}
}

func TestTrueFryStageOneAdvancesOnTimeout(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.TrueFry.Stage1.TimeTicks = 2
	sys := NewReproductionSystem(eco)

	eco.Spawn(components.SpeciesTrueFry1, 200, 200)

	sys.Update()
	sys.Update()

	if eco.Count(components.SpeciesTrueFry2) != 1 {
		t.Errorf("TrueFry2 count = %d, want 1 after timeout", eco.Count(components.SpeciesTrueFry2))
	}
}

func TestTrueFryStageTwoBecomesAdult(t *testing.T) {
	eco := newTestEcosystem(t)
	sys := NewReproductionSystem(eco)

	ent, _ := eco.Spawn(components.SpeciesTrueFry2, 200, 200)
	eco.TrueFryMap.Get(ent).FoodEaten = int32(eco.Cfg.TrueFry.Stage2.FoodThreshold)
	eco.BoidMap.Get(ent).Energy = 61

	sys.Update()

	if eco.Count(components.SpeciesFry) != 1 {
		t.Fatalf("fry count = %d, want 1", eco.Count(components.SpeciesFry))
	}
	if eco.Count(components.SpeciesTrueFry2) != 0 {
		t.Errorf("TrueFry2 count = %d, want 0", eco.Count(components.SpeciesTrueFry2))
	}
	if eco.World.Alive(ent) {
		t.Error("juvenile still alive after growing up")
	}

	// Energy carries over to the adult.
	filter := ecs.NewFilter2[components.Boid, components.Fry](eco.World)
	query := filter.Query()
	for query.Next() {
		boid, _ := query.Get()
		if boid.Energy != 61 {
			t.Errorf("adult energy = %v, want 61", boid.Energy)
		}
	}
}

func TestFeedingPairTriggersGermination(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Fry.LayChance = 1.0
	eco.Cfg.Fry.GerminationMinTicks = 1
	eco.Cfg.Fry.GerminationMaxTicks = 1
	eco.Cfg.Fry.EggsMin = 2
	eco.Cfg.Fry.EggsMax = 2
	sys := NewReproductionSystem(eco)

	a, _ := eco.Spawn(components.SpeciesFry, 300, 300)
	b, _ := eco.Spawn(components.SpeciesFry, 310, 300)
	eco.BoidMap.Get(a).State = components.StateFeeding
	eco.BoidMap.Get(b).State = components.StateFeeding

	eco.Grid.Update(a, components.SpeciesFry, 300, 300, 0, 0)
	eco.Grid.Update(b, components.SpeciesFry, 310, 300, 0, 0)

	// First tick triggers germination for both feeding partners; the
	// second runs the countdown to zero and lays the clutches.
	sys.Update()
	if !eco.FryMap.Get(a).Germinating || !eco.FryMap.Get(b).Germinating {
		t.Fatal("feeding pair did not germinate")
	}

	sys.Update()
	if got := eco.Count(components.SpeciesFishEgg); got != 4 {
		t.Errorf("egg count = %d, want 4 (two clutches of two)", got)
	}
	if eco.FryMap.Get(a).LayCooldown != int32(eco.Cfg.Fry.LayCooldownTicks) {
		t.Error("lay cooldown not set after laying")
	}

	// Laying ends the meal: both parents go back to foraging.
	if got := eco.BoidMap.Get(a).State; got != components.StateForaging {
		t.Errorf("layer state = %v, want StateForaging", got)
	}
	if got := eco.BoidMap.Get(b).State; got != components.StateForaging {
		t.Errorf("partner state = %v, want StateForaging", got)
	}
}

func TestFeedingFryDivertsToEgg(t *testing.T) {
	eco := newTestEcosystem(t)
	sys := NewReproductionSystem(eco)

	egg, _ := eco.Spawn(components.SpeciesFishEgg, 400, 300)
	eco.Grid.Update(egg, components.SpeciesFishEgg, 400, 300, 0, 0)

	fry, _ := eco.Spawn(components.SpeciesFry, 300, 300)
	eco.BoidMap.Get(fry).State = components.StateFeeding

	sys.Update()

	// An unfertilized egg outranks the meal.
	if got := eco.BoidMap.Get(fry).State; got != components.StateSpawning {
		t.Fatalf("state = %v, want StateSpawning", got)
	}
	f := eco.FryMap.Get(fry)
	if !f.HasSpawnTarget || f.SpawnTarget != egg {
		t.Error("feeding fry did not lock onto the egg")
	}
}

func TestSpawnerApproachesEggAndReleasesSperm(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Eggs.FertilizationChance = 0 // isolate the release step
	sys := NewReproductionSystem(eco)

	egg, _ := eco.Spawn(components.SpeciesFishEgg, 500, 500)
	eco.Grid.Update(egg, components.SpeciesFishEgg, 500, 500, 0, 0)

	// Place the fry already at the approach point above the egg.
	approachY := 500 - float32(eco.Cfg.Fry.SpawnApproachOffset)
	fry, _ := eco.Spawn(components.SpeciesFry, 500, approachY)
	pos := eco.PosMap.Get(fry)
	pos.X, pos.Y = 500, approachY

	// Tick 1: the foraging fry finds the egg and enters the spawning run.
	sys.Update()
	boid := eco.BoidMap.Get(fry)
	if boid.State != components.StateSpawning {
		t.Fatalf("state = %v, want StateSpawning", boid.State)
	}

	// Tick 2: already in release range, so the sperm cloud is dropped.
	sys.Update()
	boid = eco.BoidMap.Get(fry)
	if boid.State != components.StateSpawningCooldown {
		t.Errorf("state = %v, want StateSpawningCooldown", boid.State)
	}
	if got := eco.Count(components.SpeciesSperm); got != eco.Cfg.Fry.SpermCount {
		t.Errorf("sperm count = %d, want %d", got, eco.Cfg.Fry.SpermCount)
	}
	if eco.FryMap.Get(fry).SpawnCooldown != int32(eco.Cfg.Fry.SpawnCooldownTicks) {
		t.Error("spawn cooldown not set after release")
	}
}

func TestSpawnerHoldsSpermUntilEggInRange(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Fry.SpawnApproachOffset = 30
	sys := NewReproductionSystem(eco)

	egg, _ := eco.Spawn(components.SpeciesFishEgg, 500, 500)
	eco.Grid.Update(egg, components.SpeciesFishEgg, 500, 500, 0, 0)

	// Parked exactly on the approach point, but the egg itself is still
	// three times the release distance away.
	fry, _ := eco.Spawn(components.SpeciesFry, 500, 470)
	pos := eco.PosMap.Get(fry)
	pos.X, pos.Y = 500, 470

	sys.Update() // targets the egg
	sys.Update() // approach point reached, egg still out of range

	if got := eco.BoidMap.Get(fry).State; got != components.StateSpawning {
		t.Errorf("state = %v, want StateSpawning while the egg is out of range", got)
	}
	if eco.Count(components.SpeciesSperm) != 0 {
		t.Error("sperm released before reaching the egg")
	}
}

func TestSpawnerAbortsOnTimeout(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Fry.SpawnTimeoutTicks = 2
	eco.Cfg.Fry.SpermReleaseDistance = 0.5
	sys := NewReproductionSystem(eco)

	egg, _ := eco.Spawn(components.SpeciesFishEgg, 900, 500)
	eco.Grid.Update(egg, components.SpeciesFishEgg, 900, 500, 0, 0)

	fry, _ := eco.Spawn(components.SpeciesFry, 100, 500)
	pos := eco.PosMap.Get(fry)
	pos.X, pos.Y = 100, 500

	sys.Update() // targets the egg
	sys.Update() // timeout 2 -> 1
	sys.Update() // timeout 1 -> 0, abort

	boid := eco.BoidMap.Get(fry)
	if boid.State != components.StateForaging {
		t.Errorf("state = %v, want StateForaging after timeout", boid.State)
	}
	if eco.FryMap.Get(fry).HasSpawnTarget {
		t.Error("spawn target not cleared on abort")
	}
	if eco.Count(components.SpeciesSperm) != 0 {
		t.Error("sperm released despite the aborted approach")
	}
}
