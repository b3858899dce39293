package systems

import (
	"testing"

	"github.com/pthm-cable/reef/components"
)

func TestFryEatsAdjacentDetritus(t *testing.T) {
	eco := newTestEcosystem(t)
	sync := NewSpatialSyncSystem(eco)
	sys := NewForageSystem(eco)

	fry, _ := eco.Spawn(components.SpeciesFry, 400, 400)
	eco.BoidMap.Get(fry).Energy = 50
	eco.SpawnDetritus(403, 400, true)

	sync.Update()
	sys.Update()

	if eco.Count(components.SpeciesDetritus) != 0 {
		t.Fatalf("detritus count = %d, want 0", eco.Count(components.SpeciesDetritus))
	}

	boid := eco.BoidMap.Get(fry)
	if boid.PoopEaten != 1 {
		t.Errorf("PoopEaten = %d, want 1", boid.PoopEaten)
	}
	if boid.FoodConsumed != 0 {
		t.Errorf("FoodConsumed = %d, want 0 for a poop particle", boid.FoodConsumed)
	}
	if !boid.HasEatenThisStage {
		t.Error("HasEatenThisStage not set")
	}
	if boid.State != components.StateFeeding {
		t.Errorf("state = %v, want feeding", boid.State)
	}
	if boid.FeedingTimer != int32(eco.Cfg.Fry.FeedingTicks) {
		t.Errorf("feeding timer = %d, want %d", boid.FeedingTimer, eco.Cfg.Fry.FeedingTicks)
	}
	if boid.Energy <= 50 {
		t.Errorf("energy = %v, want the eat gain applied", boid.Energy)
	}
}

func TestKrillEatsMarineSnow(t *testing.T) {
	eco := newTestEcosystem(t)
	sync := NewSpatialSyncSystem(eco)
	sys := NewForageSystem(eco)

	krill, _ := eco.Spawn(components.SpeciesRegularKrill, 400, 400)
	eco.SpawnDetritus(402, 400, false)

	sync.Update()
	sys.Update()

	boid := eco.BoidMap.Get(krill)
	if boid.FoodConsumed != 1 {
		t.Errorf("FoodConsumed = %d, want 1 for marine snow", boid.FoodConsumed)
	}
	if boid.PoopEaten != 0 {
		t.Errorf("PoopEaten = %d, want 0", boid.PoopEaten)
	}
}

func TestDetritusFeedsOnlyOneClaimant(t *testing.T) {
	eco := newTestEcosystem(t)
	sync := NewSpatialSyncSystem(eco)
	sys := NewForageSystem(eco)

	a, _ := eco.Spawn(components.SpeciesFry, 400, 400)
	b, _ := eco.Spawn(components.SpeciesFry, 404, 400)
	eco.SpawnDetritus(402, 400, false)

	sync.Update()
	sys.Update()

	fed := 0
	if eco.BoidMap.Get(a).FoodConsumed > 0 {
		fed++
	}
	if eco.BoidMap.Get(b).FoodConsumed > 0 {
		fed++
	}
	if fed != 1 {
		t.Errorf("%d boids fed from one particle, want 1", fed)
	}
}

func TestFeedingCycleReturnsToForaging(t *testing.T) {
	eco := newTestEcosystem(t)
	eco.Cfg.Fry.FeedingTicks = 2
	sync := NewSpatialSyncSystem(eco)
	sys := NewForageSystem(eco)

	fry, _ := eco.Spawn(components.SpeciesFry, 400, 400)
	eco.SpawnDetritus(403, 400, false)

	sync.Update()
	sys.Update() // eat: Feeding, timer 2

	boid := eco.BoidMap.Get(fry)
	if boid.State != components.StateFeeding {
		t.Fatalf("state = %v, want feeding", boid.State)
	}

	// Timer runs out, then the half-length cooldown does.
	sys.Update() // timer 2 -> 1
	sys.Update() // timer 1 -> 0, cooldown starts at 1
	boid = eco.BoidMap.Get(fry)
	if boid.State != components.StateFeedingCooldown {
		t.Fatalf("state = %v, want feeding cooldown", boid.State)
	}

	sys.Update() // cooldown 1 -> 0, back to foraging
	boid = eco.BoidMap.Get(fry)
	if boid.State != components.StateForaging {
		t.Errorf("state = %v, want foraging after the cooldown", boid.State)
	}
}

func TestBoidStarvesAtZeroEnergy(t *testing.T) {
	eco := newTestEcosystem(t)
	sync := NewSpatialSyncSystem(eco)
	sys := NewForageSystem(eco)

	fry, _ := eco.Spawn(components.SpeciesFry, 400, 400)
	eco.BoidMap.Get(fry).Energy = 0.001

	sync.Update()
	sys.Update()

	if eco.Count(components.SpeciesFry) != 0 {
		t.Error("fry survived at zero energy")
	}
	if eco.World.Alive(fry) {
		t.Error("starved fry still alive")
	}
}

func TestTrueFryEatCountsTowardGrowth(t *testing.T) {
	eco := newTestEcosystem(t)
	sync := NewSpatialSyncSystem(eco)
	sys := NewForageSystem(eco)

	tf, _ := eco.Spawn(components.SpeciesTrueFry1, 400, 400)
	eco.SpawnDetritus(402, 400, false)

	sync.Update()
	sys.Update()

	if got := eco.TrueFryMap.Get(tf).FoodEaten; got != 1 {
		t.Errorf("FoodEaten = %d, want 1", got)
	}
}

func TestSpawningFryIgnoresFood(t *testing.T) {
	eco := newTestEcosystem(t)
	sync := NewSpatialSyncSystem(eco)
	sys := NewForageSystem(eco)

	fry, _ := eco.Spawn(components.SpeciesFry, 400, 400)
	eco.BoidMap.Get(fry).State = components.StateSpawning
	eco.SpawnDetritus(403, 400, false)

	sync.Update()
	sys.Update()

	if eco.Count(components.SpeciesDetritus) != 1 {
		t.Error("spawning fry ate; movement and eating belong to reproduction during a spawn run")
	}
	if got := eco.BoidMap.Get(fry).State; got != components.StateSpawning {
		t.Errorf("state = %v, want spawning untouched", got)
	}
}
