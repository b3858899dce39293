package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
)

// newTestEcosystem builds an ecosystem over embedded default config with
// a fixed seed. Tests mutate the returned Cfg freely; every test gets its
// own copy.
func newTestEcosystem(t *testing.T) *Ecosystem {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}

	world := ecs.NewWorld()
	return NewEcosystem(world, cfg, rand.New(rand.NewSource(7)))
}

func TestSpawnAndCount(t *testing.T) {
	eco := newTestEcosystem(t)

	species := []components.Species{
		components.SpeciesFry,
		components.SpeciesTrueFry1,
		components.SpeciesTrueFry2,
		components.SpeciesRegularKrill,
		components.SpeciesPaleKrill,
		components.SpeciesMomKrill,
		components.SpeciesTuna,
		components.SpeciesGiantSquid,
		components.SpeciesFishEgg,
		components.SpeciesSperm,
		components.SpeciesFertilizedEgg,
		components.SpeciesDetritus,
	}

	for _, s := range species {
		ent, ok := eco.Spawn(s, 100, 100)
		if !ok {
			t.Fatalf("Spawn(%v) failed", s)
		}
		if !eco.World.Alive(ent) {
			t.Errorf("spawned %v entity is not alive", s)
		}
		if got := eco.Count(s); got != 1 {
			t.Errorf("Count(%v) = %d, want 1", s, got)
		}
	}
}

func TestSpawnClampsPosition(t *testing.T) {
	eco := newTestEcosystem(t)

	ent, ok := eco.Spawn(components.SpeciesFry, -50, eco.Bounds.Height+100)
	if !ok {
		t.Fatal("Spawn failed")
	}
	pos := eco.PosMap.Get(ent)
	if pos.X < 0 || pos.X > eco.Bounds.Width {
		t.Errorf("X = %v, want within [0, %v]", pos.X, eco.Bounds.Width)
	}
	if pos.Y < 0 || pos.Y > eco.Bounds.Height {
		t.Errorf("Y = %v, want within [0, %v]", pos.Y, eco.Bounds.Height)
	}
}

func TestSpeciesOf(t *testing.T) {
	eco := newTestEcosystem(t)

	tests := []struct {
		spawn components.Species
		want  components.Species
	}{
		{components.SpeciesFry, components.SpeciesFry},
		{components.SpeciesTrueFry1, components.SpeciesTrueFry1},
		{components.SpeciesTrueFry2, components.SpeciesTrueFry2},
		{components.SpeciesRegularKrill, components.SpeciesRegularKrill},
		{components.SpeciesPaleKrill, components.SpeciesPaleKrill},
		{components.SpeciesMomKrill, components.SpeciesMomKrill},
		{components.SpeciesTuna, components.SpeciesTuna},
		{components.SpeciesGiantSquid, components.SpeciesGiantSquid},
		{components.SpeciesFishEgg, components.SpeciesFishEgg},
		{components.SpeciesSperm, components.SpeciesSperm},
		{components.SpeciesFertilizedEgg, components.SpeciesFertilizedEgg},
		{components.SpeciesDetritus, components.SpeciesDetritus},
	}

	for _, tt := range tests {
		ent, ok := eco.Spawn(tt.spawn, 200, 200)
		if !ok {
			t.Fatalf("Spawn(%v) failed", tt.spawn)
		}
		got, ok := eco.SpeciesOf(ent)
		if !ok {
			t.Errorf("SpeciesOf(%v entity) not resolved", tt.spawn)
			continue
		}
		if got != tt.want {
			t.Errorf("SpeciesOf(%v entity) = %v, want %v", tt.spawn, got, tt.want)
		}
	}
}

func TestRemoveDecrementsCount(t *testing.T) {
	eco := newTestEcosystem(t)

	ent, _ := eco.Spawn(components.SpeciesRegularKrill, 50, 50)
	eco.Remove(ent)

	if got := eco.Count(components.SpeciesRegularKrill); got != 0 {
		t.Errorf("Count after remove = %d, want 0", got)
	}
	if eco.World.Alive(ent) {
		t.Error("removed entity still alive")
	}

	// A second remove of the stale handle must be a no-op.
	eco.Remove(ent)
	if got := eco.Count(components.SpeciesRegularKrill); got != 0 {
		t.Errorf("Count after double remove = %d, want 0", got)
	}
}

func TestValidTargetFishStagesInterchangeable(t *testing.T) {
	eco := newTestEcosystem(t)

	fry, _ := eco.Spawn(components.SpeciesFry, 10, 10)
	tf, _ := eco.Spawn(components.SpeciesTrueFry1, 20, 20)

	// A handle cached as one fish stage stays valid for any fish stage.
	if !eco.ValidTarget(fry, components.SpeciesTrueFry2) {
		t.Error("adult fry should satisfy a TrueFry2 target")
	}
	if !eco.ValidTarget(tf, components.SpeciesFry) {
		t.Error("TrueFry1 should satisfy a Fry target")
	}

	// Non-fish species must match exactly.
	krill, _ := eco.Spawn(components.SpeciesRegularKrill, 30, 30)
	if eco.ValidTarget(krill, components.SpeciesFry) {
		t.Error("krill must not satisfy a Fry target")
	}

	eco.Remove(fry)
	if eco.ValidTarget(fry, components.SpeciesFry) {
		t.Error("removed entity must not be a valid target")
	}
}

func TestSpawnOffspringIsPale(t *testing.T) {
	eco := newTestEcosystem(t)

	ent := eco.SpawnOffspring(300, 300, 1.0, 0)
	got, ok := eco.SpeciesOf(ent)
	if !ok || got != components.SpeciesPaleKrill {
		t.Errorf("offspring species = %v, want PaleKrill", got)
	}
	if eco.Count(components.SpeciesPaleKrill) != 1 {
		t.Errorf("pale krill count = %d, want 1", eco.Count(components.SpeciesPaleKrill))
	}
}
