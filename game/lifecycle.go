package game

import (
	"log/slog"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/telemetry"
)

// seedPopulation creates the starting entities from the population
// config. Fry and krill scatter across open water; tuna start in the
// middle band and squid at the bottom.
func (g *Game) seedPopulation() {
	cfg := &g.cfg.Population
	w := g.eco.Bounds.Width
	h := g.eco.Bounds.Height

	for i := 0; i < cfg.InitialFry; i++ {
		g.eco.Spawn(components.SpeciesFry, g.rng.Float32()*w, g.rng.Float32()*h*0.6)
	}
	for i := 0; i < cfg.InitialKrill; i++ {
		g.eco.Spawn(components.SpeciesRegularKrill, g.rng.Float32()*w, h*0.3+g.rng.Float32()*h*0.5)
	}
	for i := 0; i < cfg.InitialTuna; i++ {
		g.eco.Spawn(components.SpeciesTuna, g.rng.Float32()*w, h*0.2+g.rng.Float32()*h*0.4)
	}
	for i := 0; i < cfg.InitialSquid; i++ {
		g.eco.Spawn(components.SpeciesGiantSquid, g.rng.Float32()*w, h*0.85)
	}
}

// enforcePopulationFloors respawns prey species that collapsed below
// their floor, so a predator-heavy run does not end in an empty tank.
func (g *Game) enforcePopulationFloors() {
	cfg := &g.cfg.Population
	w := g.eco.Bounds.Width
	h := g.eco.Bounds.Height

	fry := g.eco.Count(components.SpeciesFry) +
		g.eco.Count(components.SpeciesTrueFry1) +
		g.eco.Count(components.SpeciesTrueFry2)
	if fry < cfg.MinFry {
		for i := 0; i < cfg.RespawnCount; i++ {
			g.eco.Spawn(components.SpeciesFry, g.rng.Float32()*w, g.rng.Float32()*h*0.5)
		}
		slog.Debug("fry floor respawn", "tick", g.tick, "count", cfg.RespawnCount)
	}

	krill := g.eco.Count(components.SpeciesRegularKrill) +
		g.eco.Count(components.SpeciesPaleKrill) +
		g.eco.Count(components.SpeciesMomKrill)
	if krill < cfg.MinKrill {
		for i := 0; i < cfg.RespawnCount; i++ {
			g.eco.Spawn(components.SpeciesRegularKrill, g.rng.Float32()*w, h*0.3+g.rng.Float32()*h*0.5)
		}
		slog.Debug("krill floor respawn", "tick", g.tick, "count", cfg.RespawnCount)
	}
}

// flushTelemetry samples populations and energies, flushes the window
// and writes CSV rows.
func (g *Game) flushTelemetry() {
	pops := telemetry.Populations{
		Fry: g.eco.Count(components.SpeciesFry),
		TrueFry: g.eco.Count(components.SpeciesTrueFry1) +
			g.eco.Count(components.SpeciesTrueFry2),
		Krill: g.eco.Count(components.SpeciesRegularKrill) +
			g.eco.Count(components.SpeciesPaleKrill) +
			g.eco.Count(components.SpeciesMomKrill),
		Tuna:           g.eco.Count(components.SpeciesTuna),
		Squid:          g.eco.Count(components.SpeciesGiantSquid),
		Eggs:           g.eco.Count(components.SpeciesFishEgg),
		FertilizedEggs: g.eco.Count(components.SpeciesFertilizedEgg),
		Detritus:       g.eco.Count(components.SpeciesDetritus),
	}

	fishEnergies, krillEnergies := g.sampleEnergies()
	stats := g.collector.Flush(g.tick, pops, fishEnergies, krillEnergies)

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}
	if g.logStats {
		stats.LogStats()
		g.perf.Stats().LogStats()
	}
	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Warn("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(g.perf.Stats(), g.tick); err != nil {
		slog.Warn("failed to write perf", "error", err)
	}
}

// sampleEnergies collects current boid energies split into fish and
// krill for distribution stats.
func (g *Game) sampleEnergies() (fish, krill []float64) {
	query := g.boidFilter.Query()
	for query.Next() {
		boid := query.Get()
		if boid.Species.IsKrill() {
			krill = append(krill, float64(boid.Energy))
		} else {
			fish = append(fish, float64(boid.Energy))
		}
	}
	return fish, krill
}
