package telemetry

import "github.com/pthm-cable/reef/components"

// Collector accumulates simulation events within time windows and
// produces WindowStats. It implements the event sink the behavior
// systems report into.
type Collector struct {
	windowTicks int64
	windowStart int64

	spawns   [components.SpeciesCount]int
	removals [components.SpeciesCount]int

	tunaKills  int
	squidKills int
	grazes     int

	transformations int
	eggsLaid        int
	fertilizations  int
	hatches         int
	jets            int
}

// NewCollector creates a stats collector with the given window length in
// ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

// RecordEat records a predation or grazing event.
func (c *Collector) RecordEat(predator, prey components.Species) {
	switch predator {
	case components.SpeciesTuna:
		c.tunaKills++
	case components.SpeciesGiantSquid:
		c.squidKills++
	default:
		c.grazes++
	}
}

// RecordSpawn records an entity entering the world.
func (c *Collector) RecordSpawn(s components.Species) {
	c.spawns[s]++
}

// RecordRemoval records an entity leaving the world.
func (c *Collector) RecordRemoval(s components.Species) {
	c.removals[s]++
}

// RecordTransformation records a lifecycle stage change.
func (c *Collector) RecordTransformation(from, to components.Species) {
	c.transformations++
}

// RecordEggsLaid records a clutch of eggs.
func (c *Collector) RecordEggsLaid(count int) {
	c.eggsLaid += count
}

// RecordFertilization records an egg fertilization.
func (c *Collector) RecordFertilization() {
	c.fertilizations++
}

// RecordHatch records a fertilized egg hatching.
func (c *Collector) RecordHatch() {
	c.hatches++
}

// RecordJet records a squid jet burst.
func (c *Collector) RecordJet() {
	c.jets++
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStart >= c.windowTicks
}

// Populations holds the live counts sampled at window end.
type Populations struct {
	Fry            int
	TrueFry        int
	Krill          int
	Tuna           int
	Squid          int
	Eggs           int
	FertilizedEggs int
	Detritus       int
}

// Flush produces a WindowStats and resets the counters for the next
// window. Energy samples are taken by the caller at window end.
func (c *Collector) Flush(currentTick int64, pops Populations, fishEnergies, krillEnergies []float64) WindowStats {
	var spawns, deaths int
	for i := range c.spawns {
		spawns += c.spawns[i]
		deaths += c.removals[i]
	}

	fishMean, fishP10, fishP50, fishP90 := ComputeEnergyStats(fishEnergies)
	krillMean, krillStd := ComputeMeanStd(krillEnergies)

	stats := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) / 60.0,

		FryCount:      pops.Fry,
		TrueFryCount:  pops.TrueFry,
		KrillCount:    pops.Krill,
		TunaCount:     pops.Tuna,
		SquidCount:    pops.Squid,
		EggCount:      pops.Eggs,
		FertEggCount:  pops.FertilizedEggs,
		DetritusCount: pops.Detritus,

		Spawns: spawns,
		Deaths: deaths,

		TunaKills:       c.tunaKills,
		SquidKills:      c.squidKills,
		Grazes:          c.grazes,
		Transformations: c.transformations,
		EggsLaid:        c.eggsLaid,
		Fertilizations:  c.fertilizations,
		Hatches:         c.hatches,
		Jets:            c.jets,

		FishEnergyMean: fishMean,
		FishEnergyP10:  fishP10,
		FishEnergyP50:  fishP50,
		FishEnergyP90:  fishP90,

		KrillEnergyMean: krillMean,
		KrillEnergyStd:  krillStd,
	}

	c.windowStart = currentTick
	c.spawns = [components.SpeciesCount]int{}
	c.removals = [components.SpeciesCount]int{}
	c.tunaKills = 0
	c.squidKills = 0
	c.grazes = 0
	c.transformations = 0
	c.eggsLaid = 0
	c.fertilizations = 0
	c.hatches = 0
	c.jets = 0

	return stats
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}
