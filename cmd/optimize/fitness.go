package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/game"
	"github.com/pthm-cable/reef/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Functional extinction thresholds. A group below its minimum viable
// population for extinctionGraceTicks consecutive ticks counts as
// extinct even if a few stragglers remain.
const (
	minViableFish        = 3
	minViableKrill       = 3
	minViableTuna        = 1
	extinctionGraceTicks = 1800 // 30 seconds at 60 ticks/sec
	warmupTicks          = 600  // let the population establish first
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64                   // ticks before functional extinction (or maxTicks)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer survival = lower fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result.windowStats),
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run. Runs until
// functional extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}

	g, err := game.NewGame(game.Options{
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		// No output dir is configured, so construction cannot fail in
		// practice; score it as an immediate collapse if it does.
		result.survivalTicks = 0
		return result
	}
	defer g.Unload()

	var fishBelow, krillBelow, tunaBelow int64

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		tick := g.Tick()
		if tick < warmupTicks {
			continue
		}

		fish := g.FishCount()
		krill := g.KrillCount()
		tuna := g.TunaCount()

		// Hard extinction: a trophic level completely gone
		if fish == 0 || krill == 0 || tuna == 0 {
			result.survivalTicks = tick
			return result
		}

		fishBelow = belowTicks(fishBelow, fish < minViableFish)
		krillBelow = belowTicks(krillBelow, krill < minViableKrill)
		tunaBelow = belowTicks(tunaBelow, tuna < minViableTuna)

		if fishBelow >= extinctionGraceTicks ||
			krillBelow >= extinctionGraceTicks ||
			tunaBelow >= extinctionGraceTicks {
			result.survivalTicks = tick
			return result
		}
	}

	// Survived the full run
	result.survivalTicks = fe.maxTicks
	return result
}

// belowTicks advances or resets a consecutive-ticks-below counter.
func belowTicks(counter int64, below bool) int64 {
	if below {
		return counter + 1
	}
	return 0
}

// copyConfig creates a copy of the base config with the respawn floors
// disabled, so a run measures unassisted stability.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Population.MinFry = 0
	cfg.Population.MinKrill = 0
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := fe.computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio      = 0.30
	qualityWeightStability  = 0.25
	qualityWeightEnergy     = 0.25
	qualityWeightThroughput = 0.20

	qualityWarmupWindows = 3 // skip first N windows
	qualityMinPop        = 3 // exclude windows with a collapsed group
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	valid := windows[qualityWarmupWindows:]

	var ratioSum, energySum, throughputSum float64
	var ratioCount, energyCount, throughputCount int

	fishCounts := make([]float64, 0, len(valid))
	krillCounts := make([]float64, 0, len(valid))

	for _, w := range valid {
		fish := w.FryCount + w.TrueFryCount
		if fish < qualityMinPop || w.KrillCount < qualityMinPop || w.TunaCount == 0 {
			continue
		}

		fishCounts = append(fishCounts, float64(fish))
		krillCounts = append(krillCounts, float64(w.KrillCount))

		// 1. Prey-to-predator ratio score, log-gaussian around 15:1
		ratio := float64(fish+w.KrillCount) / float64(w.TunaCount)
		logErr := math.Log(ratio / 15.0)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		// 2. Energy health: median fish energy and mean krill energy
		// centered on the comfortable middle of the 0-100 scale
		fishH := math.Exp(-math.Pow((w.FishEnergyP50-55.0)/25.0, 2))
		krillH := math.Exp(-math.Pow((w.KrillEnergyMean-55.0)/25.0, 2))
		energySum += (fishH + krillH) / 2.0
		energyCount++

		// 3. Lifecycle throughput: hatches and transformations show the
		// reproduction chains are actually turning over
		churn := float64(w.Hatches + w.Transformations)
		throughputSum += 1.0 - math.Exp(-churn/4.0)
		throughputCount++
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	// Population stability (CV across valid windows)
	stabilityScore := 0.0
	if len(fishCounts) >= 2 {
		cvFish := cv(fishCounts)
		cvKrill := cv(krillCounts)
		stabilityScore = math.Exp(-(cvFish*cvFish + cvKrill*cvKrill))
	}

	energyScore := 0.0
	if energyCount > 0 {
		energyScore = energySum / float64(energyCount)
	}

	throughputScore := 0.0
	if throughputCount > 0 {
		throughputScore = throughputSum / float64(throughputCount)
	}

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energyScore +
		qualityWeightThroughput*throughputScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
