// Package game wires the simulation systems into a runnable game loop
// with optional rendering, input handling and telemetry output.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/telemetry"
	"github.com/pthm-cable/reef/ui"
)

// Options configures a new game instance.
type Options struct {
	Seed           int64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// Config overrides the global configuration when non-nil. Used by
	// batch runners that evaluate many configs in one process.
	Config *config.Config

	// StatsCallback receives each flushed stats window, if set.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state and the system pipeline.
type Game struct {
	world *ecs.World
	eco   *systems.Ecosystem
	rng   *rand.Rand
	cfg   *config.Config

	// Systems, in step order
	sync         *systems.SpatialSyncSystem
	tuna         *systems.TunaSystem
	squid        *systems.SquidSystem
	forage       *systems.ForageSystem
	physics      *systems.PhysicsSystem
	krill        *systems.KrillSystem
	reproduction *systems.ReproductionSystem
	lifespan     *systems.LifespanSystem

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	// Rendering collaborators (nil in headless mode)
	effects *EffectRenderer
	hud     *ui.HUD
	render  *renderState

	boidFilter ecs.Filter1[components.Boid]

	tick           int64
	paused         bool
	stepsPerUpdate int
	headless       bool
}

// NewGame creates a game instance, seeds the initial population and
// opens telemetry output if requested.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	eco := systems.NewEcosystem(world, cfg, rng)

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	g := &Game{
		world: world,
		eco:   eco,
		rng:   rng,
		cfg:   cfg,

		sync:         systems.NewSpatialSyncSystem(eco),
		tuna:         systems.NewTunaSystem(eco),
		squid:        systems.NewSquidSystem(eco),
		forage:       systems.NewForageSystem(eco),
		physics: systems.NewPhysicsSystem(world,
			systems.Bounds{Width: cfg.Derived.WorldW32, Height: cfg.Derived.WorldH32},
			float32(cfg.Physics.Drag), float32(cfg.Physics.BounceDamp)),
		krill:        systems.NewKrillSystem(eco),
		reproduction: systems.NewReproductionSystem(eco),
		lifespan:     systems.NewLifespanSystem(eco),

		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindowTicks),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,

		boidFilter: *ecs.NewFilter1[components.Boid](world),

		stepsPerUpdate: stepsPerUpdate,
		headless:       opts.Headless,
	}
	eco.Events = g.collector

	if !opts.Headless {
		g.effects = NewEffectRenderer(rng)
		g.hud = ui.NewHUD(cfg)
		eco.Effects = g.effects
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = output
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	g.seedPopulation()

	slog.Info("world seeded",
		"fry", eco.Count(components.SpeciesFry),
		"krill", eco.Count(components.SpeciesRegularKrill),
		"tuna", eco.Count(components.SpeciesTuna),
		"squid", eco.Count(components.SpeciesGiantSquid),
	)

	return g, nil
}

// Update runs input handling plus one or more simulation steps.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
	g.perf.RecordFrame()
}

// UpdateHeadless runs simulation steps without any input or rendering.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep runs a single tick of the simulation.
func (g *Game) simulationStep() {
	g.perf.StartTick()

	// 1. Refresh the spatial index
	g.perf.StartPhase(telemetry.PhaseSpatialGrid)
	g.sync.Update()

	// 2. Predators decide before prey move
	g.perf.StartPhase(telemetry.PhaseTuna)
	g.tuna.Update()

	g.perf.StartPhase(telemetry.PhaseSquid)
	g.squid.Update()

	// 3. Schooling, grazing and starvation
	g.perf.StartPhase(telemetry.PhaseForage)
	g.forage.Update()

	// 4. Integrate motion
	g.perf.StartPhase(telemetry.PhasePhysics)
	g.physics.Update()

	// 5. Lifecycle chains
	g.perf.StartPhase(telemetry.PhaseKrill)
	g.krill.Update()

	g.perf.StartPhase(telemetry.PhaseReproduction)
	g.reproduction.Update()

	// 6. Aging, expiry and ambient food
	g.perf.StartPhase(telemetry.PhaseLifespan)
	g.lifespan.Update()
	g.enforcePopulationFloors()

	// 7. Telemetry window flush
	g.perf.StartPhase(telemetry.PhaseTelemetry)
	if g.collector.ShouldFlush(g.tick) {
		g.flushTelemetry()
	}

	g.perf.EndTick()
	g.tick++
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 {
	return g.tick
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// FishCount returns the adult fry plus juvenile stage population.
func (g *Game) FishCount() int {
	return g.eco.Count(components.SpeciesFry) +
		g.eco.Count(components.SpeciesTrueFry1) +
		g.eco.Count(components.SpeciesTrueFry2)
}

// KrillCount returns the total krill population across all variants.
func (g *Game) KrillCount() int {
	return g.eco.Count(components.SpeciesRegularKrill) +
		g.eco.Count(components.SpeciesPaleKrill) +
		g.eco.Count(components.SpeciesMomKrill)
}

// TunaCount returns the tuna population.
func (g *Game) TunaCount() int {
	return g.eco.Count(components.SpeciesTuna)
}

// SquidCount returns the giant squid population.
func (g *Game) SquidCount() int {
	return g.eco.Count(components.SpeciesGiantSquid)
}

// Unload closes telemetry output and releases render resources.
func (g *Game) Unload() {
	if err := g.output.Close(); err != nil {
		slog.Warn("failed to close output", "error", err)
	}
}
