// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters. All durations are
// integer tick counts at the nominal 60 ticks per second; no behavioral
// constant is hard-coded in the systems themselves.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Fry        FryConfig        `yaml:"fry"`
	TrueFry    TrueFryConfig    `yaml:"truefry"`
	Krill      KrillConfig      `yaml:"krill"`
	Tuna       TunaConfig       `yaml:"tuna"`
	Squid      SquidConfig      `yaml:"squid"`
	Eggs       EggConfig        `yaml:"eggs"`
	Detritus   DetritusConfig   `yaml:"detritus"`
	Population PopulationConfig `yaml:"population"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world dimensions and edge handling.
type WorldConfig struct {
	Width        int     `yaml:"width"`  // 0 = use screen width
	Height       int     `yaml:"height"` // 0 = use screen height
	EdgeMargin   float64 `yaml:"edge_margin"`
	EdgeForce    float64 `yaml:"edge_force"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	GridCellSize float64 `yaml:"grid_cell_size"`
	Drag         float64 `yaml:"drag"`         // velocity retained per tick
	BounceDamp   float64 `yaml:"bounce_damp"`  // velocity kept after a wall hit
}

// FlockingConfig holds the shared boid steering weights. Separation must
// stay the dominant weight so overlapping radii resolve by weight ordering.
type FlockingConfig struct {
	NeighborRadius   float64 `yaml:"neighbor_radius"`
	SeparationRadius float64 `yaml:"separation_radius"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	CohesionJitter   float64 `yaml:"cohesion_jitter"`
	SeparationWeight float64 `yaml:"separation_weight"`
	WanderForce      float64 `yaml:"wander_force"`
}

// FryConfig holds adult fry parameters, including the egg-laying and
// fertilization chain.
type FryConfig struct {
	MaxSpeed   float64 `yaml:"max_speed"`
	MaxForce   float64 `yaml:"max_force"`
	Size       float64 `yaml:"size"`
	FoodRadius float64 `yaml:"food_radius"`
	EatGain    float64 `yaml:"eat_gain"`
	EnergyDrain float64 `yaml:"energy_drain"`
	FeedingTicks int     `yaml:"feeding_ticks"`

	// Egg laying
	LayDetectionRange   float64 `yaml:"lay_detection_range"`
	LayChance           float64 `yaml:"lay_chance"`
	EggsMin             int     `yaml:"eggs_min"`
	EggsMax             int     `yaml:"eggs_max"`
	GerminationMinTicks int     `yaml:"germination_min_ticks"`
	GerminationMaxTicks int     `yaml:"germination_max_ticks"`
	LayCooldownTicks    int     `yaml:"lay_cooldown_ticks"`

	// Fertilization
	EggDetectionRange    float64 `yaml:"egg_detection_range"`
	SpermReleaseDistance float64 `yaml:"sperm_release_distance"`
	SpermCount           int     `yaml:"sperm_count"`
	SpawnApproachOffset  float64 `yaml:"spawn_approach_offset"`
	SpawnCooldownTicks   int     `yaml:"spawn_cooldown_ticks"`
	SpawnTimeoutTicks    int     `yaml:"spawn_timeout_ticks"`
}

// TrueFryStageConfig holds the dual gate for one juvenile stage: the stage
// advances on the food count or the elapsed ticks, whichever comes first.
type TrueFryStageConfig struct {
	FoodThreshold int     `yaml:"food_threshold"`
	TimeTicks     int     `yaml:"time_ticks"`
	MaxSpeed      float64 `yaml:"max_speed"`
	Size          float64 `yaml:"size"`
}

// TrueFryConfig holds juvenile fish parameters.
type TrueFryConfig struct {
	Stage1   TrueFryStageConfig `yaml:"stage1"`
	Stage2   TrueFryStageConfig `yaml:"stage2"`
	MaxForce float64            `yaml:"max_force"`
	FoodRadius float64          `yaml:"food_radius"`
	EatGain    float64          `yaml:"eat_gain"`
	EnergyDrain float64         `yaml:"energy_drain"`
	FeedingTicks int            `yaml:"feeding_ticks"`
}

// KrillConfig holds the krill lifecycle chain parameters.
type KrillConfig struct {
	MaxSpeed   float64 `yaml:"max_speed"`
	MaxForce   float64 `yaml:"max_force"`
	Size       float64 `yaml:"size"`
	PaleSize   float64 `yaml:"pale_size"`
	FoodRadius float64 `yaml:"food_radius"`
	EatGain    float64 `yaml:"eat_gain"`
	EnergyDrain float64 `yaml:"energy_drain"`
	FeedingTicks int    `yaml:"feeding_ticks"`

	// Regular -> Mom: both counters must be met before the transform flag
	// is set; the transformation itself is then unconditional.
	PoopThreshold int `yaml:"poop_threshold"`
	FoodThreshold int `yaml:"food_threshold"`

	// Pale -> Regular: first eat, or this many ticks, whichever first.
	PaleMaturationTicks int `yaml:"pale_maturation_ticks"`

	// Mom production
	OffspringIntervalTicks int `yaml:"offspring_interval_ticks"`
	OffspringPerBatchMin   int `yaml:"offspring_per_batch_min"`
	OffspringPerBatchMax   int `yaml:"offspring_per_batch_max"`
	MaxOffspring           int `yaml:"max_offspring"`
	MaxBatches             int `yaml:"max_batches"`
	OffspringSpawnOffset   float64 `yaml:"offspring_spawn_offset"`
}

// TunaConfig holds the tuna finite state machine parameters.
type TunaConfig struct {
	MaxSpeed float64 `yaml:"max_speed"`
	MaxForce float64 `yaml:"max_force"`
	Size     float64 `yaml:"size"`

	FishDetectionRadius float64 `yaml:"fish_detection_radius"`
	EggDetectionRadius  float64 `yaml:"egg_detection_radius"` // smaller: camouflage
	AttackRadius        float64 `yaml:"attack_radius"`
	FleeRadius          float64 `yaml:"flee_radius"`
	MaxHuntRange        float64 `yaml:"max_hunt_range"`

	HuntEnergyThreshold float64 `yaml:"hunt_energy_threshold"`
	RestEnergyThreshold float64 `yaml:"rest_energy_threshold"`
	RestRecoverTo       float64 `yaml:"rest_recover_to"`
	RestRegen           float64 `yaml:"rest_regen"`
	EnergyDrain         float64 `yaml:"energy_drain"`
	HuntDrain           float64 `yaml:"hunt_drain"`
	EatGain             float64 `yaml:"eat_gain"`

	FeedingTicks        int     `yaml:"feeding_ticks"`
	RetargetTicks       int     `yaml:"retarget_ticks"`
	PatrolHorizontalBias float64 `yaml:"patrol_horizontal_bias"`
	WanderForce         float64 `yaml:"wander_force"`

	// Target priority scoring
	PreferredSizeRatioMin float64 `yaml:"preferred_size_ratio_min"`
	PreferredSizeRatioMax float64 `yaml:"preferred_size_ratio_max"`
	SwitchMargin          float64 `yaml:"switch_margin"` // new/current priority ratio
	PredictionTicks       float64 `yaml:"prediction_ticks"`

	PoopEvery int `yaml:"poop_every"` // eats per detritus drop
}

// SquidConfig holds the giant squid behavior tree and jet parameters.
type SquidConfig struct {
	MaxSpeed float64 `yaml:"max_speed"`
	FinForce float64 `yaml:"fin_force"`
	Size     float64 `yaml:"size"`

	DetectionRadius float64 `yaml:"detection_radius"`
	AttackRadius    float64 `yaml:"attack_radius"`
	ScanIntervalTicks int   `yaml:"scan_interval_ticks"`
	HuntTimeoutTicks  int   `yaml:"hunt_timeout_ticks"`
	AttackTimeoutTicks int  `yaml:"attack_timeout_ticks"`
	RetreatTicks       int  `yaml:"retreat_ticks"` // consume duration

	// Jet propulsion: duration = base + power*per_power, same for cooldown.
	JetForce            float64 `yaml:"jet_force"`
	JetBaseDuration     int     `yaml:"jet_base_duration"`
	JetDurationPerPower int     `yaml:"jet_duration_per_power"`
	JetBaseCooldown     int     `yaml:"jet_base_cooldown"`
	JetCooldownPerPower int     `yaml:"jet_cooldown_per_power"`
	PatrolJetIntervalTicks int  `yaml:"patrol_jet_interval_ticks"`
	EscapeJetPower      float64 `yaml:"escape_jet_power"`

	// Abyssal depth band, as fractions of world height.
	DepthBandMin float64 `yaml:"depth_band_min"`
	DepthBandMax float64 `yaml:"depth_band_max"`
	DepthForce   float64 `yaml:"depth_force"`

	// Facing flip discipline
	FlipCooldownTicks int     `yaml:"flip_cooldown_ticks"`
	FlipDeadband      float64 `yaml:"flip_deadband"`

	// Squid-squid repulsion
	RepulsionRadius     float64 `yaml:"repulsion_radius"`
	RepulsionStrength   float64 `yaml:"repulsion_strength"`
	HuntRepulsionFactor float64 `yaml:"hunt_repulsion_factor"`

	// Bioluminescence tiers
	GlowDepthThreshold float64 `yaml:"glow_depth_threshold"`
	GlowFullThreshold  float64 `yaml:"glow_full_threshold"`
	BlinkIntervalTicks int     `yaml:"blink_interval_ticks"`
}

// EggConfig holds the reproduction-chain entity parameters.
type EggConfig struct {
	EggLifespanTicks   int     `yaml:"egg_lifespan_ticks"`
	SpermLifespanTicks int     `yaml:"sperm_lifespan_ticks"`
	FertilizationRange float64 `yaml:"fertilization_range"`
	FertilizationChance float64 `yaml:"fertilization_chance"`
	HatchingTicks      int     `yaml:"hatching_ticks"`
	EggSize            float64 `yaml:"egg_size"`
	SpermSize          float64 `yaml:"sperm_size"`
	SpermDownwardBias  float64 `yaml:"sperm_downward_bias"`
	SpermSpread        float64 `yaml:"sperm_spread"`
	EggSinkSpeed       float64 `yaml:"egg_sink_speed"`
}

// DetritusConfig holds the sinking-food parameters that close the
// tuna -> krill food loop.
type DetritusConfig struct {
	LifespanTicks      int     `yaml:"lifespan_ticks"`
	SinkSpeed          float64 `yaml:"sink_speed"`
	Size               float64 `yaml:"size"`
	AmbientIntervalTicks int   `yaml:"ambient_interval_ticks"` // marine snow
	AmbientCount       int     `yaml:"ambient_count"`
	PoopCount          int     `yaml:"poop_count"`
}

// PopulationConfig holds initial seeding and respawn floors.
type PopulationConfig struct {
	InitialFry   int `yaml:"initial_fry"`
	InitialKrill int `yaml:"initial_krill"`
	InitialTuna  int `yaml:"initial_tuna"`
	InitialSquid int `yaml:"initial_squid"`
	MinFry       int `yaml:"min_fry"`
	MinKrill     int `yaml:"min_krill"`
	RespawnCount int `yaml:"respawn_count"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowTicks    int `yaml:"stats_window_ticks"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW32 float32
	WorldH32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
