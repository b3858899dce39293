package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
)

// Ecosystem is the dependency context shared by all behavior systems: the
// ECS world, the spatial index, the configuration, the per-species
// collections and the optional collaborators. There is no ambient global
// state; every system receives this explicitly at construction.
type Ecosystem struct {
	World  *ecs.World
	Grid   *SpatialGrid
	Rng    *rand.Rand
	Cfg    *config.Config
	Bounds Bounds

	// Archetype mappers, one per species collection. An entity is created
	// and removed through exactly one of these, which is what keeps the
	// single-collection-membership invariant.
	fryMapper      *ecs.Map5[components.Position, components.Velocity, components.Body, components.Boid, components.Fry]
	trueFryMapper  *ecs.Map5[components.Position, components.Velocity, components.Body, components.Boid, components.TrueFry]
	krillMapper    *ecs.Map5[components.Position, components.Velocity, components.Body, components.Boid, components.Krill]
	tunaMapper     *ecs.Map4[components.Position, components.Velocity, components.Body, components.Tuna]
	squidMapper    *ecs.Map4[components.Position, components.Velocity, components.Body, components.Squid]
	eggMapper      *ecs.Map5[components.Position, components.Velocity, components.Body, components.Lifespan, components.Egg]
	spermMapper    *ecs.Map5[components.Position, components.Velocity, components.Body, components.Lifespan, components.Sperm]
	fertEggMapper  *ecs.Map5[components.Position, components.Velocity, components.Body, components.Lifespan, components.FertilizedEgg]
	detritusMapper *ecs.Map5[components.Position, components.Velocity, components.Body, components.Lifespan, components.Detritus]

	// Component maps for point lookups.
	PosMap      *ecs.Map[components.Position]
	VelMap      *ecs.Map[components.Velocity]
	BodyMap     *ecs.Map[components.Body]
	BoidMap     *ecs.Map[components.Boid]
	FryMap      *ecs.Map[components.Fry]
	TrueFryMap  *ecs.Map[components.TrueFry]
	KrillMap    *ecs.Map[components.Krill]
	TunaMap     *ecs.Map[components.Tuna]
	SquidMap    *ecs.Map[components.Squid]
	LifespanMap *ecs.Map[components.Lifespan]
	EggMap      *ecs.Map[components.Egg]
	SpermMap    *ecs.Map[components.Sperm]
	FertEggMap  *ecs.Map[components.FertilizedEgg]
	DetritusMap *ecs.Map[components.Detritus]

	// Optional collaborators; nil means no-op.
	Effects EffectEmitter
	Events  EventSink

	counts [components.SpeciesCount]int
}

// NewEcosystem creates the shared context over a fresh world.
func NewEcosystem(world *ecs.World, cfg *config.Config, rng *rand.Rand) *Ecosystem {
	bounds := Bounds{Width: cfg.Derived.WorldW32, Height: cfg.Derived.WorldH32}

	return &Ecosystem{
		World:  world,
		Grid:   NewSpatialGrid(bounds.Width, bounds.Height, float32(cfg.Physics.GridCellSize)),
		Rng:    rng,
		Cfg:    cfg,
		Bounds: bounds,

		fryMapper:      ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Boid, components.Fry](world),
		trueFryMapper:  ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Boid, components.TrueFry](world),
		krillMapper:    ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Boid, components.Krill](world),
		tunaMapper:     ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Tuna](world),
		squidMapper:    ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Squid](world),
		eggMapper:      ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Lifespan, components.Egg](world),
		spermMapper:    ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Lifespan, components.Sperm](world),
		fertEggMapper:  ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Lifespan, components.FertilizedEgg](world),
		detritusMapper: ecs.NewMap5[components.Position, components.Velocity, components.Body, components.Lifespan, components.Detritus](world),

		PosMap:      ecs.NewMap[components.Position](world),
		VelMap:      ecs.NewMap[components.Velocity](world),
		BodyMap:     ecs.NewMap[components.Body](world),
		BoidMap:     ecs.NewMap[components.Boid](world),
		FryMap:      ecs.NewMap[components.Fry](world),
		TrueFryMap:  ecs.NewMap[components.TrueFry](world),
		KrillMap:    ecs.NewMap[components.Krill](world),
		TunaMap:     ecs.NewMap[components.Tuna](world),
		SquidMap:    ecs.NewMap[components.Squid](world),
		LifespanMap: ecs.NewMap[components.Lifespan](world),
		EggMap:      ecs.NewMap[components.Egg](world),
		SpermMap:    ecs.NewMap[components.Sperm](world),
		FertEggMap:  ecs.NewMap[components.FertilizedEgg](world),
		DetritusMap: ecs.NewMap[components.Detritus](world),
	}
}

// Count returns the live entity count for a species.
func (e *Ecosystem) Count(s components.Species) int {
	return e.counts[s]
}

// SpeciesOf resolves the species tag of a live entity by probing the
// species component maps. Returns ok=false for unknown/stale entities.
func (e *Ecosystem) SpeciesOf(ent ecs.Entity) (components.Species, bool) {
	if !e.World.Alive(ent) {
		return 0, false
	}
	switch {
	case e.FryMap.Has(ent):
		return components.SpeciesFry, true
	case e.TrueFryMap.Has(ent):
		tf := e.TrueFryMap.Get(ent)
		if tf.Stage == components.TrueFryStage2 {
			return components.SpeciesTrueFry2, true
		}
		return components.SpeciesTrueFry1, true
	case e.KrillMap.Has(ent):
		switch e.KrillMap.Get(ent).Variant {
		case components.KrillPale:
			return components.SpeciesPaleKrill, true
		case components.KrillMom:
			return components.SpeciesMomKrill, true
		default:
			return components.SpeciesRegularKrill, true
		}
	case e.TunaMap.Has(ent):
		return components.SpeciesTuna, true
	case e.SquidMap.Has(ent):
		return components.SpeciesGiantSquid, true
	case e.EggMap.Has(ent):
		return components.SpeciesFishEgg, true
	case e.SpermMap.Has(ent):
		return components.SpeciesSperm, true
	case e.FertEggMap.Has(ent):
		return components.SpeciesFertilizedEgg, true
	case e.DetritusMap.Has(ent):
		return components.SpeciesDetritus, true
	}
	return 0, false
}

// ValidTarget reports whether a cached prey handle still points to a live
// entity of the expected species. Predator controllers call this every
// tick before using their target.
func (e *Ecosystem) ValidTarget(ent ecs.Entity, want components.Species) bool {
	got, ok := e.SpeciesOf(ent)
	if !ok {
		return false
	}
	if want == components.SpeciesFry || want == components.SpeciesTrueFry1 || want == components.SpeciesTrueFry2 {
		// Juveniles may have advanced a stage since targeting; any
		// fish-stage species remains a valid hunt target.
		return got == components.SpeciesFry || got == components.SpeciesTrueFry1 || got == components.SpeciesTrueFry2
	}
	return got == want
}

// emit fires an effect if an emitter is wired.
func (e *Ecosystem) emit(x, y float32, kind EffectKind) {
	if e.Effects != nil {
		e.Effects.EmitEffect(x, y, kind)
	}
}
