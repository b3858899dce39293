package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
)

// Spawn creates an entity of the given species at a world position and
// inserts it into its collection. Unknown species tags are rejected with
// ok=false; callers treat that as an aborted transformation, never a
// crash. Positions are clamped into the world rectangle.
func (e *Ecosystem) Spawn(s components.Species, x, y float32) (ecs.Entity, bool) {
	x = clampFloat(x, 0, e.Bounds.Width)
	y = clampFloat(y, 0, e.Bounds.Height)

	// Small random initial drift so spawns don't stack perfectly.
	vx := (e.Rng.Float32()*2 - 1) * 0.3
	vy := (e.Rng.Float32()*2 - 1) * 0.3

	var ent ecs.Entity
	switch s {
	case components.SpeciesFry:
		ent = e.spawnFry(x, y, vx, vy)
	case components.SpeciesTrueFry1:
		ent = e.spawnTrueFry(components.TrueFryStage1, x, y, vx, vy)
	case components.SpeciesTrueFry2:
		ent = e.spawnTrueFry(components.TrueFryStage2, x, y, vx, vy)
	case components.SpeciesRegularKrill:
		ent = e.spawnKrill(components.KrillRegular, x, y, vx, vy)
	case components.SpeciesPaleKrill:
		ent = e.spawnKrill(components.KrillPale, x, y, vx, vy)
	case components.SpeciesMomKrill:
		ent = e.spawnKrill(components.KrillMom, x, y, vx, vy)
	case components.SpeciesTuna:
		ent = e.spawnTuna(x, y)
	case components.SpeciesGiantSquid:
		ent = e.spawnSquid(x, y)
	case components.SpeciesFishEgg:
		ent = e.spawnEgg(x, y)
	case components.SpeciesSperm:
		ent = e.spawnSperm(x, y, vx, vy)
	case components.SpeciesFertilizedEgg:
		ent = e.spawnFertilizedEgg(x, y)
	case components.SpeciesDetritus:
		ent = e.spawnDetritus(x, y, false)
	default:
		return ecs.Entity{}, false
	}

	e.counts[s]++
	if e.Events != nil {
		e.Events.RecordSpawn(s)
	}
	return ent, true
}

func (e *Ecosystem) spawnFry(x, y, vx, vy float32) ecs.Entity {
	cfg := &e.Cfg.Fry
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	body := components.Body{Radius: float32(cfg.Size)}
	boid := components.Boid{
		Species:  components.SpeciesFry,
		State:    components.StateForaging,
		MaxSpeed: float32(cfg.MaxSpeed),
		MaxForce: float32(cfg.MaxForce),
		Energy:   80,
	}
	fry := components.Fry{}
	return e.fryMapper.NewEntity(&pos, &vel, &body, &boid, &fry)
}

func (e *Ecosystem) spawnTrueFry(stage components.TrueFryStage, x, y, vx, vy float32) ecs.Entity {
	stageCfg := &e.Cfg.TrueFry.Stage1
	species := components.SpeciesTrueFry1
	if stage == components.TrueFryStage2 {
		stageCfg = &e.Cfg.TrueFry.Stage2
		species = components.SpeciesTrueFry2
	}

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	body := components.Body{Radius: float32(stageCfg.Size)}
	boid := components.Boid{
		Species:  species,
		State:    components.StateForaging,
		MaxSpeed: float32(stageCfg.MaxSpeed),
		MaxForce: float32(e.Cfg.TrueFry.MaxForce),
		Energy:   70,
	}
	tf := components.TrueFry{Stage: stage}
	return e.trueFryMapper.NewEntity(&pos, &vel, &body, &boid, &tf)
}

func (e *Ecosystem) spawnKrill(variant components.KrillVariant, x, y, vx, vy float32) ecs.Entity {
	cfg := &e.Cfg.Krill
	size := float32(cfg.Size)
	species := components.SpeciesRegularKrill
	switch variant {
	case components.KrillPale:
		size = float32(cfg.PaleSize)
		species = components.SpeciesPaleKrill
	case components.KrillMom:
		species = components.SpeciesMomKrill
	}

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	body := components.Body{Radius: size}
	boid := components.Boid{
		Species:  species,
		State:    components.StateForaging,
		MaxSpeed: float32(cfg.MaxSpeed),
		MaxForce: float32(cfg.MaxForce),
		Energy:   75,
	}
	krill := components.Krill{Variant: variant}
	return e.krillMapper.NewEntity(&pos, &vel, &body, &boid, &krill)
}

func (e *Ecosystem) spawnTuna(x, y float32) ecs.Entity {
	cfg := &e.Cfg.Tuna
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: 0, Y: 0}
	body := components.Body{Radius: float32(cfg.Size)}
	tuna := components.Tuna{
		State:     components.TunaPatrolling,
		Energy:    70,
		Alertness: 0.8 + e.Rng.Float32()*0.4,
	}
	return e.tunaMapper.NewEntity(&pos, &vel, &body, &tuna)
}

func (e *Ecosystem) spawnSquid(x, y float32) ecs.Entity {
	cfg := &e.Cfg.Squid
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: 0, Y: 0}
	body := components.Body{Radius: float32(cfg.Size)}
	squid := components.Squid{
		State:       components.SquidPatrolling,
		FacingRight: e.Rng.Float32() < 0.5,
	}
	return e.squidMapper.NewEntity(&pos, &vel, &body, &squid)
}

func (e *Ecosystem) spawnEgg(x, y float32) ecs.Entity {
	cfg := &e.Cfg.Eggs
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: 0, Y: float32(cfg.EggSinkSpeed)}
	body := components.Body{Radius: float32(cfg.EggSize)}
	life := components.Lifespan{Max: int32(cfg.EggLifespanTicks)}
	egg := components.Egg{WobblePhase: e.Rng.Float32() * 6.28}
	return e.eggMapper.NewEntity(&pos, &vel, &body, &life, &egg)
}

// spawnSpermAt creates a sperm particle with the caller's velocity; used
// by the release step which applies the downward bias itself.
func (e *Ecosystem) spawnSperm(x, y, vx, vy float32) ecs.Entity {
	cfg := &e.Cfg.Eggs
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: vx, Y: vy}
	body := components.Body{Radius: float32(cfg.SpermSize)}
	life := components.Lifespan{Max: int32(cfg.SpermLifespanTicks)}
	sperm := components.Sperm{}
	return e.spermMapper.NewEntity(&pos, &vel, &body, &life, &sperm)
}

func (e *Ecosystem) spawnFertilizedEgg(x, y float32) ecs.Entity {
	cfg := &e.Cfg.Eggs
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: 0, Y: float32(cfg.EggSinkSpeed)}
	body := components.Body{Radius: float32(cfg.EggSize)}
	// A fertilized egg's clock is its development timer; it does not
	// expire like an unfertilized one, but keep a generous ceiling.
	life := components.Lifespan{Max: int32(cfg.HatchingTicks) * 4}
	fe := components.FertilizedEgg{}
	return e.fertEggMapper.NewEntity(&pos, &vel, &body, &life, &fe)
}

func (e *Ecosystem) spawnDetritus(x, y float32, fromPoop bool) ecs.Entity {
	cfg := &e.Cfg.Detritus
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{X: (e.Rng.Float32()*2 - 1) * 0.1, Y: float32(cfg.SinkSpeed)}
	body := components.Body{Radius: float32(cfg.Size)}
	life := components.Lifespan{Max: int32(cfg.LifespanTicks)}
	det := components.Detritus{FromPoop: fromPoop}
	return e.detritusMapper.NewEntity(&pos, &vel, &body, &life, &det)
}

// SpawnDetritus creates a sinking food particle, marking its origin.
func (e *Ecosystem) SpawnDetritus(x, y float32, fromPoop bool) ecs.Entity {
	ent := e.spawnDetritus(clampFloat(x, 0, e.Bounds.Width), clampFloat(y, 0, e.Bounds.Height), fromPoop)
	e.counts[components.SpeciesDetritus]++
	if e.Events != nil {
		e.Events.RecordSpawn(components.SpeciesDetritus)
	}
	return ent
}

// SpawnSpermWithVelocity creates a sperm particle with an explicit
// velocity (downward-biased by the release step).
func (e *Ecosystem) SpawnSpermWithVelocity(x, y, vx, vy float32) ecs.Entity {
	ent := e.spawnSperm(clampFloat(x, 0, e.Bounds.Width), clampFloat(y, 0, e.Bounds.Height), vx, vy)
	e.counts[components.SpeciesSperm]++
	if e.Events != nil {
		e.Events.RecordSpawn(components.SpeciesSperm)
	}
	return ent
}

// SpawnOffspring creates a pale krill near its mother, inheriting half
// the mother's velocity plus randomness.
func (e *Ecosystem) SpawnOffspring(x, y, momVX, momVY float32) ecs.Entity {
	offset := float32(e.Cfg.Krill.OffspringSpawnOffset)
	ox := x + (e.Rng.Float32()*2-1)*offset
	oy := y + (e.Rng.Float32()*2-1)*offset
	vx := momVX*0.5 + (e.Rng.Float32()*2-1)*0.2
	vy := momVY*0.5 + (e.Rng.Float32()*2-1)*0.2

	ent := e.spawnKrill(components.KrillPale, clampFloat(ox, 0, e.Bounds.Width), clampFloat(oy, 0, e.Bounds.Height), vx, vy)
	e.counts[components.SpeciesPaleKrill]++
	if e.Events != nil {
		e.Events.RecordSpawn(components.SpeciesPaleKrill)
	}
	return ent
}

// Remove splices an entity out of its collection, the spatial grid and
// the world. Safe to call with stale handles; resolution failures are
// ignored so one entity's bad state never aborts the tick.
func (e *Ecosystem) Remove(ent ecs.Entity) {
	s, ok := e.SpeciesOf(ent)
	if !ok {
		return
	}
	e.RemoveAs(ent, s)
}

// RemoveAs removes an entity whose species tag is already known. The
// entity itself is destroyed, not just stripped of components, so stale
// handles fail the Alive check instead of pointing at empty husks.
func (e *Ecosystem) RemoveAs(ent ecs.Entity, s components.Species) {
	if s >= components.SpeciesCount {
		return
	}
	if !e.World.Alive(ent) {
		return
	}

	e.Grid.Remove(ent)
	e.World.RemoveEntity(ent)

	e.counts[s]--
	if e.Events != nil {
		e.Events.RecordRemoval(s)
	}
}
