package components

import "github.com/mlange-42/ark/ecs"

// Lifespan ages short-lived entities (eggs, sperm, detritus). The cleanup
// sweep marks expired entities Eaten and removes them next pass; eating a
// tracked entity sets Eaten directly.
type Lifespan struct {
	Age   int32
	Max   int32
	Eaten bool
}

// Expired reports whether the entity has outlived its lifespan.
func (l *Lifespan) Expired() bool {
	return l.Age >= l.Max
}

// Fry holds the egg-laying and fertilization state for adult fry.
type Fry struct {
	// Germination: a triggered fry is un-layable until the delay elapses,
	// then eggs spawn at its position at germination time.
	Germinating      bool
	GerminationTicks int32

	LayCooldown   int32
	SpawnCooldown int32

	// Spawning target: weak handle to an unfertilized egg. SpawnTimeout
	// aborts an approach that never reaches release distance.
	SpawnTarget    ecs.Entity
	HasSpawnTarget bool
	SpawnTimeout   int32
}

// TrueFryStage distinguishes the two juvenile stages.
type TrueFryStage uint8

const (
	TrueFryStage1 TrueFryStage = 1
	TrueFryStage2 TrueFryStage = 2
)

// TrueFry holds juvenile growth state. Each stage advances on a food
// count or an elapsed-time threshold, whichever comes first.
type TrueFry struct {
	Stage      TrueFryStage
	FoodEaten  int32
	StageTicks int32
}

// KrillVariant distinguishes the krill lifecycle stages.
type KrillVariant uint8

const (
	KrillRegular KrillVariant = iota
	KrillPale
	KrillMom
)

// String returns the variant name.
func (v KrillVariant) String() string {
	switch v {
	case KrillRegular:
		return "regular"
	case KrillPale:
		return "pale"
	case KrillMom:
		return "mom"
	}
	return "unknown"
}

// Krill holds the maturation chain state for all krill variants.
// ShouldTransform is execute-or-abort: it is cleared only after the
// replacement entity has been constructed, so a failed transformation
// leaves the source alive and eligible next tick.
type Krill struct {
	Variant         KrillVariant
	ShouldTransform bool

	// Pale krill maturation
	MaturationTicks int32

	// Mom krill production
	OffspringCount  int32
	BatchesProduced int32
	OffspringTimer  int32
}

// Egg is an unfertilized fish egg.
type Egg struct {
	// Drift phase offset so eggs don't bob in sync.
	WobblePhase float32
}

// Sperm is a fertilization particle released by a spawning fry.
type Sperm struct{}

// FertilizedEgg develops toward hatching. The egg moved here from the
// unfertilized collection; it never exists in both.
type FertilizedEgg struct {
	DevelopmentTicks int32
}

// Detritus is sinking food matter (tuna poop, marine snow) eaten by krill
// and fry. FromPoop feeds the krill poopEaten counter; marine snow feeds
// foodConsumed.
type Detritus struct {
	FromPoop bool
}
