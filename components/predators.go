package components

import "github.com/mlange-42/ark/ecs"

// TunaState is the tuna finite state machine.
type TunaState uint8

const (
	TunaPatrolling TunaState = iota
	TunaHunting
	TunaAttacking
	TunaFeeding
	TunaResting
	TunaFleeing
)

// String returns the state name.
func (s TunaState) String() string {
	switch s {
	case TunaPatrolling:
		return "patrolling"
	case TunaHunting:
		return "hunting"
	case TunaAttacking:
		return "attacking"
	case TunaFeeding:
		return "feeding"
	case TunaResting:
		return "resting"
	case TunaFleeing:
		return "fleeing"
	}
	return "unknown"
}

// Tuna holds predator AI state. Target is a weak handle into the prey's
// collection; it is revalidated every tick before use and never owns the
// prey's lifetime.
type Tuna struct {
	State     TunaState
	Target    ecs.Entity
	HasTarget bool
	TargetSpecies Species
	TargetPriority float32

	Energy    float32 // 0-100
	Alertness float32 // scales detection radius

	// Tick timers
	StateTicks      int32 // ticks spent in current state
	FeedingCooldown int32 // lockout after eating
	RetargetTimer   int32 // gate for better-target re-evaluation

	// Wander state for patrol steering
	WanderX, WanderY float32

	HuntSuccess int32 // net successful hunts, decremented on aborts
	PoopCounter int32 // eats since last detritus drop
}

// SquidState is the giant squid behavior cycle.
type SquidState uint8

const (
	SquidPatrolling SquidState = iota
	SquidHunting
	SquidAttacking
	SquidRetreating
)

// String returns the state name.
func (s SquidState) String() string {
	switch s {
	case SquidPatrolling:
		return "patrolling"
	case SquidHunting:
		return "hunting"
	case SquidAttacking:
		return "attacking"
	case SquidRetreating:
		return "retreating"
	}
	return "unknown"
}

// Squid holds the giant squid's behavior-tree state and jet propulsion
// sub-model. The mantle flag and bioluminescence fields only drive sprite
// selection but are state the renderer keys off, so they live here.
type Squid struct {
	State     SquidState
	Target    ecs.Entity
	HasTarget bool

	GrabbedPrey     ecs.Entity
	HasGrabbedPrey  bool
	GrabbedSpecies  Species

	StateTicks int32

	// Jet propulsion: a jet only fires when both counters are zero.
	JetTicks         int32 // remaining ticks of the active jet impulse
	JetCooldown      int32
	MantleContracted bool

	// Facing is rate-limited to avoid sprite jitter; FlipCooldown gates it.
	FacingRight  bool
	FlipCooldown int32

	// Bioluminescence (depth-driven, renderer reads these)
	GlowIntensity float32 // 0, faint or full tier
	BlinkTimer    int32
	BlinkOn       bool
}
