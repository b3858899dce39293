// Package components defines ECS components for the simulation.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity in world units per tick.
type Velocity struct {
	X, Y float32
}

// Body holds the physical size of an entity. Radius doubles as the
// contact distance for eating and fertilization checks.
type Body struct {
	Radius float32
}

// BehaviorState is the shared state machine for schooling species.
type BehaviorState uint8

const (
	StateForaging BehaviorState = iota
	StateHunting
	StateFeeding
	StateFeedingCooldown
	StateSpawning
	StateSpawningCooldown
)

// String returns the state name for logging and rendering overlays.
func (s BehaviorState) String() string {
	switch s {
	case StateForaging:
		return "foraging"
	case StateHunting:
		return "hunting"
	case StateFeeding:
		return "feeding"
	case StateFeedingCooldown:
		return "feeding_cooldown"
	case StateSpawning:
		return "spawning"
	case StateSpawningCooldown:
		return "spawning_cooldown"
	}
	return "unknown"
}

// Boid holds movement and foraging state shared by fry, TrueFry and krill.
// Cooldown states always follow their non-cooldown counterpart; transitions
// are gated by the tick counters below, never by two states at once.
type Boid struct {
	Species  Species
	State    BehaviorState
	MaxSpeed float32
	MaxForce float32

	Energy float32 // 0-100

	// Foraging counters
	FoodConsumed      int32
	PoopEaten         int32
	HasEatenThisStage bool

	// Tick timers, decremented once per simulation step
	FeedingTimer  int32
	CooldownTimer int32
}
