package game

import (
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/reef/systems"
)

// maxParticles caps the particle pool so effect storms cannot grow the
// frame time unbounded.
const maxParticles = 2048

// particle is one short-lived visual fleck.
type particle struct {
	x, y   float32
	vx, vy float32
	life   int32
	maxAge int32
	size   float32
	color  rl.Color
}

// EffectRenderer turns simulation effects into particles. It implements
// the effect emitter the systems report into; in headless mode it is
// simply never constructed.
type EffectRenderer struct {
	rng       *rand.Rand
	particles []particle
}

// NewEffectRenderer creates the particle effect renderer.
func NewEffectRenderer(rng *rand.Rand) *EffectRenderer {
	return &EffectRenderer{
		rng:       rng,
		particles: make([]particle, 0, 256),
	}
}

// EmitEffect spawns the particle burst for an effect kind.
func (e *EffectRenderer) EmitEffect(x, y float32, kind systems.EffectKind) {
	switch kind {
	case systems.EffectEatBubbles:
		e.burst(x, y, 4, 1.2, -0.6, 60, 1.5, rl.Color{R: 200, G: 230, B: 255, A: 180})
	case systems.EffectTransform:
		e.burst(x, y, 8, 0.8, 0, 45, 2, rl.Color{R: 255, G: 240, B: 160, A: 200})
	case systems.EffectHatch:
		e.burst(x, y, 10, 1.0, -0.3, 75, 1.8, rl.Color{R: 180, G: 255, B: 200, A: 200})
	case systems.EffectJetWake:
		e.burst(x, y, 12, 2.0, 0, 30, 2.5, rl.Color{R: 160, G: 200, B: 255, A: 120})
	case systems.EffectSpermCloud:
		e.burst(x, y, 6, 0.5, 0.2, 90, 1.2, rl.Color{R: 240, G: 240, B: 240, A: 150})
	}
}

// burst appends count particles with randomized velocities.
func (e *EffectRenderer) burst(x, y float32, count int, spread, vyBias float32, life int32, size float32, color rl.Color) {
	for i := 0; i < count; i++ {
		if len(e.particles) >= maxParticles {
			return
		}
		e.particles = append(e.particles, particle{
			x:      x,
			y:      y,
			vx:     (e.rng.Float32()*2 - 1) * spread,
			vy:     (e.rng.Float32()*2-1)*spread*0.5 + vyBias,
			life:   life,
			maxAge: life,
			size:   size,
			color:  color,
		})
	}
}

// Update advances particles and drops the dead ones.
func (e *EffectRenderer) Update() {
	alive := e.particles[:0]
	for i := range e.particles {
		p := &e.particles[i]
		p.life--
		if p.life <= 0 {
			continue
		}
		p.x += p.vx
		p.y += p.vy
		p.vx *= 0.96
		p.vy *= 0.96
		alive = append(alive, *p)
	}
	e.particles = alive
}

// Draw renders all live particles, faded by remaining life.
func (e *EffectRenderer) Draw() {
	for i := range e.particles {
		p := &e.particles[i]
		c := p.color
		c.A = uint8(int32(c.A) * p.life / p.maxAge)
		rl.DrawCircleV(rl.Vector2{X: p.x, Y: p.y}, p.size, c)
	}
}
