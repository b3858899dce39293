// Package systems provides the behavior, lifecycle and physics systems
// driving the simulation.
package systems

import (
	"math/rand"

	"github.com/pthm-cable/reef/components"
)

// Seek returns a steering force pushing the entity's velocity toward the
// target point. The desired velocity has magnitude maxSpeed; the returned
// force is capped at maxForce.
func Seek(pos components.Position, vel components.Velocity, tx, ty, maxSpeed, maxForce float32) (fx, fy float32) {
	dx := tx - pos.X
	dy := ty - pos.Y
	nx, ny := normalize(dx, dy)

	fx = nx*maxSpeed - vel.X
	fy = ny*maxSpeed - vel.Y
	return limitForce(fx, fy, maxForce)
}

// Flee is Seek away from the point.
func Flee(pos components.Position, vel components.Velocity, tx, ty, maxSpeed, maxForce float32) (fx, fy float32) {
	dx := pos.X - tx
	dy := pos.Y - ty
	nx, ny := normalize(dx, dy)

	fx = nx*maxSpeed - vel.X
	fy = ny*maxSpeed - vel.Y
	return limitForce(fx, fy, maxForce)
}

// limitForce caps a force vector's magnitude at maxForce.
func limitForce(fx, fy, maxForce float32) (float32, float32) {
	mag := velocityMagnitude(fx, fy)
	if mag > maxForce && mag > 0 {
		scale := maxForce / mag
		fx *= scale
		fy *= scale
	}
	return fx, fy
}

// LimitVelocity clamps a velocity in place to maxSpeed.
func LimitVelocity(vel *components.Velocity, maxSpeed float32) {
	mag := velocityMagnitude(vel.X, vel.Y)
	if mag > maxSpeed && mag > 0 {
		scale := maxSpeed / mag
		vel.X *= scale
		vel.Y *= scale
	}
}

// WanderForce returns a small random force. A persistent wander is always
// applied to schooling species so an isolated boid never drifts in a
// perfectly straight line.
func WanderForce(rng *rand.Rand, strength float32) (fx, fy float32) {
	return (rng.Float32()*2 - 1) * strength, (rng.Float32()*2 - 1) * strength
}

// AvoidEdges adds a corrective force when the position is within margin of
// the world rectangle.
func AvoidEdges(pos components.Position, vel *components.Velocity, w, h, margin, force float32) {
	if pos.X < margin {
		vel.X += force
	} else if pos.X > w-margin {
		vel.X -= force
	}
	if pos.Y < margin {
		vel.Y += force
	} else if pos.Y > h-margin {
		vel.Y -= force
	}
}

// FlockParams holds the steering weights for a flock pass.
type FlockParams struct {
	NeighborRadius   float32
	SeparationRadius float32
	AlignmentWeight  float32
	CohesionWeight   float32
	CohesionJitter   float32
	SeparationWeight float32
	MaxSpeed         float32
	MaxForce         float32
}

// Flock mutates vel by the three weighted flocking components computed
// over neighbors. Separation dominates alignment and cohesion by weight
// ordering, not by early exit, so overlapping radii resolve consistently.
// Cohesion is deliberately weak and jittered to avoid cascade clustering.
func Flock(pos components.Position, vel *components.Velocity, neighbors []Neighbor, p FlockParams, rng *rand.Rand) {
	if len(neighbors) == 0 {
		return
	}

	var alignX, alignY float32
	var cohX, cohY float32
	var sepX, sepY float32
	var sepCount int

	sepRadiusSq := p.SeparationRadius * p.SeparationRadius

	for _, n := range neighbors {
		alignX += n.VX
		alignY += n.VY
		cohX += n.DX
		cohY += n.DY

		if n.DistSq < sepRadiusSq && n.DistSq > 0 {
			// Unit vector pointing away from the neighbor
			ux, uy := normalize(-n.DX, -n.DY)
			sepX += ux
			sepY += uy
			sepCount++
		}
	}

	count := float32(len(neighbors))

	// Alignment: steer toward the average neighbor velocity.
	ax, ay := normalize(alignX/count, alignY/count)
	fx := (ax*p.MaxSpeed - vel.X)
	fy := (ay*p.MaxSpeed - vel.Y)
	fx, fy = limitForce(fx, fy, p.MaxForce)
	vel.X += fx * p.AlignmentWeight
	vel.Y += fy * p.AlignmentWeight

	// Cohesion: steer toward the average neighbor position, plus jitter to
	// break perfect convergence.
	cx, cy := normalize(cohX/count, cohY/count)
	fx = cx*p.MaxSpeed - vel.X
	fy = cy*p.MaxSpeed - vel.Y
	fx, fy = limitForce(fx, fy, p.MaxForce)
	vel.X += fx*p.CohesionWeight + (rng.Float32()*2-1)*p.CohesionJitter
	vel.Y += fy*p.CohesionWeight + (rng.Float32()*2-1)*p.CohesionJitter

	// Separation: dominant weight, prevents overlap.
	if sepCount > 0 {
		sx, sy := normalize(sepX, sepY)
		fx = sx*p.MaxSpeed - vel.X
		fy = sy*p.MaxSpeed - vel.Y
		fx, fy = limitForce(fx, fy, p.MaxForce)
		vel.X += fx * p.SeparationWeight
		vel.Y += fy * p.SeparationWeight
	}
}
