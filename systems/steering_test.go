package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/reef/components"
)

func TestSeekPointsTowardTarget(t *testing.T) {
	pos := components.Position{X: 0, Y: 0}
	vel := components.Velocity{}

	fx, fy := Seek(pos, vel, 10, 0, 2, 1)

	// Desired velocity is (2, 0); with zero current velocity the force is
	// (2, 0) capped at maxForce.
	if math.Abs(float64(fx-1)) > 0.001 || math.Abs(float64(fy)) > 0.001 {
		t.Errorf("Seek = (%v, %v), want (1, 0)", fx, fy)
	}
}

func TestFleePointsAwayFromTarget(t *testing.T) {
	pos := components.Position{X: 0, Y: 0}
	vel := components.Velocity{}

	fx, fy := Flee(pos, vel, 10, 0, 2, 1)

	if fx >= 0 {
		t.Errorf("Flee fx = %v, want negative", fx)
	}
	if math.Abs(float64(fy)) > 0.001 {
		t.Errorf("Flee fy = %v, want 0", fy)
	}
}

func TestLimitForceCapsMagnitude(t *testing.T) {
	fx, fy := limitForce(3, 4, 1)
	mag := math.Sqrt(float64(fx*fx + fy*fy))
	if math.Abs(mag-1) > 0.001 {
		t.Errorf("magnitude after limit = %v, want 1", mag)
	}

	// Under the cap the vector is untouched.
	fx, fy = limitForce(0.3, 0.4, 1)
	if fx != 0.3 || fy != 0.4 {
		t.Errorf("limitForce(0.3, 0.4, 1) = (%v, %v), want unchanged", fx, fy)
	}
}

func TestLimitVelocity(t *testing.T) {
	vel := components.Velocity{X: 3, Y: 4}
	LimitVelocity(&vel, 2.5)

	mag := math.Sqrt(float64(vel.X*vel.X + vel.Y*vel.Y))
	if math.Abs(mag-2.5) > 0.001 {
		t.Errorf("magnitude after limit = %v, want 2.5", mag)
	}

	// Direction preserved
	if vel.X <= 0 || vel.Y <= 0 {
		t.Errorf("direction flipped: (%v, %v)", vel.X, vel.Y)
	}
}

func TestAvoidEdges(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float32
		wantVX float32
		wantVY float32
	}{
		{"left edge", 10, 500, 0.5, 0},
		{"right edge", 990, 500, -0.5, 0},
		{"top edge", 500, 10, 0, 0.5},
		{"bottom edge", 500, 990, 0, -0.5},
		{"center", 500, 500, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vel := components.Velocity{}
			AvoidEdges(components.Position{X: tt.x, Y: tt.y}, &vel, 1000, 1000, 60, 0.5)
			if vel.X != tt.wantVX || vel.Y != tt.wantVY {
				t.Errorf("vel = (%v, %v), want (%v, %v)", vel.X, vel.Y, tt.wantVX, tt.wantVY)
			}
		})
	}
}

func TestFlockNoNeighborsIsNoOp(t *testing.T) {
	vel := components.Velocity{X: 1, Y: -1}
	p := FlockParams{
		NeighborRadius:   70,
		SeparationRadius: 28,
		AlignmentWeight:  0.4,
		CohesionWeight:   0.05,
		SeparationWeight: 1.2,
		MaxSpeed:         2,
		MaxForce:         1,
	}

	Flock(components.Position{}, &vel, nil, p, rand.New(rand.NewSource(1)))

	if vel.X != 1 || vel.Y != -1 {
		t.Errorf("vel = (%v, %v), want unchanged (1, -1)", vel.X, vel.Y)
	}
}

func TestFlockSeparationDominates(t *testing.T) {
	// One neighbor directly to the right, well inside the separation
	// radius, moving right. Alignment and cohesion both pull toward +X;
	// separation must win and push the boid to -X.
	vel := components.Velocity{}
	neighbors := []Neighbor{
		{DX: 5, DY: 0, DistSq: 25, VX: 1, VY: 0},
	}
	p := FlockParams{
		NeighborRadius:   70,
		SeparationRadius: 28,
		AlignmentWeight:  0.4,
		CohesionWeight:   0.05,
		CohesionJitter:   0,
		SeparationWeight: 1.2,
		MaxSpeed:         2,
		MaxForce:         1,
	}

	Flock(components.Position{}, &vel, neighbors, p, rand.New(rand.NewSource(1)))

	if vel.X >= 0 {
		t.Errorf("vel.X = %v, want negative (separation must dominate)", vel.X)
	}
}

func TestFlockDistantNeighborNoSeparation(t *testing.T) {
	// A neighbor outside the separation radius only contributes alignment
	// and cohesion; the boid drifts toward it.
	vel := components.Velocity{}
	neighbors := []Neighbor{
		{DX: 50, DY: 0, DistSq: 2500, VX: 1, VY: 0},
	}
	p := FlockParams{
		NeighborRadius:   70,
		SeparationRadius: 28,
		AlignmentWeight:  0.4,
		CohesionWeight:   0.05,
		CohesionJitter:   0,
		SeparationWeight: 1.2,
		MaxSpeed:         2,
		MaxForce:         1,
	}

	Flock(components.Position{}, &vel, neighbors, p, rand.New(rand.NewSource(1)))

	if vel.X <= 0 {
		t.Errorf("vel.X = %v, want positive (cohesion/alignment pull)", vel.X)
	}
}
