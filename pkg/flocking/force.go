package flocking

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/bvh"
)

const (
	// Neighbors closer than this do not contribute to separation: the
	// direction between two coincident agents is undefined.
	minSeparationDistance = 1e-3
	// A new velocity shorter than this leaves the heading unchanged.
	minVelocity = 1e-3
)

// Steering is the outcome of the force phase for one agent.
type Steering struct {
	Force     r3.Vector
	Neighbors int
}

// SteeringForce computes the combined flocking force acting on agent i.
//
// A single query with the largest of the three ranges feeds all three rules.
// buf is reused as the query buffer and returned, possibly grown, so a worker
// can carry it from one agent to the next.
func SteeringForce(
	tree *bvh.Tree,
	positions, directions []r3.Vector,
	i int,
	p Parameters,
	buf []int,
) (Steering, []int) {
	pos := positions[i]
	dir := directions[i]
	buf = tree.AppendRange(buf[:0], positions, pos, p.QueryRadius())

	sepSq := p.SeparationRange * p.SeparationRange
	aliSq := p.AlignmentRange * p.AlignmentRange
	cohSq := p.CohesionRange * p.CohesionRange

	// Initialize force accumulators
	var separation, alignment, cohesion r3.Vector
	aliCount, cohCount, neighbors := 0, 0, 0

	for _, j := range buf {
		if j == i {
			continue
		}
		neighbors++

		other := positions[j]
		diff := pos.Sub(other)
		distSq := diff.Norm2()

		// 1. Separation, growing without bound as the distance shrinks
		if distSq <= sepSq && distSq > minSeparationDistance*minSeparationDistance {
			dist := math.Sqrt(distSq)
			weight := (p.SeparationRange - dist) / dist
			separation = separation.Add(diff.Mul(weight / dist))
		}

		// 2. Alignment
		if distSq <= aliSq {
			alignment = alignment.Add(directions[j])
			aliCount++
		}

		// 3. Cohesion
		if distSq <= cohSq {
			cohesion = cohesion.Add(other)
			cohCount++
		}
	}

	// Alignment steers by the difference from the current heading, cohesion
	// toward the local center of mass. Separation is never averaged.
	if aliCount > 0 {
		alignment = alignment.Mul(1 / float64(aliCount)).Sub(dir)
	}
	if cohCount > 0 {
		cohesion = cohesion.Mul(1 / float64(cohCount)).Sub(pos)
	}

	force := separation.Mul(p.SeparationWeight).
		Add(alignment.Mul(p.AlignmentWeight)).
		Add(cohesion.Mul(p.CohesionWeight))

	return Steering{Force: force, Neighbors: neighbors}, buf
}
