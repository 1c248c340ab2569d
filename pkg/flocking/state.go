package flocking

import (
	"math/rand/v2"
	"slices"

	"github.com/golang/geo/r3"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/geometry"
)

// State is the boid population: agent i is Positions[i] heading along the unit
// vector Directions[i]. Both slices always have the same length.
type State struct {
	Positions  []r3.Vector
	Directions []r3.Vector

	// generation changes whenever Tick or Regenerate moves the population.
	generation uint64
}

// Regenerate returns a new population of count agents sampled from seed.
// See (*State).Regenerate.
func Regenerate(seed uint64, count int, bounds r3.Vector) *State {
	s := &State{}
	s.Regenerate(seed, count, bounds)
	return s
}

// Regenerate replaces the population in place. Positions are uniform within
// [-bounds, bounds] per axis, directions uniform within [-1, 1] per axis then
// normalized. The same seed, count and bounds always give the same population.
func (s *State) Regenerate(seed uint64, count int, bounds r3.Vector) {
	count = max(count, 0)
	rng := rand.New(rand.NewPCG(seed, seed))

	s.generation++
	s.Positions = s.Positions[:0]
	s.Directions = s.Directions[:0]
	for i := 0; i < count; i++ {
		s.Positions = append(s.Positions, geometry.RandomInBox(rng, bounds))
		s.Directions = append(s.Directions, geometry.RandomUnit(rng))
	}
}

// Len returns the number of agents.
func (s *State) Len() int {
	return len(s.Positions)
}

// Clone returns a deep copy of the population.
func (s *State) Clone() *State {
	return &State{
		Positions:  slices.Clone(s.Positions),
		Directions: slices.Clone(s.Directions),
		generation: s.generation,
	}
}
