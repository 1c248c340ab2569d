package flocking

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat"
)

// Summary is a coarse description of the flock.
type Summary struct {
	Agents int
	// Polarization is the norm of the mean heading: 1 when every agent flies
	// the same way, close to 0 for a disordered swarm.
	Polarization  float64
	Centroid      r3.Vector
	MeanNeighbors float64
	StdNeighbors  float64
}

// Summarize computes a Summary of s. steering may be nil, or the result of the
// force phase that preceded the current positions.
func Summarize(s *State, steering []Steering) Summary {
	n := s.Len()
	sum := Summary{Agents: n}
	if n == 0 {
		return sum
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	var heading r3.Vector
	for i, p := range s.Positions {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
		heading = heading.Add(s.Directions[i])
	}
	sum.Polarization = heading.Norm() / float64(n)
	sum.Centroid = r3.Vector{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}

	if len(steering) == n {
		counts := make([]float64, n)
		for i, st := range steering {
			counts[i] = float64(st.Neighbors)
		}
		if n > 1 {
			sum.MeanNeighbors, sum.StdNeighbors = stat.MeanStdDev(counts, nil)
		} else {
			sum.MeanNeighbors = counts[0]
		}
	}
	return sum
}
