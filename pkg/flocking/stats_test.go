package flocking

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := Summarize(&State{}, nil)
		test.That(t, got, test.ShouldResemble, Summary{})
	})

	t.Run("aligned flock", func(t *testing.T) {
		s := &State{
			Positions:  []r3.Vector{{X: -1}, {X: 1}, {Y: 3}, {Y: -3}},
			Directions: []r3.Vector{{X: 1}, {X: 1}, {X: 1}, {X: 1}},
		}
		steering := []Steering{{Neighbors: 1}, {Neighbors: 3}, {Neighbors: 1}, {Neighbors: 3}}
		got := Summarize(s, steering)
		test.That(t, got.Agents, test.ShouldEqual, 4)
		test.That(t, got.Polarization, test.ShouldAlmostEqual, 1.0, 1e-12)
		test.That(t, got.Centroid.X, test.ShouldAlmostEqual, 0.0, 1e-12)
		test.That(t, got.Centroid.Y, test.ShouldAlmostEqual, 0.0, 1e-12)
		test.That(t, got.MeanNeighbors, test.ShouldAlmostEqual, 2.0, 1e-12)
		// Sample standard deviation of {1, 3, 1, 3}.
		test.That(t, got.StdNeighbors, test.ShouldAlmostEqual, math.Sqrt(4.0/3.0), 1e-12)
	})

	t.Run("opposed headings cancel", func(t *testing.T) {
		s := &State{
			Positions:  []r3.Vector{{}, {}},
			Directions: []r3.Vector{{Z: 1}, {Z: -1}},
		}
		got := Summarize(s, nil)
		test.That(t, got.Polarization, test.ShouldEqual, 0.0)
		test.That(t, got.MeanNeighbors, test.ShouldEqual, 0.0)
	})

	t.Run("single agent", func(t *testing.T) {
		s := &State{Positions: []r3.Vector{{X: 2, Y: 4, Z: 6}}, Directions: []r3.Vector{{Y: 1}}}
		got := Summarize(s, []Steering{{Neighbors: 0}})
		test.That(t, got.Centroid, test.ShouldResemble, r3.Vector{X: 2, Y: 4, Z: 6})
		test.That(t, got.StdNeighbors, test.ShouldEqual, 0.0)
	})

	t.Run("steering of another size is ignored", func(t *testing.T) {
		s := Regenerate(1, 10, DefaultParameters().Bounds)
		got := Summarize(s, make([]Steering, 3))
		test.That(t, got.MeanNeighbors, test.ShouldEqual, 0.0)
		test.That(t, got.Polarization, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		test.That(t, got.Polarization, test.ShouldBeLessThanOrEqualTo, 1.0+1e-12)
	})
}
