package flocking

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/bvh"
)

func newTestEngine(t *testing.T, p Parameters, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t).Sugar())}, opts...)
	e, err := NewEngine(p, opts...)
	test.That(t, err, test.ShouldBeNil)
	return e
}

func TestEngine_TwoAgentSeparation(t *testing.T) {
	p := Parameters{
		SeparationRange:  2,
		SeparationWeight: 1,
		MaxSpeed:         1,
		Bounds:           r3.Vector{X: 1000, Y: 1000, Z: 1000},
	}
	e := newTestEngine(t, p)
	s := &State{
		Positions:  []r3.Vector{{}, {X: 1}},
		Directions: []r3.Vector{{Z: 1}, {Z: 1}},
	}

	test.That(t, e.Tick(context.Background(), s, 1), test.ShouldBeNil)

	h := math.Sqrt2 / 2
	want := []struct{ dir, pos r3.Vector }{
		{r3.Vector{X: -h, Z: h}, r3.Vector{X: -h, Z: h}},
		{r3.Vector{X: h, Z: h}, r3.Vector{X: 1 + h, Z: h}},
	}
	for i, w := range want {
		test.That(t, s.Directions[i].X, test.ShouldAlmostEqual, w.dir.X, 1e-9)
		test.That(t, s.Directions[i].Y, test.ShouldAlmostEqual, w.dir.Y, 1e-9)
		test.That(t, s.Directions[i].Z, test.ShouldAlmostEqual, w.dir.Z, 1e-9)
		test.That(t, s.Positions[i].X, test.ShouldAlmostEqual, w.pos.X, 1e-6)
		test.That(t, s.Positions[i].Y, test.ShouldAlmostEqual, w.pos.Y, 1e-6)
		test.That(t, s.Positions[i].Z, test.ShouldAlmostEqual, w.pos.Z, 1e-6)
	}
	test.That(t, e.Steering()[0].Neighbors, test.ShouldEqual, 1)
}

func TestEngine_IsolatedAgentKeepsHeading(t *testing.T) {
	e := newTestEngine(t, DefaultParameters())
	dir := r3.Vector{X: 0.6, Y: 0.8}
	s := &State{Positions: []r3.Vector{{X: 10}}, Directions: []r3.Vector{dir}}

	test.That(t, e.Tick(context.Background(), s, 0.5), test.ShouldBeNil)

	test.That(t, e.Steering()[0].Force, test.ShouldResemble, r3.Vector{})
	test.That(t, s.Directions[0], test.ShouldResemble, dir)
	test.That(t, s.Positions[0].X, test.ShouldAlmostEqual, 10+0.6*15, 1e-9)
	test.That(t, s.Positions[0].Y, test.ShouldAlmostEqual, 0.8*15, 1e-9)
}

func TestEngine_DirectionsStayUnit(t *testing.T) {
	p := DefaultParameters()
	e := newTestEngine(t, p)
	s := Regenerate(7, 300, p.Bounds)
	ctx := context.Background()

	for step, dt := range []float64{0.016, 0.016, 0, 0.1, 0.016, 0, 1} {
		test.That(t, e.Tick(ctx, s, dt), test.ShouldBeNil)
		for i, d := range s.Directions {
			if math.Abs(d.Norm()-1) > 1e-9 {
				t.Fatalf("step %d agent %d: |dir| = %v", step, i, d.Norm())
			}
		}
		for i, pos := range s.Positions {
			if math.Abs(pos.X) > p.Bounds.X || math.Abs(pos.Y) > p.Bounds.Y || math.Abs(pos.Z) > p.Bounds.Z {
				t.Fatalf("step %d agent %d out of bounds: %v", step, i, pos)
			}
		}
	}
}

func TestEngine_ZeroStepDoesNotMove(t *testing.T) {
	p := DefaultParameters()
	e := newTestEngine(t, p)
	s := Regenerate(3, 50, p.Bounds)
	before := s.Clone()

	test.That(t, e.Tick(context.Background(), s, 0), test.ShouldBeNil)
	test.That(t, s.Positions, test.ShouldResemble, before.Positions)
}

func TestEngine_WrapsToOppositeFace(t *testing.T) {
	p := DefaultParameters()
	p.SeparationWeight, p.AlignmentWeight, p.CohesionWeight = 0, 0, 0
	e := newTestEngine(t, p)
	s := &State{
		Positions:  []r3.Vector{{X: p.Bounds.X - 0.1}},
		Directions: []r3.Vector{{X: 1}},
	}

	test.That(t, e.Tick(context.Background(), s, 1), test.ShouldBeNil)
	test.That(t, s.Positions[0], test.ShouldResemble, r3.Vector{X: -p.Bounds.X})
	test.That(t, s.Directions[0], test.ShouldResemble, r3.Vector{X: 1})
}

func TestEngine_CancelledTickLeavesStateUntouched(t *testing.T) {
	p := DefaultParameters()
	e := newTestEngine(t, p)
	s := Regenerate(11, 500, p.Bounds)
	before := s.Clone()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Tick(ctx, s, 0.016)
	test.That(t, err, test.ShouldEqual, context.Canceled)
	test.That(t, s.Positions, test.ShouldResemble, before.Positions)
	test.That(t, s.Directions, test.ShouldResemble, before.Directions)
}

func TestEngine_WorkerCountDoesNotChangeResult(t *testing.T) {
	p := DefaultParameters()
	one := newTestEngine(t, p, WithWorkers(1))
	many := newTestEngine(t, p, WithWorkers(8))
	a := Regenerate(5, 1000, p.Bounds)
	b := a.Clone()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		test.That(t, one.Tick(ctx, a, 0.016), test.ShouldBeNil)
		test.That(t, many.Tick(ctx, b, 0.016), test.ShouldBeNil)
	}
	test.That(t, b.Positions, test.ShouldResemble, a.Positions)
	test.That(t, b.Directions, test.ShouldResemble, a.Directions)
}

func TestEngine_EmptyState(t *testing.T) {
	e := newTestEngine(t, DefaultParameters())
	s := &State{}
	test.That(t, e.Tick(context.Background(), s, 0.016), test.ShouldBeNil)
	test.That(t, e.Steering(), test.ShouldBeEmpty)
}

func TestEngine_NeighborsFollowMovedState(t *testing.T) {
	p := DefaultParameters()
	e := newTestEngine(t, p, WithIndexOptions(bvh.Options{MaxDepth: 6, MinLeafSize: 2}))
	s := Regenerate(9, 400, p.Bounds)
	test.That(t, e.Tick(context.Background(), s, 0.1), test.ShouldBeNil)

	center := s.Positions[0]
	const radius = 60.0
	got := e.Neighbors(s, center, radius)
	sort.Ints(got)
	test.That(t, got, test.ShouldResemble, withinRadius(s, center, radius))
	test.That(t, e.IndexStats().Depth, test.ShouldBeLessThanOrEqualTo, 6)
}

func withinRadius(s *State, center r3.Vector, radius float64) []int {
	var out []int
	for i, pos := range s.Positions {
		if pos.Sub(center).Norm2() <= radius*radius {
			out = append(out, i)
		}
	}
	return out
}

func TestEngine_NeighborsFollowRegeneration(t *testing.T) {
	p := DefaultParameters()
	e := newTestEngine(t, p)
	s := Regenerate(9, 400, p.Bounds)
	test.That(t, e.Tick(context.Background(), s, 0.1), test.ShouldBeNil)
	const radius = 60.0

	got := e.Neighbors(s, s.Positions[0], radius)
	sort.Ints(got)
	test.That(t, got, test.ShouldResemble, withinRadius(s, s.Positions[0], radius))

	// Same count, new population: the index built above no longer applies.
	s.Regenerate(2, 400, p.Bounds)
	got = e.Neighbors(s, s.Positions[0], radius)
	sort.Ints(got)
	test.That(t, got, test.ShouldContain, 0)
	test.That(t, got, test.ShouldResemble, withinRadius(s, s.Positions[0], radius))

	// Another population of the same size.
	other := Regenerate(17, 400, p.Bounds)
	got = e.Neighbors(other, other.Positions[5], radius)
	sort.Ints(got)
	test.That(t, got, test.ShouldResemble, withinRadius(other, other.Positions[5], radius))

	// Back to the first one.
	got = e.Neighbors(s, s.Positions[3], radius)
	sort.Ints(got)
	test.That(t, got, test.ShouldResemble, withinRadius(s, s.Positions[3], radius))
}

func TestEngine_RejectsInvalidParameters(t *testing.T) {
	bad := DefaultParameters()
	bad.MaxSpeed = 0
	_, err := NewEngine(bad)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewEngine(DefaultParameters(), WithIndexOptions(bvh.Options{MaxDepth: -1, MinLeafSize: 4}))
	test.That(t, err, test.ShouldNotBeNil)

	e := newTestEngine(t, DefaultParameters())
	err = e.SetParameters(bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid flocking parameters")
	test.That(t, e.Parameters(), test.ShouldResemble, DefaultParameters())
}

func BenchmarkEngineTick(b *testing.B) {
	p := DefaultParameters()
	e, err := NewEngine(p)
	if err != nil {
		b.Fatal(err)
	}
	s := Regenerate(1, 5000, p.Bounds)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.Tick(ctx, s, 0.016); err != nil {
			b.Fatal(err)
		}
	}
}
