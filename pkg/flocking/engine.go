package flocking

import (
	"context"
	"runtime"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/bvh"
	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/geometry"
)

// cancelStride is how many agents a worker processes between context checks.
const cancelStride = 256

// Engine advances a State one tick at a time. It keeps per-agent scratch space
// between ticks and is not safe for concurrent use.
type Engine struct {
	params  Parameters
	index   bvh.Options
	workers int
	logger  *zap.SugaredLogger

	tree *bvh.Tree
	// indexed and indexedGen identify the population the tree was built over.
	indexed    *State
	indexedGen uint64
	steering   []Steering
	buffers    [][]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithIndexOptions sets the BVH build options.
func WithIndexOptions(opts bvh.Options) Option {
	return func(e *Engine) { e.index = opts }
}

// WithWorkers sets the number of goroutines of the force phase.
// Values below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine validates p and the index options and returns a ready engine.
func NewEngine(p Parameters, opts ...Option) (*Engine, error) {
	e := &Engine{
		index:  bvh.DefaultOptions(),
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if err := e.index.Validate(); err != nil {
		return nil, err
	}
	if err := e.SetParameters(p); err != nil {
		return nil, err
	}
	e.buffers = make([][]int, e.workers)
	return e, nil
}

// Parameters returns the parameters used by the next tick.
func (e *Engine) Parameters() Parameters {
	return e.params
}

// SetParameters replaces the parameters; invalid ones are rejected and the
// previous parameters kept.
func (e *Engine) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return errors.Wrap(err, "invalid flocking parameters")
	}
	e.params = p
	return nil
}

// Tick advances s by dt seconds.
//
// Phases: build the index over the current positions, compute every steering
// force in parallel, then update headings and positions. Cancellation is
// honored between phases and inside the force phase; a cancelled tick returns
// ctx.Err() and leaves s untouched.
func (e *Engine) Tick(ctx context.Context, s *State, dt float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := s.Len()
	start := time.Now()

	e.buildIndex(s)
	built := time.Now()
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.computeForces(ctx, s); err != nil {
		return err
	}
	computed := time.Now()
	if err := ctx.Err(); err != nil {
		return err
	}

	e.integrate(s, dt)
	s.generation++

	if e.logger.Level().Enabled(zapcore.DebugLevel) {
		stats := e.tree.Stats()
		e.logger.Debugw("tick",
			"agents", n,
			"dt", dt,
			"build", built.Sub(start),
			"forces", computed.Sub(built),
			"integrate", time.Since(computed),
			"nodes", stats.Nodes,
			"depth", stats.Depth,
			"largestLeaf", stats.LargestLeaf,
		)
	}
	return nil
}

func (e *Engine) computeForces(ctx context.Context, s *State) error {
	n := s.Len()
	if cap(e.steering) < n {
		e.steering = make([]Steering, n)
	}
	e.steering = e.steering[:n]
	if n == 0 {
		return nil
	}

	tree, p := e.tree, e.params
	chunk := (n + e.workers - 1) / e.workers
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < e.workers; w++ {
		from := w * chunk
		to := min(from+chunk, n)
		if from >= to {
			break
		}
		buf := &e.buffers[w]
		g.Go(func() error {
			for i := from; i < to; i++ {
				if (i-from)%cancelStride == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				e.steering[i], *buf = SteeringForce(tree, s.Positions, s.Directions, i, p, *buf)
			}
			return nil
		})
	}
	return g.Wait()
}

// integrate runs once every force is known: each agent reads only its own slot.
func (e *Engine) integrate(s *State, dt float64) {
	p := e.params
	for i := range s.Positions {
		if force := e.steering[i].Force; force != (r3.Vector{}) {
			velocity := s.Directions[i].Mul(p.MaxSpeed).Add(force.Mul(dt))
			if speed := velocity.Norm(); speed > minVelocity {
				s.Directions[i] = velocity.Mul(1 / speed)
			}
		}
		moved := s.Positions[i].Add(s.Directions[i].Mul(p.MaxSpeed * dt))
		s.Positions[i] = geometry.Wrap(moved, p.Bounds)
	}
}

// Steering returns the per-agent result of the last force phase. The slice is
// reused by the next tick.
func (e *Engine) Steering() []Steering {
	return e.steering
}

// Neighbors returns every agent within radius of center, against the current
// positions of s. The index is reused only when it was built over s and s has
// not changed since through Tick or Regenerate. Edits made directly to
// s.Positions are not tracked.
func (e *Engine) Neighbors(s *State, center r3.Vector, radius float64) []int {
	if e.tree == nil || e.indexed != s || e.indexedGen != s.generation || e.tree.Len() != s.Len() {
		e.buildIndex(s)
	}
	return e.tree.QueryRange(s.Positions, center, radius)
}

func (e *Engine) buildIndex(s *State) {
	e.tree = bvh.Build(s.Positions, e.index)
	e.indexed = s
	e.indexedGen = s.generation
}

// IndexStats describes the index built by the last tick or neighbor query.
func (e *Engine) IndexStats() bvh.Stats {
	if e.tree == nil {
		return bvh.Stats{}
	}
	return e.tree.Stats()
}
