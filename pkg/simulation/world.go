package simulation

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/flocking"
)

// WorldActor owns the flock and the engine that moves it. Every access goes
// through its mailbox, so the state is never shared.
//
// Messages:
//   - *durationpb.Duration advances the flock by that delta time.
//   - *wrapperspb.UInt64Value regenerates the population with that seed.
//   - *structpb.Struct updates flocking parameters by their JSON key.
//   - *emptypb.Empty is answered with a *structpb.Struct of statistics.
type WorldActor struct {
	cfg    *Config
	engine *flocking.Engine
	state  *flocking.State
	tick   uint64
	// Communication with UI
	snapshotCh chan<- *Snapshot
	// --- Benchmark Stats ---
	ticksSinceLog int
	lastLogTime   time.Time
}

// NewWorldActor creates the world logic unit. The engine is built from cfg and
// logs its per tick timings to logger.
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config, logger *zap.SugaredLogger) (*WorldActor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := flocking.NewEngine(cfg.Parameters(),
		flocking.WithIndexOptions(cfg.IndexOptions()),
		flocking.WithWorkers(cfg.Workers),
		flocking.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	c := *cfg
	return &WorldActor{
		cfg:        &c,
		engine:     engine,
		state:      &flocking.State{},
		snapshotCh: snapshotCh,
	}, nil
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	w.state.Regenerate(w.cfg.Seed, w.cfg.Count, w.cfg.Bounds.Vector())
	w.tick = 0
	w.lastLogTime = time.Now()
	ctx.ActorSystem().Logger().Infof("World populated with %d boids (seed %d)", w.cfg.Count, w.cfg.Seed)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")
		w.pushSnapshot()

	// The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		if err := msg.CheckValid(); err != nil {
			ctx.Logger().Warnf("ignoring tick: %v", err)
			return
		}
		dt := msg.AsDuration()
		if dt < 0 {
			ctx.Logger().Warnf("ignoring tick with negative delta time %s", dt)
			return
		}
		if err := w.engine.Tick(ctx.Context(), w.state, dt.Seconds()); err != nil {
			ctx.Logger().Warnf("tick %d aborted: %v", w.tick+1, err)
			return
		}
		w.tick++
		w.ticksSinceLog++
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *wrapperspb.UInt64Value:
		w.cfg.Seed = msg.GetValue()
		w.state.Regenerate(w.cfg.Seed, w.cfg.Count, w.cfg.Bounds.Vector())
		w.tick = 0
		ctx.Logger().Infof("World regenerated with %d boids (seed %d)", w.cfg.Count, w.cfg.Seed)
		w.pushSnapshot()

	// Handle dynamic slider updates from UI
	case *structpb.Struct:
		if err := w.updateParameters(msg); err != nil {
			ctx.Logger().Warnf("parameters unchanged: %v", err)
		}

	case *emptypb.Empty:
		stats, err := w.stats()
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(stats)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if elapsed := time.Since(w.lastLogTime); elapsed >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %.1f/sec | Boids: %d | Tick: %d",
			float64(w.ticksSinceLog)/elapsed.Seconds(), w.state.Len(), w.tick)
		w.ticksSinceLog = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	snap := newSnapshot(
		w.tick,
		w.state,
		w.cfg.Bounds.Vector(),
		flocking.Summarize(w.state, w.steering()),
		w.engine.IndexStats(),
	)
	select {
	case w.snapshotCh <- snap:
	default:
		// UI busy, skip frame
	}
}

// steering returns the force phase results when they still describe the
// current population, which is not the case right after a regeneration.
func (w *WorldActor) steering() []flocking.Steering {
	if w.tick == 0 {
		return nil
	}
	return w.engine.Steering()
}

// updateParameters applies every key of msg or none of them.
func (w *WorldActor) updateParameters(msg *structpb.Struct) error {
	p := w.engine.Parameters()
	fields := map[string]*float64{
		"separationRange":  &p.SeparationRange,
		"alignmentRange":   &p.AlignmentRange,
		"cohesionRange":    &p.CohesionRange,
		"separationWeight": &p.SeparationWeight,
		"alignmentWeight":  &p.AlignmentWeight,
		"cohesionWeight":   &p.CohesionWeight,
		"maxSpeed":         &p.MaxSpeed,
	}
	for key, value := range msg.GetFields() {
		dst, ok := fields[key]
		if !ok {
			return errors.Errorf("unknown parameter %q", key)
		}
		num, ok := value.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return errors.Errorf("parameter %q must be a number", key)
		}
		*dst = num.NumberValue
	}
	if err := w.engine.SetParameters(p); err != nil {
		return err
	}
	w.cfg.SetParameters(p)
	return nil
}

func (w *WorldActor) stats() (*structpb.Struct, error) {
	summary := flocking.Summarize(w.state, w.steering())
	p := w.engine.Parameters()
	return structpb.NewStruct(map[string]interface{}{
		"tick":             float64(w.tick),
		"count":            float64(summary.Agents),
		"seed":             float64(w.cfg.Seed),
		"polarization":     summary.Polarization,
		"meanNeighbors":    summary.MeanNeighbors,
		"centroidX":        summary.Centroid.X,
		"centroidY":        summary.Centroid.Y,
		"centroidZ":        summary.Centroid.Z,
		"separationRange":  p.SeparationRange,
		"alignmentRange":   p.AlignmentRange,
		"cohesionRange":    p.CohesionRange,
		"separationWeight": p.SeparationWeight,
		"alignmentWeight":  p.AlignmentWeight,
		"cohesionWeight":   p.CohesionWeight,
		"maxSpeed":         p.MaxSpeed,
	})
}
