// Package main is the boids command: a headless runner and an interactive viewer.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-boids-bvh/internal/logging"
	"github.com/lao-tseu-is-alive/go-boids-bvh/internal/viewer"
	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/simulation"
)

const (
	// Flags.
	flagConfig     = "config"
	flagSchema     = "schema"
	flagLogLevel   = "log-level"
	flagActorLog   = "actor-log"
	flagSeed       = "seed"
	flagCount      = "count"
	flagWorkers    = "workers"
	flagTicks      = "ticks"
	flagDeltaTime  = "dt"
	flagStatsEvery = "stats-every"

	statsTimeout = time.Minute
)

func main() {
	app := &cli.App{
		Name:            "boids",
		Usage:           "simulate a 3D flock of boids over a BVH spatial index",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagSchema,
				Usage: "validate the configuration against `FILE` instead of the built-in schema",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "one of debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  flagActorLog,
				Usage: "show the actor system logs",
			},
			&cli.Uint64Flag{
				Name:  flagSeed,
				Usage: "seed of the initial population",
			},
			&cli.IntFlag{
				Name:  flagCount,
				Usage: "number of boids",
			},
			&cli.IntFlag{
				Name:  flagWorkers,
				Usage: "goroutines computing steering forces, 0 for one per CPU",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the simulation without a window and log flock statistics",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagTicks,
						Value: 600,
						Usage: "number of ticks to run",
					},
					&cli.Float64Flag{
						Name:  flagDeltaTime,
						Value: 1.0 / 60,
						Usage: "seconds simulated by each tick",
					},
					&cli.IntFlag{
						Name:  flagStatsEvery,
						Value: 60,
						Usage: "log statistics every `N` ticks",
					},
				},
				Action: RunAction,
			},
			{
				Name:   "view",
				Usage:  "open a window showing the flock, with sliders to tune it",
				Action: ViewAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the configuration file, if any, and applies the flags over it.
func loadConfig(c *cli.Context) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		loaded, err := simulation.LoadConfig(path, c.String(flagSchema))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet(flagSeed) {
		cfg.Seed = c.Uint64(flagSeed)
	}
	if c.IsSet(flagCount) {
		cfg.Count = c.Int(flagCount)
	}
	if c.IsSet(flagWorkers) {
		cfg.Workers = c.Int(flagWorkers)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// startWorld starts an actor system hosting a world built from cfg.
func startWorld(
	ctx context.Context,
	c *cli.Context,
	cfg *simulation.Config,
	snapshotCh chan<- *simulation.Snapshot,
	logger *zap.SugaredLogger,
) (actor.ActorSystem, *actor.PID, error) {
	var actorLogger golog.Logger = golog.DiscardLogger
	if c.Bool(flagActorLog) {
		actorLogger = golog.DefaultLogger
	}
	system, err := actor.NewActorSystem("Boids",
		actor.WithLogger(actorLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create actor system")
	}
	if err := system.Start(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "failed to start actor system")
	}

	world, err := simulation.NewWorldActor(snapshotCh, cfg, logger)
	if err != nil {
		return nil, nil, stopOnError(ctx, system, err)
	}
	pid, err := system.Spawn(ctx, "world", world)
	if err != nil {
		return nil, nil, stopOnError(ctx, system, errors.Wrap(err, "failed to spawn world"))
	}
	return system, pid, nil
}

func stopOnError(ctx context.Context, system actor.ActorSystem, err error) error {
	return multierr.Combine(err, system.Stop(ctx))
}

func setup(c *cli.Context) (*simulation.Config, *zap.SugaredLogger, error) {
	logger, err := logging.NewLogger("boids", c.String(flagLogLevel))
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// RunAction runs a fixed number of ticks and logs statistics along the way.
func RunAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ticks := c.Int(flagTicks)
	every := c.Int(flagStatsEvery)
	dt := c.Float64(flagDeltaTime)
	if ticks < 0 || dt < 0 {
		return errors.Errorf("ticks and dt must be >= 0, got %d and %v", ticks, dt)
	}

	ctx := c.Context
	system, pid, err := startWorld(ctx, c, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer func() { _ = system.Stop(ctx) }()

	logger.Infow("running", "boids", cfg.Count, "seed", cfg.Seed, "ticks", ticks, "dt", dt)
	start := time.Now()
	step := durationpb.New(time.Duration(dt * float64(time.Second)))
	for i := 1; i <= ticks; i++ {
		if err := actor.Tell(ctx, pid, step); err != nil {
			return err
		}
		if every > 0 && i%every == 0 && i != ticks {
			if err := logStats(ctx, pid, logger); err != nil {
				return err
			}
		}
	}
	if err := logStats(ctx, pid, logger); err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Infow("done", "elapsed", elapsed, "ticksPerSecond", float64(ticks)/elapsed.Seconds())
	return nil
}

// logStats waits for the world to process every queued tick, then logs its statistics.
func logStats(ctx context.Context, pid *actor.PID, logger *zap.SugaredLogger) error {
	resp, err := actor.Ask(ctx, pid, &emptypb.Empty{}, statsTimeout)
	if err != nil {
		return errors.Wrap(err, "cannot read world statistics")
	}
	stats, ok := resp.(*structpb.Struct)
	if !ok {
		return errors.Errorf("unexpected statistics reply %T", resp)
	}
	fields := stats.AsMap()
	logger.Infow("flock",
		"tick", fields["tick"],
		"polarization", fields["polarization"],
		"meanNeighbors", fields["meanNeighbors"],
		"centroid", []interface{}{fields["centroidX"], fields["centroidY"], fields["centroidZ"]},
	)
	return nil
}

// ViewAction opens the interactive viewer.
func ViewAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := c.Context
	// Buffer to avoid blocking
	snapshotCh := make(chan *simulation.Snapshot, 10)
	system, pid, err := startWorld(ctx, c, cfg, snapshotCh, logger)
	if err != nil {
		return err
	}
	defer func() { _ = system.Stop(ctx) }()

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Boids (BVH)")
	ebiten.SetTPS(cfg.TickRate)
	return ebiten.RunGame(viewer.NewGame(ctx, cfg, pid, snapshotCh, logger))
}
