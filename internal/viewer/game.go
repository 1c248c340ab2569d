// Package viewer draws a running flock with ebiten and lets the user tune it.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/ui"
)

const (
	panelWidth = 280.0
	margin     = 10.0
	// maxGlyphsPerBatch keeps vertex indices within uint16.
	maxGlyphsPerBatch = 65535 / 3
)

// tunable is a flocking parameter exposed as a slider, keyed by its JSON name.
type tunable struct {
	key      string
	label    string
	min, max float64
	value    func(*simulation.Config) float64
}

var tunables = []tunable{
	{"separationRange", "Separation Range", 0, 50, func(c *simulation.Config) float64 { return c.SeparationRange }},
	{"alignmentRange", "Alignment Range", 0, 100, func(c *simulation.Config) float64 { return c.AlignmentRange }},
	{"cohesionRange", "Cohesion Range", 0, 100, func(c *simulation.Config) float64 { return c.CohesionRange }},
	{"separationWeight", "Separation Weight", 0, 5, func(c *simulation.Config) float64 { return c.SeparationWeight }},
	{"alignmentWeight", "Alignment Weight", 0, 5, func(c *simulation.Config) float64 { return c.AlignmentWeight }},
	{"cohesionWeight", "Cohesion Weight", 0, 5, func(c *simulation.Config) float64 { return c.CohesionWeight }},
	{"maxSpeed", "Max Speed", 1, 100, func(c *simulation.Config) float64 { return c.MaxSpeed }},
}

type Game struct {
	ctx        context.Context
	worldPID   *actor.PID
	snapshotCh <-chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	cfg        *simulation.Config
	logger     *zap.SugaredLogger

	// UI Controls
	panel       *ui.UIPanel
	sliders     []*ui.Slider // parallel to tunables
	pause       *ui.Checkbox
	regenerate  bool
	nextSeed    uint64
	dt          time.Duration
	whiteImage  *ebiten.Image
	vertices    []ebiten.Vertex
	indices     []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame returns a game driving the world behind worldPID, one tick per
// ebiten update, and drawing the snapshots it publishes on snapshotCh.
func NewGame(
	ctx context.Context,
	cfg *simulation.Config,
	worldPID *actor.PID,
	snapshotCh <-chan *simulation.Snapshot,
	logger *zap.SugaredLogger,
) *Game {
	g := &Game{
		ctx:        ctx,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &simulation.Snapshot{}, // Avoid nil pointer
		cfg:        cfg,
		logger:     logger,
		nextSeed:   cfg.Seed + 1,
		dt:         time.Second / time.Duration(cfg.TickRate),
	}

	g.panel = ui.NewUIPanel(margin, margin, panelWidth, float64(cfg.WindowHeight)-2*margin, "Configuration")
	g.panel.AddSection("Flocking")
	for _, t := range tunables {
		g.sliders = append(g.sliders, g.panel.AddSlider(t.label, t.min, t.max, t.value(cfg)))
	}
	g.panel.EndSection()

	g.panel.AddSection("Simulation")
	g.pause = g.panel.AddCheckbox("Pause", false)
	g.panel.AddButton("Regenerate", func() { g.regenerate = true })
	g.panel.EndSection()

	return g
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// Keep only the most recent snapshot.
	for drained := false; !drained; {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			drained = true
		}
	}

	if update := g.changedParameters(); update != nil {
		if err := actor.Tell(g.ctx, g.worldPID, update); err != nil {
			return err
		}
	}

	if g.regenerate {
		g.regenerate = false
		g.logger.Infow("regenerating flock", "seed", g.nextSeed)
		if err := actor.Tell(g.ctx, g.worldPID, wrapperspb.UInt64(g.nextSeed)); err != nil {
			return err
		}
		g.nextSeed++
	}

	// Trigger Simulation Step
	if !g.pause.Value {
		return actor.Tell(g.ctx, g.worldPID, durationpb.New(g.dt))
	}
	return nil
}

// changedParameters returns the sliders moved during the last update as a
// parameter update for the world, or nil if none moved.
func (g *Game) changedParameters() *structpb.Struct {
	var fields map[string]*structpb.Value
	for i, s := range g.sliders {
		if !s.Changed() {
			continue
		}
		if fields == nil {
			fields = make(map[string]*structpb.Value)
		}
		fields[tunables[i].key] = structpb.NewNumberValue(s.Value)
	}
	if fields == nil {
		return nil
	}
	return &structpb.Struct{Fields: fields}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})
	g.drawFlock(screen)
	g.panel.Draw(screen)
	g.drawStats(screen)
}

func (g *Game) viewport(screen *ebiten.Image) viewport {
	b := screen.Bounds()
	x := panelWidth + 2*margin
	return viewport{X: x, Y: margin, W: float64(b.Dx()) - x - margin, H: float64(b.Dy()) - 2*margin}
}

// drawFlock renders every boid as a triangle, batched into as few draw calls
// as the uint16 indices allow.
func (g *Game) drawFlock(screen *ebiten.Image) {
	snap := g.lastState
	if snap == nil || len(snap.Positions) == 0 {
		return
	}
	if g.whiteImage == nil {
		g.whiteImage = ebiten.NewImage(3, 3)
		g.whiteImage.Fill(color.White)
	}

	vp := g.viewport(screen)
	s := vp.scale(snap.Bounds)
	vector.StrokeRect(screen,
		float32(vp.X+vp.W/2-snap.Bounds.X*s), float32(vp.Y+vp.H/2-snap.Bounds.Y*s),
		float32(2*snap.Bounds.X*s), float32(2*snap.Bounds.Y*s),
		1, color.RGBA{R: 60, G: 60, B: 90, A: 255}, true)

	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	flush := func() {
		if len(g.indices) > 0 {
			screen.DrawTriangles(g.vertices, g.indices, g.whiteImage, &ebiten.DrawTrianglesOptions{})
		}
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
	}

	for i, pos := range snap.Positions {
		light := brightness(pos.Z, snap.Bounds.Z)
		for _, corner := range glyph(project(pos, snap.Bounds, vp), snap.Directions[i]) {
			g.indices = append(g.indices, uint16(len(g.vertices)))
			g.vertices = append(g.vertices, ebiten.Vertex{
				DstX: float32(corner.X),
				DstY: float32(corner.Y),
				SrcX: 1, SrcY: 1,
				ColorR: 0.4 * light, ColorG: 0.8 * light, ColorB: light, ColorA: 1,
			})
		}
		if len(g.vertices)/3 == maxGlyphsPerBatch {
			flush()
		}
	}
	flush()
}

func (g *Game) drawStats(screen *ebiten.Image) {
	snap := g.lastState
	state := "running"
	if g.pause.Value {
		state = "paused"
	}
	msg := fmt.Sprintf("Tick: %d (%s)\nBoids: %d\nPolarization: %.3f\nNeighbors: %.1f ± %.1f\n\n"+
		"BVH nodes: %d\nBVH depth: %d\nLargest leaf: %d\n\n"+
		"FPS: %.2f\nTPS: %.2f\nUpdate: %.2fms\nDraw:   %.2fms",
		snap.Tick, state,
		snap.Summary.Agents,
		snap.Summary.Polarization,
		snap.Summary.MeanNeighbors, snap.Summary.StdNeighbors,
		snap.Index.Nodes, snap.Index.Depth, snap.Index.LargestLeaf,
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		g.updateAvg, g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, screen.Bounds().Dx()-190, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.WindowWidth, g.cfg.WindowHeight }
