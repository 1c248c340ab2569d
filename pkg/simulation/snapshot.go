package simulation

import (
	"slices"

	"github.com/golang/geo/r3"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/bvh"
	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/flocking"
)

// Snapshot is a copy of the world after a tick, safe to read from another
// goroutine while the world keeps running.
type Snapshot struct {
	Tick       uint64
	Positions  []r3.Vector
	Directions []r3.Vector
	Bounds     r3.Vector
	Summary    flocking.Summary
	Index      bvh.Stats
}

func newSnapshot(tick uint64, s *flocking.State, bounds r3.Vector, summary flocking.Summary, index bvh.Stats) *Snapshot {
	return &Snapshot{
		Tick:       tick,
		Positions:  slices.Clone(s.Positions),
		Directions: slices.Clone(s.Directions),
		Bounds:     bounds,
		Summary:    summary,
		Index:      index,
	}
}
