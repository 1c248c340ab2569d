package flocking

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/geometry"
)

// Parameters are the tunable inputs of a tick.
type Parameters struct {
	SeparationRange float64
	AlignmentRange  float64
	CohesionRange   float64

	SeparationWeight float64
	AlignmentWeight  float64
	CohesionWeight   float64

	// MaxSpeed is the constant speed of every agent.
	MaxSpeed float64
	// Bounds is the per-axis half extent of the toroidal domain.
	Bounds r3.Vector
}

// DefaultParameters returns a stable flock in a 500 unit cube.
func DefaultParameters() Parameters {
	return Parameters{
		SeparationRange:  8,
		AlignmentRange:   20,
		CohesionRange:    25,
		SeparationWeight: 1.5,
		AlignmentWeight:  1.0,
		CohesionWeight:   0.4,
		MaxSpeed:         30,
		Bounds:           r3.Vector{X: 250, Y: 250, Z: 250},
	}
}

// QueryRadius is the single neighbor query radius covering all three rules.
func (p Parameters) QueryRadius() float64 {
	return lo.Max([]float64{p.SeparationRange, p.AlignmentRange, p.CohesionRange})
}

// Validate returns every violation found, combined.
func (p Parameters) Validate() error {
	type field struct {
		name  string
		value float64
	}
	var err error
	for _, f := range []field{
		{"separation range", p.SeparationRange},
		{"alignment range", p.AlignmentRange},
		{"cohesion range", p.CohesionRange},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			err = multierr.Append(err, errors.Errorf("%s must be a finite value >= 0, got %v", f.name, f.value))
		}
	}
	if !geometry.IsFinite(p.Bounds) || p.Bounds.X < 0 || p.Bounds.Y < 0 || p.Bounds.Z < 0 {
		err = multierr.Append(err, errors.Errorf("bounds must be finite and >= 0 on every axis, got %v", p.Bounds))
	}
	weights := r3.Vector{X: p.SeparationWeight, Y: p.AlignmentWeight, Z: p.CohesionWeight}
	if !geometry.IsFinite(weights) {
		err = multierr.Append(err, errors.Errorf("weights must be finite, got separation %v, alignment %v, cohesion %v",
			p.SeparationWeight, p.AlignmentWeight, p.CohesionWeight))
	}
	if math.IsNaN(p.MaxSpeed) || math.IsInf(p.MaxSpeed, 0) || p.MaxSpeed <= 0 {
		err = multierr.Append(err, errors.Errorf("max speed must be a finite value > 0, got %v", p.MaxSpeed))
	}
	return err
}
