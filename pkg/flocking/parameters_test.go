package flocking

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestParametersValidate(t *testing.T) {
	test.That(t, DefaultParameters().Validate(), test.ShouldBeNil)

	t.Run("zero ranges and negative weights are allowed", func(t *testing.T) {
		p := DefaultParameters()
		p.SeparationRange, p.AlignmentRange, p.CohesionRange = 0, 0, 0
		p.CohesionWeight = -1
		test.That(t, p.Validate(), test.ShouldBeNil)
	})

	tests := []struct {
		name   string
		mutate func(p *Parameters)
		errors int
	}{
		{"negative separation range", func(p *Parameters) { p.SeparationRange = -1 }, 1},
		{"zero max speed", func(p *Parameters) { p.MaxSpeed = 0 }, 1},
		{"negative max speed", func(p *Parameters) { p.MaxSpeed = -3 }, 1},
		{"NaN weight", func(p *Parameters) { p.AlignmentWeight = math.NaN() }, 1},
		{"infinite bound", func(p *Parameters) { p.Bounds.Y = math.Inf(1) }, 1},
		{"bad bounds on several axes", func(p *Parameters) { p.Bounds = r3.Vector{X: -1, Y: math.NaN(), Z: 1} }, 1},
		{"infinite weights", func(p *Parameters) {
			p.SeparationWeight, p.CohesionWeight = math.Inf(-1), math.NaN()
		}, 1},
		{"everything wrong at once", func(p *Parameters) {
			p.SeparationRange, p.AlignmentRange, p.CohesionRange = -1, -1, -1
			p.MaxSpeed = 0
			p.Bounds = r3.Vector{X: -1, Y: 1, Z: 1}
		}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			err := p.Validate()
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, multierr.Errors(err), test.ShouldHaveLength, tt.errors)
		})
	}
}

func TestQueryRadius(t *testing.T) {
	p := Parameters{SeparationRange: 2, AlignmentRange: 7, CohesionRange: 5}
	test.That(t, p.QueryRadius(), test.ShouldEqual, 7.0)
	p.CohesionRange = 9
	test.That(t, p.QueryRadius(), test.ShouldEqual, 9.0)
}
