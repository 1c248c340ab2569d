package geometry

import (
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
)

// Axis names one of the three coordinate axes.
type Axis int

// Axes in split priority order: when extents tie, X wins over Y and Y over Z.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Component returns the coordinate of v along axis a.
func Component(v r3.Vector, a Axis) float64 {
	switch a {
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	default:
		return v.X
	}
}

// IsFinite reports whether every coordinate of v is a finite number.
func IsFinite(v r3.Vector) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Clamp returns v with every coordinate clamped into [lo, hi].
func Clamp(v, lo, hi r3.Vector) r3.Vector {
	return r3.Vector{
		X: math.Min(math.Max(v.X, lo.X), hi.X),
		Y: math.Min(math.Max(v.Y, lo.Y), hi.Y),
		Z: math.Min(math.Max(v.Z, lo.Z), hi.Z),
	}
}

// Wrap applies the toroidal boundary to p, independently per axis.
// A coordinate above +bound teleports to -bound, one below -bound to +bound.
// Values exactly on the boundary are kept.
func Wrap(p, bound r3.Vector) r3.Vector {
	return r3.Vector{
		X: wrapCoord(p.X, bound.X),
		Y: wrapCoord(p.Y, bound.Y),
		Z: wrapCoord(p.Z, bound.Z),
	}
}

func wrapCoord(c, bound float64) float64 {
	switch {
	case c > bound:
		return -bound
	case c < -bound:
		return bound
	default:
		return c
	}
}

// RandomInBox samples a vector uniformly within [-half, half] on every axis.
func RandomInBox(rng *rand.Rand, half r3.Vector) r3.Vector {
	return r3.Vector{
		X: (rng.Float64()*2 - 1) * half.X,
		Y: (rng.Float64()*2 - 1) * half.Y,
		Z: (rng.Float64()*2 - 1) * half.Z,
	}
}

// RandomUnit samples each axis uniformly within [-1, 1] and normalizes the result.
// Samples too short to normalize reliably are drawn again.
func RandomUnit(rng *rand.Rand) r3.Vector {
	for {
		v := RandomInBox(rng, r3.Vector{X: 1, Y: 1, Z: 1})
		if n := v.Norm(); n > 1e-6 {
			return v.Mul(1 / n)
		}
	}
}
