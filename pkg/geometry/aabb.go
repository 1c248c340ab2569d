package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// AABB is an axis-aligned bounding box given by its min corner and non-negative extents.
type AABB struct {
	Position r3.Vector
	Size     r3.Vector
}

// AABBFromPoints returns the smallest box enclosing points[i] for every i in indices.
// An empty index set yields the zero box at the origin.
func AABBFromPoints(points []r3.Vector, indices []int) AABB {
	if len(indices) == 0 {
		return AABB{}
	}
	lo := points[indices[0]]
	hi := lo
	for _, idx := range indices[1:] {
		p := points[idx]
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		lo.Z = math.Min(lo.Z, p.Z)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
		hi.Z = math.Max(hi.Z, p.Z)
	}
	size := hi.Sub(lo)
	size.X = coverExtent(lo.X, size.X, hi.X)
	size.Y = coverExtent(lo.Y, size.Y, hi.Y)
	size.Z = coverExtent(lo.Z, size.Z, hi.Z)
	return AABB{Position: lo, Size: size}
}

// coverExtent rounds size up until lo+size is at least hi. hi-lo can round
// down, which would leave points on the max face outside the box.
func coverExtent(lo, size, hi float64) float64 {
	for lo+size < hi {
		size = math.Nextafter(size, math.Inf(1))
	}
	return size
}

// Max returns the max corner of the box. For a box from AABBFromPoints it is
// never below the largest coordinate on any axis.
func (b AABB) Max() r3.Vector {
	return b.Position.Add(b.Size)
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vector {
	return b.Position.Add(b.Size.Mul(0.5))
}

// LongestAxis returns the axis of largest extent, ties going to X, then Y.
func (b AABB) LongestAxis() Axis {
	s := b.Size
	switch {
	case s.X >= s.Y && s.X >= s.Z:
		return AxisX
	case s.Y >= s.Z:
		return AxisY
	default:
		return AxisZ
	}
}

// ClosestPoint clamps p into the box.
func (b AABB) ClosestPoint(p r3.Vector) r3.Vector {
	return Clamp(p, b.Position, b.Max())
}

// IntersectsSphere reports whether the sphere of the given radius around center
// touches the box. The closest-point test has no false negatives.
func (b AABB) IntersectsSphere(center r3.Vector, radius float64) bool {
	return center.Sub(b.ClosestPoint(center)).Norm2() <= radius*radius
}

// Contains reports whether p lies inside the box, widened by tol on every side.
func (b AABB) Contains(p r3.Vector, tol float64) bool {
	hi := b.Max()
	return p.X >= b.Position.X-tol && p.X <= hi.X+tol &&
		p.Y >= b.Position.Y-tol && p.Y <= hi.Y+tol &&
		p.Z >= b.Position.Z-tol && p.Z <= hi.Z+tol
}

func (b AABB) String() string {
	return fmt.Sprintf("AABB{min: %v, size: %v}", b.Position, b.Size)
}
