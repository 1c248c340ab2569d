package viewer

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/geometry"
)

// viewport is the screen rectangle the world box is drawn into.
type viewport struct {
	X, Y, W, H float64
}

// scale is the number of pixels per world unit, equal on both axes.
func (vp viewport) scale(bounds r3.Vector) float64 {
	if bounds.X <= 0 || bounds.Y <= 0 {
		return 1
	}
	return math.Min(vp.W/(2*bounds.X), vp.H/(2*bounds.Y))
}

// project maps a world position onto the viewport, looking down the z axis.
// The world origin lands on the viewport center and +y points up.
func project(p, bounds r3.Vector, vp viewport) geometry.Vector2D {
	s := vp.scale(bounds)
	return geometry.Vector2D{
		X: vp.X + vp.W/2 + p.X*s,
		Y: vp.Y + vp.H/2 - p.Y*s,
	}
}

// brightness maps depth to a color intensity: boids near the top of the box
// (+z) are drawn brighter.
func brightness(z, bound float64) float32 {
	const dimmest = 0.35
	if bound <= 0 {
		return 1
	}
	t := (math.Min(math.Max(z, -bound), bound) + bound) / (2 * bound)
	return float32(dimmest + (1-dimmest)*t)
}

// glyph returns the three corners of the triangle drawn for a boid at
// center heading along dir. Screen y grows downward, so the heading is
// mirrored before it is turned into an angle.
func glyph(center geometry.Vector2D, dir r3.Vector) [3]geometry.Vector2D {
	angle := geometry.Vector2D{X: dir.X, Y: -dir.Y}.Angle()
	nose := geometry.NewVectorPolar(6, 0)
	wing := geometry.NewVectorPolar(5, 0)
	return [3]geometry.Vector2D{
		center.Add(nose.Rotate(angle)),
		center.Add(wing.Rotate(angle + 2.5)),
		center.Add(wing.Rotate(angle - 2.5)),
	}
}
