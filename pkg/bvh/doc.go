// Package bvh implements a bounding volume hierarchy over a point cloud.
//
// The tree stores point indices, not points: the caller keeps ownership of the
// position slice and passes it to Build and to every query. A Tree is meant to
// be thrown away and rebuilt whenever the points move; it is never refitted.
// Once built a Tree is immutable, so any number of goroutines may query it
// concurrently.
package bvh
