package bvh

import (
	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/geometry"
)

// Tree is a BVH built over a slice of positions.
type Tree struct {
	root *Node
	size int
}

// Build constructs a tree over every index of positions, top-down.
//
// A node is split at the midpoint of its longest axis while it is shallower than
// opts.MaxDepth and holds more than opts.MinLeafSize indices. When every point
// lands on the same side of the split (coincident points, for instance), the
// node stays a leaf with all of its indices.
func Build(positions []r3.Vector, opts Options) *Tree {
	indices := lo.Range(len(positions))
	root := &Node{Bounds: geometry.AABBFromPoints(positions, indices), Indices: indices}
	build(positions, root, 0, opts)
	return &Tree{root: root, size: len(positions)}
}

func build(positions []r3.Vector, n *Node, depth int, opts Options) {
	if depth >= opts.MaxDepth || len(n.Indices) <= opts.MinLeafSize {
		return
	}

	axis := n.Bounds.LongestAxis()
	split := geometry.Component(n.Bounds.Center(), axis)

	// Partition in place: [0, k) goes left, [k, len) goes right. Children share
	// the parent's backing array, which is never touched again after the build.
	idx := n.Indices
	k := 0
	for i, pi := range idx {
		if geometry.Component(positions[pi], axis) < split {
			idx[i], idx[k] = idx[k], idx[i]
			k++
		}
	}
	if k == 0 || k == len(idx) {
		return
	}

	left, right := idx[:k:k], idx[k:]
	n.Left = &Node{Bounds: geometry.AABBFromPoints(positions, left), Indices: left}
	n.Right = &Node{Bounds: geometry.AABBFromPoints(positions, right), Indices: right}
	n.Indices = nil

	build(positions, n.Left, depth+1, opts)
	build(positions, n.Right, depth+1, opts)
}

// Root returns the root node; it is never nil for a built tree.
func (t *Tree) Root() *Node {
	return t.root
}

// Len returns the number of indexed points.
func (t *Tree) Len() int {
	return t.size
}

// QueryRange returns the indices of every point within radius of center,
// boundary included. positions must be the slice the tree was built from.
// A negative radius matches nothing.
func (t *Tree) QueryRange(positions []r3.Vector, center r3.Vector, radius float64) []int {
	return t.AppendRange(nil, positions, center, radius)
}

// AppendRange is QueryRange appending into dst, so callers can reuse a buffer.
func (t *Tree) AppendRange(dst []int, positions []r3.Vector, center r3.Vector, radius float64) []int {
	if t == nil || t.root == nil || radius < 0 {
		return dst
	}
	return queryNode(t.root, dst, positions, center, radius, radius*radius)
}

func queryNode(n *Node, dst []int, positions []r3.Vector, center r3.Vector, radius, radiusSq float64) []int {
	if !n.Bounds.IntersectsSphere(center, radius) {
		return dst
	}
	for _, idx := range n.Indices {
		if center.Sub(positions[idx]).Norm2() <= radiusSq {
			dst = append(dst, idx)
		}
	}
	if n.Left != nil {
		dst = queryNode(n.Left, dst, positions, center, radius, radiusSq)
	}
	if n.Right != nil {
		dst = queryNode(n.Right, dst, positions, center, radius, radiusSq)
	}
	return dst
}

// Walk visits nodes depth-first, parents before children. Returning false from
// fn skips the children of that node.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t == nil || t.root == nil {
		return
	}
	walk(t.root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if n.Left != nil {
		walk(n.Left, depth+1, fn)
	}
	if n.Right != nil {
		walk(n.Right, depth+1, fn)
	}
}

// Stats describes the shape of a built tree.
type Stats struct {
	Nodes       int
	Leaves      int
	Depth       int
	LargestLeaf int
}

// Stats walks the tree once and reports its shape.
func (t *Tree) Stats() Stats {
	var s Stats
	t.Walk(func(n *Node, depth int) bool {
		s.Nodes++
		if depth > s.Depth {
			s.Depth = depth
		}
		if n.IsLeaf() {
			s.Leaves++
			if len(n.Indices) > s.LargestLeaf {
				s.LargestLeaf = len(n.Indices)
			}
		}
		return true
	})
	return s
}
