package bvh

import "github.com/lao-tseu-is-alive/go-boids-bvh/pkg/geometry"

// Node is either a leaf holding point indices, or an internal node with exactly
// two children and no indices of its own. Bounds always encloses every point
// stored in the subtree.
type Node struct {
	Bounds  geometry.AABB
	Left    *Node
	Right   *Node
	Indices []int
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}
