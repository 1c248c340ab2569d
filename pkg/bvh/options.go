package bvh

import "github.com/pkg/errors"

const (
	// DefaultMaxDepth bounds the recursion of Build.
	DefaultMaxDepth = 10
	// DefaultMinLeafSize is the index count at or below which a node is never split.
	DefaultMinLeafSize = 4
)

// Options controls when Build stops splitting.
type Options struct {
	MaxDepth    int `json:"maxDepth"`
	MinLeafSize int `json:"minLeafSize"`
}

// DefaultOptions returns the options used by the flocking engine unless configured otherwise.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, MinLeafSize: DefaultMinLeafSize}
}

// Validate rejects options that cannot describe a tree.
func (o Options) Validate() error {
	if o.MaxDepth < 0 {
		return errors.Errorf("bvh: max depth must be >= 0, got %d", o.MaxDepth)
	}
	if o.MinLeafSize < 1 {
		return errors.Errorf("bvh: min leaf size must be >= 1, got %d", o.MinLeafSize)
	}
	return nil
}
