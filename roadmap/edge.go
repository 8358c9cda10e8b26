package roadmap

import "github.com/Hankfirst/hpp-core/path"

// Path is the opaque local-trajectory handle a Roadmap edge stores. See
// package path for the contract.
type Path = path.Path

// Edge is a directed local path between two nodes, produced by a steering
// method and stored opaquely.
type Edge struct {
	id   int
	from *Node
	to   *Node
	path Path
}

// From returns the edge's source node.
func (e *Edge) From() *Node {
	return e.from
}

// To returns the edge's target node.
func (e *Edge) To() *Node {
	return e.to
}

// Path returns the edge's opaque path handle.
func (e *Edge) Path() Path {
	return e.path
}
