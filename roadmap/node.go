package roadmap

import (
	"strconv"
	"strings"

	"github.com/Hankfirst/hpp-core/configuration"
)

// Node is a vertex in a Roadmap: a configuration plus its incident edges and
// its current connected component. A Node is a non-owning handle valid for
// the lifetime of the Roadmap that created it; it is mutated only through
// Roadmap operations.
type Node struct {
	id        int
	config    configuration.Configuration
	component *ConnectedComponent
	out       []*Edge
	in        []*Edge
}

// Configuration returns the node's configuration.
func (n *Node) Configuration() configuration.Configuration {
	return n.config
}

// ComponentKey implements kdtree.Item: nodes are partitioned by identity of
// their current connected component. Because this reads n.component live,
// a component merge is reflected in subsequent queries without touching the
// tree.
func (n *Node) ComponentKey() any {
	return n.component
}

// Component returns the connected component this node currently belongs to.
func (n *Node) Component() *ConnectedComponent {
	return n.component
}

// OutEdges returns the node's outgoing edges, in insertion order.
func (n *Node) OutEdges() []*Edge {
	return n.out
}

// InEdges returns the node's incoming edges, in insertion order.
func (n *Node) InEdges() []*Edge {
	return n.in
}

// String renders the node's configuration for the textual dump.
func (n *Node) String() string {
	parts := make([]string, len(n.config))
	for i, v := range n.config {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
