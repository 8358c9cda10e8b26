package roadmap

import "github.com/google/uuid"

// ConnectedComponent is a maximal set of roadmap nodes mutually reachable
// along directed edges, per the reachability closure maintained here rather
// than computed on demand. The reachability sets are eagerly transitively
// closed: after any public operation, reachableTo/reachableFrom answer
// CanReach in O(1).
//
// A ConnectedComponent is only ever mutated by Roadmap's connect/merge
// machinery; nothing else may write to its sets.
type ConnectedComponent struct {
	id            uuid.UUID
	alive         bool
	nodes         map[*Node]struct{}
	reachableTo   map[*ConnectedComponent]struct{}
	reachableFrom map[*ConnectedComponent]struct{}
}

func newConnectedComponent() *ConnectedComponent {
	return &ConnectedComponent{
		id:            uuid.New(),
		alive:         true,
		nodes:         make(map[*Node]struct{}),
		reachableTo:   make(map[*ConnectedComponent]struct{}),
		reachableFrom: make(map[*ConnectedComponent]struct{}),
	}
}

// ID returns a stable-for-the-object's-lifetime debug identifier. It is used
// only in diagnostic log output (merge notices) and by nothing that affects
// planning behavior; the textual dump uses positional indices instead.
func (c *ConnectedComponent) ID() string {
	return c.id.String()
}

// AddNode adds n to this component and re-points n's back reference.
func (c *ConnectedComponent) AddNode(n *Node) {
	c.nodes[n] = struct{}{}
	n.component = c
}

// Nodes returns the component's member nodes. Iteration order is undefined.
func (c *ConnectedComponent) Nodes() []*Node {
	out := make([]*Node, 0, len(c.nodes))
	for n := range c.nodes {
		out = append(out, n)
	}
	return out
}

// ReachableTo returns the components this one can reach, directly or
// transitively. Never includes c itself. Iteration order is undefined.
func (c *ConnectedComponent) ReachableTo() []*ConnectedComponent {
	out := make([]*ConnectedComponent, 0, len(c.reachableTo))
	for x := range c.reachableTo {
		out = append(out, x)
	}
	return out
}

// ReachableFrom returns the components that can reach this one, directly or
// transitively. Never includes c itself. Iteration order is undefined.
func (c *ConnectedComponent) ReachableFrom() []*ConnectedComponent {
	out := make([]*ConnectedComponent, 0, len(c.reachableFrom))
	for x := range c.reachableFrom {
		out = append(out, x)
	}
	return out
}

// CanReach reports whether c can reach other, directly, transitively, or
// because they are the same component. Because reachability is kept
// transitively closed, this is a single map lookup.
func (c *ConnectedComponent) CanReach(other *ConnectedComponent) bool {
	if c == other {
		return true
	}
	_, ok := c.reachableTo[other]
	return ok
}

// CanReachCollecting reports the same boolean result as CanReach and, when
// true, also records c into out. Connect uses this while scanning cc2's
// downward closure to build the set of components that close a cycle with
// cc1: each candidate that can reach cc1 belongs in the merge set.
func (c *ConnectedComponent) CanReachCollecting(other *ConnectedComponent, out map[*ConnectedComponent]struct{}) bool {
	if !c.CanReach(other) {
		return false
	}
	out[c] = struct{}{}
	return true
}

// merge absorbs other into c: c gains other's nodes (re-pointed) and the
// union of their reachability sets, every other component's reachability
// sets are rewritten to replace other with c, and other is marked dead.
// all must include every component currently tracked by the roadmap so the
// rewrite step is complete.
func (c *ConnectedComponent) merge(other *ConnectedComponent, all []*ConnectedComponent) {
	if c == other {
		return
	}
	for n := range other.nodes {
		n.component = c
		c.nodes[n] = struct{}{}
	}
	for x := range other.reachableTo {
		if x != c && x != other {
			c.reachableTo[x] = struct{}{}
		}
	}
	for x := range other.reachableFrom {
		if x != c && x != other {
			c.reachableFrom[x] = struct{}{}
		}
	}
	delete(c.reachableTo, other)
	delete(c.reachableFrom, other)

	for _, comp := range all {
		if !comp.alive || comp == c || comp == other {
			continue
		}
		if _, ok := comp.reachableTo[other]; ok {
			delete(comp.reachableTo, other)
			comp.reachableTo[c] = struct{}{}
		}
		if _, ok := comp.reachableFrom[other]; ok {
			delete(comp.reachableFrom, other)
			comp.reachableFrom[c] = struct{}{}
		}
	}

	other.alive = false
	other.nodes = nil
	other.reachableTo = nil
	other.reachableFrom = nil
}
