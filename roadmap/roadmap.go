// Package roadmap implements the roadmap graph of a sampling-based
// kinodynamic motion planner: nodes (configurations), directed edges
// (opaque local paths), and the connected-component bookkeeping that lets a
// planner cheaply ask whether a goal is reachable from an init node. It
// delegates nearest-neighbor queries to package kdtree.
package roadmap

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Hankfirst/hpp-core/configuration"
	"github.com/Hankfirst/hpp-core/kdtree"
	"github.com/Hankfirst/hpp-core/logging"
)

// DefaultBucketSize is the k-d tree bucket size a new Roadmap is built with.
const DefaultBucketSize = kdtree.DefaultBucketSize

// Roadmap owns the vertices, directed edges, and connected components of a
// motion-planning roadmap, along with the k-d tree used to answer
// nearest-neighbor queries. Every Node, Edge, and *ConnectedComponent handed
// back to a caller is a non-owning reference valid for the Roadmap's
// lifetime; Clear or letting the Roadmap go out of scope releases them all.
type Roadmap struct {
	metric configuration.DistanceMetric
	device configuration.Device
	logger logging.Logger

	tree       *kdtree.KdTree
	components []*ConnectedComponent
	nodes      []*Node
	edges      []*Edge

	init  *Node
	goals []*Node

	nextNodeID int
	nextEdgeID int
}

// New creates an empty roadmap with the default bucket size. distance must
// be symmetric, non-negative, and zero iff its arguments are coordinate
// equal; device supplies the configuration-space dimension the k-d tree is
// built for.
func New(distance configuration.DistanceMetric, device configuration.Device) *Roadmap {
	logger := logging.NewBlankLogger("roadmap")
	return &Roadmap{
		metric: distance,
		device: device,
		logger: logger,
		tree:   kdtree.New(device.Dimension(), DefaultBucketSize, distance, logger),
	}
}

// SetLogger installs a logger used for diagnostic output (currently, only
// component-merge notices). Correctness never depends on this being called.
func (r *Roadmap) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.NewBlankLogger("roadmap")
	}
	r.logger = logger
}

// Clear destroys all nodes, edges, and components, resets the init/goal
// pointers, and empties the k-d tree. The roadmap is immediately usable
// afterward. Idempotent.
func (r *Roadmap) Clear() {
	r.nodes = nil
	r.edges = nil
	r.components = nil
	r.init = nil
	r.goals = nil
	r.nextNodeID = 0
	r.nextEdgeID = 0
	r.tree.Clear()
}

// NodeCount returns the number of nodes currently owned by the roadmap.
func (r *Roadmap) NodeCount() int {
	return len(r.nodes)
}

// EdgeCount returns the number of edges currently owned by the roadmap.
func (r *Roadmap) EdgeCount() int {
	return len(r.edges)
}

// ComponentCount returns the number of live connected components.
func (r *Roadmap) ComponentCount() int {
	return len(r.aliveComponents())
}

func (r *Roadmap) aliveComponents() []*ConnectedComponent {
	out := make([]*ConnectedComponent, 0, len(r.components))
	for _, cc := range r.components {
		if cc.alive {
			out = append(out, cc)
		}
	}
	return out
}

// AddNode inserts q as a new node, deduplicating against the global nearest
// node by exact configuration equality. If the roadmap is non-empty and its
// global nearest node's configuration equals q, that existing node is
// returned instead of creating a new one. Otherwise a new node is created in
// a fresh connected component.
func (r *Roadmap) AddNode(q configuration.Configuration) *Node {
	if len(r.nodes) > 0 {
		if n, _ := r.Nearest(q); n != nil && n.Configuration().Equal(q) {
			return n
		}
	}
	n := r.newNode(q)
	cc := newConnectedComponent()
	cc.AddNode(n)
	r.components = append(r.components, cc)
	r.tree.Add(n)
	return n
}

// AddNodeIn is like AddNode but deduplicates and inserts within a specific
// connected component rather than allocating a new one. cc must be a
// connected component currently tracked by this roadmap; passing an unknown
// or stale component is a precondition violation and panics.
func (r *Roadmap) AddNodeIn(q configuration.Configuration, cc *ConnectedComponent) *Node {
	r.mustOwnComponent(cc)
	if len(cc.nodes) > 0 {
		if n, _ := r.NearestIn(q, cc); n != nil && n.Configuration().Equal(q) {
			return n
		}
	}
	n := r.newNode(q)
	cc.AddNode(n)
	r.tree.Add(n)
	return n
}

func (r *Roadmap) newNode(q configuration.Configuration) *Node {
	n := &Node{id: r.nextNodeID, config: q}
	r.nextNodeID++
	r.nodes = append(r.nodes, n)
	return n
}

func (r *Roadmap) mustOwnComponent(cc *ConnectedComponent) {
	if cc == nil || !cc.alive {
		panic("roadmap: unknown connected component")
	}
	for _, owned := range r.components {
		if owned == cc {
			return
		}
	}
	panic("roadmap: unknown connected component")
}

// AddEdge appends a single directed edge from -> to carrying path, attaches
// it to both endpoints' edge lists, and merges from's and to's connected
// components if the edge closes a cycle (see connect).
func (r *Roadmap) AddEdge(from, to *Node, p Path) *Edge {
	e := &Edge{id: r.nextEdgeID, from: from, to: to, path: p}
	r.nextEdgeID++
	from.out = append(from.out, e)
	to.in = append(to.in, e)
	r.edges = append(r.edges, e)
	r.connect(from.component, to.component)
	return e
}

// AddEdges adds a forward edge from -> to and a reverse edge to -> from
// carrying path.Reverse(), for symmetric connectivity. This depends on the
// path implementation's Reverse() actually describing the reverse
// trajectory; the roadmap itself never inspects the path.
func (r *Roadmap) AddEdges(from, to *Node, p Path) (forward, backward *Edge) {
	forward = r.AddEdge(from, to, p)
	backward = r.AddEdge(to, from, p.Reverse())
	return forward, backward
}

// AddNodeAndEdges is a convenience combining AddNodeIn(qTo, from.Component())
// with AddEdges(from, to, path).
func (r *Roadmap) AddNodeAndEdges(from *Node, qTo configuration.Configuration, p Path) *Node {
	to := r.AddNodeIn(qTo, from.component)
	r.AddEdges(from, to, p)
	return to
}

// Nearest returns the node nearest to q across all connected components,
// and its distance under the roadmap's metric. It is implemented as the
// minimum over per-component k-d-tree searches rather than a single global
// search: the planner queries nearest-within-component far more often, and
// this keeps that path a plain single-component search. See NearestIn.
func (r *Roadmap) Nearest(q configuration.Configuration) (*Node, float64) {
	var best *Node
	bestDist := math.Inf(1)
	for _, cc := range r.components {
		if !cc.alive {
			continue
		}
		n, d := r.NearestIn(q, cc)
		if n != nil && d < bestDist {
			best, bestDist = n, d
		}
	}
	return best, bestDist
}

// NearestIn returns the node nearest to q within cc, and its distance. cc
// must be non-empty; calling this with an empty component is a precondition
// violation and panics.
func (r *Roadmap) NearestIn(q configuration.Configuration, cc *ConnectedComponent) (*Node, float64) {
	if len(cc.nodes) == 0 {
		panic("roadmap: NearestIn called on an empty connected component")
	}
	item, d := r.tree.Search(q, cc)
	if item == nil {
		return nil, math.Inf(1)
	}
	return item.(*Node), d
}

// Init returns the roadmap's init node, or nil if unset.
func (r *Roadmap) Init() *Node {
	return r.init
}

// SetInit sets the roadmap's init node.
func (r *Roadmap) SetInit(n *Node) {
	r.init = n
}

// GoalNodes returns the roadmap's goal nodes, in the order they were added.
func (r *Roadmap) GoalNodes() []*Node {
	return r.goals
}

// AddGoal adds q to the roadmap (see AddNode) and appends the resulting node
// to the goal list.
func (r *Roadmap) AddGoal(q configuration.Configuration) *Node {
	n := r.AddNode(q)
	r.goals = append(r.goals, n)
	return n
}

// PathExists reports whether some goal node's component is reachable from
// the init node's component. Calling this with no init node set is a
// precondition violation and panics.
func (r *Roadmap) PathExists() bool {
	if r.init == nil {
		panic("roadmap: PathExists called with no init node set")
	}
	for _, g := range r.goals {
		if r.init.component.CanReach(g.component) {
			return true
		}
	}
	return false
}

// connect ensures cc1 can reach cc2. If some components reachable from cc2
// (cc2 included) can reach cc1, the new edge closes a cycle and all of them
// are merged into cc1; otherwise cc2 is added to cc1's reachable set. Either
// way every ancestor of the result then reaches every descendant, keeping
// the reachability sets transitively closed.
func (r *Roadmap) connect(cc1, cc2 *ConnectedComponent) {
	if cc1 == cc2 || cc1.CanReach(cc2) {
		return
	}

	merged := map[*ConnectedComponent]struct{}{}
	candidates := append([]*ConnectedComponent{cc2}, cc2.ReachableTo()...)
	for _, cand := range candidates {
		cand.CanReachCollecting(cc1, merged)
	}
	if len(merged) > 0 {
		for cand := range merged {
			if cand == cc1 {
				continue
			}
			cc1.merge(cand, r.components)
			r.logger.Debugw("merged connected components", "into", cc1.ID(), "absorbed", cand.ID())
		}
		for anc := range cc1.reachableFrom {
			for desc := range cc1.reachableTo {
				anc.reachableTo[desc] = struct{}{}
				desc.reachableFrom[anc] = struct{}{}
			}
		}
		return
	}

	cc1.reachableTo[cc2] = struct{}{}
	cc2.reachableFrom[cc1] = struct{}{}
	for anc := range cc1.reachableFrom {
		for desc := range cc2.reachableTo {
			anc.reachableTo[desc] = struct{}{}
			desc.reachableFrom[anc] = struct{}{}
		}
		anc.reachableTo[cc2] = struct{}{}
		cc2.reachableFrom[anc] = struct{}{}
	}
	for desc := range cc2.reachableTo {
		desc.reachableFrom[cc1] = struct{}{}
		cc1.reachableTo[desc] = struct{}{}
	}
}

// String renders the same textual dump as Dump.
func (r *Roadmap) String() string {
	var b strings.Builder
	r.Dump(&b)
	return b.String()
}

// Dump writes a line-oriented, human-readable dump of the roadmap: nodes in
// insertion order, edges in insertion order, then connected components with
// their members and reachability sets. Node and component indices are
// positional within this call and carry no stability across runs or across
// calls after further mutation.
func (r *Roadmap) Dump(w io.Writer) {
	fmt.Fprintln(w, "Roadmap")

	fmt.Fprintln(w, "Nodes")
	nodeIndex := make(map[*Node]int, len(r.nodes))
	for i, n := range r.nodes {
		nodeIndex[n] = i
		fmt.Fprintf(w, "Node %d: %s\n", i, n)
	}

	fmt.Fprintln(w, "Edges")
	for _, e := range r.edges {
		fmt.Fprintf(w, "Edge: %d -> %d\n", nodeIndex[e.from], nodeIndex[e.to])
	}

	fmt.Fprintln(w, "Connected components")
	alive := r.aliveComponents()
	ccIndex := make(map[*ConnectedComponent]int, len(alive))
	for i, cc := range alive {
		ccIndex[cc] = i
	}
	for i, cc := range alive {
		fmt.Fprintf(w, "Connected component %d\n", i)
		fmt.Fprintf(w, "Nodes : %s\n", joinNodeIndices(cc.Nodes(), nodeIndex))
		fmt.Fprintf(w, "Reachable to : %s\n", joinComponentIndices(cc.ReachableTo(), ccIndex))
		fmt.Fprintf(w, "Reachable from : %s\n", joinComponentIndices(cc.ReachableFrom(), ccIndex))
	}
}

func joinNodeIndices(nodes []*Node, index map[*Node]int) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = strconv.Itoa(index[n])
	}
	return strings.Join(parts, ", ")
}

func joinComponentIndices(ccs []*ConnectedComponent, index map[*ConnectedComponent]int) string {
	parts := make([]string, len(ccs))
	for i, cc := range ccs {
		parts[i] = strconv.Itoa(index[cc])
	}
	return strings.Join(parts, ", ")
}
