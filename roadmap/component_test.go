package roadmap

import (
	"testing"

	"go.viam.com/test"
)

// buildChain wires n1 -> n2 -> ... -> n5 as directed edges without reverses,
// producing five distinct components before any cycle-closing edge is added.
func buildChain(t *testing.T, r *Roadmap) []*Node {
	t.Helper()
	nodes := make([]*Node, 5)
	for i := range nodes {
		nodes[i] = r.AddNode(cfg(float64(i), 0))
	}
	for i := 0; i < len(nodes)-1; i++ {
		r.AddEdge(nodes[i], nodes[i+1], &fakePath{label: "chain"})
	}
	return nodes
}

func TestReachabilitySymmetricAcrossComponents(t *testing.T) {
	r := newTestRoadmap()
	nodes := buildChain(t, r)

	for _, cc1 := range r.aliveComponents() {
		for _, cc2 := range r.aliveComponents() {
			forward := cc1.CanReach(cc2)
			var backward bool
			for _, x := range cc2.ReachableFrom() {
				if x == cc1 {
					backward = true
				}
			}
			if cc1 == cc2 {
				continue
			}
			test.That(t, forward, test.ShouldEqual, backward)
		}
	}
	_ = nodes
}

func TestReachabilityIsTransitivelyClosed(t *testing.T) {
	r := newTestRoadmap()
	buildChain(t, r)

	ccs := r.aliveComponents()
	for _, c1 := range ccs {
		for _, c2 := range c1.ReachableTo() {
			for _, c3 := range c2.ReachableTo() {
				test.That(t, c1.CanReach(c3), test.ShouldBeTrue)
			}
		}
	}
}

func TestCycleClosureLeavesOnlyMergedRoot(t *testing.T) {
	r := newTestRoadmap()
	nodes := buildChain(t, r)
	test.That(t, r.ComponentCount(), test.ShouldEqual, 5)

	// Close the cycle: last -> first.
	r.AddEdge(nodes[len(nodes)-1], nodes[0], &fakePath{label: "close"})
	test.That(t, r.ComponentCount(), test.ShouldEqual, 1)

	root := nodes[0].Component()
	for _, n := range nodes {
		test.That(t, n.Component(), test.ShouldEqual, root)
	}
}

func TestEveryNodeBelongsToExactlyOneOwnedComponent(t *testing.T) {
	r := newTestRoadmap()
	nodes := buildChain(t, r)
	r.AddEdge(nodes[len(nodes)-1], nodes[0], &fakePath{label: "close"})

	alive := r.aliveComponents()
	for _, n := range r.nodes {
		found := false
		for _, cc := range alive {
			if cc != n.component {
				continue
			}
			_, memberOfOwnSet := cc.nodes[n]
			test.That(t, memberOfOwnSet, test.ShouldBeTrue)
			found = true
		}
		test.That(t, found, test.ShouldBeTrue)
	}
}

func TestMergeAbsorbsNodesAndReachability(t *testing.T) {
	r := newTestRoadmap()
	a := r.AddNode(cfg(0, 0))
	b := r.AddNode(cfg(1, 0))
	c := r.AddNode(cfg(2, 0))

	r.AddEdge(a, b, &fakePath{label: "ab"})
	r.AddEdge(b, c, &fakePath{label: "bc"})
	test.That(t, r.ComponentCount(), test.ShouldEqual, 3)

	// Closing c -> a merges all three into one component.
	r.AddEdge(c, a, &fakePath{label: "ca"})
	test.That(t, r.ComponentCount(), test.ShouldEqual, 1)

	root := a.Component()
	test.That(t, b.Component(), test.ShouldEqual, root)
	test.That(t, c.Component(), test.ShouldEqual, root)
	test.That(t, len(root.ReachableTo()), test.ShouldEqual, 0)
	test.That(t, len(root.ReachableFrom()), test.ShouldEqual, 0)
}
