// Package kdtree implements an incremental, bucketed k-d tree over
// configuration space, supporting nearest-neighbor queries restricted to a
// caller-supplied component key. It is generic over any Item whose
// configuration and component key can be read; the roadmap package supplies
// its Node type as the Item implementation.
package kdtree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Hankfirst/hpp-core/configuration"
	"github.com/Hankfirst/hpp-core/logging"
)

// DefaultBucketSize is the bucket size used when none is supplied, matching
// the roadmap's own default.
const DefaultBucketSize = 30

// distanceEpsilon absorbs floating point error when comparing a candidate's
// distance against the current best during branch-and-bound pruning.
const distanceEpsilon = 1e-12

// Item is anything a KdTree can index: a configuration, and a component key
// used to partition nearest-neighbor queries. Two items are considered to be
// in the same component iff their ComponentKey values compare equal under
// Go's built-in comparison (roadmap.Node uses its *ConnectedComponent
// pointer as the key, which is re-read live so merges are reflected without
// having to touch the tree).
type Item interface {
	Configuration() configuration.Configuration
	ComponentKey() any
}

type entry struct {
	item  Item
	order int
}

type node struct {
	leaf    bool
	items   []entry
	axis    int
	split   float64
	left    *node
	right   *node
}

// KdTree is a bucketed k-d tree over D-dimensional configurations.
type KdTree struct {
	dim        int
	bucketSize int
	metric     configuration.DistanceMetric
	logger     logging.Logger
	root       *node
	bruteForce bool
	nextOrder  int
	size       int
}

// New constructs an empty KdTree for a device of the given dimension, using
// metric for distance comparisons and bucketSize as the maximum leaf size
// before a split occurs. A bucketSize <= 0 uses DefaultBucketSize.
func New(dim int, bucketSize int, metric configuration.DistanceMetric, logger logging.Logger) *KdTree {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	if logger == nil {
		logger = logging.NewBlankLogger("kdtree")
	}
	return &KdTree{dim: dim, bucketSize: bucketSize, metric: metric, logger: logger}
}

// WarnIfMetricUnbounded logs a warning, once, if the caller's metric is
// known not to be bounded below by per-axis Euclidean distance -- the
// precondition the branch-and-bound pruning rule in Search relies on. With a
// metric that violates it, pruning can skip the true nearest item; use
// SetBruteForce(true) to disable pruning entirely for such a metric.
func (t *KdTree) WarnIfMetricUnbounded(boundedBelowByEuclidean bool) {
	if !boundedBelowByEuclidean {
		t.logger.Warnw("distance metric is not known to be bounded below by per-axis Euclidean distance; " +
			"nearest-neighbor pruning may be unsound, consider SetBruteForce(true)")
	}
}

// SetBruteForce forces Search to scan every same-component item instead of
// using branch-and-bound pruning. Use this when the supplied metric is not
// bounded below by per-axis Euclidean distance.
func (t *KdTree) SetBruteForce(brute bool) {
	t.bruteForce = brute
}

// Clear drops all internal state. The tree is usable immediately afterward.
func (t *KdTree) Clear() {
	t.root = nil
	t.nextOrder = 0
	t.size = 0
}

// Len returns the number of items currently indexed.
func (t *KdTree) Len() int {
	return t.size
}

// Add inserts item into the tree, descending existing splits to the
// appropriate leaf bucket and splitting it if it overflows bucketSize.
func (t *KdTree) Add(item Item) {
	e := entry{item: item, order: t.nextOrder}
	t.nextOrder++
	t.size++
	if t.root == nil {
		t.root = &node{leaf: true}
	}
	t.root = t.insert(t.root, e)
}

func (t *KdTree) insert(n *node, e entry) *node {
	if !n.leaf {
		if e.item.Configuration()[n.axis] < n.split {
			n.left = t.insert(n.left, e)
		} else {
			n.right = t.insert(n.right, e)
		}
		return n
	}
	n.items = append(n.items, e)
	if len(n.items) > t.bucketSize {
		return t.split(n)
	}
	return n
}

// split partitions a leaf's items into two child leaves, choosing the axis
// of greatest spread among the bucket's configurations (ties broken by
// lowest axis index) and using the median coordinate on that axis as the
// split value.
func (t *KdTree) split(n *node) *node {
	items := n.items
	bestAxis := 0
	bestSpread := -1.0
	for d := 0; d < t.dim; d++ {
		vals := make([]float64, len(items))
		for i, e := range items {
			vals[i] = e.item.Configuration()[d]
		}
		spread := stat.Variance(vals, nil)
		if spread > bestSpread {
			bestSpread = spread
			bestAxis = d
		}
	}

	vals := make([]float64, len(items))
	for i, e := range items {
		vals[i] = e.item.Configuration()[bestAxis]
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	// The empirical median is a lower median and can equal the smallest
	// coordinate, leaving nothing strictly below it; split at the next larger
	// coordinate instead when one exists.
	if median == sorted[0] {
		for _, v := range sorted {
			if v > median {
				median = v
				break
			}
		}
	}

	left := &node{leaf: true}
	right := &node{leaf: true}
	for _, e := range items {
		if e.item.Configuration()[bestAxis] < median {
			left.items = append(left.items, e)
		} else {
			right.items = append(right.items, e)
		}
	}
	// All configurations tied on bestAxis: fall back to an even split by
	// insertion order so the bucket still shrinks.
	if len(left.items) == 0 || len(right.items) == 0 {
		mid := len(items) / 2
		left.items = append([]entry(nil), items[:mid]...)
		right.items = append([]entry(nil), items[mid:]...)
	}
	return &node{axis: bestAxis, split: median, left: left, right: right}
}

// Search performs a branch-and-bound nearest-neighbor query restricted to
// items whose ComponentKey equals key. Ties are broken by insertion order.
// It returns (nil, +Inf) if no item with that key is indexed.
func (t *KdTree) Search(q configuration.Configuration, key any) (Item, float64) {
	if t.root == nil {
		return nil, math.Inf(1)
	}
	var best Item
	bestOrder := -1
	bestDist := math.Inf(1)
	consider := func(e entry) {
		if e.item.ComponentKey() != key {
			return
		}
		d := t.metric(q, e.item.Configuration())
		if d < bestDist-distanceEpsilon || (math.Abs(d-bestDist) <= distanceEpsilon && (best == nil || e.order < bestOrder)) {
			bestDist = d
			best = e.item
			bestOrder = e.order
		}
	}
	if t.bruteForce {
		t.walk(t.root, consider)
	} else {
		t.searchNode(t.root, q, consider, &bestDist)
	}
	return best, bestDist
}

func (t *KdTree) walk(n *node, consider func(entry)) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, e := range n.items {
			consider(e)
		}
		return
	}
	t.walk(n.left, consider)
	t.walk(n.right, consider)
}

// searchNode descends into the child containing q first, then prunes the
// sibling subtree when the axis-aligned distance from q to its bounding
// hyperplane is not smaller than the current best distance. bestDist is
// updated in place by consider as candidates are found.
func (t *KdTree) searchNode(n *node, q configuration.Configuration, consider func(entry), bestDist *float64) {
	if n.leaf {
		for _, e := range n.items {
			consider(e)
		}
		return
	}
	var first, second *node
	if q[n.axis] < n.split {
		first, second = n.left, n.right
	} else {
		first, second = n.right, n.left
	}
	t.searchNode(first, q, consider, bestDist)
	axisDist := math.Abs(q[n.axis] - n.split)
	if axisDist < *bestDist {
		t.searchNode(second, q, consider, bestDist)
	}
}
