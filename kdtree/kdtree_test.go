package kdtree

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/Hankfirst/hpp-core/configuration"
)

type testItem struct {
	config configuration.Configuration
	group  string
}

func (i *testItem) Configuration() configuration.Configuration { return i.config }
func (i *testItem) ComponentKey() any                          { return i.group }

func bruteForceNearest(items []*testItem, q configuration.Configuration, group string, metric configuration.DistanceMetric) (*testItem, float64) {
	var best *testItem
	bestDist := math.Inf(1)
	for _, it := range items {
		if it.group != group {
			continue
		}
		d := metric(q, it.config)
		if d < bestDist {
			bestDist = d
			best = it
		}
	}
	return best, bestDist
}

func TestSearchAgreesWithBruteForce(t *testing.T) {
	metric := configuration.WeightedEuclidean(nil)
	tree := New(2, 4, metric, nil)

	rng := rand.New(rand.NewSource(42))
	var items []*testItem
	for i := 0; i < 250; i++ {
		group := "a"
		if i%3 == 0 {
			group = "b"
		}
		it := &testItem{
			config: configuration.Configuration{rng.Float64() * 100, rng.Float64() * 100},
			group:  group,
		}
		items = append(items, it)
		tree.Add(it)
	}

	for i := 0; i < 25; i++ {
		q := configuration.Configuration{rng.Float64() * 100, rng.Float64() * 100}
		group := "a"
		if i%2 == 0 {
			group = "b"
		}
		got, gotDist := tree.Search(q, group)
		want, wantDist := bruteForceNearest(items, q, group, metric)
		test.That(t, got, test.ShouldEqual, want)
		test.That(t, gotDist, test.ShouldAlmostEqual, wantDist)
	}
}

func TestSearchRestrictedByComponent(t *testing.T) {
	metric := configuration.WeightedEuclidean(nil)
	tree := New(2, 30, metric, nil)

	near := &testItem{config: configuration.Configuration{1, 1}, group: "x"}
	far := &testItem{config: configuration.Configuration{1.1, 1.1}, group: "y"}
	tree.Add(near)
	tree.Add(far)

	got, _ := tree.Search(configuration.Configuration{1, 1}, "y")
	test.That(t, got, test.ShouldEqual, far)
}

func TestSearchEmptyTree(t *testing.T) {
	tree := New(2, 30, configuration.WeightedEuclidean(nil), nil)
	got, dist := tree.Search(configuration.Configuration{0, 0}, "x")
	test.That(t, got, test.ShouldBeNil)
	test.That(t, math.IsInf(dist, 1), test.ShouldBeTrue)
}

func TestClearRemovesAllItems(t *testing.T) {
	metric := configuration.WeightedEuclidean(nil)
	tree := New(2, 4, metric, nil)
	for i := 0; i < 10; i++ {
		tree.Add(&testItem{config: configuration.Configuration{float64(i), 0}, group: "a"})
	}
	test.That(t, tree.Len(), test.ShouldEqual, 10)
	tree.Clear()
	test.That(t, tree.Len(), test.ShouldEqual, 0)
	got, _ := tree.Search(configuration.Configuration{0, 0}, "a")
	test.That(t, got, test.ShouldBeNil)
}

func TestBruteForceModeMatchesDefault(t *testing.T) {
	metric := configuration.WeightedEuclidean(nil)
	tree := New(3, 4, metric, nil)
	rng := rand.New(rand.NewSource(7))
	var items []*testItem
	for i := 0; i < 120; i++ {
		it := &testItem{
			config: configuration.Configuration{rng.Float64(), rng.Float64(), rng.Float64()},
			group:  "a",
		}
		items = append(items, it)
		tree.Add(it)
	}
	q := configuration.Configuration{0.5, 0.5, 0.5}
	got, gotDist := tree.Search(q, "a")

	tree.SetBruteForce(true)
	gotBrute, gotBruteDist := tree.Search(q, "a")

	test.That(t, got, test.ShouldEqual, gotBrute)
	test.That(t, gotDist, test.ShouldAlmostEqual, gotBruteDist)
}

func TestTiesBrokenByInsertionOrder(t *testing.T) {
	metric := configuration.WeightedEuclidean(nil)
	tree := New(1, 30, metric, nil)
	first := &testItem{config: configuration.Configuration{1}, group: "a"}
	second := &testItem{config: configuration.Configuration{-1}, group: "a"}
	tree.Add(first)
	tree.Add(second)

	got, _ := tree.Search(configuration.Configuration{0}, "a")
	test.That(t, got, test.ShouldEqual, first)
}
