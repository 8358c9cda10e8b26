package configuration

import "math"

// WeightedEuclidean returns a DistanceMetric computing the weighted Euclidean
// distance between two configurations of equal dimension. A nil or empty
// weights slice is treated as all-ones. This is the standard metric family
// the KdTree's pruning rule assumes is bounded below by per-axis Euclidean
// distance (see kdtree.WarnIfMetricUnbounded).
func WeightedEuclidean(weights []float64) DistanceMetric {
	return func(a, b Configuration) float64 {
		var sum float64
		for i := range a {
			d := a[i] - b[i]
			w := 1.0
			if i < len(weights) {
				w = weights[i]
			}
			sum += w * d * d
		}
		return math.Sqrt(sum)
	}
}
