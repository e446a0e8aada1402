package series

import (
	"math"

	"github.com/haoel/downsampling/core"
)

// DefaultMaxPoints is the point budget used when a caller asks for a bounded
// overview without specifying one.
const DefaultMaxPoints = 1500

// Decimate bounds a series to at most maxPoints by partitioning it into
// contiguous fixed-size buckets and emitting one representative point per
// bucket: the bucket's first timestamp, the mean of present averages, and the
// true min/max envelope. The decimated series' global min and max always
// equal the input's: a bucket's extremes are never discarded, only the
// midline is averaged.
//
// This is the fallback for explicit bounded-budget requests (long-range
// overviews); the default high-fidelity path keeps every sample and relies on
// the gap breaker alone.
func Decimate(points []Point, maxPoints int) []Point {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if len(points) <= maxPoints {
		return points
	}

	bucketSize := (len(points) + maxPoints - 1) / maxPoints
	out := make([]Point, 0, maxPoints)

	for start := 0; start < len(points); start += bucketSize {
		end := start + bucketSize
		if end > len(points) {
			end = len(points)
		}
		bucket := points[start:end]

		sum := 0.0
		present := 0
		lo := math.Inf(1)
		hi := math.Inf(-1)
		for _, p := range bucket {
			if p.Missing() {
				continue
			}
			sum += p.Avg
			present++
			if p.Min < lo {
				lo = p.Min
			}
			if p.Max > hi {
				hi = p.Max
			}
		}

		if present == 0 {
			// An all-missing bucket stays an explicit break in the overview
			out = append(out, MissingPoint(bucket[0].TS))
			continue
		}
		out = append(out, Point{
			TS:  bucket[0].TS,
			Avg: sum / float64(present),
			Min: lo,
			Max: hi,
		})
	}

	return out
}

// DecimateLTTB bounds a series using largest-triangle-three-buckets, which
// preserves the visual shape of the midline better than plain bucketing but
// carries no min/max envelope. Only for panels that draw a single line; the
// returned points have Min and Max collapsed onto Avg. Missing points are
// excluded before downsampling, so gap breaks must be re-inserted by the
// caller if needed.
func DecimateLTTB(points []Point, maxPoints int) []Point {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	present := make([]core.Point, 0, len(points))
	for _, p := range points {
		if p.Missing() {
			continue
		}
		present = append(present, core.Point{X: float64(p.TS), Y: p.Avg})
	}
	if len(present) <= maxPoints {
		out := make([]Point, len(present))
		for i, cp := range present {
			out[i] = Point{TS: int64(cp.X), Avg: cp.Y, Min: cp.Y, Max: cp.Y}
		}
		return out
	}

	sampled := core.LTTB(present, maxPoints)
	out := make([]Point, len(sampled))
	for i, cp := range sampled {
		out[i] = Point{TS: int64(cp.X), Avg: cp.Y, Min: cp.Y, Max: cp.Y}
	}
	return out
}
