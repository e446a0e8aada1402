package series

import (
	"math"
	"sort"

	"github.com/jkeres/shiftview/pkg/telemetry"
	"github.com/jkeres/shiftview/pkg/timegrid"
)

// Normalize converts a channel's raw samples into an ascending series of
// normalized points. The linear transform v' = v*resolution + offset is
// applied to avg, min and max; min/max fall back to avg when absent. A sample
// without a usable avg (or whose transform result is non-finite) becomes an
// explicit missing point rather than a fabricated value.
//
// Timestamps are resolved from the shared time axis when provided (times[i]
// for sample i), otherwise from the sample's own timestamp. Samples with no
// resolvable timestamp are skipped. Output timestamps are bucket-aligned;
// duplicates after alignment collapse to the later sample (last-sample-wins).
func Normalize(ch telemetry.Channel, times []int64, bucketMs int64) []Point {
	out := make([]Point, 0, len(ch.Points))

	for i, s := range ch.Points {
		ts, ok := sampleTS(s, times, i)
		if !ok {
			continue
		}
		ts = timegrid.Align(ts, bucketMs)

		// Analog avg falls back to a bare value field (some sources emit
		// single-value analog samples).
		avgRaw := s.Avg
		if avgRaw == nil {
			avgRaw = s.Value
		}
		if avgRaw == nil {
			out = append(out, MissingPoint(ts))
			continue
		}

		avg := *avgRaw*ch.Resolution + ch.Offset
		lo := fallbackTransform(s.Min, *avgRaw, ch.Resolution, ch.Offset)
		hi := fallbackTransform(s.Max, *avgRaw, ch.Resolution, ch.Offset)

		// Any non-finite result forces the whole point missing: a point is
		// fully present or fully absent, never partial.
		if !isFinite(avg) || !isFinite(lo) || !isFinite(hi) {
			out = append(out, MissingPoint(ts))
			continue
		}

		out = append(out, Point{TS: ts, Avg: avg, Min: lo, Max: hi})
	}

	return collapseSorted(out)
}

// NormalizeDigital converts a digital channel's raw samples. Non-finite or
// absent values are dropped entirely (not emitted as 0) so absence is never
// rendered as OFF. Values other than 0/1 are tolerated and passed through.
func NormalizeDigital(ch telemetry.Channel, times []int64, bucketMs int64) []DigitalPoint {
	out := make([]DigitalPoint, 0, len(ch.Points))

	for i, s := range ch.Points {
		ts, ok := sampleTS(s, times, i)
		if !ok {
			continue
		}
		if s.Value == nil || !isFinite(*s.Value) {
			continue
		}
		out = append(out, DigitalPoint{
			TS:    timegrid.Align(ts, bucketMs),
			Value: *s.Value,
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].TS < out[b].TS })

	// Collapse aligned duplicates, keeping the later write
	w := 0
	for i := range out {
		if w > 0 && out[w-1].TS == out[i].TS {
			out[w-1] = out[i]
			continue
		}
		out[w] = out[i]
		w++
	}
	return out[:w]
}

// sampleTS resolves a sample's timestamp, preferring the shared time axis.
// Negative axis entries mark labels the caller could not resolve.
func sampleTS(s telemetry.RawSample, times []int64, i int) (int64, bool) {
	if times != nil && i < len(times) && times[i] >= 0 {
		return times[i], true
	}
	if s.Timestamp != nil {
		return *s.Timestamp, true
	}
	return 0, false
}

// fallbackTransform applies the linear transform to v, substituting avg when
// v is absent.
func fallbackTransform(v *float64, avg, resolution, offset float64) float64 {
	raw := avg
	if v != nil {
		raw = *v
	}
	return raw*resolution + offset
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// collapseSorted sorts points ascending and collapses duplicate timestamps,
// keeping the later write of each run.
func collapseSorted(points []Point) []Point {
	sort.SliceStable(points, func(a, b int) bool { return points[a].TS < points[b].TS })
	w := 0
	for i := range points {
		if w > 0 && points[w-1].TS == points[i].TS {
			points[w-1] = points[i]
			continue
		}
		points[w] = points[i]
		w++
	}
	return points[:w]
}
