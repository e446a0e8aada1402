package series

import (
	"sort"

	"github.com/jkeres/shiftview/pkg/timegrid"
)

// Stats holds aggregate values over a sub-window of a channel.
type Stats struct {
	Avg float64
	Min float64
	Max float64
}

// WindowStats computes avg/min/max over the present points inside
// [startMs, endMs]. When the intersection is empty it falls back to
// statistics over the full series, so headline read-outs stay meaningful
// while the user scrolls through an outage. Returns ok=false only when the
// series has no present points at all.
func WindowStats(points []Point, startMs, endMs int64) (Stats, bool) {
	if s, ok := statsOver(points, startMs, endMs); ok {
		return s, true
	}
	// Empty intersection: fall back to the whole series
	if len(points) == 0 {
		return Stats{}, false
	}
	return statsOver(points, points[0].TS, points[len(points)-1].TS)
}

// statsOver aggregates present points within [startMs, endMs].
func statsOver(points []Point, startMs, endMs int64) (Stats, bool) {
	sum := 0.0
	n := 0
	var s Stats
	for _, p := range points {
		if p.TS < startMs || p.TS > endMs || p.Missing() {
			continue
		}
		if n == 0 {
			s.Min = p.Min
			s.Max = p.Max
		} else {
			if p.Min < s.Min {
				s.Min = p.Min
			}
			if p.Max > s.Max {
				s.Max = p.Max
			}
		}
		sum += p.Avg
		n++
	}
	if n == 0 {
		return Stats{}, false
	}
	s.Avg = sum / float64(n)
	return s, true
}

// ValueAt resolves a channel's value at the cursor. The cursor is aligned to
// the bucket grid, then matched exactly; failing that, the nearest present
// point by absolute distance is accepted if it lies within toleranceMs.
// Beyond the tolerance the result is ok=false and callers must render "no
// data", never an extrapolated or repeated value.
func ValueAt(points []Point, cursorMs, bucketMs, toleranceMs int64) (Point, bool) {
	aligned := timegrid.Align(cursorMs, bucketMs)

	idx := sort.Search(len(points), func(i int) bool { return points[i].TS >= aligned })
	if idx < len(points) && points[idx].TS == aligned && !points[idx].Missing() {
		return points[idx], true
	}

	// Nearest present neighbor within tolerance. Missing points (gap breaks)
	// never satisfy a lookup, so scan outward past them.
	best := -1
	bestDist := toleranceMs + 1
	for i := idx - 1; i >= 0; i-- {
		d := aligned - points[i].TS
		if d >= bestDist {
			break
		}
		if !points[i].Missing() {
			best = i
			bestDist = d
			break
		}
	}
	for i := idx; i < len(points); i++ {
		d := points[i].TS - aligned
		if d >= bestDist {
			break
		}
		if !points[i].Missing() {
			best = i
			bestDist = d
			break
		}
	}

	if best < 0 || bestDist > toleranceMs {
		return Point{}, false
	}
	return points[best], true
}

// DigitalValueAt is the digital counterpart of ValueAt.
func DigitalValueAt(points []DigitalPoint, cursorMs, bucketMs, toleranceMs int64) (float64, bool) {
	aligned := timegrid.Align(cursorMs, bucketMs)

	idx := sort.Search(len(points), func(i int) bool { return points[i].TS >= aligned })
	if idx < len(points) && points[idx].TS == aligned && !points[idx].Missing() {
		return points[idx].Value, true
	}

	best := -1
	bestDist := toleranceMs + 1
	for i := idx - 1; i >= 0; i-- {
		d := aligned - points[i].TS
		if d >= bestDist {
			break
		}
		if !points[i].Missing() {
			best = i
			bestDist = d
			break
		}
	}
	for i := idx; i < len(points); i++ {
		d := points[i].TS - aligned
		if d >= bestDist {
			break
		}
		if !points[i].Missing() {
			best = i
			bestDist = d
			break
		}
	}

	if best < 0 || bestDist > toleranceMs {
		return 0, false
	}
	return points[best].Value, true
}

// FilterWindow returns the sub-slice of points inside the padded window
// [startMs-padMs, endMs+padMs]. Points are assumed sorted ascending.
func FilterWindow(points []Point, startMs, endMs, padMs int64) []Point {
	lo := startMs - padMs
	hi := endMs + padMs
	from := sort.Search(len(points), func(i int) bool { return points[i].TS >= lo })
	to := sort.Search(len(points), func(i int) bool { return points[i].TS > hi })
	return points[from:to]
}

// FilterDigitalWindow is the digital counterpart of FilterWindow.
func FilterDigitalWindow(points []DigitalPoint, startMs, endMs, padMs int64) []DigitalPoint {
	lo := startMs - padMs
	hi := endMs + padMs
	from := sort.Search(len(points), func(i int) bool { return points[i].TS >= lo })
	to := sort.Search(len(points), func(i int) bool { return points[i].TS > hi })
	return points[from:to]
}
