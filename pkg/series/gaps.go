package series

// InsertBreaks scans consecutive present points for time gaps of maxGapMs or
// more and inserts exactly one missing point at prev.TS + expectedIntervalMs.
// A single inserted absence is enough to tell a line-drawing consumer not to
// connect the two points; marking every missing intermediate bucket would be
// indistinguishable from real sparse data and is unnecessary for the break
// semantics. Input must be sorted ascending; output stays sorted because the
// inserted timestamp always falls strictly between its neighbors.
func InsertBreaks(points []Point, expectedIntervalMs, maxGapMs int64) []Point {
	if len(points) < 2 {
		return points
	}

	out := make([]Point, 0, len(points)+4)
	for i, p := range points {
		out = append(out, p)
		if i+1 >= len(points) {
			break
		}
		next := points[i+1]
		// Only break between two present points: runs of explicit missing
		// points already read as disconnected.
		if !p.Missing() && !next.Missing() && next.TS-p.TS >= maxGapMs {
			out = append(out, MissingPoint(p.TS+expectedIntervalMs))
		}
	}
	return out
}

// InsertDigitalBreaks is the digital-channel counterpart of InsertBreaks.
func InsertDigitalBreaks(points []DigitalPoint, expectedIntervalMs, maxGapMs int64) []DigitalPoint {
	if len(points) < 2 {
		return points
	}

	out := make([]DigitalPoint, 0, len(points)+4)
	for i, p := range points {
		out = append(out, p)
		if i+1 >= len(points) {
			break
		}
		next := points[i+1]
		if !p.Missing() && !next.Missing() && next.TS-p.TS >= maxGapMs {
			out = append(out, MissingDigitalPoint(p.TS+expectedIntervalMs))
		}
	}
	return out
}
