// Package series turns raw channel samples into render-ready point series:
// linear normalization, gap break insertion, bounded-size decimation, the
// cross-channel union axis, and window/cursor statistics. Missing values are
// carried as NaN so absence is never confused with zero.
package series

import "math"

// Point is one normalized analog sample. Avg/Min/Max are NaN when the sample
// is missing; a point is either fully present or fully absent (Avg NaN
// implies Min and Max NaN), never partially present.
type Point struct {
	TS  int64 // Bucket-aligned epoch milliseconds
	Avg float64
	Min float64
	Max float64
}

// Missing reports whether the point is an explicit absence marker.
func (p Point) Missing() bool {
	return math.IsNaN(p.Avg)
}

// MissingPoint returns an explicit absence marker at the given timestamp.
func MissingPoint(ts int64) Point {
	nan := math.NaN()
	return Point{TS: ts, Avg: nan, Min: nan, Max: nan}
}

// DigitalPoint is one normalized digital sample. Value is NaN only for
// inserted gap break markers; absent raw samples are omitted entirely so
// absence is never rendered as OFF.
type DigitalPoint struct {
	TS    int64
	Value float64
}

// Missing reports whether the point is an inserted gap break marker.
func (p DigitalPoint) Missing() bool {
	return math.IsNaN(p.Value)
}

// MissingDigitalPoint returns a gap break marker at the given timestamp.
func MissingDigitalPoint(ts int64) DigitalPoint {
	return DigitalPoint{TS: ts, Value: math.NaN()}
}
