package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowStats_Basic(t *testing.T) {
	points := []Point{
		{TS: 0, Avg: 10, Min: 8, Max: 12},
		{TS: 60_000, Avg: 20, Min: 15, Max: 25},
		{TS: 120_000, Avg: 30, Min: 28, Max: 35},
	}

	st, ok := WindowStats(points, 0, 60_000)
	require.True(t, ok)
	assert.InDelta(t, 15.0, st.Avg, 1e-9)
	assert.Equal(t, 8.0, st.Min)
	assert.Equal(t, 25.0, st.Max)
}

func TestWindowStats_SkipsMissing(t *testing.T) {
	points := []Point{
		{TS: 0, Avg: 10, Min: 8, Max: 12},
		MissingPoint(60_000),
		{TS: 120_000, Avg: 30, Min: 28, Max: 35},
	}

	st, ok := WindowStats(points, 0, 120_000)
	require.True(t, ok)
	assert.InDelta(t, 20.0, st.Avg, 1e-9)
	assert.Equal(t, 8.0, st.Min)
	assert.Equal(t, 35.0, st.Max)
}

func TestWindowStats_EmptyIntersectionFallsBackToFullSeries(t *testing.T) {
	points := []Point{
		{TS: 0, Avg: 10, Min: 8, Max: 12},
		{TS: 60_000, Avg: 20, Min: 15, Max: 25},
	}

	// Window entirely past the data still yields full-series statistics
	st, ok := WindowStats(points, 600_000, 900_000)
	require.True(t, ok)
	assert.InDelta(t, 15.0, st.Avg, 1e-9)
	assert.Equal(t, 8.0, st.Min)
	assert.Equal(t, 25.0, st.Max)
}

func TestWindowStats_NoPresentPoints(t *testing.T) {
	_, ok := WindowStats(nil, 0, 60_000)
	assert.False(t, ok)

	onlyMissing := []Point{MissingPoint(0), MissingPoint(60_000)}
	_, ok = WindowStats(onlyMissing, 0, 60_000)
	assert.False(t, ok)
}

func TestValueAt_ExactAlignedMatch(t *testing.T) {
	points := []Point{
		{TS: 0, Avg: 1, Min: 0, Max: 2},
		{TS: 60_000, Avg: 3, Min: 2, Max: 4},
	}

	// Cursor inside the second bucket aligns onto it
	p, ok := ValueAt(points, 60_700, 60_000, 30_000)
	require.True(t, ok)
	assert.Equal(t, int64(60_000), p.TS)
	assert.Equal(t, 3.0, p.Avg)
}

func TestValueAt_NearestWithinTolerance(t *testing.T) {
	points := []Point{
		{TS: 0, Avg: 1, Min: 1, Max: 1},
		{TS: 90_000, Avg: 2, Min: 2, Max: 2},
	}

	// Aligned cursor at 60000 has no exact match; 90000 is 30s away
	p, ok := ValueAt(points, 60_000, 60_000, 30_000)
	require.True(t, ok)
	assert.Equal(t, int64(90_000), p.TS)
}

func TestValueAt_BeyondToleranceIsMissing(t *testing.T) {
	points := []Point{
		{TS: 0, Avg: 1, Min: 1, Max: 1},
		{TS: 600_000, Avg: 2, Min: 2, Max: 2},
	}

	// Cursor at 5min is 4 minutes from the nearest point: no data, never a
	// repeated or extrapolated value
	_, ok := ValueAt(points, 300_000, 60_000, 30_000)
	assert.False(t, ok)
}

func TestValueAt_GapBreaksNeverSatisfyLookup(t *testing.T) {
	points := []Point{
		{TS: 0, Avg: 1, Min: 1, Max: 1},
		MissingPoint(60_000),
		{TS: 600_000, Avg: 2, Min: 2, Max: 2},
	}

	_, ok := ValueAt(points, 60_000, 60_000, 30_000)
	assert.False(t, ok)
}

func TestDigitalValueAt(t *testing.T) {
	points := []DigitalPoint{
		{TS: 0, Value: 1},
		{TS: 60_000, Value: 0},
	}

	v, ok := DigitalValueAt(points, 60_200, 60_000, 30_000)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = DigitalValueAt(points, 600_000, 60_000, 30_000)
	assert.False(t, ok)
}

func TestFilterWindow(t *testing.T) {
	points := []Point{
		present(0, 1),
		present(60_000, 2),
		present(120_000, 3),
		present(180_000, 4),
	}

	out := FilterWindow(points, 60_000, 120_000, 0)
	require.Len(t, out, 2)
	assert.Equal(t, int64(60_000), out[0].TS)
	assert.Equal(t, int64(120_000), out[1].TS)

	// Pad widens the kept range on both sides
	out = FilterWindow(points, 60_000, 120_000, 60_000)
	assert.Len(t, out, 4)
}

func TestFilterDigitalWindow(t *testing.T) {
	points := []DigitalPoint{
		{TS: 0, Value: 1},
		{TS: 60_000, Value: 0},
		{TS: 120_000, Value: 1},
	}

	out := FilterDigitalWindow(points, 50_000, 70_000, 0)
	require.Len(t, out, 1)
	assert.Equal(t, int64(60_000), out[0].TS)
}
