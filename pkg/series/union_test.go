package series

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUnionAxis_ExactMatchOnly(t *testing.T) {
	// Channel with samples at t=0 and t=5min, queried at an axis timestamp
	// it does not own: its value there is NaN, never interpolated
	channels := map[string][]DigitalPoint{
		"door": {
			{TS: 0, Value: 1},
			{TS: 300_000, Value: 0},
		},
		"pump": {
			{TS: 120_000, Value: 1},
		},
	}

	rows := BuildUnionAxis(channels, 0, 600_000, 0, 60_000, 120_000)

	// door contributes 0, break marker at 1min, 5min; pump contributes 2min
	var at2min *UnionRow
	for i := range rows {
		if rows[i].TS == 120_000 {
			at2min = &rows[i]
		}
	}
	require.NotNil(t, at2min)
	assert.True(t, math.IsNaN(at2min.Values["door"]))
	assert.Equal(t, 1.0, at2min.Values["pump"])
	assert.True(t, at2min.Present("pump"))
	assert.False(t, at2min.Present("door"))
}

func TestBuildUnionAxis_SortedDistinctTimestamps(t *testing.T) {
	channels := map[string][]DigitalPoint{
		"a": {{TS: 60_000, Value: 1}, {TS: 120_000, Value: 0}},
		"b": {{TS: 0, Value: 1}, {TS: 120_000, Value: 1}},
	}

	rows := BuildUnionAxis(channels, 0, 180_000, 0, 60_000, 120_000)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(0), rows[0].TS)
	assert.Equal(t, int64(60_000), rows[1].TS)
	assert.Equal(t, int64(120_000), rows[2].TS)

	// Shared timestamp resolves for both channels
	assert.Equal(t, 0.0, rows[2].Values["a"])
	assert.Equal(t, 1.0, rows[2].Values["b"])
}

func TestBuildUnionAxis_AppliesGapBreaks(t *testing.T) {
	channels := map[string][]DigitalPoint{
		"a": {
			{TS: 0, Value: 1},
			{TS: 300_000, Value: 0},
		},
	}

	rows := BuildUnionAxis(channels, 0, 600_000, 0, 60_000, 120_000)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(60_000), rows[1].TS)
	assert.True(t, math.IsNaN(rows[1].Values["a"]))
}

func TestBuildUnionAxis_WindowPad(t *testing.T) {
	channels := map[string][]DigitalPoint{
		"a": {
			{TS: 0, Value: 1},
			{TS: 60_000, Value: 1},
			{TS: 600_000, Value: 0},
		},
	}

	// Window [2min, 5min] with 1min pad keeps t=1min, drops t=0 and t=10min
	rows := BuildUnionAxis(channels, 120_000, 300_000, 60_000, 60_000, 600_000)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(60_000), rows[0].TS)
}

func TestBuildUnionAxis_Empty(t *testing.T) {
	rows := BuildUnionAxis(nil, 0, 600_000, 0, 60_000, 120_000)
	assert.Empty(t, rows)
}
