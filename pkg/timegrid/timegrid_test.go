package timegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFromDeltas_SecondView(t *testing.T) {
	// Deltas of 1000ms classify as second view
	timestamps := make([]int64, 100)
	for i := range timestamps {
		timestamps[i] = int64(i) * 1000
	}

	res := DetectFromDeltas(timestamps)
	assert.Equal(t, ResolutionSecond, res)
	assert.Equal(t, int64(1000), res.BucketMs())
}

func TestDetectFromDeltas_MinuteView(t *testing.T) {
	timestamps := make([]int64, 100)
	for i := range timestamps {
		timestamps[i] = int64(i) * 60_000
	}

	res := DetectFromDeltas(timestamps)
	assert.Equal(t, ResolutionMinute, res)
	assert.Equal(t, int64(60_000), res.BucketMs())
}

func TestDetectFromDeltas_SmallestDeltaWins(t *testing.T) {
	// Mostly minute-spaced with one sub-minute delta buried inside
	timestamps := []int64{0, 60_000, 120_000, 125_000, 180_000}
	assert.Equal(t, ResolutionSecond, DetectFromDeltas(timestamps))
}

func TestDetectFromDeltas_IgnoresNonPositiveDeltas(t *testing.T) {
	// Duplicates and regressions must not count as small deltas
	timestamps := []int64{0, 0, 60_000, 60_000, 120_000, 100_000, 180_000}
	assert.Equal(t, ResolutionMinute, DetectFromDeltas(timestamps))
}

func TestDetectFromDeltas_Empty(t *testing.T) {
	assert.Equal(t, ResolutionMinute, DetectFromDeltas(nil))
	assert.Equal(t, ResolutionMinute, DetectFromDeltas([]int64{42}))
}

func TestDetect_StructuralEvidence(t *testing.T) {
	// Minute-spaced deltas, but per-second evidence forces second view
	timestamps := []int64{0, 60_000, 120_000}
	assert.Equal(t, ResolutionSecond, Detect(timestamps, true))
	assert.Equal(t, ResolutionMinute, Detect(timestamps, false))
}

func TestAlign(t *testing.T) {
	assert.Equal(t, int64(60_000), Align(60_000, 60_000))
	assert.Equal(t, int64(60_000), Align(60_001, 60_000))
	assert.Equal(t, int64(60_000), Align(119_999, 60_000))
	assert.Equal(t, int64(120_000), Align(120_000, 60_000))
	assert.Equal(t, int64(1000), Align(1999, 1000))
	assert.Equal(t, int64(0), Align(999, 1000))
}

func TestAlign_OutputsAreGridMultiples(t *testing.T) {
	// Aligned output is non-decreasing and an exact bucket multiple for any
	// ascending input
	input := []int64{0, 1500, 59_999, 60_000, 61_001, 125_000, 3_600_123}
	bucket := int64(60_000)

	prev := int64(-1)
	for _, ts := range input {
		a := Align(ts, bucket)
		assert.Zero(t, a%bucket)
		assert.LessOrEqual(t, a, ts)
		assert.GreaterOrEqual(t, a, prev)
		prev = a
	}
}

func TestAlign_DegenerateBucket(t *testing.T) {
	assert.Equal(t, int64(1234), Align(1234, 0))
}
