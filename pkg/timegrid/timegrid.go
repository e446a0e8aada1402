// Package timegrid infers the sampling cadence of a loaded payload and snaps
// timestamps onto the corresponding discrete bucket grid. All downstream
// processing shares the single bucket size detected here, which is what lets
// independent channels coincide exactly on a shared time axis.
package timegrid

// Resolution is the detected sampling cadence of a payload.
type Resolution int

const (
	// ResolutionMinute is the per-minute cadence (60s buckets).
	ResolutionMinute Resolution = iota
	// ResolutionSecond is the per-second cadence (1s buckets).
	ResolutionSecond
)

const (
	bucketSecondMs = int64(1000)
	bucketMinuteMs = int64(60_000)

	// maxDeltaScan bounds the prefix of deltas inspected during detection so
	// detection cost stays constant for very large series.
	maxDeltaScan = 2000
)

// String returns a human-readable cadence name.
func (r Resolution) String() string {
	if r == ResolutionSecond {
		return "second"
	}
	return "minute"
}

// BucketMs returns the bucket size in milliseconds for this cadence.
func (r Resolution) BucketMs() int64 {
	if r == ResolutionSecond {
		return bucketSecondMs
	}
	return bucketMinuteMs
}

// Detect classifies a payload's cadence from its timestamp deltas plus any
// structural evidence gathered by the caller (per-second channel groups
// present, or time labels with non-zero seconds fields). Run once per load;
// the result never changes mid-load.
func Detect(timestamps []int64, secondEvidence bool) Resolution {
	if secondEvidence {
		return ResolutionSecond
	}
	return DetectFromDeltas(timestamps)
}

// DetectFromDeltas scans a bounded prefix of ascending timestamps for the
// smallest strictly positive delta. A delta under one minute classifies the
// feed as per-second; anything else (including empty or degenerate input)
// falls back to per-minute.
func DetectFromDeltas(timestamps []int64) Resolution {
	smallest := int64(0)
	scanned := 0
	for i := 1; i < len(timestamps) && scanned < maxDeltaScan; i++ {
		d := timestamps[i] - timestamps[i-1]
		if d <= 0 {
			continue
		}
		scanned++
		if smallest == 0 || d < smallest {
			smallest = d
		}
	}
	if smallest > 0 && smallest < bucketMinuteMs {
		return ResolutionSecond
	}
	return ResolutionMinute
}

// Align floors a timestamp to the bucket grid. Every timestamp is aligned
// before it enters a normalized point or a window-boundary comparison, so
// samples that nominally occur in the same bucket collapse to one coordinate.
func Align(tsMs, bucketMs int64) int64 {
	if bucketMs <= 0 {
		return tsMs
	}
	return (tsMs / bucketMs) * bucketMs
}
