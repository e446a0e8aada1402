package series

import (
	"math"
	"sort"
)

// UnionRow is one row of the cross-channel union axis: a timestamp and each
// channel's value at exactly that instant. Channels with no exact sample at
// the timestamp carry NaN: no nearest-neighbor substitution happens on this
// path, so a channel with no data at an instant is visibly blank rather than
// incorrectly flat-lined.
type UnionRow struct {
	TS     int64
	Values map[string]float64
}

// Present reports whether the named channel has a real value in this row.
func (r UnionRow) Present(channelID string) bool {
	v, ok := r.Values[channelID]
	return ok && !math.IsNaN(v)
}

// BuildUnionAxis merges several digital channels onto one shared time axis
// for panels that render many indicators against a single scale. Each
// channel is first run through the gap breaker, then filtered to the padded
// window [startMs-padMs, endMs+padMs] (the pad avoids visual clipping at the
// window edges). The result is the sorted set of distinct timestamps across
// all filtered channels, with exact-match-only value lookup per channel.
func BuildUnionAxis(channels map[string][]DigitalPoint, startMs, endMs, padMs, expectedIntervalMs, maxGapMs int64) []UnionRow {
	lo := startMs - padMs
	hi := endMs + padMs

	filtered := make(map[string][]DigitalPoint, len(channels))
	stamps := make(map[int64]struct{})
	for id, points := range channels {
		broken := InsertDigitalBreaks(points, expectedIntervalMs, maxGapMs)
		keep := broken[:0:0]
		for _, p := range broken {
			if p.TS < lo || p.TS > hi {
				continue
			}
			keep = append(keep, p)
			stamps[p.TS] = struct{}{}
		}
		filtered[id] = keep
	}

	axis := make([]int64, 0, len(stamps))
	for ts := range stamps {
		axis = append(axis, ts)
	}
	sort.Slice(axis, func(a, b int) bool { return axis[a] < axis[b] })

	// Per-channel read positions; points and axis are both ascending, so one
	// forward pass per channel covers every row.
	pos := make(map[string]int, len(filtered))

	rows := make([]UnionRow, 0, len(axis))
	for _, ts := range axis {
		row := UnionRow{TS: ts, Values: make(map[string]float64, len(filtered))}
		for id, points := range filtered {
			i := pos[id]
			for i < len(points) && points[i].TS < ts {
				i++
			}
			pos[id] = i
			if i < len(points) && points[i].TS == ts {
				row.Values[id] = points[i].Value
			} else {
				row.Values[id] = math.NaN()
			}
		}
		rows = append(rows, row)
	}
	return rows
}
