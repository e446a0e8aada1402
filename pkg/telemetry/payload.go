package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedPayload is returned when a payload fails shape validation.
// Callers must render an empty state; the core never synthesizes data.
var ErrMalformedPayload = errors.New("malformed telemetry payload")

// Kind distinguishes analog channels (avg/min/max triplets) from digital
// channels (single binary-ish value).
type Kind string

const (
	KindAnalog  Kind = "analog"
	KindDigital Kind = "digital"
)

// RawSample is one ingested record for a channel at one time label. Analog
// samples carry optional avg/min/max; digital samples carry a single value.
// Any field may be absent, which is distinct from zero.
type RawSample struct {
	Time      string   `json:"time,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
	Avg       *float64 `json:"avg,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Value     *float64 `json:"value,omitempty"`
}

// EpochMs resolves the sample's own timestamp, preferring an explicit epoch
// value over the clock label. Used for channels whose points do not line up
// with the shared time axis.
func (s RawSample) EpochMs(base time.Time) (int64, bool) {
	if s.Timestamp != nil {
		return *s.Timestamp, true
	}
	offset, ok := clockOffsetMs(s.Time)
	if !ok {
		return 0, false
	}
	midnight := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
	return midnight.UnixMilli() + offset, true
}

// Channel describes one telemetry channel. Channels are immutable after a
// payload is decoded. Resolution and Offset define the linear transform
// v' = v*Resolution + Offset applied during normalization.
type Channel struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Kind       Kind        `json:"-"`
	Unit       string      `json:"unit,omitempty"`
	Color      string      `json:"color"`
	MinColor   string      `json:"min_color,omitempty"`
	MaxColor   string      `json:"max_color,omitempty"`
	Resolution float64     `json:"resolution"`
	Offset     float64     `json:"offset"`
	YAxisRange *[2]float64 `json:"yAxisRange,omitempty"`
	Display    *bool       `json:"display,omitempty"`
	Points     []RawSample `json:"points"`
}

// Visible reports whether the channel should be shown. Channels default to
// visible when the payload carries no display flag.
func (c Channel) Visible() bool {
	return c.Display == nil || *c.Display
}

// TimeLabel is one entry of the payload's shared time axis. Timestamp may
// arrive as a JSON number or string; Time is a clock label such as "06:15"
// or "06:15:30".
type TimeLabel struct {
	Time      string      `json:"time"`
	Timestamp json.Number `json:"timestamp,omitempty"`
}

// EpochMs resolves the label to epoch milliseconds. An explicit timestamp
// wins; otherwise the clock label is interpreted as an offset from the base
// date's midnight.
func (t TimeLabel) EpochMs(base time.Time) (int64, bool) {
	if t.Timestamp != "" {
		if ms, err := t.Timestamp.Int64(); err == nil {
			return ms, true
		}
		if f, err := t.Timestamp.Float64(); err == nil {
			return int64(f), true
		}
	}
	offset, ok := clockOffsetMs(t.Time)
	if !ok {
		return 0, false
	}
	midnight := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
	return midnight.UnixMilli() + offset, true
}

// HasSeconds reports whether the clock label carries a non-zero seconds
// field. Used as second-granularity evidence during resolution detection
// even when the payload structure claims per-minute data.
func (t TimeLabel) HasSeconds() bool {
	parts := strings.Split(t.Time, ":")
	if len(parts) < 3 {
		return false
	}
	s, err := strconv.Atoi(parts[2])
	return err == nil && s != 0
}

// clockOffsetMs parses "HH:MM" or "HH:MM:SS" into milliseconds from midnight.
func clockOffsetMs(label string) (int64, bool) {
	parts := strings.Split(label, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	var s int
	if len(parts) == 3 {
		s, err = strconv.Atoi(parts[2])
		if err != nil || s < 0 || s > 59 {
			return 0, false
		}
	}
	return int64(h)*3600_000 + int64(m)*60_000 + int64(s)*1000, true
}

// Payload is the parsed response handed over by the data-fetching
// collaborator. Channel groups are split by kind and nominal cadence.
type Payload struct {
	Timestamps      []TimeLabel `json:"timestamps"`
	AnalogPerSecond []Channel   `json:"analogPerSecond,omitempty"`
	AnalogPerMinute []Channel   `json:"analogPerMinute,omitempty"`
	DigitalPerSecond []Channel  `json:"digitalPerSecond,omitempty"`
	DigitalPerMinute []Channel  `json:"digitalPerMinute,omitempty"`
}

// AnalogChannels returns all analog channels regardless of cadence.
func (p *Payload) AnalogChannels() []Channel {
	out := make([]Channel, 0, len(p.AnalogPerSecond)+len(p.AnalogPerMinute))
	out = append(out, p.AnalogPerSecond...)
	out = append(out, p.AnalogPerMinute...)
	return out
}

// DigitalChannels returns all digital channels regardless of cadence.
func (p *Payload) DigitalChannels() []Channel {
	out := make([]Channel, 0, len(p.DigitalPerSecond)+len(p.DigitalPerMinute))
	out = append(out, p.DigitalPerSecond...)
	out = append(out, p.DigitalPerMinute...)
	return out
}

// HasPerSecond reports whether any per-second channel group is present.
func (p *Payload) HasPerSecond() bool {
	return len(p.AnalogPerSecond) > 0 || len(p.DigitalPerSecond) > 0
}

// Empty reports whether the payload carries no channels at all.
func (p *Payload) Empty() bool {
	return len(p.AnalogPerSecond) == 0 && len(p.AnalogPerMinute) == 0 &&
		len(p.DigitalPerSecond) == 0 && len(p.DigitalPerMinute) == 0
}

// DecodePayload parses and validates a raw payload. Shape violations are
// reported as ErrMalformedPayload; the caller is expected to show a blank
// state and never substitute placeholder data.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if p.Empty() && len(p.Timestamps) == 0 {
		return nil, fmt.Errorf("%w: no channels and no time axis", ErrMalformedPayload)
	}

	tagChannels(p.AnalogPerSecond, KindAnalog, "a1")
	tagChannels(p.AnalogPerMinute, KindAnalog, "a60")
	tagChannels(p.DigitalPerSecond, KindDigital, "d1")
	tagChannels(p.DigitalPerMinute, KindDigital, "d60")

	return &p, nil
}

// tagChannels stamps the kind on each channel of a group, fills fallback IDs
// and treats a missing resolution as the identity transform.
func tagChannels(chs []Channel, kind Kind, idPrefix string) {
	for i := range chs {
		chs[i].Kind = kind
		if chs[i].ID == "" {
			if chs[i].Name != "" {
				chs[i].ID = chs[i].Name
			} else {
				chs[i].ID = fmt.Sprintf("%s-%d", idPrefix, i)
			}
		}
		if chs[i].Resolution == 0 {
			chs[i].Resolution = 1
		}
	}
}
