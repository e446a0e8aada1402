package telemetry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// jsonNumber formats an epoch-ms value as a json.Number literal.
func jsonNumber(ms int64) json.Number {
	return json.Number(strconv.FormatInt(ms, 10))
}

// SynthConfig controls the synthetic payload generator.
type SynthConfig struct {
	Start          time.Time     // First sample time
	Duration       time.Duration // Total span covered by the payload
	Interval       time.Duration // Sample cadence (1s or 1min)
	AnalogCount    int           // Number of analog channels
	DigitalCount   int           // Number of digital channels
	GapEvery       int           // Drop every Nth sample (0 = no gaps)
	NoiseAmplitude float64       // Peak noise added to analog values
}

// DefaultSynthConfig returns a generator configuration producing one hour of
// per-minute data with a small outage in each channel.
func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		Start:          time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC),
		Duration:       time.Hour,
		Interval:       time.Minute,
		AnalogCount:    2,
		DigitalCount:   2,
		GapEvery:       17,
		NoiseAmplitude: 0.5,
	}
}

// NewSyntheticPayload generates a deterministic payload for demos and tests.
// Analog channels carry a sine midline with a min/max band, digital channels
// a square wave. Every GapEvery-th sample is omitted to exercise the gap
// breaker downstream.
func NewSyntheticPayload(cfg SynthConfig) *Payload {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	n := int(cfg.Duration / cfg.Interval)
	if n <= 0 {
		n = 1
	}

	p := &Payload{}

	labels := make([]TimeLabel, 0, n)
	for i := 0; i < n; i++ {
		ts := cfg.Start.Add(time.Duration(i) * cfg.Interval)
		labels = append(labels, TimeLabel{
			Time:      ts.Format("15:04:05"),
			Timestamp: jsonNumber(ts.UnixMilli()),
		})
	}
	p.Timestamps = labels

	for c := 0; c < cfg.AnalogCount; c++ {
		ch := Channel{
			ID:         fmt.Sprintf("analog-%d", c+1),
			Name:       fmt.Sprintf("Analog %d", c+1),
			Kind:       KindAnalog,
			Unit:       "u",
			Color:      "#1f77b4",
			MinColor:   "#aec7e8",
			MaxColor:   "#ff7f0e",
			Resolution: 1,
			Offset:     0,
		}
		phase := float64(c) * 0.7
		for i := 0; i < n; i++ {
			if cfg.GapEvery > 0 && i%cfg.GapEvery == cfg.GapEvery-1 {
				ch.Points = append(ch.Points, RawSample{Time: labels[i].Time})
				continue
			}
			mid := 50 + 20*math.Sin(phase+float64(i)/8)
			noise := cfg.NoiseAmplitude * math.Sin(float64(i)*3.1)
			avg := mid + noise
			lo := avg - 2 - math.Abs(noise)
			hi := avg + 2 + math.Abs(noise)
			ch.Points = append(ch.Points, RawSample{
				Time: labels[i].Time,
				Avg:  &avg,
				Min:  &lo,
				Max:  &hi,
			})
		}
		if cfg.Interval < time.Minute {
			p.AnalogPerSecond = append(p.AnalogPerSecond, ch)
		} else {
			p.AnalogPerMinute = append(p.AnalogPerMinute, ch)
		}
	}

	for c := 0; c < cfg.DigitalCount; c++ {
		ch := Channel{
			ID:         fmt.Sprintf("digital-%d", c+1),
			Name:       fmt.Sprintf("Digital %d", c+1),
			Kind:       KindDigital,
			Color:      "#2ca02c",
			Resolution: 1,
			Offset:     0,
		}
		period := 6 + 4*c
		for i := 0; i < n; i++ {
			if cfg.GapEvery > 0 && i%cfg.GapEvery == cfg.GapEvery-1 {
				continue // Digital absence is an omitted sample, never a 0
			}
			v := 0.0
			if (i/period)%2 == 0 {
				v = 1.0
			}
			value := v
			ch.Points = append(ch.Points, RawSample{
				Time:  labels[i].Time,
				Value: &value,
			})
		}
		if cfg.Interval < time.Minute {
			p.DigitalPerSecond = append(p.DigitalPerSecond, ch)
		} else {
			p.DigitalPerMinute = append(p.DigitalPerMinute, ch)
		}
	}

	return p
}
