package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Shift    ShiftConfig    `yaml:"shift"`
	Window   WindowConfig   `yaml:"window"`
	Sampling SamplingConfig `yaml:"sampling"`
	Render   RenderConfig   `yaml:"render"`
	Load     LoadConfig     `yaml:"load"`
}

// ShiftConfig describes the nominal bounds of a work shift as clock offsets
// from midnight ("HH:MM"). End may exceed 24:00 for shifts that cross
// midnight (e.g. "22:00" to "30:00").
type ShiftConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// WindowConfig contains selection window parameters.
type WindowConfig struct {
	MinDuration     time.Duration `yaml:"min_duration"`     // Shortest selectable window
	InitialDuration time.Duration `yaml:"initial_duration"` // Window placed on a fresh data load
}

// SamplingConfig contains gap-detection and cursor-lookup parameters.
type SamplingConfig struct {
	GapFactor       int           `yaml:"gap_factor"`       // Gap threshold as a multiple of the bucket size
	CursorTolerance time.Duration `yaml:"cursor_tolerance"` // Max distance for nearest-neighbor cursor lookup
	UnionPad        time.Duration `yaml:"union_pad"`        // Window padding applied before the union axis filter
}

// RenderConfig contains render-cost bounds.
type RenderConfig struct {
	MaxPoints int `yaml:"max_points"` // Point budget for decimated overview series
}

// LoadConfig contains load pacing parameters.
type LoadConfig struct {
	ChunkSize      int           `yaml:"chunk_size"`      // Channels normalized per chunk
	FrameInterval  time.Duration `yaml:"frame_interval"`  // Interactive update coalescing interval
	CommitDebounce time.Duration `yaml:"commit_debounce"` // Quiet period before committing a window to the loader
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Shift: ShiftConfig{
			Start: "06:00",
			End:   "18:00",
		},
		Window: WindowConfig{
			MinDuration:     time.Minute,
			InitialDuration: time.Hour,
		},
		Sampling: SamplingConfig{
			GapFactor:       2,
			CursorTolerance: 30 * time.Second,
			UnionPad:        5 * time.Minute,
		},
		Render: RenderConfig{
			MaxPoints: 1500,
		},
		Load: LoadConfig{
			ChunkSize:      10,
			FrameInterval:  16 * time.Millisecond,
			CommitDebounce: 500 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	if _, err := parseClock(cfg.Shift.Start); err != nil {
		return nil, fmt.Errorf("invalid shift start: %w", err)
	}
	if _, err := parseClock(cfg.Shift.End); err != nil {
		return nil, fmt.Errorf("invalid shift end: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Shift.Start == "" {
		c.Shift.Start = def.Shift.Start
	}
	if c.Shift.End == "" {
		c.Shift.End = def.Shift.End
	}

	if c.Window.MinDuration == 0 {
		c.Window.MinDuration = def.Window.MinDuration
	}
	if c.Window.InitialDuration == 0 {
		c.Window.InitialDuration = def.Window.InitialDuration
	}

	if c.Sampling.GapFactor == 0 {
		c.Sampling.GapFactor = def.Sampling.GapFactor
	}
	if c.Sampling.CursorTolerance == 0 {
		c.Sampling.CursorTolerance = def.Sampling.CursorTolerance
	}
	if c.Sampling.UnionPad == 0 {
		c.Sampling.UnionPad = def.Sampling.UnionPad
	}

	if c.Render.MaxPoints == 0 {
		c.Render.MaxPoints = def.Render.MaxPoints
	}

	if c.Load.ChunkSize == 0 {
		c.Load.ChunkSize = def.Load.ChunkSize
	}
	if c.Load.FrameInterval == 0 {
		c.Load.FrameInterval = def.Load.FrameInterval
	}
	if c.Load.CommitDebounce == 0 {
		c.Load.CommitDebounce = def.Load.CommitDebounce
	}
}

// StartOffset returns the shift start as an offset from midnight.
func (s ShiftConfig) StartOffset() time.Duration {
	d, err := parseClock(s.Start)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// EndOffset returns the shift end as an offset from midnight. An end at or
// before the start is pushed past 24h so the span stays positive.
func (s ShiftConfig) EndOffset() time.Duration {
	d, err := parseClock(s.End)
	if err != nil {
		return 18 * time.Hour
	}
	if d <= s.StartOffset() {
		d += 24 * time.Hour
	}
	return d
}

// BoundsFor returns the shift's absolute bounds in epoch milliseconds for the
// given date (taken at its midnight in the date's location).
func (s ShiftConfig) BoundsFor(date time.Time) (startMs, endMs int64) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	startMs = midnight.Add(s.StartOffset()).UnixMilli()
	endMs = midnight.Add(s.EndOffset()).UnixMilli()
	return startMs, endMs
}

// MidpointFor returns the shift midpoint in epoch milliseconds for the given date.
func (s ShiftConfig) MidpointFor(date time.Time) int64 {
	start, end := s.BoundsFor(date)
	return start + (end-start)/2
}

// parseClock parses "HH:MM" into an offset from midnight. Hours may exceed 24
// for shifts that cross midnight.
func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
