package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "06:00", cfg.Shift.Start)
	assert.Equal(t, "18:00", cfg.Shift.End)
	assert.Equal(t, time.Minute, cfg.Window.MinDuration)
	assert.Equal(t, time.Hour, cfg.Window.InitialDuration)
	assert.Equal(t, 2, cfg.Sampling.GapFactor)
	assert.Equal(t, 30*time.Second, cfg.Sampling.CursorTolerance)
	assert.Equal(t, 5*time.Minute, cfg.Sampling.UnionPad)
	assert.Equal(t, 1500, cfg.Render.MaxPoints)
	assert.Equal(t, 10, cfg.Load.ChunkSize)
	assert.Equal(t, 16*time.Millisecond, cfg.Load.FrameInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Load.CommitDebounce)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "06:00", cfg.Shift.Start)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
shift:
  start: "22:00"
  end: "06:00"

window:
  min_duration: 2m
  initial_duration: 30m

sampling:
  gap_factor: 3
  cursor_tolerance: 15s

render:
  max_points: 800

load:
  chunk_size: 5
  commit_debounce: 250ms
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "22:00", cfg.Shift.Start)
	assert.Equal(t, "06:00", cfg.Shift.End)
	assert.Equal(t, 2*time.Minute, cfg.Window.MinDuration)
	assert.Equal(t, 30*time.Minute, cfg.Window.InitialDuration)
	assert.Equal(t, 3, cfg.Sampling.GapFactor)
	assert.Equal(t, 15*time.Second, cfg.Sampling.CursorTolerance)
	assert.Equal(t, 800, cfg.Render.MaxPoints)
	assert.Equal(t, 5, cfg.Load.ChunkSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Load.CommitDebounce)

	// Missing sections keep their defaults
	assert.Equal(t, 5*time.Minute, cfg.Sampling.UnionPad)
	assert.Equal(t, 16*time.Millisecond, cfg.Load.FrameInterval)
}

func TestLoad_InvalidShift(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("shift:\n  start: \"late\"\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	_, err = Load(tmpfile.Name())
	assert.Error(t, err)
}

func TestShiftConfig_Offsets(t *testing.T) {
	s := ShiftConfig{Start: "06:00", End: "18:00"}
	assert.Equal(t, 6*time.Hour, s.StartOffset())
	assert.Equal(t, 18*time.Hour, s.EndOffset())
}

func TestShiftConfig_CrossMidnight(t *testing.T) {
	s := ShiftConfig{Start: "22:00", End: "06:00"}
	assert.Equal(t, 22*time.Hour, s.StartOffset())
	// End before start is pushed past 24h so the span stays positive
	assert.Equal(t, 30*time.Hour, s.EndOffset())
}

func TestShiftConfig_BoundsFor(t *testing.T) {
	s := ShiftConfig{Start: "06:00", End: "18:00"}
	date := time.Date(2024, 3, 11, 13, 45, 0, 0, time.UTC)

	start, end := s.BoundsFor(date)
	assert.Equal(t, time.Date(2024, 3, 11, 6, 0, 0, 0, time.UTC).UnixMilli(), start)
	assert.Equal(t, time.Date(2024, 3, 11, 18, 0, 0, 0, time.UTC).UnixMilli(), end)

	mid := s.MidpointFor(date)
	assert.Equal(t, time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC).UnixMilli(), mid)
}

func TestSaveAndLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())
	require.NoError(t, tmpfile.Close())

	cfg := Default()
	cfg.Render.MaxPoints = 999
	require.NoError(t, cfg.Save(tmpfile.Name()))

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, 999, loaded.Render.MaxPoints)
	assert.Equal(t, cfg.Shift, loaded.Shift)
}
