// Command shiftview runs the telemetry chart-data pipeline over a payload
// file (or a synthetic payload) and prints per-channel window statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jkeres/shiftview/pkg/config"
	"github.com/jkeres/shiftview/pkg/telemetry"
	"github.com/jkeres/shiftview/pkg/view"
)

func main() {
	var (
		configPath  = flag.String("config", "shiftview.yaml", "configuration file")
		payloadPath = flag.String("payload", "", "payload JSON file")
		synth       = flag.Bool("synth", false, "generate a synthetic payload instead of reading one")
		vehicle     = flag.String("vehicle", "demo", "vehicle identifier")
		date        = flag.String("date", time.Now().Format("2006-01-02"), "date (yyyy-mm-dd)")
		shift       = flag.String("shift", "day", "shift identifier")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *configPath, *payloadPath, *synth, *vehicle, *date, *shift); err != nil {
		logger.Error("failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath, payloadPath string, synth bool, vehicle, dateStr, shift string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}

	var payload *telemetry.Payload
	switch {
	case synth:
		sc := telemetry.DefaultSynthConfig()
		sc.Start = date.Add(cfg.Shift.StartOffset())
		payload = telemetry.NewSyntheticPayload(sc)
	case payloadPath != "":
		data, err := os.ReadFile(payloadPath)
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
		payload, err = telemetry.DecodePayload(data)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("either -payload or -synth is required")
	}

	proc := view.NewProcessor(cfg, logger)
	defer proc.Close()
	proc.SetSource(vehicle, date, shift)

	metrics, err := proc.ProcessData(context.Background(), payload, 0, 0)
	if err != nil {
		return err
	}

	w := proc.Model().Window()
	fmt.Printf("resolution: %s view\n", metrics.Resolution)
	fmt.Printf("window: %s .. %s\n",
		time.UnixMilli(w.StartMs).UTC().Format("15:04:05"),
		time.UnixMilli(w.EndMs).UTC().Format("15:04:05"))

	for _, ch := range metrics.Analog {
		if !ch.HasData {
			fmt.Printf("%-16s no data\n", ch.Name)
			continue
		}
		fmt.Printf("%-16s avg=%8.3f min=%8.3f max=%8.3f points=%d %s\n",
			ch.Name, ch.Stats.Avg, ch.Stats.Min, ch.Stats.Max, len(ch.Points), ch.Unit)
	}
	for _, ch := range metrics.Digital {
		fmt.Printf("%-16s points=%d\n", ch.Name, len(ch.Points))
	}
	return nil
}
