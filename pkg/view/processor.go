package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jkeres/shiftview/pkg/config"
	"github.com/jkeres/shiftview/pkg/selection"
	"github.com/jkeres/shiftview/pkg/series"
	"github.com/jkeres/shiftview/pkg/telemetry"
	"github.com/jkeres/shiftview/pkg/timegrid"
)

// ErrStale reports that a newer load superseded the one producing a result.
// This is the system's only cancellation mechanism: in-flight work is never
// hard-aborted, its result is silently discarded by the caller.
var ErrStale = errors.New("superseded by a newer load")

// ErrNoData reports that no normalized series is cached for the requested
// source and bucket size.
var ErrNoData = errors.New("no cached series for the requested window")

// SourceKey identifies the data source currently loaded: one vehicle, one
// date, one shift.
type SourceKey struct {
	Vehicle string
	Date    time.Time
	Shift   string
}

func (s SourceKey) cacheKey(bucketMs int64) CacheKey {
	return CacheKey{
		Vehicle:  s.Vehicle,
		Date:     s.Date.Format("2006-01-02"),
		Shift:    s.Shift,
		BucketMs: bucketMs,
	}
}

// ChannelMetrics is one analog channel prepared for rendering: window-filtered
// gap-broken points plus headline statistics.
type ChannelMetrics struct {
	ID         string
	Name       string
	Unit       string
	Color      string
	MinColor   string
	MaxColor   string
	YAxisRange *[2]float64
	Visible    bool
	Points     []series.Point
	Stats      series.Stats
	HasData    bool
}

// DigitalChannelMetrics is one digital channel prepared for rendering.
type DigitalChannelMetrics struct {
	ID      string
	Name    string
	Color   string
	Visible bool
	Points  []series.DigitalPoint
}

// Metrics is the full pipeline output handed to the rendering collaborator.
type Metrics struct {
	Resolution timegrid.Resolution
	Timestamps []int64
	Analog     []ChannelMetrics
	Digital    []DigitalChannelMetrics
}

// Processor runs the full pipeline: resolution detection, chunked
// normalization, gap breaking, caching, windowing and statistics. One
// processor serves one UI; a monotonically increasing load version suppresses
// results of superseded loads.
type Processor struct {
	cfg     *config.Config
	log     *slog.Logger
	cache   *Cache
	model   *selection.Model
	frames  *FrameLimiter
	commits *Debouncer

	version atomic.Int64

	mu        sync.RWMutex
	source    SourceKey
	lastKey   CacheKey
	published *Metrics
	commitFn  func(startMs, endMs int64)
}

// NewProcessor creates a processor. A nil config uses defaults; a nil logger
// discards diagnostics.
func NewProcessor(cfg *config.Config, logger *slog.Logger) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	start, end := cfg.Shift.BoundsFor(time.Now())
	return &Processor{
		cfg:   cfg,
		log:   logger,
		cache: NewCache(),
		model: selection.NewModel(
			cfg.Window.MinDuration.Milliseconds(),
			selection.Domain{MinMs: start, MaxMs: end},
		),
		frames:  NewFrameLimiter(cfg.Load.FrameInterval),
		commits: NewDebouncer(cfg.Load.CommitDebounce),
	}
}

// Model returns the selection model shared by every panel.
func (p *Processor) Model() *selection.Model {
	return p.model
}

// Published returns the most recently published metrics (possibly a partial
// result while chunks of a load are still being applied), or nil.
func (p *Processor) Published() *Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.published
}

// SetSource switches the data source. The cache is invalidated wholesale, any
// in-flight load is superseded, and the selection model recenters on the
// shift's nominal bounds until data arrives.
func (p *Processor) SetSource(vehicle string, date time.Time, shift string) {
	v := p.version.Add(1)

	p.mu.Lock()
	p.source = SourceKey{Vehicle: vehicle, Date: date, Shift: shift}
	p.published = nil
	p.mu.Unlock()

	p.cache.Clear()

	start, end := p.cfg.Shift.BoundsFor(date)
	p.model.Reset(
		selection.Domain{MinMs: start, MaxMs: end},
		start+(end-start)/2,
		p.cfg.Window.InitialDuration.Milliseconds(),
	)

	p.log.Info("source changed",
		slog.String("vehicle", vehicle),
		slog.String("date", date.Format("2006-01-02")),
		slog.String("shift", shift),
		slog.Int64("version", v))
}

// ProcessData is the full pipeline entry point. It detects the grid for this
// load, normalizes all channels in chunks (publishing partial results as they
// land), caches the normalized series, re-initializes the selection model on
// the data's domain and returns window-filtered metrics. A load superseded by
// a newer one returns ErrStale.
func (p *Processor) ProcessData(ctx context.Context, payload *telemetry.Payload, windowStartMs, windowEndMs int64) (*Metrics, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload", telemetry.ErrMalformedPayload)
	}

	v := p.version.Add(1)

	p.mu.RLock()
	src := p.source
	p.mu.RUnlock()

	// Grid detection: structural per-second evidence, seconds-bearing time
	// labels, then the raw delta scan.
	secondEvidence := payload.HasPerSecond()
	sharedTimes := make([]int64, len(payload.Timestamps))
	resolved := make([]int64, 0, len(payload.Timestamps))
	for i, tl := range payload.Timestamps {
		if !secondEvidence && tl.HasSeconds() {
			secondEvidence = true
		}
		ms, ok := tl.EpochMs(src.Date)
		if !ok {
			sharedTimes[i] = -1
			continue
		}
		sharedTimes[i] = ms
		resolved = append(resolved, ms)
	}
	res := timegrid.Detect(resolved, secondEvidence)
	bucket := res.BucketMs()
	maxGap := int64(p.cfg.Sampling.GapFactor) * bucket

	p.log.Debug("grid detected",
		slog.String("resolution", res.String()),
		slog.Int("labels", len(payload.Timestamps)),
		slog.Int64("version", v))

	axis := make([]int64, 0, len(resolved))
	for _, ms := range resolved {
		axis = append(axis, timegrid.Align(ms, bucket))
	}

	e := &entry{
		resolution:   res,
		timestamps:   axis,
		analogChans:  payload.AnalogChannels(),
		digitalChans: payload.DigitalChannels(),
		analog:       make(map[string][]series.Point, len(payload.AnalogChannels())),
		digital:      make(map[string][]series.DigitalPoint, len(payload.DigitalChannels())),
	}

	if err := p.normalizeAnalog(ctx, v, e, src, sharedTimes, bucket, maxGap); err != nil {
		return nil, err
	}
	if err := p.normalizeDigital(ctx, v, e, src, sharedTimes, bucket, maxGap); err != nil {
		return nil, err
	}

	if p.version.Load() != v {
		return nil, ErrStale
	}

	key := src.cacheKey(bucket)
	p.cache.put(key, e)

	domain, ok := e.domain()
	if !ok {
		// Degenerate domain: fall back to the shift's nominal bounds
		start, end := p.cfg.Shift.BoundsFor(src.Date)
		domain = selection.Domain{MinMs: start, MaxMs: end}
	}
	p.model.Reset(domain, p.cfg.Shift.MidpointFor(src.Date), p.cfg.Window.InitialDuration.Milliseconds())
	if windowStartMs > 0 && windowEndMs > 0 {
		p.model.SetWindow(windowStartMs, windowEndMs)
	}

	m := p.metricsFor(e, p.model.Window())

	p.mu.Lock()
	if p.version.Load() == v {
		p.lastKey = key
		p.published = m
	}
	p.mu.Unlock()
	if p.version.Load() != v {
		return nil, ErrStale
	}

	p.log.Info("load complete",
		slog.Int("analog", len(e.analogChans)),
		slog.Int("digital", len(e.digitalChans)),
		slog.String("resolution", res.String()),
		slog.Int64("version", v))

	return m, nil
}

// GetWindow re-windows cached normalized series without re-normalizing from
// scratch. The bucket size is chosen by the caller's view mode.
func (p *Processor) GetWindow(startMs, endMs int64, secondView bool) (*Metrics, error) {
	bucket := timegrid.ResolutionMinute.BucketMs()
	if secondView {
		bucket = timegrid.ResolutionSecond.BucketMs()
	}

	p.mu.RLock()
	src := p.source
	p.mu.RUnlock()

	e, ok := p.cache.get(src.cacheKey(bucket))
	if !ok {
		return nil, ErrNoData
	}

	p.model.SetWindow(startMs, endMs)
	return p.metricsFor(e, p.model.Window()), nil
}

// Overview returns decimated metrics for a long-range overview. The envelope
// decimator keeps the true global min/max; maxPoints <= 0 uses the configured
// render budget.
func (p *Processor) Overview(startMs, endMs int64, maxPoints int) (*Metrics, error) {
	if maxPoints <= 0 {
		maxPoints = p.cfg.Render.MaxPoints
	}

	p.mu.RLock()
	key := p.lastKey
	p.mu.RUnlock()

	e, ok := p.cache.get(key)
	if !ok {
		return nil, ErrNoData
	}

	w := selection.TimeWindow{StartMs: startMs, EndMs: endMs}
	m := p.metricsFor(e, w)
	for i := range m.Analog {
		m.Analog[i].Points = series.Decimate(m.Analog[i].Points, maxPoints)
	}
	return m, nil
}

// DigitalUnion builds the shared multi-channel axis for digital indicator
// panels over the given window.
func (p *Processor) DigitalUnion(startMs, endMs int64) ([]series.UnionRow, error) {
	p.mu.RLock()
	key := p.lastKey
	p.mu.RUnlock()

	e, ok := p.cache.get(key)
	if !ok {
		return nil, ErrNoData
	}

	bucket := e.resolution.BucketMs()
	return series.BuildUnionAxis(
		e.digital,
		startMs, endMs,
		p.cfg.Sampling.UnionPad.Milliseconds(),
		bucket,
		int64(p.cfg.Sampling.GapFactor)*bucket,
	), nil
}

// ValueAt resolves an analog channel's value at the cursor, or ok=false when
// the cursor is farther than the tolerance from every present point.
func (p *Processor) ValueAt(channelID string, cursorMs int64) (series.Point, bool) {
	p.mu.RLock()
	key := p.lastKey
	p.mu.RUnlock()

	e, ok := p.cache.get(key)
	if !ok {
		return series.Point{}, false
	}
	points, ok := e.analog[channelID]
	if !ok {
		return series.Point{}, false
	}
	return series.ValueAt(points, cursorMs, e.resolution.BucketMs(), p.cfg.Sampling.CursorTolerance.Milliseconds())
}

// DigitalValueAt resolves a digital channel's value at the cursor.
func (p *Processor) DigitalValueAt(channelID string, cursorMs int64) (float64, bool) {
	p.mu.RLock()
	key := p.lastKey
	p.mu.RUnlock()

	e, ok := p.cache.get(key)
	if !ok {
		return 0, false
	}
	points, ok := e.digital[channelID]
	if !ok {
		return 0, false
	}
	return series.DigitalValueAt(points, cursorMs, e.resolution.BucketMs(), p.cfg.Sampling.CursorTolerance.Milliseconds())
}

// ClearCache forces full recomputation on the next call. Invoked on
// data-source change.
func (p *Processor) ClearCache() {
	p.cache.Clear()
}

// OnWindowCommit registers the loader callback fired (debounced) after the
// user settles on a new window, so a re-fetch happens once per gesture
// instead of once per drag tick.
func (p *Processor) OnWindowCommit(fn func(startMs, endMs int64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commitFn = fn
}

// DragCursor applies a cursor drag, coalesced to one update per frame.
func (p *Processor) DragCursor(tsMs int64) {
	p.frames.Do(func() { p.model.SetCursor(tsMs) })
}

// DragWindow applies a window drag, coalesced to one update per frame, and
// schedules a debounced loader commit for when the drag settles.
func (p *Processor) DragWindow(startMs, endMs int64) {
	p.frames.Do(func() { p.model.SetWindow(startMs, endMs) })
	p.commits.Trigger(func() {
		w := p.model.Window()
		p.mu.RLock()
		fn := p.commitFn
		p.mu.RUnlock()
		if fn != nil {
			fn(w.StartMs, w.EndMs)
		}
	})
}

// Close releases the pacing timers.
func (p *Processor) Close() {
	p.frames.Stop()
	p.commits.Stop()
}

// normalizeAnalog runs chunked normalization over the analog channels.
// Chunks are applied in emission order within one load version; a superseded
// version stops with ErrStale before touching shared state.
func (p *Processor) normalizeAnalog(ctx context.Context, v int64, e *entry, src SourceKey, sharedTimes []int64, bucket, maxGap int64) error {
	chunk := p.cfg.Load.ChunkSize
	if chunk <= 0 {
		chunk = 10
	}

	for start := 0; start < len(e.analogChans); start += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.version.Load() != v {
			return ErrStale
		}

		end := start + chunk
		if end > len(e.analogChans) {
			end = len(e.analogChans)
		}
		results := make([][]series.Point, end-start)

		g, _ := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				ch := e.analogChans[i]
				points := series.Normalize(ch, p.channelTimes(ch, src, sharedTimes), bucket)
				results[i-start] = series.InsertBreaks(points, bucket, maxGap)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if p.version.Load() != v {
			return ErrStale
		}

		for i := start; i < end; i++ {
			e.analog[e.analogChans[i].ID] = results[i-start]
		}
		p.publishPartial(v, e)

		p.log.Debug("analog chunk applied",
			slog.Int("from", start),
			slog.Int("to", end),
			slog.Int64("version", v))
	}
	return nil
}

// normalizeDigital runs chunked normalization over the digital channels.
func (p *Processor) normalizeDigital(ctx context.Context, v int64, e *entry, src SourceKey, sharedTimes []int64, bucket, maxGap int64) error {
	chunk := p.cfg.Load.ChunkSize
	if chunk <= 0 {
		chunk = 10
	}

	for start := 0; start < len(e.digitalChans); start += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.version.Load() != v {
			return ErrStale
		}

		end := start + chunk
		if end > len(e.digitalChans) {
			end = len(e.digitalChans)
		}
		results := make([][]series.DigitalPoint, end-start)

		g, _ := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				ch := e.digitalChans[i]
				points := series.NormalizeDigital(ch, p.channelTimes(ch, src, sharedTimes), bucket)
				results[i-start] = series.InsertDigitalBreaks(points, bucket, maxGap)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if p.version.Load() != v {
			return ErrStale
		}

		for i := start; i < end; i++ {
			e.digital[e.digitalChans[i].ID] = results[i-start]
		}
		p.publishPartial(v, e)

		p.log.Debug("digital chunk applied",
			slog.Int("from", start),
			slog.Int("to", end),
			slog.Int64("version", v))
	}
	return nil
}

// channelTimes picks the time source for a channel: the shared axis when the
// channel's points line up with it, otherwise a per-channel array resolved
// from each sample's own time label.
func (p *Processor) channelTimes(ch telemetry.Channel, src SourceKey, sharedTimes []int64) []int64 {
	if len(sharedTimes) > 0 && len(ch.Points) == len(sharedTimes) {
		return sharedTimes
	}
	times := make([]int64, len(ch.Points))
	for i, s := range ch.Points {
		ms, ok := s.EpochMs(src.Date)
		if !ok {
			times[i] = -1
			continue
		}
		times[i] = ms
	}
	return times
}

// publishPartial publishes incrementally processed channels so the UI can
// draw the first chunk while later chunks are still being normalized. The
// first chunk of a load replaces the previous dataset's metrics, subsequent
// chunks extend them. Stale versions never publish.
func (p *Processor) publishPartial(v int64, e *entry) {
	if p.version.Load() != v {
		return
	}
	m := &Metrics{
		Resolution: e.resolution,
		Timestamps: e.timestamps,
	}
	for _, ch := range e.analogChans {
		points, ok := e.analog[ch.ID]
		if !ok {
			continue
		}
		m.Analog = append(m.Analog, ChannelMetrics{
			ID: ch.ID, Name: ch.Name, Unit: ch.Unit,
			Color: ch.Color, MinColor: ch.MinColor, MaxColor: ch.MaxColor,
			YAxisRange: ch.YAxisRange, Visible: ch.Visible(),
			Points: points,
		})
	}
	for _, ch := range e.digitalChans {
		points, ok := e.digital[ch.ID]
		if !ok {
			continue
		}
		m.Digital = append(m.Digital, DigitalChannelMetrics{
			ID: ch.ID, Name: ch.Name, Color: ch.Color,
			Visible: ch.Visible(), Points: points,
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.version.Load() != v {
		return
	}
	p.published = m
}

// metricsFor assembles window-filtered metrics with headline statistics.
func (p *Processor) metricsFor(e *entry, w selection.TimeWindow) *Metrics {
	pad := p.cfg.Sampling.UnionPad.Milliseconds()

	m := &Metrics{
		Resolution: e.resolution,
		Timestamps: filterAxis(e.timestamps, w.StartMs-pad, w.EndMs+pad),
	}

	for _, ch := range e.analogChans {
		points := e.analog[ch.ID]
		st, hasData := series.WindowStats(points, w.StartMs, w.EndMs)
		m.Analog = append(m.Analog, ChannelMetrics{
			ID: ch.ID, Name: ch.Name, Unit: ch.Unit,
			Color: ch.Color, MinColor: ch.MinColor, MaxColor: ch.MaxColor,
			YAxisRange: ch.YAxisRange, Visible: ch.Visible(),
			Points:  series.FilterWindow(points, w.StartMs, w.EndMs, pad),
			Stats:   st,
			HasData: hasData,
		})
	}
	for _, ch := range e.digitalChans {
		points := e.digital[ch.ID]
		m.Digital = append(m.Digital, DigitalChannelMetrics{
			ID: ch.ID, Name: ch.Name, Color: ch.Color,
			Visible: ch.Visible(),
			Points:  series.FilterDigitalWindow(points, w.StartMs, w.EndMs, pad),
		})
	}
	return m
}

// domain computes the dataset's domain as the union of first/last timestamps
// across all channels. ok=false when no channel has any point.
func (e *entry) domain() (selection.Domain, bool) {
	var d selection.Domain
	found := false

	consider := func(first, last int64) {
		if !found {
			d = selection.Domain{MinMs: first, MaxMs: last}
			found = true
			return
		}
		if first < d.MinMs {
			d.MinMs = first
		}
		if last > d.MaxMs {
			d.MaxMs = last
		}
	}

	for _, points := range e.analog {
		if len(points) > 0 {
			consider(points[0].TS, points[len(points)-1].TS)
		}
	}
	for _, points := range e.digital {
		if len(points) > 0 {
			consider(points[0].TS, points[len(points)-1].TS)
		}
	}
	if !found && len(e.timestamps) > 0 {
		consider(e.timestamps[0], e.timestamps[len(e.timestamps)-1])
	}
	return d, found
}

// filterAxis returns the axis entries inside [lo, hi].
func filterAxis(axis []int64, lo, hi int64) []int64 {
	out := make([]int64, 0, len(axis))
	for _, ts := range axis {
		if ts >= lo && ts <= hi {
			out = append(out, ts)
		}
	}
	return out
}
