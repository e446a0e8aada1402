package view

import (
	"sync"
	"time"
)

// FrameLimiter coalesces rapid interactive updates (cursor drags, window
// drags) to at most one per frame interval. Inputs arriving before the frame
// fires supersede the pending one rather than queueing, so only the latest
// input per frame is applied.
type FrameLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	pending  func()
	stopped  bool
}

// NewFrameLimiter creates a limiter with the given frame interval.
func NewFrameLimiter(interval time.Duration) *FrameLimiter {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &FrameLimiter{interval: interval}
}

// Do schedules fn for the next frame, replacing any not-yet-applied input.
func (f *FrameLimiter) Do(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	f.pending = fn
	if f.timer == nil {
		f.timer = time.AfterFunc(f.interval, f.fire)
	}
}

func (f *FrameLimiter) fire() {
	f.mu.Lock()
	fn := f.pending
	f.pending = nil
	f.timer = nil
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Stop discards any pending input and prevents further scheduling.
func (f *FrameLimiter) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.pending = nil
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Debouncer delays an action until a quiet period has elapsed, so a window
// drag commits one loader request after the user settles instead of one per
// drag tick. Each trigger restarts the quiet period.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, cancelling any earlier
// not-yet-fired action.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending action and prevents further triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
