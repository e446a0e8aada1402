// Package selection owns the visible time window and the shared cursor. It
// is the single mutation point for both: every chart panel derives its
// visible domain from this model, which is what keeps independent panels
// mathematically consistent with one shared cursor.
package selection

import (
	"sync"
)

// Domain is the full time span of the currently loaded dataset.
type Domain struct {
	MinMs int64
	MaxMs int64
}

// Span returns the domain width in milliseconds.
func (d Domain) Span() int64 {
	return d.MaxMs - d.MinMs
}

// Clamp forces a timestamp inside the domain.
func (d Domain) Clamp(ts int64) int64 {
	if ts < d.MinMs {
		return d.MinMs
	}
	if ts > d.MaxMs {
		return d.MaxMs
	}
	return ts
}

// TimeWindow is the currently visible/selected sub-range of the domain.
type TimeWindow struct {
	StartMs int64
	EndMs   int64
}

// Contains reports whether a timestamp lies inside the window.
func (w TimeWindow) Contains(ts int64) bool {
	return ts >= w.StartMs && ts <= w.EndMs
}

// SpanMs returns the window length in milliseconds.
func (w TimeWindow) SpanMs() int64 {
	return w.EndMs - w.StartMs
}

// Model is the window/cursor state machine. All mutation goes through
// SetWindow/SetCursor/Reset; registered subscribers are notified after each
// effective change. Subscriptions replace ambient broadcast events so the
// dependency between publisher and subscriber is visible in the type system.
type Model struct {
	mu sync.RWMutex

	domain   Domain
	fallback Domain // Used when a load produces a degenerate domain
	window   TimeWindow
	cursor   int64 // <0 means unset

	minWindowMs int64

	selectionSubs []func(startMs, endMs int64)
	cursorSubs    []func(tsMs int64)
}

// NewModel creates a selection model. minWindowMs is the shortest window the
// model will ever emit; fallback is the domain used when a dataset carries no
// data at all (typically the configured shift bounds).
func NewModel(minWindowMs int64, fallback Domain) *Model {
	if minWindowMs <= 0 {
		minWindowMs = 60_000
	}
	return &Model{
		minWindowMs: minWindowMs,
		domain:      fallback,
		fallback:    fallback,
		cursor:      -1,
	}
}

// Reset re-initializes the model for a freshly loaded dataset: the window
// becomes an initialWindowMs slice centered on centerMs clamped inside the
// domain, and the cursor sits at the window midpoint. A degenerate domain
// (zero or negative span) falls back to the configured default bounds rather
// than failing.
func (m *Model) Reset(domain Domain, centerMs, initialWindowMs int64) {
	m.mu.Lock()
	if domain.Span() <= 0 {
		domain = m.fallback
	}
	m.domain = domain

	center := domain.Clamp(centerMs)
	m.window = m.clamped(center-initialWindowMs/2, center+initialWindowMs/2)
	m.cursor = m.window.StartMs + m.window.SpanMs()/2
	window, cursor := m.window, m.cursor
	m.mu.Unlock()

	m.notifySelection(window)
	m.notifyCursor(cursor)
}

// SetCursor clamps the timestamp to the domain and moves the cursor.
func (m *Model) SetCursor(ts int64) {
	m.mu.Lock()
	next := m.domain.Clamp(ts)
	changed := next != m.cursor
	m.cursor = next
	m.mu.Unlock()

	if changed {
		m.notifyCursor(next)
	}
}

// SetWindow normalizes and applies a new selection window: bounds are
// ordered, the minimum window length is enforced (extending the end, or
// shrinking from the end when extension would leave the domain), and both
// bounds are clamped inside the domain. When the domain itself is shorter
// than the minimum window, the window collapses to the full domain. The
// cursor is pulled back inside only if the new window no longer contains it.
func (m *Model) SetWindow(startMs, endMs int64) {
	m.mu.Lock()
	next := m.clamped(startMs, endMs)
	windowChanged := next != m.window
	m.window = next

	cursorChanged := false
	if m.cursor >= 0 && !next.Contains(m.cursor) {
		if m.cursor < next.StartMs {
			m.cursor = next.StartMs
		} else {
			m.cursor = next.EndMs
		}
		cursorChanged = true
	}
	cursor := m.cursor
	m.mu.Unlock()

	if windowChanged {
		m.notifySelection(next)
	}
	if cursorChanged {
		m.notifyCursor(cursor)
	}
}

// Window returns the current selection window.
func (m *Model) Window() TimeWindow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.window
}

// Cursor returns the current cursor timestamp, or false if unset.
func (m *Model) Cursor() (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursor, m.cursor >= 0
}

// Domain returns the active domain.
func (m *Model) Domain() Domain {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.domain
}

// OnSelectionChange registers a subscriber for window changes.
func (m *Model) OnSelectionChange(fn func(startMs, endMs int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectionSubs = append(m.selectionSubs, fn)
}

// OnCursorChange registers a subscriber for cursor changes.
func (m *Model) OnCursorChange(fn func(tsMs int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursorSubs = append(m.cursorSubs, fn)
}

// clamped produces a valid window from arbitrary bounds. Callers hold mu.
func (m *Model) clamped(startMs, endMs int64) TimeWindow {
	d := m.domain
	if d.Span() < m.minWindowMs {
		// Domain shorter than the minimum window: collapse to full domain
		return TimeWindow{StartMs: d.MinMs, EndMs: d.MaxMs}
	}

	if startMs > endMs {
		startMs, endMs = endMs, startMs
	}
	if endMs-startMs < m.minWindowMs {
		endMs = startMs + m.minWindowMs
		if endMs > d.MaxMs {
			// Extension would leave the domain: shrink from the end instead
			endMs = d.MaxMs
			startMs = endMs - m.minWindowMs
		}
	}
	if startMs < d.MinMs {
		startMs = d.MinMs
		if endMs < startMs+m.minWindowMs {
			endMs = startMs + m.minWindowMs
		}
	}
	if endMs > d.MaxMs {
		endMs = d.MaxMs
		if startMs > endMs-m.minWindowMs {
			startMs = endMs - m.minWindowMs
		}
	}
	return TimeWindow{StartMs: startMs, EndMs: endMs}
}

// notifySelection fans a window change out to subscribers. Called outside mu.
func (m *Model) notifySelection(w TimeWindow) {
	m.mu.RLock()
	subs := make([]func(int64, int64), len(m.selectionSubs))
	copy(subs, m.selectionSubs)
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(w.StartMs, w.EndMs)
	}
}

// notifyCursor fans a cursor change out to subscribers. Called outside mu.
func (m *Model) notifyCursor(ts int64) {
	m.mu.RLock()
	subs := make([]func(int64), len(m.cursorSubs))
	copy(subs, m.cursorSubs)
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(ts)
	}
}
