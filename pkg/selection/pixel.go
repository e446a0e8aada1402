package selection

// PixelX projects a timestamp onto the horizontal pixel axis of a plot whose
// drawable area is plotWidthPx wide and starts leftMarginPx from the panel
// edge. Computed analytically from the selection state so no caller ever has
// to probe rendered markup for the cursor's position. Timestamps outside the
// window clamp to the plot edges.
func PixelX(w TimeWindow, tsMs int64, plotWidthPx, leftMarginPx float64) float64 {
	span := w.SpanMs()
	if span <= 0 || plotWidthPx <= 0 {
		return leftMarginPx
	}
	frac := float64(tsMs-w.StartMs) / float64(span)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return leftMarginPx + frac*plotWidthPx
}

// TimeAtPixel is the inverse of PixelX: it maps a pixel offset back to a
// timestamp inside the window, for translating drag gestures into window and
// cursor updates.
func TimeAtPixel(w TimeWindow, x, plotWidthPx, leftMarginPx float64) int64 {
	span := w.SpanMs()
	if span <= 0 || plotWidthPx <= 0 {
		return w.StartMs
	}
	frac := (x - leftMarginPx) / plotWidthPx
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return w.StartMs + int64(frac*float64(span))
}
