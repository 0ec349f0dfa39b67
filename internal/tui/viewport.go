package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ZoomBounds carries the configurable zoom limits and step factor.
type ZoomBounds struct {
	Min    float64
	Max    float64
	Factor float64
}

// DefaultZoomBounds mirrors the configuration defaults.
func DefaultZoomBounds() ZoomBounds {
	return ZoomBounds{Min: 0.1, Max: 5.0, Factor: 1.2}
}

// panCapture records the state grabbed at pan start. Pan is a 1:1
// inverse mapping: dragging right moves the view left.
type panCapture struct {
	pointerX     int
	scrollOffset float64
}

// Viewport tracks zoom level and horizontal scroll for one timeline.
// Geometry is in terminal cells; one cell is the pixel unit.
type Viewport struct {
	Zoom         float64
	ScrollOffset float64
	Width        int
	BaseDayWidth float64

	bounds ZoomBounds
	pan    *panCapture
}

// NewViewport constructs a viewport at 100% zoom.
func NewViewport(baseDayWidth float64, bounds ZoomBounds) Viewport {
	if baseDayWidth <= 0 {
		baseDayWidth = 3
	}
	if bounds.Min <= 0 || bounds.Max < bounds.Min {
		bounds = DefaultZoomBounds()
	}
	if bounds.Factor <= 1 {
		bounds.Factor = DefaultZoomBounds().Factor
	}
	return Viewport{Zoom: 1.0, BaseDayWidth: baseDayWidth, bounds: bounds}
}

// DayWidth returns the width of one day cell at the current zoom.
func (v Viewport) DayWidth() float64 {
	return v.BaseDayWidth * v.Zoom
}

// TrackWidth returns the full timeline width at the current zoom.
func (v Viewport) TrackWidth(totalDays int) float64 {
	return float64(totalDays) * v.DayWidth()
}

// ZoomIn multiplies the zoom level by the configured factor, clamped.
func (v *Viewport) ZoomIn() {
	v.setZoom(v.Zoom * v.bounds.Factor)
}

// ZoomOut divides the zoom level by the configured factor, clamped.
func (v *Viewport) ZoomOut() {
	v.setZoom(v.Zoom / v.bounds.Factor)
}

// ResetZoom restores 100%.
func (v *Viewport) ResetZoom() {
	v.Zoom = 1.0
}

// ZoomPercent returns the zoom level as a whole percentage for display.
func (v Viewport) ZoomPercent() int {
	return int(math.Round(v.Zoom * 100))
}

// SetZoomPercent applies a user-entered percentage. Non-numeric or
// out-of-bounds input is rejected without mutating state; the caller
// reverts the displayed value.
func (v *Viewport) SetZoomPercent(raw string) error {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	percent, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("zoom must be a number: %q", raw)
	}
	zoom := percent / 100
	if zoom < v.bounds.Min || zoom > v.bounds.Max {
		return fmt.Errorf("zoom must be between %d%% and %d%%", int(v.bounds.Min*100), int(v.bounds.Max*100))
	}
	v.Zoom = zoom
	return nil
}

// setZoom clamps relative zoom adjustments into bounds.
func (v *Viewport) setZoom(zoom float64) {
	if zoom < v.bounds.Min {
		zoom = v.bounds.Min
	}
	if zoom > v.bounds.Max {
		zoom = v.bounds.Max
	}
	v.Zoom = zoom
}

// BeginPan captures the pointer position and scroll offset at the start
// of a background drag.
func (v *Viewport) BeginPan(pointerX int) {
	v.pan = &panCapture{pointerX: pointerX, scrollOffset: v.ScrollOffset}
}

// PanTo updates the scroll offset from the captured anchor.
func (v *Viewport) PanTo(pointerX int) {
	if v.pan == nil {
		return
	}
	v.ScrollOffset = v.pan.scrollOffset - float64(pointerX-v.pan.pointerX)
}

// EndPan releases the pan capture.
func (v *Viewport) EndPan() {
	v.pan = nil
}

// Panning reports whether a pan capture is active.
func (v Viewport) Panning() bool {
	return v.pan != nil
}

// ScrollBy shifts the view by a cell delta, used by keyboard panning.
func (v *Viewport) ScrollBy(delta float64) {
	v.ScrollOffset += delta
}

// ClampScroll keeps the view inside the track edges. Not required by
// the pan contract, but it avoids scrolling into empty space.
func (v *Viewport) ClampScroll(totalDays int) {
	maxOffset := v.TrackWidth(totalDays) - float64(v.Width)
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.ScrollOffset < 0 {
		v.ScrollOffset = 0
	}
	if v.ScrollOffset > maxOffset {
		v.ScrollOffset = maxOffset
	}
}

// CenterOn scrolls so the given day offset sits at the viewport middle.
func (v *Viewport) CenterOn(dayOffset, totalDays int) {
	v.ScrollOffset = v.DayWidth()*float64(dayOffset) - float64(v.Width)/2
	v.ClampScroll(totalDays)
}
