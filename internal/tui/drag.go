package tui

import (
	"math"
	"time"

	"github.com/hylla/strand/internal/app"
	"github.com/hylla/strand/internal/domain"
)

// DragMode selects which dates a positional drag mutates.
type DragMode int

const (
	// DragMove shifts both dates, preserving duration.
	DragMove DragMode = iota
	// DragResizeStart moves only the start date.
	DragResizeStart
	// DragResizeEnd moves only the end date.
	DragResizeEnd
)

// DragSession is the transient state of one in-progress positional
// edit. It owns the tentative dates; the stored event is untouched
// until the session commits at pointer release.
type DragSession struct {
	EventID       string
	Mode          DragMode
	AnchorX       int
	OriginalStart time.Time
	OriginalEnd   time.Time
	TotalDays     int
	TrackWidth    float64

	// Start and End are the optimistic dates shown while dragging.
	Start time.Time
	End   time.Time
}

// BeginDrag snapshots the event's dates and the pointer anchor.
func BeginDrag(event domain.Event, mode DragMode, pointerX, totalDays int, trackWidth float64) *DragSession {
	return &DragSession{
		EventID:       event.ID,
		Mode:          mode,
		AnchorX:       pointerX,
		OriginalStart: event.Start,
		OriginalEnd:   event.End,
		TotalDays:     totalDays,
		TrackWidth:    trackWidth,
		Start:         event.Start,
		End:           event.End,
	}
}

// Pointer converts pointer motion into tentative date changes. The
// candidate dates always derive from the drag-start snapshot, so
// sub-day motion never moves them and returning the pointer to the
// anchor restores the originals. Returns true when the tentative
// dates changed.
func (d *DragSession) Pointer(x int) bool {
	if d.TrackWidth <= 0 {
		return false
	}
	deltaPixels := float64(x - d.AnchorX)
	deltaDays := int(math.Round(deltaPixels * float64(d.TotalDays) / d.TrackWidth))

	start := d.OriginalStart
	end := d.OriginalEnd
	switch d.Mode {
	case DragMove:
		start = domain.AddDays(start, deltaDays)
		end = domain.AddDays(end, deltaDays)
	case DragResizeStart:
		start = domain.AddDays(start, deltaDays)
		if start.After(end) {
			start = end
		}
	case DragResizeEnd:
		end = domain.AddDays(end, deltaDays)
		if end.Before(start) {
			end = start
		}
	}

	if start.Equal(d.Start) && end.Equal(d.End) {
		return false
	}
	d.Start = start
	d.End = end
	return true
}

// Cancel reverts the tentative dates to the drag-start snapshot.
func (d *DragSession) Cancel() {
	d.Start = d.OriginalStart
	d.End = d.OriginalEnd
}

// Changed reports whether the tentative dates differ from the snapshot.
func (d DragSession) Changed() bool {
	return !d.Start.Equal(d.OriginalStart) || !d.End.Equal(d.OriginalEnd)
}

// Commit builds the partial update to emit at pointer release. The
// second return is false when the drag ended where it started, in
// which case nothing is emitted.
func (d DragSession) Commit() (app.UpdateEventInput, bool) {
	if !d.Changed() {
		return app.UpdateEventInput{}, false
	}
	start := d.Start
	end := d.End
	return app.UpdateEventInput{ID: d.EventID, Start: &start, End: &end}, true
}
