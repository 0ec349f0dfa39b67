package tui

import (
	"strconv"
	"time"

	"github.com/hylla/strand/internal/domain"
)

// Marker-density zoom thresholds: below midZoom only month starts show,
// above dayLabelZoom every marker carries a day number.
const (
	midZoomThreshold      = 0.5
	dayLabelZoomThreshold = 1.5
)

// AxisMarker is one labeled tick on the date axis.
type AxisMarker struct {
	Day     time.Time
	IsMonth bool
	Label   string
}

// AxisMarkers picks which day ticks to draw for the current zoom. Month
// starts and the range start always show; every fifth day of the month
// joins at medium zoom and gains a day-number label at high zoom.
func AxisMarkers(r domain.TimeRange, zoom float64) []AxisMarker {
	var markers []AxisMarker
	for d := domain.NormalizeDay(r.Start); !d.After(r.End); d = domain.AddDays(d, 1) {
		isRangeStart := d.Equal(domain.NormalizeDay(r.Start))
		isMonth := d.Day() == 1
		isFifth := d.Day()%5 == 0

		show := isMonth || isRangeStart
		if zoom >= midZoomThreshold && isFifth {
			show = true
		}
		if !show {
			continue
		}
		markers = append(markers, AxisMarker{
			Day:     d,
			IsMonth: isMonth,
			Label:   markerLabel(d, zoom, isMonth, isFifth),
		})
	}
	return markers
}

// markerLabel formats one tick label under the zoom-dependent rules.
func markerLabel(d time.Time, zoom float64, isMonth, isFifth bool) string {
	if isMonth {
		return d.Format("Jan 2006")
	}
	if zoom > dayLabelZoomThreshold || isFifth {
		return strconv.Itoa(d.Day())
	}
	return ""
}
