package domain

import (
	"math"
	"time"
)

// DefaultBufferDays pads the computed range on each side of the
// earliest start and latest end.
const DefaultBufferDays = 5

// positionEpsilon absorbs float error when mapping a fraction back to
// the day cell it points into.
const positionEpsilon = 1e-9

// TimeRange is the padded calendar-day span covering all events. It is
// the coordinate system's domain: positions along the timeline are
// fractions of this range.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ComputeTimeRange derives the padded range spanning every event. The
// second return is false when there are no events; callers must treat
// that as a "no data" state rather than using the zero range.
func ComputeTimeRange(events []Event, bufferDays int) (TimeRange, bool) {
	if len(events) == 0 {
		return TimeRange{}, false
	}
	if bufferDays < 0 {
		bufferDays = 0
	}
	minStart := events[0].Start
	maxEnd := events[0].End
	for _, event := range events[1:] {
		if event.Start.Before(minStart) {
			minStart = event.Start
		}
		if event.End.After(maxEnd) {
			maxEnd = event.End
		}
	}
	return TimeRange{
		Start: AddDays(minStart, -bufferDays),
		End:   AddDays(maxEnd, bufferDays),
	}, true
}

// TotalDays returns the day span of the range.
func (r TimeRange) TotalDays() int {
	return DaysBetween(r.Start, r.End)
}

// Contains reports whether the day falls inside the range, inclusive.
func (r TimeRange) Contains(day time.Time) bool {
	day = NormalizeDay(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// PositionPercent maps a day to its left edge as a percentage of the
// range width, in [0,100].
func (r TimeRange) PositionPercent(day time.Time) float64 {
	total := r.TotalDays()
	if total <= 0 {
		return 0
	}
	return float64(DaysBetween(r.Start, day)) / float64(total) * 100
}

// WidthPercent maps an inclusive day span to its width as a percentage
// of the range width.
func (r TimeRange) WidthPercent(start, end time.Time) float64 {
	total := r.TotalDays()
	if total <= 0 {
		return 0
	}
	return float64(DaysBetween(start, end)+1) / float64(total) * 100
}

// DayAt inverts PositionPercent, truncating to whole-day granularity:
// any fraction inside a day's cell recovers that day.
func (r TimeRange) DayAt(percent float64) time.Time {
	total := r.TotalDays()
	if total <= 0 {
		return r.Start
	}
	offset := int(math.Floor(percent/100*float64(total) + positionEpsilon))
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	return AddDays(r.Start, offset)
}
