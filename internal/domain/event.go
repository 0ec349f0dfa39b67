package domain

import (
	"strings"
	"time"
)

// DurationClass buckets events by displayed length.
type DurationClass string

const (
	DurationShort  DurationClass = "short"
	DurationMedium DurationClass = "medium"
	DurationLong   DurationClass = "long"
)

// Event is one time-bound entry on the timeline. Start and End are
// inclusive calendar days, so the displayed duration is End-Start+1 days.
type Event struct {
	ID        string
	Name      string
	Start     time.Time
	End       time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventInput carries the fields needed to construct an Event.
type EventInput struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
	Notes string
}

// NewEvent validates and normalizes input into an Event. Inverted date
// ranges are rejected here so malformed events never reach layout.
func NewEvent(in EventInput, now time.Time) (Event, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.ID == "" {
		return Event{}, ErrInvalidID
	}
	if in.Name == "" {
		return Event{}, ErrInvalidName
	}
	start := NormalizeDay(in.Start)
	end := NormalizeDay(in.End)
	if start.After(end) {
		return Event{}, ErrInvalidDateRange
	}

	return Event{
		ID:        in.ID,
		Name:      in.Name,
		Start:     start,
		End:       end,
		Notes:     in.Notes,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Rename replaces the event name.
func (e *Event) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	e.Name = name
	e.UpdatedAt = now.UTC()
	return nil
}

// Reschedule replaces both dates, keeping the start<=end invariant.
func (e *Event) Reschedule(start, end time.Time, now time.Time) error {
	start = NormalizeDay(start)
	end = NormalizeDay(end)
	if start.After(end) {
		return ErrInvalidDateRange
	}
	e.Start = start
	e.End = end
	e.UpdatedAt = now.UTC()
	return nil
}

// UpdateNotes replaces the free-text notes.
func (e *Event) UpdateNotes(notes string, now time.Time) {
	e.Notes = strings.TrimSpace(notes)
	e.UpdatedAt = now.UTC()
}

// DurationDays returns the inclusive day count covered by the event.
func (e Event) DurationDays() int {
	return DaysBetween(e.Start, e.End) + 1
}

// Overlaps reports whether two events share any calendar day. An event
// ending on day N overlaps another starting on day N.
func (e Event) Overlaps(other Event) bool {
	return !e.Start.After(other.End) && !other.Start.After(e.End)
}

// Duration bucket thresholds in inclusive days.
const (
	shortDurationMaxDays  = 3
	mediumDurationMaxDays = 14
)

// DurationClass buckets the event length for display styling.
func (e Event) DurationClass() DurationClass {
	switch days := e.DurationDays(); {
	case days <= shortDurationMaxDays:
		return DurationShort
	case days <= mediumDurationMaxDays:
		return DurationMedium
	default:
		return DurationLong
	}
}
