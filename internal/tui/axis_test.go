package tui

import (
	"testing"
	"time"

	"github.com/hylla/strand/internal/domain"
)

func axisRange(t *testing.T) domain.TimeRange {
	t.Helper()
	start, err := domain.ParseDay("2026-01-20")
	if err != nil {
		t.Fatalf("ParseDay() error = %v", err)
	}
	end, err := domain.ParseDay("2026-02-10")
	if err != nil {
		t.Fatalf("ParseDay() error = %v", err)
	}
	return domain.TimeRange{Start: start, End: end}
}

func markerDays(markers []AxisMarker) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		out = append(out, domain.FormatDay(m.Day))
	}
	return out
}

func TestAxisMarkersLowZoomShowsMonthsOnly(t *testing.T) {
	markers := AxisMarkers(axisRange(t), 0.3)

	want := []string{"2026-01-20", "2026-02-01"}
	got := markerDays(markers)
	if len(got) != len(want) {
		t.Fatalf("AxisMarkers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AxisMarkers() = %v, want %v", got, want)
		}
	}
	if markers[0].IsMonth {
		t.Fatal("range start is not a month boundary")
	}
	if !markers[1].IsMonth || markers[1].Label != "Feb 2026" {
		t.Fatalf("month marker = %+v", markers[1])
	}
}

func TestAxisMarkersMediumZoomAddsFifths(t *testing.T) {
	markers := AxisMarkers(axisRange(t), 1.0)

	want := []string{"2026-01-20", "2026-01-25", "2026-01-30", "2026-02-01", "2026-02-05", "2026-02-10"}
	got := markerDays(markers)
	if len(got) != len(want) {
		t.Fatalf("AxisMarkers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AxisMarkers() = %v, want %v", got, want)
		}
	}
	for _, m := range markers {
		if m.Day.Day() == 25 && m.Label != "25" {
			t.Fatalf("fifth-day marker label = %q, want 25", m.Label)
		}
	}
}

func TestAxisMarkersHighZoomLabelsEveryTick(t *testing.T) {
	markers := AxisMarkers(axisRange(t), 2.0)
	if len(markers) == 0 {
		t.Fatal("expected markers")
	}
	for _, m := range markers {
		if m.Label == "" {
			t.Fatalf("unlabeled marker at %s at high zoom", domain.FormatDay(m.Day))
		}
	}
}

func TestAxisMarkersThresholdBoundary(t *testing.T) {
	// Exactly at the medium threshold the fifth-day ticks appear.
	below := AxisMarkers(axisRange(t), 0.49)
	at := AxisMarkers(axisRange(t), 0.5)
	if len(at) <= len(below) {
		t.Fatalf("expected more markers at threshold: below=%d at=%d", len(below), len(at))
	}
}

func TestAxisMarkersSingleDayRange(t *testing.T) {
	day := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	markers := AxisMarkers(domain.TimeRange{Start: day, End: day}, 1.0)
	if len(markers) != 1 || !markers[0].Day.Equal(day) {
		t.Fatalf("AxisMarkers() = %v", markerDays(markers))
	}
}
