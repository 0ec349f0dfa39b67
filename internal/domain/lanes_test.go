package domain

import "testing"

func TestAssignLanesEmptyInput(t *testing.T) {
	if lanes := AssignLanes(nil); lanes != nil {
		t.Fatalf("AssignLanes(nil) = %v, want nil", lanes)
	}
}

func TestAssignLanesSpansReuseFreedLanes(t *testing.T) {
	// A and B overlap on Jan 3-5 so B needs its own lane; C starts after
	// A ends, so first-fit puts it back into lane 0 even though B's lane
	// is also free.
	a := mustEvent(t, "a", "A", "2024-01-01", "2024-01-05")
	b := mustEvent(t, "b", "B", "2024-01-03", "2024-01-06")
	c := mustEvent(t, "c", "C", "2024-01-10", "2024-01-12")

	lanes := AssignLanes([]Event{b, c, a})
	if len(lanes) != 2 {
		t.Fatalf("AssignLanes() lanes = %d, want 2", len(lanes))
	}
	if got := laneIDs(lanes[0]); got != "a,c" {
		t.Fatalf("lane 0 = %s, want a,c", got)
	}
	if got := laneIDs(lanes[1]); got != "b" {
		t.Fatalf("lane 1 = %s, want b", got)
	}
}

func TestAssignLanesTouchingDaysShareNoLane(t *testing.T) {
	// Ending on day N and starting on day N counts as overlap.
	a := mustEvent(t, "a", "A", "2024-01-01", "2024-01-05")
	b := mustEvent(t, "b", "B", "2024-01-05", "2024-01-09")

	lanes := AssignLanes([]Event{a, b})
	if len(lanes) != 2 {
		t.Fatalf("AssignLanes() lanes = %d, want 2", len(lanes))
	}
}

func TestAssignLanesSingleDayEvents(t *testing.T) {
	a := mustEvent(t, "a", "A", "2024-01-01", "2024-01-01")
	b := mustEvent(t, "b", "B", "2024-01-01", "2024-01-01")
	c := mustEvent(t, "c", "C", "2024-01-02", "2024-01-02")

	lanes := AssignLanes([]Event{a, b, c})
	if len(lanes) != 2 {
		t.Fatalf("AssignLanes() lanes = %d, want 2", len(lanes))
	}
	if got := laneIDs(lanes[0]); got != "a,c" {
		t.Fatalf("lane 0 = %s, want a,c", got)
	}
}

func TestAssignLanesStableTieOrder(t *testing.T) {
	// Equal start dates keep input order.
	first := mustEvent(t, "first", "F", "2024-01-01", "2024-01-03")
	second := mustEvent(t, "second", "S", "2024-01-01", "2024-01-03")

	lanes := AssignLanes([]Event{first, second})
	if len(lanes) != 2 {
		t.Fatalf("AssignLanes() lanes = %d, want 2", len(lanes))
	}
	if lanes[0][0].ID != "first" || lanes[1][0].ID != "second" {
		t.Fatalf("AssignLanes() tie order = %s, %s", lanes[0][0].ID, lanes[1][0].ID)
	}
}

func TestAssignLanesNoIntraLaneOverlap(t *testing.T) {
	events := []Event{
		mustEvent(t, "a", "A", "2024-01-01", "2024-01-10"),
		mustEvent(t, "b", "B", "2024-01-02", "2024-01-04"),
		mustEvent(t, "c", "C", "2024-01-05", "2024-01-06"),
		mustEvent(t, "d", "D", "2024-01-05", "2024-01-20"),
		mustEvent(t, "e", "E", "2024-01-11", "2024-01-12"),
		mustEvent(t, "f", "F", "2024-01-21", "2024-01-21"),
		mustEvent(t, "g", "G", "2024-02-01", "2024-02-28"),
	}

	lanes := AssignLanes(events)

	seen := map[string]int{}
	for _, lane := range lanes {
		for i, event := range lane {
			seen[event.ID]++
			for _, other := range lane[i+1:] {
				if event.Overlaps(other) {
					t.Fatalf("events %s and %s overlap in one lane", event.ID, other.ID)
				}
			}
		}
	}
	if len(seen) != len(events) {
		t.Fatalf("lanes cover %d events, want %d", len(seen), len(events))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("event %s placed %d times", id, count)
		}
	}
}

func TestAssignLanesUsesMinimumLaneCount(t *testing.T) {
	cases := []struct {
		name   string
		events []Event
	}{
		{
			"triple overlap",
			[]Event{
				mustEvent(t, "a", "A", "2024-01-01", "2024-01-10"),
				mustEvent(t, "b", "B", "2024-01-02", "2024-01-08"),
				mustEvent(t, "c", "C", "2024-01-03", "2024-01-05"),
				mustEvent(t, "d", "D", "2024-01-11", "2024-01-12"),
			},
		},
		{
			"staircase",
			[]Event{
				mustEvent(t, "a", "A", "2024-01-01", "2024-01-03"),
				mustEvent(t, "b", "B", "2024-01-03", "2024-01-05"),
				mustEvent(t, "c", "C", "2024-01-05", "2024-01-07"),
				mustEvent(t, "d", "D", "2024-01-07", "2024-01-09"),
			},
		},
		{
			"disjoint chain",
			[]Event{
				mustEvent(t, "a", "A", "2024-01-01", "2024-01-02"),
				mustEvent(t, "b", "B", "2024-01-03", "2024-01-04"),
				mustEvent(t, "c", "C", "2024-01-05", "2024-01-06"),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lanes := AssignLanes(tc.events)
			if want := MaxConcurrent(tc.events); len(lanes) != want {
				t.Fatalf("AssignLanes() lanes = %d, want %d", len(lanes), want)
			}
		})
	}
}

func laneIDs(lane Lane) string {
	out := ""
	for i, event := range lane {
		if i > 0 {
			out += ","
		}
		out += event.ID
	}
	return out
}
