package domain

import "sort"

// Lane is one display row of mutually non-overlapping events, ordered
// by start date.
type Lane []Event

// AssignLanes packs events into the minimum number of display lanes.
// Events are sorted by start date (stable, so input order breaks ties)
// and each one is placed into the first lane whose most recent event
// ends strictly before the candidate's start; if none fits, a new lane
// is appended. For interval inputs this first-fit policy uses exactly
// as many lanes as the maximum number of events alive on a single day.
func AssignLanes(events []Event) []Lane {
	if len(events) == 0 {
		return nil
	}
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var lanes []Lane
	for _, event := range sorted {
		placed := false
		for i, lane := range lanes {
			last := lane[len(lane)-1]
			if last.End.Before(event.Start) {
				lanes[i] = append(lanes[i], event)
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, Lane{event})
		}
	}
	return lanes
}

// MaxConcurrent returns the largest number of events whose day ranges
// all include one shared calendar day. AssignLanes never uses more
// lanes than this. Peak overlap always lands on some event's start day,
// so checking those days is enough.
func MaxConcurrent(events []Event) int {
	best := 0
	for _, event := range events {
		count := 0
		for _, other := range events {
			if !other.Start.After(event.Start) && !other.End.Before(event.Start) {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	return best
}
