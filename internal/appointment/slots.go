package appointment

import (
	"fmt"
	"sort"
)

// DefaultSlotMinutes is the fixed appointment grid used when no increment is
// configured.
const DefaultSlotMinutes = 30

// GenerateSlots expands a window into candidate slot start times:
// start, start+increment, ... generated strictly while current < end.
// The last slot may therefore end at or past the window end; callers that
// want fully contained slots must shrink the window, not this function.
func GenerateSlots(start, end TimeOfDay, incrementMinutes int) ([]TimeOfDay, error) {
	if start >= end {
		return nil, fmt.Errorf("window start %s is not before end %s", start, end)
	}
	if incrementMinutes <= 0 {
		return nil, fmt.Errorf("slot increment must be positive, got %d", incrementMinutes)
	}
	if TimeOfDay(incrementMinutes) > end-start {
		return nil, fmt.Errorf("slot increment %dm exceeds window %s-%s", incrementMinutes, start, end)
	}

	var slots []TimeOfDay
	for cur := start; cur < end; cur += TimeOfDay(incrementMinutes) {
		slots = append(slots, cur)
	}
	return slots, nil
}

// SlotsForDay selects the active windows matching day, expands each and
// returns the deduplicated union in ascending order. Overlapping windows are
// legal in the model; dedup here keeps duplicates out of API responses.
func SlotsForDay(windows []AvailabilityWindow, day Weekday, incrementMinutes int) []TimeOfDay {
	seen := make(map[TimeOfDay]bool)
	var slots []TimeOfDay

	for _, w := range windows {
		if !w.Active || w.DayOfWeek != day {
			continue
		}
		generated, err := GenerateSlots(w.StartTime, w.EndTime, incrementMinutes)
		if err != nil {
			// Invalid windows are rejected at write time; skip rather than
			// fail the whole listing if one slips through.
			continue
		}
		for _, s := range generated {
			if !seen[s] {
				seen[s] = true
				slots = append(slots, s)
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}
