package schedule

import (
	"fmt"

	"deskhub/shared/failure"
)

// Slot is one bookable grid step, flagged by whether its start instant is free.
type Slot struct {
	Time      Clock `json:"time"`
	Available bool  `json:"available"`
}

// GenerateSlots lists every grid mark in [start, end). A slot is unavailable when its start
// instant falls inside [busy.Start, busy.End) of any busy interval.
func GenerateSlots(start, end Clock, busy []Interval) ([]Slot, error) {
	if end <= start {
		return nil, failure.Validation( // nolint:wrapcheck
			fmt.Sprintf("operating end %s must be after operating start %s", end, start))
	}

	if !start.OnGrid() || !end.OnGrid() {
		return nil, failure.Validation( // nolint:wrapcheck
			fmt.Sprintf("operating hours %s-%s are not on a %d minute boundary", start, end, SlotMinutes))
	}

	slots := make([]Slot, 0, int(end-start)/SlotMinutes)

	for mark := start; mark < end; mark = mark.Add(SlotMinutes) {
		available := true

		for _, interval := range busy {
			if interval.Covers(mark) {
				available = false

				break
			}
		}

		slots = append(slots, Slot{Time: mark, Available: available})
	}

	return slots, nil
}
