package schedule

import (
	"fmt"
	"strings"

	"deskhub/shared/failure"
)

// Interval is the half-open time range [Start, End) within one day.
type Interval struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// NewInterval validates a bookable range: both ends on the grid and End after Start.
func NewInterval(start, end Clock) (Interval, error) {
	if !start.Valid() || end < 0 || int(end) > minutesPerDay {
		return Interval{}, failure.Validation("time of day is out of range") // nolint:wrapcheck
	}

	if !start.OnGrid() || !end.OnGrid() {
		return Interval{}, failure.Validation( // nolint:wrapcheck
			fmt.Sprintf("start and end time must be on a %d minute boundary, got %s-%s", SlotMinutes, start, end))
	}

	if end <= start {
		return Interval{}, failure.Validation( // nolint:wrapcheck
			fmt.Sprintf("end time %s must be after start time %s", end, start))
	}

	return Interval{Start: start, End: end}, nil
}

// ParseInterval parses and validates an HH:MM pair.
func ParseInterval(start, end string) (Interval, error) {
	startClock, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}

	endClock, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}

	return NewInterval(startClock, endClock)
}

// Hours is the duration of the interval, always a positive multiple of 0.5 for grid intervals.
func (i Interval) Hours() float64 {
	return i.Start.Hours(i.End)
}

// Minutes is the duration of the interval in minutes.
func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && other.End <= i.End
}

// Covers reports whether the instant c falls in [Start, End).
func (i Interval) Covers(c Clock) bool {
	return i.Start <= c && c < i.End
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Overlaps applies the half-open rule, so touching intervals do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// HasConflict reports whether requested overlaps any candidate.
func HasConflict(requested Interval, candidates []Interval) bool {
	for _, candidate := range candidates {
		if Overlaps(requested, candidate) {
			return true
		}
	}

	return false
}

// FindConflicts returns every candidate overlapping requested, in candidate order.
func FindConflicts(requested Interval, candidates []Interval) []Interval {
	var conflicts []Interval

	for _, candidate := range candidates {
		if Overlaps(requested, candidate) {
			conflicts = append(conflicts, candidate)
		}
	}

	return conflicts
}

// ConflictError builds the conflict failure naming the overlapping slots.
func ConflictError(requested Interval, conflicts []Interval) error {
	taken := make([]string, 0, len(conflicts))
	for _, conflict := range conflicts {
		taken = append(taken, conflict.String())
	}

	return failure.Conflict(fmt.Sprintf( // nolint:wrapcheck
		"requested time %s overlaps existing booking(s) %s", requested, strings.Join(taken, ", ")))
}
