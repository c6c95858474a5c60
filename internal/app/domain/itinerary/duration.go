package itinerary

import (
	"math"
	"time"
)

const dayMillis = 24 * 60 * 60 * 1000

// TripDuration returns the number of whole days between two calendar dates,
// rounded up. Both inputs are treated as date-only values; identical dates
// yield 0.
func TripDuration(start, end time.Time) int {
	diff := end.Sub(start).Milliseconds()
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(dayMillis)))
}

// PlannedDays is the number of itinerary days generated for a trip. A trip
// with the same start and end date still gets one day of activities.
func PlannedDays(start, end time.Time) int {
	if d := TripDuration(start, end); d > 0 {
		return d
	}
	return 1
}
