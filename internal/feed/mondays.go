package feed

import (
	"fmt"
	"time"
)

// dateLayout is the ISO date format the overview endpoint expects.
const dateLayout = "2006-01-02"

// LastMondayUTC returns the Monday of the previous week relative to the
// reference time, truncated to midnight UTC. Snapshots for the current week
// are often incomplete, so ingestion defaults to the week before.
func LastMondayUTC(reference time.Time) time.Time {
	ref := reference.UTC()
	daysSinceMonday := (int(ref.Weekday()) + 6) % 7
	monday := ref.AddDate(0, 0, -(daysSinceMonday + 7))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// Mondays returns the ISO dates stepping a week at a time from start to end
// inclusive. The start date anchors the cadence; it does not need to be a
// Monday itself.
func Mondays(startISO, endISO string) ([]string, error) {
	start, err := time.Parse(dateLayout, startISO)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", startISO, err)
	}
	end, err := time.Parse(dateLayout, endISO)
	if err != nil {
		return nil, fmt.Errorf("parse end date %q: %w", endISO, err)
	}

	var dates []string
	for dt := start; !dt.After(end); dt = dt.AddDate(0, 0, 7) {
		dates = append(dates, dt.Format(dateLayout))
	}
	return dates, nil
}
