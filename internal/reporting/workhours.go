package reporting

import (
	"sort"
	"time"

	"attendance-platform/internal/attendance"
	"attendance-platform/internal/orgtime"
)

// ComputeWorkedHours derives worked time from a set of access-log entries.
//
// Pairing is greedy left to right over the timestamp-sorted entries: a
// check-in immediately followed by a check-out forms a pair and consumes
// both; any entry that cannot pair this way counts as incomplete and the
// scan advances by one. Auto-generated closers pair like any other
// check-out.
//
// Pure: the input slice is not mutated, and the same entries always yield
// the same output regardless of input order.
func ComputeWorkedHours(entries []attendance.Entry, zone orgtime.Zone) WorkedHours {
	out := WorkedHours{PerDay: []DayTotal{}}
	if len(entries) == 0 {
		return out
	}

	sorted := make([]attendance.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	perDay := map[string]time.Duration{}

	i := 0
	for i < len(sorted) {
		if sorted[i].Kind == attendance.KindCheckIn && i+1 < len(sorted) &&
			sorted[i+1].Kind == attendance.KindCheckOut {
			in, outEntry := sorted[i], sorted[i+1]
			d := outEntry.Timestamp.Sub(in.Timestamp)

			day := in.Timestamp.In(zone.Location()).Format("2006-01-02")
			perDay[day] += d
			out.Total += d
			out.PairCount++
			i += 2
			continue
		}
		out.IncompleteCount++
		i++
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		out.PerDay = append(out.PerDay, DayTotal{Day: day, Duration: perDay[day]})
	}
	return out
}
