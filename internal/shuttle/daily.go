// Package shuttle turns the static weekly timetable and the current time into
// the live state of the board: the day's runs, buses on the route, station
// countdowns and the day or night topology.
package shuttle

import (
	"slices"
	"time"

	"shuttle.campusbus.org/internal/models"
)

// RunsForDay returns the runs of sched active on day, ordered by departure.
// Runs departing in the same minute keep their timetable order and are never
// merged.
func RunsForDay(sched models.DirectionSchedule, day time.Weekday) []models.BusRun {
	runs := make([]models.BusRun, 0, len(sched.Runs))
	for _, r := range sched.Runs {
		if r.ActiveDays.Contains(day) {
			runs = append(runs, r)
		}
	}
	slices.SortStableFunc(runs, func(a, b models.BusRun) int {
		return a.DepartureTime - b.DepartureTime
	})
	return runs
}

// SelectMode picks the topology for the viewed day. Any day other than today
// uses the day route. Today the next departure decides; once no departures
// remain the current time is compared to the cutoff instead.
func SelectMode(isToday bool, runs []models.BusRun, now float64, cutoff int) models.Mode {
	if !isToday {
		return models.DayMode
	}
	for _, r := range runs {
		if float64(r.DepartureTime) > now {
			if r.DepartureTime >= cutoff {
				return models.NightMode
			}
			return models.DayMode
		}
	}
	if now >= float64(cutoff) {
		return models.NightMode
	}
	return models.DayMode
}
