package shuttle

import (
	"math"
	"strings"

	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/utils"
)

// DisplayKind says why a run is (or is not) featured on the board.
type DisplayKind string

const (
	DisplayPreview    DisplayKind = "preview"
	DisplayNext       DisplayKind = "next"
	DisplayFirstOfDay DisplayKind = "first_of_day"
	DisplayNoMoreRuns DisplayKind = "no_more_runs"
	DisplayNoRuns     DisplayKind = "no_runs"
)

// DisplayRun is the run featured in the board header.
type DisplayRun struct {
	Kind DisplayKind    `json:"kind"`
	Run  *models.BusRun `json:"-"`
	// MinutesUntil is set for DisplayNext only.
	MinutesUntil *int `json:"minutesUntil,omitempty"`
}

// SelectDisplayRun picks the featured run. A preview always wins. For a day
// other than today it is the first run of that day; today it is the first
// run departing strictly after now.
func SelectDisplayRun(runs []models.BusRun, now float64, isToday bool, preview *models.BusRun) DisplayRun {
	if preview != nil {
		return DisplayRun{Kind: DisplayPreview, Run: preview}
	}
	if len(runs) == 0 {
		return DisplayRun{Kind: DisplayNoRuns}
	}
	if !isToday {
		first := runs[0]
		return DisplayRun{Kind: DisplayFirstOfDay, Run: &first}
	}
	for _, r := range runs {
		if float64(r.DepartureTime) > now {
			next := r
			until := int(math.Ceil(float64(r.DepartureTime) - now))
			return DisplayRun{Kind: DisplayNext, Run: &next, MinutesUntil: &until}
		}
	}
	return DisplayRun{Kind: DisplayNoMoreRuns}
}

// StationTime is the scheduled time a run reaches a station.
type StationTime struct {
	StationID string `json:"stationId"`
	Minutes   int    `json:"minutes"`
	Clock     string `json:"clock"`
}

// StationTimes returns departure + distance for every station of topo. Times
// past midnight are not wrapped.
func StationTimes(run models.BusRun, topo models.Topology) []StationTime {
	times := make([]StationTime, len(topo.Stations))
	for i, s := range topo.Stations {
		m := run.DepartureTime + s.DistanceFromStart
		times[i] = StationTime{StationID: s.ID, Minutes: m, Clock: utils.MinutesToTime(m)}
	}
	return times
}

// TagLabel is the label printed next to a run: known timetable colours are
// always upper-cased, any other tag is shown verbatim, and an untagged run
// gets "" so the caller can show its localized "standard" label.
func TagLabel(run models.BusRun) string {
	tag, ok := run.Tag()
	if !ok {
		return ""
	}
	if models.KnownTag(tag) {
		return strings.ToUpper(tag)
	}
	return tag
}

// ScheduleRow is one line of the day's timetable.
type ScheduleRow struct {
	Run       models.BusRun `json:"-"`
	RunID     string        `json:"runId"`
	Departure string        `json:"departure"`
	Past      bool          `json:"past"`
	Featured  bool          `json:"featured"`
	Tag       string        `json:"tag,omitempty"`
	TagLabel  string        `json:"tagLabel,omitempty"`
}

// ScheduleList is the day's timetable as shown below the route.
type ScheduleList struct {
	Rows    []ScheduleRow `json:"rows"`
	ShowAll bool          `json:"showAll"`
	// HiddenPast counts runs filtered out because they already left.
	HiddenPast int  `json:"hiddenPast"`
	Live       bool `json:"live"`
}

// UpcomingRuns builds the timetable rows. When live and showAll is false only
// runs departing at or after now are listed; otherwise every run is. A row is
// past only in the live view. featuredID marks the run shown in the header.
func UpcomingRuns(runs []models.BusRun, now float64, live bool, showAll bool, featuredID string) ScheduleList {
	list := ScheduleList{Rows: []ScheduleRow{}, ShowAll: showAll || !live, Live: live}
	for _, r := range runs {
		past := live && float64(r.DepartureTime) < now
		if live && !list.ShowAll && float64(r.DepartureTime) < now {
			list.HiddenPast++
			continue
		}
		tag, _ := r.Tag()
		list.Rows = append(list.Rows, ScheduleRow{
			Run:       r,
			RunID:     r.ID,
			Departure: utils.MinutesToTime(r.DepartureTime),
			Past:      past,
			Featured:  featuredID != "" && r.ID == featuredID,
			Tag:       tag,
			TagLabel:  TagLabel(r),
		})
	}
	return list
}
