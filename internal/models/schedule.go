package models

import (
	"strings"
	"time"
)

// DaySet is a set of weekdays, bit i set for time.Weekday(i).
type DaySet uint8

// Everyday contains all seven weekdays.
const Everyday DaySet = 0x7f

// NewDaySet builds a DaySet from the given weekdays.
func NewDaySet(days ...time.Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			s |= 1 << uint(d)
		}
	}
	return s
}

func (s DaySet) Contains(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s&(1<<uint(d)) != 0
}

func (s DaySet) Empty() bool {
	return s&Everyday == 0
}

// Days returns the members in Sunday..Saturday order.
func (s DaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// Ints returns the members as 0..6 integers, the form used in JSON.
func (s DaySet) Ints() []int {
	days := s.Days()
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

// Station is a stop on the route. Display names come from the localization
// keys short_<id> and name_<id>.
type Station struct {
	ID                string `json:"id"`
	DistanceFromStart int    `json:"distanceFromStart"`
}

// ShortNameKey is the localization key for the station's short label.
func (s Station) ShortNameKey() string {
	return "short_" + s.ID
}

// NameKey is the localization key for the station's full name.
func (s Station) NameKey() string {
	return "name_" + s.ID
}

// Topology is the ordered list of stations for one direction and mode.
type Topology struct {
	Direction Direction `json:"direction"`
	Mode      Mode      `json:"mode"`
	Stations  []Station `json:"stations"`
}

// TotalDuration is the travel time from the first to the last station.
func (t Topology) TotalDuration() int {
	if len(t.Stations) == 0 {
		return 0
	}
	return t.Stations[len(t.Stations)-1].DistanceFromStart
}

// Known colour tags printed on the paper timetable.
const (
	TagRed    = "red"
	TagBlue   = "blue"
	TagGreen  = "green"
	TagOrange = "orange"
)

// KnownTag reports whether tag is one of the timetable colours.
func KnownTag(tag string) bool {
	switch strings.ToLower(tag) {
	case TagRed, TagBlue, TagGreen, TagOrange:
		return true
	}
	return false
}

// BusRun is one scheduled departure from the first station.
type BusRun struct {
	ID            string
	DepartureTime int // minutes since midnight
	ActiveDays    DaySet
	ColorTag      *string
}

// Tag returns the colour tag and whether one is set.
func (r BusRun) Tag() (string, bool) {
	if r.ColorTag == nil || *r.ColorTag == "" {
		return "", false
	}
	return *r.ColorTag, true
}

// DirectionSchedule is the full weekly run list of one direction.
type DirectionSchedule struct {
	Direction Direction
	Runs      []BusRun
}
