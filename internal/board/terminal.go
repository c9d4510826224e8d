package board

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rodaine/table"
	"shuttle.campusbus.org/internal/i18n"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/shuttle"
	"shuttle.campusbus.org/internal/utils"
)

const clearScreen = "\033[H\033[2J"

// Terminal renders frames as plain-text tables.
type Terminal struct {
	out   io.Writer
	tr    *i18n.Translator
	clear bool

	mu         sync.Mutex
	last       *shuttle.View
	lastState  State
	lastMinute int
}

// NewTerminal creates a Terminal writing to out. With clear set, every redraw
// starts by clearing the screen.
func NewTerminal(out io.Writer, tr *i18n.Translator, clear bool) *Terminal {
	return &Terminal{out: out, tr: tr, clear: clear, lastMinute: -1}
}

// Render redraws on every computed view. Clock frames redraw the last view
// only when the minute changes.
func (t *Terminal) Render(f Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if f.Err != nil {
		fmt.Fprintf(t.out, "error: %v\n", f.Err)
		return
	}
	if f.View != nil {
		t.last = f.View
		t.lastState = f.State
	} else if t.last == nil || utils.MinutesOf(f.Now) == t.lastMinute {
		return
	}
	t.lastMinute = utils.MinutesOf(f.Now)
	t.draw(f.Now, t.lastState, *t.last)
}

func (t *Terminal) draw(now time.Time, st State, v shuttle.View) {
	lang := t.tr.Normalize(st.Lang)
	tr := func(key string) string { return t.tr.T(lang, key) }

	if t.clear {
		fmt.Fprint(t.out, clearScreen)
	}
	fmt.Fprintf(t.out, "%s  %s  %s\n", tr("app_title"), now.Format("15:04"), t.tr.DayName(lang, now.Weekday()))

	status := tr("live")
	if v.Preview() {
		status = tr("preview")
	}
	line := []string{tr(v.Direction.LabelKey()), t.tr.FormatDate(lang, dateOf(v, now))}
	if v.IsToday || v.Preview() {
		line = append(line, "["+status+"]")
	}
	if v.Mode == models.NightMode {
		line = append(line, tr("night_route"))
	}
	fmt.Fprintln(t.out, strings.Join(line, "  "))
	fmt.Fprintln(t.out, t.headline(lang, v))
	fmt.Fprintln(t.out)

	stations := table.New("", tr("timetable"), tr("live"), "").WithWriter(t.out)
	for i, s := range v.Topology.Stations {
		scheduled := "-"
		if i < len(v.DisplayTimes) {
			scheduled = v.DisplayTimes[i].Clock
		}
		stations.AddRow(tr(s.ShortNameKey()), scheduled, t.countdown(lang, v, i), busMarkers(v, i))
	}
	stations.Print()
	fmt.Fprintln(t.out)

	runs := table.New(tr("timetable"), "", "").WithWriter(t.out)
	for _, row := range v.Schedule.Rows {
		label := row.TagLabel
		if label == "" {
			label = tr("standard")
		}
		state := ""
		switch {
		case row.Featured:
			state = "*"
		case row.Past:
			state = tr("departed")
		}
		runs.AddRow(row.Departure, label, state)
	}
	runs.Print()
	if v.Schedule.HiddenPast > 0 {
		fmt.Fprintf(t.out, "(%d) %s\n", v.Schedule.HiddenPast, tr("view_past"))
	}
	if len(v.Schedule.Rows) == 0 {
		fmt.Fprintln(t.out, tr("no_buses_msg"))
	}

	fmt.Fprintln(t.out, t.tr.Translate(lang, "displaying_runs", map[string]any{
		"count": v.RunCount,
		"date":  t.tr.FormatDate(lang, dateOf(v, now)),
	}))
}

func (t *Terminal) headline(lang string, v shuttle.View) string {
	d := v.Display
	switch d.Kind {
	case shuttle.DisplayPreview:
		return fmt.Sprintf("%s: %s", t.tr.T(lang, "selected_run"), utils.MinutesToTime(d.Run.DepartureTime))
	case shuttle.DisplayNext:
		return fmt.Sprintf("%s: %s  %s", t.tr.T(lang, "next_departure"), utils.MinutesToTime(d.Run.DepartureTime),
			t.tr.Translate(lang, "departs_in", map[string]any{"minutes": *d.MinutesUntil}))
	case shuttle.DisplayFirstOfDay:
		return fmt.Sprintf("%s: %s", t.tr.T(lang, "next_departure"), utils.MinutesToTime(d.Run.DepartureTime))
	case shuttle.DisplayNoMoreRuns:
		return t.tr.T(lang, "no_more_buses")
	default:
		return t.tr.T(lang, "no_runs")
	}
}

func (t *Terminal) countdown(lang string, v shuttle.View, i int) string {
	if i >= len(v.Projection.Arrivals) || v.Projection.Arrivals[i].Countdown == nil {
		return ""
	}
	c := v.Projection.Arrivals[i].Countdown
	text := t.tr.Translate(lang, "countdown_min", map[string]any{"minutes": c.Minutes})
	if c.Arriving {
		text = t.tr.T(lang, "arriving_in")
	}
	if c.Urgent {
		text = "! " + text
	}
	return text
}

// busMarkers draws the buses on the segment that starts at station i.
func busMarkers(v shuttle.View, i int) string {
	var marks []string
	for _, p := range v.Projection.Placements {
		if p.Segment != i {
			continue
		}
		mark := fmt.Sprintf("bus %s %d%%", p.RunID, int(p.Fraction*100))
		if p.AtTerminus && p.Segment == len(v.Topology.Stations)-1 {
			mark = "bus " + p.RunID + " @"
		}
		marks = append(marks, mark)
	}
	return strings.Join(marks, ", ")
}

func dateOf(v shuttle.View, now time.Time) time.Time {
	d, err := time.ParseInLocation("2006-01-02", v.Date, now.Location())
	if err != nil {
		return now
	}
	return d
}
