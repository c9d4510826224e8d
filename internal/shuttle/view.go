package shuttle

import (
	"errors"
	"fmt"
	"time"

	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/utils"
)

// ErrUnknownRun is returned when a preview names a run that does not operate
// on the viewed day.
var ErrUnknownRun = errors.New("unknown run")

// Source is the read side of the timetable.
type Source interface {
	Schedule(dir models.Direction) (models.DirectionSchedule, error)
	Topology(dir models.Direction, mode models.Mode) (models.Topology, error)
}

// Engine builds board views from a timetable source.
type Engine struct {
	source Source
	cutoff int
}

// NewEngine creates an Engine. cutoff is the night-mode cutoff in minutes since midnight.
func NewEngine(source Source, cutoff int) *Engine {
	return &Engine{source: source, cutoff: cutoff}
}

// Cutoff returns the night-mode cutoff in minutes since midnight.
func (e *Engine) Cutoff() int {
	return e.cutoff
}

// Request is what the rider is looking at.
type Request struct {
	Direction models.Direction
	// Date is the viewed day. The zero value means the day of Now.
	Date         time.Time
	Now          time.Time
	PreviewRunID string
	ShowAll      bool
}

// View is everything the board shows for one Request.
type View struct {
	Direction    models.Direction `json:"direction"`
	Date         string           `json:"date"`
	Weekday      time.Weekday     `json:"weekday"`
	IsToday      bool             `json:"isToday"`
	NowMinutes   int              `json:"nowMinutes"`
	Clock        string           `json:"clock"`
	Mode         models.Mode      `json:"mode"`
	Topology     models.Topology  `json:"topology"`
	Runs         []models.BusRun  `json:"-"`
	RunCount     int              `json:"runCount"`
	Display      DisplayRun       `json:"display"`
	DisplayTimes []StationTime    `json:"displayTimes"`
	Projection   Projection       `json:"projection"`
	Schedule     ScheduleList     `json:"schedule"`
}

// Preview reports whether the view is pinned to a run.
func (v View) Preview() bool {
	return v.Display.Kind == DisplayPreview
}

// Build computes the view for req. It is a pure function of req and the timetable.
func (e *Engine) Build(req Request) (View, error) {
	if !req.Direction.Valid() {
		return View{}, fmt.Errorf("%w: %q", models.ErrInvalidDirection, req.Direction)
	}
	date := req.Date
	if date.IsZero() {
		date = req.Now
	}
	isToday := utils.SameDay(req.Now, date)
	nowMinutes := utils.MinutesOf(req.Now)
	now := float64(nowMinutes)

	sched, err := e.source.Schedule(req.Direction)
	if err != nil {
		return View{}, err
	}
	runs := RunsForDay(sched, date.Weekday())

	var preview *models.BusRun
	if req.PreviewRunID != "" {
		for i := range runs {
			if runs[i].ID == req.PreviewRunID {
				pinned := runs[i]
				preview = &pinned
				break
			}
		}
		if preview == nil {
			return View{}, fmt.Errorf("%w %q on %s", ErrUnknownRun, req.PreviewRunID, date.Weekday())
		}
	}

	mode := SelectMode(isToday, runs, now, e.cutoff)
	topo, err := e.source.Topology(req.Direction, mode)
	if err != nil {
		return View{}, err
	}

	display := SelectDisplayRun(runs, now, isToday, preview)
	projection := Project(ProjectionInput{
		Runs:     runs,
		Now:      now,
		Topology: topo,
		IsToday:  isToday,
		Preview:  preview,
	})

	view := View{
		Direction:    req.Direction,
		Date:         date.Format("2006-01-02"),
		Weekday:      date.Weekday(),
		IsToday:      isToday,
		NowMinutes:   nowMinutes,
		Clock:        req.Now.Format("15:04"),
		Mode:         mode,
		Topology:     topo,
		Runs:         runs,
		RunCount:     len(runs),
		Display:      display,
		DisplayTimes: []StationTime{},
		Projection:   projection,
	}
	featured := ""
	if display.Run != nil {
		view.DisplayTimes = StationTimes(*display.Run, topo)
		featured = display.Run.ID
	}
	view.Schedule = UpcomingRuns(runs, now, isToday, req.ShowAll, featured)

	return view, nil
}
