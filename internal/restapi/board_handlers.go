package restapi

import (
	"net/http"
	"time"

	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/shuttle"
	"shuttle.campusbus.org/internal/utils"
)

type stationEntry struct {
	ID                string `json:"id"`
	ShortName         string `json:"shortName"`
	Name              string `json:"name"`
	DistanceFromStart int    `json:"distanceFromStart"`
}

type stationsEntry struct {
	Direction      models.Direction `json:"direction"`
	DirectionLabel string           `json:"directionLabel"`
	Mode           models.Mode      `json:"mode"`
	TotalDuration  int              `json:"totalDuration"`
	Stations       []stationEntry   `json:"stations"`
}

type scheduleRowEntry struct {
	shuttle.ScheduleRow
	Label      string `json:"label"`
	ActiveDays []int  `json:"activeDays"`
}

type scheduleEntry struct {
	Direction  models.Direction   `json:"direction"`
	Date       string             `json:"date"`
	DateLabel  string             `json:"dateLabel"`
	Weekday    int                `json:"weekday"`
	IsToday    bool               `json:"isToday"`
	RunCount   int                `json:"runCount"`
	Summary    string             `json:"summary"`
	ShowAll    bool               `json:"showAll"`
	HiddenPast int                `json:"hiddenPast"`
	Live       bool               `json:"live"`
	Rows       []scheduleRowEntry `json:"rows"`
}

type displayEntry struct {
	Kind         shuttle.DisplayKind `json:"kind"`
	Headline     string              `json:"headline"`
	RunID        string              `json:"runId,omitempty"`
	Departure    string              `json:"departure,omitempty"`
	MinutesUntil *int                `json:"minutesUntil,omitempty"`
	Tag          string              `json:"tagLabel,omitempty"`
}

type liveStationEntry struct {
	stationEntry
	Scheduled     string            `json:"scheduled,omitempty"`
	Countdown     *models.Countdown `json:"countdown"`
	CountdownText string            `json:"countdownText,omitempty"`
}

type liveEntry struct {
	Direction  models.Direction      `json:"direction"`
	Date       string                `json:"date"`
	IsToday    bool                  `json:"isToday"`
	Clock      string                `json:"clock"`
	NowMinutes int                   `json:"nowMinutes"`
	Mode       models.Mode           `json:"mode"`
	Live       bool                  `json:"live"`
	Preview    bool                  `json:"preview"`
	Display    displayEntry          `json:"display"`
	Stations   []liveStationEntry    `json:"stations"`
	Active     []models.LiveRunState `json:"active"`
	Placements []models.BusPlacement `json:"placements"`
}

// buildView runs the engine for the request and records the build.
func (api *RestAPI) buildView(w http.ResponseWriter, r *http.Request) (shuttle.View, string, bool) {
	req, lang, ok := api.parseViewRequest(w, r)
	if !ok {
		return shuttle.View{}, "", false
	}
	started := time.Now()
	view, err := api.Engine.Build(req)
	if err != nil {
		api.sendViewError(w, r, err)
		return shuttle.View{}, "", false
	}
	api.Metrics.ObserveView(string(view.Direction), len(view.Projection.Active), time.Since(started))
	return view, lang, true
}

func (api *RestAPI) station(lang string, s models.Station) stationEntry {
	return stationEntry{
		ID:                s.ID,
		ShortName:         api.Translator.T(lang, s.ShortNameKey()),
		Name:              api.Translator.T(lang, s.NameKey()),
		DistanceFromStart: s.DistanceFromStart,
	}
}

func (api *RestAPI) stationsHandler(w http.ResponseWriter, r *http.Request) {
	view, lang, ok := api.buildView(w, r)
	if !ok {
		return
	}
	entry := stationsEntry{
		Direction:      view.Direction,
		DirectionLabel: api.Translator.T(lang, view.Direction.LabelKey()),
		Mode:           view.Mode,
		TotalDuration:  view.Topology.TotalDuration(),
		Stations:       make([]stationEntry, len(view.Topology.Stations)),
	}
	for i, s := range view.Topology.Stations {
		entry.Stations[i] = api.station(lang, s)
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.Clock))
}

func (api *RestAPI) scheduleHandler(w http.ResponseWriter, r *http.Request) {
	view, lang, ok := api.buildView(w, r)
	if !ok {
		return
	}
	date, _ := utils.ParseServiceDate(view.Date, api.Clock.Now().Location())
	dateLabel := api.Translator.FormatDate(lang, date)

	entry := scheduleEntry{
		Direction:  view.Direction,
		Date:       view.Date,
		DateLabel:  dateLabel,
		Weekday:    int(view.Weekday),
		IsToday:    view.IsToday,
		RunCount:   view.RunCount,
		Summary:    api.Translator.Translate(lang, "displaying_runs", map[string]any{"count": view.RunCount, "date": dateLabel}),
		ShowAll:    view.Schedule.ShowAll,
		HiddenPast: view.Schedule.HiddenPast,
		Live:       view.Schedule.Live,
		Rows:       make([]scheduleRowEntry, len(view.Schedule.Rows)),
	}
	for i, row := range view.Schedule.Rows {
		label := row.TagLabel
		if label == "" {
			label = api.Translator.T(lang, "standard")
		}
		entry.Rows[i] = scheduleRowEntry{ScheduleRow: row, Label: label, ActiveDays: row.Run.ActiveDays.Ints()}
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.Clock))
}

func (api *RestAPI) liveHandler(w http.ResponseWriter, r *http.Request) {
	view, lang, ok := api.buildView(w, r)
	if !ok {
		return
	}

	entry := liveEntry{
		Direction:  view.Direction,
		Date:       view.Date,
		IsToday:    view.IsToday,
		Clock:      view.Clock,
		NowMinutes: view.NowMinutes,
		Mode:       view.Mode,
		Live:       view.Projection.Live,
		Preview:    view.Preview(),
		Display:    api.display(lang, view.Display),
		Stations:   make([]liveStationEntry, len(view.Topology.Stations)),
		Active:     view.Projection.Active,
		Placements: view.Projection.Placements,
	}
	for i, s := range view.Topology.Stations {
		st := liveStationEntry{stationEntry: api.station(lang, s)}
		if i < len(view.DisplayTimes) {
			st.Scheduled = view.DisplayTimes[i].Clock
		}
		if i < len(view.Projection.Arrivals) && view.Projection.Arrivals[i].Countdown != nil {
			c := view.Projection.Arrivals[i].Countdown
			st.Countdown = c
			st.CountdownText = api.Translator.Translate(lang, "countdown_min", map[string]any{"minutes": c.Minutes})
			if c.Arriving {
				st.CountdownText = api.Translator.T(lang, "arriving_in")
			}
		}
		entry.Stations[i] = st
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.Clock))
}

func (api *RestAPI) display(lang string, d shuttle.DisplayRun) displayEntry {
	e := displayEntry{Kind: d.Kind, MinutesUntil: d.MinutesUntil}
	if d.Run != nil {
		e.RunID = d.Run.ID
		e.Departure = utils.MinutesToTime(d.Run.DepartureTime)
		e.Tag = shuttle.TagLabel(*d.Run)
	}
	switch d.Kind {
	case shuttle.DisplayPreview:
		e.Headline = api.Translator.T(lang, "selected_run")
	case shuttle.DisplayNext, shuttle.DisplayFirstOfDay:
		e.Headline = api.Translator.T(lang, "next_departure")
	case shuttle.DisplayNoMoreRuns:
		e.Headline = api.Translator.T(lang, "no_more_buses")
	default:
		e.Headline = api.Translator.T(lang, "no_runs")
	}
	return e
}
