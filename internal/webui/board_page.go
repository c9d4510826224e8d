package webui

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shuttle.campusbus.org/internal/i18n"
	"shuttle.campusbus.org/internal/logging"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/shuttle"
	"shuttle.campusbus.org/internal/utils"
)

// dateWindow is the number of days offered by the date selector.
const dateWindow = 14

// pageQuery is the raw query of the board page.
type pageQuery struct {
	Dir     string `validate:"omitempty,oneof=sn ns SN NS"`
	Date    string `validate:"omitempty,datetime=2006-01-02"`
	Preview string `validate:"omitempty,max=64,printascii"`
	Lang    string `validate:"omitempty,max=16"`
	All     string `validate:"omitempty,boolean"`
}

// pageState is what the rider is looking at, as carried in page links.
type pageState struct {
	dir     models.Direction
	date    string // empty for today
	preview string
	lang    string
	showAll bool
}

func (s pageState) url() string {
	q := url.Values{}
	q.Set("dir", s.dir.Short())
	if s.date != "" {
		q.Set("date", s.date)
	}
	if s.preview != "" {
		q.Set("preview", s.preview)
	}
	if s.lang != "" {
		q.Set("lang", s.lang)
	}
	if s.showAll {
		q.Set("all", "true")
	}
	return "/?" + q.Encode()
}

type dateOption struct {
	Label    string
	Short    string
	URL      string
	Selected bool
}

type stationRow struct {
	ShortName string
	Name      string
	Scheduled string
	Countdown string
	Urgent    bool
}

type busMarker struct {
	RunID  string
	Label  string
	Offset string
}

type runRow struct {
	Departure  string
	Label      string
	Past       bool
	Featured   bool
	PreviewURL string
}

type pageData struct {
	tr   *i18n.Translator
	Lang string

	OtherLang string
	LangURL   string
	Clock     string
	DayLabel  string
	Refresh   bool
	SelfURL   string

	Dates               []dateOption
	DirectionLabel      string
	OtherDirectionLabel string
	ToggleDirectionURL  string
	Night               bool

	Live            bool
	Preview         bool
	ClearPreviewURL string
	Headline        string

	Stations []stationRow
	Buses    []busMarker

	Rows         []runRow
	ShowAll      bool
	CanToggleAll bool
	HiddenPast   int
	ToggleAllURL string

	Footer      string
	ShowInstall bool
}

// T translates key in the page language.
func (p pageData) T(key string) string {
	return p.tr.T(p.Lang, key)
}

func (webUI *WebUI) boardHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := pageQuery{
		Dir:     q.Get("dir"),
		Date:    q.Get("date"),
		Preview: q.Get("preview"),
		Lang:    q.Get("lang"),
		All:     q.Get("all"),
	}
	if err := webUI.validate.Struct(raw); err != nil {
		http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	now := webUI.Clock.Now()
	state := pageState{dir: models.SouthToNorth, preview: raw.Preview, lang: webUI.lang(raw.Lang, r)}
	if raw.Dir != "" {
		state.dir, _ = models.ParseDirection(raw.Dir)
	}
	req := shuttle.Request{Direction: state.dir, Now: now, PreviewRunID: raw.Preview}
	if raw.Date != "" {
		date, err := utils.ParseServiceDate(raw.Date, now.Location())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Date = date
		if !utils.SameDay(date, now) {
			state.date = raw.Date
		}
	}
	if raw.All != "" {
		state.showAll, _ = strconv.ParseBool(raw.All)
		req.ShowAll = state.showAll
	}

	start := time.Now()
	view, err := webUI.Engine.Build(req)
	if err != nil {
		if state.preview != "" {
			// An unknown pinned run falls back to the live board.
			state.preview = ""
			req.PreviewRunID = ""
			view, err = webUI.Engine.Build(req)
		}
		if err != nil {
			logging.LogError(logging.FromContext(r.Context()), "failed to build board page", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	if webUI.Metrics != nil {
		webUI.Metrics.ObserveView(string(view.Direction), len(view.Projection.Active), time.Since(start))
	}

	data := webUI.buildPage(view, state, now, standalone(r))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := webUI.board.Execute(w, data); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render board page", err)
	}
}

func (webUI *WebUI) buildPage(view shuttle.View, state pageState, now time.Time, standalone bool) pageData {
	tr := webUI.Translator
	lang := state.lang
	p := pageData{
		tr:       tr,
		Lang:     lang,
		Clock:    now.Format("15:04"),
		DayLabel: tr.DayName(lang, now.Weekday()),
		Refresh:  view.IsToday,
		SelfURL:  state.url(),
		Night:    view.Mode == models.NightMode,
		Live:     view.Projection.Live,
		Preview:  view.Preview(),
	}

	other := state
	other.lang = otherLang(tr, lang)
	p.OtherLang = strings.ToUpper(other.lang)
	p.LangURL = other.url()

	today := utils.StartOfDay(now)
	for i := 0; i < dateWindow; i++ {
		day := today.AddDate(0, 0, i)
		label := tr.DayName(lang, day.Weekday())
		switch i {
		case 0:
			label = tr.T(lang, "today")
		case 1:
			label = tr.T(lang, "tomorrow")
		}
		s := state
		s.preview = ""
		s.date = ""
		if i > 0 {
			s.date = day.Format("2006-01-02")
		}
		p.Dates = append(p.Dates, dateOption{
			Label:    label,
			Short:    day.Format("01-02"),
			URL:      s.url(),
			Selected: day.Format("2006-01-02") == view.Date,
		})
	}

	p.DirectionLabel = tr.T(lang, view.Direction.LabelKey())
	p.OtherDirectionLabel = tr.T(lang, view.Direction.Opposite().LabelKey())
	toggled := state
	toggled.dir = state.dir.Opposite()
	toggled.preview = ""
	p.ToggleDirectionURL = toggled.url()

	cleared := state
	cleared.preview = ""
	p.ClearPreviewURL = cleared.url()
	p.Headline = headline(tr, lang, view.Display)

	stations := view.Topology.Stations
	for i, s := range stations {
		row := stationRow{ShortName: tr.T(lang, s.ShortNameKey()), Name: tr.T(lang, s.NameKey())}
		if i < len(view.DisplayTimes) {
			row.Scheduled = view.DisplayTimes[i].Clock
		}
		if i < len(view.Projection.Arrivals) {
			if c := view.Projection.Arrivals[i].Countdown; c != nil {
				row.Countdown = countdownText(tr, lang, c)
				row.Urgent = c.Urgent
			}
		}
		p.Stations = append(p.Stations, row)
	}
	for _, b := range view.Projection.Placements {
		p.Buses = append(p.Buses, busMarker{
			RunID:  b.RunID,
			Label:  runLabel(view, b.RunID),
			Offset: markerOffset(b, len(stations)),
		})
	}

	for _, row := range view.Schedule.Rows {
		label := row.TagLabel
		if label == "" {
			label = tr.T(lang, "standard")
		}
		pinned := state
		pinned.preview = row.RunID
		p.Rows = append(p.Rows, runRow{
			Departure:  row.Departure,
			Label:      label,
			Past:       row.Past,
			Featured:   row.Featured,
			PreviewURL: pinned.url(),
		})
	}
	p.ShowAll = state.showAll
	p.HiddenPast = view.Schedule.HiddenPast
	p.CanToggleAll = view.Schedule.Live && (state.showAll || view.Schedule.HiddenPast > 0)
	toggleAll := state
	toggleAll.showAll = !state.showAll
	p.ToggleAllURL = toggleAll.url()

	p.Footer = tr.Translate(lang, "displaying_runs", map[string]any{
		"count": view.RunCount,
		"date":  tr.FormatDate(lang, viewDate(view, now)),
	})
	p.ShowInstall = webUI.InstallPrompt != nil && webUI.InstallPrompt.ShouldShow(standalone)
	return p
}

func headline(tr *i18n.Translator, lang string, d shuttle.DisplayRun) string {
	switch d.Kind {
	case shuttle.DisplayPreview:
		return fmt.Sprintf("%s %s", tr.T(lang, "selected_run"), utils.MinutesToTime(d.Run.DepartureTime))
	case shuttle.DisplayNext:
		return fmt.Sprintf("%s %s · %s", tr.T(lang, "next_departure"), utils.MinutesToTime(d.Run.DepartureTime),
			tr.Translate(lang, "departs_in", map[string]any{"minutes": *d.MinutesUntil}))
	case shuttle.DisplayFirstOfDay:
		return fmt.Sprintf("%s %s", tr.T(lang, "next_departure"), utils.MinutesToTime(d.Run.DepartureTime))
	case shuttle.DisplayNoMoreRuns:
		return tr.T(lang, "no_more_buses")
	default:
		return tr.T(lang, "no_runs")
	}
}

func countdownText(tr *i18n.Translator, lang string, c *models.Countdown) string {
	if c.Arriving {
		return tr.T(lang, "arriving_in")
	}
	return tr.Translate(lang, "countdown_min", map[string]any{"minutes": c.Minutes})
}

// markerOffset places a bus along the timeline, the first station at 0% and
// the last at 100%.
func markerOffset(b models.BusPlacement, stations int) string {
	if stations < 2 {
		return "0%"
	}
	// a bus still on its last segment keeps the clamped position
	pos := (float64(b.Segment) + b.Fraction) / float64(stations-1) * 100
	if b.AtTerminus && b.Segment >= stations-1 {
		pos = 100
	}
	return strconv.FormatFloat(pos, 'f', 1, 64) + "%"
}

func runLabel(view shuttle.View, runID string) string {
	for _, run := range view.Projection.Active {
		if run.RunID == runID {
			return utils.MinutesToTime(run.DepartureTime)
		}
	}
	return runID
}

func viewDate(view shuttle.View, now time.Time) time.Time {
	d, err := utils.ParseServiceDate(view.Date, now.Location())
	if err != nil {
		return now
	}
	return d
}

func otherLang(tr *i18n.Translator, lang string) string {
	for _, l := range tr.Languages() {
		if l != lang {
			return l
		}
	}
	return lang
}

// lang picks the page language: the query, then Accept-Language, then the
// configured default.
func (webUI *WebUI) lang(query string, r *http.Request) string {
	if query != "" {
		return webUI.Translator.Normalize(query)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		first, _, _ := strings.Cut(accept, ",")
		first, _, _ = strings.Cut(first, ";")
		return webUI.Translator.Normalize(first)
	}
	return webUI.Translator.Normalize(webUI.Config.DefaultLang)
}

func standalone(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("standalone")); err == nil {
		return v
	}
	return r.Header.Get("X-Display-Mode") == "standalone"
}

// dismissInstallHandler records the dismissal and sends the rider back to
// the page they came from.
func (webUI *WebUI) dismissInstallHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.InstallPrompt != nil {
		if err := webUI.InstallPrompt.Dismiss(r.Context()); err != nil {
			logging.LogError(logging.FromContext(r.Context()), "failed to dismiss install prompt", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	next := r.URL.Query().Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		next = "/"
	}
	logging.FromContext(r.Context()).Info("install prompt dismissed", slog.String("component", "webui"))
	http.Redirect(w, r, next, http.StatusSeeOther)
}
