package webui

import (
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"shuttle.campusbus.org/internal/appconf"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/shuttle"
)

type debugData struct {
	Title string
	Pre   string
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := webUI.debug.Execute(w, debugData{Title: title, Pre: content})
	if err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "config":
		data = webUI.Config
		title = "Configuration"
	case "stations":
		topologies := map[string]models.Topology{}
		for _, dir := range models.Directions {
			for _, mode := range []models.Mode{models.DayMode, models.NightMode} {
				if topo, err := webUI.Schedule.Topology(dir, mode); err == nil {
					topologies[string(dir)+"/"+string(mode)] = topo
				}
			}
		}
		data = topologies
		title = "Stations"
	case "schedule":
		schedules := map[models.Direction]models.DirectionSchedule{}
		for _, dir := range models.Directions {
			if s, err := webUI.Schedule.Schedule(dir); err == nil {
				schedules[dir] = s
			}
		}
		data = schedules
		title = "Weekly schedule"
	case "view":
		dir, err := models.ParseDirection(r.URL.Query().Get("dir"))
		if err != nil {
			dir = models.SouthToNorth
		}
		view, err := webUI.Engine.Build(shuttle.Request{Direction: dir, Now: webUI.Clock.Now()})
		if err != nil {
			data = map[string]string{"error": err.Error()}
		} else {
			data = view
		}
		title = "Live view - " + string(dir)
	case "caches":
		if webUI.Assets != nil {
			data = map[string]any{
				"current": webUI.Assets.CacheName(),
				"claimed": webUI.Assets.Claimed(),
			}
		} else {
			data = map[string]string{"error": "asset worker not configured"}
		}
		title = "Asset caches"
	default:
		data = map[string]string{
			"error": "Please use one of the following: config, stations, schedule, view, caches.",
		}
		title = "Choose a data type"
	}

	webUI.writeDebugData(w, title, data)
}
