package restapi

import (
	"encoding/json"
	"net/http"

	"shuttle.campusbus.org/internal/logging"
)

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler reports ready once the timetable is loaded and the
// preference database answers.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if api.Application == nil || api.Prefs == nil || api.Prefs.DB == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unavailable", Detail: "database not initialized"})
		return
	}

	if api.Schedule == nil || api.Engine == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "starting", Detail: "timetable not loaded"})
		return
	}

	if err := api.Prefs.Ping(r.Context()); err != nil {
		logging.LogError(api.Logger, "preference DB ping failed", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "unavailable", Detail: "database connection failed"})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}
