package restapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache tiers in seconds.
const (
	cacheNone   = 0
	cacheShort  = 30
	cacheStatic = 300
)

// SetRoutes registers every JSON endpoint on mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	api.handle(mux, "GET /api/v1/current-time.json", cacheNone, api.currentTimeHandler)
	api.handle(mux, "GET /api/v1/config.json", cacheStatic, api.configHandler)
	api.handle(mux, "GET /api/v1/stations/{direction}", cacheShort, api.stationsHandler)
	api.handle(mux, "GET /api/v1/schedule/{direction}", cacheShort, api.scheduleHandler)
	api.handle(mux, "GET /api/v1/live/{direction}", cacheNone, api.liveHandler)
	api.handle(mux, "GET /api/v1/install-prompt.json", cacheNone, api.installPromptHandler)
	api.handle(mux, "POST /api/v1/install-prompt.json", cacheNone, api.dismissInstallPromptHandler)

	mux.HandleFunc("GET /healthz", api.healthHandler)
	if api.Application != nil && api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

func (api *RestAPI) handle(mux *http.ServeMux, pattern string, cacheSeconds int, h http.HandlerFunc) {
	var handler http.Handler = h
	handler = CacheControlMiddleware(cacheSeconds, handler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler()(handler)
	}
	mux.Handle(pattern, handler)
}
