package app

import (
	"log/slog"

	"shuttle.campusbus.org/internal/appconf"
	"shuttle.campusbus.org/internal/assetcache"
	"shuttle.campusbus.org/internal/clock"
	"shuttle.campusbus.org/internal/i18n"
	"shuttle.campusbus.org/internal/metrics"
	"shuttle.campusbus.org/internal/prefs"
	"shuttle.campusbus.org/internal/schedule"
	"shuttle.campusbus.org/internal/shuttle"
)

// Application holds the dependencies shared by HTTP handlers, the board loop
// and middleware.
type Application struct {
	Config        appconf.Config
	Logger        *slog.Logger
	Clock         clock.Clock
	Metrics       *metrics.Metrics
	Schedule      *schedule.Store
	Engine        *shuttle.Engine
	Translator    *i18n.Translator
	Prefs         *prefs.SQLiteStore
	InstallPrompt *prefs.InstallPrompt
	Assets        *assetcache.Worker
}
