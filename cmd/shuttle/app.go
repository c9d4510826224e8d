package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"shuttle.campusbus.org/internal/app"
	"shuttle.campusbus.org/internal/appconf"
	"shuttle.campusbus.org/internal/assetcache"
	"shuttle.campusbus.org/internal/board"
	"shuttle.campusbus.org/internal/clock"
	"shuttle.campusbus.org/internal/i18n"
	"shuttle.campusbus.org/internal/logging"
	"shuttle.campusbus.org/internal/metrics"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/prefs"
	"shuttle.campusbus.org/internal/publisher"
	"shuttle.campusbus.org/internal/restapi"
	"shuttle.campusbus.org/internal/schedule"
	"shuttle.campusbus.org/internal/shuttle"
	"shuttle.campusbus.org/internal/webui"
)

// BuildApplication wires the schedule, engine, translator and preference
// store described by cfg.
func BuildApplication(cfg appconf.Config) (*app.Application, error) {
	logger := logging.NewLogger(os.Stdout, cfg.Env == appconf.Production, cfg.Verbose)

	store, err := loadSchedule(cfg.SchedulePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	tr, err := i18n.New(cfg.DefaultLang)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translator: %w", err)
	}

	ctx := context.Background()
	prefsStore, err := prefs.OpenSQLite(ctx, cfg.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs store: %w", err)
	}

	m := metrics.NewWithLogger(logger)
	m.StartDBStatsCollector(prefsStore.DB, 15*time.Second)

	coreApp := &app.Application{
		Config:        cfg,
		Logger:        logger,
		Clock:         clock.New(cfg.ClockEnvVar, cfg.ClockFile, time.Local),
		Metrics:       m,
		Schedule:      store,
		Engine:        shuttle.NewEngine(store, cfg.NightCutoff),
		Translator:    tr,
		Prefs:         prefsStore,
		InstallPrompt: prefs.NewInstallPrompt(ctx, prefsStore, logger.With(slog.String("component", "install_prompt"))),
	}

	logging.LogOperation(logger, "application_built",
		slog.String("env", cfg.Env.String()),
		slog.Int("runs_sn", store.RunCount(models.SouthToNorth)),
		slog.Int("runs_ns", store.RunCount(models.NorthToSouth)))
	return coreApp, nil
}

func loadSchedule(path string) (*schedule.Store, error) {
	if path == "" {
		return schedule.LoadDefault()
	}
	return schedule.LoadFile(path)
}

// CreateServer builds the HTTP server: the JSON API, the board page behind
// the asset worker, and the shared middleware chain.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI, error) {
	api := restapi.NewRestAPI(coreApp)

	webUI, err := webui.New(coreApp)
	if err != nil {
		api.Shutdown()
		return nil, nil, err
	}

	// the in-process origin never fails, so the offline fallbacks only fire
	// with a remote origin
	var origin assetcache.Fetcher = assetcache.HandlerFetcher{Handler: webUI.Handler()}
	if cfg.AssetOrigin != "" {
		origin = assetcache.NewHTTPFetcher(cfg.AssetOrigin)
	}
	coreApp.Assets = assetcache.New(assetcache.Config{
		CacheName: cfg.CacheName,
		Fetcher:   origin,
		Logger:    coreApp.Logger,
		Metrics:   coreApp.Metrics,
	})

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	mux.Handle("GET /debug", webUI.Handler())
	mux.Handle("/", coreApp.Assets)

	var handler http.Handler = gzhttp.GzipHandler(mux)
	handler = restapi.MetricsHandler(coreApp.Metrics)(handler)
	handler = restapi.NewRequestLoggingMiddleware(coreApp.Logger)(handler)
	handler = restapi.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}
	return srv, api, nil
}

// startBoards runs one board per direction and publishes every recompute to
// NATS. It returns a stop function that waits for the boards to exit.
func startBoards(ctx context.Context, coreApp *app.Application, pub board.Renderer) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, dir := range models.Directions {
		b := board.New(board.Config{
			Engine:    coreApp.Engine,
			Clock:     coreApp.Clock,
			Logger:    coreApp.Logger,
			Metrics:   coreApp.Metrics,
			ClockTick: coreApp.Config.ClockTick,
			Refresh:   coreApp.Config.ScheduleRefresh,
			Initial:   board.State{Direction: dir, Lang: coreApp.Config.DefaultLang},
			Renderers: []board.Renderer{pub},
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.LogError(coreApp.Logger, "board stopped", err, slog.String("direction", string(dir)))
			}
		}()
	}
	return func() {
		cancel()
		wg.Wait()
	}
}

// Run installs the asset cache, starts the optional NATS boards and serves
// until ctx is cancelled, then shuts everything down.
func Run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	logger := coreApp.Logger
	defer api.Shutdown()
	defer closeApplication(coreApp)

	if coreApp.Assets != nil {
		coreApp.Assets.Install(ctx)
		coreApp.Assets.Activate()
		defer coreApp.Assets.Wait()
	}

	if url := coreApp.Config.NatsURL; url != "" {
		pub, err := publisher.Connect(url, coreApp.Config.NatsSubjectPrefix, logger, coreApp.Metrics)
		if err != nil {
			return err
		}
		defer pub.Close()
		stop := startBoards(ctx, coreApp, pub)
		defer stop()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func closeApplication(coreApp *app.Application) {
	if coreApp.Metrics != nil {
		coreApp.Metrics.Shutdown()
	}
	if coreApp.Prefs != nil {
		logging.SafeCloseWithLogging(coreApp.Prefs, coreApp.Logger, "prefs store")
	}
}
