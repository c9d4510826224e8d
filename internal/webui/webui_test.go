package webui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shuttle.campusbus.org/internal/app"
	"shuttle.campusbus.org/internal/appconf"
	"shuttle.campusbus.org/internal/assetcache"
	"shuttle.campusbus.org/internal/clock"
	"shuttle.campusbus.org/internal/i18n"
	"shuttle.campusbus.org/internal/metrics"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/prefs"
	"shuttle.campusbus.org/internal/schedule"
	"shuttle.campusbus.org/internal/shuttle"
)

// wednesdayMorning is 2025-03-12 07:30, with two southbound buses on the road.
var wednesdayMorning = time.Date(2025, 3, 12, 7, 30, 0, 0, time.UTC)

func createTestWebUI(t *testing.T, now time.Time, env appconf.Environment) *WebUI {
	t.Helper()
	ctx := context.Background()

	store, err := schedule.LoadDefault()
	require.NoError(t, err)
	tr, err := i18n.New(i18n.DefaultLang)
	require.NoError(t, err)

	cfg := appconf.Default()
	cfg.Env = env
	flags := prefs.NewMemoryStore()

	webUI, err := New(&app.Application{
		Config:        cfg,
		Logger:        slog.New(slog.DiscardHandler),
		Clock:         clock.NewMockClock(now),
		Metrics:       metrics.New(),
		Schedule:      store,
		Engine:        shuttle.NewEngine(store, cfg.NightCutoff),
		Translator:    tr,
		InstallPrompt: prefs.NewInstallPrompt(ctx, flags, nil),
	})
	require.NoError(t, err)
	return webUI
}

func get(t *testing.T, h http.Handler, target string, header ...string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	body, err := io.ReadAll(rr.Result().Body)
	require.NoError(t, err)
	return rr, string(body)
}

func TestBoardPageLive(t *testing.T) {
	h := createTestWebUI(t, wednesdayMorning, appconf.Test).Handler()

	rr, body := get(t, h, "/?lang=en")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	assert.Contains(t, body, `<meta http-equiv="refresh" content="30">`)
	assert.Contains(t, body, `<html lang="en">`)
	assert.Contains(t, body, "07:30")
	assert.Contains(t, body, "Wednesday")
	assert.Contains(t, body, "Next departure 07:40")
	assert.Contains(t, body, "in 10 min")
	assert.Contains(t, body, "South → North")
	assert.Contains(t, body, "SC Gate 9")
	assert.Contains(t, body, "RED")
	assert.Contains(t, body, "View earlier runs (2)")
	assert.Contains(t, body, `title="sn_0725"`)
	assert.Contains(t, body, "Today")
	assert.Contains(t, body, "Tomorrow")
	assert.Contains(t, body, "Install the app")
}

func TestBoardPageDefaultLanguage(t *testing.T) {
	h := createTestWebUI(t, wednesdayMorning, appconf.Test).Handler()

	_, body := get(t, h, "/")
	assert.Contains(t, body, `<html lang="zh">`)
	assert.Contains(t, body, "校园班车")

	_, body = get(t, h, "/index.html", "Accept-Language", "en-GB,en;q=0.9")
	assert.Contains(t, body, `<html lang="en">`)
}

func TestBoardPageOtherDay(t *testing.T) {
	h := createTestWebUI(t, wednesdayMorning, appconf.Test).Handler()

	rr, body := get(t, h, "/?lang=en&date=2025-03-14")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.NotContains(t, body, "<span>Live</span>")
	assert.NotContains(t, body, "View earlier runs")
	assert.NotContains(t, body, "Departed")
}

func TestBoardPagePreview(t *testing.T) {
	h := createTestWebUI(t, wednesdayMorning, appconf.Test).Handler()

	_, body := get(t, h, "/?lang=en&preview=sn_0810")
	assert.Contains(t, body, "Selected run 08:10")
	assert.Contains(t, body, "Back to live")
	assert.NotContains(t, body, `title="sn_0725"`, "a pinned run hides the live buses")

	_, body = get(t, h, "/?lang=en&preview=no_such_run")
	assert.Contains(t, body, "Next departure 07:40")
}

func TestBoardPageNight(t *testing.T) {
	h := createTestWebUI(t, time.Date(2025, 3, 12, 19, 45, 0, 0, time.UTC), appconf.Test).Handler()

	_, body := get(t, h, "/?lang=en&dir=ns")
	assert.Contains(t, body, "North → South")
	assert.Contains(t, body, "Night route, gate 9 closed")
	assert.NotContains(t, body, "SC Gate 9")
}

func TestBoardPageRejectsBadQuery(t *testing.T) {
	h := createTestWebUI(t, wednesdayMorning, appconf.Test).Handler()

	for _, target := range []string{"/?date=tomorrow", "/?dir=up", "/?all=maybe"} {
		rr, _ := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestDismissInstallPrompt(t *testing.T) {
	h := createTestWebUI(t, wednesdayMorning, appconf.Test).Handler()

	_, body := get(t, h, "/?lang=en", "X-Display-Mode", "standalone")
	assert.NotContains(t, body, "Install the app", "installed apps never see the prompt")

	req := httptest.NewRequest(http.MethodPost, "/install-prompt/dismiss?next=%2F%3Flang%3Den", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/?lang=en", rr.Header().Get("Location"))

	_, body = get(t, h, "/?lang=en")
	assert.NotContains(t, body, "Install the app")

	req = httptest.NewRequest(http.MethodPost, "/install-prompt/dismiss?next=//evil.example", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestMarkerOffset(t *testing.T) {
	assert.Equal(t, "20.0%", markerOffset(placement(0, 0.4, false), 3))
	assert.Equal(t, "75.0%", markerOffset(placement(1, 0.5, false), 3))
	assert.Equal(t, "95.0%", markerOffset(placement(1, 0.9, true), 3), "the segment clamp holds until the bus reaches the last station")
	assert.Equal(t, "100.0%", markerOffset(placement(2, 0, true), 3))
	assert.Equal(t, "0%", markerOffset(placement(0, 0.5, false), 1))
}

func placement(segment int, fraction float64, terminus bool) models.BusPlacement {
	return models.BusPlacement{RunID: "run", Segment: segment, Fraction: fraction, AtTerminus: terminus}
}

func TestShellThroughAssetWorker(t *testing.T) {
	webUI := createTestWebUI(t, wednesdayMorning, appconf.Test)
	worker := assetcache.New(assetcache.Config{
		CacheName: "campus-shuttle-v4",
		Fetcher:   assetcache.HandlerFetcher{Handler: webUI.Handler()},
	})

	assert.Equal(t, len(assetcache.DefaultManifest), worker.Install(context.Background()))

	rr, body := get(t, worker, "/manifest.json")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(body, `"start_url": "/"`))
}
