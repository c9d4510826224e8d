package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"shuttle.campusbus.org/internal/app"
	"shuttle.campusbus.org/internal/appconf"
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

func createTestApplication(t *testing.T, c clock.Clock) *app.Application {
	t.Helper()
	ctx := context.Background()

	store, err := schedule.LoadDefault()
	require.NoError(t, err)
	tr, err := i18n.New(i18n.DefaultLang)
	require.NoError(t, err)
	prefsStore, err := prefs.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = prefsStore.Close() })

	cfg := appconf.Default()
	cfg.Env = appconf.Test

	return &app.Application{
		Config:        cfg,
		Logger:        slog.New(slog.DiscardHandler),
		Clock:         c,
		Metrics:       metrics.New(),
		Schedule:      store,
		Engine:        shuttle.NewEngine(store, cfg.NightCutoff),
		Translator:    tr,
		Prefs:         prefsStore,
		InstallPrompt: prefs.NewInstallPrompt(ctx, prefsStore, nil),
	}
}

func createTestApiWithClock(t *testing.T, c clock.Clock) *RestAPI {
	t.Helper()
	api := NewRestAPI(createTestApplication(t, c))
	t.Cleanup(api.Shutdown)
	return api
}

func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return createTestApiWithClock(t, clock.NewMockClock(wednesdayMorning))
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var model models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&model))
	return resp, model
}

func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	t.Helper()
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

// entryOf digs data.entry out of a decoded envelope.
func entryOf(t *testing.T, model models.ResponseModel) map[string]any {
	t.Helper()
	data, ok := model.Data.(map[string]any)
	require.True(t, ok, "data is not an object")
	entry, ok := data["entry"].(map[string]any)
	require.True(t, ok, "entry is not an object")
	return entry
}
