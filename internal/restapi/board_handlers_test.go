package restapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shuttle.campusbus.org/internal/clock"
)

func TestLiveHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/live/sn.json?lang=en")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "OK", model.Text)

	entry := entryOf(t, model)
	assert.Equal(t, "SOUTH_TO_NORTH", entry["direction"])
	assert.Equal(t, "2025-03-12", entry["date"])
	assert.Equal(t, "07:30", entry["clock"])
	assert.Equal(t, "day", entry["mode"])
	assert.Equal(t, true, entry["live"])
	assert.Equal(t, false, entry["preview"])

	display := entry["display"].(map[string]any)
	assert.Equal(t, "next", display["kind"])
	assert.Equal(t, "sn_0740", display["runId"])
	assert.Equal(t, "07:40", display["departure"])
	assert.Equal(t, float64(10), display["minutesUntil"])
	assert.Equal(t, "Next departure", display["headline"])
	assert.Equal(t, "RED", display["tagLabel"])

	stations := entry["stations"].([]any)
	require.Len(t, stations, 3)
	first := stations[0].(map[string]any)
	assert.Equal(t, "sc_9", first["id"])
	assert.Equal(t, "SC Gate 9", first["shortName"])
	assert.Equal(t, "07:40", first["scheduled"])
	assert.Nil(t, first["countdown"], "both buses already passed the first station")

	last := stations[2].(map[string]any)
	countdown := last["countdown"].(map[string]any)
	assert.Equal(t, float64(3), countdown["minutes"])
	assert.Equal(t, false, countdown["urgent"])
	assert.Equal(t, "3 min", last["countdownText"])

	assert.Len(t, entry["active"], 2)
	placements := entry["placements"].([]any)
	require.Len(t, placements, 2)
	p := placements[0].(map[string]any)
	assert.Equal(t, float64(1), p["segment"])
	assert.InDelta(t, 0.4, p["fraction"], 1e-9)
}

func TestLiveHandlerPreview(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/live/SOUTH_TO_NORTH.json?preview=sn_0810&lang=en")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, false, entry["live"])
	assert.Equal(t, true, entry["preview"])
	assert.Empty(t, entry["active"])
	assert.Empty(t, entry["placements"])

	display := entry["display"].(map[string]any)
	assert.Equal(t, "preview", display["kind"])
	assert.Equal(t, "Selected run", display["headline"])

	for _, s := range entry["stations"].([]any) {
		assert.Nil(t, s.(map[string]any)["countdown"])
	}
	assert.Equal(t, "08:18", entry["stations"].([]any)[2].(map[string]any)["scheduled"])
}

func TestLiveHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		status   int
		field    string
		tag      string
	}{
		{name: "unknown preview run", endpoint: "/api/v1/live/sn.json?preview=sn_9999", status: http.StatusNotFound},
		{name: "unknown direction", endpoint: "/api/v1/live/east.json", status: http.StatusBadRequest},
		{name: "malformed date", endpoint: "/api/v1/live/sn.json?date=2025-13-40", status: http.StatusBadRequest, field: "Date", tag: "datetime"},
		{name: "bad show-all flag", endpoint: "/api/v1/schedule/sn.json?all=maybe", status: http.StatusBadRequest, field: "All", tag: "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, model := serveAndRetrieveEndpoint(t, tt.endpoint)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.status, model.Code)
			assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
			if tt.field != "" {
				data := model.Data.(map[string]any)
				fields := data["fieldErrors"].(map[string]any)
				assert.Equal(t, tt.tag, fields[tt.field])
			}
		})
	}
}

func TestScheduleHandler(t *testing.T) {
	t.Run("upcoming only", func(t *testing.T) {
		_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/schedule/sn.json?lang=en")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "public, max-age=30", resp.Header.Get("Cache-Control"))

		entry := entryOf(t, model)
		assert.Equal(t, true, entry["live"])
		assert.Equal(t, false, entry["showAll"])
		assert.Equal(t, float64(2), entry["hiddenPast"])
		assert.Contains(t, entry["summary"], "Showing")

		rows := entry["rows"].([]any)
		first := rows[0].(map[string]any)
		assert.Equal(t, "sn_0740", first["runId"])
		assert.Equal(t, "RED", first["label"])
		assert.Equal(t, true, first["featured"])
		assert.Equal(t, []any{float64(2), float64(3), float64(4), float64(5)}, first["activeDays"])

		second := rows[1].(map[string]any)
		assert.Equal(t, "sn_0745", second["runId"])
		assert.Equal(t, "Standard", second["label"])
	})

	t.Run("show all", func(t *testing.T) {
		_, _, model := serveAndRetrieveEndpoint(t, "/api/v1/schedule/sn.json?all=true")
		entry := entryOf(t, model)
		assert.Equal(t, float64(0), entry["hiddenPast"])
		first := entry["rows"].([]any)[0].(map[string]any)
		assert.Equal(t, "sn_0725", first["runId"])
		assert.Equal(t, true, first["past"])
	})

	t.Run("another day lists everything", func(t *testing.T) {
		_, _, model := serveAndRetrieveEndpoint(t, "/api/v1/schedule/ns.json?date=2025-03-15")
		entry := entryOf(t, model)
		assert.Equal(t, false, entry["isToday"])
		assert.Equal(t, false, entry["live"])
		assert.Equal(t, true, entry["showAll"])
		assert.Equal(t, float64(6), entry["weekday"])
		for _, row := range entry["rows"].([]any) {
			assert.Equal(t, false, row.(map[string]any)["past"])
		}
	})
}

func TestStationsHandler(t *testing.T) {
	t.Run("day route", func(t *testing.T) {
		_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/stations/sn.json")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "public, max-age=300", resp.Header.Get("Cache-Control"))

		entry := entryOf(t, model)
		assert.Equal(t, "day", entry["mode"])
		assert.Equal(t, float64(8), entry["totalDuration"])
		assert.Len(t, entry["stations"], 3)
	})

	t.Run("night route after the cutoff", func(t *testing.T) {
		evening := time.Date(2025, 3, 12, 19, 45, 0, 0, time.UTC)
		api := createTestApiWithClock(t, clock.NewMockClock(evening))
		_, model := serveApiAndRetrieveEndpoint(t, api, "/api/v1/stations/sn.json?lang=en")

		entry := entryOf(t, model)
		assert.Equal(t, "night", entry["mode"])
		stations := entry["stations"].([]any)
		require.Len(t, stations, 2)
		assert.Equal(t, "sc_2", stations[0].(map[string]any)["id"])
		assert.Equal(t, "South Campus Gate 2", stations[0].(map[string]any)["name"])
	})
}

func TestLanguageSelection(t *testing.T) {
	api := createTestApi(t)

	_, model := serveApiAndRetrieveEndpoint(t, api, "/api/v1/stations/ns.json")
	entry := entryOf(t, model)
	assert.Equal(t, "北校区 → 南校区", entry["directionLabel"], "defaults to Chinese")

	_, model = serveApiAndRetrieveEndpoint(t, api, "/api/v1/stations/ns.json?lang=en-US")
	entry = entryOf(t, model)
	assert.Equal(t, "North → South", entry["directionLabel"])
}
