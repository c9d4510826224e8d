package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shuttle.campusbus.org/internal/buildinfo"
)

func TestConfigHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/config.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=300", resp.Header.Get("Cache-Control"))

	entry := entryOf(t, model)
	assert.Equal(t, "campus-shuttle", entry["id"])
	assert.Equal(t, "19:30", entry["nightCutoff"])
	assert.Equal(t, float64(1170), entry["nightCutoffMinutes"])
	assert.Equal(t, "zh", entry["defaultLang"])
	assert.Equal(t, []any{"en", "zh"}, entry["languages"])
	assert.Equal(t, "campus-shuttle-v4", entry["cacheName"])
	assert.Equal(t, float64(30), entry["refreshSeconds"])
	assert.Equal(t, float64(DateWindowDays), entry["dateWindowDays"])

	build := entry["build"].(map[string]any)
	assert.Equal(t, buildinfo.Version, build["build.version"])
	assert.Equal(t, "unknown", build["git.commit.id.abbrev"])
}
