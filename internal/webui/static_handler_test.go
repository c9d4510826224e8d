package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"shuttle.campusbus.org/internal/appconf"
)

func TestStaticShell(t *testing.T) {
	h := createTestWebUI(t, wednesdayMorning, appconf.Test).Handler()

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/manifest.json", "application/manifest+json", `"short_name": "Shuttle"`},
		{"/icon.png", "image/png", "PNG"},
		{"/lite.html", "text/html; charset=utf-8", "/api/v1/schedule/"},
		{"/sw.js", "text/javascript; charset=utf-8", "campus-shuttle-v4"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr, body := get(t, h, tt.path)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.Contains(t, body, tt.contains)
		})
	}

	rr, _ := get(t, h, "/sw.js")
	assert.Equal(t, "/", rr.Header().Get("Service-Worker-Allowed"))
}

func TestStaticHandler_PathTraversal(t *testing.T) {
	webUI := createTestWebUI(t, wednesdayMorning, appconf.Test)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "valid file access", path: "/manifest.json", wantStatus: http.StatusOK},
		{name: "path traversal attempt", path: "/static/../../../etc/passwd", wantStatus: http.StatusNotFound},
		{name: "nested path", path: "/static/icon.png", wantStatus: http.StatusNotFound},
		{name: "backslash traversal", path: "/..\\static\\icon.png", wantStatus: http.StatusNotFound},
		{name: "disallowed extension", path: "/schedule.yaml", wantStatus: http.StatusNotFound},
		{name: "missing file", path: "/missing.png", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.URL.Path = tt.path
			rr := httptest.NewRecorder()

			webUI.staticHandler(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
