package webui

import (
	"embed"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// staticFiles are the files of the static shell, served from the site root.
var staticFiles = []string{"manifest.json", "icon.png", "lite.html", "sw.js"}

var allowedExtensions = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/manifest+json",
	".png":  "image/png",
}

func (webUI *WebUI) staticHandler(w http.ResponseWriter, r *http.Request) {
	fileName := path.Base(r.URL.Path)

	contentType, ok := allowedExtensions[strings.ToLower(path.Ext(fileName))]
	if !ok {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	// Ensure no path traversal attempts
	if strings.Contains(fileName, "..") || strings.ContainsAny(fileName, `/\`) || path.Clean(r.URL.Path) != "/"+fileName {
		slog.Warn("potential path traversal attempt blocked", "path", r.URL.Path)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	data, err := staticFS.ReadFile("static/" + fileName)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if fileName == "sw.js" {
		w.Header().Set("Service-Worker-Allowed", "/")
	}
	_, _ = w.Write(data)
}
