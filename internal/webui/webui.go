// Package webui renders the board as a server-side HTML page and serves the
// static shell the asset worker precaches.
package webui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-playground/validator/v10"
	"shuttle.campusbus.org/internal/app"
)

//go:embed templates/*.html
var templateFS embed.FS

type WebUI struct {
	*app.Application
	board    *template.Template
	debug    *template.Template
	validate *validator.Validate
}

// New parses the embedded templates.
func New(application *app.Application) (*WebUI, error) {
	board, err := template.ParseFS(templateFS, "templates/board.html")
	if err != nil {
		return nil, fmt.Errorf("parse board template: %w", err)
	}
	debug, err := template.ParseFS(templateFS, "templates/debug_index.html")
	if err != nil {
		return nil, fmt.Errorf("parse debug template: %w", err)
	}
	return &WebUI{
		Application: application,
		board:       board,
		debug:       debug,
		validate:    validator.New(),
	}, nil
}

// SetWebUIRoutes registers the page, the static shell and the debug dump.
func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", webUI.boardHandler)
	mux.HandleFunc("GET /index.html", webUI.boardHandler)
	mux.HandleFunc("POST /install-prompt/dismiss", webUI.dismissInstallHandler)
	mux.HandleFunc("GET /debug", webUI.debugIndexHandler)
	for _, name := range staticFiles {
		mux.HandleFunc("GET /"+name, webUI.staticHandler)
	}
}

// Handler returns a mux serving only the web UI. It is the origin the asset
// worker fetches from.
func (webUI *WebUI) Handler() http.Handler {
	mux := http.NewServeMux()
	webUI.SetWebUIRoutes(mux)
	return mux
}
