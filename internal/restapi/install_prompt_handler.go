package restapi

import (
	"net/http"
	"strconv"

	"shuttle.campusbus.org/internal/models"
)

type installPromptEntry struct {
	Show      bool   `json:"show"`
	Dismissed bool   `json:"dismissed"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

// standalone reports whether the client runs as an installed app, from
// ?standalone=true or an X-Display-Mode header set by the page script.
func standalone(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("standalone")); err == nil {
		return v
	}
	return r.Header.Get("X-Display-Mode") == "standalone"
}

func (api *RestAPI) installPromptEntry(r *http.Request) installPromptEntry {
	lang := api.lang(r.URL.Query().Get("lang"), r)
	return installPromptEntry{
		Show:      api.InstallPrompt.ShouldShow(standalone(r)),
		Dismissed: api.InstallPrompt.Dismissed(),
		Title:     api.Translator.T(lang, "install_app"),
		Text:      api.Translator.T(lang, "install_desc"),
	}
}

func (api *RestAPI) installPromptHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(api.installPromptEntry(r), api.Clock))
}

func (api *RestAPI) dismissInstallPromptHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.InstallPrompt.Dismiss(r.Context()); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(api.installPromptEntry(r), api.Clock))
}
