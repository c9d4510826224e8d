package restapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/shuttle"
	"shuttle.campusbus.org/internal/utils"
)

// viewQuery is the raw query of the board endpoints.
type viewQuery struct {
	Date    string `validate:"omitempty,datetime=2006-01-02"`
	Preview string `validate:"omitempty,max=64,printascii"`
	Lang    string `validate:"omitempty,max=16"`
	All     string `validate:"omitempty,boolean"`
}

// directionParam reads {direction} from the path. A trailing ".json" is
// allowed.
func directionParam(r *http.Request) (models.Direction, error) {
	return models.ParseDirection(strings.TrimSuffix(r.PathValue("direction"), ".json"))
}

// parseViewRequest turns the request into an engine request and the
// normalized language. Errors are ready to send.
func (api *RestAPI) parseViewRequest(w http.ResponseWriter, r *http.Request) (shuttle.Request, string, bool) {
	dir, err := directionParam(r)
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, err.Error())
		return shuttle.Request{}, "", false
	}

	q := r.URL.Query()
	raw := viewQuery{
		Date:    q.Get("date"),
		Preview: q.Get("preview"),
		Lang:    q.Get("lang"),
		All:     q.Get("all"),
	}
	if err := api.validate.Struct(raw); err != nil {
		api.sendValidationError(w, r, err)
		return shuttle.Request{}, "", false
	}

	now := api.Clock.Now()
	req := shuttle.Request{Direction: dir, Now: now, PreviewRunID: raw.Preview}
	if raw.Date != "" {
		date, err := utils.ParseServiceDate(raw.Date, now.Location())
		if err != nil {
			api.sendError(w, r, http.StatusBadRequest, err.Error())
			return shuttle.Request{}, "", false
		}
		req.Date = date
	}
	if raw.All != "" {
		req.ShowAll, _ = strconv.ParseBool(raw.All)
	}

	return req, api.lang(raw.Lang, r), true
}

// lang picks the response language: the query wins, then Accept-Language,
// then the configured default.
func (api *RestAPI) lang(query string, r *http.Request) string {
	if query != "" {
		return api.Translator.Normalize(query)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		first, _, _ := strings.Cut(accept, ",")
		first, _, _ = strings.Cut(first, ";")
		return api.Translator.Normalize(first)
	}
	return api.Translator.Normalize(api.Config.DefaultLang)
}

// sendViewError maps an engine error to a response.
func (api *RestAPI) sendViewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shuttle.ErrUnknownRun):
		api.sendError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidDirection):
		api.sendError(w, r, http.StatusBadRequest, err.Error())
	default:
		api.serverErrorResponse(w, r, err)
	}
}
