package restapi

import (
	"net/http"

	"shuttle.campusbus.org/internal/models"
)

// currentTimeHandler returns the clock the live board runs on.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(models.NewCurrentTimeData(api.Clock.Now()), api.Clock))
}
