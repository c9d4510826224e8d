package restapi

import (
	"net/http"

	"shuttle.campusbus.org/internal/buildinfo"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/utils"
)

// DateWindowDays is how many days ahead the date selector offers.
const DateWindowDays = 14

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	cutoff := api.Engine.Cutoff()

	entry := models.ConfigModel{
		ID:   "campus-shuttle",
		Name: "Campus Shuttle",
		Build: models.BuildProperties{
			Version:     buildinfo.Version,
			CommitID:    buildinfo.CommitHash,
			CommitShort: buildinfo.ShortCommit(),
			Branch:      buildinfo.Branch,
			BuildTime:   buildinfo.BuildTime,
		},
		NightCutoff:        utils.MinutesToTime(cutoff),
		NightCutoffMinutes: cutoff,
		DefaultLang:        api.Translator.Normalize(api.Config.DefaultLang),
		Languages:          api.Translator.Languages(),
		CacheName:          api.Config.CacheName,
		RefreshSeconds:     int(api.Config.ScheduleRefresh.Seconds()),
		DateWindowDays:     DateWindowDays,
	}

	api.sendResponse(w, r, models.NewEntryResponse(entry, api.Clock))
}
