package models

// BuildProperties describes the running binary.
type BuildProperties struct {
	Version     string `json:"build.version"`
	CommitID    string `json:"git.commit.id"`
	CommitShort string `json:"git.commit.id.abbrev"`
	Branch      string `json:"git.branch"`
	BuildTime   string `json:"build.time"`
}

// ConfigModel is the entry of the config endpoint: what the board is running
// and the knobs a client needs to reproduce the server's view.
type ConfigModel struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Build              BuildProperties `json:"build"`
	NightCutoff        string          `json:"nightCutoff"`
	NightCutoffMinutes int             `json:"nightCutoffMinutes"`
	DefaultLang        string          `json:"defaultLang"`
	Languages          []string        `json:"languages"`
	CacheName          string          `json:"cacheName"`
	RefreshSeconds     int             `json:"refreshSeconds"`
	DateWindowDays     int             `json:"dateWindowDays"`
}
