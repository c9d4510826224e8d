// Package buildinfo carries values stamped in at link time with
// -ldflags "-X shuttle.campusbus.org/internal/buildinfo.Version=...".
package buildinfo

var (
	Version    = "dev"
	CommitHash = ""
	Branch     = ""
	BuildTime  = ""
)

// ShortCommit returns the first seven characters of the commit hash or "unknown".
func ShortCommit() string {
	if len(CommitHash) >= 7 {
		return CommitHash[:7]
	}
	return "unknown"
}
