package models

// RunStatus classifies a run relative to now.
type RunStatus string

const (
	RunPending RunStatus = "PENDING"
	RunRunning RunStatus = "RUNNING"
	RunPast    RunStatus = "PAST"
)

// LiveRunState is a run that is currently on the route.
type LiveRunState struct {
	RunID          string    `json:"runId"`
	DepartureTime  int       `json:"departureTime"`
	ElapsedMinutes float64   `json:"elapsedMinutes"`
	Status         RunStatus `json:"status"`
	ColorTag       *string   `json:"colorTag,omitempty"`
}

// BusPlacement positions a running bus on the timeline. Segment i spans
// station i to station i+1; Fraction is the share of that segment covered.
type BusPlacement struct {
	RunID      string  `json:"runId"`
	Segment    int     `json:"segment"`
	Fraction   float64 `json:"fraction"`
	AtTerminus bool    `json:"atTerminus"`
}

// Countdown is the wait at a station for the nearest incoming bus.
type Countdown struct {
	Minutes  int  `json:"minutes"`
	Arriving bool `json:"arriving"`
	Urgent   bool `json:"urgent"`
}

// StationArrival pairs a station with its countdown. A nil Countdown means no
// running bus is still headed for the station.
type StationArrival struct {
	StationID string     `json:"stationId"`
	Countdown *Countdown `json:"countdown"`
}
