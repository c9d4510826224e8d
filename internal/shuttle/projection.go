package shuttle

import (
	"math"

	"shuttle.campusbus.org/internal/models"
)

const (
	// EndBufferMinutes keeps a bus live for a short dwell after it reaches the terminus.
	EndBufferMinutes = 2
	// MaxSegmentFraction keeps a marker from overlapping the next station.
	MaxSegmentFraction = 0.9
	// ArrivingThreshold is the countdown at or under which a bus is shown as arriving.
	ArrivingThreshold = 0.5
	// UrgentThreshold is the countdown under which a station is highlighted.
	UrgentThreshold = 2
	// TerminusTolerance is how close to the last station a bus counts as at the terminus.
	TerminusTolerance = 1
)

// ProjectionInput is everything the projection reads.
type ProjectionInput struct {
	Runs     []models.BusRun
	Now      float64
	Topology models.Topology
	IsToday  bool
	Preview  *models.BusRun
}

// Projection is the live state of the route at one instant.
type Projection struct {
	Live       bool                    `json:"live"`
	Active     []models.LiveRunState   `json:"active"`
	Placements []models.BusPlacement   `json:"placements"`
	Arrivals   []models.StationArrival `json:"arrivals"`
}

// RunStatusAt classifies run at now for a route of total minutes.
func RunStatusAt(run models.BusRun, now float64, total int) models.RunStatus {
	elapsed := now - float64(run.DepartureTime)
	switch {
	case elapsed < 0:
		return models.RunPending
	case elapsed <= float64(total+EndBufferMinutes):
		return models.RunRunning
	default:
		return models.RunPast
	}
}

// Project computes which runs are on the route, where they are and how long
// each station waits. A pinned preview run or a day other than today turns
// the live view off entirely: no active runs and no countdowns.
func Project(in ProjectionInput) Projection {
	stations := in.Topology.Stations
	p := Projection{
		Active:     []models.LiveRunState{},
		Placements: []models.BusPlacement{},
		Arrivals:   make([]models.StationArrival, len(stations)),
	}
	for i, s := range stations {
		p.Arrivals[i].StationID = s.ID
	}
	if in.Preview != nil || !in.IsToday {
		return p
	}
	p.Live = true

	total := in.Topology.TotalDuration()
	for _, r := range in.Runs {
		if RunStatusAt(r, in.Now, total) != models.RunRunning {
			continue
		}
		p.Active = append(p.Active, models.LiveRunState{
			RunID:          r.ID,
			DepartureTime:  r.DepartureTime,
			ElapsedMinutes: in.Now - float64(r.DepartureTime),
			Status:         models.RunRunning,
			ColorTag:       r.ColorTag,
		})
	}

	for _, a := range p.Active {
		if placement, ok := Place(stations, a.RunID, a.ElapsedMinutes); ok {
			p.Placements = append(p.Placements, placement)
		}
	}

	for i, s := range stations {
		p.Arrivals[i].Countdown = StationCountdown(p.Active, s)
	}
	return p
}

// Place positions a bus elapsed minutes into its run. A bus between station i
// and i+1 is placed on segment i. A bus within TerminusTolerance of the last
// station is flagged AtTerminus; past the last station it sits on the last
// station's index with zero fraction. During the rest of the end buffer the
// bus is live but not drawn.
func Place(stations []models.Station, runID string, elapsed float64) (models.BusPlacement, bool) {
	n := len(stations)
	if n == 0 {
		return models.BusPlacement{}, false
	}
	last := float64(stations[n-1].DistanceFromStart)
	atTerminus := math.Abs(elapsed-last) < TerminusTolerance

	for i := 0; i < n-1; i++ {
		from := float64(stations[i].DistanceFromStart)
		to := float64(stations[i+1].DistanceFromStart)
		if elapsed >= from && elapsed < to {
			fraction := (elapsed - from) / (to - from)
			return models.BusPlacement{
				RunID:      runID,
				Segment:    i,
				Fraction:   clamp(fraction, 0, MaxSegmentFraction),
				AtTerminus: atTerminus,
			}, true
		}
	}

	if atTerminus {
		return models.BusPlacement{RunID: runID, Segment: n - 1, AtTerminus: true}, true
	}
	return models.BusPlacement{}, false
}

// StationCountdown returns the wait at s for the running bus closest to it,
// the one with the largest elapsed time that has not yet passed s. When two
// buses have the same elapsed time the first in active order wins. Nil means
// no bus is headed for s.
func StationCountdown(active []models.LiveRunState, s models.Station) *models.Countdown {
	dist := float64(s.DistanceFromStart)
	best := -1
	for i, a := range active {
		if a.ElapsedMinutes >= dist {
			continue
		}
		if best < 0 || a.ElapsedMinutes > active[best].ElapsedMinutes {
			best = i
		}
	}
	if best < 0 {
		return nil
	}

	remaining := dist - active[best].ElapsedMinutes
	if remaining <= ArrivingThreshold {
		return &models.Countdown{Arriving: true, Urgent: true}
	}
	return &models.Countdown{
		Minutes: int(math.Ceil(remaining)),
		Urgent:  remaining < UrgentThreshold,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
