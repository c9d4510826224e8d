// Package schedule loads the static timetable and station topologies and
// serves them read-only.
package schedule

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/utils"
)

//go:embed data/schedule.yaml
var defaultSchedule []byte

var (
	ErrUnknownDirection = errors.New("no schedule for direction")
	ErrUnknownTopology  = errors.New("no topology for direction and mode")
)

type topologyKey struct {
	direction models.Direction
	mode      models.Mode
}

// Store holds the weekly schedules and topologies. It is immutable after
// loading and safe for concurrent use.
type Store struct {
	topologies map[topologyKey]models.Topology
	schedules  map[models.Direction]models.DirectionSchedule
}

// LoadDefault parses the timetable compiled into the binary.
func LoadDefault() (*Store, error) {
	return Load(defaultSchedule)
}

// LoadFile parses a timetable file with the same layout as the embedded one.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}
	store, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

var validate = validator.New()

// Load parses and validates a timetable document. Any malformed time or broken
// invariant fails the whole load.
func Load(data []byte) (*Store, error) {
	var doc fileSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}

	store := &Store{
		topologies: make(map[topologyKey]models.Topology),
		schedules:  make(map[models.Direction]models.DirectionSchedule),
	}

	for _, ts := range doc.Topologies {
		topo, err := buildTopology(ts)
		if err != nil {
			return nil, err
		}
		key := topologyKey{topo.Direction, topo.Mode}
		if _, dup := store.topologies[key]; dup {
			return nil, fmt.Errorf("invalid schedule: duplicate topology %s/%s", topo.Direction, topo.Mode)
		}
		store.topologies[key] = topo
	}

	for _, ss := range doc.Schedules {
		sched, err := buildSchedule(ss)
		if err != nil {
			return nil, err
		}
		if _, dup := store.schedules[sched.Direction]; dup {
			return nil, fmt.Errorf("invalid schedule: duplicate schedule for %s", sched.Direction)
		}
		store.schedules[sched.Direction] = sched
	}

	for _, d := range models.Directions {
		if _, ok := store.schedules[d]; !ok {
			return nil, fmt.Errorf("invalid schedule: %w %s", ErrUnknownDirection, d)
		}
		for _, mode := range []models.Mode{models.DayMode, models.NightMode} {
			if _, ok := store.topologies[topologyKey{d, mode}]; !ok {
				return nil, fmt.Errorf("invalid schedule: %w %s/%s", ErrUnknownTopology, d, mode)
			}
		}
	}

	return store, nil
}

func buildTopology(ts topologySchema) (models.Topology, error) {
	dir, err := models.ParseDirection(ts.Direction)
	if err != nil {
		return models.Topology{}, fmt.Errorf("invalid schedule: topology: %w", err)
	}
	topo := models.Topology{Direction: dir, Mode: models.Mode(ts.Mode)}

	seen := make(map[string]bool, len(ts.Stations))
	for i, s := range ts.Stations {
		if seen[s.ID] {
			return models.Topology{}, fmt.Errorf("invalid schedule: %s/%s: duplicate station %q", dir, ts.Mode, s.ID)
		}
		seen[s.ID] = true
		if i == 0 && s.Distance != 0 {
			return models.Topology{}, fmt.Errorf("invalid schedule: %s/%s: first station %q must be at distance 0", dir, ts.Mode, s.ID)
		}
		if i > 0 && s.Distance < ts.Stations[i-1].Distance {
			return models.Topology{}, fmt.Errorf("invalid schedule: %s/%s: station %q distance decreases", dir, ts.Mode, s.ID)
		}
		topo.Stations = append(topo.Stations, models.Station{ID: s.ID, DistanceFromStart: s.Distance})
	}
	return topo, nil
}

func buildSchedule(ss scheduleSchema) (models.DirectionSchedule, error) {
	dir, err := models.ParseDirection(ss.Direction)
	if err != nil {
		return models.DirectionSchedule{}, fmt.Errorf("invalid schedule: %w", err)
	}
	sched := models.DirectionSchedule{Direction: dir, Runs: make([]models.BusRun, 0, len(ss.Runs))}

	seen := make(map[string]bool, len(ss.Runs))
	for _, rs := range ss.Runs {
		if seen[rs.ID] {
			return models.DirectionSchedule{}, fmt.Errorf("invalid schedule: %s: duplicate run id %q", dir, rs.ID)
		}
		seen[rs.ID] = true

		departure, err := utils.TimeToMinutes(rs.Departure)
		if err != nil {
			return models.DirectionSchedule{}, fmt.Errorf("invalid schedule: run %q: %w", rs.ID, err)
		}
		if departure >= utils.MinutesPerDay {
			return models.DirectionSchedule{}, fmt.Errorf("invalid schedule: run %q: departure %s is past midnight", rs.ID, rs.Departure)
		}

		run := models.BusRun{ID: rs.ID, DepartureTime: departure}
		for _, d := range rs.Days {
			run.ActiveDays |= models.NewDaySet(time.Weekday(d))
		}
		if rs.Tag != "" {
			tag := rs.Tag
			run.ColorTag = &tag
		}
		sched.Runs = append(sched.Runs, run)
	}
	return sched, nil
}

// Schedule returns the weekly run list of dir. The returned slice is a copy.
func (s *Store) Schedule(dir models.Direction) (models.DirectionSchedule, error) {
	sched, ok := s.schedules[dir]
	if !ok {
		return models.DirectionSchedule{}, fmt.Errorf("%w %q", ErrUnknownDirection, dir)
	}
	sched.Runs = slices.Clone(sched.Runs)
	return sched, nil
}

// Topology returns the station list of dir in mode. The returned slice is a copy.
func (s *Store) Topology(dir models.Direction, mode models.Mode) (models.Topology, error) {
	topo, ok := s.topologies[topologyKey{dir, mode}]
	if !ok {
		return models.Topology{}, fmt.Errorf("%w %s/%s", ErrUnknownTopology, dir, mode)
	}
	topo.Stations = slices.Clone(topo.Stations)
	return topo, nil
}

// StationIDs returns every station id used by any topology, in first-seen order.
func (s *Store) StationIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, d := range models.Directions {
		for _, mode := range []models.Mode{models.DayMode, models.NightMode} {
			for _, st := range s.topologies[topologyKey{d, mode}].Stations {
				if !seen[st.ID] {
					seen[st.ID] = true
					ids = append(ids, st.ID)
				}
			}
		}
	}
	return ids
}

// RunCount returns the number of weekly runs of dir.
func (s *Store) RunCount(dir models.Direction) int {
	return len(s.schedules[dir].Runs)
}
