package schedule

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Topologies []topologySchema `yaml:"topologies" validate:"required,min=1,dive"`
	Schedules  []scheduleSchema `yaml:"schedules" validate:"required,min=1,dive"`
}

type topologySchema struct {
	Direction string          `yaml:"direction" validate:"required"`
	Mode      string          `yaml:"mode" validate:"required,oneof=day night"`
	Stations  []stationSchema `yaml:"stations" validate:"required,min=2,dive"`
}

type stationSchema struct {
	ID       string `yaml:"id" validate:"required"`
	Distance int    `yaml:"distance" validate:"gte=0"`
}

type scheduleSchema struct {
	Direction string      `yaml:"direction" validate:"required"`
	Runs      []runSchema `yaml:"runs" validate:"required,min=1,dive"`
}

type runSchema struct {
	ID        string   `yaml:"id" validate:"required"`
	Departure string   `yaml:"departure" validate:"required"`
	Days      daysList `yaml:"days" validate:"required,min=1,dive,gte=0,lte=6"`
	Tag       string   `yaml:"tag"`
}

// daysList accepts either a sequence of weekday numbers (0 = Sunday) or one of
// the names in namedDays.
type daysList []int

var namedDays = map[string][]int{
	"daily":    {0, 1, 2, 3, 4, 5, 6},
	"weekdays": {1, 2, 3, 4, 5},
	"weekends": {0, 6},
}

func (d *daysList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		days, ok := namedDays[strings.ToLower(node.Value)]
		if !ok {
			return fmt.Errorf("line %d: unknown day set %q", node.Line, node.Value)
		}
		*d = append(daysList(nil), days...)
		return nil
	case yaml.SequenceNode:
		var days []int
		if err := node.Decode(&days); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*d = days
		return nil
	}
	return fmt.Errorf("line %d: days must be a list or a named set", node.Line)
}
