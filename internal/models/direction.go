package models

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is one of the two travel directions of the shuttle.
type Direction string

const (
	SouthToNorth Direction = "SOUTH_TO_NORTH"
	NorthToSouth Direction = "NORTH_TO_SOUTH"
)

// Directions lists both directions in display order.
var Directions = []Direction{SouthToNorth, NorthToSouth}

var ErrInvalidDirection = errors.New("invalid direction")

// ParseDirection accepts the full name or the short forms "sn" and "ns", in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SouthToNorth), "SN", "S2N":
		return SouthToNorth, nil
	case string(NorthToSouth), "NS", "N2S":
		return NorthToSouth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == NorthToSouth {
		return SouthToNorth
	}
	return NorthToSouth
}

// Short returns "sn" or "ns", used in URLs and subjects.
func (d Direction) Short() string {
	if d == NorthToSouth {
		return "ns"
	}
	return "sn"
}

// LabelKey is the localization key of the direction toggle.
func (d Direction) LabelKey() string {
	return "direction_" + d.Short()
}

func (d Direction) Valid() bool {
	return d == SouthToNorth || d == NorthToSouth
}

// Mode selects the station topology. At night the southern gate is closed and
// the route is shorter.
type Mode string

const (
	DayMode   Mode = "day"
	NightMode Mode = "night"
)
