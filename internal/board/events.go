package board

import (
	"time"

	"shuttle.campusbus.org/internal/models"
)

// Event is a rider action. Events are applied on the board goroutine.
type Event interface {
	apply(State) State
}

// ToggleDirection flips the travel direction. A pinned run belongs to one
// direction, so the preview is dropped.
type ToggleDirection struct{}

func (ToggleDirection) apply(s State) State {
	s.Direction = s.Direction.Opposite()
	s.PreviewRunID = ""
	return s
}

// SetDirection selects a direction explicitly.
type SetDirection struct {
	Direction models.Direction
}

func (e SetDirection) apply(s State) State {
	if e.Direction.Valid() && e.Direction != s.Direction {
		s.Direction = e.Direction
		s.PreviewRunID = ""
	}
	return s
}

// SelectDate switches the viewed day. A zero Date returns to today.
type SelectDate struct {
	Date time.Time
}

func (e SelectDate) apply(s State) State {
	s.Date = e.Date
	s.PreviewRunID = ""
	return s
}

// Preview pins the board to one run.
type Preview struct {
	RunID string
}

func (e Preview) apply(s State) State {
	s.PreviewRunID = e.RunID
	return s
}

type ClearPreview struct{}

func (ClearPreview) apply(s State) State {
	s.PreviewRunID = ""
	return s
}

type ToggleShowAll struct{}

func (ToggleShowAll) apply(s State) State {
	s.ShowAll = !s.ShowAll
	return s
}

type SetLang struct {
	Lang string
}

func (e SetLang) apply(s State) State {
	s.Lang = e.Lang
	return s
}
