package shuttle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/schedule"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := schedule.LoadDefault()
	require.NoError(t, err)
	return NewEngine(store, 1170)
}

// 2025-03-12 is a Wednesday.
func wednesdayAt(hour, minute int) time.Time {
	return time.Date(2025, 3, 12, hour, minute, 0, 0, time.UTC)
}

func TestBuildWednesdayFirstDeparture(t *testing.T) {
	engine := newTestEngine(t)

	view, err := engine.Build(Request{Direction: models.SouthToNorth, Now: wednesdayAt(7, 25)})
	require.NoError(t, err)

	assert.True(t, view.IsToday)
	assert.Equal(t, "2025-03-12", view.Date)
	assert.Equal(t, time.Wednesday, view.Weekday)
	assert.Equal(t, 445, view.NowMinutes)
	assert.Equal(t, "07:25", view.Clock)
	assert.Equal(t, models.DayMode, view.Mode)
	assert.Equal(t, "sc_9", view.Topology.Stations[0].ID)

	// both 07:25 runs operate on Wednesday and both are on the road
	assert.Equal(t, []string{"sn_0725", "sn_0725_red"}, ids(view.Runs[:2]))
	require.True(t, view.Projection.Live)
	require.Len(t, view.Projection.Active, 2)
	assert.Equal(t, "sn_0725", view.Projection.Active[0].RunID)
	assert.Equal(t, "sn_0725_red", view.Projection.Active[1].RunID)

	// next departure is the 07:40 red run
	assert.Equal(t, DisplayNext, view.Display.Kind)
	assert.Equal(t, "sn_0740", view.Display.Run.ID)
	assert.Equal(t, 15, *view.Display.MinutesUntil)
	assert.Equal(t, "07:48", view.DisplayTimes[2].Clock)

	require.NotNil(t, view.Projection.Arrivals[1].Countdown)
	assert.Equal(t, 3, view.Projection.Arrivals[1].Countdown.Minutes)
	assert.False(t, view.Projection.Arrivals[1].Countdown.Urgent)
}

func TestBuildNightTopology(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("next run after cutoff", func(t *testing.T) {
		view, err := engine.Build(Request{Direction: models.SouthToNorth, Now: wednesdayAt(19, 35)})
		require.NoError(t, err)
		assert.Equal(t, models.NightMode, view.Mode)
		assert.Equal(t, "sc_2", view.Topology.Stations[0].ID)
		assert.Equal(t, "sn_1940", view.Display.Run.ID)
	})

	t.Run("after the last run", func(t *testing.T) {
		view, err := engine.Build(Request{Direction: models.NorthToSouth, Now: wednesdayAt(23, 0)})
		require.NoError(t, err)
		assert.Equal(t, models.NightMode, view.Mode)
		assert.Equal(t, DisplayNoMoreRuns, view.Display.Kind)
		assert.Empty(t, view.Projection.Active)
		assert.Empty(t, view.DisplayTimes)
	})

	t.Run("another day uses the day route", func(t *testing.T) {
		view, err := engine.Build(Request{
			Direction: models.SouthToNorth,
			Now:       wednesdayAt(21, 0),
			Date:      time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.False(t, view.IsToday)
		assert.Equal(t, models.DayMode, view.Mode)
		assert.False(t, view.Projection.Live)
		assert.Equal(t, DisplayFirstOfDay, view.Display.Kind)
		assert.Equal(t, "sn_0725", view.Display.Run.ID)
		assert.True(t, view.Schedule.ShowAll)
	})
}

func TestBuildPreview(t *testing.T) {
	engine := newTestEngine(t)

	view, err := engine.Build(Request{
		Direction:    models.SouthToNorth,
		Now:          wednesdayAt(7, 30),
		PreviewRunID: "sn_1335_red",
	})
	require.NoError(t, err)

	assert.True(t, view.Preview())
	assert.Equal(t, "sn_1335_red", view.Display.Run.ID)
	assert.False(t, view.Projection.Live)
	assert.Empty(t, view.Projection.Active)
	for _, a := range view.Projection.Arrivals {
		assert.Nil(t, a.Countdown)
	}
	assert.Equal(t, "13:43", view.DisplayTimes[2].Clock)

	// sn_1335_red only runs on Wednesdays
	_, err = engine.Build(Request{
		Direction:    models.SouthToNorth,
		Now:          time.Date(2025, 3, 13, 7, 30, 0, 0, time.UTC),
		PreviewRunID: "sn_1335_red",
	})
	assert.True(t, errors.Is(err, ErrUnknownRun))
}

func TestBuildRejectsInvalidDirection(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Build(Request{Direction: "EAST", Now: wednesdayAt(8, 0)})
	assert.True(t, errors.Is(err, models.ErrInvalidDirection))
}

func TestBuildIsPure(t *testing.T) {
	engine := newTestEngine(t)
	req := Request{Direction: models.NorthToSouth, Now: wednesdayAt(12, 33), ShowAll: true}

	first, err := engine.Build(req)
	require.NoError(t, err)
	second, err := engine.Build(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
