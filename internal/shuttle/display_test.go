package shuttle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shuttle.campusbus.org/internal/models"
)

func TestSelectDisplayRun(t *testing.T) {
	runs := []models.BusRun{newRun(t, "a", "07:25"), newRun(t, "b", "08:00")}
	pinned := runs[1]

	t.Run("preview wins", func(t *testing.T) {
		d := SelectDisplayRun(runs, 300, true, &pinned)
		assert.Equal(t, DisplayPreview, d.Kind)
		assert.Equal(t, "b", d.Run.ID)
		assert.Nil(t, d.MinutesUntil)
	})

	t.Run("other day shows first run", func(t *testing.T) {
		d := SelectDisplayRun(runs, 1000, false, nil)
		assert.Equal(t, DisplayFirstOfDay, d.Kind)
		assert.Equal(t, "a", d.Run.ID)
	})

	t.Run("today shows next strictly after now", func(t *testing.T) {
		d := SelectDisplayRun(runs, 445, true, nil)
		assert.Equal(t, DisplayNext, d.Kind)
		assert.Equal(t, "b", d.Run.ID)
		require.NotNil(t, d.MinutesUntil)
		assert.Equal(t, 35, *d.MinutesUntil)
	})

	t.Run("no more runs today", func(t *testing.T) {
		d := SelectDisplayRun(runs, 480, true, nil)
		assert.Equal(t, DisplayNoMoreRuns, d.Kind)
		assert.Nil(t, d.Run)
	})

	t.Run("empty day", func(t *testing.T) {
		assert.Equal(t, DisplayNoRuns, SelectDisplayRun(nil, 0, true, nil).Kind)
		assert.Equal(t, DisplayNoRuns, SelectDisplayRun(nil, 0, false, nil).Kind)
	})
}

func TestStationTimes(t *testing.T) {
	times := StationTimes(newRun(t, "a", "07:25"), dayRoute)
	assert.Equal(t, []StationTime{
		{StationID: "sc_9", Minutes: 445, Clock: "07:25"},
		{StationID: "sc_2", Minutes: 448, Clock: "07:28"},
		{StationID: "nc_main", Minutes: 453, Clock: "07:33"},
	}, times)

	late := StationTimes(newRun(t, "z", "23:55"), dayRoute)
	assert.Equal(t, "24:03", late[2].Clock)
}

func TestTagLabel(t *testing.T) {
	assert.Equal(t, "RED", TagLabel(withTag(newRun(t, "a", "07:25"), "red")))
	assert.Equal(t, "ORANGE", TagLabel(withTag(newRun(t, "a", "07:25"), "Orange")))
	assert.Equal(t, "express", TagLabel(withTag(newRun(t, "a", "07:25"), "express")))
	assert.Equal(t, "", TagLabel(newRun(t, "a", "07:25")))
}

func TestUpcomingRuns(t *testing.T) {
	runs := []models.BusRun{
		newRun(t, "a", "09:00"),
		withTag(newRun(t, "b", "10:00"), "blue"),
		newRun(t, "c", "11:00"),
	}

	t.Run("live hides departed runs", func(t *testing.T) {
		list := UpcomingRuns(runs, 600, true, false, "c")
		assert.False(t, list.ShowAll)
		assert.Equal(t, 1, list.HiddenPast)
		require.Len(t, list.Rows, 2)
		// departing this minute still counts as upcoming
		assert.Equal(t, "b", list.Rows[0].RunID)
		assert.False(t, list.Rows[0].Past)
		assert.Equal(t, "BLUE", list.Rows[0].TagLabel)
		assert.True(t, list.Rows[1].Featured)
	})

	t.Run("live show all marks departed", func(t *testing.T) {
		list := UpcomingRuns(runs, 600, true, true, "")
		require.Len(t, list.Rows, 3)
		assert.True(t, list.Rows[0].Past)
		assert.False(t, list.Rows[1].Past)
		assert.Equal(t, 0, list.HiddenPast)
	})

	t.Run("other day lists everything", func(t *testing.T) {
		list := UpcomingRuns(runs, 1000, false, false, "")
		assert.True(t, list.ShowAll)
		require.Len(t, list.Rows, 3)
		for _, row := range list.Rows {
			assert.False(t, row.Past)
		}
	})

	t.Run("everything departed", func(t *testing.T) {
		list := UpcomingRuns(runs, 1300, true, false, "")
		assert.Empty(t, list.Rows)
		assert.Equal(t, 3, list.HiddenPast)
	})
}
