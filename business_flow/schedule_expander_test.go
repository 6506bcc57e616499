package businessflow_test

import (
	"testing"
	"time"

	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestResolveWallClock(t *testing.T) {
	la := mustLoadLocation(t, "America/Los_Angeles")

	t.Run("NormalSummerTime", func(t *testing.T) {
		// 09:00 PDT is UTC-7
		got, adjusted := businessflow.ResolveWallClock(2024, time.June, 15, 9, 0, la)
		assert.Equal(t, time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC), got)
		assert.False(t, adjusted)
	})

	t.Run("NormalWinterTime", func(t *testing.T) {
		// 09:00 PST is UTC-8
		got, adjusted := businessflow.ResolveWallClock(2024, time.January, 15, 9, 0, la)
		assert.Equal(t, time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC), got)
		assert.False(t, adjusted)
	})

	t.Run("UTCPassesThrough", func(t *testing.T) {
		got, adjusted := businessflow.ResolveWallClock(2024, time.June, 15, 9, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), got)
		assert.False(t, adjusted)
	})

	t.Run("SpringForwardGap", func(t *testing.T) {
		// On 2024-03-10 Los Angeles clocks jump from 02:00 to 03:00, so 02:30
		// never occurs. The resolution is the end of the gap: 03:00 PDT.
		got, adjusted := businessflow.ResolveWallClock(2024, time.March, 10, 2, 30, la)
		assert.Equal(t, time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), got)
		assert.True(t, adjusted)

		// The surrounding wall clocks exist and are untouched
		before, adjusted := businessflow.ResolveWallClock(2024, time.March, 10, 1, 59, la)
		assert.Equal(t, time.Date(2024, 3, 10, 9, 59, 0, 0, time.UTC), before)
		assert.False(t, adjusted)

		after, adjusted := businessflow.ResolveWallClock(2024, time.March, 10, 3, 0, la)
		assert.Equal(t, time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), after)
		assert.False(t, adjusted)
	})

	t.Run("FallBackFold", func(t *testing.T) {
		// On 2024-11-03 Los Angeles clocks fall back from 02:00 to 01:00, so
		// 01:30 occurs twice. The resolution is the first occurrence, still
		// on PDT.
		got, adjusted := businessflow.ResolveWallClock(2024, time.November, 3, 1, 30, la)
		assert.Equal(t, time.Date(2024, 11, 3, 8, 30, 0, 0, time.UTC), got)
		assert.True(t, adjusted)

		// 02:30 exists exactly once, on PST
		after, adjusted := businessflow.ResolveWallClock(2024, time.November, 3, 2, 30, la)
		assert.Equal(t, time.Date(2024, 11, 3, 10, 30, 0, 0, time.UTC), after)
		assert.False(t, adjusted)
	})
}

func TestUniformPicker(t *testing.T) {
	start := time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	// Picks stay inside the window, bounds included
	for i := 0; i < 200; i++ {
		picked := businessflow.UniformPicker(start, end)
		assert.False(t, picked.Before(start))
		assert.False(t, picked.After(end))
	}

	// A collapsed window pins to its start
	assert.Equal(t, start, businessflow.UniformPicker(start, start))
	assert.Equal(t, start, businessflow.UniformPicker(start, start.Add(-time.Hour)))
}

func TestExpandSchedule(t *testing.T) {
	la := mustLoadLocation(t, "America/Los_Angeles")
	pickStart := func(start, end time.Time) time.Time { return start }

	t.Run("ExactWindow", func(t *testing.T) {
		schedule := models.Schedule{
			{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "09:00"},
		}
		startDate := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		// 09:00 PDT on the start date itself
		want := time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC)
		assert.Equal(t, 0, occs[0].DayNum)
		assert.Equal(t, want, occs[0].ScheduledTs)
		assert.Equal(t, want, occs[0].WindowStart)
		assert.Equal(t, want, occs[0].WindowEnd)
		assert.False(t, occs[0].Adjusted)
		assert.Nil(t, occs[0].ReminderTs)
		assert.Nil(t, occs[0].ExpireTs)
	})

	t.Run("RangedWindowUsesPicker", func(t *testing.T) {
		schedule := models.Schedule{
			{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"},
		}
		startDate := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

		var gotStart, gotEnd time.Time
		pick := func(start, end time.Time) time.Time {
			gotStart, gotEnd = start, end
			return start.Add(30 * time.Minute)
		}

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, pick)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		windowStart := time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC)
		windowEnd := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)

		// The picker sees the resolved UTC bounds and its pick is kept
		assert.Equal(t, windowStart, gotStart)
		assert.Equal(t, windowEnd, gotEnd)
		assert.Equal(t, windowStart.Add(30*time.Minute), occs[0].ScheduledTs)
		assert.Equal(t, windowStart, occs[0].WindowStart)
		assert.Equal(t, windowEnd, occs[0].WindowEnd)
	})

	t.Run("NilPickerStaysInWindow", func(t *testing.T) {
		schedule := models.Schedule{
			{StartDayNum: 2, StartTime: "08:00", EndDayNum: 2, EndTime: "20:00"},
		}
		startDate := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		assert.False(t, occs[0].ScheduledTs.Before(occs[0].WindowStart))
		assert.False(t, occs[0].ScheduledTs.After(occs[0].WindowEnd))
	})

	t.Run("DayNumAnchorsWindows", func(t *testing.T) {
		schedule := models.Schedule{
			{StartDayNum: 0, StartTime: "10:00", EndDayNum: 0, EndTime: "10:00"},
			{StartDayNum: 3, StartTime: "10:00", EndDayNum: 3, EndTime: "10:00"},
			{StartDayNum: 30, StartTime: "10:00", EndDayNum: 30, EndTime: "10:00"},
		}
		startDate := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, pickStart)
		require.NoError(t, err)
		require.Len(t, occs, 3)

		assert.Equal(t, time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC), occs[0].ScheduledTs)
		assert.Equal(t, time.Date(2024, 6, 13, 17, 0, 0, 0, time.UTC), occs[1].ScheduledTs)
		// Day 30 rolls into July
		assert.Equal(t, time.Date(2024, 7, 10, 17, 0, 0, 0, time.UTC), occs[2].ScheduledTs)
		assert.Equal(t, 0, occs[0].DayNum)
		assert.Equal(t, 3, occs[1].DayNum)
		assert.Equal(t, 30, occs[2].DayNum)
	})

	t.Run("Latencies", func(t *testing.T) {
		schedule := models.Schedule{
			{StartDayNum: 1, StartTime: "12:00", EndDayNum: 1, EndTime: "12:00"},
		}
		startDate := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
		reminder := models.Latency(time.Hour)
		expire := models.Latency(24 * time.Hour)

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, &reminder, &expire, nil)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		require.NotNil(t, occs[0].ReminderTs)
		require.NotNil(t, occs[0].ExpireTs)
		assert.Equal(t, occs[0].ScheduledTs.Add(time.Hour), *occs[0].ReminderTs)
		assert.Equal(t, occs[0].ScheduledTs.Add(24*time.Hour), *occs[0].ExpireTs)
	})

	t.Run("SpringForwardGap", func(t *testing.T) {
		// Day 1 falls on 2024-03-10 and 02:30 sits inside the skipped hour.
		schedule := models.Schedule{
			{StartDayNum: 1, StartTime: "02:30", EndDayNum: 1, EndTime: "02:30"},
		}
		startDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		assert.Equal(t, time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), occs[0].ScheduledTs)
		assert.True(t, occs[0].Adjusted)
	})

	t.Run("GapCollapsesWindow", func(t *testing.T) {
		// Both bounds sit inside the skipped hour, so the whole window
		// collapses to the gap's end.
		schedule := models.Schedule{
			{StartDayNum: 1, StartTime: "02:00", EndDayNum: 1, EndTime: "02:59"},
		}
		startDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

		picked := false
		pick := func(start, end time.Time) time.Time {
			picked = true
			return start
		}

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, pick)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		gapEnd := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, gapEnd, occs[0].ScheduledTs)
		assert.Equal(t, gapEnd, occs[0].WindowStart)
		assert.Equal(t, gapEnd, occs[0].WindowEnd)
		assert.True(t, occs[0].Adjusted)
		assert.False(t, picked)
	})

	t.Run("FallBackFold", func(t *testing.T) {
		// 01:30 occurs twice on 2024-11-03; the first occurrence wins.
		schedule := models.Schedule{
			{StartDayNum: 0, StartTime: "01:30", EndDayNum: 0, EndTime: "01:30"},
		}
		startDate := time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		assert.Equal(t, time.Date(2024, 11, 3, 8, 30, 0, 0, time.UTC), occs[0].ScheduledTs)
		assert.True(t, occs[0].Adjusted)
	})

	t.Run("WindowSpanningTransition", func(t *testing.T) {
		// A window from day 0 to day 1 across the spring-forward night still
		// has real bounds an hour of wall clock apart from naive arithmetic.
		schedule := models.Schedule{
			{StartDayNum: 0, StartTime: "22:00", EndDayNum: 1, EndTime: "06:00"},
		}
		startDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

		occs, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, pickStart)
		require.NoError(t, err)
		require.Len(t, occs, 1)

		// 22:00 PST on the 9th, 06:00 PDT on the 10th: a 7-hour real span
		assert.Equal(t, time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC), occs[0].WindowStart)
		assert.Equal(t, time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC), occs[0].WindowEnd)
		assert.False(t, occs[0].Adjusted)
	})

	t.Run("MalformedClock", func(t *testing.T) {
		schedule := models.Schedule{
			{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "09:00"},
			{StartDayNum: 1, StartTime: "bogus", EndDayNum: 1, EndTime: "09:00"},
		}
		startDate := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

		_, err := businessflow.ExpandSchedule(schedule, startDate, la, nil, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "window 1:")
	})

	t.Run("EmptySchedule", func(t *testing.T) {
		occs, err := businessflow.ExpandSchedule(models.Schedule{}, time.Now(), la, nil, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, occs)
	})
}
