package models_test

import (
	"testing"

	"github.com/emalab/pingflow/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleWindowClocks(t *testing.T) {
	// Valid clock readings parse into minutes since local midnight
	w := models.ScheduleWindow{StartTime: "09:30", EndTime: "23:59"}

	startMin, err := w.StartMinutes()
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, startMin)

	endMin, err := w.EndMinutes()
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, endMin)

	midnight := models.ScheduleWindow{StartTime: "00:00"}
	min, err := midnight.StartMinutes()
	require.NoError(t, err)
	assert.Equal(t, 0, min)

	// Malformed readings are rejected with a message naming the input
	for _, bad := range []string{"12", "12:", ":30", "aa:bb", "12:3x", ""} {
		_, err := models.ScheduleWindow{StartTime: bad}.StartMinutes()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "malformed clock reading")
	}

	_, err = models.ScheduleWindow{StartTime: "25:00"}.StartMinutes()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hour out of range")

	_, err = models.ScheduleWindow{StartTime: "12:60"}.StartMinutes()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "minute out of range")
}

func TestScheduleWindowIsExact(t *testing.T) {
	exact := models.ScheduleWindow{StartDayNum: 2, StartTime: "09:00", EndDayNum: 2, EndTime: "09:00"}
	assert.True(t, exact.IsExact())

	ranged := models.ScheduleWindow{StartDayNum: 2, StartTime: "09:00", EndDayNum: 2, EndTime: "17:00"}
	assert.False(t, ranged.IsExact())

	multiDay := models.ScheduleWindow{StartDayNum: 2, StartTime: "09:00", EndDayNum: 3, EndTime: "09:00"}
	assert.False(t, multiDay.IsExact())
}

func TestScheduleWindowValidate(t *testing.T) {
	t.Run("ValidWindows", func(t *testing.T) {
		sameDay := models.ScheduleWindow{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"}
		assert.NoError(t, sameDay.Validate(0))

		exact := models.ScheduleWindow{StartDayNum: 5, StartTime: "12:00", EndDayNum: 5, EndTime: "12:00"}
		assert.NoError(t, exact.Validate(0))

		// A window may cross midnight as long as the absolute end is not
		// before the absolute start
		overnight := models.ScheduleWindow{StartDayNum: 1, StartTime: "22:00", EndDayNum: 2, EndTime: "06:00"}
		assert.NoError(t, overnight.Validate(0))
	})

	t.Run("NegativeDayNums", func(t *testing.T) {
		w := models.ScheduleWindow{StartDayNum: -1, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"}
		err := w.Validate(3)
		require.Error(t, err)

		vErr, ok := err.(*models.WindowValidationError)
		require.True(t, ok)
		assert.Equal(t, 3, vErr.Index)
		assert.Equal(t, "start_day_num", vErr.Field)
		assert.Equal(t, "must not be negative", vErr.Message)

		w = models.ScheduleWindow{StartDayNum: 0, StartTime: "09:00", EndDayNum: -2, EndTime: "17:00"}
		err = w.Validate(0)
		require.Error(t, err)

		vErr, ok = err.(*models.WindowValidationError)
		require.True(t, ok)
		assert.Equal(t, "end_day_num", vErr.Field)
	})

	t.Run("MalformedClocks", func(t *testing.T) {
		w := models.ScheduleWindow{StartDayNum: 0, StartTime: "9am", EndDayNum: 0, EndTime: "17:00"}
		err := w.Validate(0)
		require.Error(t, err)

		vErr, ok := err.(*models.WindowValidationError)
		require.True(t, ok)
		assert.Equal(t, "start_time", vErr.Field)

		w = models.ScheduleWindow{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "24:00"}
		err = w.Validate(0)
		require.Error(t, err)

		vErr, ok = err.(*models.WindowValidationError)
		require.True(t, ok)
		assert.Equal(t, "end_time", vErr.Field)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		// Same day, earlier clock
		w := models.ScheduleWindow{StartDayNum: 2, StartTime: "10:00", EndDayNum: 2, EndTime: "09:00"}
		err := w.Validate(1)
		require.Error(t, err)

		vErr, ok := err.(*models.WindowValidationError)
		require.True(t, ok)
		assert.Equal(t, 1, vErr.Index)
		assert.Equal(t, "end_day_num/end_time", vErr.Field)
		assert.Equal(t, "window ends before it starts", vErr.Message)
		assert.Equal(t, "schedule window 1: end_day_num/end_time: window ends before it starts", vErr.Error())

		// Earlier day, later clock still ends before the start in absolute minutes
		w = models.ScheduleWindow{StartDayNum: 3, StartTime: "08:00", EndDayNum: 2, EndTime: "23:00"}
		assert.Error(t, w.Validate(0))
	})
}

func TestScheduleValidate(t *testing.T) {
	// An empty schedule is valid and expands to nothing
	assert.NoError(t, models.Schedule{}.Validate())
	assert.NoError(t, models.Schedule(nil).Validate())

	valid := models.Schedule{
		{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"},
		{StartDayNum: 1, StartTime: "09:00", EndDayNum: 1, EndTime: "09:00"},
	}
	assert.NoError(t, valid.Validate())

	// The first failing window is reported with its index
	invalid := models.Schedule{
		{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"},
		{StartDayNum: 1, StartTime: "17:00", EndDayNum: 1, EndTime: "09:00"},
		{StartDayNum: -1, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"},
	}
	err := invalid.Validate()
	require.Error(t, err)

	vErr, ok := err.(*models.WindowValidationError)
	require.True(t, ok)
	assert.Equal(t, 1, vErr.Index)
}

func TestScheduleValueScan(t *testing.T) {
	s := models.Schedule{
		{StartDayNum: 0, StartTime: "09:00", EndDayNum: 0, EndTime: "17:00"},
	}

	value, err := s.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"start_day_num":0,"start_time":"09:00","end_day_num":0,"end_time":"17:00"}]`, string(value.([]byte)))

	// A nil schedule stores as an empty array, not SQL NULL
	value, err = models.Schedule(nil).Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(value.([]byte)))

	var scanned models.Schedule
	err = scanned.Scan([]byte(`[{"start_day_num":2,"start_time":"08:30","end_day_num":2,"end_time":"20:00"}]`))
	require.NoError(t, err)
	require.Len(t, scanned, 1)
	assert.Equal(t, 2, scanned[0].StartDayNum)
	assert.Equal(t, "08:30", scanned[0].StartTime)
	assert.Equal(t, "20:00", scanned[0].EndTime)

	err = scanned.Scan(nil)
	require.NoError(t, err)
	assert.Empty(t, scanned)

	err = scanned.Scan(42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot scan")
}
