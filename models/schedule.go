package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the span of one schedule day in minutes.
const MinutesPerDay = 24 * 60

// ScheduleWindow is one entry of a ping template's schedule: a window of
// local wall-clock time, expressed as day offsets from an enrollment's start
// date plus "HH:MM" clock readings. A window whose start equals its end pins
// the ping to that exact instant; otherwise one instant inside the window is
// picked at materialization time.
type ScheduleWindow struct {
	StartDayNum int    `json:"start_day_num"`
	StartTime   string `json:"start_time"`
	EndDayNum   int    `json:"end_day_num"`
	EndTime     string `json:"end_time"`
}

// StartMinutes parses StartTime into minutes since local midnight.
func (w ScheduleWindow) StartMinutes() (int, error) {
	return parseClock(w.StartTime)
}

// EndMinutes parses EndTime into minutes since local midnight.
func (w ScheduleWindow) EndMinutes() (int, error) {
	return parseClock(w.EndTime)
}

// IsExact reports whether the window collapses to a single instant.
func (w ScheduleWindow) IsExact() bool {
	return w.StartDayNum == w.EndDayNum && w.StartTime == w.EndTime
}

// parseClock parses a 24-hour "HH:MM" reading into minutes since midnight.
func parseClock(s string) (int, error) {
	sep := strings.IndexByte(s, ':')
	if sep <= 0 || sep == len(s)-1 {
		return 0, fmt.Errorf("malformed clock reading %q, want HH:MM", s)
	}
	hh, err := strconv.Atoi(s[:sep])
	if err != nil {
		return 0, fmt.Errorf("malformed clock reading %q, want HH:MM", s)
	}
	mm, err := strconv.Atoi(s[sep+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed clock reading %q, want HH:MM", s)
	}
	if hh < 0 || hh > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	if mm < 0 || mm > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	return hh*60 + mm, nil
}

// WindowValidationError identifies which field of which window failed validation.
type WindowValidationError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *WindowValidationError) Error() string {
	return fmt.Sprintf("schedule window %d: %s: %s", e.Index, e.Field, e.Message)
}

// Validate checks a single window. The returned error is always a
// *WindowValidationError carrying the given index.
func (w ScheduleWindow) Validate(index int) error {
	if w.StartDayNum < 0 {
		return &WindowValidationError{Index: index, Field: "start_day_num", Message: "must not be negative"}
	}
	if w.EndDayNum < 0 {
		return &WindowValidationError{Index: index, Field: "end_day_num", Message: "must not be negative"}
	}
	startMin, err := w.StartMinutes()
	if err != nil {
		return &WindowValidationError{Index: index, Field: "start_time", Message: err.Error()}
	}
	endMin, err := w.EndMinutes()
	if err != nil {
		return &WindowValidationError{Index: index, Field: "end_time", Message: err.Error()}
	}
	if w.EndDayNum*MinutesPerDay+endMin < w.StartDayNum*MinutesPerDay+startMin {
		return &WindowValidationError{
			Index:   index,
			Field:   "end_day_num/end_time",
			Message: "window ends before it starts",
		}
	}
	return nil
}

// Schedule is the ordered list of windows a ping template expands from.
// Windows may overlap; each produces its own ping. An empty schedule is
// valid and produces nothing.
type Schedule []ScheduleWindow

// Validate checks every window in order and returns the first failure.
func (s Schedule) Validate() error {
	for i, w := range s {
		if err := w.Validate(i); err != nil {
			return err
		}
	}
	return nil
}

// Value implements the driver.Valuer interface for Schedule
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		s = Schedule{}
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for Schedule
func (s *Schedule) Scan(value any) error {
	if value == nil {
		*s = Schedule{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Schedule", value)
	}

	return json.Unmarshal(bytes, s)
}
