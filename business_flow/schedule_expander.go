package businessflow

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/emalab/pingflow/models"
)

// Occurrence is one concrete, time-resolved delivery instant derived from a
// schedule window. All timestamps are UTC.
type Occurrence struct {
	DayNum      int
	ScheduledTs time.Time
	ReminderTs  *time.Time
	ExpireTs    *time.Time

	// WindowStart and WindowEnd are the window's resolved UTC bounds. A ping
	// whose scheduled instant falls inside them claims the occurrence on
	// re-materialization, which is what keeps a randomly placed instant
	// stable across runs.
	WindowStart time.Time
	WindowEnd   time.Time

	// Adjusted marks occurrences whose wall clock fell in a DST gap or fold
	// and was resolved to the earliest valid instant.
	Adjusted bool
}

// OccurrencePicker chooses the delivery instant within [start, end]. The
// pick is persisted at materialization; occurrences already claimed by an
// existing ping discard it.
type OccurrencePicker func(start, end time.Time) time.Time

// UniformPicker places the occurrence at a uniformly random second of the
// window.
func UniformPicker(start, end time.Time) time.Time {
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(rand.Int63n(int64(span)/int64(time.Second)+1)) * time.Second)
}

// ResolveWallClock maps a local calendar day and wall-clock time in loc to a
// single UTC instant. Around DST transitions a wall clock can exist twice or
// not at all; both cases resolve deterministically:
//
//   - a repeated wall clock (fall back) resolves to its first occurrence,
//     the earliest valid UTC instant;
//   - a skipped wall clock (spring forward) resolves to the end of the gap,
//     the first instant that exists on the local clock.
//
// The second return reports whether such an adjustment happened.
func ResolveWallClock(year int, month time.Month, day, hour, minute int, loc *time.Location) (time.Time, bool) {
	naive := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)

	// Zone offsets in effect around the target instant. Sampling a day to
	// either side captures both sides of any nearby transition.
	offsets := make([]int, 0, 3)
	for _, d := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, offset := naive.Add(d).In(loc).Zone()
		if !containsInt(offsets, offset) {
			offsets = append(offsets, offset)
		}
	}

	// A candidate is valid when subtracting the offset round-trips to the
	// requested wall clock.
	var valid []time.Time
	for _, offset := range offsets {
		cand := naive.Add(-time.Duration(offset) * time.Second)
		local := cand.In(loc)
		if local.Year() == year && local.Month() == month && local.Day() == day &&
			local.Hour() == hour && local.Minute() == minute {
			valid = append(valid, cand)
		}
	}

	switch len(valid) {
	case 1:
		return valid[0], false
	case 0:
		// The wall clock was skipped. Binary-search the offset change
		// between the two interpretations and land on the gap's end.
		minOff, maxOff := offsets[0], offsets[0]
		for _, o := range offsets[1:] {
			if o < minOff {
				minOff = o
			}
			if o > maxOff {
				maxOff = o
			}
		}
		lo := naive.Add(-time.Duration(maxOff) * time.Second)
		hi := naive.Add(-time.Duration(minOff) * time.Second)
		_, before := lo.In(loc).Zone()
		for hi.Sub(lo) > time.Second {
			mid := lo.Add(hi.Sub(lo) / 2)
			if _, off := mid.In(loc).Zone(); off == before {
				lo = mid
			} else {
				hi = mid
			}
		}
		return hi, true
	default:
		// The wall clock occurred more than once; take the earliest.
		earliest := valid[0]
		for _, t := range valid[1:] {
			if t.Before(earliest) {
				earliest = t
			}
		}
		return earliest, true
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// ExpandSchedule turns a schedule into one occurrence per window, anchored at
// the enrollment's start date in loc. Occurrences in the past are still
// emitted; whether to act on them is the caller's policy. A nil pick falls
// back to UniformPicker.
func ExpandSchedule(schedule models.Schedule, startDate time.Time, loc *time.Location, reminderLatency, expireLatency *models.Latency, pick OccurrencePicker) ([]Occurrence, error) {
	if pick == nil {
		pick = UniformPicker
	}

	year, month, day := startDate.Date()

	occurrences := make([]Occurrence, 0, len(schedule))
	for i, window := range schedule {
		startMin, err := window.StartMinutes()
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		endMin, err := window.EndMinutes()
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}

		start, startAdjusted := ResolveWallClock(year, month, day+window.StartDayNum, startMin/60, startMin%60, loc)
		end, endAdjusted := ResolveWallClock(year, month, day+window.EndDayNum, endMin/60, endMin%60, loc)

		var scheduled time.Time
		switch {
		case !end.After(start):
			// Exact windows, and spans that a DST transition collapsed
			// or inverted, place the occurrence at the start instant.
			scheduled = start
			end = start
		default:
			scheduled = pick(start, end)
		}
		scheduled = scheduled.UTC()

		occ := Occurrence{
			DayNum:      window.StartDayNum,
			ScheduledTs: scheduled,
			WindowStart: start.UTC(),
			WindowEnd:   end.UTC(),
			Adjusted:    startAdjusted || endAdjusted,
		}
		if reminderLatency != nil {
			ts := scheduled.Add(reminderLatency.Duration())
			occ.ReminderTs = &ts
		}
		if expireLatency != nil {
			ts := scheduled.Add(expireLatency.Duration())
			occ.ExpireTs = &ts
		}
		occurrences = append(occurrences, occ)
	}

	return occurrences, nil
}
