/*
grace.go - Grace-period rounding and late/overtime flags

PURPOSE:
  Third stage. Applies the deterministic rounding rules to each classified
  slot and collects the flags that feed the day's warnings. The output map
  holds the ADJUSTED time per slot; downstream stages (paid time, bathroom
  periods) work only on adjusted times.

ROUNDING RULES:
  Clock1: before standard start -> snapped UP to standard start (capped, no
          flag). Within the grace window after start -> snapped back to
          start. Later -> kept, flagged late.
  Clock2: within the lunch-out grace after lunch start -> snapped to lunch
          start. Otherwise kept.
  Clock3: always kept; later than lunch end -> flagged for review.
  Clock4: always kept; later than standard end -> flagged as overtime.
  Friday Clock2 (day end): always kept; later than the Friday end time ->
          flagged as overtime. Snapping never applies on Friday.

SEE ALSO:
  - paidtime.go: consumes the adjusted slot times
*/
package attendance

import (
	"fmt"
	"time"

	"github.com/warp/timepay-engine/rules"
)

const (
	flagLateClockIn     = "late clock-in"
	flagLateLunchReturn = "late lunch return, manual review"
	flagOvertime        = "overtime, manual review"
)

// AdjustTimes applies grace rounding to the classified slots of one day.
// Returns the adjusted Slot->Time map and the flags raised, in slot order.
func AdjustTimes(date time.Time, slots map[ClockSlot]Punch, rs rules.Set) (map[ClockSlot]time.Time, []string) {
	adjusted := make(map[ClockSlot]time.Time, len(slots))
	var flags []string

	if p, ok := slots[Clock1MorningIn]; ok {
		t, flag := adjustClock1(date, p.At, rs)
		adjusted[Clock1MorningIn] = t
		flags = append(flags, flag...)
	}

	if p, ok := slots[Clock2LunchOut]; ok {
		if isFriday(date) {
			// Friday Clock2 is the end of the day: no snapping ever.
			adjusted[Clock2LunchOut] = p.At
			if minuteOf(p.At) > rs.FridayEnd {
				flags = append(flags, fmt.Sprintf("%s (out at %s)", flagOvertime, p.At.Format("15:04")))
			}
		} else {
			adjusted[Clock2LunchOut] = adjustClock2(date, p.At, rs)
		}
	}

	if p, ok := slots[Clock3LunchReturn]; ok {
		adjusted[Clock3LunchReturn] = p.At
		if minuteOf(p.At) > rs.LunchEnd {
			flags = append(flags, fmt.Sprintf("%s (returned at %s)", flagLateLunchReturn, p.At.Format("15:04")))
		}
	}

	if p, ok := slots[Clock4AfternoonOut]; ok {
		adjusted[Clock4AfternoonOut] = p.At
		if minuteOf(p.At) > rs.StandardEnd {
			flags = append(flags, fmt.Sprintf("%s (out at %s)", flagOvertime, p.At.Format("15:04")))
		}
	}

	return adjusted, flags
}

func adjustClock1(date time.Time, at time.Time, rs rules.Set) (time.Time, []string) {
	tod := minuteOf(at)
	start := rs.StandardStart

	switch {
	case tod < start:
		// Arrived early: cap at standard start, not a deviation.
		return start.At(date), nil
	case tod <= start.AddMinutes(rs.GraceMinutes):
		// Within grace: snap back to standard start, no flag.
		return start.At(date), nil
	default:
		return at, []string{fmt.Sprintf("%s at %s", flagLateClockIn, at.Format("15:04"))}
	}
}

func adjustClock2(date time.Time, at time.Time, rs rules.Set) time.Time {
	tod := minuteOf(at)
	if tod >= rs.LunchStart && tod <= rs.LunchStart.AddMinutes(rs.LunchOutGraceMinutes) {
		return rs.LunchStart.At(date)
	}
	return at
}
