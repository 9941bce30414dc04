/*
classify.go - Assign main punches to canonical daily clock slots

PURPOSE:
  Second stage. Maps the cleaned main punches of one day onto the four
  canonical slots using the configured time windows. A slot with no matching
  punch is left empty; empty slots are legal and drive scenario selection in
  paidtime.go.

SLOT RULES (non-Friday):
  Clock1 = first In strictly before clock1 max time
  Clock2 = first Out within the clock2 window (inclusive)
  Clock3 = first In within the clock3 window (inclusive)
  Clock4 = last Out at or after the clock4 minimum time

FRIDAY:
  A two-clock day: Clock1 = first In of the day, Clock2 = last Out of the
  day. Clock3/Clock4 are never assigned.

SEE ALSO:
  - grace.go: applies rounding to the classified slots
*/
package attendance

import (
	"time"

	"github.com/warp/timepay-engine/rules"
)

// ClassifyDay assigns the day's main punches to clock slots.
func ClassifyDay(day NormalizedDay, rs rules.Set) map[ClockSlot]Punch {
	if isFriday(day.Date) {
		return classifyFriday(day)
	}
	return classifyStandard(day, rs)
}

func classifyStandard(day NormalizedDay, rs rules.Set) map[ClockSlot]Punch {
	slots := make(map[ClockSlot]Punch)

	for _, p := range day.Main {
		tod := minuteOf(p.At)

		switch {
		case p.Direction == DirectionIn && tod < rs.Clock1Max:
			if _, done := slots[Clock1MorningIn]; !done {
				slots[Clock1MorningIn] = p
			}
		case p.Direction == DirectionOut && tod >= rs.Clock2Start && tod <= rs.Clock2End:
			if _, done := slots[Clock2LunchOut]; !done {
				slots[Clock2LunchOut] = p
			}
		case p.Direction == DirectionIn && tod >= rs.Clock3Start && tod <= rs.Clock3End:
			if _, done := slots[Clock3LunchReturn]; !done {
				slots[Clock3LunchReturn] = p
			}
		}

		// Clock4 takes the LAST matching Out, so it is always overwritten.
		if p.Direction == DirectionOut && tod >= rs.Clock4Min {
			slots[Clock4AfternoonOut] = p
		}
	}

	return slots
}

func classifyFriday(day NormalizedDay) map[ClockSlot]Punch {
	slots := make(map[ClockSlot]Punch)
	for _, p := range day.Main {
		switch p.Direction {
		case DirectionIn:
			if _, done := slots[Clock1MorningIn]; !done {
				slots[Clock1MorningIn] = p
			}
		case DirectionOut:
			slots[Clock2LunchOut] = p // last Out wins
		}
	}
	return slots
}

// minuteOf converts a wall-clock time to minutes from midnight.
func minuteOf(t time.Time) rules.MinuteOfDay {
	return rules.MinuteOfDay(t.Hour()*60 + t.Minute())
}
