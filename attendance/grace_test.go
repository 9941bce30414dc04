package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timepay-engine/attendance"
	"github.com/warp/timepay-engine/rules"
)

func slotMap(pairs map[attendance.ClockSlot]attendance.Punch) map[attendance.ClockSlot]attendance.Punch {
	return pairs
}

func adjustedMinute(t *testing.T, adjusted map[attendance.ClockSlot]time.Time, slot attendance.ClockSlot, hhmm string) {
	t.Helper()
	m, err := rules.ParseMinuteOfDay(hhmm)
	require.NoError(t, err)
	at, ok := adjusted[slot]
	require.True(t, ok, "slot %s missing", slot)
	assert.Equal(t, int(m), at.Hour()*60+at.Minute(), "slot %s", slot)
}

func TestAdjustTimes_Clock1WithinGraceSnapsBack(t *testing.T) {
	// GIVEN: clock-in at 07:34 with standard start 07:30 and 5-minute grace
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock1MorningIn: punchAt(monday, "07:34", attendance.DirectionIn),
	})

	// WHEN: adjusting
	adjusted, flags := attendance.AdjustTimes(monday, slots, rules.DefaultSet())

	// THEN: snapped back to 07:30 with no flag
	adjustedMinute(t, adjusted, attendance.Clock1MorningIn, "07:30")
	assert.Empty(t, flags)
}

func TestAdjustTimes_Clock1PastGraceKeptAndFlagged(t *testing.T) {
	// GIVEN: clock-in at 07:36, one minute past the grace window
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock1MorningIn: punchAt(monday, "07:36", attendance.DirectionIn),
	})

	// WHEN: adjusting
	adjusted, flags := attendance.AdjustTimes(monday, slots, rules.DefaultSet())

	// THEN: time kept as punched and the day is flagged late
	adjustedMinute(t, adjusted, attendance.Clock1MorningIn, "07:36")
	require.Len(t, flags, 1)
	assert.Contains(t, flags[0], "late clock-in")
}

func TestAdjustTimes_Clock1EarlyArrivalCappedNoFlag(t *testing.T) {
	// GIVEN: clock-in well before standard start
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock1MorningIn: punchAt(monday, "07:02", attendance.DirectionIn),
	})

	adjusted, flags := attendance.AdjustTimes(monday, slots, rules.DefaultSet())

	// THEN: capped at standard start, early arrival is not a deviation
	adjustedMinute(t, adjusted, attendance.Clock1MorningIn, "07:30")
	assert.Empty(t, flags)
}

func TestAdjustTimes_Clock1GraceBoundaryInclusive(t *testing.T) {
	// 07:35 is exactly start+grace and still snaps.
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock1MorningIn: punchAt(monday, "07:35", attendance.DirectionIn),
	})

	adjusted, flags := attendance.AdjustTimes(monday, slots, rules.DefaultSet())

	adjustedMinute(t, adjusted, attendance.Clock1MorningIn, "07:30")
	assert.Empty(t, flags)
}

func TestAdjustTimes_Clock2LunchOutGrace(t *testing.T) {
	// GIVEN: lunch-out at 12:03, within the 5-minute lunch-out grace
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock2LunchOut: punchAt(monday, "12:03", attendance.DirectionOut),
	})

	adjusted, flags := attendance.AdjustTimes(monday, slots, rules.DefaultSet())

	// THEN: snapped to lunch start
	adjustedMinute(t, adjusted, attendance.Clock2LunchOut, "12:00")
	assert.Empty(t, flags)

	// AND: at 12:07 the punch is kept as-is
	slots[attendance.Clock2LunchOut] = punchAt(monday, "12:07", attendance.DirectionOut)
	adjusted, _ = attendance.AdjustTimes(monday, slots, rules.DefaultSet())
	adjustedMinute(t, adjusted, attendance.Clock2LunchOut, "12:07")
}

func TestAdjustTimes_Clock3LateReturnFlagged(t *testing.T) {
	// GIVEN: lunch return at 12:40, past lunch end 12:30
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock3LunchReturn: punchAt(monday, "12:40", attendance.DirectionIn),
	})

	adjusted, flags := attendance.AdjustTimes(monday, slots, rules.DefaultSet())

	// THEN: time is never altered, only flagged for review
	adjustedMinute(t, adjusted, attendance.Clock3LunchReturn, "12:40")
	require.Len(t, flags, 1)
	assert.Contains(t, flags[0], "late lunch return")
}

func TestAdjustTimes_Clock4OvertimeFlagged(t *testing.T) {
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock4AfternoonOut: punchAt(monday, "17:10", attendance.DirectionOut),
	})

	adjusted, flags := attendance.AdjustTimes(monday, slots, rules.DefaultSet())

	adjustedMinute(t, adjusted, attendance.Clock4AfternoonOut, "17:10")
	require.Len(t, flags, 1)
	assert.Contains(t, flags[0], "overtime")
}

func TestAdjustTimes_FridayEndNeverSnapped(t *testing.T) {
	// GIVEN: a Friday ending at 13:30, past the 13:00 Friday end
	slots := slotMap(map[attendance.ClockSlot]attendance.Punch{
		attendance.Clock1MorningIn: punchAt(friday, "07:29", attendance.DirectionIn),
		attendance.Clock2LunchOut:  punchAt(friday, "13:30", attendance.DirectionOut),
	})

	// WHEN: adjusting
	adjusted, flags := attendance.AdjustTimes(friday, slots, rules.DefaultSet())

	// THEN: the out time is kept (no lunch snapping on Friday) and flagged
	adjustedMinute(t, adjusted, attendance.Clock2LunchOut, "13:30")
	require.Len(t, flags, 1)
	assert.Contains(t, flags[0], "overtime")

	// AND: an on-time Friday out raises nothing
	slots[attendance.Clock2LunchOut] = punchAt(friday, "12:58", attendance.DirectionOut)
	adjusted, flags = attendance.AdjustTimes(friday, slots, rules.DefaultSet())
	adjustedMinute(t, adjusted, attendance.Clock2LunchOut, "12:58")
	assert.Empty(t, flags)
}
