package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timepay-engine/attendance"
	"github.com/warp/timepay-engine/rules"
)

func at(date time.Time, hhmm string) time.Time {
	m, err := rules.ParseMinuteOfDay(hhmm)
	if err != nil {
		panic(err)
	}
	return m.At(date)
}

// buildAdjusted assembles an adjusted-times map from the given slots using
// the canonical times of a clean day.
func buildAdjusted(date time.Time, slots ...attendance.ClockSlot) map[attendance.ClockSlot]time.Time {
	canonical := map[attendance.ClockSlot]string{
		attendance.Clock1MorningIn:    "07:30",
		attendance.Clock2LunchOut:     "12:00",
		attendance.Clock3LunchReturn:  "12:30",
		attendance.Clock4AfternoonOut: "16:30",
	}
	adjusted := make(map[attendance.ClockSlot]time.Time, len(slots))
	for _, s := range slots {
		adjusted[s] = at(date, canonical[s])
	}
	return adjusted
}

func TestCalculatePaidTime_NormalDay(t *testing.T) {
	// GIVEN: all four clocks on a standard 07:30-16:30 day
	adjusted := buildAdjusted(monday,
		attendance.Clock1MorningIn, attendance.Clock2LunchOut,
		attendance.Clock3LunchReturn, attendance.Clock4AfternoonOut)

	// WHEN: selecting the scenario
	paid := attendance.CalculatePaidTime(monday, adjusted, rules.DefaultSet())

	// THEN: 9 hours minus the 30-minute standard lunch
	assert.Equal(t, "normal", paid.Scenario)
	assert.Equal(t, 510, paid.PaidMinutes)
	assert.Equal(t, 30, paid.LunchMinutes)
	assert.Empty(t, paid.Flags)
}

func TestCalculatePaidTime_MissingLunchOutStillDeductsLunch(t *testing.T) {
	// GIVEN: clocks 1, 3, 4 present but no lunch-out punch
	adjusted := buildAdjusted(monday,
		attendance.Clock1MorningIn, attendance.Clock3LunchReturn, attendance.Clock4AfternoonOut)

	// WHEN: selecting the scenario
	paid := attendance.CalculatePaidTime(monday, adjusted, rules.DefaultSet())

	// THEN: same pay as a normal day, lunch deducted, flagged for review
	assert.Equal(t, "missing-lunch-out", paid.Scenario)
	assert.Equal(t, 510, paid.PaidMinutes)
	assert.Equal(t, 30, paid.LunchMinutes)
	require.Len(t, paid.Flags, 1)
	assert.Contains(t, paid.Flags[0], "missing lunch-out")
}

func TestCalculatePaidTime_EveryCombinationCovered(t *testing.T) {
	// GIVEN: all sixteen possible presence combinations
	all := []attendance.ClockSlot{
		attendance.Clock1MorningIn, attendance.Clock2LunchOut,
		attendance.Clock3LunchReturn, attendance.Clock4AfternoonOut,
	}
	payable := map[string]bool{"normal": true, "missing-lunch-out": true}

	for mask := 0; mask < 16; mask++ {
		var slots []attendance.ClockSlot
		for bit, s := range all {
			if mask&(1<<bit) != 0 {
				slots = append(slots, s)
			}
		}

		// WHEN: selecting the scenario for this combination
		paid := attendance.CalculatePaidTime(monday, buildAdjusted(monday, slots...), rules.DefaultSet())

		// THEN: a named scenario always comes back, exactly two patterns
		// pay, and every unpayable pattern carries a review flag
		require.NotEmpty(t, paid.Scenario, "mask %04b", mask)
		assert.NotEqual(t, "unknown", paid.Scenario, "mask %04b", mask)
		if payable[paid.Scenario] {
			assert.Equal(t, 510, paid.PaidMinutes, "mask %04b", mask)
		} else {
			assert.Zero(t, paid.PaidMinutes, "mask %04b", mask)
			assert.Zero(t, paid.LunchMinutes, "mask %04b", mask)
			assert.NotEmpty(t, paid.Flags, "mask %04b", mask)
		}
		assert.GreaterOrEqual(t, paid.PaidMinutes, 0, "mask %04b", mask)
	}
}

func TestCalculatePaidTime_NeverNegative(t *testing.T) {
	// GIVEN: an afternoon-out before lunch has even been deducted
	adjusted := map[attendance.ClockSlot]time.Time{
		attendance.Clock1MorningIn:    at(monday, "07:30"),
		attendance.Clock2LunchOut:     at(monday, "07:35"),
		attendance.Clock3LunchReturn:  at(monday, "07:40"),
		attendance.Clock4AfternoonOut: at(monday, "07:45"),
	}

	// WHEN: 15-minute span minus 30-minute lunch would be negative
	paid := attendance.CalculatePaidTime(monday, adjusted, rules.DefaultSet())

	// THEN: clamped to zero
	assert.Equal(t, 0, paid.PaidMinutes)
}

func TestCalculatePaidTime_Friday(t *testing.T) {
	// GIVEN: a complete Friday 07:30-13:00
	adjusted := map[attendance.ClockSlot]time.Time{
		attendance.Clock1MorningIn: at(friday, "07:30"),
		attendance.Clock2LunchOut:  at(friday, "13:00"),
	}

	// WHEN: selecting the scenario
	paid := attendance.CalculatePaidTime(friday, adjusted, rules.DefaultSet())

	// THEN: the full span is paid with no lunch deduction
	assert.Equal(t, "friday", paid.Scenario)
	assert.Equal(t, 330, paid.PaidMinutes)
	assert.Zero(t, paid.LunchMinutes)
	assert.Empty(t, paid.Flags)
}

func TestCalculatePaidTime_FridayIncomplete(t *testing.T) {
	// GIVEN: a Friday with only the morning punch
	adjusted := map[attendance.ClockSlot]time.Time{
		attendance.Clock1MorningIn: at(friday, "07:30"),
	}

	paid := attendance.CalculatePaidTime(friday, adjusted, rules.DefaultSet())

	// THEN: zero paid, flagged
	assert.Equal(t, "friday-incomplete", paid.Scenario)
	assert.Zero(t, paid.PaidMinutes)
	assert.NotEmpty(t, paid.Flags)
}
