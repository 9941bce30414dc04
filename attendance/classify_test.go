package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timepay-engine/attendance"
	"github.com/warp/timepay-engine/rules"
)

// monday and friday anchor the two schedule shapes.
var (
	monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	friday = time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
)

func punchAt(date time.Time, hhmm string, dir attendance.Direction) attendance.Punch {
	m, err := rules.ParseMinuteOfDay(hhmm)
	if err != nil {
		panic(err)
	}
	return attendance.Punch{At: m.At(date), Direction: dir}
}

func TestClassifyDay_StandardFourClocks(t *testing.T) {
	// GIVEN: a clean Monday with one punch per window
	day := attendance.NormalizedDay{
		Date: monday,
		Main: []attendance.Punch{
			punchAt(monday, "07:28", attendance.DirectionIn),
			punchAt(monday, "12:01", attendance.DirectionOut),
			punchAt(monday, "12:29", attendance.DirectionIn),
			punchAt(monday, "16:31", attendance.DirectionOut),
		},
	}

	// WHEN: classifying
	slots := attendance.ClassifyDay(day, rules.DefaultSet())

	// THEN: each punch lands in its slot
	require.Len(t, slots, 4)
	assert.Equal(t, 28, slots[attendance.Clock1MorningIn].At.Minute())
	assert.Equal(t, 1, slots[attendance.Clock2LunchOut].At.Minute())
	assert.Equal(t, 29, slots[attendance.Clock3LunchReturn].At.Minute())
	assert.Equal(t, 31, slots[attendance.Clock4AfternoonOut].At.Minute())
}

func TestClassifyDay_FirstMatchWinsForClock1(t *testing.T) {
	// GIVEN: two In punches before the clock1 cutoff
	day := attendance.NormalizedDay{
		Date: monday,
		Main: []attendance.Punch{
			punchAt(monday, "07:28", attendance.DirectionIn),
			punchAt(monday, "08:15", attendance.DirectionIn),
		},
	}

	slots := attendance.ClassifyDay(day, rules.DefaultSet())

	// THEN: the first one is kept
	assert.Equal(t, 28, slots[attendance.Clock1MorningIn].At.Minute())
}

func TestClassifyDay_InAtOrAfterCutoffIsNotClock1(t *testing.T) {
	// GIVEN: the only In punch lands exactly on the 09:00 cutoff
	day := attendance.NormalizedDay{
		Date: monday,
		Main: []attendance.Punch{punchAt(monday, "09:00", attendance.DirectionIn)},
	}

	slots := attendance.ClassifyDay(day, rules.DefaultSet())

	// THEN: clock1 requires strictly-before the cutoff
	_, ok := slots[attendance.Clock1MorningIn]
	assert.False(t, ok)
}

func TestClassifyDay_Clock2WindowIsInclusive(t *testing.T) {
	for _, hhmm := range []string{"11:00", "13:00"} {
		day := attendance.NormalizedDay{
			Date: monday,
			Main: []attendance.Punch{punchAt(monday, hhmm, attendance.DirectionOut)},
		}
		slots := attendance.ClassifyDay(day, rules.DefaultSet())
		_, ok := slots[attendance.Clock2LunchOut]
		assert.True(t, ok, "out at %s should classify as lunch-out", hhmm)
	}

	day := attendance.NormalizedDay{
		Date: monday,
		Main: []attendance.Punch{punchAt(monday, "13:01", attendance.DirectionOut)},
	}
	slots := attendance.ClassifyDay(day, rules.DefaultSet())
	_, ok := slots[attendance.Clock2LunchOut]
	assert.False(t, ok)
}

func TestClassifyDay_LastOutWinsForClock4(t *testing.T) {
	// GIVEN: two Out punches after the clock4 minimum
	day := attendance.NormalizedDay{
		Date: monday,
		Main: []attendance.Punch{
			punchAt(monday, "16:31", attendance.DirectionOut),
			punchAt(monday, "17:45", attendance.DirectionOut),
		},
	}

	slots := attendance.ClassifyDay(day, rules.DefaultSet())

	// THEN: the later one is kept
	assert.Equal(t, 17, slots[attendance.Clock4AfternoonOut].At.Hour())
}

func TestClassifyDay_Friday(t *testing.T) {
	// GIVEN: a Friday with an extra In and Out punch
	day := attendance.NormalizedDay{
		Date: friday,
		Main: []attendance.Punch{
			punchAt(friday, "07:29", attendance.DirectionIn),
			punchAt(friday, "09:10", attendance.DirectionOut),
			punchAt(friday, "09:20", attendance.DirectionIn),
			punchAt(friday, "13:02", attendance.DirectionOut),
		},
	}

	// WHEN: classifying
	slots := attendance.ClassifyDay(day, rules.DefaultSet())

	// THEN: first In and LAST Out, and no clock3/clock4 ever
	require.Len(t, slots, 2)
	assert.Equal(t, 29, slots[attendance.Clock1MorningIn].At.Minute())
	assert.Equal(t, 13, slots[attendance.Clock2LunchOut].At.Hour())
	_, ok3 := slots[attendance.Clock3LunchReturn]
	_, ok4 := slots[attendance.Clock4AfternoonOut]
	assert.False(t, ok3)
	assert.False(t, ok4)
}

func TestClassifyDay_EmptyDay(t *testing.T) {
	slots := attendance.ClassifyDay(attendance.NormalizedDay{Date: monday}, rules.DefaultSet())
	assert.Empty(t, slots)
}
