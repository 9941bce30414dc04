/*
paidtime.go - Scenario table: slot presence -> paid and lunch minutes

PURPOSE:
  Fourth stage. Given WHICH slots were classified (after grace adjustment),
  selects exactly one scenario that determines paid minutes and the lunch
  deduction. The table is payroll policy, reproduced exactly: every slot
  combination not explicitly payable yields zero paid minutes and a manual
  review flag. Zeroing unknown patterns is the intended safe default, not an
  omission.

NON-FRIDAY TABLE:
  {1,2,3,4}  paid = (Clock4-Clock1) - standard lunch, lunch deducted
  {1,3,4}    same as above, lunch still deducted, flagged (missing lunch-out)
  all other 14 combinations: paid 0, lunch 0, flagged with a combination-
  specific message.

FRIDAY:
  {1,2} paid = Clock2-Clock1, no lunch. Anything else: 0, flagged.

Paid minutes are clamped to >= 0 in every scenario.

SEE ALSO:
  - grace.go: produces the adjusted times used here
  - week.go: records scenario and flags on the DayRecord
*/
package attendance

import (
	"time"

	"github.com/warp/timepay-engine/rules"
)

// PaidTime is the outcome of scenario selection for one day.
type PaidTime struct {
	Scenario     string
	PaidMinutes  int
	LunchMinutes int
	Flags        []string
}

// presence is a bitmask over the four clock slots.
type presence uint8

const (
	has1 presence = 1 << iota
	has2
	has3
	has4
)

func presenceOf(adjusted map[ClockSlot]time.Time) presence {
	var p presence
	if _, ok := adjusted[Clock1MorningIn]; ok {
		p |= has1
	}
	if _, ok := adjusted[Clock2LunchOut]; ok {
		p |= has2
	}
	if _, ok := adjusted[Clock3LunchReturn]; ok {
		p |= has3
	}
	if _, ok := adjusted[Clock4AfternoonOut]; ok {
		p |= has4
	}
	return p
}

// CalculatePaidTime selects the day's scenario from the adjusted slots.
func CalculatePaidTime(date time.Time, adjusted map[ClockSlot]time.Time, rs rules.Set) PaidTime {
	if isFriday(date) {
		return fridayPaidTime(adjusted)
	}
	return standardPaidTime(adjusted, rs)
}

func standardPaidTime(adjusted map[ClockSlot]time.Time, rs rules.Set) PaidTime {
	span := func() int {
		return clampMinutes(spanMinutes(adjusted[Clock1MorningIn], adjusted[Clock4AfternoonOut]) - rs.StandardLunchMinutes)
	}

	switch presenceOf(adjusted) {
	case has1 | has2 | has3 | has4:
		return PaidTime{Scenario: "normal", PaidMinutes: span(), LunchMinutes: rs.StandardLunchMinutes}

	case has1 | has3 | has4:
		return PaidTime{
			Scenario:     "missing-lunch-out",
			PaidMinutes:  span(),
			LunchMinutes: rs.StandardLunchMinutes,
			Flags:        []string{"missing lunch-out punch, standard lunch still deducted"},
		}

	// Every remaining combination is unpayable policy: zero minutes plus a
	// combination-specific manual review message. Enumerated one by one so
	// the policy stays visible.
	case 0:
		return zeroDay("empty", "no classified punches, manual adjustment required")
	case has1:
		return zeroDay("only-morning-in", "only morning-in punch present, manual adjustment required")
	case has2:
		return zeroDay("only-lunch-out", "only lunch-out punch present, manual adjustment required")
	case has3:
		return zeroDay("only-lunch-return", "only lunch-return punch present, manual adjustment required")
	case has4:
		return zeroDay("only-afternoon-out", "only afternoon-out punch present, manual adjustment required")
	case has1 | has2:
		return zeroDay("morning-only", "no afternoon punches, manual adjustment required")
	case has1 | has3:
		return zeroDay("no-out-punches", "missing lunch-out and afternoon-out, manual adjustment required")
	case has1 | has4:
		return zeroDay("no-lunch-punches", "missing both lunch punches, manual adjustment required")
	case has2 | has3:
		return zeroDay("lunch-only", "only lunch punches present, manual adjustment required")
	case has2 | has4:
		return zeroDay("no-in-punches", "missing morning-in and lunch-return, manual adjustment required")
	case has3 | has4:
		return zeroDay("afternoon-only", "no morning punches, manual adjustment required")
	case has1 | has2 | has3:
		return zeroDay("missing-afternoon-out", "missing afternoon-out punch, manual adjustment required")
	case has1 | has2 | has4:
		return zeroDay("missing-lunch-return", "missing lunch-return punch, manual adjustment required")
	case has2 | has3 | has4:
		return zeroDay("missing-morning-in", "missing morning-in punch, manual adjustment required")
	default:
		// Unreachable: the sixteen cases above are exhaustive.
		return zeroDay("unknown", "unrecognized punch pattern, manual adjustment required")
	}
}

func fridayPaidTime(adjusted map[ClockSlot]time.Time) PaidTime {
	if presenceOf(adjusted) == has1|has2 {
		return PaidTime{
			Scenario:    "friday",
			PaidMinutes: clampMinutes(spanMinutes(adjusted[Clock1MorningIn], adjusted[Clock2LunchOut])),
		}
	}
	return zeroDay("friday-incomplete", "incomplete Friday punches, manual adjustment required")
}

func zeroDay(scenario, flag string) PaidTime {
	return PaidTime{Scenario: scenario, Flags: []string{flag}}
}

// spanMinutes measures whole minutes between two times of the same day.
func spanMinutes(from, to time.Time) int {
	return int(minuteOf(to)) - int(minuteOf(from))
}

func clampMinutes(m int) int {
	if m < 0 {
		return 0
	}
	return m
}
