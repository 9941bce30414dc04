/*
Package attendance turns raw punch events into payable weekly time.

PURPOSE:
  This is the reconciliation core: it parses, sorts, and deduplicates raw
  device events (normalize.go), assigns them to canonical daily clock slots
  (classify.go), applies grace-period rounding (grace.go), selects the paid
  time scenario for the day (paidtime.go), pairs bathroom breaks
  (bathroom.go), and folds the days into a weekly total (week.go).

DESIGN PRINCIPLES:
  1. Pure computation: every stage is a function of (input, rules.Set).
     Nothing in this package reads configuration, logs, or touches storage.
  2. Degrade, don't fail: a day with unusual punches is never an error.
     It falls through to a zero-paid scenario and carries warnings.
  3. Days are independent: no stage may look across calendar days.
     Weekly totals are a plain fold over per-day results.

KEY TYPES (this file):
  RawEvent:  one device row as stored, timestamp still textual
  Punch:     a parsed, direction-tagged event
  ClockSlot: one of the four canonical daily checkpoints
  DayRecord: everything computed for one calendar day
  WeekResult: the weekly roll-up returned by ProcessClockData

SEE ALSO:
  - rules: the explicit rule set passed into every stage
  - payroll: converts WeekResult hours into monetary payslip fields
*/
package attendance

import (
	"time"
)

// =============================================================================
// RAW EVENTS AND PUNCHES
// =============================================================================

// RawEvent is one attendance row exactly as the device recorded it.
// The timestamp is textual; rows that fail to parse are dropped with a note.
type RawEvent struct {
	Timestamp string `json:"timestamp"`
	Device    string `json:"device"`
	ClockRef  string `json:"clock_ref,omitempty"`
}

// Direction is the inferred In/Out orientation of a punch.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Punch is a parsed event. Punches are derived each run and never mutated.
type Punch struct {
	At        time.Time
	Device    string
	Direction Direction
	ClockRef  string
}

// =============================================================================
// CLOCK SLOTS - The four canonical daily checkpoints
// =============================================================================

type ClockSlot int

const (
	Clock1MorningIn ClockSlot = iota + 1
	Clock2LunchOut
	Clock3LunchReturn
	Clock4AfternoonOut
)

func (s ClockSlot) String() string {
	switch s {
	case Clock1MorningIn:
		return "morning-in"
	case Clock2LunchOut:
		return "lunch-out"
	case Clock3LunchReturn:
		return "lunch-return"
	case Clock4AfternoonOut:
		return "afternoon-out"
	default:
		return "unknown"
	}
}

// =============================================================================
// DAY AND WEEK RESULTS
// =============================================================================

// DayRecord holds everything computed for one calendar day.
// It is built once per run and not mutated afterwards.
type DayRecord struct {
	Date    time.Time
	Weekday time.Weekday

	// Slots holds the classified punch per slot; absent slots are simply
	// missing keys. Absence drives scenario selection, it is not an error.
	Slots map[ClockSlot]Punch

	// Adjusted holds grace-rounded times per classified slot.
	Adjusted map[ClockSlot]time.Time

	PaidMinutes     int
	LunchMinutes    int
	BathroomMinutes int

	Scenario string
	Warnings []string
}

// WeekResult is the weekly roll-up for one employee.
// Recomputed wholesale each run, never patched incrementally.
type WeekResult struct {
	Hours           int         `json:"hours"`
	Minutes         int         `json:"minutes"`
	RawMinutes      int         `json:"raw_minutes"`
	LunchMinutes    int         `json:"lunch_minutes"`
	BathroomMinutes int         `json:"bathroom_minutes"`
	DailyBreakdown  []DayRecord `json:"daily_breakdown"`
	Warnings        []string    `json:"warnings"`
}

// isFriday reports whether the date follows the two-clock Friday schedule.
func isFriday(date time.Time) bool { return date.Weekday() == time.Friday }
