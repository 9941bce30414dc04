/*
Package rules defines the attendance rule set: clock windows, grace periods,
lunch policy, duplicate-punch thresholds, and bathroom-break limits.

PURPOSE:
  Every calculation entry point takes an explicit, validated rule Set. This
  package is the ONLY place defaults are known: callers merge a (possibly
  partial) JSON Document against Defaults(), validate it, and pass the
  resulting Set down. No calculation package reads configuration on its own.

KEY TYPES:
  Document:    JSON-serializable rule values as submitted by a caller.
               Partial documents are legal; zero values mean "use default".
  Set:         Validated, normalized rules consumed by calculations.
               Times of day are minutes from midnight, gaps are Durations.
  MinuteOfDay: A clock time within a day, parsed from "HH:MM".

VALIDATION:
  Validate reports EVERY violation found, not just the first, as a single
  ValidationError. Times must match HH:MM within 00:00-23:59; each numeric
  threshold has a documented min/max.

USAGE:
  doc := rules.Document{GraceMinutes: 10}
  set, err := doc.MergeWithDefaults().Validate()
  if err != nil { ... }
  result := attendance.ProcessClockData(events, set)

SEE ALSO:
  - attendance: consumes Set in every stage
  - api: merges client-submitted Documents per request
*/
package rules

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MINUTE OF DAY - Clock time parsed from "HH:MM"
// =============================================================================

// MinuteOfDay is a time of day expressed as minutes from midnight (0..1439).
type MinuteOfDay int

// ParseMinuteOfDay parses "HH:MM" in 00:00-23:59.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("time %q does not match HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range 00:00-23:59", s)
	}
	return MinuteOfDay(h*60 + m), nil
}

// At anchors the time of day onto a calendar date.
func (m MinuteOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(m)/60, int(m)%60, 0, 0, date.Location())
}

// AddMinutes shifts the time of day. No wrap-around; rule windows never span midnight.
func (m MinuteOfDay) AddMinutes(n int) MinuteOfDay { return m + MinuteOfDay(n) }

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// =============================================================================
// DOCUMENT - JSON rule values as submitted
// =============================================================================

// Document is the JSON form of the rule set. Zero-valued fields fall back to
// the defaults; MergeWithDefaults is the only place that substitution happens.
type Document struct {
	// Clock classification windows (HH:MM).
	Clock1MaxTime     string `json:"clock1_max_time,omitempty"`
	Clock2WindowStart string `json:"clock2_window_start,omitempty"`
	Clock2WindowEnd   string `json:"clock2_window_end,omitempty"`
	Clock3WindowStart string `json:"clock3_window_start,omitempty"`
	Clock3WindowEnd   string `json:"clock3_window_end,omitempty"`
	Clock4MinTime     string `json:"clock4_min_time,omitempty"`

	// Standard day shape (HH:MM).
	StandardStartTime string `json:"standard_start_time,omitempty"`
	StandardEndTime   string `json:"standard_end_time,omitempty"`
	FridayEndTime     string `json:"friday_end_time,omitempty"`
	LunchStartTime    string `json:"lunch_start_time,omitempty"`
	LunchEndTime      string `json:"lunch_end_time,omitempty"`

	// Grace and lunch policy (minutes).
	GraceMinutes         int `json:"grace_minutes,omitempty"`
	LunchOutGraceMinutes int `json:"lunch_out_grace_minutes,omitempty"`
	StandardLunchMinutes int `json:"standard_lunch_minutes,omitempty"`

	// Duplicate-punch thresholds (seconds).
	MainDuplicateSeconds     int `json:"main_duplicate_seconds,omitempty"`
	BathroomDuplicateSeconds int `json:"bathroom_duplicate_seconds,omitempty"`

	// Bathroom-break policy.
	BathroomDeviceLabel  string `json:"bathroom_device_label,omitempty"`
	LongBathroomMinutes  int    `json:"long_bathroom_minutes,omitempty"`
	EarlyBathroomMinutes int    `json:"early_bathroom_minutes,omitempty"`
	DailyBathroomMinutes int    `json:"daily_bathroom_minutes,omitempty"`
}

// Defaults returns the documented default rule document.
func Defaults() Document {
	return Document{
		Clock1MaxTime:     "09:00",
		Clock2WindowStart: "11:00",
		Clock2WindowEnd:   "13:00",
		Clock3WindowStart: "11:30",
		Clock3WindowEnd:   "13:30",
		Clock4MinTime:     "13:30",

		StandardStartTime: "07:30",
		StandardEndTime:   "16:30",
		FridayEndTime:     "13:00",
		LunchStartTime:    "12:00",
		LunchEndTime:      "12:30",

		GraceMinutes:         5,
		LunchOutGraceMinutes: 5,
		StandardLunchMinutes: 30,

		MainDuplicateSeconds:     120,
		BathroomDuplicateSeconds: 60,

		BathroomDeviceLabel:  "bathroom",
		LongBathroomMinutes:  15,
		EarlyBathroomMinutes: 10,
		DailyBathroomMinutes: 30,
	}
}

// MergeWithDefaults fills every zero-valued field from Defaults().
// The receiver is not modified.
func (d Document) MergeWithDefaults() Document {
	def := Defaults()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	pickInt := func(v, fallback int) int {
		if v == 0 {
			return fallback
		}
		return v
	}

	return Document{
		Clock1MaxTime:     pick(d.Clock1MaxTime, def.Clock1MaxTime),
		Clock2WindowStart: pick(d.Clock2WindowStart, def.Clock2WindowStart),
		Clock2WindowEnd:   pick(d.Clock2WindowEnd, def.Clock2WindowEnd),
		Clock3WindowStart: pick(d.Clock3WindowStart, def.Clock3WindowStart),
		Clock3WindowEnd:   pick(d.Clock3WindowEnd, def.Clock3WindowEnd),
		Clock4MinTime:     pick(d.Clock4MinTime, def.Clock4MinTime),

		StandardStartTime: pick(d.StandardStartTime, def.StandardStartTime),
		StandardEndTime:   pick(d.StandardEndTime, def.StandardEndTime),
		FridayEndTime:     pick(d.FridayEndTime, def.FridayEndTime),
		LunchStartTime:    pick(d.LunchStartTime, def.LunchStartTime),
		LunchEndTime:      pick(d.LunchEndTime, def.LunchEndTime),

		GraceMinutes:         pickInt(d.GraceMinutes, def.GraceMinutes),
		LunchOutGraceMinutes: pickInt(d.LunchOutGraceMinutes, def.LunchOutGraceMinutes),
		StandardLunchMinutes: pickInt(d.StandardLunchMinutes, def.StandardLunchMinutes),

		MainDuplicateSeconds:     pickInt(d.MainDuplicateSeconds, def.MainDuplicateSeconds),
		BathroomDuplicateSeconds: pickInt(d.BathroomDuplicateSeconds, def.BathroomDuplicateSeconds),

		BathroomDeviceLabel:  pick(d.BathroomDeviceLabel, def.BathroomDeviceLabel),
		LongBathroomMinutes:  pickInt(d.LongBathroomMinutes, def.LongBathroomMinutes),
		EarlyBathroomMinutes: pickInt(d.EarlyBathroomMinutes, def.EarlyBathroomMinutes),
		DailyBathroomMinutes: pickInt(d.DailyBathroomMinutes, def.DailyBathroomMinutes),
	}
}

// =============================================================================
// SET - Validated rules consumed by calculations
// =============================================================================

// Set is the validated, normalized rule set. Build one via Document.Validate;
// all calculation entry points take a Set by value.
type Set struct {
	Clock1Max   MinuteOfDay
	Clock2Start MinuteOfDay
	Clock2End   MinuteOfDay
	Clock3Start MinuteOfDay
	Clock3End   MinuteOfDay
	Clock4Min   MinuteOfDay

	StandardStart MinuteOfDay
	StandardEnd   MinuteOfDay
	FridayEnd     MinuteOfDay
	LunchStart    MinuteOfDay
	LunchEnd      MinuteOfDay

	GraceMinutes         int
	LunchOutGraceMinutes int
	StandardLunchMinutes int

	MainDuplicateGap     time.Duration
	BathroomDuplicateGap time.Duration

	BathroomLabel        string
	LongBathroomMinutes  int
	EarlyBathroomMinutes int
	DailyBathroomMinutes int
}

// DefaultSet returns the validated default rules.
// Defaults always validate; a failure here is a programming error.
func DefaultSet() Set {
	set, err := Defaults().Validate()
	if err != nil {
		panic(fmt.Sprintf("default rules invalid: %v", err))
	}
	return set
}

// intRange documents the accepted min/max for a numeric threshold.
type intRange struct {
	name     string
	value    int
	min, max int
}

// Validate checks every field and returns a normalized Set. All violations
// are collected into a single ValidationError rather than failing fast.
// Call MergeWithDefaults first for partial documents.
func (d Document) Validate() (Set, error) {
	var violations []string
	var set Set

	parse := func(name, v string, dst *MinuteOfDay) {
		m, err := ParseMinuteOfDay(v)
		if err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", name, err))
			return
		}
		*dst = m
	}

	parse("clock1_max_time", d.Clock1MaxTime, &set.Clock1Max)
	parse("clock2_window_start", d.Clock2WindowStart, &set.Clock2Start)
	parse("clock2_window_end", d.Clock2WindowEnd, &set.Clock2End)
	parse("clock3_window_start", d.Clock3WindowStart, &set.Clock3Start)
	parse("clock3_window_end", d.Clock3WindowEnd, &set.Clock3End)
	parse("clock4_min_time", d.Clock4MinTime, &set.Clock4Min)
	parse("standard_start_time", d.StandardStartTime, &set.StandardStart)
	parse("standard_end_time", d.StandardEndTime, &set.StandardEnd)
	parse("friday_end_time", d.FridayEndTime, &set.FridayEnd)
	parse("lunch_start_time", d.LunchStartTime, &set.LunchStart)
	parse("lunch_end_time", d.LunchEndTime, &set.LunchEnd)

	for _, r := range []intRange{
		{"grace_minutes", d.GraceMinutes, 0, 60},
		{"lunch_out_grace_minutes", d.LunchOutGraceMinutes, 0, 60},
		{"standard_lunch_minutes", d.StandardLunchMinutes, 0, 120},
		{"main_duplicate_seconds", d.MainDuplicateSeconds, 10, 900},
		{"bathroom_duplicate_seconds", d.BathroomDuplicateSeconds, 10, 900},
		{"long_bathroom_minutes", d.LongBathroomMinutes, 1, 120},
		{"early_bathroom_minutes", d.EarlyBathroomMinutes, 1, 120},
		{"daily_bathroom_minutes", d.DailyBathroomMinutes, 1, 240},
	} {
		if r.value < r.min || r.value > r.max {
			violations = append(violations,
				fmt.Sprintf("%s: %d outside allowed range [%d, %d]", r.name, r.value, r.min, r.max))
		}
	}

	if d.BathroomDeviceLabel == "" {
		violations = append(violations, "bathroom_device_label: must not be empty")
	}

	// Window ordering checks only make sense once the times parsed.
	if len(violations) == 0 {
		if set.Clock2End < set.Clock2Start {
			violations = append(violations, "clock2 window: end before start")
		}
		if set.Clock3End < set.Clock3Start {
			violations = append(violations, "clock3 window: end before start")
		}
		if set.LunchEnd < set.LunchStart {
			violations = append(violations, "lunch window: end before start")
		}
		if set.StandardEnd <= set.StandardStart {
			violations = append(violations, "standard day: end not after start")
		}
	}

	if len(violations) > 0 {
		return Set{}, &ValidationError{Violations: violations}
	}

	set.GraceMinutes = d.GraceMinutes
	set.LunchOutGraceMinutes = d.LunchOutGraceMinutes
	set.StandardLunchMinutes = d.StandardLunchMinutes
	set.MainDuplicateGap = time.Duration(d.MainDuplicateSeconds) * time.Second
	set.BathroomDuplicateGap = time.Duration(d.BathroomDuplicateSeconds) * time.Second
	set.BathroomLabel = strings.ToLower(d.BathroomDeviceLabel)
	set.LongBathroomMinutes = d.LongBathroomMinutes
	set.EarlyBathroomMinutes = d.EarlyBathroomMinutes
	set.DailyBathroomMinutes = d.DailyBathroomMinutes
	return set, nil
}

// =============================================================================
// VALIDATION ERROR - Every violation, not just the first
// =============================================================================

type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rules (%d violations): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}
