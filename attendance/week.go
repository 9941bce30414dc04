/*
week.go - Per-day pipeline and the weekly roll-up

PURPOSE:
  Entry point of the package. ProcessClockData runs the full pipeline for
  one employee week: normalize once, then classify/adjust/score each
  calendar day independently, then fold the days into weekly totals.

The fold is pure: no stage looks across days, and the week is recomputed
wholesale on every run.
*/
package attendance

import (
	"fmt"

	"github.com/warp/timepay-engine/rules"
)

// ProcessClockData computes the weekly paid-time result for one employee.
// Unusual or incomplete days are never errors: they degrade to zero-paid
// scenarios and surface through the warnings list.
func ProcessClockData(events []RawEvent, rs rules.Set) WeekResult {
	week := Normalize(events, rs)

	result := WeekResult{Warnings: append([]string{}, week.Notes...)}

	for _, day := range week.Days {
		record := processDay(day, rs)
		result.DailyBreakdown = append(result.DailyBreakdown, record)

		result.RawMinutes += record.PaidMinutes
		result.LunchMinutes += record.LunchMinutes
		result.BathroomMinutes += record.BathroomMinutes
		for _, w := range record.Warnings {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: %s", record.Date.Format("Mon 2006-01-02"), w))
		}
	}

	result.Hours = result.RawMinutes / 60
	result.Minutes = result.RawMinutes % 60
	return result
}

// processDay runs classification through bathroom reconciliation for one day.
func processDay(day NormalizedDay, rs rules.Set) DayRecord {
	slots := ClassifyDay(day, rs)
	adjusted, graceFlags := AdjustTimes(day.Date, slots, rs)
	paid := CalculatePaidTime(day.Date, adjusted, rs)
	bathroom := ReconcileBathroom(day.Date, day.Bathroom, adjusted, rs)

	record := DayRecord{
		Date:            day.Date,
		Weekday:         day.Date.Weekday(),
		Slots:           slots,
		Adjusted:        adjusted,
		PaidMinutes:     paid.PaidMinutes,
		LunchMinutes:    paid.LunchMinutes,
		BathroomMinutes: bathroom.Minutes,
		Scenario:        paid.Scenario,
	}
	record.Warnings = append(record.Warnings, graceFlags...)
	record.Warnings = append(record.Warnings, paid.Flags...)
	record.Warnings = append(record.Warnings, bathroom.Flags...)
	return record
}
