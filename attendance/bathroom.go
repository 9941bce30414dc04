/*
bathroom.go - Pair bathroom punches and flag anomalies

PURPOSE:
  Fifth stage. Builds the day's work periods from the ADJUSTED clock times,
  pairs bathroom entries with exits, and totals the minutes spent out of
  the work area.

PERIODS:
  Morning   = Clock1 -> Clock2
  Afternoon = Clock3 -> Clock4
  Friday    = single Clock1 -> Clock2 period
  A period exists only when both of its endpoints were classified.

PAIRING:
  Entries and exits are separated by the direction already inferred during
  normalization. Each entry is greedily paired with the earliest unused exit
  strictly after it. A pair counts toward the daily total only when BOTH
  endpoints fall inside the same work period; pairs straddling a period
  boundary are discarded with a note.

FLAGS:
  - pair longer than the long-break threshold
  - entry within the early-break threshold of Clock1 or Clock3
  - unpaired entry or exit inside a work period
  - daily total above the daily threshold

SEE ALSO:
  - normalize.go: deduplication and direction inference for these punches
*/
package attendance

import (
	"fmt"
	"time"

	"github.com/warp/timepay-engine/rules"
)

// BathroomResult totals one day's counted bathroom time.
type BathroomResult struct {
	Minutes int
	Flags   []string
}

type workPeriod struct {
	name       string
	start, end time.Time
}

// ReconcileBathroom pairs the day's bathroom punches against the work periods.
func ReconcileBathroom(date time.Time, bathroom []Punch, adjusted map[ClockSlot]time.Time, rs rules.Set) BathroomResult {
	var res BathroomResult

	periods := workPeriods(date, adjusted)
	if len(periods) == 0 || len(bathroom) == 0 {
		return res
	}

	var entries, exits []Punch
	for _, p := range bathroom {
		if p.Direction == DirectionIn {
			entries = append(entries, p)
		} else {
			exits = append(exits, p)
		}
	}

	usedExit := make([]bool, len(exits))
	pairedEntry := make([]bool, len(entries))
	pairedExit := make([]bool, len(exits))

	for i, entry := range entries {
		for j, exit := range exits {
			if usedExit[j] || !exit.At.After(entry.At) {
				continue
			}
			usedExit[j] = true
			pairedEntry[i] = true
			pairedExit[j] = true

			period := containingPeriod(periods, entry.At, exit.At)
			if period == nil {
				res.Flags = append(res.Flags,
					fmt.Sprintf("bathroom pair %s-%s outside a single work period, not counted",
						entry.At.Format("15:04"), exit.At.Format("15:04")))
				break
			}

			minutes := spanMinutes(entry.At, exit.At)
			res.Minutes += minutes
			if minutes > rs.LongBathroomMinutes {
				res.Flags = append(res.Flags,
					fmt.Sprintf("long bathroom break: %d minutes from %s", minutes, entry.At.Format("15:04")))
			}
			if isEarlyEntry(entry.At, adjusted, rs) {
				res.Flags = append(res.Flags,
					fmt.Sprintf("early bathroom break at %s", entry.At.Format("15:04")))
			}
			break
		}
	}

	for i, entry := range entries {
		if !pairedEntry[i] && inAnyPeriod(periods, entry.At) {
			res.Flags = append(res.Flags,
				fmt.Sprintf("unpaired bathroom entry at %s", entry.At.Format("15:04")))
		}
	}
	for j, exit := range exits {
		if !pairedExit[j] && inAnyPeriod(periods, exit.At) {
			res.Flags = append(res.Flags,
				fmt.Sprintf("unpaired bathroom exit at %s", exit.At.Format("15:04")))
		}
	}

	if res.Minutes > rs.DailyBathroomMinutes {
		res.Flags = append(res.Flags,
			fmt.Sprintf("daily bathroom threshold exceeded: %d of %d minutes", res.Minutes, rs.DailyBathroomMinutes))
	}

	return res
}

func workPeriods(date time.Time, adjusted map[ClockSlot]time.Time) []workPeriod {
	var periods []workPeriod

	c1, ok1 := adjusted[Clock1MorningIn]
	c2, ok2 := adjusted[Clock2LunchOut]
	if ok1 && ok2 {
		name := "morning"
		if isFriday(date) {
			name = "friday"
		}
		periods = append(periods, workPeriod{name: name, start: c1, end: c2})
	}

	if !isFriday(date) {
		c3, ok3 := adjusted[Clock3LunchReturn]
		c4, ok4 := adjusted[Clock4AfternoonOut]
		if ok3 && ok4 {
			periods = append(periods, workPeriod{name: "afternoon", start: c3, end: c4})
		}
	}

	return periods
}

func (wp workPeriod) contains(t time.Time) bool {
	return !t.Before(wp.start) && !t.After(wp.end)
}

// containingPeriod returns the period holding BOTH endpoints, or nil.
func containingPeriod(periods []workPeriod, entry, exit time.Time) *workPeriod {
	for i := range periods {
		if periods[i].contains(entry) && periods[i].contains(exit) {
			return &periods[i]
		}
	}
	return nil
}

func inAnyPeriod(periods []workPeriod, t time.Time) bool {
	for _, p := range periods {
		if p.contains(t) {
			return true
		}
	}
	return false
}

// isEarlyEntry reports whether the entry falls within the early-break
// threshold of the morning or afternoon period start.
func isEarlyEntry(entry time.Time, adjusted map[ClockSlot]time.Time, rs rules.Set) bool {
	for _, slot := range []ClockSlot{Clock1MorningIn, Clock3LunchReturn} {
		start, ok := adjusted[slot]
		if !ok {
			continue
		}
		diff := spanMinutes(start, entry)
		if diff >= 0 && diff <= rs.EarlyBathroomMinutes {
			return true
		}
	}
	return false
}
