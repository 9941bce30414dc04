/*
normalize.go - Raw event parsing, sorting, and duplicate removal

PURPOSE:
  First stage of the pipeline. Takes the raw rows for one employee week and
  produces clean, direction-tagged punches grouped by calendar day and split
  into main (clock) and bathroom events.

STEPS:
  1. Parse timestamps; rows with a missing or unparseable time are dropped
     and a diagnostic note is recorded.
  2. Sort ascending by time.
  3. Split main vs bathroom by device-label substring match.
  4. Within each day and class, drop near-duplicates: a punch closer to the
     previous RETAINED punch than the class threshold is discarded with a
     note. Main punches use a wider gap than bathroom punches because a
     worker can genuinely visit the bathroom twice in quick succession.
  5. Infer direction: an explicit in/out marker on the device label wins;
     otherwise punches alternate starting at In for each day and class.

SEE ALSO:
  - classify.go: next stage, consumes NormalizedDay.Main
  - bathroom.go: consumes NormalizedDay.Bathroom
*/
package attendance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/warp/timepay-engine/rules"
)

// timestampLayouts are tried in order when parsing raw device timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// NormalizedDay holds the cleaned punches of one calendar day.
type NormalizedDay struct {
	Date     time.Time // midnight, punch-local
	Main     []Punch
	Bathroom []Punch
}

// NormalizedWeek is the output of Normalize: days in ascending date order
// plus the diagnostic notes emitted while cleaning.
type NormalizedWeek struct {
	Days  []NormalizedDay
	Notes []string
}

// Normalize cleans one employee week of raw events.
func Normalize(events []RawEvent, rs rules.Set) NormalizedWeek {
	var week NormalizedWeek

	// Parse, dropping rows without a usable time.
	punches := make([]Punch, 0, len(events))
	for _, ev := range events {
		at, ok := parseTimestamp(ev.Timestamp)
		if !ok {
			week.Notes = append(week.Notes,
				fmt.Sprintf("dropped event with unparseable time %q (device %s)", ev.Timestamp, ev.Device))
			continue
		}
		punches = append(punches, Punch{At: at, Device: ev.Device, ClockRef: ev.ClockRef})
	}

	sort.Slice(punches, func(i, j int) bool { return punches[i].At.Before(punches[j].At) })

	// Group by day, split by class.
	byDay := map[time.Time]*NormalizedDay{}
	var order []time.Time
	for _, p := range punches {
		d := dayOf(p.At)
		day, ok := byDay[d]
		if !ok {
			day = &NormalizedDay{Date: d}
			byDay[d] = day
			order = append(order, d)
		}
		if isBathroomDevice(p.Device, rs.BathroomLabel) {
			day.Bathroom = append(day.Bathroom, p)
		} else {
			day.Main = append(day.Main, p)
		}
	}

	for _, d := range order {
		day := byDay[d]
		day.Main = dedupe(day.Main, rs.MainDuplicateGap, "main", &week.Notes)
		day.Bathroom = dedupe(day.Bathroom, rs.BathroomDuplicateGap, "bathroom", &week.Notes)
		day.Main = inferDirections(day.Main)
		day.Bathroom = inferDirections(day.Bathroom)
		week.Days = append(week.Days, *day)
	}

	return week
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isBathroomDevice(device, label string) bool {
	return strings.Contains(strings.ToLower(device), label)
}

// dedupe drops punches closer to the previous retained punch than gap.
// Input must already be sorted ascending.
func dedupe(punches []Punch, gap time.Duration, class string, notes *[]string) []Punch {
	if len(punches) == 0 {
		return punches
	}
	kept := punches[:1]
	for _, p := range punches[1:] {
		prev := kept[len(kept)-1]
		if p.At.Sub(prev.At) < gap {
			*notes = append(*notes,
				fmt.Sprintf("dropped duplicate %s punch at %s (%.0fs after previous)",
					class, p.At.Format("2006-01-02 15:04:05"), p.At.Sub(prev.At).Seconds()))
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// inferDirections tags each punch In or Out. An explicit marker on the
// device label wins; otherwise direction alternates from the previous
// punch, starting at In for the first punch of the day.
func inferDirections(punches []Punch) []Punch {
	prev := DirectionOut // so the first inferred punch becomes In
	for i := range punches {
		if dir, ok := explicitDirection(punches[i].Device); ok {
			punches[i].Direction = dir
		} else if prev == DirectionIn {
			punches[i].Direction = DirectionOut
		} else {
			punches[i].Direction = DirectionIn
		}
		prev = punches[i].Direction
	}
	return punches
}

// explicitDirection reads an in/out marker off the device label.
// "out"/"exit" is checked first: labels like "MAIN-OUT" also contain the
// letters "in", so the out check must win.
func explicitDirection(device string) (Direction, bool) {
	label := strings.ToLower(device)
	if strings.Contains(label, "out") || strings.Contains(label, "exit") {
		return DirectionOut, true
	}
	if strings.Contains(label, "entry") || strings.Contains(label, "-in") ||
		strings.HasSuffix(label, " in") || label == "in" {
		return DirectionIn, true
	}
	return "", false
}
