/*
demo.go - Demo data loader for development and exploration

Resets the database and loads one employee with a realistic punch week, a
payslip row carrying loan activity, and a short loan history. Only use in
development environments.
*/
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timepay-engine/attendance"
	"github.com/warp/timepay-engine/ledger"
	"github.com/warp/timepay-engine/payroll"
	"github.com/warp/timepay-engine/rules"
	"github.com/warp/timepay-engine/store/sqlite"
)

const demoEmployee = "emp-001"

// LoadDemoData resets the store and loads the demo employee week.
func (h *Handler) LoadDemoData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	// Week ending Friday 2025-03-14.
	weekEnding := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	events := demoWeekPunches()

	if err := h.Store.SavePunches(ctx, demoEmployee, weekEnding, events); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save punches", err)
		return
	}

	result := attendance.ProcessClockData(events, rules.DefaultSet())

	slip := sqlite.PayslipRow{
		ID:               payslipID(demoEmployee, weekEnding),
		EmployeeID:       demoEmployee,
		WeekEnding:       weekEnding,
		Hours:            result.Hours,
		Minutes:          result.Minutes,
		HourlyRate:       decimal.NewFromFloat(33.96),
		EmploymentStatus: string(payroll.StatusPermanent),
		LoanDeduction:    decimal.NewFromInt(150),
	}
	if err := h.Store.SavePayslip(ctx, slip); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payslip", err)
		return
	}

	// A month-old cash loan so the deduction has something to repay.
	_, err := h.Ledger.Record(ctx, ledger.RecordInput{
		EmployeeID: demoEmployee,
		Date:       weekEnding.AddDate(0, -1, 0),
		Amount:     decimal.NewFromInt(1200),
		Type:       ledger.TypeDisbursement,
		Mode:       ledger.ModeCash,
		Notes:      "demo: initial cash loan",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed loan", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id": demoEmployee,
		"week_ending": weekEnding.Format("2006-01-02"),
		"punches":     len(events),
		"hours":       result.Hours,
		"minutes":     result.Minutes,
	})
}

// demoWeekPunches builds Monday through Friday of 2025-03-10, including a
// duplicate punch and a bathroom break to exercise the warnings.
func demoWeekPunches() []attendance.RawEvent {
	day := func(d int, clock string, device string) attendance.RawEvent {
		return attendance.RawEvent{
			Timestamp: fmt.Sprintf("2025-03-%02d %s", d, clock),
			Device:    device,
		}
	}

	var events []attendance.RawEvent
	for d := 10; d <= 13; d++ { // Mon-Thu
		events = append(events,
			day(d, "07:28:10", "MAIN-IN"),
			day(d, "12:01:05", "MAIN-OUT"),
			day(d, "12:29:40", "MAIN-IN"),
			day(d, "16:31:20", "MAIN-OUT"),
		)
	}
	// Duplicate morning punch on Tuesday, 40 seconds after the first.
	events = append(events, day(11, "07:28:50", "MAIN-IN"))
	// One bathroom break on Wednesday morning.
	events = append(events,
		day(12, "10:00:00", "BATHROOM-IN"),
		day(12, "10:12:00", "BATHROOM-OUT"),
	)
	// Friday: two-clock day.
	events = append(events,
		day(14, "07:29:00", "MAIN-IN"),
		day(14, "13:02:00", "MAIN-OUT"),
	)
	return events
}
