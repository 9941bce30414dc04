/*
dto.go - Request and response shapes for the HTTP surface

DTOs decouple the internal records from the API contract. Validation is
done in handlers; DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timepay-engine/attendance"
	"github.com/warp/timepay-engine/ledger"
	"github.com/warp/timepay-engine/rules"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

// ProcessRequest submits one employee week of raw punches, with optional
// partial rule overrides merged against the defaults.
type ProcessRequest struct {
	EmployeeID string                `json:"employee_id"`
	Punches    []attendance.RawEvent `json:"punches"`
	Rules      *rules.Document       `json:"rules,omitempty"`
}

// DayRecordDTO flattens a DayRecord for JSON.
type DayRecordDTO struct {
	Date            string            `json:"date"`
	Weekday         string            `json:"weekday"`
	Scenario        string            `json:"scenario"`
	Slots           map[string]string `json:"slots"`
	AdjustedTimes   map[string]string `json:"adjusted_times"`
	PaidMinutes     int               `json:"paid_minutes"`
	LunchMinutes    int               `json:"lunch_minutes"`
	BathroomMinutes int               `json:"bathroom_minutes"`
	Warnings        []string          `json:"warnings"`
}

// WeekResultDTO is the response of the process endpoint.
type WeekResultDTO struct {
	Hours           int            `json:"hours"`
	Minutes         int            `json:"minutes"`
	RawMinutes      int            `json:"raw_minutes"`
	LunchMinutes    int            `json:"lunch_minutes"`
	BathroomMinutes int            `json:"bathroom_minutes"`
	DailyBreakdown  []DayRecordDTO `json:"daily_breakdown"`
	Warnings        []string       `json:"warnings"`
}

func toWeekResultDTO(res attendance.WeekResult) WeekResultDTO {
	dto := WeekResultDTO{
		Hours:           res.Hours,
		Minutes:         res.Minutes,
		RawMinutes:      res.RawMinutes,
		LunchMinutes:    res.LunchMinutes,
		BathroomMinutes: res.BathroomMinutes,
		Warnings:        res.Warnings,
	}
	for _, day := range res.DailyBreakdown {
		d := DayRecordDTO{
			Date:            day.Date.Format("2006-01-02"),
			Weekday:         day.Weekday.String(),
			Scenario:        day.Scenario,
			Slots:           map[string]string{},
			AdjustedTimes:   map[string]string{},
			PaidMinutes:     day.PaidMinutes,
			LunchMinutes:    day.LunchMinutes,
			BathroomMinutes: day.BathroomMinutes,
			Warnings:        day.Warnings,
		}
		for slot, p := range day.Slots {
			d.Slots[slot.String()] = p.At.Format("15:04:05")
		}
		for slot, t := range day.Adjusted {
			d.AdjustedTimes[slot.String()] = t.Format("15:04")
		}
		dto.DailyBreakdown = append(dto.DailyBreakdown, d)
	}
	return dto
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// SavePayslipRequest stores a weekly payslip row for later ledger sync.
type SavePayslipRequest struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	WeekEnding string `json:"week_ending"` // YYYY-MM-DD

	Hours           int `json:"hours"`
	Minutes         int `json:"minutes"`
	OvertimeHours   int `json:"overtime_hours"`
	OvertimeMinutes int `json:"overtime_minutes"`

	HourlyRate       decimal.Decimal `json:"hourly_rate"`
	LeavePay         decimal.Decimal `json:"leave_pay"`
	BonusPay         decimal.Decimal `json:"bonus_pay"`
	OtherIncome      decimal.Decimal `json:"other_income"`
	OtherDeductions  decimal.Decimal `json:"other_deductions"`
	EmploymentStatus string          `json:"employment_status"`

	LoanDeduction    decimal.Decimal `json:"loan_deduction"`
	NewLoan          decimal.Decimal `json:"new_loan"`
	DisbursementType string          `json:"disbursement_type"`
}

// =============================================================================
// LEDGER
// =============================================================================

// TransactionDTO is one loan ledger row in API responses.
type TransactionDTO struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	TransactionDate string `json:"transaction_date"`
	Timestamp       string `json:"timestamp"`
	Amount          string `json:"amount"`
	Type            string `json:"type"`
	Mode            string `json:"mode"`
	SalaryLink      string `json:"salary_link,omitempty"`
	BalanceBefore   string `json:"balance_before"`
	BalanceAfter    string `json:"balance_after"`
	Notes           string `json:"notes,omitempty"`
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:              tx.ID,
		EmployeeID:      tx.EmployeeID,
		TransactionDate: tx.TransactionDate.Format("2006-01-02"),
		Timestamp:       tx.Timestamp.Format(time.RFC3339Nano),
		Amount:          tx.Amount.StringFixed(2),
		Type:            string(tx.Type),
		Mode:            string(tx.Mode),
		SalaryLink:      tx.SalaryLink,
		BalanceBefore:   tx.BalanceBefore.StringFixed(2),
		BalanceAfter:    tx.BalanceAfter.StringFixed(2),
		Notes:           tx.Notes,
	}
}

// RecordTransactionRequest creates a manual ledger transaction.
type RecordTransactionRequest struct {
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"` // YYYY-MM-DD
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
	Mode       string          `json:"mode"`
	Notes      string          `json:"notes,omitempty"`
}

// BalanceDTO is the current-balance response.
type BalanceDTO struct {
	EmployeeID string `json:"employee_id"`
	Balance    string `json:"balance"`
}
