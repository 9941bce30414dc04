/*
Package payroll converts weekly hours and manually entered pay components
into monetary payslip fields.

PURPOSE:
  Calculate is a pure function: same input, same output, no hidden state.
  All arithmetic runs on decimal values and every monetary output is rounded
  to two decimals, half up. Numeric edge cases never raise errors; missing
  optional inputs are zero-valued decimals and flow through as zeros.

FORMULAS:
  standardTime  = hours*rate + (rate/60)*minutes
  overtime      = 1.5 * (otHours*rate + (rate/60)*otMinutes)
  gross         = standardTime + overtime + leave + bonus + other income
  uif           = 1% of gross, Permanent employees only
  net           = gross - (uif + other deductions)
  paidToAccount = net - loan deduction (+ new loan when paid with salary)
  updatedBal    = current balance - loan deduction + new loan

SEE ALSO:
  - ledger: consumes the loan-activity fields of a stored payslip
  - pdf.go: renders a calculated payslip
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// EmploymentStatus gates the UIF deduction.
type EmploymentStatus string

const (
	StatusPermanent EmploymentStatus = "Permanent"
	StatusTemporary EmploymentStatus = "Temporary"
)

// ModeWithSalary is the loan disbursement mode that pays the loan out
// together with the salary transfer.
const ModeWithSalary = "With Salary"

var (
	uifRate      = decimal.NewFromFloat(0.01)
	overtimeRate = decimal.NewFromFloat(1.5)
	sixty        = decimal.NewFromInt(60)
)

// Input carries everything Calculate needs. Monetary fields left at their
// zero value behave as zero amounts.
type Input struct {
	Hours           int             `json:"hours"`
	Minutes         int             `json:"minutes"`
	OvertimeHours   int             `json:"overtime_hours"`
	OvertimeMinutes int             `json:"overtime_minutes"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`

	LeavePay    decimal.Decimal `json:"leave_pay"`
	BonusPay    decimal.Decimal `json:"bonus_pay"`
	OtherIncome decimal.Decimal `json:"other_income"`

	EmploymentStatus EmploymentStatus `json:"employment_status"`
	OtherDeductions  decimal.Decimal  `json:"other_deductions"`

	LoanDeduction        decimal.Decimal `json:"loan_deduction"`
	NewLoan              decimal.Decimal `json:"new_loan"`
	LoanDisbursementMode string          `json:"loan_disbursement_mode"`
	CurrentLoanBalance   decimal.Decimal `json:"current_loan_balance"`
}

// Result holds the monetary payslip fields, each rounded to two decimals.
type Result struct {
	StandardTime       decimal.Decimal `json:"standard_time"`
	Overtime           decimal.Decimal `json:"overtime"`
	GrossSalary        decimal.Decimal `json:"gross_salary"`
	UIF                decimal.Decimal `json:"uif"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	PaidToAccount      decimal.Decimal `json:"paid_to_account"`
	UpdatedLoanBalance decimal.Decimal `json:"updated_loan_balance"`
}

// Calculate computes the payslip fields from hours, rates, and loan activity.
func Calculate(in Input) Result {
	standard := timePay(in.Hours, in.Minutes, in.HourlyRate)
	overtime := timePay(in.OvertimeHours, in.OvertimeMinutes, in.HourlyRate).Mul(overtimeRate)

	gross := standard.Add(overtime).Add(in.LeavePay).Add(in.BonusPay).Add(in.OtherIncome)

	uif := decimal.Zero
	if in.EmploymentStatus == StatusPermanent {
		uif = gross.Mul(uifRate)
	}
	totalDeductions := uif.Add(in.OtherDeductions)
	net := gross.Sub(totalDeductions)

	newLoanToAccount := decimal.Zero
	if in.LoanDisbursementMode == ModeWithSalary {
		newLoanToAccount = in.NewLoan
	}
	paid := net.Sub(in.LoanDeduction).Add(newLoanToAccount)
	balance := in.CurrentLoanBalance.Sub(in.LoanDeduction).Add(in.NewLoan)

	return Result{
		StandardTime:       round2(standard),
		Overtime:           round2(overtime),
		GrossSalary:        round2(gross),
		UIF:                round2(uif),
		TotalDeductions:    round2(totalDeductions),
		NetSalary:          round2(net),
		PaidToAccount:      round2(paid),
		UpdatedLoanBalance: round2(balance),
	}
}

// timePay is hours*rate + (rate/60)*minutes, unrounded.
func timePay(hours, minutes int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(hours))).
		Add(rate.Div(sixty).Mul(decimal.NewFromInt(int64(minutes))))
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
