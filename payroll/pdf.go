/*
pdf.go - Payslip PDF rendering

Renders a calculated payslip into a simple A4 document. Layout is two-column
label/value rows; no templating, no assets.
*/
package payroll

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// PayslipInfo is the header block of a rendered payslip.
type PayslipInfo struct {
	EmployeeName string
	EmployeeID   string
	WeekEnding   time.Time
}

// RenderPDF writes the payslip as a PDF document.
func RenderPDF(w io.Writer, info PayslipInfo, in Input, res Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", info.EmployeeName, info.EmployeeID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Week ending: %s", info.WeekEnding.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", in.EmploymentStatus))
	pdf.Ln(10)

	row := func(label string, v decimal.Decimal) {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(90, 7, label)
		pdf.CellFormat(40, 7, v.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Time worked: %dh%02dm plus %dh%02dm overtime",
		in.Hours, in.Minutes, in.OvertimeHours, in.OvertimeMinutes))
	pdf.Ln(9)

	row("Standard time", res.StandardTime)
	row("Overtime", res.Overtime)
	row("Leave pay", in.LeavePay)
	row("Bonus pay", in.BonusPay)
	row("Other income", in.OtherIncome)
	row("Gross salary", res.GrossSalary)
	pdf.Ln(3)
	row("UIF", res.UIF)
	row("Other deductions", in.OtherDeductions)
	row("Total deductions", res.TotalDeductions)
	pdf.Ln(3)
	row("Net salary", res.NetSalary)
	row("Loan deduction", in.LoanDeduction)
	row("New loan", in.NewLoan)
	row("Paid to account", res.PaidToAccount)
	row("Loan balance", res.UpdatedLoanBalance)

	return pdf.Output(w)
}
