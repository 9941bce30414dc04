/*
sync.go - Payslip-driven ledger synchronization

PURPOSE:
  A stored payslip carries loan activity: a deduction taken from the salary
  and possibly a new loan issued. SyncFromPayslip folds that activity into
  the ledger as ONE transaction keyed by the payslip's salary link, so the
  operation is an idempotent upsert:

    net = newLoan - loanDeduction
    net == 0  -> no-op
    net  > 0  -> disbursement (mode taken from the payslip)
    net  < 0  -> repayment (always "With Salary")

  A repeated trigger for the same payslip finds the existing salary-linked
  row and updates it in place (amount/type/notes, timestamp refreshed)
  instead of creating a duplicate. Either path ends in a full balance
  recompute.

CONCURRENCY:
  The whole decide-and-mutate sequence runs inside the ledger gate with a
  bounded wait. On timeout the cycle is abandoned with ErrLockTimeout: the
  caller logs and retries on its next cycle, and no partial mutation has
  happened. The "already synced" marker lives on the payslip row and is the
  caller's concern; the salary-link upsert here is the safety net beneath
  it.
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PayslipEvent is the loan-activity slice of one payslip record.
type PayslipEvent struct {
	EmployeeID string
	SalaryLink string
	WeekEnding time.Time

	LoanDeduction    decimal.Decimal
	NewLoan          decimal.Decimal
	DisbursementType DisbursementMode
}

// SyncFromPayslip upserts the payslip's net loan activity into the ledger.
func (l *Ledger) SyncFromPayslip(ctx context.Context, ev PayslipEvent) error {
	if ev.SalaryLink == "" {
		return &ValidationError{Violations: []string{"payslip event requires a salary link"}}
	}

	release, err := l.acquire(ctx)
	if err != nil {
		if err == ErrLockTimeout {
			l.log.Warn("ledger sync lock timeout, abandoning cycle",
				zap.String("salary_link", ev.SalaryLink))
		}
		return err
	}
	defer release()

	net := ev.NewLoan.Sub(ev.LoanDeduction)
	if net.IsZero() {
		return nil
	}

	txType := TypeDisbursement
	mode := ev.DisbursementType
	if mode == "" {
		mode = ModeCash
	}
	if net.IsNegative() {
		txType = TypeRepayment
		mode = ModeWithSalary
	}
	notes := fmt.Sprintf("weekly payslip sync (week ending %s)", ev.WeekEnding.Format("2006-01-02"))

	existing, err := l.store.FindBySalaryLink(ctx, ev.SalaryLink)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.Amount = net
		existing.Type = txType
		existing.Mode = mode
		existing.Notes = notes
		existing.Timestamp = l.now()
		if err := l.store.UpdateTransaction(ctx, *existing); err != nil {
			return err
		}
		l.log.Info("updated ledger transaction from payslip",
			zap.String("salary_link", ev.SalaryLink),
			zap.String("amount", net.StringFixed(2)))
		return l.recalculateLocked(ctx, ev.EmployeeID)
	}

	_, err = l.recordLocked(ctx, RecordInput{
		EmployeeID: ev.EmployeeID,
		Date:       ev.WeekEnding,
		Amount:     net,
		Type:       txType,
		Mode:       mode,
		SalaryLink: ev.SalaryLink,
		Notes:      notes,
	})
	if err != nil {
		return err
	}
	l.log.Info("created ledger transaction from payslip",
		zap.String("salary_link", ev.SalaryLink),
		zap.String("amount", net.StringFixed(2)))
	return nil
}
