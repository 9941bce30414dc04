/*
Package ledger maintains the employee loan ledger: a strictly
chronologically ordered transaction list whose running balance feeds the
payslip calculation.

PURPOSE:
  Unlike attendance records, loan transactions have durable identity. They
  are appended by Record, field-updated by Edit, and NEVER deleted. Balances
  are not trusted fields: Recalculate replays the full chronological
  sequence and writes corrected balanceBefore/balanceAfter values back,
  which makes it safe to retry after any partial write.

ORDERING:
  Transactions sort by (TransactionDate asc, Timestamp asc).
  TransactionDate is immutable after creation and is the business ordering
  key; Timestamp is refreshed on edits and serves as the tie-break. A
  transaction can therefore be inserted "in the past", which is exactly why
  every insert or edit is followed by a full recompute.

INVARIANTS:
  - BalanceAfter = BalanceBefore + Amount on every transaction
  - BalanceBefore[i+1] = BalanceAfter[i] under chronological order
  - first BalanceBefore = 0
  - at most one transaction references a given salary link

SEE ALSO:
  - ledger.go: operations and validation
  - sync.go: payslip-driven upsert under the sync lock
*/
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION
// =============================================================================

type TransactionType string

const (
	TypeDisbursement TransactionType = "disbursement"
	TypeRepayment    TransactionType = "repayment"
)

// DisbursementMode records how a disbursement reaches the employee.
type DisbursementMode string

const (
	ModeWithSalary DisbursementMode = "With Salary"
	ModeCash       DisbursementMode = "Cash"
)

// Transaction is one loan ledger row. Amount is signed: positive for
// disbursements, negative for repayments.
type Transaction struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`

	// TransactionDate is the business date and ordering key.
	// Immutable after creation.
	TransactionDate time.Time `json:"transaction_date"`

	// Timestamp is the tie-break key. Refreshed whenever the row is edited.
	Timestamp time.Time `json:"timestamp"`

	Amount decimal.Decimal  `json:"amount"`
	Type   TransactionType  `json:"type"`
	Mode   DisbursementMode `json:"mode"`

	// SalaryLink ties the transaction to the one payslip that generated it.
	// Empty for manually entered transactions.
	SalaryLink string `json:"salary_link,omitempty"`

	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`

	Notes string `json:"notes,omitempty"`
}

// chronological orders transactions by (TransactionDate, Timestamp) ascending.
// Sorting is stable so equal keys keep their stored order.
func chronological(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].TransactionDate.Before(txs[j].TransactionDate)
		}
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})
}
