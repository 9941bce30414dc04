/*
ledger.go - Loan ledger operations

PURPOSE:
  Record, Edit, CurrentBalance, and Recalculate over a Store. Every
  mutation path ends in Recalculate: balances are derived by replaying the
  chronological sequence, so a backdated insert or an edited timestamp
  corrects the whole run of balances, and running the recompute twice is a
  no-op.

CONCURRENCY:
  The ledger is a shared resource across payslip sync cycles. Mutating
  operations triggered by sync run inside a critical section guarded by a
  single-slot gate with a bounded wait (sync.go). Direct API calls share
  the same gate.
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultLockWait bounds how long a mutation waits for the sync gate.
const DefaultLockWait = 30 * time.Second

// Ledger exposes the loan ledger operations over a Store.
type Ledger struct {
	store    Store
	log      *zap.Logger
	gate     chan struct{}
	lockWait time.Duration
	now      func() time.Time
}

// New creates a Ledger. A nil logger falls back to zap.NewNop.
func New(store Store, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		store:    store,
		log:      log,
		gate:     make(chan struct{}, 1),
		lockWait: DefaultLockWait,
		now:      time.Now,
	}
}

// SetLockWait overrides the bounded lock wait (tests use short waits).
func (l *Ledger) SetLockWait(d time.Duration) { l.lockWait = d }

// acquire takes the gate or gives up after the bounded wait.
// The returned release must be called iff err is nil.
func (l *Ledger) acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(l.lockWait)
	defer timer.Stop()

	select {
	case l.gate <- struct{}{}:
		return func() { <-l.gate }, nil
	case <-timer.C:
		return nil, ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// =============================================================================
// RECORD
// =============================================================================

// RecordInput is a new transaction before validation.
type RecordInput struct {
	EmployeeID string           `json:"employee_id"`
	Date       time.Time        `json:"date"`
	Amount     decimal.Decimal  `json:"amount"`
	Type       TransactionType  `json:"type"`
	Mode       DisbursementMode `json:"mode"`
	SalaryLink string           `json:"salary_link,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

// validate collects every violation. Runs before any mutation.
func (in RecordInput) validate() []string {
	var violations []string
	if in.EmployeeID == "" {
		violations = append(violations, "employee id is required")
	}
	if in.Date.IsZero() {
		violations = append(violations, "transaction date is required")
	}
	if in.Amount.IsZero() {
		violations = append(violations, "amount must not be zero")
	}
	switch in.Type {
	case TypeDisbursement:
		if in.Amount.IsNegative() {
			violations = append(violations, "disbursement amount must be positive")
		}
	case TypeRepayment:
		if in.Amount.IsPositive() {
			violations = append(violations, "repayment amount must be negative")
		}
	default:
		violations = append(violations, fmt.Sprintf("unknown transaction type %q", in.Type))
	}
	return violations
}

// Record validates and appends a transaction, then recomputes the
// employee's balances. Returns the stored transaction.
func (l *Ledger) Record(ctx context.Context, in RecordInput) (Transaction, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return Transaction{}, err
	}
	defer release()

	return l.recordLocked(ctx, in)
}

func (l *Ledger) recordLocked(ctx context.Context, in RecordInput) (Transaction, error) {
	violations := in.validate()
	if len(violations) > 0 {
		return Transaction{}, &ValidationError{Violations: violations}
	}

	if in.SalaryLink != "" {
		existing, err := l.store.FindBySalaryLink(ctx, in.SalaryLink)
		if err != nil {
			return Transaction{}, err
		}
		if existing != nil {
			return Transaction{}, fmt.Errorf("%w: %s", ErrDuplicateSalaryLink, in.SalaryLink)
		}
	}

	before, err := l.currentBalanceLocked(ctx, in.EmployeeID)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:              uuid.NewString(),
		EmployeeID:      in.EmployeeID,
		TransactionDate: in.Date,
		Timestamp:       l.now(),
		Amount:          in.Amount,
		Type:            in.Type,
		Mode:            in.Mode,
		SalaryLink:      in.SalaryLink,
		BalanceBefore:   before,
		BalanceAfter:    before.Add(in.Amount),
		Notes:           in.Notes,
	}

	if err := l.store.AppendTransaction(ctx, tx); err != nil {
		return Transaction{}, err
	}

	// A backdated transaction lands "in the past"; replay fixes every
	// balance after the insertion point.
	if err := l.recalculateLocked(ctx, in.EmployeeID); err != nil {
		return Transaction{}, err
	}

	stored, err := l.store.GetTransaction(ctx, tx.ID)
	if err != nil {
		return Transaction{}, err
	}
	return stored, nil
}

// =============================================================================
// EDIT
// =============================================================================

// EditInput updates the mutable fields of a transaction. Nil fields are
// left unchanged. TransactionDate is not editable and so not present.
type EditInput struct {
	ID        string            `json:"id"`
	Amount    *decimal.Decimal  `json:"amount,omitempty"`
	Type      *TransactionType  `json:"type,omitempty"`
	Mode      *DisbursementMode `json:"mode,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
}

// Edit applies field updates, refreshes the timestamp unless one was
// supplied, and recomputes the employee's balances.
func (l *Ledger) Edit(ctx context.Context, in EditInput) (Transaction, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return Transaction{}, err
	}
	defer release()

	tx, err := l.store.GetTransaction(ctx, in.ID)
	if err != nil {
		return Transaction{}, err
	}

	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Mode != nil {
		tx.Mode = *in.Mode
	}
	if in.Notes != nil {
		tx.Notes = *in.Notes
	}
	if in.Timestamp != nil {
		tx.Timestamp = *in.Timestamp
	} else {
		tx.Timestamp = l.now()
	}

	violations := RecordInput{
		EmployeeID: tx.EmployeeID,
		Date:       tx.TransactionDate,
		Amount:     tx.Amount,
		Type:       tx.Type,
	}.validate()
	if len(violations) > 0 {
		return Transaction{}, &ValidationError{Violations: violations}
	}

	if err := l.store.UpdateTransaction(ctx, tx); err != nil {
		return Transaction{}, err
	}
	if err := l.recalculateLocked(ctx, tx.EmployeeID); err != nil {
		return Transaction{}, err
	}
	return l.store.GetTransaction(ctx, tx.ID)
}

// =============================================================================
// BALANCES
// =============================================================================

// CurrentBalance returns the balanceAfter of the chronologically last
// transaction, or zero when the employee has none.
func (l *Ledger) CurrentBalance(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	return l.currentBalanceLocked(ctx, employeeID)
}

func (l *Ledger) currentBalanceLocked(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	txs, err := l.store.LoadTransactions(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(txs) == 0 {
		return decimal.Zero, nil
	}
	chronological(txs)
	return txs[len(txs)-1].BalanceAfter, nil
}

// Recalculate replays the employee's transactions in chronological order,
// recomputing balanceBefore/balanceAfter from a running total starting at
// zero, and writes the corrected values back. Idempotent; safe to retry
// any number of times, including as crash recovery.
func (l *Ledger) Recalculate(ctx context.Context, employeeID string) error {
	release, err := l.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return l.recalculateLocked(ctx, employeeID)
}

func (l *Ledger) recalculateLocked(ctx context.Context, employeeID string) error {
	txs, err := l.store.LoadTransactions(ctx, employeeID)
	if err != nil {
		return err
	}
	chronological(txs)

	running := decimal.Zero
	changed := make([]Transaction, 0, len(txs))
	for i := range txs {
		before := running
		after := before.Add(txs[i].Amount)
		if !txs[i].BalanceBefore.Equal(before) || !txs[i].BalanceAfter.Equal(after) {
			txs[i].BalanceBefore = before
			txs[i].BalanceAfter = after
			changed = append(changed, txs[i])
		}
		running = after
	}

	if len(changed) == 0 {
		return nil
	}

	l.log.Debug("recalculated loan balances",
		zap.String("employee_id", employeeID),
		zap.Int("transactions", len(txs)),
		zap.Int("corrected", len(changed)))

	return l.store.SaveBalances(ctx, changed)
}

// Transactions returns the employee's transactions in chronological order.
func (l *Ledger) Transactions(ctx context.Context, employeeID string) ([]Transaction, error) {
	txs, err := l.store.LoadTransactions(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	chronological(txs)
	return txs, nil
}
