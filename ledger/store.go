/*
store.go - Persistence interface for loan transactions

PURPOSE:
  Defines the boundary between ledger logic and the database. Unlike an
  audit ledger, loan rows are field-updatable: balances are recomputed and
  written back after every insert or edit. Rows are never deleted.

IMPLEMENTATIONS:
  - store/sqlite: production store (shared with punches and payslips)
  - ledger/store: in-memory store for tests and development
*/
package ledger

import "context"

// Store persists loan transactions. No Delete exists: corrections are
// field edits followed by a balance recompute.
type Store interface {
	// AppendTransaction inserts a new row.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// UpdateTransaction overwrites the mutable fields and balances of an
	// existing row, matched by ID. TransactionDate is never changed.
	UpdateTransaction(ctx context.Context, tx Transaction) error

	// GetTransaction returns one row by ID, or ErrTransactionNotFound.
	GetTransaction(ctx context.Context, id string) (Transaction, error)

	// LoadTransactions returns all rows for an employee, in stored order.
	LoadTransactions(ctx context.Context, employeeID string) ([]Transaction, error)

	// FindBySalaryLink returns the row referencing the link, or nil.
	FindBySalaryLink(ctx context.Context, salaryLink string) (*Transaction, error)

	// SaveBalances bulk-writes recomputed balances for the given rows,
	// in a single storage transaction where the backend supports it.
	SaveBalances(ctx context.Context, txs []Transaction) error
}
