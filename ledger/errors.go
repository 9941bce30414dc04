/*
errors.go - Sentinel and structured errors for loan ledger operations

All input violations are rejected before any mutation and aggregated into a
single ValidationError listing every violation found, not just the first.
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransactionNotFound is returned when an edit targets a missing row.
	ErrTransactionNotFound = errors.New("loan transaction not found")

	// ErrDuplicateSalaryLink is returned when a salary link is already
	// referenced by an existing transaction (for any employee).
	ErrDuplicateSalaryLink = errors.New("salary link already referenced")

	// ErrLockTimeout is returned when the sync lock could not be acquired
	// within the bounded wait. The sync attempt is abandoned, not fatal.
	ErrLockTimeout = errors.New("ledger sync lock acquisition timed out")
)

// ValidationError aggregates every input violation found.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid loan transaction (%d violations): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}
