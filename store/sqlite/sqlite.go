/*
Package sqlite implements the storage collaborator for the engine: raw
attendance punches, weekly payslip records, and the loan ledger.

PURPOSE:
  The core works with typed row structs; the column-name-to-field mapping
  lives entirely in this package. Decimal values are stored as their exact
  string form, timestamps as RFC3339, so nothing round-trips through floats.

TABLES:
  punches:           one row per raw device event (timestamp kept textual,
                     parsing and validation happen in the attendance core)
  payslips:          one row per employee per week, including loan-activity
                     fields and the ledger sync-completion flag
  loan_transactions: one row per ledger transaction; never deleted

CONCURRENCY:
  sync.RWMutex around the connection, WAL journal mode. Balance write-back
  runs in a single SQL transaction to keep the window of partial
  consistency minimal; if a crash still lands inside it, replaying the
  recompute is safe and idempotent.

USAGE:
  st, err := sqlite.New("./data/timepay.db")   // ":memory:" for tests
  ...
  defer st.Close()

SEE ALSO:
  - ledger: consumes the loan-transaction side as ledger.Store
  - api: consumes payslip and punch rows
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timepay-engine/attendance"
	"github.com/warp/timepay-engine/ledger"
)

// Store implements punch, payslip, and loan-transaction persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	-- Raw attendance punches, one row per device event.
	CREATE TABLE IF NOT EXISTS punches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		week_ending TEXT NOT NULL,
		punched_at TEXT NOT NULL,
		device TEXT NOT NULL,
		clock_ref TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_punches_employee_week
		ON punches(employee_id, week_ending);

	-- Weekly payslip records, one row per employee per week.
	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		week_ending TEXT NOT NULL,
		hours INTEGER NOT NULL DEFAULT 0,
		minutes INTEGER NOT NULL DEFAULT 0,
		overtime_hours INTEGER NOT NULL DEFAULT 0,
		overtime_minutes INTEGER NOT NULL DEFAULT 0,
		hourly_rate TEXT NOT NULL DEFAULT '0',
		leave_pay TEXT NOT NULL DEFAULT '0',
		bonus_pay TEXT NOT NULL DEFAULT '0',
		other_income TEXT NOT NULL DEFAULT '0',
		other_deductions TEXT NOT NULL DEFAULT '0',
		employment_status TEXT NOT NULL DEFAULT 'Temporary',
		loan_deduction TEXT NOT NULL DEFAULT '0',
		new_loan TEXT NOT NULL DEFAULT '0',
		disbursement_type TEXT NOT NULL DEFAULT '',
		ledger_synced INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, week_ending)
	);

	CREATE INDEX IF NOT EXISTS idx_payslips_unsynced
		ON payslips(ledger_synced) WHERE ledger_synced = 0;

	-- Loan ledger rows. Field-updatable, never deleted.
	CREATE TABLE IF NOT EXISTS loan_transactions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		transaction_date TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		amount TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		mode TEXT NOT NULL,
		salary_link TEXT,
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loan_tx_employee
		ON loan_transactions(employee_id, transaction_date, timestamp);

	-- At most one ledger row per payslip.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_loan_tx_salary_link
		ON loan_transactions(salary_link) WHERE salary_link IS NOT NULL AND salary_link != '';
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCHES
// =============================================================================

// SavePunches appends raw events for an employee week.
func (s *Store) SavePunches(ctx context.Context, employeeID string, weekEnding time.Time, events []attendance.RawEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ev := range events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO punches (employee_id, week_ending, punched_at, device, clock_ref, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			employeeID, weekEnding.Format("2006-01-02"), ev.Timestamp, ev.Device, ev.ClockRef, now)
		if err != nil {
			return fmt.Errorf("failed to insert punch: %w", err)
		}
	}
	return tx.Commit()
}

// LoadPunches returns the raw events of one employee week, insertion order.
func (s *Store) LoadPunches(ctx context.Context, employeeID string, weekEnding time.Time) ([]attendance.RawEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT punched_at, device, COALESCE(clock_ref, '')
		FROM punches
		WHERE employee_id = ? AND week_ending = ?
		ORDER BY id ASC`,
		employeeID, weekEnding.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []attendance.RawEvent
	for rows.Next() {
		var ev attendance.RawEvent
		if err := rows.Scan(&ev.Timestamp, &ev.Device, &ev.ClockRef); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// PayslipRow is one weekly payslip record. The row ID doubles as the
// salary link referenced from the loan ledger.
type PayslipRow struct {
	ID         string
	EmployeeID string
	WeekEnding time.Time

	Hours           int
	Minutes         int
	OvertimeHours   int
	OvertimeMinutes int

	HourlyRate       decimal.Decimal
	LeavePay         decimal.Decimal
	BonusPay         decimal.Decimal
	OtherIncome      decimal.Decimal
	OtherDeductions  decimal.Decimal
	EmploymentStatus string

	LoanDeduction    decimal.Decimal
	NewLoan          decimal.Decimal
	DisbursementType string

	LedgerSynced bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const payslipColumns = `id, employee_id, week_ending, hours, minutes, overtime_hours, overtime_minutes,
	hourly_rate, leave_pay, bonus_pay, other_income, other_deductions, employment_status,
	loan_deduction, new_loan, disbursement_type, ledger_synced, created_at, updated_at`

// SavePayslip inserts or replaces a payslip row. Any change resets the
// sync-completion flag so the sync scheduler picks the row up again.
func (s *Store) SavePayslip(ctx context.Context, row PayslipRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	created := row.CreatedAt
	if created.IsZero() {
		created = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payslips (`+payslipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hours=excluded.hours, minutes=excluded.minutes,
			overtime_hours=excluded.overtime_hours, overtime_minutes=excluded.overtime_minutes,
			hourly_rate=excluded.hourly_rate, leave_pay=excluded.leave_pay,
			bonus_pay=excluded.bonus_pay, other_income=excluded.other_income,
			other_deductions=excluded.other_deductions, employment_status=excluded.employment_status,
			loan_deduction=excluded.loan_deduction, new_loan=excluded.new_loan,
			disbursement_type=excluded.disbursement_type,
			ledger_synced=0, updated_at=excluded.updated_at`,
		row.ID, row.EmployeeID, row.WeekEnding.Format("2006-01-02"),
		row.Hours, row.Minutes, row.OvertimeHours, row.OvertimeMinutes,
		row.HourlyRate.String(), row.LeavePay.String(), row.BonusPay.String(),
		row.OtherIncome.String(), row.OtherDeductions.String(), row.EmploymentStatus,
		row.LoanDeduction.String(), row.NewLoan.String(), row.DisbursementType,
		created.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save payslip: %w", err)
	}
	return nil
}

// GetPayslip returns one payslip row by ID, or nil.
func (s *Store) GetPayslip(ctx context.Context, id string) (*PayslipRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+payslipColumns+` FROM payslips WHERE id = ?`, id)
	slip, err := scanPayslip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return slip, nil
}

// ListUnsyncedPayslips returns every payslip whose loan activity has not
// been folded into the ledger yet. This pull-based query replaces a
// recent-change time window: the flag, not timing, decides what needs work.
func (s *Store) ListUnsyncedPayslips(ctx context.Context) ([]PayslipRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+payslipColumns+` FROM payslips WHERE ledger_synced = 0 ORDER BY week_ending ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayslipRow
	for rows.Next() {
		slip, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *slip)
	}
	return out, rows.Err()
}

// MarkPayslipSynced sets the sync-completion flag.
func (s *Store) MarkPayslipSynced(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE payslips SET ledger_synced = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayslip(r rowScanner) (*PayslipRow, error) {
	var slip PayslipRow
	var weekEnding, rate, leave, bonus, other, deductions, loanDed, newLoan string
	var synced int
	var createdAt, updatedAt string

	err := r.Scan(&slip.ID, &slip.EmployeeID, &weekEnding,
		&slip.Hours, &slip.Minutes, &slip.OvertimeHours, &slip.OvertimeMinutes,
		&rate, &leave, &bonus, &other, &deductions, &slip.EmploymentStatus,
		&loanDed, &newLoan, &slip.DisbursementType, &synced, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	slip.WeekEnding, _ = time.Parse("2006-01-02", weekEnding)
	slip.HourlyRate = mustDecimal(rate)
	slip.LeavePay = mustDecimal(leave)
	slip.BonusPay = mustDecimal(bonus)
	slip.OtherIncome = mustDecimal(other)
	slip.OtherDeductions = mustDecimal(deductions)
	slip.LoanDeduction = mustDecimal(loanDed)
	slip.NewLoan = mustDecimal(newLoan)
	slip.LedgerSynced = synced != 0
	slip.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	slip.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &slip, nil
}

// =============================================================================
// LOAN TRANSACTIONS (ledger.Store)
// =============================================================================

const loanColumns = `id, employee_id, transaction_date, timestamp, amount, tx_type, mode,
	COALESCE(salary_link, ''), balance_before, balance_after, COALESCE(notes, '')`

// AppendTransaction inserts a new loan ledger row.
func (s *Store) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loan_transactions
		(id, employee_id, transaction_date, timestamp, amount, tx_type, mode,
		 salary_link, balance_before, balance_after, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.EmployeeID,
		tx.TransactionDate.Format("2006-01-02"),
		tx.Timestamp.UTC().Format(time.RFC3339Nano),
		tx.Amount.String(), string(tx.Type), string(tx.Mode),
		tx.SalaryLink, tx.BalanceBefore.String(), tx.BalanceAfter.String(), tx.Notes,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateSalaryLink, tx.SalaryLink)
		}
		return fmt.Errorf("failed to append loan transaction: %w", err)
	}
	return nil
}

// UpdateTransaction overwrites the mutable fields of a row.
// transaction_date is deliberately absent from the SET list.
func (s *Store) UpdateTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE loan_transactions
		SET timestamp = ?, amount = ?, tx_type = ?, mode = ?,
		    balance_before = ?, balance_after = ?, notes = ?
		WHERE id = ?`,
		tx.Timestamp.UTC().Format(time.RFC3339Nano),
		tx.Amount.String(), string(tx.Type), string(tx.Mode),
		tx.BalanceBefore.String(), tx.BalanceAfter.String(), tx.Notes,
		tx.ID)
	if err != nil {
		return fmt.Errorf("failed to update loan transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

// GetTransaction returns one row by ID.
func (s *Store) GetTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loan_transactions WHERE id = ?`, id)
	tx, err := scanLoanTransaction(row)
	if err == sql.ErrNoRows {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}
	return tx, err
}

// LoadTransactions returns all rows for an employee.
func (s *Store) LoadTransactions(ctx context.Context, employeeID string) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+loanColumns+` FROM loan_transactions
		WHERE employee_id = ?
		ORDER BY transaction_date ASC, timestamp ASC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		tx, err := scanLoanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// FindBySalaryLink returns the row referencing the payslip, or nil.
func (s *Store) FindBySalaryLink(ctx context.Context, salaryLink string) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+loanColumns+` FROM loan_transactions WHERE salary_link = ?`, salaryLink)
	tx, err := scanLoanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// SaveBalances bulk-writes recomputed balances in one SQL transaction.
func (s *Store) SaveBalances(ctx context.Context, txs []ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	for _, tx := range txs {
		res, err := sqlTx.ExecContext(ctx, `
			UPDATE loan_transactions SET balance_before = ?, balance_after = ? WHERE id = ?`,
			tx.BalanceBefore.String(), tx.BalanceAfter.String(), tx.ID)
		if err != nil {
			return fmt.Errorf("failed to write balance: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ledger.ErrTransactionNotFound
		}
	}
	return sqlTx.Commit()
}

func scanLoanTransaction(r rowScanner) (ledger.Transaction, error) {
	var tx ledger.Transaction
	var date, ts, amount, txType, mode, before, after string

	err := r.Scan(&tx.ID, &tx.EmployeeID, &date, &ts, &amount, &txType, &mode,
		&tx.SalaryLink, &before, &after, &tx.Notes)
	if err != nil {
		return ledger.Transaction{}, err
	}

	tx.TransactionDate, _ = time.Parse("2006-01-02", date)
	tx.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	tx.Amount = mustDecimal(amount)
	tx.Type = ledger.TransactionType(txType)
	tx.Mode = ledger.DisbursementMode(mode)
	tx.BalanceBefore = mustDecimal(before)
	tx.BalanceAfter = mustDecimal(after)
	return tx, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Reset clears all tables. Demo/dev only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"punches", "payslips", "loan_transactions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
