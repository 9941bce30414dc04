/*
handlers.go - HTTP handlers for the reconciliation engine

PURPOSE:
  Thin adapters between HTTP and the core packages. Handlers merge and
  validate rule documents, translate records to DTOs, and map error kinds
  to status codes:

    validation errors  -> 400 (aggregate message, every violation listed)
    missing resources  -> 404
    duplicate links    -> 409
    lock timeout       -> 503 (sync abandoned, retry later)
    everything else    -> 500

SEE ALSO:
  - server.go: route wiring
  - scheduler.go: background payslip sync using the same sync path
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/timepay-engine/attendance"
	"github.com/warp/timepay-engine/ledger"
	"github.com/warp/timepay-engine/payroll"
	"github.com/warp/timepay-engine/rules"
	"github.com/warp/timepay-engine/store/sqlite"
)

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Ledger *ledger.Ledger
	Log    *zap.Logger

	// Scheduler is optional; when present the notify endpoint wakes it.
	Scheduler *SyncScheduler
}

// NewHandler wires a handler over the store and ledger.
func NewHandler(store *sqlite.Store, led *ledger.Ledger, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Store: store, Ledger: led, Log: log}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// ProcessClockData runs the weekly reconciliation over submitted punches.
func (h *Handler) ProcessClockData(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	set, err := resolveRules(req.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rules", err)
		return
	}

	result := attendance.ProcessClockData(req.Punches, set)
	writeJSON(w, http.StatusOK, toWeekResultDTO(result))
}

// ScanStoredWeek reprocesses the punches stored for one employee week and
// writes the resulting hours back onto the payslip row.
func (h *Handler) ScanStoredWeek(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	weekEnding, err := time.Parse("2006-01-02", r.URL.Query().Get("week_ending"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "week_ending must be YYYY-MM-DD", err)
		return
	}

	events, err := h.Store.LoadPunches(r.Context(), employeeID, weekEnding)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}

	result := attendance.ProcessClockData(events, rules.DefaultSet())

	slip, err := h.Store.GetPayslip(r.Context(), payslipID(employeeID, weekEnding))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payslip", err)
		return
	}
	if slip == nil {
		slip = &sqlite.PayslipRow{
			ID:               payslipID(employeeID, weekEnding),
			EmployeeID:       employeeID,
			WeekEnding:       weekEnding,
			EmploymentStatus: string(payroll.StatusTemporary),
		}
	}
	slip.Hours = result.Hours
	slip.Minutes = result.Minutes
	if err := h.Store.SavePayslip(r.Context(), *slip); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payslip", err)
		return
	}

	writeJSON(w, http.StatusOK, toWeekResultDTO(result))
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// CalculatePayslip runs the pure monetary calculation.
func (h *Handler) CalculatePayslip(w http.ResponseWriter, r *http.Request) {
	var input payroll.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	writeJSON(w, http.StatusOK, payroll.Calculate(input))
}

// SavePayslip stores a weekly payslip row; the sync scheduler folds its
// loan activity into the ledger afterwards.
func (h *Handler) SavePayslip(w http.ResponseWriter, r *http.Request) {
	var req SavePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	weekEnding, err := time.Parse("2006-01-02", req.WeekEnding)
	if err != nil {
		writeError(w, http.StatusBadRequest, "week_ending must be YYYY-MM-DD", err)
		return
	}

	id := req.ID
	if id == "" {
		id = payslipID(req.EmployeeID, weekEnding)
	}
	row := sqlite.PayslipRow{
		ID:               id,
		EmployeeID:       req.EmployeeID,
		WeekEnding:       weekEnding,
		Hours:            req.Hours,
		Minutes:          req.Minutes,
		OvertimeHours:    req.OvertimeHours,
		OvertimeMinutes:  req.OvertimeMinutes,
		HourlyRate:       req.HourlyRate,
		LeavePay:         req.LeavePay,
		BonusPay:         req.BonusPay,
		OtherIncome:      req.OtherIncome,
		OtherDeductions:  req.OtherDeductions,
		EmploymentStatus: req.EmploymentStatus,
		LoanDeduction:    req.LoanDeduction,
		NewLoan:          req.NewLoan,
		DisbursementType: req.DisbursementType,
	}
	if err := h.Store.SavePayslip(r.Context(), row); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payslip", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// PayslipPDF renders the stored payslip as a PDF document.
func (h *Handler) PayslipPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	slip, err := h.Store.GetPayslip(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payslip", err)
		return
	}
	if slip == nil {
		writeError(w, http.StatusNotFound, "Payslip not found", nil)
		return
	}

	balance, err := h.Ledger.CurrentBalance(r.Context(), slip.EmployeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read loan balance", err)
		return
	}

	input := payslipInput(*slip)
	input.CurrentLoanBalance = balance
	result := payroll.Calculate(input)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", id))
	info := payroll.PayslipInfo{EmployeeName: slip.EmployeeID, EmployeeID: slip.EmployeeID, WeekEnding: slip.WeekEnding}
	if err := payroll.RenderPDF(w, info, input, result); err != nil {
		h.Log.Error("payslip pdf rendering failed", zap.String("id", id), zap.Error(err))
	}
}

// =============================================================================
// LEDGER
// =============================================================================

// RecordTransaction creates a manual loan transaction.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
		return
	}

	tx, err := h.Ledger.Record(r.Context(), ledger.RecordInput{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Amount:     req.Amount,
		Type:       ledger.TransactionType(req.Type),
		Mode:       ledger.DisbursementMode(req.Mode),
		Notes:      req.Notes,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// ListTransactions returns an employee's ledger in chronological order.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	txs, err := h.Ledger.Transactions(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBalance returns the employee's current loan balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	balance, err := h.Ledger.CurrentBalance(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{EmployeeID: employeeID, Balance: balance.StringFixed(2)})
}

// EditTransaction updates the mutable fields of a transaction.
// The transaction date is not accepted here: it is immutable.
func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	var req ledger.EditInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = chi.URLParam(r, "id")

	tx, err := h.Ledger.Edit(r.Context(), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// RecalculateBalances replays and rewrites the employee's balances.
func (h *Handler) RecalculateBalances(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if err := h.Ledger.Recalculate(r.Context(), employeeID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recalculated"})
}

// NotifyRowChanged is the external change-notification hook. It is a hint
// to re-scan, not a diff: it simply wakes the pull-based sync early.
func (h *Handler) NotifyRowChanged(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler != nil {
		go h.Scheduler.RunNow()
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

// =============================================================================
// HELPERS
// =============================================================================

func resolveRules(doc *rules.Document) (rules.Set, error) {
	if doc == nil {
		return rules.DefaultSet(), nil
	}
	return doc.MergeWithDefaults().Validate()
}

func payslipID(employeeID string, weekEnding time.Time) string {
	return fmt.Sprintf("%s-%s", employeeID, weekEnding.Format("2006-01-02"))
}

func payslipInput(slip sqlite.PayslipRow) payroll.Input {
	return payroll.Input{
		Hours:                slip.Hours,
		Minutes:              slip.Minutes,
		OvertimeHours:        slip.OvertimeHours,
		OvertimeMinutes:      slip.OvertimeMinutes,
		HourlyRate:           slip.HourlyRate,
		LeavePay:             slip.LeavePay,
		BonusPay:             slip.BonusPay,
		OtherIncome:          slip.OtherIncome,
		EmploymentStatus:     payroll.EmploymentStatus(slip.EmploymentStatus),
		OtherDeductions:      slip.OtherDeductions,
		LoanDeduction:        slip.LoanDeduction,
		NewLoan:              slip.NewLoan,
		LoanDisbursementMode: slip.DisbursementType,
	}
}

func writeLedgerError(w http.ResponseWriter, err error) {
	var vErr *ledger.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error(), nil)
	case errors.Is(err, ledger.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
	case errors.Is(err, ledger.ErrDuplicateSalaryLink):
		writeError(w, http.StatusConflict, "Salary link already referenced", nil)
	case errors.Is(err, ledger.ErrLockTimeout):
		writeError(w, http.StatusServiceUnavailable, "Ledger busy, try again", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Ledger operation failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
