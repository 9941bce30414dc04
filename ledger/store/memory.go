// Package store provides an in-memory ledger.Store for tests and development.
package store

import (
	"context"
	"sync"

	"github.com/warp/timepay-engine/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	rows map[string]ledger.Transaction // by ID
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[string]ledger.Transaction)}
}

func (m *Memory) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tx.ID] = tx
	return nil
}

func (m *Memory) UpdateTransaction(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[tx.ID]
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	// TransactionDate stays as stored; it is immutable post-creation.
	tx.TransactionDate = stored.TransactionDate
	m.rows[tx.ID] = tx
	return nil
}

func (m *Memory) GetTransaction(_ context.Context, id string) (ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.rows[id]
	if !ok {
		return ledger.Transaction{}, ledger.ErrTransactionNotFound
	}
	return tx, nil
}

func (m *Memory) LoadTransactions(_ context.Context, employeeID string) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.Transaction
	for _, tx := range m.rows {
		if tx.EmployeeID == employeeID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *Memory) FindBySalaryLink(_ context.Context, salaryLink string) (*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tx := range m.rows {
		if tx.SalaryLink != "" && tx.SalaryLink == salaryLink {
			found := tx
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) SaveBalances(_ context.Context, txs []ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range txs {
		stored, ok := m.rows[tx.ID]
		if !ok {
			return ledger.ErrTransactionNotFound
		}
		stored.BalanceBefore = tx.BalanceBefore
		stored.BalanceAfter = tx.BalanceAfter
		m.rows[tx.ID] = stored
	}
	return nil
}
