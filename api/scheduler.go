/*
scheduler.go - Background payslip-to-ledger sync

PURPOSE:
  Periodically folds unsynced payslip loan activity into the loan ledger.
  The work list is PULLED: every payslip row carries a sync-completion
  flag, and the scheduler asks for rows where it is unset. External change
  notifications only wake the same pull early; there is no recent-change
  time window to miss or double-process.

CYCLE:
  1. List unsynced payslips.
  2. For each, run Ledger.SyncFromPayslip (idempotent upsert keyed by the
     payslip's salary link, inside the bounded-wait ledger lock).
  3. On success (including net-zero no-ops), mark the payslip synced.
  4. On lock timeout, skip the row; it stays unsynced and is retried on
     the next cycle.

USAGE:
  s := NewSyncScheduler(store, ledger, log)
  s.Start()
  defer s.Stop()

SEE ALSO:
  - ledger/sync.go: the upsert itself
  - handlers.go: NotifyRowChanged wakes RunNow
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/timepay-engine/ledger"
	"github.com/warp/timepay-engine/store/sqlite"
)

// SyncScheduler drives the payslip-to-ledger sync loop.
type SyncScheduler struct {
	Store         *sqlite.Store
	Ledger        *ledger.Ledger
	Log           *zap.Logger
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSyncScheduler creates a scheduler with a 1-minute check interval.
func NewSyncScheduler(store *sqlite.Store, led *ledger.Ledger, log *zap.Logger) *SyncScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncScheduler{
		Store:         store,
		Ledger:        led,
		Log:           log,
		CheckInterval: time.Minute,
		stop:          make(chan struct{}),
	}
}

// Start begins the background loop.
func (s *SyncScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()
	s.Log.Info("sync scheduler started", zap.Duration("interval", s.CheckInterval))
}

// Stop halts the loop and waits for an in-flight cycle to finish.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.Log.Info("sync scheduler stopped")
	}
}

func (s *SyncScheduler) run() {
	defer s.wg.Done()

	// Catch up immediately on start.
	s.RunNow()

	for {
		select {
		case <-s.ticker.C:
			s.RunNow()
		case <-s.stop:
			return
		}
	}
}

// RunNow executes one sync cycle. Also called by the notification hint.
func (s *SyncScheduler) RunNow() {
	ctx := context.Background()

	slips, err := s.Store.ListUnsyncedPayslips(ctx)
	if err != nil {
		s.Log.Error("failed to list unsynced payslips", zap.Error(err))
		return
	}
	if len(slips) == 0 {
		return
	}

	var processed, skipped, failed int
	for _, slip := range slips {
		err := s.Ledger.SyncFromPayslip(ctx, ledger.PayslipEvent{
			EmployeeID:       slip.EmployeeID,
			SalaryLink:       slip.ID,
			WeekEnding:       slip.WeekEnding,
			LoanDeduction:    slip.LoanDeduction,
			NewLoan:          slip.NewLoan,
			DisbursementType: ledger.DisbursementMode(slip.DisbursementType),
		})
		switch {
		case errors.Is(err, ledger.ErrLockTimeout):
			// Abandoned for this cycle; the row stays unsynced.
			skipped++
			continue
		case err != nil:
			failed++
			s.Log.Error("payslip sync failed",
				zap.String("payslip_id", slip.ID), zap.Error(err))
			continue
		}

		if err := s.Store.MarkPayslipSynced(ctx, slip.ID); err != nil {
			failed++
			s.Log.Error("failed to mark payslip synced",
				zap.String("payslip_id", slip.ID), zap.Error(err))
			continue
		}
		processed++
	}

	s.Log.Info("sync cycle completed",
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
}
