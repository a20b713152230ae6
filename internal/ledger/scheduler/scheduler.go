package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Reconciler is the part of the ledger the scheduler drives.
type Reconciler interface {
	ReconcileCounts(ctx context.Context) (int, error)
}

// CountReconcileScheduler periodically repairs recommendation counters that
// drifted from their live Recommendations.
type CountReconcileScheduler struct {
	ledger   Reconciler
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewCountReconcileScheduler creates a new scheduler. An interval <= 0
// leaves it disabled.
func NewCountReconcileScheduler(ledger Reconciler, interval time.Duration) *CountReconcileScheduler {
	return &CountReconcileScheduler{
		ledger:   ledger,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the scheduler loop. It reports whether the loop was started.
func (s *CountReconcileScheduler) Start() bool {
	if s.interval <= 0 {
		slog.Info("count reconciler disabled")
		close(s.done)
		return false
	}

	slog.Info("starting count reconciler", "interval", s.interval)

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.reconcile()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.reconcile()
			case <-s.stopChan:
				slog.Info("count reconciler stopped")
				return
			}
		}
	}()
	return true
}

// Stop ends the loop and waits for an in-flight pass to finish. It must
// follow Start.
func (s *CountReconcileScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

func (s *CountReconcileScheduler) reconcile() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	started := time.Now()
	corrected, err := s.ledger.ReconcileCounts(ctx)
	if err != nil {
		slog.Error("count reconciliation failed", "corrected", corrected, "error", err)
		return
	}
	if corrected > 0 {
		slog.Warn("recommendation counts repaired", "corrected", corrected, "took", time.Since(started))
		return
	}
	slog.Debug("recommendation counts consistent", "took", time.Since(started))
}
