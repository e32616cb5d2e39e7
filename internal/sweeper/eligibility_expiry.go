package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/eligibility"
	"github.com/quizmint/qm-engine/internal/logger"
)

// EligibilityExpiryConfig holds configuration for the expiry sweeper
type EligibilityExpiryConfig struct {
	BatchSize      int           // Eligibilities to expire per cycle
	WorkerPoolSize int           // Concurrent expiry workers
	Interval       time.Duration // Sleep between cycles with no due work
}

// eligibilityExpirySweeper drives overdue eligibilities from active to
// expired. Each transition is an individual status CAS, so a sweep racing
// an in-flight mint on the same right loses cleanly.
type eligibilityExpirySweeper struct {
	config    *EligibilityExpiryConfig
	elig      *eligibility.Manager
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewEligibilityExpirySweeper creates the expiry sweeper
func NewEligibilityExpirySweeper(config *EligibilityExpiryConfig, elig *eligibility.Manager, clock adapter.Clock) Sweeper {
	return &eligibilityExpirySweeper{
		config:    config,
		elig:      elig,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *eligibilityExpirySweeper) Name() string {
	return "eligibility-expiry-sweeper"
}

// Start begins the sweeper's main loop
func (s *eligibilityExpirySweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting eligibility expiry sweeper",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("interval", s.config.Interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopChan:
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
				if !sleep(ctx, s.stopChan, s.config.Interval) {
					return nil
				}
			}
		}
	}
}

// Stop gracefully stops the sweeper
func (s *eligibilityExpirySweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.stopChan)
	select {
	case <-s.stoppedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runSweepCycle expires one batch of due eligibilities
func (s *eligibilityExpirySweeper) runSweepCycle(ctx context.Context) error {
	due, err := s.elig.ListDue(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due eligibilities: %w", err)
	}
	if len(due) == 0 {
		if !sleep(ctx, s.stopChan, s.config.Interval) {
			return context.Canceled
		}
		return nil
	}

	var expired, lost atomic.Int32

	pool := pond.NewPool(s.config.WorkerPoolSize, pond.WithContext(ctx))
	for _, e := range due {
		pool.Submit(func() {
			ok, err := s.elig.Expire(ctx, e.ID)
			if err != nil {
				logger.ErrorCtx(ctx, err, zap.String("eligibility_id", e.ID))
				return
			}
			if ok {
				expired.Add(1)
			} else {
				// A mint consumed the right between listing and here.
				lost.Add(1)
			}
		})
	}
	pool.StopAndWait()

	logger.InfoCtx(ctx, "eligibility expiry cycle complete",
		zap.Int("due", len(due)),
		zap.Int32("expired", expired.Load()),
		zap.Int32("consumed_first", lost.Load()))
	return nil
}
