package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/session"
)

// SessionAbandonConfig holds configuration for the abandon sweeper
type SessionAbandonConfig struct {
	BatchSize int           // Sessions to finalize per cycle
	Interval  time.Duration // Sleep between cycles
}

// sessionAbandonSweeper finalizes sessions that blew their hard deadline
// without completing, so abandoned sessions release their admission lock
// and still count against the daily budget.
type sessionAbandonSweeper struct {
	config    *SessionAbandonConfig
	engine    *session.Engine
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewSessionAbandonSweeper creates the abandon sweeper
func NewSessionAbandonSweeper(config *SessionAbandonConfig, engine *session.Engine, clock adapter.Clock) Sweeper {
	return &sessionAbandonSweeper{
		config:    config,
		engine:    engine,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *sessionAbandonSweeper) Name() string {
	return "session-abandon-sweeper"
}

// Start begins the sweeper's main loop
func (s *sessionAbandonSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting session abandon sweeper",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Duration("interval", s.config.Interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopChan:
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
			if !sleep(ctx, s.stopChan, s.config.Interval) {
				return nil
			}
		}
	}
}

// Stop gracefully stops the sweeper
func (s *sessionAbandonSweeper) Stop(ctx context.Context) error {
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

// runSweepCycle finalizes one batch of overdue sessions
func (s *sessionAbandonSweeper) runSweepCycle(ctx context.Context) error {
	due, err := s.engine.DueSessions(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due sessions: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	finalized := 0
	for _, id := range due {
		result, err := s.engine.Abandon(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				// Never answered; the deadline entry was the only trace.
				continue
			}
			logger.ErrorCtx(ctx, err, zap.String("session_id", id))
			continue
		}
		finalized++
		logger.InfoCtx(ctx, "abandoned session finalized",
			zap.String("session_id", id),
			zap.String("status", string(result.Status)))
	}

	logger.InfoCtx(ctx, "session abandon cycle complete",
		zap.Int("due", len(due)),
		zap.Int("finalized", finalized))
	return nil
}
