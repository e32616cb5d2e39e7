package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/season"
)

// SeasonRollConfig holds configuration for the season rollover sweeper
type SeasonRollConfig struct {
	Interval time.Duration // Time between rollover checks
}

// seasonRollSweeper archives seasons whose grace window closed and opens
// the next one when auto-open is configured.
type seasonRollSweeper struct {
	config    *SeasonRollConfig
	seasons   *season.Manager
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewSeasonRollSweeper creates the season rollover sweeper
func NewSeasonRollSweeper(config *SeasonRollConfig, seasons *season.Manager) Sweeper {
	return &seasonRollSweeper{
		config:    config,
		seasons:   seasons,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *seasonRollSweeper) Name() string {
	return "season-roll-sweeper"
}

// Start begins the sweeper's main loop
func (s *seasonRollSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting season roll sweeper",
		zap.Duration("interval", s.config.Interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopChan:
			return nil
		default:
			archived, err := s.seasons.Roll(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
			if archived > 0 {
				logger.InfoCtx(ctx, "season roll cycle complete", zap.Int("archived", archived))
			}
			if !sleep(ctx, s.stopChan, s.config.Interval) {
				return nil
			}
		}
	}
}

// Stop gracefully stops the sweeper
func (s *seasonRollSweeper) Stop(ctx context.Context) error {
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
