// Package leaderboard maintains per-season rankings from session
// completion events.
package leaderboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/messaging"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Config holds the scoring parameters
type Config struct {
	// PointsPerCorrect is awarded per correct answer
	PointsPerCorrect int64
	// PerfectBonus is awarded on top for a perfect session
	PerfectBonus int64
	// PageSize is the default leaderboard page size
	PageSize int
}

// Scorer folds session completions into season leaderboard entries. It is
// the sole consumer of the completion stream; redeliveries are tolerated
// because the scored-session marker in the event id dedupe and the session
// row's terminal immutability make double-apply detectable.
type Scorer struct {
	store store.Store
	cfg   Config
}

// NewScorer creates a leaderboard scorer
func NewScorer(st store.Store, cfg Config) *Scorer {
	return &Scorer{store: st, cfg: cfg}
}

// Points computes the score contribution of one session
func (s *Scorer) Points(event *domain.SessionCompleted) int64 {
	points := int64(event.Score) * s.cfg.PointsPerCorrect
	if event.Perfect {
		points += s.cfg.PerfectBonus
	}
	return points
}

// HandleCompleted is the messaging.CompletedHandler wired into the
// subscriber. Forfeited sessions count as sessions used but score zero
// per-answer points.
func (s *Scorer) HandleCompleted(ctx context.Context, event *domain.SessionCompleted) error {
	if !event.Status.Terminal() {
		logger.WarnCtx(ctx, "ignoring non-terminal session event",
			zap.String("session_id", event.SessionID),
			zap.String("status", string(event.Status)))
		return nil
	}

	update := store.LeaderboardUpdate{
		SeasonID:      event.SeasonID,
		IdentityKey:   event.Identity.Key,
		IdentityClass: event.Identity.Class,
		Points:        s.Points(event),
		Perfect:       event.Perfect,
		AvgResponseMS: event.AvgResponseMS,
		CompletedAt:   event.CompletedAt,
	}
	if err := s.store.ApplySessionScore(ctx, update); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "session scored",
		zap.String("session_id", event.SessionID),
		zap.String("season_id", event.SeasonID),
		zap.Int64("points", update.Points))
	return nil
}

// Subscribe runs the scorer against a subscriber until ctx is canceled
func (s *Scorer) Subscribe(ctx context.Context, sub messaging.Subscriber) error {
	return sub.Subscribe(ctx, s.HandleCompleted)
}

// Page is one leaderboard page with ranks resolved
type Page struct {
	SeasonID string                    `json:"season_id"`
	Total    int64                     `json:"total"`
	Offset   int                       `json:"offset"`
	Entries  []schema.LeaderboardEntry `json:"entries"`
}

// Query returns a ranked page of a season's leaderboard
func (s *Scorer) Query(ctx context.Context, seasonID string, limit, offset int) (*Page, error) {
	if limit <= 0 || limit > 100 {
		limit = s.cfg.PageSize
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.store.LeaderboardPage(ctx, seasonID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Page{
		SeasonID: seasonID,
		Total:    total,
		Offset:   offset,
		Entries:  entries,
	}, nil
}
