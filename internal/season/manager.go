// Package season manages bounded competitive periods. Each season has its
// own points bucket; rollover archives the ended season and opens the next
// with no carryover.
package season

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
	"gorm.io/datatypes"
)

// Config holds the season rollover parameters
type Config struct {
	// Length is the duration of an auto-opened season
	Length time.Duration
	// GracePeriod is how long seasonal forging stays open after end
	GracePeriod time.Duration
	// Categories are the categories a new season opens with
	Categories []domain.Category
	// AutoOpen controls whether the rollover sweeper opens a next season
	AutoOpen bool
}

// Manager reads and rolls seasons
type Manager struct {
	store store.Store
	clock adapter.Clock
	cfg   Config
}

// NewManager creates a season manager
func NewManager(st store.Store, clock adapter.Clock, cfg Config) *Manager {
	return &Manager{store: st, clock: clock, cfg: cfg}
}

// Current returns the season open now, nil when the engine is between
// seasons.
func (m *Manager) Current(ctx context.Context) (*schema.Season, error) {
	return m.store.GetCurrentSeason(ctx, m.clock.Now())
}

// Get returns a season by id
func (m *Manager) Get(ctx context.Context, id string) (*schema.Season, error) {
	return m.store.GetSeason(ctx, id)
}

// Open creates a season starting at startsAt with the configured length
// and categories.
func (m *Manager) Open(ctx context.Context, name string, startsAt time.Time) (*schema.Season, error) {
	s := &schema.Season{
		ID:          domain.NewID(),
		Name:        name,
		Categories:  datatypes.NewJSONType(m.cfg.Categories),
		StartsAt:    startsAt,
		EndsAt:      startsAt.Add(m.cfg.Length),
		GracePeriod: m.cfg.GracePeriod,
		CreatedAt:   m.clock.Now(),
	}
	if err := m.store.CreateSeason(ctx, s); err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "season opened",
		zap.String("season_id", s.ID),
		zap.Time("starts_at", s.StartsAt),
		zap.Time("ends_at", s.EndsAt))
	return s, nil
}

// Roll archives seasons whose grace window has closed and, when
// configured, opens the next season so play continues seamlessly. Returns
// how many seasons were archived.
func (m *Manager) Roll(ctx context.Context) (int, error) {
	now := m.clock.Now()
	due, err := m.store.ListSeasonsDueForArchive(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, s := range due {
		if err := m.store.ArchiveSeason(ctx, s.ID); err != nil {
			return 0, err
		}
		logger.InfoCtx(ctx, "season archived", zap.String("season_id", s.ID))
	}

	if !m.cfg.AutoOpen {
		return len(due), nil
	}

	current, err := m.store.GetCurrentSeason(ctx, now)
	if err != nil {
		return len(due), err
	}
	if current == nil {
		latest, err := m.store.GetLatestSeason(ctx)
		if err != nil {
			return len(due), err
		}
		start := now
		if latest != nil && latest.EndsAt.After(start) {
			start = latest.EndsAt
		}
		if _, err := m.Open(ctx, start.UTC().Format("Season 2006-01"), start); err != nil {
			return len(due), err
		}
	}

	return len(due), nil
}
