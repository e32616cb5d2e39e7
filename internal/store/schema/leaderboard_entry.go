package schema

import (
	"time"

	"github.com/quizmint/qm-engine/internal/domain"
)

// LeaderboardEntry represents the leaderboard_entries table - one row per
// (season, identity), monotonically updated as sessions complete and mints
// confirm; fields are never decremented.
type LeaderboardEntry struct {
	// SeasonID scopes the points bucket
	SeasonID string `gorm:"column:season_id;not null;type:text;primaryKey;uniqueIndex:idx_lb_season_identity,priority:1"`
	// IdentityKey is the ranked identity (final, arbitrary tie-break)
	IdentityKey string `gorm:"column:identity_key;not null;type:text;primaryKey;uniqueIndex:idx_lb_season_identity,priority:2"`
	// IdentityClass is the identity's class at last update
	IdentityClass domain.IdentityClass `gorm:"column:identity_class;not null;type:text"`
	// Points accumulates per-answer value plus perfect bonuses
	Points int64 `gorm:"column:points;not null;default:0"`
	// MintedCount counts items minted this season
	MintedCount int64 `gorm:"column:minted_count;not null;default:0"`
	// PerfectCount counts perfect-score sessions
	PerfectCount int64 `gorm:"column:perfect_count;not null;default:0"`
	// AvgResponseMS is a running mean over sessions used
	AvgResponseMS int64 `gorm:"column:avg_response_ms;not null;default:0"`
	// SessionsUsed counts completed sessions feeding the entry
	SessionsUsed int64 `gorm:"column:sessions_used;not null;default:0"`
	// FirstAchievementAt is set once, at the first qualifying achievement
	FirstAchievementAt *time.Time `gorm:"column:first_achievement_at;type:timestamptz"`
	// UpdatedAt tracks the latest upsert
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the LeaderboardEntry model
func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
