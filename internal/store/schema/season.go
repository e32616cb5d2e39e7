package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/domain"
)

// Season represents the seasons table - a bounded competitive period with
// its own points bucket and a grace window for seasonal forging after end.
type Season struct {
	// ID is the season ULID
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Name is the display name
	Name string `gorm:"column:name;not null;type:text"`
	// Categories are the categories active this season
	Categories datatypes.JSONType[[]domain.Category] `gorm:"column:categories;type:jsonb;not null"`
	// StartsAt is the season opening time
	StartsAt time.Time `gorm:"column:starts_at;not null;type:timestamptz;index"`
	// EndsAt is the season closing time
	EndsAt time.Time `gorm:"column:ends_at;not null;type:timestamptz;index"`
	// GracePeriod is how long after EndsAt seasonal forging stays open
	GracePeriod time.Duration `gorm:"column:grace_period;not null"`
	// Archived is set by the rollover sweeper once the grace window closed
	Archived bool `gorm:"column:archived;not null;default:false"`
	// CreatedAt is when the season row was opened
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Season model
func (Season) TableName() string {
	return "seasons"
}

// ActiveAt reports whether the season is open at t
func (s *Season) ActiveAt(t time.Time) bool {
	return !t.Before(s.StartsAt) && t.Before(s.EndsAt)
}

// InGraceAt reports whether t falls in the post-end grace window
func (s *Season) InGraceAt(t time.Time) bool {
	return !t.Before(s.EndsAt) && t.Before(s.EndsAt.Add(s.GracePeriod))
}
