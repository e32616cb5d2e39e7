package schema

import (
	"time"

	"github.com/quizmint/qm-engine/internal/domain"
)

// Eligibility represents the eligibilities table - a time-limited right to
// mint one item in one category. A partial unique index enforces the hard
// cap of one active eligibility per (identity, category); status changes go
// through a single compare-and-set UPDATE so the mint workflow and the
// expiry sweep can never both win.
type Eligibility struct {
	// ID is the eligibility ULID (also the deterministic selection seed)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// IdentityKey is the current owner (rewritten by guest transfer)
	IdentityKey string `gorm:"column:identity_key;not null;type:text;uniqueIndex:idx_eligibilities_active_cap,priority:1,where:status = 'active'"`
	// IdentityClass is the owner's class at grant time
	IdentityClass domain.IdentityClass `gorm:"column:identity_class;not null;type:text"`
	// Category is the catalog bucket the right applies to
	Category domain.Category `gorm:"column:category;not null;type:text;uniqueIndex:idx_eligibilities_active_cap,priority:2,where:status = 'active'"`
	// SeasonID is the season active at grant time
	SeasonID string `gorm:"column:season_id;not null;type:text"`
	// Status transitions: active -> used (mint commit) or active -> expired (sweep)
	Status domain.EligibilityStatus `gorm:"column:status;not null;type:text;index:idx_eligibilities_status_expiry,priority:1"`
	// SessionID is the perfect session that earned the right
	SessionID string `gorm:"column:session_id;not null;type:text"`
	// ExpiresAt is fixed at grant from the caller-class window then in
	// effect; later config changes never touch it
	ExpiresAt time.Time `gorm:"column:expires_at;not null;type:timestamptz;index:idx_eligibilities_status_expiry,priority:2"`
	// CreatedAt is the grant time
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt tracks the status transition time
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Eligibility model
func (Eligibility) TableName() string {
	return "eligibilities"
}
