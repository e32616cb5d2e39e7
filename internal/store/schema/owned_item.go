package schema

import (
	"time"

	"github.com/quizmint/qm-engine/internal/domain"
)

// OwnedItem represents the owned_items table - a confirmed, on-chain
// identified asset. Forge readiness is computed live from these rows, so
// transfers in or out change readiness immediately.
type OwnedItem struct {
	// ID is the owned item ULID
	ID string `gorm:"column:id;primaryKey;type:text"`
	// IdentityKey is the owning identity
	IdentityKey string `gorm:"column:identity_key;not null;type:text;index:idx_owned_identity_burned,priority:1"`
	// CatalogItemID references the design this asset was minted from
	CatalogItemID string `gorm:"column:catalog_item_id;not null;type:text"`
	// Category is denormalized from the catalog item for readiness queries
	Category domain.Category `gorm:"column:category;not null;type:text"`
	// Tier is the item's tier
	Tier domain.Tier `gorm:"column:tier;not null;type:text"`
	// Provenance records whether the item was minted or forged
	Provenance domain.Provenance `gorm:"column:provenance;not null;type:text"`
	// SeasonID is the season the item was created in
	SeasonID string `gorm:"column:season_id;not null;type:text"`
	// TokenRef is the on-chain asset reference, unique per asset
	TokenRef string `gorm:"column:token_ref;not null;uniqueIndex;type:text"`
	// Burned is set when the item is consumed as a forge input
	Burned bool `gorm:"column:burned;not null;default:false;index:idx_owned_identity_burned,priority:2"`
	// BurnedAt is set together with Burned
	BurnedAt *time.Time `gorm:"column:burned_at;type:timestamptz"`
	// CreatedAt is the confirmed-mint time
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the OwnedItem model
func (OwnedItem) TableName() string {
	return "owned_items"
}
