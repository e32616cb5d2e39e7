package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/domain"
)

// CatalogItem represents the catalog_items table - a mintable design.
// There is deliberately no reserved state: an item is unminted until the
// mint workflow's durable commit flips it, so stock-outs surface
// immediately and abandoned eligibilities never strand inventory.
type CatalogItem struct {
	// ID is the catalog item ULID
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Category is the catalog bucket
	Category domain.Category `gorm:"column:category;not null;type:text;index:idx_catalog_category_minted,priority:1"`
	// Tier is the tier this design mints as
	Tier domain.Tier `gorm:"column:tier;not null;type:text;default:'category'"`
	// Name is the display name of the design
	Name string `gorm:"column:name;not null;type:text"`
	// Metadata is the design metadata pinned before the first mint attempt
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	// ContentID is the content-addressed id returned by the pinning
	// service; set once, before the first mint attempt
	ContentID string `gorm:"column:content_id;type:text"`
	// Minted flips only inside the mint workflow's durable commit step
	Minted bool `gorm:"column:minted;not null;default:false;index:idx_catalog_category_minted,priority:2"`
	// MintedAt is set together with Minted
	MintedAt *time.Time `gorm:"column:minted_at;type:timestamptz"`
	// TokenRef is the on-chain reference once minted
	TokenRef string `gorm:"column:token_ref;type:text"`
	// CreatedAt is when the design entered the catalog
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CatalogItem model
func (CatalogItem) TableName() string {
	return "catalog_items"
}
