package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/domain"
)

// MintOperation represents the mint_operations table - the persisted state
// machine for a single mint workflow instance. The row is created pending
// before any external call and updated at every transition, so a restart
// mid-workflow reports accurately from durable state.
type MintOperation struct {
	// ID is the operation ULID (also the Temporal workflow id suffix)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// EligibilityID is the right being exercised
	EligibilityID string `gorm:"column:eligibility_id;not null;type:text;index"`
	// IdentityKey is the minting identity
	IdentityKey string `gorm:"column:identity_key;not null;type:text;index"`
	// Category is the catalog bucket
	Category domain.Category `gorm:"column:category;not null;type:text"`
	// CatalogItemID is set once selection has run
	CatalogItemID string `gorm:"column:catalog_item_id;type:text"`
	// Status advances pending -> mint_submitted -> confirmed | failed
	Status domain.OperationStatus `gorm:"column:status;not null;type:text;index"`
	// MintTxRef is the gateway transaction reference once submitted
	MintTxRef string `gorm:"column:mint_tx_ref;type:text"`
	// OwnedItemID is the resulting asset row on success
	OwnedItemID string `gorm:"column:owned_item_id;type:text"`
	// FailureKind qualifies terminal failures
	FailureKind domain.FailureKind `gorm:"column:failure_kind;type:text"`
	// LastError is the triggering error of a terminal failure
	LastError string `gorm:"column:last_error;type:text"`
	// CreatedAt is when the operation was opened
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt tracks the latest transition
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the MintOperation model
func (MintOperation) TableName() string {
	return "mint_operations"
}

// ForgeOperation represents the forge_operations table - a burn-then-mint
// attempt. A burn-committed failure is a first-class loss state, distinct
// in FailureKind from preflight rejections, because burns are not
// reversible externally.
type ForgeOperation struct {
	// ID is the operation ULID
	ID string `gorm:"column:id;primaryKey;type:text"`
	// IdentityKey is the forging identity
	IdentityKey string `gorm:"column:identity_key;not null;type:text;index"`
	// OutputTier is the tier being forged
	OutputTier domain.Tier `gorm:"column:output_tier;not null;type:text"`
	// OutputCategory is set for ultimate forges
	OutputCategory domain.Category `gorm:"column:output_category;type:text"`
	// SeasonID is set for seasonal forges
	SeasonID string `gorm:"column:season_id;type:text"`
	// InputRefs are the token refs of the inputs validated at start
	InputRefs datatypes.JSONType[[]string] `gorm:"column:input_refs;type:jsonb;not null"`
	// Status advances pending -> burn_submitted -> burn_confirmed ->
	// mint_submitted -> confirmed | failed
	Status domain.OperationStatus `gorm:"column:status;not null;type:text;index"`
	// BurnTxRef is the burn transaction reference once submitted
	BurnTxRef string `gorm:"column:burn_tx_ref;type:text"`
	// MintTxRef is the output mint transaction reference once submitted
	MintTxRef string `gorm:"column:mint_tx_ref;type:text"`
	// OutputItemID is the resulting asset row on success
	OutputItemID string `gorm:"column:output_item_id;type:text"`
	// FailureKind qualifies terminal failures
	FailureKind domain.FailureKind `gorm:"column:failure_kind;type:text"`
	// LastError is the triggering error of a terminal failure
	LastError string `gorm:"column:last_error;type:text"`
	// CreatedAt is when the operation was opened
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt tracks the latest transition
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ForgeOperation model
func (ForgeOperation) TableName() string {
	return "forge_operations"
}
