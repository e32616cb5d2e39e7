package store

import (
	"context"
	"time"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// LeaderboardUpdate carries one completed session's contribution to a
// season entry. All counters are applied monotonically.
type LeaderboardUpdate struct {
	SeasonID      string
	IdentityKey   string
	IdentityClass domain.IdentityClass
	Points        int64
	Perfect       bool
	AvgResponseMS int64
	CompletedAt   time.Time
}

// MintCommit is the input to the single durable-commit step of the mint
// workflow: everything in it succeeds or fails as one transaction.
type MintCommit struct {
	OperationID   string
	EligibilityID string
	CatalogItemID string
	OwnedItem     *schema.OwnedItem
}

// ForgeCommit is the durable-commit input for the forge workflow's output
// mint.
type ForgeCommit struct {
	OperationID   string
	CatalogItemID string
	OutputItem    *schema.OwnedItem
}

// Store defines the interface for durable database operations. The
// relational store is the single source of truth for terminal session
// results, eligibilities, owned items and workflow operations.
type Store interface {
	// UpsertSession inserts or refreshes a session row. First call is the
	// durability commit point for an in-flight session.
	UpsertSession(ctx context.Context, session *schema.Session) error
	// GetSession retrieves a session by id, nil when absent
	GetSession(ctx context.Context, id string) (*schema.Session, error)

	// CreateEligibility inserts a new eligibility; returns
	// domain.ErrAlreadyActive-semantics via created=false when the partial
	// unique cap rejects the insert
	CreateEligibility(ctx context.Context, e *schema.Eligibility) (created bool, err error)
	// GetEligibility retrieves an eligibility by id, nil when absent
	GetEligibility(ctx context.Context, id string) (*schema.Eligibility, error)
	// GetActiveEligibility retrieves the single active eligibility for
	// (identity, category), nil when absent
	GetActiveEligibility(ctx context.Context, identityKey string, category domain.Category) (*schema.Eligibility, error)
	// ListEligibilities pages an identity's eligibilities, newest first
	ListEligibilities(ctx context.Context, identityKey string, limit, offset int) ([]schema.Eligibility, error)
	// CASEligibilityStatus atomically transitions status from->to; the
	// returned bool is the single arbiter between used and expired
	CASEligibilityStatus(ctx context.Context, id string, from, to domain.EligibilityStatus) (bool, error)
	// ListDueEligibilities returns active eligibilities with expiry <= now
	ListDueEligibilities(ctx context.Context, now time.Time, limit int) ([]schema.Eligibility, error)
	// TransferEligibilities atomically moves active, unexpired, in-window
	// eligibilities from a guest to a wallet identity
	TransferEligibilities(ctx context.Context, guestKey, walletKey string, now time.Time, guestWindow time.Duration) (int64, error)

	// ListUnmintedItems returns unminted catalog items for a category/tier
	ListUnmintedItems(ctx context.Context, category domain.Category, tier domain.Tier) ([]schema.CatalogItem, error)
	// GetCatalogItem retrieves a catalog item by id, nil when absent
	GetCatalogItem(ctx context.Context, id string) (*schema.CatalogItem, error)
	// SetCatalogContentID records the pinned content id once
	SetCatalogContentID(ctx context.Context, id, contentID string) error
	// CountUnminted counts remaining stock in a category
	CountUnminted(ctx context.Context, category domain.Category) (int64, error)

	// ListOwnedItems returns an identity's unburned items
	ListOwnedItems(ctx context.Context, identityKey string) ([]schema.OwnedItem, error)
	// GetOwnedByTokenRefs returns the identity's unburned items matching refs
	GetOwnedByTokenRefs(ctx context.Context, identityKey string, refs []string) ([]schema.OwnedItem, error)

	// CreateMintOperation opens a pending mint operation row
	CreateMintOperation(ctx context.Context, op *schema.MintOperation) error
	// GetMintOperation retrieves a mint operation by id, nil when absent
	GetMintOperation(ctx context.Context, id string) (*schema.MintOperation, error)
	// SetMintSelection records the deterministically selected item
	SetMintSelection(ctx context.Context, id, catalogItemID string) error
	// MarkMintSubmitted transitions pending -> mint_submitted with the tx ref
	MarkMintSubmitted(ctx context.Context, id, txRef string) error
	// FailMintOperation drives a non-terminal operation to failed
	FailMintOperation(ctx context.Context, id string, kind domain.FailureKind, lastError string) error
	// CommitMint is the single durable-commit step: mark item minted,
	// insert owned item, CAS eligibility to used, bump season mint count,
	// confirm the operation. Returns domain.ErrEligibilityExpired when the
	// eligibility CAS lost to the expiry sweep.
	CommitMint(ctx context.Context, commit MintCommit) error

	// CreateForgeOperation opens a pending forge operation row
	CreateForgeOperation(ctx context.Context, op *schema.ForgeOperation) error
	// GetForgeOperation retrieves a forge operation by id, nil when absent
	GetForgeOperation(ctx context.Context, id string) (*schema.ForgeOperation, error)
	// MarkForgeBurnSubmitted transitions pending -> burn_submitted
	MarkForgeBurnSubmitted(ctx context.Context, id, txRef string) error
	// MarkForgeBurnConfirmed records the confirmed burn and flags the
	// input items burned in the same transaction
	MarkForgeBurnConfirmed(ctx context.Context, id string, inputRefs []string, at time.Time) error
	// MarkForgeMintSubmitted transitions burn_confirmed -> mint_submitted
	MarkForgeMintSubmitted(ctx context.Context, id, txRef string) error
	// FailForgeOperation drives a non-terminal operation to failed
	FailForgeOperation(ctx context.Context, id string, kind domain.FailureKind, lastError string) error
	// CommitForge finalizes a forge: mark output design minted, insert the
	// owned output, confirm the operation
	CommitForge(ctx context.Context, commit ForgeCommit) error

	// GetCurrentSeason returns the season open at now, nil when none
	GetCurrentSeason(ctx context.Context, now time.Time) (*schema.Season, error)
	// GetSeason retrieves a season by id, nil when absent
	GetSeason(ctx context.Context, id string) (*schema.Season, error)
	// GetLatestSeason returns the most recently started season
	GetLatestSeason(ctx context.Context) (*schema.Season, error)
	// CreateSeason opens a new season row
	CreateSeason(ctx context.Context, season *schema.Season) error
	// ListSeasonsDueForArchive returns unarchived seasons past end+grace
	ListSeasonsDueForArchive(ctx context.Context, now time.Time) ([]schema.Season, error)
	// ArchiveSeason marks a season archived
	ArchiveSeason(ctx context.Context, id string) error

	// ApplySessionScore upserts a season entry with one session's
	// contribution; counters only ever grow
	ApplySessionScore(ctx context.Context, update LeaderboardUpdate) error
	// LeaderboardPage returns a page in the deterministic ranking order
	// plus the total entry count
	LeaderboardPage(ctx context.Context, seasonID string, limit, offset int) ([]schema.LeaderboardEntry, int64, error)

	// SelectQuestions returns up to count questions in a category,
	// least-recently-served first, excluding the given ids
	SelectQuestions(ctx context.Context, category domain.Category, count int, excludeIDs []string) ([]schema.Question, error)
	// MarkQuestionsServed bumps serve stats for dealt questions
	MarkQuestionsServed(ctx context.Context, ids []string, at time.Time) error
}
