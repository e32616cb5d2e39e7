package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/catalog"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/providers/gateway"
	"github.com/quizmint/qm-engine/internal/providers/pinning"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor.go -package=mocks
type Executor interface {
	// CheckEligibilityActive verifies the eligibility is still active.
	// Returns domain.ErrEligibilityExpired or domain.ErrEligibilityUsed
	// otherwise.
	CheckEligibilityActive(ctx context.Context, eligibilityID string) (*schema.Eligibility, error)

	// SelectMintItem deterministically selects the catalog item for the
	// eligibility and records it on the operation
	SelectMintItem(ctx context.Context, operationID, eligibilityID string, category domain.Category) (string, error)

	// SelectForgeOutput selects an unminted output design for a forge
	SelectForgeOutput(ctx context.Context, operationID string, tier domain.Tier, category domain.Category) (string, error)

	// PinItemMetadata pins the item's metadata and records the content id;
	// returns the content id already on record when one exists
	PinItemMetadata(ctx context.Context, catalogItemID string) (string, error)

	// VerifyOwnership re-checks on chain that the wallet owns every ref
	VerifyOwnership(ctx context.Context, wallet string, tokenRefs []string) error

	// SubmitMint submits the mint transaction and marks the operation
	SubmitMint(ctx context.Context, operationID, recipient, contentID string, forge bool) (string, error)

	// SubmitBurn submits the burn transaction and marks the operation
	SubmitBurn(ctx context.Context, operationID string, tokenRefs []string) (string, error)

	// CheckTx reports the gateway's view of a submitted transaction
	CheckTx(ctx context.Context, txRef string) (*gateway.TxReceipt, error)

	// MarkBurnConfirmed records the confirmed burn and flags inputs burned
	MarkBurnConfirmed(ctx context.Context, operationID string, inputRefs []string) error

	// CommitMint runs the single durable commit of a confirmed mint
	CommitMint(ctx context.Context, input CommitMintInput) error

	// CommitForge runs the durable commit of a confirmed forge output
	CommitForge(ctx context.Context, input CommitForgeInput) error

	// FailMint drives the mint operation to a terminal failure
	FailMint(ctx context.Context, operationID string, kind domain.FailureKind, reason string) error

	// FailForge drives the forge operation to a terminal failure
	FailForge(ctx context.Context, operationID string, kind domain.FailureKind, reason string) error
}

// CommitMintInput carries everything the mint commit activity needs
type CommitMintInput struct {
	OperationID   string
	EligibilityID string
	CatalogItemID string
	IdentityKey   string
	Category      domain.Category
	SeasonID      string
	TokenRef      string
}

// CommitForgeInput carries everything the forge commit activity needs
type CommitForgeInput struct {
	OperationID   string
	CatalogItemID string
	IdentityKey   string
	OutputTier    domain.Tier
	Category      domain.Category
	SeasonID      string
	TokenRef      string
}

// executor is the concrete activity implementation
type executor struct {
	store            store.Store
	selector         *catalog.Selector
	gateway          gateway.Gateway
	pinner           pinning.Pinner
	clock            adapter.Clock
	temporalActivity adapter.Activity
}

// NewExecutor creates a new executor instance
func NewExecutor(st store.Store, selector *catalog.Selector, gw gateway.Gateway, pinner pinning.Pinner, clock adapter.Clock, temporalActivity adapter.Activity) Executor {
	return &executor{
		store:            st,
		selector:         selector,
		gateway:          gw,
		pinner:           pinner,
		clock:            clock,
		temporalActivity: temporalActivity,
	}
}

// CheckEligibilityActive verifies the eligibility is still active
func (e *executor) CheckEligibilityActive(ctx context.Context, eligibilityID string) (*schema.Eligibility, error) {
	elig, err := e.store.GetEligibility(ctx, eligibilityID)
	if err != nil {
		return nil, err
	}
	if elig == nil {
		return nil, domain.ErrEligibilityNotFound
	}
	switch elig.Status {
	case domain.EligibilityActive:
	case domain.EligibilityUsed:
		return nil, domain.ErrEligibilityUsed
	default:
		return nil, domain.ErrEligibilityExpired
	}
	// Expiry is enforced here too: the sweep may simply not have reached
	// the row yet.
	if e.clock.Now().After(elig.ExpiresAt) {
		return nil, domain.ErrEligibilityExpired
	}
	return elig, nil
}

// SelectMintItem deterministically selects the item for the eligibility
func (e *executor) SelectMintItem(ctx context.Context, operationID, eligibilityID string, category domain.Category) (string, error) {
	item, err := e.selector.Pick(ctx, eligibilityID, category, domain.TierCategory)
	if err != nil {
		return "", err
	}
	if err := e.store.SetMintSelection(ctx, operationID, item.ID); err != nil {
		return "", err
	}
	return item.ID, nil
}

// SelectForgeOutput selects an unminted output design for a forge
func (e *executor) SelectForgeOutput(ctx context.Context, operationID string, tier domain.Tier, category domain.Category) (string, error) {
	item, err := e.selector.Pick(ctx, operationID, category, tier)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

// PinItemMetadata pins the item's metadata before the first mint attempt
func (e *executor) PinItemMetadata(ctx context.Context, catalogItemID string) (string, error) {
	item, err := e.store.GetCatalogItem(ctx, catalogItemID)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", fmt.Errorf("catalog item %s not found", catalogItemID)
	}
	if item.ContentID != "" {
		return item.ContentID, nil
	}

	cid, err := e.pinner.Pin(ctx, item.Metadata)
	if err != nil {
		return "", err
	}
	if err := e.store.SetCatalogContentID(ctx, catalogItemID, cid); err != nil {
		return "", err
	}
	logger.DebugCtx(ctx, "item metadata pinned",
		zap.String("catalog_item_id", catalogItemID),
		zap.String("content_id", cid))
	return cid, nil
}

// VerifyOwnership re-checks every input ref against the chain
func (e *executor) VerifyOwnership(ctx context.Context, wallet string, tokenRefs []string) error {
	for _, ref := range tokenRefs {
		owner, err := e.gateway.OwnerOf(ctx, ref)
		if err != nil {
			return err
		}
		if !strings.EqualFold(owner, wallet) {
			return fmt.Errorf("%w: token %s owned by %s", domain.ErrOwnershipChanged, ref, owner)
		}
	}
	return nil
}

// SubmitMint submits the mint and records the transition in one activity
// so the tx ref is durable before the workflow advances.
func (e *executor) SubmitMint(ctx context.Context, operationID, recipient, contentID string, forge bool) (string, error) {
	attempt := e.temporalActivity.GetInfo(ctx).Attempt
	logger.InfoCtx(ctx, "Submitting mint transaction",
		zap.String("operation_id", operationID),
		zap.String("recipient", recipient),
		zap.Int32("attempt", attempt))

	txRef, err := e.gateway.SubmitMint(ctx, recipient, contentID)
	if err != nil {
		return "", err
	}
	if forge {
		err = e.store.MarkForgeMintSubmitted(ctx, operationID, txRef)
	} else {
		err = e.store.MarkMintSubmitted(ctx, operationID, txRef)
	}
	if err != nil {
		return "", err
	}
	return txRef, nil
}

// SubmitBurn submits the burn and records the transition
func (e *executor) SubmitBurn(ctx context.Context, operationID string, tokenRefs []string) (string, error) {
	txRef, err := e.gateway.SubmitBurn(ctx, tokenRefs)
	if err != nil {
		return "", err
	}
	if err := e.store.MarkForgeBurnSubmitted(ctx, operationID, txRef); err != nil {
		return "", err
	}
	return txRef, nil
}

// CheckTx reports the gateway's view of a submitted transaction
func (e *executor) CheckTx(ctx context.Context, txRef string) (*gateway.TxReceipt, error) {
	return e.gateway.TxStatus(ctx, txRef)
}

// MarkBurnConfirmed records the confirmed burn
func (e *executor) MarkBurnConfirmed(ctx context.Context, operationID string, inputRefs []string) error {
	return e.store.MarkForgeBurnConfirmed(ctx, operationID, inputRefs, e.clock.Now())
}

// CommitMint runs the single durable commit of a confirmed mint
func (e *executor) CommitMint(ctx context.Context, input CommitMintInput) error {
	owned := &schema.OwnedItem{
		ID:            domain.NewID(),
		IdentityKey:   input.IdentityKey,
		CatalogItemID: input.CatalogItemID,
		Category:      input.Category,
		Tier:          domain.TierCategory,
		Provenance:    domain.ProvenanceMinted,
		SeasonID:      input.SeasonID,
		TokenRef:      input.TokenRef,
		CreatedAt:     e.clock.Now(),
	}
	err := e.store.CommitMint(ctx, store.MintCommit{
		OperationID:   input.OperationID,
		EligibilityID: input.EligibilityID,
		CatalogItemID: input.CatalogItemID,
		OwnedItem:     owned,
	})
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "mint committed",
		zap.String("operation_id", input.OperationID),
		zap.String("owned_item_id", owned.ID),
		zap.String("token_ref", input.TokenRef))
	return nil
}

// CommitForge runs the durable commit of a confirmed forge output
func (e *executor) CommitForge(ctx context.Context, input CommitForgeInput) error {
	output := &schema.OwnedItem{
		ID:            domain.NewID(),
		IdentityKey:   input.IdentityKey,
		CatalogItemID: input.CatalogItemID,
		Category:      input.Category,
		Tier:          input.OutputTier,
		Provenance:    domain.ProvenanceForged,
		SeasonID:      input.SeasonID,
		TokenRef:      input.TokenRef,
		CreatedAt:     e.clock.Now(),
	}
	err := e.store.CommitForge(ctx, store.ForgeCommit{
		OperationID:   input.OperationID,
		CatalogItemID: input.CatalogItemID,
		OutputItem:    output,
	})
	if err != nil {
		return err
	}
	logger.InfoCtx(ctx, "forge committed",
		zap.String("operation_id", input.OperationID),
		zap.String("output_item_id", output.ID),
		zap.String("token_ref", input.TokenRef))
	return nil
}

// FailMint drives the mint operation to a terminal failure
func (e *executor) FailMint(ctx context.Context, operationID string, kind domain.FailureKind, reason string) error {
	logger.WarnCtx(ctx, "mint operation failed",
		zap.String("operation_id", operationID),
		zap.String("kind", string(kind)),
		zap.String("reason", reason))
	return e.store.FailMintOperation(ctx, operationID, kind, reason)
}

// FailForge drives the forge operation to a terminal failure
func (e *executor) FailForge(ctx context.Context, operationID string, kind domain.FailureKind, reason string) error {
	logger.WarnCtx(ctx, "forge operation failed",
		zap.String("operation_id", operationID),
		zap.String("kind", string(kind)),
		zap.String("reason", reason))
	return e.store.FailForgeOperation(ctx, operationID, kind, reason)
}

// FailureKindFor maps an activity error to the failure taxonomy recorded
// on the operation row. Matching is by message because Temporal flattens
// activity errors to ApplicationError on the workflow side.
func FailureKindFor(err error) domain.FailureKind {
	matches := func(sentinel error) bool {
		return errors.Is(err, sentinel) || strings.Contains(err.Error(), sentinel.Error())
	}
	switch {
	case matches(domain.ErrEligibilityExpired), matches(domain.ErrEligibilityUsed), matches(domain.ErrEligibilityNotFound):
		return domain.FailureEligibilityExpired
	case matches(domain.ErrNoStockAvailable):
		return domain.FailureNoStock
	case matches(domain.ErrOwnershipChanged):
		return domain.FailureOwnershipChanged
	default:
		return domain.FailureSubmit
	}
}
