package workflows

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/providers/gateway"
)

// MintReward exercises one eligibility end to end. Stock is decremented
// only at the final commit; every failure before submission leaves the
// eligibility and the catalog untouched except for the recorded failure.
func (w *workerCore) MintReward(ctx workflow.Context, input MintInput) error {
	logger.InfoWf(ctx, "Processing mint",
		zap.String("workflow_id", w.temporalWf.GetExecutionID(ctx)),
		zap.String("operation_id", input.OperationID),
		zap.String("eligibility_id", input.EligibilityID),
		zap.String("category", string(input.Category)),
	)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: w.config.ActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	// Step 1: the eligibility must still be active.
	err := workflow.ExecuteActivity(ctx, w.executor.CheckEligibilityActive, input.EligibilityID).Get(ctx, nil)
	if err != nil {
		return w.failMint(ctx, input.OperationID, FailureKindFor(err), err)
	}

	// Step 2: deterministic item selection over current stock.
	var catalogItemID string
	err = workflow.ExecuteActivity(ctx, w.executor.SelectMintItem, input.OperationID, input.EligibilityID, input.Category).Get(ctx, &catalogItemID)
	if err != nil {
		return w.failMint(ctx, input.OperationID, FailureKindFor(err), err)
	}

	// Step 3: pin metadata before anything touches the chain.
	var contentID string
	err = workflow.ExecuteActivity(ctx, w.executor.PinItemMetadata, catalogItemID).Get(ctx, &contentID)
	if err != nil {
		return w.failMint(ctx, input.OperationID, domain.FailureSubmit, err)
	}

	// Step 4: submit.
	var txRef string
	err = workflow.ExecuteActivity(ctx, w.executor.SubmitMint, input.OperationID, input.Recipient, contentID, false).Get(ctx, &txRef)
	if err != nil {
		return w.failMint(ctx, input.OperationID, domain.FailureSubmit, err)
	}

	// Step 5: poll for confirmation within the bounded budget.
	receipt, err := w.awaitConfirmation(ctx, txRef)
	if err != nil {
		return w.failMint(ctx, input.OperationID, domain.FailureConfirmation, err)
	}
	if receipt.Status == domain.TxFailed {
		return w.failMint(ctx, input.OperationID, domain.FailureSubmit, fmt.Errorf("mint transaction reverted: %s", txRef))
	}

	// Step 6: the durable commit. Losing the eligibility status race here
	// means the asset exists on chain with no local owner row, which only
	// an operator can resolve.
	err = workflow.ExecuteActivity(ctx, w.executor.CommitMint, CommitMintInput{
		OperationID:   input.OperationID,
		EligibilityID: input.EligibilityID,
		CatalogItemID: catalogItemID,
		IdentityKey:   input.IdentityKey,
		Category:      input.Category,
		SeasonID:      input.SeasonID,
		TokenRef:      receipt.TokenRef,
	}).Get(ctx, nil)
	if err != nil {
		// Losing the eligibility CAS or the item's minted flag after
		// on-chain confirmation leaves an asset with no local owner row.
		kind := FailureKindFor(err)
		if kind == domain.FailureEligibilityExpired || kind == domain.FailureNoStock {
			kind = domain.FailureReconcileRequired
		}
		return w.failMint(ctx, input.OperationID, kind, err)
	}

	logger.InfoWf(ctx, "Mint confirmed",
		zap.String("operation_id", input.OperationID),
		zap.String("token_ref", receipt.TokenRef),
	)
	return nil
}

// awaitConfirmation polls the transaction until it leaves pending or the
// poll budget runs out.
func (w *workerCore) awaitConfirmation(ctx workflow.Context, txRef string) (*gateway.TxReceipt, error) {
	for i := 0; i < w.config.ConfirmMaxPolls; i++ {
		var receipt gateway.TxReceipt
		if err := workflow.ExecuteActivity(ctx, w.executor.CheckTx, txRef).Get(ctx, &receipt); err != nil {
			return nil, err
		}
		if receipt.Status != domain.TxPending {
			return &receipt, nil
		}
		if err := workflow.Sleep(ctx, w.config.ConfirmPollInterval); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: tx %s still pending after %d polls",
		domain.ErrConfirmationExhausted, txRef, w.config.ConfirmMaxPolls)
}

// failMint records the terminal failure and surfaces the original error
func (w *workerCore) failMint(ctx workflow.Context, operationID string, kind domain.FailureKind, cause error) error {
	logger.ErrorWf(ctx, cause,
		zap.String("operation_id", operationID),
		zap.String("failure_kind", string(kind)),
	)
	if err := workflow.ExecuteActivity(ctx, w.executor.FailMint, operationID, kind, cause.Error()).Get(ctx, nil); err != nil {
		logger.ErrorWf(ctx, errors.New("failed to record mint failure"), zap.Error(err))
	}
	return cause
}
