package workflows

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
)

// ForgeReward burns the validated inputs and mints the output tier. The
// order of steps is deliberate: everything that can fail cheaply runs
// before the burn, because once the burn confirms there is no way back.
// A failure after that point is recorded as burn-committed and left for
// operator reconciliation, never auto-compensated.
func (w *workerCore) ForgeReward(ctx workflow.Context, input ForgeInput) error {
	logger.InfoWf(ctx, "Processing forge",
		zap.String("workflow_id", w.temporalWf.GetExecutionID(ctx)),
		zap.String("operation_id", input.OperationID),
		zap.String("output_tier", string(input.OutputTier)),
		zap.Int("inputs", len(input.InputRefs)),
	)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: w.config.ActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	// Step 1: ownership preflight. The inputs were validated at request
	// time; re-check right before burning.
	err := workflow.ExecuteActivity(ctx, w.executor.VerifyOwnership, input.Recipient, input.InputRefs).Get(ctx, nil)
	if err != nil {
		return w.failForge(ctx, input.OperationID, FailureKindFor(err), err)
	}

	// Step 2: reserve nothing, but make sure an output design exists and
	// its metadata pins before any burn.
	var catalogItemID string
	err = workflow.ExecuteActivity(ctx, w.executor.SelectForgeOutput, input.OperationID, input.OutputTier, input.OutputCategory).Get(ctx, &catalogItemID)
	if err != nil {
		return w.failForge(ctx, input.OperationID, FailureKindFor(err), err)
	}

	var contentID string
	err = workflow.ExecuteActivity(ctx, w.executor.PinItemMetadata, catalogItemID).Get(ctx, &contentID)
	if err != nil {
		return w.failForge(ctx, input.OperationID, domain.FailureSubmit, err)
	}

	// Step 3: burn.
	var burnTxRef string
	err = workflow.ExecuteActivity(ctx, w.executor.SubmitBurn, input.OperationID, input.InputRefs).Get(ctx, &burnTxRef)
	if err != nil {
		return w.failForge(ctx, input.OperationID, domain.FailureSubmit, err)
	}

	burnReceipt, err := w.awaitConfirmation(ctx, burnTxRef)
	if err != nil {
		return w.failForge(ctx, input.OperationID, domain.FailureConfirmation, err)
	}
	if burnReceipt.Status == domain.TxFailed {
		// A reverted burn leaves the inputs intact on chain.
		return w.failForge(ctx, input.OperationID, domain.FailureSubmit, fmt.Errorf("burn transaction reverted: %s", burnTxRef))
	}

	err = workflow.ExecuteActivity(ctx, w.executor.MarkBurnConfirmed, input.OperationID, input.InputRefs).Get(ctx, nil)
	if err != nil {
		return w.failForge(ctx, input.OperationID, domain.FailureBurnCommitted, err)
	}

	// The point of no return: from here every failure is burn-committed.

	// Step 4: mint the output.
	var mintTxRef string
	err = workflow.ExecuteActivity(ctx, w.executor.SubmitMint, input.OperationID, input.Recipient, contentID, true).Get(ctx, &mintTxRef)
	if err != nil {
		return w.failForge(ctx, input.OperationID, domain.FailureBurnCommitted, err)
	}

	mintReceipt, err := w.awaitConfirmation(ctx, mintTxRef)
	if err != nil {
		return w.failForge(ctx, input.OperationID, domain.FailureBurnCommitted, err)
	}
	if mintReceipt.Status == domain.TxFailed {
		return w.failForge(ctx, input.OperationID, domain.FailureBurnCommitted, fmt.Errorf("output mint reverted: %s", mintTxRef))
	}

	// Step 5: durable commit of the output.
	err = workflow.ExecuteActivity(ctx, w.executor.CommitForge, CommitForgeInput{
		OperationID:   input.OperationID,
		CatalogItemID: catalogItemID,
		IdentityKey:   input.IdentityKey,
		OutputTier:    input.OutputTier,
		Category:      input.OutputCategory,
		SeasonID:      input.SeasonID,
		TokenRef:      mintReceipt.TokenRef,
	}).Get(ctx, nil)
	if err != nil {
		return w.failForge(ctx, input.OperationID, domain.FailureBurnCommitted, err)
	}

	logger.InfoWf(ctx, "Forge confirmed",
		zap.String("operation_id", input.OperationID),
		zap.String("token_ref", mintReceipt.TokenRef),
	)
	return nil
}

// failForge records the terminal failure and surfaces the original error
func (w *workerCore) failForge(ctx workflow.Context, operationID string, kind domain.FailureKind, cause error) error {
	logger.ErrorWf(ctx, cause,
		zap.String("operation_id", operationID),
		zap.String("failure_kind", string(kind)),
	)
	if err := workflow.ExecuteActivity(ctx, w.executor.FailForge, operationID, kind, cause.Error()).Get(ctx, nil); err != nil {
		logger.ErrorWf(ctx, errors.New("failed to record forge failure"), zap.Error(err))
	}
	return cause
}
