package workflows_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/mocks"
	"github.com/quizmint/qm-engine/internal/providers/gateway"
	"github.com/quizmint/qm-engine/internal/workflows"
)

// ForgeWorkflowTestSuite is the test suite for forge workflow tests
type ForgeWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env              *testsuite.TestWorkflowEnvironment
	ctrl             *gomock.Controller
	executor         *mocks.MockExecutor
	temporalWorkflow *mocks.MockWorkflow
	workerCore       workflows.WorkerCore
}

// SetupTest is called before each test
func (s *ForgeWorkflowTestSuite) SetupTest() {
	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.env = s.NewTestWorkflowEnvironment()
	s.ctrl = gomock.NewController(s.T())
	s.executor = mocks.NewMockExecutor(s.ctrl)
	s.temporalWorkflow = mocks.NewMockWorkflow(s.ctrl)
	s.temporalWorkflow.EXPECT().GetExecutionID(gomock.Any()).Return("workflow-123").AnyTimes()
	s.workerCore = workflows.NewWorkerCore(s.executor, workflows.WorkerCoreConfig{
		ActivityTimeout:     time.Minute,
		ConfirmPollInterval: time.Second,
		ConfirmMaxPolls:     3,
	}, s.temporalWorkflow)
}

// TearDownTest is called after each test
func (s *ForgeWorkflowTestSuite) TearDownTest() {
	s.env.AssertExpectations(s.T())
	s.ctrl.Finish()
}

// TestForgeWorkflowTestSuite runs the test suite
func TestForgeWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(ForgeWorkflowTestSuite))
}

func forgeInput() workflows.ForgeInput {
	return workflows.ForgeInput{
		OperationID:    "01JMOPFORGE000000000000000",
		IdentityKey:    "0xabc0000000000000000000000000000000000001",
		Recipient:      "0xabc0000000000000000000000000000000000001",
		OutputTier:     domain.TierUltimate,
		OutputCategory: domain.Category("science"),
		SeasonID:       "01JMSEASON0000000000000000",
		InputRefs:      []string{"qm:1", "qm:2", "qm:3"},
	}
}

// expectPreBurn mocks the steps that run before anything touches the chain
func (s *ForgeWorkflowTestSuite) expectPreBurn(input workflows.ForgeInput) {
	s.env.OnActivity(s.executor.VerifyOwnership, mock.Anything, input.Recipient, input.InputRefs).
		Return(nil)
	s.env.OnActivity(s.executor.SelectForgeOutput, mock.Anything, input.OperationID, input.OutputTier, input.OutputCategory).
		Return("design-1", nil)
	s.env.OnActivity(s.executor.PinItemMetadata, mock.Anything, "design-1").
		Return("bafy-design-1", nil)
}

func (s *ForgeWorkflowTestSuite) TestForgeReward_Success() {
	input := forgeInput()
	s.expectPreBurn(input)

	s.env.OnActivity(s.executor.SubmitBurn, mock.Anything, input.OperationID, input.InputRefs).
		Return("0xburn", nil)
	s.env.OnActivity(s.executor.CheckTx, mock.Anything, "0xburn").
		Return(&gateway.TxReceipt{Status: domain.TxConfirmed}, nil)
	s.env.OnActivity(s.executor.MarkBurnConfirmed, mock.Anything, input.OperationID, input.InputRefs).
		Return(nil)
	s.env.OnActivity(s.executor.SubmitMint, mock.Anything, input.OperationID, input.Recipient, "bafy-design-1", true).
		Return("0xmint", nil)
	s.env.OnActivity(s.executor.CheckTx, mock.Anything, "0xmint").
		Return(&gateway.TxReceipt{Status: domain.TxConfirmed, TokenRef: "qm:100"}, nil)
	s.env.OnActivity(s.executor.CommitForge, mock.Anything, workflows.CommitForgeInput{
		OperationID:   input.OperationID,
		CatalogItemID: "design-1",
		IdentityKey:   input.IdentityKey,
		OutputTier:    input.OutputTier,
		Category:      input.OutputCategory,
		SeasonID:      input.SeasonID,
		TokenRef:      "qm:100",
	}).Return(nil)

	s.env.ExecuteWorkflow(s.workerCore.ForgeReward, input)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *ForgeWorkflowTestSuite) TestForgeReward_OwnershipChanged() {
	input := forgeInput()

	s.env.OnActivity(s.executor.VerifyOwnership, mock.Anything, input.Recipient, input.InputRefs).
		Return(domain.ErrOwnershipChanged)
	s.env.OnActivity(s.executor.FailForge, mock.Anything, input.OperationID, domain.FailureOwnershipChanged, mock.Anything).
		Return(nil)

	s.env.ExecuteWorkflow(s.workerCore.ForgeReward, input)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Contains(s.env.GetWorkflowError().Error(), domain.ErrOwnershipChanged.Error())
}

func (s *ForgeWorkflowTestSuite) TestForgeReward_NoOutputStock() {
	input := forgeInput()

	s.env.OnActivity(s.executor.VerifyOwnership, mock.Anything, input.Recipient, input.InputRefs).
		Return(nil)
	s.env.OnActivity(s.executor.SelectForgeOutput, mock.Anything, input.OperationID, input.OutputTier, input.OutputCategory).
		Return("", domain.ErrNoStockAvailable)
	s.env.OnActivity(s.executor.FailForge, mock.Anything, input.OperationID, domain.FailureNoStock, mock.Anything).
		Return(nil)

	s.env.ExecuteWorkflow(s.workerCore.ForgeReward, input)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *ForgeWorkflowTestSuite) TestForgeReward_BurnReverted() {
	input := forgeInput()
	s.expectPreBurn(input)

	s.env.OnActivity(s.executor.SubmitBurn, mock.Anything, input.OperationID, input.InputRefs).
		Return("0xburn", nil)
	s.env.OnActivity(s.executor.CheckTx, mock.Anything, "0xburn").
		Return(&gateway.TxReceipt{Status: domain.TxFailed}, nil)
	// A reverted burn leaves the inputs intact, so this is a plain submit
	// failure, not burn-committed.
	s.env.OnActivity(s.executor.FailForge, mock.Anything, input.OperationID, domain.FailureSubmit, mock.Anything).
		Return(nil)

	s.env.ExecuteWorkflow(s.workerCore.ForgeReward, input)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *ForgeWorkflowTestSuite) TestForgeReward_OutputMintFailureAfterBurn() {
	input := forgeInput()
	s.expectPreBurn(input)

	s.env.OnActivity(s.executor.SubmitBurn, mock.Anything, input.OperationID, input.InputRefs).
		Return("0xburn", nil)
	s.env.OnActivity(s.executor.CheckTx, mock.Anything, "0xburn").
		Return(&gateway.TxReceipt{Status: domain.TxConfirmed}, nil)
	s.env.OnActivity(s.executor.MarkBurnConfirmed, mock.Anything, input.OperationID, input.InputRefs).
		Return(nil)
	s.env.OnActivity(s.executor.SubmitMint, mock.Anything, input.OperationID, input.Recipient, "bafy-design-1", true).
		Return("", errors.New("gateway unavailable"))
	s.env.OnActivity(s.executor.FailForge, mock.Anything, input.OperationID, domain.FailureBurnCommitted, mock.Anything).
		Return(nil)

	s.env.ExecuteWorkflow(s.workerCore.ForgeReward, input)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *ForgeWorkflowTestSuite) TestForgeReward_MarkBurnConfirmedFailure() {
	input := forgeInput()
	s.expectPreBurn(input)

	s.env.OnActivity(s.executor.SubmitBurn, mock.Anything, input.OperationID, input.InputRefs).
		Return("0xburn", nil)
	s.env.OnActivity(s.executor.CheckTx, mock.Anything, "0xburn").
		Return(&gateway.TxReceipt{Status: domain.TxConfirmed}, nil)
	s.env.OnActivity(s.executor.MarkBurnConfirmed, mock.Anything, input.OperationID, input.InputRefs).
		Return(errors.New("database error"))
	s.env.OnActivity(s.executor.FailForge, mock.Anything, input.OperationID, domain.FailureBurnCommitted, mock.Anything).
		Return(nil)

	s.env.ExecuteWorkflow(s.workerCore.ForgeReward, input)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}
