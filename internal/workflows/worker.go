package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
)

// MintInput starts a mint workflow. The operation row already exists in
// pending state before the workflow is scheduled.
type MintInput struct {
	OperationID   string          `json:"operation_id"`
	EligibilityID string          `json:"eligibility_id"`
	IdentityKey   string          `json:"identity_key"`
	Recipient     string          `json:"recipient"`
	Category      domain.Category `json:"category"`
	SeasonID      string          `json:"season_id"`
}

// ForgeInput starts a forge workflow over pre-validated inputs
type ForgeInput struct {
	OperationID    string          `json:"operation_id"`
	IdentityKey    string          `json:"identity_key"`
	Recipient      string          `json:"recipient"`
	OutputTier     domain.Tier     `json:"output_tier"`
	OutputCategory domain.Category `json:"output_category"`
	SeasonID       string          `json:"season_id"`
	InputRefs      []string        `json:"input_refs"`
}

// WorkerCore defines the interface for the reward workflows
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockCoreWorker
type WorkerCore interface {
	// MintReward exercises one eligibility: select, pin, submit, confirm,
	// commit
	MintReward(ctx workflow.Context, input MintInput) error

	// ForgeReward burns validated inputs and mints the output tier
	ForgeReward(ctx workflow.Context, input ForgeInput) error
}

// WorkerCoreConfig holds workflow-level tuning
type WorkerCoreConfig struct {
	// ActivityTimeout bounds each activity attempt
	ActivityTimeout time.Duration
	// ConfirmPollInterval is the sleep between confirmation checks
	ConfirmPollInterval time.Duration
	// ConfirmMaxPolls bounds the confirmation loop
	ConfirmMaxPolls int
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	config     WorkerCoreConfig
	executor   Executor
	temporalWf adapter.Workflow
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor, config WorkerCoreConfig, temporalWf adapter.Workflow) WorkerCore {
	if config.ActivityTimeout == 0 {
		config.ActivityTimeout = time.Minute
	}
	if config.ConfirmPollInterval == 0 {
		config.ConfirmPollInterval = 10 * time.Second
	}
	if config.ConfirmMaxPolls == 0 {
		config.ConfirmMaxPolls = 30
	}
	return &workerCore{executor: executor, config: config, temporalWf: temporalWf}
}
