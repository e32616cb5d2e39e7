package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	enums "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/api/middleware"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/eligibility"
	"github.com/quizmint/qm-engine/internal/forge"
	"github.com/quizmint/qm-engine/internal/leaderboard"
	"github.com/quizmint/qm-engine/internal/providers/temporal"
	"github.com/quizmint/qm-engine/internal/season"
	"github.com/quizmint/qm-engine/internal/session"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
	"github.com/quizmint/qm-engine/internal/workflows"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// StartSession opens a session in one category for the caller
	// POST /api/v1/sessions
	StartSession(c *gin.Context)

	// SubmitAnswer records the answer for the next unanswered index
	// POST /api/v1/sessions/:id/answers
	SubmitAnswer(c *gin.Context)

	// CompleteSession finalizes a session, idempotently
	// POST /api/v1/sessions/:id/complete
	CompleteSession(c *gin.Context)

	// ForfeitSession abandons a session, scoring unanswered as timeouts
	// POST /api/v1/sessions/:id/forfeit
	ForfeitSession(c *gin.Context)

	// GetSession retrieves the caller's session with answer keys stripped
	// GET /api/v1/sessions/:id
	GetSession(c *gin.Context)

	// ListEligibilities lists the caller's eligibilities, newest first
	// GET /api/v1/eligibilities?limit=<limit>&offset=<offset>
	ListEligibilities(c *gin.Context)

	// MintReward starts a mint workflow for one of the caller's active
	// eligibilities
	// POST /api/v1/eligibilities/:id/mint
	MintReward(c *gin.Context)

	// GetMintOperation retrieves the durable state of a mint workflow
	// GET /api/v1/mints/:id
	GetMintOperation(c *gin.Context)

	// TransferEligibilities moves a guest's live eligibilities to the
	// caller's wallet (requires wallet authentication)
	// POST /api/v1/identity/transfer
	TransferEligibilities(c *gin.Context)

	// GetForgeProgress reports live forge readiness per tier
	// GET /api/v1/forge/progress
	GetForgeProgress(c *gin.Context)

	// StartForge validates a forge plan and starts the workflow
	// (requires wallet authentication)
	// POST /api/v1/forge
	StartForge(c *gin.Context)

	// GetForgeOperation retrieves the durable state of a forge workflow
	// GET /api/v1/forge/operations/:id
	GetForgeOperation(c *gin.Context)

	// GetLeaderboard returns one ranked page of a season's leaderboard
	// GET /api/v1/leaderboard?season_id=<id>&limit=<limit>&offset=<offset>
	GetLeaderboard(c *gin.Context)

	// GetCurrentSeason returns the currently open season
	// GET /api/v1/seasons/current
	GetCurrentSeason(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// HandlerConfig holds the handler's workflow dispatch settings
type HandlerConfig struct {
	TaskQueue string
	// CustodialAddress receives guest mints until a wallet is connected
	CustodialAddress string
}

// handler implements the Handler interface
type handler struct {
	cfg          HandlerConfig
	engine       *session.Engine
	eligibility  *eligibility.Manager
	forge        *forge.Service
	scorer       *leaderboard.Scorer
	seasons      *season.Manager
	store        store.Store
	orchestrator temporal.TemporalOrchestrator
}

// NewHandler creates a new REST API handler
func NewHandler(
	cfg HandlerConfig,
	engine *session.Engine,
	elig *eligibility.Manager,
	forgeSvc *forge.Service,
	scorer *leaderboard.Scorer,
	seasons *season.Manager,
	st store.Store,
	orchestrator temporal.TemporalOrchestrator,
) Handler {
	return &handler{
		cfg:          cfg,
		engine:       engine,
		eligibility:  elig,
		forge:        forgeSvc,
		scorer:       scorer,
		seasons:      seasons,
		store:        st,
		orchestrator: orchestrator,
	}
}

// StartSession opens a session in one category for the caller
func (h *handler) StartSession(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	category := domain.Category(strings.TrimSpace(req.Category))
	if category == "" {
		respondValidationError(c, "category is required")
		return
	}

	started, err := h.engine.Start(c.Request.Context(), identity, category)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, started)
}

// SubmitAnswer records the answer for the next unanswered index
func (h *handler) SubmitAnswer(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		respondBadRequest(c, "Session ID is required")
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.engine.Answer(c.Request.Context(), identity, sessionID, req.Index, *req.Choice)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteSession finalizes a session, idempotently
func (h *handler) CompleteSession(c *gin.Context) {
	h.finalizeSession(c, h.engine.Complete)
}

// ForfeitSession abandons a session, scoring unanswered as timeouts
func (h *handler) ForfeitSession(c *gin.Context) {
	h.finalizeSession(c, h.engine.Forfeit)
}

func (h *handler) finalizeSession(
	c *gin.Context,
	finalize func(ctx context.Context, identity domain.Identity, sessionID string) (*domain.SessionResult, error),
) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		respondBadRequest(c, "Session ID is required")
		return
	}

	result, err := finalize(c.Request.Context(), identity, sessionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSession retrieves the caller's session with answer keys stripped
func (h *handler) GetSession(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		respondBadRequest(c, "Session ID is required")
		return
	}

	s, err := h.engine.Get(c.Request.Context(), identity, sessionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSessionView(s))
}

// ListEligibilities lists the caller's eligibilities, newest first
func (h *handler) ListEligibilities(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	rows, err := h.eligibility.List(c.Request.Context(), identity.Key, limit, offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list eligibilities")
		return
	}

	views := make([]EligibilityView, 0, len(rows))
	for i := range rows {
		views = append(views, NewEligibilityView(&rows[i]))
	}

	c.JSON(http.StatusOK, gin.H{"eligibilities": views})
}

// MintReward starts a mint workflow for one of the caller's eligibilities
func (h *handler) MintReward(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	eligibilityID := c.Param("id")
	if eligibilityID == "" {
		respondBadRequest(c, "Eligibility ID is required")
		return
	}

	var req MintRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err.Error())
			return
		}
	}

	elig, err := h.eligibility.Get(c.Request.Context(), eligibilityID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if elig.IdentityKey != identity.Key {
		respondNotFound(c, "Eligibility not found")
		return
	}
	switch elig.Status {
	case domain.EligibilityUsed:
		respondDomainError(c, domain.ErrEligibilityUsed)
		return
	case domain.EligibilityExpired:
		respondDomainError(c, domain.ErrEligibilityExpired)
		return
	}

	recipient, err := h.resolveRecipient(identity, req.Recipient)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	operationID := domain.NewID()
	op := &schema.MintOperation{
		ID:            operationID,
		EligibilityID: elig.ID,
		IdentityKey:   identity.Key,
		Category:      elig.Category,
		Status:        domain.OperationPending,
	}
	if err := h.store.CreateMintOperation(c.Request.Context(), op); err != nil {
		respondInternalError(c, err, "Failed to open mint operation")
		return
	}

	w := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{}, nil)
	options := client.StartWorkflowOptions{
		ID:                       fmt.Sprintf("mint-%s", operationID),
		TaskQueue:                h.cfg.TaskQueue,
		WorkflowExecutionTimeout: 30 * time.Minute,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	input := workflows.MintInput{
		OperationID:   operationID,
		EligibilityID: elig.ID,
		IdentityKey:   identity.Key,
		Recipient:     recipient,
		Category:      elig.Category,
		SeasonID:      elig.SeasonID,
	}
	wfRun, err := h.orchestrator.ExecuteWorkflow(c.Request.Context(), options, w.MintReward, input)
	if err != nil {
		respondInternalError(c, err, "Failed to start mint workflow",
			zap.String("operation_id", operationID),
		)
		return
	}

	c.JSON(http.StatusAccepted, OperationStartedResponse{
		OperationID: operationID,
		WorkflowID:  wfRun.GetID(),
		RunID:       wfRun.GetRunID(),
		Status:      string(domain.OperationPending),
	})
}

// GetMintOperation retrieves the durable state of a mint workflow
func (h *handler) GetMintOperation(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	op, err := h.store.GetMintOperation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "Failed to get mint operation")
		return
	}
	if op == nil || op.IdentityKey != identity.Key {
		respondNotFound(c, "Mint operation not found")
		return
	}

	c.JSON(http.StatusOK, NewMintOperationView(op))
}

// TransferEligibilities moves a guest's live eligibilities to the wallet
func (h *handler) TransferEligibilities(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.Class != domain.ClassConnected {
		respondBadRequest(c, "Wallet identity is required")
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	moved, err := h.engine.AdoptGuest(c.Request.Context(), req.GuestKey, identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransferResponse{Transferred: moved})
}

// GetForgeProgress reports live forge readiness per tier
func (h *handler) GetForgeProgress(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	progress, err := h.forge.Progress(c.Request.Context(), identity.Key)
	if err != nil {
		respondInternalError(c, err, "Failed to compute forge progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// StartForge validates a forge plan and starts the workflow
func (h *handler) StartForge(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.Class != domain.ClassConnected {
		respondBadRequest(c, "Wallet identity is required")
		return
	}

	var req ForgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	var plan *forge.Plan
	var err error
	switch domain.Tier(req.Tier) {
	case domain.TierUltimate:
		if req.Category == "" {
			respondValidationError(c, "category is required for ultimate forges")
			return
		}
		plan, err = h.forge.PlanUltimate(c.Request.Context(), identity.Key, domain.Category(req.Category))
	case domain.TierMaster:
		plan, err = h.forge.PlanMaster(c.Request.Context(), identity.Key)
	case domain.TierSeasonal:
		plan, err = h.forge.PlanSeasonal(c.Request.Context(), identity.Key)
	default:
		respondValidationError(c, fmt.Sprintf("unknown forge tier: %s", req.Tier))
		return
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	recipient, err := h.resolveRecipient(identity, req.Recipient)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	operationID := domain.NewID()
	op := &schema.ForgeOperation{
		ID:             operationID,
		IdentityKey:    identity.Key,
		OutputTier:     plan.OutputTier,
		OutputCategory: plan.OutputCategory,
		SeasonID:       plan.SeasonID,
		InputRefs:      datatypes.NewJSONType(plan.InputRefs),
		Status:         domain.OperationPending,
	}
	if err := h.store.CreateForgeOperation(c.Request.Context(), op); err != nil {
		respondInternalError(c, err, "Failed to open forge operation")
		return
	}

	w := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{}, nil)
	options := client.StartWorkflowOptions{
		ID:                       fmt.Sprintf("forge-%s", operationID),
		TaskQueue:                h.cfg.TaskQueue,
		WorkflowExecutionTimeout: 30 * time.Minute,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	input := workflows.ForgeInput{
		OperationID:    operationID,
		IdentityKey:    identity.Key,
		Recipient:      recipient,
		OutputTier:     plan.OutputTier,
		OutputCategory: plan.OutputCategory,
		SeasonID:       plan.SeasonID,
		InputRefs:      plan.InputRefs,
	}
	wfRun, err := h.orchestrator.ExecuteWorkflow(c.Request.Context(), options, w.ForgeReward, input)
	if err != nil {
		respondInternalError(c, err, "Failed to start forge workflow",
			zap.String("operation_id", operationID),
		)
		return
	}

	c.JSON(http.StatusAccepted, OperationStartedResponse{
		OperationID: operationID,
		WorkflowID:  wfRun.GetID(),
		RunID:       wfRun.GetRunID(),
		Status:      string(domain.OperationPending),
	})
}

// GetForgeOperation retrieves the durable state of a forge workflow
func (h *handler) GetForgeOperation(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondBadRequest(c, "Identity is required")
		return
	}

	op, err := h.store.GetForgeOperation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "Failed to get forge operation")
		return
	}
	if op == nil || op.IdentityKey != identity.Key {
		respondNotFound(c, "Forge operation not found")
		return
	}

	c.JSON(http.StatusOK, NewForgeOperationView(op))
}

// GetLeaderboard returns one ranked page of a season's leaderboard
func (h *handler) GetLeaderboard(c *gin.Context) {
	seasonID := c.Query("season_id")
	if seasonID == "" {
		current, err := h.seasons.Current(c.Request.Context())
		if err != nil {
			respondInternalError(c, err, "Failed to resolve current season")
			return
		}
		if current == nil {
			respondNotFound(c, "No season is open")
			return
		}
		seasonID = current.ID
	}

	limit := parseIntQuery(c, "limit", 0)
	offset := parseIntQuery(c, "offset", 0)

	page, err := h.scorer.Query(c.Request.Context(), seasonID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "Failed to query leaderboard")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetCurrentSeason returns the currently open season
func (h *handler) GetCurrentSeason(c *gin.Context) {
	current, err := h.seasons.Current(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to resolve current season")
		return
	}
	if current == nil {
		respondNotFound(c, "No season is open")
		return
	}

	c.JSON(http.StatusOK, SeasonView{
		ID:          current.ID,
		Name:        current.Name,
		Categories:  current.Categories.Data(),
		StartsAt:    current.StartsAt,
		EndsAt:      current.EndsAt,
		GraceEndsAt: current.EndsAt.Add(current.GracePeriod),
		Archived:    current.Archived,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// resolveRecipient picks the mint destination address. Connected callers
// default to their wallet; guests always mint to custody.
func (h *handler) resolveRecipient(identity domain.Identity, requested string) (string, error) {
	if identity.Class == domain.ClassGuest {
		if h.cfg.CustodialAddress == "" {
			return "", fmt.Errorf("guest minting is not enabled")
		}
		return h.cfg.CustodialAddress, nil
	}
	if requested != "" {
		return requested, nil
	}
	return identity.Key, nil
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
