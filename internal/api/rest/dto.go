package rest

import (
	"time"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// StartSessionRequest opens a new session in one category
type StartSessionRequest struct {
	Category string `json:"category" binding:"required"`
}

// SubmitAnswerRequest records one answer. Index must be the next
// unanswered question; Choice of -1 explicitly passes.
type SubmitAnswerRequest struct {
	Index  int  `json:"index"`
	Choice *int `json:"choice" binding:"required"`
}

// MintRequest starts a mint workflow for an eligibility. Recipient is
// optional for connected identities (the wallet address is the default).
type MintRequest struct {
	Recipient string `json:"recipient"`
}

// ForgeRequest starts a forge workflow
type ForgeRequest struct {
	Tier      string `json:"tier" binding:"required"`
	Category  string `json:"category"`
	Recipient string `json:"recipient"`
}

// TransferRequest moves a guest's live eligibilities to the caller's wallet
type TransferRequest struct {
	GuestKey string `json:"guest_key" binding:"required"`
}

// QuestionResultView is the per-index outcome exposed on a session view
type QuestionResultView struct {
	Index     int        `json:"index"`
	Answered  bool       `json:"answered"`
	Choice    int        `json:"choice"`
	Correct   bool       `json:"correct"`
	TimedOut  bool       `json:"timed_out"`
	ElapsedMS int64      `json:"elapsed_ms"`
	Deadline  *time.Time `json:"deadline,omitempty"`
}

// SessionView is a session row with the answer keys stripped
type SessionView struct {
	SessionID string               `json:"session_id"`
	Category  domain.Category      `json:"category"`
	SeasonID  string               `json:"season_id"`
	Status    domain.SessionStatus `json:"status"`
	Score     int                  `json:"score"`
	Total     int                  `json:"total"`
	Perfect   bool                 `json:"perfect"`
	StartedAt time.Time            `json:"started_at"`
	EndedAt   *time.Time           `json:"ended_at,omitempty"`
	Questions []QuestionResultView `json:"questions"`
}

// NewSessionView maps a stored session onto its public shape
func NewSessionView(s *schema.Session) *SessionView {
	entries := s.Questions.Data()
	view := &SessionView{
		SessionID: s.ID,
		Category:  s.Category,
		SeasonID:  s.SeasonID,
		Status:    s.Status,
		Score:     s.Score,
		Total:     s.Total,
		Perfect:   s.Perfect,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		Questions: make([]QuestionResultView, 0, len(entries)),
	}
	for i, entry := range entries {
		q := QuestionResultView{
			Index:     i,
			Answered:  entry.Answered,
			Choice:    entry.Choice,
			Correct:   entry.Correct,
			TimedOut:  entry.TimedOut,
			ElapsedMS: entry.ElapsedMS,
		}
		if !entry.Answered && !entry.Deadline.IsZero() {
			deadline := entry.Deadline
			q.Deadline = &deadline
		}
		view.Questions = append(view.Questions, q)
	}
	return view
}

// EligibilityView is an eligibility row with server-side fields trimmed
type EligibilityView struct {
	ID        string                   `json:"id"`
	Category  domain.Category          `json:"category"`
	SeasonID  string                   `json:"season_id"`
	Status    domain.EligibilityStatus `json:"status"`
	SessionID string                   `json:"session_id"`
	ExpiresAt time.Time                `json:"expires_at"`
	CreatedAt time.Time                `json:"created_at"`
}

// NewEligibilityView maps a stored eligibility onto its public shape
func NewEligibilityView(e *schema.Eligibility) EligibilityView {
	return EligibilityView{
		ID:        e.ID,
		Category:  e.Category,
		SeasonID:  e.SeasonID,
		Status:    e.Status,
		SessionID: e.SessionID,
		ExpiresAt: e.ExpiresAt,
		CreatedAt: e.CreatedAt,
	}
}

// OperationStartedResponse acknowledges an accepted mint or forge request
type OperationStartedResponse struct {
	OperationID string `json:"operation_id"`
	WorkflowID  string `json:"workflow_id"`
	RunID       string `json:"run_id"`
	Status      string `json:"status"`
}

// MintOperationView is the durable state of a mint workflow
type MintOperationView struct {
	ID            string                 `json:"id"`
	EligibilityID string                 `json:"eligibility_id"`
	Category      domain.Category        `json:"category"`
	Status        domain.OperationStatus `json:"status"`
	CatalogItemID string                 `json:"catalog_item_id,omitempty"`
	MintTxRef     string                 `json:"mint_tx_ref,omitempty"`
	OwnedItemID   string                 `json:"owned_item_id,omitempty"`
	FailureKind   domain.FailureKind     `json:"failure_kind,omitempty"`
	LastError     string                 `json:"last_error,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// NewMintOperationView maps a stored mint operation onto its public shape
func NewMintOperationView(op *schema.MintOperation) *MintOperationView {
	return &MintOperationView{
		ID:            op.ID,
		EligibilityID: op.EligibilityID,
		Category:      op.Category,
		Status:        op.Status,
		CatalogItemID: op.CatalogItemID,
		MintTxRef:     op.MintTxRef,
		OwnedItemID:   op.OwnedItemID,
		FailureKind:   op.FailureKind,
		LastError:     op.LastError,
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.UpdatedAt,
	}
}

// ForgeOperationView is the durable state of a forge workflow
type ForgeOperationView struct {
	ID             string                 `json:"id"`
	OutputTier     domain.Tier            `json:"output_tier"`
	OutputCategory domain.Category        `json:"output_category,omitempty"`
	SeasonID       string                 `json:"season_id,omitempty"`
	InputRefs      []string               `json:"input_refs"`
	Status         domain.OperationStatus `json:"status"`
	BurnTxRef      string                 `json:"burn_tx_ref,omitempty"`
	MintTxRef      string                 `json:"mint_tx_ref,omitempty"`
	OutputItemID   string                 `json:"output_item_id,omitempty"`
	FailureKind    domain.FailureKind     `json:"failure_kind,omitempty"`
	LastError      string                 `json:"last_error,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NewForgeOperationView maps a stored forge operation onto its public shape
func NewForgeOperationView(op *schema.ForgeOperation) *ForgeOperationView {
	return &ForgeOperationView{
		ID:             op.ID,
		OutputTier:     op.OutputTier,
		OutputCategory: op.OutputCategory,
		SeasonID:       op.SeasonID,
		InputRefs:      op.InputRefs.Data(),
		Status:         op.Status,
		BurnTxRef:      op.BurnTxRef,
		MintTxRef:      op.MintTxRef,
		OutputItemID:   op.OutputItemID,
		FailureKind:    op.FailureKind,
		LastError:      op.LastError,
		CreatedAt:      op.CreatedAt,
		UpdatedAt:      op.UpdatedAt,
	}
}

// TransferResponse reports how many eligibilities moved
type TransferResponse struct {
	Transferred int64 `json:"transferred"`
}

// SeasonView is a season row's public shape
type SeasonView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Categories  []domain.Category `json:"categories"`
	StartsAt    time.Time         `json:"starts_at"`
	EndsAt      time.Time         `json:"ends_at"`
	GraceEndsAt time.Time         `json:"grace_ends_at"`
	Archived    bool              `json:"archived"`
}
