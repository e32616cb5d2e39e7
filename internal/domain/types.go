package domain

import (
	"fmt"
	"time"
)

// IdentityClass distinguishes wallet-backed players from anonymous ones
type IdentityClass string

const (
	// ClassGuest is an anonymous, device-derived identity
	ClassGuest IdentityClass = "guest"
	// ClassConnected is a wallet-derived identity
	ClassConnected IdentityClass = "connected"
)

// Valid reports whether the class is one of the known values
func (c IdentityClass) Valid() bool {
	return c == ClassGuest || c == ClassConnected
}

// Identity is the stable key every lock, counter, eligibility and
// leaderboard entry is scoped to. Key is a wallet address for connected
// identities and an opaque guest key otherwise.
type Identity struct {
	Key   string        `json:"key"`
	Class IdentityClass `json:"class"`
}

// Valid reports whether the identity carries a key and a known class
func (i Identity) Valid() bool {
	return i.Key != "" && i.Class.Valid()
}

func (i Identity) String() string {
	return fmt.Sprintf("%s:%s", i.Class, i.Key)
}

// Category identifies a trivia category and its catalog bucket
type Category string

// SessionStatus is the lifecycle status of a game session
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionWon     SessionStatus = "won"
	SessionLost    SessionStatus = "lost"
	SessionForfeit SessionStatus = "forfeit"
)

// Terminal reports whether the status is final. Terminal sessions are
// immutable.
func (s SessionStatus) Terminal() bool {
	return s == SessionWon || s == SessionLost || s == SessionForfeit
}

// EligibilityStatus is the state of a time-limited mint right
type EligibilityStatus string

const (
	EligibilityActive  EligibilityStatus = "active"
	EligibilityUsed    EligibilityStatus = "used"
	EligibilityExpired EligibilityStatus = "expired"
)

// Tier classifies owned items. Category-tier items are the regular mints;
// the other tiers only exist as forge outputs.
type Tier string

const (
	// TierCategory is a regular single-category mint
	TierCategory Tier = "category"
	// TierUltimate is forged from K category-tier items of one category
	TierUltimate Tier = "ultimate"
	// TierMaster is forged from one category-tier item of each of K categories
	TierMaster Tier = "master"
	// TierSeasonal is forged from M items per active category of a season
	TierSeasonal Tier = "seasonal"
)

// Provenance records how an owned item came to exist
type Provenance string

const (
	ProvenanceMinted Provenance = "minted"
	ProvenanceForged Provenance = "forged"
)

// OperationStatus is the persisted state of a mint or forge workflow.
// Terminal states (confirmed, failed) are immutable.
type OperationStatus string

const (
	OperationPending       OperationStatus = "pending"
	OperationBurnSubmitted OperationStatus = "burn_submitted"
	OperationBurnConfirmed OperationStatus = "burn_confirmed"
	OperationMintSubmitted OperationStatus = "mint_submitted"
	OperationConfirmed     OperationStatus = "confirmed"
	OperationFailed        OperationStatus = "failed"
)

// Terminal reports whether the operation reached a final state
func (s OperationStatus) Terminal() bool {
	return s == OperationConfirmed || s == OperationFailed
}

// FailureKind qualifies a failed operation so callers can tell preflight
// rejections from losses that need operator reconciliation.
type FailureKind string

const (
	FailureNone FailureKind = ""
	// FailureOwnershipChanged: preflight ownership re-check mismatched,
	// nothing was submitted on chain
	FailureOwnershipChanged FailureKind = "ownership_changed"
	// FailureNoStock: category had no unminted items, eligibility untouched
	FailureNoStock FailureKind = "no_stock"
	// FailureEligibilityExpired: eligibility lapsed before the mint began
	FailureEligibilityExpired FailureKind = "eligibility_expired"
	// FailureSubmit: the gateway rejected the transaction after retries
	FailureSubmit FailureKind = "submit_failed"
	// FailureConfirmation: the confirmation poll budget ran out
	FailureConfirmation FailureKind = "confirmation_exhausted"
	// FailureBurnCommitted: inputs burned on chain but no output minted.
	// Requires manual reconciliation, never auto-compensated.
	FailureBurnCommitted FailureKind = "burn_committed"
	// FailureReconcileRequired: the mint confirmed on chain but the local
	// commit lost the eligibility status race to the expiry sweep
	FailureReconcileRequired FailureKind = "reconcile_required"
)

// TxStatus is the gateway's view of a submitted transaction
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// SessionResult is the outcome returned by session completion, stable
// across repeated completion calls.
type SessionResult struct {
	SessionID     string        `json:"session_id"`
	Status        SessionStatus `json:"status"`
	Score         int           `json:"score"`
	Total         int           `json:"total"`
	Perfect       bool          `json:"perfect"`
	EligibilityID *string       `json:"eligibility_id,omitempty"`
	CompletedAt   time.Time     `json:"completed_at"`
}

// AnswerResult is the recorded outcome for one question index
type AnswerResult struct {
	Index     int   `json:"index"`
	Correct   bool  `json:"correct"`
	TimedOut  bool  `json:"timed_out"`
	Score     int   `json:"score"`
	Remaining int   `json:"remaining"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

// SessionCompleted is the event published when a session reaches a terminal
// state; the leaderboard scorer is its only consumer.
type SessionCompleted struct {
	SessionID     string        `json:"session_id"`
	Identity      Identity      `json:"identity"`
	Category      Category      `json:"category"`
	SeasonID      string        `json:"season_id"`
	Status        SessionStatus `json:"status"`
	Score         int           `json:"score"`
	Total         int           `json:"total"`
	Perfect       bool          `json:"perfect"`
	AvgResponseMS int64         `json:"avg_response_ms"`
	CompletedAt   time.Time     `json:"completed_at"`
}

// ForgeProgress reports live readiness for one forge tier
type ForgeProgress struct {
	Tier      Tier              `json:"tier"`
	Ready     bool              `json:"ready"`
	Required  int               `json:"required"`
	Owned     map[Category]int  `json:"owned,omitempty"`
	Category  *Category         `json:"category,omitempty"`
	SeasonID  *string           `json:"season_id,omitempty"`
	InputRefs []string          `json:"input_refs,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
