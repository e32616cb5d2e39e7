package domain

import "errors"

// Admission errors. Non-retryable until the stated condition clears.
var (
	// ErrAlreadyActive is returned when the identity already holds the
	// session admission lock
	ErrAlreadyActive = errors.New("session already active for identity")

	// ErrDailyLimitReached is returned when the per-day session cap for the
	// identity class is exhausted
	ErrDailyLimitReached = errors.New("daily session limit reached")

	// ErrOnCooldown is returned when the post-completion cooldown has not
	// elapsed
	ErrOnCooldown = errors.New("session cooldown in effect")

	// ErrThrottled is returned when the per-identity request limiter rejects
	// a start attempt
	ErrThrottled = errors.New("too many requests")
)

// Validation errors. Not retried automatically.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionFinalized    = errors.New("session already finalized")
	ErrBadQuestionIndex    = errors.New("question index out of range")
	ErrEligibilityNotFound = errors.New("eligibility not found")

	// ErrEligibilityExpired is returned when a mint begins after the
	// eligibility lapsed
	ErrEligibilityExpired = errors.New("eligibility expired")

	// ErrEligibilityUsed is returned for duplicate mint requests on a
	// consumed eligibility
	ErrEligibilityUsed = errors.New("eligibility already used")

	// ErrOwnershipChanged is returned when the preflight ownership re-check
	// of forge inputs mismatches the chain
	ErrOwnershipChanged = errors.New("input item ownership changed")

	ErrForgeNotReady = errors.New("forge requirements not met")
	ErrSeasonClosed  = errors.New("season is not active and grace period has ended")
)

// Stock errors. The eligibility is preserved; callers may retry later.
var (
	ErrNoStockAvailable = errors.New("no unminted catalog item available")
)

// External/workflow errors, surfaced after the bounded retry policy.
var (
	ErrConfirmationExhausted = errors.New("confirmation attempts exhausted")
	ErrGatewayUnavailable    = errors.New("blockchain gateway unavailable")
)
