// Package eligibility manages time-limited mint rights: granting them on
// perfect sessions, transferring them on guest-to-wallet connection and
// expiring them on schedule.
package eligibility

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Config holds the per-class eligibility windows. The window in effect at
// grant time is frozen into the row; config changes never move existing
// expiries.
type Config struct {
	ConnectedWindow time.Duration
	GuestWindow     time.Duration
}

// Manager owns eligibility lifecycle transitions
type Manager struct {
	store store.Store
	clock adapter.Clock
	cfg   Config
}

// NewManager creates an eligibility manager
func NewManager(st store.Store, clock adapter.Clock, cfg Config) *Manager {
	return &Manager{store: st, clock: clock, cfg: cfg}
}

// Window returns the grant window for an identity class
func (m *Manager) Window(class domain.IdentityClass) time.Duration {
	if class == domain.ClassGuest {
		return m.cfg.GuestWindow
	}
	return m.cfg.ConnectedWindow
}

// Grant creates an active eligibility for the identity and category. When
// an active one already exists the grant is a silent no-op and the
// existing right is returned: a second perfect session never extends or
// replaces it.
func (m *Manager) Grant(ctx context.Context, identity domain.Identity, category domain.Category, seasonID, sessionID string) (*schema.Eligibility, bool, error) {
	now := m.clock.Now()
	e := &schema.Eligibility{
		ID:            domain.NewID(),
		IdentityKey:   identity.Key,
		IdentityClass: identity.Class,
		Category:      category,
		SeasonID:      seasonID,
		Status:        domain.EligibilityActive,
		SessionID:     sessionID,
		ExpiresAt:     now.Add(m.Window(identity.Class)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := m.store.CreateEligibility(ctx, e)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.InfoCtx(ctx, "eligibility granted",
			zap.String("eligibility_id", e.ID),
			zap.String("identity", identity.String()),
			zap.String("category", string(category)))
		return e, true, nil
	}

	existing, err := m.store.GetActiveEligibility(ctx, identity.Key, category)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// The blocking right was consumed or expired between the insert
		// and the lookup; grant again.
		return m.Grant(ctx, identity, category, seasonID, sessionID)
	}
	return existing, false, nil
}

// List pages an identity's eligibilities, newest first
func (m *Manager) List(ctx context.Context, identityKey string, limit, offset int) ([]schema.Eligibility, error) {
	return m.store.ListEligibilities(ctx, identityKey, limit, offset)
}

// Get returns an eligibility or domain.ErrEligibilityNotFound
func (m *Manager) Get(ctx context.Context, id string) (*schema.Eligibility, error) {
	e, err := m.store.GetEligibility(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrEligibilityNotFound
	}
	return e, nil
}

// Transfer moves a guest's active, in-window eligibilities to a wallet
// identity. Rights already expired or granted outside the guest window
// stay behind.
func (m *Manager) Transfer(ctx context.Context, guestKey, walletKey string) (int64, error) {
	moved, err := m.store.TransferEligibilities(ctx, guestKey, walletKey, m.clock.Now(), m.cfg.GuestWindow)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		logger.InfoCtx(ctx, "eligibilities transferred",
			zap.String("guest_key", guestKey),
			zap.String("wallet_key", walletKey),
			zap.Int64("moved", moved))
	}
	return moved, nil
}

// Expire drives one eligibility from active to expired. Returns false when
// the status CAS lost, meaning a mint consumed the right first.
func (m *Manager) Expire(ctx context.Context, id string) (bool, error) {
	return m.store.CASEligibilityStatus(ctx, id, domain.EligibilityActive, domain.EligibilityExpired)
}

// ListDue returns active eligibilities whose expiry has passed
func (m *Manager) ListDue(ctx context.Context, limit int) ([]schema.Eligibility, error) {
	return m.store.ListDueEligibilities(ctx, m.clock.Now(), limit)
}
