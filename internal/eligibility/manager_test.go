package eligibility_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/eligibility"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/mocks"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T) (*gomock.Controller, *mocks.MockStore, *eligibility.Manager) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(testNow).AnyTimes()

	mgr := eligibility.NewManager(st, clock, eligibility.Config{
		ConnectedWindow: time.Hour,
		GuestWindow:     25 * time.Minute,
	})
	return ctrl, st, mgr
}

func TestWindow(t *testing.T) {
	ctrl, _, mgr := newManager(t)
	defer ctrl.Finish()

	assert.Equal(t, time.Hour, mgr.Window(domain.ClassConnected))
	assert.Equal(t, 25*time.Minute, mgr.Window(domain.ClassGuest))
}

func TestGrant(t *testing.T) {
	ctrl, st, mgr := newManager(t)
	defer ctrl.Finish()

	var inserted *schema.Eligibility
	st.EXPECT().
		CreateEligibility(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *schema.Eligibility) (bool, error) {
			inserted = e
			return true, nil
		})

	identity := domain.Identity{Key: "guest-1", Class: domain.ClassGuest}
	granted, created, err := mgr.Grant(context.Background(), identity, domain.Category("science"), "season-1", "sess-1")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, inserted, granted)
	assert.Equal(t, domain.EligibilityActive, granted.Status)
	assert.Equal(t, "sess-1", granted.SessionID)
	// Guests carry the short window.
	assert.Equal(t, testNow.Add(25*time.Minute), granted.ExpiresAt)
}

func TestGrant_ExistingActiveIsReturned(t *testing.T) {
	ctrl, st, mgr := newManager(t)
	defer ctrl.Finish()

	existing := &schema.Eligibility{
		ID:          "elig-0",
		IdentityKey: "0xwallet",
		Status:      domain.EligibilityActive,
		SessionID:   "sess-0",
	}
	// The partial unique cap rejects the insert, then the standing right
	// is surfaced instead.
	st.EXPECT().CreateEligibility(gomock.Any(), gomock.Any()).Return(false, nil)
	st.EXPECT().
		GetActiveEligibility(gomock.Any(), "0xwallet", domain.Category("science")).
		Return(existing, nil)

	identity := domain.Identity{Key: "0xwallet", Class: domain.ClassConnected}
	granted, created, err := mgr.Grant(context.Background(), identity, domain.Category("science"), "season-1", "sess-1")
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, granted)
}

func TestGrant_RetriesWhenBlockerVanishes(t *testing.T) {
	ctrl, st, mgr := newManager(t)
	defer ctrl.Finish()

	// First insert loses to a blocker that is gone by the lookup; the
	// second insert wins.
	gomock.InOrder(
		st.EXPECT().CreateEligibility(gomock.Any(), gomock.Any()).Return(false, nil),
		st.EXPECT().
			GetActiveEligibility(gomock.Any(), "0xwallet", domain.Category("science")).
			Return(nil, nil),
		st.EXPECT().CreateEligibility(gomock.Any(), gomock.Any()).Return(true, nil),
	)

	identity := domain.Identity{Key: "0xwallet", Class: domain.ClassConnected}
	granted, created, err := mgr.Grant(context.Background(), identity, domain.Category("science"), "season-1", "sess-1")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.NotNil(t, granted)
}

func TestGet_NotFound(t *testing.T) {
	ctrl, st, mgr := newManager(t)
	defer ctrl.Finish()

	st.EXPECT().GetEligibility(gomock.Any(), "elig-9").Return(nil, nil)

	_, err := mgr.Get(context.Background(), "elig-9")
	assert.ErrorIs(t, err, domain.ErrEligibilityNotFound)
}

func TestTransfer(t *testing.T) {
	ctrl, st, mgr := newManager(t)
	defer ctrl.Finish()

	st.EXPECT().
		TransferEligibilities(gomock.Any(), "guest-1", "0xwallet", testNow, 25*time.Minute).
		Return(int64(2), nil)

	moved, err := mgr.Transfer(context.Background(), "guest-1", "0xwallet")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), moved)
}

func TestExpire_LosesToMint(t *testing.T) {
	ctrl, st, mgr := newManager(t)
	defer ctrl.Finish()

	// The CAS is the single arbiter between expiry and consumption.
	st.EXPECT().
		CASEligibilityStatus(gomock.Any(), "elig-1", domain.EligibilityActive, domain.EligibilityExpired).
		Return(false, nil)

	expired, err := mgr.Expire(context.Background(), "elig-1")
	assert.NoError(t, err)
	assert.False(t, expired)
}
