package forge_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/forge"
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

var (
	catScience = domain.Category("science")
	catHistory = domain.Category("history")
	catSport   = domain.Category("sport")

	testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
)

type forgeMocks struct {
	ctrl  *gomock.Controller
	store *mocks.MockStore
	clock *mocks.MockClock
}

func newService(t *testing.T) (*forgeMocks, *forge.Service) {
	ctrl := gomock.NewController(t)
	fm := &forgeMocks{
		ctrl:  ctrl,
		store: mocks.NewMockStore(ctrl),
		clock: mocks.NewMockClock(ctrl),
	}
	fm.clock.EXPECT().Now().Return(testNow).AnyTimes()

	svc := forge.NewService(fm.store, fm.clock, forge.Config{
		Categories:                []domain.Category{catScience, catHistory, catSport},
		UltimateInputs:            3,
		SeasonalInputsPerCategory: 1,
	})
	return fm, svc
}

func ownedItem(id string, category domain.Category, tier domain.Tier, age time.Duration) schema.OwnedItem {
	return schema.OwnedItem{
		ID:        id,
		Category:  category,
		Tier:      tier,
		TokenRef:  "qm:" + id,
		CreatedAt: testNow.Add(-age),
	}
}

func activeSeason(categories ...domain.Category) *schema.Season {
	return &schema.Season{
		ID:          "season-1",
		Categories:  datatypes.NewJSONType(categories),
		StartsAt:    testNow.Add(-time.Hour),
		EndsAt:      testNow.Add(time.Hour),
		GracePeriod: 72 * time.Hour,
	}
}

func TestProgress(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return([]schema.OwnedItem{
		ownedItem("a", catScience, domain.TierCategory, 3*time.Hour),
		ownedItem("b", catScience, domain.TierCategory, 2*time.Hour),
		ownedItem("c", catScience, domain.TierCategory, time.Hour),
		ownedItem("d", catHistory, domain.TierCategory, time.Hour),
		// Higher tiers never count as forge inputs.
		ownedItem("e", catSport, domain.TierUltimate, time.Hour),
	}, nil)
	fm.store.EXPECT().GetCurrentSeason(gomock.Any(), testNow).Return(activeSeason(catScience, catHistory), nil)

	progress, err := svc.Progress(context.Background(), "0xwallet")
	assert.NoError(t, err)
	assert.Len(t, progress, 3)

	ultimate := progress[0]
	assert.Equal(t, domain.TierUltimate, ultimate.Tier)
	assert.True(t, ultimate.Ready)
	assert.NotNil(t, ultimate.Category)
	assert.Equal(t, catScience, *ultimate.Category)
	assert.Equal(t, 3, ultimate.Owned[catScience])

	master := progress[1]
	assert.Equal(t, domain.TierMaster, master.Tier)
	assert.False(t, master.Ready, "sport bucket is empty")

	seasonal := progress[2]
	assert.Equal(t, domain.TierSeasonal, seasonal.Tier)
	assert.True(t, seasonal.Ready)
	assert.NotNil(t, seasonal.SeasonID)
}

func TestProgress_NoSeason(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return(nil, nil)
	fm.store.EXPECT().GetCurrentSeason(gomock.Any(), testNow).Return(nil, nil)
	fm.store.EXPECT().GetLatestSeason(gomock.Any()).Return(nil, nil)

	progress, err := svc.Progress(context.Background(), "0xwallet")
	assert.NoError(t, err)
	seasonal := progress[2]
	assert.False(t, seasonal.Ready)
	assert.Nil(t, seasonal.SeasonID)
}

func TestPlanUltimate_ConsumesOldestFirst(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return([]schema.OwnedItem{
		ownedItem("new", catScience, domain.TierCategory, time.Hour),
		ownedItem("oldest", catScience, domain.TierCategory, 72*time.Hour),
		ownedItem("mid", catScience, domain.TierCategory, 24*time.Hour),
		ownedItem("spare", catScience, domain.TierCategory, time.Minute),
		ownedItem("other", catHistory, domain.TierCategory, 90*time.Hour),
	}, nil)

	plan, err := svc.PlanUltimate(context.Background(), "0xwallet", catScience)
	assert.NoError(t, err)
	assert.Equal(t, domain.TierUltimate, plan.OutputTier)
	assert.Equal(t, catScience, plan.OutputCategory)
	assert.Equal(t, []string{"qm:oldest", "qm:mid", "qm:new"}, plan.InputRefs)
}

func TestPlanUltimate_NotReady(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return([]schema.OwnedItem{
		ownedItem("a", catScience, domain.TierCategory, time.Hour),
		ownedItem("b", catScience, domain.TierCategory, 2*time.Hour),
	}, nil)

	_, err := svc.PlanUltimate(context.Background(), "0xwallet", catScience)
	assert.ErrorIs(t, err, domain.ErrForgeNotReady)
}

func TestPlanMaster(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return([]schema.OwnedItem{
		ownedItem("s2", catScience, domain.TierCategory, time.Hour),
		ownedItem("s1", catScience, domain.TierCategory, 48*time.Hour),
		ownedItem("h1", catHistory, domain.TierCategory, 24*time.Hour),
		ownedItem("p1", catSport, domain.TierCategory, 12*time.Hour),
	}, nil)

	plan, err := svc.PlanMaster(context.Background(), "0xwallet")
	assert.NoError(t, err)
	assert.Equal(t, domain.TierMaster, plan.OutputTier)
	// One item per configured category, oldest of each bucket.
	assert.Equal(t, []string{"qm:s1", "qm:h1", "qm:p1"}, plan.InputRefs)
}

func TestPlanMaster_MissingCategory(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return([]schema.OwnedItem{
		ownedItem("s1", catScience, domain.TierCategory, time.Hour),
		ownedItem("h1", catHistory, domain.TierCategory, time.Hour),
	}, nil)

	_, err := svc.PlanMaster(context.Background(), "0xwallet")
	assert.ErrorIs(t, err, domain.ErrForgeNotReady)
}

func TestPlanSeasonal_DuringGraceWindow(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	ended := activeSeason(catScience, catHistory)
	ended.EndsAt = testNow.Add(-time.Hour)

	fm.store.EXPECT().GetCurrentSeason(gomock.Any(), testNow).Return(nil, nil)
	fm.store.EXPECT().GetLatestSeason(gomock.Any()).Return(ended, nil)
	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return([]schema.OwnedItem{
		ownedItem("s1", catScience, domain.TierCategory, time.Hour),
		ownedItem("h1", catHistory, domain.TierCategory, time.Hour),
	}, nil)

	plan, err := svc.PlanSeasonal(context.Background(), "0xwallet")
	assert.NoError(t, err)
	assert.Equal(t, domain.TierSeasonal, plan.OutputTier)
	assert.Equal(t, "season-1", plan.SeasonID)
	assert.ElementsMatch(t, []string{"qm:s1", "qm:h1"}, plan.InputRefs)
}

func TestPlanSeasonal_SeasonClosed(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	expired := activeSeason(catScience)
	expired.EndsAt = testNow.Add(-100 * time.Hour)

	fm.store.EXPECT().GetCurrentSeason(gomock.Any(), testNow).Return(nil, nil)
	fm.store.EXPECT().GetLatestSeason(gomock.Any()).Return(expired, nil)

	_, err := svc.PlanSeasonal(context.Background(), "0xwallet")
	assert.ErrorIs(t, err, domain.ErrSeasonClosed)
}

func TestPlanSeasonal_NotEnoughInputs(t *testing.T) {
	fm, svc := newService(t)
	defer fm.ctrl.Finish()

	fm.store.EXPECT().GetCurrentSeason(gomock.Any(), testNow).Return(activeSeason(catScience, catHistory), nil)
	fm.store.EXPECT().ListOwnedItems(gomock.Any(), "0xwallet").Return([]schema.OwnedItem{
		ownedItem("s1", catScience, domain.TierCategory, time.Hour),
	}, nil)

	_, err := svc.PlanSeasonal(context.Background(), "0xwallet")
	assert.ErrorIs(t, err, domain.ErrForgeNotReady)
}
