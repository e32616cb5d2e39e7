package questions_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/logger"
	"github.com/quizmint/qm-engine/internal/mocks"
	"github.com/quizmint/qm-engine/internal/questions"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize(logger.Config{Debug: false})
	os.Exit(m.Run())
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newSource(t *testing.T) (questions.Source, *mocks.MockStore) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(testNow).AnyTimes()
	return questions.NewSource(st, clock), st
}

func bank(ids ...string) []schema.Question {
	qs := make([]schema.Question, len(ids))
	for i, id := range ids {
		qs[i] = schema.Question{ID: id, Category: domain.Category("science")}
	}
	return qs
}

func TestDeal(t *testing.T) {
	src, st := newSource(t)

	st.EXPECT().SelectQuestions(gomock.Any(), domain.Category("science"), 3, []string{"q9"}).
		Return(bank("q1", "q2", "q3"), nil)
	st.EXPECT().MarkQuestionsServed(gomock.Any(), []string{"q1", "q2", "q3"}, testNow).Return(nil)

	qs, err := src.Deal(context.Background(), "science", 3, []string{"q9"})
	assert.NoError(t, err)
	assert.Len(t, qs, 3)
}

func TestDeal_FallsBackToRepeatsWhenBankIsShort(t *testing.T) {
	src, st := newSource(t)

	excludes := []string{"q1", "q2"}
	gomock.InOrder(
		st.EXPECT().SelectQuestions(gomock.Any(), domain.Category("science"), 3, excludes).
			Return(bank("q3"), nil),
		st.EXPECT().SelectQuestions(gomock.Any(), domain.Category("science"), 3, nil).
			Return(bank("q1", "q2", "q3"), nil),
	)
	st.EXPECT().MarkQuestionsServed(gomock.Any(), []string{"q1", "q2", "q3"}, testNow).Return(nil)

	qs, err := src.Deal(context.Background(), "science", 3, excludes)
	assert.NoError(t, err)
	assert.Len(t, qs, 3)
}

func TestDeal_BankTooSmall(t *testing.T) {
	src, st := newSource(t)

	gomock.InOrder(
		st.EXPECT().SelectQuestions(gomock.Any(), domain.Category("science"), 3, []string{"q1"}).
			Return(bank("q2"), nil),
		st.EXPECT().SelectQuestions(gomock.Any(), domain.Category("science"), 3, nil).
			Return(bank("q1", "q2"), nil),
	)

	_, err := src.Deal(context.Background(), "science", 3, []string{"q1"})
	assert.ErrorContains(t, err, "has 2 questions, need 3")
}

func TestDeal_NoExcludesSkipsFallback(t *testing.T) {
	src, st := newSource(t)

	st.EXPECT().SelectQuestions(gomock.Any(), domain.Category("science"), 3, nil).
		Return(bank("q1"), nil)

	_, err := src.Deal(context.Background(), "science", 3, nil)
	assert.ErrorContains(t, err, "need 3")
}
