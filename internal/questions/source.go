package questions

import (
	"context"
	"fmt"

	"github.com/quizmint/qm-engine/internal/adapter"
	"github.com/quizmint/qm-engine/internal/domain"
	"github.com/quizmint/qm-engine/internal/store"
	"github.com/quizmint/qm-engine/internal/store/schema"
)

// Source deals questions to new sessions. Selection favors questions the
// bank served least recently and skips anything the identity already saw
// today, so daily repeat rate stays low without per-identity history.
//
//go:generate mockgen -source=source.go -destination=../mocks/questions.go -package=mocks -mock_names=Source=MockQuestionSource
type Source interface {
	// Deal returns exactly count questions for the category or fails
	Deal(ctx context.Context, category domain.Category, count int, excludeIDs []string) ([]schema.Question, error)
}

type storeSource struct {
	store store.Store
	clock adapter.Clock
}

// NewSource creates a question source backed by the relational bank
func NewSource(st store.Store, clock adapter.Clock) Source {
	return &storeSource{store: st, clock: clock}
}

func (s *storeSource) Deal(ctx context.Context, category domain.Category, count int, excludeIDs []string) ([]schema.Question, error) {
	qs, err := s.store.SelectQuestions(ctx, category, count, excludeIDs)
	if err != nil {
		return nil, err
	}
	// Fall back to repeats before refusing to deal: a small bank must not
	// lock players out for the rest of the day.
	if len(qs) < count && len(excludeIDs) > 0 {
		qs, err = s.store.SelectQuestions(ctx, category, count, nil)
		if err != nil {
			return nil, err
		}
	}
	if len(qs) < count {
		return nil, fmt.Errorf("question bank for category %q has %d questions, need %d", category, len(qs), count)
	}

	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	if err := s.store.MarkQuestionsServed(ctx, ids, s.clock.Now()); err != nil {
		return nil, err
	}
	return qs, nil
}
