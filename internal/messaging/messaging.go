// Package messaging defines the event transport seams between the API
// process, which finalizes sessions, and the worker process, which scores
// them into the leaderboard.
package messaging

import (
	"context"

	"github.com/quizmint/qm-engine/internal/domain"
)

// Publisher emits session completion events. Publishing is asynchronous
// with respect to the completion response: a publish failure is logged and
// retried by redelivery, never surfaced to the player.
//
//go:generate mockgen -source=messaging.go -destination=../mocks/messaging.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishSessionCompleted publishes a terminal session outcome
	PublishSessionCompleted(ctx context.Context, event *domain.SessionCompleted) error

	// Close closes the underlying connection
	Close()
}

// CompletedHandler processes one session completion event. Returning an
// error triggers redelivery, so handlers must be idempotent.
type CompletedHandler func(ctx context.Context, event *domain.SessionCompleted) error

// Subscriber delivers session completion events to a handler.
//
//go:generate mockgen -source=messaging.go -destination=../mocks/messaging.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// Subscribe starts consuming until the context is canceled
	Subscribe(ctx context.Context, handler CompletedHandler) error

	// Close drains and closes the underlying connection
	Close()
}
