package cache

import "context"

// Notifier marks cached views stale after a mutation. The core never
// renders those views; it only tells the collaborator which scopes to
// drop.
type Notifier interface {
	InvalidateDashboard(ctx context.Context, userID string) error
	InvalidateDeck(ctx context.Context, userID string, deckID int64) error
}

// Noop is used when no cache is configured and in tests.
type Noop struct{}

func (Noop) InvalidateDashboard(ctx context.Context, userID string) error {
	return nil
}

func (Noop) InvalidateDeck(ctx context.Context, userID string, deckID int64) error {
	return nil
}
