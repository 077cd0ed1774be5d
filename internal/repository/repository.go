package repository

import (
	"context"

	"offersbot/internal/domain"
)

// UserRepository defines durable user data operations
type UserRepository interface {
	// GetOrCreate inserts the user with defaults if absent and returns
	// the stored row. Creation is a single atomic statement, safe under
	// concurrent first-contact events for the same id.
	GetOrCreate(ctx context.Context, userID int64) (*domain.User, error)
	SetSubscribed(ctx context.Context, userID int64, subscribed bool) error
	// IncrementQuestions bumps the question counter and returns the new value.
	IncrementQuestions(ctx context.Context, userID int64) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
	// Ping is a trivial liveness probe used by the health endpoint.
	Ping(ctx context.Context) error
}
