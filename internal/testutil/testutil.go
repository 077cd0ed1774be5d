package testutil

import (
	"time"

	"offersbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, subscribed bool, questionsAsked int) *domain.User {
	return &domain.User{
		ID:             userID,
		Subscribed:     subscribed,
		QuestionsAsked: questionsAsked,
		CreatedAt:      time.Now(),
	}
}
