package domain

import "time"

// User represents a bot user
type User struct {
	ID             int64
	Subscribed     bool
	QuestionsAsked int
	CreatedAt      time.Time
}

// Stats holds aggregate user counters for admin reporting
type Stats struct {
	TotalUsers      int64
	SubscribedUsers int64
}

// Role classifies a user for gating and metering purposes.
// It is derived from configuration and never persisted.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)
