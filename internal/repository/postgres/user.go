package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"offersbot/internal/domain"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetOrCreate inserts the user if absent and returns the stored row.
// The no-op DO UPDATE makes RETURNING yield the row in both the insert
// and the already-exists case, so concurrent first contacts for the
// same id cannot create duplicates or race a separate SELECT.
func (r *UserRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.User, error) {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, subscribed, questions_asked, created_at
	`

	var u domain.User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID, &u.Subscribed, &u.QuestionsAsked, &u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user %d: %w", userID, err)
	}

	return &u, nil
}

// SetSubscribed updates the subscription flag
func (r *UserRepo) SetSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	query := `UPDATE users SET subscribed = $2 WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, userID, subscribed)
	if err != nil {
		return fmt.Errorf("failed to set subscribed for user %d: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %d not found", userID)
	}

	return nil
}

// IncrementQuestions bumps the question counter and returns the new value
func (r *UserRepo) IncrementQuestions(ctx context.Context, userID int64) (int, error) {
	query := `
		UPDATE users
		SET questions_asked = questions_asked + 1
		WHERE user_id = $1
		RETURNING questions_asked
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment questions for user %d: %w", userID, err)
	}

	return count, nil
}

// Stats returns total and subscribed user counts
func (r *UserRepo) Stats(ctx context.Context) (domain.Stats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE subscribed)
		FROM users
	`

	var s domain.Stats
	err := r.db.QueryRowContext(ctx, query).Scan(&s.TotalUsers, &s.SubscribedUsers)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to read user stats: %w", err)
	}

	return s, nil
}

// Ping checks database liveness
func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
