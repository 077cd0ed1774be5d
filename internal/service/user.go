package service

import (
	"context"
	"sync"

	"offersbot/internal/domain"
	"offersbot/internal/repository"

	"go.uber.org/zap"
)

// UserService wraps the durable user repository with a process-local
// read cache. Every mutation goes to the repository first and updates
// the cache in the same call, so a local write is never followed by a
// stale read. A failed durable write leaves the cache untouched and
// propagates the error.
type UserService struct {
	repo   repository.UserRepository
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[int64]domain.User
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
		cache:  make(map[int64]domain.User),
	}
}

// GetOrCreate returns the user, creating the durable record with
// defaults on first sight. Repeated calls are idempotent reads.
func (s *UserService) GetOrCreate(ctx context.Context, userID int64) (*domain.User, error) {
	s.mu.RLock()
	if u, ok := s.cache[userID]; ok {
		s.mu.RUnlock()
		return &u, nil
	}
	s.mu.RUnlock()

	u, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[userID] = *u
	s.mu.Unlock()

	return u, nil
}

// SetSubscribed persists the subscription flag and updates the cache
func (s *UserService) SetSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	if err := s.repo.SetSubscribed(ctx, userID, subscribed); err != nil {
		return err
	}

	s.mu.Lock()
	if u, ok := s.cache[userID]; ok {
		u.Subscribed = subscribed
		s.cache[userID] = u
	}
	s.mu.Unlock()

	s.logger.Info("Subscription flag updated",
		zap.Int64("user_id", userID),
		zap.Bool("subscribed", subscribed),
	)
	return nil
}

// IncrementQuestions bumps the durable question counter and returns the
// new value
func (s *UserService) IncrementQuestions(ctx context.Context, userID int64) (int, error) {
	count, err := s.repo.IncrementQuestions(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	if u, ok := s.cache[userID]; ok {
		u.QuestionsAsked = count
		s.cache[userID] = u
	}
	s.mu.Unlock()

	return count, nil
}

// QuestionCount returns the user's current question counter
func (s *UserService) QuestionCount(ctx context.Context, userID int64) (int, error) {
	u, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.QuestionsAsked, nil
}

// Stats returns aggregate user counters straight from the repository
func (s *UserService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

// Ping probes the durable store for the health endpoint
func (s *UserService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
