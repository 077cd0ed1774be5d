package service

import (
	"context"
	"errors"
	"testing"

	"offersbot/internal/domain"
	"offersbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_GetOrCreateIsIdempotent(t *testing.T) {
	repo := new(testutil.MockUserRepository)
	stored := testutil.NewTestUser(42, false, 0)
	repo.On("GetOrCreate", mock.Anything, int64(42)).Return(stored, nil).Once()

	svc := NewUserService(repo, testutil.NewTestLogger())

	first, err := svc.GetOrCreate(context.Background(), 42)
	assert.NoError(t, err)

	second, err := svc.GetOrCreate(context.Background(), 42)
	assert.NoError(t, err)

	// Second call is served from the cache with the same creation time.
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	repo.AssertNumberOfCalls(t, "GetOrCreate", 1)
}

func TestUserService_SetSubscribedWritesThroughCache(t *testing.T) {
	repo := new(testutil.MockUserRepository)
	repo.On("GetOrCreate", mock.Anything, int64(42)).
		Return(testutil.NewTestUser(42, false, 0), nil).Once()
	repo.On("SetSubscribed", mock.Anything, int64(42), true).Return(nil)

	svc := NewUserService(repo, testutil.NewTestLogger())

	_, err := svc.GetOrCreate(context.Background(), 42)
	assert.NoError(t, err)

	assert.NoError(t, svc.SetSubscribed(context.Background(), 42, true))

	// A read right after a local write must see the new value without
	// touching the repository again.
	u, err := svc.GetOrCreate(context.Background(), 42)
	assert.NoError(t, err)
	assert.True(t, u.Subscribed)
	repo.AssertNumberOfCalls(t, "GetOrCreate", 1)
}

func TestUserService_IncrementQuestionsWritesThroughCache(t *testing.T) {
	repo := new(testutil.MockUserRepository)
	repo.On("GetOrCreate", mock.Anything, int64(42)).
		Return(testutil.NewTestUser(42, true, 0), nil).Once()
	repo.On("IncrementQuestions", mock.Anything, int64(42)).Return(1, nil)

	svc := NewUserService(repo, testutil.NewTestLogger())

	_, err := svc.GetOrCreate(context.Background(), 42)
	assert.NoError(t, err)

	count, err := svc.IncrementQuestions(context.Background(), 42)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.QuestionCount(context.Background(), 42)
	assert.NoError(t, err)
	assert.Equal(t, 1, got)
	repo.AssertNumberOfCalls(t, "GetOrCreate", 1)
}

func TestUserService_FailedWriteLeavesCacheUntouched(t *testing.T) {
	repo := new(testutil.MockUserRepository)
	repo.On("GetOrCreate", mock.Anything, int64(42)).
		Return(testutil.NewTestUser(42, false, 0), nil).Once()
	repo.On("SetSubscribed", mock.Anything, int64(42), true).
		Return(errors.New("write failed"))

	svc := NewUserService(repo, testutil.NewTestLogger())

	_, err := svc.GetOrCreate(context.Background(), 42)
	assert.NoError(t, err)

	err = svc.SetSubscribed(context.Background(), 42, true)
	assert.Error(t, err)

	u, err := svc.GetOrCreate(context.Background(), 42)
	assert.NoError(t, err)
	assert.False(t, u.Subscribed)
}

func TestUserService_Stats(t *testing.T) {
	repo := new(testutil.MockUserRepository)
	repo.On("Stats", mock.Anything).
		Return(domain.Stats{TotalUsers: 7, SubscribedUsers: 3}, nil)

	svc := NewUserService(repo, testutil.NewTestLogger())

	stats, err := svc.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(7), stats.TotalUsers)
	assert.Equal(t, int64(3), stats.SubscribedUsers)
}
