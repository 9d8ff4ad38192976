package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rmello/flagforge/internal/models"
)

// MockSolveRepository is a mock implementation of repository.SolveRepository
type MockSolveRepository struct {
	mock.Mock
}

func (m *MockSolveRepository) CommitSolve(ctx context.Context, userID int64, ch models.Challenge) (*models.SolveRecord, error) {
	args := m.Called(ctx, userID, ch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SolveRecord), args.Error(1)
}

func (m *MockSolveRepository) ListByChallenge(ctx context.Context, challengeID int64) ([]models.SolveRecord, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SolveRecord), args.Error(1)
}

func (m *MockSolveRepository) List(ctx context.Context, filter models.SolveFilter) ([]models.SolveRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SolveRecord), args.Error(1)
}

func (m *MockSolveRepository) RecentFeed(ctx context.Context, contestID int64, limit int) ([]models.SolveFeedEntry, error) {
	args := m.Called(ctx, contestID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SolveFeedEntry), args.Error(1)
}
