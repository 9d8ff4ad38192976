package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rmello/flagforge/internal/models"
)

// MockChallengeRepository is a mock implementation of repository.ChallengeRepository
type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) Insert(ctx context.Context, ch models.Challenge) (int64, error) {
	args := m.Called(ctx, ch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChallengeRepository) Get(ctx context.Context, id int64) (*models.Challenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) List(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) UpdatePoints(ctx context.Context, id int64, points int) error {
	args := m.Called(ctx, id, points)
	return args.Error(0)
}
