package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rmello/flagforge/internal/models"
)

// MockParticipantRepository is a mock implementation of repository.ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Join(ctx context.Context, contestID, userID int64) error {
	args := m.Called(ctx, contestID, userID)
	return args.Error(0)
}

func (m *MockParticipantRepository) Get(ctx context.Context, contestID, userID int64) (*models.Participant, error) {
	args := m.Called(ctx, contestID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) SolvedChallengeIDs(ctx context.Context, contestID, userID int64) ([]int64, error) {
	args := m.Called(ctx, contestID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockParticipantRepository) Standings(ctx context.Context, contestID int64) ([]models.Standing, error) {
	args := m.Called(ctx, contestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Standing), args.Error(1)
}
