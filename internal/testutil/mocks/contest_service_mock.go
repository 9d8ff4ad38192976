package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/services"
)

// MockContestService is a mock implementation of services.ContestService
type MockContestService struct {
	mock.Mock
}

func (m *MockContestService) Create(ctx context.Context, title string, startsAt, endsAt time.Time, password string) (*models.Contest, error) {
	args := m.Called(ctx, title, startsAt, endsAt, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contest), args.Error(1)
}

func (m *MockContestService) Get(ctx context.Context, id int64) (*models.Contest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contest), args.Error(1)
}

func (m *MockContestService) View(ctx context.Context, id int64, user *models.User) (*services.ContestView, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ContestView), args.Error(1)
}

func (m *MockContestService) List(ctx context.Context, user *models.User) ([]services.ContestView, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ContestView), args.Error(1)
}

func (m *MockContestService) Join(ctx context.Context, contestID, userID int64) error {
	args := m.Called(ctx, contestID, userID)
	return args.Error(0)
}

func (m *MockContestService) Authorize(ctx context.Context, contestID, userID int64, password string) error {
	args := m.Called(ctx, contestID, userID, password)
	return args.Error(0)
}

func (m *MockContestService) IsAuthorized(ctx context.Context, contestID, userID int64) bool {
	args := m.Called(ctx, contestID, userID)
	return args.Bool(0)
}

func (m *MockContestService) HasJoined(ctx context.Context, contestID, userID int64) (bool, error) {
	args := m.Called(ctx, contestID, userID)
	return args.Bool(0), args.Error(1)
}
