package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rmello/flagforge/internal/errors"
	"github.com/rmello/flagforge/internal/gate"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
	"github.com/rmello/flagforge/internal/services"
	"github.com/rmello/flagforge/internal/testutil/mocks"
)

type submissionFixture struct {
	challenges *mocks.MockChallengeRepository
	solves     *mocks.MockSolveRepository
	contests   *mocks.MockContestService
	svc        services.SubmissionService
}

func newSubmissionFixture() *submissionFixture {
	f := &submissionFixture{
		challenges: new(mocks.MockChallengeRepository),
		solves:     new(mocks.MockSolveRepository),
		contests:   new(mocks.MockContestService),
	}
	f.svc = services.NewSubmissionService(f.challenges, f.solves, f.contests)
	return f
}

func activeContest(id int64) *models.Contest {
	now := time.Now().UTC()
	return &models.Contest{ID: id, Title: "live", StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)}
}

func contestChallenge(contestID int64) *models.Challenge {
	return &models.Challenge{ID: 10, ContestID: &contestID, Title: "pwn-me", Category: "pwn", Flag: "flag{correct}", Points: 200}
}

func TestSubmit_EmptyFlagRejectedBeforeStoreAccess(t *testing.T) {
	f := newSubmissionFixture()
	user := &models.User{ID: 1}

	result, err := f.svc.Submit(context.Background(), user, 10, "   ")
	assert.Nil(t, result)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	f.challenges.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSubmit_DeniedWhenNotJoined(t *testing.T) {
	f := newSubmissionFixture()
	user := &models.User{ID: 1, Username: "alice"}
	ch := contestChallenge(5)

	f.challenges.On("Get", mock.Anything, int64(10)).Return(ch, nil)
	f.contests.On("Get", mock.Anything, int64(5)).Return(activeContest(5), nil)
	f.contests.On("HasJoined", mock.Anything, int64(5), int64(1)).Return(false, nil)
	f.contests.On("IsAuthorized", mock.Anything, int64(5), int64(1)).Return(true)

	result, err := f.svc.Submit(context.Background(), user, 10, "flag{correct}")
	require.NoError(t, err)
	assert.Equal(t, services.StatusDenied, result.Status)
	assert.Equal(t, gate.ReasonNotJoined, result.Reason)
	// A denied submission never reaches the ledger.
	f.solves.AssertNotCalled(t, "CommitSolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_WrongFlagIsAnOutcomeNotAnError(t *testing.T) {
	f := newSubmissionFixture()
	user := &models.User{ID: 1}
	ch := contestChallenge(5)

	f.challenges.On("Get", mock.Anything, int64(10)).Return(ch, nil)
	f.contests.On("Get", mock.Anything, int64(5)).Return(activeContest(5), nil)
	f.contests.On("HasJoined", mock.Anything, int64(5), int64(1)).Return(true, nil)
	f.contests.On("IsAuthorized", mock.Anything, int64(5), int64(1)).Return(true)

	result, err := f.svc.Submit(context.Background(), user, 10, "flag{wrong}")
	require.NoError(t, err)
	assert.Equal(t, services.StatusIncorrect, result.Status)
	f.solves.AssertNotCalled(t, "CommitSolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_AcceptedWithFirstBlood(t *testing.T) {
	f := newSubmissionFixture()
	user := &models.User{ID: 1}
	ch := contestChallenge(5)
	record := &models.SolveRecord{ID: 99, UserID: 1, ChallengeID: 10, Points: 200, SolvedAt: time.Now().UTC()}

	f.challenges.On("Get", mock.Anything, int64(10)).Return(ch, nil)
	f.contests.On("Get", mock.Anything, int64(5)).Return(activeContest(5), nil)
	f.contests.On("HasJoined", mock.Anything, int64(5), int64(1)).Return(true, nil)
	f.contests.On("IsAuthorized", mock.Anything, int64(5), int64(1)).Return(true)
	f.solves.On("CommitSolve", mock.Anything, int64(1), *ch).Return(record, nil)
	f.solves.On("ListByChallenge", mock.Anything, int64(10)).Return([]models.SolveRecord{*record}, nil)

	// Normalization accepts case and whitespace variants of the flag.
	result, err := f.svc.Submit(context.Background(), user, 10, "  FLAG{Correct} ")
	require.NoError(t, err)
	assert.Equal(t, services.StatusAccepted, result.Status)
	assert.Equal(t, 200, result.PointsAwarded)
	assert.True(t, result.FirstBlood)
}

func TestSubmit_LaterSolveIsNotFirstBlood(t *testing.T) {
	f := newSubmissionFixture()
	user := &models.User{ID: 2}
	ch := contestChallenge(5)
	now := time.Now().UTC()
	earlier := models.SolveRecord{ID: 90, UserID: 1, ChallengeID: 10, SolvedAt: now.Add(-time.Minute)}
	record := &models.SolveRecord{ID: 99, UserID: 2, ChallengeID: 10, Points: 200, SolvedAt: now}

	f.challenges.On("Get", mock.Anything, int64(10)).Return(ch, nil)
	f.contests.On("Get", mock.Anything, int64(5)).Return(activeContest(5), nil)
	f.contests.On("HasJoined", mock.Anything, int64(5), int64(2)).Return(true, nil)
	f.contests.On("IsAuthorized", mock.Anything, int64(5), int64(2)).Return(true)
	f.solves.On("CommitSolve", mock.Anything, int64(2), *ch).Return(record, nil)
	f.solves.On("ListByChallenge", mock.Anything, int64(10)).Return([]models.SolveRecord{*record, earlier}, nil)

	result, err := f.svc.Submit(context.Background(), user, 10, "flag{correct}")
	require.NoError(t, err)
	assert.Equal(t, services.StatusAccepted, result.Status)
	assert.False(t, result.FirstBlood)
}

func TestSubmit_ResubmitAfterAcceptIsIdempotent(t *testing.T) {
	f := newSubmissionFixture()
	user := &models.User{ID: 1}
	ch := contestChallenge(5)

	f.challenges.On("Get", mock.Anything, int64(10)).Return(ch, nil)
	f.contests.On("Get", mock.Anything, int64(5)).Return(activeContest(5), nil)
	f.contests.On("HasJoined", mock.Anything, int64(5), int64(1)).Return(true, nil)
	f.contests.On("IsAuthorized", mock.Anything, int64(5), int64(1)).Return(true)
	f.solves.On("CommitSolve", mock.Anything, int64(1), *ch).Return(nil, repository.ErrAlreadySolved)

	result, err := f.svc.Submit(context.Background(), user, 10, "flag{correct}")
	require.NoError(t, err)
	assert.Equal(t, services.StatusAlreadySolved, result.Status)
	assert.Equal(t, 0, result.PointsAwarded)
}

func TestSubmit_WargameChallengeSkipsContestGate(t *testing.T) {
	f := newSubmissionFixture()
	user := &models.User{ID: 1}
	ch := &models.Challenge{ID: 11, Title: "warmup", Flag: "flag{open}", Points: 50}
	record := &models.SolveRecord{ID: 1, UserID: 1, ChallengeID: 11, Points: 50, SolvedAt: time.Now().UTC()}

	f.challenges.On("Get", mock.Anything, int64(11)).Return(ch, nil)
	f.solves.On("CommitSolve", mock.Anything, int64(1), *ch).Return(record, nil)
	f.solves.On("ListByChallenge", mock.Anything, int64(11)).Return([]models.SolveRecord{*record}, nil)

	result, err := f.svc.Submit(context.Background(), user, 11, "flag{open}")
	require.NoError(t, err)
	assert.Equal(t, services.StatusAccepted, result.Status)
	f.contests.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
