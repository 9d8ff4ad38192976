package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rmello/flagforge/internal/errors"
	"github.com/rmello/flagforge/internal/gate"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository/sqlite"
	"github.com/rmello/flagforge/internal/services"
	"github.com/rmello/flagforge/internal/testutil"
)

type ChallengeServiceSuite struct {
	suite.Suite
	db       *sql.DB
	contests services.ContestService
	svc      services.ChallengeService
}

func (s *ChallengeServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.contests = services.NewContestService(
		sqlite.NewContestRepository(s.db),
		sqlite.NewParticipantRepository(s.db),
		7*24*time.Hour,
	)
	s.svc = services.NewChallengeService(
		sqlite.NewChallengeRepository(s.db),
		sqlite.NewSolveRepository(s.db),
		sqlite.NewUserRepository(s.db),
		s.contests,
	)
}

func (s *ChallengeServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ChallengeServiceSuite) insertUser(username string, admin bool) *models.User {
	res, err := s.db.Exec(`INSERT INTO users (username, password_hash, is_admin) VALUES (?, 'x', ?)`, username, admin)
	s.Require().NoError(err)
	id, err := res.LastInsertId()
	s.Require().NoError(err)
	return &models.User{ID: id, Username: username, IsAdmin: admin}
}

func (s *ChallengeServiceSuite) createChallenge(contestID *int64, title string, points int) *models.Challenge {
	ch, err := s.svc.Create(context.Background(), models.Challenge{
		ContestID: contestID,
		Title:     title,
		Category:  "pwn",
		Flag:      "flag{x}",
		Points:    points,
	})
	s.Require().NoError(err)
	return ch
}

// hiddenContest is password protected and has not started yet, so nothing
// about it may be visible to a regular user.
func (s *ChallengeServiceSuite) hiddenContest() *models.Contest {
	now := time.Now().UTC()
	c, err := s.contests.Create(context.Background(), "invite-only", now.Add(24*time.Hour), now.Add(48*time.Hour), "hunter2")
	s.Require().NoError(err)
	return c
}

func (s *ChallengeServiceSuite) TestListForUser_UnfilteredListsOnlyWargame() {
	ctx := context.Background()
	user := s.insertUser("alice", false)
	hidden := s.hiddenContest()
	s.createChallenge(&hidden.ID, "top-secret-chall", 500)
	s.createChallenge(nil, "baby-rev", 100)

	views, err := s.svc.ListForUser(ctx, user, models.ChallengeFilter{})
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Assert().Equal("baby-rev", views[0].Title)
	s.Assert().Nil(views[0].ContestID)
}

func (s *ChallengeServiceSuite) TestListForUser_ContestFilterGoesThroughGate() {
	ctx := context.Background()
	user := s.insertUser("bob", false)
	hidden := s.hiddenContest()
	s.createChallenge(&hidden.ID, "top-secret-chall", 500)

	_, err := s.svc.ListForUser(ctx, user, models.ChallengeFilter{ContestID: &hidden.ID})
	s.Require().Error(err)
	s.Assert().Equal(errors.ErrCodeForbidden, err.(*errors.AppError).Code)
	s.Assert().Contains(err.Error(), string(gate.ReasonNotStarted))
}

func (s *ChallengeServiceSuite) TestGetForUser_HiddenContestChallengeDenied() {
	ctx := context.Background()
	user := s.insertUser("carol", false)
	hidden := s.hiddenContest()
	ch := s.createChallenge(&hidden.ID, "top-secret-chall", 500)

	_, err := s.svc.GetForUser(ctx, user, ch.ID)
	s.Require().Error(err)
	s.Assert().Equal(errors.ErrCodeForbidden, err.(*errors.AppError).Code)

	_, err = s.svc.Stats(ctx, user, ch.ID)
	s.Require().Error(err)
	s.Assert().Equal(errors.ErrCodeForbidden, err.(*errors.AppError).Code)

	_, err = s.svc.Bloods(ctx, user, ch.ID, 3)
	s.Require().Error(err)
	s.Assert().Equal(errors.ErrCodeForbidden, err.(*errors.AppError).Code)
}

func (s *ChallengeServiceSuite) TestGetForUser_AdminBypassesGate() {
	ctx := context.Background()
	admin := s.insertUser("root", true)
	hidden := s.hiddenContest()
	ch := s.createChallenge(&hidden.ID, "top-secret-chall", 500)

	got, err := s.svc.GetForUser(ctx, admin, ch.ID)
	s.Require().NoError(err)
	s.Assert().Equal(ch.ID, got.ID)
}

func (s *ChallengeServiceSuite) TestGetForUser_WargameChallengeIsOpen() {
	ctx := context.Background()
	user := s.insertUser("dave", false)
	ch := s.createChallenge(nil, "baby-rev", 100)

	got, err := s.svc.GetForUser(ctx, user, ch.ID)
	s.Require().NoError(err)
	s.Assert().Equal("baby-rev", got.Title)
}

func (s *ChallengeServiceSuite) TestStats_ActiveContestAfterAuthorize() {
	ctx := context.Background()
	user := s.insertUser("erin", false)
	now := time.Now().UTC()
	c, err := s.contests.Create(ctx, "running", now.Add(-time.Hour), now.Add(time.Hour), "opensesame")
	s.Require().NoError(err)
	ch := s.createChallenge(&c.ID, "fmt-string", 200)

	_, err = s.svc.Stats(ctx, user, ch.ID)
	s.Require().Error(err)

	s.Require().NoError(s.contests.Authorize(ctx, c.ID, user.ID, "opensesame"))

	stats, err := s.svc.Stats(ctx, user, ch.ID)
	s.Require().NoError(err)
	s.Assert().Equal(ch.ID, stats.ChallengeID)
	s.Assert().Equal(0, stats.SolveCount)
}

func TestChallengeServiceSuite(t *testing.T) {
	suite.Run(t, new(ChallengeServiceSuite))
}
