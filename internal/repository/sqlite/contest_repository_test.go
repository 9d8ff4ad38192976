package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
	"github.com/rmello/flagforge/internal/repository/sqlite"
	"github.com/rmello/flagforge/internal/testutil"
)

type ContestRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ContestRepository
}

func (s *ContestRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewContestRepository(s.db)
}

func (s *ContestRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ContestRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	now := time.Now().UTC()
	hash := "bcrypt-hash"

	id, err := s.repo.Insert(ctx, models.Contest{
		Title:        "Spring Qualifiers",
		StartsAt:     now.Add(time.Hour),
		EndsAt:       now.Add(5 * time.Hour),
		PasswordHash: &hash,
	})
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	c, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal("Spring Qualifiers", c.Title)
	s.Assert().True(c.PasswordProtected())
}

func (s *ContestRepositorySuite) TestGet_NotFound() {
	ctx := context.Background()
	c, err := s.repo.Get(ctx, 99999)
	s.Assert().Error(err)
	s.Assert().Nil(c)
}

func (s *ContestRepositorySuite) TestList_NewestFirst() {
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.repo.Insert(ctx, models.Contest{Title: "older", StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-44 * time.Hour)})
	s.Require().NoError(err)
	_, err = s.repo.Insert(ctx, models.Contest{Title: "newer", StartsAt: now, EndsAt: now.Add(4 * time.Hour)})
	s.Require().NoError(err)

	contests, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(contests, 2)
	s.Assert().Equal("newer", contests[0].Title)
	s.Assert().Equal("older", contests[1].Title)
}

func (s *ContestRepositorySuite) TestGrantUpsertAndExpiry() {
	ctx := context.Background()
	now := time.Now().UTC()

	contestID, err := s.repo.Insert(ctx, models.Contest{Title: "locked", StartsAt: now, EndsAt: now.Add(time.Hour)})
	s.Require().NoError(err)
	res, err := s.db.Exec(`INSERT INTO users (username, password_hash) VALUES ('grace', 'x')`)
	s.Require().NoError(err)
	userID, err := res.LastInsertId()
	s.Require().NoError(err)

	_, err = s.repo.GetGrant(ctx, contestID, userID)
	s.Assert().Error(err)

	s.Require().NoError(s.repo.UpsertGrant(ctx, contestID, userID, now.Add(-time.Minute)))
	g, err := s.repo.GetGrant(ctx, contestID, userID)
	s.Require().NoError(err)
	s.Assert().False(g.Valid(now))

	// Re-authorizing extends the same grant instead of failing the insert.
	s.Require().NoError(s.repo.UpsertGrant(ctx, contestID, userID, now.Add(time.Hour)))
	g, err = s.repo.GetGrant(ctx, contestID, userID)
	s.Require().NoError(err)
	s.Assert().True(g.Valid(now))
}

func TestContestRepositorySuite(t *testing.T) {
	suite.Run(t, new(ContestRepositorySuite))
}
