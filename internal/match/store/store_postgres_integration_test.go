//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	declmodels "liaison/internal/declaration/models"
	declstore "liaison/internal/declaration/store"
	"liaison/internal/identity"
	"liaison/internal/match/models"
	"liaison/internal/match/store"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	"liaison/pkg/testutil"
	"liaison/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres     *containers.PostgresContainer
	store        *store.PostgresStore
	declarations *declstore.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.declarations = declstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

// createDeclaration persists a declaration row to satisfy the FK on matches.
func (s *PostgresStoreSuite) createDeclaration(owner id.UserID) id.DeclarationID {
	declaration, err := declmodels.NewDeclaration(
		id.DeclarationID(uuid.New()),
		owner,
		"Jean", "Moreau", "France",
		identity.Fingerprint("Jean", "Moreau", "France"),
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.declarations.Save(context.Background(), declaration))
	return declaration.ID
}

func (s *PostgresStoreSuite) TestSaveAndRead() {
	ctx := context.Background()
	declA := s.createDeclaration(id.UserID(uuid.New()))
	declB := s.createDeclaration(id.UserID(uuid.New()))

	match, err := models.NewMatch(id.MatchID(uuid.New()), declA, declB, "fp", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, match))

	fetched, err := s.store.FindByID(ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(match.DeclarationID1, fetched.DeclarationID1)
	s.Equal(match.DeclarationID2, fetched.DeclarationID2)
	s.InDelta(models.DefaultScore, fetched.Score, 0.0001)

	fromA, err := s.store.ListByDeclarations(ctx, []id.DeclarationID{declA})
	s.Require().NoError(err)
	s.Len(fromA, 1)
	fromB, err := s.store.ListByDeclarations(ctx, []id.DeclarationID{declB})
	s.Require().NoError(err)
	s.Len(fromB, 1)
}

// TestConcurrentPairInserts verifies the pair-unique constraint collapses
// racing inserts of the same unordered pair to a single row.
func (s *PostgresStoreSuite) TestConcurrentPairInserts() {
	ctx := context.Background()
	declA := s.createDeclaration(id.UserID(uuid.New()))
	declB := s.createDeclaration(id.UserID(uuid.New()))

	result := testutil.RunConcurrent(50, func(idx int) error {
		// Alternate argument order; canonical ordering must normalize it.
		a, b := declA, declB
		if idx%2 == 1 {
			a, b = b, a
		}
		match, err := models.NewMatch(id.MatchID(uuid.New()), a, b, "fp", time.Now().UTC())
		if err != nil {
			return err
		}
		return s.store.Save(ctx, match)
	})

	s.Equal(int32(1), result.Successes, "exactly one insert should succeed")
	s.Equal(int32(49), result.Conflicts, "all others should conflict")

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *PostgresStoreSuite) TestMarkNotifiedPerSide() {
	ctx := context.Background()
	declA := s.createDeclaration(id.UserID(uuid.New()))
	declB := s.createDeclaration(id.UserID(uuid.New()))

	match, err := models.NewMatch(id.MatchID(uuid.New()), declA, declB, "fp", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, match))

	side, ok := match.SideOf(declA)
	s.Require().True(ok)

	unread, err := s.store.CountUnreadByDeclarations(ctx, []id.DeclarationID{declA})
	s.Require().NoError(err)
	s.Equal(int64(1), unread)

	s.Require().NoError(s.store.MarkNotified(ctx, match.ID, side))

	unread, err = s.store.CountUnreadByDeclarations(ctx, []id.DeclarationID{declA})
	s.Require().NoError(err)
	s.Equal(int64(0), unread)
	unread, err = s.store.CountUnreadByDeclarations(ctx, []id.DeclarationID{declB})
	s.Require().NoError(err)
	s.Equal(int64(1), unread)

	s.ErrorIs(s.store.MarkNotified(ctx, id.MatchID(uuid.New()), models.Side1), sentinel.ErrNotFound)
}
