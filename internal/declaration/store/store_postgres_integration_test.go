//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"liaison/internal/declaration/models"
	"liaison/internal/declaration/store"
	"liaison/internal/identity"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	"liaison/pkg/testutil"
	"liaison/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
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
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) newDeclaration(owner id.UserID, first, last, country string) *models.Declaration {
	declaration, err := models.NewDeclaration(
		id.DeclarationID(uuid.New()),
		owner,
		first, last, country,
		identity.Fingerprint(first, last, country),
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	return declaration
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	owner := id.UserID(uuid.New())
	declaration := s.newDeclaration(owner, "Marie", "Dupont", "France")

	s.Require().NoError(s.store.Save(ctx, declaration))

	fetched, err := s.store.FindByOwnerAndID(ctx, owner, declaration.ID)
	s.Require().NoError(err)
	s.Equal(declaration.Fingerprint, fetched.Fingerprint)
	s.True(fetched.Active)

	byFingerprint, err := s.store.FindActiveByOwnerAndFingerprint(ctx, owner, declaration.Fingerprint)
	s.Require().NoError(err)
	s.Equal(declaration.ID, byFingerprint.ID)

	// Reads are owner-scoped
	_, err = s.store.FindByOwnerAndID(ctx, id.UserID(uuid.New()), declaration.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentDuplicateSaves verifies that the partial unique index lets
// exactly one of many racing duplicate submissions through.
func (s *PostgresStoreSuite) TestConcurrentDuplicateSaves() {
	ctx := context.Background()
	owner := id.UserID(uuid.New())

	result := testutil.RunConcurrent(50, func(_ int) error {
		return s.store.Save(ctx, s.newDeclaration(owner, "Marie", "Dupont", "France"))
	})

	s.Equal(int32(1), result.Successes, "exactly one save should succeed")
	s.Equal(int32(49), result.Conflicts, "all others should conflict")

	count, err := s.store.CountActive(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *PostgresStoreSuite) TestRetireAllowsRedeclaration() {
	ctx := context.Background()
	owner := id.UserID(uuid.New())
	declaration := s.newDeclaration(owner, "Marie", "Dupont", "France")
	s.Require().NoError(s.store.Save(ctx, declaration))

	// A second active declaration conflicts
	s.ErrorIs(s.store.Save(ctx, s.newDeclaration(owner, "marie", "DUPONT", "France")), sentinel.ErrAlreadyUsed)

	declaration.Retire(time.Now().UTC())
	s.Require().NoError(s.store.Update(ctx, declaration))

	// Retired rows no longer block the index or the candidate set
	_, err := s.store.FindActiveByOwnerAndFingerprint(ctx, owner, declaration.Fingerprint)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Require().NoError(s.store.Save(ctx, s.newDeclaration(owner, "Marie", "Dupont", "France")))

	list, err := s.store.ListByOwner(ctx, owner)
	s.Require().NoError(err)
	s.Len(list, 2)

	// Only the replacement is visible in the active listing
	active, err := s.store.ListActiveByOwner(ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.True(active[0].Active)
}

func (s *PostgresStoreSuite) TestListActiveByFingerprintCrossOwner() {
	ctx := context.Background()
	fingerprint := identity.Fingerprint("Jean", "Moreau", "Belgium")

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Save(ctx, s.newDeclaration(id.UserID(uuid.New()), "Jean", "Moreau", "Belgium")))
	}
	s.Require().NoError(s.store.Save(ctx, s.newDeclaration(id.UserID(uuid.New()), "Anna", "Moreau", "Belgium")))

	active, err := s.store.ListActiveByFingerprint(ctx, fingerprint)
	s.Require().NoError(err)
	s.Len(active, 3)
}

func (s *PostgresStoreSuite) TestUpdateUnknownDeclaration() {
	ctx := context.Background()
	declaration := s.newDeclaration(id.UserID(uuid.New()), "Marie", "Dupont", "France")
	declaration.Retire(time.Now().UTC())
	s.ErrorIs(s.store.Update(ctx, declaration), sentinel.ErrNotFound)
}
