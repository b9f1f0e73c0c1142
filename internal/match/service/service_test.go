package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	declmodels "liaison/internal/declaration/models"
	declstore "liaison/internal/declaration/store"
	"liaison/internal/identity"
	"liaison/internal/match/matcher"
	matchstore "liaison/internal/match/store"
	profilestore "liaison/internal/profile/store"
	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
)

type fixture struct {
	declarations *declstore.InMemoryStore
	matches      *matchstore.InMemoryStore
	matcher      *matcher.Matcher
	service      *Service
}

func newFixture() *fixture {
	declarations := declstore.New()
	matches := matchstore.New()
	return &fixture{
		declarations: declarations,
		matches:      matches,
		matcher:      matcher.New(declarations, matches, profilestore.New()),
		service:      NewService(matches, declarations),
	}
}

func (f *fixture) declare(t *testing.T, owner id.UserID, first, last, country string) *declmodels.Declaration {
	t.Helper()
	declaration, err := declmodels.NewDeclaration(
		id.DeclarationID(uuid.New()),
		owner,
		first, last, country,
		identity.Fingerprint(first, last, country),
		time.Now().UTC(),
	)
	require.NoError(t, err)
	require.NoError(t, f.declarations.Save(context.Background(), declaration))
	return declaration
}

// declareMatched sets up a cross-owner match and returns both declarations.
func (f *fixture) declareMatched(t *testing.T, alice, bob id.UserID) (*declmodels.Declaration, *declmodels.Declaration) {
	t.Helper()
	aliceDecl := f.declare(t, alice, "Jean", "Moreau", "France")
	bobDecl := f.declare(t, bob, "Jean", "Moreau", "France")
	created, err := f.matcher.MatchNew(context.Background(), bobDecl, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, created, 1)
	return aliceDecl, bobDecl
}

func TestListForOwnerAnonymity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := id.UserID(uuid.New())
	bob := id.UserID(uuid.New())
	aliceDecl, bobDecl := f.declareMatched(t, alice, bob)

	aliceViews, err := f.service.ListForOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceViews, 1)
	assert.Equal(t, aliceDecl.ID, aliceViews[0].DeclarationID, "view points at the owner's own declaration")
	assert.Equal(t, aliceDecl.DisplayName(), aliceViews[0].DisplayName)
	assert.False(t, aliceViews[0].Seen)

	bobViews, err := f.service.ListForOwner(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobViews, 1)
	assert.Equal(t, bobDecl.ID, bobViews[0].DeclarationID)

	// A third owner sees nothing
	other, err := f.service.ListForOwner(ctx, id.UserID(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMarkSeenPerSide(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := id.UserID(uuid.New())
	bob := id.UserID(uuid.New())
	f.declareMatched(t, alice, bob)

	views, err := f.service.ListForOwner(ctx, alice)
	require.NoError(t, err)
	matchID := views[0].MatchID

	unread, err := f.service.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, f.service.MarkSeen(ctx, alice, matchID))

	// Alice's side is read, Bob's untouched
	unread, err = f.service.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
	unread, err = f.service.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	views, err = f.service.ListForOwner(ctx, alice)
	require.NoError(t, err)
	assert.True(t, views[0].Seen)

	// Idempotent
	require.NoError(t, f.service.MarkSeen(ctx, alice, matchID))
}

func TestMarkSeenRejectsNonParticipant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.declareMatched(t, id.UserID(uuid.New()), id.UserID(uuid.New()))

	views, err := f.service.ListForOwner(ctx, id.UserID(uuid.New()))
	require.NoError(t, err)
	require.Empty(t, views)

	// Fish the match ID out through one of the participants
	all, err := f.matches.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), all)

	intruder := id.UserID(uuid.New())
	err = f.service.MarkSeen(ctx, intruder, someMatchID(t, f))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), "non-participants get not-found, not forbidden")
}

func TestMarkSeenUnknownMatch(t *testing.T) {
	f := newFixture()
	err := f.service.MarkSeen(context.Background(), id.UserID(uuid.New()), id.MatchID(uuid.New()))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUnreadCountNoDeclarations(t *testing.T) {
	f := newFixture()
	count, err := f.service.UnreadCount(context.Background(), id.UserID(uuid.New()))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func someMatchID(t *testing.T, f *fixture) id.MatchID {
	t.Helper()
	matches, err := f.matches.ListByDeclarations(context.Background(), collectDeclarationIDs(t, f))
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	return matches[0].ID
}

func collectDeclarationIDs(t *testing.T, f *fixture) []id.DeclarationID {
	t.Helper()
	var ids []id.DeclarationID
	active, err := f.declarations.ListActiveByFingerprint(context.Background(), identity.Fingerprint("Jean", "Moreau", "France"))
	require.NoError(t, err)
	for _, declaration := range active {
		ids = append(ids, declaration.ID)
	}
	return ids
}
