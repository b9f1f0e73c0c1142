package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	declmodels "liaison/internal/declaration/models"
	declstore "liaison/internal/declaration/store"
	"liaison/internal/identity"
	"liaison/internal/match/matcher"
	matchservice "liaison/internal/match/service"
	matchstore "liaison/internal/match/store"
	"liaison/internal/platform/middleware"
	profilestore "liaison/internal/profile/store"
	id "liaison/pkg/domain"
)

type fixture struct {
	router       chi.Router
	declarations *declstore.InMemoryStore
	matcher      *matcher.Matcher
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	declarations := declstore.New()
	matches := matchstore.New()
	svc := matchservice.NewService(matches, declarations)
	r := chi.NewRouter()
	New(svc, logger, nil).Register(r)
	return &fixture{
		router:       r,
		declarations: declarations,
		matcher:      matcher.New(declarations, matches, profilestore.New()),
	}
}

func (f *fixture) declareMatched(t *testing.T, alice, bob id.UserID) {
	t.Helper()
	ctx := context.Background()
	for _, owner := range []id.UserID{alice, bob} {
		declaration, err := declmodels.NewDeclaration(
			id.DeclarationID(uuid.New()),
			owner,
			"Jean", "Moreau", "France",
			identity.Fingerprint("Jean", "Moreau", "France"),
			time.Now().UTC(),
		)
		require.NoError(t, err)
		require.NoError(t, f.declarations.Save(ctx, declaration))
		created, err := f.matcher.MatchNew(ctx, declaration, time.Now().UTC())
		require.NoError(t, err)
		if owner == bob {
			require.Len(t, created, 1)
		}
	}
}

func (f *fixture) doRequest(t *testing.T, owner id.UserID, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req = req.WithContext(middleware.WithOwnerID(context.Background(), owner))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHandleListAndMarkSeen(t *testing.T) {
	f := newFixture()
	alice := id.UserID(uuid.New())
	bob := id.UserID(uuid.New())
	f.declareMatched(t, alice, bob)

	w := f.doRequest(t, alice, http.MethodGet, "/matches")
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Matches, 1)
	assert.Equal(t, "Jean Moreau", list.Matches[0].DisplayName)
	assert.False(t, list.Matches[0].Seen)

	w = f.doRequest(t, alice, http.MethodGet, "/matches/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	var unread UnreadCountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unread))
	assert.Equal(t, int64(1), unread.Unread)

	w = f.doRequest(t, alice, http.MethodPost, "/matches/"+list.Matches[0].ID+"/seen")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.doRequest(t, alice, http.MethodGet, "/matches/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unread))
	assert.Zero(t, unread.Unread)

	// The counterpart's unread count is unaffected
	w = f.doRequest(t, bob, http.MethodGet, "/matches/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unread))
	assert.Equal(t, int64(1), unread.Unread)
}

func TestHandleMarkSeenErrors(t *testing.T) {
	f := newFixture()
	alice := id.UserID(uuid.New())
	bob := id.UserID(uuid.New())
	f.declareMatched(t, alice, bob)

	w := f.doRequest(t, alice, http.MethodPost, "/matches/not-a-uuid/seen")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.doRequest(t, alice, http.MethodPost, "/matches/"+uuid.NewString()+"/seen")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Non-participants cannot mark the match
	wList := f.doRequest(t, alice, http.MethodGet, "/matches")
	require.Equal(t, http.StatusOK, wList.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(wList.Body.Bytes(), &list))
	require.Len(t, list.Matches, 1)

	w = f.doRequest(t, id.UserID(uuid.New()), http.MethodPost, "/matches/"+list.Matches[0].ID+"/seen")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListEmpty(t *testing.T) {
	f := newFixture()
	w := f.doRequest(t, id.UserID(uuid.New()), http.MethodGet, "/matches")
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Matches)
}
