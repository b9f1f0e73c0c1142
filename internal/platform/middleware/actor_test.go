package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "liaison/pkg/domain"
)

var testKey = []byte("test-signing-key")

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(testKey)
	require.NoError(t, err)
	return s
}

func resolveWith(t *testing.T, cfg ActorConfig, prepare func(*http.Request)) (*httptest.ResponseRecorder, id.UserID) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var captured id.UserID
	handler := ResolveActor(cfg, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = OwnerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/declarations", nil)
	prepare(req)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, captured
}

func TestResolveActor(t *testing.T) {
	cfg := ActorConfig{SigningKey: testKey}

	t.Run("valid bearer token resolves owner", func(t *testing.T) {
		owner := uuid.New()
		w, captured := resolveWith(t, cfg, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signedToken(t, owner.String()))
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, owner.String(), captured.String())
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		w, _ := resolveWith(t, cfg, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signedToken(t, uuid.New().String())+"x")
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing credentials are rejected", func(t *testing.T) {
		w, _ := resolveWith(t, cfg, func(*http.Request) {})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("demo header ignored when demo mode disabled", func(t *testing.T) {
		w, _ := resolveWith(t, cfg, func(r *http.Request) {
			r.Header.Set("X-Demo-User", uuid.New().String())
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestResolveActorDemoMode(t *testing.T) {
	cfg := ActorConfig{SigningKey: testKey, AllowDemo: true}

	t.Run("demo header resolves owner", func(t *testing.T) {
		owner := uuid.New()
		w, captured := resolveWith(t, cfg, func(r *http.Request) {
			r.Header.Set("X-Demo-User", owner.String())
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, owner.String(), captured.String())
	})

	t.Run("malformed demo id is rejected", func(t *testing.T) {
		w, _ := resolveWith(t, cfg, func(r *http.Request) {
			r.Header.Set("X-Demo-User", "not-a-uuid")
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer token wins over demo header", func(t *testing.T) {
		tokenOwner := uuid.New()
		w, captured := resolveWith(t, cfg, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signedToken(t, tokenOwner.String()))
			r.Header.Set("X-Demo-User", uuid.New().String())
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tokenOwner.String(), captured.String())
	})
}
