package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "liaison/pkg/domain"
)

// The service has two actor variants: an authenticated user carrying a bearer
// token minted by the external identity provider, and an ephemeral demo user
// identified by a client-generated UUID header. Both resolve to the same
// opaque owner ID in context; downstream code never learns which variant it was.

type contextKeyOwnerID struct{}

// OwnerID retrieves the resolved owner ID from the context.
// Returns the nil UUID when no actor was resolved.
func OwnerID(ctx context.Context) id.UserID {
	owner, ok := ctx.Value(contextKeyOwnerID{}).(id.UserID)
	if !ok {
		return id.UserID{}
	}
	return owner
}

// WithOwnerID injects an owner ID into the context. Exported for handler tests.
func WithOwnerID(ctx context.Context, owner id.UserID) context.Context {
	return context.WithValue(ctx, contextKeyOwnerID{}, owner)
}

// ActorConfig configures actor resolution.
type ActorConfig struct {
	// SigningKey verifies bearer tokens (HS256). The `sub` claim carries the
	// owner UUID assigned by the identity provider.
	SigningKey []byte

	// AllowDemo accepts the X-Demo-User header as an actor when no bearer
	// token is present. Demo identities are client-generated UUIDs with no
	// account behind them.
	AllowDemo bool
}

// ResolveActor authenticates the request and stores the resolved owner ID in
// context. Requests with neither a valid token nor (when enabled) a demo
// header are rejected with 401.
func ResolveActor(cfg ActorConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				owner, err := ownerFromToken(token, cfg.SigningKey)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized - invalid token",
						"error", err,
						"request_id", requestID,
					)
					writeUnauthorized(w, "Invalid or expired token")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithOwnerID(ctx, owner)))
				return
			}

			if cfg.AllowDemo {
				if demo := r.Header.Get("X-Demo-User"); demo != "" {
					owner, err := id.ParseUserID(demo)
					if err != nil || owner.IsNil() {
						logger.WarnContext(ctx, "unauthorized - malformed demo user",
							"request_id", requestID,
						)
						writeUnauthorized(w, "Invalid demo user")
						return
					}
					next.ServeHTTP(w, r.WithContext(WithOwnerID(ctx, owner)))
					return
				}
			}

			logger.WarnContext(ctx, "unauthorized - missing credentials",
				"request_id", requestID,
			)
			writeUnauthorized(w, "Missing or invalid Authorization header")
		})
	}
}

func ownerFromToken(tokenString string, key []byte) (id.UserID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return id.UserID{}, err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return id.UserID{}, err
	}
	owner, err := id.ParseUserID(sub)
	if err != nil {
		return id.UserID{}, err
	}
	return owner, nil
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
