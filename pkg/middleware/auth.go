package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "spacebook/pkg/errors"
	"spacebook/pkg/logger"
)

const ActorKey contextKey = "actor"

// Roles carried in the token's role claim.
const (
	RoleClient = "client"
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
)

// Actor is the verified identity extracted from the bearer credential.
// The booking core trusts it unconditionally; handlers pass it
// explicitly into every service call.
type Actor struct {
	ID   string
	Role string
}

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	return actor, ok
}

// Auth verifies the Authorization bearer token and stores the actor in
// the request context. Paths listed in public skip verification.
func Auth(secret string, public map[string]bool, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				apperrors.WriteError(w, apperrors.Unauthorized("missing bearer token"))
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Warn("Rejected bearer token", "path", r.URL.Path, "error", err)
				apperrors.WriteError(w, apperrors.Unauthorized("invalid or expired token"))
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				apperrors.WriteError(w, apperrors.Unauthorized("malformed token claims"))
				return
			}

			sub, _ := claims["sub"].(string)
			role, _ := claims["role"].(string)
			if sub == "" {
				apperrors.WriteError(w, apperrors.Unauthorized("token missing subject"))
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, Actor{ID: sub, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
