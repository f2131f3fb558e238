package middleware

import (
	"context"
	"net/http"
	"strings"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"
	"trello-project/microservices/task-manager/services"
	"trello-project/microservices/task-manager/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

type TokenValidator interface {
	ValidateToken(tokenStr string) (*utils.Claims, error)
}

type actorKey struct{}

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, actor services.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (services.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(services.Actor)
	return actor, ok
}

// JWTAuth validates the bearer token and puts the caller into the request context.
func JWTAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := validator.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			actor := services.Actor{
				ID:       userID,
				Username: claims.Username,
				Email:    claims.Email,
				Role:     models.Role(claims.Role),
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRoles rejects authenticated callers whose role is not listed.
func RequireRoles(next http.Handler, allowed ...models.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !slices.Contains(allowed, actor.Role) {
			logging.Logger.Warnf("Event ID: ACCESS_FORBIDDEN, Description: Role %s not allowed on %s %s", actor.Role, r.Method, r.URL.Path)
			http.Error(w, "Access forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
