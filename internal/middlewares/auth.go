package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/jwt"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/services"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=middlewares

// TokenResolver maps a bearer token to the id of an existing user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// UnauthorizedMessage is the body of every 401 response.
const UnauthorizedMessage = "Could not validate credentials"

type userIDKey struct{}

// ContextWithUserID stores the authenticated user id in ctx.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the id stored by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

// WriteUnauthorized writes the bearer challenge response.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, UnauthorizedMessage)
}

// InternalErrorMessage is the body of failures the client cannot act on.
const InternalErrorMessage = "Internal server error"

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AuthMiddleware returns a middleware that resolves the bearer token to a user
// and stores the user id in the request context.
func AuthMiddleware(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := jwt.GetTokenFromRequest(r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				WriteUnauthorized(w)
				return
			}

			userID, err := resolver.Resolve(ctx, tokenString)
			if err != nil {
				if errors.Is(err, services.ErrPersistenceFailed) {
					logger.Log.Errorw("authorization lookup failed", "err", err)
					writeError(w, http.StatusInternalServerError, InternalErrorMessage)
					return
				}
				logger.Log.Infow("authorization failed", "err", err)
				WriteUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(ctx, userID)))
		})
	}
}
