package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/carrot/internal/auth"
	"github.com/hongminglow/carrot/internal/logger"
)

const bearerPrefix = "Bearer "

// TokenValidator returns the user id carried by a valid token.
type TokenValidator interface {
	Validate(token string) (int64, error)
}

// PrincipalResolver loads the principal for a user id.
type PrincipalResolver interface {
	ResolveByID(ctx context.Context, id int64) (auth.Principal, error)
}

// Authenticate publishes the request's principal when a valid bearer token is
// present. It never rejects: a missing, malformed, or invalid token leaves the
// request anonymous and Authorize decides what happens next.
func Authenticate(tokens TokenValidator, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(token)
			if err != nil {
				// Rejection reason is logged by the codec.
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.ResolveByID(r.Context(), userID)
			if err != nil {
				logger.WarnCtx(r.Context(), "could not set user authentication", "user_id", userID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal)
			ctx = logger.WithUserID(ctx, principal.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-sensitively.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}
