package auth

import (
	"context"
	"net/http"
	"strings"

	"courtside/domain"

	"github.com/google/uuid"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Middleware validates the Bearer token on incoming requests and
// injects the resulting session into the request context. Requests
// without a valid token are rejected with 401.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		session := domain.Session{UserID: userID, Email: claims.Email}
		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext extracts the session placed by Middleware.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(domain.Session)
	return session, ok
}
