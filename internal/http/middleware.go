package http

import (
	"context"
	"net/http"
	"strings"

	"outlay/internal/core"
)

type contextKey string

const userIDKey contextKey = "user_id"

// requireAuth validates the bearer token and resolves its subject to the
// owner id every downstream handler scopes by. Requests that fail either
// step never reach a handler.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, core.ErrInvalidToken)
			return
		}

		subject, err := s.tokens.Validate(token)
		if err != nil {
			writeError(w, err)
			return
		}

		userID, err := s.resolver.Resolve(r.Context(), subject)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// userIDFrom returns the authenticated owner id. It is only valid inside
// handlers wrapped by requireAuth.
func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}
